/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"github.com/named-data/ndnfwd/ndn"
	"github.com/named-data/ndnfwd/table"
)

// LowestRttName is the name of the lowest-rtt strategy.
const LowestRttName = "lowest-rtt"

// LowestRtt is a forwarding strategy that prefers the untried available nexthop with the lowest measured round-trip time.
// Nexthops without a measurement come after measured ones, in rank order.
// It is meant to be paired with probing, which supplies measurements for backup paths.
type LowestRtt struct {
	StrategyBase
}

func init() {
	registerStrategy(LowestRttName, new(LowestRtt))
}

// Instantiate creates a new instance of the LowestRtt strategy.
func (s *LowestRtt) Instantiate(engine *Engine) {
	s.NewStrategyBase(engine, LowestRttName)
}

// SelectInterface ...
func (s *LowestRtt) SelectInterface(fibEntry *table.FibEntry, pitEntry *table.PitEntry) (ndn.FaceID, bool) {
	var best ndn.FaceID
	var bestRtt float64
	found, bestMeasured := false, false
	for _, nexthop := range fibEntry.NextHops() {
		if !s.Usable(pitEntry, nexthop.Face) {
			continue
		}
		rtt, measured := s.engine.faceRttMillis(nexthop.Face)
		switch {
		case !found:
		case measured && (!bestMeasured || rtt < bestRtt):
		default:
			continue
		}
		best, bestRtt, bestMeasured, found = nexthop.Face, rtt, measured, true
	}
	return best, found
}
