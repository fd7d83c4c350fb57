/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"github.com/named-data/ndnfwd/core"
	"github.com/named-data/ndnfwd/ndn"
	"github.com/named-data/ndnfwd/table"
)

// BestRouteName is the name of the best-route strategy.
const BestRouteName = "best-route"

// BestRoute is a forwarding strategy that forwards Interests to the first untried available nexthop in rank order.
type BestRoute struct {
	StrategyBase
}

func init() {
	registerStrategy(BestRouteName, new(BestRoute))
}

// Instantiate creates a new instance of the BestRoute strategy.
func (s *BestRoute) Instantiate(engine *Engine) {
	s.NewStrategyBase(engine, BestRouteName)
}

// SelectInterface ...
func (s *BestRoute) SelectInterface(fibEntry *table.FibEntry, pitEntry *table.PitEntry) (ndn.FaceID, bool) {
	for _, nexthop := range fibEntry.NextHops() {
		if pitEntry.HasOutFace(nexthop.Face) {
			continue
		}
		if !s.engine.transport.Available(nexthop.Face) {
			core.LogTrace(s, "Skipping unavailable face=", nexthop.Face, " for ", pitEntry.Name().String())
			continue
		}
		return nexthop.Face, true
	}
	return 0, false
}
