/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"reflect"

	"github.com/named-data/ndnfwd/core"
	"github.com/named-data/ndnfwd/ndn"
	"github.com/named-data/ndnfwd/table"
)

// Strategy represents a forwarding strategy.
// Strategies only choose faces. The engine owns every PIT transition.
type Strategy interface {
	Instantiate(engine *Engine)
	GetName() string

	// SelectInterface returns the face the Interest should be forwarded on next,
	// or false if every usable face has been tried.
	SelectInterface(fibEntry *table.FibEntry, pitEntry *table.PitEntry) (ndn.FaceID, bool)

	// SelectProbe returns the face a probe should be sent on after forwarding on primary, or false.
	SelectProbe(fibEntry *table.FibEntry, pitEntry *table.PitEntry, primary ndn.FaceID) (ndn.FaceID, bool)
}

// strategyTypes contains the types of all registered strategies.
var strategyTypes = make(map[string]reflect.Type)

func registerStrategy(name string, strategy Strategy) {
	strategyTypes[name] = reflect.TypeOf(strategy).Elem()
}

// IsKnownStrategy returns whether a strategy has been registered under the name.
func IsKnownStrategy(name string) bool {
	_, ok := strategyTypes[name]
	return ok
}

// InstantiateStrategies creates one instance of every registered strategy for the engine.
func InstantiateStrategies(engine *Engine) map[string]Strategy {
	strategies := make(map[string]Strategy, len(strategyTypes))
	for name, strategyType := range strategyTypes {
		strategy := reflect.New(strategyType).Interface().(Strategy)
		strategy.Instantiate(engine)
		strategies[name] = strategy
		core.LogTrace(engine, "Instantiated strategy ", name)
	}
	return strategies
}

// StrategyBase provides common helper methods for forwarding strategies.
type StrategyBase struct {
	engine *Engine
	name   string
}

// NewStrategyBase is a helper that allows specific strategies to initialize the base.
func (s *StrategyBase) NewStrategyBase(engine *Engine, name string) {
	s.engine = engine
	s.name = name
}

func (s *StrategyBase) String() string {
	return "Strategy-" + s.name
}

// GetName returns the name the strategy is registered under.
func (s *StrategyBase) GetName() string {
	return s.name
}

// Usable returns whether the face has not been tried for the entry and is currently available.
func (s *StrategyBase) Usable(pitEntry *table.PitEntry, face ndn.FaceID) bool {
	return !pitEntry.HasOutFace(face) && s.engine.transport.Available(face)
}

// SelectProbe picks the next-best nexthop after primary that is untried, unprobed and available.
func (s *StrategyBase) SelectProbe(fibEntry *table.FibEntry, pitEntry *table.PitEntry, primary ndn.FaceID) (ndn.FaceID, bool) {
	passedPrimary := false
	for _, nexthop := range fibEntry.NextHops() {
		if nexthop.Face == primary {
			passedPrimary = true
			continue
		}
		if !passedPrimary || pitEntry.Probed(nexthop.Face) {
			continue
		}
		if s.Usable(pitEntry, nexthop.Face) {
			return nexthop.Face, true
		}
	}
	return 0, false
}
