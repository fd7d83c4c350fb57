/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package executor

import (
	"errors"
	"fmt"

	"github.com/named-data/ndnfwd/core"
	"github.com/named-data/ndnfwd/fw"
	"github.com/named-data/ndnfwd/ndn"
)

// NodeConfig is the command-line configuration of a forwarding node.
type NodeConfig struct {
	Version        string
	ConfigFileName string
	LogFile        string
	CpuProfile     string
	MemProfile     string
	BlockProfile   string
}

// FaceConfig declares one face known to the node.
type FaceConfig struct {
	ID        ndn.FaceID
	Available bool
}

// RouteConfig declares one FIB nexthop.
type RouteConfig struct {
	Prefix ndn.Name
	Face   ndn.FaceID
	Rank   uint64
}

// StrategyConfig declares the strategy choice for one prefix.
type StrategyConfig struct {
	Prefix   ndn.Name
	Strategy string
}

// Topology is the static face, route, and strategy setup read from the configuration file.
type Topology struct {
	Faces      []FaceConfig
	Routes     []RouteConfig
	Strategies []StrategyConfig
}

var errMissingKey = errors.New("missing key")

// TopologyFromConfig reads the [[face]], [[fib.route]], and [[fib.strategy]] tables.
func TopologyFromConfig() (*Topology, error) {
	topo := new(Topology)

	for i, table := range core.GetConfigTables("face") {
		id, err := tableUint(table, "id")
		if err != nil {
			return nil, fmt.Errorf("face[%d]: %w", i, err)
		}
		available := true
		if raw, ok := table["available"]; ok {
			if available, ok = raw.(bool); !ok {
				return nil, fmt.Errorf("face[%d].available: %w", i, core.ErrConfigType)
			}
		}
		topo.Faces = append(topo.Faces, FaceConfig{ID: ndn.FaceID(id), Available: available})
	}

	for i, table := range core.GetConfigTables("fib.route") {
		prefix, err := tableName(table, "prefix")
		if err != nil {
			return nil, fmt.Errorf("fib.route[%d]: %w", i, err)
		}
		face, err := tableUint(table, "face")
		if err != nil {
			return nil, fmt.Errorf("fib.route[%d]: %w", i, err)
		}
		var rank uint64
		if _, ok := table["rank"]; ok {
			if rank, err = tableUint(table, "rank"); err != nil {
				return nil, fmt.Errorf("fib.route[%d]: %w", i, err)
			}
		}
		topo.Routes = append(topo.Routes, RouteConfig{Prefix: prefix, Face: ndn.FaceID(face), Rank: rank})
	}

	for i, table := range core.GetConfigTables("fib.strategy") {
		prefix, err := tableName(table, "prefix")
		if err != nil {
			return nil, fmt.Errorf("fib.strategy[%d]: %w", i, err)
		}
		strategy, ok := table["strategy"].(string)
		if !ok {
			return nil, fmt.Errorf("fib.strategy[%d].strategy: %w", i, errMissingKey)
		}
		if !fw.IsKnownStrategy(strategy) {
			return nil, fmt.Errorf("fib.strategy[%d]: unknown strategy %q", i, strategy)
		}
		topo.Strategies = append(topo.Strategies, StrategyConfig{Prefix: prefix, Strategy: strategy})
	}

	return topo, nil
}

func tableUint(table map[string]interface{}, key string) (uint64, error) {
	raw, ok := table[key]
	if !ok {
		return 0, fmt.Errorf("%s: %w", key, errMissingKey)
	}
	val, ok := raw.(int64)
	if !ok || val < 0 {
		return 0, fmt.Errorf("%s: %w", key, core.ErrConfigType)
	}
	return uint64(val), nil
}

func tableName(table map[string]interface{}, key string) (ndn.Name, error) {
	raw, ok := table[key].(string)
	if !ok {
		return ndn.Name{}, fmt.Errorf("%s: %w", key, errMissingKey)
	}
	name, err := ndn.NameFromString(raw)
	if err != nil {
		return ndn.Name{}, fmt.Errorf("%s: %w", key, err)
	}
	return name, nil
}
