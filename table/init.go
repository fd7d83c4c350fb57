/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"time"

	"github.com/named-data/ndnfwd/core"
)

// Options holds the sizing and lifetime parameters of one engine's tables.
type Options struct {
	// CsCapacity is the maximum number of Data packets held by the Content Store.
	CsCapacity int
	// CsReplacementPolicy names the Content Store replacement policy. Only "lru" is known.
	CsReplacementPolicy string
	// CsAdmit determines whether Data will be admitted to the Content Store.
	CsAdmit bool
	// CsServe determines whether Data will be served from the Content Store.
	CsServe bool
	// PitMaxLifetime caps how long a single Interest keeps a PIT entry alive.
	PitMaxLifetime time.Duration
	// DeadNonceListLifetime is the lifetime of entries in the Dead Nonce List. Zero disables the list.
	DeadNonceListLifetime time.Duration
}

// DefaultOptions returns the table options used when no configuration is present.
func DefaultOptions() Options {
	return Options{
		CsCapacity:            3072,
		CsReplacementPolicy:   "lru",
		CsAdmit:               true,
		CsServe:               true,
		PitMaxLifetime:        4000 * time.Millisecond,
		DeadNonceListLifetime: 6000 * time.Millisecond,
	}
}

// OptionsFromConfig reads table options from the loaded configuration.
func OptionsFromConfig() Options {
	def := DefaultOptions()
	opts := Options{
		CsCapacity:            core.GetConfigIntDefault("tables.content_store.capacity", def.CsCapacity),
		CsReplacementPolicy:   core.GetConfigStringDefault("tables.content_store.replacement_policy", def.CsReplacementPolicy),
		CsAdmit:               core.GetConfigBoolDefault("tables.content_store.admit", def.CsAdmit),
		CsServe:               core.GetConfigBoolDefault("tables.content_store.serve", def.CsServe),
		PitMaxLifetime:        core.GetConfigDurationDefault("tables.pit.max_lifetime_ms", def.PitMaxLifetime),
		DeadNonceListLifetime: core.GetConfigDurationDefault("tables.dead_nonce_list.lifetime_ms", def.DeadNonceListLifetime),
	}

	switch opts.CsReplacementPolicy {
	case "lru":
	default:
		core.LogWarn("Tables", "Unknown CS replacement policy ", opts.CsReplacementPolicy, ", using lru")
		opts.CsReplacementPolicy = "lru"
	}
	if opts.CsCapacity < 0 {
		core.LogWarn("Tables", "Negative CS capacity ", opts.CsCapacity, ", using 0")
		opts.CsCapacity = 0
	}
	if opts.PitMaxLifetime <= 0 {
		opts.PitMaxLifetime = def.PitMaxLifetime
	}
	return opts
}
