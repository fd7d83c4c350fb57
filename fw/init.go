/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"time"

	"github.com/named-data/ndnfwd/core"
	"github.com/named-data/ndnfwd/table"
)

// Options configures one forwarding engine.
type Options struct {
	table.Options

	// RetryTimeout is how long an upstream attempt may stay unanswered before the next face is tried.
	RetryTimeout time.Duration
	// RetryTimer determines whether expiry of the retry deadline re-forwards the Interest by itself.
	// Without it, only a Nack or a new Interest can trigger the next attempt.
	RetryTimer bool
	// DefaultStrategy is the strategy used for prefixes without an explicit choice.
	DefaultStrategy string
	// SweepInterval is the minimum time between two sweeps for stale PIT entries. Zero sweeps on every packet.
	SweepInterval time.Duration
	// ProbeEvery sends a probe after this many Interests forwarded under one FIB entry. Zero disables it.
	ProbeEvery int
	// ProbeInterval sends a probe once this much time has passed since the last probe of a FIB entry. Zero disables it.
	ProbeInterval time.Duration
	// NonceSeed seeds the generator of probe nonces. Zero seeds from the clock.
	NonceSeed int64
	// QueueSize is the maximum number of packets that can be buffered to be processed by a forwarding thread.
	QueueSize int
}

// DefaultOptions returns the engine options used when no configuration is present.
func DefaultOptions() Options {
	return Options{
		Options:         table.DefaultOptions(),
		RetryTimeout:    200 * time.Millisecond,
		RetryTimer:      true,
		DefaultStrategy: BestRouteName,
		SweepInterval:   100 * time.Millisecond,
		QueueSize:       1024,
	}
}

// OptionsFromConfig reads engine options from the loaded configuration.
func OptionsFromConfig() Options {
	def := DefaultOptions()
	opts := Options{
		Options:         table.OptionsFromConfig(),
		RetryTimeout:    core.GetConfigDurationDefault("fw.retry_timeout_ms", def.RetryTimeout),
		RetryTimer:      core.GetConfigBoolDefault("fw.retry_timer", def.RetryTimer),
		DefaultStrategy: core.GetConfigStringDefault("fw.default_strategy", def.DefaultStrategy),
		SweepInterval:   core.GetConfigDurationDefault("fw.sweep_interval_ms", def.SweepInterval),
		ProbeEvery:      core.GetConfigIntDefault("fw.probing.every", def.ProbeEvery),
		ProbeInterval:   core.GetConfigDurationDefault("fw.probing.interval_ms", def.ProbeInterval),
		NonceSeed:       int64(core.GetConfigUint64Default("fw.nonce_seed", 0)),
		QueueSize:       core.GetConfigIntDefault("fw.queue_size", def.QueueSize),
	}

	if opts.RetryTimeout <= 0 {
		core.LogWarn("Forwarding", "Retry timeout must be positive, using ", def.RetryTimeout)
		opts.RetryTimeout = def.RetryTimeout
	}
	if !IsKnownStrategy(opts.DefaultStrategy) {
		core.LogWarn("Forwarding", "Unknown default strategy ", opts.DefaultStrategy, ", using ", BestRouteName)
		opts.DefaultStrategy = BestRouteName
	}
	if opts.ProbeEvery < 0 {
		opts.ProbeEvery = 0
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = def.QueueSize
	}
	return opts
}
