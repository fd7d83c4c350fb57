/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"time"

	"github.com/named-data/ndnfwd/table"
)

// ProbingPolicy decides when a FIB entry is due for a path-quality probe.
type ProbingPolicy interface {
	// ProbeDue is called once per Interest forwarded under the FIB entry and reports whether a probe should accompany it.
	ProbeDue(fibEntry *table.FibEntry, now time.Time) bool
	// ProbeSent is called after a probe has been transmitted for the FIB entry.
	ProbeSent(fibEntry *table.FibEntry, now time.Time)
}

// NoProbing never probes.
type NoProbing struct{}

// ProbeDue always reports false.
func (NoProbing) ProbeDue(*table.FibEntry, time.Time) bool {
	return false
}

// ProbeSent does nothing.
func (NoProbing) ProbeSent(*table.FibEntry, time.Time) {}

// PeriodicProbing probes a FIB entry after every Every forwarded Interests, or once Interval has passed since its last probe.
// A zero field disables that trigger. State lives in the engine's measurements table.
type PeriodicProbing struct {
	Every    int
	Interval time.Duration

	measurements *table.Measurements
}

// NewPeriodicProbing creates a periodic probing policy backed by the measurements table.
func NewPeriodicProbing(every int, interval time.Duration, measurements *table.Measurements) *PeriodicProbing {
	return &PeriodicProbing{Every: every, Interval: interval, measurements: measurements}
}

func probeCountKey(fibEntry *table.FibEntry) string {
	return "probe/count" + fibEntry.Prefix().String()
}

func probeLastKey(fibEntry *table.FibEntry) string {
	return "probe/last" + fibEntry.Prefix().String()
}

// ProbeDue counts one forwarded Interest under fibEntry and reports whether either trigger has fired.
func (p *PeriodicProbing) ProbeDue(fibEntry *table.FibEntry, now time.Time) bool {
	count := p.measurements.AddToInt(probeCountKey(fibEntry), 1)
	if p.Every > 0 && count >= p.Every {
		return true
	}

	if p.Interval > 0 {
		last, ok := p.measurements.GetTime(probeLastKey(fibEntry))
		if !ok {
			// The interval starts with the first forwarded Interest
			p.measurements.SetTime(probeLastKey(fibEntry), now)
			return false
		}
		return now.Sub(last) >= p.Interval
	}
	return false
}

// ProbeSent restarts both triggers for fibEntry.
func (p *PeriodicProbing) ProbeSent(fibEntry *table.FibEntry, now time.Time) {
	p.measurements.SetInt(probeCountKey(fibEntry), 0)
	p.measurements.SetTime(probeLastKey(fibEntry), now)
}
