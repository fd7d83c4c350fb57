/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package dispatchtest provides deterministic stand-ins for the transport and scheduler.
package dispatchtest

import (
	"sort"
	"time"

	"github.com/named-data/ndnfwd/dispatch"
)

// ManualScheduler is a discrete-event scheduler on a virtual clock.
// Timers due at the same instant run in the order they were scheduled.
type ManualScheduler struct {
	now     time.Time
	pending []*manualTimer
}

var _ dispatch.Scheduler = (*ManualScheduler)(nil)

type manualTimer struct {
	s        *ManualScheduler
	at       time.Time
	callback func()
}

// NewManualScheduler creates a scheduler whose clock starts at the specified time.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now returns the virtual time.
func (s *ManualScheduler) Now() time.Time {
	return s.now
}

// ScheduleAt queues callback to run when the clock reaches t. Past times run at the current time.
func (s *ManualScheduler) ScheduleAt(t time.Time, callback func()) dispatch.Timer {
	if t.Before(s.now) {
		t = s.now
	}
	timer := &manualTimer{s: s, at: t, callback: callback}
	i := sort.Search(len(s.pending), func(i int) bool {
		return s.pending[i].at.After(t)
	})
	s.pending = append(s.pending, nil)
	copy(s.pending[i+1:], s.pending[i:])
	s.pending[i] = timer
	return timer
}

// Pending returns the number of queued timers.
func (s *ManualScheduler) Pending() int {
	return len(s.pending)
}

// NextAt returns the time of the earliest queued timer.
func (s *ManualScheduler) NextAt() (time.Time, bool) {
	if len(s.pending) == 0 {
		return time.Time{}, false
	}
	return s.pending[0].at, true
}

// Step runs the earliest queued timer, advancing the clock to its time.
func (s *ManualScheduler) Step() bool {
	if len(s.pending) == 0 {
		return false
	}
	timer := s.pending[0]
	s.pending = s.pending[1:]
	s.now = timer.at
	timer.callback()
	return true
}

// RunUntil runs every timer due at or before t, including ones scheduled by callbacks, then sets the clock to t.
// Returns the number of timers that ran.
func (s *ManualScheduler) RunUntil(t time.Time) int {
	n := 0
	for len(s.pending) > 0 && !s.pending[0].at.After(t) {
		s.Step()
		n++
	}
	if t.After(s.now) {
		s.now = t
	}
	return n
}

// Advance moves the clock forward by d, running every timer that becomes due.
func (s *ManualScheduler) Advance(d time.Duration) int {
	return s.RunUntil(s.now.Add(d))
}

func (t *manualTimer) Stop() bool {
	for i, timer := range t.s.pending {
		if timer == t {
			t.s.pending = append(t.s.pending[:i], t.s.pending[i+1:]...)
			return true
		}
	}
	return false
}
