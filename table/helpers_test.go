/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"time"

	"github.com/named-data/ndnfwd/ndn"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func makeInterest(name string, nonce uint64, inFace ndn.FaceID) *ndn.Interest {
	return &ndn.Interest{Name: ndn.MustParseName(name), Nonce: nonce, InFace: inFace}
}

func makeData(name string, freshness time.Duration) *ndn.Data {
	return &ndn.Data{Name: ndn.MustParseName(name), Payload: []byte(name), Freshness: freshness}
}

type stubTimer struct {
	stopped bool
}

func (t *stubTimer) Stop() bool {
	wasRunning := !t.stopped
	t.stopped = true
	return wasRunning
}
