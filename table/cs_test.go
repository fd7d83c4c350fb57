/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"testing"
	"time"

	"github.com/named-data/ndnfwd/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCsFindExact(t *testing.T) {
	clock := newFakeClock()
	cs := NewContentStore(DefaultOptions(), clock.Now)

	cs.Insert(makeData("/a/x", time.Second))
	assert.Equal(t, 1, cs.Size())

	data := cs.Find(ndn.MustParseName("/a/x"))
	require.NotNil(t, data)
	assert.Equal(t, []byte("/a/x"), data.Payload)

	// Exact match only
	assert.Nil(t, cs.Find(ndn.MustParseName("/a")))
	assert.Nil(t, cs.Find(ndn.MustParseName("/a/x/y")))
}

func TestCsFreshness(t *testing.T) {
	clock := newFakeClock()
	cs := NewContentStore(DefaultOptions(), clock.Now)
	cs.Insert(makeData("/a", time.Second))

	clock.Advance(time.Second)
	assert.NotNil(t, cs.Find(ndn.MustParseName("/a")))

	clock.Advance(time.Millisecond)
	assert.Nil(t, cs.Find(ndn.MustParseName("/a")))
	assert.Equal(t, 0, cs.Size())

	// Re-insertion restarts the freshness period
	cs.Insert(makeData("/b", time.Second))
	clock.Advance(800 * time.Millisecond)
	cs.Insert(makeData("/b", time.Second))
	clock.Advance(800 * time.Millisecond)
	assert.NotNil(t, cs.Find(ndn.MustParseName("/b")))
	assert.Equal(t, 1, cs.Size())
}

func TestCsLRUEviction(t *testing.T) {
	clock := newFakeClock()
	opts := DefaultOptions()
	opts.CsCapacity = 2
	cs := NewContentStore(opts, clock.Now)

	cs.Insert(makeData("/a", time.Minute))
	cs.Insert(makeData("/b", time.Minute))
	// Using /a makes /b the least recently used
	assert.NotNil(t, cs.Find(ndn.MustParseName("/a")))
	cs.Insert(makeData("/c", time.Minute))

	assert.Equal(t, 2, cs.Size())
	assert.NotNil(t, cs.Find(ndn.MustParseName("/a")))
	assert.Nil(t, cs.Find(ndn.MustParseName("/b")))
	assert.NotNil(t, cs.Find(ndn.MustParseName("/c")))

	cs.Configure(1)
	assert.Equal(t, 1, cs.Size())
	assert.NotNil(t, cs.Find(ndn.MustParseName("/c")))

	cs.Configure(0)
	assert.Equal(t, 0, cs.Size())
	cs.Insert(makeData("/d", time.Minute))
	assert.Equal(t, 0, cs.Size())
}

func TestCsEraseAndFlags(t *testing.T) {
	clock := newFakeClock()
	cs := NewContentStore(DefaultOptions(), clock.Now)
	cs.Insert(makeData("/a", time.Minute))

	assert.True(t, cs.Erase(ndn.MustParseName("/a")))
	assert.False(t, cs.Erase(ndn.MustParseName("/a")))
	assert.Equal(t, 0, cs.Size())

	cs.SetAdmit(false)
	cs.Insert(makeData("/a", time.Minute))
	assert.Equal(t, 0, cs.Size())

	cs.SetAdmit(true)
	cs.Insert(makeData("/a", time.Minute))
	cs.SetServe(false)
	assert.Nil(t, cs.Find(ndn.MustParseName("/a")))
	cs.SetServe(true)
	assert.NotNil(t, cs.Find(ndn.MustParseName("/a")))
}
