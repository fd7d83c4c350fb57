/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw_test

import (
	"testing"
	"time"

	"github.com/named-data/ndnfwd/core"
	"github.com/named-data/ndnfwd/dispatch/dispatchtest"
	"github.com/named-data/ndnfwd/fw"
	"github.com/named-data/ndnfwd/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine    *fw.Engine
	transport *dispatchtest.RecordingTransport
	scheduler *dispatchtest.ManualScheduler
}

func newFixture(t *testing.T, modify func(*fw.Options)) *fixture {
	t.Helper()
	opts := fw.DefaultOptions()
	opts.NonceSeed = 1
	if modify != nil {
		modify(&opts)
	}
	f := &fixture{
		transport: dispatchtest.NewRecordingTransport(),
		scheduler: dispatchtest.NewManualScheduler(time.Unix(1000, 0)),
	}
	f.engine = fw.NewEngine(0, opts, f.transport, f.scheduler)
	return f
}

func (f *fixture) route(prefix string, face ndn.FaceID, rank uint64) {
	f.engine.Fib().Install(ndn.MustParseName(prefix), face, rank)
}

func (f *fixture) interest(name string, nonce uint64, inFace ndn.FaceID) *ndn.Interest {
	interest := &ndn.Interest{Name: ndn.MustParseName(name), Nonce: nonce, InFace: inFace}
	f.engine.ProcessInterest(interest)
	return interest
}

func (f *fixture) nack(reason ndn.NackReason, name string, nonce uint64, inFace ndn.FaceID) {
	nack := ndn.MakeNack(reason, ndn.Interest{Name: ndn.MustParseName(name), Nonce: nonce, InFace: inFace})
	f.engine.ProcessNack(&nack)
}

func (f *fixture) data(name string, inFace ndn.FaceID) {
	f.engine.ProcessData(&ndn.Data{Name: ndn.MustParseName(name), Payload: []byte("x"), Freshness: time.Second}, inFace)
}

func sentFaces(sent []dispatchtest.Sent) []ndn.FaceID {
	faces := make([]ndn.FaceID, len(sent))
	for i, s := range sent {
		faces[i] = s.Face
	}
	return faces
}

func TestCacheHitSkipsPit(t *testing.T) {
	f := newFixture(t, nil)
	f.route("/a", 1, 1)
	f.engine.ContentStore().Insert(&ndn.Data{Name: ndn.MustParseName("/a/x"), Payload: []byte("hello"), Freshness: time.Second})

	f.interest("/a/x", 7, 0)

	assert.Equal(t, 0, f.engine.PitSize())
	assert.Empty(t, f.transport.Interests())
	data := f.transport.Data()
	require.Len(t, data, 1)
	assert.Equal(t, ndn.FaceID(0), data[0].Face)
	assert.Equal(t, []byte("hello"), data[0].Packet.Data.Payload)
	assert.Equal(t, uint64(1), f.engine.Counters().NCsHits)

	// A stale copy is a miss
	f.scheduler.Advance(2 * time.Second)
	f.interest("/a/x", 8, 0)
	assert.Equal(t, 1, f.engine.PitSize())
	assert.Len(t, f.transport.Interests(), 1)
}

func TestAtMostOneEntryPerName(t *testing.T) {
	f := newFixture(t, nil)
	f.route("/a", 1, 1)
	f.route("/a", 2, 2)
	f.route("/a", 3, 3)

	f.interest("/a/x", 1, 10)
	f.interest("/a/x", 2, 11)
	f.interest("/a/x", 3, 12)
	assert.Equal(t, 1, f.engine.PitSize())
	assert.Len(t, f.transport.Interests(), 1)

	entry := f.engine.Pit().Find(ndn.MustParseName("/a/x"))
	require.NotNil(t, entry)
	assert.Equal(t, []ndn.FaceID{10, 11, 12}, entry.InFaces())
	assert.Equal(t, []uint64{1, 2, 3}, entry.Nonces())

	// Nacks carrying any pending nonce advance to the next face, never reusing one
	f.nack(ndn.NackCongestion, "/a/x", 1, 1)
	f.nack(ndn.NackCongestion, "/a/x", 2, 2)
	assert.Equal(t, []ndn.FaceID{1, 2, 3}, entry.OutFaces())
	assert.Equal(t, []ndn.FaceID{1, 2, 3}, sentFaces(f.transport.Interests()))
	assert.Same(t, entry, f.engine.Pit().Find(ndn.MustParseName("/a/x")))
}

func TestDuplicateNonce(t *testing.T) {
	f := newFixture(t, nil)
	f.route("/a", 1, 1)

	f.interest("/a/x", 1, 10)
	f.interest("/a/x", 1, 11)

	assert.Len(t, f.transport.Interests(), 1)
	nacks := f.transport.Nacks()
	require.Len(t, nacks, 1)
	assert.Equal(t, ndn.FaceID(11), nacks[0].Face)
	assert.Equal(t, ndn.NackDuplicate, nacks[0].Packet.Nack.Reason)
	assert.Equal(t, uint64(1), nacks[0].Packet.Nack.Nonce())

	entry := f.engine.Pit().Find(ndn.MustParseName("/a/x"))
	assert.Equal(t, []ndn.FaceID{10}, entry.InFaces())
}

func TestAggregation(t *testing.T) {
	f := newFixture(t, nil)
	f.route("/a", 1, 1)

	f.interest("/a/x", 1, 10)
	f.interest("/a/x", 2, 11)
	require.Len(t, f.transport.Interests(), 1)
	assert.Equal(t, ndn.FaceID(1), f.transport.Interests()[0].Face)

	f.scheduler.Advance(30 * time.Millisecond)
	f.data("/a/x", 1)

	assert.ElementsMatch(t, []ndn.FaceID{10, 11}, sentFaces(f.transport.Data()))
	assert.Equal(t, 0, f.engine.PitSize())
	assert.Equal(t, 1, f.engine.CsSize())
	assert.Equal(t, uint64(1), f.engine.Counters().NSatisfiedInterests)

	rtt, ok := f.engine.FaceRtt(1)
	require.True(t, ok)
	assert.Equal(t, 30*time.Millisecond, rtt)
}

func TestExhaustionAllUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	for face := ndn.FaceID(1); face <= 3; face++ {
		f.route("/a", face, uint64(face))
		f.transport.SetAvailable(face, false)
	}

	f.interest("/a/x", 1, 10)
	f.interest("/a/y", 2, 11)

	assert.Empty(t, f.transport.Interests())
	nacks := f.transport.Nacks()
	require.Len(t, nacks, 2)
	assert.Equal(t, ndn.FaceID(10), nacks[0].Face)
	assert.Equal(t, ndn.NackCongestion, nacks[0].Packet.Nack.Reason)
	assert.Equal(t, ndn.FaceID(11), nacks[1].Face)
	assert.Equal(t, 0, f.engine.PitSize())
}

func TestExhaustionByRetryTimer(t *testing.T) {
	f := newFixture(t, nil)
	for face := ndn.FaceID(1); face <= 3; face++ {
		f.route("/a", face, uint64(face))
	}

	f.interest("/a/x", 1, 10)
	f.interest("/a/x", 2, 11)
	f.scheduler.Advance(time.Second)

	assert.Equal(t, []ndn.FaceID{1, 2, 3}, sentFaces(f.transport.Interests()))
	nacks := f.transport.Nacks()
	require.Len(t, nacks, 2)
	assert.Equal(t, []ndn.FaceID{10, 11}, sentFaces(nacks))
	// Each requester gets its own nonce back
	assert.Equal(t, uint64(1), nacks[0].Packet.Nack.Nonce())
	assert.Equal(t, uint64(2), nacks[1].Packet.Nack.Nonce())
	for _, nack := range nacks {
		assert.Equal(t, ndn.NackCongestion, nack.Packet.Nack.Reason)
	}
	assert.Equal(t, 0, f.engine.PitSize())
	assert.Equal(t, 0, f.scheduler.Pending())
	assert.Equal(t, uint64(1), f.engine.Counters().NUnsatisfiedInterests)
}

func TestNoRoute(t *testing.T) {
	f := newFixture(t, nil)
	f.route("/b", 1, 1)

	f.interest("/a/x", 1, 10)

	nacks := f.transport.Nacks()
	require.Len(t, nacks, 1)
	assert.Equal(t, ndn.FaceID(10), nacks[0].Face)
	assert.Equal(t, ndn.NackNoData, nacks[0].Packet.Nack.Reason)
	assert.Equal(t, 0, f.transport.AvailableCalls)
	assert.Equal(t, 0, f.engine.PitSize())
	assert.Equal(t, 0, f.scheduler.Pending())
}

func TestScenarioRetryThenCongestion(t *testing.T) {
	f := newFixture(t, nil)
	f.route("/a", 1, 1)
	f.route("/a", 2, 2)

	f.interest("/a/x", 7, 0)
	entry := f.engine.Pit().Find(ndn.MustParseName("/a/x"))
	require.NotNil(t, entry)
	assert.Equal(t, []ndn.FaceID{1}, entry.OutFaces())

	f.scheduler.Advance(50 * time.Millisecond)
	f.nack(ndn.NackCongestion, "/a/x", 7, 1)
	assert.Equal(t, []ndn.FaceID{1, 2}, entry.OutFaces())
	assert.Equal(t, []ndn.FaceID{1, 2}, sentFaces(f.transport.Interests()))
	assert.Empty(t, f.transport.Nacks())

	// The second attempt goes unanswered
	f.scheduler.Advance(200 * time.Millisecond)
	nacks := f.transport.Nacks()
	require.Len(t, nacks, 1)
	assert.Equal(t, ndn.FaceID(0), nacks[0].Face)
	assert.Equal(t, ndn.NackCongestion, nacks[0].Packet.Nack.Reason)
	assert.Equal(t, uint64(7), nacks[0].Packet.Nack.Nonce())
	assert.True(t, entry.IsClosed())
	assert.Equal(t, 0, f.engine.PitSize())
	assert.Len(t, f.transport.Interests(), 2)
}

func TestScenarioDataToAllRequesters(t *testing.T) {
	f := newFixture(t, nil)
	f.route("/a", 1, 1)

	f.interest("/a/x", 1, 0)
	f.interest("/a/x", 2, 3)
	f.data("/a/x", 1)

	assert.Equal(t, []ndn.FaceID{0, 3}, sentFaces(f.transport.Data()))
	assert.NotNil(t, f.engine.ContentStore().Find(ndn.MustParseName("/a/x")))
	assert.Nil(t, f.engine.Pit().Find(ndn.MustParseName("/a/x")))
	assert.Equal(t, 0, f.scheduler.Pending())
}

func TestDataNotEchoedToArrivalFace(t *testing.T) {
	f := newFixture(t, nil)
	f.route("/a", 1, 1)

	f.interest("/a/x", 1, 0)
	f.interest("/a/x", 2, 3)
	f.data("/a/x", 3)

	assert.Equal(t, []ndn.FaceID{0}, sentFaces(f.transport.Data()))
}

func TestUnsolicitedData(t *testing.T) {
	f := newFixture(t, nil)
	f.data("/a/x", 1)

	assert.Empty(t, f.transport.Sent)
	assert.Equal(t, 0, f.engine.CsSize())
	assert.Equal(t, uint64(1), f.engine.Counters().NInData)
}

func TestStaleNacks(t *testing.T) {
	f := newFixture(t, func(opts *fw.Options) {
		opts.RetryTimer = false
	})
	f.route("/a", 1, 1)
	f.route("/a", 2, 2)

	// No entry
	f.nack(ndn.NackCongestion, "/a/x", 1, 1)
	assert.Empty(t, f.transport.Sent)

	f.interest("/a/x", 1, 10)
	entry := f.engine.Pit().Find(ndn.MustParseName("/a/x"))

	// Unknown nonce
	f.nack(ndn.NackCongestion, "/a/x", 99, 1)
	assert.Equal(t, []ndn.FaceID{1}, entry.OutFaces())

	// Retry deadline already passed
	f.scheduler.Advance(201 * time.Millisecond)
	f.nack(ndn.NackCongestion, "/a/x", 1, 1)
	assert.Equal(t, []ndn.FaceID{1}, entry.OutFaces())
	assert.Len(t, f.transport.Interests(), 1)
	assert.Equal(t, uint64(3), f.engine.Counters().NInNacks)

	// A new Interest after the deadline re-forwards
	f.interest("/a/x", 2, 11)
	assert.Equal(t, []ndn.FaceID{1, 2}, entry.OutFaces())
	assert.Equal(t, []ndn.FaceID{10, 11}, entry.InFaces())
	assert.Len(t, f.transport.Interests(), 2)

	// A Nack for a closed entry does not resurrect it
	f.data("/a/x", 2)
	f.nack(ndn.NackCongestion, "/a/x", 2, 2)
	assert.Equal(t, 0, f.engine.PitSize())
	assert.Len(t, f.transport.Interests(), 2)
}

func TestForwardOnClosedEntryPanics(t *testing.T) {
	f := newFixture(t, nil)
	f.route("/a", 1, 1)

	interest := f.interest("/a/x", 1, 10)
	entry := f.engine.Pit().Find(interest.Name)
	f.data("/a/x", 1)

	assert.PanicsWithValue(t, core.ErrPitEntryClosed, func() {
		f.engine.Forward(interest, entry)
	})

	// An entry that is not the live one for its name is foreign
	other := newFixture(t, nil)
	other.route("/a", 1, 1)
	other.interest("/a/x", 3, 10)
	foreign := other.engine.Pit().Find(interest.Name)
	assert.PanicsWithValue(t, core.ErrPitEntryForeign, func() {
		f.engine.Forward(interest, foreign)
	})
}

func TestDeadNonceList(t *testing.T) {
	f := newFixture(t, nil)

	f.interest("/a/x", 1, 10)
	f.interest("/a/x", 1, 11)
	f.interest("/a/x", 2, 11)

	nacks := f.transport.Nacks()
	require.Len(t, nacks, 3)
	assert.Equal(t, ndn.NackNoData, nacks[0].Packet.Nack.Reason)
	assert.Equal(t, ndn.NackDuplicate, nacks[1].Packet.Nack.Reason)
	assert.Equal(t, ndn.NackNoData, nacks[2].Packet.Nack.Reason)

	// Entries expire with the list lifetime
	f.scheduler.Advance(7 * time.Second)
	f.interest("/a/x", 1, 11)
	assert.Equal(t, ndn.NackNoData, f.transport.Nacks()[3].Packet.Nack.Reason)
}

func TestStaleEntryReclamation(t *testing.T) {
	f := newFixture(t, func(opts *fw.Options) {
		opts.RetryTimer = false
	})
	f.route("/a", 1, 1)

	f.engine.ProcessInterest(&ndn.Interest{Name: ndn.MustParseName("/a/x"), Nonce: 1, Lifetime: time.Second, InFace: 10})
	f.scheduler.Advance(999 * time.Millisecond)
	f.interest("/b", 3, 10)
	assert.NotNil(t, f.engine.Pit().Find(ndn.MustParseName("/a/x")))

	// The next packet after the sweep interval sweeps lazily
	f.scheduler.Advance(100 * time.Millisecond)
	f.interest("/a/y", 2, 10)
	assert.Nil(t, f.engine.Pit().Find(ndn.MustParseName("/a/x")))
	assert.Equal(t, 1, f.engine.PitSize())
	assert.Len(t, f.transport.Nacks(), 1)
	assert.Equal(t, uint64(2), f.engine.Counters().NUnsatisfiedInterests)

	f.scheduler.Advance(5 * time.Second)
	assert.Equal(t, 1, f.engine.Sweep())
	assert.Equal(t, 0, f.engine.PitSize())
}

func TestRetransmissionAfterReclamation(t *testing.T) {
	f := newFixture(t, func(opts *fw.Options) {
		opts.RetryTimer = false
	})
	f.route("/a", 1, 1)

	f.engine.ProcessInterest(&ndn.Interest{Name: ndn.MustParseName("/a/x"), Nonce: 7, Lifetime: time.Second, InFace: 10})
	f.scheduler.Advance(1100 * time.Millisecond)
	assert.Equal(t, 1, f.engine.Sweep())
	assert.Equal(t, 0, f.engine.PitSize())
	assert.Empty(t, f.transport.Nacks())

	// The requester retransmits with the same nonce and is forwarded again
	f.engine.ProcessInterest(&ndn.Interest{Name: ndn.MustParseName("/a/x"), Nonce: 7, Lifetime: time.Second, InFace: 10})
	assert.Empty(t, f.transport.Nacks())
	assert.Equal(t, []ndn.FaceID{1, 1}, sentFaces(f.transport.Interests()))
	assert.Equal(t, 1, f.engine.PitSize())
}

func TestProbing(t *testing.T) {
	f := newFixture(t, func(opts *fw.Options) {
		opts.ProbeEvery = 1
	})
	f.route("/a", 1, 1)
	f.route("/a", 2, 2)
	f.route("/a", 3, 3)

	f.interest("/a/x", 7, 0)
	entry := f.engine.Pit().Find(ndn.MustParseName("/a/x"))
	interests := f.transport.Interests()
	require.Len(t, interests, 2)
	assert.Equal(t, ndn.FaceID(1), interests[0].Face)
	assert.Equal(t, uint64(7), interests[0].Packet.Interest.Nonce)
	assert.Equal(t, ndn.FaceID(2), interests[1].Face)
	probeNonce := interests[1].Packet.Interest.Nonce
	assert.NotEqual(t, uint64(7), probeNonce)
	assert.Equal(t, []ndn.FaceID{1}, entry.OutFaces())
	assert.True(t, entry.Probed(2))
	assert.False(t, entry.HasNonce(probeNonce))

	// A failed probe leaves the primary path alone
	f.nack(ndn.NackCongestion, "/a/x", probeNonce, 2)
	assert.Equal(t, []ndn.FaceID{1}, entry.OutFaces())
	assert.Len(t, f.transport.Interests(), 2)

	// A probed face is still eligible as the next primary
	f.nack(ndn.NackCongestion, "/a/x", 7, 1)
	interests = f.transport.Interests()
	require.Len(t, interests, 4)
	assert.Equal(t, ndn.FaceID(2), interests[2].Face)
	assert.Equal(t, uint64(7), interests[2].Packet.Interest.Nonce)
	assert.Equal(t, ndn.FaceID(3), interests[3].Face)
	assert.Equal(t, []ndn.FaceID{1, 2}, entry.OutFaces())
	assert.Equal(t, uint64(2), f.engine.Counters().NProbes)

	// A looped probe is a duplicate
	f.interest("/a/x", probeNonce, 5)
	assert.Equal(t, ndn.NackDuplicate, f.transport.Nacks()[0].Packet.Nack.Reason)

	// Data answering a probe satisfies the entry and measures the probed face
	f.scheduler.Advance(20 * time.Millisecond)
	f.data("/a/x", 3)
	assert.Equal(t, 0, f.engine.PitSize())
	rtt, ok := f.engine.FaceRtt(3)
	require.True(t, ok)
	assert.Equal(t, 20*time.Millisecond, rtt)
}

func TestLowestRttStrategy(t *testing.T) {
	f := newFixture(t, nil)
	f.route("/a", 1, 1)
	f.route("/a", 2, 2)
	f.engine.Fib().SetStrategy(ndn.MustParseName("/a"), fw.LowestRttName)

	f.interest("/a/1", 1, 0)
	f.scheduler.Advance(50 * time.Millisecond)
	f.data("/a/1", 1)

	f.interest("/a/2", 2, 0)
	f.scheduler.Advance(5 * time.Millisecond)
	f.nack(ndn.NackCongestion, "/a/2", 2, 1)
	f.scheduler.Advance(10 * time.Millisecond)
	f.data("/a/2", 2)

	f.transport.Reset()
	f.interest("/a/3", 3, 0)
	interests := f.transport.Interests()
	require.Len(t, interests, 1)
	assert.Equal(t, ndn.FaceID(2), interests[0].Face)
}

func TestUnknownStrategyFallsBack(t *testing.T) {
	f := newFixture(t, nil)
	f.route("/a", 1, 1)
	f.engine.Fib().SetStrategy(ndn.MustParseName("/a"), "no-such-strategy")

	f.interest("/a/x", 1, 0)
	assert.Equal(t, []ndn.FaceID{1}, sentFaces(f.transport.Interests()))
}

func TestCounters(t *testing.T) {
	f := newFixture(t, nil)
	f.route("/a", 1, 1)

	f.interest("/a/x", 1, 0)
	f.data("/a/x", 1)
	f.interest("/a/x", 2, 0)
	f.nack(ndn.NackCongestion, "/a/z", 1, 1)

	counters := f.engine.Counters()
	assert.Equal(t, uint64(2), counters.NInInterests)
	assert.Equal(t, uint64(1), counters.NInData)
	assert.Equal(t, uint64(1), counters.NInNacks)
	assert.Equal(t, uint64(1), counters.NOutInterests)
	assert.Equal(t, uint64(2), counters.NOutData)
	assert.Equal(t, uint64(0), counters.NOutNacks)
	assert.Equal(t, uint64(1), counters.NCsHits)
	assert.Equal(t, uint64(1), counters.NSatisfiedInterests)
}
