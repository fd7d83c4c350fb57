/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"strconv"
	"time"

	"github.com/named-data/ndnfwd/core"
	"github.com/named-data/ndnfwd/dispatch"
	"github.com/named-data/ndnfwd/ndn"
)

type pendingData struct {
	data   *ndn.Data
	inFace ndn.FaceID
}

// Thread runs one Engine on its own goroutine against the wall clock.
// Packets, timer expirations, and administrative calls are serialized through channels,
// so the engine sees one event at a time.
type Thread struct {
	threadID int
	engine   *Engine

	pendingInterests chan *ndn.Interest
	pendingDatas     chan pendingData
	pendingNacks     chan *ndn.Nack
	expiredTimers    chan *threadTimer
	calls            chan func()
	sweepInterval    time.Duration

	shouldQuit chan interface{}
	quit       chan interface{}
	HasQuit    chan interface{}
}

var _ dispatch.Scheduler = (*Thread)(nil)

type threadTimer struct {
	timer    *time.Timer
	callback func()
	done     bool // only accessed on the thread goroutine
}

// NewThread creates a forwarding thread and its engine.
func NewThread(id int, opts Options, transport dispatch.Transport) *Thread {
	t := new(Thread)
	t.threadID = id
	t.pendingInterests = make(chan *ndn.Interest, opts.QueueSize)
	t.pendingDatas = make(chan pendingData, opts.QueueSize)
	t.pendingNacks = make(chan *ndn.Nack, opts.QueueSize)
	t.expiredTimers = make(chan *threadTimer, opts.QueueSize)
	t.calls = make(chan func())
	t.sweepInterval = opts.SweepInterval
	if t.sweepInterval <= 0 {
		t.sweepInterval = DefaultOptions().SweepInterval
	}
	t.shouldQuit = make(chan interface{}, 1)
	t.quit = make(chan interface{})
	t.HasQuit = make(chan interface{})
	t.engine = NewEngine(id, opts, transport, t)
	return t
}

func (t *Thread) String() string {
	return "FwThread-" + strconv.Itoa(t.threadID)
}

// GetID returns the ID of the forwarding thread
func (t *Thread) GetID() int {
	return t.threadID
}

// Now returns the wall-clock time.
func (t *Thread) Now() time.Time {
	return time.Now()
}

// ScheduleAt runs callback on the thread once the wall clock reaches at.
func (t *Thread) ScheduleAt(at time.Time, callback func()) dispatch.Timer {
	timer := &threadTimer{callback: callback}
	timer.timer = time.AfterFunc(time.Until(at), func() {
		select {
		case t.expiredTimers <- timer:
		case <-t.quit:
		}
	})
	return timer
}

// Stop must be called from the thread goroutine, which is where the engine runs.
func (tt *threadTimer) Stop() bool {
	if tt.done {
		return false
	}
	tt.done = true
	tt.timer.Stop()
	return true
}

// TellToQuit tells the forwarding thread to quit
func (t *Thread) TellToQuit() {
	core.LogInfo(t, "Told to quit")
	t.shouldQuit <- true
}

// Run forwarding thread
func (t *Thread) Run() {
	sweepTicker := time.NewTicker(t.sweepInterval)
	defer sweepTicker.Stop()

	for {
		select {
		case interest := <-t.pendingInterests:
			t.engine.ProcessInterest(interest)
		case pending := <-t.pendingDatas:
			t.engine.ProcessData(pending.data, pending.inFace)
		case nack := <-t.pendingNacks:
			t.engine.ProcessNack(nack)
		case timer := <-t.expiredTimers:
			if !timer.done {
				timer.done = true
				timer.callback()
			}
		case call := <-t.calls:
			call()
		case <-sweepTicker.C:
			t.engine.Sweep()
		case <-t.shouldQuit:
			core.LogInfo(t, "Stopping thread")
			close(t.quit)
			t.HasQuit <- true
			return
		}
	}
}

// QueueInterest queues an Interest for processing by this forwarding thread.
func (t *Thread) QueueInterest(interest *ndn.Interest) {
	t.pendingInterests <- interest
}

// QueueData queues a Data packet that arrived on inFace for processing by this forwarding thread.
func (t *Thread) QueueData(data *ndn.Data, inFace ndn.FaceID) {
	t.pendingDatas <- pendingData{data: data, inFace: inFace}
}

// QueueNack queues a Nack for processing by this forwarding thread.
func (t *Thread) QueueNack(nack *ndn.Nack) {
	t.pendingNacks <- nack
}

// QueuePacket queues whichever packet is present.
func (t *Thread) QueuePacket(packet *ndn.Packet, inFace ndn.FaceID) {
	switch {
	case packet.Interest != nil:
		interest := *packet.Interest
		interest.InFace = inFace
		t.QueueInterest(&interest)
	case packet.Data != nil:
		t.QueueData(packet.Data, inFace)
	case packet.Nack != nil:
		nack := *packet.Nack
		nack.Interest.InFace = inFace
		t.QueueNack(&nack)
	}
}

// Do runs call on the thread with exclusive access to the engine and waits for it to return.
// It must not be called from the thread itself or after the thread has quit.
func (t *Thread) Do(call func(engine *Engine)) {
	done := make(chan struct{})
	t.calls <- func() {
		call(t.engine)
		close(done)
	}
	<-done
}

// Deliver processes packet as if it arrived on inFace and waits until the engine is done with it.
// Unlike QueuePacket, it is ordered with respect to Do.
func (t *Thread) Deliver(packet *ndn.Packet, inFace ndn.FaceID) {
	t.Do(func(engine *Engine) { engine.ProcessPacket(packet, inFace) })
}

// GetNumPitEntries returns the number of entries in this thread's PIT.
func (t *Thread) GetNumPitEntries() int {
	var n int
	t.Do(func(e *Engine) { n = e.PitSize() })
	return n
}

// GetNumCsEntries returns the number of entries in this thread's ContentStore.
func (t *Thread) GetNumCsEntries() int {
	var n int
	t.Do(func(e *Engine) { n = e.CsSize() })
	return n
}

// GetCounters returns a snapshot of the engine's counters.
func (t *Thread) GetCounters() Counters {
	var counters Counters
	t.Do(func(e *Engine) { counters = e.Counters() })
	return counters
}
