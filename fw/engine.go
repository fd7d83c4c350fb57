/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/named-data/ndnfwd/core"
	"github.com/named-data/ndnfwd/dispatch"
	"github.com/named-data/ndnfwd/ndn"
	"github.com/named-data/ndnfwd/table"
)

// rttAlpha is the weight of a new sample in the per-face RTT average.
const rttAlpha = 0.125

// Counters holds the packet counters of an engine.
type Counters struct {
	NInInterests          uint64
	NInData               uint64
	NInNacks              uint64
	NOutInterests         uint64
	NOutData              uint64
	NOutNacks             uint64
	NCsHits               uint64
	NSatisfiedInterests   uint64
	NUnsatisfiedInterests uint64
	NProbes               uint64
}

// Engine is the Interest/Data forwarding engine of one node.
// It exclusively owns its Content Store, PIT, FIB, and Dead Nonce List.
// Warning: an Engine is not safe for concurrent use. All packets and timer callbacks must be delivered from one goroutine.
type Engine struct {
	id        int
	opts      Options
	transport dispatch.Transport
	scheduler dispatch.Scheduler

	cs            *table.ContentStore
	pit           *table.Pit
	fib           *table.Fib
	deadNonceList *table.DeadNonceList
	measurements  *table.Measurements

	strategies map[string]Strategy
	probing    ProbingPolicy
	nonces     *rand.Rand
	lastSweep  time.Time

	counters Counters
}

// NewEngine creates a forwarding engine that sends packets through transport and keeps time with scheduler.
func NewEngine(id int, opts Options, transport dispatch.Transport, scheduler dispatch.Scheduler) *Engine {
	e := new(Engine)
	e.id = id
	e.opts = opts
	e.transport = transport
	e.scheduler = scheduler

	e.cs = table.NewContentStore(opts.Options, scheduler.Now)
	e.pit = table.NewPit(opts.Options, scheduler.Now)
	e.fib = table.NewFib(opts.DefaultStrategy)
	e.deadNonceList = table.NewDeadNonceList(opts.Options, scheduler.Now)
	e.measurements = table.NewMeasurements()
	e.strategies = InstantiateStrategies(e)

	if opts.ProbeEvery > 0 || opts.ProbeInterval > 0 {
		e.probing = NewPeriodicProbing(opts.ProbeEvery, opts.ProbeInterval, e.measurements)
	} else {
		e.probing = NoProbing{}
	}

	seed := opts.NonceSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e.nonces = rand.New(rand.NewSource(seed))
	e.lastSweep = scheduler.Now()
	return e
}

func (e *Engine) String() string {
	return "FwEngine-" + strconv.Itoa(e.id)
}

// ProcessInterest handles an Interest that arrived on interest.InFace.
func (e *Engine) ProcessInterest(interest *ndn.Interest) {
	e.counters.NInInterests++
	e.maybeSweep()
	core.LogTrace(e, "OnIncomingInterest: ", interest.String(), ", FaceID=", interest.InFace)

	// Content Store hit never touches the PIT
	if data := e.cs.Find(interest.Name); data != nil {
		core.LogDebug(e, "Content Store hit for ", interest.Name.String(), " - reply on FaceID=", interest.InFace)
		e.counters.NCsHits++
		e.sendData(data, interest.InFace)
		return
	}

	if entry := e.pit.Find(interest.Name); entry != nil {
		if entry.HasNonce(interest.Nonce) || entry.IsProbeNonce(interest.Nonce) {
			core.LogDebug(e, "Duplicate nonce for ", interest.String(), " from FaceID=", interest.InFace, " - NACK")
			e.sendNack(ndn.NackDuplicate, interest, interest.InFace)
			return
		}

		e.pit.Aggregate(entry, interest)
		if e.scheduler.Now().After(entry.RetryDeadline()) {
			core.LogDebug(e, "Retry deadline passed for ", interest.Name.String(), " - re-forwarding")
			e.Forward(interest, entry)
			return
		}
		core.LogDebug(e, "Aggregated ", interest.String(), " from FaceID=", interest.InFace)
		return
	}

	if e.deadNonceList.Find(interest.Name, interest.Nonce) {
		core.LogDebug(e, "Interest ", interest.String(), " matches Dead Nonce List - NACK")
		e.sendNack(ndn.NackDuplicate, interest, interest.InFace)
		return
	}

	entry := e.pit.Create(interest)
	e.Forward(interest, entry)
}

// Forward sends the Interest on the next usable face of the longest-prefix FIB entry, or gives up on the PIT entry.
// The entry must be the live PIT entry for the Interest's name.
func (e *Engine) Forward(interest *ndn.Interest, entry *table.PitEntry) {
	if entry.IsClosed() {
		core.LogError(e, "Forward called on closed ", entry.String())
		panic(core.ErrPitEntryClosed)
	}
	if e.pit.Find(entry.Name()) != entry {
		core.LogError(e, "Forward called on foreign ", entry.String())
		panic(core.ErrPitEntryForeign)
	}

	fibEntry := e.fib.Find(interest.Name)
	if fibEntry == nil {
		core.LogDebug(e, "No route for ", interest.Name.String(), " - NACK NoData")
		e.giveUp(entry, ndn.NackNoData)
		return
	}

	strategy := e.strategyFor(interest.Name)
	face, ok := strategy.SelectInterface(fibEntry, entry)
	if !ok {
		core.LogDebug(e, "All faces tried or unavailable for ", interest.Name.String(), " - NACK Congestion")
		e.giveUp(entry, ndn.NackCongestion)
		return
	}

	now := e.scheduler.Now()
	deadline := now.Add(e.opts.RetryTimeout)
	entry.SetRetryDeadline(deadline)
	// Recorded before transmission, so a transport that re-enters the engine sees the face as tried
	entry.InsertOutRecord(face, interest.Nonce, now)
	e.armRetryTimer(entry, deadline)

	core.LogTrace(e, "Forwarding ", interest.String(), " to FaceID=", face, " via ", strategy.GetName())
	e.sendInterest(interest, face)

	if e.probing.ProbeDue(fibEntry, now) {
		e.sendProbe(interest, fibEntry, entry, strategy, face, now)
	}
}

func (e *Engine) sendProbe(interest *ndn.Interest, fibEntry *table.FibEntry, entry *table.PitEntry, strategy Strategy, primary ndn.FaceID, now time.Time) {
	face, ok := strategy.SelectProbe(fibEntry, entry, primary)
	if !ok {
		core.LogTrace(e, "Probe due for ", fibEntry.Prefix().String(), " but no face to probe")
		return
	}

	probe := *interest
	probe.Nonce = e.newNonce(entry)
	entry.MarkProbed(face, probe.Nonce, now)
	core.LogDebug(e, "Probing FaceID=", face, " with ", probe.String())
	e.counters.NProbes++
	e.sendInterest(&probe, face)
	e.probing.ProbeSent(fibEntry, now)
}

// ProcessNack handles a Nack from upstream by trying the next face for the Interest it carries.
// Nacks that do not match a live attempt are discarded.
func (e *Engine) ProcessNack(nack *ndn.Nack) {
	e.counters.NInNacks++
	e.maybeSweep()
	core.LogTrace(e, "OnIncomingNack: ", nack.String())

	entry := e.pit.Find(nack.Name())
	switch {
	case entry == nil:
		core.LogDebug(e, "Nack for ", nack.String(), " has no PIT entry - DROP")
		return
	case e.scheduler.Now().After(entry.RetryDeadline()):
		core.LogDebug(e, "Nack for ", nack.String(), " arrived after retry deadline - DROP")
		return
	case !entry.HasNonce(nack.Nonce()):
		core.LogDebug(e, "Nack for ", nack.String(), " does not match a pending nonce - DROP")
		return
	}

	interest := nack.Interest
	e.Forward(&interest, entry)
}

// ProcessData handles a Data that arrived on inFace. Unsolicited Data is dropped and not cached.
func (e *Engine) ProcessData(data *ndn.Data, inFace ndn.FaceID) {
	e.counters.NInData++
	e.maybeSweep()
	core.LogTrace(e, "OnIncomingData: ", data.String(), ", FaceID=", inFace)

	entry := e.pit.Find(data.Name)
	if entry == nil {
		core.LogDebug(e, "Unsolicited Data ", data.String(), " from FaceID=", inFace, " - DROP")
		return
	}

	e.cs.Insert(data)
	for _, face := range entry.InFaces() {
		if face == inFace {
			continue
		}
		e.sendData(data, face)
	}

	now := e.scheduler.Now()
	if record := entry.OutRecord(inFace); record != nil {
		e.recordRtt(inFace, now.Sub(record.LatestTimestamp))
	} else if record := entry.ProbeRecord(inFace); record != nil {
		e.recordRtt(inFace, now.Sub(record.LatestTimestamp))
	}

	core.LogDebug(e, "Satisfied ", entry.String())
	e.counters.NSatisfiedInterests++
	e.close(entry)
}

// ProcessPacket handles whichever packet is present, as if it arrived on inFace.
func (e *Engine) ProcessPacket(packet *ndn.Packet, inFace ndn.FaceID) {
	switch {
	case packet.Interest != nil:
		interest := *packet.Interest
		interest.InFace = inFace
		e.ProcessInterest(&interest)
	case packet.Data != nil:
		e.ProcessData(packet.Data, inFace)
	case packet.Nack != nil:
		nack := *packet.Nack
		nack.Interest.InFace = inFace
		e.ProcessNack(&nack)
	}
}

// Sweep reclaims PIT entries that outlived their Interests without being satisfied or given up.
// Reclaimed entries are dropped silently and their nonces are not remembered.
func (e *Engine) Sweep() int {
	now := e.scheduler.Now()
	e.lastSweep = now
	expired := e.pit.Sweep(now)
	for _, entry := range expired {
		core.LogDebug(e, "Reclaimed stale ", entry.String())
		e.counters.NUnsatisfiedInterests++
	}
	e.deadNonceList.RemoveExpiredEntries()
	return len(expired)
}

func (e *Engine) maybeSweep() {
	if e.scheduler.Now().Sub(e.lastSweep) >= e.opts.SweepInterval {
		e.Sweep()
	}
}

func (e *Engine) armRetryTimer(entry *table.PitEntry, deadline time.Time) {
	if !e.opts.RetryTimer {
		return
	}
	entry.SetTimer(e.scheduler.ScheduleAt(deadline, func() {
		e.onRetryTimeout(entry, deadline)
	}))
}

// onRetryTimeout re-forwards the entry if it is still live and still waiting on the same deadline.
func (e *Engine) onRetryTimeout(entry *table.PitEntry, deadline time.Time) {
	if entry.IsClosed() || e.pit.Find(entry.Name()) != entry || !entry.RetryDeadline().Equal(deadline) {
		core.LogTrace(e, "Stale retry timer for ", entry.Name().String(), " - ignored")
		return
	}
	core.LogDebug(e, "Retry timer expired for ", entry.String())
	interest := entry.Interest()
	e.Forward(&interest, entry)
}

// giveUp sends a Nack to every requesting face and closes the entry.
func (e *Engine) giveUp(entry *table.PitEntry, reason ndn.NackReason) {
	interest := entry.Interest()
	for _, record := range entry.InRecords() {
		nacked := interest
		nacked.Nonce = record.LatestNonce
		e.sendNack(reason, &nacked, record.Face)
	}
	e.counters.NUnsatisfiedInterests++
	e.close(entry)
}

func (e *Engine) close(entry *table.PitEntry) {
	e.rememberNonces(entry)
	e.pit.Close(entry.Name())
}

func (e *Engine) rememberNonces(entry *table.PitEntry) {
	for _, nonce := range entry.Nonces() {
		e.deadNonceList.Insert(entry.Name(), nonce)
	}
}

func (e *Engine) strategyFor(name ndn.Name) Strategy {
	strategyName := e.fib.FindStrategy(name)
	if strategy, ok := e.strategies[strategyName]; ok {
		return strategy
	}
	core.LogWarn(e, "Unknown strategy ", strategyName, " for ", name.String(), ", using ", BestRouteName)
	return e.strategies[BestRouteName]
}

func (e *Engine) newNonce(entry *table.PitEntry) uint64 {
	for {
		nonce := e.nonces.Uint64()
		if !entry.HasNonce(nonce) && !entry.IsProbeNonce(nonce) {
			return nonce
		}
	}
}

func rttKey(face ndn.FaceID) string {
	return "rtt/" + face.String()
}

func (e *Engine) recordRtt(face ndn.FaceID, rtt time.Duration) {
	avg := e.measurements.AddSampleToEWMA(rttKey(face), float64(rtt)/float64(time.Millisecond), rttAlpha)
	core.LogTrace(e, "RTT sample FaceID=", face, " ", rtt, " avg=", strconv.FormatFloat(avg, 'f', 3, 64), "ms")
}

func (e *Engine) faceRttMillis(face ndn.FaceID) (float64, bool) {
	return e.measurements.GetFloat(rttKey(face))
}

// FaceRtt returns the smoothed round-trip time measured on the face.
func (e *Engine) FaceRtt(face ndn.FaceID) (time.Duration, bool) {
	ms, ok := e.faceRttMillis(face)
	if !ok {
		return 0, false
	}
	return time.Duration(ms * float64(time.Millisecond)), true
}

func (e *Engine) sendInterest(interest *ndn.Interest, face ndn.FaceID) {
	e.counters.NOutInterests++
	out := *interest
	e.transport.Transmit(face, &ndn.Packet{Interest: &out})
}

func (e *Engine) sendData(data *ndn.Data, face ndn.FaceID) {
	e.counters.NOutData++
	e.transport.Transmit(face, &ndn.Packet{Data: data})
}

func (e *Engine) sendNack(reason ndn.NackReason, interest *ndn.Interest, face ndn.FaceID) {
	e.counters.NOutNacks++
	nack := ndn.MakeNack(reason, *interest)
	e.transport.Transmit(face, &ndn.Packet{Nack: &nack})
}

// ContentStore returns the engine's Content Store.
func (e *Engine) ContentStore() *table.ContentStore {
	return e.cs
}

// Pit returns the engine's PIT.
func (e *Engine) Pit() *table.Pit {
	return e.pit
}

// Fib returns the engine's FIB.
func (e *Engine) Fib() *table.Fib {
	return e.fib
}

// DeadNonceList returns the engine's Dead Nonce List.
func (e *Engine) DeadNonceList() *table.DeadNonceList {
	return e.deadNonceList
}

// Measurements returns the engine's measurements table.
func (e *Engine) Measurements() *table.Measurements {
	return e.measurements
}

// SetProbingPolicy replaces the probing policy.
func (e *Engine) SetProbingPolicy(policy ProbingPolicy) {
	if policy == nil {
		policy = NoProbing{}
	}
	e.probing = policy
}

// Counters returns a snapshot of the packet counters.
func (e *Engine) Counters() Counters {
	return e.counters
}

// PitSize returns the number of entries in the PIT.
func (e *Engine) PitSize() int {
	return e.pit.Size()
}

// CsSize returns the number of entries in the Content Store.
func (e *Engine) CsSize() int {
	return e.cs.Size()
}
