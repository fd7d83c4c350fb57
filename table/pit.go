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
	"github.com/named-data/ndnfwd/dispatch"
	"github.com/named-data/ndnfwd/ndn"
	"github.com/named-data/ndnfwd/utils/comparison"
	pq "github.com/named-data/ndnfwd/utils/priority_queue"
)

// PitInRecord records an incoming Interest on a given face.
type PitInRecord struct {
	Face            ndn.FaceID
	LatestNonce     uint64
	LatestTimestamp time.Time
}

// PitOutRecord records an outgoing Interest on a given face.
type PitOutRecord struct {
	Face            ndn.FaceID
	LatestNonce     uint64
	LatestTimestamp time.Time
}

// PitEntry is the pending state of one outstanding Name.
// Warning: all methods must be called from the goroutine that owns the PIT.
type PitEntry struct {
	pit   *Pit
	name  ndn.Name
	index uint64

	interest ndn.Interest // latest Interest received for this name
	created  time.Time

	nonces     map[uint64]struct{}
	nonceOrder []uint64
	inRecords  []*PitInRecord
	outRecords []*PitOutRecord
	probes     []*PitOutRecord

	retryDeadline  time.Time
	expirationTime time.Time
	pqItem         *pq.Item[*PitEntry, int64]
	timer          dispatch.Timer
	closed         bool
}

func (e *PitEntry) String() string {
	return "PitEntry(" + e.name.String() + ")"
}

// Name returns the name of the entry.
func (e *PitEntry) Name() ndn.Name {
	return e.name
}

// Interest returns the latest Interest that reached this entry.
func (e *PitEntry) Interest() ndn.Interest {
	return e.interest
}

// CreationTime returns when the entry was created.
func (e *PitEntry) CreationTime() time.Time {
	return e.created
}

// HasNonce returns whether the nonce has been seen by this entry.
func (e *PitEntry) HasNonce(nonce uint64) bool {
	_, ok := e.nonces[nonce]
	return ok
}

// AddNonce records a nonce, returning false if it was already present.
func (e *PitEntry) AddNonce(nonce uint64) bool {
	if e.HasNonce(nonce) {
		return false
	}
	e.nonces[nonce] = struct{}{}
	e.nonceOrder = append(e.nonceOrder, nonce)
	return true
}

// Nonces returns the nonces seen by this entry in arrival order.
func (e *PitEntry) Nonces() []uint64 {
	return append([]uint64(nil), e.nonceOrder...)
}

// InRecord returns the in-record for the face, or nil.
func (e *PitEntry) InRecord(face ndn.FaceID) *PitInRecord {
	for _, record := range e.inRecords {
		if record.Face == face {
			return record
		}
	}
	return nil
}

// HasInFace returns whether the face has asked for this name.
func (e *PitEntry) HasInFace(face ndn.FaceID) bool {
	return e.InRecord(face) != nil
}

// InsertInRecord finds or inserts an in-record for the face, updating the
// metadata and returning whether there was already an in-record in the entry.
func (e *PitEntry) InsertInRecord(face ndn.FaceID, nonce uint64, now time.Time) (*PitInRecord, bool) {
	if record := e.InRecord(face); record != nil {
		record.LatestNonce = nonce
		record.LatestTimestamp = now
		return record, true
	}
	record := &PitInRecord{Face: face, LatestNonce: nonce, LatestTimestamp: now}
	e.inRecords = append(e.inRecords, record)
	return record, false
}

// InFaces returns the requesting faces in the order they first asked.
func (e *PitEntry) InFaces() []ndn.FaceID {
	faces := make([]ndn.FaceID, len(e.inRecords))
	for i, record := range e.inRecords {
		faces[i] = record.Face
	}
	return faces
}

// InRecords returns the in-records of the entry.
func (e *PitEntry) InRecords() []*PitInRecord {
	return append([]*PitInRecord(nil), e.inRecords...)
}

// HasOutFace returns whether the Interest has been forwarded on the face.
func (e *PitEntry) HasOutFace(face ndn.FaceID) bool {
	return e.OutRecord(face) != nil
}

// OutRecord returns the out-record for the face, or nil.
func (e *PitEntry) OutRecord(face ndn.FaceID) *PitOutRecord {
	for _, record := range e.outRecords {
		if record.Face == face {
			return record
		}
	}
	return nil
}

// InsertOutRecord records that the Interest was forwarded on the face.
// A face is tried at most once per entry, so a second record for the same face panics.
func (e *PitEntry) InsertOutRecord(face ndn.FaceID, nonce uint64, now time.Time) *PitOutRecord {
	if e.HasOutFace(face) {
		core.LogError(e, "Face ", face, " already used as outgoing")
		panic(core.ErrDuplicateOutFace)
	}
	record := &PitOutRecord{Face: face, LatestNonce: nonce, LatestTimestamp: now}
	e.outRecords = append(e.outRecords, record)
	return record
}

// OutFaces returns the faces the Interest has been forwarded on, in order.
func (e *PitEntry) OutFaces() []ndn.FaceID {
	faces := make([]ndn.FaceID, len(e.outRecords))
	for i, record := range e.outRecords {
		faces[i] = record.Face
	}
	return faces
}

// OutRecords returns the out-records of the entry.
func (e *PitEntry) OutRecords() []*PitOutRecord {
	return append([]*PitOutRecord(nil), e.outRecords...)
}

// Probed returns whether a probe has been sent on the face.
func (e *PitEntry) Probed(face ndn.FaceID) bool {
	return e.ProbeRecord(face) != nil
}

// ProbeRecord returns the record of the probe sent on the face, or nil.
func (e *PitEntry) ProbeRecord(face ndn.FaceID) *PitOutRecord {
	for _, record := range e.probes {
		if record.Face == face {
			return record
		}
	}
	return nil
}

// IsProbeNonce returns whether the nonce belongs to a probe sent by this entry.
func (e *PitEntry) IsProbeNonce(nonce uint64) bool {
	for _, record := range e.probes {
		if record.LatestNonce == nonce {
			return true
		}
	}
	return false
}

// MarkProbed records a probe on the face. Probes do not count as outgoing faces.
func (e *PitEntry) MarkProbed(face ndn.FaceID, nonce uint64, now time.Time) {
	if record := e.ProbeRecord(face); record != nil {
		record.LatestNonce = nonce
		record.LatestTimestamp = now
		return
	}
	e.probes = append(e.probes, &PitOutRecord{Face: face, LatestNonce: nonce, LatestTimestamp: now})
}

// RetryDeadline returns the time after which the entry may be forwarded again.
func (e *PitEntry) RetryDeadline() time.Time {
	return e.retryDeadline
}

// SetRetryDeadline arms the retry deadline, extending the entry's expiration if needed.
func (e *PitEntry) SetRetryDeadline(deadline time.Time) {
	e.retryDeadline = deadline
	if !e.closed {
		// The entry outlives its deadline by one more attempt
		attempt := comparison.Max(deadline.Sub(e.pit.clock()), time.Nanosecond)
		e.pit.extendExpiration(e, deadline.Add(attempt))
	}
}

// ExpirationTime returns when the entry becomes eligible for reclamation.
func (e *PitEntry) ExpirationTime() time.Time {
	return e.expirationTime
}

// SetTimer attaches the retry timer, stopping any previous one.
func (e *PitEntry) SetTimer(timer dispatch.Timer) {
	e.stopTimer()
	e.timer = timer
}

func (e *PitEntry) stopTimer() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// IsClosed returns whether the entry has been removed from its PIT.
func (e *PitEntry) IsClosed() bool {
	return e.closed
}

// Pit is the Pending Interest Table of one engine.
// Warning: all functions must be called in the same goroutine as the creation of the table.
type Pit struct {
	entries     map[uint64][]*PitEntry
	size        int
	maxLifetime time.Duration
	clock       func() time.Time

	expiryQueue pq.Queue[*PitEntry, int64]
}

// NewPit creates a PIT that reads the current time from clock.
func NewPit(opts Options, clock func() time.Time) *Pit {
	p := new(Pit)
	p.entries = make(map[uint64][]*PitEntry)
	p.maxLifetime = opts.PitMaxLifetime
	p.clock = clock
	p.expiryQueue = pq.New[*PitEntry, int64]()
	return p
}

func (p *Pit) String() string {
	return "PIT"
}

// Find returns the live entry for the name, or nil.
func (p *Pit) Find(name ndn.Name) *PitEntry {
	for _, entry := range p.entries[name.Hash()] {
		if entry.name.Equals(name) {
			return entry
		}
	}
	return nil
}

// Create inserts a fresh entry seeded with the Interest's nonce and incoming face.
// A name has at most one live entry, so creating a second one panics.
func (p *Pit) Create(interest *ndn.Interest) *PitEntry {
	if p.Find(interest.Name) != nil {
		core.LogError(p, "Entry already exists for name=", interest.Name.String())
		panic(core.ErrPitEntryExists)
	}

	now := p.clock()
	entry := &PitEntry{
		pit:      p,
		name:     interest.Name,
		index:    interest.Name.Hash(),
		interest: *interest,
		created:  now,
		nonces:   make(map[uint64]struct{}),
	}
	entry.AddNonce(interest.Nonce)
	entry.InsertInRecord(interest.InFace, interest.Nonce, now)
	entry.expirationTime = now.Add(p.lifetimeOf(interest))
	entry.pqItem = p.expiryQueue.Push(entry, entry.expirationTime.UnixNano())

	p.entries[entry.index] = append(p.entries[entry.index], entry)
	p.size++
	return entry
}

// Aggregate adds the Interest's incoming face and nonce to a live entry and extends its lifetime.
func (p *Pit) Aggregate(entry *PitEntry, interest *ndn.Interest) {
	now := p.clock()
	entry.InsertInRecord(interest.InFace, interest.Nonce, now)
	entry.AddNonce(interest.Nonce)
	entry.interest = *interest
	p.extendExpiration(entry, now.Add(p.lifetimeOf(interest)))
}

// Close removes the live entry for the name and stops its retry timer, returning the removed entry or nil.
func (p *Pit) Close(name ndn.Name) *PitEntry {
	entry := p.Find(name)
	if entry == nil {
		return nil
	}
	p.remove(entry)
	return entry
}

// Sweep removes every entry whose expiration time is not after now and returns the removed entries.
func (p *Pit) Sweep(now time.Time) []*PitEntry {
	var expired []*PitEntry
	for p.expiryQueue.Len() > 0 && p.expiryQueue.PeekPriority() <= now.UnixNano() {
		entry := p.expiryQueue.Peek()
		p.remove(entry)
		expired = append(expired, entry)
	}
	return expired
}

// NextExpiration returns the earliest expiration time of any entry.
func (p *Pit) NextExpiration() (time.Time, bool) {
	if p.expiryQueue.Len() == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, p.expiryQueue.PeekPriority()), true
}

// Size returns the number of live entries.
func (p *Pit) Size() int {
	return p.size
}

func (p *Pit) lifetimeOf(interest *ndn.Interest) time.Duration {
	if p.maxLifetime > 0 {
		return comparison.Min(interest.EffectiveLifetime(), p.maxLifetime)
	}
	return interest.EffectiveLifetime()
}

func (p *Pit) extendExpiration(entry *PitEntry, t time.Time) {
	if !t.After(entry.expirationTime) {
		return
	}
	entry.expirationTime = t
	if entry.pqItem != nil {
		p.expiryQueue.Update(entry.pqItem, entry, t.UnixNano())
	}
}

func (p *Pit) remove(entry *PitEntry) {
	bucket := p.entries[entry.index]
	for i, existing := range bucket {
		if existing == entry {
			bucket[i] = bucket[len(bucket)-1]
			bucket[len(bucket)-1] = nil
			bucket = bucket[:len(bucket)-1]
			break
		}
	}
	if len(bucket) == 0 {
		delete(p.entries, entry.index)
	} else {
		p.entries[entry.index] = bucket
	}
	p.size--

	if entry.pqItem != nil {
		p.expiryQueue.Remove(entry.pqItem)
		entry.pqItem = nil
	}
	entry.stopTimer()
	entry.closed = true
}
