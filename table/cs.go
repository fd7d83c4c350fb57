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
	"github.com/named-data/ndnfwd/ndn"
)

// CsEntry is an entry in the Content Store.
type CsEntry struct {
	index         uint64 // the hash of the name, for fast lookup
	data          *ndn.Data
	insertionTime time.Time
}

// Name returns the name of the cached Data.
func (e *CsEntry) Name() ndn.Name {
	return e.data.Name
}

// Data returns the cached Data.
func (e *CsEntry) Data() *ndn.Data {
	return e.data
}

// InsertionTime returns when the Data was last inserted.
func (e *CsEntry) InsertionTime() time.Time {
	return e.insertionTime
}

// IsFresh returns whether the entry may still satisfy Interests at the specified time.
func (e *CsEntry) IsFresh(now time.Time) bool {
	return now.Sub(e.insertionTime) <= e.data.Freshness
}

// ContentStore is a bounded exact-match cache of Data packets owned by one engine.
type ContentStore struct {
	entries     map[uint64][]*CsEntry
	size        int
	capacity    int
	admit       bool
	serve       bool
	replacement CsReplacementPolicy
	clock       func() time.Time
}

// NewContentStore creates a Content Store that reads the current time from clock.
func NewContentStore(opts Options, clock func() time.Time) *ContentStore {
	cs := new(ContentStore)
	cs.entries = make(map[uint64][]*CsEntry)
	cs.capacity = opts.CsCapacity
	cs.admit = opts.CsAdmit
	cs.serve = opts.CsServe
	cs.clock = clock

	switch opts.CsReplacementPolicy {
	case "lru", "":
		cs.replacement = NewCsLRU(cs)
	default:
		core.LogFatal(cs, "Unknown CS replacement policy ", opts.CsReplacementPolicy)
	}
	return cs
}

func (cs *ContentStore) String() string {
	return "ContentStore"
}

func (cs *ContentStore) lookup(name ndn.Name, index uint64) (*CsEntry, int) {
	for i, entry := range cs.entries[index] {
		if entry.data.Name.Equals(name) {
			return entry, i
		}
	}
	return nil, -1
}

// Find returns the fresh cached Data with exactly the specified name, or nil.
// A stale entry is erased when found.
func (cs *ContentStore) Find(name ndn.Name) *ndn.Data {
	if !cs.serve {
		return nil
	}

	entry, _ := cs.lookup(name, name.Hash())
	if entry == nil {
		return nil
	}
	if !entry.IsFresh(cs.clock()) {
		core.LogTrace(cs, "Erasing stale entry name=", name.String())
		cs.erase(entry)
		return nil
	}
	cs.replacement.BeforeUse(entry)
	return entry.data
}

// Insert adds or replaces the entry for the Data's name, evicting entries if over capacity.
func (cs *ContentStore) Insert(data *ndn.Data) {
	if !cs.admit || cs.capacity <= 0 {
		return
	}

	index := data.Name.Hash()
	if entry, _ := cs.lookup(data.Name, index); entry != nil {
		entry.data = data
		entry.insertionTime = cs.clock()
		cs.replacement.AfterRefresh(entry)
		return
	}

	entry := &CsEntry{
		index:         index,
		data:          data,
		insertionTime: cs.clock(),
	}
	cs.entries[index] = append(cs.entries[index], entry)
	cs.size++
	cs.replacement.AfterInsert(entry)
	cs.replacement.EvictEntries()
}

// Erase removes the entry for the specified name, returning whether one existed.
func (cs *ContentStore) Erase(name ndn.Name) bool {
	entry, _ := cs.lookup(name, name.Hash())
	if entry == nil {
		return false
	}
	cs.erase(entry)
	return true
}

// Configure changes the capacity of the Content Store, evicting entries if necessary.
func (cs *ContentStore) Configure(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	cs.capacity = capacity
	cs.replacement.EvictEntries()
}

// SetAdmit sets whether Data will be admitted to the Content Store.
func (cs *ContentStore) SetAdmit(admit bool) {
	cs.admit = admit
}

// SetServe sets whether Data will be served from the Content Store.
func (cs *ContentStore) SetServe(serve bool) {
	cs.serve = serve
}

// Capacity returns the capacity of the Content Store.
func (cs *ContentStore) Capacity() int {
	return cs.capacity
}

// Size returns the number of entries in the Content Store.
func (cs *ContentStore) Size() int {
	return cs.size
}

func (cs *ContentStore) erase(entry *CsEntry) {
	cs.replacement.BeforeErase(entry)
	cs.eraseFromReplacementPolicy(entry)
}

// eraseFromReplacementPolicy removes the entry from the table without notifying the policy.
func (cs *ContentStore) eraseFromReplacementPolicy(entry *CsEntry) {
	bucket := cs.entries[entry.index]
	for i, existing := range bucket {
		if existing == entry {
			bucket[i] = bucket[len(bucket)-1]
			bucket[len(bucket)-1] = nil
			bucket = bucket[:len(bucket)-1]
			break
		}
	}
	if len(bucket) == 0 {
		delete(cs.entries, entry.index)
	} else {
		cs.entries[entry.index] = bucket
	}
	cs.size--
}
