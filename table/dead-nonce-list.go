/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"encoding/binary"
	"time"

	"github.com/cespare/xxhash"
	"github.com/named-data/ndnfwd/ndn"
	pq "github.com/named-data/ndnfwd/utils/priority_queue"
)

// DeadNonceList remembers the (Name, nonce) pairs of closed PIT entries so that looping Interests can be detected after the entry is gone.
type DeadNonceList struct {
	list            map[uint64]bool
	expirationQueue pq.Queue[uint64, int64]
	lifetime        time.Duration
	clock           func() time.Time
}

// NewDeadNonceList creates a new Dead Nonce List. A zero lifetime disables it.
func NewDeadNonceList(opts Options, clock func() time.Time) *DeadNonceList {
	d := new(DeadNonceList)
	d.list = make(map[uint64]bool)
	d.expirationQueue = pq.New[uint64, int64]()
	d.lifetime = opts.DeadNonceListLifetime
	d.clock = clock
	return d
}

func deadNonceHash(name ndn.Name, nonce uint64) uint64 {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf, name.Hash())
	binary.BigEndian.PutUint64(buf[8:], nonce)
	return xxhash.Sum64(buf)
}

// Find returns whether the specified name and nonce combination are present in the Dead Nonce List.
func (d *DeadNonceList) Find(name ndn.Name, nonce uint64) bool {
	if d.lifetime <= 0 {
		return false
	}
	d.RemoveExpiredEntries()
	_, ok := d.list[deadNonceHash(name, nonce)]
	return ok
}

// Insert inserts an entry in the Dead Nonce List with the specified name and nonce.
// Returns whether nonce already present.
func (d *DeadNonceList) Insert(name ndn.Name, nonce uint64) bool {
	if d.lifetime <= 0 {
		return false
	}
	hash := deadNonceHash(name, nonce)
	_, exists := d.list[hash]

	if !exists {
		d.list[hash] = true
		d.expirationQueue.Push(hash, d.clock().Add(d.lifetime).UnixNano())
	}
	return exists
}

// RemoveExpiredEntries removes all expired entries from Dead Nonce List.
func (d *DeadNonceList) RemoveExpiredEntries() {
	now := d.clock().UnixNano()
	for d.expirationQueue.Len() > 0 && d.expirationQueue.PeekPriority() <= now {
		hash := d.expirationQueue.Pop()
		delete(d.list, hash)
	}
}

// Size returns the number of remembered pairs.
func (d *DeadNonceList) Size() int {
	return len(d.list)
}
