/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"container/list"

	"github.com/named-data/ndnfwd/ndn"
	"golang.org/x/exp/slices"
)

// FibNextHop represents a nexthop in a FIB entry.
type FibNextHop struct {
	Face ndn.FaceID
	// Rank orders nexthops; lower is more preferred.
	Rank uint64

	seq uint64 // registration order, breaks ties in rank
}

// FibEntry represents a node in the FIB name tree.
type FibEntry struct {
	component ndn.Component
	name      ndn.Name
	depth     int

	parent   *FibEntry
	children []*FibEntry

	nexthops []*FibNextHop
	strategy string
}

// Prefix returns the name prefix of the entry.
func (f *FibEntry) Prefix() ndn.Name {
	return f.name
}

// NextHops returns the nexthops of the entry in rank order.
func (f *FibEntry) NextHops() []FibNextHop {
	nexthops := make([]FibNextHop, len(f.nexthops))
	for i, nexthop := range f.nexthops {
		nexthops[i] = *nexthop
	}
	return nexthops
}

// Strategy returns the strategy set at this entry, or the empty string.
func (f *FibEntry) Strategy() string {
	return f.strategy
}

func (f *FibEntry) findExactMatchEntry(name ndn.Name) *FibEntry {
	if name.Size() > f.depth {
		for _, child := range f.children {
			if name.At(child.depth - 1).Equals(child.component) {
				return child.findExactMatchEntry(name)
			}
		}
	} else if name.Size() == f.depth {
		return f
	}
	return nil
}

func (f *FibEntry) findLongestPrefixEntry(name ndn.Name) *FibEntry {
	if name.Size() > f.depth {
		for _, child := range f.children {
			if name.At(child.depth - 1).Equals(child.component) {
				return child.findLongestPrefixEntry(name)
			}
		}
	}
	return f
}

func (f *FibEntry) fillTreeToPrefix(name ndn.Name) *FibEntry {
	curNode := f.findLongestPrefixEntry(name)
	for depth := curNode.depth + 1; depth <= name.Size(); depth++ {
		newNode := new(FibEntry)
		newNode.component = name.At(depth - 1)
		newNode.name = name.Prefix(depth)
		newNode.depth = depth
		newNode.parent = curNode
		curNode.children = append(curNode.children, newNode)
		curNode = newNode
	}
	return curNode
}

func (f *FibEntry) pruneIfEmpty() {
	for curNode := f; curNode.parent != nil && len(curNode.children) == 0 && len(curNode.nexthops) == 0 && curNode.strategy == ""; curNode = curNode.parent {
		// Remove from parent's children
		siblings := curNode.parent.children
		for i, child := range siblings {
			if child == curNode {
				copy(siblings[i:], siblings[i+1:])
				siblings[len(siblings)-1] = nil
				curNode.parent.children = siblings[:len(siblings)-1]
				break
			}
		}
	}
}

// Fib is the Forwarding Information Base of one engine, a name tree that also holds per-prefix strategy choices.
type Fib struct {
	root    *FibEntry
	nextSeq uint64
	nRoutes int
}

// NewFib creates an empty FIB whose root carries the default strategy.
func NewFib(defaultStrategy string) *Fib {
	f := new(Fib)
	f.root = new(FibEntry)
	f.root.strategy = defaultStrategy
	return f
}

func (f *Fib) String() string {
	return "FIB"
}

// Find returns the longest-prefix matching entry that has at least one nexthop, or nil.
func (f *Fib) Find(name ndn.Name) *FibEntry {
	for curNode := f.root.findLongestPrefixEntry(name); curNode != nil; curNode = curNode.parent {
		if len(curNode.nexthops) > 0 {
			return curNode
		}
	}
	return nil
}

// FindExact returns the entry registered for exactly the prefix, or nil.
func (f *Fib) FindExact(prefix ndn.Name) *FibEntry {
	entry := f.root.findExactMatchEntry(prefix)
	if entry == nil || len(entry.nexthops) == 0 {
		return nil
	}
	return entry
}

// Install adds a nexthop for the prefix, or updates the rank of an existing one.
// An updated nexthop keeps its original registration order.
func (f *Fib) Install(prefix ndn.Name, face ndn.FaceID, rank uint64) {
	entry := f.root.fillTreeToPrefix(prefix)
	found := false
	for _, existing := range entry.nexthops {
		if existing.Face == face {
			existing.Rank = rank
			found = true
			break
		}
	}
	if !found {
		entry.nexthops = append(entry.nexthops, &FibNextHop{Face: face, Rank: rank, seq: f.nextSeq})
		f.nextSeq++
		f.nRoutes++
	}

	slices.SortStableFunc(entry.nexthops, func(a, b *FibNextHop) bool {
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.seq < b.seq
	})
}

// Remove removes the nexthop from the prefix, returning whether it existed.
func (f *Fib) Remove(prefix ndn.Name, face ndn.FaceID) bool {
	entry := f.root.findExactMatchEntry(prefix)
	if entry == nil {
		return false
	}
	for i, existing := range entry.nexthops {
		if existing.Face == face {
			entry.nexthops = append(entry.nexthops[:i], entry.nexthops[i+1:]...)
			f.nRoutes--
			entry.pruneIfEmpty()
			return true
		}
	}
	return false
}

// Clear removes every nexthop of the prefix.
func (f *Fib) Clear(prefix ndn.Name) {
	entry := f.root.findExactMatchEntry(prefix)
	if entry == nil {
		return
	}
	f.nRoutes -= len(entry.nexthops)
	entry.nexthops = nil
	entry.pruneIfEmpty()
}

// Entries returns all entries that have nexthops, in canonical name order.
func (f *Fib) Entries() []*FibEntry {
	return f.collect(func(e *FibEntry) bool { return len(e.nexthops) > 0 })
}

// Size returns the number of nexthop registrations.
func (f *Fib) Size() int {
	return f.nRoutes
}

// SetStrategy sets the strategy for the specified prefix.
func (f *Fib) SetStrategy(prefix ndn.Name, strategy string) {
	entry := f.root.fillTreeToPrefix(prefix)
	entry.strategy = strategy
}

// UnsetStrategy unsets the strategy for the specified prefix. The root strategy cannot be unset.
func (f *Fib) UnsetStrategy(prefix ndn.Name) {
	entry := f.root.findExactMatchEntry(prefix)
	if entry == nil || entry == f.root {
		return
	}
	entry.strategy = ""
	entry.pruneIfEmpty()
}

// FindStrategy returns the longest-prefix matching strategy choice for the name.
func (f *Fib) FindStrategy(name ndn.Name) string {
	for curNode := f.root.findLongestPrefixEntry(name); curNode != nil; curNode = curNode.parent {
		if curNode.strategy != "" {
			return curNode.strategy
		}
	}
	return ""
}

// StrategyChoices returns all entries that carry a strategy choice, in canonical name order.
func (f *Fib) StrategyChoices() []*FibEntry {
	return f.collect(func(e *FibEntry) bool { return e.strategy != "" })
}

func (f *Fib) collect(match func(*FibEntry) bool) []*FibEntry {
	entries := make([]*FibEntry, 0)
	// Walk tree in-order
	queue := list.New()
	queue.PushBack(f.root)
	for queue.Len() > 0 {
		entry := queue.Remove(queue.Front()).(*FibEntry)
		for _, child := range entry.children {
			queue.PushBack(child)
		}
		if match(entry) {
			entries = append(entries, entry)
		}
	}
	slices.SortFunc(entries, func(a, b *FibEntry) bool {
		return a.name.Compare(b.name) < 0
	})
	return entries
}
