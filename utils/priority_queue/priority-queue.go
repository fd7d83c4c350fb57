/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package priority_queue

import (
	"container/heap"

	"golang.org/x/exp/constraints"
)

// Item is a handle to a value held in a Queue.
type Item[V any, P constraints.Ordered] struct {
	object   V
	priority P
	index    int
}

// Value returns the value held by the item.
func (it *Item[V, P]) Value() V {
	return it.object
}

// Priority returns the priority of the item.
func (it *Item[V, P]) Priority() P {
	return it.priority
}

type wrapper[V any, P constraints.Ordered] []*Item[V, P]

func (pq wrapper[V, P]) Len() int {
	return len(pq)
}

func (pq wrapper[V, P]) Less(i, j int) bool {
	return pq[i].priority < pq[j].priority
}

func (pq wrapper[V, P]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *wrapper[V, P]) Push(x any) {
	item := x.(*Item[V, P])
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *wrapper[V, P]) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // avoid memory leak
	item.index = -1 // for safety
	*pq = old[0 : n-1]
	return item
}

// Queue represents a priority queue with MINIMUM priority.
type Queue[V any, P constraints.Ordered] struct {
	pq wrapper[V, P]
}

// New creates a new priority queue. Not required to call.
func New[V any, P constraints.Ordered]() Queue[V, P] {
	return Queue[V, P]{wrapper[V, P]{}}
}

// Len returns the length of the priority queue.
func (pq *Queue[V, P]) Len() int {
	return len(pq.pq)
}

// Push pushes the 'value' onto the priority queue and returns its handle.
func (pq *Queue[V, P]) Push(value V, priority P) *Item[V, P] {
	item := &Item[V, P]{
		object:   value,
		priority: priority,
	}
	heap.Push(&pq.pq, item)
	return item
}

// Peek returns the minimum element of the priority queue without removing it.
func (pq *Queue[V, P]) Peek() V {
	return pq.pq[0].object
}

// PeekPriority returns the minimum element's priority.
func (pq *Queue[V, P]) PeekPriority() P {
	return pq.pq[0].priority
}

// Pop removes and returns the minimum element of the priority queue.
func (pq *Queue[V, P]) Pop() V {
	return heap.Pop(&pq.pq).(*Item[V, P]).object
}

// Update modifies the priority and value of the item in the queue.
// Returns false if the item is no longer queued.
func (pq *Queue[V, P]) Update(item *Item[V, P], value V, priority P) bool {
	if item.index < 0 || item.index >= len(pq.pq) || pq.pq[item.index] != item {
		return false
	}
	item.object = value
	item.priority = priority
	heap.Fix(&pq.pq, item.index)
	return true
}

// Remove removes the item from the queue, returning whether it was queued.
func (pq *Queue[V, P]) Remove(item *Item[V, P]) bool {
	if item.index < 0 || item.index >= len(pq.pq) || pq.pq[item.index] != item {
		return false
	}
	heap.Remove(&pq.pq, item.index)
	return true
}
