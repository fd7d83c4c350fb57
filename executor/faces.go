/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package executor

import (
	"sync"

	"github.com/named-data/ndnfwd/core"
	"github.com/named-data/ndnfwd/dispatch"
	"github.com/named-data/ndnfwd/ndn"
	"github.com/named-data/ndnfwd/ndn/ndnlayer"
)

// Sink receives the wire encoding of every packet transmitted on a face.
type Sink func(face ndn.FaceID, packet *ndn.Packet, wire []byte)

// LogSink logs every transmitted packet.
func LogSink(face ndn.FaceID, packet *ndn.Packet, wire []byte) {
	core.LogInfo("FaceTable", "Sent ", packet, " on ", face, " (", len(wire), " bytes)")
}

type faceState struct {
	available bool
	nOut      uint64
}

// FaceTable is the set of faces a node transmits on. It is safe for concurrent use.
type FaceTable struct {
	mutex sync.RWMutex
	faces map[ndn.FaceID]*faceState
	sink  Sink
}

var _ dispatch.Transport = (*FaceTable)(nil)

// NewFaceTable creates an empty face table. A nil sink logs.
func NewFaceTable(sink Sink) *FaceTable {
	if sink == nil {
		sink = LogSink
	}
	return &FaceTable{
		faces: make(map[ndn.FaceID]*faceState),
		sink:  sink,
	}
}

func (f *FaceTable) String() string {
	return "FaceTable"
}

// Add adds a face, or updates its availability if it exists.
func (f *FaceTable) Add(face ndn.FaceID, available bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if state, ok := f.faces[face]; ok {
		state.available = available
		return
	}
	f.faces[face] = &faceState{available: available}
}

// SetAvailable changes whether a known face can be used. It returns false for unknown faces.
func (f *FaceTable) SetAvailable(face ndn.FaceID, available bool) bool {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	state, ok := f.faces[face]
	if !ok {
		return false
	}
	state.available = available
	return true
}

// Available returns whether face is known and up.
func (f *FaceTable) Available(face ndn.FaceID) bool {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	state, ok := f.faces[face]
	return ok && state.available
}

// NOut returns the number of packets transmitted on face.
func (f *FaceTable) NOut(face ndn.FaceID) uint64 {
	f.mutex.RLock()
	defer f.mutex.RUnlock()
	if state, ok := f.faces[face]; ok {
		return state.nOut
	}
	return 0
}

// Transmit encodes packet and hands it to the sink.
func (f *FaceTable) Transmit(face ndn.FaceID, packet *ndn.Packet) {
	f.mutex.Lock()
	state, ok := f.faces[face]
	if ok {
		state.nOut++
	}
	f.mutex.Unlock()
	if !ok {
		core.LogWarn(f, "Dropping ", packet, " for unknown face ", face)
		return
	}

	wire, err := ndnlayer.Serialize(packet)
	if err != nil {
		core.LogWarn(f, "Unable to encode ", packet, ": ", err)
		return
	}
	f.sink(face, packet, wire)
}
