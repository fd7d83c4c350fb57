/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package dispatchtest

import (
	"github.com/named-data/ndnfwd/dispatch"
	"github.com/named-data/ndnfwd/ndn"
)

// Sent is a packet handed to a RecordingTransport.
type Sent struct {
	Face   ndn.FaceID
	Packet *ndn.Packet
}

// RecordingTransport records transmitted packets. Every face is available unless marked otherwise.
type RecordingTransport struct {
	Sent        []Sent
	unavailable map[ndn.FaceID]bool
	// AvailableCalls counts availability queries.
	AvailableCalls int
	// OnTransmit, if set, is called after a packet is recorded.
	OnTransmit func(face ndn.FaceID, packet *ndn.Packet)
}

var _ dispatch.Transport = (*RecordingTransport)(nil)

// NewRecordingTransport creates a transport with all faces available.
func NewRecordingTransport() *RecordingTransport {
	return &RecordingTransport{unavailable: make(map[ndn.FaceID]bool)}
}

// Transmit records the packet.
func (t *RecordingTransport) Transmit(face ndn.FaceID, packet *ndn.Packet) {
	t.Sent = append(t.Sent, Sent{Face: face, Packet: packet})
	if t.OnTransmit != nil {
		t.OnTransmit(face, packet)
	}
}

// Available returns whether the face is marked available.
func (t *RecordingTransport) Available(face ndn.FaceID) bool {
	t.AvailableCalls++
	return !t.unavailable[face]
}

// SetAvailable marks the face up or down.
func (t *RecordingTransport) SetAvailable(face ndn.FaceID, available bool) {
	if available {
		delete(t.unavailable, face)
	} else {
		t.unavailable[face] = true
	}
}

// Reset forgets every recorded packet.
func (t *RecordingTransport) Reset() {
	t.Sent = nil
}

// SentTo returns the packets sent on the face, in order.
func (t *RecordingTransport) SentTo(face ndn.FaceID) []*ndn.Packet {
	var packets []*ndn.Packet
	for _, sent := range t.Sent {
		if sent.Face == face {
			packets = append(packets, sent.Packet)
		}
	}
	return packets
}

// Interests returns every Interest sent, with the face it was sent on.
func (t *RecordingTransport) Interests() []Sent {
	return t.filter(func(p *ndn.Packet) bool { return p.Interest != nil })
}

// Data returns every Data sent, with the face it was sent on.
func (t *RecordingTransport) Data() []Sent {
	return t.filter(func(p *ndn.Packet) bool { return p.Data != nil })
}

// Nacks returns every Nack sent, with the face it was sent on.
func (t *RecordingTransport) Nacks() []Sent {
	return t.filter(func(p *ndn.Packet) bool { return p.Nack != nil })
}

func (t *RecordingTransport) filter(match func(*ndn.Packet) bool) []Sent {
	var out []Sent
	for _, sent := range t.Sent {
		if match(sent.Packet) {
			out = append(out, sent)
		}
	}
	return out
}
