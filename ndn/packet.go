/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"strconv"
	"time"
)

// FaceID identifies a forwarder interface. Faces are owned by the transport, never by the forwarder.
type FaceID uint64

func (f FaceID) String() string {
	return strconv.FormatUint(uint64(f), 10)
}

// DefaultInterestLifetime is assumed when an Interest does not carry a lifetime.
const DefaultInterestLifetime = 4 * time.Second

// Interest is a request for named content.
type Interest struct {
	Name Name
	// Nonce is chosen by the consumer and preserved across retransmissions of the same request.
	Nonce    uint64
	Lifetime time.Duration
	// InFace is the face the Interest arrived on. It is not encoded.
	InFace FaceID
}

// EffectiveLifetime returns the Interest lifetime, or DefaultInterestLifetime if unset.
func (i *Interest) EffectiveLifetime() time.Duration {
	if i.Lifetime <= 0 {
		return DefaultInterestLifetime
	}
	return i.Lifetime
}

func (i *Interest) String() string {
	return i.Name.String() + "[nonce=" + strconv.FormatUint(i.Nonce, 10) + "]"
}

// Data is a named content object.
type Data struct {
	Name    Name
	Payload []byte
	// Freshness bounds how long a cached copy may satisfy Interests.
	Freshness time.Duration
}

func (d *Data) String() string {
	return d.Name.String()
}

// NackReason indicates why an Interest could not be satisfied.
type NackReason uint8

// Known Nack reasons.
const (
	NackNone       NackReason = 0
	NackCongestion NackReason = 50
	NackDuplicate  NackReason = 100
	NackNoData     NackReason = 150
)

func (r NackReason) String() string {
	switch r {
	case NackNone:
		return "None"
	case NackCongestion:
		return "Congestion"
	case NackDuplicate:
		return "Duplicate"
	case NackNoData:
		return "NoData"
	}
	return "Unspecified(" + strconv.Itoa(int(r)) + ")"
}

// Nack is a negative acknowledgement carrying the Interest it refers to.
type Nack struct {
	Reason   NackReason
	Interest Interest
}

// MakeNack creates a Nack for the specified Interest.
func MakeNack(reason NackReason, interest Interest) Nack {
	return Nack{Reason: reason, Interest: interest}
}

// Name returns the name of the enclosed Interest.
func (n *Nack) Name() Name {
	return n.Interest.Name
}

// Nonce returns the nonce of the enclosed Interest.
func (n *Nack) Nonce() uint64 {
	return n.Interest.Nonce
}

func (n *Nack) String() string {
	return n.Interest.String() + "~" + n.Reason.String()
}

// Packet holds exactly one of Interest, Data, or Nack.
type Packet struct {
	Interest *Interest
	Data     *Data
	Nack     *Nack
}

// Name returns the name of the contained packet.
func (p *Packet) Name() Name {
	switch {
	case p.Interest != nil:
		return p.Interest.Name
	case p.Data != nil:
		return p.Data.Name
	case p.Nack != nil:
		return p.Nack.Name()
	}
	return Name{}
}

func (p *Packet) String() string {
	switch {
	case p.Interest != nil:
		return "Interest " + p.Interest.String()
	case p.Data != nil:
		return "Data " + p.Data.String()
	case p.Nack != nil:
		return "Nack " + p.Nack.String()
	}
	return "(empty)"
}
