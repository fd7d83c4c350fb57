/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

// Package ndnlayer exposes forwarder packets as a gopacket layer, so that frames can be captured and replayed.
package ndnlayer

import (
	"github.com/google/gopacket"
	"github.com/named-data/ndnfwd/ndn"
)

// LayerTypeNDN identifies the NDN layer.
var LayerTypeNDN = gopacket.RegisterLayerType(1636, gopacket.LayerTypeMetadata{
	Name:    "NDN",
	Decoder: gopacket.DecodeFunc(decodeNDN),
})

// NDN is the layer for a single Interest, Data, or Nack.
type NDN struct {
	Packet *ndn.Packet
	wire   []byte
}

var _ interface {
	gopacket.ApplicationLayer
	gopacket.DecodingLayer
	gopacket.SerializableLayer
} = &NDN{}

// LayerType returns LayerTypeNDN.
func (NDN) LayerType() gopacket.LayerType {
	return LayerTypeNDN
}

// LayerContents returns the TLV bytes.
func (l *NDN) LayerContents() []byte {
	return l.wire
}

// LayerPayload returns the Data payload, if any.
func (l *NDN) LayerPayload() []byte {
	if l.Packet != nil && l.Packet.Data != nil {
		return l.Packet.Data.Payload
	}
	return nil
}

// Payload implements gopacket.ApplicationLayer.
func (l *NDN) Payload() []byte {
	return l.LayerPayload()
}

// DecodeFromBytes decodes one packet. Input must contain exactly one TLV element.
func (l *NDN) DecodeFromBytes(wire []byte, df gopacket.DecodeFeedback) error {
	packet, err := ndn.DecodePacket(wire)
	if err != nil {
		return err
	}
	l.Packet = packet
	l.wire = wire
	return nil
}

// CanDecode implements gopacket.DecodingLayer.
func (NDN) CanDecode() gopacket.LayerClass {
	return LayerTypeNDN
}

// NextLayerType implements gopacket.DecodingLayer.
func (NDN) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

// SerializeTo implements gopacket.SerializableLayer.
func (l *NDN) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	if l.Packet == nil {
		return ndn.ErrEmptyPacket
	}
	wire, err := ndn.EncodePacket(l.Packet)
	if err != nil {
		return err
	}
	room, err := b.PrependBytes(len(wire))
	if err != nil {
		return err
	}
	copy(room, wire)
	return nil
}

func decodeNDN(wire []byte, p gopacket.PacketBuilder) error {
	l := &NDN{}
	if e := l.DecodeFromBytes(wire, p); e != nil {
		return e
	}
	p.AddLayer(l)
	p.SetApplicationLayer(l)
	return p.NextDecoder(gopacket.LayerTypePayload)
}

// Serialize encodes packet into a fresh buffer through the layer.
func Serialize(packet *ndn.Packet) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, gopacket.SerializeOptions{}, &NDN{Packet: packet}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse decodes wire as an NDN layer and returns the packet it carries.
func Parse(wire []byte) (*ndn.Packet, error) {
	pkt := gopacket.NewPacket(wire, LayerTypeNDN, gopacket.Default)
	if layer, ok := pkt.Layer(LayerTypeNDN).(*NDN); ok {
		return layer.Packet, nil
	}
	if fail := pkt.ErrorLayer(); fail != nil {
		return nil, fail.Error()
	}
	return nil, ndn.ErrUnknownPacket
}
