/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/named-data/ndnfwd/ndn/tlv"
)

func encodeName(n Name) *tlv.Block {
	block := tlv.NewParentBlock(tlv.Name)
	for _, component := range n.components {
		block.Append(tlv.NewBlock(tlv.GenericNameComponent, []byte(component.value)))
	}
	return block
}

func decodeName(block *tlv.Block) (Name, error) {
	if err := block.Parse(); err != nil {
		return Name{}, err
	}
	n := Name{}
	for _, elem := range block.Subelements() {
		n.components = append(n.components, Component{value: string(elem.Value())})
	}
	return n, nil
}

func encodeInterest(i *Interest) *tlv.Block {
	block := tlv.NewParentBlock(tlv.Interest, encodeName(i.Name))
	nonce := make([]byte, 8)
	binary.BigEndian.PutUint64(nonce, i.Nonce)
	block.Append(tlv.NewBlock(tlv.Nonce, nonce))
	if i.Lifetime > 0 {
		block.Append(tlv.NewNNIBlock(tlv.InterestLifetime, uint64(i.Lifetime/time.Millisecond)))
	}
	return block
}

// Encode encodes the Interest into its wire format.
func (i *Interest) Encode() []byte {
	return encodeInterest(i).Wire()
}

// Encode encodes the Data into its wire format.
func (d *Data) Encode() []byte {
	block := tlv.NewParentBlock(tlv.Data, encodeName(d.Name))
	if d.Freshness > 0 {
		block.Append(tlv.NewParentBlock(tlv.MetaInfo,
			tlv.NewNNIBlock(tlv.FreshnessPeriod, uint64(d.Freshness/time.Millisecond))))
	}
	block.Append(tlv.NewBlock(tlv.Content, d.Payload))
	return block.Wire()
}

// Encode encodes the Nack as an NDNLPv2 packet with the Interest as its fragment.
func (n *Nack) Encode() []byte {
	return tlv.NewParentBlock(tlv.LpPacket,
		tlv.NewParentBlock(tlv.Nack, tlv.NewNNIBlock(tlv.NackReason, uint64(n.Reason))),
		tlv.NewBlock(tlv.LpFragment, n.Interest.Encode()),
	).Wire()
}

// EncodePacket encodes whichever packet is present.
func EncodePacket(p *Packet) ([]byte, error) {
	switch {
	case p.Interest != nil:
		return p.Interest.Encode(), nil
	case p.Data != nil:
		return p.Data.Encode(), nil
	case p.Nack != nil:
		return p.Nack.Encode(), nil
	}
	return nil, ErrEmptyPacket
}

// DecodePacket decodes a single Interest, Data, or Nack from the wire.
func DecodePacket(wire []byte) (*Packet, error) {
	block, _, err := tlv.DecodeBlock(wire)
	if err != nil {
		return nil, err
	}
	return decodePacketBlock(block)
}

func decodePacketBlock(block *tlv.Block) (*Packet, error) {
	if err := block.Parse(); err != nil {
		return nil, err
	}

	switch block.Type() {
	case tlv.Interest:
		interest, err := decodeInterest(block)
		if err != nil {
			return nil, err
		}
		return &Packet{Interest: interest}, nil
	case tlv.Data:
		data, err := decodeData(block)
		if err != nil {
			return nil, err
		}
		return &Packet{Data: data}, nil
	case tlv.LpPacket:
		nack, err := decodeNack(block)
		if err != nil {
			return nil, err
		}
		return &Packet{Nack: nack}, nil
	}
	return nil, ErrUnknownPacket
}

func decodeInterest(block *tlv.Block) (*Interest, error) {
	interest := new(Interest)
	nameBlock := block.Find(tlv.Name)
	if nameBlock == nil {
		return nil, ErrMissingName
	}
	var err error
	if interest.Name, err = decodeName(nameBlock); err != nil {
		return nil, err
	}

	nonceBlock := block.Find(tlv.Nonce)
	if nonceBlock == nil {
		return nil, ErrMissingNonce
	}
	if interest.Nonce, err = tlv.DecodeNNI(nonceBlock.Value()); err != nil {
		return nil, err
	}

	if lifetimeBlock := block.Find(tlv.InterestLifetime); lifetimeBlock != nil {
		lifetime, err := tlv.DecodeNNI(lifetimeBlock.Value())
		if err != nil {
			return nil, err
		}
		interest.Lifetime = time.Duration(lifetime) * time.Millisecond
	}
	return interest, nil
}

func decodeData(block *tlv.Block) (*Data, error) {
	data := new(Data)
	nameBlock := block.Find(tlv.Name)
	if nameBlock == nil {
		return nil, ErrMissingName
	}
	var err error
	if data.Name, err = decodeName(nameBlock); err != nil {
		return nil, err
	}

	if metaInfo := block.Find(tlv.MetaInfo); metaInfo != nil {
		if err := metaInfo.Parse(); err != nil {
			return nil, err
		}
		if freshness := metaInfo.Find(tlv.FreshnessPeriod); freshness != nil {
			period, err := tlv.DecodeNNI(freshness.Value())
			if err != nil {
				return nil, err
			}
			data.Freshness = time.Duration(period) * time.Millisecond
		}
	}

	if content := block.Find(tlv.Content); content != nil {
		data.Payload = content.Value()
	}
	return data, nil
}

func decodeNack(block *tlv.Block) (*Nack, error) {
	nack := new(Nack)
	nackBlock := block.Find(tlv.Nack)
	if nackBlock == nil {
		return nil, tlv.ErrUnexpected
	}
	if err := nackBlock.Parse(); err != nil {
		return nil, err
	}
	if reasonBlock := nackBlock.Find(tlv.NackReason); reasonBlock != nil {
		reason, err := tlv.DecodeNNI(reasonBlock.Value())
		if err != nil {
			return nil, err
		}
		if reason > math.MaxUint8 {
			return nil, ErrBadNackReason
		}
		nack.Reason = NackReason(reason)
	}

	fragment := block.Find(tlv.LpFragment)
	if fragment == nil {
		return nil, ErrMissingPayload
	}
	interestBlock, _, err := tlv.DecodeBlock(fragment.Value())
	if err != nil {
		return nil, err
	}
	if interestBlock.Type() != tlv.Interest {
		return nil, tlv.ErrUnexpected
	}
	if err := interestBlock.Parse(); err != nil {
		return nil, err
	}
	interest, err := decodeInterest(interestBlock)
	if err != nil {
		return nil, err
	}
	nack.Interest = *interest
	return nack, nil
}
