/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package tlv

import (
	"bytes"
	"math"
)

// Block contains an encoded block.
type Block struct {
	tlvType     uint32
	value       []byte
	subelements []*Block
}

///////////////
// Constructors
///////////////

// NewBlock creates a block containing the specified type and value.
func NewBlock(tlvType uint32, value []byte) *Block {
	var block Block
	block.tlvType = tlvType
	block.value = make([]byte, len(value))
	copy(block.value, value)
	return &block
}

// NewNNIBlock creates a block containing a non-negative integer value.
func NewNNIBlock(tlvType uint32, v uint64) *Block {
	return &Block{tlvType: tlvType, value: EncodeNNI(v)}
}

// NewParentBlock creates a block whose value is made of the specified subelements.
func NewParentBlock(tlvType uint32, subelements ...*Block) *Block {
	return &Block{tlvType: tlvType, subelements: subelements}
}

//////////
// Getters
//////////

// Type returns the type of the block.
func (b *Block) Type() uint32 {
	return b.tlvType
}

// Value returns the value contained in the block.
func (b *Block) Value() []byte {
	if len(b.subelements) > 0 {
		var buf bytes.Buffer
		for _, elem := range b.subelements {
			buf.Write(elem.Wire())
		}
		return buf.Bytes()
	}
	return b.value
}

// Subelements returns the sub-elements of the block.
func (b *Block) Subelements() []*Block {
	return b.subelements
}

//////////////
// Subelements
//////////////

// Append appends a subelement onto the end of the block's value.
func (b *Block) Append(block *Block) {
	b.subelements = append(b.subelements, block)
}

// Find returns the first subelement of the specified type, or nil if none exists.
func (b *Block) Find(tlvType uint32) *Block {
	for _, elem := range b.subelements {
		if elem.Type() == tlvType {
			return elem
		}
	}
	return nil
}

// Parse parses the block value into subelements.
func (b *Block) Parse() error {
	startPos := 0
	subelements := []*Block{}
	for startPos < len(b.value) {
		block, blockLen, err := DecodeBlock(b.value[startPos:])
		if err != nil {
			return err
		}
		subelements = append(subelements, block)
		startPos += blockLen
	}
	b.subelements = subelements
	return nil
}

////////////////////
// Encoding/Decoding
////////////////////

// Wire returns the wire-encoded block.
func (b *Block) Wire() []byte {
	value := b.Value()
	encodedType := EncodeVarNum(uint64(b.tlvType))
	encodedLength := EncodeVarNum(uint64(len(value)))

	var buf bytes.Buffer
	buf.Grow(len(encodedType) + len(encodedLength) + len(value))
	buf.Write(encodedType)
	buf.Write(encodedLength)
	buf.Write(value)
	return buf.Bytes()
}

// DecodeBlock decodes a block from the wire, returning the block and the number of bytes consumed.
func DecodeBlock(wire []byte) (*Block, int, error) {
	b := new(Block)

	// Decode TLV type
	tlvType, tlvTypeLen, err := DecodeVarNum(wire)
	if err != nil {
		return nil, 0, err
	}
	if tlvType > math.MaxUint32 {
		return nil, 0, ErrOutOfRange
	}
	b.tlvType = uint32(tlvType)

	// Decode TLV length (we don't store this because it's implicit from value slice length)
	if tlvTypeLen == len(wire) {
		return nil, 0, ErrMissingLength
	}
	tlvLength, tlvLengthLen, err := DecodeVarNum(wire[tlvTypeLen:])
	if err != nil {
		return nil, 0, err
	}

	// Decode TLV value
	headerLen := uint64(tlvTypeLen) + uint64(tlvLengthLen)
	if uint64(len(wire))-headerLen < tlvLength {
		return nil, 0, ErrBufferTooShort
	}
	b.value = make([]byte, tlvLength)
	copy(b.value, wire[headerLen:headerLen+tlvLength])

	return b, int(headerLen + tlvLength), nil
}
