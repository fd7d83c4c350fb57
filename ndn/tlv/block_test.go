/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package tlv_test

import (
	"testing"

	"github.com/named-data/ndnfwd/ndn/tlv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVarNum(t *testing.T) {
	assert.Equal(t, []byte{0xFC}, tlv.EncodeVarNum(0xFC))
	assert.Equal(t, []byte{0xFD, 0x03, 0x20}, tlv.EncodeVarNum(0x0320))
	assert.Equal(t, []byte{0xFE, 0x00, 0x01, 0x00, 0x00}, tlv.EncodeVarNum(0x10000))
	assert.Len(t, tlv.EncodeVarNum(0x100000000), 9)

	v, n, err := tlv.DecodeVarNum([]byte{0xFD, 0x03, 0x21, 0xAA})
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0321), v)
	assert.Equal(t, 3, n)

	_, _, err = tlv.DecodeVarNum([]byte{0xFE, 0x00})
	assert.ErrorIs(t, err, tlv.ErrTooShort)
	_, _, err = tlv.DecodeVarNum(nil)
	assert.ErrorIs(t, err, tlv.ErrTooShort)
}

func TestNNI(t *testing.T) {
	assert.Equal(t, []byte{0x05}, tlv.EncodeNNI(5))
	assert.Equal(t, []byte{0x01, 0x00}, tlv.EncodeNNI(256))
	assert.Len(t, tlv.EncodeNNI(70000), 4)
	assert.Len(t, tlv.EncodeNNI(1<<40), 8)

	v, err := tlv.DecodeNNI([]byte{0x01, 0x00})
	require.NoError(t, err)
	assert.Equal(t, uint64(256), v)

	_, err = tlv.DecodeNNI(nil)
	assert.ErrorIs(t, err, tlv.ErrTooShort)
	_, err = tlv.DecodeNNI(make([]byte, 9))
	assert.ErrorIs(t, err, tlv.ErrTooLong)
}

func TestBlockNested(t *testing.T) {
	outer := tlv.NewParentBlock(0x07,
		tlv.NewBlock(0x08, []byte("a")),
		tlv.NewBlock(0x08, []byte("bc")),
	)
	outer.Append(tlv.NewNNIBlock(0x0C, 4000))
	wire := outer.Wire()
	assert.Equal(t, []byte{0x07, 0x0B, 0x08, 0x01, 'a', 0x08, 0x02, 'b', 'c', 0x0C, 0x02, 0x0F, 0xA0}, wire)

	decoded, n, err := tlv.DecodeBlock(append(wire, 0xFF))
	require.NoError(t, err)
	assert.Equal(t, len(wire), n)
	assert.Equal(t, uint32(0x07), decoded.Type())
	require.NoError(t, decoded.Parse())
	require.Len(t, decoded.Subelements(), 3)
	assert.Equal(t, []byte("bc"), decoded.Subelements()[1].Value())
	assert.NotNil(t, decoded.Find(0x0C))
	assert.Nil(t, decoded.Find(0x0A))
}

func TestDecodeBlockErrors(t *testing.T) {
	_, _, err := tlv.DecodeBlock([]byte{0x07})
	assert.ErrorIs(t, err, tlv.ErrMissingLength)

	_, _, err = tlv.DecodeBlock([]byte{0x07, 0x05, 0x01})
	assert.ErrorIs(t, err, tlv.ErrBufferTooShort)

	block, _, err := tlv.DecodeBlock([]byte{0x07, 0x02, 0x08, 0x05})
	require.NoError(t, err)
	assert.Error(t, block.Parse())
}
