/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package tlv

// TLV types used by the forwarder's wire format.
const (
	Interest             = 0x05
	Data                 = 0x06
	Name                 = 0x07
	GenericNameComponent = 0x08
	Nonce                = 0x0A
	InterestLifetime     = 0x0C
	MetaInfo             = 0x14
	Content              = 0x15
	FreshnessPeriod      = 0x19

	LpPacket   = 0x64
	LpFragment = 0x50
	Nack       = 0x0320
	NackReason = 0x0321
)
