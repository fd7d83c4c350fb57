/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import "errors"

// Packet and name errors.
var (
	ErrBadName        = errors.New("name must begin with '/'")
	ErrBadEscape      = errors.New("could not decode escape sequence")
	ErrBadNackReason  = errors.New("nack reason out of range")
	ErrEmptyPacket    = errors.New("packet contains no Interest, Data, or Nack")
	ErrMissingName    = errors.New("packet is missing its name")
	ErrMissingNonce   = errors.New("interest is missing its nonce")
	ErrMissingPayload = errors.New("nack is missing its Interest fragment")
	ErrUnknownPacket  = errors.New("unknown packet type")
)
