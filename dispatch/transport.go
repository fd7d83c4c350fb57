/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package dispatch

import "github.com/named-data/ndnfwd/ndn"

// Transport provides an interface that the packet transport can satisfy (to avoid circular dependency between faces and forwarding).
// Faces are referenced by ID only; the forwarder never owns them.
type Transport interface {
	// Transmit sends the packet on the face. Failure surfaces later as unavailability, never as an error.
	Transmit(face ndn.FaceID, packet *ndn.Packet)

	// Available returns whether the face can currently accept packets.
	Available(face ndn.FaceID) bool
}
