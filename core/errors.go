/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import "errors"

// Error definitions
var (
	ErrConfigNotLoaded  = errors.New("configuration has not been loaded")
	ErrConfigType       = errors.New("configuration value has unexpected type")
	ErrPitEntryClosed   = errors.New("PIT entry is closed")
	ErrPitEntryForeign  = errors.New("PIT entry is not the live entry for its name")
	ErrPitEntryExists   = errors.New("PIT entry already exists for name")
	ErrDuplicateOutFace = errors.New("face already recorded as outgoing")
)
