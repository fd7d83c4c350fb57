/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package dispatch

import "time"

// Timer is a callback scheduled with a Scheduler.
type Timer interface {
	// Stop cancels the callback, returning false if it already ran or was stopped.
	Stop() bool
}

// Scheduler provides the clock and timer primitives of the event loop driving a forwarder.
// Callbacks run on the same logical thread as packet processing, one at a time.
type Scheduler interface {
	Now() time.Time
	ScheduleAt(t time.Time, callback func()) Timer
}
