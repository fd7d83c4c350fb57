/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"errors"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
)

func TestGenerateLogMessage(t *testing.T) {
	msg := generateLogMessage("Engine", "face=", uint64(3), " ok=", true, " err=", errors.New("boom"), " after ", 2*time.Second)
	assert.Equal(t, "[Engine] face=3 ok=true err=boom after 2s", msg)
}

func TestLogLevels(t *testing.T) {
	handler := memory.New()
	log.SetHandler(handler)
	defer SetLogLevel("INFO")

	SetLogLevel("WARN")
	LogInfo("Test", "hidden")
	LogWarn("Test", "shown")
	assert.Len(t, handler.Entries, 1)
	assert.Equal(t, "[Test] shown", handler.Entries[0].Message)

	SetLogLevel("TRACE")
	LogTrace("Test", "trace")
	LogDebug("Test", "debug")
	assert.Len(t, handler.Entries, 3)
	assert.Equal(t, log.DebugLevel, handler.Entries[1].Level)

	SetLogLevel("DEBUG")
	LogTrace("Test", "not traced")
	assert.Len(t, handler.Entries, 3)

	SetLogLevel("bogus")
	LogDebug("Test", "not shown")
	LogError("Test", "error")
	assert.Len(t, handler.Entries, 4)
}
