/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"time"

	"github.com/cornelk/hashmap"
)

// Measurements is a per-engine table of counters and moving averages keyed by string.
type Measurements struct {
	table *hashmap.HashMap
}

// NewMeasurements creates an empty measurements table.
func NewMeasurements() *Measurements {
	return &Measurements{table: hashmap.New(64)}
}

// Get returns the measurement table value at the specified key or nil if it does not exist.
func (m *Measurements) Get(key string) interface{} {
	value, isOk := m.table.GetStringKey(key)
	if !isOk {
		return nil
	}
	return value
}

// Set overwrites the value at the specified key.
func (m *Measurements) Set(key string, value interface{}) {
	m.table.Set(key, value)
}

// Delete removes the specified key.
func (m *Measurements) Delete(key string) {
	m.table.Del(key)
}

// Len returns the number of keys in the table.
func (m *Measurements) Len() int {
	return m.table.Len()
}

// GetInt returns the integer at the specified key, or zero.
func (m *Measurements) GetInt(key string) int {
	if value, ok := m.Get(key).(int); ok {
		return value
	}
	return 0
}

// GetFloat returns the float at the specified key and whether it exists.
func (m *Measurements) GetFloat(key string) (float64, bool) {
	value, ok := m.Get(key).(float64)
	return value, ok
}

// AddToInt adds the specified value to the given measurement key, setting as value if unitialized.
// Returns the new value.
func (m *Measurements) AddToInt(key string, value int) int {
	newValue := m.GetInt(key) + value
	m.Set(key, newValue)
	return newValue
}

// SetInt overwrites the integer at the specified key.
func (m *Measurements) SetInt(key string, value int) {
	m.Set(key, value)
}

// GetTime returns the timestamp at the specified key and whether it exists.
func (m *Measurements) GetTime(key string) (time.Time, bool) {
	value, ok := m.Get(key).(int64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(0, value), true
}

// SetTime overwrites the timestamp at the specified key.
func (m *Measurements) SetTime(key string, t time.Time) {
	m.Set(key, t.UnixNano())
}

// AddSampleToEWMA adds a sample to an exponentially weighted moving average and returns the new average.
func (m *Measurements) AddSampleToEWMA(key string, sample float64, alpha float64) float64 {
	newValue := sample
	if expected, ok := m.GetFloat(key); ok {
		newValue = expected + alpha*(sample-expected)
	}
	m.Set(key, newValue)
	return newValue
}
