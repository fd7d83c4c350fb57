/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"math"
	"time"

	"github.com/pelletier/go-toml"
)

var config = emptyConfig()

func emptyConfig() *toml.Tree {
	tree, _ := toml.TreeFromMap(map[string]interface{}{})
	return tree
}

// LoadConfig loads the forwarder configuration from the specified TOML file.
func LoadConfig(file string) error {
	tree, err := toml.LoadFile(file)
	if err != nil {
		return err
	}
	config = tree
	return nil
}

// LoadConfigString loads the forwarder configuration from a TOML document.
func LoadConfigString(content string) error {
	tree, err := toml.Load(content)
	if err != nil {
		return err
	}
	config = tree
	return nil
}

// ResetConfig discards any loaded configuration, so that every getter returns its default.
func ResetConfig() {
	config = emptyConfig()
}

// GetConfigIntDefault returns the integer configuration value at the specified key or the specified default value if it does not exist.
func GetConfigIntDefault(key string, def int) int {
	valRaw := config.Get(key)
	if valRaw == nil {
		return def
	}
	val, ok := valRaw.(int64)
	if ok && val >= math.MinInt32 && val <= math.MaxInt32 {
		return int(val)
	}
	return def
}

// GetConfigUint64Default returns the non-negative integer configuration value at the specified key or the specified default value.
func GetConfigUint64Default(key string, def uint64) uint64 {
	valRaw := config.Get(key)
	if valRaw == nil {
		return def
	}
	val, ok := valRaw.(int64)
	if ok && val >= 0 {
		return uint64(val)
	}
	return def
}

// GetConfigBoolDefault returns the boolean configuration value at the specified key or the specified default value if it does not exist.
func GetConfigBoolDefault(key string, def bool) bool {
	valRaw := config.Get(key)
	if valRaw == nil {
		return def
	}
	val, ok := valRaw.(bool)
	if ok {
		return val
	}
	return def
}

// GetConfigStringDefault returns the string configuration value at the specified key or the specified default value if it does not exist.
func GetConfigStringDefault(key string, def string) string {
	valRaw := config.Get(key)
	if valRaw == nil {
		return def
	}
	val, ok := valRaw.(string)
	if ok {
		return val
	}
	return def
}

// GetConfigDurationDefault interprets the integer value at the specified key as milliseconds.
func GetConfigDurationDefault(key string, def time.Duration) time.Duration {
	valRaw := config.Get(key)
	if valRaw == nil {
		return def
	}
	val, ok := valRaw.(int64)
	if ok && val >= 0 {
		return time.Duration(val) * time.Millisecond
	}
	return def
}

// GetConfigArrayString returns the configuration array value at the specified key or nil if it does not exist.
func GetConfigArrayString(key string) []string {
	array := config.GetArray(key)
	if array == nil {
		return nil
	}
	if val, ok := array.([]string); ok {
		return val
	}
	return nil
}

// GetConfigTables returns the array of tables at the specified key, each converted to a map.
func GetConfigTables(key string) []map[string]interface{} {
	valRaw := config.Get(key)
	if valRaw == nil {
		return nil
	}
	trees, ok := valRaw.([]*toml.Tree)
	if !ok {
		return nil
	}
	tables := make([]map[string]interface{}, 0, len(trees))
	for _, tree := range trees {
		tables = append(tables, tree.ToMap())
	}
	return tables
}
