// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config handles HJSON and YAML configuration loading.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration structure for ips2crash.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Reports ReportsConfig `json:"reports" yaml:"reports"`
	Watch   WatchConfig   `json:"watch" yaml:"watch"`
	Events  EventsConfig  `json:"events" yaml:"events"`
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ServerConfig configures the HTTP conversion service.
type ServerConfig struct {
	Host string `json:"host" yaml:"host" validate:"omitempty,hostname|ip"`
	Port int    `json:"port" yaml:"port" validate:"min=0,max=65535"`

	// Largest accepted IPS upload in bytes
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" validate:"min=0"`
}

// ReportsConfig configures the converted report store.
type ReportsConfig struct {
	Dir      string `json:"dir" yaml:"dir"`         // Directory holding .crash files (default: crashes)
	MaxAge   string `json:"max_age" yaml:"max_age"` // Max age of reports to keep (default: 7d)
	MaxCount int    `json:"max_count" yaml:"max_count" validate:"min=0"`
}

// WatchConfig configures the drop-folder watcher.
type WatchConfig struct {
	Dir       string `json:"dir" yaml:"dir"`
	Debounce  string `json:"debounce" yaml:"debounce"`
	OutputDir string `json:"output_dir" yaml:"output_dir"` // Write .crash files here instead of the report store
	Workers   int    `json:"workers" yaml:"workers" validate:"min=0,max=64"`
}

// EventsConfig configures the in-memory activity history kept by the server.
type EventsConfig struct {
	MaxEvents int    `json:"max_events" yaml:"max_events" validate:"min=0"`
	MaxAge    string `json:"max_age" yaml:"max_age"`
}

// MaxAgeDuration returns how long events are kept.
func (e EventsConfig) MaxAgeDuration() time.Duration {
	return ParseDuration(e.MaxAge, time.Hour)
}

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" validate:"omitempty,oneof=console json"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MaxAgeDuration returns the report retention age.
func (r ReportsConfig) MaxAgeDuration() time.Duration {
	return ParseDuration(r.MaxAge, 7*24*time.Hour)
}

// DebounceDuration returns the watcher debounce period.
func (w WatchConfig) DebounceDuration() time.Duration {
	return ParseDuration(w.Debounce, 250*time.Millisecond)
}

// ParseDuration parses a duration string (days allowed, e.g. "7d"),
// returning defaultVal if empty or invalid.
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := parseDurationWithDays(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// parseDurationWithDays parses a duration string that may include days (e.g., "7d").
func parseDurationWithDays(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
