// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"errors"
	"strings"
)

// ErrEmptyPattern is returned when subscribing with an empty pattern.
var ErrEmptyPattern = errors.New("empty pattern")

// Match checks if an event type matches a pattern.
// Patterns support wildcards:
// - "report.*" matches "report.converted", "report.stored", etc.
// - "*.failed" matches "conversion.failed"
// - "*" matches everything
func Match(eventType, pattern string) bool {
	if pattern == "" || eventType == "" {
		return false
	}

	if pattern == "*" || pattern == eventType {
		return true
	}

	// Wildcard at end (report.*)
	if prefix, ok := strings.CutSuffix(pattern, ".*"); ok {
		return strings.HasPrefix(eventType, prefix+".")
	}

	// Wildcard at start (*.failed)
	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		return strings.HasSuffix(eventType, "."+suffix)
	}

	return false
}

// MatchAny reports whether eventType matches any of patterns.
func MatchAny(eventType string, patterns []string) bool {
	for _, p := range patterns {
		if Match(eventType, p) {
			return true
		}
	}
	return false
}
