// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package events provides the conversion activity bus.
package events

import (
	"context"
	"time"
)

// Event represents an immutable event record.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"` // Where the event came from: api or watch
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventHandler processes received events.
type EventHandler func(ctx context.Context, event Event) error

// SubscriptionID uniquely identifies a subscription.
type SubscriptionID string

// EventFilter for querying event history.
type EventFilter struct {
	Types  []string  // Event types to match (supports wildcards)
	Source string    // Filter by source
	Since  time.Time // Events after this time
	Until  time.Time // Events before this time
	Limit  int       // Maximum events to return, newest kept
}

// EventBus is the core event pub/sub system.
type EventBus interface {
	// Publish emits an event to all matching subscribers.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a synchronous handler for events matching pattern.
	Subscribe(pattern string, handler EventHandler) (SubscriptionID, error)

	// SubscribeAsync registers an async handler with buffered channel.
	SubscribeAsync(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(id SubscriptionID) error

	// History retrieves past events matching filter.
	History(filter EventFilter) ([]Event, error)

	// Close shuts down the event bus gracefully.
	Close() error
}

// Event types
const (
	EventReportConverted  = "report.converted"
	EventReportStored     = "report.stored"
	EventReportDeleted    = "report.deleted"
	EventReportsCleared   = "reports.cleared"
	EventConversionFailed = "conversion.failed"
)

// Event sources
const (
	SourceAPI   = "api"
	SourceWatch = "watch"
)

// Emit publishes an event on bus, doing nothing when bus is nil.
func Emit(ctx context.Context, bus EventBus, source, eventType string, payload map[string]interface{}) {
	if bus == nil {
		return
	}
	bus.Publish(ctx, Event{Type: eventType, Source: source, Payload: payload})
}
