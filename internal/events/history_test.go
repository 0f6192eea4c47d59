// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventHistory_MaxEvents(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{MaxEvents: 3})

	base := time.Now()
	for i := 0; i < 5; i++ {
		h.Add(Event{ID: fmt.Sprint(i), Type: EventReportConverted, Timestamp: base.Add(time.Duration(i) * time.Second)})
	}

	events := h.Query(EventFilter{})
	require.Len(t, events, 3)
	assert.Equal(t, "2", events[0].ID)
	assert.Equal(t, "4", events[2].ID)
}

func TestEventHistory_Query_Types(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{})
	now := time.Now()
	h.Add(Event{Type: EventReportConverted, Timestamp: now})
	h.Add(Event{Type: EventReportStored, Timestamp: now})
	h.Add(Event{Type: EventConversionFailed, Timestamp: now})
	h.Add(Event{Type: EventReportsCleared, Timestamp: now})

	assert.Len(t, h.Query(EventFilter{Types: []string{"report.*"}}), 2)
	assert.Len(t, h.Query(EventFilter{Types: []string{"report.*", "*.failed"}}), 3)
	assert.Len(t, h.Query(EventFilter{Types: []string{"reports.cleared"}}), 1)
}

func TestEventHistory_Query_Source(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{})
	now := time.Now()
	h.Add(Event{Type: EventReportStored, Source: SourceAPI, Timestamp: now})
	h.Add(Event{Type: EventReportStored, Source: SourceWatch, Timestamp: now})

	events := h.Query(EventFilter{Source: SourceWatch})
	require.Len(t, events, 1)
	assert.Equal(t, SourceWatch, events[0].Source)
}

func TestEventHistory_Query_TimeRangeAndLimit(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{})
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		h.Add(Event{ID: fmt.Sprint(i), Type: EventReportConverted, Timestamp: base.Add(time.Duration(i) * time.Minute)})
	}

	events := h.Query(EventFilter{Since: base.Add(2 * time.Minute), Until: base.Add(6 * time.Minute)})
	require.Len(t, events, 5)
	assert.Equal(t, "2", events[0].ID)
	assert.Equal(t, "6", events[4].ID)

	events = h.Query(EventFilter{Limit: 2})
	require.Len(t, events, 2)
	assert.Equal(t, "8", events[0].ID)
	assert.Equal(t, "9", events[1].ID)
}

func TestEventHistory_Order(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{})
	base := time.Now()
	h.Add(Event{ID: "late", Type: EventReportStored, Timestamp: base.Add(time.Second)})
	h.Add(Event{ID: "early", Type: EventReportStored, Timestamp: base})

	events := h.Query(EventFilter{})
	require.Len(t, events, 2)
	assert.Equal(t, "early", events[0].ID)
	assert.Equal(t, "late", events[1].ID)
}

func TestEventHistory_Prune(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewEventHistory(EventHistoryConfig{MaxAge: time.Hour})
	h.now = func() time.Time { return now }

	h.Add(Event{ID: "old", Type: EventReportStored, Timestamp: now.Add(-2 * time.Hour)})
	h.Add(Event{ID: "new", Type: EventReportStored, Timestamp: now.Add(-time.Minute)})

	h.Prune()

	events := h.Query(EventFilter{})
	require.Len(t, events, 1)
	assert.Equal(t, "new", events[0].ID)
	assert.Equal(t, 1, h.Len())
}

func TestEventHistory_Concurrency(t *testing.T) {
	h := NewEventHistory(EventHistoryConfig{MaxEvents: 50})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				h.Add(Event{Type: EventReportConverted, Timestamp: time.Now()})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				h.Query(EventFilter{Types: []string{"report.*"}})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, h.Len())
}
