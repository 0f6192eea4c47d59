// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wingedpig/ips2crash/internal/events"
)

const (
	streamBuffer = 100
	pongWait     = 60 * time.Second
	pingPeriod   = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// EventsHandler serves the conversion activity history.
type EventsHandler struct {
	bus events.EventBus
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(bus events.EventBus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// History returns past events, oldest first.
// GET /api/v1/events?type=report.*&source=watch&since=RFC3339&until=RFC3339&limit=N
func (h *EventsHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := events.EventFilter{Source: q.Get("source"), Types: typeParams(q["type"])}

	var err error
	if filter.Since, err = parseTimeParam(q.Get("since")); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid since: "+err.Error())
		return
	}
	if filter.Until, err = parseTimeParam(q.Get("until")); err != nil {
		WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid until: "+err.Error())
		return
	}
	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			WriteError(w, http.StatusBadRequest, ErrBadRequest, "invalid limit: "+s)
			return
		}
		filter.Limit = limit
	}

	history, err := h.bus.History(filter)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, history)
}

// Stream pushes live events over a WebSocket as JSON text messages.
// GET /api/v1/events/ws?type=report.*&source=watch
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	patterns := typeParams(q["type"])
	source := q.Get("source")

	// One pattern narrows the subscription itself; several are matched here.
	pattern := "*"
	if len(patterns) == 1 {
		pattern = patterns[0]
	}

	eventCh := make(chan events.Event, streamBuffer)
	done := make(chan struct{})

	// Subscribe before the upgrade so nothing published after the handshake is missed.
	subID, err := h.bus.SubscribeAsync(pattern, func(_ context.Context, event events.Event) error {
		if len(patterns) > 1 && !events.MatchAny(event.Type, patterns) {
			return nil
		}
		if source != "" && event.Source != source {
			return nil
		}
		select {
		case eventCh <- event:
		case <-done:
		default:
			// Drop if the client is not keeping up
		}
		return nil
	}, streamBuffer)
	if err != nil {
		WriteError(w, http.StatusServiceUnavailable, ErrInternalError, err.Error())
		return
	}
	defer h.bus.Unsubscribe(subID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	// Read goroutine (for close detection)
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event := <-eventCh:
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-pingTicker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// typeParams flattens repeated and comma-separated type parameters.
func typeParams(values []string) []string {
	var patterns []string
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
	}
	return patterns
}

func parseTimeParam(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
