// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Event is a conversion activity record.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventOptions filters [Client.Events] and [Client.Follow]. Follow uses only
// Types and Source.
type EventOptions struct {
	Types  []string  // Event type patterns, e.g. "report.*"
	Source string    // "api" or "watch"
	Since  time.Time // Only events after this time
	Until  time.Time // Only events before this time
	Limit  int       // Keep only the newest Limit events
}

// Events returns the server's recent conversion activity, oldest first.
func (c *Client) Events(ctx context.Context, opts *EventOptions) ([]Event, error) {
	path := "/api/v1/events"
	if opts != nil {
		q := url.Values{}
		for _, t := range opts.Types {
			q.Add("type", t)
		}
		if opts.Source != "" {
			q.Set("source", opts.Source)
		}
		if !opts.Since.IsZero() {
			q.Set("since", opts.Since.Format(time.RFC3339))
		}
		if !opts.Until.IsZero() {
			q.Set("until", opts.Until.Format(time.RFC3339))
		}
		if opts.Limit > 0 {
			q.Set("limit", strconv.Itoa(opts.Limit))
		}
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var events []Event
	if err := json.Unmarshal(resp.data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse events: %w", err)
	}
	return events, nil
}

// Follow streams live events to fn until ctx is done, which returns nil.
// An error from fn stops the stream and is returned.
func (c *Client) Follow(ctx context.Context, opts *EventOptions, fn func(Event) error) error {
	u, err := url.Parse(c.baseURL + "/api/v1/events/ws")
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if opts != nil {
		q := url.Values{}
		if len(opts.Types) > 0 {
			q.Set("type", strings.Join(opts.Types, ","))
		}
		if opts.Source != "" {
			q.Set("source", opts.Source)
		}
		u.RawQuery = q.Encode()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			if _, apiErr := parseResponse(resp); apiErr != nil {
				return apiErr
			}
		}
		return fmt.Errorf("event stream failed: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var event Event
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
				return nil
			}
			return fmt.Errorf("event stream failed: %w", err)
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}
