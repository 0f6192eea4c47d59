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
)

// ReportClient provides access to the server's report store.
type ReportClient struct {
	c *Client
}

// List returns all stored reports, newest first.
func (r *ReportClient) List(ctx context.Context) ([]ReportSummary, error) {
	resp, err := r.c.do(ctx, http.MethodGet, "/api/v1/reports", nil)
	if err != nil {
		return nil, err
	}

	var summaries []ReportSummary
	if err := json.Unmarshal(resp.data, &summaries); err != nil {
		return nil, fmt.Errorf("failed to parse reports: %w", err)
	}
	return summaries, nil
}

// Get retrieves a stored report by ID.
func (r *ReportClient) Get(ctx context.Context, id string) (*Report, error) {
	resp, err := r.c.do(ctx, http.MethodGet, "/api/v1/reports/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return &Report{ID: id, Text: string(resp.data)}, nil
}

// Newest returns the most recent report, or nil if the store is empty.
func (r *ReportClient) Newest(ctx context.Context) (*Report, error) {
	resp, err := r.c.do(ctx, http.MethodGet, "/api/v1/reports/newest", nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &Report{ID: resp.header.Get(ReportIDHeader), Text: string(resp.data)}, nil
}

// Delete removes a report by ID.
func (r *ReportClient) Delete(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, "/api/v1/reports/"+url.PathEscape(id), nil)
	return err
}

// Clear removes all reports.
func (r *ReportClient) Clear(ctx context.Context) error {
	_, err := r.c.do(ctx, http.MethodDelete, "/api/v1/reports", nil)
	return err
}
