// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client provides a Go client library for the ips2crash HTTP API.
//
// # Getting Started
//
// Create a client pointing to a running "ips2crash serve":
//
//	c := client.New("http://localhost:8723")
//
//	// Convert an IPS document to .crash text
//	text, err := c.Convert(ctx, ipsText)
//
//	// Convert and keep the result in the server's report store
//	text, id, err := c.ConvertAndStore(ctx, ipsText)
//
//	// Browse stored reports
//	summaries, err := c.Reports.List(ctx)
//
// # Error Handling
//
// API errors are returned as *APIError values, which include an error code
// and message:
//
//	_, err := c.Convert(ctx, "not an ips file")
//	var apiErr *client.APIError
//	if errors.As(err, &apiErr) && apiErr.Code == client.CodeInvalidFormat {
//	    ...
//	}
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// ReportIDHeader carries the ID of a stored report on text responses.
const ReportIDHeader = "X-Report-ID"

// Error codes returned by the server.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeBadRequest      = "BAD_REQUEST"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidFormat   = "INVALID_FORMAT"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
)

// Client is an ips2crash API client.
//
// The Client is safe for concurrent use by multiple goroutines.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// Reports provides access to the server's report store.
	Reports *ReportClient
}

// Option configures a [Client].
type Option func(*Client)

// New creates a new client with the given base URL and options.
//
// Any trailing slash on baseURL is removed. The default HTTP timeout is
// 30 seconds.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Reports = &ReportClient{c: c}

	return c
}

// WithHTTPClient sets a custom HTTP client for making requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout for all requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// BaseURL returns the base URL of the API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health returns the server's status.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return nil, err
	}

	var h Health
	if err := json.Unmarshal(resp.data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse health: %w", err)
	}
	return &h, nil
}

// Convert returns the .crash text for an IPS document.
func (c *Client) Convert(ctx context.Context, ips string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/convert", strings.NewReader(ips))
	if err != nil {
		return "", err
	}
	return string(resp.data), nil
}

// ConvertAndStore converts an IPS document and saves the result in the
// server's report store, returning the text and the new report ID.
func (c *Client) ConvertAndStore(ctx context.Context, ips string) (string, string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/convert?store=1", strings.NewReader(ips))
	if err != nil {
		return "", "", err
	}
	return string(resp.data), resp.header.Get(ReportIDHeader), nil
}

// Inspect returns the resolved fields of an IPS document without rendering it.
func (c *Client) Inspect(ctx context.Context, ips string) (*Inspection, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/inspect", strings.NewReader(ips))
	if err != nil {
		return nil, err
	}

	var in Inspection
	if err := json.Unmarshal(resp.data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse inspection: %w", err)
	}
	return &in, nil
}

// apiResponse is the standard API response envelope.
type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

// APIError represents an error response from the server.
type APIError struct {
	// Status is the HTTP status code of the response.
	Status int `json:"-"`

	// Code is a machine-readable error code (e.g., "NOT_FOUND").
	Code string `json:"code"`

	// Message is a human-readable description of the error.
	Message string `json:"message"`

	// Details contains additional error information, if available.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// response is a successful reply: the envelope data for JSON responses, the
// raw body for text responses.
type response struct {
	data   []byte
	header http.Header
}

// do performs an HTTP request and parses the response.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*response, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return parseResponse(resp)
}

// parseResponse reads and parses an API response.
func parseResponse(resp *http.Response) (*response, error) {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "text/plain" && resp.StatusCode < 400 {
		return &response{data: respBody, header: resp.Header}, nil
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, &APIError{
				Status:  resp.StatusCode,
				Message: fmt.Sprintf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
			}
		}
		return &response{data: respBody, header: resp.Header}, nil
	}

	if apiResp.Error != nil {
		apiResp.Error.Status = resp.StatusCode
		return nil, apiResp.Error
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	return &response{data: apiResp.Data, header: resp.Header}, nil
}
