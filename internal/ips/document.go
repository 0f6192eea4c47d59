// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package ips converts Apple IPS crash reports into the legacy .crash text report.
//
// An IPS document is a single JSON header line followed by a JSON body. The
// header is decoded strictly; the body is decoded best-effort, since its schema
// drifts between OS releases.
package ips

import "strings"

// Split separates an IPS document into its header line and the body that follows.
// The body is returned verbatim and may span several lines.
func Split(raw string) (header, body string, err error) {
	header, body, ok := strings.Cut(raw, "\n")
	if !ok {
		return "", "", &FormatError{Msg: "expected header and body"}
	}
	return header, body, nil
}

// Report is a decoded IPS document.
type Report struct {
	Header Header
	Body   *Body  // nil when the body could not be decoded at all
	Raw    string // Original document text
}

// Decode splits and decodes a document. Only a missing header/body split or a
// bad header fail; body problems degrade to a partial or nil Body.
func Decode(raw string) (*Report, error) {
	headerText, bodyText, err := Split(raw)
	if err != nil {
		return nil, err
	}

	header, err := DecodeHeader(headerText)
	if err != nil {
		return nil, err
	}

	return &Report{
		Header: *header,
		Body:   DecodeBody(bodyText),
		Raw:    raw,
	}, nil
}

// View returns the merged header/body values used for rendering.
func (r *Report) View() View {
	return Resolve(r.Header, r.Body)
}

// Render produces the legacy crash log text for the report.
func (r *Report) Render() string {
	return Render(r.View(), r.Body, r.Raw)
}

// Convert turns an IPS document into a legacy crash log.
func Convert(raw string) (string, error) {
	report, err := Decode(raw)
	if err != nil {
		return "", err
	}
	return report.Render(), nil
}

// Inspection summarizes a decoded report without rendering it.
type Inspection struct {
	View
	BodyDecoded bool `json:"body_decoded"`
	Threads     int  `json:"threads"`
	Images      int  `json:"images"`
}

// Inspect returns the merged view plus thread and image counts.
func (r *Report) Inspect() Inspection {
	in := Inspection{View: r.View()}
	if r.Body != nil {
		in.BodyDecoded = true
		in.Threads = len(r.Body.Threads)
		in.Images = len(r.Body.UsedImages)
	}
	return in
}
