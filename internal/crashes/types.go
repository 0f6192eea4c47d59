// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package crashes

import "time"

// Report is a stored crash log.
type Report struct {
	ID      string    `json:"id"`      // Unique report ID (timestamp-based)
	Created time.Time `json:"created"` // When the report was stored
	Text    string    `json:"text"`    // Rendered crash log
}

// Summary is a minimal representation for listing reports.
type Summary struct {
	ID            string    `json:"id"`
	Process       string    `json:"process"`
	IncidentID    string    `json:"incident_id"`
	ExceptionType string    `json:"exception_type,omitempty"`
	Size          int64     `json:"size"`
	Created       time.Time `json:"created"`
}
