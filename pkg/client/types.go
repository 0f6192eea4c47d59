// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import "time"

// Health is the server status returned by [Client.Health].
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ReportSummary describes a stored report.
type ReportSummary struct {
	ID            string    `json:"id"`
	Process       string    `json:"process"`
	IncidentID    string    `json:"incident_id"`
	ExceptionType string    `json:"exception_type,omitempty"`
	Size          int64     `json:"size"`
	Created       time.Time `json:"created"`
}

// Report is a stored .crash report.
type Report struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Inspection holds the resolved fields of an IPS document. Each field was
// taken from the header, then the body, then a default.
type Inspection struct {
	IncidentID         string `json:"incident_id"`
	CrashReporterKey   string `json:"crash_reporter_key"`
	HardwareModel      string `json:"hardware_model"`
	Process            string `json:"process"`
	PID                int    `json:"pid"`
	Path               string `json:"path"`
	Identifier         string `json:"identifier"`
	Version            string `json:"version"`
	BuildVersion       string `json:"build_version"`
	CodeType           string `json:"code_type"`
	Role               string `json:"role"`
	ParentProcess      string `json:"parent_process"`
	ParentPID          int    `json:"parent_pid"`
	Coalition          string `json:"coalition"`
	CoalitionID        int    `json:"coalition_id"`
	ResponsibleProcess string `json:"responsible_process"`
	ResponsiblePID     int    `json:"responsible_pid"`
	Timestamp          string `json:"timestamp"`
	DateTime           string `json:"date_time"`
	LaunchTime         string `json:"launch_time"`
	OSVersion          string `json:"os_version"`
	ReleaseType        string `json:"release_type"`

	ExceptionType   string `json:"exception_type"`
	ExceptionCodes  string `json:"exception_codes"`
	ExceptionSignal string `json:"exception_signal"`

	TerminationNamespace string `json:"termination_namespace"`
	TerminationCode      string `json:"termination_code"`
	TerminationIndicator string `json:"termination_indicator"`
	TerminatingProcess   string `json:"terminating_process"`
	TerminatingPID       int    `json:"terminating_pid"`

	TriggeredThread string `json:"triggered_thread"`

	BodyDecoded bool `json:"body_decoded"`
	Threads     int  `json:"threads"`
	Images      int  `json:"images"`
}
