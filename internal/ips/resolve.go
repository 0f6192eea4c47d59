// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package ips

import "strconv"

const (
	unknown            = "Unknown"
	defaultCodeType    = "ARM-64"
	defaultReleaseType = "User"
)

// View is the render-ready value set. Each field is taken from the header,
// then the body, then a field-specific default.
type View struct {
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
}

// HasException reports whether both exception type and codes are known.
func (v View) HasException() bool {
	return v.ExceptionType != unknown && v.ExceptionCodes != unknown
}

// HasSignal reports whether the exception signal is known.
func (v View) HasSignal() bool {
	return v.ExceptionSignal != unknown
}

// HasTermination reports whether a termination indicator is known.
func (v View) HasTermination() bool {
	return v.TerminationIndicator != unknown
}

// HasTriggeredThread reports whether the triggering thread is known.
func (v View) HasTriggeredThread() bool {
	return v.TriggeredThread != unknown
}

// coalesce returns the header value, else the body value, else def.
func coalesce[T any](header, body *T, def T) T {
	if header != nil {
		return *header
	}
	if body != nil {
		return *body
	}
	return def
}

// Resolve merges header and body values. body may be nil.
func Resolve(h Header, body *Body) View {
	b := body
	if b == nil {
		b = &Body{}
	}
	exc := b.Exception
	if exc == nil {
		exc = &Exception{}
	}
	term := b.Termination
	if term == nil {
		term = &Termination{}
	}
	var bodyReleaseType *string
	if b.OSVersion != nil {
		bodyReleaseType = b.OSVersion.ReleaseType
	}

	v := View{
		IncidentID:   h.IncidentID,
		Process:      h.AppName,
		Identifier:   h.BundleID,
		Version:      h.AppVersion,
		BuildVersion: h.BuildVersion,
		Timestamp:    h.Timestamp,
		OSVersion:    h.OSVersion,

		CrashReporterKey:   coalesce(h.CrashReporterKey, b.CrashReporterKey, unknown),
		HardwareModel:      coalesce(h.ModelCode, b.ModelCode, unknown),
		PID:                coalesce(h.PID, b.PID, 0),
		Path:               coalesce(h.ProcPath, b.ProcPath, unknown),
		CodeType:           coalesce(h.CPUType, b.CPUType, defaultCodeType),
		Role:               coalesce(h.ProcRole, b.ProcRole, unknown),
		ParentProcess:      coalesce(h.ParentProc, b.ParentProc, unknown),
		ParentPID:          coalesce(h.ParentPID, b.ParentPID, 0),
		Coalition:          coalesce(h.CoalitionName, b.CoalitionName, unknown),
		CoalitionID:        coalesce(h.CoalitionID, b.CoalitionID, 0),
		ResponsibleProcess: coalesce(h.ResponsibleProc, b.ResponsibleProc, unknown),
		ResponsiblePID:     coalesce(h.ResponsiblePID, b.ResponsiblePID, 0),
		DateTime:           coalesce(h.CaptureTime, b.CaptureTime, unknown),
		LaunchTime:         coalesce(h.ProcLaunch, b.ProcLaunch, unknown),
		ReleaseType:        coalesce(h.ReleaseType, bodyReleaseType, defaultReleaseType),

		ExceptionType:   coalesce(h.ExceptionType, exc.Type, unknown),
		ExceptionCodes:  coalesce(h.ExceptionCodes, exc.Codes, unknown),
		ExceptionSignal: coalesce(nil, exc.Signal, unknown),

		TerminationNamespace: coalesce(nil, term.Namespace, unknown),
		TerminationCode:      unknown,
		TerminationIndicator: coalesce(nil, term.Indicator, unknown),
		TerminatingProcess:   coalesce(nil, term.ByProc, unknown),
		TerminatingPID:       coalesce(nil, term.ByPID, 0),
	}
	if term.Code != nil {
		v.TerminationCode = strconv.FormatInt(*term.Code, 10)
	}

	// A nonzero faulting thread index stands in for an unknown label.
	v.TriggeredThread = coalesce(h.TriggeredThread, b.TriggeredThread, unknown)
	if v.TriggeredThread == unknown && b.FaultingThread != nil && *b.FaultingThread != 0 {
		v.TriggeredThread = strconv.Itoa(*b.FaultingThread)
	}

	return v
}
