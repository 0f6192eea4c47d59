// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package ips

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Header is the first line of an IPS document.
// Optional fields are nil when absent; defaults are applied by Resolve.
type Header struct {
	AppName      string `json:"app_name"`
	Timestamp    string `json:"timestamp"`
	AppVersion   string `json:"app_version"`
	BuildVersion string `json:"build_version"`
	BundleID     string `json:"bundleID"`
	IncidentID   string `json:"incident_id"`
	OSVersion    string `json:"os_version"`

	PID              *int    `json:"pid,omitempty"`
	ProcPath         *string `json:"procPath,omitempty"`
	CPUType          *string `json:"cpuType,omitempty"`
	ProcRole         *string `json:"procRole,omitempty"`
	ParentProc       *string `json:"parentProc,omitempty"`
	ParentPID        *int    `json:"parentPid,omitempty"`
	CoalitionName    *string `json:"coalitionName,omitempty"`
	CoalitionID      *int    `json:"coalitionID,omitempty"`
	ResponsibleProc  *string `json:"responsibleProc,omitempty"`
	ResponsiblePID   *int    `json:"responsiblePid,omitempty"`
	CaptureTime      *string `json:"captureTime,omitempty"`
	ProcLaunch       *string `json:"procLaunch,omitempty"`
	ReleaseType      *string `json:"releaseType,omitempty"`
	ModelCode        *string `json:"modelCode,omitempty"`
	CrashReporterKey *string `json:"crashReporterKey,omitempty"`
	ExceptionType    *string `json:"exceptionType,omitempty"`
	ExceptionCodes   *string `json:"exceptionCodes,omitempty"`
	TriggeredThread  *string `json:"triggeredThread,omitempty"`
}

// headerLine mirrors Header with pointer required fields so that absence can
// be told apart from an empty string.
type headerLine struct {
	AppName      *string `json:"app_name" validate:"required"`
	Timestamp    *string `json:"timestamp" validate:"required"`
	AppVersion   *string `json:"app_version" validate:"required"`
	BuildVersion *string `json:"build_version" validate:"required"`
	BundleID     *string `json:"bundleID" validate:"required"`
	IncidentID   *string `json:"incident_id" validate:"required"`
	OSVersion    *string `json:"os_version" validate:"required"`

	PID              *int    `json:"pid"`
	ProcPath         *string `json:"procPath"`
	CPUType          *string `json:"cpuType"`
	ProcRole         *string `json:"procRole"`
	ParentProc       *string `json:"parentProc"`
	ParentPID        *int    `json:"parentPid"`
	CoalitionName    *string `json:"coalitionName"`
	CoalitionID      *int    `json:"coalitionID"`
	ResponsibleProc  *string `json:"responsibleProc"`
	ResponsiblePID   *int    `json:"responsiblePid"`
	CaptureTime      *string `json:"captureTime"`
	ProcLaunch       *string `json:"procLaunch"`
	ReleaseType      *string `json:"releaseType"`
	ModelCode        *string `json:"modelCode"`
	CrashReporterKey *string `json:"crashReporterKey"`
	ExceptionType    *string `json:"exceptionType"`
	ExceptionCodes   *string `json:"exceptionCodes"`
	TriggeredThread  *string `json:"triggeredThread"`
}

var headerValidator = newHeaderValidator()

func newHeaderValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// DecodeHeader strictly decodes the header line. Any JSON error, mistyped
// field or missing required field is reported as a FormatError that quotes
// the header text.
func DecodeHeader(text string) (*Header, error) {
	var line headerLine
	if err := json.Unmarshal([]byte(text), &line); err != nil {
		return nil, headerError(text, err)
	}

	if err := headerValidator.Struct(&line); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			missing := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				missing = append(missing, fe.Field())
			}
			err = errors.New("missing required field(s) " + strings.Join(missing, ", "))
		}
		return nil, headerError(text, err)
	}

	return &Header{
		AppName:      *line.AppName,
		Timestamp:    *line.Timestamp,
		AppVersion:   *line.AppVersion,
		BuildVersion: *line.BuildVersion,
		BundleID:     *line.BundleID,
		IncidentID:   *line.IncidentID,
		OSVersion:    *line.OSVersion,

		PID:              line.PID,
		ProcPath:         line.ProcPath,
		CPUType:          line.CPUType,
		ProcRole:         line.ProcRole,
		ParentProc:       line.ParentProc,
		ParentPID:        line.ParentPID,
		CoalitionName:    line.CoalitionName,
		CoalitionID:      line.CoalitionID,
		ResponsibleProc:  line.ResponsibleProc,
		ResponsiblePID:   line.ResponsiblePID,
		CaptureTime:      line.CaptureTime,
		ProcLaunch:       line.ProcLaunch,
		ReleaseType:      line.ReleaseType,
		ModelCode:        line.ModelCode,
		CrashReporterKey: line.CrashReporterKey,
		ExceptionType:    line.ExceptionType,
		ExceptionCodes:   line.ExceptionCodes,
		TriggeredThread:  line.TriggeredThread,
	}, nil
}

func headerError(text string, err error) error {
	return &FormatError{
		Msg: "failed to decode header (header string: " + text + ")",
		Err: err,
	}
}
