// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package ips

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseHeader() Header {
	return Header{
		AppName:      "Foo",
		Timestamp:    "t",
		AppVersion:   "1.0",
		BuildVersion: "1",
		BundleID:     "com.foo",
		IncidentID:   "ABC-123",
		OSVersion:    "14.0",
	}
}

func TestResolve_Defaults(t *testing.T) {
	v := Resolve(baseHeader(), nil)

	assert.Equal(t, "ABC-123", v.IncidentID)
	assert.Equal(t, "Foo", v.Process)
	assert.Equal(t, "Unknown", v.CrashReporterKey)
	assert.Equal(t, "Unknown", v.HardwareModel)
	assert.Equal(t, 0, v.PID)
	assert.Equal(t, "Unknown", v.Path)
	assert.Equal(t, "ARM-64", v.CodeType)
	assert.Equal(t, "Unknown", v.Role)
	assert.Equal(t, "Unknown", v.ParentProcess)
	assert.Equal(t, 0, v.ParentPID)
	assert.Equal(t, "Unknown", v.Coalition)
	assert.Equal(t, 0, v.CoalitionID)
	assert.Equal(t, "Unknown", v.ResponsibleProcess)
	assert.Equal(t, 0, v.ResponsiblePID)
	assert.Equal(t, "Unknown", v.DateTime)
	assert.Equal(t, "Unknown", v.LaunchTime)
	assert.Equal(t, "User", v.ReleaseType)
	assert.Equal(t, "Unknown", v.ExceptionType)
	assert.Equal(t, "Unknown", v.ExceptionCodes)
	assert.Equal(t, "Unknown", v.ExceptionSignal)
	assert.Equal(t, "Unknown", v.TerminationNamespace)
	assert.Equal(t, "Unknown", v.TerminationCode)
	assert.Equal(t, "Unknown", v.TerminationIndicator)
	assert.Equal(t, "Unknown", v.TerminatingProcess)
	assert.Equal(t, 0, v.TerminatingPID)
	assert.Equal(t, "Unknown", v.TriggeredThread)

	assert.False(t, v.HasException())
	assert.False(t, v.HasTermination())
	assert.False(t, v.HasTriggeredThread())
	assert.Equal(t, v, Resolve(baseHeader(), &Body{}))
}

func TestResolve_HeaderWins(t *testing.T) {
	h := baseHeader()
	h.PID = intPtr(10)
	h.ProcPath = strPtr("/header/path")
	h.ModelCode = strPtr("Mac14,2")
	h.ExceptionType = strPtr("EXC_CRASH")
	h.CPUType = strPtr("X86-64")
	h.ReleaseType = strPtr("Beta")

	body := &Body{
		PID:       intPtr(20),
		ProcPath:  strPtr("/body/path"),
		ModelCode: strPtr("iPhone15,2"),
		CPUType:   strPtr("ARM-64"),
		OSVersion: &OSVersion{ReleaseType: strPtr("User")},
		Exception: &Exception{Type: strPtr("EXC_BAD_ACCESS")},
	}

	v := Resolve(h, body)
	assert.Equal(t, 10, v.PID)
	assert.Equal(t, "/header/path", v.Path)
	assert.Equal(t, "Mac14,2", v.HardwareModel)
	assert.Equal(t, "EXC_CRASH", v.ExceptionType)
	assert.Equal(t, "X86-64", v.CodeType)
	assert.Equal(t, "Beta", v.ReleaseType)
}

func TestResolve_BodyFallback(t *testing.T) {
	body := &Body{
		PID:              intPtr(20),
		ProcPath:         strPtr("/body/path"),
		ProcRole:         strPtr("Background"),
		ParentProc:       strPtr("launchd"),
		ParentPID:        intPtr(1),
		CoalitionName:    strPtr("com.foo"),
		CoalitionID:      intPtr(77),
		ResponsibleProc:  strPtr("Foo"),
		ResponsiblePID:   intPtr(20),
		CaptureTime:      strPtr("capture"),
		ProcLaunch:       strPtr("launch"),
		ModelCode:        strPtr("Mac14,2"),
		CrashReporterKey: strPtr("KEY"),
		CPUType:          strPtr("X86-64"),
		OSVersion:        &OSVersion{ReleaseType: strPtr("Beta")},
		Exception:        &Exception{Type: strPtr("EXC_BAD_ACCESS"), Codes: strPtr("KERN_INVALID_ADDRESS"), Signal: strPtr("SIGSEGV")},
	}

	v := Resolve(baseHeader(), body)
	assert.Equal(t, 20, v.PID)
	assert.Equal(t, "/body/path", v.Path)
	assert.Equal(t, "Background", v.Role)
	assert.Equal(t, "launchd", v.ParentProcess)
	assert.Equal(t, 1, v.ParentPID)
	assert.Equal(t, "com.foo", v.Coalition)
	assert.Equal(t, 77, v.CoalitionID)
	assert.Equal(t, "Foo", v.ResponsibleProcess)
	assert.Equal(t, 20, v.ResponsiblePID)
	assert.Equal(t, "capture", v.DateTime)
	assert.Equal(t, "launch", v.LaunchTime)
	assert.Equal(t, "Mac14,2", v.HardwareModel)
	assert.Equal(t, "KEY", v.CrashReporterKey)
	assert.Equal(t, "X86-64", v.CodeType)
	assert.Equal(t, "Beta", v.ReleaseType)
	assert.Equal(t, "EXC_BAD_ACCESS", v.ExceptionType)
	assert.Equal(t, "KERN_INVALID_ADDRESS", v.ExceptionCodes)
	assert.Equal(t, "SIGSEGV", v.ExceptionSignal)
	assert.True(t, v.HasException())
}

func TestResolve_Termination(t *testing.T) {
	code := int64(0xdead10cc)
	body := &Body{Termination: &Termination{
		Namespace: strPtr("RUNNINGBOARD"),
		Code:      &code,
		Indicator: strPtr("kill"),
		ByProc:    strPtr("runningboardd"),
		ByPID:     intPtr(33),
	}}

	v := Resolve(baseHeader(), body)
	assert.Equal(t, "RUNNINGBOARD", v.TerminationNamespace)
	assert.Equal(t, "3735883980", v.TerminationCode)
	assert.Equal(t, "kill", v.TerminationIndicator)
	assert.Equal(t, "runningboardd", v.TerminatingProcess)
	assert.Equal(t, 33, v.TerminatingPID)
	assert.True(t, v.HasTermination())
}

func TestResolve_TriggeredThread(t *testing.T) {
	tests := []struct {
		name     string
		header   *string
		body     *Body
		expected string
	}{
		{"absent everywhere", nil, &Body{}, "Unknown"},
		{"header label", strPtr("4"), &Body{FaultingThread: intPtr(2)}, "4"},
		{"body label", nil, &Body{TriggeredThread: strPtr("5"), FaultingThread: intPtr(2)}, "5"},
		{"faulting thread index", nil, &Body{FaultingThread: intPtr(2)}, "2"},
		{"faulting thread zero", nil, &Body{FaultingThread: intPtr(0)}, "Unknown"},
		{"header says Unknown", strPtr("Unknown"), &Body{FaultingThread: intPtr(3)}, "3"},
		{"nil body", nil, nil, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := baseHeader()
			h.TriggeredThread = tt.header
			assert.Equal(t, tt.expected, Resolve(h, tt.body).TriggeredThread)
		})
	}
}

func TestResolve_ExceptionNeedsTypeAndCodes(t *testing.T) {
	h := baseHeader()
	h.ExceptionType = strPtr("EXC_CRASH")
	assert.False(t, Resolve(h, nil).HasException())

	h.ExceptionCodes = strPtr("0x0")
	assert.True(t, Resolve(h, nil).HasException())
}

func TestResolve_MistypedBodyFields(t *testing.T) {
	v := Resolve(baseHeader(), DecodeBody(mistypedBody))

	assert.Equal(t, 0, v.PID)
	assert.Equal(t, "Unknown", v.Path)
	assert.Equal(t, "ARM-64", v.CodeType)
	assert.Equal(t, "User", v.ReleaseType)
	assert.Equal(t, "Unknown", v.ExceptionType)
	assert.Equal(t, "0x1", v.ExceptionCodes)
	assert.False(t, v.HasException())
	assert.Equal(t, "Unknown", v.TerminationIndicator)
	assert.False(t, v.HasTermination())
}
