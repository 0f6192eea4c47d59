// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package ips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody_Full(t *testing.T) {
	body := DecodeBody(`{
		"pid": 7,
		"faultingThread": 2,
		"exception": {"type": "EXC_CRASH", "codes": "0x0, 0x0", "signal": "SIGABRT", "rawCodes": [0, 0]},
		"termination": {"namespace": "SIGNAL", "code": 6, "indicator": "Abort trap: 6", "byProc": "Foo", "byPid": 7},
		"threads": [{"id": 5, "triggered": true, "frames": [{"imageOffset": 10, "imageIndex": 0}]}],
		"usedImages": [{"base": 4096, "size": 8192, "name": "Foo"}]
	}`)
	require.NotNil(t, body)

	require.NotNil(t, body.PID)
	assert.Equal(t, 7, *body.PID)
	require.NotNil(t, body.Exception)
	assert.Equal(t, "SIGABRT", *body.Exception.Signal)
	require.NotNil(t, body.Termination)
	assert.Equal(t, int64(6), *body.Termination.Code)
	require.Len(t, body.Threads, 1)
	assert.True(t, body.Threads[0].Triggered)
	require.Len(t, body.Threads[0].Frames, 1)
	assert.Equal(t, uint64(10), *body.Threads[0].Frames[0].ImageOffset)
	require.Len(t, body.UsedImages, 1)
	assert.Equal(t, uint64(4096), *body.UsedImages[0].Base)
}

func TestDecodeBody_PartialShape(t *testing.T) {
	// pid and the first frame's offset have unexpected types; everything else survives.
	body := DecodeBody(`{
		"pid": "seven",
		"procPath": "/bin/foo",
		"threads": [{"frames": [{"imageOffset": "ten", "imageIndex": 0}, {"imageOffset": 20, "imageIndex": 0}]}]
	}`)
	require.NotNil(t, body)

	assert.Nil(t, body.PID)
	require.NotNil(t, body.ProcPath)
	assert.Equal(t, "/bin/foo", *body.ProcPath)
	require.Len(t, body.Threads, 1)
	require.Len(t, body.Threads[0].Frames, 2)
	assert.Nil(t, body.Threads[0].Frames[0].ImageOffset)
	assert.Equal(t, uint64(20), *body.Threads[0].Frames[1].ImageOffset)
}

// mistypedBody has values of the wrong JSON type in optional fields at every
// nesting level.
const mistypedBody = `{
	"pid": "seven",
	"procPath": 5,
	"cpuType": null,
	"osVersion": {"train": "macOS 14.4", "releaseType": 1},
	"exception": {"type": 7, "codes": "0x1"},
	"termination": {"indicator": false},
	"threads": [
		{"id": "main", "triggered": "yes", "frames": [
			{"imageOffset": "ten", "imageIndex": 0},
			{"imageOffset": -1, "imageIndex": 0},
			{"imageOffset": 16, "imageIndex": "0"},
			{"imageOffset": 16, "imageIndex": 0, "symbol": 3, "inline": 1}
		]},
		"not a thread",
		{"triggered": true, "threadState": {"flavor": 9, "pc": {"value": "x", "description": 4}}}
	],
	"usedImages": [{"name": "libfoo.dylib", "base": -4096}, 12]
}`

func TestDecodeBody_MistypedFieldsAreAbsent(t *testing.T) {
	body := DecodeBody(mistypedBody)
	require.NotNil(t, body)

	assert.Nil(t, body.PID)
	assert.Nil(t, body.ProcPath)
	assert.Nil(t, body.CPUType)

	require.NotNil(t, body.OSVersion)
	assert.Equal(t, "macOS 14.4", *body.OSVersion.Train)
	assert.Nil(t, body.OSVersion.ReleaseType)

	require.NotNil(t, body.Exception)
	assert.Nil(t, body.Exception.Type)
	assert.Equal(t, "0x1", *body.Exception.Codes)

	require.NotNil(t, body.Termination)
	assert.Nil(t, body.Termination.Indicator)

	require.Len(t, body.Threads, 3)
	main := body.Threads[0]
	assert.Nil(t, main.ID)
	assert.False(t, main.Triggered)
	require.Len(t, main.Frames, 4)
	assert.Nil(t, main.Frames[0].ImageOffset)
	assert.Nil(t, main.Frames[1].ImageOffset)
	assert.Nil(t, main.Frames[2].ImageIndex)
	assert.Nil(t, main.Frames[3].Symbol)
	assert.False(t, main.Frames[3].Inline)
	assert.Equal(t, uint64(16), *main.Frames[3].ImageOffset)

	// An element of the wrong type keeps its slot.
	assert.Equal(t, Thread{}, body.Threads[1])

	state := body.Threads[2].ThreadState
	require.NotNil(t, state)
	assert.Nil(t, state.Flavor)
	require.NotNil(t, state.PC)
	assert.Nil(t, state.PC.Value)
	assert.Nil(t, state.PC.Description)

	require.Len(t, body.UsedImages, 2)
	assert.Nil(t, body.UsedImages[0].Base)
	assert.Equal(t, "libfoo.dylib", *body.UsedImages[0].Name)
	assert.Equal(t, Image{}, body.UsedImages[1])
}

func TestDecodeBody_MistypedObjects(t *testing.T) {
	body := DecodeBody(`{"exception": 7, "termination": "SIGNAL", "osVersion": [], "threads": {}, "usedImages": "none"}`)
	require.NotNil(t, body)

	assert.Nil(t, body.Exception)
	assert.Nil(t, body.Termination)
	assert.Nil(t, body.OSVersion)
	assert.Nil(t, body.Threads)
	assert.Nil(t, body.UsedImages)
}

func TestDecodeBody_LargeRegisterValues(t *testing.T) {
	body := DecodeBody(`{"threads": [{"threadState": {"x": [{"value": 18446744073709551615}]}}]}`)
	require.NotNil(t, body)
	require.Len(t, body.Threads, 1)
	require.NotNil(t, body.Threads[0].ThreadState)
	assert.Equal(t, uint64(18446744073709551615), *body.Threads[0].ThreadState.X[0].Value)
}

func TestDecodeBody_NotJSON(t *testing.T) {
	assert.Nil(t, DecodeBody(""))
	assert.Nil(t, DecodeBody("{"))
	assert.Nil(t, DecodeBody("garbage"))
}

func TestDecodeBody_WrongTopLevelShape(t *testing.T) {
	body := DecodeBody(`[1, 2, 3]`)
	require.NotNil(t, body)
	assert.Empty(t, body.Threads)
}

func TestBody_CrashedThread(t *testing.T) {
	var nilBody *Body
	_, _, ok := nilBody.CrashedThread()
	assert.False(t, ok)

	body := &Body{Threads: []Thread{{}, {Triggered: true, Name: strPtr("first")}, {Triggered: true, Name: strPtr("second")}}}
	thread, n, ok := body.CrashedThread()
	require.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, "first", *thread.Name)
}

func TestBody_Image(t *testing.T) {
	body := &Body{UsedImages: []Image{{Name: strPtr("a")}}}
	assert.NotNil(t, body.Image(0))
	assert.Nil(t, body.Image(1))
	assert.Nil(t, body.Image(-1))

	var nilBody *Body
	assert.Nil(t, nilBody.Image(0))
}

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func u64Ptr(n uint64) *uint64 { return &n }
