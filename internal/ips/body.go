// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package ips

import (
	"bytes"
	"encoding/json"
)

// Body is the JSON blob following the header line. Every field is optional.
type Body struct {
	PID              *int    `json:"pid,omitempty"`
	ProcName         *string `json:"procName,omitempty"`
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
	ModelCode        *string `json:"modelCode,omitempty"`
	CrashReporterKey *string `json:"crashReporterKey,omitempty"`
	Incident         *string `json:"incident,omitempty"`
	TriggeredThread  *string `json:"triggeredThread,omitempty"`
	FaultingThread   *int    `json:"faultingThread,omitempty"`

	OSVersion   *OSVersion   `json:"osVersion,omitempty"`
	BundleInfo  *BundleInfo  `json:"bundleInfo,omitempty"`
	Exception   *Exception   `json:"exception,omitempty"`
	Termination *Termination `json:"termination,omitempty"`
	Threads     []Thread     `json:"threads,omitempty"`
	UsedImages  []Image      `json:"usedImages,omitempty"`
}

// OSVersion describes the OS the crash happened on.
type OSVersion struct {
	Train       *string `json:"train,omitempty"`
	Build       *string `json:"build,omitempty"`
	ReleaseType *string `json:"releaseType,omitempty"`
	IsEmbedded  *bool   `json:"isEmbedded,omitempty"`
}

type BundleInfo struct {
	ShortVersion *string `json:"CFBundleShortVersionString,omitempty"`
	Version      *string `json:"CFBundleVersion,omitempty"`
	Identifier   *string `json:"CFBundleIdentifier,omitempty"`
}

type Exception struct {
	Type   *string `json:"type,omitempty"`
	Codes  *string `json:"codes,omitempty"`
	Signal *string `json:"signal,omitempty"`
}

type Termination struct {
	Namespace *string `json:"namespace,omitempty"`
	Code      *int64  `json:"code,omitempty"`
	Indicator *string `json:"indicator,omitempty"`
	ByProc    *string `json:"byProc,omitempty"`
	ByPID     *int    `json:"byPid,omitempty"`
}

// Thread is one thread of the crashed process.
type Thread struct {
	ID          *int64       `json:"id,omitempty"`
	Triggered   bool         `json:"triggered,omitempty"`
	Queue       *string      `json:"queue,omitempty"`
	Name        *string      `json:"name,omitempty"`
	Frames      []Frame      `json:"frames,omitempty"`
	ThreadState *ThreadState `json:"threadState,omitempty"`
}

// Frame is a single stack entry. ImageIndex refers to Body.UsedImages.
type Frame struct {
	ImageOffset    *uint64 `json:"imageOffset,omitempty"`
	ImageIndex     *int    `json:"imageIndex,omitempty"`
	Symbol         *string `json:"symbol,omitempty"`
	SymbolLocation *uint64 `json:"symbolLocation,omitempty"`
	SourceFile     *string `json:"sourceFile,omitempty"`
	SourceLine     *int    `json:"sourceLine,omitempty"`
	Inline         bool    `json:"inline,omitempty"`
}

// ThreadState holds the captured registers of a thread.
type ThreadState struct {
	Flavor *string    `json:"flavor,omitempty"`
	X      []Register `json:"x,omitempty"`
	FP     *Register  `json:"fp,omitempty"`
	LR     *Register  `json:"lr,omitempty"`
	SP     *Register  `json:"sp,omitempty"`
	PC     *Register  `json:"pc,omitempty"`
	CPSR   *Register  `json:"cpsr,omitempty"`
	FAR    *Register  `json:"far,omitempty"`
	ESR    *Register  `json:"esr,omitempty"`
}

type Register struct {
	Value       *uint64 `json:"value,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Image is a loaded binary referenced by frames.
type Image struct {
	Base         *uint64 `json:"base,omitempty"`
	Size         *uint64 `json:"size,omitempty"`
	Name         *string `json:"name,omitempty"`
	BundleID     *string `json:"CFBundleIdentifier,omitempty"`
	UUID         *string `json:"uuid,omitempty"`
	Path         *string `json:"path,omitempty"`
	ShortVersion *string `json:"CFBundleShortVersionString,omitempty"`
	Arch         *string `json:"arch,omitempty"`
}

// DecodeBody decodes the body best-effort. A field whose value has an
// unexpected type is left unset and the rest of the document is still
// decoded; nil is returned only when the text is not JSON at all.
func DecodeBody(text string) *Body {
	data := []byte(text)
	if !json.Valid(data) {
		return nil
	}
	var body Body
	// A non-object top level leaves an empty body.
	_ = json.Unmarshal(data, &body)
	return &body
}

// fields holds the raw members of one JSON object.
type fields map[string]json.RawMessage

func decodeFields(data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f, nil
}

var jsonNull = []byte("null")

// optional decodes member key into a new T, or returns nil when the member is
// missing, null or of the wrong type.
func optional[T any](f fields, key string) *T {
	raw, ok := f[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// flag decodes a boolean member; anything but true is false.
func flag(f fields, key string) bool {
	v := optional[bool](f, key)
	return v != nil && *v
}

// list decodes an array member. Elements that cannot be decoded stay zero so
// indexes into the array keep their meaning.
func list[T any](f fields, key string) []T {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		_ = json.Unmarshal(item, &out[i])
	}
	return out
}

func (b *Body) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*b = Body{
		PID:              optional[int](f, "pid"),
		ProcName:         optional[string](f, "procName"),
		ProcPath:         optional[string](f, "procPath"),
		CPUType:          optional[string](f, "cpuType"),
		ProcRole:         optional[string](f, "procRole"),
		ParentProc:       optional[string](f, "parentProc"),
		ParentPID:        optional[int](f, "parentPid"),
		CoalitionName:    optional[string](f, "coalitionName"),
		CoalitionID:      optional[int](f, "coalitionID"),
		ResponsibleProc:  optional[string](f, "responsibleProc"),
		ResponsiblePID:   optional[int](f, "responsiblePid"),
		CaptureTime:      optional[string](f, "captureTime"),
		ProcLaunch:       optional[string](f, "procLaunch"),
		ModelCode:        optional[string](f, "modelCode"),
		CrashReporterKey: optional[string](f, "crashReporterKey"),
		Incident:         optional[string](f, "incident"),
		TriggeredThread:  optional[string](f, "triggeredThread"),
		FaultingThread:   optional[int](f, "faultingThread"),

		OSVersion:   optional[OSVersion](f, "osVersion"),
		BundleInfo:  optional[BundleInfo](f, "bundleInfo"),
		Exception:   optional[Exception](f, "exception"),
		Termination: optional[Termination](f, "termination"),
		Threads:     list[Thread](f, "threads"),
		UsedImages:  list[Image](f, "usedImages"),
	}
	return nil
}

func (o *OSVersion) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*o = OSVersion{
		Train:       optional[string](f, "train"),
		Build:       optional[string](f, "build"),
		ReleaseType: optional[string](f, "releaseType"),
		IsEmbedded:  optional[bool](f, "isEmbedded"),
	}
	return nil
}

func (bi *BundleInfo) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*bi = BundleInfo{
		ShortVersion: optional[string](f, "CFBundleShortVersionString"),
		Version:      optional[string](f, "CFBundleVersion"),
		Identifier:   optional[string](f, "CFBundleIdentifier"),
	}
	return nil
}

func (e *Exception) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*e = Exception{
		Type:   optional[string](f, "type"),
		Codes:  optional[string](f, "codes"),
		Signal: optional[string](f, "signal"),
	}
	return nil
}

func (t *Termination) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*t = Termination{
		Namespace: optional[string](f, "namespace"),
		Code:      optional[int64](f, "code"),
		Indicator: optional[string](f, "indicator"),
		ByProc:    optional[string](f, "byProc"),
		ByPID:     optional[int](f, "byPid"),
	}
	return nil
}

func (t *Thread) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*t = Thread{
		ID:          optional[int64](f, "id"),
		Triggered:   flag(f, "triggered"),
		Queue:       optional[string](f, "queue"),
		Name:        optional[string](f, "name"),
		Frames:      list[Frame](f, "frames"),
		ThreadState: optional[ThreadState](f, "threadState"),
	}
	return nil
}

func (fr *Frame) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*fr = Frame{
		ImageOffset:    optional[uint64](f, "imageOffset"),
		ImageIndex:     optional[int](f, "imageIndex"),
		Symbol:         optional[string](f, "symbol"),
		SymbolLocation: optional[uint64](f, "symbolLocation"),
		SourceFile:     optional[string](f, "sourceFile"),
		SourceLine:     optional[int](f, "sourceLine"),
		Inline:         flag(f, "inline"),
	}
	return nil
}

func (ts *ThreadState) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*ts = ThreadState{
		Flavor: optional[string](f, "flavor"),
		X:      list[Register](f, "x"),
		FP:     optional[Register](f, "fp"),
		LR:     optional[Register](f, "lr"),
		SP:     optional[Register](f, "sp"),
		PC:     optional[Register](f, "pc"),
		CPSR:   optional[Register](f, "cpsr"),
		FAR:    optional[Register](f, "far"),
		ESR:    optional[Register](f, "esr"),
	}
	return nil
}

func (r *Register) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*r = Register{
		Value:       optional[uint64](f, "value"),
		Description: optional[string](f, "description"),
	}
	return nil
}

func (img *Image) UnmarshalJSON(data []byte) error {
	f, err := decodeFields(data)
	if err != nil {
		return err
	}
	*img = Image{
		Base:         optional[uint64](f, "base"),
		Size:         optional[uint64](f, "size"),
		Name:         optional[string](f, "name"),
		BundleID:     optional[string](f, "CFBundleIdentifier"),
		UUID:         optional[string](f, "uuid"),
		Path:         optional[string](f, "path"),
		ShortVersion: optional[string](f, "CFBundleShortVersionString"),
		Arch:         optional[string](f, "arch"),
	}
	return nil
}

// CrashedThread returns the first triggered thread and its position in Threads.
func (b *Body) CrashedThread() (*Thread, int, bool) {
	if b == nil {
		return nil, 0, false
	}
	for i := range b.Threads {
		if b.Threads[i].Triggered {
			return &b.Threads[i], i, true
		}
	}
	return nil, 0, false
}

// Image returns the image at index, or nil when the index is out of range.
func (b *Body) Image(index int) *Image {
	if b == nil || index < 0 || index >= len(b.UsedImages) {
		return nil
	}
	return &b.UsedImages[index]
}
