// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package ips

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	reportVersion = "104"

	labelWidth       = 21 // len("Incident Identifier: ")
	frameNameColumn  = 34 // frame address follows at column 35
	registerColumn   = 6  // colon of the first register in a row
	registerStride   = 25 // distance between register colons
	xRegistersPerRow = 4
	registersPerRow  = 3
	imageAddrWidth   = 18
)

var flavorNames = map[string]string{
	"ARM_THREAD_STATE":   "ARM Thread State",
	"ARM_THREAD_STATE64": "ARM Thread State (64-bit)",
}

// registerOrder ranks non-x registers; x registers rank before all of them.
var registerOrder = map[string]int{
	"fp":   1,
	"lr":   2,
	"sp":   3,
	"pc":   4,
	"cpsr": 5,
	"far":  6,
	"esr":  7,
}

// Render writes the legacy crash log for a resolved view. body supplies the
// threads and images and may be nil. raw is appended verbatim after the
// report. Render never fails; missing data is omitted or defaulted.
func Render(v View, body *Body, raw string) string {
	var b strings.Builder

	writeSummary(&b, v)

	if v.HasException() {
		signal := ""
		if v.HasSignal() {
			signal = " (" + v.ExceptionSignal + ")"
		}
		fmt.Fprintf(&b, "\nException Type:  %s%s", v.ExceptionType, signal)
		fmt.Fprintf(&b, "\nException Codes: %s", v.ExceptionCodes)
	}

	if v.HasTermination() {
		fmt.Fprintf(&b, "\nTermination Reason: %s %s %s", v.TerminationNamespace, v.TerminationCode, v.TerminationIndicator)
		fmt.Fprintf(&b, "\nTerminating Process: %s [%d]", v.TerminatingProcess, v.TerminatingPID)
	}

	if v.HasTriggeredThread() {
		fmt.Fprintf(&b, "\n\nTriggered by Thread:  %s", v.TriggeredThread)
	}

	b.WriteString("\n\n")
	writeThreads(&b, body)

	if thread, number, ok := body.CrashedThread(); ok {
		b.WriteString("\n")
		writeThreadState(&b, thread, &number)
		b.WriteString("\n")
	}

	b.WriteString("\nBinary Images:")
	if body != nil {
		for i := range body.UsedImages {
			writeImage(&b, &body.UsedImages[i])
		}
	}

	b.WriteString("\n\nEOF\n\n-----------\nFull Report\n-----------\n\n")
	b.WriteString(raw)

	return b.String()
}

func writeSummary(b *strings.Builder, v View) {
	b.WriteString("-------------------------------------\n")
	b.WriteString("Translated Report (Full Report Below)\n")
	b.WriteString("-------------------------------------\n\n")

	line := func(label, value string) {
		fmt.Fprintf(b, "%-*s%s\n", labelWidth, label+":", value)
	}

	line("Incident Identifier", v.IncidentID)
	line("CrashReporter Key", v.CrashReporterKey)
	line("Hardware Model", v.HardwareModel)
	line("Process", fmt.Sprintf("%s [%d]", v.Process, v.PID))
	line("Path", v.Path)
	line("Identifier", v.Identifier)
	line("Version", fmt.Sprintf("%s (%s)", v.Version, v.BuildVersion))
	line("Code Type", v.CodeType+" (Native)")
	line("Role", v.Role)
	line("Parent Process", fmt.Sprintf("%s [%d]", v.ParentProcess, v.ParentPID))
	line("Coalition", fmt.Sprintf("%s [%d]", v.Coalition, v.CoalitionID))
	line("Responsible Process", fmt.Sprintf("%s [%d]", v.ResponsibleProcess, v.ResponsiblePID))
	b.WriteString("\n")
	line("Date/Time", v.DateTime)
	line("Launch Time", v.LaunchTime)
	line("OS Version", v.OSVersion)
	line("Release Type", v.ReleaseType)
	line("Report Version", reportVersion)
}

// writeThreads dumps every thread in body order, each followed by a blank line.
func writeThreads(b *strings.Builder, body *Body) {
	if body == nil {
		return
	}

	for n := range body.Threads {
		thread := &body.Threads[n]

		fmt.Fprintf(b, "Thread %d", n)
		if thread.Triggered {
			b.WriteString(" Crashed")
		}
		b.WriteString(":")
		if thread.Queue != nil {
			b.WriteString(":  Dispatch queue: " + *thread.Queue)
		} else if thread.Name != nil {
			b.WriteString(": " + *thread.Name)
		}

		frameNumber := 0
		for i := range thread.Frames {
			if writeFrame(b, body, &thread.Frames[i], frameNumber) {
				frameNumber++
			}
		}
		b.WriteString("\n\n")
	}
}

// writeFrame writes one frame line and reports whether the frame was printed.
// Frames without an image offset or a valid image index are skipped.
func writeFrame(b *strings.Builder, body *Body, frame *Frame, number int) bool {
	if frame.ImageOffset == nil || frame.ImageIndex == nil {
		return false
	}
	image := body.Image(*frame.ImageIndex)
	if image == nil {
		return false
	}

	offset := *frame.ImageOffset
	var base uint64
	if image.Base != nil {
		base = *image.Base
	}

	line := fmt.Sprintf("%-3d %s", number, image.displayName(unknown))
	b.WriteString("\n")
	b.WriteString(padRight(line, frameNameColumn))
	b.WriteString("\t       ")
	fmt.Fprintf(b, "0x%x", base+offset)

	switch {
	case frame.Symbol != nil:
		b.WriteString(" " + *frame.Symbol)
		if frame.SymbolLocation != nil {
			fmt.Fprintf(b, " + %d", *frame.SymbolLocation)
		}
	case image.Base != nil:
		fmt.Fprintf(b, " 0x%x + %d", *image.Base, offset)
	}

	if frame.SourceFile != nil && frame.SourceLine != nil {
		fmt.Fprintf(b, " (%s:%d)", *frame.SourceFile, *frame.SourceLine)
	} else if frame.Inline {
		b.WriteString(" [inlined]")
	}
	return true
}

// writeThreadState writes the register dump of the crashed thread. number is
// the thread's position in the dump; when nil the thread id is used instead.
func writeThreadState(b *strings.Builder, thread *Thread, number *int) {
	state := thread.ThreadState
	if state == nil {
		state = &ThreadState{}
	}

	flavor := ""
	if state.Flavor != nil {
		flavor = *state.Flavor
	}
	if name, ok := flavorNames[flavor]; ok {
		flavor = name
	}

	var id int64
	switch {
	case number != nil:
		id = int64(*number)
	case thread.ID != nil:
		id = *thread.ID
	}
	fmt.Fprintf(b, "Thread %d crashed with %s:\n", id, flavor)

	writeRegisters(b, collectRegisters(state))
}

// collectRegisters formats the captured register values by register name.
func collectRegisters(state *ThreadState) map[string]string {
	regs := make(map[string]string)

	for i, x := range state.X {
		var value uint64
		if x.Value != nil {
			value = *x.Value
		}
		regs["x"+strconv.Itoa(i)] = fmt.Sprintf("0x%016x", value)
	}

	wide := []struct {
		name string
		reg  *Register
	}{
		{"fp", state.FP},
		{"lr", state.LR},
		{"sp", state.SP},
		{"pc", state.PC},
		{"far", state.FAR},
	}
	for _, w := range wide {
		if w.reg != nil && w.reg.Value != nil {
			regs[w.name] = fmt.Sprintf("0x%016x", *w.reg.Value)
		}
	}

	if state.CPSR != nil && state.CPSR.Value != nil {
		regs["cpsr"] = fmt.Sprintf("0x%08x", *state.CPSR.Value)
	}
	if state.ESR != nil && state.ESR.Value != nil {
		desc := ""
		if state.ESR.Description != nil {
			desc = *state.ESR.Description
		}
		regs["esr"] = fmt.Sprintf("0x%08x %s", *state.ESR.Value, desc)
	}

	return regs
}

// writeRegisters lays registers out in rows: four x registers or three other
// registers per row, with each colon at registerColumn + registerStride*position.
// A row also ends where the x registers give way to the others.
func writeRegisters(b *strings.Builder, regs map[string]string) {
	keys := sortRegisterKeys(regs)

	row := ""
	pos := 0
	for i, key := range keys {
		colon := registerColumn + registerStride*pos
		pad := colon - utf8.RuneCountInString(row) - len(key)
		row += strings.Repeat(" ", max(pad, 0)) + key + ": " + regs[key]
		pos++

		_, isX := xRegisterIndex(key)
		perRow := registersPerRow
		if isX {
			perRow = xRegistersPerRow
		}
		groupEnds := false
		if i+1 < len(keys) {
			_, nextIsX := xRegisterIndex(keys[i+1])
			groupEnds = nextIsX != isX
		}

		if pos == perRow || groupEnds {
			b.WriteString(row + "\n")
			row = ""
			pos = 0
		}
	}
	b.WriteString(row)
}

// sortRegisterKeys orders x registers numerically, then fp, lr, sp, pc, cpsr,
// far, esr, then any other name lexically.
func sortRegisterKeys(regs map[string]string) []string {
	keys := make([]string, 0, len(regs))
	for k := range regs {
		keys = append(keys, k)
	}

	rank := func(key string) (int, int) {
		if n, ok := xRegisterIndex(key); ok {
			return 0, n
		}
		if r, ok := registerOrder[key]; ok {
			return r, 0
		}
		return 100, 0
	}

	sort.Slice(keys, func(i, j int) bool {
		ri, ni := rank(keys[i])
		rj, nj := rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		if ni != nj {
			return ni < nj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// xRegisterIndex parses general purpose register names such as "x12".
func xRegisterIndex(key string) (int, bool) {
	if !strings.HasPrefix(key, "x") {
		return 0, false
	}
	n, err := strconv.Atoi(key[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func writeImage(b *strings.Builder, image *Image) {
	var base, size uint64
	if image.Base != nil {
		base = *image.Base
	}
	if image.Size != nil {
		size = *image.Size
	}

	start := "0x0"
	if base != 0 {
		start = fmt.Sprintf("0x%08x", base)
	}
	end := fmt.Sprintf("0x%08x", base+size-1)

	version := "*"
	if image.ShortVersion != nil {
		version = *image.ShortVersion
	}
	uuid := ""
	if image.UUID != nil {
		uuid = *image.UUID
	}
	path := "???"
	if image.Path != nil {
		path = *image.Path
	}

	fmt.Fprintf(b, "\n%*s - %*s %s (%s) <%s> %s",
		imageAddrWidth, start,
		imageAddrWidth, end,
		image.displayName("???"), version, uuid, path)
}

// displayName prefers the bundle identifier over the file name.
func (img *Image) displayName(fallback string) string {
	if img.BundleID != nil {
		return *img.BundleID
	}
	if img.Name != nil {
		return *img.Name
	}
	return fallback
}

func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
