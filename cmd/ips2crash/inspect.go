// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wingedpig/ips2crash/internal/convert"
	"github.com/wingedpig/ips2crash/internal/ips"
)

func (c *cli) newInspectCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "inspect <input>",
		Short: "Show the key facts of an IPS file without converting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := convert.ReadText(args[0])
			if err != nil {
				return err
			}
			report, err := ips.Decode(text)
			if err != nil {
				return err
			}

			in := report.Inspect()
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), in)
			}
			printInspection(cmd.OutOrStdout(), in)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// printJSON outputs any value as formatted JSON
func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

func printInspection(w io.Writer, in ips.Inspection) {
	row := func(label, value string) {
		fmt.Fprintf(w, "%-21s%s\n", label+":", value)
	}

	row("Incident Identifier", in.IncidentID)
	row("Process", fmt.Sprintf("%s [%d]", in.Process, in.PID))
	row("Identifier", in.Identifier)
	row("Version", fmt.Sprintf("%s (%s)", in.Version, in.BuildVersion))
	row("Hardware Model", in.HardwareModel)
	row("OS Version", in.OSVersion)
	row("Date/Time", in.DateTime)

	if in.HasException() {
		exc := in.ExceptionType
		if in.HasSignal() {
			exc += " (" + in.ExceptionSignal + ")"
		}
		row("Exception", exc)
		row("Exception Codes", in.ExceptionCodes)
	}
	if in.HasTermination() {
		row("Termination", strings.Join([]string{in.TerminationNamespace, in.TerminationCode, in.TerminationIndicator}, " "))
	}
	if in.HasTriggeredThread() {
		row("Triggered Thread", in.TriggeredThread)
	}

	if !in.BodyDecoded {
		row("Body", "not decodable")
		return
	}
	row("Threads", fmt.Sprintf("%d", in.Threads))
	row("Binary Images", fmt.Sprintf("%d", in.Images))
}
