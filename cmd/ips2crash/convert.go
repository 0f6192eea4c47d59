// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wingedpig/ips2crash/internal/convert"
	"github.com/wingedpig/ips2crash/internal/ips"
)

func (c *cli) newConvertCmd() *cobra.Command {
	var (
		output    string
		outputDir string
		jobs      int
	)

	cmd := &cobra.Command{
		Use:   "convert <input>...",
		Short: "Convert IPS files to .crash text",
		Long: `Convert one or more IPS files. Each output is written next to its input
with the extension replaced by .crash, or into --output-dir. With a single
input, --output names the output file; "-" writes to stdout.`,
		Example: `  ips2crash convert MyApp-2024-05-01-101010.ips
  ips2crash convert report.ips -o - | less
  ips2crash convert ~/Library/Logs/DiagnosticReports/*.ips --output-dir /tmp/crashes -j 8`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" {
				if len(args) != 1 {
					return fmt.Errorf("--output requires exactly one input, got %d", len(args))
				}
				return c.convertOne(cmd, args[0], output)
			}

			results, err := convert.Batch(cmd.Context(), args, convert.Options{
				OutputDir: outputDir,
				Workers:   jobs,
				Log:       c.log,
			})
			if err != nil {
				failed := 0
				for _, r := range results {
					if r.Err != nil {
						failed++
					}
				}
				if len(results) == 1 {
					return results[0].Err
				}
				return fmt.Errorf("%d of %d conversions failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `Output path for a single input ("-" for stdout)`)
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for converted files")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", convert.DefaultWorkers, "Max parallel conversions")

	return cmd
}

func (c *cli) convertOne(cmd *cobra.Command, input, output string) error {
	if output == "-" {
		text, err := convert.ReadText(input)
		if err != nil {
			return err
		}
		crash, err := ips.Convert(text)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), crash)
		return err
	}

	if err := convert.File(cmd.Context(), input, output); err != nil {
		return err
	}
	c.log.Info().Str("input", input).Str("output", output).Msg("converted")
	return nil
}
