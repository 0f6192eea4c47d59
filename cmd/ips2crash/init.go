// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigFile = "ips2crash.hjson"

func (c *cli) newInitCmd() *cobra.Command {
	var (
		dir        string
		port       int
		reportsDir string
		watchDir   string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a commented ips2crash.hjson in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(dir, defaultConfigFile)

			// Check if config file already exists
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; remove it first or pass --force", path)
			}

			content := generateConfig(port, reportsDir, watchDir)
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %s\n\n", path)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  1. Review and edit "+defaultConfigFile+" as needed")
			fmt.Fprintln(out, "  2. Run: ips2crash serve   (or: ips2crash watch)")
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write the config file into")
	cmd.Flags().IntVar(&port, "port", 8723, "Server port")
	cmd.Flags().StringVar(&reportsDir, "reports-dir", "crashes", "Report store directory")
	cmd.Flags().StringVar(&watchDir, "watch-dir", "", "Drop folder for the watch command")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

// escapeHJSONValue escapes a string for safe inclusion in an HJSON double-quoted value.
func escapeHJSONValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

func generateConfig(port int, reportsDir, watchDir string) string {
	var sb strings.Builder

	sb.WriteString(`{
  // =============================================================================
  // ips2crash Configuration
  // =============================================================================
  //
  // This is an HJSON file (JSON with comments and relaxed syntax).
  // Every setting is optional; the values below are the defaults.

  // ---------------------------------------------------------------------------
  // HTTP Service (ips2crash serve)
  // ---------------------------------------------------------------------------
  server: {
    // Host to bind to (use "0.0.0.0" to allow remote access)
    host: "127.0.0.1"

    // Port for the API
    port: `)
	sb.WriteString(strconv.Itoa(port))
	sb.WriteString(`

    // Largest accepted IPS upload in bytes
    max_body_bytes: 10485760
  }

  // ---------------------------------------------------------------------------
  // Report Store
  // ---------------------------------------------------------------------------
  reports: {
    // Directory holding converted .crash files
    dir: "`)
	sb.WriteString(escapeHJSONValue(reportsDir))
	sb.WriteString(`"

    // Reports older than this are removed (supports "d" for days)
    max_age: "7d"

    // Only the newest max_count reports are kept
    max_count: 500
  }

  // ---------------------------------------------------------------------------
  // Drop Folder (ips2crash watch)
  // ---------------------------------------------------------------------------
  watch: {
    // Directory to watch for .ips files
    dir: "`)
	sb.WriteString(escapeHJSONValue(watchDir))
	sb.WriteString(`"

    // Wait this long after the last write before converting
    debounce: "250ms"

    // Write .crash files here instead of the report store
    // output_dir: "converted"

    // Max concurrent conversions
    workers: 4
  }

  // ---------------------------------------------------------------------------
  // Activity History (GET /api/v1/events, ips2crash events)
  // ---------------------------------------------------------------------------
  events: {
    // Max events kept in memory
    max_events: 1000

    // Events older than this are dropped
    max_age: "1h"
  }

  // ---------------------------------------------------------------------------
  // Logging
  // ---------------------------------------------------------------------------
  logging: {
    // debug, info, warn or error
    level: "info"

    // console (human-readable) or json
    format: "console"
  }
}
`)

	return sb.String()
}
