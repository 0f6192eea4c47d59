// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wingedpig/ips2crash/pkg/client"
)

func (c *cli) newEventsCmd() *cobra.Command {
	var (
		server     string
		types      []string
		source     string
		since      time.Duration
		limit      int
		jsonOutput bool
		follow     bool
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent conversion activity of a running server",
		Long: `Show recent conversion activity of a running server.

With --follow, stream new events as they happen until interrupted.
--since and --limit apply only to the recent history.`,
		Example: `  ips2crash events --type 'report.*' --since 30m
  ips2crash events --type conversion.failed --source watch --json
  ips2crash events --follow --type '*.failed'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" {
				server = "http://" + c.cfg.Server.Addr()
			}

			opts := &client.EventOptions{Types: types, Source: source, Limit: limit}
			if since > 0 {
				opts.Since = time.Now().Add(-since)
			}

			if follow {
				return followEvents(cmd, client.New(server), opts, jsonOutput)
			}

			list, err := client.New(server).Events(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), list)
			}
			printEvents(cmd.OutOrStdout(), list)
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "Base URL of the server (default: from server config)")
	cmd.Flags().StringSliceVar(&types, "type", nil, "Event type patterns (e.g. 'report.*', '*.failed')")
	cmd.Flags().StringVar(&source, "source", "", "Only events from this source: api or watch")
	cmd.Flags().DurationVar(&since, "since", 0, "Only events newer than this (e.g. 10m)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the newest N events")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON (one object per line with --follow)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream new events until interrupted")

	return cmd
}

func followEvents(cmd *cobra.Command, c *client.Client, opts *client.EventOptions, jsonOutput bool) error {
	w := cmd.OutOrStdout()
	enc := json.NewEncoder(w)
	return c.Follow(cmd.Context(), opts, func(e client.Event) error {
		if jsonOutput {
			return enc.Encode(e)
		}
		return printEvent(w, e)
	})
}

func printEvents(w io.Writer, list []client.Event) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No events")
		return
	}

	for _, e := range list {
		printEvent(w, e)
	}
}

func printEvent(w io.Writer, e client.Event) error {
	keys := make([]string, 0, len(e.Payload))
	for k := range e.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, fmt.Sprintf("%s=%v", k, e.Payload[k]))
	}

	_, err := fmt.Fprintf(w, "%s  %-18s %-6s %s\n",
		e.Timestamp.Format("15:04:05.000"),
		e.Type,
		e.Source,
		strings.Join(fields, " "),
	)
	return err
}
