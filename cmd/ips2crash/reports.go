// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wingedpig/ips2crash/internal/crashes"
	"github.com/wingedpig/ips2crash/pkg/client"
)

// reportStore is the report store of this machine or of a running server.
type reportStore interface {
	List(ctx context.Context) ([]crashes.Summary, error)
	Get(ctx context.Context, id string) (*crashes.Report, error)
	Newest(ctx context.Context) (*crashes.Report, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

func (c *cli) newReportsCmd() *cobra.Command {
	var (
		jsonOutput bool
		server     string
	)

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Manage stored reports",
		Long: `Manage converted reports. Without --server the local store (reports.dir)
is used; with --server the store of a running "ips2crash serve" is used.`,
	}
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.PersistentFlags().StringVar(&server, "server", "", "Base URL of an ips2crash server (e.g. http://127.0.0.1:8723)")

	withStore := func(fn func(cmd *cobra.Command, store reportStore, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if server != "" {
				return fn(cmd, remoteReports{client.New(server)}, args)
			}
			store, err := c.openStore()
			if err != nil {
				return err
			}
			return fn(cmd, localReports{store}, args)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored reports, newest first",
			Args:  cobra.NoArgs,
			RunE: withStore(func(cmd *cobra.Command, store reportStore, args []string) error {
				summaries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					if summaries == nil {
						summaries = []crashes.Summary{}
					}
					return printJSON(cmd.OutOrStdout(), summaries)
				}
				printSummaries(cmd.OutOrStdout(), summaries)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "newest",
			Short: "Print the most recent report",
			Args:  cobra.NoArgs,
			RunE: withStore(func(cmd *cobra.Command, store reportStore, args []string) error {
				report, err := store.Newest(cmd.Context())
				if err != nil {
					return err
				}
				if report == nil {
					if jsonOutput {
						return printJSON(cmd.OutOrStdout(), nil)
					}
					fmt.Fprintln(cmd.OutOrStdout(), "No reports stored")
					return nil
				}
				return printReport(cmd.OutOrStdout(), report, jsonOutput)
			}),
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Print a stored report",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, store reportStore, args []string) error {
				report, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printReport(cmd.OutOrStdout(), report, jsonOutput)
			}),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a stored report",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, store reportStore, args []string) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				if !jsonOutput {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted report: %s\n", args[0])
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete all stored reports",
			Args:  cobra.NoArgs,
			RunE: withStore(func(cmd *cobra.Command, store reportStore, args []string) error {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				if !jsonOutput {
					fmt.Fprintln(cmd.OutOrStdout(), "Cleared all reports")
				}
				return nil
			}),
		},
	)

	return cmd
}

func printSummaries(w io.Writer, summaries []crashes.Summary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No reports stored")
		return
	}

	fmt.Fprintf(w, "%-30s %-25s %-20s %8s %s\n", "ID", "PROCESS", "CREATED", "SIZE", "EXCEPTION")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, s := range summaries {
		process := s.Process
		if len(process) > 23 {
			process = process[:23] + ".."
		}
		fmt.Fprintf(w, "%-30s %-25s %-20s %8d %s\n",
			s.ID,
			process,
			s.Created.Format("2006-01-02 15:04:05"),
			s.Size,
			s.ExceptionType,
		)
	}
}

func printReport(w io.Writer, report *crashes.Report, jsonOutput bool) error {
	if jsonOutput {
		return printJSON(w, report)
	}
	_, err := fmt.Fprint(w, report.Text)
	return err
}

type localReports struct {
	m *crashes.Manager
}

func (l localReports) List(context.Context) ([]crashes.Summary, error) { return l.m.List() }

func (l localReports) Get(_ context.Context, id string) (*crashes.Report, error) {
	return l.m.Get(id)
}

func (l localReports) Newest(context.Context) (*crashes.Report, error) { return l.m.Newest() }

func (l localReports) Delete(_ context.Context, id string) error { return l.m.Delete(id) }

func (l localReports) Clear(context.Context) error { return l.m.Clear() }

type remoteReports struct {
	c *client.Client
}

func (r remoteReports) List(ctx context.Context) ([]crashes.Summary, error) {
	remote, err := r.c.Reports.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]crashes.Summary, 0, len(remote))
	for _, s := range remote {
		summaries = append(summaries, crashes.Summary{
			ID:            s.ID,
			Process:       s.Process,
			IncidentID:    s.IncidentID,
			ExceptionType: s.ExceptionType,
			Size:          s.Size,
			Created:       s.Created,
		})
	}
	return summaries, nil
}

func (r remoteReports) Get(ctx context.Context, id string) (*crashes.Report, error) {
	report, err := r.c.Reports.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &crashes.Report{ID: report.ID, Text: report.Text}, nil
}

func (r remoteReports) Newest(ctx context.Context) (*crashes.Report, error) {
	report, err := r.c.Reports.Newest(ctx)
	if err != nil || report == nil {
		return nil, err
	}
	return &crashes.Report{ID: report.ID, Text: report.Text}, nil
}

func (r remoteReports) Delete(ctx context.Context, id string) error {
	return r.c.Reports.Delete(ctx, id)
}

func (r remoteReports) Clear(ctx context.Context) error {
	return r.c.Reports.Clear(ctx)
}
