// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wingedpig/ips2crash/internal/convert"
	"github.com/wingedpig/ips2crash/internal/crashes"
	"github.com/wingedpig/ips2crash/internal/events"
	"github.com/wingedpig/ips2crash/internal/ips"
	"github.com/wingedpig/ips2crash/internal/watcher"
)

func (c *cli) newWatchCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Convert IPS files as they appear in a directory",
		Long: `Watch a directory and convert every .ips file created or rewritten in it.
Converted reports go to the report store (reports.dir) unless --output-dir or
watch.output_dir is set. Runs until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.cfg.Watch.Dir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				return fmt.Errorf("no directory given and watch.dir is not set")
			}
			if outputDir == "" {
				outputDir = c.cfg.Watch.OutputDir
			}

			var store *crashes.Manager
			if outputDir == "" {
				var err error
				if store, err = c.openStore(); err != nil {
					return err
				}
			}

			w, err := watcher.NewDirWatcher(dir, watcher.Options{
				Debounce: c.cfg.Watch.DebounceDuration(),
				Workers:  c.cfg.Watch.Workers,
				Log:      c.log,
			}, newWatchHandler(c.log, outputDir, store, nil))
			if err != nil {
				return err
			}

			dest := outputDir
			if store != nil {
				dest = store.Dir()
			}
			c.log.Info().Str("dir", w.Dir()).Str("dest", dest).Msg("watching for IPS files")

			<-cmd.Context().Done()
			c.log.Info().Msg("stopping watcher")
			return w.Close()
		},
	}

	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Write .crash files here instead of the report store")

	return cmd
}

// newWatchHandler converts a settled IPS file into outputDir, or into store
// when outputDir is empty. Outcomes are published on bus, which may be nil.
func newWatchHandler(log zerolog.Logger, outputDir string, store *crashes.Manager, bus events.EventBus) watcher.Handler {
	return func(ctx context.Context, path string) {
		failed := func(err error, msg string) {
			log.Error().Err(err).Str("input", path).Msg(msg)
			events.Emit(ctx, bus, events.SourceWatch, events.EventConversionFailed, map[string]interface{}{
				"input": path,
				"error": err.Error(),
			})
		}

		text, err := convert.ReadText(path)
		if err != nil {
			failed(err, "conversion failed")
			return
		}
		report, err := ips.Decode(text)
		if err != nil {
			failed(err, "conversion failed")
			return
		}
		crash := report.Render()
		view := report.View()

		if outputDir != "" {
			out := convert.OutputPath(path, outputDir)
			if err := convert.WriteText(out, crash); err != nil {
				failed(err, "conversion failed")
				return
			}
			log.Info().Str("input", path).Str("output", out).Msg("converted")
			events.Emit(ctx, bus, events.SourceWatch, events.EventReportConverted, map[string]interface{}{
				"input":       path,
				"output":      out,
				"incident_id": view.IncidentID,
				"process":     view.Process,
			})
			return
		}

		id, err := store.Save(crash)
		if err != nil {
			failed(err, "failed to store report")
			return
		}
		log.Info().Str("input", path).Str("id", id).Msg("converted")
		events.Emit(ctx, bus, events.SourceWatch, events.EventReportStored, map[string]interface{}{
			"input":       path,
			"id":          id,
			"incident_id": view.IncidentID,
			"process":     view.Process,
		})
	}
}
