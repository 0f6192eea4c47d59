// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wingedpig/ips2crash/internal/api"
	"github.com/wingedpig/ips2crash/internal/events"
	"github.com/wingedpig/ips2crash/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) newServeCmd() *cobra.Command {
	var (
		host     string
		port     int
		watchDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve IPS conversion over HTTP",
		Long: `Start the HTTP conversion service:

  POST   /api/v1/convert[?store=1]  IPS document in, crash log out
  POST   /api/v1/inspect            IPS document in, resolved fields as JSON
  GET    /api/v1/reports            List stored reports
  GET    /api/v1/reports/newest     Most recent stored report
  GET    /api/v1/reports/{id}       Stored report text
  DELETE /api/v1/reports/{id}       Delete a stored report
  DELETE /api/v1/reports            Delete all stored reports
  GET    /api/v1/events             Conversion activity history
  GET    /api/v1/events/ws          Live conversion activity (WebSocket)
  GET    /api/v1/health             Liveness

With --watch, IPS files dropped into the directory are converted into the
report store as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if host != "" {
				c.cfg.Server.Host = host
			}
			if port != 0 {
				c.cfg.Server.Port = port
			}

			store, err := c.openStore()
			if err != nil {
				return err
			}

			bus := events.NewMemoryEventBus(events.MemoryBusConfig{
				HistoryMaxEvents: c.cfg.Events.MaxEvents,
				HistoryMaxAge:    c.cfg.Events.MaxAgeDuration(),
				Log:              c.log,
			})
			defer bus.Close()

			if watchDir != "" {
				w, err := watcher.NewDirWatcher(watchDir, watcher.Options{
					Debounce: c.cfg.Watch.DebounceDuration(),
					Workers:  c.cfg.Watch.Workers,
					Log:      c.log,
				}, newWatchHandler(c.log, "", store, bus))
				if err != nil {
					return err
				}
				defer w.Close()
				c.log.Info().Str("dir", w.Dir()).Msg("watching for IPS files")
			}

			srv := api.NewServer(api.ServerConfig{
				Host:         c.cfg.Server.Host,
				Port:         c.cfg.Server.Port,
				MaxBodyBytes: c.cfg.Server.MaxBodyBytes,
			}, api.Dependencies{
				Reports: store,
				Events:  bus,
				Log:     c.log,
				Version: version,
			})

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(srv.ListenAndServe)
			g.Go(func() error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	cmd.Flags().StringVar(&watchDir, "watch", "", "Also convert IPS files dropped into this directory")

	return cmd
}
