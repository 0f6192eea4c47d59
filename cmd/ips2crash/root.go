// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wingedpig/ips2crash/internal/config"
	"github.com/wingedpig/ips2crash/internal/crashes"
	"github.com/wingedpig/ips2crash/internal/logging"
)

// cli holds state shared by every subcommand.
type cli struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "ips2crash",
		Short: "Convert Apple IPS crash reports to legacy .crash text",
		Long: `ips2crash translates the two-part JSON IPS crash report format written by
Apple platforms into the plain-text .crash layout expected by symbolication
and triage tools. It can convert files once, watch a drop folder, or serve
conversions over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to config file (default: auto-detect)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", "", "Log format: console, json (overrides config)")

	root.AddCommand(
		c.newConvertCmd(),
		c.newInspectCmd(),
		c.newWatchCmd(),
		c.newServeCmd(),
		c.newReportsCmd(),
		c.newEventsCmd(),
		c.newInitCmd(),
		c.newVersionCmd(),
	)

	return root
}

// setup loads configuration and builds the logger.
func (c *cli) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, c.configPath)
	if err != nil {
		return err
	}

	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Logging.Format = c.logFormat
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.cfg = cfg
	c.log = logging.NewWithWriter(cfg.Logging, cmd.ErrOrStderr())
	return nil
}

// loadConfig loads the config at path, or the auto-detected config in the
// working directory, or the defaults when there is none.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	loader := config.NewLoader()
	if path == "" {
		found, err := loader.FindConfig(".")
		if err != nil {
			return config.Default(), nil
		}
		path = found
	}

	cfg, err := loader.LoadWithDefaults(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return cfg, nil
}

// openStore opens the report store configured under reports.
func (c *cli) openStore() (*crashes.Manager, error) {
	return crashes.NewManager(crashes.Config{
		ReportsDir: c.cfg.Reports.Dir,
		MaxAge:     c.cfg.Reports.MaxAgeDuration(),
		MaxCount:   c.cfg.Reports.MaxCount,
	})
}
