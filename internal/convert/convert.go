// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package convert connects the IPS converter to the filesystem: reading
// inputs, deriving output paths, atomic writes and parallel batches.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wingedpig/ips2crash/internal/ips"
)

// Extension is the file extension of converted crash logs.
const Extension = ".crash"

// DefaultWorkers is the batch parallelism used when none is given.
const DefaultWorkers = 4

// ReadText reads the whole file at path as text.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

// WriteText writes text to path through a temporary file in the same
// directory followed by a rename, so readers never observe a partial file.
func WriteText(path, text string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("write output: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// OutputPath returns where the conversion of input is written: the input path
// with its extension replaced by .crash, moved into outputDir when set.
func OutputPath(input, outputDir string) string {
	name := strings.TrimSuffix(input, filepath.Ext(input)) + Extension
	if outputDir != "" {
		return filepath.Join(outputDir, filepath.Base(name))
	}
	return name
}

// File converts the IPS document at in and writes the crash log to out.
// Nothing is written when the conversion fails.
func File(ctx context.Context, in, out string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	text, err := ReadText(in)
	if err != nil {
		return err
	}

	crash, err := ips.Convert(text)
	if err != nil {
		return err
	}

	return WriteText(out, crash)
}

// Options controls a batch conversion.
type Options struct {
	OutputDir string         // Write outputs here instead of next to each input
	Workers   int            // Max concurrent conversions (default: 4)
	Log       zerolog.Logger // Receives one event per input
}

// Result is the outcome of converting one input.
type Result struct {
	Input  string
	Output string
	Err    error
}

// Batch converts every input in parallel. A failing input does not stop the
// others; the returned error joins every failure and results keep input order.
// An input whose output path was already claimed by an earlier input fails
// without being converted.
func Batch(ctx context.Context, inputs []string, opts Options) ([]Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]Result, len(inputs))

	claimed := make(map[string]string, len(inputs))

	var g errgroup.Group
	g.SetLimit(workers)

	for i, in := range inputs {
		out := OutputPath(in, opts.OutputDir)
		results[i] = Result{Input: in, Output: out}

		key := filepath.Clean(out)
		if first, ok := claimed[key]; ok {
			results[i].Err = fmt.Errorf("output %s already produced by %s", out, first)
			opts.Log.Error().Err(results[i].Err).Str("input", in).Msg("conversion failed")
			continue
		}
		claimed[key] = in

		g.Go(func() error {
			err := File(ctx, in, out)
			results[i].Err = err
			if err != nil {
				opts.Log.Error().Err(err).Str("input", in).Msg("conversion failed")
			} else {
				opts.Log.Info().Str("input", in).Str("output", out).Msg("converted")
			}
			return nil
		})
	}
	g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Input, r.Err))
		}
	}
	return results, errors.Join(errs...)
}
