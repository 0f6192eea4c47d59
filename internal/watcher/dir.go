// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package watcher converts IPS files dropped into a directory.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// DefaultExtension is the file extension picked up when none is configured.
const DefaultExtension = ".ips"

// Handler processes one settled file. It runs on its own goroutine and must
// respect ctx, which is cancelled when the watcher closes.
type Handler func(ctx context.Context, path string)

// Options configures a DirWatcher.
type Options struct {
	Debounce  time.Duration  // Quiet period before a file is handled
	Workers   int            // Max concurrent handlers (default: 4)
	Extension string         // File extension to watch (default: .ips)
	Log       zerolog.Logger // Receives watcher diagnostics
}

// DirWatcher watches a directory and hands each created or rewritten file
// with the configured extension to a Handler once writes to it settle.
type DirWatcher struct {
	mu        sync.Mutex
	dir       string
	ext       string
	handler   Handler
	log       zerolog.Logger
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	sem       *semaphore.Weighted
	ctx       context.Context
	cancel    context.CancelFunc
	closed    bool
	wg        sync.WaitGroup // event loop
	jobs      sync.WaitGroup // running handlers
}

// NewDirWatcher starts watching dir. Call Close to stop.
func NewDirWatcher(dir string, opts Options, handler Handler) (*DirWatcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("watcher: nil handler")
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(absDir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", absDir, err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	ext := opts.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &DirWatcher{
		dir:       absDir,
		ext:       strings.ToLower(ext),
		handler:   handler,
		log:       opts.Log,
		watcher:   fsWatcher,
		debouncer: NewDebouncer(opts.Debounce),
		sem:       semaphore.NewWeighted(int64(workers)),
		ctx:       ctx,
		cancel:    cancel,
	}

	// Start event processing
	w.wg.Add(1)
	go w.processEvents()

	return w, nil
}

// Dir returns the absolute path of the watched directory.
func (w *DirWatcher) Dir() string {
	return w.dir
}

// Close stops the watcher, drops pending files and waits for running
// handlers to return.
func (w *DirWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.debouncer.Stop()
	w.cancel()
	err := w.watcher.Close()
	w.wg.Wait()
	w.jobs.Wait()

	return err
}

func (w *DirWatcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("dir", w.dir).Msg("watch error")
		}
	}
}

// matches reports whether path is a file this watcher handles. Hidden files
// are skipped so editors' and converters' temp files are ignored.
func (w *DirWatcher) matches(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.ToLower(filepath.Ext(name)) == w.ext
}

func (w *DirWatcher) handleEvent(event fsnotify.Event) {
	// Creates cover files moved into the directory; chmod alone is ignored
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !w.matches(event.Name) {
		return
	}

	w.log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("file event")

	path := event.Name
	w.debouncer.Debounce(path, func() {
		w.dispatch(path)
	})
}

// dispatch runs the handler for path once a worker slot is free.
func (w *DirWatcher) dispatch(path string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.jobs.Add(1)
	w.mu.Unlock()
	defer w.jobs.Done()

	if err := w.sem.Acquire(w.ctx, 1); err != nil {
		return
	}
	defer w.sem.Release(1)

	w.handler(w.ctx, path)
}
