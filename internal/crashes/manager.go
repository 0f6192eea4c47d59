// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package crashes stores converted crash logs on disk.
package crashes

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	reportExt    = ".crash"
	idTimeLayout = "20060102-150405.000"
)

// ErrNotFound is returned when a report ID does not exist.
var ErrNotFound = errors.New("report not found")

// Config holds configuration for report storage.
type Config struct {
	ReportsDir string        // Directory to store .crash files
	MaxAge     time.Duration // Max age of reports to keep
	MaxCount   int           // Max number of reports to keep
}

// Manager handles report storage.
type Manager struct {
	mu     sync.RWMutex
	config Config
	now    func() time.Time
}

// NewManager creates a new report manager.
func NewManager(cfg Config) (*Manager, error) {
	// Set defaults
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = "crashes"
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 7 * 24 * time.Hour // 7 days
	}
	if cfg.MaxCount == 0 {
		cfg.MaxCount = 500
	}

	// Ensure directory exists
	if err := os.MkdirAll(cfg.ReportsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}

	return &Manager{
		config: cfg,
		now:    time.Now,
	}, nil
}

// Dir returns the reports directory.
func (m *Manager) Dir() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ReportsDir
}

// generateID returns a report ID whose lexical order is chronological.
func generateID(t time.Time) string {
	return t.Format(idTimeLayout) + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// idTime parses the timestamp prefix of a report ID.
func idTime(id string) (time.Time, bool) {
	if len(id) < len(idTimeLayout) {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(idTimeLayout, id[:len(idTimeLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// validID rejects IDs that could escape the reports directory.
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}

// Save stores a crash log and returns its ID. Old reports are pruned
// afterwards.
func (m *Manager) Save(text string) (string, error) {
	id, err := m.save(text)
	if err != nil {
		return "", err
	}
	m.cleanup()
	return id, nil
}

func (m *Manager) save(text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := generateID(m.now())
	filename := filepath.Join(m.config.ReportsDir, id+reportExt)

	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return id, nil
}

// List returns summaries of all reports, newest first.
func (m *Manager) List() ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries, err := os.ReadDir(m.config.ReportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	var summaries []Summary
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), reportExt) {
			continue
		}

		summary, err := m.loadSummary(entry)
		if err != nil {
			continue
		}
		summaries = append(summaries, summary)
	}

	// IDs start with the creation time, so descending ID order is newest first
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].ID > summaries[j].ID
	})

	return summaries, nil
}

// Get retrieves a specific report by ID.
func (m *Manager) Get(id string) (*Report, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.loadReport(id)
}

// Newest returns the most recent report, or nil if the store is empty.
func (m *Manager) Newest() (*Report, error) {
	summaries, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, nil
	}

	return m.Get(summaries[0].ID)
}

// Delete removes a report by ID.
func (m *Manager) Delete(id string) error {
	if !validID(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	filename := filepath.Join(m.config.ReportsDir, id+reportExt)
	if err := os.Remove(filename); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete report: %w", err)
	}
	return nil
}

// Clear removes all reports.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.config.ReportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read reports directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), reportExt) {
			continue
		}
		os.Remove(filepath.Join(m.config.ReportsDir, entry.Name()))
	}

	return nil
}

// loadReport loads a report from disk.
func (m *Manager) loadReport(id string) (*Report, error) {
	data, err := os.ReadFile(filepath.Join(m.config.ReportsDir, id+reportExt))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to read report file: %w", err)
	}

	created, _ := idTime(id)
	return &Report{ID: id, Created: created, Text: string(data)}, nil
}

// loadSummary reads the header lines of a stored report.
func (m *Manager) loadSummary(entry os.DirEntry) (Summary, error) {
	id := strings.TrimSuffix(entry.Name(), reportExt)
	info, err := entry.Info()
	if err != nil {
		return Summary{}, err
	}

	created, ok := idTime(id)
	if !ok {
		created = info.ModTime()
	}

	f, err := os.Open(filepath.Join(m.config.ReportsDir, entry.Name()))
	if err != nil {
		return Summary{}, err
	}
	defer f.Close()

	summary := Summary{ID: id, Size: info.Size(), Created: created}
	parseSummary(f, &summary)
	return summary, nil
}

// summaryFields maps crash log labels to the summary fields they fill.
var summaryFields = map[string]func(*Summary, string){
	"Incident Identifier:": func(s *Summary, v string) { s.IncidentID = v },
	"Process:":             func(s *Summary, v string) { s.Process = v },
	"Exception Type:":      func(s *Summary, v string) { s.ExceptionType = v },
}

// parseSummary scans the translated section of a crash log, stopping at the
// embedded full report.
func parseSummary(r io.Reader, s *Summary) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "EOF" {
			return
		}
		for label, set := range summaryFields {
			if value, ok := strings.CutPrefix(line, label); ok {
				set(s, strings.TrimSpace(value))
			}
		}
	}
}

// cleanup removes old reports based on age and count limits.
func (m *Manager) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.config.ReportsDir)
	if err != nil {
		return
	}

	type reportFile struct {
		name      string
		timestamp time.Time
	}

	var files []reportFile
	cutoff := m.now().Add(-m.config.MaxAge)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), reportExt) {
			continue
		}

		// Parse timestamp from the ID prefix
		ts, ok := idTime(strings.TrimSuffix(entry.Name(), reportExt))
		if !ok {
			continue
		}

		// Remove if too old
		if ts.Before(cutoff) {
			os.Remove(filepath.Join(m.config.ReportsDir, entry.Name()))
			continue
		}

		files = append(files, reportFile{name: entry.Name(), timestamp: ts})
	}

	// Newest first; names break ties within the same millisecond
	sort.Slice(files, func(i, j int) bool {
		return files[i].name > files[j].name
	})

	// Remove excess files
	if len(files) > m.config.MaxCount {
		for _, f := range files[m.config.MaxCount:] {
			os.Remove(filepath.Join(m.config.ReportsDir, f.name))
		}
	}
}
