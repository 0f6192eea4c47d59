// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package crashes

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `-------------------------------------
Translated Report (Full Report Below)
-------------------------------------

Incident Identifier: 5C1C7F5E-9A3D-4C4B-9E53-6C2D8A1B0F11
Hardware Model:      iPhone14,2
Process:             Demo [812]
Parent Process:      launchd [1]

Exception Type:  EXC_BAD_ACCESS (SIGSEGV)
Exception Codes: KERN_INVALID_ADDRESS at 0x0

EOF

-----------
Full Report
-----------

{"app_name":"Demo"}
Process: ignored
`

// clock returns a now func that advances by step on each call.
func clock(start time.Time, step time.Duration) func() time.Time {
	t := start
	return func() time.Time {
		now := t
		t = t.Add(step)
		return now
	}
}

func TestManager_SaveAndGet(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(Config{ReportsDir: dir})
	require.NoError(t, err)

	id, err := mgr.Save(sampleReport)
	require.NoError(t, err)
	assert.Regexp(t, `^\d{8}-\d{6}\.\d{3}-[0-9a-f]{8}$`, id)
	assert.FileExists(t, filepath.Join(dir, id+".crash"))

	loaded, err := mgr.Get(id)
	require.NoError(t, err)
	assert.Equal(t, id, loaded.ID)
	assert.Equal(t, sampleReport, loaded.Text)
	assert.WithinDuration(t, time.Now(), loaded.Created, time.Minute)
}

func TestManager_Get_NotFound(t *testing.T) {
	mgr, err := NewManager(Config{ReportsDir: t.TempDir()})
	require.NoError(t, err)

	_, err = mgr.Get("20240101-120000.000-deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = mgr.Get("../etc/passwd")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_List(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(Config{ReportsDir: dir})
	require.NoError(t, err)
	mgr.now = clock(time.Now().Add(-time.Hour), time.Second)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := mgr.Save(sampleReport)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	// Unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	summaries, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	// Should be sorted newest first
	assert.Equal(t, ids[2], summaries[0].ID)
	assert.Equal(t, ids[1], summaries[1].ID)
	assert.Equal(t, ids[0], summaries[2].ID)
	assert.True(t, summaries[0].Created.After(summaries[1].Created))

	s := summaries[0]
	assert.Equal(t, "Demo [812]", s.Process)
	assert.Equal(t, "5C1C7F5E-9A3D-4C4B-9E53-6C2D8A1B0F11", s.IncidentID)
	assert.Equal(t, "EXC_BAD_ACCESS (SIGSEGV)", s.ExceptionType)
	assert.Equal(t, int64(len(sampleReport)), s.Size)
}

func TestManager_List_Empty(t *testing.T) {
	mgr, err := NewManager(Config{ReportsDir: t.TempDir()})
	require.NoError(t, err)

	summaries, err := mgr.List()
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestParseSummary_StopsAtFullReport(t *testing.T) {
	var s Summary
	parseSummary(strings.NewReader("Translated\n\nEOF\nProcess: late\n"), &s)
	assert.Empty(t, s.Process)
}

func TestManager_Newest(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(Config{ReportsDir: dir})
	require.NoError(t, err)

	newest, err := mgr.Newest()
	require.NoError(t, err)
	assert.Nil(t, newest)

	mgr.now = clock(time.Now().Add(-time.Hour), time.Minute)
	_, err = mgr.Save("older")
	require.NoError(t, err)
	newerID, err := mgr.Save("newer")
	require.NoError(t, err)

	newest, err = mgr.Newest()
	require.NoError(t, err)
	require.NotNil(t, newest)
	assert.Equal(t, newerID, newest.ID)
	assert.Equal(t, "newer", newest.Text)
}

func TestManager_Delete(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(Config{ReportsDir: dir})
	require.NoError(t, err)

	id, err := mgr.Save(sampleReport)
	require.NoError(t, err)

	// Delete it
	require.NoError(t, mgr.Delete(id))

	// Verify it's gone
	_, err = mgr.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting non-existent should error
	err = mgr.Delete("nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_Clear(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(Config{ReportsDir: dir})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := mgr.Save(sampleReport)
		require.NoError(t, err)
	}

	summaries, _ := mgr.List()
	assert.Len(t, summaries, 3)

	require.NoError(t, mgr.Clear())

	summaries, _ = mgr.List()
	assert.Len(t, summaries, 0)
}

func TestManager_Cleanup_MaxCount(t *testing.T) {
	dir := t.TempDir()
	mgr, err := NewManager(Config{ReportsDir: dir, MaxCount: 2})
	require.NoError(t, err)
	mgr.now = clock(time.Now().Add(-time.Hour), time.Second)

	// Save 3 reports; the save itself prunes
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := mgr.Save(sampleReport)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	summaries, _ := mgr.List()
	require.Len(t, summaries, 2)
	assert.Equal(t, ids[2], summaries[0].ID)
	assert.Equal(t, ids[1], summaries[1].ID)
}

func TestManager_Cleanup_MaxAge(t *testing.T) {
	dir := t.TempDir()
	// Use a 10 minute max age for testing
	mgr, err := NewManager(Config{ReportsDir: dir, MaxAge: 10 * time.Minute})
	require.NoError(t, err)

	// Save an old report (older than max age)
	mgr.now = func() time.Time { return time.Now().Add(-20 * time.Minute) }
	oldID, err := mgr.Save(sampleReport)
	require.NoError(t, err)

	summaries, _ := mgr.List()
	require.Len(t, summaries, 1)

	// Saving a recent report prunes the old one
	mgr.now = time.Now
	newID, err := mgr.Save(sampleReport)
	require.NoError(t, err)

	summaries, _ = mgr.List()
	require.Len(t, summaries, 1)
	assert.Equal(t, newID, summaries[0].ID)
	assert.NoFileExists(t, filepath.Join(dir, oldID+".crash"))
}

func TestManager_DirectoryCreation(t *testing.T) {
	dir := t.TempDir()
	reportsDir := filepath.Join(dir, "nested", "crashes")

	mgr, err := NewManager(Config{ReportsDir: reportsDir})
	require.NoError(t, err)
	assert.Equal(t, reportsDir, mgr.Dir())

	// Directory should be created
	info, err := os.Stat(reportsDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
