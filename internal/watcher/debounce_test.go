// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package watcher

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer_Basic(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(20 * time.Millisecond)
	d.Debounce("/drop/a.ips", func() {
		callCount.Add(1)
	})
	assert.Equal(t, 1, d.Pending())

	assert.Eventually(t, func() bool { return callCount.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, d.Pending())
}

func TestDebouncer_BurstFiresOnce(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(50 * time.Millisecond)

	// A file written in several chunks
	for i := 0; i < 10; i++ {
		d.Debounce("/drop/a.ips", func() {
			callCount.Add(1)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
}

func TestDebouncer_PathsIndependent(t *testing.T) {
	var a, b atomic.Int32

	d := NewDebouncer(20 * time.Millisecond)
	d.Debounce("/drop/a.ips", func() { a.Add(1) })
	d.Debounce("/drop/b.ips", func() { b.Add(1) })
	assert.Equal(t, 2, d.Pending())

	assert.Eventually(t, func() bool {
		return a.Load() == 1 && b.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDebouncer_ResetOnCall(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(60 * time.Millisecond)
	d.Debounce("k", func() { callCount.Add(1) })

	time.Sleep(40 * time.Millisecond)
	d.Debounce("k", func() { callCount.Add(1) })

	// 40ms since the second call: still quiet period
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), callCount.Load())

	assert.Eventually(t, func() bool { return callCount.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_LatestCallbackWins(t *testing.T) {
	var value atomic.Int32

	d := NewDebouncer(30 * time.Millisecond)
	for i := 1; i <= 5; i++ {
		final := int32(i)
		d.Debounce("k", func() { value.Store(final) })
	}

	assert.Eventually(t, func() bool { return value.Load() == 5 }, time.Second, 5*time.Millisecond)
}

func TestDebouncer_Cancel(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(30 * time.Millisecond)
	d.Debounce("k", func() { callCount.Add(1) })
	d.Cancel("k")
	d.Cancel("never-scheduled")

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), callCount.Load())
	assert.Equal(t, 0, d.Pending())
}

func TestDebouncer_Stop(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(30 * time.Millisecond)
	d.Debounce("a", func() { callCount.Add(1) })
	d.Debounce("b", func() { callCount.Add(1) })

	d.Stop()

	// Rejected after Stop
	d.Debounce("c", func() { callCount.Add(1) })
	assert.Equal(t, 0, d.Pending())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), callCount.Load())
}

func TestDebouncer_Concurrency(t *testing.T) {
	var callCount atomic.Int32

	d := NewDebouncer(30 * time.Millisecond)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Debounce("k", func() { callCount.Add(1) })
		}()
	}
	wg.Wait()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), callCount.Load())
}

func TestDebouncer_DefaultDuration(t *testing.T) {
	assert.Equal(t, defaultDebounceDuration, NewDebouncer(0).Duration())
	assert.Equal(t, defaultDebounceDuration, NewDebouncer(-time.Second).Duration())
	assert.Equal(t, time.Second, NewDebouncer(time.Second).Duration())
}
