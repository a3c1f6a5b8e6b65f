package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Enabling watch mode on a directory that cannot be watched must reset
// the checkbox and return; it used to re-enter the watcher mutex via
// the checkbox callback and hang the UI goroutine.
func TestStartWatchingUnwatchableDir(t *testing.T) {
	c := newTestConverter(t)
	c.srcEntry.SetText(filepath.Join(t.TempDir(), "gone"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.watchCheck.SetChecked(true)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("enabling watch mode on a missing directory hung")
	}

	assert.False(t, c.watchCheck.Checked)
	assert.Contains(t, c.statusLog.Text, "ERROR:")
}

func TestStartWatchingEmptySourceDir(t *testing.T) {
	c := newTestConverter(t)

	c.watchCheck.SetChecked(true)

	assert.False(t, c.watchCheck.Checked)
	assert.Contains(t, c.statusLog.Text, "WARNING:")
}

// Files created while watching are queued, including after the watcher
// is stopped and started again: each run gets its own jobs channel, so
// a lingering old processor cannot steal from the new one.
func TestWatchQueuesAcrossRestart(t *testing.T) {
	origDelay := settleDelay
	settleDelay = 20 * time.Millisecond
	t.Cleanup(func() { settleDelay = origDelay })

	c := newTestConverter(t)
	dir := t.TempDir()
	c.srcEntry.SetText(dir)

	c.watchCheck.SetChecked(true)
	require.True(t, c.watchCheck.Checked)

	touch(t, filepath.Join(dir, "first.opus"))
	waitForQueueLen(t, c, 1)

	c.watchCheck.SetChecked(false)
	c.watchCheck.SetChecked(true)
	require.True(t, c.watchCheck.Checked)

	touch(t, filepath.Join(dir, "second.opus"))
	waitForQueueLen(t, c, 2)
}

func waitForQueueLen(t *testing.T, c *OpusConverter, want int) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if c.queue.Len() >= want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("queue never reached %d job(s), have %d", want, c.queue.Len())
}
