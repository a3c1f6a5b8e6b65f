package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddKeepsOrder(t *testing.T) {
	q := New()
	q.Add("/music/a.opus")
	q.Add("/music/b.opus")
	q.Add("/music/c.opus")

	jobs := q.Jobs()
	require.Len(t, jobs, 3)
	assert.Equal(t, "/music/a.opus", jobs[0].InputPath)
	assert.Equal(t, "/music/b.opus", jobs[1].InputPath)
	assert.Equal(t, "/music/c.opus", jobs[2].InputPath)
}

func TestAddDeduplicates(t *testing.T) {
	q := New()
	first := q.Add("/music/a.opus")
	require.NotNil(t, first)

	dup := q.Add("/music/a.opus")
	assert.Nil(t, dup)
	assert.Equal(t, 1, q.Len())
}

func TestAddDefaults(t *testing.T) {
	q := New()
	job := q.Add("/music/a.opus")
	require.NotNil(t, job)
	assert.True(t, job.Selected)
	assert.Equal(t, StatusPending, job.Status)
	assert.NotEqual(t, uuid.Nil, job.ID)
}

func TestRemove(t *testing.T) {
	q := New()
	q.Add("/music/a.opus")
	q.Add("/music/b.opus")

	q.Remove(0)
	require.Equal(t, 1, q.Len())
	assert.Equal(t, "/music/b.opus", q.At(0).InputPath)

	// out of range is a no-op
	q.Remove(5)
	q.Remove(-1)
	assert.Equal(t, 1, q.Len())
}

func TestSelectedFiltersAndPreservesOrder(t *testing.T) {
	q := New()
	a := q.Add("/music/a.opus")
	q.Add("/music/b.opus")
	c := q.Add("/music/c.opus")

	q.SetSelected(1, false)
	q.SetStatus(c.ID, StatusCompleted, "")

	selected := q.Selected()
	require.Len(t, selected, 1)
	assert.Equal(t, a.ID, selected[0].ID)
}

func TestSelectAll(t *testing.T) {
	q := New()
	q.Add("/music/a.opus")
	q.Add("/music/b.opus")

	q.SelectAll(false)
	assert.Empty(t, q.Selected())

	q.SelectAll(true)
	assert.Len(t, q.Selected(), 2)
}

func TestStatusUpdates(t *testing.T) {
	q := New()
	job := q.Add("/music/a.opus")

	q.SetStatus(job.ID, StatusFailed, "ffmpeg exploded")
	assert.Equal(t, StatusFailed, q.At(0).Status)
	assert.Equal(t, "ffmpeg exploded", q.At(0).Err)

	q.SetOutput(job.ID, "/out/a.mp3")
	assert.Equal(t, "/out/a.mp3", q.At(0).OutputPath)

	q.SetDuration(job.ID, 3*time.Minute)
	assert.Equal(t, 3*time.Minute, q.At(0).Duration)
}

func TestResetFinished(t *testing.T) {
	q := New()
	done := q.Add("/music/a.opus")
	failed := q.Add("/music/b.opus")
	running := q.Add("/music/c.opus")

	q.SetStatus(done.ID, StatusCompleted, "")
	q.SetOutput(done.ID, "/out/a.mp3")
	q.SetStatus(failed.ID, StatusFailed, "boom")
	q.SetStatus(running.ID, StatusRunning, "")

	q.ResetFinished()

	assert.Equal(t, StatusPending, q.At(0).Status)
	assert.Empty(t, q.At(0).OutputPath)
	assert.Equal(t, StatusPending, q.At(1).Status)
	assert.Empty(t, q.At(1).Err)
	assert.Equal(t, StatusRunning, q.At(2).Status)
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "", StatusPending.Label())
	assert.Equal(t, "converting", StatusRunning.Label())
	assert.Equal(t, "done", StatusCompleted.Label())
	assert.Equal(t, "failed", StatusFailed.Label())
	assert.Equal(t, "skipped", StatusSkipped.Label())
}
