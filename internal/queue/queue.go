// Package queue holds the in-memory conversion queue. Jobs live only
// for the lifetime of the window; there is no cross-session state.
package queue

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status describes where a job is in its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	// StatusSkipped marks jobs that were still pending when the batch
	// was cancelled.
	StatusSkipped Status = "skipped"
)

// Label returns the status text shown in the file list.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return ""
	case StatusRunning:
		return "converting"
	case StatusCompleted:
		return "done"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	}
	return string(s)
}

// Job is one queued input-to-output conversion request.
type Job struct {
	ID         uuid.UUID
	InputPath  string
	OutputPath string
	Status     Status
	Err        string
	Duration   time.Duration
	// Selected mirrors the checkbox in the file list; only selected
	// jobs are converted.
	Selected bool
}

// Queue is an ordered set of jobs. Insertion order is processing order.
type Queue struct {
	mu   sync.Mutex
	jobs []*Job
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// Add appends a job for inputPath. Paths already present are not added
// again; Add then returns nil.
func (q *Queue) Add(inputPath string) *Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, job := range q.jobs {
		if job.InputPath == inputPath {
			return nil
		}
	}
	job := &Job{
		ID:        uuid.New(),
		InputPath: inputPath,
		Status:    StatusPending,
		Selected:  true,
	}
	q.jobs = append(q.jobs, job)
	return job
}

// Remove drops the job at index i. Out-of-range indexes are ignored.
func (q *Queue) Remove(i int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i < 0 || i >= len(q.jobs) {
		return
	}
	q.jobs = append(q.jobs[:i], q.jobs[i+1:]...)
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = nil
}

// Len reports the number of queued jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// At returns the job at index i, or nil when out of range.
func (q *Queue) At(i int) *Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i < 0 || i >= len(q.jobs) {
		return nil
	}
	return q.jobs[i]
}

// Jobs returns a snapshot of the queue in order.
func (q *Queue) Jobs() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*Job(nil), q.jobs...)
}

// Selected returns the selected pending jobs in queue order. These are
// the jobs a batch run will process.
func (q *Queue) Selected() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*Job
	for _, job := range q.jobs {
		if job.Selected && job.Status == StatusPending {
			out = append(out, job)
		}
	}
	return out
}

// SetSelected flips the checkbox of the job at index i.
func (q *Queue) SetSelected(i int, selected bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i < 0 || i >= len(q.jobs) {
		return
	}
	q.jobs[i].Selected = selected
}

// SelectAll sets every job's checkbox to selected.
func (q *Queue) SelectAll(selected bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range q.jobs {
		job.Selected = selected
	}
}

// SetDuration records the probed duration of a job.
func (q *Queue) SetDuration(id uuid.UUID, d time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job := q.byID(id); job != nil {
		job.Duration = d
	}
}

// SetStatus updates a job's status and error text.
func (q *Queue) SetStatus(id uuid.UUID, status Status, errText string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job := q.byID(id); job != nil {
		job.Status = status
		job.Err = errText
	}
}

// SetOutput records the produced output path of a completed job.
func (q *Queue) SetOutput(id uuid.UUID, outputPath string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if job := q.byID(id); job != nil {
		job.OutputPath = outputPath
	}
}

// ResetFinished returns finished jobs to pending so a new batch can
// re-run them. Running jobs are left alone.
func (q *Queue) ResetFinished() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, job := range q.jobs {
		switch job.Status {
		case StatusCompleted, StatusFailed, StatusSkipped:
			job.Status = StatusPending
			job.Err = ""
			job.OutputPath = ""
		}
	}
}

func (q *Queue) byID(id uuid.UUID) *Job {
	for _, job := range q.jobs {
		if job.ID == id {
			return job
		}
	}
	return nil
}
