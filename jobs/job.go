//go:build unix

package jobs

import (
	"sync/atomic"

	"github.com/tgrossb/mush/syntax"
)

// Status is a job lifecycle state.
type Status int32

const (
	// StatusNew is a construction-time-only state: a job is never observable
	// before it is running.
	StatusNew Status = iota

	// StatusRunning covers the window between a successful Run and the reap
	// of the job's leader.
	StatusRunning

	// StatusCompleted means the leader exited normally.
	StatusCompleted

	// StatusAborted means the leader died by a signal other than a
	// cancellation SIGKILL.
	StatusAborted

	// StatusCanceled means the leader died by SIGKILL after Cancel.
	StatusCanceled
)

// String returns the lowercase state name used by Show.
func (s Status) String() string {
	switch s {
	case StatusNew:
		return "new"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	case StatusCanceled:
		return "canceled"
	}
	return "unknown"
}

// Terminal reports whether s is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAborted || s == StatusCanceled
}

// Job is one tracked pipeline job. The observer goroutine writes status and
// waitStatus, and the capture reader writes output, each before done closes;
// the remaining fields are owned by the runner's lock or written once before
// the job becomes visible.
type Job struct {
	id       int
	pgid     int
	status   atomic.Int32
	pipeline *syntax.Pipeline

	// canceled is the one-shot cancel flag, guarded by the runner's lock.
	canceled bool

	// waitStatus is the leader's raw wait status, valid once done is closed.
	waitStatus int

	// done closes when the leader has been reaped and any captured output
	// is complete.
	done chan struct{}

	// output holds the last stage's captured stdout, written by the capture
	// reader before done closes.
	output []byte

	next *Job
}

// ID returns the job's id.
func (j *Job) ID() int { return j.id }

// PGID returns the process group id of the job's leader.
func (j *Job) PGID() int { return j.pgid }

// Status returns the job's current state.
func (j *Job) Status() Status { return Status(j.status.Load()) }
