//go:build unix

package jobs

import "errors"

var (
	// ErrUnknownJob indicates the job id names no tracked job.
	ErrUnknownJob = errors.New("jobs: unknown job id")

	// ErrEmptyPipeline indicates Run was handed a pipeline with no commands.
	ErrEmptyPipeline = errors.New("jobs: empty pipeline")

	// ErrNotTerminated indicates an operation that requires a terminal job
	// was applied to a live one.
	ErrNotTerminated = errors.New("jobs: job has not terminated")

	// ErrCancelDenied indicates the job is already terminal or a cancel was
	// already requested.
	ErrCancelDenied = errors.New("jobs: cancel denied")
)
