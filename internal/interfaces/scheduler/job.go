package scheduler

import "context"

// Job represents a unit of work that can be executed by the worker pool.
type Job interface {
	// Execute runs the job. It must respect ctx cancellation.
	Execute(ctx context.Context) error

	// UserID returns the user the job works for, or "" for global jobs.
	UserID() string

	// Description returns a human-readable description of the job.
	Description() string
}
