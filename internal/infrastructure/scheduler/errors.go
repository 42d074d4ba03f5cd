package scheduler

import "errors"

var (
	// ErrNotRunning is returned when submitting to a dispatcher that is not started or already stopped
	ErrNotRunning = errors.New("dispatcher is not running")

	// ErrQueueFull is returned when the target worker queue is full
	ErrQueueFull = errors.New("job queue is full")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid dispatcher configuration")
)
