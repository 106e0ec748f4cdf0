// Package queue defines the boundary to the external job queue. The
// dispatcher only ever hands work across this interface; retries and
// idempotency-key deduplication are the queue's contract, not ours.
package queue

import (
	"context"
	"time"
)

// Priority orders jobs inside the external queue.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// Options carries per-job scheduling hints. IdempotencyKey must be stable
// across redeliveries of the same upstream trigger; the queue suppresses
// duplicates keyed on it.
type Options struct {
	Priority       Priority
	Delay          time.Duration
	IdempotencyKey string
	Tags           []string
	MaxRetries     int
	BackoffDelay   time.Duration
}

// Job is the confirmed handle returned for an accepted job. A non-nil Job
// means the queue has durably accepted the message.
type Job struct {
	ID         string
	Type       string
	EnqueuedAt time.Time
}

// Queue accepts jobs for asynchronous execution.
type Queue interface {
	Enqueue(ctx context.Context, jobType string, payload any, opts Options) (*Job, error)
	Close() error
}
