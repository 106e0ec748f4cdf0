package queue

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryQueue is an in-process Queue used in tests and queue-less dev
// runs. It honors the idempotency-key contract: a repeated key returns
// the original handle without recording a second entry.
type MemoryQueue struct {
	mu     sync.Mutex
	byKey  map[string]*Job
	Jobs   []EnqueuedJob
	failFn func(jobType string) error
}

// EnqueuedJob captures one accepted job for assertions.
type EnqueuedJob struct {
	Job     Job
	Payload any
	Options Options
}

// NewMemoryQueue returns an empty in-process queue.
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{byKey: make(map[string]*Job)}
}

// FailWith makes Enqueue return the given error for matching job types.
// Passing nil clears the hook.
func (q *MemoryQueue) FailWith(fn func(jobType string) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failFn = fn
}

// Enqueue records the job and returns a confirmed handle.
func (q *MemoryQueue) Enqueue(_ context.Context, jobType string, payload any, opts Options) (*Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.failFn != nil {
		if err := q.failFn(jobType); err != nil {
			return nil, err
		}
	}

	if key := strings.TrimSpace(opts.IdempotencyKey); key != "" {
		if existing, ok := q.byKey[key]; ok {
			return existing, nil
		}
	}

	job := &Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		EnqueuedAt: time.Now().UTC(),
	}

	if key := strings.TrimSpace(opts.IdempotencyKey); key != "" {
		q.byKey[key] = job
	}
	q.Jobs = append(q.Jobs, EnqueuedJob{Job: *job, Payload: payload, Options: opts})

	return job, nil
}

// Close implements Queue.
func (q *MemoryQueue) Close() error {
	return nil
}

// Types returns the recorded job types in enqueue order.
func (q *MemoryQueue) Types() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	types := make([]string, 0, len(q.Jobs))
	for _, j := range q.Jobs {
		types = append(types, j.Job.Type)
	}
	return types
}
