// File: lixenwraith/reload/notify.go
package reload

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// JobConfigReload is the job type enqueued once per applied reload cycle, so
// other subsystems can fan out their own "configuration changed" processing.
const JobConfigReload = "config.reload"

// ReloadPayload is the body of a JobConfigReload job.
type ReloadPayload struct {
	Old Config `json:"old"`
	New Config `json:"new"`
}

// Job is the wire form of one queued unit of work.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// JobQueue hands work to the external job system. Delivery and retry semantics
// belong to the queue, not this layer; the reload loop enqueues best-effort
// and swallows failures.
type JobQueue interface {
	Enqueue(ctx context.Context, jobType string, payload any) error
}

// newJob assembles a Job envelope with a fresh id.
func newJob(jobType string, payload any) (Job, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("failed to encode job payload: %w", err)
	}
	return Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    body,
		EnqueuedAt: time.Now(),
	}, nil
}

// NATSQueue publishes jobs to a NATS subject per job type:
// <prefix>.<job type>, e.g. "jobs.config.reload".
type NATSQueue struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSQueue wraps an established NATS connection. prefix defaults to "jobs".
func NewNATSQueue(conn *nats.Conn, prefix string) *NATSQueue {
	if prefix == "" {
		prefix = "jobs"
	}
	return &NATSQueue{conn: conn, prefix: prefix}
}

func (q *NATSQueue) Enqueue(_ context.Context, jobType string, payload any) error {
	job, err := newJob(jobType, payload)
	if err != nil {
		return err
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	subject := q.prefix + "." + jobType
	if err := q.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish job to '%s': %w", subject, err)
	}
	return nil
}

// MemoryQueue collects jobs in memory. Suitable for tests and for embedded
// deployments that drain the queue in-process.
type MemoryQueue struct {
	mu   sync.Mutex
	jobs []Job
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{}
}

func (q *MemoryQueue) Enqueue(_ context.Context, jobType string, payload any) error {
	job, err := newJob(jobType, payload)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

// Jobs returns a snapshot of everything enqueued so far.
func (q *MemoryQueue) Jobs() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Job, len(q.jobs))
	copy(out, q.jobs)
	return out
}
