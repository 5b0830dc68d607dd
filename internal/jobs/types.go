// Package jobs defines the async job model: the normalize-document job,
// its lifecycle states, and the Publisher/Consumer/JobStore interfaces the
// queue implementations satisfy.
package jobs

import (
	"context"
	"time"
)

// JobType discriminates job payloads on the queue.
type JobType string

const (
	JobTypeNormalizeDocument JobType = "normalize_document"
)

// JobStatus is a job's lifecycle state.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusRetrying  JobStatus = "retrying"
)

// NormalizeDocumentJob asks a worker to normalize one raw-events document
// stored in GCS. DocumentID and NormalizeRunID are filled in as the pipeline
// creates the corresponding BigQuery rows.
type NormalizeDocumentJob struct {
	JobID          string    `json:"job_id"`
	DocumentID     string    `json:"document_id"`
	GCSURI         string    `json:"gcs_uri"`
	NormalizeRunID string    `json:"normalize_run_id,omitempty"`
	Status         JobStatus `json:"status"`
	CreatedAt      time.Time `json:"created_at"`

	// StartedAt and CompletedAt are nil until the job reaches those states.
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Error holds the last handler error when the job failed.
	Error string `json:"error,omitempty"`

	RetryCount int `json:"retry_count"`
	MaxRetries int `json:"max_retries"`
}

// Job is the minimal view a handler needs before type-asserting the
// concrete payload.
type Job interface {
	GetID() string
	GetType() JobType
	GetStatus() JobStatus
}

func (j *NormalizeDocumentJob) GetID() string { return j.JobID }

func (j *NormalizeDocumentJob) GetType() JobType { return JobTypeNormalizeDocument }

func (j *NormalizeDocumentJob) GetStatus() JobStatus { return j.Status }

// Publisher enqueues jobs. Implementations range from the in-memory channel
// queue to Cloud Tasks or Pub/Sub.
type Publisher interface {
	PublishNormalizeDocument(ctx context.Context, job *NormalizeDocumentJob) error
	Close() error
}

// Consumer runs a handler over queued jobs.
type Consumer interface {
	// Start begins consuming; the handler runs once per dequeued job.
	Start(ctx context.Context, handler JobHandler) error

	// Stop drains in-flight jobs before returning.
	Stop(ctx context.Context) error
}

// JobHandler processes one job. A non-nil error marks the attempt failed
// and triggers the queue's retry policy.
type JobHandler func(ctx context.Context, job Job) error

// JobStore records job state so status survives outside the queue itself.
type JobStore interface {
	SaveJob(ctx context.Context, job *NormalizeDocumentJob) error
	GetJob(ctx context.Context, jobID string) (*NormalizeDocumentJob, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*NormalizeDocumentJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status JobStatus, errorMsg string) error
}

// JobFilter narrows ListJobs results; zero values mean no constraint.
type JobFilter struct {
	DocumentID string
	Status     JobStatus
	Limit      int
	Offset     int
}
