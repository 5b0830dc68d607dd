package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dvloznov/tr-activity/internal/jobs"
)

// Store keeps jobs in a mutex-guarded map. Everything handed out is a copy,
// so callers can't mutate stored state behind the lock. Contents are lost on
// restart; a database-backed JobStore would replace this in production.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*jobs.NormalizeDocumentJob
}

// NewStore creates an empty in-memory job store.
func NewStore() *Store {
	return &Store{jobs: make(map[string]*jobs.NormalizeDocumentJob)}
}

func clone(job *jobs.NormalizeDocumentJob) *jobs.NormalizeDocumentJob {
	c := *job
	return &c
}

// SaveJob inserts or replaces the stored job under its ID.
func (s *Store) SaveJob(ctx context.Context, job *jobs.NormalizeDocumentJob) error {
	if job.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	s.mu.Lock()
	s.jobs[job.JobID] = clone(job)
	s.mu.Unlock()
	return nil
}

// GetJob returns a copy of the job, or an error when the ID is unknown.
func (s *Store) GetJob(ctx context.Context, jobID string) (*jobs.NormalizeDocumentJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}
	return clone(job), nil
}

func matches(job *jobs.NormalizeDocumentJob, filter jobs.JobFilter) bool {
	if filter.DocumentID != "" && job.DocumentID != filter.DocumentID {
		return false
	}
	if filter.Status != "" && job.Status != filter.Status {
		return false
	}
	return true
}

// ListJobs returns copies of jobs passing the filter, windowed by
// offset/limit. Order is unspecified.
func (s *Store) ListJobs(ctx context.Context, filter jobs.JobFilter) ([]*jobs.NormalizeDocumentJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*jobs.NormalizeDocumentJob
	for _, job := range s.jobs {
		if matches(job, filter) {
			result = append(result, clone(job))
		}
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []*jobs.NormalizeDocumentJob{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// UpdateJobStatus sets a job's status, and its error message when non-empty.
func (s *Store) UpdateJobStatus(ctx context.Context, jobID string, status jobs.JobStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("job not found: %s", jobID)
	}

	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}
	return nil
}

var _ jobs.JobStore = (*Store)(nil)
