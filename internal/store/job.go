package store

import (
	"context"
	"sync"

	"github.com/cognitriage/cognitriage/internal/store/model"
)

// Job is the contract for job state access. Reads return snapshots; writes
// are serialized by the implementation. The pipeline goroutine owning a job
// is its only writer.
type Job interface {
	Create(ctx context.Context, job *model.Job) error
	Get(ctx context.Context, id string) (*model.Job, error)
	SetStatus(ctx context.Context, id string, status model.JobStatus) error
	SetProgress(ctx context.Context, id string, progress int) error
	SetStage(ctx context.Context, id string, stage string, record model.StageRecord) error
	SetResult(ctx context.Context, id string, result any) error
	SetError(ctx context.Context, id string, message string) error
}

// JobStore holds jobs in memory, guarded by a single RWMutex. Status polls
// take the read lock and copy; stage commits take the write lock. No
// eviction: jobs live until process teardown.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*model.Job
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*model.Job)}
}

func (s *JobStore) Create(_ context.Context, job *model.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return NewErrJobAlreadyExists(job.ID)
	}
	s.jobs[job.ID] = copyJob(job)
	return nil
}

// Get returns a deep copy of the job so a status query never observes a
// stage commit in flight.
func (s *JobStore) Get(_ context.Context, id string) (*model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, NewErrJobNotFound(id)
	}
	return copyJob(job), nil
}

func (s *JobStore) SetStatus(_ context.Context, id string, status model.JobStatus) error {
	return s.mutate(id, func(job *model.Job) {
		job.Status = status
	})
}

func (s *JobStore) SetProgress(_ context.Context, id string, progress int) error {
	return s.mutate(id, func(job *model.Job) {
		job.Progress = progress
	})
}

func (s *JobStore) SetStage(_ context.Context, id string, stage string, record model.StageRecord) error {
	return s.mutate(id, func(job *model.Job) {
		job.Stages[stage] = record
	})
}

func (s *JobStore) SetResult(_ context.Context, id string, result any) error {
	return s.mutate(id, func(job *model.Job) {
		job.Result = result
	})
}

func (s *JobStore) SetError(_ context.Context, id string, message string) error {
	return s.mutate(id, func(job *model.Job) {
		job.Error = message
	})
}

func (s *JobStore) mutate(id string, fn func(*model.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return NewErrJobNotFound(id)
	}
	fn(job)
	return nil
}

func copyJob(job *model.Job) *model.Job {
	cp := *job
	cp.Stages = make(map[string]model.StageRecord, len(job.Stages))
	for name, rec := range job.Stages {
		cp.Stages[name] = rec
	}
	return &cp
}
