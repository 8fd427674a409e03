package model

import (
	"time"
)

// JobStatus is the overall state of a triage job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// StageStatus is the state of one pipeline stage within a job.
type StageStatus string

const (
	StageStatusPending StageStatus = "pending"
	StageStatusRunning StageStatus = "running"
	StageStatusDone    StageStatus = "done"
	StageStatusFailed  StageStatus = "failed"
)

// StageOutput is the closed set of structured stage payloads. Each pipeline
// stage contributes exactly one implementation; the marker method keeps
// arbitrary types out of stage records.
type StageOutput interface {
	StageOutput()
}

// StageRecord tracks the execution of a single stage. Output and Error are
// mutually exclusive: a done stage carries an output, a failed one an error.
type StageRecord struct {
	Status StageStatus `json:"status"`
	Output StageOutput `json:"output,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// Job is the stored state of one triage submission. It is owned by the
// pipeline goroutine executing it; everyone else reads snapshots.
type Job struct {
	ID        string
	Status    JobStatus
	Progress  int
	Stages    map[string]StageRecord
	Result    any
	Error     string
	CreatedAt time.Time
}

// NewJob returns a queued job with one pending stage record per stage name.
func NewJob(id string, stageNames []string) *Job {
	stages := make(map[string]StageRecord, len(stageNames))
	for _, name := range stageNames {
		stages[name] = StageRecord{Status: StageStatusPending}
	}
	return &Job{
		ID:        id,
		Status:    JobStatusQueued,
		Stages:    stages,
		CreatedAt: time.Now(),
	}
}

// IsTerminal reports whether the job reached a final state.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
