package service

import (
	"context"
	"errors"

	"github.com/cognitriage/cognitriage/internal/pipeline"
	"github.com/cognitriage/cognitriage/internal/store"
	"github.com/cognitriage/cognitriage/internal/store/model"
)

// TriageService fronts the pipeline: submissions go to the orchestrator,
// queries read job snapshots from the store.
type TriageService struct {
	store        store.Store
	orchestrator *pipeline.Orchestrator
}

func NewTriageService(s store.Store, orchestrator *pipeline.Orchestrator) *TriageService {
	return &TriageService{store: s, orchestrator: orchestrator}
}

// Submit starts a triage job and returns its ID. Validation happens before
// job creation, so a rejected intake leaves no trace in the store.
func (s *TriageService) Submit(ctx context.Context, in pipeline.Intake) (string, error) {
	jobID, _, err := s.orchestrator.Submit(ctx, in)
	if err != nil {
		var invalid *pipeline.InvalidIntakeError
		if errors.As(err, &invalid) {
			return "", NewErrInvalidIntake(invalid.Reason)
		}
		return "", err
	}
	return jobID, nil
}

// GetJob returns a snapshot of the job. Status and result queries share it:
// the snapshot carries stage records, progress, and the terminal result.
func (s *TriageService) GetJob(ctx context.Context, id string) (*model.Job, error) {
	job, err := s.store.Job().Get(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, NewErrJobNotFound(id)
		}
		return nil, err
	}
	return job, nil
}
