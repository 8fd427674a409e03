package service

import (
	"context"

	"github.com/cognitriage/cognitriage/internal/evidence"
)

// EvidenceService exposes the resolver for the standalone literature and
// trial lookup endpoints, outside any job.
type EvidenceService struct {
	resolver *evidence.Resolver
}

func NewEvidenceService(resolver *evidence.Resolver) *EvidenceService {
	return &EvidenceService{resolver: resolver}
}

func (s *EvidenceService) Literature(ctx context.Context, profile evidence.Profile) *evidence.Result {
	return s.resolver.ResolveLiterature(ctx, profile)
}

func (s *EvidenceService) Trials(ctx context.Context, profile evidence.Profile) []evidence.Trial {
	return s.resolver.ResolveTrials(ctx, profile)
}
