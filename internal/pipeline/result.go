package pipeline

import (
	"github.com/cognitriage/cognitriage/internal/evidence"
	"github.com/cognitriage/cognitriage/internal/note"
	"github.com/cognitriage/cognitriage/internal/treatment"
)

// SearchInfo records how the literature set was obtained.
type SearchInfo struct {
	SearchType string `json:"search_type"`
	TotalFound int    `json:"total_found"`
}

// TriageResult is the terminal payload of a completed job.
type TriageResult struct {
	Triage                   note.AdjustedRisk           `json:"triage"`
	Note                     note.StampedNote            `json:"note"`
	Citations                []evidence.Citation         `json:"citations"`
	Trials                   []evidence.Trial            `json:"trials"`
	TreatmentRecommendations treatment.RecommendationSet `json:"treatment_recommendations"`
	QC                       QCReport                    `json:"qc"`
	SearchInfo               SearchInfo                  `json:"search_info"`
}
