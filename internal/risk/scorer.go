// Package risk implements the rule-based risk stratification engine. The
// scorer is deterministic: identical inputs always yield identical output.
package risk

import (
	"fmt"
	"math"
)

// Tier is the ordinal risk category assigned to a subject.
type Tier string

const (
	TierLow      Tier = "LOW"
	TierModerate Tier = "MODERATE"
	TierHigh     Tier = "HIGH"
	TierUrgent   Tier = "URGENT"
)

const (
	// CognitiveTotalMax is the inclusive upper bound of the cognitive-test
	// total score.
	CognitiveTotalMax = 30

	baseConfidence     = 0.6
	confidencePerPoint = 0.08
	maxConfidence      = 0.95

	volumeReducedML = 2.8
	volumeSevereML  = 2.5
	atrophyElevated = 3
	cognitiveBelow  = 26
	cognitiveLow    = 22
	elderlyAge      = 75
)

// Assessment is the output of risk stratification.
type Assessment struct {
	RiskTier        Tier     `json:"risk_tier"`
	ConfidenceScore float64  `json:"confidence_score"`
	KeyRationale    []string `json:"key_rationale"`

	// SeverityScore is the internal accumulator driving tier and
	// confidence, kept for downstream reporting.
	SeverityScore int `json:"severity_score"`
}

// Input groups the features the scorer consumes.
type Input struct {
	// MinHippocampalML is the smaller of the two hemisphere volume
	// estimates, in millilitres.
	MinHippocampalML float64
	// AtrophyScore is the 0-4 ordinal atrophy measure.
	AtrophyScore int
	// CognitiveTotal is the cognitive-test total, 0-30.
	CognitiveTotal int
	// Age in years.
	Age int
}

// Score accumulates the severity score and maps it to a tier. The cognitive
// total must already be validated; a value outside 0-30 is rejected here as
// a guard against callers skipping ingestion validation.
func Score(in Input) (*Assessment, error) {
	if in.CognitiveTotal < 0 || in.CognitiveTotal > CognitiveTotalMax {
		return nil, fmt.Errorf("invalid cognitive total score %d", in.CognitiveTotal)
	}

	score := 0
	if in.MinHippocampalML < volumeReducedML {
		score++
	}
	if in.MinHippocampalML < volumeSevereML {
		score++
	}
	if in.AtrophyScore >= atrophyElevated {
		score++
	}
	if in.CognitiveTotal < cognitiveBelow {
		score++
	}
	if in.CognitiveTotal < cognitiveLow {
		score++
	}
	if in.Age >= elderlyAge && score >= 2 {
		score++
	}

	var tier Tier
	switch {
	case score <= 1:
		tier = TierLow
	case score == 2:
		tier = TierModerate
	case score == 3 || score == 4:
		tier = TierHigh
	default:
		tier = TierUrgent
	}

	confidence := math.Min(maxConfidence, baseConfidence+confidencePerPoint*float64(score))

	// Rationale entries follow the trigger order above; untriggered
	// conditions are omitted.
	rationale := []string{}
	if in.MinHippocampalML < volumeReducedML {
		rationale = append(rationale, "Reduced hippocampal volume relative to typical aging")
	}
	if in.AtrophyScore >= atrophyElevated {
		rationale = append(rationale, "Elevated medial temporal atrophy score")
	}
	if in.CognitiveTotal < cognitiveBelow {
		rationale = append(rationale, "Cognitive score below normal threshold")
	}

	return &Assessment{
		RiskTier:        tier,
		ConfidenceScore: math.Round(confidence*100) / 100,
		KeyRationale:    rationale,
		SeverityScore:   score,
	}, nil
}
