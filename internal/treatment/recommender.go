// Package treatment builds the layered intervention plan. Tier rule sets
// are immutable layers folded in order, so the plan for a higher tier
// always extends the lower tier's lists (monitoring schedules excepted,
// which are replaced at MODERATE and URGENT).
package treatment

import (
	"fmt"
	"math"

	"github.com/cognitriage/cognitriage/internal/evidence"
	"github.com/cognitriage/cognitriage/internal/risk"
)

const (
	memoryClinicSpecialist = "Memory clinic/Neurology"
	urgentReferralWindow   = "2-4 weeks"

	liveEvidenceMinCitations = 3
	liveEvidenceBump         = 0.05
)

// Input carries everything the recommender consumes. It is a pure function
// of this input: no clocks, no randomness.
type Input struct {
	Tier             risk.Tier
	AtrophyScore     int
	MinHippocampalML float64
	Evidence         *evidence.Result
	Age              int
	Sex              string
	CognitiveTotal   int
}

// Recommend folds the tier layers, applies the global modifiers, and
// derives the per-category confidence map and the urgency priority score.
func Recommend(in Input) *RecommendationSet {
	layers, baseConfidence := layersFor(in.Tier)

	set := &RecommendationSet{
		LifestyleInterventions: []Entry{},
		MedicalManagement:      []Entry{},
		MonitoringSchedule:     []MonitoringEntry{},
		Referrals:              []Referral{},
		ClinicalTrials:         []TrialConsideration{},
		Rationale:              []string{},
	}

	for _, layer := range layers {
		set.LifestyleInterventions = append(set.LifestyleInterventions, layer.lifestyle...)
		set.MedicalManagement = append(set.MedicalManagement, layer.medical...)
		set.Referrals = append(set.Referrals, layer.referrals...)
		set.ClinicalTrials = append(set.ClinicalTrials, layer.trials...)
		if layer.replaceMonitoring {
			set.MonitoringSchedule = append([]MonitoringEntry{}, layer.monitoring...)
		} else {
			set.MonitoringSchedule = append(set.MonitoringSchedule, layer.monitoring...)
		}
	}

	if in.Tier == risk.TierUrgent {
		upgradeMemoryClinicReferral(set)
	}

	// Global modifiers apply after tier rules, regardless of tier.
	if in.Age >= 75 {
		set.MedicalManagement = append(set.MedicalManagement, Entry{
			Intervention:  "Comprehensive geriatric assessment",
			Priority:      "high",
			EvidenceLevel: "A",
			Rationale:     "Advanced age warrants holistic evaluation",
		})
	}
	if in.Sex == "F" && in.Age >= 65 {
		set.LifestyleInterventions = append(set.LifestyleInterventions, Entry{
			Intervention:  "Hormone replacement therapy evaluation",
			Priority:      "moderate",
			EvidenceLevel: "B",
			Rationale:     "Post-menopausal cognitive protection consideration",
		})
	}

	if in.Evidence != nil && in.Evidence.Live() {
		if count := len(in.Evidence.Citations); count >= liveEvidenceMinCitations {
			set.Rationale = append(set.Rationale,
				fmt.Sprintf("Recommendations informed by %d recent publications", count))
			baseConfidence += liveEvidenceBump
		}
	}

	set.ConfidenceScores = map[string]float64{
		"lifestyle":  math.Min(0.95, baseConfidence+0.10),
		"medical":    math.Min(0.90, baseConfidence),
		"monitoring": math.Min(0.95, baseConfidence+0.05),
		"referrals":  math.Min(0.85, baseConfidence-0.05),
		"overall":    math.Min(0.90, baseConfidence),
	}

	if in.AtrophyScore >= 3 {
		set.Rationale = append(set.Rationale,
			fmt.Sprintf("Elevated MTA score (%d) supports structured intervention", in.AtrophyScore))
	}
	if in.MinHippocampalML < 2.5 {
		set.Rationale = append(set.Rationale, "Significant hippocampal volume loss detected")
	}

	set.PriorityScore = priorityScore(in.Tier, in.AtrophyScore, in.CognitiveTotal, in.Age)

	return set
}

// upgradeMemoryClinicReferral promotes any existing memory-clinic referral
// to urgent priority with an explicit timeframe.
func upgradeMemoryClinicReferral(set *RecommendationSet) {
	for i := range set.Referrals {
		if set.Referrals[i].Specialist == memoryClinicSpecialist {
			set.Referrals[i].Priority = "urgent"
			set.Referrals[i].Timeframe = urgentReferralWindow
		}
	}
}

// priorityScore computes treatment urgency from a per-tier base plus
// modifiers. Within each condition group only the higher threshold applies.
func priorityScore(tier risk.Tier, atrophyScore, cognitiveTotal, age int) float64 {
	var score float64
	switch tier {
	case risk.TierLow:
		score = 0.3
	case risk.TierModerate:
		score = 0.5
	case risk.TierHigh:
		score = 0.7
	case risk.TierUrgent:
		score = 0.9
	default:
		score = 0.4
	}

	switch {
	case atrophyScore >= 4:
		score += 0.15
	case atrophyScore >= 3:
		score += 0.10
	}

	switch {
	case cognitiveTotal < 20:
		score += 0.15
	case cognitiveTotal < 24:
		score += 0.10
	}

	switch {
	case age >= 80:
		score += 0.10
	case age >= 75:
		score += 0.05
	}

	return math.Min(1.0, score)
}
