package treatment

import (
	"github.com/cognitriage/cognitriage/internal/risk"
)

// tierLayer is one immutable layer of the cumulative rule set. Building a
// plan folds the layers from LOW up to the subject's tier: lifestyle,
// medical, referral and trial entries append; a layer with
// replaceMonitoring discards the monitoring schedule accumulated so far.
type tierLayer struct {
	lifestyle         []Entry
	medical           []Entry
	monitoring        []MonitoringEntry
	replaceMonitoring bool
	referrals         []Referral
	trials            []TrialConsideration
}

var lowLayer = tierLayer{
	lifestyle: []Entry{
		{
			Intervention:  "Mediterranean diet adherence",
			Priority:      "high",
			EvidenceLevel: "A",
			Rationale:     "Proven neuroprotective benefits",
		},
		{
			Intervention:  "Regular aerobic exercise (150 min/week)",
			Priority:      "high",
			EvidenceLevel: "A",
			Rationale:     "Supports neuroplasticity and cognitive reserve",
		},
		{
			Intervention:  "Cognitive training programs",
			Priority:      "moderate",
			EvidenceLevel: "B",
			Rationale:     "May help maintain cognitive function",
		},
	},
	monitoring: []MonitoringEntry{
		{Assessment: "Annual cognitive screening", Frequency: "12 months", Priority: "moderate"},
		{Assessment: "Lifestyle adherence check", Frequency: "6 months", Priority: "low"},
	},
}

var moderateLayer = tierLayer{
	medical: []Entry{
		{
			Intervention:  "Vitamin D supplementation assessment",
			Priority:      "moderate",
			EvidenceLevel: "B",
			Rationale:     "Potential cognitive benefits in deficient patients",
		},
		{
			Intervention:  "Sleep quality optimization",
			Priority:      "high",
			EvidenceLevel: "A",
			Rationale:     "Sleep disturbances accelerate cognitive decline",
		},
	},
	replaceMonitoring: true,
	monitoring: []MonitoringEntry{
		{Assessment: "Cognitive assessment (MoCA/MMSE)", Frequency: "6 months", Priority: "high"},
		{Assessment: "Neuroimaging follow-up", Frequency: "12-18 months", Priority: "moderate"},
	},
	referrals: []Referral{
		{Specialist: "Neuropsychology", Priority: "moderate", Rationale: "Detailed cognitive profiling recommended"},
	},
}

var highLayer = tierLayer{
	medical: []Entry{
		{
			Intervention:  "Comprehensive metabolic panel",
			Priority:      "high",
			EvidenceLevel: "A",
			Rationale:     "Rule out reversible causes of cognitive decline",
		},
		{
			Intervention:  "Cardiovascular risk optimization",
			Priority:      "high",
			EvidenceLevel: "A",
			Rationale:     "Vascular factors contribute to cognitive decline",
		},
	},
	referrals: []Referral{
		{Specialist: "Memory clinic/Neurology", Priority: "high", Rationale: "Specialist evaluation for potential MCI/dementia"},
		{Specialist: "Geriatrician", Priority: "moderate", Rationale: "Comprehensive geriatric assessment"},
	},
	trials: []TrialConsideration{
		{Consideration: "Alzheimer's prevention trials", Priority: "moderate", Rationale: "May benefit from early intervention studies"},
	},
}

var urgentLayer = tierLayer{
	medical: []Entry{
		{
			Intervention:  "CSF biomarker evaluation",
			Priority:      "high",
			EvidenceLevel: "A",
			Rationale:     "Definitive Alzheimer's pathology assessment",
		},
		{
			Intervention:  "PET amyloid imaging consideration",
			Priority:      "moderate",
			EvidenceLevel: "B",
			Rationale:     "Amyloid burden assessment if clinically indicated",
		},
	},
	replaceMonitoring: true,
	monitoring: []MonitoringEntry{
		{Assessment: "Cognitive assessment", Frequency: "3 months", Priority: "urgent"},
		{Assessment: "Functional assessment", Frequency: "3 months", Priority: "high"},
	},
}

// defaultLayer covers an unrecognized tier with a minimal baseline.
var defaultLayer = tierLayer{
	lifestyle: []Entry{
		{
			Intervention:  "General cognitive health maintenance",
			Priority:      "moderate",
			EvidenceLevel: "C",
			Rationale:     "Standard cognitive health practices",
		},
	},
	monitoring: []MonitoringEntry{
		{Assessment: "Baseline cognitive assessment", Frequency: "12 months", Priority: "moderate"},
	},
}

// layersFor returns the layer stack for a tier along with the tier's base
// confidence. Unrecognized tiers get the default layer.
func layersFor(tier risk.Tier) ([]tierLayer, float64) {
	switch tier {
	case risk.TierLow:
		return []tierLayer{lowLayer}, 0.85
	case risk.TierModerate:
		return []tierLayer{lowLayer, moderateLayer}, 0.80
	case risk.TierHigh:
		return []tierLayer{lowLayer, moderateLayer, highLayer}, 0.75
	case risk.TierUrgent:
		return []tierLayer{lowLayer, moderateLayer, highLayer, urgentLayer}, 0.70
	default:
		return []tierLayer{defaultLayer}, 0.60
	}
}
