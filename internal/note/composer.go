// Package note assembles the human-readable clinical note and applies the
// safety stamp that always closes the pipeline.
package note

import (
	"github.com/cognitriage/cognitriage/internal/evidence"
	"github.com/cognitriage/cognitriage/internal/imaging"
	"github.com/cognitriage/cognitriage/internal/risk"
)

// PatientInfo summarizes the intake demographics on the note.
type PatientInfo struct {
	Age            int    `json:"age"`
	Sex            string `json:"sex"`
	CognitiveTotal int    `json:"cognitive_total"`
}

// ImagingFindings is the imaging section of the note.
type ImagingFindings struct {
	HippocampalVolumesML imaging.HippocampalVolumes `json:"hippocampal_volumes_ml"`
	AtrophyScore         int                        `json:"atrophy_score"`
	Percentiles          imaging.Percentiles        `json:"percentiles"`
	BrainVolumes         imaging.BrainVolumes       `json:"brain_volumes"`
	QualityMetrics       imaging.QualityMetrics     `json:"quality_metrics"`
}

// ClinicalNote is the assembled triage note, before the safety stamp.
type ClinicalNote struct {
	PatientInfo     PatientInfo     `json:"patient_info"`
	ImagingFindings ImagingFindings `json:"imaging_findings"`
	RiskAssessment  risk.Assessment `json:"risk_assessment"`
	Recommendations []string        `json:"recommendations"`
	Limitations     []string        `json:"limitations"`
}

// Composer builds clinical notes from prior stage outputs.
type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

// Compose assembles the note. Recommendations here are the short narrative
// summary; the structured plan lives in the treatment section of the result.
func (c *Composer) Compose(
	features *imaging.Features,
	assessment *risk.Assessment,
	ev *evidence.Result,
	age int,
	sex string,
	cognitiveTotal int,
) *ClinicalNote {
	recs := []string{}
	switch assessment.RiskTier {
	case risk.TierHigh, risk.TierUrgent:
		recs = append(recs,
			"Recommend neurology memory clinic referral",
			"Consider further biomarker evaluation if appropriate")
	case risk.TierModerate:
		recs = append(recs,
			"Recommend follow-up cognitive testing in 6-12 months",
			"Lifestyle risk factor modification counseling")
	default:
		recs = append(recs, "Routine monitoring")
	}
	if ev != nil && ev.Live() {
		recs = append(recs, "See latest research findings for evidence-based interventions")
	}

	return &ClinicalNote{
		PatientInfo: PatientInfo{
			Age:            age,
			Sex:            sex,
			CognitiveTotal: cognitiveTotal,
		},
		ImagingFindings: ImagingFindings{
			HippocampalVolumesML: features.HippocampalVolumes,
			AtrophyScore:         features.AtrophyScore,
			Percentiles:          features.Percentiles,
			BrainVolumes:         features.BrainVolumes,
			QualityMetrics:       features.QualityMetrics,
		},
		RiskAssessment:  *assessment,
		Recommendations: recs,
		Limitations: []string{
			"This is a triage aid; not a definitive diagnosis",
			"MRI-derived measures are approximations; clinical correlation required",
			"Not for diagnostic use without physician oversight",
			"Supplemental tool for clinical decision making",
		},
	}
}
