package note

import (
	"fmt"
	"time"

	"github.com/cognitriage/cognitriage/internal/risk"
)

const timestampLayout = "2006-01-02 15:04:05"

// AdjustedRisk is the risk assessment with compliance fields stamped on.
type AdjustedRisk struct {
	risk.Assessment
	ComplianceScore float64  `json:"compliance_score"`
	Disclaimers     []string `json:"disclaimers"`
}

// StampedNote is the clinical note with disclaimers and generation time.
type StampedNote struct {
	ClinicalNote
	Disclaimers []string `json:"disclaimers"`
	GeneratedAt string   `json:"generated_at"`
}

// SafetyStamp is the output of the safety gate.
type SafetyStamp struct {
	ComplianceScore    float64      `json:"compliance_score"`
	Disclaimers        []string     `json:"disclaimers"`
	RegulatoryNotes    []string     `json:"regulatory_notes"`
	AuditTrail         string       `json:"audit_trail"`
	RiskAdjusted       AdjustedRisk `json:"risk_adjusted"`
	SafetyApprovedNote StampedNote  `json:"safety_approved_note"`
}

// SafetyGate stamps the note and risk object with disclaimers and a
// compliance score. It runs unconditionally as the final stage and cannot
// fail.
type SafetyGate struct{}

func NewSafetyGate() *SafetyGate {
	return &SafetyGate{}
}

// Stamp applies the safety annotations. The caller supplies the clock so
// the gate stays deterministic under test.
func (g *SafetyGate) Stamp(n *ClinicalNote, assessment *risk.Assessment, now time.Time) *SafetyStamp {
	disclaimers := []string{
		"Not for diagnostic use without physician oversight",
		"Supplemental tool for clinical decision making",
		"Results require clinical correlation",
		"AI-generated content for research purposes",
	}

	complianceScore := 0.85
	if assessment.RiskTier == risk.TierLow || assessment.RiskTier == risk.TierModerate {
		complianceScore = 0.95
	}

	stampedAt := now.Format(timestampLayout)

	return &SafetyStamp{
		ComplianceScore: complianceScore,
		Disclaimers:     disclaimers,
		RegulatoryNotes: []string{
			"Cleared for research use only",
			"Protected-health-information handling per processing agreement",
		},
		AuditTrail: fmt.Sprintf("Processed at %s", stampedAt),
		RiskAdjusted: AdjustedRisk{
			Assessment:      *assessment,
			ComplianceScore: complianceScore,
			Disclaimers:     disclaimers,
		},
		SafetyApprovedNote: StampedNote{
			ClinicalNote: *n,
			Disclaimers:  disclaimers,
			GeneratedAt:  stampedAt,
		},
	}
}
