// Package pipeline runs the staged triage state machine. Each submitted job
// executes on its own goroutine, committing stage records and progress
// checkpoints to the store in a fixed order so status polls always observe a
// consistent prefix of the pipeline.
package pipeline

import (
	"github.com/cognitriage/cognitriage/internal/evidence"
	"github.com/cognitriage/cognitriage/internal/imaging"
	"github.com/cognitriage/cognitriage/internal/note"
	"github.com/cognitriage/cognitriage/internal/risk"
	"github.com/cognitriage/cognitriage/internal/treatment"
)

// Stage names, in execution order. The names are part of the status wire
// format: clients key stage views by them.
const (
	StageIngestionQC             = "Ingestion-QC"
	StageFeatureExtraction       = "Feature-Extraction"
	StageRiskStratification      = "Risk-Stratification"
	StageEvidenceResolution      = "Evidence-Resolution"
	StageTrialMatching           = "Trial-Matching"
	StageTreatmentRecommendation = "Treatment-Recommendation"
	StageNoteComposition         = "Note-Composition"
	StageSafetyGate              = "Safety-Gate"
)

// StageOrder is the fixed execution sequence. Jobs never skip or reorder
// stages; a failure stops the walk where it happened.
var StageOrder = []string{
	StageIngestionQC,
	StageFeatureExtraction,
	StageRiskStratification,
	StageEvidenceResolution,
	StageTrialMatching,
	StageTreatmentRecommendation,
	StageNoteComposition,
	StageSafetyGate,
}

// progressCheckpoints maps each stage to the overall progress committed when
// that stage completes. Progress is monotonic because stages commit in order.
var progressCheckpoints = map[string]int{
	StageIngestionQC:             15,
	StageFeatureExtraction:       30,
	StageRiskStratification:      45,
	StageEvidenceResolution:      60,
	StageTrialMatching:           70,
	StageTreatmentRecommendation: 80,
	StageNoteComposition:         90,
	StageSafetyGate:              100,
}

// QCReport summarizes what ingestion accepted. It appears both in the QC
// stage record and on the final result.
type QCReport struct {
	FilesReceived   int      `json:"files_received"`
	Files           []string `json:"files"`
	AcceptedFormats []string `json:"accepted_formats"`
	Notes           []string `json:"notes,omitempty"`
}

// QCOutput is the ingestion stage record payload.
type QCOutput struct {
	QCReport
	CognitiveTotal int  `json:"cognitive_total"`
	ScoreValid     bool `json:"score_valid"`
	HasVolume      bool `json:"has_volume"`
}

// FeaturesOutput is the feature extraction stage record payload.
type FeaturesOutput struct {
	imaging.Features
	// Simulated marks features derived without an inline volume.
	Simulated bool `json:"simulated,omitempty"`
}

// RiskOutput is the risk stratification stage record payload.
type RiskOutput struct {
	risk.Assessment
}

// EvidenceOutput is the evidence resolution stage record payload.
type EvidenceOutput struct {
	evidence.Result
}

// TrialsOutput is the trial matching stage record payload.
type TrialsOutput struct {
	Trials []evidence.Trial `json:"trials"`
	Count  int              `json:"count"`
}

// TreatmentOutput is the treatment recommendation stage record payload.
type TreatmentOutput struct {
	treatment.RecommendationSet
}

// NoteOutput is the note composition stage record payload.
type NoteOutput struct {
	note.ClinicalNote
}

// SafetyOutput is the safety gate stage record payload.
type SafetyOutput struct {
	note.SafetyStamp
}

func (QCOutput) StageOutput()        {}
func (FeaturesOutput) StageOutput()  {}
func (RiskOutput) StageOutput()      {}
func (EvidenceOutput) StageOutput()  {}
func (TrialsOutput) StageOutput()    {}
func (TreatmentOutput) StageOutput() {}
func (NoteOutput) StageOutput()      {}
func (SafetyOutput) StageOutput()    {}
