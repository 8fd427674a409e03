package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cognitriage/cognitriage/internal/evidence"
	"github.com/cognitriage/cognitriage/internal/imaging"
	"github.com/cognitriage/cognitriage/internal/note"
	"github.com/cognitriage/cognitriage/internal/risk"
	"github.com/cognitriage/cognitriage/internal/store"
	"github.com/cognitriage/cognitriage/internal/store/model"
	"github.com/cognitriage/cognitriage/internal/treatment"
	"github.com/cognitriage/cognitriage/pkg/metrics"
)

// Orchestrator owns job execution. Submit validates, creates the job record,
// and hands the job to a dedicated goroutine; all later state is read back
// through the store.
type Orchestrator struct {
	store     store.Store
	extractor *imaging.Extractor
	resolver  *evidence.Resolver
	composer  *note.Composer
	gate      *note.SafetyGate
	log       *zap.SugaredLogger
	now       func() time.Time
	sem       chan struct{}
}

// NewOrchestrator wires the pipeline. maxConcurrent bounds the number of
// jobs executing at once; queued jobs wait their turn on the semaphore.
func NewOrchestrator(s store.Store, resolver *evidence.Resolver, maxConcurrent int) *Orchestrator {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Orchestrator{
		store:     s,
		extractor: imaging.NewExtractor(),
		resolver:  resolver,
		composer:  note.NewComposer(),
		gate:      note.NewSafetyGate(),
		log:       zap.S().Named("pipeline"),
		now:       time.Now,
		sem:       make(chan struct{}, maxConcurrent),
	}
}

// WithClock overrides the orchestrator clock. Used by tests that assert on
// stamped timestamps.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// Submit validates the intake, creates a queued job, and starts its
// goroutine. The returned channel closes when the job reaches a terminal
// state. Invalid intakes are rejected without creating any job record.
func (o *Orchestrator) Submit(ctx context.Context, in Intake) (string, <-chan struct{}, error) {
	if err := in.Validate(); err != nil {
		return "", nil, err
	}

	jobID := uuid.NewString()
	job := model.NewJob(jobID, StageOrder)
	if err := o.store.Job().Create(ctx, job); err != nil {
		return "", nil, err
	}
	metrics.IncreaseTriageJobsTotal(string(model.JobStatusQueued))

	done := make(chan struct{})
	// The job outlives the submission request, so it runs on a fresh
	// context rather than the handler's.
	go o.run(context.Background(), jobID, in, done)
	return jobID, done, nil
}

func (o *Orchestrator) run(ctx context.Context, jobID string, in Intake, done chan struct{}) {
	defer close(done)

	o.sem <- struct{}{}
	defer func() { <-o.sem }()

	o.setStatus(ctx, jobID, model.JobStatusRunning)

	var (
		qc        QCReport
		feats     *imaging.Features
		simulated bool
		assess    *risk.Assessment
		lit       *evidence.Result
		trials    []evidence.Trial
	)

	err := o.runStage(ctx, jobID, StageIngestionQC, func() (model.StageOutput, error) {
		qc = QCReport{
			FilesReceived:   len(in.Scans),
			Files:           in.filenames(),
			AcceptedFormats: acceptedFormats(in.Scans),
		}
		hasVolume := in.primaryVolume() != nil
		if !hasVolume {
			qc.Notes = append(qc.Notes, "no decoded volume attached; features will be simulated")
		}
		return QCOutput{
			QCReport:       qc,
			CognitiveTotal: in.CognitiveTotal,
			ScoreValid:     true,
			HasVolume:      hasVolume,
		}, nil
	})
	if err != nil {
		o.fail(ctx, jobID, StageIngestionQC, err)
		return
	}

	err = o.runStage(ctx, jobID, StageFeatureExtraction, func() (model.StageOutput, error) {
		if vol := in.primaryVolume(); vol != nil {
			extracted, extractErr := o.extractor.Extract(vol, in.Age)
			if extractErr != nil {
				return nil, extractErr
			}
			feats = extracted
		} else {
			feats = imaging.SimulatedFeatures(in.filenames(), in.Age)
			simulated = true
		}
		return FeaturesOutput{Features: *feats, Simulated: simulated}, nil
	})
	if err != nil {
		o.fail(ctx, jobID, StageFeatureExtraction, err)
		return
	}

	err = o.runStage(ctx, jobID, StageRiskStratification, func() (model.StageOutput, error) {
		scored, scoreErr := risk.Score(risk.Input{
			MinHippocampalML: feats.HippocampalVolumes.MinML(),
			AtrophyScore:     feats.AtrophyScore,
			CognitiveTotal:   in.CognitiveTotal,
			Age:              in.Age,
		})
		if scoreErr != nil {
			return nil, scoreErr
		}
		assess = scored
		return RiskOutput{Assessment: *assess}, nil
	})
	if err != nil {
		o.fail(ctx, jobID, StageRiskStratification, err)
		return
	}

	profile := evidence.Profile{
		RiskTier:           string(assess.RiskTier),
		CognitiveScore:     in.CognitiveTotal,
		Age:                in.Age,
		HasImagingFindings: true,
	}

	// Evidence and trial stages resolve to fallbacks on any upstream
	// error, so they cannot fail the job.
	err = o.runStage(ctx, jobID, StageEvidenceResolution, func() (model.StageOutput, error) {
		lit = o.resolver.ResolveLiterature(ctx, profile)
		return EvidenceOutput{Result: *lit}, nil
	})
	if err != nil {
		o.fail(ctx, jobID, StageEvidenceResolution, err)
		return
	}

	err = o.runStage(ctx, jobID, StageTrialMatching, func() (model.StageOutput, error) {
		trials = o.resolver.ResolveTrials(ctx, profile)
		return TrialsOutput{Trials: trials, Count: len(trials)}, nil
	})
	if err != nil {
		o.fail(ctx, jobID, StageTrialMatching, err)
		return
	}

	var recs *treatment.RecommendationSet
	err = o.runStage(ctx, jobID, StageTreatmentRecommendation, func() (model.StageOutput, error) {
		recs = treatment.Recommend(treatment.Input{
			Tier:             assess.RiskTier,
			AtrophyScore:     feats.AtrophyScore,
			MinHippocampalML: feats.HippocampalVolumes.MinML(),
			Evidence:         lit,
			Age:              in.Age,
			Sex:              in.Sex,
			CognitiveTotal:   in.CognitiveTotal,
		})
		return TreatmentOutput{RecommendationSet: *recs}, nil
	})
	if err != nil {
		o.fail(ctx, jobID, StageTreatmentRecommendation, err)
		return
	}

	var clinical *note.ClinicalNote
	err = o.runStage(ctx, jobID, StageNoteComposition, func() (model.StageOutput, error) {
		clinical = o.composer.Compose(feats, assess, lit, in.Age, in.Sex, in.CognitiveTotal)
		return NoteOutput{ClinicalNote: *clinical}, nil
	})
	if err != nil {
		o.fail(ctx, jobID, StageNoteComposition, err)
		return
	}

	var stamp *note.SafetyStamp
	err = o.runStage(ctx, jobID, StageSafetyGate, func() (model.StageOutput, error) {
		stamp = o.gate.Stamp(clinical, assess, o.now())
		return SafetyOutput{SafetyStamp: *stamp}, nil
	})
	if err != nil {
		o.fail(ctx, jobID, StageSafetyGate, err)
		return
	}

	result := &TriageResult{
		Triage:                   stamp.RiskAdjusted,
		Note:                     stamp.SafetyApprovedNote,
		Citations:                lit.Citations,
		Trials:                   trials,
		TreatmentRecommendations: *recs,
		QC:                       qc,
		SearchInfo:               SearchInfo{SearchType: lit.SearchType, TotalFound: lit.TotalFound},
	}
	if err := o.store.Job().SetResult(ctx, jobID, result); err != nil {
		o.log.Errorw("failed to commit result", "job_id", jobID, "error", err)
	}
	o.setStatus(ctx, jobID, model.JobStatusCompleted)
	metrics.IncreaseTriageJobsTotal(string(model.JobStatusCompleted))
	o.log.Infow("triage job completed", "job_id", jobID, "risk_tier", assess.RiskTier)
}

// runStage marks the stage running, executes it, and commits either the
// output and progress checkpoint or the failure record. A panic inside the
// stage body is converted to a stage failure so one bad job cannot take the
// process down.
func (o *Orchestrator) runStage(ctx context.Context, jobID, stage string, fn func() (model.StageOutput, error)) error {
	if err := o.store.Job().SetStage(ctx, jobID, stage, model.StageRecord{Status: model.StageStatusRunning}); err != nil {
		return err
	}

	start := o.now()
	out, err := runSafely(fn)
	metrics.ObserveStageDuration(stage, o.now().Sub(start).Seconds())

	if err != nil {
		if setErr := o.store.Job().SetStage(ctx, jobID, stage, model.StageRecord{
			Status: model.StageStatusFailed,
			Error:  err.Error(),
		}); setErr != nil {
			o.log.Errorw("failed to record stage failure", "job_id", jobID, "stage", stage, "error", setErr)
		}
		return err
	}

	if err := o.store.Job().SetStage(ctx, jobID, stage, model.StageRecord{
		Status: model.StageStatusDone,
		Output: out,
	}); err != nil {
		return err
	}
	return o.store.Job().SetProgress(ctx, jobID, progressCheckpoints[stage])
}

func runSafely(fn func() (model.StageOutput, error)) (out model.StageOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("stage panicked: %v", r)
		}
	}()
	return fn()
}

func (o *Orchestrator) fail(ctx context.Context, jobID, stage string, err error) {
	o.log.Errorw("triage job failed", "job_id", jobID, "stage", stage, "error", err)
	if setErr := o.store.Job().SetError(ctx, jobID, fmt.Sprintf("%s: %v", stage, err)); setErr != nil {
		o.log.Errorw("failed to record job error", "job_id", jobID, "error", setErr)
	}
	o.setStatus(ctx, jobID, model.JobStatusFailed)
	metrics.IncreaseTriageJobsTotal(string(model.JobStatusFailed))
}

func (o *Orchestrator) setStatus(ctx context.Context, jobID string, status model.JobStatus) {
	if err := o.store.Job().SetStatus(ctx, jobID, status); err != nil {
		o.log.Errorw("failed to set job status", "job_id", jobID, "status", status, "error", err)
	}
}

// acceptedFormats lists the distinct recognized formats among the scans,
// preserving first-seen order.
func acceptedFormats(scans []Scan) []string {
	seen := map[string]bool{}
	formats := []string{}
	for _, scan := range scans {
		f := scanFormat(scan.Filename)
		if !seen[f] {
			seen[f] = true
			formats = append(formats, f)
		}
	}
	return formats
}
