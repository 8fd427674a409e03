package pipeline_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cognitriage/cognitriage/internal/evidence"
	"github.com/cognitriage/cognitriage/internal/imaging"
	"github.com/cognitriage/cognitriage/internal/pipeline"
	"github.com/cognitriage/cognitriage/internal/store"
	"github.com/cognitriage/cognitriage/internal/store/model"
)

type fakeLiterature struct {
	papers []evidence.Paper
	err    error
}

func (f *fakeLiterature) Search(_ context.Context, _ string, _ int) ([]evidence.Paper, error) {
	return f.papers, f.err
}

type fakeTrials struct {
	studies []evidence.Study
	err     error
}

func (f *fakeTrials) Search(_ context.Context, _ []string, _ int) ([]evidence.Study, error) {
	return f.studies, f.err
}

func uniformVolume(n int, value float64) *imaging.Volume {
	data := make([]float64, n*n*n)
	for i := range data {
		data[i] = value
	}
	vol, err := imaging.NewVolume([3]int{n, n, n}, [3]float64{1, 1, 1}, data)
	Expect(err).ToNot(HaveOccurred())
	return vol
}

var _ = Describe("orchestrator", func() {
	var (
		s     store.Store
		orch  *pipeline.Orchestrator
		ctx   context.Context
		stamp time.Time
	)

	BeforeEach(func() {
		ctx = context.TODO()
		s = store.NewStore()
		resolver := evidence.NewResolver(
			&fakeLiterature{},
			&fakeTrials{studies: []evidence.Study{
				{NCTID: "NCT01234567", Title: "Exercise for MCI", Summary: "Aerobic training.", Phase: "PHASE2"},
			}},
			time.Second,
			5,
		)
		stamp = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		orch = pipeline.NewOrchestrator(s, resolver, 4).WithClock(func() time.Time { return stamp })
	})

	AfterEach(func() {
		s.Close()
	})

	waitDone := func(done <-chan struct{}) {
		Eventually(done, "5s").Should(BeClosed())
	}

	Context("successful run", func() {
		It("walks every stage in order and completes the job", func() {
			intake := pipeline.Intake{
				Scans:          []pipeline.Scan{{Filename: "scan_t1.nii.gz", Volume: uniformVolume(64, 10)}},
				CognitiveTotal: 24,
				Age:            72,
				Sex:            "M",
			}

			jobID, done, err := orch.Submit(ctx, intake)
			Expect(err).ToNot(HaveOccurred())
			Expect(jobID).ToNot(BeEmpty())
			waitDone(done)

			job, err := s.Job().Get(ctx, jobID)
			Expect(err).ToNot(HaveOccurred())
			Expect(job.Status).To(Equal(model.JobStatusCompleted))
			Expect(job.Progress).To(Equal(100))
			Expect(job.Error).To(BeEmpty())

			for _, stage := range pipeline.StageOrder {
				Expect(job.Stages[stage].Status).To(Equal(model.StageStatusDone), "stage %s", stage)
				Expect(job.Stages[stage].Error).To(BeEmpty())
			}
		})

		It("assembles the full result payload", func() {
			intake := pipeline.Intake{
				Scans:          []pipeline.Scan{{Filename: "scan_t1.nii.gz", Volume: uniformVolume(64, 10)}},
				CognitiveTotal: 24,
				Age:            72,
				Sex:            "F",
			}

			jobID, done, err := orch.Submit(ctx, intake)
			Expect(err).ToNot(HaveOccurred())
			waitDone(done)

			job, err := s.Job().Get(ctx, jobID)
			Expect(err).ToNot(HaveOccurred())

			result, ok := job.Result.(*pipeline.TriageResult)
			Expect(ok).To(BeTrue())

			// Uniform volume sits at the hemisphere baselines: one severity
			// point for the cognitive score keeps the tier low.
			Expect(string(result.Triage.RiskTier)).To(Equal("LOW"))
			Expect(result.Triage.ComplianceScore).To(Equal(0.95))
			Expect(result.Triage.Disclaimers).To(HaveLen(4))

			// Empty live search resolves to the curated static set.
			Expect(result.SearchInfo.SearchType).To(Equal(evidence.SearchTypeFallbackStatic))
			Expect(result.Citations).To(Equal(evidence.FallbackCitations()))

			Expect(result.Trials).To(HaveLen(1))
			Expect(result.Trials[0].NCTID).To(Equal("NCT01234567"))

			Expect(result.TreatmentRecommendations.LifestyleInterventions).ToNot(BeEmpty())
			Expect(result.TreatmentRecommendations.ConfidenceScores).To(HaveKey("overall"))

			Expect(result.QC.FilesReceived).To(Equal(1))
			Expect(result.QC.AcceptedFormats).To(ContainElement("nifti"))

			Expect(result.Note.GeneratedAt).To(Equal("2024-05-01 12:00:00"))
			Expect(result.Note.PatientInfo.Age).To(Equal(72))
			Expect(result.Note.PatientInfo.CognitiveTotal).To(Equal(24))
		})

		It("records stage outputs with their concrete payload types", func() {
			intake := pipeline.Intake{
				Scans:          []pipeline.Scan{{Filename: "scan_t1.nii.gz", Volume: uniformVolume(64, 10)}},
				CognitiveTotal: 24,
				Age:            72,
			}

			jobID, done, err := orch.Submit(ctx, intake)
			Expect(err).ToNot(HaveOccurred())
			waitDone(done)

			job, err := s.Job().Get(ctx, jobID)
			Expect(err).ToNot(HaveOccurred())

			qc, ok := job.Stages[pipeline.StageIngestionQC].Output.(pipeline.QCOutput)
			Expect(ok).To(BeTrue())
			Expect(qc.HasVolume).To(BeTrue())
			Expect(qc.ScoreValid).To(BeTrue())

			feats, ok := job.Stages[pipeline.StageFeatureExtraction].Output.(pipeline.FeaturesOutput)
			Expect(ok).To(BeTrue())
			Expect(feats.Simulated).To(BeFalse())
			Expect(feats.HippocampalVolumes.LeftML).To(BeNumerically(">", 0))

			risk, ok := job.Stages[pipeline.StageRiskStratification].Output.(pipeline.RiskOutput)
			Expect(ok).To(BeTrue())
			Expect(risk.RiskTier).ToNot(BeEmpty())

			_, ok = job.Stages[pipeline.StageSafetyGate].Output.(pipeline.SafetyOutput)
			Expect(ok).To(BeTrue())
		})

		It("simulates features for reference-only submissions", func() {
			intake := pipeline.Intake{
				Scans:          []pipeline.Scan{{Filename: "prior_scan.dcm"}},
				CognitiveTotal: 27,
				Age:            68,
			}

			jobID, done, err := orch.Submit(ctx, intake)
			Expect(err).ToNot(HaveOccurred())
			waitDone(done)

			job, err := s.Job().Get(ctx, jobID)
			Expect(err).ToNot(HaveOccurred())
			Expect(job.Status).To(Equal(model.JobStatusCompleted))

			feats, ok := job.Stages[pipeline.StageFeatureExtraction].Output.(pipeline.FeaturesOutput)
			Expect(ok).To(BeTrue())
			Expect(feats.Simulated).To(BeTrue())

			qc, ok := job.Stages[pipeline.StageIngestionQC].Output.(pipeline.QCOutput)
			Expect(ok).To(BeTrue())
			Expect(qc.HasVolume).To(BeFalse())
			Expect(qc.Files).To(Equal([]string{"prior_scan.dcm"}))
			Expect(qc.AcceptedFormats).To(ContainElement("dicom"))
		})
	})

	Context("stage failure", func() {
		It("stops at the failing stage and leaves prior records intact", func() {
			// An 8x8x8 grid passes shape validation but is rejected by the
			// extractor's plausibility check.
			intake := pipeline.Intake{
				Scans:          []pipeline.Scan{{Filename: "tiny.nii"}},
				CognitiveTotal: 24,
				Age:            72,
			}
			intake.Scans[0].Volume = uniformVolume(8, 10)

			jobID, done, err := orch.Submit(ctx, intake)
			Expect(err).ToNot(HaveOccurred())
			waitDone(done)

			job, err := s.Job().Get(ctx, jobID)
			Expect(err).ToNot(HaveOccurred())

			Expect(job.Status).To(Equal(model.JobStatusFailed))
			Expect(job.Error).To(ContainSubstring(pipeline.StageFeatureExtraction))
			Expect(job.Result).To(BeNil())

			Expect(job.Stages[pipeline.StageIngestionQC].Status).To(Equal(model.StageStatusDone))
			Expect(job.Stages[pipeline.StageFeatureExtraction].Status).To(Equal(model.StageStatusFailed))
			Expect(job.Stages[pipeline.StageFeatureExtraction].Error).ToNot(BeEmpty())

			// No stage after the failure ever ran.
			for _, stage := range pipeline.StageOrder[2:] {
				Expect(job.Stages[stage].Status).To(Equal(model.StageStatusPending), "stage %s", stage)
			}

			// Progress froze at the last committed checkpoint.
			Expect(job.Progress).To(Equal(15))
		})

		It("closes the done channel on failure too", func() {
			intake := pipeline.Intake{
				Scans:          []pipeline.Scan{{Filename: "tiny.nii", Volume: uniformVolume(8, 10)}},
				CognitiveTotal: 24,
				Age:            72,
			}

			_, done, err := orch.Submit(ctx, intake)
			Expect(err).ToNot(HaveOccurred())
			Eventually(done, "5s").Should(BeClosed())
		})
	})

	Context("intake validation", func() {
		It("rejects an out-of-range cognitive total before creating a job", func() {
			intake := pipeline.Intake{
				Scans:          []pipeline.Scan{{Filename: "scan.nii"}},
				CognitiveTotal: 31,
				Age:            70,
			}

			jobID, done, err := orch.Submit(ctx, intake)
			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(&pipeline.InvalidIntakeError{}))
			Expect(jobID).To(BeEmpty())
			Expect(done).To(BeNil())
		})

		It("rejects an empty scan list", func() {
			_, _, err := orch.Submit(ctx, pipeline.Intake{CognitiveTotal: 24, Age: 70})
			Expect(err).To(BeAssignableToTypeOf(&pipeline.InvalidIntakeError{}))
		})

		It("rejects an unknown sex code", func() {
			intake := pipeline.Intake{
				Scans:          []pipeline.Scan{{Filename: "scan.nii"}},
				CognitiveTotal: 24,
				Age:            70,
				Sex:            "X",
			}
			_, _, err := orch.Submit(ctx, intake)
			Expect(err).To(BeAssignableToTypeOf(&pipeline.InvalidIntakeError{}))
		})
	})

	Context("concurrency", func() {
		It("runs independent jobs to completion side by side", func() {
			dones := make([]<-chan struct{}, 0, 6)
			ids := make([]string, 0, 6)
			for i := 0; i < 6; i++ {
				intake := pipeline.Intake{
					Scans:          []pipeline.Scan{{Filename: "scan_t1.nii.gz", Volume: uniformVolume(32, 10)}},
					CognitiveTotal: 24,
					Age:            72,
				}
				jobID, done, err := orch.Submit(ctx, intake)
				Expect(err).ToNot(HaveOccurred())
				ids = append(ids, jobID)
				dones = append(dones, done)
			}

			for _, done := range dones {
				Eventually(done, "10s").Should(BeClosed())
			}
			for _, id := range ids {
				job, err := s.Job().Get(ctx, id)
				Expect(err).ToNot(HaveOccurred())
				Expect(job.Status).To(Equal(model.JobStatusCompleted))
				Expect(job.Progress).To(Equal(100))
			}
		})

		It("keeps one job's failure away from the others", func() {
			good := pipeline.Intake{
				Scans:          []pipeline.Scan{{Filename: "scan_t1.nii.gz", Volume: uniformVolume(32, 10)}},
				CognitiveTotal: 24,
				Age:            72,
			}
			bad := pipeline.Intake{
				Scans:          []pipeline.Scan{{Filename: "tiny.nii", Volume: uniformVolume(8, 10)}},
				CognitiveTotal: 24,
				Age:            72,
			}

			goodID, goodDone, err := orch.Submit(ctx, good)
			Expect(err).ToNot(HaveOccurred())
			badID, badDone, err := orch.Submit(ctx, bad)
			Expect(err).ToNot(HaveOccurred())

			Eventually(goodDone, "5s").Should(BeClosed())
			Eventually(badDone, "5s").Should(BeClosed())

			goodJob, err := s.Job().Get(ctx, goodID)
			Expect(err).ToNot(HaveOccurred())
			Expect(goodJob.Status).To(Equal(model.JobStatusCompleted))

			badJob, err := s.Job().Get(ctx, badID)
			Expect(err).ToNot(HaveOccurred())
			Expect(badJob.Status).To(Equal(model.JobStatusFailed))
		})
	})
})
