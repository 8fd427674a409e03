package service_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cognitriage/cognitriage/internal/evidence"
	"github.com/cognitriage/cognitriage/internal/pipeline"
	"github.com/cognitriage/cognitriage/internal/service"
	"github.com/cognitriage/cognitriage/internal/store"
	"github.com/cognitriage/cognitriage/internal/store/model"
)

type noopLiterature struct{}

func (noopLiterature) Search(_ context.Context, _ string, _ int) ([]evidence.Paper, error) {
	return nil, nil
}

type noopTrials struct{}

func (noopTrials) Search(_ context.Context, _ []string, _ int) ([]evidence.Study, error) {
	return nil, fmt.Errorf("unavailable")
}

var _ = Describe("triage service", func() {
	var (
		s   store.Store
		srv *service.TriageService
		ctx context.Context
	)

	BeforeEach(func() {
		ctx = context.TODO()
		s = store.NewStore()
		resolver := evidence.NewResolver(noopLiterature{}, noopTrials{}, time.Second, 5)
		srv = service.NewTriageService(s, pipeline.NewOrchestrator(s, resolver, 2))
	})

	AfterEach(func() {
		s.Close()
	})

	It("submits a valid intake and exposes the job", func() {
		jobID, err := srv.Submit(ctx, pipeline.Intake{
			Scans:          []pipeline.Scan{{Filename: "scan.nii"}},
			CognitiveTotal: 26,
			Age:            70,
		})
		Expect(err).ToNot(HaveOccurred())

		job, err := srv.GetJob(ctx, jobID)
		Expect(err).ToNot(HaveOccurred())
		Expect(job.ID).To(Equal(jobID))

		Eventually(func() model.JobStatus {
			job, err := srv.GetJob(ctx, jobID)
			Expect(err).ToNot(HaveOccurred())
			return job.Status
		}, "5s", "50ms").Should(Equal(model.JobStatusCompleted))
	})

	It("maps validation failures to the invalid intake error", func() {
		_, err := srv.Submit(ctx, pipeline.Intake{
			Scans:          []pipeline.Scan{{Filename: "scan.nii"}},
			CognitiveTotal: 31,
			Age:            70,
		})
		Expect(err).To(BeAssignableToTypeOf(&service.ErrInvalidIntake{}))
	})

	It("maps a missing job to the not-found error", func() {
		_, err := srv.GetJob(ctx, uuid.NewString())
		Expect(err).To(BeAssignableToTypeOf(&service.ErrJobNotFound{}))
	})
})
