package v1alpha1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	api "github.com/cognitriage/cognitriage/api/v1alpha1"
	"github.com/cognitriage/cognitriage/internal/evidence"
	handlers "github.com/cognitriage/cognitriage/internal/handlers/v1alpha1"
	"github.com/cognitriage/cognitriage/internal/pipeline"
	"github.com/cognitriage/cognitriage/internal/service"
	"github.com/cognitriage/cognitriage/internal/store"
)

type stubLiterature struct{}

func (stubLiterature) Search(_ context.Context, _ string, _ int) ([]evidence.Paper, error) {
	return nil, nil
}

type stubTrials struct{}

func (stubTrials) Search(_ context.Context, _ []string, _ int) ([]evidence.Study, error) {
	return nil, fmt.Errorf("registry unavailable")
}

func testVolume(n int) *api.Volume {
	data := make([]float64, n*n*n)
	for i := range data {
		data[i] = 10
	}
	return &api.Volume{
		Dims:           []int{n, n, n},
		VoxelSpacingMM: []float64{1, 1, 1},
		Data:           data,
	}
}

func validIntake() api.IntakeRequest {
	return api.IntakeRequest{
		Scans: []api.ScanPayload{
			{Filename: "scan_t1.nii.gz", Volume: testVolume(32)},
		},
		Cognitive: api.CognitiveAssessment{Total: 24},
		Meta:      api.Demographics{Age: 72, Sex: "M"},
	}
}

var _ = Describe("triage API", func() {
	var (
		ts *httptest.Server
		s  store.Store
	)

	BeforeEach(func() {
		s = store.NewStore()
		resolver := evidence.NewResolver(stubLiterature{}, stubTrials{}, time.Second, 5)
		orchestrator := pipeline.NewOrchestrator(s, resolver, 4)

		triageHandler := handlers.NewTriageHandler(service.NewTriageService(s, orchestrator))
		evidenceHandler := handlers.NewEvidenceHandler(service.NewEvidenceService(resolver))

		router := chi.NewRouter()
		router.Route("/api/v1", func(r chi.Router) {
			r.Post("/triage", triageHandler.Submit)
			r.Get("/triage/{id}/status", triageHandler.Status)
			r.Get("/triage/{id}/result", triageHandler.Result)
			r.Post("/evidence/literature", evidenceHandler.Literature)
			r.Post("/evidence/trials", evidenceHandler.Trials)
		})
		router.Get("/health", handlers.Health)

		ts = httptest.NewServer(router)
	})

	AfterEach(func() {
		ts.Close()
		s.Close()
	})

	post := func(path string, payload any) *http.Response {
		body, err := json.Marshal(payload)
		Expect(err).ToNot(HaveOccurred())
		resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(body))
		Expect(err).ToNot(HaveOccurred())
		return resp
	}

	get := func(path string) *http.Response {
		resp, err := http.Get(ts.URL + path)
		Expect(err).ToNot(HaveOccurred())
		return resp
	}

	decode := func(resp *http.Response, out any) {
		defer resp.Body.Close()
		Expect(json.NewDecoder(resp.Body).Decode(out)).To(Succeed())
	}

	Context("submit", func() {
		It("accepts a valid intake and eventually completes the job", func() {
			resp := post("/api/v1/triage", validIntake())
			Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

			var submitted api.SubmitReply
			decode(resp, &submitted)
			Expect(submitted.JobID).ToNot(BeEmpty())

			statusPath := fmt.Sprintf("/api/v1/triage/%s/status", submitted.JobID)
			Eventually(func() string {
				var status api.StatusReply
				decode(get(statusPath), &status)
				return status.Status
			}, "5s", "50ms").Should(Equal("completed"))

			var status api.StatusReply
			decode(get(statusPath), &status)
			Expect(status.Progress).To(Equal(100))
			Expect(status.Stages).To(HaveLen(8))
			for name, stage := range status.Stages {
				Expect(stage.Status).To(Equal("done"), "stage %s", name)
			}

			var result api.ResultReply
			decode(get(fmt.Sprintf("/api/v1/triage/%s/result", submitted.JobID)), &result)
			Expect(result.Status).To(Equal("completed"))
			Expect(result.Result).ToNot(BeNil())
			Expect(result.Error).To(BeNil())
		})

		It("rejects an out-of-range cognitive total", func() {
			intake := validIntake()
			intake.Cognitive.Total = 31

			resp := post("/api/v1/triage", intake)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

			var apiErr api.Error
			decode(resp, &apiErr)
			Expect(apiErr.Message).ToNot(BeEmpty())
		})

		It("rejects a volume whose data does not match its dimensions", func() {
			intake := validIntake()
			intake.Scans[0].Volume.Data = intake.Scans[0].Volume.Data[:100]

			resp := post("/api/v1/triage", intake)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects an intake without scans", func() {
			intake := validIntake()
			intake.Scans = nil

			resp := post("/api/v1/triage", intake)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a malformed body", func() {
			resp, err := http.Post(ts.URL+"/api/v1/triage", "application/json", bytes.NewReader([]byte("{not json")))
			Expect(err).ToNot(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Context("queries", func() {
		It("returns 404 for an unknown job on both status and result", func() {
			id := uuid.NewString()

			resp := get("/api/v1/triage/" + id + "/status")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			var apiErr api.Error
			decode(resp, &apiErr)
			Expect(apiErr.Message).To(ContainSubstring(id))

			resp = get("/api/v1/triage/" + id + "/result")
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("reports a still-running or queued job without a result", func() {
			resp := post("/api/v1/triage", validIntake())
			var submitted api.SubmitReply
			decode(resp, &submitted)

			var result api.ResultReply
			decode(get(fmt.Sprintf("/api/v1/triage/%s/result", submitted.JobID)), &result)
			Expect(result.JobID).To(Equal(submitted.JobID))
			if result.Status != "completed" {
				Expect(result.Result).To(BeNil())
			}
		})
	})

	Context("standalone evidence lookups", func() {
		It("serves literature with the query that was used", func() {
			resp := post("/api/v1/evidence/literature", api.PatientProfile{
				RiskTier:       "HIGH",
				CognitiveScore: 24,
				Age:            70,
				AtrophyScore:   3,
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var reply api.LiteratureReply
			decode(resp, &reply)
			Expect(reply.Papers).ToNot(BeNil())
			Expect(reply.QueryUsed).To(ContainSubstring("mild cognitive impairment"))
		})

		It("serves fallback trials when the registry is down", func() {
			resp := post("/api/v1/evidence/trials", api.PatientProfile{
				RiskTier:       "MODERATE",
				CognitiveScore: 25,
				Age:            68,
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var reply api.TrialsReply
			decode(resp, &reply)
			Expect(reply.Trials).ToNot(BeNil())
		})
	})

	Context("health", func() {
		It("responds ok", func() {
			resp := get("/health")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body map[string]string
			decode(resp, &body)
			Expect(body).To(HaveKeyWithValue("status", "ok"))
		})
	})
})
