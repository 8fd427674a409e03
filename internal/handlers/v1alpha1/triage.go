// Package v1alpha1 holds the HTTP handlers for the public API surface.
package v1alpha1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	api "github.com/cognitriage/cognitriage/api/v1alpha1"
	"github.com/cognitriage/cognitriage/internal/handlers/v1alpha1/mappers"
	"github.com/cognitriage/cognitriage/internal/handlers/validator"
	"github.com/cognitriage/cognitriage/internal/service"
	"github.com/cognitriage/cognitriage/pkg/requestid"
)

type TriageHandler struct {
	triageSrv *service.TriageService
}

func NewTriageHandler(triageService *service.TriageService) *TriageHandler {
	return &TriageHandler{triageSrv: triageService}
}

// (POST /api/v1/triage)
func (h *TriageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req api.IntakeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	v := validator.NewValidator()
	v.Register(validator.NewIntakeValidationRules()...)
	if err := v.Struct(req); err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	intake, err := mappers.IntakeFromApi(req)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	jobID, err := h.triageSrv.Submit(r.Context(), intake)
	if err != nil {
		switch err.(type) {
		case *service.ErrInvalidIntake:
			renderError(w, r, http.StatusBadRequest, err.Error())
		default:
			renderError(w, r, http.StatusInternalServerError, err.Error())
		}
		return
	}

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, api.SubmitReply{JobID: jobID})
}

// (GET /api/v1/triage/{id}/status)
func (h *TriageHandler) Status(w http.ResponseWriter, r *http.Request) {
	job, err := h.triageSrv.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch err.(type) {
		case *service.ErrJobNotFound:
			renderError(w, r, http.StatusNotFound, err.Error())
		default:
			renderError(w, r, http.StatusInternalServerError, err.Error())
		}
		return
	}

	render.JSON(w, r, mappers.JobToStatusApi(job))
}

// (GET /api/v1/triage/{id}/result)
func (h *TriageHandler) Result(w http.ResponseWriter, r *http.Request) {
	job, err := h.triageSrv.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		switch err.(type) {
		case *service.ErrJobNotFound:
			renderError(w, r, http.StatusNotFound, err.Error())
		default:
			renderError(w, r, http.StatusInternalServerError, err.Error())
		}
		return
	}

	render.JSON(w, r, mappers.JobToResultApi(job))
}

func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	body := api.Error{Message: message}
	if reqID := requestid.FromContext(r.Context()); reqID != "" {
		body.RequestID = &reqID
	}
	render.Status(r, status)
	render.JSON(w, r, body)
}
