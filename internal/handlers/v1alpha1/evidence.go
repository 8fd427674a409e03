package v1alpha1

import (
	"net/http"

	"github.com/go-chi/render"

	api "github.com/cognitriage/cognitriage/api/v1alpha1"
	"github.com/cognitriage/cognitriage/internal/evidence"
	"github.com/cognitriage/cognitriage/internal/handlers/v1alpha1/mappers"
	"github.com/cognitriage/cognitriage/internal/service"
)

type EvidenceHandler struct {
	evidenceSrv *service.EvidenceService
}

func NewEvidenceHandler(evidenceService *service.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{evidenceSrv: evidenceService}
}

// (POST /api/v1/evidence/literature)
func (h *EvidenceHandler) Literature(w http.ResponseWriter, r *http.Request) {
	var req api.PatientProfile
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	profile := mappers.ProfileFromApi(req)
	result := h.evidenceSrv.Literature(r.Context(), profile)
	render.JSON(w, r, api.LiteratureReply{
		Papers:    result.Citations,
		QueryUsed: evidence.GenerateQuery(profile),
	})
}

// (POST /api/v1/evidence/trials)
func (h *EvidenceHandler) Trials(w http.ResponseWriter, r *http.Request) {
	var req api.PatientProfile
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	trials := h.evidenceSrv.Trials(r.Context(), mappers.ProfileFromApi(req))
	render.JSON(w, r, api.TrialsReply{Trials: trials})
}
