package handler

import (
	"net/http"
	"strconv"

	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/service"
	"go.uber.org/zap"
)

type LeadHandler struct {
	leadService *service.LeadService
	logger      *zap.Logger
}

func NewLeadHandler(leadService *service.LeadService, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		logger:      logger,
	}
}

// @Summary Create lead
// @Description Create a lead in the given stage or in the first stage of the pipeline
// @Tags Leads
// @Accept json
// @Produce json
// @Param lead body domain.CreateLeadRequest true "Lead data"
// @Success 201 {object} domain.LeadDTO
// @Security BearerAuth
// @Router /leads [post]
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLeadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lead, err := h.leadService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create lead")
		return
	}

	w.Header().Set("Location", "/api/v1/leads/"+lead.ID.String())
	respondJSON(w, http.StatusCreated, lead)
}

// @Summary Get lead
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Success 200 {object} domain.LeadDTO
// @Security BearerAuth
// @Router /leads/{id} [get]
func (h *LeadHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	lead, err := h.leadService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary Move lead
// @Description Move a lead to another stage. Entering a final stage closes the lead, leaving one reopens it.
// @Tags Leads
// @Accept json
// @Produce json
// @Param id path string true "Lead ID"
// @Param move body domain.MoveLeadRequest true "Target stage"
// @Success 200 {object} domain.LeadDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /leads/{id}/move [post]
func (h *LeadHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req domain.MoveLeadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lead, err := h.leadService.Move(r.Context(), id, req.StageID)
	if err != nil {
		respondServiceError(w, h.logger, err, "move lead")
		return
	}

	respondJSON(w, http.StatusOK, lead)
}

// @Summary List lead activities
// @Tags Leads
// @Produce json
// @Param id path string true "Lead ID"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {array} domain.ActivityDTO
// @Security BearerAuth
// @Router /leads/{id}/activities [get]
func (h *LeadHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	activities, err := h.leadService.ListActivities(r.Context(), id, limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "list activities")
		return
	}

	respondJSON(w, http.StatusOK, activities)
}
