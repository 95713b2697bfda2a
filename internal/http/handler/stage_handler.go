package handler

import (
	"net/http"

	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/service"
	"go.uber.org/zap"
)

type StageHandler struct {
	stageService *service.StageService
	cache        *PipelineCache
	logger       *zap.Logger
}

func NewStageHandler(stageService *service.StageService, cache *PipelineCache, logger *zap.Logger) *StageHandler {
	return &StageHandler{
		stageService: stageService,
		cache:        cache,
		logger:       logger,
	}
}

// @Summary Update stage
// @Description Update stage attributes. Changing isFinal closes or reopens the leads in the stage.
// @Tags Stages
// @Accept json
// @Produce json
// @Param id path string true "Stage ID"
// @Param stage body domain.UpdateStageRequest true "Stage data"
// @Success 200 {object} domain.StageDTO
// @Security BearerAuth
// @Router /stages/{id} [put]
func (h *StageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req domain.UpdateStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	stage, err := h.stageService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update stage")
		return
	}
	h.cache.invalidate(r.Context())

	respondJSON(w, http.StatusOK, stage)
}

// @Summary Reorder stage
// @Description Move a stage to a zero-based position within its pipeline
// @Tags Stages
// @Accept json
// @Produce json
// @Param id path string true "Stage ID"
// @Param position body domain.ReorderStageRequest true "Target position"
// @Success 200 {object} domain.PipelineDTO
// @Failure 400 {object} domain.APIError
// @Failure 503 {object} domain.APIError
// @Security BearerAuth
// @Router /stages/{id}/position [put]
func (h *StageHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req domain.ReorderStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pipeline, err := h.stageService.Reorder(r.Context(), id, *req.Position)
	if err != nil {
		respondServiceError(w, h.logger, err, "reorder stage")
		return
	}
	h.cache.invalidate(r.Context())

	respondJSON(w, http.StatusOK, pipeline)
}

// @Summary Delete stage
// @Description Delete a stage that no lead references
// @Tags Stages
// @Param id path string true "Stage ID"
// @Success 204
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /stages/{id} [delete]
func (h *StageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.stageService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete stage")
		return
	}
	h.cache.invalidate(r.Context())

	w.WriteHeader(http.StatusNoContent)
}
