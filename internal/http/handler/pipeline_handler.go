package handler

import (
	"net/http"
	"strconv"

	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/service"
	"go.uber.org/zap"
)

type PipelineHandler struct {
	pipelineService *service.PipelineService
	stageService    *service.StageService
	cache           *PipelineCache
	logger          *zap.Logger
}

func NewPipelineHandler(pipelineService *service.PipelineService, stageService *service.StageService, cache *PipelineCache, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{
		pipelineService: pipelineService,
		stageService:    stageService,
		cache:           cache,
		logger:          logger,
	}
}

// @Summary List pipelines
// @Description List pipelines in display order, each with its stages in position order
// @Tags Pipelines
// @Produce json
// @Param activeOnly query bool false "Only active pipelines" default(false)
// @Success 200 {array} domain.PipelineDTO
// @Security BearerAuth
// @Router /pipelines [get]
func (h *PipelineHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("activeOnly"))

	pipelines, err := h.cache.list(r.Context(), activeOnly, func() ([]domain.PipelineDTO, error) {
		return h.pipelineService.List(r.Context(), activeOnly)
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "list pipelines")
		return
	}

	respondJSON(w, http.StatusOK, pipelines)
}

// @Summary Create pipeline
// @Tags Pipelines
// @Accept json
// @Produce json
// @Param pipeline body domain.CreatePipelineRequest true "Pipeline data"
// @Success 201 {object} domain.PipelineDTO
// @Security BearerAuth
// @Router /pipelines [post]
func (h *PipelineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePipelineRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	pipeline, err := h.pipelineService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create pipeline")
		return
	}
	h.cache.invalidate(r.Context())

	w.Header().Set("Location", "/api/v1/pipelines/"+pipeline.ID.String())
	respondJSON(w, http.StatusCreated, pipeline)
}

// @Summary Get pipeline
// @Tags Pipelines
// @Produce json
// @Param id path string true "Pipeline ID"
// @Success 200 {object} domain.PipelineDTO
// @Security BearerAuth
// @Router /pipelines/{id} [get]
func (h *PipelineHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	pipeline, err := h.pipelineService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get pipeline")
		return
	}

	respondJSON(w, http.StatusOK, pipeline)
}

// @Summary List stages
// @Tags Pipelines
// @Produce json
// @Param id path string true "Pipeline ID"
// @Success 200 {array} domain.StageDTO
// @Security BearerAuth
// @Router /pipelines/{id}/stages [get]
func (h *PipelineHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	stages, err := h.stageService.List(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "list stages")
		return
	}

	respondJSON(w, http.StatusOK, stages)
}

// @Summary Create stage
// @Description Append a stage at the end of the pipeline
// @Tags Pipelines
// @Accept json
// @Produce json
// @Param id path string true "Pipeline ID"
// @Param stage body domain.CreateStageRequest true "Stage data"
// @Success 201 {object} domain.StageDTO
// @Security BearerAuth
// @Router /pipelines/{id}/stages [post]
func (h *PipelineHandler) CreateStage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	var req domain.CreateStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	stage, err := h.stageService.Create(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create stage")
		return
	}
	h.cache.invalidate(r.Context())

	w.Header().Set("Location", "/api/v1/stages/"+stage.ID.String())
	respondJSON(w, http.StatusCreated, stage)
}
