package handler

import (
	"net/http"
	"strconv"

	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	budgetService *service.BudgetService
	logger        *zap.Logger
}

func NewProjectHandler(budgetService *service.BudgetService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		budgetService: budgetService,
		logger:        logger,
	}
}

// @Summary Create project
// @Tags Projects
// @Accept json
// @Produce json
// @Param project body domain.CreateProjectRequest true "Project data"
// @Success 201 {object} domain.ProjectDTO
// @Security BearerAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProjectRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.budgetService.CreateProject(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create project")
		return
	}

	w.Header().Set("Location", "/api/v1/projects/"+project.ID.String())
	respondJSON(w, http.StatusCreated, project)
}

// @Summary Get project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.ProjectDTO
// @Security BearerAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	project, err := h.budgetService.GetProject(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get project")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

// @Summary Get budget summary
// @Description Budget, spent, remaining and spent percentage derived from the project's expenses
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} domain.BudgetSummaryDTO
// @Security BearerAuth
// @Router /projects/{id}/budget [get]
func (h *ProjectHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	summary, err := h.budgetService.GetSummary(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get budget summary")
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// @Summary Evaluate budget
// @Description Check spend thresholds and record any new alerts
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {array} domain.BudgetAlertDTO
// @Security BearerAuth
// @Router /projects/{id}/budget/evaluate [post]
func (h *ProjectHandler) EvaluateBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	alerts, err := h.budgetService.Evaluate(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "evaluate budget")
		return
	}

	respondJSON(w, http.StatusOK, alerts)
}

// @Summary List budget alerts
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Param unsent query bool false "Only alerts not yet delivered" default(false)
// @Success 200 {array} domain.BudgetAlertDTO
// @Security BearerAuth
// @Router /projects/{id}/alerts [get]
func (h *ProjectHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}
	unsentOnly, _ := strconv.ParseBool(r.URL.Query().Get("unsent"))

	alerts, err := h.budgetService.ListAlerts(r.Context(), id, unsentOnly)
	if err != nil {
		respondServiceError(w, h.logger, err, "list budget alerts")
		return
	}

	respondJSON(w, http.StatusOK, alerts)
}
