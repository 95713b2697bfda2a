package handler

import (
	"net/http"

	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/service"
	"go.uber.org/zap"
)

type ExpenseHandler struct {
	expenseService *service.ExpenseService
	logger         *zap.Logger
}

func NewExpenseHandler(expenseService *service.ExpenseService, logger *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseService: expenseService,
		logger:         logger,
	}
}

// @Summary Create expense
// @Description Book an expense. Project expenses are checked against the project budget in the same transaction.
// @Tags Expenses
// @Accept json
// @Produce json
// @Param expense body domain.CreateExpenseRequest true "Expense data"
// @Success 201 {object} domain.ExpenseCreatedDTO
// @Security BearerAuth
// @Router /expenses [post]
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateExpenseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.expenseService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create expense")
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// @Summary Create expense category
// @Tags Expenses
// @Accept json
// @Produce json
// @Param category body domain.CreateExpenseCategoryRequest true "Category data"
// @Success 201 {object} domain.ExpenseCategoryDTO
// @Security BearerAuth
// @Router /expense-categories [post]
func (h *ExpenseHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateExpenseCategoryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	category, err := h.expenseService.CreateCategory(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create expense category")
		return
	}

	respondJSON(w, http.StatusCreated, category)
}
