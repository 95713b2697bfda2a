package handler

import (
	"net/http"

	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/service"
	"go.uber.org/zap"
)

type ClientHandler struct {
	clientService *service.ClientService
	logger        *zap.Logger
}

func NewClientHandler(clientService *service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// @Summary Create client
// @Tags Clients
// @Accept json
// @Produce json
// @Param client body domain.CreateClientRequest true "Client data"
// @Success 201 {object} domain.ClientDTO
// @Security BearerAuth
// @Router /clients [post]
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	client, err := h.clientService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create client")
		return
	}

	w.Header().Set("Location", "/api/v1/clients/"+client.ID.String())
	respondJSON(w, http.StatusCreated, client)
}

// @Summary Get client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} domain.ClientDTO
// @Security BearerAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id")
	if !ok {
		return
	}

	client, err := h.clientService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get client")
		return
	}

	respondJSON(w, http.StatusOK, client)
}
