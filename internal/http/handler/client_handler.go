package handler

import (
	"net/http"

	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/service"
	"go.uber.org/zap"
)

type ClientHandler struct {
	clientService     *service.ClientService
	productionService *service.ProductionService
	logger            *zap.Logger
}

func NewClientHandler(clientService *service.ClientService, productionService *service.ProductionService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService:     clientService,
		productionService: productionService,
		logger:            logger,
	}
}

// @Summary List clients
// @Tags Clients
// @Produce json
// @Param search query string false "Name contains"
// @Success 200 {array} domain.ClientDTO
// @Router /clients [get]
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clientService.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list clients")
		return
	}

	respondJSON(w, http.StatusOK, clients)
}

// @Summary Create client
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body domain.CreateClientRequest true "Client data"
// @Success 201 {object} domain.ClientDTO
// @Router /clients [post]
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClientRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	client, err := h.clientService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create client")
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
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "client")
	if !ok {
		return
	}

	client, err := h.clientService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get client", zap.String("client_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// @Summary Client board
// @Description Kanban board over the deliverables of every job of the client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} domain.ClientBoard
// @Router /clients/{id}/board [get]
func (h *ClientHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "client")
	if !ok {
		return
	}

	board, err := h.productionService.GetClientBoard(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get client board", zap.String("client_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, board)
}
