package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/repository"
	"github.com/straye-as/agency-pipeline/internal/service"
	"go.uber.org/zap"
)

type DealHandler struct {
	dealService *service.DealService
	logger      *zap.Logger
}

func NewDealHandler(dealService *service.DealService, logger *zap.Logger) *DealHandler {
	return &DealHandler{
		dealService: dealService,
		logger:      logger,
	}
}

// @Summary List deals
// @Description List deals, newest first, with optional filters
// @Tags Deals
// @Produce json
// @Param stage query string false "Filter by stage (New, Proposal, Negotiation, Won, Lost)"
// @Param clientId query string false "Filter by client ID"
// @Success 200 {array} domain.DealDTO
// @Router /deals [get]
func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := &repository.DealFilters{}

	if s := r.URL.Query().Get("stage"); s != "" {
		stage := domain.DealStage(s)
		filters.Stage = &stage
	}

	if cid := r.URL.Query().Get("clientId"); cid != "" {
		id, err := uuid.Parse(cid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid client ID: must be a valid UUID")
			return
		}
		filters.ClientID = &id
	}

	deals, err := h.dealService.List(r.Context(), filters)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list deals")
		return
	}

	respondJSON(w, http.StatusOK, deals)
}

// @Summary Create deal
// @Description Create a new deal in the sales pipeline
// @Tags Deals
// @Accept json
// @Produce json
// @Param request body domain.CreateDealRequest true "Deal data"
// @Success 201 {object} domain.DealDTO
// @Router /deals [post]
func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDealRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deal, err := h.dealService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create deal")
		return
	}

	w.Header().Set("Location", "/api/v1/deals/"+deal.ID.String())
	respondJSON(w, http.StatusCreated, deal)
}

// @Summary Get deal
// @Tags Deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} domain.DealDTO
// @Router /deals/{id} [get]
func (h *DealHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "deal")
	if !ok {
		return
	}

	deal, err := h.dealService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get deal", zap.String("deal_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, deal)
}

// @Summary Update deal
// @Description Update deal fields. The stage is changed through POST /deals/{id}/stage.
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.UpdateDealRequest true "Deal data"
// @Success 200 {object} domain.DealDTO
// @Router /deals/{id} [put]
func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "deal")
	if !ok {
		return
	}

	var req domain.UpdateDealRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deal, err := h.dealService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update deal", zap.String("deal_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, deal)
}

// @Summary Change deal stage
// @Description Move a deal to any stage. The first move into Won spawns a production job.
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.TransitionStageRequest true "Stage data"
// @Success 200 {object} domain.StageTransitionResult
// @Router /deals/{id}/stage [post]
func (h *DealHandler) TransitionStage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "deal")
	if !ok {
		return
	}

	var req domain.TransitionStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.dealService.TransitionStage(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to change deal stage", zap.String("deal_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// @Summary Pipeline board
// @Description Deals grouped by stage, one column per stage
// @Tags Deals
// @Produce json
// @Success 200 {array} domain.PipelineStageColumn
// @Router /deals/pipeline [get]
func (h *DealHandler) GetPipeline(w http.ResponseWriter, r *http.Request) {
	board, err := h.dealService.GetPipelineBoard(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get pipeline")
		return
	}

	respondJSON(w, http.StatusOK, board)
}

// @Summary Deal stage history
// @Tags Deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {array} domain.DealStageHistoryDTO
// @Router /deals/{id}/history [get]
func (h *DealHandler) GetStageHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "deal")
	if !ok {
		return
	}

	history, err := h.dealService.GetStageHistory(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get stage history", zap.String("deal_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, history)
}
