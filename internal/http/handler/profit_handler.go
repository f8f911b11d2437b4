package handler

import (
	"net/http"

	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/service"
	"go.uber.org/zap"
)

type ProfitHandler struct {
	profitService *service.ProfitService
	logger        *zap.Logger
}

func NewProfitHandler(profitService *service.ProfitService, logger *zap.Logger) *ProfitHandler {
	return &ProfitHandler{
		profitService: profitService,
		logger:        logger,
	}
}

// @Summary Deal profit
// @Description Profit breakdown of a deal including every share's calculated amount
// @Tags Profit
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} domain.DealProfitSummary
// @Router /deals/{id}/profit [get]
func (h *ProfitHandler) GetDealProfit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "deal")
	if !ok {
		return
	}

	summary, err := h.profitService.GetDealProfit(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get deal profit", zap.String("deal_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// @Summary Add profit share
// @Tags Profit
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.AddProfitShareRequest true "Share data"
// @Success 201 {object} domain.ProfitShareDTO
// @Failure 409 {object} domain.APIError "User already holds a share of the deal"
// @Router /deals/{id}/shares [post]
func (h *ProfitHandler) AddShare(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "deal")
	if !ok {
		return
	}

	var req domain.AddProfitShareRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	share, err := h.profitService.AddShare(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add profit share", zap.String("deal_id", id.String()))
		return
	}

	respondJSON(w, http.StatusCreated, share)
}

// @Summary Remove profit share
// @Tags Profit
// @Param id path string true "Share ID"
// @Success 204 "No Content"
// @Router /shares/{id} [delete]
func (h *ProfitHandler) RemoveShare(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "share")
	if !ok {
		return
	}

	if err := h.profitService.RemoveShare(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to remove profit share", zap.String("share_id", id.String()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
