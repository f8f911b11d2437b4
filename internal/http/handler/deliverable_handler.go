package handler

import (
	"net/http"

	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/service"
	"go.uber.org/zap"
)

type DeliverableHandler struct {
	productionService *service.ProductionService
	logger            *zap.Logger
}

func NewDeliverableHandler(productionService *service.ProductionService, logger *zap.Logger) *DeliverableHandler {
	return &DeliverableHandler{
		productionService: productionService,
		logger:            logger,
	}
}

// @Summary Add deliverable
// @Tags Deliverables
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.CreateDeliverableRequest true "Deliverable data"
// @Success 201 {object} domain.DeliverableDTO
// @Router /jobs/{id}/deliverables [post]
func (h *DeliverableHandler) Create(w http.ResponseWriter, r *http.Request) {
	jobID, ok := parseIDParam(w, r, "id", "job")
	if !ok {
		return
	}

	var req domain.CreateDeliverableRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deliverable, err := h.productionService.AddDeliverable(r.Context(), jobID, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to add deliverable", zap.String("job_id", jobID.String()))
		return
	}

	respondJSON(w, http.StatusCreated, deliverable)
}

// @Summary Update deliverable
// @Tags Deliverables
// @Accept json
// @Produce json
// @Param id path string true "Deliverable ID"
// @Param request body domain.UpdateDeliverableRequest true "Deliverable data"
// @Success 200 {object} domain.DeliverableDTO
// @Router /deliverables/{id} [put]
func (h *DeliverableHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "deliverable")
	if !ok {
		return
	}

	var req domain.UpdateDeliverableRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deliverable, err := h.productionService.UpdateDeliverable(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update deliverable", zap.String("deliverable_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, deliverable)
}

// @Summary Set deliverable status
// @Tags Deliverables
// @Accept json
// @Produce json
// @Param id path string true "Deliverable ID"
// @Param request body domain.SetDeliverableStatusRequest true "Status (To Do, Shooting, Editing, Review, Done)"
// @Success 200 {object} domain.DeliverableDTO
// @Router /deliverables/{id}/status [post]
func (h *DeliverableHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "deliverable")
	if !ok {
		return
	}

	var req domain.SetDeliverableStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deliverable, err := h.productionService.SetDeliverableStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to set deliverable status", zap.String("deliverable_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, deliverable)
}

// @Summary Delete deliverable
// @Tags Deliverables
// @Param id path string true "Deliverable ID"
// @Success 204 "No Content"
// @Router /deliverables/{id} [delete]
func (h *DeliverableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "deliverable")
	if !ok {
		return
	}

	if err := h.productionService.DeleteDeliverable(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete deliverable", zap.String("deliverable_id", id.String()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
