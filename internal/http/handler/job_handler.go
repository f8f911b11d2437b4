package handler

import (
	"net/http"

	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/service"
	"go.uber.org/zap"
)

// JobHandler serves production jobs and their rosters
type JobHandler struct {
	productionService *service.ProductionService
	logger            *zap.Logger
}

func NewJobHandler(productionService *service.ProductionService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		productionService: productionService,
		logger:            logger,
	}
}

// @Summary List active jobs
// @Tags Jobs
// @Produce json
// @Param search query string false "Client name contains (case-insensitive)"
// @Success 200 {array} domain.JobDTO
// @Router /jobs [get]
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.productionService.ListActiveJobs(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list jobs")
		return
	}

	respondJSON(w, http.StatusOK, jobs)
}

// @Summary Create job
// @Tags Jobs
// @Accept json
// @Produce json
// @Param request body domain.CreateJobRequest true "Job data"
// @Success 201 {object} domain.JobDTO
// @Router /jobs [post]
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateJobRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	job, err := h.productionService.CreateJob(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create job")
		return
	}

	w.Header().Set("Location", "/api/v1/jobs/"+job.ID.String())
	respondJSON(w, http.StatusCreated, job)
}

// @Summary Get job
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDTO
// @Router /jobs/{id} [get]
func (h *JobHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "job")
	if !ok {
		return
	}

	job, err := h.productionService.GetJob(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get job", zap.String("job_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// @Summary Update job
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.UpdateJobRequest true "Job data"
// @Success 200 {object} domain.JobDTO
// @Router /jobs/{id} [put]
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "job")
	if !ok {
		return
	}

	var req domain.UpdateJobRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	job, err := h.productionService.UpdateJob(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update job", zap.String("job_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// @Summary Delete job
// @Description Deletes the job with its deliverables and assignments
// @Tags Jobs
// @Param id path string true "Job ID"
// @Success 204 "No Content"
// @Router /jobs/{id} [delete]
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "job")
	if !ok {
		return
	}

	if err := h.productionService.DeleteJob(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete job", zap.String("job_id", id.String()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Complete job
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobDTO
// @Router /jobs/{id}/complete [post]
func (h *JobHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "job")
	if !ok {
		return
	}

	job, err := h.productionService.CompleteJob(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to complete job", zap.String("job_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, job)
}

// @Summary Job board
// @Description Kanban columns of the job's deliverables plus its roster
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} domain.JobBoard
// @Router /jobs/{id}/board [get]
func (h *JobHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "job")
	if !ok {
		return
	}

	board, err := h.productionService.GetJobBoard(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get job board", zap.String("job_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, board)
}

// @Summary List job assignments
// @Tags Jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {array} domain.JobAssignmentDTO
// @Router /jobs/{id}/assignments [get]
func (h *JobHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "job")
	if !ok {
		return
	}

	assignments, err := h.productionService.ListAssignments(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list assignments", zap.String("job_id", id.String()))
		return
	}

	respondJSON(w, http.StatusOK, assignments)
}

// @Summary Assign user to job
// @Description Returns 201 for a new assignment and 200 when the user was already assigned
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path string true "Job ID"
// @Param request body domain.AssignUserRequest true "Assignment data"
// @Success 201 {object} domain.AssignUserResult
// @Success 200 {object} domain.AssignUserResult
// @Router /jobs/{id}/assignments [post]
func (h *JobHandler) AssignUser(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "job")
	if !ok {
		return
	}

	var req domain.AssignUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.productionService.AssignUser(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to assign user", zap.String("job_id", id.String()))
		return
	}

	status := http.StatusCreated
	if result.AlreadyAssigned {
		status = http.StatusOK
	}
	respondJSON(w, status, result)
}

// @Summary Remove assignment
// @Tags Jobs
// @Param id path string true "Assignment ID"
// @Success 204 "No Content"
// @Router /assignments/{id} [delete]
func (h *JobHandler) RemoveAssignment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r, "id", "assignment")
	if !ok {
		return
	}

	if err := h.productionService.RemoveAssignment(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to remove assignment", zap.String("assignment_id", id.String()))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
