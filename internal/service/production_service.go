package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/mapper"
	"github.com/straye-as/agency-pipeline/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductionService tracks jobs, their deliverables and their rosters
type ProductionService struct {
	jobRepo         *repository.JobRepository
	deliverableRepo *repository.DeliverableRepository
	assignmentRepo  *repository.JobAssignmentRepository
	clientRepo      *repository.ClientRepository
	dealRepo        *repository.DealRepository
	userRepo        *repository.UserRepository
	logger          *zap.Logger
	db              *gorm.DB
}

func NewProductionService(
	jobRepo *repository.JobRepository,
	deliverableRepo *repository.DeliverableRepository,
	assignmentRepo *repository.JobAssignmentRepository,
	clientRepo *repository.ClientRepository,
	dealRepo *repository.DealRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *ProductionService {
	return &ProductionService{
		jobRepo:         jobRepo,
		deliverableRepo: deliverableRepo,
		assignmentRepo:  assignmentRepo,
		clientRepo:      clientRepo,
		dealRepo:        dealRepo,
		userRepo:        userRepo,
		logger:          logger,
		db:              db,
	}
}

// Jobs

// CreateJob stores a job for a client. A linked deal must belong to the same client.
func (s *ProductionService) CreateJob(ctx context.Context, req *domain.CreateJobRequest) (*domain.JobDTO, error) {
	if _, err := s.clientRepo.GetByID(ctx, req.ClientID); err != nil {
		return nil, notFoundOr(err, ErrClientNotFound, "failed to get client")
	}

	if req.DealID != nil {
		deal, err := s.dealRepo.GetByID(ctx, *req.DealID)
		if err != nil {
			return nil, notFoundOr(err, ErrDealNotFound, "failed to get deal")
		}
		if deal.ClientID != req.ClientID {
			return nil, ErrDealClientMismatch
		}
	}

	startDate := mapper.DateOnly(time.Now())
	if req.StartDate != nil {
		parsed, err := mapper.ParseDate(*req.StartDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		startDate = parsed
	}

	job := &domain.Job{
		ClientID:   req.ClientID,
		DealID:     req.DealID,
		Title:      req.Title,
		Status:     domain.JobStatusActive,
		StartDate:  startDate,
		IsRetainer: req.IsRetainer,
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	s.logger.Info("job created",
		zap.String("job_id", job.ID.String()),
		zap.String("client_id", job.ClientID.String()))

	return s.GetJob(ctx, job.ID)
}

func (s *ProductionService) GetJob(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrJobNotFound, "failed to get job")
	}

	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

// UpdateJob edits the title and retainer flag; nil fields are left unchanged
func (s *ProductionService) UpdateJob(ctx context.Context, id uuid.UUID, req *domain.UpdateJobRequest) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrJobNotFound, "failed to get job")
	}

	if req.Title != nil {
		job.Title = *req.Title
	}
	if req.IsRetainer != nil {
		job.IsRetainer = *req.IsRetainer
	}

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update job: %w", err)
	}

	return s.GetJob(ctx, id)
}

// ListActiveJobs returns active jobs, optionally filtered by client name
func (s *ProductionService) ListActiveJobs(ctx context.Context, search string) ([]domain.JobDTO, error) {
	jobs, err := s.jobRepo.ListByStatus(ctx, domain.JobStatusActive, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	dtos := make([]domain.JobDTO, len(jobs))
	for i := range jobs {
		dtos[i] = mapper.ToJobDTO(&jobs[i])
	}
	return dtos, nil
}

// CompleteJob marks a job Completed. Completing twice is harmless; there is no reopen.
func (s *ProductionService) CompleteJob(ctx context.Context, id uuid.UUID) (*domain.JobDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrJobNotFound, "failed to get job")
	}

	job.Status = domain.JobStatusCompleted
	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to complete job: %w", err)
	}

	s.logger.Info("job completed", zap.String("job_id", id.String()))

	dto := mapper.ToJobDTO(job)
	return &dto, nil
}

// DeleteJob removes a job together with its deliverables and assignments
func (s *ProductionService) DeleteJob(ctx context.Context, id uuid.UUID) error {
	if _, err := s.jobRepo.GetByID(ctx, id); err != nil {
		return notFoundOr(err, ErrJobNotFound, "failed to get job")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deliverableRepo.WithTx(tx).DeleteByJobID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete deliverables: %w", err)
		}
		if err := s.assignmentRepo.WithTx(tx).DeleteByJobID(ctx, id); err != nil {
			return fmt.Errorf("failed to delete assignments: %w", err)
		}
		if err := s.jobRepo.WithTx(tx).Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("job deleted", zap.String("job_id", id.String()))
	return nil
}

// Deliverables

// AddDeliverable creates a deliverable in a job. The status defaults to To Do.
func (s *ProductionService) AddDeliverable(ctx context.Context, jobID uuid.UUID, req *domain.CreateDeliverableRequest) (*domain.DeliverableDTO, error) {
	if req.Title == "" {
		return nil, ErrTitleRequired
	}
	status := req.Status
	if status == "" {
		status = domain.DeliverableStatusToDo
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%q: %w", status, ErrInvalidDeliverableStatus)
	}

	if _, err := s.jobRepo.GetByID(ctx, jobID); err != nil {
		return nil, notFoundOr(err, ErrJobNotFound, "failed to get job")
	}
	if err := s.ensureUser(ctx, req.AssigneeID); err != nil {
		return nil, err
	}

	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	deliverable := &domain.Deliverable{
		JobID:       jobID,
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		AssigneeID:  req.AssigneeID,
		DueDate:     dueDate,
	}
	if err := s.deliverableRepo.Create(ctx, deliverable); err != nil {
		return nil, fmt.Errorf("failed to create deliverable: %w", err)
	}

	return s.getDeliverable(ctx, deliverable.ID)
}

// UpdateDeliverable edits a deliverable; nil fields are left unchanged
func (s *ProductionService) UpdateDeliverable(ctx context.Context, id uuid.UUID, req *domain.UpdateDeliverableRequest) (*domain.DeliverableDTO, error) {
	deliverable, err := s.deliverableRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrDeliverableNotFound, "failed to get deliverable")
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, ErrTitleRequired
		}
		deliverable.Title = *req.Title
	}
	if req.Description != nil {
		deliverable.Description = *req.Description
	}
	switch {
	case req.ClearAssignee:
		deliverable.AssigneeID = nil
	case req.AssigneeID != nil:
		if err := s.ensureUser(ctx, req.AssigneeID); err != nil {
			return nil, err
		}
		deliverable.AssigneeID = req.AssigneeID
	}
	switch {
	case req.ClearDueDate:
		deliverable.DueDate = nil
	case req.DueDate != nil:
		due, err := parseOptionalDate(req.DueDate)
		if err != nil {
			return nil, err
		}
		deliverable.DueDate = due
	}
	deliverable.Assignee = nil

	if err := s.deliverableRepo.Update(ctx, deliverable); err != nil {
		return nil, fmt.Errorf("failed to update deliverable: %w", err)
	}

	return s.getDeliverable(ctx, id)
}

// SetDeliverableStatus overwrites the status; any of the five statuses may follow any other
func (s *ProductionService) SetDeliverableStatus(ctx context.Context, id uuid.UUID, status domain.DeliverableStatus) (*domain.DeliverableDTO, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%q: %w", status, ErrInvalidDeliverableStatus)
	}

	deliverable, err := s.deliverableRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrDeliverableNotFound, "failed to get deliverable")
	}

	if err := s.deliverableRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update deliverable status: %w", err)
	}

	s.logger.Debug("deliverable status changed",
		zap.String("deliverable_id", id.String()),
		zap.String("from", string(deliverable.Status)),
		zap.String("to", string(status)))

	return s.getDeliverable(ctx, id)
}

// DeleteDeliverable removes a deliverable; the job is not touched
func (s *ProductionService) DeleteDeliverable(ctx context.Context, id uuid.UUID) error {
	if _, err := s.deliverableRepo.GetByID(ctx, id); err != nil {
		return notFoundOr(err, ErrDeliverableNotFound, "failed to get deliverable")
	}
	if err := s.deliverableRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete deliverable: %w", err)
	}
	return nil
}

// ListDueSoon returns open assigned deliverables due before the end of the
// lookahead window, overdue ones included, soonest first
func (s *ProductionService) ListDueSoon(ctx context.Context, lookaheadDays int) ([]domain.DeliverableDTO, error) {
	if lookaheadDays < 0 {
		lookaheadDays = 0
	}
	until := mapper.DateOnly(time.Now()).AddDate(0, 0, lookaheadDays+1)

	deliverables, err := s.deliverableRepo.ListOpenDueBefore(ctx, until)
	if err != nil {
		return nil, fmt.Errorf("failed to list due deliverables: %w", err)
	}
	return mapper.ToDeliverableDTOs(deliverables), nil
}

// Boards

// BucketByStatus groups deliverables by status, keeping input order within a bucket.
// Every listed status gets a bucket, possibly empty; a deliverable whose status is
// not listed lands in a bucket of its own, so no deliverable is dropped.
func BucketByStatus(deliverables []domain.Deliverable, statuses []domain.DeliverableStatus) map[domain.DeliverableStatus][]domain.Deliverable {
	buckets := make(map[domain.DeliverableStatus][]domain.Deliverable, len(statuses))
	for _, status := range statuses {
		buckets[status] = []domain.Deliverable{}
	}
	for _, d := range deliverables {
		buckets[d.Status] = append(buckets[d.Status], d)
	}
	return buckets
}

// GetJobBoard returns the kanban board and roster of one job
func (s *ProductionService) GetJobBoard(ctx context.Context, jobID uuid.UUID) (*domain.JobBoard, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, notFoundOr(err, ErrJobNotFound, "failed to get job")
	}

	deliverables, err := s.deliverableRepo.ListByJobIDs(ctx, []uuid.UUID{jobID})
	if err != nil {
		return nil, fmt.Errorf("failed to list deliverables: %w", err)
	}

	assignments, err := s.ListAssignments(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return &domain.JobBoard{
		Job:         mapper.ToJobDTO(job),
		Columns:     boardColumns(deliverables),
		Assignments: assignments,
	}, nil
}

// GetClientBoard returns one kanban board over the deliverables of every job of a client
func (s *ProductionService) GetClientBoard(ctx context.Context, clientID uuid.UUID) (*domain.ClientBoard, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, notFoundOr(err, ErrClientNotFound, "failed to get client")
	}

	jobs, err := s.jobRepo.ListByClientID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobIDs := make([]uuid.UUID, len(jobs))
	jobDTOs := make([]domain.JobDTO, len(jobs))
	for i := range jobs {
		jobIDs[i] = jobs[i].ID
		jobDTOs[i] = mapper.ToJobDTO(&jobs[i])
	}

	deliverables, err := s.deliverableRepo.ListByJobIDs(ctx, jobIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliverables: %w", err)
	}

	return &domain.ClientBoard{
		Client:  mapper.ToClientDTO(client),
		Jobs:    jobDTOs,
		Columns: boardColumns(deliverables),
	}, nil
}

// boardColumns renders the canonical columns in order, followed by any stray status
func boardColumns(deliverables []domain.Deliverable) []domain.DeliverableColumn {
	buckets := BucketByStatus(deliverables, domain.DeliverableStatuses)

	columns := make([]domain.DeliverableColumn, 0, len(buckets))
	for _, status := range domain.DeliverableStatuses {
		columns = append(columns, domain.DeliverableColumn{
			Status:       status,
			Deliverables: mapper.ToDeliverableDTOs(buckets[status]),
		})
	}

	// Map iteration is unordered; walk the input to keep extra columns stable
	seen := make(map[domain.DeliverableStatus]bool)
	for _, d := range deliverables {
		if d.Status.IsValid() || seen[d.Status] {
			continue
		}
		seen[d.Status] = true
		columns = append(columns, domain.DeliverableColumn{
			Status:       d.Status,
			Deliverables: mapper.ToDeliverableDTOs(buckets[d.Status]),
		})
	}
	return columns
}

// Roster

// AssignUser puts a user on a job's roster. Assigning an already assigned user
// is not an error; the existing entry is returned with AlreadyAssigned set.
func (s *ProductionService) AssignUser(ctx context.Context, jobID uuid.UUID, req *domain.AssignUserRequest) (*domain.AssignUserResult, error) {
	if _, err := s.jobRepo.GetByID(ctx, jobID); err != nil {
		return nil, notFoundOr(err, ErrJobNotFound, "failed to get job")
	}
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "failed to get user")
	}

	existing, err := s.assignmentRepo.GetByJobAndUser(ctx, jobID, req.UserID)
	if err == nil {
		return &domain.AssignUserResult{
			Assignment:      mapper.ToJobAssignmentDTO(existing),
			AlreadyAssigned: true,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}

	assignment := &domain.JobAssignment{
		JobID:  jobID,
		UserID: req.UserID,
		Role:   req.Role,
	}
	if err := s.assignmentRepo.Create(ctx, assignment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race with an identical request; report the winner
			existing, getErr := s.assignmentRepo.GetByJobAndUser(ctx, jobID, req.UserID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load existing assignment: %w", getErr)
			}
			return &domain.AssignUserResult{
				Assignment:      mapper.ToJobAssignmentDTO(existing),
				AlreadyAssigned: true,
			}, nil
		}
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Info("user assigned to job",
		zap.String("job_id", jobID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.String("role", req.Role))

	assignment, err = s.assignmentRepo.GetByID(ctx, assignment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload assignment: %w", err)
	}
	return &domain.AssignUserResult{Assignment: mapper.ToJobAssignmentDTO(assignment)}, nil
}

// RemoveAssignment takes a user off a job's roster
func (s *ProductionService) RemoveAssignment(ctx context.Context, id uuid.UUID) error {
	if _, err := s.assignmentRepo.GetByID(ctx, id); err != nil {
		return notFoundOr(err, ErrAssignmentNotFound, "failed to get assignment")
	}
	if err := s.assignmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}

// ListAssignments returns the roster of a job
func (s *ProductionService) ListAssignments(ctx context.Context, jobID uuid.UUID) ([]domain.JobAssignmentDTO, error) {
	if _, err := s.jobRepo.GetByID(ctx, jobID); err != nil {
		return nil, notFoundOr(err, ErrJobNotFound, "failed to get job")
	}

	assignments, err := s.assignmentRepo.ListByJobID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	dtos := make([]domain.JobAssignmentDTO, len(assignments))
	for i := range assignments {
		dtos[i] = mapper.ToJobAssignmentDTO(&assignments[i])
	}
	return dtos, nil
}

func (s *ProductionService) getDeliverable(ctx context.Context, id uuid.UUID) (*domain.DeliverableDTO, error) {
	deliverable, err := s.deliverableRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrDeliverableNotFound, "failed to get deliverable")
	}
	dto := mapper.ToDeliverableDTO(deliverable)
	return &dto, nil
}

func (s *ProductionService) ensureUser(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	exists, err := s.userRepo.Exists(ctx, *id)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	parsed, err := mapper.ParseDate(*s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &parsed, nil
}
