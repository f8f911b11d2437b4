package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobAssignmentRepository handles database operations for the job roster
type JobAssignmentRepository struct {
	db *gorm.DB
}

// NewJobAssignmentRepository creates a new assignment repository
func NewJobAssignmentRepository(db *gorm.DB) *JobAssignmentRepository {
	return &JobAssignmentRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *JobAssignmentRepository) WithTx(tx *gorm.DB) *JobAssignmentRepository {
	return &JobAssignmentRepository{db: tx}
}

func (r *JobAssignmentRepository) Create(ctx context.Context, assignment *domain.JobAssignment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(assignment).Error
}

func (r *JobAssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.JobAssignment, error) {
	var assignment domain.JobAssignment
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// GetByJobAndUser returns the roster entry for the pair, if any
func (r *JobAssignmentRepository) GetByJobAndUser(ctx context.Context, jobID, userID uuid.UUID) (*domain.JobAssignment, error) {
	var assignment domain.JobAssignment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("job_id = ? AND user_id = ?", jobID, userID).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *JobAssignmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.JobAssignment{}, "id = ?", id).Error
}

// DeleteByJobID removes the whole roster of a job
func (r *JobAssignmentRepository) DeleteByJobID(ctx context.Context, jobID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("job_id = ?", jobID).Delete(&domain.JobAssignment{}).Error
}

// ListByJobID returns the roster of a job in assignment order
func (r *JobAssignmentRepository) ListByJobID(ctx context.Context, jobID uuid.UUID) ([]domain.JobAssignment, error) {
	var assignments []domain.JobAssignment
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&assignments).Error
	return assignments, err
}
