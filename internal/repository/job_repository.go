package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *JobRepository) WithTx(tx *gorm.DB) *JobRepository {
	return &JobRepository{db: tx}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(job).Error
}

// GetByID loads a job with its client and deal, the latter for the display title
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Deal").
		Where("id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *JobRepository) Update(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(job).Error
}

func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Job{}, "id = ?", id).Error
}

// ListByStatus returns jobs with the status, newest first. A non-empty search
// keeps only jobs whose client name contains it, case-insensitively.
func (r *JobRepository) ListByStatus(ctx context.Context, status domain.JobStatus, search string) ([]domain.Job, error) {
	var jobs []domain.Job
	query := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Deal").
		Where("status = ?", status)

	if search != "" {
		searchPattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("client_id IN (?)",
			r.db.Model(&domain.Client{}).Select("id").Where("LOWER(name) LIKE ?", searchPattern))
	}

	err := query.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

// ListByClientID returns every job of a client in creation order
func (r *JobRepository) ListByClientID(ctx context.Context, clientID uuid.UUID) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Deal").
		Where("client_id = ?", clientID).
		Order("created_at ASC").
		Find(&jobs).Error
	return jobs, err
}

// ListByDealID returns the jobs linked to a deal
func (r *JobRepository) ListByDealID(ctx context.Context, dealID uuid.UUID) ([]domain.Job, error) {
	var jobs []domain.Job
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at ASC").
		Find(&jobs).Error
	return jobs, err
}

// RenameForDeal sets newTitle on the deal's jobs whose title equals oldTitle
func (r *JobRepository) RenameForDeal(ctx context.Context, dealID uuid.UUID, oldTitle, newTitle string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Job{}).
		Where("deal_id = ? AND title = ?", dealID, oldTitle).
		Update("title", newTitle)
	return result.RowsAffected, result.Error
}

// CountByStatus returns the number of jobs with the status
func (r *JobRepository) CountByStatus(ctx context.Context, status domain.JobStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Job{}).Where("status = ?", status).Count(&count).Error
	return count, err
}
