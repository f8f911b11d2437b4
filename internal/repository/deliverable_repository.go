package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DeliverableRepository struct {
	db *gorm.DB
}

func NewDeliverableRepository(db *gorm.DB) *DeliverableRepository {
	return &DeliverableRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *DeliverableRepository) WithTx(tx *gorm.DB) *DeliverableRepository {
	return &DeliverableRepository{db: tx}
}

func (r *DeliverableRepository) Create(ctx context.Context, deliverable *domain.Deliverable) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(deliverable).Error
}

func (r *DeliverableRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deliverable, error) {
	var deliverable domain.Deliverable
	err := r.db.WithContext(ctx).Preload("Assignee").Where("id = ?", id).First(&deliverable).Error
	if err != nil {
		return nil, err
	}
	return &deliverable, nil
}

func (r *DeliverableRepository) Update(ctx context.Context, deliverable *domain.Deliverable) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(deliverable).Error
}

// UpdateStatus overwrites the status column only
func (r *DeliverableRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DeliverableStatus) error {
	return r.db.WithContext(ctx).Model(&domain.Deliverable{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *DeliverableRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Deliverable{}, "id = ?", id).Error
}

// DeleteByJobID removes every deliverable of a job
func (r *DeliverableRepository) DeleteByJobID(ctx context.Context, jobID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("job_id = ?", jobID).Delete(&domain.Deliverable{}).Error
}

// ListByJobIDs returns the deliverables of the jobs in creation order
func (r *DeliverableRepository) ListByJobIDs(ctx context.Context, jobIDs []uuid.UUID) ([]domain.Deliverable, error) {
	var deliverables []domain.Deliverable
	if len(jobIDs) == 0 {
		return deliverables, nil
	}
	err := r.db.WithContext(ctx).
		Preload("Assignee").
		Where("job_id IN ?", jobIDs).
		Order("created_at ASC").
		Find(&deliverables).Error
	return deliverables, err
}

// ListDueBetween returns deliverables due in [from, until), optionally for one job,
// ordered by due date then creation
func (r *DeliverableRepository) ListDueBetween(ctx context.Context, from, until time.Time, jobID *uuid.UUID) ([]domain.Deliverable, error) {
	var deliverables []domain.Deliverable
	query := r.db.WithContext(ctx).
		Preload("Assignee").
		Where("due_date IS NOT NULL AND due_date >= ? AND due_date < ?", from, until)
	if jobID != nil {
		query = query.Where("job_id = ?", *jobID)
	}
	err := query.Order("due_date ASC").Order("created_at ASC").Find(&deliverables).Error
	return deliverables, err
}

// ListOpenDueBefore returns assigned deliverables not yet Done that are due before until
func (r *DeliverableRepository) ListOpenDueBefore(ctx context.Context, until time.Time) ([]domain.Deliverable, error) {
	var deliverables []domain.Deliverable
	err := r.db.WithContext(ctx).
		Preload("Assignee").
		Where("status <> ?", domain.DeliverableStatusDone).
		Where("assignee_id IS NOT NULL").
		Where("due_date IS NOT NULL AND due_date < ?", until).
		Order("due_date ASC").
		Order("created_at ASC").
		Find(&deliverables).Error
	return deliverables, err
}

// ListUpcoming returns open deliverables with a due date, soonest first
func (r *DeliverableRepository) ListUpcoming(ctx context.Context, limit int) ([]domain.Deliverable, error) {
	var deliverables []domain.Deliverable
	err := r.db.WithContext(ctx).
		Preload("Assignee").
		Where("status <> ?", domain.DeliverableStatusDone).
		Where("due_date IS NOT NULL").
		Order("due_date ASC").
		Order("created_at ASC").
		Limit(limit).
		Find(&deliverables).Error
	return deliverables, err
}

// CountPending returns the number of deliverables not yet Done
func (r *DeliverableRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Deliverable{}).
		Where("status <> ?", domain.DeliverableStatusDone).
		Count(&count).Error
	return count, err
}
