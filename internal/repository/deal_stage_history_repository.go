package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"gorm.io/gorm"
)

// DealStageHistoryRepository is append-only; rows are never updated
type DealStageHistoryRepository struct {
	db *gorm.DB
}

func NewDealStageHistoryRepository(db *gorm.DB) *DealStageHistoryRepository {
	return &DealStageHistoryRepository{db: db}
}

func (r *DealStageHistoryRepository) WithTx(tx *gorm.DB) *DealStageHistoryRepository {
	return &DealStageHistoryRepository{db: tx}
}

// RecordTransition appends a stage change. from is nil for the row written when the deal is created.
func (r *DealStageHistoryRepository) RecordTransition(ctx context.Context, dealID uuid.UUID, from *domain.DealStage, to domain.DealStage, notes string) error {
	return r.db.WithContext(ctx).Create(&domain.DealStageHistory{
		DealID:    dealID,
		FromStage: from,
		ToStage:   to,
		Notes:     notes,
		ChangedAt: time.Now().UTC(),
	}).Error
}

// GetByDealID returns the stage changes of a deal, oldest first
func (r *DealStageHistoryRepository) GetByDealID(ctx context.Context, dealID uuid.UUID) ([]domain.DealStageHistory, error) {
	var history []domain.DealStageHistory
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("changed_at ASC").
		Find(&history).Error
	return history, err
}
