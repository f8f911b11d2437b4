package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfitShareRepository struct {
	db *gorm.DB
}

func NewProfitShareRepository(db *gorm.DB) *ProfitShareRepository {
	return &ProfitShareRepository{db: db}
}

func (r *ProfitShareRepository) Create(ctx context.Context, share *domain.ProfitShare) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(share).Error
}

func (r *ProfitShareRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProfitShare, error) {
	var share domain.ProfitShare
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&share).Error
	if err != nil {
		return nil, err
	}
	return &share, nil
}

func (r *ProfitShareRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ProfitShare{}, "id = ?", id).Error
}

// ListByDealID returns the shares of a deal in the order they were added
func (r *ProfitShareRepository) ListByDealID(ctx context.Context, dealID uuid.UUID) ([]domain.ProfitShare, error) {
	var shares []domain.ProfitShare
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("deal_id = ?", dealID).
		Order("created_at ASC").
		Find(&shares).Error
	return shares, err
}

// ExistsForDealAndUser reports whether the user already holds a share of the deal
func (r *ProfitShareRepository) ExistsForDealAndUser(ctx context.Context, dealID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ProfitShare{}).
		Where("deal_id = ? AND user_id = ?", dealID, userID).
		Count(&count).Error
	return count > 0, err
}
