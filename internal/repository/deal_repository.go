package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DealFilters contains the filter options for listing deals
type DealFilters struct {
	Stage    *domain.DealStage
	ClientID *uuid.UUID
}

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *DealRepository) WithTx(tx *gorm.DB) *DealRepository {
	return &DealRepository{db: tx}
}

func (r *DealRepository) Create(ctx context.Context, deal *domain.Deal) error {
	// Omit associations to avoid GORM trying to upsert the preloaded client
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(deal).Error
}

func (r *DealRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deal, error) {
	var deal domain.Deal
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("id = ?", id).
		First(&deal).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *DealRepository) Update(ctx context.Context, deal *domain.Deal) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(deal).Error
}

// List returns deals matching the filters, newest first
func (r *DealRepository) List(ctx context.Context, filters *DealFilters) ([]domain.Deal, error) {
	var deals []domain.Deal
	query := r.db.WithContext(ctx).Model(&domain.Deal{}).Preload("Client")
	query = r.applyFilters(query, filters)
	err := query.Order("created_at DESC").Find(&deals).Error
	return deals, err
}

// ListRecent returns the most recently created deals
func (r *DealRepository) ListRecent(ctx context.Context, limit int) ([]domain.Deal, error) {
	var deals []domain.Deal
	err := r.db.WithContext(ctx).
		Preload("Client").
		Order("created_at DESC").
		Limit(limit).
		Find(&deals).Error
	return deals, err
}

// Count returns the total number of deals
func (r *DealRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Deal{}).Count(&count).Error
	return count, err
}

func (r *DealRepository) applyFilters(query *gorm.DB, filters *DealFilters) *gorm.DB {
	if filters == nil {
		return query
	}
	if filters.Stage != nil {
		query = query.Where("stage = ?", *filters.Stage)
	}
	if filters.ClientID != nil {
		query = query.Where("client_id = ?", *filters.ClientID)
	}
	return query
}
