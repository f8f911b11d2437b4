package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/mapper"
	"github.com/straye-as/agency-pipeline/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

// ProfitService allocates deal profit to users
type ProfitService struct {
	shareRepo *repository.ProfitShareRepository
	dealRepo  *repository.DealRepository
	userRepo  *repository.UserRepository
	logger    *zap.Logger
}

func NewProfitService(
	shareRepo *repository.ProfitShareRepository,
	dealRepo *repository.DealRepository,
	userRepo *repository.UserRepository,
	logger *zap.Logger,
) *ProfitService {
	return &ProfitService{
		shareRepo: shareRepo,
		dealRepo:  dealRepo,
		userRepo:  userRepo,
		logger:    logger,
	}
}

// AddShare gives a user a share of a deal's profit. A user holds at most one
// share per deal; the sum of percentages across users is not capped.
func (s *ProfitService) AddShare(ctx context.Context, dealID uuid.UUID, req *domain.AddProfitShareRequest) (*domain.ProfitShareDTO, error) {
	percentage := decimal.NewFromFloat(req.Percentage)
	flat := decimal.NewFromFloat(req.FlatAmount)
	if percentage.IsNegative() || percentage.GreaterThan(hundred) {
		return nil, ErrInvalidPercentage
	}
	if flat.IsNegative() {
		return nil, ErrNegativeFlatAmount
	}

	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return nil, notFoundOr(err, ErrDealNotFound, "failed to get deal")
	}
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return nil, notFoundOr(err, ErrUserNotFound, "failed to get user")
	}

	exists, err := s.shareRepo.ExistsForDealAndUser(ctx, dealID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing share: %w", err)
	}
	if exists {
		return nil, ErrDuplicateProfitShare
	}

	share := &domain.ProfitShare{
		DealID:     dealID,
		UserID:     req.UserID,
		Percentage: percentage,
		FlatAmount: flat,
	}
	if err := s.shareRepo.Create(ctx, share); err != nil {
		// A concurrent insert of the same pair trips the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateProfitShare
		}
		return nil, fmt.Errorf("failed to create profit share: %w", err)
	}

	s.logger.Info("profit share added",
		zap.String("deal_id", dealID.String()),
		zap.String("user_id", req.UserID.String()),
		zap.String("percentage", percentage.String()),
		zap.String("flat_amount", flat.String()))

	share, err = s.shareRepo.GetByID(ctx, share.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload profit share: %w", err)
	}

	dto := mapper.ToProfitShareDTO(share, deal.Profit())
	return &dto, nil
}

// RemoveShare deletes a profit share
func (s *ProfitService) RemoveShare(ctx context.Context, id uuid.UUID) error {
	share, err := s.shareRepo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, ErrProfitShareNotFound, "failed to get profit share")
	}

	if err := s.shareRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete profit share: %w", err)
	}

	s.logger.Info("profit share removed",
		zap.String("share_id", id.String()),
		zap.String("deal_id", share.DealID.String()))
	return nil
}

// GetDealProfit returns the profit breakdown of a deal with every share's amount
func (s *ProfitService) GetDealProfit(ctx context.Context, dealID uuid.UUID) (*domain.DealProfitSummary, error) {
	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return nil, notFoundOr(err, ErrDealNotFound, "failed to get deal")
	}

	shares, err := s.shareRepo.ListByDealID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profit shares: %w", err)
	}

	profit := deal.Profit()
	allocated := decimal.Zero
	pctSum := decimal.Zero
	dtos := make([]domain.ProfitShareDTO, len(shares))
	for i := range shares {
		dtos[i] = mapper.ToProfitShareDTO(&shares[i], profit)
		allocated = allocated.Add(CalculatedAmount(deal, &shares[i]))
		pctSum = pctSum.Add(shares[i].Percentage)
	}

	return &domain.DealProfitSummary{
		DealID:              deal.ID,
		Value:               mapper.Money(deal.Value),
		TotalCost:           mapper.Money(deal.TotalCost()),
		Profit:              mapper.Money(profit),
		ProfitMargin:        mapper.Money(deal.ProfitMargin()),
		Shares:              dtos,
		AllocatedTotal:      mapper.Money(allocated),
		AllocatedPercentage: mapper.Money(pctSum),
		OverAllocated:       pctSum.GreaterThan(hundred),
	}, nil
}

// CalculatedAmount is the share's cut of the deal: profit * percentage / 100 + flat amount
func CalculatedAmount(deal *domain.Deal, share *domain.ProfitShare) decimal.Decimal {
	return share.CalculatedAmount(deal.Profit())
}
