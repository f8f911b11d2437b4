package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/mapper"
	"github.com/straye-as/agency-pipeline/internal/repository"
	"go.uber.org/zap"
)

const dashboardListLimit = 5

type DashboardService struct {
	dealRepo        *repository.DealRepository
	jobRepo         *repository.JobRepository
	deliverableRepo *repository.DeliverableRepository
	logger          *zap.Logger
}

func NewDashboardService(
	dealRepo *repository.DealRepository,
	jobRepo *repository.JobRepository,
	deliverableRepo *repository.DeliverableRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		dealRepo:        dealRepo,
		jobRepo:         jobRepo,
		deliverableRepo: deliverableRepo,
		logger:          logger,
	}
}

func (s *DashboardService) GetMetrics(ctx context.Context) (*domain.DashboardMetrics, error) {
	totalDeals, err := s.dealRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count deals: %w", err)
	}

	activeJobs, err := s.jobRepo.CountByStatus(ctx, domain.JobStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to count active jobs: %w", err)
	}

	pending, err := s.deliverableRepo.CountPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending deliverables: %w", err)
	}

	recent, err := s.dealRepo.ListRecent(ctx, dashboardListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent deals: %w", err)
	}

	upcoming, err := s.deliverableRepo.ListUpcoming(ctx, dashboardListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming deliverables: %w", err)
	}

	won := domain.DealStageWon
	wonDeals, err := s.dealRepo.List(ctx, &repository.DealFilters{Stage: &won})
	if err != nil {
		return nil, fmt.Errorf("failed to list won deals: %w", err)
	}

	wonValue := decimal.Zero
	wonProfit := decimal.Zero
	for i := range wonDeals {
		wonValue = wonValue.Add(wonDeals[i].Value)
		wonProfit = wonProfit.Add(wonDeals[i].Profit())
	}

	recentDTOs := make([]domain.DealDTO, len(recent))
	for i := range recent {
		recentDTOs[i] = mapper.ToDealDTO(&recent[i])
	}

	return &domain.DashboardMetrics{
		TotalDeals:           totalDeals,
		ActiveJobs:           activeJobs,
		PendingDeliverables:  pending,
		RecentDeals:          recentDTOs,
		UpcomingDeliverables: mapper.ToDeliverableDTOs(upcoming),
		WonValue:             mapper.Money(wonValue),
		WonProfit:            mapper.Money(wonProfit),
	}, nil
}
