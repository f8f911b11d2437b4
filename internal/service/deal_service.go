package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/mapper"
	"github.com/straye-as/agency-pipeline/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DealService struct {
	dealRepo    *repository.DealRepository
	historyRepo *repository.DealStageHistoryRepository
	clientRepo  *repository.ClientRepository
	jobRepo     *repository.JobRepository
	logger      *zap.Logger
	db          *gorm.DB
}

func NewDealService(
	dealRepo *repository.DealRepository,
	historyRepo *repository.DealStageHistoryRepository,
	clientRepo *repository.ClientRepository,
	jobRepo *repository.JobRepository,
	logger *zap.Logger,
	db *gorm.DB,
) *DealService {
	return &DealService{
		dealRepo:    dealRepo,
		historyRepo: historyRepo,
		clientRepo:  clientRepo,
		jobRepo:     jobRepo,
		logger:      logger,
		db:          db,
	}
}

// Create stores a new deal. The stage defaults to New; a deal created directly
// as Won does not spawn a job, only a later transition into Won does.
func (s *DealService) Create(ctx context.Context, req *domain.CreateDealRequest) (*domain.DealDTO, error) {
	stage := req.Stage
	if stage == "" {
		stage = domain.DealStageNew
	}
	if !stage.IsValid() {
		return nil, fmt.Errorf("%q: %w", stage, ErrInvalidDealStage)
	}
	if req.Title == "" {
		return nil, ErrTitleRequired
	}
	if req.Value < 0 || req.CostInternal < 0 || req.CostExternal < 0 {
		return nil, ErrNegativeAmount
	}

	if _, err := s.clientRepo.GetByID(ctx, req.ClientID); err != nil {
		return nil, notFoundOr(err, ErrClientNotFound, "failed to get client")
	}

	deal := &domain.Deal{
		ClientID:     req.ClientID,
		Title:        req.Title,
		Value:        decimal.NewFromFloat(req.Value),
		CostInternal: decimal.NewFromFloat(req.CostInternal),
		CostExternal: decimal.NewFromFloat(req.CostExternal),
		Stage:        stage,
		IsRecurring:  req.IsRecurring,
		Notes:        req.Notes,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.dealRepo.WithTx(tx).Create(ctx, deal); err != nil {
			return fmt.Errorf("failed to create deal: %w", err)
		}
		// Record initial stage history
		if err := s.historyRepo.WithTx(tx).RecordTransition(ctx, deal.ID, nil, stage, "Deal created"); err != nil {
			return fmt.Errorf("failed to record stage history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deal created",
		zap.String("deal_id", deal.ID.String()),
		zap.String("client_id", deal.ClientID.String()),
		zap.String("stage", string(stage)))

	// Reload with relations
	deal, err = s.dealRepo.GetByID(ctx, deal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload deal: %w", err)
	}

	dto := mapper.ToDealDTO(deal)
	return &dto, nil
}

func (s *DealService) GetByID(ctx context.Context, id uuid.UUID) (*domain.DealDTO, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrDealNotFound, "failed to get deal")
	}

	dto := mapper.ToDealDTO(deal)
	return &dto, nil
}

// Update edits the non-stage fields of a deal. When the title changes, jobs of
// the deal still carrying the old title are renamed in the same transaction.
func (s *DealService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateDealRequest) (*domain.DealDTO, error) {
	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrDealNotFound, "failed to get deal")
	}

	oldTitle := deal.Title

	if req.ClientID != nil && *req.ClientID != deal.ClientID {
		if _, err := s.clientRepo.GetByID(ctx, *req.ClientID); err != nil {
			return nil, notFoundOr(err, ErrClientNotFound, "failed to get client")
		}
		deal.ClientID = *req.ClientID
		deal.Client = nil
	}
	if req.Title != nil {
		if *req.Title == "" {
			return nil, ErrTitleRequired
		}
		deal.Title = *req.Title
	}
	if req.Value != nil {
		deal.Value = decimal.NewFromFloat(*req.Value)
	}
	if req.CostInternal != nil {
		deal.CostInternal = decimal.NewFromFloat(*req.CostInternal)
	}
	if req.CostExternal != nil {
		deal.CostExternal = decimal.NewFromFloat(*req.CostExternal)
	}
	if deal.Value.IsNegative() || deal.CostInternal.IsNegative() || deal.CostExternal.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if req.IsRecurring != nil {
		deal.IsRecurring = *req.IsRecurring
	}
	if req.Notes != nil {
		deal.Notes = *req.Notes
	}

	var renamed int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.dealRepo.WithTx(tx).Update(ctx, deal); err != nil {
			return fmt.Errorf("failed to update deal: %w", err)
		}
		if deal.Title == oldTitle {
			return nil
		}
		n, err := s.jobRepo.WithTx(tx).RenameForDeal(ctx, deal.ID, oldTitle, deal.Title)
		if err != nil {
			return fmt.Errorf("failed to rename linked jobs: %w", err)
		}
		renamed = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	if renamed > 0 {
		s.logger.Info("renamed jobs after deal title change",
			zap.String("deal_id", deal.ID.String()),
			zap.Int64("jobs", renamed))
	}

	deal, err = s.dealRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload deal: %w", err)
	}

	dto := mapper.ToDealDTO(deal)
	return &dto, nil
}

// List returns deals, optionally filtered by stage and client, newest first
func (s *DealService) List(ctx context.Context, filters *repository.DealFilters) ([]domain.DealDTO, error) {
	if filters != nil && filters.Stage != nil && !filters.Stage.IsValid() {
		return nil, fmt.Errorf("%q: %w", *filters.Stage, ErrInvalidDealStage)
	}

	deals, err := s.dealRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}

	dtos := make([]domain.DealDTO, len(deals))
	for i := range deals {
		dtos[i] = mapper.ToDealDTO(&deals[i])
	}
	return dtos, nil
}

// TransitionStage moves a deal to any stage. The first move into Won spawns the
// deal's production job; the stage write, the history row and the job commit together.
func (s *DealService) TransitionStage(ctx context.Context, id uuid.UUID, req *domain.TransitionStageRequest) (*domain.StageTransitionResult, error) {
	if !req.Stage.IsValid() {
		return nil, fmt.Errorf("%q: %w", req.Stage, ErrInvalidDealStage)
	}

	var (
		deal     *domain.Deal
		oldStage domain.DealStage
		spawned  *domain.Job
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dealRepo := s.dealRepo.WithTx(tx)

		var err error
		deal, err = dealRepo.GetByID(ctx, id)
		if err != nil {
			return notFoundOr(err, ErrDealNotFound, "failed to get deal")
		}

		oldStage = deal.Stage
		deal.Stage = req.Stage

		if oldStage != domain.DealStageWon && req.Stage == domain.DealStageWon && deal.JobSpawnedAt == nil {
			now := time.Now().UTC()
			spawned = &domain.Job{
				ClientID:   deal.ClientID,
				DealID:     &deal.ID,
				Title:      deal.Title,
				Status:     domain.JobStatusActive,
				StartDate:  mapper.DateOnly(now),
				IsRetainer: deal.IsRecurring,
			}
			if err := s.jobRepo.WithTx(tx).Create(ctx, spawned); err != nil {
				return fmt.Errorf("failed to create job for won deal: %w", err)
			}
			deal.JobSpawnedAt = &now
		}

		if err := dealRepo.Update(ctx, deal); err != nil {
			return fmt.Errorf("failed to update deal stage: %w", err)
		}

		from := oldStage
		if err := s.historyRepo.WithTx(tx).RecordTransition(ctx, deal.ID, &from, req.Stage, req.Notes); err != nil {
			return fmt.Errorf("failed to record stage history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deal stage changed",
		zap.String("deal_id", deal.ID.String()),
		zap.String("from", string(oldStage)),
		zap.String("to", string(req.Stage)),
		zap.Bool("job_spawned", spawned != nil))

	deal, err = s.dealRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload deal: %w", err)
	}

	result := &domain.StageTransitionResult{
		Deal:       mapper.ToDealDTO(deal),
		JobSpawned: spawned != nil,
	}
	if spawned != nil {
		job, err := s.jobRepo.GetByID(ctx, spawned.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload spawned job: %w", err)
		}
		jobDTO := mapper.ToJobDTO(job)
		result.Job = &jobDTO
	}
	return result, nil
}

// GetPipelineBoard groups every deal by stage, one column per stage in pipeline order
func (s *DealService) GetPipelineBoard(ctx context.Context) ([]domain.PipelineStageColumn, error) {
	deals, err := s.dealRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}

	byStage := make(map[domain.DealStage][]domain.Deal, len(domain.DealStages))
	for _, deal := range deals {
		byStage[deal.Stage] = append(byStage[deal.Stage], deal)
	}

	columns := make([]domain.PipelineStageColumn, 0, len(domain.DealStages))
	for _, stage := range domain.DealStages {
		stageDeals := byStage[stage]
		total := decimal.Zero
		dtos := make([]domain.DealDTO, len(stageDeals))
		for i := range stageDeals {
			dtos[i] = mapper.ToDealDTO(&stageDeals[i])
			total = total.Add(stageDeals[i].Value)
		}
		columns = append(columns, domain.PipelineStageColumn{
			Stage:      stage,
			Count:      len(dtos),
			TotalValue: mapper.Money(total),
			Deals:      dtos,
		})
	}
	return columns, nil
}

// GetStageHistory returns the stage changes of a deal, oldest first
func (s *DealService) GetStageHistory(ctx context.Context, id uuid.UUID) ([]domain.DealStageHistoryDTO, error) {
	if _, err := s.dealRepo.GetByID(ctx, id); err != nil {
		return nil, notFoundOr(err, ErrDealNotFound, "failed to get deal")
	}

	history, err := s.historyRepo.GetByDealID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get stage history: %w", err)
	}

	dtos := make([]domain.DealStageHistoryDTO, len(history))
	for i := range history {
		dtos[i] = mapper.ToDealStageHistoryDTO(&history[i])
	}
	return dtos, nil
}

// notFoundOr maps gorm.ErrRecordNotFound to sentinel and wraps anything else with msg
func notFoundOr(err error, sentinel error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return fmt.Errorf("%s: %w", msg, err)
}
