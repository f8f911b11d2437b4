package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/repository"
	"github.com/straye-as/agency-pipeline/internal/service"
	"github.com/straye-as/agency-pipeline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDealService_Create(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	client := testutil.CreateTestClient(t, s.db, "Fjord Hotel")

	t.Run("defaults to New and records history", func(t *testing.T) {
		deal, err := s.deals.Create(ctx, &domain.CreateDealRequest{
			ClientID:     client.ID,
			Title:        "Summer brochure",
			Value:        10000,
			CostInternal: 2500,
			CostExternal: 1500,
		})
		require.NoError(t, err)

		assert.Equal(t, domain.DealStageNew, deal.Stage)
		assert.Equal(t, "Fjord Hotel", deal.ClientName)
		assert.Equal(t, 4000.0, deal.TotalCost)
		assert.Equal(t, 6000.0, deal.Profit)
		assert.Equal(t, 60.0, deal.ProfitMargin)
		assert.Nil(t, deal.JobSpawnedAt)

		history, err := s.deals.GetStageHistory(ctx, deal.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Nil(t, history[0].FromStage)
		assert.Equal(t, domain.DealStageNew, history[0].ToStage)
	})

	t.Run("created as Won does not spawn a job", func(t *testing.T) {
		deal, err := s.deals.Create(ctx, &domain.CreateDealRequest{
			ClientID: client.ID,
			Title:    "Walk-in order",
			Value:    500,
			Stage:    domain.DealStageWon,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DealStageWon, deal.Stage)

		jobs, err := s.jobRepo.ListByDealID(ctx, deal.ID)
		require.NoError(t, err)
		assert.Empty(t, jobs)
	})

	t.Run("unknown client", func(t *testing.T) {
		_, err := s.deals.Create(ctx, &domain.CreateDealRequest{ClientID: uuid.New(), Title: "x"})
		assert.ErrorIs(t, err, service.ErrClientNotFound)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("invalid stage", func(t *testing.T) {
		_, err := s.deals.Create(ctx, &domain.CreateDealRequest{ClientID: client.ID, Title: "x", Stage: "Closed"})
		assert.ErrorIs(t, err, service.ErrInvalidDealStage)
		assert.ErrorIs(t, err, service.ErrValidation)
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := s.deals.Create(ctx, &domain.CreateDealRequest{ClientID: client.ID, Title: "x", CostExternal: -1})
		assert.ErrorIs(t, err, service.ErrNegativeAmount)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := s.deals.Create(ctx, &domain.CreateDealRequest{ClientID: client.ID})
		assert.ErrorIs(t, err, service.ErrTitleRequired)
	})
}

func TestDealService_TransitionStage_SpawnsJobOnWin(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	client := testutil.CreateTestClient(t, s.db, "Nordlys AS")

	deal, err := s.deals.Create(ctx, &domain.CreateDealRequest{
		ClientID:    client.ID,
		Title:       "Monthly social content",
		Value:       20000,
		IsRecurring: true,
	})
	require.NoError(t, err)

	result, err := s.deals.TransitionStage(ctx, deal.ID, &domain.TransitionStageRequest{Stage: domain.DealStageProposal})
	require.NoError(t, err)
	assert.False(t, result.JobSpawned)
	assert.Nil(t, result.Job)

	result, err = s.deals.TransitionStage(ctx, deal.ID, &domain.TransitionStageRequest{Stage: domain.DealStageWon, Notes: "signed"})
	require.NoError(t, err)

	require.True(t, result.JobSpawned)
	require.NotNil(t, result.Job)
	assert.Equal(t, domain.DealStageWon, result.Deal.Stage)
	assert.NotNil(t, result.Deal.JobSpawnedAt)

	job := result.Job
	assert.Equal(t, client.ID, job.ClientID)
	require.NotNil(t, job.DealID)
	assert.Equal(t, deal.ID, *job.DealID)
	assert.Equal(t, "Monthly social content", job.Title)
	assert.Equal(t, domain.JobStatusActive, job.Status)
	assert.True(t, job.IsRetainer)
	assert.Equal(t, time.Now().UTC().Format(domain.DateLayout), job.StartDate)

	history, err := s.deals.GetStageHistory(ctx, deal.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.NotNil(t, history[2].FromStage)
	assert.Equal(t, domain.DealStageProposal, *history[2].FromStage)
	assert.Equal(t, domain.DealStageWon, history[2].ToStage)
	assert.Equal(t, "signed", history[2].Notes)
}

func TestDealService_TransitionStage_SpawnsOnlyOnce(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	client := testutil.CreateTestClient(t, s.db, "Nordlys AS")
	deal := testutil.CreateTestDeal(t, s.db, client, "Catalogue", domain.DealStageNegotiation, 8000, 1000, 0)

	first, err := s.deals.TransitionStage(ctx, deal.ID, &domain.TransitionStageRequest{Stage: domain.DealStageWon})
	require.NoError(t, err)
	require.True(t, first.JobSpawned)

	// Won to Won is not a move into Won
	again, err := s.deals.TransitionStage(ctx, deal.ID, &domain.TransitionStageRequest{Stage: domain.DealStageWon})
	require.NoError(t, err)
	assert.False(t, again.JobSpawned)

	_, err = s.deals.TransitionStage(ctx, deal.ID, &domain.TransitionStageRequest{Stage: domain.DealStageLost})
	require.NoError(t, err)

	rewon, err := s.deals.TransitionStage(ctx, deal.ID, &domain.TransitionStageRequest{Stage: domain.DealStageWon})
	require.NoError(t, err)
	assert.False(t, rewon.JobSpawned)

	jobs, err := s.jobRepo.ListByDealID(ctx, deal.ID)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestDealService_TransitionStage_Errors(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	client := testutil.CreateTestClient(t, s.db, "Nordlys AS")
	deal := testutil.CreateTestDeal(t, s.db, client, "Catalogue", domain.DealStageNew, 8000, 0, 0)

	_, err := s.deals.TransitionStage(ctx, deal.ID, &domain.TransitionStageRequest{Stage: "Closed"})
	assert.ErrorIs(t, err, service.ErrInvalidDealStage)

	_, err = s.deals.TransitionStage(ctx, uuid.New(), &domain.TransitionStageRequest{Stage: domain.DealStageWon})
	assert.ErrorIs(t, err, service.ErrDealNotFound)

	// Any stage may follow any other, including moving back
	_, err = s.deals.TransitionStage(ctx, deal.ID, &domain.TransitionStageRequest{Stage: domain.DealStageLost})
	require.NoError(t, err)
	result, err := s.deals.TransitionStage(ctx, deal.ID, &domain.TransitionStageRequest{Stage: domain.DealStageNew})
	require.NoError(t, err)
	assert.Equal(t, domain.DealStageNew, result.Deal.Stage)
}

func TestDealService_Update_RenamesMatchingJobs(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	client := testutil.CreateTestClient(t, s.db, "Fjord Hotel")
	deal := testutil.CreateTestDeal(t, s.db, client, "Lobby photos", domain.DealStageNegotiation, 5000, 0, 0)

	won, err := s.deals.TransitionStage(ctx, deal.ID, &domain.TransitionStageRequest{Stage: domain.DealStageWon})
	require.NoError(t, err)
	require.NotNil(t, won.Job)

	// A second linked job with its own title stays as is
	renamedByHand, err := s.production.CreateJob(ctx, &domain.CreateJobRequest{
		ClientID: client.ID,
		DealID:   &deal.ID,
		Title:    "Lobby photos (reshoot)",
	})
	require.NoError(t, err)

	updated, err := s.deals.Update(ctx, deal.ID, &domain.UpdateDealRequest{
		Title: ptr("Lobby and bar photos"),
		Value: ptr(6500.0),
	})
	require.NoError(t, err)
	assert.Equal(t, "Lobby and bar photos", updated.Title)
	assert.Equal(t, 6500.0, updated.Value)
	assert.Equal(t, domain.DealStageWon, updated.Stage)

	spawned, err := s.production.GetJob(ctx, won.Job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lobby and bar photos", spawned.Title)

	other, err := s.production.GetJob(ctx, renamedByHand.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lobby photos (reshoot)", other.Title)
}

func TestDealService_Update_Errors(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	client := testutil.CreateTestClient(t, s.db, "Fjord Hotel")
	deal := testutil.CreateTestDeal(t, s.db, client, "Lobby photos", domain.DealStageNew, 5000, 0, 0)

	_, err := s.deals.Update(ctx, uuid.New(), &domain.UpdateDealRequest{Title: ptr("x")})
	assert.ErrorIs(t, err, service.ErrDealNotFound)

	_, err = s.deals.Update(ctx, deal.ID, &domain.UpdateDealRequest{Title: ptr("")})
	assert.ErrorIs(t, err, service.ErrTitleRequired)

	_, err = s.deals.Update(ctx, deal.ID, &domain.UpdateDealRequest{CostInternal: ptr(-10.0)})
	assert.ErrorIs(t, err, service.ErrNegativeAmount)

	_, err = s.deals.Update(ctx, deal.ID, &domain.UpdateDealRequest{ClientID: ptr(uuid.New())})
	assert.ErrorIs(t, err, service.ErrClientNotFound)
}

func TestDealService_ListAndPipeline(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()
	a := testutil.CreateTestClient(t, s.db, "Alpha")
	b := testutil.CreateTestClient(t, s.db, "Beta")

	testutil.CreateTestDeal(t, s.db, a, "A1", domain.DealStageNew, 1000, 0, 0)
	testutil.CreateTestDeal(t, s.db, a, "A2", domain.DealStageWon, 2500.5, 0, 0)
	testutil.CreateTestDeal(t, s.db, b, "B1", domain.DealStageWon, 1000, 0, 0)

	won := domain.DealStageWon
	deals, err := s.deals.List(ctx, &repository.DealFilters{Stage: &won})
	require.NoError(t, err)
	assert.Len(t, deals, 2)

	deals, err = s.deals.List(ctx, &repository.DealFilters{ClientID: &a.ID})
	require.NoError(t, err)
	assert.Len(t, deals, 2)

	bad := domain.DealStage("Closed")
	_, err = s.deals.List(ctx, &repository.DealFilters{Stage: &bad})
	assert.ErrorIs(t, err, service.ErrInvalidDealStage)

	board, err := s.deals.GetPipelineBoard(ctx)
	require.NoError(t, err)
	require.Len(t, board, len(domain.DealStages))
	for i, col := range board {
		assert.Equal(t, domain.DealStages[i], col.Stage)
	}
	assert.Equal(t, 1, board[0].Count)
	assert.Equal(t, 0, board[1].Count)
	assert.NotNil(t, board[1].Deals)
	assert.Equal(t, 2, board[3].Count)
	assert.Equal(t, 3500.5, board[3].TotalValue)
}
