package service_test

import (
	"testing"

	"github.com/straye-as/agency-pipeline/internal/repository"
	"github.com/straye-as/agency-pipeline/internal/service"
	"github.com/straye-as/agency-pipeline/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServices struct {
	db          *gorm.DB
	deals       *service.DealService
	profit      *service.ProfitService
	production  *service.ProductionService
	clients     *service.ClientService
	users       *service.UserService
	dashboard   *service.DashboardService
	jobRepo     *repository.JobRepository
	deliverRepo *repository.DeliverableRepository
}

func setupServices(t *testing.T) *testServices {
	t.Helper()

	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	clientRepo := repository.NewClientRepository(db)
	userRepo := repository.NewUserRepository(db)
	dealRepo := repository.NewDealRepository(db)
	historyRepo := repository.NewDealStageHistoryRepository(db)
	shareRepo := repository.NewProfitShareRepository(db)
	jobRepo := repository.NewJobRepository(db)
	assignmentRepo := repository.NewJobAssignmentRepository(db)
	deliverableRepo := repository.NewDeliverableRepository(db)

	return &testServices{
		db:          db,
		deals:       service.NewDealService(dealRepo, historyRepo, clientRepo, jobRepo, logger, db),
		profit:      service.NewProfitService(shareRepo, dealRepo, userRepo, logger),
		production:  service.NewProductionService(jobRepo, deliverableRepo, assignmentRepo, clientRepo, dealRepo, userRepo, logger, db),
		clients:     service.NewClientService(clientRepo, logger),
		users:       service.NewUserService(userRepo, logger),
		dashboard:   service.NewDashboardService(dealRepo, jobRepo, deliverableRepo, logger),
		jobRepo:     jobRepo,
		deliverRepo: deliverableRepo,
	}
}

func ptr[T any](v T) *T {
	return &v
}
