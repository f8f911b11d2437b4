package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/agency-pipeline/internal/config"
	"github.com/straye-as/agency-pipeline/internal/domain"
	"github.com/straye-as/agency-pipeline/internal/http/handler"
	"github.com/straye-as/agency-pipeline/internal/http/middleware"
	"github.com/straye-as/agency-pipeline/internal/http/router"
	"github.com/straye-as/agency-pipeline/internal/repository"
	"github.com/straye-as/agency-pipeline/internal/service"
	"github.com/straye-as/agency-pipeline/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testAPI struct {
	db      *gorm.DB
	handler http.Handler
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	cfg := &config.Config{
		App:       config.AppConfig{Name: "agency-pipeline", Environment: "development"},
		RateLimit: config.RateLimitConfig{Enabled: false, RequestsPerMinute: 100},
		Security:  config.SecurityConfig{ContentTypeNosniff: true},
		CORS:      config.CORSConfig{AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"}},
	}

	clientRepo := repository.NewClientRepository(db)
	userRepo := repository.NewUserRepository(db)
	dealRepo := repository.NewDealRepository(db)
	historyRepo := repository.NewDealStageHistoryRepository(db)
	shareRepo := repository.NewProfitShareRepository(db)
	jobRepo := repository.NewJobRepository(db)
	assignmentRepo := repository.NewJobAssignmentRepository(db)
	deliverableRepo := repository.NewDeliverableRepository(db)

	clientService := service.NewClientService(clientRepo, log)
	userService := service.NewUserService(userRepo, log)
	dealService := service.NewDealService(dealRepo, historyRepo, clientRepo, jobRepo, log, db)
	profitService := service.NewProfitService(shareRepo, dealRepo, userRepo, log)
	productionService := service.NewProductionService(jobRepo, deliverableRepo, assignmentRepo, clientRepo, dealRepo, userRepo, log, db)
	calendarService := service.NewCalendarService(deliverableRepo, jobRepo, time.Monday, log)
	dashboardService := service.NewDashboardService(dealRepo, jobRepo, deliverableRepo, log)

	rt := router.NewRouter(cfg, log, db, middleware.NewRateLimiter(&cfg.RateLimit, log), router.Handlers{
		Client:      handler.NewClientHandler(clientService, productionService, log),
		User:        handler.NewUserHandler(userService, log),
		Deal:        handler.NewDealHandler(dealService, log),
		Profit:      handler.NewProfitHandler(profitService, log),
		Job:         handler.NewJobHandler(productionService, log),
		Deliverable: handler.NewDeliverableHandler(productionService, log),
		Calendar:    handler.NewCalendarHandler(calendarService, log),
		Dashboard:   handler.NewDashboardHandler(dashboardService, log),
	})

	return &testAPI{db: db, handler: rt.Setup()}
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	api := setupAPI(t)

	w := api.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = api.do(t, http.MethodGet, "/health/db", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "stats")
}

func TestDealLifecycle(t *testing.T) {
	api := setupAPI(t)
	client := testutil.CreateTestClient(t, api.db, "Fjord Films")

	w := api.do(t, http.MethodPost, "/api/v1/deals", map[string]interface{}{
		"clientId":     client.ID,
		"title":        "Spring campaign",
		"value":        10000,
		"costInternal": 2000,
		"costExternal": 1000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	deal := decode[domain.DealDTO](t, w)
	assert.Equal(t, "/api/v1/deals/"+deal.ID.String(), w.Header().Get("Location"))
	assert.Equal(t, domain.DealStageNew, deal.Stage)
	assert.Equal(t, 7000.0, deal.Profit)
	assert.Equal(t, 70.0, deal.ProfitMargin)

	w = api.do(t, http.MethodPost, "/api/v1/deals/"+deal.ID.String()+"/stage", map[string]string{"stage": "Won"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decode[domain.StageTransitionResult](t, w)
	assert.True(t, result.JobSpawned)
	require.NotNil(t, result.Job)
	assert.Equal(t, "Spring campaign", result.Job.Title)
	assert.Equal(t, domain.JobStatusActive, result.Job.Status)

	// Re-entering Won does not spawn again
	api.do(t, http.MethodPost, "/api/v1/deals/"+deal.ID.String()+"/stage", map[string]string{"stage": "Lost"})
	w = api.do(t, http.MethodPost, "/api/v1/deals/"+deal.ID.String()+"/stage", map[string]string{"stage": "Won"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[domain.StageTransitionResult](t, w).JobSpawned)

	w = api.do(t, http.MethodGet, "/api/v1/deals/"+deal.ID.String()+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.DealStageHistoryDTO](t, w), 4)

	w = api.do(t, http.MethodGet, "/api/v1/deals/pipeline", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := decode[[]domain.PipelineStageColumn](t, w)
	require.Len(t, board, len(domain.DealStages))

	w = api.do(t, http.MethodGet, "/api/v1/deals?stage=Won", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.DealDTO](t, w), 1)
}

func TestDealErrors(t *testing.T) {
	api := setupAPI(t)
	client := testutil.CreateTestClient(t, api.db, "Fjord Films")

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"malformed id", http.MethodGet, "/api/v1/deals/not-a-uuid", nil, http.StatusBadRequest},
		{"unknown deal", http.MethodGet, "/api/v1/deals/" + uuid.NewString(), nil, http.StatusNotFound},
		{"missing title", http.MethodPost, "/api/v1/deals", map[string]interface{}{"clientId": client.ID}, http.StatusBadRequest},
		{"unknown client", http.MethodPost, "/api/v1/deals", map[string]interface{}{"clientId": uuid.New(), "title": "x"}, http.StatusNotFound},
		{"invalid stage", http.MethodPost, "/api/v1/deals", map[string]interface{}{"clientId": client.ID, "title": "x", "stage": "Maybe"}, http.StatusBadRequest},
		{"bad stage filter", http.MethodGet, "/api/v1/deals?stage=Maybe", nil, http.StatusBadRequest},
		{"bad client filter", http.MethodGet, "/api/v1/deals?clientId=nope", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestMalformedJSON(t *testing.T) {
	api := setupAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deals", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	api.handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, domain.ErrorTypeBadRequest, decode[domain.APIError](t, w).Type)
}

func TestProfitShares(t *testing.T) {
	api := setupAPI(t)
	client := testutil.CreateTestClient(t, api.db, "Fjord Films")
	deal := testutil.CreateTestDeal(t, api.db, client, "Launch film", domain.DealStageWon, 10000, 1000, 1000)
	anna := testutil.CreateTestUser(t, api.db, "Anna")

	path := "/api/v1/deals/" + deal.ID.String()
	w := api.do(t, http.MethodPost, path+"/shares", map[string]interface{}{"userId": anna.ID, "percentage": 25, "flatAmount": 100})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	share := decode[domain.ProfitShareDTO](t, w)

	w = api.do(t, http.MethodPost, path+"/shares", map[string]interface{}{"userId": anna.ID, "percentage": 10})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, http.MethodPost, path+"/shares", map[string]interface{}{"userId": anna.ID, "percentage": 101})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, path+"/profit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[domain.DealProfitSummary](t, w)
	assert.Equal(t, 8000.0, summary.Profit)
	assert.Equal(t, 2100.0, summary.AllocatedTotal)
	assert.False(t, summary.OverAllocated)

	w = api.do(t, http.MethodDelete, "/api/v1/shares/"+share.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(t, http.MethodDelete, "/api/v1/shares/"+share.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJobProduction(t *testing.T) {
	api := setupAPI(t)
	client := testutil.CreateTestClient(t, api.db, "Fjord Films")
	editor := testutil.CreateTestUser(t, api.db, "Editor")

	w := api.do(t, http.MethodPost, "/api/v1/jobs", map[string]interface{}{"clientId": client.ID, "title": "Brand film"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	job := decode[domain.JobDTO](t, w)
	jobPath := "/api/v1/jobs/" + job.ID.String()

	w = api.do(t, http.MethodPost, jobPath+"/deliverables", map[string]interface{}{
		"title":      "Rough cut",
		"dueDate":    "2024-05-20",
		"assigneeId": editor.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	deliverable := decode[domain.DeliverableDTO](t, w)
	assert.Equal(t, domain.DeliverableStatusToDo, deliverable.Status)

	w = api.do(t, http.MethodPost, "/api/v1/deliverables/"+deliverable.ID.String()+"/status", map[string]string{"status": "Review"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.DeliverableStatusReview, decode[domain.DeliverableDTO](t, w).Status)

	w = api.do(t, http.MethodPost, "/api/v1/deliverables/"+deliverable.ID.String()+"/status", map[string]string{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, jobPath+"/assignments", map[string]interface{}{"userId": editor.ID, "role": "Editor"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = api.do(t, http.MethodPost, jobPath+"/assignments", map[string]interface{}{"userId": editor.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[domain.AssignUserResult](t, w).AlreadyAssigned)

	w = api.do(t, http.MethodGet, jobPath+"/board", nil)
	require.Equal(t, http.StatusOK, w.Code)
	board := decode[domain.JobBoard](t, w)
	require.Len(t, board.Columns, len(domain.DeliverableStatuses))
	assert.Len(t, board.Assignments, 1)
	for _, column := range board.Columns {
		if column.Status == domain.DeliverableStatusReview {
			assert.Len(t, column.Deliverables, 1)
		} else {
			assert.Empty(t, column.Deliverables)
		}
	}

	w = api.do(t, http.MethodGet, "/api/v1/calendar?year=2024&month=5&jobId="+job.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	month := decode[domain.MonthCalendar](t, w)
	assert.Len(t, month.DeliverablesByDay[20], 1)
	assert.Equal(t, 4, month.PrevMonth)
	assert.Equal(t, 6, month.NextMonth)

	w = api.do(t, http.MethodPost, jobPath+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, domain.JobStatusCompleted, decode[domain.JobDTO](t, w).Status)

	w = api.do(t, http.MethodDelete, jobPath, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(t, http.MethodGet, jobPath, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalendarQueryErrors(t *testing.T) {
	api := setupAPI(t)

	for query, status := range map[string]int{
		"year=2024&month=13":        http.StatusBadRequest,
		"year=abc&month=5":          http.StatusBadRequest,
		"jobId=nope":                http.StatusBadRequest,
		"jobId=" + uuid.NewString(): http.StatusNotFound,
		"":                          http.StatusOK,
	} {
		w := api.do(t, http.MethodGet, "/api/v1/calendar?"+query, nil)
		assert.Equal(t, status, w.Code, query)
	}
}

func TestDashboard(t *testing.T) {
	api := setupAPI(t)
	client := testutil.CreateTestClient(t, api.db, "Fjord Films")
	testutil.CreateTestDeal(t, api.db, client, "A", domain.DealStageNew, 1000, 0, 0)

	w := api.do(t, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[domain.DashboardMetrics](t, w).TotalDeals)
}
