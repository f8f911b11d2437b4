package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/agency-pipeline/internal/config"
	"github.com/straye-as/agency-pipeline/internal/database"
	"github.com/straye-as/agency-pipeline/internal/http/handler"
	"github.com/straye-as/agency-pipeline/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handlers groups the route handlers mounted under /api/v1
type Handlers struct {
	Client      *handler.ClientHandler
	User        *handler.UserHandler
	Deal        *handler.DealHandler
	Profit      *handler.ProfitHandler
	Job         *handler.JobHandler
	Deliverable *handler.DeliverableHandler
	Calendar    *handler.CalendarHandler
	Dashboard   *handler.DashboardHandler
}

type Router struct {
	cfg         *config.Config
	logger      *zap.Logger
	db          *gorm.DB
	rateLimiter *middleware.RateLimiter
	handlers    Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:         cfg,
		logger:      logger,
		db:          db,
		rateLimiter: rateLimiter,
		handlers:    handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Liveness probe
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Readiness probe with pool stats
	r.Get("/health/db", rt.databaseHealth)

	h := rt.handlers
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", h.Client.List)
			r.Post("/", h.Client.Create)
			r.Get("/{id}", h.Client.GetByID)
			r.Get("/{id}/board", h.Client.GetBoard)
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.User.List)
			r.Post("/", h.User.Create)
			r.Get("/{id}", h.User.GetByID)
		})

		r.Route("/deals", func(r chi.Router) {
			r.Get("/", h.Deal.List)
			r.Post("/", h.Deal.Create)
			r.Get("/pipeline", h.Deal.GetPipeline)
			r.Get("/{id}", h.Deal.GetByID)
			r.Put("/{id}", h.Deal.Update)
			r.Post("/{id}/stage", h.Deal.TransitionStage)
			r.Get("/{id}/history", h.Deal.GetStageHistory)

			// Profit allocation
			r.Get("/{id}/profit", h.Profit.GetDealProfit)
			r.Post("/{id}/shares", h.Profit.AddShare)
		})
		r.Delete("/shares/{id}", h.Profit.RemoveShare)

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", h.Job.List)
			r.Post("/", h.Job.Create)
			r.Get("/{id}", h.Job.GetByID)
			r.Put("/{id}", h.Job.Update)
			r.Delete("/{id}", h.Job.Delete)
			r.Post("/{id}/complete", h.Job.Complete)
			r.Get("/{id}/board", h.Job.GetBoard)
			r.Post("/{id}/deliverables", h.Deliverable.Create)
			r.Get("/{id}/assignments", h.Job.ListAssignments)
			r.Post("/{id}/assignments", h.Job.AssignUser)
		})
		r.Delete("/assignments/{id}", h.Job.RemoveAssignment)

		r.Route("/deliverables", func(r chi.Router) {
			r.Put("/{id}", h.Deliverable.Update)
			r.Delete("/{id}", h.Deliverable.Delete)
			r.Post("/{id}/status", h.Deliverable.SetStatus)
		})

		r.Get("/calendar", h.Calendar.GetMonth)
		r.Get("/dashboard", h.Dashboard.GetMetrics)
	})

	return r
}

func (rt *Router) databaseHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	stats, err := database.HealthCheckWithStats(r.Context(), rt.db)
	if err != nil {
		rt.logger.Error("Database health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "unhealthy",
			"error":   err.Error(),
			"service": "database",
		})
		return
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"service": "database",
		"stats":   stats,
	})
}
