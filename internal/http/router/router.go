package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/straye-as/crm-core/docs" // Registers the swagger document
	"github.com/straye-as/crm-core/internal/auth"
	"github.com/straye-as/crm-core/internal/config"
	"github.com/straye-as/crm-core/internal/domain"
	"github.com/straye-as/crm-core/internal/http/handler"
	"github.com/straye-as/crm-core/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Health   *handler.HealthHandler
	Pipeline *handler.PipelineHandler
	Stage    *handler.StageHandler
	Lead     *handler.LeadHandler
	Client   *handler.ClientHandler
	Project  *handler.ProjectHandler
	Expense  *handler.ExpenseHandler
}

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	handlers       Handlers
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	handlers Handlers,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		handlers:       handlers,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := rt.handlers

	// Global middleware
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)
	if timeout := rt.cfg.Server.RequestTimeoutDuration(); timeout > 0 {
		r.Use(chimw.Timeout(timeout))
	}

	r.Get("/health", h.Health.Live)
	r.Get("/health/ready", h.Health.Ready)

	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.LimitByUser)

		editors := rt.authMiddleware.RequireRole(domain.PipelineEditorRoles...)

		r.Route("/pipelines", func(r chi.Router) {
			r.Get("/", h.Pipeline.List)
			r.With(editors).Post("/", h.Pipeline.Create)
			r.Get("/{id}", h.Pipeline.GetByID)
			r.Get("/{id}/stages", h.Pipeline.ListStages)
			r.With(editors).Post("/{id}/stages", h.Pipeline.CreateStage)
		})

		r.Route("/stages", func(r chi.Router) {
			r.Use(editors)
			r.Put("/{id}", h.Stage.Update)
			r.Put("/{id}/position", h.Stage.Reorder)
			r.Delete("/{id}", h.Stage.Delete)
		})

		r.Route("/leads", func(r chi.Router) {
			r.Post("/", h.Lead.Create)
			r.Get("/{id}", h.Lead.GetByID)
			r.Post("/{id}/move", h.Lead.Move)
			r.Get("/{id}/activities", h.Lead.ListActivities)
		})

		r.Route("/clients", func(r chi.Router) {
			r.Post("/", h.Client.Create)
			r.Get("/{id}", h.Client.GetByID)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", h.Project.Create)
			r.Get("/{id}", h.Project.GetByID)
			r.Get("/{id}/budget", h.Project.GetBudget)
			r.Post("/{id}/budget/evaluate", h.Project.EvaluateBudget)
			r.Get("/{id}/alerts", h.Project.ListAlerts)
		})

		r.Post("/expenses", h.Expense.Create)
		r.Post("/expense-categories", h.Expense.CreateCategory)
	})

	return r
}
