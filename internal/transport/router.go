package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/remails/console/internal/api"
	"github.com/remails/console/internal/config"
	"github.com/remails/console/internal/journal"
	"github.com/remails/console/internal/observability"
	"github.com/remails/console/internal/route"
	"github.com/remails/console/internal/session"
)

// Dependencies holds all injected dependencies for the HTTP transport layer.
type Dependencies struct {
	Config   *config.Config
	Registry *session.Registry
	Resume   session.ResumeCache
	Table    *route.Table
	API      *api.Client
	Journal  journal.Store
	Metrics  *observability.Metrics
	Checks   observability.ReadinessChecks
	Logger   *zap.Logger
}

// NewRouter creates a chi.Router with the full middleware pipeline and all
// route registrations. Health, readiness, and metrics endpoints bypass the
// session middleware.
func NewRouter(deps Dependencies) chi.Router {
	h := &handlers{deps: deps, logger: deps.Logger}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Global middleware: applied to all routes including health.
	r.Use(Recovery)
	r.Use(CORS(deps.Config.Server.CORS))
	r.Use(RequestID)
	r.Use(SecurityHeaders)

	// Public routes — bypass the session middleware.
	r.Get("/ui/health", observability.HandleHealth())
	r.Get("/ui/ready", observability.HandleReady(deps.Checks))
	if deps.Config.Observability.Metrics.Enabled {
		r.Method(http.MethodGet, deps.Config.Observability.Metrics.Path, observability.Handler())
	}

	// Session routes — full middleware chain.
	r.Group(func(r chi.Router) {
		r.Use(SessionContext)
		r.Use(HandlerTimeout(deps.Config.Server.HandlerTimeout))
		r.Use(RequestLogging)
		if deps.Metrics != nil {
			r.Use(deps.Metrics.MetricsMiddleware)
		}
		if deps.Config.Observability.Tracing.Enabled {
			r.Use(observability.TracingMiddleware)
		}

		r.Post("/ui/session/start", h.handleSessionStart)
		r.Post("/ui/session/end", h.handleSessionEnd)
		r.Post("/ui/login", h.handleLogin)
		r.Post("/ui/login/2fa", h.handleLoginTOTP)
		r.Post("/ui/logout", h.handleLogout)

		r.Post("/ui/navigate", h.handleNavigate)
		r.Post("/ui/location", h.handleLocation)
		r.Post("/ui/history/pop", h.handleHistoryPop)

		r.Get("/ui/state", h.handleState)
		r.Get("/ui/routes", h.handleRoutes)
		r.Get("/ui/journal", h.handleJournal)
	})

	return r
}

// handlers carries the shared dependencies of all request handlers.
type handlers struct {
	deps   Dependencies
	logger *zap.Logger
}
