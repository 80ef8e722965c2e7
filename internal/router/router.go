package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinicore/clinic-api/internal/config"
	"github.com/clinicore/clinic-api/internal/handler/appointment"
	"github.com/clinicore/clinic-api/internal/handler/auth"
	"github.com/clinicore/clinic-api/internal/handler/clinician"
	"github.com/clinicore/clinic-api/internal/handler/dashboard"
	"github.com/clinicore/clinic-api/internal/handler/health"
	"github.com/clinicore/clinic-api/internal/handler/patient"
	"github.com/clinicore/clinic-api/internal/handler/rbac"
	"github.com/clinicore/clinic-api/internal/handler/record"
	"github.com/clinicore/clinic-api/internal/middleware"
	"github.com/clinicore/clinic-api/pkg/metrics"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth        *auth.Handler
	Clinician   *clinician.Handler
	Patient     *patient.Handler
	Appointment *appointment.Handler
	Record      *record.Handler
	Dashboard   *dashboard.Handler
	RBAC        *rbac.Handler
	Health      *health.Handler
}

type Router struct {
	engine *gin.Engine
}

// NewRouter assembles the middleware chain and mounts all routes. Everything
// under /api/v1 except auth/register and auth/login requires a resolved
// principal; each protected route then declares its single permission.
func NewRouter(
	cfg *config.Config,
	authMW *middleware.AuthMiddleware,
	m *metrics.Metrics,
	h Handlers,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		middleware.Metrics(m),
		middleware.Timeout(30*time.Second),
	)

	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
		engine.Use(limiter.RateLimit())
	}

	h.Health.RegisterRoutes(engine)

	api := engine.Group("/api/v1")
	h.Auth.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(authMW.Authenticate())
	h.Auth.RegisterProtectedRoutes(protected)
	h.Clinician.RegisterRoutes(protected, authMW)
	h.Patient.RegisterRoutes(protected, authMW)
	h.Appointment.RegisterRoutes(protected, authMW)
	h.Record.RegisterRoutes(protected, authMW)
	h.Dashboard.RegisterRoutes(protected, authMW)
	h.RBAC.RegisterRoutes(protected, authMW)

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
