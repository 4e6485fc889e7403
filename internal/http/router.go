package http

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/nullpulse/sentinel/internal/http/handlers"
	"github.com/nullpulse/sentinel/internal/http/middlewares"
	"github.com/nullpulse/sentinel/internal/httpapi"
	"github.com/nullpulse/sentinel/internal/observability"
)

var errNotReady = errors.New("scheduler not ready")

// Readiness is satisfied by the scheduler so /readyz can report whether the
// tick loop has started, not just whether the process is up.
type Readiness interface {
	Ready() bool
}

// NewRouter wires the HTTP surface of spec.md §6: check-in and switches
// CRUD, plus health, matching the reference service's middleware stack.
func NewRouter(pool *pgxpool.Pool, store httpapi.Store, sched Readiness, prom *observability.Prom) *gin.Engine {
	if os.Getenv("APP_ENV") != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("sentineld"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.CORSMiddleware([]string{"http://localhost:3000"}))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1MB max body
	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	readyCheck := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			return err
		}
		if sched != nil && !sched.Ready() {
			return errNotReady
		}
		return nil
	}

	h := handlers.NewHealthHandler(readyCheck)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	checkinLimiter := middlewares.NewRateLimiter(30, 1*time.Minute)

	checkinHandler := httpapi.NewCheckinHandler(store)
	r.POST("/checkin/:id", checkinLimiter.RateLimiterMiddleware(middlewares.KeyByIP), checkinHandler.Checkin)

	// /checkin carries no JSON body (spec.md §4.4: bearer token only), so
	// RequireJSON is scoped to the switches group rather than applied
	// globally.
	switches := r.Group("/switches")
	switches.Use(middlewares.RequireJSON())

	switchesHandler := httpapi.NewSwitchesHandler(store)
	switches.POST("", switchesHandler.Create)
	switches.GET("", switchesHandler.List)
	switches.GET("/:id", switchesHandler.Get)
	switches.DELETE("/:id", switchesHandler.Delete)

	slog.Default().Info("router.initialized")
	return r
}
