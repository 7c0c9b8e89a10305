package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/usersvc/internal/cache"
	"github.com/geocoder89/usersvc/internal/config"
	"github.com/geocoder89/usersvc/internal/http/handlers"
	"github.com/geocoder89/usersvc/internal/http/middlewares"
	"github.com/geocoder89/usersvc/internal/observability"
	"github.com/geocoder89/usersvc/internal/redisclient"
	"github.com/geocoder89/usersvc/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func NewRouter(
	log *slog.Logger,
	cfg config.Config,
	pool *pgxpool.Pool,
	redisClient *redisclient.Client,
	prom *observability.Prom,
	reg *prometheus.Registry,
) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware([]string{"http://localhost:3000"}))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("usersvc"))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	// rate limiting: shared counters when redis is configured, else per process
	if redisClient != nil {
		rl := middlewares.NewRedisRateLimiter(redisClient, 100, time.Minute)
		r.Use(rl.RateLimiterMiddleware(middlewares.KeyByIP))
	} else {
		rl := middlewares.NewRateLimiter(100, time.Minute)
		r.Use(rl.RateLimiterMiddleware(middlewares.KeyByIP))
	}

	// health
	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
		}

		if redisClient != nil {
			return redisClient.Ping(ctx)
		}

		return nil
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// wire up the store and handlers
	usersRepo := postgres.NewUsersRepo(pool, prom)
	usersHandler := handlers.NewUsersHandlerWithCache(usersRepo, cache.New(10*time.Second))

	r.POST("/users", usersHandler.CreateUser)
	r.GET("/users", usersHandler.ListUsers)
	r.GET("/users/:id", usersHandler.GetUserById)
	r.PUT("/users/:id", usersHandler.UpdateUser)
	r.DELETE("/users/:id", usersHandler.DeleteUser)

	return r
}
