package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cimillas/eventhub/internal/app"
	"github.com/cimillas/eventhub/internal/auth"
	"github.com/cimillas/eventhub/internal/clock"
	"github.com/cimillas/eventhub/internal/config"
	"github.com/cimillas/eventhub/internal/logging"
	"github.com/cimillas/eventhub/internal/metrics"
	"github.com/cimillas/eventhub/internal/ratelimit"
	"github.com/cimillas/eventhub/internal/storage/memory"
	"github.com/cimillas/eventhub/internal/storage/postgres"
	transporthttp "github.com/cimillas/eventhub/internal/transport/http"
	"github.com/cimillas/eventhub/migrations"
)

const startupTimeout = 5 * time.Second

// store is what both storage drivers provide.
type store interface {
	app.RegistrationRepository
	app.EventRepository
	app.QueryRepository
	app.ReviewRepository
	app.UserRepository
	Ping(ctx context.Context) error
}

func main() {
	envPath, envErr := config.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.New(os.Stderr, "info", "json")
		bootLogger.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	switch {
	case envErr != nil:
		logger.Warn().Err(envErr).Msg("failed to load .env")
	case envPath != "":
		logger.Info().Str("path", envPath).Msg("loaded env file")
	}
	if cfg.UsesDevSecret() {
		logger.Warn().Msg("AUTH_TOKEN_SECRET not set, using the development secret")
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("api stopped")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	var db store
	switch cfg.Database.Driver {
	case "memory":
		logger.Warn().Msg("using the in-memory store, data is lost on restart")
		db = memory.New()
	default:
		pool, err := postgres.Connect(startupCtx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return err
		}
		defer pool.Close()

		if cfg.Database.Migrate {
			applied, err := migrations.Apply(startupCtx, pool)
			if err != nil {
				return err
			}
			for _, name := range applied {
				logger.Info().Str("migration", name).Msg("applied migration")
			}
		}
		db = postgres.NewStore(pool)
	}

	clk := clock.NewSystem()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	issuer, err := auth.NewIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL, clk)
	if err != nil {
		return err
	}

	healthChecks := map[string]transporthttp.Pinger{"database": db}
	var accountOpts []app.AccountServiceOption
	opts := transporthttp.RouterOptions{
		Logger:            logger,
		Observer:          m,
		RateLimitObserver: m,
		CORSOrigins:       cfg.CORS.Origins,
		HealthChecks:      healthChecks,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsPath = cfg.Metrics.Path
		opts.MetricsHandler = m.Handler()
	}

	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(startupCtx).Err(); err != nil {
			return err
		}

		healthChecks["redis"] = redisPinger{rdb}
		accountOpts = append(accountOpts, app.WithRevoker(auth.NewRedisRevoker(rdb)))
		opts.TicketLimiter = ratelimit.New(rdb, "tickets", cfg.RateLimit.TicketLimit, cfg.RateLimit.Window, clk)
		opts.LoginLimiter = ratelimit.New(rdb, "login", cfg.RateLimit.LoginLimit, cfg.RateLimit.Window, clk)
	} else {
		logger.Warn().Msg("REDIS_ADDR not set, rate limiting and server-side logout are disabled")
	}

	accounts := app.NewAccountService(db, auth.PasswordHasher{}, issuer, clk, accountOpts...)
	handler := transporthttp.NewRouter(transporthttp.Services{
		Auth:     accounts,
		Accounts: accounts,
		Queries:  app.NewQueryService(db, clk, app.WithLocation(cfg.Location)),
		Events:   app.NewEventService(db, clk),
		Tickets:  app.NewRegistrationService(db, clk, app.WithRecorder(m)),
		Reviews:  app.NewReviewService(db, clk, cfg.Location),
	}, opts)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	logger.Info().Str("addr", server.Addr).Str("driver", cfg.Database.Driver).Msg("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-stopCtx.Done():
		logger.Info().Msg("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("server stopped")
	return nil
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
