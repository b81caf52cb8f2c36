package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hackgods/provider-booking/internal/api"
	"github.com/hackgods/provider-booking/internal/appointment"
	"github.com/hackgods/provider-booking/internal/clock"
	"github.com/hackgods/provider-booking/internal/config"
	"github.com/hackgods/provider-booking/internal/db"
	"github.com/hackgods/provider-booking/internal/lock"
	"github.com/hackgods/provider-booking/internal/logger"
	"github.com/hackgods/provider-booking/internal/metrics"
	"github.com/hackgods/provider-booking/internal/provider"
	redisclient "github.com/hackgods/provider-booking/internal/redis"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := logger.Init("api-server", "", "info")
		log.Fatal().Err(err).Msg("config load error")
	}

	log := logger.Init("api-server", cfg.Env, cfg.LogLevel)
	log.Info().
		Str("env", cfg.Env).
		Str("http_port", cfg.HTTPPort).
		Str("lock_backend", cfg.LockBackend).
		Dur("lock_ttl", cfg.LockTTL).
		Dur("lock_wait", cfg.LockWait).
		Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error().Err(err).Msg("api-server stopped with error")
		os.Exit(1)
	}

	log.Info().Msg("api-server stopped")
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(ctx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, db.PoolOptions{MaxConns: cfg.PostgresMaxConn})
	cancelPg()
	if err != nil {
		return err
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	if cfg.MigrateOnStart {
		applied, err := db.NewMigrator(pgPool).Up(ctx)
		if err != nil {
			return err
		}
		log.Info().Strs("applied", applied).Msg("migrations up to date")
	}

	checks := []api.DependencyCheck{
		{Name: "postgres", Critical: true, Ping: pgPool.Ping},
	}

	var locker lock.Locker
	switch cfg.LockBackend {
	case config.LockBackendRedis:
		rdb, err := redisclient.NewRedisClient(ctx, redisclient.ClientOptions{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("error closing redis")
			}
		}()
		log.Info().Str("addr", cfg.RedisAddr).Msg("connected to Redis")

		locker = redisclient.NewLocker(rdb, cfg.LockTTL, cfg.LockWait)
		checks = append(checks, api.DependencyCheck{
			Name:     "redis",
			Critical: true,
			Ping:     redisclient.Pinger(rdb),
		})
	default:
		log.Warn().Msg("using in-process provider locks; run a single instance only")
		locker = lock.NewKeyedMutex()
	}

	m := metrics.NewCollector()

	providers := provider.NewService(provider.NewPgRepository(pgPool), log)
	bookings := appointment.NewService(
		appointment.NewPgRepository(pgPool),
		providers,
		locker,
		clock.System(),
		log,
		m,
	)

	srv := &http.Server{
		Addr: ":" + cfg.HTTPPort,
		Handler: api.NewRouter(api.RouterConfig{
			Bookings:  bookings,
			Providers: providers,
			Checks:    checks,
			Metrics:   m,
			Logger:    log,
			Env:       cfg.Env,
			Version:   version,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down api-server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
