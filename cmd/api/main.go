package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/common-nighthawk/go-figure"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/necatisahhin/zeroAiBackend/internal/cache"
	"github.com/necatisahhin/zeroAiBackend/internal/config"
	"github.com/necatisahhin/zeroAiBackend/internal/database"
	"github.com/necatisahhin/zeroAiBackend/internal/handlers"
	"github.com/necatisahhin/zeroAiBackend/internal/jobs"
	"github.com/necatisahhin/zeroAiBackend/internal/log"
	"github.com/necatisahhin/zeroAiBackend/internal/metrics"
	"github.com/necatisahhin/zeroAiBackend/internal/middleware"
	"github.com/necatisahhin/zeroAiBackend/internal/ratelimit"
	"github.com/necatisahhin/zeroAiBackend/internal/repository"
	"github.com/necatisahhin/zeroAiBackend/internal/server"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)
	displayBanner("zeroAI")

	ctx := context.Background()

	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	m := metrics.New()
	processor := jobs.NewProcessor(repository.NewRefreshTokenRepository(db.Gorm), m, logger)

	var (
		queue      jobs.Queue
		localQueue *jobs.LocalQueue
	)
	switch cfg.Queue.Backend {
	case config.QueueBackendRedis:
		queue = jobs.NewStreamQueue(redisClient, cfg.Queue.Stream)
	default:
		localQueue = jobs.NewLocalQueue(processor, cfg.Queue.Workers, cfg.Queue.Buffer, logger)
		localQueue.Start()
		queue = localQueue
	}

	scheduler := jobs.NewScheduler(queue, cfg.Jobs.PurgeSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	handlerSet, err := handlers.NewHandlerSet(logger, db.Gorm, redisClient, queue, m, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build handlers")
	}

	var limiter middleware.Limiter
	if redisClient != nil && cfg.RateLimit.Enabled {
		limiter = ratelimit.NewLimiter(redisClient, "ratelimit:api")
	} else if cfg.RateLimit.Enabled {
		logger.Warn().Msg("rate limiting requires redis; requests are not limited")
	}

	httpServer := server.NewHTTPServer(cfg, logger, handlerSet, m, limiter)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, map[string]gfshutdown.Operation{
		"api": func(ctx context.Context) error {
			return shutdown(ctx, logger, httpServer, scheduler, localQueue, redisClient, db)
		},
	})

	exitCode := <-wait
	if exitCode != 0 {
		logger.Error().Int("exit_code", exitCode).Msg("shutdown completed with errors")
		os.Exit(exitCode)
	}
	logger.Info().Msg("server exited cleanly")
}

// shutdown stops intake first, then drains background work before closing
// the stores it writes to.
func shutdown(
	ctx context.Context,
	logger zerolog.Logger,
	srv *server.HTTPServer,
	scheduler *jobs.Scheduler,
	localQueue *jobs.LocalQueue,
	redisClient *redis.Client,
	db *database.DB,
) error {
	var firstErr error
	record := func(what string, err error) {
		if err == nil {
			return
		}
		logger.Error().Err(err).Str("component", what).Msg("shutdown step failed")
		if firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", what, err)
		}
	}

	record("http server", srv.Shutdown(ctx))
	record("scheduler", scheduler.Stop(ctx))
	if localQueue != nil {
		record("queue", localQueue.Close(ctx))
	}
	if redisClient != nil {
		record("redis", redisClient.Close())
	}
	record("database", db.Close())

	return firstErr
}

func displayBanner(name string) {
	figure.NewFigure(name, "cybermedium", true).Print()
	fmt.Println()
}
