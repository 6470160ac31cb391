package main

import (
	"context"
	"errors"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"github.com/necatisahhin/zeroAiBackend/internal/cache"
	"github.com/necatisahhin/zeroAiBackend/internal/config"
	"github.com/necatisahhin/zeroAiBackend/internal/database"
	"github.com/necatisahhin/zeroAiBackend/internal/jobs"
	"github.com/necatisahhin/zeroAiBackend/internal/log"
	"github.com/necatisahhin/zeroAiBackend/internal/metrics"
	"github.com/necatisahhin/zeroAiBackend/internal/repository"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	if !cfg.Redis.Enabled {
		logger.Fatal().Msg("worker requires redis.enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}

	processor := jobs.NewProcessor(repository.NewRefreshTokenRepository(db.Gorm), metrics.New(), logger)
	consumer := jobs.NewConsumer(client, jobs.ConsumerConfig{
		Stream:        cfg.Queue.Stream,
		Group:         cfg.Queue.Group,
		Consumer:      cfg.Queue.Consumer,
		ClaimInterval: cfg.Queue.ClaimInterval,
	}, logger, processor)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Fatal().Err(err).Msg("consumer stopped unexpectedly")
		}
	}()

	wait := gfshutdown.GracefulShutdown(context.Background(), shutdownTimeout, map[string]gfshutdown.Operation{
		"consumer": func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
			if err := client.Close(); err != nil {
				return err
			}
			return db.Close()
		},
	})

	if code := <-wait; code != 0 {
		logger.Error().Int("exit_code", code).Msg("worker shutdown completed with errors")
		os.Exit(code)
	}
	logger.Info().Msg("worker exited cleanly")
}
