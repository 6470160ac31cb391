package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/necatisahhin/zeroAiBackend/internal/metrics"
	"github.com/necatisahhin/zeroAiBackend/internal/models"
	"github.com/necatisahhin/zeroAiBackend/internal/repository"
)

type RefreshTokenStore interface {
	Persist(ctx context.Context, token *models.RefreshToken, now time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Processor executes the task types this service enqueues.
type Processor struct {
	tokens  RefreshTokenStore
	metrics *metrics.Metrics
	logger  zerolog.Logger
	now     func() time.Time
}

func NewProcessor(tokens RefreshTokenStore, m *metrics.Metrics, logger zerolog.Logger) *Processor {
	return &Processor{
		tokens:  tokens,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

func (p *Processor) Handle(ctx context.Context, task Task) error {
	var err error
	switch task.Type {
	case TaskPersistRefreshToken:
		err = p.handlePersist(ctx, task.Payload)
	case TaskPurgeRefreshTokens:
		err = p.handlePurge(ctx)
	default:
		p.logger.Warn().Str("type", string(task.Type)).Msg("unknown task type")
		return nil
	}

	p.metrics.TaskProcessed(string(task.Type), err)
	return err
}

func (p *Processor) handlePersist(ctx context.Context, raw json.RawMessage) error {
	var payload PersistRefreshTokenPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode persist payload: %w", err)
	}

	err := p.tokens.Persist(ctx, &models.RefreshToken{
		ID:        payload.ID,
		Token:     payload.Token,
		UserID:    payload.UserID,
		ExpiresAt: payload.ExpiresAt,
	}, p.now().UTC())

	// A concurrent login already holds the session; retrying cannot succeed.
	if errors.Is(err, repository.ErrDuplicate) {
		p.logger.Warn().Str("user_id", payload.UserID).Msg("refresh token dropped, session already active")
		return nil
	}
	if err != nil {
		return fmt.Errorf("persist refresh token: %w", err)
	}
	return nil
}

func (p *Processor) handlePurge(ctx context.Context) error {
	purged, err := p.tokens.DeleteExpired(ctx, p.now().UTC())
	if err != nil {
		return fmt.Errorf("purge refresh tokens: %w", err)
	}
	p.logger.Info().Int64("purged", purged).Msg("expired refresh tokens purged")
	return nil
}
