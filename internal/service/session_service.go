package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/necatisahhin/zeroAiBackend/internal/ids"
	"github.com/necatisahhin/zeroAiBackend/internal/jobs"
	"github.com/necatisahhin/zeroAiBackend/internal/metrics"
	"github.com/necatisahhin/zeroAiBackend/internal/models"
	"github.com/necatisahhin/zeroAiBackend/internal/repository"
	"github.com/necatisahhin/zeroAiBackend/internal/security"
)

type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

type RefreshTokenStore interface {
	FindActiveByUser(ctx context.Context, userID string, now time.Time) (models.RefreshToken, error)
	FindByTokenAndUser(ctx context.Context, token string, userID string) (models.RefreshToken, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	Persist(ctx context.Context, token *models.RefreshToken, now time.Time) error
	Rotate(ctx context.Context, oldID string, next *models.RefreshToken) error
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionManager issues, rotates and revokes credentials. A user holds at
// most one live refresh token; logging in again requires logging out first.
type SessionManager struct {
	users        CredentialStore
	tokens       RefreshTokenStore
	codec        *security.TokenCodec
	hasher       *security.PasswordHasher
	queue        jobs.Queue
	asyncPersist bool
	metrics      *metrics.Metrics
	log          zerolog.Logger
	now          func() time.Time
}

type SessionOptions struct {
	// AsyncPersist stores new refresh tokens through queue after the
	// response is produced. A nil queue forces synchronous persistence.
	AsyncPersist bool
	Queue        jobs.Queue
	Metrics      *metrics.Metrics
}

func NewSessionManager(
	users CredentialStore,
	tokens RefreshTokenStore,
	codec *security.TokenCodec,
	hasher *security.PasswordHasher,
	opts SessionOptions,
	log zerolog.Logger,
) *SessionManager {
	return &SessionManager{
		users:        users,
		tokens:       tokens,
		codec:        codec,
		hasher:       hasher,
		queue:        opts.Queue,
		asyncPersist: opts.AsyncPersist && opts.Queue != nil,
		metrics:      opts.Metrics,
		log:          log,
		now:          time.Now,
	}
}

func (s *SessionManager) Login(ctx context.Context, email string, password string) (TokenPair, error) {
	pair, err := s.login(ctx, email, password)
	s.metrics.AuthEvent("login", outcome(err))
	return pair, err
}

func (s *SessionManager) login(ctx context.Context, email string, password string) (TokenPair, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return TokenPair{}, err
	}

	if !user.IsActive {
		return TokenPair{}, ErrAccountInactive
	}

	now := s.now().UTC()
	if _, err := s.tokens.FindActiveByUser(ctx, user.ID, now); err == nil {
		return TokenPair{}, ErrAlreadyLoggedIn
	} else if !errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return TokenPair{}, fmt.Errorf("check active session: %w", err)
	}

	pair, row, err := s.issue(user.ID)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.persist(ctx, row, now); err != nil {
		return TokenPair{}, err
	}

	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user logged in")
	return pair, nil
}

func (s *SessionManager) persist(ctx context.Context, row models.RefreshToken, now time.Time) error {
	if s.asyncPersist {
		task, err := jobs.NewPersistRefreshTokenTask(jobs.PersistRefreshTokenPayload{
			ID:        row.ID,
			Token:     row.Token,
			UserID:    row.UserID,
			ExpiresAt: row.ExpiresAt,
		})
		if err == nil {
			err = s.queue.Enqueue(ctx, task)
		}
		if err == nil {
			return nil
		}
		s.log.Warn().Err(err).Str("user_id", row.UserID).Msg("enqueue refresh token failed, persisting inline")
	}

	err := s.tokens.Persist(ctx, &row, now)
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrAlreadyLoggedIn
	}
	if err != nil {
		return fmt.Errorf("persist refresh token: %w", err)
	}
	return nil
}

func (s *SessionManager) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	pair, err := s.refresh(ctx, refreshToken)
	s.metrics.AuthEvent("refresh", outcome(err))
	return pair, err
}

func (s *SessionManager) refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return TokenPair{}, ErrRefreshTokenRequired
	}

	claims, err := s.codec.Verify(security.TokenRefresh, refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidRefreshToken
	}

	current, err := s.tokens.FindByTokenAndUser(ctx, refreshToken, claims.UserID)
	if errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return TokenPair{}, ErrRefreshTokenNotFound
	}
	if err != nil {
		return TokenPair{}, fmt.Errorf("lookup refresh token: %w", err)
	}

	pair, next, err := s.issue(claims.UserID)
	if err != nil {
		return TokenPair{}, err
	}

	// A concurrent rotation or logout may remove the row between lookup and here.
	if err := s.tokens.Rotate(ctx, current.ID, &next); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return TokenPair{}, ErrRefreshTokenNotFound
		}
		return TokenPair{}, fmt.Errorf("rotate refresh token: %w", err)
	}

	s.log.Info().Str("user_id", claims.UserID).Msg("token refreshed")
	return pair, nil
}

// Logout revokes every refresh token of the access token's subject.
func (s *SessionManager) Logout(ctx context.Context, accessToken string) (int64, error) {
	if strings.TrimSpace(accessToken) == "" {
		return 0, ErrAccessTokenRequired
	}

	claims, err := s.codec.Verify(security.TokenAccess, accessToken)
	if err != nil {
		s.metrics.AuthEvent("logout", "failure")
		return 0, ErrInvalidOrExpiredToken
	}

	revoked, err := s.tokens.DeleteByUser(ctx, claims.UserID)
	s.metrics.AuthEvent("logout", outcome(err))
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens: %w", err)
	}

	s.log.Info().Str("user_id", claims.UserID).Int64("revoked", revoked).Msg("user logged out")
	return revoked, nil
}

// LogoutAll revokes every refresh token of the user after re-checking the
// password; it works without an access token.
func (s *SessionManager) LogoutAll(ctx context.Context, email string, password string) (int64, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		s.metrics.AuthEvent("logout_all", "failure")
		return 0, err
	}

	revoked, err := s.tokens.DeleteByUser(ctx, user.ID)
	s.metrics.AuthEvent("logout_all", outcome(err))
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Int64("revoked", revoked).Msg("user logged out from all devices")
	return revoked, nil
}

// authenticate answers unknown emails and wrong passwords identically.
func (s *SessionManager) authenticate(ctx context.Context, email string, password string) (models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrUserNotFound) {
		s.hasher.VerifyDummy(password)
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return models.User{}, err
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *SessionManager) issue(userID string) (TokenPair, models.RefreshToken, error) {
	access, err := s.codec.IssueAccess(userID)
	if err != nil {
		return TokenPair{}, models.RefreshToken{}, err
	}
	refresh, err := s.codec.IssueRefresh(userID)
	if err != nil {
		return TokenPair{}, models.RefreshToken{}, err
	}

	row := models.RefreshToken{
		ID:        ids.New(),
		Token:     refresh.Value,
		UserID:    userID,
		ExpiresAt: refresh.ExpiresAt,
	}
	return TokenPair{AccessToken: access.Value, RefreshToken: refresh.Value}, row, nil
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
