package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/necatisahhin/zeroAiBackend/internal/database/dbtest"
	"github.com/necatisahhin/zeroAiBackend/internal/jobs"
	"github.com/necatisahhin/zeroAiBackend/internal/repository"
	"github.com/necatisahhin/zeroAiBackend/internal/security"
)

const testPassword = "Str0ng!Pass"

type fixture struct {
	users       *repository.UserRepository
	tokens      *repository.RefreshTokenRepository
	restaurants *repository.RestaurantRepository
	codec       *security.TokenCodec
	hasher      *security.PasswordHasher

	sessions    *SessionManager
	userSvc     *UserService
	restaurantS *RestaurantService
}

func newFixture(t *testing.T, opts SessionOptions) *fixture {
	t.Helper()

	db := dbtest.New(t)
	hasher, err := security.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	f := &fixture{
		users:       repository.NewUserRepository(db),
		tokens:      repository.NewRefreshTokenRepository(db),
		restaurants: repository.NewRestaurantRepository(db),
		codec: security.NewTokenCodec(security.TokenConfig{
			Secret:     "test-secret",
			Issuer:     "zeroai",
			AccessTTL:  5 * time.Hour,
			RefreshTTL: 7 * 24 * time.Hour,
		}),
		hasher: hasher,
	}
	f.sessions = NewSessionManager(f.users, f.tokens, f.codec, hasher, opts, zerolog.Nop())
	f.userSvc = NewUserService(f.users, hasher, zerolog.Nop())
	f.restaurantS = NewRestaurantService(f.restaurants, zerolog.Nop())
	return f
}

func (f *fixture) register(t *testing.T, email string) string {
	t.Helper()
	user, err := f.userSvc.Register(context.Background(), RegisterInput{
		Fullname: "Test User",
		Email:    email,
		Password: testPassword,
	})
	require.NoError(t, err)
	return user.ID
}

// syncQueue runs tasks inline so asynchronous persistence is observable.
type syncQueue struct {
	handler jobs.Handler
}

func (q syncQueue) Enqueue(ctx context.Context, task jobs.Task) error {
	return q.handler.Handle(ctx, task)
}

type failingQueue struct{}

func (failingQueue) Enqueue(context.Context, jobs.Task) error {
	return jobs.ErrQueueFull
}
