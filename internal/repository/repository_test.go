package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/necatisahhin/zeroAiBackend/internal/database/dbtest"
	"github.com/necatisahhin/zeroAiBackend/internal/ids"
	"github.com/necatisahhin/zeroAiBackend/internal/models"
)

func seedUser(t *testing.T, repo *UserRepository, email string) models.User {
	t.Helper()

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: "hash",
		Fullname:     "Ada Lovelace",
		Role:         models.UserRoleUser,
		IsActive:     true,
	}
	require.NoError(t, repo.Create(context.Background(), &user))
	return user
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(dbtest.New(t))

	user := seedUser(t, repo, "ada@example.com")

	found, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	exists, err := repo.EmailExists(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(dbtest.New(t))
	seedUser(t, repo, "dup@example.com")

	dup := models.User{ID: ids.New(), Email: "dup@example.com", PasswordHash: "x", Fullname: "Dup", Role: models.UserRoleUser}
	err := repo.Create(context.Background(), &dup)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.True(t, IsDuplicateOn(err, "email"))
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(dbtest.New(t))
	user := seedUser(t, repo, "update@example.com")

	name := "Grace Hopper"
	inactive := false
	links := models.SocialMediaLinks{TwitterURL: "https://twitter.com/grace"}

	updated, err := repo.Update(ctx, user.ID, UserUpdate{
		Fullname:         &name,
		IsActive:         &inactive,
		SocialMediaLinks: &links,
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Fullname)
	assert.False(t, updated.IsActive)

	reloaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, name, reloaded.Fullname)
	assert.False(t, reloaded.IsActive)
	assert.Equal(t, links, reloaded.SocialMediaLinks)
	assert.Equal(t, models.UserRoleUser, reloaded.Role)

	_, err = repo.Update(ctx, "missing", UserUpdate{Fullname: &name})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_GetProfilePreloadsRestaurants(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	users := NewUserRepository(db)
	restaurants := NewRestaurantRepository(db)

	user := seedUser(t, users, "owner@example.com")
	require.NoError(t, restaurants.Create(ctx, &models.Restaurant{
		ID: ids.New(), UserID: user.ID, Name: "Kebab House", Address: "Main street 1", Email: "kebab@example.com",
	}))

	profile, err := users.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, profile.Restaurants, 1)
	assert.Equal(t, "Kebab House", profile.Restaurants[0].Name)
}

func newToken(userID string, expiresAt time.Time) *models.RefreshToken {
	return &models.RefreshToken{
		ID:        ids.New(),
		Token:     ids.New(),
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
}

func TestRefreshTokenRepository_SingleLiveTokenPerUser(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	user := seedUser(t, NewUserRepository(db), "session@example.com")
	repo := NewRefreshTokenRepository(db)
	now := time.Now().UTC()

	require.NoError(t, repo.Persist(ctx, newToken(user.ID, now.Add(time.Hour)), now))

	err := repo.Persist(ctx, newToken(user.ID, now.Add(time.Hour)), now)
	require.Error(t, err)
	assert.True(t, IsDuplicateOn(err, "user_id"))
}

func TestRefreshTokenRepository_PersistReplacesExpired(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	user := seedUser(t, NewUserRepository(db), "expired@example.com")
	repo := NewRefreshTokenRepository(db)
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, newToken(user.ID, now.Add(-time.Minute))))

	_, err := repo.FindActiveByUser(ctx, user.ID, now)
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)

	fresh := newToken(user.ID, now.Add(time.Hour))
	require.NoError(t, repo.Persist(ctx, fresh, now))

	active, err := repo.FindActiveByUser(ctx, user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, fresh.Token, active.Token)
}

func TestRefreshTokenRepository_Rotate(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	user := seedUser(t, NewUserRepository(db), "rotate@example.com")
	repo := NewRefreshTokenRepository(db)
	now := time.Now().UTC()

	old := newToken(user.ID, now.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, old))

	next := newToken(user.ID, now.Add(2*time.Hour))
	require.NoError(t, repo.Rotate(ctx, old.ID, next))

	_, err := repo.FindByTokenAndUser(ctx, old.Token, user.ID)
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)

	row, err := repo.FindByTokenAndUser(ctx, next.Token, user.ID)
	require.NoError(t, err)
	assert.Equal(t, next.ID, row.ID)

	err = repo.Rotate(ctx, old.ID, newToken(user.ID, now.Add(time.Hour)))
	assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
}

func TestRefreshTokenRepository_Deletes(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	users := NewUserRepository(db)
	repo := NewRefreshTokenRepository(db)
	now := time.Now().UTC()

	alice := seedUser(t, users, "alice@example.com")
	bob := seedUser(t, users, "bob@example.com")
	require.NoError(t, repo.Create(ctx, newToken(alice.ID, now.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, newToken(bob.ID, now.Add(-time.Hour))))

	purged, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	revoked, err := repo.DeleteByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, revoked)

	revoked, err = repo.DeleteByUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, revoked)
}

func TestRestaurantRepository_OwnershipScope(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	users := NewUserRepository(db)
	repo := NewRestaurantRepository(db)

	owner := seedUser(t, users, "owner@example.com")
	other := seedUser(t, users, "other@example.com")

	phone := "+905551112233"
	restaurant := models.Restaurant{
		ID: ids.New(), UserID: owner.ID, Name: "Meze", Address: "Harbour road 5", PhoneNumber: &phone, Email: "meze@example.com",
	}
	require.NoError(t, repo.Create(ctx, &restaurant))

	_, err := repo.GetOwned(ctx, restaurant.ID, other.ID)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, restaurant.ID, other.ID), ErrRestaurantNotFound)

	got, err := repo.GetOwned(ctx, restaurant.ID, owner.ID)
	require.NoError(t, err)
	got.Name = "Meze Bar"
	require.NoError(t, repo.Update(ctx, &got))

	list, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Meze Bar", list[0].Name)

	require.NoError(t, repo.Delete(ctx, restaurant.ID, owner.ID))
	_, err = repo.GetOwned(ctx, restaurant.ID, owner.ID)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}

func TestRestaurantRepository_UniqueContactFields(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	owner := seedUser(t, NewUserRepository(db), "chain@example.com")
	repo := NewRestaurantRepository(db)

	phone := "+905551112233"
	require.NoError(t, repo.Create(ctx, &models.Restaurant{
		ID: ids.New(), UserID: owner.ID, Name: "First", Address: "Street 10", PhoneNumber: &phone, Email: "first@example.com",
	}))

	inUse, err := repo.PhoneInUse(ctx, phone)
	require.NoError(t, err)
	assert.True(t, inUse)

	inUse, err = repo.EmailInUse(ctx, "first@example.com")
	require.NoError(t, err)
	assert.True(t, inUse)

	err = repo.Create(ctx, &models.Restaurant{
		ID: ids.New(), UserID: owner.ID, Name: "Second", Address: "Street 11", PhoneNumber: &phone, Email: "second@example.com",
	})
	assert.True(t, IsDuplicateOn(err, "phone_number"))

	// Restaurants without a phone number do not collide.
	require.NoError(t, repo.Create(ctx, &models.Restaurant{
		ID: ids.New(), UserID: owner.ID, Name: "Third", Address: "Street 12", Email: "third@example.com",
	}))
	require.NoError(t, repo.Create(ctx, &models.Restaurant{
		ID: ids.New(), UserID: owner.ID, Name: "Fourth", Address: "Street 13", Email: "fourth@example.com",
	}))
}
