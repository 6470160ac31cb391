package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/necatisahhin/zeroAiBackend/internal/ids"
	"github.com/necatisahhin/zeroAiBackend/internal/models"
	"github.com/necatisahhin/zeroAiBackend/internal/repository"
	"github.com/necatisahhin/zeroAiBackend/internal/security"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetProfile(ctx context.Context, id string) (models.User, error)
	Update(ctx context.Context, id string, update repository.UserUpdate) (models.User, error)
}

type UserService struct {
	users  UserStore
	hasher *security.PasswordHasher
	log    zerolog.Logger
}

func NewUserService(users UserStore, hasher *security.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, log: log}
}

type RegisterInput struct {
	Fullname         string
	Email            string
	Password         string
	SocialMediaLinks *models.SocialMediaLinks
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	email := normalizeEmail(input.Email)

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return models.User{}, ErrEmailInUse
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: hash,
		Fullname:     input.Fullname,
		Role:         models.UserRoleUser,
		IsActive:     true,
	}
	if input.SocialMediaLinks != nil {
		user.SocialMediaLinks = *input.SocialMediaLinks
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.User{}, ErrEmailInUse
		}
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("user registered")
	return user, nil
}

// GetProfile returns the user with its restaurants. Inactive accounts are refused.
func (s *UserService) GetProfile(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return models.User{}, mapUserErr(err)
	}
	if !user.IsActive {
		return models.User{}, ErrProfileInactive
	}
	return user, nil
}

// ProfileUpdate carries the fields a user may change; nil leaves a field as is.
type ProfileUpdate struct {
	Fullname         *string
	SocialMediaLinks *models.SocialMediaLinks
	IsActive         *bool
	Role             *models.UserRole
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (models.User, error) {
	current, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, mapUserErr(err)
	}
	if !current.IsActive {
		return models.User{}, ErrProfileInactive
	}

	user, err := s.users.Update(ctx, userID, repository.UserUpdate{
		Fullname:         update.Fullname,
		SocialMediaLinks: update.SocialMediaLinks,
		IsActive:         update.IsActive,
		Role:             update.Role,
	})
	if err != nil {
		return models.User{}, mapUserErr(err)
	}

	s.log.Info().Str("user_id", userID).Msg("user profile updated")
	return user, nil
}

func mapUserErr(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}
