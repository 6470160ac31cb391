package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/necatisahhin/zeroAiBackend/internal/ids"
	"github.com/necatisahhin/zeroAiBackend/internal/models"
	"github.com/necatisahhin/zeroAiBackend/internal/repository"
)

type RestaurantStore interface {
	Create(ctx context.Context, restaurant *models.Restaurant) error
	GetOwned(ctx context.Context, id string, userID string) (models.Restaurant, error)
	PhoneInUse(ctx context.Context, phone string) (bool, error)
	EmailInUse(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, restaurant *models.Restaurant) error
	Delete(ctx context.Context, id string, userID string) error
}

// RestaurantService manages restaurants on behalf of their owner. Another
// user's restaurant is reported as not found.
type RestaurantService struct {
	restaurants RestaurantStore
	log         zerolog.Logger
}

func NewRestaurantService(restaurants RestaurantStore, log zerolog.Logger) *RestaurantService {
	return &RestaurantService{restaurants: restaurants, log: log}
}

type CreateRestaurantInput struct {
	Name        string
	Address     string
	PhoneNumber *string
	Email       string
}

func (s *RestaurantService) Create(ctx context.Context, userID string, input CreateRestaurantInput) (models.Restaurant, error) {
	restaurant := models.Restaurant{
		ID:          ids.New(),
		UserID:      userID,
		Name:        strings.TrimSpace(input.Name),
		Address:     strings.TrimSpace(input.Address),
		PhoneNumber: normalizePhone(input.PhoneNumber),
		Email:       strings.TrimSpace(input.Email),
	}

	if err := s.checkContacts(ctx, restaurant.PhoneNumber, restaurant.Email); err != nil {
		return models.Restaurant{}, err
	}

	if err := s.restaurants.Create(ctx, &restaurant); err != nil {
		return models.Restaurant{}, mapRestaurantErr(err)
	}

	s.log.Info().Str("user_id", userID).Str("restaurant_id", restaurant.ID).Msg("restaurant created")
	return restaurant, nil
}

type UpdateRestaurantInput struct {
	ID          string
	Name        *string
	Address     *string
	PhoneNumber *string
	Email       *string
}

func (s *RestaurantService) Update(ctx context.Context, userID string, input UpdateRestaurantInput) (models.Restaurant, error) {
	restaurant, err := s.restaurants.GetOwned(ctx, input.ID, userID)
	if err != nil {
		return models.Restaurant{}, mapRestaurantErr(err)
	}

	var (
		newPhone *string
		newEmail string
	)
	if phone := normalizePhone(input.PhoneNumber); phone != nil && (restaurant.PhoneNumber == nil || *phone != *restaurant.PhoneNumber) {
		newPhone = phone
	}
	if input.Email != nil {
		if email := strings.TrimSpace(*input.Email); email != "" && email != restaurant.Email {
			newEmail = email
		}
	}
	if err := s.checkContacts(ctx, newPhone, newEmail); err != nil {
		return models.Restaurant{}, err
	}

	if input.Name != nil {
		restaurant.Name = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		restaurant.Address = strings.TrimSpace(*input.Address)
	}
	if newPhone != nil {
		restaurant.PhoneNumber = newPhone
	}
	if newEmail != "" {
		restaurant.Email = newEmail
	}

	if err := s.restaurants.Update(ctx, &restaurant); err != nil {
		return models.Restaurant{}, mapRestaurantErr(err)
	}

	s.log.Info().Str("user_id", userID).Str("restaurant_id", restaurant.ID).Msg("restaurant updated")
	return restaurant, nil
}

func (s *RestaurantService) Delete(ctx context.Context, userID string, id string) error {
	if err := s.restaurants.Delete(ctx, id, userID); err != nil {
		return mapRestaurantErr(err)
	}

	s.log.Info().Str("user_id", userID).Str("restaurant_id", id).Msg("restaurant deleted")
	return nil
}

// checkContacts answers the common conflict case with a precise error; the
// unique indexes still catch races.
func (s *RestaurantService) checkContacts(ctx context.Context, phone *string, email string) error {
	if phone != nil {
		inUse, err := s.restaurants.PhoneInUse(ctx, *phone)
		if err != nil {
			return fmt.Errorf("check phone: %w", err)
		}
		if inUse {
			return ErrPhoneInUse
		}
	}
	if email != "" {
		inUse, err := s.restaurants.EmailInUse(ctx, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if inUse {
			return ErrRestaurantEmailInUse
		}
	}
	return nil
}

func mapRestaurantErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrRestaurantNotFound):
		return ErrRestaurantNotFound
	case repository.IsDuplicateOn(err, "phone_number"):
		return ErrPhoneInUse
	case repository.IsDuplicateOn(err, "email"):
		return ErrRestaurantEmailInUse
	default:
		return err
	}
}

func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*phone)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
