package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/necatisahhin/zeroAiBackend/internal/models"
)

type RestaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

func (r *RestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	return classify(r.db.WithContext(ctx).Create(restaurant).Error)
}

// GetOwned returns the restaurant only when userID owns it.
func (r *RestaurantRepository) GetOwned(ctx context.Context, id string, userID string) (models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&restaurant).Error
	if err != nil {
		return models.Restaurant{}, notFound(err, ErrRestaurantNotFound)
	}
	return restaurant, nil
}

func (r *RestaurantRepository) PhoneInUse(ctx context.Context, phone string) (bool, error) {
	return r.exists(ctx, "phone_number = ?", phone)
}

func (r *RestaurantRepository) EmailInUse(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *RestaurantRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Restaurant{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *RestaurantRepository) Update(ctx context.Context, restaurant *models.Restaurant) error {
	return classify(r.db.WithContext(ctx).
		Model(restaurant).
		Select("name", "address", "phone_number", "email").
		Updates(restaurant).Error)
}

func (r *RestaurantRepository) Delete(ctx context.Context, id string, userID string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Restaurant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

func (r *RestaurantRepository) ListByUser(ctx context.Context, userID string) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&restaurants).Error
	return restaurants, err
}
