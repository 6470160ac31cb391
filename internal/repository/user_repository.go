package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/necatisahhin/zeroAiBackend/internal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return classify(r.db.WithContext(ctx).Omit("Restaurants").Create(user).Error)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return models.User{}, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return models.User{}, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// GetProfile loads the user together with the restaurants it owns.
func (r *UserRepository) GetProfile(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Restaurants", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&user, "id = ?", id).Error
	if err != nil {
		return models.User{}, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// UserUpdate holds the profile fields that may change; nil means untouched.
type UserUpdate struct {
	Fullname         *string
	SocialMediaLinks *models.SocialMediaLinks
	IsActive         *bool
	Role             *models.UserRole
}

func (u UserUpdate) apply(user *models.User) []string {
	var columns []string
	if u.Fullname != nil {
		user.Fullname = *u.Fullname
		columns = append(columns, "fullname")
	}
	if u.SocialMediaLinks != nil {
		user.SocialMediaLinks = *u.SocialMediaLinks
		columns = append(columns, "social_media_links")
	}
	if u.IsActive != nil {
		user.IsActive = *u.IsActive
		columns = append(columns, "is_active")
	}
	if u.Role != nil {
		user.Role = *u.Role
		columns = append(columns, "role")
	}
	return columns
}

func (r *UserRepository) Update(ctx context.Context, id string, update UserUpdate) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}

		columns := update.apply(&user)
		if len(columns) == 0 {
			return nil
		}
		return tx.Model(&user).Select(columns).Updates(&user).Error
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
