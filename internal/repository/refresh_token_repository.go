package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/necatisahhin/zeroAiBackend/internal/models"
)

type RefreshTokenRepository struct {
	db *gorm.DB
}

func NewRefreshTokenRepository(db *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return classify(r.db.WithContext(ctx).Create(token).Error)
}

// FindActiveByUser returns the user's unexpired refresh token, if any.
func (r *RefreshTokenRepository) FindActiveByUser(ctx context.Context, userID string, now time.Time) (models.RefreshToken, error) {
	var token models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		First(&token).Error
	if err != nil {
		return models.RefreshToken{}, notFound(err, ErrRefreshTokenNotFound)
	}
	return token, nil
}

func (r *RefreshTokenRepository) FindByTokenAndUser(ctx context.Context, token string, userID string) (models.RefreshToken, error) {
	var row models.RefreshToken
	err := r.db.WithContext(ctx).
		Where("token = ? AND user_id = ?", token, userID).
		First(&row).Error
	if err != nil {
		return models.RefreshToken{}, notFound(err, ErrRefreshTokenNotFound)
	}
	return row, nil
}

func (r *RefreshTokenRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}

// Persist stores a freshly issued token. Expired rows of the same user are
// dropped in the same transaction so they cannot trip the per-user unique
// index; a live row still does and surfaces as ErrDuplicate.
func (r *RefreshTokenRepository) Persist(ctx context.Context, token *models.RefreshToken, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND expires_at <= ?", token.UserID, now).
			Delete(&models.RefreshToken{}).Error; err != nil {
			return err
		}
		return classify(tx.Create(token).Error)
	})
}

// Rotate replaces the row oldID with next atomically. A row already removed
// by a concurrent rotation or logout yields ErrRefreshTokenNotFound.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldID string, next *models.RefreshToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", oldID).Delete(&models.RefreshToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRefreshTokenNotFound
		}
		return classify(tx.Create(next).Error)
	})
}
