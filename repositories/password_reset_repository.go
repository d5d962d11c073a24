package repositories

import (
	"context"
	"time"

	"journal-api/models"

	"gorm.io/gorm"
)

type PasswordResetRepository interface {
	Create(ctx context.Context, reset *models.PasswordReset) error
	GetActive(ctx context.Context, now time.Time) ([]models.PasswordReset, error)
	RevokeForUser(ctx context.Context, userID uint) error
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	return r.db.WithContext(ctx).Create(reset).Error
}

// GetActive returns unrevoked, unexpired tokens, newest first.
func (r *passwordResetRepository) GetActive(ctx context.Context, now time.Time) ([]models.PasswordReset, error) {
	var resets []models.PasswordReset
	err := r.db.WithContext(ctx).
		Where("revoked = ? AND expires_at > ?", false, now).
		Order("created_at desc").
		Find(&resets).Error
	return resets, err
}

func (r *passwordResetRepository) RevokeForUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Model(&models.PasswordReset{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}
