package repositories

import (
	"context"

	"journal-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	GetCandidatesFor(ctx context.Context, userID uint) ([]models.Notification, error)
	GetAll(ctx context.Context) ([]models.Notification, error)
	Delete(ctx context.Context, id uint) error
	GetReadIDs(ctx context.Context, userID uint, ids []uint) (map[uint]bool, error)
	MarkRead(ctx context.Context, userID uint, ids ...uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).First(&notification, id).Error
	return &notification, err
}

// GetCandidatesFor returns notifications addressed to the user plus every
// broadcast, newest first. Role filtering of broadcasts happens in Go since
// target roles live in a JSON column.
func (r *notificationRepository) GetCandidatesFor(ctx context.Context, userID uint) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? OR recipient_id IS NULL", userID).
		Order("created_at desc").
		Order("id desc").
		Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) GetAll(ctx context.Context) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).Order("created_at desc").Order("id desc").Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notification_id = ?", id).Delete(&models.NotificationRead{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Notification{}, id).Error
	})
}

func (r *notificationRepository) GetReadIDs(ctx context.Context, userID uint, ids []uint) (map[uint]bool, error) {
	read := make(map[uint]bool)
	if len(ids) == 0 {
		return read, nil
	}

	var rows []models.NotificationRead
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND notification_id IN ?", userID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		read[row.NotificationID] = true
	}
	return read, nil
}

// MarkRead records the reads; already-read notifications are left alone.
func (r *notificationRepository) MarkRead(ctx context.Context, userID uint, ids ...uint) error {
	if len(ids) == 0 {
		return nil
	}
	rows := make([]models.NotificationRead, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, models.NotificationRead{NotificationID: id, UserID: userID})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
