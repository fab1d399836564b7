package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/models"
)

// NotificationRepository stores per-recipient notification streams. Read
// state is monotonic: MarkRead sets read_at once and never clears it.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	// FindByRecipient returns up to limit notifications in canonical order.
	FindByRecipient(ctx context.Context, recipientID int64, limit int) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, recipientID int64) (int64, error)
	MarkRead(ctx context.Context, recipientID, notificationID int64) error
	MarkAllRead(ctx context.Context, recipientID int64) error
}

// PostgresNotificationRepository implements NotificationRepository for PostgreSQL.
type PostgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository.
func NewPostgresNotificationRepository(db *gorm.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *PostgresNotificationRepository) FindByRecipient(ctx context.Context, recipientID int64, limit int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (r *PostgresNotificationRepository) UnreadCount(ctx context.Context, recipientID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error
	return count, err
}

// MarkRead is idempotent: marking an already-read notification succeeds
// without touching the original read_at.
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, recipientID, notificationID int64) error {
	var notification models.Notification
	err := r.db.WithContext(ctx).
		First(&notification, "id = ? AND recipient_id = ?", notificationID, recipientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: notification %d", apperrors.ErrNotFound, notificationID)
		}
		return err
	}
	if notification.ReadAt != nil {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND read_at IS NULL", notificationID).
		Update("read_at", time.Now()).Error
}

func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, recipientID int64) error {
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Update("read_at", time.Now()).Error
}
