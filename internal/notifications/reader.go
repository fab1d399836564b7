// Package notifications reads per-recipient notification streams through
// the same cursor pagination protocol the timelines use.
package notifications

import (
	"context"
	"fmt"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/metrics"
	"github.com/corvid-labs/rookery/backend/internal/models"
	"github.com/corvid-labs/rookery/backend/internal/pagination"
	"github.com/corvid-labs/rookery/backend/internal/repositories"
)

// candidateLimit bounds how many notifications one page fetch pulls from
// the store before windowing.
const candidateLimit = 400

// Reader serves paginated notification pages and read-state mutations.
type Reader struct {
	repo repositories.NotificationRepository
}

// NewReader creates a new Reader.
func NewReader(repo repositories.NotificationRepository) *Reader {
	return &Reader{repo: repo}
}

// Page returns up to limit notifications around the cursor, newest-first.
func (r *Reader) Page(ctx context.Context, recipientID int64, cursor *pagination.Cursor, limit int) ([]*models.Notification, error) {
	metrics.NotificationReads.Inc()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidates, err := r.repo.FindByRecipient(ctx, recipientID, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch notifications: %v", apperrors.ErrInternal, err)
	}

	pagination.SortCanonical(candidates)
	page := pagination.Window(candidates, cursor, limit)
	if page == nil {
		page = []*models.Notification{}
	}
	return page, nil
}

// UnreadCount returns how many of the recipient's notifications are unread.
func (r *Reader) UnreadCount(ctx context.Context, recipientID int64) (int64, error) {
	return r.repo.UnreadCount(ctx, recipientID)
}

// MarkRead marks one of the recipient's notifications as read. Read state
// is monotonic; re-marking is a no-op.
func (r *Reader) MarkRead(ctx context.Context, recipientID, notificationID int64) error {
	return r.repo.MarkRead(ctx, recipientID, notificationID)
}

// MarkAllRead marks every unread notification of the recipient as read.
func (r *Reader) MarkAllRead(ctx context.Context, recipientID int64) error {
	return r.repo.MarkAllRead(ctx, recipientID)
}
