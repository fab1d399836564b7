package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/models"
)

// FollowRequestRepository stores pending follows toward locked accounts.
type FollowRequestRepository interface {
	Create(ctx context.Context, request *models.FollowRequest) error
	Find(ctx context.Context, requesterID, targetID int64) (*models.FollowRequest, error)
	FindByTarget(ctx context.Context, targetID int64) ([]*models.FollowRequest, error)
	Delete(ctx context.Context, requesterID, targetID int64) error
}

// PostgresFollowRequestRepository implements FollowRequestRepository for PostgreSQL.
type PostgresFollowRequestRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRequestRepository creates a new PostgresFollowRequestRepository.
func NewPostgresFollowRequestRepository(db *gorm.DB) *PostgresFollowRequestRepository {
	return &PostgresFollowRequestRepository{db: db}
}

func (r *PostgresFollowRequestRepository) Create(ctx context.Context, request *models.FollowRequest) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FollowRequest{}).
		Where("requester_id = ? AND target_id = ?", request.RequesterID, request.TargetID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: follow request %d -> %d", apperrors.ErrAlreadyExists, request.RequesterID, request.TargetID)
	}
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *PostgresFollowRequestRepository) Find(ctx context.Context, requesterID, targetID int64) (*models.FollowRequest, error) {
	var request models.FollowRequest
	err := r.db.WithContext(ctx).
		First(&request, "requester_id = ? AND target_id = ?", requesterID, targetID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: follow request %d -> %d", apperrors.ErrNotFound, requesterID, targetID)
		}
		return nil, err
	}
	return &request, nil
}

func (r *PostgresFollowRequestRepository) FindByTarget(ctx context.Context, targetID int64) ([]*models.FollowRequest, error) {
	var requests []*models.FollowRequest
	err := r.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	return requests, err
}

func (r *PostgresFollowRequestRepository) Delete(ctx context.Context, requesterID, targetID int64) error {
	res := r.db.WithContext(ctx).
		Where("requester_id = ? AND target_id = ?", requesterID, targetID).
		Delete(&models.FollowRequest{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: follow request %d -> %d", apperrors.ErrNotFound, requesterID, targetID)
	}
	return nil
}
