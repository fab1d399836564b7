package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/models"
)

// FollowRepository is the social-graph gateway: the only follow-graph
// questions the rest of the service is allowed to ask.
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.FollowEdge) error
	DeleteFollow(ctx context.Context, followerID, followingID int64) error
	IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error)
	GetFollowerIDs(ctx context.Context, accountID int64) ([]int64, error)
	GetFollowingIDs(ctx context.Context, accountID int64) ([]int64, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL.
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository.
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.FollowEdge) error {
	existing, err := r.IsFollowing(ctx, follow.FollowerID, follow.FollowingID)
	if err != nil {
		return err
	}
	if existing {
		return fmt.Errorf("%w: already following %d", apperrors.ErrAlreadyExists, follow.FollowingID)
	}
	return r.db.WithContext(ctx).Create(follow).Error
}

// DeleteFollow soft-deletes the edge; gorm's DeletedAt handles the stamp.
func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID int64) error {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.FollowEdge{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: follow edge %d -> %d", apperrors.ErrNotFound, followerID, followingID)
	}
	return nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.FollowEdge{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowerIDs(ctx context.Context, accountID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.FollowEdge{}).
		Where("following_id = ?", accountID).
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, accountID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.FollowEdge{}).
		Where("follower_id = ?", accountID).
		Pluck("following_id", &ids).Error
	return ids, err
}
