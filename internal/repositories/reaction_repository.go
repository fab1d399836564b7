package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/models"
)

// ReactionRepository stores emoji reactions, one per account per note.
type ReactionRepository interface {
	CreateReaction(ctx context.Context, reaction *models.Reaction) error
	DeleteReaction(ctx context.Context, noteID, accountID int64) error
	HasReacted(ctx context.Context, noteID, accountID int64) (bool, error)
	CountByNote(ctx context.Context, noteID int64) (int64, error)
}

// PostgresReactionRepository implements ReactionRepository for PostgreSQL.
type PostgresReactionRepository struct {
	db *gorm.DB
}

// NewPostgresReactionRepository creates a new PostgresReactionRepository.
func NewPostgresReactionRepository(db *gorm.DB) *PostgresReactionRepository {
	return &PostgresReactionRepository{db: db}
}

func (r *PostgresReactionRepository) CreateReaction(ctx context.Context, reaction *models.Reaction) error {
	reacted, err := r.HasReacted(ctx, reaction.NoteID, reaction.AccountID)
	if err != nil {
		return err
	}
	if reacted {
		return fmt.Errorf("%w: reaction on note %d", apperrors.ErrAlreadyExists, reaction.NoteID)
	}
	return r.db.WithContext(ctx).Create(reaction).Error
}

func (r *PostgresReactionRepository) DeleteReaction(ctx context.Context, noteID, accountID int64) error {
	res := r.db.WithContext(ctx).
		Where("note_id = ? AND account_id = ?", noteID, accountID).
		Delete(&models.Reaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: reaction on note %d", apperrors.ErrNotFound, noteID)
	}
	return nil
}

func (r *PostgresReactionRepository) HasReacted(ctx context.Context, noteID, accountID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("note_id = ? AND account_id = ?", noteID, accountID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresReactionRepository) CountByNote(ctx context.Context, noteID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Reaction{}).
		Where("note_id = ?", noteID).
		Count(&count).Error
	return count, err
}
