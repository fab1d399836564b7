package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/models"
)

// AccountRepository resolves the slim account profiles this service reads.
type AccountRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Account, error)
}

// PostgresAccountRepository implements AccountRepository for PostgreSQL.
type PostgresAccountRepository struct {
	db *gorm.DB
}

// NewPostgresAccountRepository creates a new PostgresAccountRepository.
func NewPostgresAccountRepository(db *gorm.DB) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

func (r *PostgresAccountRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: account %d", apperrors.ErrNotFound, id)
		}
		return nil, err
	}
	return &account, nil
}
