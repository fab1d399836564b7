package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/models"
)

// ListRepository is the list registry: it owns List entities and enforces
// the membership invariants (ownership, dedup, 250-member cap). The
// member-count check and the insert are atomic per list.
type ListRepository interface {
	CreateList(ctx context.Context, list *models.List) error
	FindByID(ctx context.Context, listID int64) (*models.List, error)
	FindByOwner(ctx context.Context, ownerID int64) ([]*models.List, error)
	FindMemberIDs(ctx context.Context, listID int64) ([]int64, error)
	// AppendMember fails with ErrNotFound when the list is absent,
	// ErrPermissionDenied when the caller is not the owner, ErrAlreadyExists
	// on duplicate membership and ErrCapacityExceeded past the cap.
	AppendMember(ctx context.Context, listID, callerID, memberID int64) error
	// RemoveMember of a non-member is a no-op, not an error.
	RemoveMember(ctx context.Context, listID, callerID, memberID int64) error
	DeleteList(ctx context.Context, listID, callerID int64) error
	UpdateList(ctx context.Context, listID, callerID int64, title string, publicity models.ListPublicity) (*models.List, error)
	// FindListIDsContaining returns the lists an account is a member of,
	// used by the write path to fan a new note into list caches.
	FindListIDsContaining(ctx context.Context, accountID int64) ([]int64, error)
}

// PostgresListRepository implements ListRepository for PostgreSQL.
type PostgresListRepository struct {
	db *gorm.DB
}

// NewPostgresListRepository creates a new PostgresListRepository.
func NewPostgresListRepository(db *gorm.DB) *PostgresListRepository {
	return &PostgresListRepository{db: db}
}

func (r *PostgresListRepository) CreateList(ctx context.Context, list *models.List) error {
	if list.Publicity == "" {
		list.Publicity = models.ListPrivate
	}
	return r.db.WithContext(ctx).Create(list).Error
}

func (r *PostgresListRepository) FindByID(ctx context.Context, listID int64) (*models.List, error) {
	return findList(r.db.WithContext(ctx), listID)
}

func findList(db *gorm.DB, listID int64) (*models.List, error) {
	var list models.List
	if err := db.First(&list, "id = ?", listID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: list %d", apperrors.ErrNotFound, listID)
		}
		return nil, err
	}
	return &list, nil
}

func (r *PostgresListRepository) FindByOwner(ctx context.Context, ownerID int64) ([]*models.List, error) {
	var lists []*models.List
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&lists).Error
	return lists, err
}

func (r *PostgresListRepository) FindMemberIDs(ctx context.Context, listID int64) ([]int64, error) {
	if _, err := r.FindByID(ctx, listID); err != nil {
		return nil, err
	}
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.ListMember{}).
		Where("list_id = ?", listID).
		Pluck("account_id", &ids).Error
	return ids, err
}

func (r *PostgresListRepository) AppendMember(ctx context.Context, listID, callerID, memberID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locking the list row serializes concurrent appends so the cap
		// check and the insert cannot race.
		list, err := findList(tx.Clauses(clause.Locking{Strength: "UPDATE"}), listID)
		if err != nil {
			return err
		}
		if list.OwnerID != callerID {
			return fmt.Errorf("%w: list %d", apperrors.ErrPermissionDenied, listID)
		}

		var existing int64
		if err := tx.Model(&models.ListMember{}).
			Where("list_id = ? AND account_id = ?", listID, memberID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: account %d on list %d", apperrors.ErrAlreadyExists, memberID, listID)
		}

		var count int64
		if err := tx.Model(&models.ListMember{}).Where("list_id = ?", listID).Count(&count).Error; err != nil {
			return err
		}
		if count >= models.MaxListMembers {
			return fmt.Errorf("%w: list %d is full", apperrors.ErrCapacityExceeded, listID)
		}

		return tx.Create(&models.ListMember{ListID: listID, AccountID: memberID}).Error
	})
}

func (r *PostgresListRepository) RemoveMember(ctx context.Context, listID, callerID, memberID int64) error {
	list, err := r.FindByID(ctx, listID)
	if err != nil {
		return err
	}
	if list.OwnerID != callerID {
		return fmt.Errorf("%w: list %d", apperrors.ErrPermissionDenied, listID)
	}
	return r.db.WithContext(ctx).
		Where("list_id = ? AND account_id = ?", listID, memberID).
		Delete(&models.ListMember{}).Error
}

func (r *PostgresListRepository) DeleteList(ctx context.Context, listID, callerID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		list, err := findList(tx, listID)
		if err != nil {
			return err
		}
		if list.OwnerID != callerID {
			return fmt.Errorf("%w: list %d", apperrors.ErrPermissionDenied, listID)
		}
		if err := tx.Where("list_id = ?", listID).Delete(&models.ListMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.List{}, "id = ?", listID).Error
	})
}

func (r *PostgresListRepository) UpdateList(ctx context.Context, listID, callerID int64, title string, publicity models.ListPublicity) (*models.List, error) {
	list, err := r.FindByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != callerID {
		return nil, fmt.Errorf("%w: list %d", apperrors.ErrPermissionDenied, listID)
	}

	updates := map[string]any{}
	if title != "" {
		updates["title"] = title
		list.Title = title
	}
	if publicity != "" {
		updates["publicity"] = publicity
		list.Publicity = publicity
	}
	if len(updates) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Model(&models.List{}).Where("id = ?", listID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PostgresListRepository) FindListIDsContaining(ctx context.Context, accountID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.ListMember{}).
		Where("account_id = ?", accountID).
		Pluck("list_id", &ids).Error
	return ids, err
}
