package repositories

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/models"
)

// MemoryListRepository is the in-process reference implementation of the
// list registry. A single mutex makes every membership mutation atomic,
// mirroring what the Postgres implementation achieves with row locks. Used
// by tests and single-node deployments.
type MemoryListRepository struct {
	mu      sync.Mutex
	lists   map[int64]*models.List
	members map[int64][]int64 // listID -> account IDs in append order
}

var _ ListRepository = (*MemoryListRepository)(nil)

// NewMemoryListRepository creates an empty MemoryListRepository.
func NewMemoryListRepository() *MemoryListRepository {
	return &MemoryListRepository{
		lists:   make(map[int64]*models.List),
		members: make(map[int64][]int64),
	}
}

func (r *MemoryListRepository) CreateList(_ context.Context, list *models.List) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lists[list.ID]; ok {
		return fmt.Errorf("%w: list %d", apperrors.ErrAlreadyExists, list.ID)
	}
	if list.Publicity == "" {
		list.Publicity = models.ListPrivate
	}
	if list.CreatedAt.IsZero() {
		list.CreatedAt = time.Now()
	}
	stored := *list
	r.lists[list.ID] = &stored
	return nil
}

func (r *MemoryListRepository) FindByID(_ context.Context, listID int64) (*models.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findLocked(listID)
}

func (r *MemoryListRepository) findLocked(listID int64) (*models.List, error) {
	list, ok := r.lists[listID]
	if !ok {
		return nil, fmt.Errorf("%w: list %d", apperrors.ErrNotFound, listID)
	}
	copied := *list
	return &copied, nil
}

func (r *MemoryListRepository) FindByOwner(_ context.Context, ownerID int64) ([]*models.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.List
	for _, list := range r.lists {
		if list.OwnerID == ownerID {
			copied := *list
			out = append(out, &copied)
		}
	}
	slices.SortFunc(out, func(a, b *models.List) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case b.ID > a.ID:
			return 1
		case b.ID < a.ID:
			return -1
		}
		return 0
	})
	return out, nil
}

func (r *MemoryListRepository) FindMemberIDs(_ context.Context, listID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.findLocked(listID); err != nil {
		return nil, err
	}
	return slices.Clone(r.members[listID]), nil
}

func (r *MemoryListRepository) AppendMember(_ context.Context, listID, callerID, memberID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.lists[listID]
	if !ok {
		return fmt.Errorf("%w: list %d", apperrors.ErrNotFound, listID)
	}
	if list.OwnerID != callerID {
		return fmt.Errorf("%w: list %d", apperrors.ErrPermissionDenied, listID)
	}

	members := r.members[listID]
	if slices.Contains(members, memberID) {
		return fmt.Errorf("%w: account %d on list %d", apperrors.ErrAlreadyExists, memberID, listID)
	}
	if len(members) >= models.MaxListMembers {
		return fmt.Errorf("%w: list %d is full", apperrors.ErrCapacityExceeded, listID)
	}

	r.members[listID] = append(members, memberID)
	return nil
}

func (r *MemoryListRepository) RemoveMember(_ context.Context, listID, callerID, memberID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.lists[listID]
	if !ok {
		return fmt.Errorf("%w: list %d", apperrors.ErrNotFound, listID)
	}
	if list.OwnerID != callerID {
		return fmt.Errorf("%w: list %d", apperrors.ErrPermissionDenied, listID)
	}

	members := r.members[listID]
	if i := slices.Index(members, memberID); i >= 0 {
		r.members[listID] = slices.Delete(members, i, i+1)
	}
	return nil
}

func (r *MemoryListRepository) DeleteList(_ context.Context, listID, callerID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.lists[listID]
	if !ok {
		return fmt.Errorf("%w: list %d", apperrors.ErrNotFound, listID)
	}
	if list.OwnerID != callerID {
		return fmt.Errorf("%w: list %d", apperrors.ErrPermissionDenied, listID)
	}
	delete(r.lists, listID)
	delete(r.members, listID)
	return nil
}

func (r *MemoryListRepository) UpdateList(_ context.Context, listID, callerID int64, title string, publicity models.ListPublicity) (*models.List, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, ok := r.lists[listID]
	if !ok {
		return nil, fmt.Errorf("%w: list %d", apperrors.ErrNotFound, listID)
	}
	if list.OwnerID != callerID {
		return nil, fmt.Errorf("%w: list %d", apperrors.ErrPermissionDenied, listID)
	}

	if title != "" {
		list.Title = title
	}
	if publicity != "" {
		list.Publicity = publicity
	}
	copied := *list
	return &copied, nil
}

func (r *MemoryListRepository) FindListIDsContaining(_ context.Context, accountID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ids []int64
	for listID, members := range r.members {
		if slices.Contains(members, accountID) {
			ids = append(ids, listID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
