package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/models"
)

const (
	owner    int64 = 1
	intruder int64 = 2
)

func newListFixture(t *testing.T) (*MemoryListRepository, *models.List) {
	t.Helper()
	repo := NewMemoryListRepository()
	list := &models.List{ID: 10, OwnerID: owner, Title: "close friends"}
	require.NoError(t, repo.CreateList(context.Background(), list))
	return repo, list
}

func TestMemoryListRepository_AppendMember(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, list := newListFixture(t)

	require.NoError(t, repo.AppendMember(ctx, list.ID, owner, 100))

	members, err := repo.FindMemberIDs(ctx, list.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{100}, members)
}

func TestMemoryListRepository_AppendMemberErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, list := newListFixture(t)
	require.NoError(t, repo.AppendMember(ctx, list.ID, owner, 100))

	t.Run("missing list", func(t *testing.T) {
		require.ErrorIs(t, repo.AppendMember(ctx, 999, owner, 100), apperrors.ErrNotFound)
	})
	t.Run("non-owner", func(t *testing.T) {
		require.ErrorIs(t, repo.AppendMember(ctx, list.ID, intruder, 101), apperrors.ErrPermissionDenied)
	})
	t.Run("duplicate member", func(t *testing.T) {
		require.ErrorIs(t, repo.AppendMember(ctx, list.ID, owner, 100), apperrors.ErrAlreadyExists)

		members, err := repo.FindMemberIDs(ctx, list.ID)
		require.NoError(t, err)
		require.Equal(t, []int64{100}, members, "duplicate append must not corrupt state")
	})
}

func TestMemoryListRepository_CapacityInvariant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, list := newListFixture(t)

	for i := 0; i < models.MaxListMembers; i++ {
		require.NoError(t, repo.AppendMember(ctx, list.ID, owner, int64(1000+i)))
	}

	err := repo.AppendMember(ctx, list.ID, owner, 9999)
	require.ErrorIs(t, err, apperrors.ErrCapacityExceeded)

	members, err := repo.FindMemberIDs(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, members, models.MaxListMembers, "failed append leaves the set unchanged")
}

func TestMemoryListRepository_ConcurrentAppendsRespectCap(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, list := newListFixture(t)

	for i := 0; i < models.MaxListMembers-1; i++ {
		require.NoError(t, repo.AppendMember(ctx, list.ID, owner, int64(1000+i)))
	}

	// Two concurrent appends race for the final slot; exactly one may win.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.AppendMember(ctx, list.ID, owner, int64(5000+i))
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, apperrors.ErrCapacityExceeded)
			failures++
		}
	}
	require.Equal(t, 1, failures)

	members, err := repo.FindMemberIDs(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, members, models.MaxListMembers)
}

func TestMemoryListRepository_RemoveMember(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, list := newListFixture(t)
	require.NoError(t, repo.AppendMember(ctx, list.ID, owner, 100))

	require.NoError(t, repo.RemoveMember(ctx, list.ID, owner, 100))
	// Removing a non-member is a no-op.
	require.NoError(t, repo.RemoveMember(ctx, list.ID, owner, 100))

	require.ErrorIs(t, repo.RemoveMember(ctx, 999, owner, 100), apperrors.ErrNotFound)
	require.ErrorIs(t, repo.RemoveMember(ctx, list.ID, intruder, 100), apperrors.ErrPermissionDenied)
}

func TestMemoryListRepository_AppendAfterRemoveSucceeds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, list := newListFixture(t)

	require.NoError(t, repo.AppendMember(ctx, list.ID, owner, 100))
	require.NoError(t, repo.RemoveMember(ctx, list.ID, owner, 100))
	require.NoError(t, repo.AppendMember(ctx, list.ID, owner, 100))

	members, err := repo.FindMemberIDs(ctx, list.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{100}, members)
}

func TestMemoryListRepository_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, list := newListFixture(t)

	updated, err := repo.UpdateList(ctx, list.ID, owner, "mutuals", models.ListPublic)
	require.NoError(t, err)
	require.Equal(t, "mutuals", updated.Title)
	require.Equal(t, models.ListPublic, updated.Publicity)
	require.Equal(t, owner, updated.OwnerID, "ownership is immutable")

	_, err = repo.UpdateList(ctx, list.ID, intruder, "stolen", "")
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	require.ErrorIs(t, repo.DeleteList(ctx, list.ID, intruder), apperrors.ErrPermissionDenied)
	require.NoError(t, repo.DeleteList(ctx, list.ID, owner))

	_, err = repo.FindByID(ctx, list.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMemoryListRepository_FindListIDsContaining(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, list := newListFixture(t)

	other := &models.List{ID: 11, OwnerID: owner, Title: "art"}
	require.NoError(t, repo.CreateList(ctx, other))

	require.NoError(t, repo.AppendMember(ctx, list.ID, owner, 100))
	require.NoError(t, repo.AppendMember(ctx, other.ID, owner, 100))
	require.NoError(t, repo.AppendMember(ctx, other.ID, owner, 200))

	ids, err := repo.FindListIDsContaining(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 11}, ids)

	ids, err = repo.FindListIDsContaining(ctx, 300)
	require.NoError(t, err)
	require.Empty(t, ids)
}
