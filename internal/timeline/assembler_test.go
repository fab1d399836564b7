package timeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/cache"
	"github.com/corvid-labs/rookery/backend/internal/models"
	"github.com/corvid-labs/rookery/backend/internal/pagination"
	"github.com/corvid-labs/rookery/backend/internal/repositories"
)

const (
	author   int64 = 1
	follower int64 = 2
	stranger int64 = 3
	buddy    int64 = 4 // second author followed by follower
)

var base = time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)

type fakeNoteRepo struct {
	notes       map[int64]*models.Note
	attachments map[int64][]models.Attachment
	err         error
}

func newFakeNoteRepo(notes ...*models.Note) *fakeNoteRepo {
	repo := &fakeNoteRepo{
		notes:       make(map[int64]*models.Note),
		attachments: make(map[int64][]models.Attachment),
	}
	for _, n := range notes {
		repo.notes[n.ID] = n
	}
	return repo
}

func (r *fakeNoteRepo) live(keep func(*models.Note) bool) []*models.Note {
	var out []*models.Note
	for _, n := range r.notes {
		if n.DeletedAt == nil && keep(n) {
			out = append(out, n)
		}
	}
	pagination.SortCanonical(out)
	return out
}

func (r *fakeNoteRepo) CreateNote(_ context.Context, note *models.Note) error {
	r.notes[note.ID] = note
	return nil
}

func (r *fakeNoteRepo) FindByID(_ context.Context, id int64) (*models.Note, error) {
	n, ok := r.notes[id]
	if !ok || n.DeletedAt != nil {
		return nil, apperrors.ErrNotFound
	}
	return n, nil
}

func (r *fakeNoteRepo) FindManyByID(_ context.Context, ids []int64) ([]*models.Note, error) {
	if r.err != nil {
		return nil, r.err
	}
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return r.live(func(n *models.Note) bool { return wanted[n.ID] }), nil
}

func (r *fakeNoteRepo) FindByAuthor(_ context.Context, authorID int64, _ int64) ([]*models.Note, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.live(func(n *models.Note) bool { return n.AuthorID == authorID }), nil
}

func (r *fakeNoteRepo) FindByAuthors(_ context.Context, authorIDs []int64, _ int64) ([]*models.Note, error) {
	if r.err != nil {
		return nil, r.err
	}
	wanted := make(map[int64]bool, len(authorIDs))
	for _, id := range authorIDs {
		wanted[id] = true
	}
	return r.live(func(n *models.Note) bool { return wanted[n.AuthorID] }), nil
}

func (r *fakeNoteRepo) FindPublic(_ context.Context, _ int64) ([]*models.Note, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.live(func(n *models.Note) bool { return n.Visibility == models.VisibilityPublic }), nil
}

func (r *fakeNoteRepo) DeleteByID(_ context.Context, id int64) error {
	n, ok := r.notes[id]
	if !ok || n.DeletedAt != nil {
		return apperrors.ErrNotFound
	}
	now := time.Now()
	n.DeletedAt = &now
	return nil
}

func (r *fakeNoteRepo) FindAttachments(_ context.Context, noteIDs []int64) (map[int64][]models.Attachment, error) {
	out := make(map[int64][]models.Attachment)
	for _, id := range noteIDs {
		if a, ok := r.attachments[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

type fakeGraph struct {
	// follower -> followees
	following map[int64][]int64
	err       error
}

func (g *fakeGraph) CreateFollow(context.Context, *models.FollowEdge) error { return nil }
func (g *fakeGraph) DeleteFollow(context.Context, int64, int64) error       { return nil }

func (g *fakeGraph) IsFollowing(_ context.Context, followerID, followingID int64) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	for _, id := range g.following[followerID] {
		if id == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (g *fakeGraph) GetFollowerIDs(_ context.Context, accountID int64) ([]int64, error) {
	var out []int64
	for followerID, followees := range g.following {
		for _, id := range followees {
			if id == accountID {
				out = append(out, followerID)
			}
		}
	}
	return out, nil
}

func (g *fakeGraph) GetFollowingIDs(_ context.Context, accountID int64) ([]int64, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.following[accountID], nil
}

func note(noteID int64, authorID int64, vis models.Visibility, day int) *models.Note {
	return &models.Note{
		ID:         noteID,
		AuthorID:   authorID,
		Visibility: vis,
		CreatedAt:  base.AddDate(0, 0, day),
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAssembler(notes *fakeNoteRepo, graph *fakeGraph, lists repositories.ListRepository) (*Assembler, cache.TimelineCache) {
	if lists == nil {
		lists = repositories.NewMemoryListRepository()
	}
	c := cache.NewMemoryCache(0)
	return NewAssembler(notes, graph, lists, c, testLogger()), c
}

func noteIDs(notes []*models.Note) []int64 {
	out := make([]int64, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

// Account timeline, contract example: notes 1-4 created on consecutive
// days, note 4 direct. before_id=2 returns exactly note 1, and the direct
// note never appears, even for its author.
func TestAccount_ContractExample(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	direct := note(4, author, models.VisibilityDirect, 4)
	direct.RecipientID = follower
	repo := newFakeNoteRepo(
		note(1, author, models.VisibilityPublic, 1),
		note(2, author, models.VisibilityPublic, 2),
		note(3, author, models.VisibilityPublic, 3),
		direct,
	)
	a, _ := newAssembler(repo, &fakeGraph{}, nil)

	page, err := a.Account(ctx, author, author, &pagination.Cursor{Direction: pagination.Before, ID: 2}, 20, Filters{})
	require.NoError(t, err)
	require.Equal(t, []int64{1}, noteIDs(page))

	page, err = a.Account(ctx, author, author, nil, 20, Filters{})
	require.NoError(t, err)
	require.Equal(t, []int64{3, 2, 1}, noteIDs(page), "direct note excluded from the author's own account timeline")
}

func TestAccount_FollowersOnlyVisibility(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newFakeNoteRepo(
		note(1, author, models.VisibilityPublic, 1),
		note(2, author, models.VisibilityFollowers, 2),
	)
	graph := &fakeGraph{following: map[int64][]int64{follower: {author}}}
	a, _ := newAssembler(repo, graph, nil)

	page, err := a.Account(ctx, author, stranger, nil, 20, Filters{})
	require.NoError(t, err)
	require.Equal(t, []int64{1}, noteIDs(page))

	page, err = a.Account(ctx, author, follower, nil, 20, Filters{})
	require.NoError(t, err)
	require.Equal(t, []int64{2, 1}, noteIDs(page))
}

func TestHome_RebuildOnMissAndRepopulate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	directToFollower := note(4, author, models.VisibilityDirect, 4)
	directToFollower.RecipientID = follower
	directElsewhere := note(5, author, models.VisibilityDirect, 5)
	directElsewhere.RecipientID = stranger

	repo := newFakeNoteRepo(
		note(1, author, models.VisibilityPublic, 1),
		note(2, follower, models.VisibilityHome, 2), // viewer's own note
		note(3, stranger, models.VisibilityPublic, 3),
		directToFollower,
		directElsewhere,
	)
	graph := &fakeGraph{following: map[int64][]int64{follower: {author}}}
	a, c := newAssembler(repo, graph, nil)

	page, err := a.Home(ctx, follower, nil, 20, Filters{})
	require.NoError(t, err)
	require.Equal(t, []int64{4, 2, 1}, noteIDs(page),
		"followed author + own notes, direct-to-viewer kept, others out")

	ids, err := c.Get(ctx, cache.ScopeHome, follower)
	require.NoError(t, err)
	require.NotEmpty(t, ids, "miss repopulates the cache")
}

func TestHome_StaleCacheEntryDegradesSafely(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	kept := note(1, author, models.VisibilityPublic, 1)
	deleted := note(2, author, models.VisibilityPublic, 2)
	repo := newFakeNoteRepo(kept, deleted)
	graph := &fakeGraph{following: map[int64][]int64{follower: {author}}}
	a, c := newAssembler(repo, graph, nil)

	require.NoError(t, c.Prime(ctx, cache.ScopeHome, follower, []*models.Note{kept, deleted}))
	require.NoError(t, repo.DeleteByID(ctx, deleted.ID))

	page, err := a.Home(ctx, follower, nil, 20, Filters{})
	require.NoError(t, err)
	require.Equal(t, []int64{1}, noteIDs(page), "hydration drops the soft-deleted ID the cache still holds")
}

// A write-path insert that lands before the owner's first home read must
// not stand in for the timeline: the first read still rebuilds the full
// candidate set, older notes included.
func TestHome_FanOutBeforeFirstReadDoesNotShadowRebuild(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	older := note(1, author, models.VisibilityPublic, 1)
	fresh := note(2, author, models.VisibilityPublic, 2)
	repo := newFakeNoteRepo(older, fresh)
	graph := &fakeGraph{following: map[int64][]int64{follower: {author}}}
	a, c := newAssembler(repo, graph, nil)

	// The follower has never fetched home; fan-out pushes the fresh note.
	require.NoError(t, c.AddNotes(ctx, cache.ScopeHome, follower, []*models.Note{fresh}))

	page, err := a.Home(ctx, follower, nil, 20, Filters{})
	require.NoError(t, err)
	require.Equal(t, []int64{2, 1}, noteIDs(page), "first read rebuilds, nothing is lost")
}

func TestList_Timeline(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	direct := note(3, author, models.VisibilityDirect, 3)
	direct.RecipientID = stranger
	repo := newFakeNoteRepo(
		note(1, author, models.VisibilityPublic, 1),
		note(2, buddy, models.VisibilityHome, 2),
		direct,
		note(4, stranger, models.VisibilityPublic, 4), // not a member
	)

	lists := repositories.NewMemoryListRepository()
	require.NoError(t, lists.CreateList(ctx, &models.List{ID: 50, OwnerID: follower, Title: "mutuals"}))
	require.NoError(t, lists.AppendMember(ctx, 50, follower, author))
	require.NoError(t, lists.AppendMember(ctx, 50, follower, buddy))

	a, _ := newAssembler(repo, &fakeGraph{}, lists)

	page, err := a.List(ctx, 50, follower, nil, 20, Filters{})
	require.NoError(t, err)
	require.Equal(t, []int64{2, 1}, noteIDs(page), "members' notes only, direct excluded")
}

func TestList_Permissions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	lists := repositories.NewMemoryListRepository()
	require.NoError(t, lists.CreateList(ctx, &models.List{ID: 50, OwnerID: follower, Title: "private", Publicity: models.ListPrivate}))
	require.NoError(t, lists.CreateList(ctx, &models.List{ID: 51, OwnerID: follower, Title: "open", Publicity: models.ListPublic}))

	a, _ := newAssembler(newFakeNoteRepo(), &fakeGraph{}, lists)

	_, err := a.List(ctx, 50, stranger, nil, 20, Filters{})
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = a.List(ctx, 51, stranger, nil, 20, Filters{})
	require.NoError(t, err)

	_, err = a.List(ctx, 999, follower, nil, 20, Filters{})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPublic_OnlyPublicNotes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newFakeNoteRepo(
		note(1, author, models.VisibilityPublic, 1),
		note(2, author, models.VisibilityHome, 2),
		note(3, author, models.VisibilityFollowers, 3),
		note(4, stranger, models.VisibilityPublic, 4),
	)
	a, _ := newAssembler(repo, &fakeGraph{}, nil)

	page, err := a.Public(ctx, nil, 20, Filters{})
	require.NoError(t, err)
	require.Equal(t, []int64{4, 1}, noteIDs(page))
}

func TestFilters_MediaAndSensitive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	plain := note(1, author, models.VisibilityPublic, 1)
	withMedia := note(2, author, models.VisibilityPublic, 2)
	withMedia.AttachmentIDs = []int64{201}
	sensitive := note(3, author, models.VisibilityPublic, 3)
	sensitive.AttachmentIDs = []int64{301}

	repo := newFakeNoteRepo(plain, withMedia, sensitive)
	repo.attachments[2] = []models.Attachment{{ID: 201, NoteID: 2}}
	repo.attachments[3] = []models.Attachment{{ID: 301, NoteID: 3, Sensitive: true}}

	a, _ := newAssembler(repo, &fakeGraph{}, nil)

	page, err := a.Public(ctx, nil, 20, Filters{OnlyMedia: true})
	require.NoError(t, err)
	require.Equal(t, []int64{3, 2}, noteIDs(page))

	page, err = a.Public(ctx, nil, 20, Filters{ExcludeSensitive: true})
	require.NoError(t, err)
	require.Equal(t, []int64{2, 1}, noteIDs(page))

	page, err = a.Public(ctx, nil, 20, Filters{OnlyMedia: true, ExcludeSensitive: true})
	require.NoError(t, err)
	require.Equal(t, []int64{2}, noteIDs(page))
}

func TestCollaboratorFailureIsInternal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := newFakeNoteRepo()
	repo.err = errors.New("store unreachable")
	a, _ := newAssembler(repo, &fakeGraph{}, nil)

	_, err := a.Public(ctx, nil, 20, Filters{})
	require.ErrorIs(t, err, apperrors.ErrInternal)

	_, err = a.Account(ctx, author, author, nil, 20, Filters{})
	require.ErrorIs(t, err, apperrors.ErrInternal)
}

func TestCancelledContextAborts(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a, _ := newAssembler(newFakeNoteRepo(), &fakeGraph{}, nil)

	_, err := a.Home(ctx, follower, nil, 20, Filters{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestEmptyPageIsSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	a, _ := newAssembler(newFakeNoteRepo(), &fakeGraph{}, nil)

	page, err := a.Public(ctx, nil, 20, Filters{})
	require.NoError(t, err)
	require.NotNil(t, page)
	require.Empty(t, page)
}
