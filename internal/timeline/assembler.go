// Package timeline assembles the four chronological read views: account,
// home, list and public. All four flow through the same pipeline: collect
// candidates (cache-first where a cache scope exists), re-hydrate from the
// content store, re-check visibility, apply the optional media filters, and
// hand the canonical-ordered slice to the shared pagination window. The
// cache is never trusted for anything but IDs.
package timeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/cache"
	"github.com/corvid-labs/rookery/backend/internal/metrics"
	"github.com/corvid-labs/rookery/backend/internal/models"
	"github.com/corvid-labs/rookery/backend/internal/pagination"
	"github.com/corvid-labs/rookery/backend/internal/repositories"
	"github.com/corvid-labs/rookery/backend/internal/visibility"
)

// candidateLimit bounds how many notes a single view pulls from the content
// store before windowing.
const candidateLimit = cache.DefaultWindow

// Filters are the orthogonal pre-window filters every view supports.
type Filters struct {
	// OnlyMedia keeps only notes carrying at least one attachment.
	OnlyMedia bool
	// ExcludeSensitive drops notes with any sensitive-flagged attachment.
	ExcludeSensitive bool
}

// Assembler composes the content store, social graph, list registry and
// timeline cache into the four read paths.
type Assembler struct {
	notes  repositories.NoteRepository
	graph  repositories.FollowRepository
	lists  repositories.ListRepository
	cache  cache.TimelineCache
	logger *slog.Logger
}

// NewAssembler creates a new Assembler.
func NewAssembler(
	notes repositories.NoteRepository,
	graph repositories.FollowRepository,
	lists repositories.ListRepository,
	timelineCache cache.TimelineCache,
	logger *slog.Logger,
) *Assembler {
	return &Assembler{
		notes:  notes,
		graph:  graph,
		lists:  lists,
		cache:  timelineCache,
		logger: logger.With("component", "timeline.Assembler"),
	}
}

// internalize maps a collaborator failure to ErrInternal, leaving already
// typed errors untouched. Partial results are never returned alongside one.
func internalize(err error, op string) error {
	return fmt.Errorf("%w: %s: %v", apperrors.ErrInternal, op, err)
}

// Account returns accountID's public-facing timeline as seen by viewerID.
// Direct notes never appear here, not even the viewer's own; beyond that
// the full point-visibility predicate applies, with the follow edge
// resolved once per request rather than once per note.
func (a *Assembler) Account(ctx context.Context, accountID, viewerID int64, cursor *pagination.Cursor, limit int, filters Filters) ([]*models.Note, error) {
	metrics.TimelineReads.WithLabelValues("account").Inc()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidates, err := a.notes.FindByAuthor(ctx, accountID, candidateLimit)
	if err != nil {
		return nil, internalize(err, "fetch account candidates")
	}

	follows := false
	if viewerID != accountID {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		follows, err = a.graph.IsFollowing(ctx, viewerID, accountID)
		if err != nil {
			return nil, internalize(err, "resolve follow edge")
		}
	}
	isFollowing := func(int64, int64) bool { return follows }

	candidates = lo.Filter(candidates, func(n *models.Note, _ int) bool {
		return n.Visibility != models.VisibilityDirect && visibility.IsVisible(n, viewerID, isFollowing)
	})

	return a.window(ctx, candidates, cursor, limit, filters)
}

// Home returns the viewer's home timeline: notes from followed accounts
// plus the viewer's own, cache-first.
func (a *Assembler) Home(ctx context.Context, viewerID int64, cursor *pagination.Cursor, limit int, filters Filters) ([]*models.Note, error) {
	metrics.TimelineReads.WithLabelValues("home").Inc()

	candidates, err := a.cachedCandidates(ctx, cache.ScopeHome, viewerID, func(ctx context.Context) ([]*models.Note, error) {
		following, err := a.graph.GetFollowingIDs(ctx, viewerID)
		if err != nil {
			return nil, internalize(err, "fetch following set")
		}
		notes, err := a.notes.FindByAuthors(ctx, append(following, viewerID), candidateLimit)
		if err != nil {
			return nil, internalize(err, "fetch home candidates")
		}
		return notes, nil
	})
	if err != nil {
		return nil, err
	}

	candidates = lo.Filter(candidates, func(n *models.Note, _ int) bool {
		return visibility.VisibleInHomeFeed(n, viewerID)
	})

	return a.window(ctx, candidates, cursor, limit, filters)
}

// List returns the list's timeline. Private lists are readable only by
// their owner. Direct notes are excluded exactly as on home; duplicates
// across members cannot survive because candidates are deduplicated by ID
// before windowing.
func (a *Assembler) List(ctx context.Context, listID, viewerID int64, cursor *pagination.Cursor, limit int, filters Filters) ([]*models.Note, error) {
	metrics.TimelineReads.WithLabelValues("list").Inc()

	list, err := a.lists.FindByID(ctx, listID)
	if err != nil {
		return nil, err
	}
	if list.Publicity != models.ListPublic && list.OwnerID != viewerID {
		return nil, fmt.Errorf("%w: list %d", apperrors.ErrPermissionDenied, listID)
	}

	candidates, err := a.cachedCandidates(ctx, cache.ScopeList, listID, func(ctx context.Context) ([]*models.Note, error) {
		members, err := a.lists.FindMemberIDs(ctx, listID)
		if err != nil {
			return nil, err
		}
		notes, err := a.notes.FindByAuthors(ctx, members, candidateLimit)
		if err != nil {
			return nil, internalize(err, "fetch list candidates")
		}
		return notes, nil
	})
	if err != nil {
		return nil, err
	}

	candidates = lo.UniqBy(candidates, func(n *models.Note) int64 { return n.ID })
	candidates = lo.Filter(candidates, func(n *models.Note, _ int) bool {
		return visibility.VisibleInHomeFeed(n, viewerID)
	})

	return a.window(ctx, candidates, cursor, limit, filters)
}

// Public returns the firehose of public notes. No viewer-specific filtering
// beyond the store's deletion boundary.
func (a *Assembler) Public(ctx context.Context, cursor *pagination.Cursor, limit int, filters Filters) ([]*models.Note, error) {
	metrics.TimelineReads.WithLabelValues("public").Inc()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	candidates, err := a.notes.FindPublic(ctx, candidateLimit)
	if err != nil {
		return nil, internalize(err, "fetch public candidates")
	}

	return a.window(ctx, candidates, cursor, limit, filters)
}

// cachedCandidates resolves a scope's candidate notes: cached IDs
// re-hydrated through the content store when the entry exists, otherwise a
// full rebuild that repopulates the cache. Hydration silently drops IDs the
// store no longer returns, which is how a stale entry degrades -- missing
// notes, never unauthorized ones.
func (a *Assembler) cachedCandidates(ctx context.Context, scope cache.Scope, ownerID int64, rebuild func(context.Context) ([]*models.Note, error)) ([]*models.Note, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids, err := a.cache.Get(ctx, scope, ownerID)
	if err != nil {
		return nil, internalize(err, "cache get")
	}

	if len(ids) > 0 {
		metrics.CacheHits.WithLabelValues(string(scope)).Inc()
		notes, err := a.notes.FindManyByID(ctx, ids)
		if err != nil {
			return nil, internalize(err, "hydrate cached ids")
		}
		return notes, nil
	}

	metrics.CacheMisses.WithLabelValues(string(scope)).Inc()
	notes, err := rebuild(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.cache.Prime(ctx, scope, ownerID, notes); err != nil {
		// A failed repopulation costs the next reader a rebuild, nothing more.
		a.logger.Warn("cache repopulation failed", "scope", scope, "owner_id", ownerID, "error", err)
	}
	return notes, nil
}

// window applies the optional media filters and the shared pagination
// protocol to an assembled candidate set.
func (a *Assembler) window(ctx context.Context, candidates []*models.Note, cursor *pagination.Cursor, limit int, filters Filters) ([]*models.Note, error) {
	candidates, err := a.applyFilters(ctx, candidates, filters)
	if err != nil {
		return nil, err
	}

	pagination.SortCanonical(candidates)
	page := pagination.Window(candidates, cursor, limit)
	if page == nil {
		page = []*models.Note{}
	}
	return page, nil
}

func (a *Assembler) applyFilters(ctx context.Context, notes []*models.Note, filters Filters) ([]*models.Note, error) {
	if filters.OnlyMedia {
		notes = lo.Filter(notes, func(n *models.Note, _ int) bool {
			return len(n.AttachmentIDs) > 0
		})
	}
	if !filters.ExcludeSensitive {
		return notes, nil
	}

	withMedia := lo.FilterMap(notes, func(n *models.Note, _ int) (int64, bool) {
		return n.ID, len(n.AttachmentIDs) > 0
	})
	if len(withMedia) == 0 {
		return notes, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	attachments, err := a.notes.FindAttachments(ctx, withMedia)
	if err != nil {
		return nil, internalize(err, "fetch attachment metadata")
	}

	return lo.Filter(notes, func(n *models.Note, _ int) bool {
		for _, attachment := range attachments[n.ID] {
			if attachment.Sensitive {
				return false
			}
		}
		return true
	}), nil
}
