// Package notes owns the note write path: authoring, renotes, reactions
// and soft deletion, plus the cache fan-out and invalidation each of those
// implies. The cache work is best-effort by design -- readers re-check
// everything -- so fan-out failures are logged, never surfaced.
package notes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
	"github.com/corvid-labs/rookery/backend/internal/cache"
	"github.com/corvid-labs/rookery/backend/internal/id"
	"github.com/corvid-labs/rookery/backend/internal/metrics"
	"github.com/corvid-labs/rookery/backend/internal/models"
	"github.com/corvid-labs/rookery/backend/internal/repositories"
	"github.com/corvid-labs/rookery/backend/internal/visibility"
)

// Service is the note authoring service.
type Service struct {
	notes     repositories.NoteRepository
	graph     repositories.FollowRepository
	lists     repositories.ListRepository
	reactions repositories.ReactionRepository
	notifs    repositories.NotificationRepository
	cache     cache.TimelineCache
	ids       *id.Generator
	logger    *slog.Logger
}

// NewService creates a new Service.
func NewService(
	notes repositories.NoteRepository,
	graph repositories.FollowRepository,
	lists repositories.ListRepository,
	reactions repositories.ReactionRepository,
	notifs repositories.NotificationRepository,
	timelineCache cache.TimelineCache,
	ids *id.Generator,
	logger *slog.Logger,
) *Service {
	return &Service{
		notes:     notes,
		graph:     graph,
		lists:     lists,
		reactions: reactions,
		notifs:    notifs,
		cache:     timelineCache,
		ids:       ids,
		logger:    logger.With("component", "notes.Service"),
	}
}

// Create validates, persists and fans out a new note, and notifies any
// mentioned accounts.
func (s *Service) Create(ctx context.Context, authorID int64, req models.CreateNoteRequest) (*models.Note, error) {
	vis := models.Visibility(req.Visibility)
	if !vis.Valid() {
		return nil, fmt.Errorf("%w: unknown visibility %q", apperrors.ErrValidation, req.Visibility)
	}
	if vis == models.VisibilityDirect && req.RecipientID == 0 {
		return nil, fmt.Errorf("%w: direct notes require a recipient", apperrors.ErrValidation)
	}
	if vis != models.VisibilityDirect && req.RecipientID != 0 {
		return nil, fmt.Errorf("%w: only direct notes carry a recipient", apperrors.ErrValidation)
	}
	if len(req.AttachmentIDs) > models.MaxAttachments {
		return nil, fmt.Errorf("%w: at most %d attachments", apperrors.ErrValidation, models.MaxAttachments)
	}

	noteID, err := s.ids.Generate()
	if err != nil {
		return nil, fmt.Errorf("%w: generate note id: %v", apperrors.ErrInternal, err)
	}

	note := &models.Note{
		ID:            noteID,
		AuthorID:      authorID,
		Content:       req.Content,
		Visibility:    vis,
		RecipientID:   req.RecipientID,
		AttachmentIDs: req.AttachmentIDs,
		CreatedAt:     time.Now(),
	}
	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("%w: persist note: %v", apperrors.ErrInternal, err)
	}

	s.fanOut(ctx, note)

	for _, mentionID := range lo.Uniq(req.MentionIDs) {
		if mentionID == authorID {
			continue
		}
		s.notify(ctx, &models.Notification{
			RecipientID: mentionID,
			Type:        models.NotificationMentioned,
			ActorID:     authorID,
			SourceID:    note.ID,
		})
	}

	return note, nil
}

// Get returns a note if it is visible to the viewer. Invisible notes read
// as absent so existence is never leaked.
func (s *Service) Get(ctx context.Context, noteID, viewerID int64) (*models.Note, error) {
	return s.visibleNote(ctx, noteID, viewerID)
}

// Renote re-publishes a public or home note and notifies its author.
func (s *Service) Renote(ctx context.Context, authorID, sourceID int64) (*models.Note, error) {
	source, err := s.notes.FindByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source.Visibility != models.VisibilityPublic && source.Visibility != models.VisibilityHome {
		return nil, fmt.Errorf("%w: note %d cannot be renoted", apperrors.ErrPermissionDenied, sourceID)
	}

	noteID, err := s.ids.Generate()
	if err != nil {
		return nil, fmt.Errorf("%w: generate note id: %v", apperrors.ErrInternal, err)
	}

	note := &models.Note{
		ID:         noteID,
		AuthorID:   authorID,
		Visibility: source.Visibility,
		RenoteOfID: source.ID,
		CreatedAt:  time.Now(),
	}
	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("%w: persist renote: %v", apperrors.ErrInternal, err)
	}

	s.fanOut(ctx, note)

	if source.AuthorID != authorID {
		s.notify(ctx, &models.Notification{
			RecipientID: source.AuthorID,
			Type:        models.NotificationRenoted,
			ActorID:     authorID,
			SourceID:    source.ID,
			ActivityID:  note.ID,
		})
	}
	return note, nil
}

// Delete soft-deletes a caller-owned note and removes its ID from every
// cache scope it was fanned out to.
func (s *Service) Delete(ctx context.Context, noteID, callerID int64) error {
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return err
	}
	if note.AuthorID != callerID {
		return fmt.Errorf("%w: note %d", apperrors.ErrPermissionDenied, noteID)
	}
	if err := s.notes.DeleteByID(ctx, noteID); err != nil {
		return fmt.Errorf("%w: delete note: %v", apperrors.ErrInternal, err)
	}

	for _, t := range s.cacheTargets(ctx, note) {
		if err := s.cache.DeleteNotes(ctx, t.scope, t.ownerID, []int64{note.ID}); err != nil {
			s.logger.Warn("cache invalidation failed", "scope", t.scope, "owner_id", t.ownerID, "error", err)
		}
	}
	return nil
}

// React records an emoji reaction and notifies the note's author. The note
// must be visible to the reacting account; an invisible note reads as
// absent.
func (s *Service) React(ctx context.Context, noteID, accountID int64, emoji string) error {
	note, err := s.visibleNote(ctx, noteID, accountID)
	if err != nil {
		return err
	}

	reactionID, err := s.ids.Generate()
	if err != nil {
		return fmt.Errorf("%w: generate reaction id: %v", apperrors.ErrInternal, err)
	}
	reaction := &models.Reaction{
		ID:        reactionID,
		NoteID:    noteID,
		AccountID: accountID,
		Emoji:     emoji,
		CreatedAt: time.Now(),
	}
	if err := s.reactions.CreateReaction(ctx, reaction); err != nil {
		return err
	}

	if note.AuthorID != accountID {
		s.notify(ctx, &models.Notification{
			RecipientID: note.AuthorID,
			Type:        models.NotificationReacted,
			ActorID:     accountID,
			SourceID:    note.ID,
			ActivityID:  reaction.ID,
		})
	}
	return nil
}

// Unreact removes the account's reaction from a note.
func (s *Service) Unreact(ctx context.Context, noteID, accountID int64) error {
	if _, err := s.visibleNote(ctx, noteID, accountID); err != nil {
		return err
	}
	return s.reactions.DeleteReaction(ctx, noteID, accountID)
}

func (s *Service) visibleNote(ctx context.Context, noteID, accountID int64) (*models.Note, error) {
	note, err := s.notes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	visible := visibility.IsVisible(note, accountID, func(viewerID, authorID int64) bool {
		follows, err := s.graph.IsFollowing(ctx, viewerID, authorID)
		return err == nil && follows
	})
	if !visible {
		return nil, fmt.Errorf("%w: note %d", apperrors.ErrNotFound, noteID)
	}
	return note, nil
}

type cacheTarget struct {
	scope   cache.Scope
	ownerID int64
}

// cacheTargets resolves the cache scopes a note belongs to: the author's
// own home entry, the recipient's for a direct note or the followers' for
// anything else, and the list entries of lists the author is on.
func (s *Service) cacheTargets(ctx context.Context, note *models.Note) []cacheTarget {
	targets := []cacheTarget{{cache.ScopeHome, note.AuthorID}}

	if note.Visibility == models.VisibilityDirect {
		return append(targets, cacheTarget{cache.ScopeHome, note.RecipientID})
	}

	followerIDs, err := s.graph.GetFollowerIDs(ctx, note.AuthorID)
	if err != nil {
		s.logger.Warn("follower fan-out skipped", "note_id", note.ID, "error", err)
	}
	for _, followerID := range followerIDs {
		targets = append(targets, cacheTarget{cache.ScopeHome, followerID})
	}

	listIDs, err := s.lists.FindListIDsContaining(ctx, note.AuthorID)
	if err != nil {
		s.logger.Warn("list fan-out skipped", "note_id", note.ID, "error", err)
	}
	for _, listID := range listIDs {
		targets = append(targets, cacheTarget{cache.ScopeList, listID})
	}
	return targets
}

// fanOut merges the note into every target entry the cache already tracks.
// Owners who never read their timeline have no entry, and fan-out must not
// create one: a single-note entry would masquerade as the complete feed on
// their first read.
func (s *Service) fanOut(ctx context.Context, note *models.Note) {
	batch := []*models.Note{note}
	for _, t := range s.cacheTargets(ctx, note) {
		if err := s.cache.AddNotes(ctx, t.scope, t.ownerID, batch); err != nil {
			s.logger.Warn("cache fan-out failed", "scope", t.scope, "owner_id", t.ownerID, "error", err)
			continue
		}
		metrics.NotesFannedOut.Inc()
	}
}

// notify writes a notification, logging instead of failing the triggering
// request when the store misbehaves.
func (s *Service) notify(ctx context.Context, notification *models.Notification) {
	notificationID, err := s.ids.Generate()
	if err != nil {
		s.logger.Warn("notification dropped", "type", notification.Type, "error", err)
		return
	}
	notification.ID = notificationID
	notification.CreatedAt = time.Now()
	if err := s.notifs.Create(ctx, notification); err != nil {
		s.logger.Warn("notification dropped", "type", notification.Type, "error", err)
	}
}
