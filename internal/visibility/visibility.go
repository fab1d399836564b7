// Package visibility decides whether a viewer may see a note. It is pure:
// the follow graph is injected as a function value, nothing here performs
// I/O, and soft-deletion filtering is the store's job, not this package's.
package visibility

import "github.com/corvid-labs/rookery/backend/internal/models"

// FollowFunc reports whether viewerID follows authorID. The social graph
// gateway satisfies it; tests pass a literal.
type FollowFunc func(viewerID, authorID int64) bool

// IsVisible reports whether the viewer may see the note. Rules are
// evaluated in order: the author always sees their own notes, direct notes
// are recipient-only, public and home notes are visible to anyone, and
// followers notes require a live viewer->author edge.
func IsVisible(note *models.Note, viewerID int64, isFollowing FollowFunc) bool {
	if viewerID == note.AuthorID {
		return true
	}
	switch note.Visibility {
	case models.VisibilityDirect:
		return viewerID == note.RecipientID
	case models.VisibilityPublic, models.VisibilityHome:
		return true
	case models.VisibilityFollowers:
		return isFollowing(viewerID, note.AuthorID)
	}
	return false
}

// VisibleInHomeFeed is the narrow predicate applied after a note has
// already been selected into a viewer's home candidate set, i.e. the author
// is known-followed or is the viewer. It only rejects direct notes not
// addressed to the viewer, which avoids re-querying the follow graph for
// every home-feed item.
func VisibleInHomeFeed(note *models.Note, viewerID int64) bool {
	if note.Visibility != models.VisibilityDirect {
		return true
	}
	return viewerID == note.AuthorID || viewerID == note.RecipientID
}
