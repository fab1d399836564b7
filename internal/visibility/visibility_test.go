package visibility

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/rookery/backend/internal/models"
)

const (
	author    int64 = 1
	follower  int64 = 2
	stranger  int64 = 3
	recipient int64 = 4
)

func followsAuthor(viewerID, authorID int64) bool {
	return viewerID == follower && authorID == author
}

func note(v models.Visibility) *models.Note {
	n := &models.Note{ID: 100, AuthorID: author, Visibility: v}
	if v == models.VisibilityDirect {
		n.RecipientID = recipient
	}
	return n
}

func TestIsVisible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		visibility models.Visibility
		viewerID   int64
		want       bool
	}{
		{"public seen by stranger", models.VisibilityPublic, stranger, true},
		{"public seen by follower", models.VisibilityPublic, follower, true},
		{"public seen by author", models.VisibilityPublic, author, true},
		{"home seen by stranger", models.VisibilityHome, stranger, true},
		{"home seen by follower", models.VisibilityHome, follower, true},
		{"home seen by author", models.VisibilityHome, author, true},
		{"followers hidden from stranger", models.VisibilityFollowers, stranger, false},
		{"followers seen by follower", models.VisibilityFollowers, follower, true},
		{"followers seen by author", models.VisibilityFollowers, author, true},
		{"direct hidden from stranger", models.VisibilityDirect, stranger, false},
		{"direct hidden from follower", models.VisibilityDirect, follower, false},
		{"direct seen by recipient", models.VisibilityDirect, recipient, true},
		{"direct seen by author", models.VisibilityDirect, author, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := IsVisible(note(tt.visibility), tt.viewerID, followsAuthor)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestIsVisible_AuthorSeesOwnSoftDeletePending(t *testing.T) {
	t.Parallel()

	// Deletion filtering happens at the store boundary; the engine itself
	// never inspects DeletedAt.
	n := note(models.VisibilityDirect)
	deleted := n.CreatedAt
	n.DeletedAt = &deleted
	require.True(t, IsVisible(n, author, followsAuthor))
}

func TestVisibleInHomeFeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		visibility models.Visibility
		viewerID   int64
		want       bool
	}{
		{"public passes", models.VisibilityPublic, stranger, true},
		{"home passes", models.VisibilityHome, stranger, true},
		{"followers passes without graph query", models.VisibilityFollowers, stranger, true},
		{"direct rejected for non-recipient", models.VisibilityDirect, follower, false},
		{"direct passes for recipient", models.VisibilityDirect, recipient, true},
		{"direct passes for author", models.VisibilityDirect, author, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, VisibleInHomeFeed(note(tt.visibility), tt.viewerID))
		})
	}
}
