// Package cache holds the materialized timeline index: per-scope ordered
// note-ID lists consulted by the assembler before it falls back to the
// content store. The cache is a hint, never a source of truth -- it stores
// IDs only, and readers re-hydrate and re-check visibility on every read,
// so staleness can cost completeness but never leak a note.
package cache

import (
	"context"

	"github.com/corvid-labs/rookery/backend/internal/models"
)

// Scope identifies which kind of timeline an entry belongs to.
type Scope string

const (
	ScopeHome Scope = "home"
	ScopeList Scope = "list"
)

// DefaultWindow bounds how many note IDs a single entry retains.
const DefaultWindow = 400

// TimelineCache is the contract between the write path (fan-out) and the
// read path (assembler). Implementations must serialize concurrent writers
// on the same (scope, ownerID) key; distinct keys are independent.
//
// Only the read path creates entries: an entry exists once a rebuild has
// Primed it with a full candidate set, and fan-out merges into entries
// that already exist. A fan-out insert that created the entry would leave
// a single-note index the next read mistakes for a complete one.
type TimelineCache interface {
	// Prime seeds the entry with a freshly rebuilt candidate set, creating
	// it when absent.
	Prime(ctx context.Context, scope Scope, ownerID int64, notes []*models.Note) error

	// AddNotes merges the given notes into an existing entry, keeping it
	// newest-first, deduplicated and bounded. A never-primed entry is left
	// alone.
	AddNotes(ctx context.Context, scope Scope, ownerID int64, notes []*models.Note) error

	// Get returns the entry's note IDs, newest-first. A missing entry is an
	// empty slice, not an error.
	Get(ctx context.Context, scope Scope, ownerID int64) ([]int64, error)

	// DeleteNotes removes the given note IDs from the entry. Unknown IDs
	// are ignored.
	DeleteNotes(ctx context.Context, scope Scope, ownerID int64, noteIDs []int64) error

	// Evict drops the whole entry. Used for opportunistic trimming on
	// unfollow and list deletion; the next read rebuilds it.
	Evict(ctx context.Context, scope Scope, ownerID int64) error
}
