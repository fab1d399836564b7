// Package pagination implements the cursor windowing protocol shared by
// every timeline view and the notification reader. The windowing arithmetic
// lives here exactly once; resource code supplies a canonically ordered
// candidate slice and never re-derives slice bounds itself.
package pagination

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
)

// Item is anything that can be windowed: a unique ID plus a creation time.
type Item interface {
	PageID() int64
	PageCreatedAt() time.Time
}

// Direction selects which side of the cursor a window covers.
type Direction string

const (
	// Before requests items strictly older than the cursor.
	Before Direction = "before"
	// After requests items strictly newer than the cursor.
	After Direction = "after"
)

// Cursor marks a position in a canonically ordered collection.
type Cursor struct {
	Direction Direction
	ID        int64
}

// Per-resource limits.
const (
	TimelineDefaultLimit     = 20
	TimelineMaxLimit         = 40
	NotificationDefaultLimit = 30
	NotificationMaxLimit     = 50
)

// FromParams builds a cursor from the before_id / after_id query
// parameters. Supplying both is an invalid range, never silently resolved.
// A nil cursor with nil error means an unpaginated first page.
func FromParams(beforeID, afterID string) (*Cursor, error) {
	if beforeID != "" && afterID != "" {
		return nil, fmt.Errorf("%w: before_id and after_id are mutually exclusive", apperrors.ErrInvalidRange)
	}

	raw, direction := beforeID, Before
	if afterID != "" {
		raw, direction = afterID, After
	}
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cursor %q", apperrors.ErrInvalidRange, raw)
	}
	return &Cursor{Direction: direction, ID: id}, nil
}

// ClampLimit parses a limit query parameter, falling back to def when
// absent or non-positive and capping at max.
func ClampLimit(raw string, def, max int) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// Canonical order: descending by creation time, ties broken by descending ID.
func canonicalCompare[T Item](a, b T) int {
	if c := b.PageCreatedAt().Compare(a.PageCreatedAt()); c != 0 {
		return c
	}
	switch {
	case b.PageID() > a.PageID():
		return 1
	case b.PageID() < a.PageID():
		return -1
	}
	return 0
}

// SortCanonical sorts items into canonical (newest-first) order in place.
// Callers sort their own freshly assembled slices, never shared state.
func SortCanonical[T Item](items []T) {
	slices.SortFunc(items, canonicalCompare)
}

// Window returns up to limit items around the cursor. The input must
// already be in canonical order; the result stays newest-first and never
// includes the cursor item itself. A cursor ID absent from the candidate
// set (deleted, filtered, or plain wrong) is positioned by ID comparison --
// IDs are coarsely time-ordered -- so pagination keeps walking instead of
// failing; an empty window is a valid result, not an error.
func Window[T Item](items []T, cursor *Cursor, limit int) []T {
	if limit < 0 {
		limit = 0
	}
	if cursor == nil {
		return items[:min(limit, len(items))]
	}

	// anchor is the index of the first item at or past the cursor position:
	// the cursor item itself when present, otherwise the first strictly
	// older item. IDs are only coarsely time-ordered, so they may interleave
	// with the canonical createdAt order; the exact-match scan must cover the
	// whole slice before the positional fallback may run, or an interleaved
	// cursor item would be misread as absent and leak into its own page.
	anchor := -1
	exact := false
	for i, item := range items {
		if item.PageID() == cursor.ID {
			anchor, exact = i, true
			break
		}
	}
	if anchor < 0 {
		anchor = len(items)
		for i, item := range items {
			if item.PageID() < cursor.ID {
				anchor = i
				break
			}
		}
	}

	switch cursor.Direction {
	case After:
		// The limit items immediately newer than the cursor: window the
		// ascending view just past the cursor, which on a descending slice
		// is the tail of the prefix ending at the anchor.
		return items[max(0, anchor-limit):anchor]
	default:
		start := anchor
		if exact {
			start++
		}
		return items[start:min(start+limit, len(items))]
	}
}
