package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/corvid-labs/rookery/backend/internal/apperrors"
)

type entry struct {
	id      int64
	created time.Time
}

func (e entry) PageID() int64            { return e.id }
func (e entry) PageCreatedAt() time.Time { return e.created }

var base = time.Date(2025, 9, 10, 0, 0, 0, 0, time.UTC)

// entries returns ids 1..n, id i created i days after base, in canonical
// (newest-first) order.
func entries(n int) []entry {
	out := make([]entry, 0, n)
	for i := n; i >= 1; i-- {
		out = append(out, entry{id: int64(i), created: base.AddDate(0, 0, i)})
	}
	return out
}

func ids(items []entry) []int64 {
	out := make([]int64, len(items))
	for i, e := range items {
		out[i] = e.id
	}
	return out
}

func TestWindow_FirstPage(t *testing.T) {
	t.Parallel()

	items := entries(4)
	require.Equal(t, []int64{4, 3}, ids(Window(items, nil, 2)))
	require.Equal(t, []int64{4, 3, 2, 1}, ids(Window(items, nil, 10)))
	require.Empty(t, Window(items, nil, 0))
}

// Notes created 09-10..09-13 with ids 1..4: before id 2 must yield exactly
// [1], and after id 2 exactly the items newer than 2, excluding it.
func TestWindow_ContractExample(t *testing.T) {
	t.Parallel()

	items := entries(4)
	require.Equal(t, []int64{1}, ids(Window(items, &Cursor{Before, 2}, 20)))
	require.Equal(t, []int64{4, 3}, ids(Window(items, &Cursor{After, 2}, 20)))
}

func TestWindow_Exclusivity(t *testing.T) {
	t.Parallel()

	items := entries(10)
	for cursorID := int64(1); cursorID <= 10; cursorID++ {
		for _, dir := range []Direction{Before, After} {
			for limit := 0; limit <= 12; limit++ {
				for _, got := range Window(items, &Cursor{dir, cursorID}, limit) {
					require.NotEqual(t, cursorID, got.id,
						"cursor %d direction %s limit %d", cursorID, dir, limit)
				}
			}
		}
	}
}

// Walking with before(last_item_id) from an unfiltered first page must
// enumerate every item exactly once, without gaps or duplicates.
func TestWindow_CompletenessWalk(t *testing.T) {
	t.Parallel()

	items := entries(23)
	seen := []int64{}

	page := Window(items, nil, 5)
	for len(page) > 0 {
		seen = append(seen, ids(page)...)
		last := page[len(page)-1].id
		page = Window(items, &Cursor{Before, last}, 5)
	}

	require.Len(t, seen, 23)
	for i, id := range seen {
		require.Equal(t, int64(23-i), id)
	}
}

// after returns the items immediately newer than the cursor, newest-first,
// so walking forward also terminates cleanly.
func TestWindow_AfterReturnsAdjacentItems(t *testing.T) {
	t.Parallel()

	items := entries(10)
	// Items newer than 3 are 4..10; the window of 4 closest to the cursor
	// is 7,6,5,4 in newest-first order.
	require.Equal(t, []int64{7, 6, 5, 4}, ids(Window(items, &Cursor{After, 3}, 4)))
	// Nothing newer than the newest item.
	require.Empty(t, Window(items, &Cursor{After, 10}, 4))
	// Nothing older than the oldest item.
	require.Empty(t, Window(items, &Cursor{Before, 1}, 4))
}

func TestWindow_AbsentCursorID(t *testing.T) {
	t.Parallel()

	// ids 2, 4, 6, 8 with id 5 missing: the window is computed as if 5 sat
	// between 4 and 6.
	items := []entry{
		{8, base.AddDate(0, 0, 8)},
		{6, base.AddDate(0, 0, 6)},
		{4, base.AddDate(0, 0, 4)},
		{2, base.AddDate(0, 0, 2)},
	}
	require.Equal(t, []int64{4, 2}, ids(Window(items, &Cursor{Before, 5}, 20)))
	require.Equal(t, []int64{8, 6}, ids(Window(items, &Cursor{After, 5}, 20)))

	// Out of range on either side is an empty page, never an error.
	require.Empty(t, Window(items, &Cursor{Before, 1}, 20))
	require.Empty(t, Window(items, &Cursor{After, 9}, 20))
	require.Equal(t, []int64{8, 6, 4, 2}, ids(Window(items, &Cursor{Before, 9}, 20)))
}

// Concurrent writers can stamp createdAt in the opposite order of their
// generated IDs, so the canonical slice may interleave the two orders. The
// cursor item must still be found and excluded from its own page.
func TestWindow_InterleavedIDOrder(t *testing.T) {
	t.Parallel()

	items := []entry{
		{100, base.AddDate(0, 0, 3)},
		{101, base.AddDate(0, 0, 2)},
		{99, base.AddDate(0, 0, 1)},
	}

	require.Equal(t, []int64{99}, ids(Window(items, &Cursor{Before, 101}, 20)))
	require.Equal(t, []int64{100}, ids(Window(items, &Cursor{After, 101}, 20)))

	for _, cursorID := range []int64{99, 100, 101} {
		for _, dir := range []Direction{Before, After} {
			for _, got := range Window(items, &Cursor{dir, cursorID}, 20) {
				require.NotEqual(t, cursorID, got.id, "cursor %d direction %s", cursorID, dir)
			}
		}
	}
}

func TestWindow_CreatedAtTiesBrokenByID(t *testing.T) {
	t.Parallel()

	same := base
	items := []entry{{3, same}, {2, same}, {1, same}}
	SortCanonical(items)
	require.Equal(t, []int64{3, 2, 1}, ids(items))
	require.Equal(t, []int64{1}, ids(Window(items, &Cursor{Before, 2}, 20)))
	require.Equal(t, []int64{3}, ids(Window(items, &Cursor{After, 2}, 20)))
}

func TestSortCanonical(t *testing.T) {
	t.Parallel()

	items := []entry{
		{1, base.AddDate(0, 0, 1)},
		{4, base.AddDate(0, 0, 3)},
		{2, base.AddDate(0, 0, 2)},
		{3, base.AddDate(0, 0, 2)},
	}
	SortCanonical(items)
	require.Equal(t, []int64{4, 3, 2, 1}, ids(items))
}

func TestFromParams(t *testing.T) {
	t.Parallel()

	cur, err := FromParams("", "")
	require.NoError(t, err)
	require.Nil(t, cur)

	cur, err = FromParams("42", "")
	require.NoError(t, err)
	require.Equal(t, &Cursor{Before, 42}, cur)

	cur, err = FromParams("", "7")
	require.NoError(t, err)
	require.Equal(t, &Cursor{After, 7}, cur)

	_, err = FromParams("42", "7")
	require.ErrorIs(t, err, apperrors.ErrInvalidRange)

	_, err = FromParams("not-a-number", "")
	require.ErrorIs(t, err, apperrors.ErrInvalidRange)
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	require.Equal(t, 20, ClampLimit("", 20, 40))
	require.Equal(t, 20, ClampLimit("0", 20, 40))
	require.Equal(t, 20, ClampLimit("-5", 20, 40))
	require.Equal(t, 35, ClampLimit("35", 20, 40))
	require.Equal(t, 40, ClampLimit("900", 20, 40))
	require.Equal(t, 30, ClampLimit("junk", 30, 50))
}
