package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/corvid-labs/rookery/backend/internal/models"
)

type key struct {
	scope   Scope
	ownerID int64
}

// entry carries its own lock so writers on different keys never contend.
type entry struct {
	mu sync.Mutex
	// ids are sorted descending. IDs are coarsely time-ordered, which keeps
	// the entry newest-first without storing timestamps.
	ids []int64
}

// MemoryCache is the in-process TimelineCache implementation.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[key]*entry
	window  int
}

var _ TimelineCache = (*MemoryCache)(nil)

// NewMemoryCache returns a cache whose entries keep at most window IDs.
// window <= 0 means DefaultWindow.
func NewMemoryCache(window int) *MemoryCache {
	if window <= 0 {
		window = DefaultWindow
	}
	return &MemoryCache{entries: make(map[key]*entry), window: window}
}

func (c *MemoryCache) entryFor(k key, create bool) *entry {
	c.mu.RLock()
	e := c.entries[k]
	c.mu.RUnlock()
	if e != nil || !create {
		return e
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e = c.entries[k]; e == nil {
		e = &entry{}
		c.entries[k] = e
	}
	return e
}

// descCompare orders int64s descending for slices.BinarySearchFunc.
func descCompare(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

func (c *MemoryCache) Prime(ctx context.Context, scope Scope, ownerID int64, notes []*models.Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := c.entryFor(key{scope, ownerID}, true)
	e.mu.Lock()
	defer e.mu.Unlock()
	c.merge(e, notes)
	return nil
}

func (c *MemoryCache) AddNotes(ctx context.Context, scope Scope, ownerID int64, notes []*models.Note) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(notes) == 0 {
		return nil
	}

	e := c.entryFor(key{scope, ownerID}, false)
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	c.merge(e, notes)
	return nil
}

// merge inserts note IDs keeping the entry sorted, deduplicated and within
// the window. Callers hold e.mu.
func (c *MemoryCache) merge(e *entry, notes []*models.Note) {
	for _, n := range notes {
		i, found := slices.BinarySearchFunc(e.ids, n.ID, descCompare)
		if found {
			continue
		}
		e.ids = slices.Insert(e.ids, i, n.ID)
	}
	if len(e.ids) > c.window {
		e.ids = e.ids[:c.window]
	}
}

func (c *MemoryCache) Get(ctx context.Context, scope Scope, ownerID int64) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e := c.entryFor(key{scope, ownerID}, false)
	if e == nil {
		return nil, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.ids), nil
}

func (c *MemoryCache) DeleteNotes(ctx context.Context, scope Scope, ownerID int64, noteIDs []int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := c.entryFor(key{scope, ownerID}, false)
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, id := range noteIDs {
		if i, found := slices.BinarySearchFunc(e.ids, id, descCompare); found {
			e.ids = slices.Delete(e.ids, i, i+1)
		}
	}
	return nil
}

func (c *MemoryCache) Evict(ctx context.Context, scope Scope, ownerID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key{scope, ownerID})
	return nil
}
