// Package id produces the snowflake-style identifiers used as primary keys
// across the service. IDs are coarsely time-ordered: callers may rely on
// newer IDs comparing greater, but created_at remains authoritative for
// fine-grained ordering.
package id

import (
	"errors"
	"sync"
	"time"
)

const (
	// Epoch is 2024-01-01T00:00:00Z in Unix milliseconds.
	Epoch int64 = 1704067200000

	nodeBits     = 10
	sequenceBits = 12

	// MaxNode is the largest node ID a generator accepts.
	MaxNode = (1 << nodeBits) - 1

	sequenceMask = (1 << sequenceBits) - 1
)

var (
	ErrClockRegression  = errors.New("id: clock moved backwards")
	ErrSequenceOverflow = errors.New("id: sequence overflow in a single tick")
	ErrNodeOutOfRange   = errors.New("id: node out of range")
)

// Generator issues unique, monotonically increasing IDs for one node.
// It is safe for concurrent use.
type Generator struct {
	mu       sync.Mutex
	node     int64
	lastTick int64
	sequence int64

	now func() time.Time
}

// NewGenerator returns a generator for the given node ID.
func NewGenerator(node int64) (*Generator, error) {
	if node < 0 || node > MaxNode {
		return nil, ErrNodeOutOfRange
	}
	return &Generator{node: node, lastTick: -1, now: time.Now}, nil
}

// Generate returns the next ID. It fails if the wall clock regressed since
// the previous call or if more than 4096 IDs were requested in one
// millisecond; callers are expected to surface either condition instead of
// handing out an ID that would break ordering or uniqueness.
func (g *Generator) Generate() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	tick := g.now().UnixMilli() - Epoch
	switch {
	case tick < g.lastTick:
		return 0, ErrClockRegression
	case tick == g.lastTick:
		g.sequence++
		if g.sequence > sequenceMask {
			g.sequence = sequenceMask
			return 0, ErrSequenceOverflow
		}
	default:
		g.lastTick = tick
		g.sequence = 0
	}

	return tick<<(nodeBits+sequenceBits) | g.node<<sequenceBits | g.sequence, nil
}

// Timestamp extracts the creation time encoded in an ID.
func Timestamp(id int64) time.Time {
	return time.UnixMilli(id>>(nodeBits+sequenceBits) + Epoch)
}
