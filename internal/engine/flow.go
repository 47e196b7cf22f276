package engine

import (
	"sync"

	"github.com/google/uuid"
)

// RunIDGenerator produces the run ID stamped on each Result.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator issues time-ordered UUIDv7 run IDs, so results sort by
// creation time. Safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7. Panics if the random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// DefaultFixedRunID is what a FixedGenerator built without IDs returns.
const DefaultFixedRunID = "test-run-default"

// FixedGenerator hands out a fixed list of run IDs in order and keeps
// returning the last one after the list runs out. Safe for concurrent use.
//
//	gen := NewFixedGenerator("run-1", "run-2")
//	gen.Generate() // "run-1"
//	gen.Generate() // "run-2"
//	gen.Generate() // "run-2"
type FixedGenerator struct {
	mu   sync.Mutex
	ids  []string
	next int
}

// NewFixedGenerator returns a generator over ids. Empty IDs are skipped;
// with none left it always returns DefaultFixedRunID.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, DefaultFixedRunID)
	}
	return &FixedGenerator{ids: kept}
}

// Generate returns the next run ID.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.ids[g.next]
	if g.next < len(g.ids)-1 {
		g.next++
	}
	return id
}
