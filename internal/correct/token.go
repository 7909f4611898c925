package correct

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator generates repair tokens correlating the corrections
// appended in one repair pass.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 repair tokens.
//
// UUIDv7 embeds a timestamp in the most significant bits, so tokens
// sort by the time of the repair pass that produced them - convenient
// when auditing corrections across a long-lived store.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tokens for testing, enabling
// deterministic golden comparisons of correction output.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	idx int
}

// Generate returns "repair-1", "repair-2", ... in sequence.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.idx++
	return fmt.Sprintf("repair-%d", g.idx)
}
