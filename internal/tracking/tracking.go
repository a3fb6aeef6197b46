// Package tracking generates the human-readable identifiers that tie a
// ledger row to a gateway order.
package tracking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrExhausted reports that the sequential scheme ran out of
// identifiers: the batch counter only has three digits.
var ErrExhausted = errors.New("sequential tracking id space exhausted")

// Generator issues tracking identifiers. Issue produces the next id and
// hands it to claim, which must persist it (or fail); the id is only
// returned once claim succeeds. Implementations that derive ids from
// ledger state keep their lock held across claim, so no two issuances
// can read the same ledger tail.
type Generator interface {
	Issue(ctx context.Context, claim func(id string) error) (string, error)
}

// ColumnReader is the slice of the ledger the sequential generator needs:
// the full tracking-id column, oldest first.
type ColumnReader interface {
	TrackingColumn(ctx context.Context) ([]string, error)
}

// Random issues PREFIX plus n uppercase hex characters from crypto/rand.
// It never reads the ledger and never checks for collisions; at the
// default 6 characters the space is 16^6, about 16.7 million ids.
// Claims run unserialized, distinctness comes from the id space.
type Random struct {
	prefix string
	n      int
}

// NewRandom returns a random-scheme generator. n falls back to 6 when not
// positive.
func NewRandom(prefix string, n int) *Random {
	if n <= 0 {
		n = 6
	}
	return &Random{prefix: prefix, n: n}
}

func (g *Random) Issue(ctx context.Context, claim func(id string) error) (string, error) {
	buf := make([]byte, (g.n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	suffix := strings.ToUpper(hex.EncodeToString(buf))
	id := g.prefix + suffix[:g.n]
	if err := claim(id); err != nil {
		return "", fmt.Errorf("claim tracking id %s: %w", id, err)
	}
	return id, nil
}

// Sequential issues PREFIXbbbsss identifiers (3-digit batch, 3-digit
// sequence) by reading the ledger's tracking column and incrementing the
// newest well-formed id. The mutex stays held from the column read
// through the caller's claim, so checkouts in this process serialize and
// every issuance sees the rows claimed before it; two separate processes
// can still race, which is why Random is the default scheme.
type Sequential struct {
	mu         sync.Mutex
	source     ColumnReader
	prefix     string
	startBatch int
}

// NewSequential returns a sequential-scheme generator seeded at
// startBatch for an empty ledger.
func NewSequential(source ColumnReader, prefix string, startBatch int) *Sequential {
	return &Sequential{source: source, prefix: prefix, startBatch: startBatch}
}

func (g *Sequential) Issue(ctx context.Context, claim func(id string) error) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids, err := g.source.TrackingColumn(ctx)
	if err != nil {
		return "", fmt.Errorf("read tracking column: %w", err)
	}

	// Walk up from the bottom to the newest id that parses; ids written
	// under another scheme or by hand are skipped, not fatal.
	batch, seq := g.startBatch, 0
	for i := len(ids) - 1; i >= 0; i-- {
		if b, s, ok := g.parse(ids[i]); ok {
			batch, seq = b, s
			break
		}
	}

	seq++
	if seq > 999 {
		batch++
		seq = 1
	}
	if batch > 999 {
		// Past SPL999999 a wider batch would break the fixed six-digit
		// format and never parse back, so stop instead of wrapping.
		return "", ErrExhausted
	}

	id := fmt.Sprintf("%s%03d%03d", g.prefix, batch, seq)
	if err := claim(id); err != nil {
		return "", fmt.Errorf("claim tracking id %s: %w", id, err)
	}
	return id, nil
}

// parse splits PREFIXbbbsss into batch and sequence. ok is false for
// anything that does not match the format exactly.
func (g *Sequential) parse(id string) (batch, seq int, ok bool) {
	if !strings.HasPrefix(id, g.prefix) {
		return 0, 0, false
	}
	digits := id[len(g.prefix):]
	if len(digits) != 6 {
		return 0, 0, false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, 0, false
		}
	}
	for _, c := range digits[:3] {
		batch = batch*10 + int(c-'0')
	}
	for _, c := range digits[3:] {
		seq = seq*10 + int(c-'0')
	}
	return batch, seq, true
}
