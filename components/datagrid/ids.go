package datagrid

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const maxIDAttempts = 16

var errIDExhausted = errors.New("datagrid: could not mint a unique row id")

// IDGenerator mints row ids. existing holds every id in the target set; the
// engine rejects any id that collides with it.
type IDGenerator interface {
	NextID(existing map[string]struct{}) (string, error)
}

// IDGeneratorFunc adapts a function into an IDGenerator.
type IDGeneratorFunc func(existing map[string]struct{}) (string, error)

// NextID calls f.
func (f IDGeneratorFunc) NextID(existing map[string]struct{}) (string, error) {
	return f(existing)
}

// SequenceGenerator mints "<prefix><n>" ids from a strictly increasing counter.
// The counter always moves past the largest numeric suffix already in use, so
// ids are never reused while the generator lives, even after deletes.
type SequenceGenerator struct {
	Prefix string

	mu   sync.Mutex
	last int64
}

// NewSequenceGenerator builds a generator for the given prefix.
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{Prefix: prefix}
}

// NextID returns the next id above both the counter and the existing set.
func (g *SequenceGenerator) NextID(existing map[string]struct{}) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for id := range existing {
		suffix, ok := strings.CutPrefix(id, g.Prefix)
		if !ok {
			continue
		}
		if n, err := strconv.ParseInt(suffix, 10, 64); err == nil && n > g.last {
			g.last = n
		}
	}
	for range maxIDAttempts {
		g.last++
		id := g.Prefix + strconv.FormatInt(g.last, 10)
		if _, taken := existing[id]; !taken {
			return id, nil
		}
	}
	return "", errIDExhausted
}

// UUIDGenerator mints time-ordered UUIDv7 ids.
type UUIDGenerator struct {
	Prefix string
}

// NextID returns a fresh UUID not present in existing.
func (g UUIDGenerator) NextID(existing map[string]struct{}) (string, error) {
	for range maxIDAttempts {
		u, err := uuid.NewV7()
		if err != nil {
			return "", err
		}
		id := g.Prefix + u.String()
		if _, taken := existing[id]; !taken {
			return id, nil
		}
	}
	return "", errIDExhausted
}
