package datagrid

import (
	"sync"
	"time"
)

// ChartKey identifies one rendered chart: a column of a grid at a snapshot
// version, drawn as kind.
type ChartKey struct {
	Code    string
	Column  string
	Kind    ChartKind
	Version uint64
}

func (k ChartKey) slot() chartSlot {
	return chartSlot{code: k.Code, column: k.Column, kind: k.Kind}
}

// RenderCache memoizes rendered chart HTML.
type RenderCache interface {
	GetOrRender(key ChartKey, render func() (string, error)) (string, error)
}

// ChartCache is an in-memory TTL cache for rendered charts. It keeps one
// entry per grid column and kind; a newer snapshot version replaces the old
// entry. A zero or negative TTL disables caching.
type ChartCache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[chartSlot]cachedChart
}

type chartSlot struct {
	code   string
	column string
	kind   ChartKind
}

type cachedChart struct {
	version uint64
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[chartSlot]cachedChart),
	}
}

// GetOrRender returns the chart cached for key or renders and stores it.
func (c *ChartCache) GetOrRender(key ChartKey, render func() (string, error)) (string, error) {
	if html, ok := c.lookup(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.store(key, html)
	return html, nil
}

// Invalidate drops every chart of grid code.
func (c *ChartCache) Invalidate(code string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for slot := range c.entries {
		if slot.code == code {
			delete(c.entries, slot)
		}
	}
}

// Len reports the number of cached charts.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ChartCache) lookup(key ChartKey) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key.slot()]
	if !ok {
		return "", false
	}
	if c.now().After(entry.expires) || entry.version < key.Version {
		delete(c.entries, key.slot())
		return "", false
	}
	if entry.version != key.Version {
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) store(key ChartKey, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// an older render must not replace a newer one
	if entry, ok := c.entries[key.slot()]; ok && entry.version > key.Version {
		return
	}
	c.entries[key.slot()] = cachedChart{
		version: key.Version,
		html:    html,
		expires: c.now().Add(c.ttl),
	}
}
