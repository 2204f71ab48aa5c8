package resolver

import (
	"strings"
	"sync"
	"time"
)

// Clock abstracts time.Now so cache expiry is testable.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// ttlCache is a plain map with per-entry expiry. Concurrent submissions may
// race on Set for the same key; entries are idempotent recomputations so
// last-writer-wins is fine.
type ttlCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	clock   Clock
	entries map[string]cacheEntry
}

func newTTLCache(ttl time.Duration, clock Clock) *ttlCache {
	return &ttlCache{
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cacheEntry),
	}
}

func (c *ttlCache) get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (c *ttlCache) set(key string, value interface{}) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expiresAt: c.clock.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *ttlCache) invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *ttlCache) invalidatePrefix(prefix string) {
	c.mu.Lock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

func (c *ttlCache) invalidateAll() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// ValueResult is a cached resolution outcome. Misses are cached too so a
// reference that matches nothing does not trigger a full field scan on every
// rule within the TTL window.
type ValueResult struct {
	Value interface{}
	Found bool
}

// ResolutionCache bundles the three per-form caches the resolver relies on:
// field definitions, stableId-to-fieldId mappings, and resolved values.
type ResolutionCache struct {
	fields   *ttlCache
	mappings *ttlCache
	values   *ttlCache
}

func NewResolutionCache(ttl time.Duration, clock Clock) *ResolutionCache {
	if clock == nil {
		clock = SystemClock()
	}
	return &ResolutionCache{
		fields:   newTTLCache(ttl, clock),
		mappings: newTTLCache(ttl, clock),
		values:   newTTLCache(ttl, clock),
	}
}

func (c *ResolutionCache) Fields(formID string) ([]FieldDef, bool) {
	v, ok := c.fields.get(formID)
	if !ok {
		return nil, false
	}
	return v.([]FieldDef), true
}

func (c *ResolutionCache) SetFields(formID string, defs []FieldDef) {
	c.fields.set(formID, defs)
}

func (c *ResolutionCache) Mapping(formID string) (map[string]string, bool) {
	v, ok := c.mappings.get(formID)
	if !ok {
		return nil, false
	}
	return v.(map[string]string), true
}

func (c *ResolutionCache) SetMapping(formID string, m map[string]string) {
	c.mappings.set(formID, m)
}

func valueKey(formID, reference string) string {
	return formID + "\x00" + strings.ToLower(reference)
}

func (c *ResolutionCache) Value(formID, reference string) (ValueResult, bool) {
	v, ok := c.values.get(valueKey(formID, reference))
	if !ok {
		return ValueResult{}, false
	}
	return v.(ValueResult), true
}

func (c *ResolutionCache) SetValue(formID, reference string, result ValueResult) {
	c.values.set(valueKey(formID, reference), result)
}

// InvalidateForm drops everything cached for one form, e.g. after editing it.
func (c *ResolutionCache) InvalidateForm(formID string) {
	c.fields.invalidate(formID)
	c.mappings.invalidate(formID)
	c.values.invalidatePrefix(formID + "\x00")
}

func (c *ResolutionCache) InvalidateAll() {
	c.fields.invalidateAll()
	c.mappings.invalidateAll()
	c.values.invalidateAll()
}
