package tenant

import (
	"context"
	"sync"
	"time"
)

// cacheEntry holds one cached tenant with its expiry.
type cacheEntry struct {
	tenant    *Tenant
	expiresAt time.Time
}

// CachedRegistry wraps a Registry with a TTL cache. Tenant lookups sit
// on the hot path of every request; tenant rows change rarely, so a
// short TTL keeps the directory out of the request latency without
// letting suspensions linger.
type CachedRegistry struct {
	Registry

	ttl time.Duration

	mu     sync.RWMutex
	byID   map[string]cacheEntry
	bySlug map[string]cacheEntry
}

// NewCachedRegistry wraps inner with a TTL cache. A non-positive ttl
// defaults to 30 seconds.
func NewCachedRegistry(inner Registry, ttl time.Duration) *CachedRegistry {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedRegistry{
		Registry: inner,
		ttl:      ttl,
		byID:     make(map[string]cacheEntry),
		bySlug:   make(map[string]cacheEntry),
	}
}

var _ Registry = (*CachedRegistry)(nil)

func (c *CachedRegistry) GetByID(ctx context.Context, tenantID string) (*Tenant, error) {
	c.mu.RLock()
	entry, ok := c.byID[tenantID]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.tenant, nil
	}

	t, err := c.Registry.GetByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	c.store(t)
	return t, nil
}

func (c *CachedRegistry) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	c.mu.RLock()
	entry, ok := c.bySlug[slug]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.tenant, nil
	}

	t, err := c.Registry.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.store(t)
	return t, nil
}

func (c *CachedRegistry) UpdateStatusByID(ctx context.Context, tenantID string, status Status) error {
	if err := c.Registry.UpdateStatusByID(ctx, tenantID, status); err != nil {
		return err
	}
	c.invalidate(tenantID)
	return nil
}

func (c *CachedRegistry) UpdateSettings(ctx context.Context, tenantID string, settings Settings) error {
	if err := c.Registry.UpdateSettings(ctx, tenantID, settings); err != nil {
		return err
	}
	c.invalidate(tenantID)
	return nil
}

func (c *CachedRegistry) store(t *Tenant) {
	entry := cacheEntry{tenant: t, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Lock()
	c.byID[t.ID] = entry
	c.bySlug[t.Slug] = entry
	c.mu.Unlock()
}

func (c *CachedRegistry) invalidate(tenantID string) {
	c.mu.Lock()
	if entry, ok := c.byID[tenantID]; ok {
		delete(c.bySlug, entry.tenant.Slug)
	}
	delete(c.byID, tenantID)
	c.mu.Unlock()
}
