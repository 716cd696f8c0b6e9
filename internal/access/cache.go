package access

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

type cacheEntry struct {
	profile   *Profile
	expiresAt time.Time
}

// ProfileCache holds resolved profiles for a short TTL. Every eviction bumps
// an epoch; a store that started before an eviction is discarded, so a
// profile resolved before a deactivation can never be cached after it.
type ProfileCache struct {
	entries cmap.ConcurrentMap[string, cacheEntry]
	ttl     time.Duration
	now     func() time.Time
	epoch   atomic.Uint64
}

func NewProfileCache(ttl time.Duration, now func() time.Time) *ProfileCache {
	if now == nil {
		now = time.Now
	}
	return &ProfileCache{
		entries: cmap.New[cacheEntry](),
		ttl:     ttl,
		now:     now,
	}
}

func cacheKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// Epoch is read before resolving and passed back to Store.
func (c *ProfileCache) Epoch() uint64 {
	return c.epoch.Load()
}

func (c *ProfileCache) Get(userID int64) (*Profile, bool) {
	entry, ok := c.entries.Get(cacheKey(userID))
	if !ok || entry.profile == nil {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		c.entries.RemoveCb(cacheKey(userID), func(_ string, v cacheEntry, exists bool) bool {
			return exists && !c.now().Before(v.expiresAt)
		})
		return nil, false
	}
	return entry.profile.Clone(), true
}

// Store caches profile unless an eviction happened since epoch was read.
func (c *ProfileCache) Store(userID int64, profile *Profile, epoch uint64) bool {
	stored := false
	c.entries.Upsert(cacheKey(userID), cacheEntry{}, func(exists bool, current, _ cacheEntry) cacheEntry {
		if c.epoch.Load() != epoch {
			if exists {
				return current
			}
			return cacheEntry{}
		}
		stored = true
		return cacheEntry{
			profile:   profile.Clone(),
			expiresAt: c.now().Add(c.ttl),
		}
	})
	return stored
}

func (c *ProfileCache) Evict(userID int64) {
	c.epoch.Add(1)
	c.entries.Remove(cacheKey(userID))
}

func (c *ProfileCache) Flush() {
	c.epoch.Add(1)
	c.entries.Clear()
}

func (c *ProfileCache) Len() int {
	return c.entries.Count()
}

// CachedResolver serves profiles from a ProfileCache and falls back to the
// wrapped resolver. Errors are never cached.
type CachedResolver struct {
	next  ProfileResolver
	cache *ProfileCache
}

func NewCachedResolver(next ProfileResolver, cache *ProfileCache) *CachedResolver {
	return &CachedResolver{
		next:  next,
		cache: cache,
	}
}

func (r *CachedResolver) Resolve(ctx context.Context, subjectID int64) (*Profile, error) {
	if profile, ok := r.cache.Get(subjectID); ok {
		return profile, nil
	}

	epoch := r.cache.Epoch()
	profile, err := r.next.Resolve(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	r.cache.Store(subjectID, profile, epoch)
	return profile.Clone(), nil
}
