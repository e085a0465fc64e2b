package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"petcare-inventory-api/internal/cache"
	"petcare-inventory-api/internal/model"

	"go.uber.org/zap"
)

const (
	cacheKeyAll      = "items:all"
	cacheKeyItemBase = "items:id:"
)

// CachedInventoryRepository is a read-through cache in front of another
// repository. Writes go straight to the backend and then invalidate, so a
// read after a write always sees the write. Cache failures are logged and
// the backend answers instead.
//
// A fill that started before a write must not store its snapshot: gen is
// bumped on every invalidation and a fill only stores if gen is unchanged.
type CachedInventoryRepository struct {
	next   InventoryRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger

	mu  sync.Mutex
	gen uint64
}

// NewCachedInventoryRepository wraps next with c.
func NewCachedInventoryRepository(next InventoryRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedInventoryRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedInventoryRepository{next: next, cache: c, ttl: ttl, logger: logger}
}

func itemKey(id string) string {
	return cacheKeyItemBase + id
}

// Uncached returns the backend behind the cache.
func (r *CachedInventoryRepository) Uncached() InventoryRepository {
	return r.next
}

func (r *CachedInventoryRepository) generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// GetAll serves the full list from cache when present.
func (r *CachedInventoryRepository) GetAll(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	if r.load(ctx, cacheKeyAll, &items) {
		return items, nil
	}

	gen := r.generation()
	items, err := r.next.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, gen, cacheKeyAll, items)
	return items, nil
}

// GetByID serves single items from cache. Misses on absent ids are not
// cached.
func (r *CachedInventoryRepository) GetByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if r.load(ctx, itemKey(id), &item) {
		return &item, nil
	}

	gen := r.generation()
	found, err := r.next.GetByID(ctx, id)
	if err != nil || found == nil {
		return found, err
	}
	r.store(ctx, gen, itemKey(id), found)
	return found, nil
}

// Search always hits the backend.
func (r *CachedInventoryRepository) Search(ctx context.Context, query string) ([]model.InventoryItem, error) {
	return r.next.Search(ctx, query)
}

// Exists always hits the backend.
func (r *CachedInventoryRepository) Exists(ctx context.Context, id string) (bool, error) {
	return r.next.Exists(ctx, id)
}

// Add writes through and drops the cached list.
func (r *CachedInventoryRepository) Add(ctx context.Context, item *model.InventoryItem) error {
	if err := r.next.Add(ctx, item); err != nil {
		return err
	}
	r.invalidate(ctx, item.ID)
	return nil
}

// Update writes through and drops the list and item entries.
func (r *CachedInventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	if err := r.next.Update(ctx, item); err != nil {
		return err
	}
	r.invalidate(ctx, item.ID)
	return nil
}

// Delete writes through and drops the list and item entries.
func (r *CachedInventoryRepository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// GetStats merges backend and cache statistics.
func (r *CachedInventoryRepository) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats, err := r.next.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	cacheStats, err := r.cache.Stats(ctx)
	if err != nil {
		stats["cache"] = map[string]interface{}{"status": "error", "error": err.Error()}
	} else {
		stats["cache"] = cacheStats
	}
	return stats, nil
}

// Close closes the cache and the backend.
func (r *CachedInventoryRepository) Close() error {
	if err := r.cache.Close(); err != nil {
		r.logger.Warn("failed to close cache", zap.Error(err))
	}
	return r.next.Close()
}

func (r *CachedInventoryRepository) load(ctx context.Context, key string, dst any) bool {
	data, err := r.cache.Get(ctx, key)
	if err != nil {
		if err != cache.ErrCacheMiss {
			r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.logger.Warn("cache entry corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// store caches v unless an invalidation happened since gen was read.
func (r *CachedInventoryRepository) store(ctx context.Context, gen uint64, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		r.logger.Debug("dropping stale cache fill", zap.String("key", key))
		return
	}
	if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (r *CachedInventoryRepository) invalidate(ctx context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	if err := r.cache.Delete(ctx, cacheKeyAll, itemKey(id)); err != nil {
		r.logger.Warn("cache invalidation failed", zap.String("id", id), zap.Error(err))
	}
}

var _ InventoryRepository = (*CachedInventoryRepository)(nil)
