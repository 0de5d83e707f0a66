package api

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfitz/formfields/internal/slogging"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// DefaultFieldCacheTTL applies when NewCachedFieldStore is given a zero TTL
const DefaultFieldCacheTTL = 5 * time.Minute

// fieldCacheKey builds the cache key for a field definition name
func fieldCacheKey(name string) string {
	return fmt.Sprintf("formfields:field:%s", name)
}

// CachedFieldStore caches FindByNames lookups in redis, keyed by field name.
// Writes go to the wrapped store first and then drop the affected names.
// Redis failures are logged and the wrapped store answers instead.
type CachedFieldStore struct {
	FieldStore
	redis *redis.Client
	ttl   time.Duration
}

// NewCachedFieldStore wraps store with a redis cache
func NewCachedFieldStore(store FieldStore, client *redis.Client, ttl time.Duration) *CachedFieldStore {
	if ttl <= 0 {
		ttl = DefaultFieldCacheTTL
	}
	return &CachedFieldStore{FieldStore: store, redis: client, ttl: ttl}
}

// FindByNames serves cached definitions and loads the rest from the wrapped store
func (s *CachedFieldStore) FindByNames(ctx context.Context, names []string) ([]Field, error) {
	logger := slogging.Get()
	if len(names) == 0 {
		return []Field{}, nil
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = fieldCacheKey(name)
	}

	cached, err := s.redis.MGet(ctx, keys...).Result()
	if err != nil {
		logger.Warn("Field cache read failed, using store: %v", err)
		return s.FieldStore.FindByNames(ctx, names)
	}

	found := make([]Field, 0, len(names))
	var missing []string
	for i, raw := range cached {
		data, ok := raw.(string)
		if !ok {
			missing = append(missing, names[i])
			continue
		}
		var f Field
		if err := json.Unmarshal([]byte(data), &f); err != nil {
			logger.Warn("Discarding unreadable cache entry for field %s: %v", names[i], err)
			missing = append(missing, names[i])
			continue
		}
		found = append(found, f)
	}

	if len(missing) == 0 {
		logger.Debug("Field cache hit for %d names", len(names))
		return found, nil
	}

	loaded, err := s.FieldStore.FindByNames(ctx, missing)
	if err != nil {
		return nil, err
	}
	s.store(ctx, loaded)

	logger.Debug("Field cache hits=%d misses=%d", len(found), len(missing))
	return append(found, loaded...), nil
}

// Create stores field and drops any cached entry for its name
func (s *CachedFieldStore) Create(ctx context.Context, field *Field) error {
	if err := s.FieldStore.Create(ctx, field); err != nil {
		return err
	}
	s.invalidate(ctx, field.Name)
	return nil
}

// Update replaces the definition and drops its old and new names
func (s *CachedFieldStore) Update(ctx context.Context, id int64, field *Field) error {
	previous, err := s.FieldStore.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.FieldStore.Update(ctx, id, field); err != nil {
		return err
	}
	names := []string{field.Name}
	if previous != nil && previous.Name != field.Name {
		names = append(names, previous.Name)
	}
	s.invalidate(ctx, names...)
	return nil
}

// Delete removes the definition and drops its cached entry
func (s *CachedFieldStore) Delete(ctx context.Context, id int64) error {
	previous, err := s.FieldStore.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.FieldStore.Delete(ctx, id); err != nil {
		return err
	}
	if previous != nil {
		s.invalidate(ctx, previous.Name)
	}
	return nil
}

func (s *CachedFieldStore) store(ctx context.Context, fields []Field) {
	if len(fields) == 0 {
		return
	}
	logger := slogging.Get()

	pipe := s.redis.Pipeline()
	for _, f := range fields {
		data, err := json.Marshal(f)
		if err != nil {
			logger.Warn("Failed to marshal field %s for cache: %v", f.Name, err)
			continue
		}
		pipe.Set(ctx, fieldCacheKey(f.Name), data, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("Failed to cache %d fields: %v", len(fields), err)
	}
}

func (s *CachedFieldStore) invalidate(ctx context.Context, names ...string) {
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = fieldCacheKey(name)
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		slogging.Get().Warn("Failed to invalidate cached fields %v: %v", names, err)
	}
}
