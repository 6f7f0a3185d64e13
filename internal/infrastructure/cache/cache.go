// internal/infrastructure/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultTTL is the fallback expiry for cached reads
const DefaultTTL = time.Hour

// Cache is what domain services depend on: a read-through decorator and
// best-effort invalidation. *Store is the Redis-backed implementation.
type Cache interface {
	Cached(ctx context.Context, key string, ttl time.Duration, dest interface{}, fetch func() (interface{}, error)) error
	Invalidate(ctx context.Context, patterns ...string)
}

// Store wraps the shared Redis cache used for derived read models.
// All invalidation is best-effort: a cache failure never fails the
// operation that triggered it.
type Store struct {
	redis *redis.Client
	log   *logrus.Entry
}

// NewStore creates a cache store on top of an existing Redis client
func NewStore(client *redis.Client, log *logrus.Entry) *Store {
	return &Store{
		redis: client,
		log:   log,
	}
}

// Cached wraps a read operation with read-through caching. On any cache
// error it falls back to calling fetch directly.
func (s *Store) Cached(ctx context.Context, key string, ttl time.Duration, dest interface{}, fetch func() (interface{}, error)) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	cached, err := s.redis.Get(ctx, key).Result()
	if err == nil {
		if err := json.Unmarshal([]byte(cached), dest); err == nil {
			s.log.WithField("key", key).Debug("Cache hit")
			return nil
		}
		// Corrupt entry, treat as miss and overwrite below
		s.log.WithField("key", key).Warn("Discarding unreadable cache entry")
	} else if err != redis.Nil {
		s.log.WithError(err).WithField("key", key).Warn("Cache read failed, falling back to source")
		result, err := fetch()
		if err != nil {
			return err
		}
		return copyInto(dest, result)
	}

	result, err := fetch()
	if err != nil {
		return err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := s.redis.Set(ctx, key, data, ttl).Err(); err != nil {
			s.log.WithError(err).WithField("key", key).Warn("Cache write failed")
		}
	}

	return copyInto(dest, result)
}

// Invalidate deletes exact keys and wildcard-matched key groups. Patterns
// containing '*' are expanded before deletion. Errors are logged and
// swallowed so invalidation never fails the triggering mutation.
func (s *Store) Invalidate(ctx context.Context, patterns ...string) {
	for _, pattern := range patterns {
		if strings.Contains(pattern, "*") {
			keys, err := s.redis.Keys(ctx, pattern).Result()
			if err != nil {
				s.log.WithError(err).WithField("pattern", pattern).Warn("Cache pattern lookup failed")
				continue
			}
			if len(keys) == 0 {
				continue
			}
			if err := s.redis.Del(ctx, keys...).Err(); err != nil {
				s.log.WithError(err).WithField("pattern", pattern).Warn("Cache pattern delete failed")
			}
			continue
		}

		if err := s.redis.Del(ctx, pattern).Err(); err != nil {
			s.log.WithError(err).WithField("key", pattern).Warn("Cache delete failed")
		}
	}
}

// Set stores a value directly, bypassing the read-through path
func (s *Store) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

// Null bypasses caching entirely: every read hits the source and
// invalidation is a no-op. Used in tests and cache-less deployments.
type Null struct{}

// Cached implements Cache by calling fetch directly
func (Null) Cached(ctx context.Context, key string, ttl time.Duration, dest interface{}, fetch func() (interface{}, error)) error {
	result, err := fetch()
	if err != nil {
		return err
	}
	return copyInto(dest, result)
}

// Invalidate implements Cache as a no-op
func (Null) Invalidate(ctx context.Context, patterns ...string) {}

// copyInto moves a freshly fetched result into the caller's destination
// through JSON, matching what a cache hit would have produced.
func copyInto(dest, src interface{}) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}
