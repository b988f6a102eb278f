// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pageKeyPrefix = "page:"

	// DefaultPageTTL bounds how stale a public page can get after an edit
	// that slipped past explicit invalidation.
	DefaultPageTTL = 5 * time.Minute
)

// PageCache holds serialized public page responses in Valkey so repeat
// visits skip the database. Every method degrades to a miss or a no-op on
// Valkey errors; the cache must never take a page down with it.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache wraps client with the given TTL, or DefaultPageTTL for zero.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get retrieves a cached payload. The second return value reports a hit.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	switch {
	case err == redis.Nil:
		return nil, false
	case err != nil:
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores a serialized payload under key with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, key string, payload []byte) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, payload, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single cached page.
func (pc *PageCache) Invalidate(ctx context.Context, key string) {
	if err := pc.client.Del(ctx, pageKeyPrefix+key).Err(); err != nil {
		slog.Warn("page cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("page cache invalidated", "key", key)
}

// InvalidateAll scans out every cached page and deletes it. Used on bulk
// operations where any page could be affected.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	deleted := 0
	for {
		keys, next, err := pc.client.Scan(ctx, cursor, pageKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
}

// TemplateKey returns the cache key for a public template page.
func TemplateKey(slug string) string {
	return "template:" + slug
}

// ProfileKey returns the cache key for a public profile page.
func ProfileKey(username string) string {
	return "profile:" + username
}
