package vfs

import (
	"context"
	"time"

	"github.com/annel0/zone-streamer/internal/cache"
	"github.com/annel0/zone-streamer/internal/logging"
)

// CachedRepository читает файлы через горячий кэш (read-through).
// Ошибки кэша не мешают чтению из нижележащего репозитория.
type CachedRepository struct {
	base  Repository
	cache cache.CacheRepo
	ttl   time.Duration
}

// NewCachedRepository оборачивает base горячим кэшем
func NewCachedRepository(base Repository, c cache.CacheRepo, ttl time.Duration) *CachedRepository {
	return &CachedRepository{base: base, cache: c, ttl: ttl}
}

func cacheKey(p string) string {
	return "asset:" + NormalizePath(p)
}

// Read возвращает файл из кэша или из базового репозитория
func (c *CachedRepository) Read(ctx context.Context, p string) ([]byte, error) {
	key := cacheKey(p)

	data, err := c.cache.Get(ctx, key)
	if err == nil {
		return data, nil
	}
	if !cache.IsCacheMiss(err) {
		logging.Warn("⚠️ Ошибка горячего кэша для %s: %v", p, err)
	}

	data, err = c.base.Read(ctx, p)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		logging.Warn("⚠️ Не удалось поместить %s в кэш: %v", p, err)
	}
	return data, nil
}
