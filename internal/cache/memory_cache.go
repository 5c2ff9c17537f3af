package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// latencyStats накапливает счётчики запросов и задержек
type latencyStats struct {
	total  int64
	hits   int64
	misses int64

	latencySum   int64 // в наносекундах
	latencyCount int64
	maxLatency   int64
}

func (s *latencyStats) record(start time.Time) {
	latency := time.Since(start).Nanoseconds()
	atomic.AddInt64(&s.latencySum, latency)
	atomic.AddInt64(&s.latencyCount, 1)

	for {
		current := atomic.LoadInt64(&s.maxLatency)
		if latency <= current || atomic.CompareAndSwapInt64(&s.maxLatency, current, latency) {
			return
		}
	}
}

func (s *latencyStats) snapshot() *CacheMetrics {
	m := &CacheMetrics{
		TotalRequests: atomic.LoadInt64(&s.total),
		CacheHits:     atomic.LoadInt64(&s.hits),
		CacheMisses:   atomic.LoadInt64(&s.misses),
		MaxLatencyMs:  float64(atomic.LoadInt64(&s.maxLatency)) / 1e6,
		LastUpdate:    time.Now(),
	}
	if m.TotalRequests > 0 {
		m.HitRatio = float64(m.CacheHits) / float64(m.TotalRequests)
	}
	if count := atomic.LoadInt64(&s.latencyCount); count > 0 {
		m.AvgLatencyMs = float64(atomic.LoadInt64(&s.latencySum)) / float64(count) / 1e6
	}
	return m
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache реализует CacheRepo в памяти процесса.
// Используется когда Redis не настроен, и в тестах.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	stats latencyStats
}

// NewMemoryCache создаёт пустой кеш в памяти
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryItem)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer m.stats.record(start)
	atomic.AddInt64(&m.stats.total, 1)

	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()

	if !ok || (!item.expiresAt.IsZero() && time.Now().After(item.expiresAt)) {
		atomic.AddInt64(&m.stats.misses, 1)
		return nil, ErrCacheMiss
	}

	atomic.AddInt64(&m.stats.hits, 1)
	return item.value, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidKey
	}

	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.items[key] = item
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()
	return ok && (item.expiresAt.IsZero() || time.Now().Before(item.expiresAt)), nil
}

func (m *MemoryCache) Close() error { return nil }

func (m *MemoryCache) GetMetrics() *CacheMetrics {
	return m.stats.snapshot()
}
