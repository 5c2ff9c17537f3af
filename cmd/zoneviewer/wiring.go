package main

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/zone-streamer/internal/cache"
	"github.com/annel0/zone-streamer/internal/config"
	"github.com/annel0/zone-streamer/internal/devdata"
	"github.com/annel0/zone-streamer/internal/eventbus"
	"github.com/annel0/zone-streamer/internal/logging"
	"github.com/annel0/zone-streamer/internal/vfs"
)

// openRepository выбирает источник данных: синтетические зоны, badger-архив
// или каталог. При включённом кэше оборачивает источник в Redis.
func openRepository(ctx context.Context, cfg *config.Config, devSeed int64) (vfs.Repository, func(), error) {
	noop := func() {}

	var base vfs.Repository
	closeBase := noop

	switch {
	case devSeed != 0:
		mem := vfs.NewMemoryRepository()
		summary, err := devdata.Generate(ctx, mem, devdata.Options{Seed: devSeed})
		if err != nil {
			return nil, noop, fmt.Errorf("генерация синтетических зон: %w", err)
		}
		logging.Info("🧪 Синтетические данные: %d зон, %d блоков, %d файлов", summary.Zones, summary.Blocks, summary.Files)
		base = mem

	case cfg.Assets.Pack != "":
		pack, err := vfs.OpenPack(cfg.Assets.Pack)
		if err != nil {
			return nil, noop, err
		}
		logging.Info("📦 Данные из архива %s", cfg.Assets.Pack)
		base = pack
		closeBase = func() { _ = pack.Close() }

	default:
		dir, err := vfs.NewDirRepository(cfg.Assets.Root)
		if err != nil {
			return nil, noop, err
		}
		logging.Info("📁 Данные из каталога %s", cfg.Assets.Root)
		base = dir
	}

	if !cfg.Cache.Enabled {
		return base, closeBase, nil
	}

	rc, err := cache.NewRedisCache(&cache.CacheConfig{
		RedisURL:      cfg.Cache.Addr,
		RedisPassword: cfg.Cache.Password,
		RedisDB:       cfg.Cache.DB,
		DefaultTTL:    cfg.Cache.GetTTL(),
	})
	if err != nil {
		// Без горячего кэша работаем напрямую с источником
		logging.Warn("⚠️ Redis недоступен, кэш отключён: %v", err)
		return base, closeBase, nil
	}

	return vfs.NewCachedRepository(base, rc, cfg.Cache.GetTTL()), func() {
		_ = rc.Close()
		closeBase()
	}, nil
}

// openEventBus подключает JetStream, если задан URL, иначе шину в памяти
func openEventBus(cfg *config.Config) (eventbus.EventBus, func()) {
	if cfg.EventBus.URL == "" {
		return eventbus.NewMemoryBus(1024), func() {}
	}

	retention := time.Duration(cfg.EventBus.Retention) * time.Hour
	bus, err := eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream, retention)
	if err != nil {
		logging.Warn("⚠️ NATS недоступен (%v), события остаются в памяти", err)
		return eventbus.NewMemoryBus(1024), func() {}
	}
	logging.Info("📨 События публикуются в JetStream %s (stream %s)", cfg.EventBus.URL, cfg.EventBus.Stream)
	return bus, func() { _ = bus.Close() }
}
