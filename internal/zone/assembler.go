package zone

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/annel0/zone-streamer/internal/formats"
	"github.com/annel0/zone-streamer/internal/logging"
	"github.com/annel0/zone-streamer/internal/vfs"
)

// Assembler собирает Bundle зоны из файлов репозитория
type Assembler struct {
	repo        vfs.Repository
	list        *List
	maxParallel int
	metrics     *Metrics
	tracer      trace.Tracer
}

// AssemblerOption настраивает Assembler
type AssemblerOption func(*Assembler)

// WithMaxParallel ограничивает число одновременных загрузок блоков
func WithMaxParallel(n int) AssemblerOption {
	return func(a *Assembler) {
		if n > 0 {
			a.maxParallel = n
		}
	}
}

// WithMetrics подключает метрики сборки
func WithMetrics(m *Metrics) AssemblerOption {
	return func(a *Assembler) { a.metrics = m }
}

// NewAssembler создаёт сборщик зон
func NewAssembler(repo vfs.Repository, list *List, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		repo:        repo,
		list:        list,
		maxParallel: 64,
		tracer:      otel.Tracer("zone-streamer/zone"),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = NewMetrics(nil)
	}
	return a
}

// List возвращает список зон сборщика
func (a *Assembler) List() *List {
	return a.list
}

// Assemble загружает определение зоны, каталоги объектов и все 4096 блоков.
// Ошибки отдельных блоков поглощаются: такой блок остаётся nil.
// Вызывающий получает либо полностью собранный Bundle, либо ошибку.
func (a *Assembler) Assemble(ctx context.Context, id ID) (*Bundle, error) {
	entry, err := a.list.Get(id)
	if err != nil {
		return nil, err
	}

	ctx, span := a.tracer.Start(ctx, "zone.assemble", trace.WithAttributes(
		attribute.Int("zone.id", int(id)),
		attribute.String("zone.name", entry.Name),
	))
	defer span.End()

	start := time.Now()
	log := logging.GetZoneLogger()
	log.Info("📦 Сборка зоны %d (%s)...", int(id), entry.Name)

	zonData, err := a.repo.Read(ctx, entry.Zon)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "zon unavailable")
		return nil, fmt.Errorf("%w: %s: %v", ErrZoneDataUnavailable, entry.Zon, err)
	}
	definition, err := formats.DecodeZoneDefinition(zonData)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "zon invalid")
		return nil, fmt.Errorf("%w: %s: %v", ErrZoneDataUnavailable, entry.Zon, err)
	}

	bundle := &Bundle{
		ID:         id,
		Entry:      entry,
		Dir:        vfs.Dir(entry.Zon),
		Definition: definition,
		Cnst:       a.loadCatalog(ctx, entry.Cnst),
		Deco:       a.loadCatalog(ctx, entry.Deco),
		Event:      a.loadCatalog(ctx, a.list.EventObjectCatalog),
		Warp:       a.loadCatalog(ctx, a.list.WarpObjectCatalog),
	}

	// Каждая задача пишет только в свой индекс, поэтому порядок завершения неважен
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxParallel)
	for index := 0; index < BlockCount; index++ {
		index := index
		g.Go(func() error {
			x, y := BlockCoords(index)
			bundle.Blocks[index] = LoadBlock(gctx, a.repo, bundle.Dir, x, y)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	present := len(bundle.PresentBlocks())
	a.metrics.blocksLoaded.Add(float64(present))
	a.metrics.blocksAbsent.Add(float64(BlockCount - present))
	elapsed := time.Since(start)
	a.metrics.assembleSeconds.Observe(elapsed.Seconds())

	span.SetAttributes(attribute.Int("zone.blocks", present))
	log.Info("✅ Зона %d собрана: %d блоков за %v", int(id), present, elapsed)
	return bundle, nil
}

// loadCatalog загружает каталог объектов. Отсутствующий или повреждённый
// каталог заменяется пустым.
func (a *Assembler) loadCatalog(ctx context.Context, path string) *formats.ObjectCatalog {
	if path == "" {
		return &formats.ObjectCatalog{}
	}

	data, err := a.repo.Read(ctx, path)
	if err != nil {
		if !vfs.IsNotFound(err) {
			logging.GetZoneLogger().Warn("⚠️ Ошибка чтения каталога %s: %v", path, err)
		}
		return &formats.ObjectCatalog{}
	}

	catalog, err := formats.DecodeObjectCatalog(data)
	if err != nil {
		logging.GetZoneLogger().Warn("⚠️ Ошибка разбора каталога %s: %v", path, err)
		return &formats.ObjectCatalog{}
	}
	return catalog
}
