package streaming

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/annel0/zone-streamer/internal/eventbus"
	"github.com/annel0/zone-streamer/internal/logging"
	"github.com/annel0/zone-streamer/internal/physics"
	"github.com/annel0/zone-streamer/internal/render"
	"github.com/annel0/zone-streamer/internal/scene"
	"github.com/annel0/zone-streamer/internal/zone"
	"github.com/annel0/zone-streamer/internal/zone/objects"
	"github.com/annel0/zone-streamer/internal/zone/terrain"
)

// ErrInboxFull очередь команд контроллера переполнена
var ErrInboxFull = errors.New("streaming: request inbox is full")

// Command запрос загрузки, переданный из другой горутины
type Command struct {
	Zone          zone.ID
	DespawnOthers bool
}

// Stepper движок коллизий, достраивающий коллайдеры раз в тик
type Stepper interface {
	Step() int
}

// CurrentZone последняя зона, ставшая готовой
type CurrentZone struct {
	ID     zone.ID
	Bundle *zone.Bundle
	Root   scene.Entity
}

// HeightAt высота рельефа текущей зоны
func (z *CurrentZone) HeightAt(x, y float32) float32 {
	return z.Bundle.HeightAt(x, y)
}

// TileAt индекс текстуры тайла текущей зоны
func (z *CurrentZone) TileAt(x, y float32) int {
	return z.Bundle.TileAt(x, y)
}

// Option настраивает Controller
type Option func(*Controller)

// WithSettleTicks задаёт число тиков ожидания после загрузки ресурсов
func WithSettleTicks(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.settleTicks = n
		}
	}
}

// WithAssetTimeoutTicks задаёт таймаут ожидания ресурсов (0 = без таймаута)
func WithAssetTimeoutTicks(n int) Option {
	return func(c *Controller) {
		if n >= 0 {
			c.timeoutTicks = n
		}
	}
}

// WithEventBus публикует события зон в шину от имени source
func WithEventBus(bus eventbus.EventBus, source string) Option {
	return func(c *Controller) {
		c.bus = bus
		if source != "" {
			c.source = source
		}
	}
}

// WithMetrics подключает метрики контроллера
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithInboxSize задаёт ёмкость очереди команд
func WithInboxSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.inbox = make(chan Command, n)
		}
	}
}

// Controller продвигает запросы загрузки раз в тик, наполняет и очищает
// сцену. Все методы, кроме Enqueue, Status и CurrentZone, вызываются
// из одной горутины симуляции.
type Controller struct {
	ctx      context.Context
	list     *zone.List
	cache    *ZoneCache
	graph    scene.Graph
	registry render.Registry
	physics  physics.Engine

	settleTicks  int
	timeoutTicks int
	bus          eventbus.EventBus
	source       string
	metrics      *Metrics

	requests []*LoadRequest
	events   []ZoneEvent
	inbox    chan Command
	tick     uint64

	mu      sync.RWMutex
	current *CurrentZone
	status  Status
}

// NewController создаёт контроллер активации зон
func NewController(ctx context.Context, loader BundleLoader, graph scene.Graph, registry render.Registry, engine physics.Engine, opts ...Option) *Controller {
	c := &Controller{
		ctx:          ctx,
		list:         loader.List(),
		cache:        NewZoneCache(ctx, loader),
		graph:        graph,
		registry:     registry,
		physics:      engine,
		settleTicks:  2,
		timeoutTicks: 1800,
		source:       "zone-streamer",
		inbox:        make(chan Command, 64),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = NewMetrics(nil)
	}
	c.refreshStatus()
	return c
}

// Cache кэш зон контроллера
func (c *Controller) Cache() *ZoneCache { return c.cache }

// List список зон
func (c *Controller) List() *zone.List { return c.list }

// Requests активные запросы загрузки
func (c *Controller) Requests() []*LoadRequest {
	return append([]*LoadRequest(nil), c.requests...)
}

// Enqueue передаёт запрос загрузки из любой горутины. Обрабатывается на следующем тике.
func (c *Controller) Enqueue(cmd Command) error {
	select {
	case c.inbox <- cmd:
		return nil
	default:
		return ErrInboxFull
	}
}

// RequestLoad запрашивает активацию зоны. Для уже созданной зоны запрос
// выполняется сразу и возвращается nil. Повторный запрос для зоны с активным
// запросом возвращает существующий. Неизвестный id не меняет ни кэш, ни сцену.
func (c *Controller) RequestLoad(id zone.ID, despawnOthers bool) (*LoadRequest, error) {
	log := logging.GetStreamingLogger()

	if existing := c.findRequest(id); existing != nil {
		if despawnOthers && existing.State == RequestLoading {
			existing.DespawnOthers = true
		}
		log.Debug("Зона %d уже загружается (запрос %s)", int(id), existing.ID)
		return existing, nil
	}

	lookup, err := c.cache.GetOrTriggerLoad(id)
	if err != nil {
		log.Error("❌ Запрос неизвестной зоны %d: %v", int(id), err)
		c.metrics.requestsTotal.WithLabelValues(resultFailed).Inc()
		c.emit(ZoneEvent{Kind: EventZoneLoadFailed, Zone: id, Err: err})
		return nil, err
	}

	if lookup.Kind == LookupAlreadySpawned {
		if despawnOthers {
			c.despawnOthers(id)
		}
		bundle, _ := c.cache.Bundle(id)
		c.setCurrent(&CurrentZone{ID: id, Bundle: bundle, Root: lookup.Root})
		c.metrics.requestsTotal.WithLabelValues(resultCached).Inc()
		c.emit(ZoneEvent{Kind: EventZoneLoaded, Zone: id, Root: lookup.Root})
		log.Debug("Зона %d уже в сцене", int(id))
		c.refreshStatus()
		return nil, nil
	}

	req := newLoadRequest(id, despawnOthers, lookup.Handle)
	c.requests = append(c.requests, req)
	log.Info("📥 Запрос загрузки зоны %d (%s), despawn_others=%t", int(id), req.ID, despawnOthers)
	c.refreshStatus()
	return req, nil
}

// Tick продвигает все активные запросы на один шаг и возвращает события тика
func (c *Controller) Tick() []ZoneEvent {
	c.tick++
	c.drainInbox()

	for _, req := range append([]*LoadRequest(nil), c.requests...) {
		if !c.hasRequest(req) {
			continue // удалён при очистке другой зоны
		}
		switch req.State {
		case RequestLoading:
			c.advanceLoading(req)
		case RequestSpawned:
			c.advanceSpawned(req)
		}
	}

	if stepper, ok := c.physics.(Stepper); ok {
		stepper.Step()
	}

	c.refreshStatus()
	events := c.events
	c.events = nil
	c.publish(events)
	return events
}

// Run вызывает Tick с периодом interval и обрабатывает команды до отмены ctx
func (c *Controller) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

func (c *Controller) drainInbox() {
	for {
		select {
		case cmd := <-c.inbox:
			_, _ = c.RequestLoad(cmd.Zone, cmd.DespawnOthers)
		default:
			return
		}
	}
}

func (c *Controller) advanceLoading(req *LoadRequest) {
	bundle, done, err := req.Handle.Poll()
	if !done {
		return
	}

	log := logging.GetStreamingLogger()
	if err != nil {
		log.Error("❌ Зона %d не загружена: %v", int(req.Zone), err)
		c.cache.Discard(req.Zone)
		c.removeRequest(req)
		c.metrics.requestsTotal.WithLabelValues(resultFailed).Inc()
		c.emit(ZoneEvent{Kind: EventZoneLoadFailed, Zone: req.Zone, RequestID: req.ID.String(), Err: err})
		return
	}

	// Старые зоны удаляются до появления объектов новой
	if req.DespawnOthers {
		c.despawnOthers(req.Zone)
	}

	root, assets := c.populate(bundle)
	c.cache.RecordSpawned(req.Zone, root)
	req.markSpawned(bundle, root, assets)
	log.Info("🌍 Зона %d в сцене, ожидаем %d ресурсов", int(req.Zone), len(assets))
}

func (c *Controller) advanceSpawned(req *LoadRequest) {
	if !req.pollAssets(c.registry, c.settleTicks, c.timeoutTicks) {
		return
	}

	req.State = RequestReady
	c.removeRequest(req)
	c.setCurrent(&CurrentZone{ID: req.Zone, Bundle: req.Bundle, Root: req.Root})

	result := resultReady
	if req.Degraded {
		result = resultDegraded
	}
	c.metrics.requestsTotal.WithLabelValues(result).Inc()
	c.metrics.readyTicks.Observe(float64(req.spawnedTicks))

	logging.GetStreamingLogger().Info("✅ Зона %d готова за %d тиков (degraded=%t)", int(req.Zone), req.spawnedTicks, req.Degraded)
	c.emit(ZoneEvent{
		Kind:      EventZoneLoaded,
		Zone:      req.Zone,
		RequestID: req.ID.String(),
		Root:      req.Root,
		Degraded:  req.Degraded,
		Ticks:     req.spawnedTicks,
	})
}

// populate создаёт корень зоны, рельеф, воду и объекты. Возвращает ресурсы,
// готовность которых опрашивает запрос.
func (c *Controller) populate(bundle *zone.Bundle) (scene.Entity, []render.Handle) {
	root := c.graph.Spawn(scene.NoEntity,
		zone.Root{ID: bundle.ID},
		zone.Object{Kind: zone.KindZoneRoot},
		scene.IdentityTransform(),
	)

	ground := terrain.Spawner{Graph: c.graph, Registry: c.registry, Physics: c.physics}
	assets := ground.SpawnZone(bundle, root)

	spawner := objects.NewSpawner(c.graph, c.registry, c.physics)
	spawner.SpawnBundle(bundle, root)
	assets = append(assets, spawner.Handles()...)

	return root, assets
}

// despawnOthers удаляет сцены всех созданных зон, кроме keep
func (c *Controller) despawnOthers(keep zone.ID) {
	for _, id := range c.cache.Spawned() {
		if id == keep {
			continue
		}
		root, _ := c.cache.Root(id)
		c.graph.DespawnRecursive(root)
		c.cache.ClearSpawned(id)

		if req := c.findRequest(id); req != nil && req.State == RequestSpawned {
			c.removeRequest(req)
		}

		c.mu.Lock()
		if c.current != nil && c.current.ID == id {
			c.current = nil
		}
		c.mu.Unlock()

		logging.GetStreamingLogger().Info("🧹 Зона %d удалена из сцены", int(id))
		c.emit(ZoneEvent{Kind: EventZoneDespawned, Zone: id, Root: root})
	}
}

func (c *Controller) emit(ev ZoneEvent) {
	c.events = append(c.events, ev)
}

func (c *Controller) findRequest(id zone.ID) *LoadRequest {
	for _, req := range c.requests {
		if req.Zone == id {
			return req
		}
	}
	return nil
}

func (c *Controller) hasRequest(target *LoadRequest) bool {
	for _, req := range c.requests {
		if req == target {
			return true
		}
	}
	return false
}

func (c *Controller) removeRequest(target *LoadRequest) {
	for i, req := range c.requests {
		if req == target {
			c.requests = append(c.requests[:i], c.requests[i+1:]...)
			return
		}
	}
}

func (c *Controller) setCurrent(z *CurrentZone) {
	c.mu.Lock()
	c.current = z
	c.mu.Unlock()
}

// CurrentZone текущая зона. Безопасен для вызова из любой горутины.
func (c *Controller) CurrentZone() (*CurrentZone, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current, c.current != nil
}
