package streaming

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/zone-streamer/internal/devdata"
	"github.com/annel0/zone-streamer/internal/eventbus"
	"github.com/annel0/zone-streamer/internal/physics"
	"github.com/annel0/zone-streamer/internal/render"
	"github.com/annel0/zone-streamer/internal/scene"
	"github.com/annel0/zone-streamer/internal/vfs"
	"github.com/annel0/zone-streamer/internal/zone"
)

// countingLoader считает вызовы сборки и может задерживать их до открытия gate
type countingLoader struct {
	*zone.Assembler
	calls atomic.Int32
	gate  chan struct{}
}

func (l *countingLoader) Assemble(ctx context.Context, id zone.ID) (*zone.Bundle, error) {
	l.calls.Add(1)
	if l.gate != nil {
		select {
		case <-l.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return l.Assembler.Assemble(ctx, id)
}

// recordingGraph записывает порядок операций над сценой
type recordingGraph struct {
	*scene.World
	mu  sync.Mutex
	ops []string
}

func (g *recordingGraph) Spawn(parent scene.Entity, components ...any) scene.Entity {
	e := g.World.Spawn(parent, components...)
	for _, c := range components {
		switch v := c.(type) {
		case zone.Root:
			g.record("spawn-root", int(v.ID))
		case zone.Object:
			if v.Kind == zone.KindObject {
				g.record("spawn-object", 0)
			}
		}
	}
	return e
}

func (g *recordingGraph) DespawnRecursive(e scene.Entity) {
	if root, ok := scene.Get[zone.Root](g.World, e); ok {
		g.record("despawn-root", int(root.ID))
	}
	g.World.DespawnRecursive(e)
}

func (g *recordingGraph) record(op string, id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if op == "spawn-object" && len(g.ops) > 0 && g.ops[len(g.ops)-1] == op {
		return
	}
	if id > 0 {
		op = fmt.Sprintf("%s:%d", op, id)
	}
	g.ops = append(g.ops, op)
}

type testEnv struct {
	ctx      context.Context
	repo     *vfs.MemoryRepository
	loader   *countingLoader
	graph    *recordingGraph
	registry *render.StreamingRegistry
	physics  *physics.World
	ctrl     *Controller
}

func newTestEnv(t *testing.T, gate chan struct{}, opts ...Option) *testEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	repo := vfs.NewMemoryRepository()
	_, err := devdata.Generate(ctx, repo, devdata.Options{Seed: 11})
	require.NoError(t, err)

	list, err := zone.LoadList(ctx, repo, devdata.ZoneListPath)
	require.NoError(t, err)

	loader := &countingLoader{Assembler: zone.NewAssembler(repo, list, zone.WithMaxParallel(16)), gate: gate}
	graph := &recordingGraph{World: scene.NewWorld()}
	registry := render.NewStreamingRegistry(ctx, repo, 0)
	world := physics.NewWorld(registry, graph)

	return &testEnv{
		ctx:      ctx,
		repo:     repo,
		loader:   loader,
		graph:    graph,
		registry: registry,
		physics:  world,
		ctrl:     NewController(ctx, loader, graph, registry, world, opts...),
	}
}

// waitAssembled дожидается завершения сборки запроса
func (e *testEnv) waitAssembled(t *testing.T, req *LoadRequest) {
	t.Helper()
	ctx, cancel := context.WithTimeout(e.ctx, 10*time.Second)
	defer cancel()
	_, err := req.Handle.Wait(ctx)
	require.NoError(t, err)
}

// activate загружает зону до готовности, подгружая все ресурсы
func (e *testEnv) activate(t *testing.T, id zone.ID, despawnOthers bool) []ZoneEvent {
	t.Helper()
	req, err := e.ctrl.RequestLoad(id, despawnOthers)
	require.NoError(t, err)
	if req == nil {
		return e.ctrl.Tick()
	}
	e.waitAssembled(t, req)

	var events []ZoneEvent
	for i := 0; i < 20; i++ {
		e.registry.Pump(e.ctx, 0)
		tick := e.ctrl.Tick()
		events = append(events, tick...)
		for _, ev := range tick {
			if ev.Kind == EventZoneLoaded && ev.Zone == id {
				return events
			}
		}
	}
	t.Fatalf("зона %d не стала готовой", id)
	return nil
}

func kinds(events []ZoneEvent) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestDuplicateRequestsAssembleOnce(t *testing.T) {
	gate := make(chan struct{})
	env := newTestEnv(t, gate)

	first, err := env.ctrl.RequestLoad(2, false)
	require.NoError(t, err)
	second, err := env.ctrl.RequestLoad(2, true)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.True(t, first.DespawnOthers, "флаг повторного запроса переносится в активный")

	for i := 0; i < 3; i++ {
		assert.Empty(t, env.ctrl.Tick())
		assert.Equal(t, RequestLoading, first.State)
	}
	assert.Equal(t, SlotLoading, env.ctrl.ZoneState(2))

	close(gate)
	env.waitAssembled(t, first)
	env.ctrl.Tick()
	assert.Equal(t, RequestSpawned, first.State)

	_, err = env.ctrl.RequestLoad(2, false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), env.loader.calls.Load())
	assert.Equal(t, 1, env.ctrl.Cache().Assemblies())
}

func TestSettleDelay(t *testing.T) {
	env := newTestEnv(t, nil)

	req, err := env.ctrl.RequestLoad(2, false)
	require.NoError(t, err)
	env.waitAssembled(t, req)

	env.ctrl.Tick()
	require.Equal(t, RequestSpawned, req.State)
	assert.Equal(t, SlotSpawned, env.ctrl.ZoneState(2))
	assert.NotEmpty(t, req.Assets)

	// Ресурсы ещё в очереди
	assert.Empty(t, env.ctrl.Tick())
	assert.Equal(t, -1, req.SettleCount())
	assert.Positive(t, req.PendingAssets())

	env.registry.Pump(env.ctx, 0)
	assert.Empty(t, env.ctrl.Tick(), "первый тик с готовыми ресурсами")
	assert.Equal(t, 0, req.SettleCount())
	assert.Empty(t, env.ctrl.Tick(), "второй тик ожидания")

	events := env.ctrl.Tick()
	require.Len(t, events, 1)
	assert.Equal(t, EventZoneLoaded, events[0].Kind)
	assert.Equal(t, zone.ID(2), events[0].Zone)
	assert.False(t, events[0].Degraded)
	assert.Equal(t, req.ID.String(), events[0].RequestID)
	assert.Equal(t, RequestReady, req.State)
	assert.Empty(t, env.ctrl.Requests())

	current, ok := env.ctrl.CurrentZone()
	require.True(t, ok)
	assert.Equal(t, zone.ID(2), current.ID)
	assert.True(t, env.graph.Exists(current.Root))

	root, ok := scene.Get[zone.Root](env.graph.World, current.Root)
	require.True(t, ok)
	assert.Equal(t, zone.ID(2), root.ID)
}

func TestInvalidZoneLeavesSceneUntouched(t *testing.T) {
	env := newTestEnv(t, nil)
	env.activate(t, 1, false)

	before := env.graph.Count()
	_, err := env.ctrl.RequestLoad(99, true)
	assert.ErrorIs(t, err, zone.ErrInvalidZoneID)

	events := env.ctrl.Tick()
	require.Len(t, events, 1)
	assert.Equal(t, EventZoneLoadFailed, events[0].Kind)
	assert.ErrorIs(t, events[0].Err, zone.ErrInvalidZoneID)

	assert.Equal(t, before, env.graph.Count())
	current, ok := env.ctrl.CurrentZone()
	require.True(t, ok)
	assert.Equal(t, zone.ID(1), current.ID)
	assert.Equal(t, SlotSpawned, env.ctrl.ZoneState(1))
	assert.Equal(t, int32(1), env.loader.calls.Load())
}

func TestDespawnOthersBeforeSpawning(t *testing.T) {
	env := newTestEnv(t, nil)
	env.activate(t, 1, false)
	rootB, ok := env.ctrl.Cache().Root(1)
	require.True(t, ok)

	env.graph.mu.Lock()
	env.graph.ops = nil
	env.graph.mu.Unlock()

	events := env.activate(t, 3, true)
	assert.Equal(t, []EventKind{EventZoneDespawned, EventZoneLoaded}, kinds(events))
	assert.Equal(t, zone.ID(1), events[0].Zone)

	env.graph.mu.Lock()
	ops := append([]string(nil), env.graph.ops...)
	env.graph.mu.Unlock()
	require.GreaterOrEqual(t, len(ops), 3)
	assert.Equal(t, []string{"despawn-root:1", "spawn-root:3", "spawn-object"}, ops[:3])

	assert.False(t, env.graph.Exists(rootB))
	assert.Equal(t, SlotLoaded, env.ctrl.ZoneState(1), "собранная зона сохраняется")
	assert.Equal(t, []zone.ID{3}, env.ctrl.Cache().Spawned())

	// Коллайдеры удалённой зоны исчезают на следующем шаге физики
	env.physics.Step()
	for _, e := range env.physics.Query(physics.GroupZoneTerrain, physics.FilterMoveable) {
		assert.True(t, env.graph.Exists(e))
	}
}

func TestReactivationReusesBundle(t *testing.T) {
	env := newTestEnv(t, nil)
	env.activate(t, 2, false)
	env.activate(t, 3, true)
	require.Equal(t, SlotLoaded, env.ctrl.ZoneState(2))

	heightmap := zone.PathsForBlock(devdata.DefaultZones()[1].Dir(), 5, 5).Heightmap
	reads := env.repo.ReadCount(heightmap)
	require.Positive(t, reads)

	events := env.activate(t, 2, true)
	assert.Equal(t, []EventKind{EventZoneDespawned, EventZoneLoaded}, kinds(events))
	assert.Equal(t, reads, env.repo.ReadCount(heightmap), "блоки не перечитываются")
	assert.Equal(t, int32(2), env.loader.calls.Load())

	// Зона уже в сцене: запрос выполняется сразу
	req, err := env.ctrl.RequestLoad(2, false)
	require.NoError(t, err)
	assert.Nil(t, req)
	events = env.ctrl.Tick()
	require.Len(t, events, 1)
	assert.Equal(t, EventZoneLoaded, events[0].Kind)
	assert.Equal(t, int32(2), env.loader.calls.Load())
	assert.Equal(t, 2, env.ctrl.Cache().Assemblies())
}

func TestFailedAssetsMarkZoneDegraded(t *testing.T) {
	env := newTestEnv(t, nil)
	env.repo.Remove("3DDATA/TERRAIN/TILES/JUNON/JD_GRASS01.DDS")

	events := env.activate(t, 2, false)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, EventZoneLoaded, last.Kind)
	assert.True(t, last.Degraded)
}

func TestAssetTimeout(t *testing.T) {
	env := newTestEnv(t, nil, WithAssetTimeoutTicks(3))

	req, err := env.ctrl.RequestLoad(2, false)
	require.NoError(t, err)
	env.waitAssembled(t, req)

	var loaded *ZoneEvent
	for i := 0; i < 10 && loaded == nil; i++ {
		for _, ev := range env.ctrl.Tick() {
			if ev.Kind == EventZoneLoaded {
				ev := ev
				loaded = &ev
			}
		}
	}
	require.NotNil(t, loaded, "ресурсы не загружаются, но таймаут завершает запрос")
	assert.True(t, loaded.Degraded)
	assert.Equal(t, 5, loaded.Ticks)
}

func TestFailedAssemblyIsRetried(t *testing.T) {
	env := newTestEnv(t, nil)
	zonPath := devdata.DefaultZones()[1].ZonPath()
	zonData, err := env.repo.Read(env.ctx, zonPath)
	require.NoError(t, err)
	env.repo.Remove(zonPath)

	req, err := env.ctrl.RequestLoad(2, false)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(env.ctx, 5*time.Second)
	defer cancel()
	_, err = req.Handle.Wait(ctx)
	require.ErrorIs(t, err, zone.ErrZoneDataUnavailable)

	events := env.ctrl.Tick()
	require.Len(t, events, 1)
	assert.Equal(t, EventZoneLoadFailed, events[0].Kind)
	assert.Equal(t, SlotUnloaded, env.ctrl.ZoneState(2))
	assert.Empty(t, env.ctrl.Requests())

	require.NoError(t, env.repo.Write(env.ctx, zonPath, zonData))
	env.activate(t, 2, false)
	assert.Equal(t, int32(2), env.loader.calls.Load())
}

func TestEnqueuePublishesEvents(t *testing.T) {
	bus := eventbus.NewMemoryBus(32)
	env := newTestEnv(t, nil, WithEventBus(bus, "test"), WithInboxSize(1))

	var mu sync.Mutex
	var received []eventbus.ZoneEvent
	sub, err := bus.Subscribe(env.ctx, eventbus.Filter{Sources: []string{"test"}}, func(_ context.Context, ev *eventbus.Envelope) {
		zev, err := eventbus.DecodeZoneEvent(ev)
		if err == nil {
			mu.Lock()
			received = append(received, zev)
			mu.Unlock()
		}
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NoError(t, env.ctrl.Enqueue(Command{Zone: 2}))
	assert.ErrorIs(t, env.ctrl.Enqueue(Command{Zone: 3}), ErrInboxFull)

	env.ctrl.Tick()
	require.Len(t, env.ctrl.Requests(), 1)
	env.waitAssembled(t, env.ctrl.Requests()[0])
	for i := 0; i < 10; i++ {
		env.registry.Pump(env.ctx, 0)
		env.ctrl.Tick()
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, eventbus.TypeZoneLoaded, received[0].Type)
	assert.Equal(t, 2, received[0].ZoneID)
	assert.Equal(t, "Canyon City of Zant", received[0].ZoneName)
	assert.Equal(t, 2, received[0].Blocks)
}

func TestStatusSnapshot(t *testing.T) {
	env := newTestEnv(t, nil)
	status := env.ctrl.Status()
	require.Len(t, status.Zones, 3)
	assert.Nil(t, status.Current)
	for _, z := range status.Zones {
		assert.Equal(t, "unloaded", z.State)
	}

	env.activate(t, 2, false)
	status = env.ctrl.Status()
	require.NotNil(t, status.Current)
	assert.Equal(t, 2, *status.Current)
	assert.Empty(t, status.Requests)
	assert.Equal(t, "spawned", status.Zones[1].State)
	assert.True(t, status.Zones[1].Current)
	assert.Equal(t, 2, status.Zones[1].Blocks)
	assert.NotZero(t, status.Zones[1].Root)
	assert.Positive(t, status.Tick)

	current, _ := env.ctrl.CurrentZone()
	y := float32((zone.BlockOriginRow - 0.5) * 16000)
	assert.Equal(t, current.Bundle.HeightAt(8000, y), current.HeightAt(8000, y))
	assert.Zero(t, current.HeightAt(8000+16000, y), "блок (1,0) отсутствует")
}
