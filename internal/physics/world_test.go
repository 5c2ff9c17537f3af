package physics

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/zone-streamer/internal/render"
	"github.com/annel0/zone-streamer/internal/scene"
	"github.com/annel0/zone-streamer/internal/vfs"
)

func slope() *TriMesh {
	// Квадрат 10×10 с высотой, растущей вдоль X
	return &TriMesh{
		Vertices: []mgl32.Vec3{{0, 0, 0}, {10, 10, 0}, {0, 0, 10}, {10, 10, 10}},
		Indices:  [][3]uint32{{0, 2, 1}, {1, 2, 3}},
	}
}

func TestCollidersBecomeReadyOnNextStep(t *testing.T) {
	graph := scene.NewWorld()
	w := NewWorld(nil, graph)

	e := graph.Spawn(scene.NoEntity)
	w.Attach(e, Shape{Mesh: slope()}, scene.IdentityTransform(), GroupZoneTerrain, FilterCollidable|FilterMoveable)

	assert.Empty(t, w.Query(GroupZoneTerrain, FilterCollidable), "коллайдер строится асинхронно")
	assert.Equal(t, 1, w.Pending())

	assert.Equal(t, 1, w.Step())
	assert.Equal(t, []scene.Entity{e}, w.Query(GroupZoneTerrain, FilterCollidable))
	assert.Empty(t, w.Query(GroupZoneObject, FilterCollidable))
	assert.Empty(t, w.Query(GroupZoneTerrain, FilterClickable))
}

func TestAssetCollidersWaitForRegistry(t *testing.T) {
	ctx := context.Background()
	repo := vfs.NewMemoryRepository()
	require.NoError(t, repo.Write(ctx, "wall.zms", []byte("mesh")))
	reg := render.NewStreamingRegistry(ctx, repo, 0)
	graph := scene.NewWorld()
	w := NewWorld(reg, graph)

	ok := graph.Spawn(scene.NoEntity)
	bad := graph.Spawn(scene.NoEntity)
	w.Attach(ok, Shape{Asset: reg.LoadMesh("wall.zms")}, scene.IdentityTransform(), GroupZoneObject, FilterCollidable)
	w.Attach(bad, Shape{Asset: reg.LoadMesh("missing.zms")}, scene.IdentityTransform(), GroupZoneObject, FilterCollidable)

	assert.Equal(t, 0, w.Step())
	assert.Equal(t, 2, w.Pending())

	reg.Pump(ctx, 0)
	assert.Equal(t, 1, w.Step())

	c, found := w.Get(bad)
	require.True(t, found)
	assert.Equal(t, ColliderFailed, c.State)
	assert.Equal(t, []scene.Entity{ok}, w.Query(GroupZoneObject, FilterCollidable))
}

func TestStepDropsCollidersOfDespawnedEntities(t *testing.T) {
	graph := scene.NewWorld()
	w := NewWorld(nil, graph)

	root := graph.Spawn(scene.NoEntity)
	child := graph.Spawn(root)
	w.Attach(child, Shape{Mesh: slope()}, scene.IdentityTransform(), GroupZoneTerrain, FilterCollidable)
	w.Step()
	require.Equal(t, 1, w.Len())

	graph.DespawnRecursive(root)
	w.Step()
	assert.Equal(t, 0, w.Len())
}

func TestProbeHeight(t *testing.T) {
	graph := scene.NewWorld()
	w := NewWorld(nil, graph)

	e := graph.Spawn(scene.NoEntity)
	w.Attach(e, Shape{Mesh: slope()}, scene.FromTranslation(mgl32.Vec3{100, 5, 100}), GroupZoneTerrain, FilterMoveable)
	w.Step()

	h, ok := w.ProbeHeight(105, 103, GroupZoneTerrain)
	require.True(t, ok)
	assert.InDelta(t, 10, h, 1e-4)

	_, ok = w.ProbeHeight(0, 0, GroupZoneTerrain)
	assert.False(t, ok)

	_, ok = w.ProbeHeight(105, 103, GroupZoneObject)
	assert.False(t, ok)
}
