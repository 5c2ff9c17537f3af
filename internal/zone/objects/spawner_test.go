package objects

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/zone-streamer/internal/formats"
	"github.com/annel0/zone-streamer/internal/physics"
	"github.com/annel0/zone-streamer/internal/render"
	"github.com/annel0/zone-streamer/internal/scene"
	"github.com/annel0/zone-streamer/internal/vfs"
	"github.com/annel0/zone-streamer/internal/zone"
)

type fixture struct {
	graph   *scene.World
	reg     *render.StreamingRegistry
	physics *physics.World
	spawner *Spawner
}

func newFixture() *fixture {
	graph := scene.NewWorld()
	reg := render.NewStreamingRegistry(context.Background(), vfs.NewMemoryRepository(), 0)
	world := physics.NewWorld(reg, graph)
	return &fixture{graph: graph, reg: reg, physics: world, spawner: NewSpawner(graph, reg, world)}
}

func intPtr(v int) *int { return &v }

func houseCatalog() *formats.ObjectCatalog {
	return &formats.ObjectCatalog{
		Meshes: []string{"WALL.ZMS", "ROOF.ZMS"},
		Materials: []formats.CatalogMaterial{
			{Path: "WALL.DDS", ZTest: true, ZWrite: true, Alpha: 1},
			{Path: "ROOF.DDS", ZTest: true, ZWrite: true, Alpha: 0.5, AlphaEnabled: true},
		},
		Effects: []string{"SMOKE.EFT"},
		Objects: []formats.CatalogObject{{
			Parts: []formats.ObjectPart{
				{Mesh: 0, Material: 0, Rotation: formats.IdentityQuat, Scale: formats.OneScale, CollisionShape: formats.CollisionShapeOBB},
				{Mesh: 1, Material: 1, Rotation: formats.IdentityQuat, Scale: formats.OneScale, Parent: intPtr(0),
					Position: formats.Vec3{0, 0, 300}, Animation: "ROOF.ZMO"},
			},
			Effects: []formats.ObjectEffect{
				{Effect: 0, Type: formats.EffectDayNight, Part: intPtr(1), Rotation: formats.IdentityQuat, Scale: formats.OneScale},
				{Effect: 0, Type: formats.EffectNormal, Rotation: formats.IdentityQuat, Scale: formats.OneScale},
			},
		}},
	}
}

func placement(x, y float32) formats.ObjectPlacement {
	return formats.ObjectPlacement{
		ObjectID: 0,
		Position: formats.Vec3{x, y, 0},
		Rotation: formats.IdentityQuat,
		Scale:    formats.OneScale,
	}
}

func TestSpawnPlacementsDeduplicatesResources(t *testing.T) {
	f := newFixture()
	root := f.graph.Spawn(scene.NoEntity)

	block := &zone.TerrainBlock{X: 30, Y: 30, Placements: &formats.BlockPlacements{}}
	for i := 0; i < 200; i++ {
		block.Placements.Cnst = append(block.Placements.Cnst, placement(float32(i*100), 0))
	}

	objects := f.spawner.SpawnPlacements(zone.CategoryConstruction, houseCatalog(), block, "ZONE/30_30/LIGHTMAP", root)
	require.Len(t, objects, 200)

	assert.Equal(t, 2, f.reg.Count(render.KindMesh), "одна сетка на индекс каталога")
	assert.Equal(t, 2, f.reg.Count(render.KindMaterial), "один материал на индекс каталога")
	assert.Equal(t, 2, f.reg.Count(render.KindTexture))
	assert.Len(t, f.spawner.Handles(), 6)

	// Объект, две части и два эффекта на размещение
	assert.Equal(t, 1+200*5, f.graph.Count())
}

func TestPartHierarchyAnimationAndEffects(t *testing.T) {
	f := newFixture()
	root := f.graph.Spawn(scene.NoEntity)
	block := &zone.TerrainBlock{Placements: &formats.BlockPlacements{Deco: []formats.ObjectPlacement{placement(0, 0)}}}

	objects := f.spawner.SpawnPlacements(zone.CategoryDecoration, houseCatalog(), block, "L", root)
	require.Len(t, objects, 1)
	object := objects[0]

	children := f.graph.Children(object)
	require.Len(t, children, 2, "первая часть и эффект объекта")
	wall := children[0]

	wallMeta, ok := scene.Get[zone.Object](f.graph, wall)
	require.True(t, ok)
	assert.Equal(t, zone.KindObjectPart, wallMeta.Kind)
	assert.Equal(t, "WALL.ZMS", wallMeta.MeshPath)

	wallChildren := f.graph.Children(wall)
	require.Len(t, wallChildren, 1)
	roof := wallChildren[0]

	anim, ok := scene.Get[zone.Animation](f.graph, roof)
	require.True(t, ok)
	assert.Equal(t, "ROOF.ZMO", anim.Path)

	roofTransform, ok := scene.Get[scene.Transform](f.graph, roof)
	require.True(t, ok)
	assert.True(t, roofTransform.Translation.ApproxEqual(mgl32.Vec3{0, 3, 0}), "Z вверх переводится в Y вверх")

	roofChildren := f.graph.Children(roof)
	require.Len(t, roofChildren, 1)
	effect, ok := scene.Get[zone.Effect](f.graph, roofChildren[0])
	require.True(t, ok)
	assert.True(t, effect.DayNight)
	assert.Equal(t, "SMOKE.EFT", effect.Path)

	rootEffect, ok := scene.Get[zone.Effect](f.graph, children[1])
	require.True(t, ok)
	assert.False(t, rootEffect.DayNight)
}

func TestPlacementTransform(t *testing.T) {
	p := formats.ObjectPlacement{
		Position: formats.Vec3{100, 200, 300},
		Rotation: formats.Quat{0.1, 0.2, 0.3, 0.9},
		Scale:    formats.Vec3{1, 2, 3},
	}
	tr := PlacementTransform(p)
	assert.True(t, tr.Translation.ApproxEqual(mgl32.Vec3{5201, 3, -5202}))
	assert.Equal(t, mgl32.Quat{W: 0.9, V: mgl32.Vec3{0.1, 0.3, -0.2}}, tr.Rotation)
	assert.Equal(t, mgl32.Vec3{1, 3, 2}, tr.Scale)
}

func TestCollisionFilter(t *testing.T) {
	_, ok := CollisionFilter(zone.CategoryConstruction, formats.CollisionShapeNone, 0)
	assert.False(t, ok, "без формы коллайдер не создаётся")

	filter, ok := CollisionFilter(zone.CategoryConstruction, formats.CollisionShapeOBB, 0)
	require.True(t, ok)
	assert.Equal(t, physics.FilterInspectable|physics.FilterCollidable|physics.FilterMoveable|physics.FilterClickable|physics.FilterCamera, filter)

	filter, _ = CollisionFilter(zone.CategoryDecoration, formats.CollisionShapeSphere,
		formats.CollisionNotMoveable|formats.CollisionNotPickable|formats.CollisionNotCameraCollision)
	assert.Equal(t, physics.FilterInspectable|physics.FilterCollidable, filter)

	filter, _ = CollisionFilter(zone.CategoryConstruction, formats.CollisionShapePolygon, formats.CollisionHeightOnly)
	assert.Equal(t, physics.FilterMoveable, filter, "только вертикальные пробы")

	for _, category := range []zone.ObjectCategory{zone.CategoryEvent, zone.CategoryWarp} {
		filter, ok = CollisionFilter(category, formats.CollisionShapeAABB, 0)
		require.True(t, ok)
		assert.Equal(t, physics.FilterInspectable, filter)
	}

	assert.Equal(t, physics.GroupZoneObject, CollisionGroup(zone.CategoryDecoration))
	assert.Equal(t, physics.GroupZoneEventObject, CollisionGroup(zone.CategoryEvent))
	assert.Equal(t, physics.GroupZoneWarpObject, CollisionGroup(zone.CategoryWarp))
}

func TestCollidersAttachedPerCategory(t *testing.T) {
	f := newFixture()
	root := f.graph.Spawn(scene.NoEntity)
	block := &zone.TerrainBlock{Placements: &formats.BlockPlacements{
		Cnst: []formats.ObjectPlacement{placement(0, 0)},
		Warp: []formats.ObjectPlacement{{ObjectID: 0, WarpID: 4, Rotation: formats.IdentityQuat, Scale: formats.OneScale}},
	}}
	catalog := houseCatalog()

	f.spawner.SpawnPlacements(zone.CategoryConstruction, catalog, block, "L", root)
	warps := f.spawner.SpawnPlacements(zone.CategoryWarp, catalog, block, "L", root)
	require.Len(t, warps, 1)

	meta, _ := scene.Get[zone.Object](f.graph, warps[0])
	assert.Equal(t, 4, meta.WarpID)

	// Коллайдеры ждут загрузки сеток
	f.physics.Step()
	assert.Equal(t, 2, f.physics.Pending(), "по одной части с формой на объект")
}

func TestLightmapsSelectDistinctMaterials(t *testing.T) {
	f := newFixture()
	root := f.graph.Spawn(scene.NoEntity)
	block := &zone.TerrainBlock{
		Placements: &formats.BlockPlacements{Cnst: []formats.ObjectPlacement{placement(0, 0), placement(100, 0), placement(200, 0)}},
		LightmapsCnst: &formats.Lightmap{Objects: []formats.LightmapObject{
			{ID: 1, Parts: []formats.LightmapPart{{Filename: "A.DDS", AtlasIndex: 0, PartsPerRow: 2}}},
			{ID: 2, Parts: []formats.LightmapPart{{Filename: "A.DDS", AtlasIndex: 3, PartsPerRow: 2}}},
		}},
	}

	f.spawner.SpawnPlacements(zone.CategoryConstruction, houseCatalog(), block, "ZONE/0_0/LIGHTMAP", root)

	// Стена: две разные ячейки атласа и вариант без лайтмапа; крыша: один материал
	assert.Equal(t, 4, f.reg.Count(render.KindMaterial))
	assert.Equal(t, 3, f.reg.Count(render.KindTexture), "лайтмап загружается один раз")
}

func TestLightmapUV(t *testing.T) {
	offset, scale := LightmapUV(&formats.LightmapPart{AtlasIndex: 5, PartsPerRow: 4})
	assert.Equal(t, mgl32.Vec2{1, 1}, offset)
	assert.Equal(t, float32(0.25), scale)

	offset, scale = LightmapUV(&formats.LightmapPart{AtlasIndex: 0})
	assert.Equal(t, mgl32.Vec2{0, 0}, offset)
	assert.Equal(t, float32(1), scale)
}

func TestMaterialParams(t *testing.T) {
	cutoff := float32(0.5)
	p := MaterialParams(formats.CatalogMaterial{
		Alpha: 0.4, AlphaEnabled: true, AlphaTest: &cutoff, TwoSided: true, ZTest: true,
		Specular: true, IsSkin: true, Glow: formats.GlowSimple, GlowColor: formats.Vec3{1, 0, 0},
	})
	require.NotNil(t, p.Alpha)
	assert.Equal(t, float32(0.4), *p.Alpha)
	assert.Equal(t, &cutoff, p.AlphaCutoff)
	assert.Equal(t, render.BlendAlpha, p.Blend)
	assert.True(t, p.TwoSided)
	assert.False(t, p.ZWrite)
	assert.True(t, p.Skinned)
	require.NotNil(t, p.Glow)
	assert.Equal(t, "simple", p.Glow.Kind)

	opaque := MaterialParams(formats.CatalogMaterial{Alpha: 1, BlendMode: formats.BlendLighten})
	assert.Nil(t, opaque.Alpha)
	assert.Equal(t, render.BlendAdditive, opaque.Blend)
}

func TestUnknownObjectIsSkipped(t *testing.T) {
	f := newFixture()
	root := f.graph.Spawn(scene.NoEntity)
	block := &zone.TerrainBlock{Placements: &formats.BlockPlacements{Cnst: []formats.ObjectPlacement{{ObjectID: 42}}}}

	assert.Empty(t, f.spawner.SpawnPlacements(zone.CategoryConstruction, houseCatalog(), block, "L", root))
	assert.Equal(t, 1, f.graph.Count())
}

func TestSpawnBundleCoversAllCategories(t *testing.T) {
	f := newFixture()
	root := f.graph.Spawn(scene.NoEntity)
	catalog := houseCatalog()
	bundle := &zone.Bundle{Dir: "ZONE", Cnst: catalog, Deco: catalog, Event: catalog, Warp: catalog}
	bundle.Blocks[zone.BlockIndex(2, 2)] = &zone.TerrainBlock{X: 2, Y: 2, Placements: &formats.BlockPlacements{
		Cnst:  []formats.ObjectPlacement{placement(0, 0)},
		Deco:  []formats.ObjectPlacement{placement(0, 0)},
		Event: []formats.ObjectPlacement{placement(0, 0)},
		Warp:  []formats.ObjectPlacement{placement(0, 0)},
	}}

	assert.Len(t, f.spawner.SpawnBundle(bundle, root), 4)
}
