// Package objects создаёт сущности размещённых объектов зоны: части
// с сетками и материалами, коллайдеры, анимации и привязанные эффекты.
package objects

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/zone-streamer/internal/formats"
	"github.com/annel0/zone-streamer/internal/logging"
	"github.com/annel0/zone-streamer/internal/physics"
	"github.com/annel0/zone-streamer/internal/render"
	"github.com/annel0/zone-streamer/internal/scene"
	"github.com/annel0/zone-streamer/internal/vfs"
	"github.com/annel0/zone-streamer/internal/zone"
)

// materialKey различает материал каталога с разными ячейками лайтмапа
type materialKey struct {
	material   int
	lightmap   string
	atlasIndex int
}

type catalogCache struct {
	meshes    map[int]render.Handle
	materials map[materialKey]render.Handle
}

// Spawner создаёт объекты одной зоны. Кэши сеток и материалов ведутся
// отдельно для каждого каталога и живут только в пределах одного Spawner.
type Spawner struct {
	graph    scene.Graph
	registry render.Registry
	physics  physics.Engine

	caches  map[zone.ObjectCategory]*catalogCache
	handles []render.Handle
	seen    map[render.Handle]bool
}

// NewSpawner создаёт спавнер для одного заполнения зоны
func NewSpawner(graph scene.Graph, registry render.Registry, engine physics.Engine) *Spawner {
	return &Spawner{
		graph:    graph,
		registry: registry,
		physics:  engine,
		caches:   make(map[zone.ObjectCategory]*catalogCache),
		seen:     make(map[render.Handle]bool),
	}
}

// Handles возвращает уникальные handle ресурсов, созданных спавнером
func (s *Spawner) Handles() []render.Handle {
	return s.handles
}

func (s *Spawner) track(h render.Handle) render.Handle {
	if h.Valid() && !s.seen[h] {
		s.seen[h] = true
		s.handles = append(s.handles, h)
	}
	return h
}

func (s *Spawner) cache(category zone.ObjectCategory) *catalogCache {
	c, ok := s.caches[category]
	if !ok {
		c = &catalogCache{
			meshes:    make(map[int]render.Handle),
			materials: make(map[materialKey]render.Handle),
		}
		s.caches[category] = c
	}
	return c
}

// SpawnBundle размещает объекты всех категорий всех блоков зоны под root
func (s *Spawner) SpawnBundle(bundle *zone.Bundle, root scene.Entity) []scene.Entity {
	var spawned []scene.Entity
	categories := []zone.ObjectCategory{
		zone.CategoryConstruction, zone.CategoryDecoration, zone.CategoryEvent, zone.CategoryWarp,
	}
	for _, block := range bundle.Blocks {
		if block == nil || block.Placements == nil {
			continue
		}
		lightmapDir := zone.PathsForBlock(bundle.Dir, block.X, block.Y).LightmapDir
		for _, category := range categories {
			spawned = append(spawned,
				s.SpawnPlacements(category, bundle.Catalog(category), block, lightmapDir, root)...)
		}
	}
	return spawned
}

// SpawnPlacements создаёт сущности для размещений категории category блока.
// Возвращает корневые сущности объектов.
func (s *Spawner) SpawnPlacements(category zone.ObjectCategory, catalog *formats.ObjectCatalog, block *zone.TerrainBlock, lightmapDir string, root scene.Entity) []scene.Entity {
	placements := block.PlacementsOf(category)
	if len(placements) == 0 {
		return nil
	}

	lightmaps := block.Lightmaps(category)
	out := make([]scene.Entity, 0, len(placements))
	for index, placement := range placements {
		object, ok := catalog.Object(placement.ObjectID)
		if !ok {
			logging.GetZoneLogger().Warn("⚠️ Блок %d_%d: %s объект %d отсутствует в каталоге",
				block.X, block.Y, category, placement.ObjectID)
			continue
		}
		out = append(out, s.spawnObject(category, catalog, object, block, index, placement, lightmaps, lightmapDir, root))
	}
	return out
}

func (s *Spawner) spawnObject(
	category zone.ObjectCategory,
	catalog *formats.ObjectCatalog,
	object *formats.CatalogObject,
	block *zone.TerrainBlock,
	index int,
	placement formats.ObjectPlacement,
	lightmaps *formats.Lightmap,
	lightmapDir string,
	root scene.Entity,
) scene.Entity {
	objectTransform := PlacementTransform(placement)
	meta := zone.Object{
		Kind:        zone.KindObject,
		Category:    category,
		BlockX:      block.X,
		BlockY:      block.Y,
		IfoObjectID: index,
		ZscObjectID: placement.ObjectID,
		PartID:      -1,
		EventID:     placement.EventID,
		WarpID:      placement.WarpID,
	}
	objectEntity := s.graph.Spawn(root, meta, objectTransform)

	cache := s.cache(category)
	group := CollisionGroup(category)
	partEntities := make([]scene.Entity, len(object.Parts))
	partWorld := make([]scene.Transform, len(object.Parts))

	for partIndex, part := range object.Parts {
		parent, parentWorld := objectEntity, objectTransform
		if part.Parent != nil && *part.Parent < partIndex {
			parent, parentWorld = partEntities[*part.Parent], partWorld[*part.Parent]
		}

		local := localTransform(part.Position, part.Rotation, part.Scale)
		partWorld[partIndex] = parentWorld.Mul(local)

		mesh := s.mesh(cache, catalog, part.Mesh)
		lit, _ := lightmaps.FindPart(index, partIndex)
		material := s.material(cache, catalog, part.Material, lit, lightmapDir)

		partMeta := meta
		partMeta.Kind = zone.KindObjectPart
		partMeta.PartID = partIndex
		partMeta.MeshPath = catalog.Meshes[part.Mesh]
		partMeta.CollisionShape = part.CollisionShape
		partMeta.CollisionFlags = part.CollisionFlags

		components := []any{partMeta, render.Renderable{Mesh: mesh, Material: material}, local}
		if part.Animation != "" {
			components = append(components, zone.Animation{Path: part.Animation})
		}
		e := s.graph.Spawn(parent, components...)
		partEntities[partIndex] = e

		if filter, ok := CollisionFilter(category, part.CollisionShape, part.CollisionFlags); ok {
			s.physics.Attach(e, physics.Shape{Asset: mesh}, partWorld[partIndex], group, filter)
		}
	}

	for _, effect := range object.Effects {
		parent := objectEntity
		if effect.Part != nil && *effect.Part >= 0 && *effect.Part < len(partEntities) {
			parent = partEntities[*effect.Part]
		}
		s.graph.Spawn(parent,
			zone.Effect{
				Path:     catalog.Effects[effect.Effect],
				Type:     effect.Type,
				DayNight: effect.Type == formats.EffectDayNight,
			},
			localTransform(effect.Position, effect.Rotation, effect.Scale),
		)
	}

	return objectEntity
}

func (s *Spawner) mesh(cache *catalogCache, catalog *formats.ObjectCatalog, id int) render.Handle {
	if h, ok := cache.meshes[id]; ok {
		return h
	}
	h := s.track(s.registry.LoadMesh(catalog.Meshes[id]))
	cache.meshes[id] = h
	return h
}

func (s *Spawner) material(cache *catalogCache, catalog *formats.ObjectCatalog, id int, lit *formats.LightmapPart, lightmapDir string) render.Handle {
	key := materialKey{material: id}
	if lit != nil {
		key.lightmap = vfs.Join(lightmapDir, lit.Filename)
		key.atlasIndex = lit.AtlasIndex
	}
	if h, ok := cache.materials[key]; ok {
		return h
	}

	params := MaterialParams(catalog.Materials[id])
	params.BaseTexture = s.track(s.registry.LoadTexture(catalog.Materials[id].Path))
	if lit != nil {
		params.Lightmap = s.track(s.registry.LoadTexture(key.lightmap))
		params.LightmapUVOffset, params.LightmapUVScale = LightmapUV(lit)
	}

	h := s.track(s.registry.RegisterMaterial(params))
	cache.materials[key] = h
	return h
}

// MaterialParams переводит материал каталога в параметры материала рендеринга (без текстур)
func MaterialParams(m formats.CatalogMaterial) render.MaterialParams {
	params := render.MaterialParams{
		Kind:            render.MaterialObject,
		LightmapUVScale: 1,
		AlphaCutoff:     m.AlphaTest,
		TwoSided:        m.TwoSided,
		ZTest:           m.ZTest,
		ZWrite:          m.ZWrite,
		Specular:        m.Specular,
		Skinned:         m.IsSkin,
	}
	if m.Alpha != 1 {
		alpha := m.Alpha
		params.Alpha = &alpha
	}
	switch {
	case m.BlendMode == formats.BlendLighten:
		params.Blend = render.BlendAdditive
	case m.AlphaEnabled:
		params.Blend = render.BlendAlpha
	}
	if m.Glow != formats.GlowNone {
		params.Glow = &render.Glow{Kind: string(m.Glow), Color: mgl32.Vec3(m.GlowColor)}
	}
	return params
}

// LightmapUV смещение и масштаб ячейки атласа лайтмапа
func LightmapUV(lit *formats.LightmapPart) (mgl32.Vec2, float32) {
	perRow := lit.PartsPerRow
	if perRow <= 0 {
		perRow = 1
	}
	offset := mgl32.Vec2{float32(lit.AtlasIndex % perRow), float32(lit.AtlasIndex / perRow)}
	return offset, 1 / float32(perRow)
}
