package terrain

import (
	"github.com/annel0/zone-streamer/internal/physics"
	"github.com/annel0/zone-streamer/internal/render"
	"github.com/annel0/zone-streamer/internal/scene"
	"github.com/annel0/zone-streamer/internal/zone"
)

// Spawner создаёт сущности рельефа и воды зоны
type Spawner struct {
	Graph    scene.Graph
	Registry render.Registry
	Physics  physics.Engine
}

// SpawnZone создаёт сущность рельефа для каждого присутствующего блока
// и водные плоскости под корнем root. Возвращает handle зарегистрированных
// ресурсов, готовность которых нужно дождаться.
func (s *Spawner) SpawnZone(bundle *zone.Bundle, root scene.Entity) []render.Handle {
	var handles []render.Handle

	tileTextures := s.Registry.LoadTextureArray(bundle.Definition.TerrainTextures())
	handles = append(handles, tileTextures)

	var water render.Handle
	for _, block := range bundle.Blocks {
		if block == nil {
			continue
		}
		handles = append(handles, s.spawnBlock(bundle, block, tileTextures, root)...)

		meshes := BuildWaterMeshes(block.Placements)
		if len(meshes) == 0 {
			continue
		}
		if !water.Valid() {
			frames := s.Registry.LoadTextureArray(WaterTexturePaths())
			water = s.Registry.RegisterMaterial(render.MaterialParams{
				Kind:         render.MaterialWater,
				TileTextures: frames,
				Blend:        render.BlendAlpha,
				ZTest:        true,
			})
			handles = append(handles, frames, water)
		}
		for _, wm := range meshes {
			mesh := s.Registry.RegisterMesh(wm.Render)
			handles = append(handles, mesh)
			transform := scene.IdentityTransform()
			e := s.Graph.Spawn(root,
				zone.Object{Kind: zone.KindWater, BlockX: block.X, BlockY: block.Y},
				render.Renderable{Mesh: mesh, Material: water},
				transform,
			)
			s.Physics.Attach(e, physics.Shape{Mesh: wm.Collision}, transform,
				physics.GroupZoneWater, physics.FilterInspectable)
		}
	}
	return handles
}

func (s *Spawner) spawnBlock(bundle *zone.Bundle, block *zone.TerrainBlock, tileTextures render.Handle, root scene.Entity) []render.Handle {
	built := BuildBlockMesh(bundle.Definition, block)
	paths := zone.PathsForBlock(bundle.Dir, block.X, block.Y)

	lightmap := s.Registry.LoadTexture(paths.TerrainLight)
	material := s.Registry.RegisterMaterial(render.MaterialParams{
		Kind:         render.MaterialTerrain,
		TileTextures: tileTextures,
		Lightmap:     lightmap,
		ZTest:        true,
		ZWrite:       true,
	})
	mesh := s.Registry.RegisterMesh(built.Render)

	transform := scene.FromTranslation(built.Origin)
	e := s.Graph.Spawn(root,
		zone.Object{Kind: zone.KindTerrain, BlockX: block.X, BlockY: block.Y},
		render.Renderable{Mesh: mesh, Material: material},
		transform,
	)
	s.Physics.Attach(e, physics.Shape{Mesh: built.Collision}, transform,
		physics.GroupZoneTerrain,
		physics.FilterInspectable|physics.FilterCollidable|physics.FilterClickable|physics.FilterMoveable)

	return []render.Handle{lightmap, material, mesh}
}
