// Package terrain строит сетки рельефа и воды блоков зоны.
package terrain

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/zone-streamer/internal/formats"
	"github.com/annel0/zone-streamer/internal/physics"
	"github.com/annel0/zone-streamer/internal/render"
	"github.com/annel0/zone-streamer/internal/zone"
)

const (
	tileWorldSize  = zone.TileStride * zone.SampleSpacing
	verticesInTile = zone.TileVertices * zone.TileVertices
	lightmapCells  = float32(zone.TilesPerBlock * zone.TileStride)
)

// BlockMesh сетки одного блока в локальных координатах блока
type BlockMesh struct {
	Render    *render.Mesh
	Collision *physics.TriMesh
	Origin    mgl32.Vec3
}

// BuildBlockMesh строит сетку рендеринга (16×16 тайлов по 5×5 вершин, соседние
// тайлы дублируют общие рёбра) и упрощённую сетку коллизии по сырым отсчётам.
func BuildBlockMesh(def *formats.ZoneDefinition, block *zone.TerrainBlock) BlockMesh {
	ox, oz := zone.BlockWorldOrigin(block.X, block.Y)
	return BlockMesh{
		Render:    buildRenderMesh(def, block),
		Collision: buildCollisionMesh(block.Heightmap),
		Origin:    mgl32.Vec3{ox, 0, oz},
	}
}

func height(hm *formats.Heightmap, x, y int) float32 {
	return hm.Get(x, y) / zone.HeightScale
}

// Normal нормаль в отсчёте (x, y) по соседям с ограничением на границах
func Normal(hm *formats.Heightmap, x, y int) mgl32.Vec3 {
	return mgl32.Vec3{
		height(hm, x-1, y) - height(hm, x+1, y),
		2,
		height(hm, x, y-1) - height(hm, x, y+1),
	}.Normalize()
}

func tileInfo(def *formats.ZoneDefinition, tm *formats.Tilemap, tx, ty int) [3]uint32 {
	if tm == nil || def == nil {
		return [3]uint32{}
	}
	tile := def.Tile(int(tm.Get(tx, ty).Tile))
	return [3]uint32{tile.Layer1Index(), tile.Layer2Index(), tile.Rotation.Code()}
}

func buildRenderMesh(def *formats.ZoneDefinition, block *zone.TerrainBlock) *render.Mesh {
	hm := block.Heightmap
	const tiles = zone.TilesPerBlock * zone.TilesPerBlock
	mesh := &render.Mesh{
		Positions: make([]mgl32.Vec3, 0, tiles*verticesInTile),
		Normals:   make([]mgl32.Vec3, 0, tiles*verticesInTile),
		UVLight:   make([]mgl32.Vec2, 0, tiles*verticesInTile),
		UVTile:    make([]mgl32.Vec2, 0, tiles*verticesInTile),
		TileInfo:  make([][3]uint32, 0, tiles*verticesInTile),
		Indices:   make([]uint16, 0, tiles*zone.TileStride*zone.TileStride*6),
	}

	for tx := 0; tx < zone.TilesPerBlock; tx++ {
		for ty := 0; ty < zone.TilesPerBlock; ty++ {
			info := tileInfo(def, block.Tilemap, tx, ty)
			base := uint16(len(mesh.Positions))
			offsetX := float32(tx) * tileWorldSize
			offsetZ := float32(ty) * tileWorldSize

			for y := 0; y < zone.TileVertices; y++ {
				for x := 0; x < zone.TileVertices; x++ {
					hx := tx*zone.TileStride + x
					hy := ty*zone.TileStride + y

					mesh.Positions = append(mesh.Positions, mgl32.Vec3{
						offsetX + float32(x)*zone.SampleSpacing,
						height(hm, hx, hy),
						offsetZ + float32(y)*zone.SampleSpacing,
					})
					mesh.Normals = append(mesh.Normals, Normal(hm, hx, hy))
					mesh.UVTile = append(mesh.UVTile, mgl32.Vec2{float32(x) / zone.TileStride, float32(y) / zone.TileStride})
					mesh.UVLight = append(mesh.UVLight, mgl32.Vec2{float32(hx) / lightmapCells, float32(hy) / lightmapCells})
					mesh.TileInfo = append(mesh.TileInfo, info)
				}
			}

			for y := 0; y < zone.TileStride; y++ {
				for x := 0; x < zone.TileStride; x++ {
					start := base + uint16(y*zone.TileVertices+x)
					mesh.Indices = append(mesh.Indices,
						start, start+zone.TileVertices, start+1,
						start+1, start+zone.TileVertices, start+1+zone.TileVertices,
					)
				}
			}
		}
	}
	return mesh
}

func buildCollisionMesh(hm *formats.Heightmap) *physics.TriMesh {
	mesh := &physics.TriMesh{
		Vertices: make([]mgl32.Vec3, 0, hm.Width*hm.Height),
		Indices:  make([][3]uint32, 0, (hm.Width-1)*(hm.Height-1)*2),
	}

	for y := 0; y < hm.Height; y++ {
		for x := 0; x < hm.Width; x++ {
			mesh.Vertices = append(mesh.Vertices, mgl32.Vec3{
				float32(x) * zone.SampleSpacing,
				height(hm, x, y),
				float32(y) * zone.SampleSpacing,
			})
		}
	}

	w := uint32(hm.Width)
	for y := uint32(0); y+1 < uint32(hm.Height); y++ {
		for x := uint32(0); x+1 < w; x++ {
			start := y*w + x
			mesh.Indices = append(mesh.Indices,
				[3]uint32{start, start + w, start + 1},
				[3]uint32{start + 1, start + w, start + 1 + w},
			)
		}
	}
	return mesh
}
