package terrain

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/zone-streamer/internal/formats"
	"github.com/annel0/zone-streamer/internal/physics"
	"github.com/annel0/zone-streamer/internal/render"
	"github.com/annel0/zone-streamer/internal/zone"
)

// WaterFrameCount число кадров анимированной текстуры воды
const WaterFrameCount = 25

// WaterTexturePaths пути кадров текстуры воды
func WaterTexturePaths() []string {
	paths := make([]string, WaterFrameCount)
	for i := range paths {
		paths[i] = fmt.Sprintf("3DDATA/JUNON/WATER/OCEAN01_%02d.DDS", i+1)
	}
	return paths
}

// WaterMesh сетка одной водной плоскости в мировых координатах
type WaterMesh struct {
	Render    *render.Mesh
	Collision *physics.TriMesh
}

func waterPoint(v formats.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		zone.WorldOffset + v[0]/zone.HeightScale,
		v[1] / zone.HeightScale,
		-(zone.WorldOffset + v[2]/zone.HeightScale),
	}
}

// BuildWaterMeshes строит прямоугольники воды блока. Текстура повторяется
// каждые waterSize исходных единиц.
func BuildWaterMeshes(placements *formats.BlockPlacements) []WaterMesh {
	if placements == nil || len(placements.WaterPlanes) == 0 {
		return nil
	}

	size := placements.WaterSize / zone.HeightScale
	if size <= 0 {
		size = 1
	}

	out := make([]WaterMesh, 0, len(placements.WaterPlanes))
	for _, plane := range placements.WaterPlanes {
		start := waterPoint(plane.Start)
		end := waterPoint(plane.End)
		uvX := (end.X() - start.X()) / size
		uvY := (end.Z() - start.Z()) / size

		positions := []mgl32.Vec3{
			{start.X(), start.Y(), end.Z()},
			{start.X(), start.Y(), start.Z()},
			{end.X(), start.Y(), start.Z()},
			{end.X(), start.Y(), end.Z()},
		}
		up := mgl32.Vec3{0, 1, 0}

		out = append(out, WaterMesh{
			Render: &render.Mesh{
				Positions: positions,
				Normals:   []mgl32.Vec3{up, up, up, up},
				UVTile:    []mgl32.Vec2{{uvX, uvY}, {uvX, 0}, {0, 0}, {0, uvY}},
				Indices:   []uint16{0, 2, 1, 0, 3, 2},
			},
			Collision: &physics.TriMesh{
				Vertices: positions,
				Indices:  [][3]uint32{{0, 2, 1}, {0, 3, 2}},
			},
		})
	}
	return out
}
