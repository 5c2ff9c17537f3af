// Package physics описывает движок коллизий, которому загрузчик зон
// передаёт геометрию, и простую реализацию мира коллайдеров.
package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/zone-streamer/internal/render"
	"github.com/annel0/zone-streamer/internal/scene"
)

// Group группа коллизий (кто этот коллайдер)
type Group uint32

const (
	GroupZoneObject Group = 1 << iota
	GroupZoneTerrain
	GroupZoneWater
	GroupCharacter
	GroupNPC
	GroupZoneEventObject
	GroupZoneWarpObject
)

// Filter маска запросов, в которых участвует коллайдер
type Filter uint32

const (
	FilterInspectable Filter = 1 << (16 + iota)
	FilterCollidable
	FilterClickable
	FilterMoveable // вертикальные пробы высоты
	FilterCamera
)

// TriMesh треугольная сетка коллизии
type TriMesh struct {
	Vertices []mgl32.Vec3
	Indices  [][3]uint32
}

// Shape исходная геометрия коллайдера: сетка в памяти или ресурс сетки,
// из которого коллайдер строится после загрузки.
type Shape struct {
	Mesh  *TriMesh
	Asset render.Handle
}

// Engine движок коллизий. Построение коллайдера асинхронное.
type Engine interface {
	Attach(entity scene.Entity, shape Shape, transform scene.Transform, group Group, filter Filter)
}
