package physics

import (
	"math"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/zone-streamer/internal/render"
	"github.com/annel0/zone-streamer/internal/scene"
)

// ColliderState состояние построения коллайдера
type ColliderState int

const (
	ColliderPending ColliderState = iota
	ColliderReady
	ColliderFailed
)

// Collider коллайдер сущности
type Collider struct {
	Entity    scene.Entity
	Shape     Shape
	Transform scene.Transform
	Group     Group
	Filter    Filter
	State     ColliderState
}

// World мир коллайдеров. Коллайдеры, добавленные через Attach, становятся
// готовыми только на следующем Step, а коллайдеры из ресурсов сетки
// ждут загрузки ресурса.
type World struct {
	mu        sync.RWMutex
	colliders map[scene.Entity]*Collider
	registry  render.Registry
	graph     scene.Graph
}

// NewWorld создаёт мир коллайдеров. registry нужен для коллайдеров из ресурсов,
// graph для удаления коллайдеров исчезнувших сущностей.
func NewWorld(registry render.Registry, graph scene.Graph) *World {
	return &World{
		colliders: make(map[scene.Entity]*Collider),
		registry:  registry,
		graph:     graph,
	}
}

// Attach регистрирует коллайдер для построения
func (w *World) Attach(entity scene.Entity, shape Shape, transform scene.Transform, group Group, filter Filter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.colliders[entity] = &Collider{
		Entity:    entity,
		Shape:     shape,
		Transform: transform,
		Group:     group,
		Filter:    filter,
		State:     ColliderPending,
	}
}

// Step достраивает ожидающие коллайдеры и удаляет коллайдеры удалённых сущностей.
// Возвращает число коллайдеров, ставших готовыми.
func (w *World) Step() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	built := 0
	for entity, c := range w.colliders {
		if w.graph != nil && !w.graph.Exists(entity) {
			delete(w.colliders, entity)
			continue
		}
		if c.State != ColliderPending {
			continue
		}

		switch {
		case c.Shape.Mesh != nil:
			c.State = ColliderReady
			built++
		case c.Shape.Asset.Valid() && w.registry != nil:
			switch w.registry.LoadState(c.Shape.Asset) {
			case render.StateLoaded:
				c.State = ColliderReady
				built++
			case render.StateFailed:
				c.State = ColliderFailed
			}
		default:
			c.State = ColliderFailed
		}
	}
	return built
}

// Get возвращает копию коллайдера сущности
func (w *World) Get(entity scene.Entity) (Collider, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	c, ok := w.colliders[entity]
	if !ok {
		return Collider{}, false
	}
	return *c, true
}

// Pending число коллайдеров, ещё не построенных
func (w *World) Pending() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	n := 0
	for _, c := range w.colliders {
		if c.State == ColliderPending {
			n++
		}
	}
	return n
}

// Len общее число коллайдеров
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.colliders)
}

// Query возвращает готовые коллайдеры групп groups, участвующие в любом из filter
func (w *World) Query(groups Group, filter Filter) []scene.Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []scene.Entity
	for entity, c := range w.colliders {
		if c.State == ColliderReady && c.Group&groups != 0 && c.Filter&filter != 0 {
			out = append(out, entity)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ProbeHeight ищет наивысшую точку готовых треугольных коллайдеров групп
// groups с фильтром FilterMoveable под точкой (x, z). Возвращает false, если
// ни один треугольник не покрывает точку.
func (w *World) ProbeHeight(x, z float32, groups Group) (float32, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	best := float32(math.Inf(-1))
	found := false
	for _, c := range w.colliders {
		if c.State != ColliderReady || c.Shape.Mesh == nil {
			continue
		}
		if c.Group&groups == 0 || c.Filter&FilterMoveable == 0 {
			continue
		}

		local := mgl32.Vec2{x - c.Transform.Translation.X(), z - c.Transform.Translation.Z()}
		if h, ok := probeMesh(c.Shape.Mesh, local); ok {
			h += c.Transform.Translation.Y()
			if h > best {
				best = h
				found = true
			}
		}
	}
	return best, found
}

func probeMesh(mesh *TriMesh, p mgl32.Vec2) (float32, bool) {
	best := float32(math.Inf(-1))
	found := false
	for _, tri := range mesh.Indices {
		a, b, c := mesh.Vertices[tri[0]], mesh.Vertices[tri[1]], mesh.Vertices[tri[2]]
		if h, ok := heightInTriangle(a, b, c, p); ok && h > best {
			best = h
			found = true
		}
	}
	return best, found
}

// heightInTriangle барицентрическая интерполяция Y по проекции на плоскость XZ
func heightInTriangle(a, b, c mgl32.Vec3, p mgl32.Vec2) (float32, bool) {
	v0 := mgl32.Vec2{b.X() - a.X(), b.Z() - a.Z()}
	v1 := mgl32.Vec2{c.X() - a.X(), c.Z() - a.Z()}
	v2 := mgl32.Vec2{p.X() - a.X(), p.Y() - a.Z()}

	den := v0.X()*v1.Y() - v1.X()*v0.Y()
	if den == 0 {
		return 0, false
	}
	v := (v2.X()*v1.Y() - v1.X()*v2.Y()) / den
	u := (v0.X()*v2.Y() - v2.X()*v0.Y()) / den
	const eps = 1e-4
	if v < -eps || u < -eps || v+u > 1+eps {
		return 0, false
	}
	return a.Y() + v*(b.Y()-a.Y()) + u*(c.Y()-a.Y()), true
}
