package scene

import (
	"sort"
	"sync"
	"sync/atomic"
)

type node struct {
	parent     Entity
	children   []Entity
	components []any
}

// World реализует Graph в памяти: карта узлов под RWMutex и атомарный счётчик id
type World struct {
	nodes        map[Entity]*node
	nextEntityID uint64
	mu           sync.RWMutex
	despawned    uint64
}

// NewWorld создаёт пустой граф сцены
func NewWorld() *World {
	return &World{nodes: make(map[Entity]*node)}
}

// Spawn создаёт сущность
func (w *World) Spawn(parent Entity, components ...any) Entity {
	id := Entity(atomic.AddUint64(&w.nextEntityID, 1))

	w.mu.Lock()
	defer w.mu.Unlock()

	n := &node{components: components}
	if p, ok := w.nodes[parent]; ok && parent != NoEntity {
		n.parent = parent
		p.children = append(p.children, id)
	}
	w.nodes[id] = n
	return id
}

// DespawnRecursive удаляет сущность и всё поддерево
func (w *World) DespawnRecursive(e Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, ok := w.nodes[e]
	if !ok {
		return
	}
	if p, ok := w.nodes[n.parent]; ok {
		p.children = removeEntity(p.children, e)
	}
	w.despawnLocked(e)
}

func (w *World) despawnLocked(e Entity) {
	n, ok := w.nodes[e]
	if !ok {
		return
	}
	for _, child := range n.children {
		w.despawnLocked(child)
	}
	delete(w.nodes, e)
	w.despawned++
}

// SetParent переносит child под parent
func (w *World) SetParent(child, parent Entity) {
	w.mu.Lock()
	defer w.mu.Unlock()

	c, ok := w.nodes[child]
	if !ok || child == parent {
		return
	}
	if old, ok := w.nodes[c.parent]; ok {
		old.children = removeEntity(old.children, child)
	}
	c.parent = NoEntity
	if p, ok := w.nodes[parent]; ok {
		c.parent = parent
		p.children = append(p.children, child)
	}
}

// AddComponents добавляет компоненты к существующей сущности
func (w *World) AddComponents(e Entity, components ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if n, ok := w.nodes[e]; ok {
		n.components = append(n.components, components...)
	}
}

// Exists проверяет существование сущности
func (w *World) Exists(e Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.nodes[e]
	return ok
}

// Parent возвращает родителя сущности
func (w *World) Parent(e Entity) Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if n, ok := w.nodes[e]; ok {
		return n.parent
	}
	return NoEntity
}

// Children возвращает копию списка детей
func (w *World) Children(e Entity) []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if n, ok := w.nodes[e]; ok {
		return append([]Entity(nil), n.children...)
	}
	return nil
}

// Components возвращает копию списка компонентов
func (w *World) Components(e Entity) []any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if n, ok := w.nodes[e]; ok {
		return append([]any(nil), n.components...)
	}
	return nil
}

// Count число живых сущностей
func (w *World) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.nodes)
}

// DespawnedCount число удалённых за всё время сущностей
func (w *World) DespawnedCount() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.despawned
}

// Descendants возвращает всех потомков e в порядке возрастания id
func (w *World) Descendants(e Entity) []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []Entity
	var walk func(Entity)
	walk = func(id Entity) {
		n, ok := w.nodes[id]
		if !ok {
			return
		}
		for _, child := range n.children {
			out = append(out, child)
			walk(child)
		}
	}
	walk(e)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Get возвращает первый компонент типа T у сущности
func Get[T any](w *World, e Entity) (T, bool) {
	for _, c := range w.Components(e) {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Query возвращает сущности, у которых есть компонент типа T, по возрастанию id
func Query[T any](w *World) []Entity {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var out []Entity
	for id, n := range w.nodes {
		for _, c := range n.components {
			if _, ok := c.(T); ok {
				out = append(out, id)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func removeEntity(list []Entity, e Entity) []Entity {
	for i, v := range list {
		if v == e {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
