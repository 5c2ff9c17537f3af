// Package scene описывает граф сцены, который наполняет загрузчик зон,
// и простую реализацию этого графа в памяти.
package scene

// Entity ссылка на узел графа сцены. Нулевое значение означает "нет узла".
type Entity uint64

// NoEntity отсутствие родителя
const NoEntity Entity = 0

// Graph контейнер иерархии сущностей с компонентами
type Graph interface {
	// Spawn создаёт сущность с компонентами. parent == NoEntity создаёт корень.
	Spawn(parent Entity, components ...any) Entity
	// DespawnRecursive удаляет сущность вместе со всеми потомками
	DespawnRecursive(e Entity)
	// SetParent переносит сущность под другого родителя
	SetParent(child, parent Entity)
	// Exists проверяет существование сущности
	Exists(e Entity) bool
}
