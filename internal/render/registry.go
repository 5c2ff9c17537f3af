// Package render описывает реестр ресурсов рендеринга, которые
// регистрирует загрузчик зон, и потоковую реализацию реестра.
package render

import "github.com/go-gl/mathgl/mgl32"

// HandleKind вид ресурса
type HandleKind int

const (
	KindMesh HandleKind = iota + 1
	KindMaterial
	KindTexture
)

func (k HandleKind) String() string {
	switch k {
	case KindMesh:
		return "mesh"
	case KindMaterial:
		return "material"
	case KindTexture:
		return "texture"
	default:
		return "unknown"
	}
}

// Handle ссылка на ресурс. Нулевое значение означает отсутствие ресурса.
type Handle struct {
	Kind HandleKind
	ID   uint64
}

// Valid сообщает, ссылается ли handle на ресурс
func (h Handle) Valid() bool {
	return h.ID != 0
}

// LoadState состояние загрузки ресурса
type LoadState int

const (
	StateLoading LoadState = iota
	StateLoaded
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Finished сообщает, что ресурс больше не загружается (успешно или нет)
func (s LoadState) Finished() bool {
	return s == StateLoaded || s == StateFailed
}

// Mesh вершинные данные, построенные в памяти
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVLight   []mgl32.Vec2 // координаты лайтмапа
	UVTile    []mgl32.Vec2 // координаты внутри тайла
	TileInfo  [][3]uint32  // слой 1, слой 2, код поворота
	Indices   []uint16
}

// VertexCount число вершин
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// Registry реестр ресурсов рендеринга. Состояние каждого handle
// опрашивается, завершения не сообщаются через колбэки.
type Registry interface {
	RegisterMesh(mesh *Mesh) Handle
	LoadMesh(path string) Handle
	LoadTexture(path string) Handle
	LoadTextureArray(paths []string) Handle
	RegisterMaterial(params MaterialParams) Handle
	LoadState(h Handle) LoadState
}

// Renderable компонент сущности с сеткой и материалом
type Renderable struct {
	Mesh     Handle
	Material Handle
}
