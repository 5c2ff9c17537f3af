package zone

import "github.com/annel0/zone-streamer/internal/formats"

// ObjectKind вид сущности, созданной загрузчиком зоны
type ObjectKind int

const (
	KindZoneRoot ObjectKind = iota
	KindTerrain
	KindWater
	KindObject
	KindObjectPart
)

func (k ObjectKind) String() string {
	switch k {
	case KindZoneRoot:
		return "zone"
	case KindTerrain:
		return "terrain"
	case KindWater:
		return "water"
	case KindObject:
		return "object"
	case KindObjectPart:
		return "part"
	default:
		return "unknown"
	}
}

// Root компонент корня сцены зоны
type Root struct {
	ID ID
}

// Object компонент метаданных сущности зоны
type Object struct {
	Kind     ObjectKind
	Category ObjectCategory
	BlockX   int
	BlockY   int

	IfoObjectID int // индекс размещения в IFO
	ZscObjectID int // индекс объекта в каталоге
	PartID      int

	MeshPath       string
	CollisionShape formats.CollisionShape
	CollisionFlags formats.CollisionFlags

	EventID int
	WarpID  int
}

// Animation путь анимации части (воспроизведение вне загрузчика)
type Animation struct {
	Path string
}

// Effect визуальный эффект, привязанный к объекту
type Effect struct {
	Path     string
	Type     formats.EffectType
	DayNight bool // включается внешней системой времени суток
}
