package zone

import (
	"errors"
	"fmt"

	"github.com/annel0/zone-streamer/internal/formats"
)

// Ошибки загрузки зоны
var (
	// ErrInvalidZoneID запрошен id без записи в списке зон
	ErrInvalidZoneID = errors.New("zone: invalid zone id")
	// ErrZoneDataUnavailable не удалось прочитать определение зоны
	ErrZoneDataUnavailable = errors.New("zone: zone data unavailable")
)

// ID идентификатор зоны, индекс в кэше зон
type ID int

func (id ID) String() string {
	return fmt.Sprintf("zone#%d", int(id))
}

// ObjectCategory категория размещённого объекта
type ObjectCategory int

const (
	CategoryConstruction ObjectCategory = iota
	CategoryDecoration
	CategoryEvent
	CategoryWarp
)

func (c ObjectCategory) String() string {
	switch c {
	case CategoryConstruction:
		return "cnst"
	case CategoryDecoration:
		return "deco"
	case CategoryEvent:
		return "event"
	case CategoryWarp:
		return "warp"
	default:
		return "unknown"
	}
}

// TerrainBlock данные одной ячейки сетки. Карта высот обязательна,
// остальные поля nil, если соответствующий файл отсутствует.
type TerrainBlock struct {
	X, Y int

	Heightmap     *formats.Heightmap
	Tilemap       *formats.Tilemap
	Placements    *formats.BlockPlacements
	LightmapsCnst *formats.Lightmap
	LightmapsDeco *formats.Lightmap
}

// Lightmaps возвращает набор лайтмапов для категории объектов
func (b *TerrainBlock) Lightmaps(category ObjectCategory) *formats.Lightmap {
	switch category {
	case CategoryConstruction:
		return b.LightmapsCnst
	case CategoryDecoration:
		return b.LightmapsDeco
	default:
		return nil
	}
}

// PlacementsOf возвращает размещения блока указанной категории
func (b *TerrainBlock) PlacementsOf(category ObjectCategory) []formats.ObjectPlacement {
	if b.Placements == nil {
		return nil
	}
	switch category {
	case CategoryConstruction:
		return b.Placements.Cnst
	case CategoryDecoration:
		return b.Placements.Deco
	case CategoryEvent:
		return b.Placements.Event
	case CategoryWarp:
		return b.Placements.Warp
	default:
		return nil
	}
}

// Bundle полностью загруженная зона. После сборки не изменяется.
type Bundle struct {
	ID         ID
	Entry      CatalogEntry
	Dir        string
	Definition *formats.ZoneDefinition
	Cnst       *formats.ObjectCatalog
	Deco       *formats.ObjectCatalog
	Event      *formats.ObjectCatalog
	Warp       *formats.ObjectCatalog
	Blocks     [BlockCount]*TerrainBlock
}

// Block возвращает блок по координатам или nil
func (b *Bundle) Block(x, y int) *TerrainBlock {
	if !ValidBlock(x, y) {
		return nil
	}
	return b.Blocks[BlockIndex(x, y)]
}

// Catalog возвращает каталог объектов для категории
func (b *Bundle) Catalog(category ObjectCategory) *formats.ObjectCatalog {
	switch category {
	case CategoryConstruction:
		return b.Cnst
	case CategoryDecoration:
		return b.Deco
	case CategoryEvent:
		return b.Event
	case CategoryWarp:
		return b.Warp
	default:
		return nil
	}
}

// PresentBlocks возвращает индексы присутствующих блоков по возрастанию
func (b *Bundle) PresentBlocks() []int {
	var out []int
	for i, block := range b.Blocks {
		if block != nil {
			out = append(out, i)
		}
	}
	return out
}
