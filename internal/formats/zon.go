package formats

import "gopkg.in/yaml.v3"

// TileRotation поворот текстуры тайла
type TileRotation string

const (
	TileRotationNone             TileRotation = "none"
	TileRotationFlipHorizontal   TileRotation = "flip_horizontal"
	TileRotationFlipVertical     TileRotation = "flip_vertical"
	TileRotationFlip             TileRotation = "flip"
	TileRotationClockwise90      TileRotation = "clockwise_90"
	TileRotationCounterClockwise TileRotation = "counter_clockwise_90"
)

// Code возвращает числовой код поворота для атрибута вершины
func (r TileRotation) Code() uint32 {
	switch r {
	case TileRotationFlipHorizontal:
		return 2
	case TileRotationFlipVertical:
		return 3
	case TileRotationFlip:
		return 4
	case TileRotationClockwise90:
		return 5
	case TileRotationCounterClockwise:
		return 6
	default:
		return 0
	}
}

// ZoneTile элемент палитры тайлов
type ZoneTile struct {
	Layer1   uint32       `yaml:"layer1"`
	Offset1  uint32       `yaml:"offset1"`
	Layer2   uint32       `yaml:"layer2"`
	Offset2  uint32       `yaml:"offset2"`
	Blend    bool         `yaml:"blend"`
	Rotation TileRotation `yaml:"rotation,omitempty"`
}

// Layer1Index индекс текстуры первого слоя
func (t ZoneTile) Layer1Index() uint32 { return t.Layer1 + t.Offset1 }

// Layer2Index индекс текстуры второго слоя
func (t ZoneTile) Layer2Index() uint32 { return t.Layer2 + t.Offset2 }

// TileTexturesEnd маркер конца списка текстур тайлов
const TileTexturesEnd = "end"

// ZoneDefinition глобальные данные зоны (ZON)
type ZoneDefinition struct {
	Name         string     `yaml:"name"`
	GridPerPatch int        `yaml:"grid_per_patch"`
	GridSize     float32    `yaml:"grid_size"`
	StartBlock   [2]int     `yaml:"start_block"`
	Tiles        []ZoneTile `yaml:"tiles"`
	TileTextures []string   `yaml:"tile_textures"`
}

// TerrainTextures возвращает текстуры тайлов до маркера "end"
func (z *ZoneDefinition) TerrainTextures() []string {
	for i, tex := range z.TileTextures {
		if tex == TileTexturesEnd {
			return z.TileTextures[:i]
		}
	}
	return z.TileTextures
}

// Tile возвращает тайл палитры или нулевой тайл для индекса вне диапазона
func (z *ZoneDefinition) Tile(index int) ZoneTile {
	if index < 0 || index >= len(z.Tiles) {
		return ZoneTile{}
	}
	return z.Tiles[index]
}

// DecodeZoneDefinition разбирает ZON. Отсутствующие масштабы сетки
// заполняются стандартными значениями 4 и 250.
func DecodeZoneDefinition(data []byte) (*ZoneDefinition, error) {
	var def ZoneDefinition
	if err := decodeYAML("zon", data, &def); err != nil {
		return nil, err
	}
	if def.GridPerPatch <= 0 {
		def.GridPerPatch = 4
	}
	if def.GridSize <= 0 {
		def.GridSize = 250
	}
	return &def, nil
}

// EncodeZoneDefinition сериализует ZON
func EncodeZoneDefinition(def *ZoneDefinition) ([]byte, error) {
	return yaml.Marshal(def)
}
