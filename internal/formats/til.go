package formats

import (
	"bytes"
	"encoding/binary"
)

const tilHeaderSize = 8
const tilEntrySize = 7

// TilemapTile одна ячейка карты тайлов
type TilemapTile struct {
	BrushID   uint8
	TileIndex uint8
	TileSet   uint8
	Tile      int32 // индекс в палитре тайлов ZON
}

// Tilemap карта тайлов блока (обычно 16×16)
type Tilemap struct {
	Width  int
	Height int
	Tiles  []TilemapTile
}

// Get возвращает ячейку с ограничением координат
func (t *Tilemap) Get(x, y int) TilemapTile {
	if t.Width == 0 || t.Height == 0 {
		return TilemapTile{}
	}
	x = clampInt(x, 0, t.Width-1)
	y = clampInt(y, 0, t.Height-1)
	return t.Tiles[y*t.Width+x]
}

// DecodeTilemap разбирает TIL: int32 width, int32 height,
// затем на ячейку u8 brush, u8 index, u8 set, int32 tile.
func DecodeTilemap(data []byte) (*Tilemap, error) {
	if len(data) < tilHeaderSize {
		return nil, invalid("til", "header too short: %d bytes", len(data))
	}

	width := int(int32(binary.LittleEndian.Uint32(data[0:4])))
	height := int(int32(binary.LittleEndian.Uint32(data[4:8])))
	if width <= 0 || height <= 0 || width > 1024 || height > 1024 {
		return nil, invalid("til", "bad dimensions %dx%d", width, height)
	}

	need := tilHeaderSize + width*height*tilEntrySize
	if len(data) < need {
		return nil, invalid("til", "expected %d bytes, got %d", need, len(data))
	}

	t := &Tilemap{Width: width, Height: height, Tiles: make([]TilemapTile, width*height)}
	for i := range t.Tiles {
		off := tilHeaderSize + i*tilEntrySize
		t.Tiles[i] = TilemapTile{
			BrushID:   data[off],
			TileIndex: data[off+1],
			TileSet:   data[off+2],
			Tile:      int32(binary.LittleEndian.Uint32(data[off+3 : off+7])),
		}
	}
	return t, nil
}

// EncodeTilemap сериализует карту тайлов в формат TIL
func EncodeTilemap(t *Tilemap) []byte {
	var buf bytes.Buffer
	buf.Grow(tilHeaderSize + len(t.Tiles)*tilEntrySize)
	_ = binary.Write(&buf, binary.LittleEndian, int32(t.Width))
	_ = binary.Write(&buf, binary.LittleEndian, int32(t.Height))
	for _, tile := range t.Tiles {
		buf.WriteByte(tile.BrushID)
		buf.WriteByte(tile.TileIndex)
		buf.WriteByte(tile.TileSet)
		_ = binary.Write(&buf, binary.LittleEndian, tile.Tile)
	}
	return buf.Bytes()
}
