package formats

import (
	"bytes"
	"encoding/binary"
	"math"
)

const himHeaderSize = 16

// Heightmap сетка высот одного блока (обычно 65×65 отсчётов)
type Heightmap struct {
	Width      int
	Height     int
	GridCount  int
	PatchScale float32
	Heights    []float32
}

// Get возвращает высоту с ограничением координат границами сетки
func (h *Heightmap) Get(x, y int) float32 {
	if h.Width == 0 || h.Height == 0 {
		return 0
	}
	x = clampInt(x, 0, h.Width-1)
	y = clampInt(y, 0, h.Height-1)
	return h.Heights[y*h.Width+x]
}

// MinMax возвращает минимальную и максимальную высоту
func (h *Heightmap) MinMax() (float32, float32) {
	if len(h.Heights) == 0 {
		return 0, 0
	}
	lo, hi := h.Heights[0], h.Heights[0]
	for _, v := range h.Heights[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// DecodeHeightmap разбирает HIM:
// int32 width, int32 height, int32 grid_count, float32 patch_scale,
// затем width*height float32 построчно.
func DecodeHeightmap(data []byte) (*Heightmap, error) {
	if len(data) < himHeaderSize {
		return nil, invalid("him", "header too short: %d bytes", len(data))
	}

	width := int(int32(binary.LittleEndian.Uint32(data[0:4])))
	height := int(int32(binary.LittleEndian.Uint32(data[4:8])))
	if width <= 0 || height <= 0 || width > 4096 || height > 4096 {
		return nil, invalid("him", "bad dimensions %dx%d", width, height)
	}

	h := &Heightmap{
		Width:      width,
		Height:     height,
		GridCount:  int(int32(binary.LittleEndian.Uint32(data[8:12]))),
		PatchScale: math.Float32frombits(binary.LittleEndian.Uint32(data[12:16])),
	}

	need := himHeaderSize + width*height*4
	if len(data) < need {
		return nil, invalid("him", "expected %d bytes, got %d", need, len(data))
	}

	h.Heights = make([]float32, width*height)
	for i := range h.Heights {
		off := himHeaderSize + i*4
		h.Heights[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+4]))
	}
	return h, nil
}

// EncodeHeightmap сериализует карту высот в формат HIM
func EncodeHeightmap(h *Heightmap) []byte {
	var buf bytes.Buffer
	buf.Grow(himHeaderSize + len(h.Heights)*4)
	_ = binary.Write(&buf, binary.LittleEndian, int32(h.Width))
	_ = binary.Write(&buf, binary.LittleEndian, int32(h.Height))
	_ = binary.Write(&buf, binary.LittleEndian, int32(h.GridCount))
	_ = binary.Write(&buf, binary.LittleEndian, h.PatchScale)
	_ = binary.Write(&buf, binary.LittleEndian, h.Heights)
	return buf.Bytes()
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
