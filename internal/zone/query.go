package zone

import "math"

// blockSize размер блока в единицах исходных координат (сантиметрах)
func (b *Bundle) blockSize() float64 {
	gridPerPatch, gridSize := 4.0, 250.0
	if b.Definition != nil {
		gridPerPatch = float64(b.Definition.GridPerPatch)
		gridSize = float64(b.Definition.GridSize)
	}
	return TilesPerBlock * gridPerPatch * gridSize
}

// locate переводит мировые координаты (сантиметры, Y на север) в блок
// и дробное положение внутри него [0,1).
func (b *Bundle) locate(worldX, worldY float32) (bx, by int, fx, fy float64) {
	size := b.blockSize()
	rawX := float64(worldX) / size
	rawY := BlockOriginRow - float64(worldY)/size

	rawX = clampBlock(rawX)
	rawY = clampBlock(rawY)

	bx, by = int(rawX), int(rawY)
	return bx, by, rawX - float64(bx), rawY - float64(by)
}

func clampBlock(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v >= BlocksPerSide {
		return math.Nextafter(BlocksPerSide, 0)
	}
	return v
}

// HeightAt возвращает высоту рельефа в исходных единицах в точке (x, y).
// Билинейная интерполяция по четырём соседним отсчётам; для
// отсутствующего блока возвращается 0.
func (b *Bundle) HeightAt(worldX, worldY float32) float32 {
	bx, by, fx, fy := b.locate(worldX, worldY)
	block := b.Blocks[BlockIndex(bx, by)]
	if block == nil || block.Heightmap == nil {
		return 0
	}

	hm := block.Heightmap
	sx := fx * float64(hm.Width-1)
	sy := fy * float64(hm.Height-1)
	x0, y0 := int(sx), int(sy)
	tx, ty := float32(sx-float64(x0)), float32(sy-float64(y0))

	h00 := hm.Get(x0, y0)
	h10 := hm.Get(x0+1, y0)
	h01 := hm.Get(x0, y0+1)
	h11 := hm.Get(x0+1, y0+1)

	top := h00 + (h10-h00)*tx
	bottom := h01 + (h11-h01)*tx
	return top + (bottom-top)*ty
}

// TileAt возвращает индекс текстуры первого слоя тайла в точке (x, y).
// Берётся ближайшая ячейка карты тайлов; без блока или карты тайлов 0.
func (b *Bundle) TileAt(worldX, worldY float32) int {
	bx, by, fx, fy := b.locate(worldX, worldY)
	block := b.Blocks[BlockIndex(bx, by)]
	if block == nil || block.Tilemap == nil || b.Definition == nil {
		return 0
	}

	tm := block.Tilemap
	tx := int(fx * float64(tm.Width))
	ty := int(fy * float64(tm.Height))
	cell := tm.Get(tx, ty)
	return int(b.Definition.Tile(int(cell.Tile)).Layer1Index())
}
