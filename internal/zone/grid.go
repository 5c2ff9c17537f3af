package zone

// Размеры сетки зоны фиксированы для всей системы: 64×64 блока,
// блок из 16×16 тайлов, тайл из 5×5 отсчётов высоты с шагом 4.
const (
	BlocksPerSide  = 64
	BlockCount     = BlocksPerSide * BlocksPerSide
	TilesPerBlock  = 16
	TileVertices   = 5
	TileStride     = TileVertices - 1
	BlockSamples   = TilesPerBlock*TileStride + 1 // 65 отсчётов на сторону
	BlockOriginRow = 65                           // смещение оси Y сетки блоков
)

// Параметры мира в метрах
const (
	BlockWorldSize = 160.0 // метров на сторону блока
	SampleSpacing  = 2.5   // метров между отсчётами высоты
	HeightScale    = 100.0 // единиц исходных данных (сантиметров) на метр
	WorldOffset    = 5200.0
)

// BlockIndex возвращает индекс блока в разреженном массиве
func BlockIndex(x, y int) int {
	return x + y*BlocksPerSide
}

// BlockCoords обратное преобразование индекса в координаты блока
func BlockCoords(index int) (x, y int) {
	return index % BlocksPerSide, index / BlocksPerSide
}

// ValidBlock проверяет, что координаты лежат внутри сетки
func ValidBlock(x, y int) bool {
	return x >= 0 && x < BlocksPerSide && y >= 0 && y < BlocksPerSide
}

// BlockWorldOrigin возвращает мировое смещение (x, z) левого верхнего угла блока
func BlockWorldOrigin(x, y int) (float32, float32) {
	return BlockWorldSize * float32(x), -BlockWorldSize * float32(BlockOriginRow-y)
}
