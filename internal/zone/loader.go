package zone

import (
	"context"
	"errors"
	"fmt"

	"github.com/annel0/zone-streamer/internal/formats"
	"github.com/annel0/zone-streamer/internal/logging"
	"github.com/annel0/zone-streamer/internal/vfs"
)

// BlockPaths пути к файлам одного блока
type BlockPaths struct {
	Heightmap     string
	Tilemap       string
	Placements    string
	LightmapsCnst string
	LightmapsDeco string
	LightmapDir   string
	TerrainLight  string
}

// PathsForBlock строит пути к файлам блока (x, y) в каталоге зоны
func PathsForBlock(zoneDir string, x, y int) BlockPaths {
	name := fmt.Sprintf("%d_%d", x, y)
	lightmapDir := vfs.Join(zoneDir, name, "LIGHTMAP")
	return BlockPaths{
		Heightmap:     vfs.Join(zoneDir, name+".HIM"),
		Tilemap:       vfs.Join(zoneDir, name+".TIL"),
		Placements:    vfs.Join(zoneDir, name+".IFO"),
		LightmapsCnst: vfs.Join(lightmapDir, "BUILDINGLIGHTMAPDATA.LIT"),
		LightmapsDeco: vfs.Join(lightmapDir, "OBJECTLIGHTMAPDATA.LIT"),
		LightmapDir:   lightmapDir,
		TerrainLight:  vfs.Join(zoneDir, name, name+"_PLANELIGHTINGMAP.DDS"),
	}
}

// LoadBlock загружает файлы блока (x, y). Возвращает nil, если карты высот
// нет или её не удалось разобрать. Необязательные файлы загружаются
// независимо: отсутствие или ошибка одного оставляет соответствующее поле nil.
// Не использует разделяемого состояния и безопасен для параллельного вызова.
func LoadBlock(ctx context.Context, repo vfs.Repository, zoneDir string, x, y int) *TerrainBlock {
	log := logging.GetZoneLogger()
	paths := PathsForBlock(zoneDir, x, y)

	data, err := repo.Read(ctx, paths.Heightmap)
	if err != nil {
		if !vfs.IsNotFound(err) && !errors.Is(err, context.Canceled) {
			log.Warn("⚠️ Блок %d_%d: ошибка чтения карты высот: %v", x, y, err)
		}
		return nil
	}

	heightmap, err := formats.DecodeHeightmap(data)
	if err != nil {
		log.Warn("⚠️ Блок %d_%d: повреждённая карта высот: %v", x, y, err)
		return nil
	}

	block := &TerrainBlock{X: x, Y: y, Heightmap: heightmap}
	block.Tilemap = loadOptional(ctx, repo, paths.Tilemap, formats.DecodeTilemap)
	block.Placements = loadOptional(ctx, repo, paths.Placements, formats.DecodeBlockPlacements)
	block.LightmapsCnst = loadOptional(ctx, repo, paths.LightmapsCnst, formats.DecodeLightmap)
	block.LightmapsDeco = loadOptional(ctx, repo, paths.LightmapsDeco, formats.DecodeLightmap)

	log.Trace("Блок %d_%d загружен (til=%t ifo=%t)", x, y, block.Tilemap != nil, block.Placements != nil)
	return block
}

func loadOptional[T any](ctx context.Context, repo vfs.Repository, path string, decode func([]byte) (*T, error)) *T {
	data, err := repo.Read(ctx, path)
	if err != nil {
		if !vfs.IsNotFound(err) && !errors.Is(err, context.Canceled) {
			logging.GetZoneLogger().Warn("⚠️ Ошибка чтения %s: %v", path, err)
		}
		return nil
	}

	value, err := decode(data)
	if err != nil {
		logging.GetZoneLogger().Warn("⚠️ Ошибка разбора %s: %v", path, err)
		return nil
	}
	return value
}
