// Package devdata генерирует синтетические данные зон: список зон, ZON,
// каталоги объектов, карты высот и тайлов, размещения и лайтмапы.
// Используется в тестах и утилитой zonegen.
package devdata

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/annel0/zone-streamer/internal/formats"
	"github.com/annel0/zone-streamer/internal/util"
	"github.com/annel0/zone-streamer/internal/vfs"
	"github.com/annel0/zone-streamer/internal/zone"
	"github.com/annel0/zone-streamer/internal/zone/terrain"
)

// Пути общих файлов
const (
	ZoneListPath       = "3DDATA/STB/LIST_ZONE.YAML"
	EventCatalogPath   = "3DDATA/SPECIAL/EVENT_OBJECT.ZSC"
	WarpCatalogPath    = "3DDATA/SPECIAL/WARP_OBJECT.ZSC"
	placementOriginCm  = zone.WorldOffset * zone.HeightScale
	blockSizeCm        = zone.BlockWorldSize * zone.HeightScale
	maxTerrainHeightCm = 3000
	waterLevel         = 0.3 // доля от максимальной высоты
)

// ZoneSpec описание генерируемой зоны
type ZoneSpec struct {
	ID     int
	Name   string
	Key    string   // короткое имя каталога и файлов, например JPT01
	Blocks [][2]int // координаты блоков с данными
	// Objects число размещений каждой категории на блок
	Objects int
	Water   bool
}

// Dir каталог зоны
func (z ZoneSpec) Dir() string {
	return "3DDATA/MAPS/JUNON/" + z.Key
}

// ZonPath путь к ZON зоны
func (z ZoneSpec) ZonPath() string {
	return z.Dir() + "/" + z.Key + ".ZON"
}

func (z ZoneSpec) catalogPath(kind string) string {
	return fmt.Sprintf("3DDATA/DECO/JUNON/%s/LIST_%s_%s.ZSC", z.Key, kind, z.Key)
}

// Options параметры генерации
type Options struct {
	Seed  int64
	Zones []ZoneSpec
}

// Summary итог генерации
type Summary struct {
	Zones      int
	Blocks     int
	Placements int
	Files      int
}

// DefaultZones три зоны: равнины, город с двумя блоками и порт с водой
func DefaultZones() []ZoneSpec {
	return []ZoneSpec{
		{ID: 1, Name: "Adventure Plains", Key: "JDT01", Blocks: square(31, 31, 3), Objects: 4},
		{ID: 2, Name: "Canyon City of Zant", Key: "JPT01", Blocks: [][2]int{{0, 0}, {5, 5}}, Objects: 2},
		{ID: 3, Name: "Junon Polis", Key: "JZT01", Blocks: square(32, 32, 2), Objects: 3, Water: true},
	}
}

func square(x, y, n int) [][2]int {
	var out [][2]int
	for dy := 0; dy < n; dy++ {
		for dx := 0; dx < n; dx++ {
			out = append(out, [2]int{x + dx, y + dy})
		}
	}
	return out
}

type countingWriter struct {
	vfs.Writer
	files int
}

func (w *countingWriter) Write(ctx context.Context, path string, data []byte) error {
	w.files++
	return w.Writer.Write(ctx, path, data)
}

// Generate записывает зоны в w. Результат детерминирован для одного сида.
func Generate(ctx context.Context, w vfs.Writer, opts Options) (Summary, error) {
	if len(opts.Zones) == 0 {
		opts.Zones = DefaultZones()
	}

	cw := &countingWriter{Writer: w}
	g := &generator{w: cw, noise: util.NewNoise(opts.Seed), seed: opts.Seed, assets: make(map[string]bool)}
	summary := Summary{}

	list := &formats.ZoneList{EventObjectCatalog: EventCatalogPath, WarpObjectCatalog: WarpCatalogPath}
	for _, spec := range opts.Zones {
		list.Zones = append(list.Zones, formats.ZoneListEntry{
			ID:     spec.ID,
			Name:   spec.Name,
			Zon:    spec.ZonPath(),
			Cnst:   spec.catalogPath("CNST"),
			Deco:   spec.catalogPath("DECO"),
			Skybox: "3DDATA/SKY/DAY01.ZSC",
		})
	}
	if err := g.writeYAML(ctx, ZoneListPath, func() ([]byte, error) { return formats.EncodeZoneList(list) }); err != nil {
		return summary, err
	}

	if err := g.writeCatalog(ctx, EventCatalogPath, eventCatalog()); err != nil {
		return summary, err
	}
	if err := g.writeCatalog(ctx, WarpCatalogPath, warpCatalog()); err != nil {
		return summary, err
	}

	for _, spec := range opts.Zones {
		placements, err := g.zone(ctx, spec)
		if err != nil {
			return summary, fmt.Errorf("zone %d: %w", spec.ID, err)
		}
		summary.Zones++
		summary.Blocks += len(spec.Blocks)
		summary.Placements += placements
	}

	summary.Files = cw.files
	return summary, nil
}

type generator struct {
	w      vfs.Writer
	noise  *util.Noise
	seed   int64
	assets map[string]bool
}

func (g *generator) writeYAML(ctx context.Context, path string, encode func() ([]byte, error)) error {
	data, err := encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return g.w.Write(ctx, path, data)
}

// asset записывает файл-заглушку ресурса один раз
func (g *generator) asset(ctx context.Context, path string) error {
	key := vfs.NormalizePath(path)
	if g.assets[key] {
		return nil
	}
	g.assets[key] = true
	return g.w.Write(ctx, path, []byte("DEVDATA:"+key))
}

func (g *generator) writeCatalog(ctx context.Context, path string, catalog *formats.ObjectCatalog) error {
	if err := g.writeYAML(ctx, path, func() ([]byte, error) { return formats.EncodeObjectCatalog(catalog) }); err != nil {
		return err
	}
	for _, mesh := range catalog.Meshes {
		if err := g.asset(ctx, mesh); err != nil {
			return err
		}
	}
	for _, m := range catalog.Materials {
		if err := g.asset(ctx, m.Path); err != nil {
			return err
		}
	}
	for _, effect := range catalog.Effects {
		if err := g.asset(ctx, effect); err != nil {
			return err
		}
	}
	return nil
}

func (g *generator) zone(ctx context.Context, spec ZoneSpec) (int, error) {
	definition := zoneDefinition(spec)
	if err := g.writeYAML(ctx, spec.ZonPath(), func() ([]byte, error) { return formats.EncodeZoneDefinition(definition) }); err != nil {
		return 0, err
	}
	for _, tex := range definition.TerrainTextures() {
		if err := g.asset(ctx, tex); err != nil {
			return 0, err
		}
	}
	if err := g.writeCatalog(ctx, spec.catalogPath("CNST"), constructionCatalog(spec.Key)); err != nil {
		return 0, err
	}
	if err := g.writeCatalog(ctx, spec.catalogPath("DECO"), decorationCatalog(spec.Key)); err != nil {
		return 0, err
	}
	if spec.Water {
		for _, frame := range terrain.WaterTexturePaths() {
			if err := g.asset(ctx, frame); err != nil {
				return 0, err
			}
		}
	}

	total := 0
	for _, b := range spec.Blocks {
		n, err := g.block(ctx, spec, definition, b[0], b[1])
		if err != nil {
			return total, fmt.Errorf("block %d_%d: %w", b[0], b[1], err)
		}
		total += n
	}
	return total, nil
}

func zoneDefinition(spec ZoneSpec) *formats.ZoneDefinition {
	textures := []string{
		"3DDATA/TERRAIN/TILES/JUNON/JD_GRASS01.DDS",
		"3DDATA/TERRAIN/TILES/JUNON/JD_GRASS02.DDS",
		"3DDATA/TERRAIN/TILES/JUNON/JD_DIRT01.DDS",
		"3DDATA/TERRAIN/TILES/JUNON/JD_ROCK01.DDS",
		formats.TileTexturesEnd,
	}
	return &formats.ZoneDefinition{
		Name:         spec.Name,
		GridPerPatch: 4,
		GridSize:     250,
		StartBlock:   [2]int{spec.Blocks[0][0], spec.Blocks[0][1]},
		Tiles: []formats.ZoneTile{
			{Layer1: 0, Layer2: 1, Rotation: formats.TileRotationNone},
			{Layer1: 0, Offset1: 1, Layer2: 2, Blend: true, Rotation: formats.TileRotationFlipHorizontal},
			{Layer1: 2, Layer2: 3, Blend: true, Rotation: formats.TileRotationClockwise90},
			{Layer1: 3, Layer2: 3, Rotation: formats.TileRotationNone},
		},
		TileTextures: textures,
	}
}

// block генерирует файлы одного блока. Возвращает число размещений.
func (g *generator) block(ctx context.Context, spec ZoneSpec, def *formats.ZoneDefinition, bx, by int) (int, error) {
	paths := zone.PathsForBlock(spec.Dir(), bx, by)
	rng := rand.New(rand.NewSource(g.seed + int64(spec.ID*1000) + int64(bx*31) + int64(by*17)))

	hm := g.heightmap(bx, by)
	if err := g.w.Write(ctx, paths.Heightmap, formats.EncodeHeightmap(hm)); err != nil {
		return 0, err
	}
	if err := g.w.Write(ctx, paths.Tilemap, formats.EncodeTilemap(tilemap(hm, len(def.Tiles)))); err != nil {
		return 0, err
	}
	if err := g.asset(ctx, paths.TerrainLight); err != nil {
		return 0, err
	}

	ifo := &formats.BlockPlacements{}
	for i := 0; i < spec.Objects; i++ {
		ifo.Cnst = append(ifo.Cnst, placement(rng, hm, bx, by, rng.Intn(constructionObjects)))
		ifo.Deco = append(ifo.Deco, placement(rng, hm, bx, by, rng.Intn(decorationObjects)))
	}
	event := placement(rng, hm, bx, by, 0)
	event.EventID = 100 + bx
	event.QuestTrigger = fmt.Sprintf("ZONE%d_TRIGGER", spec.ID)
	ifo.Event = append(ifo.Event, event)
	if bx == spec.Blocks[0][0] && by == spec.Blocks[0][1] {
		warp := placement(rng, hm, bx, by, 0)
		warp.WarpID = spec.ID
		ifo.Warp = append(ifo.Warp, warp)
	}
	if spec.Water {
		ifo.WaterSize = 1000
		ifo.WaterPlanes = append(ifo.WaterPlanes, waterPlane(bx, by))
	}

	if err := g.writeYAML(ctx, paths.Placements, func() ([]byte, error) { return formats.EncodeBlockPlacements(ifo) }); err != nil {
		return 0, err
	}

	if err := g.lightmaps(ctx, paths.LightmapDir, paths.LightmapsCnst, "BUILDING", len(ifo.Cnst), 2); err != nil {
		return 0, err
	}
	if err := g.lightmaps(ctx, paths.LightmapDir, paths.LightmapsDeco, "OBJECT", len(ifo.Deco), 1); err != nil {
		return 0, err
	}
	return ifo.Count(), nil
}

// heightmap карта высот блока из шума. Соседние блоки совпадают на общих краях.
func (g *generator) heightmap(bx, by int) *formats.Heightmap {
	hm := &formats.Heightmap{
		Width:      zone.BlockSamples,
		Height:     zone.BlockSamples,
		GridCount:  zone.TileStride,
		PatchScale: 250,
		Heights:    make([]float32, zone.BlockSamples*zone.BlockSamples),
	}
	const scale = 0.02
	for y := 0; y < zone.BlockSamples; y++ {
		for x := 0; x < zone.BlockSamples; x++ {
			gx := float64(bx*(zone.BlockSamples-1) + x)
			gy := float64(by*(zone.BlockSamples-1) + y)
			hm.Heights[y*zone.BlockSamples+x] = float32(g.noise.At(gx*scale, gy*scale) * maxTerrainHeightCm)
		}
	}
	return hm
}

// tilemap выбирает тайл палитры по средней высоте ячейки
func tilemap(hm *formats.Heightmap, palette int) *formats.Tilemap {
	tm := &formats.Tilemap{
		Width:  zone.TilesPerBlock,
		Height: zone.TilesPerBlock,
		Tiles:  make([]formats.TilemapTile, zone.TilesPerBlock*zone.TilesPerBlock),
	}
	for ty := 0; ty < zone.TilesPerBlock; ty++ {
		for tx := 0; tx < zone.TilesPerBlock; tx++ {
			h := hm.Get(tx*zone.TileStride+zone.TileStride/2, ty*zone.TileStride+zone.TileStride/2) / maxTerrainHeightCm
			tile := int32(float32(palette) * h)
			if tile >= int32(palette) {
				tile = int32(palette) - 1
			}
			tm.Tiles[ty*zone.TilesPerBlock+tx] = formats.TilemapTile{TileIndex: uint8(tile), Tile: tile}
		}
	}
	return tm
}

// placement случайное размещение внутри блока на поверхности рельефа.
// Координаты IFO отсчитываются от центра мира.
func placement(rng *rand.Rand, hm *formats.Heightmap, bx, by, objectID int) formats.ObjectPlacement {
	fx, fy := rng.Float64(), rng.Float64()
	sx := int(fx * float64(hm.Width-1))
	sy := int(fy * float64(hm.Height-1))

	worldX := (float64(bx) + fx) * blockSizeCm
	worldY := (zone.BlockOriginRow - float64(by) - fy) * blockSizeCm

	angle := rng.Float64() * math.Pi
	return formats.ObjectPlacement{
		ObjectID: objectID,
		Position: formats.Vec3{
			float32(worldX - placementOriginCm),
			float32(worldY - placementOriginCm),
			hm.Get(sx, sy),
		},
		Rotation: formats.Quat{0, 0, float32(math.Sin(angle / 2)), float32(math.Cos(angle / 2))},
		Scale:    formats.OneScale,
	}
}

func waterPlane(bx, by int) formats.WaterPlane {
	x0 := float32(float64(bx)*blockSizeCm - placementOriginCm)
	z0 := float32((zone.BlockOriginRow-float64(by))*blockSizeCm - placementOriginCm)
	level := float32(maxTerrainHeightCm * waterLevel)
	return formats.WaterPlane{
		Start: formats.Vec3{x0, level, z0 - blockSizeCm},
		End:   formats.Vec3{x0 + blockSizeCm, level, z0},
	}
}

// lightmaps пишет LIT для count размещений с partsPerObject частями и атлас
func (g *generator) lightmaps(ctx context.Context, dir, path, prefix string, count, partsPerObject int) error {
	if count == 0 {
		return nil
	}
	const perRow = 4
	atlas := fmt.Sprintf("%s_LIGHTMAP_0.DDS", prefix)

	lit := &formats.Lightmap{}
	index := 0
	for i := 0; i < count; i++ {
		obj := formats.LightmapObject{ID: i + 1}
		for p := 0; p < partsPerObject; p++ {
			obj.Parts = append(obj.Parts, formats.LightmapPart{
				Name:        fmt.Sprintf("%s_%d_%d", prefix, i, p),
				Filename:    atlas,
				AtlasIndex:  index % (perRow * perRow),
				PartsPerRow: perRow,
			})
			index++
		}
		lit.Objects = append(lit.Objects, obj)
	}

	if err := g.writeYAML(ctx, path, func() ([]byte, error) { return formats.EncodeLightmap(lit) }); err != nil {
		return err
	}
	return g.asset(ctx, vfs.Join(dir, atlas))
}
