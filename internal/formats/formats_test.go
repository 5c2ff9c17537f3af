package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeightmapRoundTrip(t *testing.T) {
	h := &Heightmap{Width: 3, Height: 2, GridCount: 4, PatchScale: 250, Heights: []float32{1, 2, 3, 4, 5, 6}}

	decoded, err := DecodeHeightmap(EncodeHeightmap(h))
	require.NoError(t, err)
	assert.Equal(t, h, decoded)

	assert.Equal(t, float32(6), decoded.Get(2, 1))
	assert.Equal(t, float32(1), decoded.Get(-5, -5), "координаты ограничиваются границами")
	assert.Equal(t, float32(6), decoded.Get(10, 10))

	lo, hi := decoded.MinMax()
	assert.Equal(t, float32(1), lo)
	assert.Equal(t, float32(6), hi)
}

func TestDecodeHeightmapRejectsTruncatedData(t *testing.T) {
	h := &Heightmap{Width: 65, Height: 65, Heights: make([]float32, 65*65)}
	data := EncodeHeightmap(h)

	_, err := DecodeHeightmap(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = DecodeHeightmap([]byte{1, 2})
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestTilemapRoundTrip(t *testing.T) {
	tm := &Tilemap{Width: 2, Height: 2, Tiles: []TilemapTile{
		{BrushID: 1, TileIndex: 2, TileSet: 3, Tile: 10},
		{Tile: 11}, {Tile: 12}, {Tile: -1},
	}}

	decoded, err := DecodeTilemap(EncodeTilemap(tm))
	require.NoError(t, err)
	assert.Equal(t, tm, decoded)
	assert.Equal(t, int32(12), decoded.Get(0, 1).Tile)
	assert.Equal(t, int32(-1), decoded.Get(5, 5).Tile)
}

func TestZoneDefinitionDefaultsAndTextures(t *testing.T) {
	yml := `
name: Test
tiles:
  - {layer1: 1, offset1: 2, layer2: 3, offset2: 1, rotation: clockwise_90}
tile_textures: [a.dds, b.dds, end, ignored.dds]
`
	def, err := DecodeZoneDefinition([]byte(yml))
	require.NoError(t, err)
	assert.Equal(t, 4, def.GridPerPatch)
	assert.Equal(t, float32(250), def.GridSize)
	assert.Equal(t, []string{"a.dds", "b.dds"}, def.TerrainTextures())

	tile := def.Tile(0)
	assert.Equal(t, uint32(3), tile.Layer1Index())
	assert.Equal(t, uint32(4), tile.Layer2Index())
	assert.Equal(t, uint32(5), tile.Rotation.Code())
	assert.Equal(t, ZoneTile{}, def.Tile(7))
}

func TestTileRotationCodes(t *testing.T) {
	cases := map[TileRotation]uint32{
		TileRotationNone:             0,
		"":                           0,
		TileRotationFlipHorizontal:   2,
		TileRotationFlipVertical:     3,
		TileRotationFlip:             4,
		TileRotationClockwise90:      5,
		TileRotationCounterClockwise: 6,
	}
	for rot, code := range cases {
		assert.Equal(t, code, rot.Code(), string(rot))
	}
}

func TestObjectCatalogDefaultsAndFlags(t *testing.T) {
	yml := `
meshes: [a.zms, b.zms]
materials:
  - {path: a.dds}
  - {path: b.dds, alpha_enabled: true, z_write: false, alpha: 0.5, alpha_test: 0.25}
effects: [fire.eft]
objects:
  - parts:
      - {mesh: 0, material: 0, collision_shape: obb, collision_flags: [not_moveable, height_only]}
      - {mesh: 1, material: 1, parent: 0, animation: door.zmo}
    effects:
      - {effect: 0, type: day_night, part: 1}
`
	c, err := DecodeObjectCatalog([]byte(yml))
	require.NoError(t, err)

	assert.True(t, c.Materials[0].ZTest)
	assert.True(t, c.Materials[0].ZWrite)
	assert.Equal(t, float32(1), c.Materials[0].Alpha)
	assert.False(t, c.Materials[1].ZWrite)
	require.NotNil(t, c.Materials[1].AlphaTest)
	assert.Equal(t, float32(0.25), *c.Materials[1].AlphaTest)

	obj, ok := c.Object(0)
	require.True(t, ok)
	part := obj.Parts[0]
	assert.Equal(t, IdentityQuat, part.Rotation)
	assert.Equal(t, OneScale, part.Scale)
	assert.True(t, part.CollisionFlags.Has(CollisionNotMoveable))
	assert.True(t, part.CollisionFlags.Has(CollisionHeightOnly))
	assert.False(t, part.CollisionFlags.Has(CollisionNotPickable))
	require.NotNil(t, obj.Parts[1].Parent)
	assert.Equal(t, 0, *obj.Parts[1].Parent)
	assert.Equal(t, EffectDayNight, obj.Effects[0].Type)

	_, ok = c.Object(5)
	assert.False(t, ok)

	encoded, err := EncodeObjectCatalog(c)
	require.NoError(t, err)
	again, err := DecodeObjectCatalog(encoded)
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestObjectCatalogValidatesReferences(t *testing.T) {
	_, err := DecodeObjectCatalog([]byte("meshes: []\nmaterials: []\nobjects:\n  - parts:\n      - {mesh: 0, material: 0}\n"))
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = DecodeObjectCatalog([]byte("meshes: [a]\nmaterials: [{path: a}]\nobjects:\n  - parts:\n      - {mesh: 0, material: 0, collision_flags: [bogus]}\n"))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestBlockPlacements(t *testing.T) {
	yml := `
cnst:
  - {object_id: 3, position: [520000, 520000, 100]}
warp:
  - {object_id: 0, warp_id: 7}
water_size: 1000
water_planes:
  - {start: [0, 0, 10], end: [1000, 2000, 10]}
`
	b, err := DecodeBlockPlacements([]byte(yml))
	require.NoError(t, err)
	assert.Equal(t, 2, b.Count())
	assert.Equal(t, OneScale, b.Cnst[0].Scale)
	assert.Equal(t, 7, b.Warp[0].WarpID)
	assert.Len(t, b.WaterPlanes, 1)
}

func TestLightmapFindPart(t *testing.T) {
	explicit := 2
	l := &Lightmap{Objects: []LightmapObject{
		{ID: 1, Parts: []LightmapPart{{Filename: "p0.dds"}, {Filename: "p1.dds"}}},
		{ID: 2, Parts: []LightmapPart{{Filename: "explicit.dds", PartIndex: &explicit}}},
	}}

	part, ok := l.FindPart(0, 1)
	require.True(t, ok)
	assert.Equal(t, "p1.dds", part.Filename, "позиционное совпадение")

	part, ok = l.FindPart(1, 2)
	require.True(t, ok)
	assert.Equal(t, "explicit.dds", part.Filename, "явный part_index")

	_, ok = l.FindPart(1, 0)
	assert.False(t, ok, "позиция не используется при явном part_index")

	_, ok = l.FindPart(5, 0)
	assert.False(t, ok)

	var nilMap *Lightmap
	_, ok = nilMap.FindPart(0, 0)
	assert.False(t, ok)
}

func TestDecodeLightmapDefaultsPartsPerRow(t *testing.T) {
	l, err := DecodeLightmap([]byte("objects:\n  - id: 1\n    parts:\n      - {filename: a.dds, atlas_index: 3}\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, l.Objects[0].Parts[0].PartsPerRow)
}

func TestZoneListValidation(t *testing.T) {
	l, err := DecodeZoneList([]byte("event_object_catalog: e.zsc\nzones:\n  - {id: 1, name: A, zon: a.zon}\n  - {id: 2, name: B, zon: b.zon}\n"))
	require.NoError(t, err)
	assert.Len(t, l.Zones, 2)
	assert.Equal(t, "e.zsc", l.EventObjectCatalog)

	_, err = DecodeZoneList([]byte("zones:\n  - {id: 1, zon: a}\n  - {id: 1, zon: b}\n"))
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = DecodeZoneList([]byte("zones:\n  - {id: 0, zon: a}\n"))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
