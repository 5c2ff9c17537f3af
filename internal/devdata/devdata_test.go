package devdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/zone-streamer/internal/vfs"
	"github.com/annel0/zone-streamer/internal/zone"
)

func TestGenerateDefaultZones(t *testing.T) {
	ctx := context.Background()
	repo := vfs.NewMemoryRepository()

	summary, err := Generate(ctx, repo, Options{Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Zones)
	assert.Equal(t, 9+2+4, summary.Blocks)
	assert.Equal(t, len(repo.Paths()), summary.Files)

	list, err := zone.LoadList(ctx, repo, ZoneListPath)
	require.NoError(t, err)
	assert.Equal(t, 3, list.Len())
	assert.Equal(t, EventCatalogPath, list.EventObjectCatalog)

	bundle, err := zone.NewAssembler(repo, list).Assemble(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 325}, bundle.PresentBlocks())
	assert.Len(t, bundle.Cnst.Objects, constructionObjects)
	assert.Len(t, bundle.Deco.Objects, decorationObjects)
	assert.Len(t, bundle.Event.Objects, 1)
	assert.Len(t, bundle.Warp.Objects, 1)

	block := bundle.Block(5, 5)
	require.NotNil(t, block.Tilemap)
	require.NotNil(t, block.Placements)
	require.NotNil(t, block.LightmapsCnst)
	assert.Len(t, block.Placements.Cnst, 2)
	assert.Len(t, block.Placements.Event, 1)
	assert.Empty(t, block.Placements.Warp, "телепорт только в первом блоке зоны")
}

func TestGenerateIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, b := vfs.NewMemoryRepository(), vfs.NewMemoryRepository()

	zones := []ZoneSpec{{ID: 5, Name: "Test", Key: "TST01", Blocks: square(10, 10, 2), Objects: 3, Water: true}}
	_, err := Generate(ctx, a, Options{Seed: 99, Zones: zones})
	require.NoError(t, err)
	_, err = Generate(ctx, b, Options{Seed: 99, Zones: zones})
	require.NoError(t, err)

	require.Equal(t, a.Paths(), b.Paths())
	for _, p := range a.Paths() {
		da, _ := a.Read(ctx, p)
		db, _ := b.Read(ctx, p)
		assert.Equal(t, da, db, p)
	}
}

func TestPlacementsLandInsideBlock(t *testing.T) {
	ctx := context.Background()
	repo := vfs.NewMemoryRepository()
	zones := []ZoneSpec{{ID: 1, Name: "P", Key: "P01", Blocks: [][2]int{{20, 40}}, Objects: 8}}
	_, err := Generate(ctx, repo, Options{Seed: 3, Zones: zones})
	require.NoError(t, err)

	list, err := zone.LoadList(ctx, repo, ZoneListPath)
	require.NoError(t, err)
	bundle, err := zone.NewAssembler(repo, list).Assemble(ctx, 1)
	require.NoError(t, err)

	x0, z0 := zone.BlockWorldOrigin(20, 40)
	for _, p := range bundle.Block(20, 40).Placements.Cnst {
		x := p.Position[0]/zone.HeightScale + zone.WorldOffset
		z := -p.Position[1]/zone.HeightScale - zone.WorldOffset
		assert.GreaterOrEqual(t, x, x0)
		assert.LessOrEqual(t, x, x0+zone.BlockWorldSize)
		assert.GreaterOrEqual(t, z, z0)
		assert.LessOrEqual(t, z, z0+zone.BlockWorldSize)
	}
}
