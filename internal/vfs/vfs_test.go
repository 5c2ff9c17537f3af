package vfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/zone-streamer/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "3DDATA/MAPS/JUNON/JPT01/31_30.HIM", NormalizePath(`3ddata\maps\junon\jpt01\31_30.him`))
	assert.Equal(t, "A/C.ZON", NormalizePath("/a/b/../c.zon"))
	assert.Equal(t, "3DDATA/MAPS/JUNON/JPT01", Dir(`3DDATA\MAPS\JUNON\JPT01\JPT01.ZON`))
	assert.Equal(t, "", Dir("ROOT.ZON"))
	assert.Equal(t, "ZONE/31_30/LIGHTMAP/X.LIT", Join("zone", "31_30", `LIGHTMAP\x.lit`))
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Read(ctx, "missing.him")
	assert.True(t, IsNotFound(err))

	require.NoError(t, repo.Write(ctx, `zone\a.him`, []byte{1, 2, 3}))
	data, err := repo.Read(ctx, "ZONE/A.HIM")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
	assert.Equal(t, int64(1), repo.ReadCount("zone/a.him"))

	data[0] = 9
	again, _ := repo.Read(ctx, "zone/a.him")
	assert.Equal(t, byte(1), again[0], "чтение возвращает копию")

	repo.Remove("zone/a.him")
	_, err = repo.Read(ctx, "zone/a.him")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMemoryRepository().Read(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirRepositoryCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "3ddata", "maps"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "3ddata", "maps", "Test.zon"), []byte("zon"), 0644))

	repo, err := NewDirRepository(root)
	require.NoError(t, err)

	data, err := repo.Read(context.Background(), `3DDATA\MAPS\TEST.ZON`)
	require.NoError(t, err)
	assert.Equal(t, []byte("zon"), data)

	_, err = repo.Read(context.Background(), "3DDATA/MAPS/OTHER.ZON")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Write(context.Background(), "new/file.bin", []byte{7}))
	data, err = repo.Read(context.Background(), "NEW/FILE.BIN")
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, data)
}

func TestNewDirRepositoryRejectsMissingRoot(t *testing.T) {
	_, err := NewDirRepository(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestPackRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	pack, err := OpenPack(t.TempDir())
	require.NoError(t, err)
	defer pack.Close()

	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i % 7)
	}
	require.NoError(t, pack.Write(ctx, `zone\1_1.him`, payload))

	data, err := pack.Read(ctx, "ZONE/1_1.HIM")
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = pack.Read(ctx, "ZONE/2_2.HIM")
	assert.ErrorIs(t, err, ErrNotFound)

	count, err := pack.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, pack.Close())
	_, err = pack.Read(ctx, "ZONE/1_1.HIM")
	assert.Error(t, err)
}

func TestCachedRepositoryReadThrough(t *testing.T) {
	ctx := context.Background()
	base := NewMemoryRepository()
	require.NoError(t, base.Write(ctx, "a.bin", []byte("payload")))

	repo := NewCachedRepository(base, cache.NewMemoryCache(), 0)

	for i := 0; i < 3; i++ {
		data, err := repo.Read(ctx, "a.bin")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), data)
	}
	assert.Equal(t, int64(1), base.ReadCount("a.bin"), "повторные чтения обслуживаются кэшем")

	_, err := repo.Read(ctx, "missing.bin")
	assert.ErrorIs(t, err, ErrNotFound)
}
