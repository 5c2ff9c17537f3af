package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ZONE_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "assets", cfg.Assets.Root)
	assert.Equal(t, 2, cfg.Loader.GetSettleTicks())
	assert.Equal(t, time.Second/60, cfg.Loader.GetTickInterval())
	assert.Greater(t, cfg.Loader.GetMaxParallelBlocks(), 0)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zone.yaml")
	yml := `
assets:
  root: /data/zones
loader:
  max_parallel_blocks: 32
  settle_ticks: 3
server:
  debug_port: 9100
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/zones", cfg.Assets.Root)
	assert.Equal(t, "3DDATA/STB/LIST_ZONE.YAML", cfg.Assets.ZoneList, "незаданные поля сохраняют значения по умолчанию")
	assert.Equal(t, 32, cfg.Loader.GetMaxParallelBlocks())
	assert.Equal(t, 3, cfg.Loader.GetSettleTicks())
	assert.Equal(t, 9100, cfg.Server.GetDebugPort())
}

func TestPortEnvFallback(t *testing.T) {
	s := ServerConfig{}
	t.Setenv("ZONE_DEBUG_PORT", "")
	assert.Equal(t, 8089, s.GetDebugPort())

	t.Setenv("ZONE_DEBUG_PORT", "9200")
	assert.Equal(t, 9200, s.GetDebugPort())

	t.Setenv("ZONE_DEBUG_PORT", "not-a-port")
	assert.Equal(t, 8089, s.GetDebugPort())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
