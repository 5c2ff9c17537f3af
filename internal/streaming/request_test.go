package streaming

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annel0/zone-streamer/internal/render"
)

// stateRegistry реестр с состояниями, задаваемыми тестом
type stateRegistry struct {
	states map[render.Handle]render.LoadState
}

func (r *stateRegistry) RegisterMesh(*render.Mesh) render.Handle              { return render.Handle{} }
func (r *stateRegistry) LoadMesh(string) render.Handle                        { return render.Handle{} }
func (r *stateRegistry) LoadTexture(string) render.Handle                     { return render.Handle{} }
func (r *stateRegistry) LoadTextureArray([]string) render.Handle              { return render.Handle{} }
func (r *stateRegistry) RegisterMaterial(render.MaterialParams) render.Handle { return render.Handle{} }
func (r *stateRegistry) LoadState(h render.Handle) render.LoadState           { return r.states[h] }

func TestPollAssetsSettleResetsOnRegression(t *testing.T) {
	a := render.Handle{Kind: render.KindMesh, ID: 1}
	b := render.Handle{Kind: render.KindTexture, ID: 2}
	reg := &stateRegistry{states: map[render.Handle]render.LoadState{a: render.StateLoaded, b: render.StateLoading}}

	req := newLoadRequest(1, false, nil)
	req.markSpawned(nil, 0, []render.Handle{a, b})

	assert.False(t, req.pollAssets(reg, 2, 0))
	assert.Equal(t, 1, req.PendingAssets())

	reg.states[b] = render.StateLoaded
	assert.False(t, req.pollAssets(reg, 2, 0))
	assert.False(t, req.pollAssets(reg, 2, 0))

	// Ресурс снова загружается: отсчёт начинается заново
	reg.states[b] = render.StateLoading
	assert.False(t, req.pollAssets(reg, 2, 0))
	assert.Equal(t, -1, req.SettleCount())

	reg.states[b] = render.StateLoaded
	assert.False(t, req.pollAssets(reg, 2, 0))
	assert.False(t, req.pollAssets(reg, 2, 0))
	assert.True(t, req.pollAssets(reg, 2, 0))
	assert.False(t, req.Degraded)
	assert.Equal(t, 7, req.SpawnedTicks())
}

func TestPollAssetsFailedCountsAsFinished(t *testing.T) {
	a := render.Handle{Kind: render.KindMaterial, ID: 1}
	reg := &stateRegistry{states: map[render.Handle]render.LoadState{a: render.StateFailed}}

	req := newLoadRequest(1, false, nil)
	req.markSpawned(nil, 0, []render.Handle{a})

	assert.False(t, req.pollAssets(reg, 1, 0))
	assert.True(t, req.Degraded)
	assert.True(t, req.pollAssets(reg, 1, 0))
}

func TestPollAssetsZeroSettle(t *testing.T) {
	req := newLoadRequest(1, false, nil)
	req.markSpawned(nil, 0, nil)
	assert.True(t, req.pollAssets(&stateRegistry{}, 0, 0))
}
