package streaming

import (
	"time"

	"github.com/google/uuid"

	"github.com/annel0/zone-streamer/internal/logging"
	"github.com/annel0/zone-streamer/internal/render"
	"github.com/annel0/zone-streamer/internal/scene"
	"github.com/annel0/zone-streamer/internal/zone"
)

// RequestState состояние запроса загрузки
type RequestState int

const (
	// RequestLoading ожидание сборки зоны
	RequestLoading RequestState = iota
	// RequestSpawned сцена создана, ресурсы ещё загружаются
	RequestSpawned
	// RequestReady конечное состояние, запрос удалён из контроллера
	RequestReady
)

func (s RequestState) String() string {
	switch s {
	case RequestLoading:
		return "loading"
	case RequestSpawned:
		return "spawned"
	default:
		return "ready"
	}
}

// LoadRequest запрос на активацию зоны. Живёт от запроса до готовности.
type LoadRequest struct {
	ID            uuid.UUID
	Zone          zone.ID
	DespawnOthers bool
	State         RequestState
	CreatedAt     time.Time

	Handle *BundleHandle
	Bundle *zone.Bundle
	Root   scene.Entity
	Assets []render.Handle

	// Degraded выставляется, если ресурс не загрузился или истёк таймаут
	Degraded bool

	spawnedTicks int
	settle       int
	timedOut     bool
	failedAssets int
	pending      int
}

func newLoadRequest(id zone.ID, despawnOthers bool, handle *BundleHandle) *LoadRequest {
	return &LoadRequest{
		ID:            uuid.New(),
		Zone:          id,
		DespawnOthers: despawnOthers,
		State:         RequestLoading,
		CreatedAt:     time.Now(),
		Handle:        handle,
		settle:        -1,
	}
}

// markSpawned переводит запрос в Spawned после наполнения сцены
func (r *LoadRequest) markSpawned(bundle *zone.Bundle, root scene.Entity, assets []render.Handle) {
	r.State = RequestSpawned
	r.Bundle = bundle
	r.Root = root
	r.Assets = assets
	r.pending = len(assets)
}

// SpawnedTicks число тиков в состоянии Spawned
func (r *LoadRequest) SpawnedTicks() int { return r.spawnedTicks }

// PendingAssets число ресурсов, загрузка которых не завершена на последнем опросе
func (r *LoadRequest) PendingAssets() int { return r.pending }

// SettleCount текущее значение счётчика ожидания, -1 если ресурсы не готовы
func (r *LoadRequest) SettleCount() int { return r.settle }

// pollAssets опрашивает ресурсы один раз за тик и возвращает true, когда
// запрос готов: все ресурсы завершены и прошло settleTicks тиков ожидания.
// Ресурс с ошибкой считается завершённым, запрос помечается деградированным.
// После timeoutTicks тиков незавершённые ресурсы перестают учитываться.
func (r *LoadRequest) pollAssets(registry render.Registry, settleTicks, timeoutTicks int) bool {
	r.spawnedTicks++

	pending, failed := 0, 0
	for _, h := range r.Assets {
		switch registry.LoadState(h) {
		case render.StateLoading:
			pending++
		case render.StateFailed:
			failed++
		}
	}
	r.pending = pending

	log := logging.GetStreamingLogger()
	if failed > r.failedAssets {
		log.Warn("⚠️ Зона %d: %d ресурсов не загрузились, зона будет неполной", int(r.Zone), failed)
		r.failedAssets = failed
		r.Degraded = true
	}

	if pending > 0 && !r.timedOut && timeoutTicks > 0 && r.spawnedTicks >= timeoutTicks {
		log.Warn("⚠️ Зона %d: таймаут ожидания ресурсов (%d тиков), осталось %d", int(r.Zone), r.spawnedTicks, pending)
		r.timedOut = true
		r.Degraded = true
	}

	if pending > 0 && !r.timedOut {
		r.settle = -1
		return false
	}

	r.settle++
	return r.settle >= settleTicks
}
