package render

import (
	"context"
	"strings"
	"sync"

	"github.com/annel0/zone-streamer/internal/logging"
	"github.com/annel0/zone-streamer/internal/vfs"
)

type resource struct {
	kind  HandleKind
	key   string
	paths []string
	state LoadState
	deps  []Handle
	size  int
}

// Stats счётчики ресурсов по состояниям
type Stats struct {
	Loading int `json:"loading"`
	Loaded  int `json:"loaded"`
	Failed  int `json:"failed"`
	Bytes   int `json:"bytes"`
}

// StreamingRegistry реестр, загружающий файлы ресурсов из репозитория.
// Ресурсы дедуплицируются по пути. При workers > 0 загрузка идёт
// в фоновых горутинах, при workers == 0 очередь обрабатывается вызовом Pump.
type StreamingRegistry struct {
	repo vfs.Repository
	ctx  context.Context

	mu        sync.RWMutex
	resources map[uint64]*resource
	byKey     map[string]uint64
	nextID    uint64
	pending   []uint64

	sem chan struct{}
	wg  sync.WaitGroup
}

// NewStreamingRegistry создаёт реестр поверх репозитория
func NewStreamingRegistry(ctx context.Context, repo vfs.Repository, workers int) *StreamingRegistry {
	r := &StreamingRegistry{
		repo:      repo,
		ctx:       ctx,
		resources: make(map[uint64]*resource),
		byKey:     make(map[string]uint64),
	}
	if workers > 0 {
		r.sem = make(chan struct{}, workers)
	}
	return r
}

func (r *StreamingRegistry) add(res *resource) Handle {
	r.nextID++
	id := r.nextID
	r.resources[id] = res
	if res.key != "" {
		r.byKey[res.key] = id
	}
	return Handle{Kind: res.kind, ID: id}
}

// RegisterMesh регистрирует построенную в памяти сетку. Она готова сразу.
func (r *StreamingRegistry) RegisterMesh(mesh *Mesh) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(&resource{kind: KindMesh, state: StateLoaded, size: mesh.VertexCount() * 48})
}

// LoadMesh ставит файл сетки в очередь загрузки
func (r *StreamingRegistry) LoadMesh(path string) Handle {
	return r.load(KindMesh, []string{path})
}

// LoadTexture ставит текстуру в очередь загрузки
func (r *StreamingRegistry) LoadTexture(path string) Handle {
	return r.load(KindTexture, []string{path})
}

// LoadTextureArray загружает набор текстур как один ресурс
func (r *StreamingRegistry) LoadTextureArray(paths []string) Handle {
	return r.load(KindTexture, paths)
}

func (r *StreamingRegistry) load(kind HandleKind, paths []string) Handle {
	normalized := make([]string, len(paths))
	for i, p := range paths {
		normalized[i] = vfs.NormalizePath(p)
	}
	key := kind.String() + ":" + strings.Join(normalized, "|")

	r.mu.Lock()
	if id, ok := r.byKey[key]; ok {
		r.mu.Unlock()
		return Handle{Kind: kind, ID: id}
	}
	h := r.add(&resource{kind: kind, key: key, paths: normalized, state: StateLoading})
	if r.sem == nil {
		r.pending = append(r.pending, h.ID)
	}
	r.mu.Unlock()

	if r.sem != nil {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.sem <- struct{}{}
			defer func() { <-r.sem }()
			r.fetch(r.ctx, h.ID)
		}()
	}
	return h
}

// RegisterMaterial регистрирует материал. Его готовность определяется текстурами.
func (r *StreamingRegistry) RegisterMaterial(params MaterialParams) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(&resource{kind: KindMaterial, state: StateLoading, deps: params.Dependencies()})
}

// LoadState возвращает состояние ресурса. Неизвестный handle считается ошибочным.
func (r *StreamingRegistry) LoadState(h Handle) LoadState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stateLocked(h.ID)
}

func (r *StreamingRegistry) stateLocked(id uint64) LoadState {
	res, ok := r.resources[id]
	if !ok {
		return StateFailed
	}
	if res.kind != KindMaterial {
		return res.state
	}

	state := StateLoaded
	for _, dep := range res.deps {
		switch r.stateLocked(dep.ID) {
		case StateFailed:
			return StateFailed
		case StateLoading:
			state = StateLoading
		}
	}
	return state
}

// Pump синхронно обрабатывает до max ожидающих загрузок (max <= 0 значит все).
// Возвращает число обработанных ресурсов.
func (r *StreamingRegistry) Pump(ctx context.Context, max int) int {
	r.mu.Lock()
	n := len(r.pending)
	if max > 0 && max < n {
		n = max
	}
	batch := append([]uint64(nil), r.pending[:n]...)
	r.pending = r.pending[n:]
	r.mu.Unlock()

	for _, id := range batch {
		r.fetch(ctx, id)
	}
	return len(batch)
}

// Wait дожидается завершения фоновых загрузок
func (r *StreamingRegistry) Wait() {
	r.wg.Wait()
}

func (r *StreamingRegistry) fetch(ctx context.Context, id uint64) {
	r.mu.RLock()
	res := r.resources[id]
	paths := res.paths
	r.mu.RUnlock()

	state := StateLoaded
	size := 0
	for _, p := range paths {
		data, err := r.repo.Read(ctx, p)
		if err != nil {
			logging.GetAssetLogger().Warn("⚠️ Не удалось загрузить %s %s: %v", res.kind, p, err)
			state = StateFailed
			break
		}
		size += len(data)
	}

	r.mu.Lock()
	res.state = state
	res.size = size
	r.mu.Unlock()
}

// Stats возвращает сводку по состояниям ресурсов
func (r *StreamingRegistry) Stats() map[string]Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Stats)
	for id, res := range r.resources {
		s := out[res.kind.String()]
		switch r.stateLocked(id) {
		case StateLoading:
			s.Loading++
		case StateLoaded:
			s.Loaded++
		case StateFailed:
			s.Failed++
		}
		s.Bytes += res.size
		out[res.kind.String()] = s
	}
	return out
}

// Count общее число зарегистрированных ресурсов вида kind
func (r *StreamingRegistry) Count(kind HandleKind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, res := range r.resources {
		if res.kind == kind {
			n++
		}
	}
	return n
}
