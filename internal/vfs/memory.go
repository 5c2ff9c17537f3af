package vfs

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// MemoryRepository хранит файлы в памяти. Ведёт счётчик чтений по путям,
// что удобно для проверки повторного использования кэша.
type MemoryRepository struct {
	mu    sync.RWMutex
	files map[string][]byte
	reads map[string]*int64
	total int64
}

// NewMemoryRepository создаёт пустой репозиторий в памяти
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		files: make(map[string][]byte),
		reads: make(map[string]*int64),
	}
}

// Write сохраняет файл по нормализованному пути
func (m *MemoryRepository) Write(_ context.Context, p string, data []byte) error {
	key := NormalizePath(p)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = append([]byte(nil), data...)
	if _, ok := m.reads[key]; !ok {
		m.reads[key] = new(int64)
	}
	return nil
}

// Read возвращает копию содержимого файла или ErrNotFound
func (m *MemoryRepository) Read(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := NormalizePath(p)
	atomic.AddInt64(&m.total, 1)

	m.mu.RLock()
	data, ok := m.files[key]
	counter := m.reads[key]
	m.mu.RUnlock()

	if counter != nil {
		atomic.AddInt64(counter, 1)
	}
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

// Remove удаляет файл
func (m *MemoryRepository) Remove(p string) {
	m.mu.Lock()
	delete(m.files, NormalizePath(p))
	m.mu.Unlock()
}

// ReadCount возвращает число чтений пути (включая неудачные для известных путей)
func (m *MemoryRepository) ReadCount(p string) int64 {
	m.mu.RLock()
	counter := m.reads[NormalizePath(p)]
	m.mu.RUnlock()
	if counter == nil {
		return 0
	}
	return atomic.LoadInt64(counter)
}

// TotalReads возвращает общее число обращений Read
func (m *MemoryRepository) TotalReads() int64 {
	return atomic.LoadInt64(&m.total)
}

// Paths возвращает отсортированный список путей
func (m *MemoryRepository) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
