// Package streaming управляет загрузкой зон: кэш собранных зон, запросы
// загрузки с их состояниями и контроллер, который раз в тик продвигает
// запросы и наполняет сцену.
package streaming

import (
	"context"
	"time"

	"github.com/annel0/zone-streamer/internal/zone"
)

// BundleLoader собирает зоны по id. *zone.Assembler удовлетворяет интерфейсу.
type BundleLoader interface {
	List() *zone.List
	Assemble(ctx context.Context, id zone.ID) (*zone.Bundle, error)
}

// BundleHandle ссылка на фоновую сборку зоны. Результат опрашивается
// без блокировки через Poll.
type BundleHandle struct {
	zone    zone.ID
	started time.Time
	done    chan struct{}

	bundle *zone.Bundle
	err    error
}

func startBundleLoad(ctx context.Context, loader BundleLoader, id zone.ID) *BundleHandle {
	h := &BundleHandle{zone: id, started: time.Now(), done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.bundle, h.err = loader.Assemble(ctx, id)
	}()
	return h
}

// Zone id зоны
func (h *BundleHandle) Zone() zone.ID { return h.zone }

// Done закрывается по завершении сборки
func (h *BundleHandle) Done() <-chan struct{} { return h.done }

// Poll возвращает результат, если сборка завершена
func (h *BundleHandle) Poll() (bundle *zone.Bundle, done bool, err error) {
	select {
	case <-h.done:
		return h.bundle, true, h.err
	default:
		return nil, false, nil
	}
}

// Failed сообщает, что сборка завершилась ошибкой
func (h *BundleHandle) Failed() bool {
	_, done, err := h.Poll()
	return done && err != nil
}

// Wait блокирует до завершения сборки или отмены ctx
func (h *BundleHandle) Wait(ctx context.Context) (*zone.Bundle, error) {
	select {
	case <-h.done:
		return h.bundle, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Elapsed время с начала сборки
func (h *BundleHandle) Elapsed() time.Duration {
	return time.Since(h.started)
}
