package streaming

import (
	"context"

	"github.com/annel0/zone-streamer/internal/scene"
	"github.com/annel0/zone-streamer/internal/zone"
)

// SlotState состояние слота кэша зоны
type SlotState int

const (
	SlotUnloaded SlotState = iota // нет сборки или её результат отброшен
	SlotLoading                   // сборка в процессе
	SlotLoaded                    // зона собрана, сцена не создана
	SlotSpawned                   // сцена зоны создана
)

func (s SlotState) String() string {
	switch s {
	case SlotLoading:
		return "loading"
	case SlotLoaded:
		return "loaded"
	case SlotSpawned:
		return "spawned"
	default:
		return "unloaded"
	}
}

// LookupKind результат обращения к кэшу
type LookupKind int

const (
	// LookupAlreadySpawned сцена зоны уже создана, работы нет
	LookupAlreadySpawned LookupKind = iota
	// LookupLoadTriggered новая или ещё идущая сборка
	LookupLoadTriggered
)

// Lookup результат GetOrTriggerLoad
type Lookup struct {
	Kind   LookupKind
	Root   scene.Entity
	Handle *BundleHandle
}

type cacheSlot struct {
	handle  *BundleHandle
	root    scene.Entity
	spawned bool
}

// ZoneCache таблица зон, индексируемая id. Размер равен числу слотов
// списка зон, таблица создаётся при первом обращении.
// Не потокобезопасен: им владеет Controller.
type ZoneCache struct {
	ctx    context.Context
	loader BundleLoader
	slots  []cacheSlot

	assemblies int
}

// NewZoneCache создаёт кэш поверх загрузчика зон
func NewZoneCache(ctx context.Context, loader BundleLoader) *ZoneCache {
	return &ZoneCache{ctx: ctx, loader: loader}
}

func (c *ZoneCache) slot(id zone.ID) (*cacheSlot, error) {
	if _, err := c.loader.List().Get(id); err != nil {
		return nil, err
	}
	if c.slots == nil {
		c.slots = make([]cacheSlot, c.loader.List().SlotCount())
	}
	return &c.slots[id], nil
}

// GetOrTriggerLoad возвращает корень созданной сцены зоны либо handle сборки.
// Идущая или завершённая успешно сборка переиспользуется, сборка с ошибкой
// запускается заново. Неизвестный id возвращает zone.ErrInvalidZoneID без
// изменения кэша.
func (c *ZoneCache) GetOrTriggerLoad(id zone.ID) (Lookup, error) {
	s, err := c.slot(id)
	if err != nil {
		return Lookup{}, err
	}

	if s.spawned {
		return Lookup{Kind: LookupAlreadySpawned, Root: s.root}, nil
	}
	if s.handle == nil || s.handle.Failed() {
		s.handle = startBundleLoad(c.ctx, c.loader, id)
		c.assemblies++
	}
	return Lookup{Kind: LookupLoadTriggered, Handle: s.handle}, nil
}

// RecordSpawned запоминает корень созданной сцены зоны. Идемпотентен.
func (c *ZoneCache) RecordSpawned(id zone.ID, root scene.Entity) {
	if s, err := c.slot(id); err == nil {
		s.spawned = true
		s.root = root
	}
}

// ClearSpawned сбрасывает корень сцены, сохраняя собранную зону
func (c *ZoneCache) ClearSpawned(id zone.ID) {
	if s, err := c.slot(id); err == nil {
		s.spawned = false
		s.root = scene.NoEntity
	}
}

// Discard отбрасывает handle сборки, завершившейся ошибкой
func (c *ZoneCache) Discard(id zone.ID) {
	if s, err := c.slot(id); err == nil && s.handle != nil && s.handle.Failed() {
		s.handle = nil
	}
}

// State состояние слота зоны
func (c *ZoneCache) State(id zone.ID) SlotState {
	if c.slots == nil || id < 0 || int(id) >= len(c.slots) {
		return SlotUnloaded
	}
	s := &c.slots[id]
	switch {
	case s.spawned:
		return SlotSpawned
	case s.handle == nil:
		return SlotUnloaded
	}

	_, done, err := s.handle.Poll()
	switch {
	case !done:
		return SlotLoading
	case err != nil:
		return SlotUnloaded
	default:
		return SlotLoaded
	}
}

// Root корень сцены зоны, если она создана
func (c *ZoneCache) Root(id zone.ID) (scene.Entity, bool) {
	if c.State(id) != SlotSpawned {
		return scene.NoEntity, false
	}
	return c.slots[id].root, true
}

// Bundle собранная зона, если сборка завершена успешно
func (c *ZoneCache) Bundle(id zone.ID) (*zone.Bundle, bool) {
	if c.slots == nil || id < 0 || int(id) >= len(c.slots) || c.slots[id].handle == nil {
		return nil, false
	}
	bundle, done, err := c.slots[id].handle.Poll()
	if !done || err != nil {
		return nil, false
	}
	return bundle, true
}

// Spawned возвращает id зон с созданной сценой по возрастанию
func (c *ZoneCache) Spawned() []zone.ID {
	var out []zone.ID
	for i := range c.slots {
		if c.slots[i].spawned {
			out = append(out, zone.ID(i))
		}
	}
	return out
}

// Assemblies число запущенных сборок за время жизни кэша
func (c *ZoneCache) Assemblies() int {
	return c.assemblies
}
