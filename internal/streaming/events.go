package streaming

import (
	"fmt"

	"github.com/annel0/zone-streamer/internal/eventbus"
	"github.com/annel0/zone-streamer/internal/logging"
	"github.com/annel0/zone-streamer/internal/scene"
	"github.com/annel0/zone-streamer/internal/zone"
)

// EventKind вид события зоны
type EventKind int

const (
	EventZoneLoaded EventKind = iota
	EventZoneLoadFailed
	EventZoneDespawned
)

func (k EventKind) String() string {
	switch k {
	case EventZoneLoaded:
		return eventbus.TypeZoneLoaded
	case EventZoneLoadFailed:
		return eventbus.TypeZoneLoadFailed
	case EventZoneDespawned:
		return eventbus.TypeZoneDespawned
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// ZoneEvent событие жизненного цикла зоны, возвращаемое из Tick
type ZoneEvent struct {
	Kind      EventKind
	Zone      zone.ID
	RequestID string
	Root      scene.Entity
	Degraded  bool
	Ticks     int
	Err       error
}

func (c *Controller) envelope(ev ZoneEvent) eventbus.ZoneEvent {
	out := eventbus.ZoneEvent{
		Type:      ev.Kind.String(),
		ZoneID:    int(ev.Zone),
		RequestID: ev.RequestID,
		Degraded:  ev.Degraded,
		Ticks:     ev.Ticks,
	}
	if entry, err := c.list.Get(ev.Zone); err == nil {
		out.ZoneName = entry.Name
	}
	if bundle, ok := c.cache.Bundle(ev.Zone); ok {
		out.Blocks = len(bundle.PresentBlocks())
	}
	if ev.Err != nil {
		out.Error = ev.Err.Error()
	}
	return out
}

// publish отправляет события тика в шину. Ошибки шины не влияют на загрузку.
func (c *Controller) publish(events []ZoneEvent) {
	if c.bus == nil {
		return
	}
	for _, ev := range events {
		env, err := eventbus.NewZoneEnvelope(c.source, c.envelope(ev))
		if err != nil {
			logging.GetStreamingLogger().Warn("⚠️ Событие %s не сформировано: %v", ev.Kind, err)
			continue
		}
		if err := c.bus.Publish(c.ctx, env); err != nil {
			logging.GetStreamingLogger().Warn("⚠️ Событие %s не опубликовано: %v", ev.Kind, err)
		}
	}
}
