package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Типы событий жизненного цикла зоны
const (
	TypeZoneLoaded     = "ZoneLoaded"
	TypeZoneLoadFailed = "ZoneLoadFailed"
	TypeZoneDespawned  = "ZoneDespawned"
)

// ZoneEventVersion версия схемы ZoneEvent
const ZoneEventVersion = 1

// ZoneEvent полезная нагрузка событий зоны
type ZoneEvent struct {
	Type      string `json:"type"`
	ZoneID    int    `json:"zone_id"`
	ZoneName  string `json:"zone_name,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Degraded  bool   `json:"degraded,omitempty"`
	Blocks    int    `json:"blocks,omitempty"`
	Ticks     int    `json:"ticks,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NewZoneEnvelope упаковывает событие зоны в Envelope
func NewZoneEnvelope(source string, ev ZoneEvent) (*Envelope, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal zone event: %w", err)
	}

	priority := 3
	if ev.Type == TypeZoneLoadFailed {
		priority = 7
	}

	return &Envelope{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        source,
		EventType:     ev.Type,
		Version:       ZoneEventVersion,
		CorrelationID: ev.RequestID,
		Priority:      priority,
		Payload:       payload,
		Metadata:      map[string]string{"zone_id": fmt.Sprint(ev.ZoneID)},
	}, nil
}

// DecodeZoneEvent извлекает ZoneEvent из Envelope
func DecodeZoneEvent(env *Envelope) (ZoneEvent, error) {
	var ev ZoneEvent
	if err := json.Unmarshal(env.Payload, &ev); err != nil {
		return ZoneEvent{}, fmt.Errorf("decode zone event %s: %w", env.ID, err)
	}
	return ev, nil
}
