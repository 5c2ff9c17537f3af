package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/annel0/zone-streamer/internal/eventbus"
)

type eventFilter struct {
	types map[string]bool
	zones map[int]bool
}

func newFilter(types, zones []string) eventFilter {
	f := eventFilter{}
	if len(types) > 0 {
		f.types = make(map[string]bool, len(types))
		for _, t := range types {
			f.types[t] = true
		}
	}
	if len(zones) > 0 {
		f.zones = make(map[int]bool, len(zones))
		for _, z := range zones {
			if id, err := strconv.Atoi(z); err == nil {
				f.zones[id] = true
			}
		}
	}
	return f
}

func (f eventFilter) match(ev eventbus.ZoneEvent) bool {
	if f.types != nil && !f.types[ev.Type] {
		return false
	}
	if f.zones != nil && !f.zones[ev.ZoneID] {
		return false
	}
	return true
}

func decode(data []byte) (*eventbus.Envelope, eventbus.ZoneEvent, error) {
	var env eventbus.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, eventbus.ZoneEvent{}, err
	}
	zev, err := eventbus.DecodeZoneEvent(&env)
	if err != nil {
		return nil, eventbus.ZoneEvent{}, err
	}
	return &env, zev, nil
}

// formatEvent выводит событие в читаемом формате
func formatEvent(env *eventbus.Envelope, ev eventbus.ZoneEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s [%s] zone=%d", env.Timestamp.Local().Format("15:04:05"), env.Source, ev.Type, ev.ZoneID)
	if ev.ZoneName != "" {
		fmt.Fprintf(&b, " (%s)", ev.ZoneName)
	}

	switch ev.Type {
	case eventbus.TypeZoneLoaded:
		fmt.Fprintf(&b, "\n  Blocks: %d Ticks: %d", ev.Blocks, ev.Ticks)
		if ev.Degraded {
			b.WriteString(" ⚠️ degraded")
		}
	case eventbus.TypeZoneLoadFailed:
		fmt.Fprintf(&b, "\n  Error: %s", ev.Error)
	}
	if ev.RequestID != "" {
		fmt.Fprintf(&b, "\n  Request: %s", ev.RequestID)
	}
	return b.String()
}

func printEvent(env *eventbus.Envelope, ev eventbus.ZoneEvent) {
	fmt.Println(formatEvent(env, ev))
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseSinceTime парсит относительное время типа "1h", "30m" или абсолютное
func parseSinceTime(since string, from time.Time) (time.Time, error) {
	if since == "" {
		return from, nil
	}

	duration, err := time.ParseDuration(since)
	if err != nil {
		return time.Parse(timeFormat, since)
	}
	return from.Add(-duration), nil
}
