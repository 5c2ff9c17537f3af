package main

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/zone-streamer/internal/eventbus"
)

func TestDecodeAndFormat(t *testing.T) {
	env, err := eventbus.NewZoneEnvelope("zoneviewer", eventbus.ZoneEvent{
		Type:     eventbus.TypeZoneLoaded,
		ZoneID:   2,
		ZoneName: "Canyon City of Zant",
		Blocks:   2,
		Ticks:    3,
		Degraded: true,
	})
	require.NoError(t, err)
	data, err := json.Marshal(env)
	require.NoError(t, err)

	decoded, zev, err := decode(data)
	require.NoError(t, err)
	assert.Equal(t, env.ID, decoded.ID)
	assert.Equal(t, 2, zev.ZoneID)

	out := formatEvent(decoded, zev)
	assert.Contains(t, out, "[ZoneLoaded] zone=2 (Canyon City of Zant)")
	assert.Contains(t, out, "Blocks: 2 Ticks: 3 ⚠️ degraded")

	_, _, err = decode([]byte("{"))
	assert.Error(t, err)
}

func TestFilter(t *testing.T) {
	loaded := eventbus.ZoneEvent{Type: eventbus.TypeZoneLoaded, ZoneID: 1}
	failed := eventbus.ZoneEvent{Type: eventbus.TypeZoneLoadFailed, ZoneID: 3}

	all := newFilter(nil, nil)
	assert.True(t, all.match(loaded))
	assert.True(t, all.match(failed))

	byType := newFilter([]string{eventbus.TypeZoneLoadFailed}, nil)
	assert.False(t, byType.match(loaded))
	assert.True(t, byType.match(failed))

	byZone := newFilter(nil, parseStringList("1, 2"))
	assert.True(t, byZone.match(loaded))
	assert.False(t, byZone.match(failed))
}

func TestParseSinceTime(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseSinceTime("30m", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-30*time.Minute), got)

	got, err = parseSinceTime("2024-05-01T10:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), got)

	_, err = parseSinceTime("yesterday", now)
	assert.Error(t, err)
}
