package objects

import (
	"github.com/annel0/zone-streamer/internal/formats"
	"github.com/annel0/zone-streamer/internal/physics"
	"github.com/annel0/zone-streamer/internal/zone"
)

// CollisionGroup группа коллизий категории объектов
func CollisionGroup(category zone.ObjectCategory) physics.Group {
	switch category {
	case zone.CategoryEvent:
		return physics.GroupZoneEventObject
	case zone.CategoryWarp:
		return physics.GroupZoneWarpObject
	default:
		return physics.GroupZoneObject
	}
}

// CollisionFilter вычисляет участие части в запросах. ok == false означает,
// что коллайдер не создаётся вовсе.
func CollisionFilter(category zone.ObjectCategory, shape formats.CollisionShape, flags formats.CollisionFlags) (physics.Filter, bool) {
	if shape == formats.CollisionShapeNone {
		return 0, false
	}

	// Триггеры событий и телепортов только инспектируются
	if category == zone.CategoryEvent || category == zone.CategoryWarp {
		return physics.FilterInspectable, true
	}

	if flags.Has(formats.CollisionHeightOnly) {
		return physics.FilterMoveable, true
	}

	filter := physics.FilterInspectable | physics.FilterCollidable
	if !flags.Has(formats.CollisionNotMoveable) {
		filter |= physics.FilterMoveable
	}
	if !flags.Has(formats.CollisionNotPickable) {
		filter |= physics.FilterClickable
	}
	if !flags.Has(formats.CollisionNotCameraCollision) {
		filter |= physics.FilterCamera
	}
	return filter, true
}
