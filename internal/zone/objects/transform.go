package objects

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/zone-streamer/internal/formats"
	"github.com/annel0/zone-streamer/internal/scene"
	"github.com/annel0/zone-streamer/internal/zone"
)

// Исходные данные используют Z вверх и сантиметры, сцена Y вверх и метры.

func swizzlePosition(v formats.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[2], -v[1]}.Mul(1 / zone.HeightScale)
}

func swizzleRotation(q formats.Quat) mgl32.Quat {
	return mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[2], -q[1]}}
}

func swizzleScale(v formats.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{v[0], v[2], v[1]}
}

// PlacementTransform мировое преобразование размещённого объекта
func PlacementTransform(p formats.ObjectPlacement) scene.Transform {
	return scene.Transform{
		Translation: swizzlePosition(p.Position).Add(mgl32.Vec3{zone.WorldOffset, 0, -zone.WorldOffset}),
		Rotation:    swizzleRotation(p.Rotation),
		Scale:       swizzleScale(p.Scale),
	}
}

func localTransform(position formats.Vec3, rotation formats.Quat, scale formats.Vec3) scene.Transform {
	return scene.Transform{
		Translation: swizzlePosition(position),
		Rotation:    swizzleRotation(rotation),
		Scale:       swizzleScale(scale),
	}
}
