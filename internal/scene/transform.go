package scene

import "github.com/go-gl/mathgl/mgl32"

// Transform локальное преобразование сущности (Y вверх, метры)
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
}

// IdentityTransform единичное преобразование
func IdentityTransform() Transform {
	return Transform{Rotation: mgl32.QuatIdent(), Scale: mgl32.Vec3{1, 1, 1}}
}

// FromTranslation преобразование только со сдвигом
func FromTranslation(v mgl32.Vec3) Transform {
	t := IdentityTransform()
	t.Translation = v
	return t
}

// Matrix возвращает матрицу TRS
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// Name отладочное имя сущности
type Name string

// Mul возвращает преобразование child, заданное относительно t, в системе координат родителя t
func (t Transform) Mul(child Transform) Transform {
	scaled := mgl32.Vec3{
		t.Scale.X() * child.Translation.X(),
		t.Scale.Y() * child.Translation.Y(),
		t.Scale.Z() * child.Translation.Z(),
	}
	return Transform{
		Translation: t.Translation.Add(t.Rotation.Rotate(scaled)),
		Rotation:    t.Rotation.Mul(child.Rotation),
		Scale: mgl32.Vec3{
			t.Scale.X() * child.Scale.X(),
			t.Scale.Y() * child.Scale.Y(),
			t.Scale.Z() * child.Scale.Z(),
		},
	}
}
