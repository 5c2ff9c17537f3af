// Package formats содержит чистые десериализаторы файлов данных зоны.
//
// Крупные сеточные данные (HIM, TIL) хранятся в компактном бинарном виде
// little-endian, описательные документы (ZON, ZSC, IFO, LIT, список зон)
// в YAML.
package formats

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrInvalidFormat возвращается при повреждённых или усечённых данных
var ErrInvalidFormat = errors.New("formats: invalid data")

func invalid(kind string, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidFormat, kind, fmt.Sprintf(format, args...))
}

func decodeYAML(kind string, data []byte, out interface{}) error {
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidFormat, kind, err)
	}
	return nil
}

// Vec3 трёхкомпонентный вектор в координатах исходных данных (Z вверх)
type Vec3 [3]float32

// Quat кватернион (x, y, z, w) в координатах исходных данных
type Quat [4]float32

// IdentityQuat единичный поворот
var IdentityQuat = Quat{0, 0, 0, 1}

// OneScale единичный масштаб
var OneScale = Vec3{1, 1, 1}

// Transform положение, поворот и масштаб в координатах исходных данных
type Transform struct {
	Position Vec3 `yaml:"position"`
	Rotation Quat `yaml:"rotation"`
	Scale    Vec3 `yaml:"scale"`
}

// defaultTransform возвращает Transform с единичными поворотом и масштабом
func defaultTransform() Transform {
	return Transform{Rotation: IdentityQuat, Scale: OneScale}
}
