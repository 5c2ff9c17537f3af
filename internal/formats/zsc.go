package formats

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// BlendMode режим смешивания материала
type BlendMode string

const (
	BlendNormal  BlendMode = "normal"
	BlendLighten BlendMode = "lighten"
)

// GlowType тип свечения материала
type GlowType string

const (
	GlowNone         GlowType = ""
	GlowSimple       GlowType = "simple"
	GlowLight        GlowType = "light"
	GlowTexture      GlowType = "texture"
	GlowTextureLight GlowType = "texture_light"
	GlowAlpha        GlowType = "alpha"
)

// CatalogMaterial материал каталога объектов
type CatalogMaterial struct {
	Path         string    `yaml:"path"`
	IsSkin       bool      `yaml:"is_skin"`
	AlphaEnabled bool      `yaml:"alpha_enabled"`
	TwoSided     bool      `yaml:"two_sided"`
	AlphaTest    *float32  `yaml:"alpha_test,omitempty"`
	ZTest        bool      `yaml:"z_test"`
	ZWrite       bool      `yaml:"z_write"`
	BlendMode    BlendMode `yaml:"blend_mode,omitempty"`
	Specular     bool      `yaml:"specular"`
	Alpha        float32   `yaml:"alpha"`
	Glow         GlowType  `yaml:"glow,omitempty"`
	GlowColor    Vec3      `yaml:"glow_color,omitempty"`
}

// UnmarshalYAML заполняет значения по умолчанию: z_test/z_write включены, alpha = 1
func (m *CatalogMaterial) UnmarshalYAML(node *yaml.Node) error {
	type plain CatalogMaterial
	raw := plain{ZTest: true, ZWrite: true, Alpha: 1, BlendMode: BlendNormal}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*m = CatalogMaterial(raw)
	return nil
}

// CollisionShape форма коллизии части объекта
type CollisionShape string

const (
	CollisionShapeNone    CollisionShape = ""
	CollisionShapeSphere  CollisionShape = "sphere"
	CollisionShapeAABB    CollisionShape = "aabb"
	CollisionShapeOBB     CollisionShape = "obb"
	CollisionShapePolygon CollisionShape = "polygon"
)

// CollisionFlags битовые флаги участия части в коллизиях
type CollisionFlags uint8

const (
	CollisionNotMoveable CollisionFlags = 1 << iota
	CollisionNotPickable
	CollisionHeightOnly
	CollisionNotCameraCollision
)

var collisionFlagNames = []struct {
	flag CollisionFlags
	name string
}{
	{CollisionNotMoveable, "not_moveable"},
	{CollisionNotPickable, "not_pickable"},
	{CollisionHeightOnly, "height_only"},
	{CollisionNotCameraCollision, "not_camera_collision"},
}

// Has проверяет установлен ли флаг
func (f CollisionFlags) Has(flag CollisionFlags) bool {
	return f&flag != 0
}

// MarshalYAML сериализует флаги списком имён
func (f CollisionFlags) MarshalYAML() (interface{}, error) {
	names := []string{}
	for _, entry := range collisionFlagNames {
		if f.Has(entry.flag) {
			names = append(names, entry.name)
		}
	}
	return names, nil
}

// UnmarshalYAML разбирает список имён флагов
func (f *CollisionFlags) UnmarshalYAML(node *yaml.Node) error {
	var names []string
	if err := node.Decode(&names); err != nil {
		return err
	}

	*f = 0
	for _, name := range names {
		found := false
		for _, entry := range collisionFlagNames {
			if strings.EqualFold(entry.name, name) {
				*f |= entry.flag
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown collision flag %q", name)
		}
	}
	return nil
}

// ObjectPart часть объекта каталога
type ObjectPart struct {
	Mesh           int            `yaml:"mesh"`
	Material       int            `yaml:"material"`
	Position       Vec3           `yaml:"position"`
	Rotation       Quat           `yaml:"rotation"`
	Scale          Vec3           `yaml:"scale"`
	Parent         *int           `yaml:"parent,omitempty"` // индекс родительской части
	CollisionShape CollisionShape `yaml:"collision_shape,omitempty"`
	CollisionFlags CollisionFlags `yaml:"collision_flags,omitempty"`
	Animation      string         `yaml:"animation,omitempty"`
}

// UnmarshalYAML заполняет единичные поворот и масштаб по умолчанию
func (p *ObjectPart) UnmarshalYAML(node *yaml.Node) error {
	type plain ObjectPart
	raw := plain{Rotation: IdentityQuat, Scale: OneScale}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*p = ObjectPart(raw)
	return nil
}

// EffectType тип привязанного эффекта
type EffectType string

const (
	EffectNormal         EffectType = "normal"
	EffectDayNight       EffectType = "day_night"
	EffectLightContainer EffectType = "light_container"
)

// ObjectEffect визуальный эффект, привязанный к объекту или его части
type ObjectEffect struct {
	Effect   int        `yaml:"effect"`
	Type     EffectType `yaml:"type"`
	Part     *int       `yaml:"part,omitempty"`
	Position Vec3       `yaml:"position"`
	Rotation Quat       `yaml:"rotation"`
	Scale    Vec3       `yaml:"scale"`
}

// UnmarshalYAML заполняет значения по умолчанию
func (e *ObjectEffect) UnmarshalYAML(node *yaml.Node) error {
	type plain ObjectEffect
	raw := plain{Type: EffectNormal, Rotation: IdentityQuat, Scale: OneScale}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*e = ObjectEffect(raw)
	return nil
}

// CatalogObject определение объекта каталога
type CatalogObject struct {
	Parts   []ObjectPart   `yaml:"parts"`
	Effects []ObjectEffect `yaml:"effects,omitempty"`
}

// ObjectCatalog каталог объектов (ZSC)
type ObjectCatalog struct {
	Meshes    []string          `yaml:"meshes"`
	Materials []CatalogMaterial `yaml:"materials"`
	Effects   []string          `yaml:"effects"`
	Objects   []CatalogObject   `yaml:"objects"`
}

// Object возвращает объект по индексу
func (c *ObjectCatalog) Object(id int) (*CatalogObject, bool) {
	if c == nil || id < 0 || id >= len(c.Objects) {
		return nil, false
	}
	return &c.Objects[id], true
}

// DecodeObjectCatalog разбирает ZSC и проверяет ссылки частей
func DecodeObjectCatalog(data []byte) (*ObjectCatalog, error) {
	var c ObjectCatalog
	if err := decodeYAML("zsc", data, &c); err != nil {
		return nil, err
	}

	for oi, obj := range c.Objects {
		for pi, part := range obj.Parts {
			if part.Mesh < 0 || part.Mesh >= len(c.Meshes) {
				return nil, invalid("zsc", "object %d part %d: mesh %d out of range", oi, pi, part.Mesh)
			}
			if part.Material < 0 || part.Material >= len(c.Materials) {
				return nil, invalid("zsc", "object %d part %d: material %d out of range", oi, pi, part.Material)
			}
			if part.Parent != nil && (*part.Parent < 0 || *part.Parent >= pi) {
				return nil, invalid("zsc", "object %d part %d: parent %d must precede part", oi, pi, *part.Parent)
			}
		}
		for ei, effect := range obj.Effects {
			if effect.Effect < 0 || effect.Effect >= len(c.Effects) {
				return nil, invalid("zsc", "object %d effect %d: effect %d out of range", oi, ei, effect.Effect)
			}
		}
	}
	return &c, nil
}

// EncodeObjectCatalog сериализует ZSC
func EncodeObjectCatalog(c *ObjectCatalog) ([]byte, error) {
	return yaml.Marshal(c)
}
