package formats

import "gopkg.in/yaml.v3"

// ObjectPlacement размещение объекта каталога в блоке
type ObjectPlacement struct {
	ObjectID int  `yaml:"object_id"`
	Position Vec3 `yaml:"position"` // сантиметры, Z вверх
	Rotation Quat `yaml:"rotation"`
	Scale    Vec3 `yaml:"scale"`

	EventID      int    `yaml:"event_id,omitempty"`
	WarpID       int    `yaml:"warp_id,omitempty"`
	QuestTrigger string `yaml:"quest_trigger,omitempty"`
	Script       string `yaml:"script,omitempty"`
}

// UnmarshalYAML заполняет единичные поворот и масштаб по умолчанию
func (p *ObjectPlacement) UnmarshalYAML(node *yaml.Node) error {
	type plain ObjectPlacement
	raw := plain{Rotation: IdentityQuat, Scale: OneScale}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*p = ObjectPlacement(raw)
	return nil
}

// WaterPlane прямоугольник водной поверхности (сантиметры)
type WaterPlane struct {
	Start Vec3 `yaml:"start"`
	End   Vec3 `yaml:"end"`
}

// BlockPlacements список размещений блока (IFO)
type BlockPlacements struct {
	Cnst        []ObjectPlacement `yaml:"cnst,omitempty"`
	Deco        []ObjectPlacement `yaml:"deco,omitempty"`
	Event       []ObjectPlacement `yaml:"event,omitempty"`
	Warp        []ObjectPlacement `yaml:"warp,omitempty"`
	WaterSize   float32           `yaml:"water_size,omitempty"`
	WaterPlanes []WaterPlane      `yaml:"water_planes,omitempty"`
}

// Count возвращает общее число размещений
func (b *BlockPlacements) Count() int {
	return len(b.Cnst) + len(b.Deco) + len(b.Event) + len(b.Warp)
}

// DecodeBlockPlacements разбирает IFO
func DecodeBlockPlacements(data []byte) (*BlockPlacements, error) {
	var b BlockPlacements
	if err := decodeYAML("ifo", data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// EncodeBlockPlacements сериализует IFO
func EncodeBlockPlacements(b *BlockPlacements) ([]byte, error) {
	return yaml.Marshal(b)
}
