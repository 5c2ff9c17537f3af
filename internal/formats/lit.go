package formats

import "gopkg.in/yaml.v3"

// LightmapPart запись лайтмапа для одной части объекта
type LightmapPart struct {
	Name        string `yaml:"name"`
	PartIndex   *int   `yaml:"part_index,omitempty"`
	Filename    string `yaml:"filename"`
	AtlasIndex  int    `yaml:"atlas_index"`
	PartsPerRow int    `yaml:"parts_per_row"`
}

// LightmapObject лайтмапы одного размещения. ID = индекс размещения в IFO + 1.
type LightmapObject struct {
	ID    int            `yaml:"id"`
	Parts []LightmapPart `yaml:"parts"`
}

// Lightmap набор лайтмапов блока (LIT)
type Lightmap struct {
	Objects []LightmapObject `yaml:"objects"`
}

// FindPart ищет запись для части partIndex размещения с индексом placementIndex.
// Сначала по явному part_index, затем по позиции в списке частей.
func (l *Lightmap) FindPart(placementIndex, partIndex int) (*LightmapPart, bool) {
	if l == nil {
		return nil, false
	}

	for oi := range l.Objects {
		obj := &l.Objects[oi]
		if obj.ID != placementIndex+1 {
			continue
		}

		for pi := range obj.Parts {
			if p := obj.Parts[pi].PartIndex; p != nil && *p == partIndex {
				return &obj.Parts[pi], true
			}
		}

		if partIndex >= 0 && partIndex < len(obj.Parts) && obj.Parts[partIndex].PartIndex == nil {
			return &obj.Parts[partIndex], true
		}
		return nil, false
	}
	return nil, false
}

// DecodeLightmap разбирает LIT
func DecodeLightmap(data []byte) (*Lightmap, error) {
	var l Lightmap
	if err := decodeYAML("lit", data, &l); err != nil {
		return nil, err
	}
	for oi := range l.Objects {
		for pi := range l.Objects[oi].Parts {
			if l.Objects[oi].Parts[pi].PartsPerRow <= 0 {
				l.Objects[oi].Parts[pi].PartsPerRow = 1
			}
		}
	}
	return &l, nil
}

// EncodeLightmap сериализует LIT
func EncodeLightmap(l *Lightmap) ([]byte, error) {
	return yaml.Marshal(l)
}
