package formats

import "gopkg.in/yaml.v3"

// ZoneListEntry запись списка зон
type ZoneListEntry struct {
	ID     int    `yaml:"id"`
	Name   string `yaml:"name"`
	Zon    string `yaml:"zon"`
	Deco   string `yaml:"deco"`
	Cnst   string `yaml:"cnst"`
	Skybox string `yaml:"skybox,omitempty"`
}

// ZoneList список зон с общими каталогами специальных объектов
type ZoneList struct {
	EventObjectCatalog string          `yaml:"event_object_catalog,omitempty"`
	WarpObjectCatalog  string          `yaml:"warp_object_catalog,omitempty"`
	Zones              []ZoneListEntry `yaml:"zones"`
}

// DecodeZoneList разбирает список зон; id должны быть положительными и уникальными
func DecodeZoneList(data []byte) (*ZoneList, error) {
	var l ZoneList
	if err := decodeYAML("zone list", data, &l); err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(l.Zones))
	for _, z := range l.Zones {
		if z.ID <= 0 {
			return nil, invalid("zone list", "zone %q: id must be positive", z.Name)
		}
		if seen[z.ID] {
			return nil, invalid("zone list", "duplicate zone id %d", z.ID)
		}
		if z.Zon == "" {
			return nil, invalid("zone list", "zone %d: zon path is empty", z.ID)
		}
		seen[z.ID] = true
	}
	return &l, nil
}

// EncodeZoneList сериализует список зон
func EncodeZoneList(l *ZoneList) ([]byte, error) {
	return yaml.Marshal(l)
}
