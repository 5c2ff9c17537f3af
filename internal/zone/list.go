package zone

import (
	"context"
	"fmt"
	"sort"

	"github.com/annel0/zone-streamer/internal/formats"
	"github.com/annel0/zone-streamer/internal/vfs"
)

// CatalogEntry пути к файлам зоны из списка зон
type CatalogEntry struct {
	ID     ID
	Name   string
	Zon    string
	Deco   string
	Cnst   string
	Skybox string
}

// List неизменяемый список известных зон
type List struct {
	entries            map[ID]CatalogEntry
	maxID              ID
	EventObjectCatalog string
	WarpObjectCatalog  string
}

// NewList строит список зон из разобранного документа
func NewList(doc *formats.ZoneList) *List {
	l := &List{
		entries:            make(map[ID]CatalogEntry, len(doc.Zones)),
		EventObjectCatalog: doc.EventObjectCatalog,
		WarpObjectCatalog:  doc.WarpObjectCatalog,
	}
	for _, z := range doc.Zones {
		id := ID(z.ID)
		l.entries[id] = CatalogEntry{
			ID:     id,
			Name:   z.Name,
			Zon:    z.Zon,
			Deco:   z.Deco,
			Cnst:   z.Cnst,
			Skybox: z.Skybox,
		}
		if id > l.maxID {
			l.maxID = id
		}
	}
	return l
}

// LoadList читает и разбирает список зон из репозитория
func LoadList(ctx context.Context, repo vfs.Repository, path string) (*List, error) {
	data, err := repo.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("чтение списка зон %s: %w", path, err)
	}
	doc, err := formats.DecodeZoneList(data)
	if err != nil {
		return nil, fmt.Errorf("разбор списка зон %s: %w", path, err)
	}
	return NewList(doc), nil
}

// Get возвращает запись зоны или ErrInvalidZoneID
func (l *List) Get(id ID) (CatalogEntry, error) {
	entry, ok := l.entries[id]
	if !ok {
		return CatalogEntry{}, fmt.Errorf("%w: %d", ErrInvalidZoneID, int(id))
	}
	return entry, nil
}

// Len число зон в списке
func (l *List) Len() int {
	return len(l.entries)
}

// SlotCount размер таблицы, индексируемой id зоны
func (l *List) SlotCount() int {
	return int(l.maxID) + 1
}

// Entries возвращает записи, отсортированные по id
func (l *List) Entries() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
