package vfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DirRepository читает файлы из каталога на диске. Поиск нечувствителен
// к регистру: при первом обращении строится индекс каталога.
type DirRepository struct {
	root string

	indexOnce sync.Once
	index     map[string]string
	indexErr  error
}

// NewDirRepository создаёт репозиторий поверх каталога root
func NewDirRepository(root string) (*DirRepository, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть каталог ассетов %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s не является каталогом", root)
	}
	return &DirRepository{root: root}, nil
}

func (d *DirRepository) buildIndex() {
	d.index = make(map[string]string)
	d.indexErr = filepath.WalkDir(d.root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		d.index[NormalizePath(filepath.ToSlash(rel))] = p
		return nil
	})
}

// Read читает файл по виртуальному пути
func (d *DirRepository) Read(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := NormalizePath(p)

	// Быстрый путь: файл лежит ровно по нормализованному пути
	direct := filepath.Join(d.root, filepath.FromSlash(key))
	if data, err := os.ReadFile(direct); err == nil {
		return data, nil
	}

	d.indexOnce.Do(d.buildIndex)
	if d.indexErr != nil {
		return nil, fmt.Errorf("индексация %s: %w", d.root, d.indexErr)
	}

	full, ok := d.index[key]
	if !ok {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Write записывает файл в каталог, используя нормализованный путь
func (d *DirRepository) Write(_ context.Context, p string, data []byte) error {
	key := NormalizePath(p)
	if strings.Contains(key, "..") {
		return fmt.Errorf("недопустимый путь %q", p)
	}

	full := filepath.Join(d.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0644)
}
