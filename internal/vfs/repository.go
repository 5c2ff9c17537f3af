// Package vfs предоставляет доступ к файлам ассетов зон из разных источников:
// каталога на диске, badger-архива и памяти процесса.
package vfs

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotFound возвращается, когда файла нет в репозитории.
// Для необязательных файлов зоны это штатная ситуация.
var ErrNotFound = errors.New("vfs: file not found")

// Repository читает файлы ассетов по виртуальному пути.
// Реализации обязаны быть безопасными для конкурентного использования.
type Repository interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

// Writer принимает файлы ассетов (генератор данных, упаковка архива)
type Writer interface {
	Write(ctx context.Context, path string, data []byte) error
}

// IsNotFound сообщает, что ошибка означает отсутствие файла
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// NormalizePath приводит путь к каноническому виду: прямые слэши,
// верхний регистр, без ведущего слэша. Исходные данные зон используют
// пути в стиле Windows без учёта регистра.
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.ToUpper(strings.TrimPrefix(p, "/"))
}

// Dir возвращает каталог нормализованного пути
func Dir(p string) string {
	d := path.Dir(NormalizePath(p))
	if d == "." {
		return ""
	}
	return d
}

// Join склеивает элементы пути и нормализует результат
func Join(elem ...string) string {
	for i, e := range elem {
		elem[i] = strings.ReplaceAll(e, "\\", "/")
	}
	return NormalizePath(path.Join(elem...))
}
