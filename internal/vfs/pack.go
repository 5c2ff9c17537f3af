package vfs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

const packKeyPrefix = "file:"

// PackRepository хранит файлы ассетов в badger-архиве, значения сжаты zstd.
type PackRepository struct {
	db      *badger.DB
	mutex   sync.RWMutex
	isReady bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// OpenPack открывает (или создаёт) архив в каталоге path
func OpenPack(path string) (*PackRepository, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания zstd decoder: %w", err)
	}

	return &PackRepository{
		db:      db,
		isReady: true,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Close закрывает архив
func (p *PackRepository) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.isReady {
		return nil
	}
	p.isReady = false
	p.decoder.Close()
	return p.db.Close()
}

// Write сжимает и сохраняет файл
func (p *PackRepository) Write(_ context.Context, path string, data []byte) error {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if !p.isReady {
		return fmt.Errorf("архив закрыт")
	}

	compressed := p.encoder.EncodeAll(data, nil)
	key := []byte(packKeyPrefix + NormalizePath(path))

	if err := p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, compressed)
	}); err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// Read читает и распаковывает файл
func (p *PackRepository) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if !p.isReady {
		return nil, fmt.Errorf("архив закрыт")
	}

	var compressed []byte
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(packKeyPrefix + NormalizePath(path)))
		if err != nil {
			return err
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	data, err := p.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки %s: %w", path, err)
	}
	return data, nil
}

// Count возвращает число файлов в архиве
func (p *PackRepository) Count() (int, error) {
	count := 0
	err := p.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(packKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}
