// Package repository описывает внешнее хранилище ключ-значение, в которое
// движок зеркалирует коллекцию задач и настройки.
package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("запись не найдена")
	ErrClosed   = errors.New("хранилище закрыто")
)

const (
	StoreTasks    = "tasks"
	StoreSettings = "settings"
)

type Record struct {
	Key   string
	Value []byte
}

// Repository - минимальный контракт: получить всё, положить запись, очистить хранилище.
// GetAll возвращает значения в порядке первой записи ключа.
type Repository interface {
	GetAll(ctx context.Context, store string) ([][]byte, error)
	Get(ctx context.Context, store, key string) ([]byte, error)
	Put(ctx context.Context, store, key string, value []byte) error
	Clear(ctx context.Context, store string) error
	HealthCheck(ctx context.Context) error
	Close() error
}

// Replacer реализуют хранилища, которые умеют атомарно заменить содержимое
// хранилища; остальные получают Clear + Put.
type Replacer interface {
	ReplaceAll(ctx context.Context, store string, records []Record) error
}

// ReplaceAll очищает хранилище и заполняет его заново, атомарно если backend это умеет.
func ReplaceAll(ctx context.Context, repo Repository, store string, records []Record) error {
	if r, ok := repo.(Replacer); ok {
		return r.ReplaceAll(ctx, store, records)
	}
	if err := repo.Clear(ctx, store); err != nil {
		return err
	}
	for _, rec := range records {
		if err := repo.Put(ctx, store, rec.Key, rec.Value); err != nil {
			return err
		}
	}
	return nil
}
