package inmemory

import (
	"context"
	"slices"
	"sync"

	"taskManager/internal/logger"
	repo "taskManager/internal/repository"
)

type bucket struct {
	values map[string][]byte
	keys   []string
}

// Storage держит записи в памяти процесса; порядок ключей - порядок первой записи
type Storage struct {
	stores map[string]*bucket
	mtx    *sync.RWMutex
	closed bool
}

func New() *Storage {
	return &Storage{
		stores: make(map[string]*bucket),
		mtx:    &sync.RWMutex{},
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.closed {
		return repo.ErrClosed
	}
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) GetAll(ctx context.Context, store string) ([][]byte, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.closed {
		return nil, repo.ErrClosed
	}

	b, ok := s.stores[store]
	if !ok {
		return [][]byte{}, nil
	}
	res := make([][]byte, 0, len(b.keys))
	for _, key := range b.keys {
		res = append(res, slices.Clone(b.values[key]))
	}
	return res, nil
}

func (s *Storage) Get(ctx context.Context, store, key string) ([]byte, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.closed {
		return nil, repo.ErrClosed
	}

	b, ok := s.stores[store]
	if !ok {
		return nil, repo.ErrNotFound
	}
	value, ok := b.values[key]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return slices.Clone(value), nil
}

func (s *Storage) Put(ctx context.Context, store, key string, value []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return repo.ErrClosed
	}

	b, ok := s.stores[store]
	if !ok {
		b = &bucket{values: make(map[string][]byte)}
		s.stores[store] = b
	}
	if _, exists := b.values[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.values[key] = slices.Clone(value)
	return nil
}

func (s *Storage) Clear(ctx context.Context, store string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return repo.ErrClosed
	}
	delete(s.stores, store)
	return nil
}

func (s *Storage) ReplaceAll(ctx context.Context, store string, records []repo.Record) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.closed {
		return repo.ErrClosed
	}

	b := &bucket{values: make(map[string][]byte, len(records))}
	for _, rec := range records {
		if _, exists := b.values[rec.Key]; !exists {
			b.keys = append(b.keys, rec.Key)
		}
		b.values[rec.Key] = slices.Clone(rec.Value)
	}
	s.stores[store] = b
	return nil
}

func (s *Storage) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.closed = true
	return nil
}
