// Package file хранит все хранилища в одном JSON-документе на диске.
// Межпроцессная блокировка - через gofrs/flock на соседнем .lock файле.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"taskManager/internal/logger"
	repo "taskManager/internal/repository"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const lockRetry = 50 * time.Millisecond

var errLocked = errors.New("файл занят другим процессом")

type entry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type document struct {
	Stores map[string][]entry `json:"stores"`
}

type Storage struct {
	path string
	lock *flock.Flock
	mtx  sync.Mutex
}

func New(path string) (*Storage, error) {
	if path == "" {
		return nil, errors.New("не задан путь к файлу хранилища")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("создание каталога %s: %w", dir, err)
		}
	}
	logger.Info("Repository: Файловое хранилище", zap.String("path", path))
	return &Storage{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	_, err := s.read(ctx)
	if err != nil {
		logger.Error("Repository: Файл хранилища недоступен", err)
		return err
	}
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) GetAll(ctx context.Context, store string) ([][]byte, error) {
	doc, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	values := make([][]byte, 0, len(doc.Stores[store]))
	for _, e := range doc.Stores[store] {
		values = append(values, []byte(e.Value))
	}
	return values, nil
}

func (s *Storage) Get(ctx context.Context, store, key string) ([]byte, error) {
	doc, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range doc.Stores[store] {
		if e.Key == key {
			return []byte(e.Value), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Storage) Put(ctx context.Context, store, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("запись %s/%s: значение не является JSON", store, key)
	}
	return s.update(ctx, func(doc *document) {
		entries := doc.Stores[store]
		for i := range entries {
			if entries[i].Key == key {
				entries[i].Value = value
				return
			}
		}
		doc.Stores[store] = append(entries, entry{Key: key, Value: value})
	})
}

func (s *Storage) Clear(ctx context.Context, store string) error {
	return s.update(ctx, func(doc *document) {
		delete(doc.Stores, store)
	})
}

// ReplaceAll переписывает хранилище за одну запись файла
func (s *Storage) ReplaceAll(ctx context.Context, store string, records []repo.Record) error {
	entries := make([]entry, 0, len(records))
	index := make(map[string]int, len(records))
	for _, rec := range records {
		if !json.Valid(rec.Value) {
			return fmt.Errorf("запись %s/%s: значение не является JSON", store, rec.Key)
		}
		if i, ok := index[rec.Key]; ok {
			entries[i].Value = rec.Value
			continue
		}
		index[rec.Key] = len(entries)
		entries = append(entries, entry{Key: rec.Key, Value: rec.Value})
	}
	return s.update(ctx, func(doc *document) {
		doc.Stores[store] = entries
	})
}

func (s *Storage) Close() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.lock.Close()
}

func (s *Storage) read(ctx context.Context) (*document, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	locked, err := s.lock.TryRLockContext(ctx, lockRetry)
	if err != nil || !locked {
		return nil, fmt.Errorf("блокировка %s: %w", s.path, lockErr(err))
	}
	defer func() { _ = s.lock.Unlock() }()

	return s.load()
}

func (s *Storage) update(ctx context.Context, fn func(*document)) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetry)
	if err != nil || !locked {
		return fmt.Errorf("блокировка %s: %w", s.path, lockErr(err))
	}
	defer func() { _ = s.lock.Unlock() }()

	doc, err := s.load()
	if err != nil {
		return err
	}
	fn(doc)
	return s.save(doc)
}

func (s *Storage) load() (*document, error) {
	doc := &document{Stores: map[string][]entry{}}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && len(data) == 0) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("чтение %s: %w", s.path, err)
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("разбор %s: %w", s.path, err)
	}
	if doc.Stores == nil {
		doc.Stores = map[string][]entry{}
	}
	return doc, nil
}

// save пишет во временный файл и переименовывает его поверх основного
func (s *Storage) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация хранилища: %w", err)
	}

	tmp := s.path + ".tmp"
	defer func() { _ = os.Remove(tmp) }()

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		logger.Error("Repository: Не удалось записать временный файл", err, zap.String("path", tmp))
		return fmt.Errorf("запись %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		logger.Error("Repository: Не удалось заменить файл хранилища", err, zap.String("path", s.path))
		return fmt.Errorf("переименование %s: %w", tmp, err)
	}
	return nil
}

func lockErr(err error) error {
	if err != nil {
		return err
	}
	return errLocked
}
