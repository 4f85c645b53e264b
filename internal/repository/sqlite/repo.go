package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"taskManager/internal/logger"
	repo "taskManager/internal/repository"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS records (
	store TEXT    NOT NULL,
	key   TEXT    NOT NULL,
	seq   INTEGER NOT NULL,
	value BLOB    NOT NULL,
	PRIMARY KEY (store, key)
)`

type Storage struct {
	db *sql.DB
}

// DefaultPath - файл базы в XDG_DATA_HOME (или ~/.local/share)
func DefaultPath() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	dir := filepath.Join(dataHome, "taskmanager")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "tasks.db"), nil
}

func New(ctx context.Context, path string) (*Storage, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, fmt.Errorf("определение пути к базе: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("Repository: Не удалось открыть SQLite", err, zap.String("path", path))
		return nil, fmt.Errorf("открытие базы: %w", err)
	}
	// одно соединение: база :memory: живёт в рамках соединения
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			logger.Error("Repository: Ошибка инициализации SQLite", err)
			return nil, fmt.Errorf("инициализация схемы: %w", err)
		}
	}

	logger.Info("Repository: SQLite открыт", zap.String("path", path))
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	logger.Info("Repository: Закрытие SQLite")
	return s.db.Close()
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) GetAll(ctx context.Context, store string) ([][]byte, error) {
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, `SELECT value FROM records WHERE store = ? ORDER BY seq`, store)
	if err != nil {
		logger.Error("Repository: Не удалось получить записи", err, zap.String("store", store))
		return nil, fmt.Errorf("получение записей: %w", err)
	}
	defer rows.Close()

	values := [][]byte{}
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("сканирование записи: %w", err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow(start, "GetAll")
	return values, nil
}

func (s *Storage) Get(ctx context.Context, store, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM records WHERE store = ? AND key = ?`, store, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("получение записи: %w", err)
	}
	return value, nil
}

func (s *Storage) Put(ctx context.Context, store, key string, value []byte) error {
	start := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (store, key, seq, value)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records WHERE store = ?), ?)
		ON CONFLICT (store, key) DO UPDATE SET value = excluded.value`,
		store, key, store, value)
	if err != nil {
		logger.Error("Repository: Не удалось записать", err, zap.String("store", store), zap.String("key", key))
		return fmt.Errorf("запись %s/%s: %w", store, key, err)
	}

	warnIfSlow(start, "Put")
	return nil
}

func (s *Storage) Clear(ctx context.Context, store string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE store = ?`, store); err != nil {
		logger.Error("Repository: Не удалось очистить хранилище", err, zap.String("store", store))
		return fmt.Errorf("очистка %s: %w", store, err)
	}
	return nil
}

// ReplaceAll заменяет содержимое хранилища в одной транзакции
func (s *Storage) ReplaceAll(ctx context.Context, store string, records []repo.Record) (err error) {
	start := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("начало транзакции: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM records WHERE store = ?`, store); err != nil {
		return fmt.Errorf("очистка %s: %w", store, err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (store, key, seq, value) VALUES (?, ?, ?, ?)
		ON CONFLICT (store, key) DO UPDATE SET value = excluded.value`)
	if err != nil {
		return fmt.Errorf("подготовка вставки: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err = stmt.ExecContext(ctx, store, rec.Key, i+1, rec.Value); err != nil {
			return fmt.Errorf("запись %s/%s: %w", store, rec.Key, err)
		}
	}
	if err = tx.Commit(); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return fmt.Errorf("фиксация транзакции: %w", err)
	}

	warnIfSlow(start, "ReplaceAll", zap.Int("records", len(records)))
	return nil
}

func warnIfSlow(start time.Time, op string, fields ...zap.Field) {
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		fields = append(fields, zap.String("op", op), zap.Duration("ms", elapsed))
		logger.Warn("Repository: Медленная операция", fields...)
	}
}
