package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/logger"
	repo "taskManager/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	store VARCHAR(64)  NOT NULL,
	key   VARCHAR(255) NOT NULL,
	seq   BIGINT       NOT NULL,
	value BYTEA        NOT NULL,
	PRIMARY KEY (store, key)
);
CREATE INDEX IF NOT EXISTS idx_records_store_seq ON records(store, seq);
`

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, db config.DatabaseConfig) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(db.URL)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnIdleTime = time.Minute * 5
	if db.MaxConnections > 0 {
		poolConfig.MaxConns = db.MaxConnections
	}
	if db.MinConnections > 0 {
		poolConfig.MinConns = db.MinConnections
	}
	if db.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = db.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

// Migrate создаёт таблицу records, если её нет
func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: Применение миграций")
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		logger.Error("Repository: Не удалось применить миграции", err)
		return fmt.Errorf("миграции: %w", err)
	}
	return nil
}

func (s *Storage) Close() error {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
	return nil
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) GetAll(ctx context.Context, store string) ([][]byte, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, `SELECT value FROM records WHERE store = $1 ORDER BY seq`, store)
	if err != nil {
		logger.Error("Repository: Не удалось получить записи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение записей: %w", err)
	}

	values, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*50+time.Millisecond*time.Duration(len(values)) {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	if values == nil {
		values = [][]byte{}
	}
	return values, nil
}

func (s *Storage) Get(ctx context.Context, store, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM records WHERE store = $1 AND key = $2`, store, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		logger.Error("Repository: Не удалось получить запись", err, zap.String("key", key))
		return nil, fmt.Errorf("получение записи: %w", err)
	}
	return value, nil
}

func (s *Storage) Put(ctx context.Context, store, key string, value []byte) error {
	start := time.Now()

	query := `INSERT INTO records (store, key, seq, value)
				VALUES ($1, $2, (SELECT COALESCE(MAX(seq), 0) + 1 FROM records WHERE store = $1), $3)
				ON CONFLICT (store, key) DO UPDATE SET value = EXCLUDED.value`

	if _, err := s.pool.Exec(ctx, query, store, key, value); err != nil {
		logger.Error("Repository: Не удалось записать", err, zap.String("key", key), zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("запись %s/%s: %w", store, key, err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) Clear(ctx context.Context, store string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM records WHERE store = $1`, store); err != nil {
		logger.Error("Repository: Не удалось очистить хранилище", err, zap.String("store", store))
		return fmt.Errorf("очистка %s: %w", store, err)
	}
	return nil
}

// ReplaceAll - удаление и COPY в одной транзакции
func (s *Storage) ReplaceAll(ctx context.Context, store string, records []repo.Record) error {
	start := time.Now()

	rows := make([][]any, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		if seen[rec.Key] {
			continue
		}
		seen[rec.Key] = true
		rows = append(rows, []any{store, rec.Key, int64(i + 1), rec.Value})
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM records WHERE store = $1`, store); err != nil {
			return fmt.Errorf("очистка %s: %w", store, err)
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"records"},
			[]string{"store", "key", "seq", "value"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return fmt.Errorf("копирование записей: %w", err)
		}
		return nil
	})
	if err != nil {
		logger.Error("Repository: Не удалось заменить хранилище", err, zap.String("store", store))
		return err
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Int("records", len(rows)), zap.Duration("ms", time.Since(start)))
	}
	return nil
}
