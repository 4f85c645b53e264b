package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	Engine     EngineConfig     `yaml:"engine"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int32         `yaml:"max_connections"`
	MinConnections int32         `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type       string `yaml:"type"` // "sqlite", "postgres", "file" или "inmemory"
	SQLitePath string `yaml:"sqlite_path"`
	FilePath   string `yaml:"file_path"`
}

// EngineConfig - политика движка, а не протокол, поэтому вынесена в конфиг
type EngineConfig struct {
	HistoryLimit         int           `yaml:"history_limit"`
	RecurringHorizonDays int           `yaml:"recurring_horizon_days"`
	DuplicateThreshold   float64       `yaml:"duplicate_threshold"`
	DefaultPageSize      int           `yaml:"default_page_size"`
	TitleLocale          string        `yaml:"title_locale"`
	PersistDebounce      time.Duration `yaml:"persist_debounce"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
		},
		Repository: RepositoryConfig{
			Type:       "sqlite",
			SQLitePath: "tasks.db",
			FilePath:   "tasks.json",
		},
		Engine: EngineConfig{
			HistoryLimit:         50,
			RecurringHorizonDays: 15,
			DuplicateThreshold:   0.5,
			DefaultPageSize:      10,
			TitleLocale:          "en",
			PersistDebounce:      500 * time.Millisecond,
		},
	}
}

// Load читает .env (если есть), затем yaml-файл поверх значений по умолчанию,
// затем переменные окружения. Отсутствующий файл не ошибка.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("ошибка чтения .env: %w", err)
	}

	if env := os.Getenv("TASKS_CONFIG"); env != "" {
		path = env
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	file, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	default:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TASKS_REPOSITORY"); v != "" {
		c.Repository.Type = v
	}
	if v := os.Getenv("TASKS_DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("TASKS_SQLITE_PATH"); v != "" {
		c.Repository.SQLitePath = v
	}
	if v := os.Getenv("TASKS_FILE_PATH"); v != "" {
		c.Repository.FilePath = v
	}
	if v := os.Getenv("TASKS_HTTP_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		if !ok {
			return fmt.Errorf("TASKS_HTTP_ADDR должен быть в формате host:port, получено %q", v)
		}
		c.Server.Host, c.Server.Port = host, port
	}
	if v := os.Getenv("TASKS_DEV"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TASKS_DEV: %w", err)
		}
		c.Logging.Development = dev
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case "sqlite", "postgres", "file", "inmemory":
	default:
		return fmt.Errorf("неизвестный тип репозитория %q", c.Repository.Type)
	}
	if c.Repository.Type == "postgres" && c.Database.URL == "" {
		return errors.New("для postgres нужен database.url или TASKS_DATABASE_URL")
	}
	e := c.Engine
	if e.HistoryLimit < 2 {
		return fmt.Errorf("engine.history_limit должен быть не меньше 2, получено %d", e.HistoryLimit)
	}
	if e.DuplicateThreshold <= 0 || e.DuplicateThreshold > 1 {
		return fmt.Errorf("engine.duplicate_threshold должен быть в (0, 1], получено %v", e.DuplicateThreshold)
	}
	if e.RecurringHorizonDays < 0 || e.DefaultPageSize < 1 || e.PersistDebounce < 0 {
		return errors.New("engine: недопустимые значения горизонта, размера страницы или задержки записи")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func (e EngineConfig) RecurringHorizon() time.Duration {
	return time.Duration(e.RecurringHorizonDays) * 24 * time.Hour
}
