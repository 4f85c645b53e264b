package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"taskManager/internal/app"
	"taskManager/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, repoType string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Port = "0"
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Repository.Type = repoType
	cfg.Repository.FilePath = filepath.Join(t.TempDir(), "tasks.json")
	cfg.Repository.SQLitePath = filepath.Join(t.TempDir(), "tasks.db")
	cfg.Engine.PersistDebounce = time.Hour
	require.NoError(t, cfg.Validate())
	return cfg
}

// start запускает приложение и возвращает функцию остановки с ошибкой Run
func start(t *testing.T, cfg *config.Config) (string, func() error) {
	t.Helper()
	a := app.New(cfg)
	require.NoError(t, a.Init(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	return "http://" + a.Addr(), func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(10 * time.Second):
			t.Fatal("приложение не остановилось")
			return nil
		}
	}
}

func listTotal(t *testing.T, base string) float64 {
	t.Helper()
	resp, err := http.Get(base + "/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Page struct {
			Total float64 `json:"total"`
		} `json:"page"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Page.Total
}

// TestApp_HealthAndRequestID тестирует сборку маршрутов и middleware
func TestApp_HealthAndRequestID(t *testing.T) {
	base, stop := start(t, testConfig(t, "inmemory"))

	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	assert.NoError(t, stop())
}

// TestApp_PersistsOnShutdown тестирует запись отложенных изменений при остановке
func TestApp_PersistsOnShutdown(t *testing.T) {
	for _, repoType := range []string{"file", "sqlite"} {
		t.Run(repoType, func(t *testing.T) {
			cfg := testConfig(t, repoType)
			base, stop := start(t, cfg)

			resp, err := http.Post(base+"/tasks", "application/json", bytes.NewBufferString(`{"title":"Survive restart"}`))
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			require.NoError(t, stop())

			base, stop = start(t, cfg)
			assert.Equal(t, float64(1), listTotal(t, base))
			assert.NoError(t, stop())
		})
	}
}
