// Package repotest - общий набор проверок контракта repository.Repository,
// который прогоняет каждое хранилище.
package repotest

import (
	"context"
	"fmt"
	"testing"

	repo "taskManager/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run проверяет контракт на свежем хранилище, которое возвращает newRepo
func Run(t *testing.T, newRepo func(t *testing.T) repo.Repository) {
	t.Helper()

	t.Run("PutGetAllKeepsOrder", func(t *testing.T) {
		ctx := context.Background()
		r := newRepo(t)

		require.NoError(t, r.Put(ctx, repo.StoreTasks, "b", []byte(`{"id":"b"}`)))
		require.NoError(t, r.Put(ctx, repo.StoreTasks, "a", []byte(`{"id":"a"}`)))
		require.NoError(t, r.Put(ctx, repo.StoreTasks, "b", []byte(`{"id":"b","v":2}`)))

		values, err := r.GetAll(ctx, repo.StoreTasks)
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.JSONEq(t, `{"id":"b","v":2}`, string(values[0]))
		assert.JSONEq(t, `{"id":"a"}`, string(values[1]))
	})

	t.Run("StoresAreIsolated", func(t *testing.T) {
		ctx := context.Background()
		r := newRepo(t)

		require.NoError(t, r.Put(ctx, repo.StoreTasks, "x", []byte(`{"n":1}`)))
		require.NoError(t, r.Put(ctx, repo.StoreSettings, "x", []byte(`{"n":2}`)))
		require.NoError(t, r.Clear(ctx, repo.StoreTasks))

		tasks, err := r.GetAll(ctx, repo.StoreTasks)
		require.NoError(t, err)
		assert.Empty(t, tasks)

		value, err := r.Get(ctx, repo.StoreSettings, "x")
		require.NoError(t, err)
		assert.JSONEq(t, `{"n":2}`, string(value))
	})

	t.Run("GetMissing", func(t *testing.T) {
		ctx := context.Background()
		r := newRepo(t)

		_, err := r.Get(ctx, repo.StoreSettings, "app-settings")
		assert.ErrorIs(t, err, repo.ErrNotFound)

		values, err := r.GetAll(ctx, "never-written")
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("ReplaceAll", func(t *testing.T) {
		ctx := context.Background()
		r := newRepo(t)

		require.NoError(t, r.Put(ctx, repo.StoreTasks, "old", []byte(`{"id":"old"}`)))

		records := make([]repo.Record, 0, 5)
		for i := range 5 {
			key := fmt.Sprintf("k%d", 4-i)
			records = append(records, repo.Record{Key: key, Value: []byte(fmt.Sprintf(`{"id":%q}`, key))})
		}
		require.NoError(t, repo.ReplaceAll(ctx, r, repo.StoreTasks, records))

		values, err := r.GetAll(ctx, repo.StoreTasks)
		require.NoError(t, err)
		require.Len(t, values, 5)
		assert.JSONEq(t, `{"id":"k4"}`, string(values[0]))
		assert.JSONEq(t, `{"id":"k0"}`, string(values[4]))
	})

	t.Run("HealthCheck", func(t *testing.T) {
		r := newRepo(t)
		assert.NoError(t, r.HealthCheck(context.Background()))
	})
}
