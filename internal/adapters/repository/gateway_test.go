package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MidhulKiruthik/Nova-sub000/internal/adapters/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{"nova_partners", "nova_reviews", "nova_fairness_metrics", "nova_change_history"}

// runContract exercises the behavior every gateway must share.
func runContract(t *testing.T, gw repository.Gateway) {
	t.Helper()
	ctx := context.Background()

	t.Run("read of missing keys is empty", func(t *testing.T) {
		got, err := gw.Read(ctx, keys)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("write then read returns the same bytes", func(t *testing.T) {
		require.NoError(t, gw.Write(ctx, map[string][]byte{
			"nova_partners": []byte(`[{"id":"p-1"}]`),
			"nova_reviews":  []byte(`[]`),
		}))

		got, err := gw.Read(ctx, keys)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, `[{"id":"p-1"}]`, string(got["nova_partners"]))
		assert.Equal(t, `[]`, string(got["nova_reviews"]))
	})

	t.Run("write overwrites existing keys", func(t *testing.T) {
		require.NoError(t, gw.Write(ctx, map[string][]byte{"nova_partners": []byte(`[]`)}))

		got, err := gw.Read(ctx, []string{"nova_partners"})
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(got["nova_partners"]))
	})

	t.Run("delete removes keys and ignores missing ones", func(t *testing.T) {
		require.NoError(t, gw.Delete(ctx, keys))

		got, err := gw.Read(ctx, keys)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("empty key is rejected", func(t *testing.T) {
		err := gw.Write(ctx, map[string][]byte{"": []byte("x")})
		assert.ErrorIs(t, err, repository.ErrInvalidKey)
	})
}

func TestMemory(t *testing.T) {
	runContract(t, repository.NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := repository.NewMemory()
	v := []byte("abc")
	require.NoError(t, m.Write(ctx, map[string][]byte{"k": v}))
	v[0] = 'X'

	got, err := m.Read(ctx, []string{"k"})
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got["k"]))

	got["k"][0] = 'Y'
	again, err := m.Read(ctx, []string{"k"})
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again["k"]))
	assert.Equal(t, 1, m.Writes())
}

func TestMemory_FailWith(t *testing.T) {
	ctx := context.Background()
	m := repository.NewMemory()
	m.FailWith(errors.New("disk full"))

	err := m.Write(ctx, map[string][]byte{"k": nil})
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrBackend)
	assert.Contains(t, err.Error(), "disk full")

	_, err = m.Read(ctx, []string{"k"})
	assert.ErrorIs(t, err, repository.ErrBackend)
	assert.ErrorIs(t, m.Delete(ctx, []string{"k"}), repository.ErrBackend)

	m.FailWith(nil)
	assert.NoError(t, m.Write(ctx, map[string][]byte{"k": nil}))
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	gw, err := repository.NewFile(filepath.Join(dir, "data"))
	require.NoError(t, err)
	runContract(t, gw)

	t.Run("no temp files are left behind", func(t *testing.T) {
		require.NoError(t, gw.Write(context.Background(), map[string][]byte{"nova_partners": []byte(`[]`)}))
		entries, err := os.ReadDir(filepath.Join(dir, "data"))
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "nova_partners.json", entries[0].Name())
	})

	t.Run("path traversal is rejected", func(t *testing.T) {
		err := gw.Write(context.Background(), map[string][]byte{"../escape": []byte("x")})
		assert.ErrorIs(t, err, repository.ErrInvalidKey)
	})
}

func TestSQLite(t *testing.T) {
	gw, err := repository.OpenSQLite(filepath.Join(t.TempDir(), "nova.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = gw.Close() })
	runContract(t, gw)
}

func TestSQLite_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nova.db")
	gw, err := repository.OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, gw.Write(context.Background(), map[string][]byte{"nova_partners": []byte(`[1]`)}))
	require.NoError(t, gw.Close())

	gw, err = repository.OpenSQLite(path)
	require.NoError(t, err)
	defer gw.Close()

	got, err := gw.Read(context.Background(), []string{"nova_partners"})
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got["nova_partners"]))
}

func TestBreaker(t *testing.T) {
	ctx := context.Background()
	m := repository.NewMemory()
	b := repository.NewBreaker(m, repository.BackendMemory, repository.BreakerConfig{
		FailureThreshold: 2,
		Delay:            time.Hour,
		SuccessThreshold: 1,
	}, nil)

	require.NoError(t, b.Write(ctx, map[string][]byte{"k": []byte("v")}))
	assert.False(t, b.Open())

	m.FailWith(errors.New("connection refused"))
	for i := 0; i < 2; i++ {
		err := b.Write(ctx, map[string][]byte{"k": []byte("v")})
		assert.ErrorIs(t, err, repository.ErrBackend)
	}
	require.True(t, b.Open())

	m.FailWith(nil)
	err := b.Write(ctx, map[string][]byte{"k": []byte("v2")})
	assert.ErrorIs(t, err, repository.ErrCircuitOpen)
	_, err = b.Read(ctx, []string{"k"})
	assert.ErrorIs(t, err, repository.ErrCircuitOpen)

	got, err := m.Read(ctx, []string{"k"})
	require.NoError(t, err)
	assert.Equal(t, "v", string(got["k"]), "open breaker must not reach the backend")
	assert.Same(t, m, b.Unwrap())
}

func TestBreaker_InvalidKeyDoesNotTrip(t *testing.T) {
	b := repository.NewBreaker(repository.NewMemory(), repository.BackendMemory,
		repository.BreakerConfig{FailureThreshold: 1}, nil)

	err := b.Write(context.Background(), map[string][]byte{"": nil})
	assert.ErrorIs(t, err, repository.ErrInvalidKey)
	assert.False(t, b.Open())
	runContract(t, b)
}
