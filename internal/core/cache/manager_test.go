package cache

import (
	"context"
	"testing"
	"time"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, maxSize int) (*CacheManager, *time.Time) {
	t.Helper()
	m := NewManager(&config.CacheConfig{Enabled: true, MaxSize: maxSize, TTL: time.Minute})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	t.Cleanup(func() { m.Close() })
	return m, &now
}

func TestManagerGetSet(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 10)

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
}

func TestManagerExpiry(t *testing.T) {
	ctx := context.Background()
	m, now := newTestManager(t, 10)

	require.NoError(t, m.Set(ctx, "short", []byte("1"), time.Second))
	require.NoError(t, m.Set(ctx, "default", []byte("2"), 0))

	*now = now.Add(2 * time.Second)
	_, err := m.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "default")
	assert.NoError(t, err)

	*now = now.Add(time.Minute)
	_, err = m.Get(ctx, "default")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m, now := newTestManager(t, 2)

	require.NoError(t, m.Set(ctx, "a", []byte("a"), 0))
	*now = now.Add(time.Second)
	require.NoError(t, m.Set(ctx, "b", []byte("b"), 0))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", []byte("c"), 0))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestManagerDeletePrefix(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 10)

	require.NoError(t, m.Set(ctx, "suggestions:u1:x", []byte("1"), 0))
	require.NoError(t, m.Set(ctx, "suggestions:u1:y", []byte("2"), 0))
	require.NoError(t, m.Set(ctx, "suggestions:u2:x", []byte("3"), 0))

	n, err := m.DeletePrefix(ctx, "suggestions:u1:")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = m.Get(ctx, "suggestions:u2:x")
	assert.NoError(t, err)
}

func TestManagerZeroCapacity(t *testing.T) {
	m, _ := newTestManager(t, 0)
	err := m.Set(context.Background(), "k", []byte("v"), 0)
	assert.ErrorIs(t, err, common.ErrCacheFull)
}

func TestKeyIsStableForEquivalentOptions(t *testing.T) {
	type opts struct {
		Cuisines []string
		Strict   bool
	}
	a, err := Key(PrefixSuggestions, "u1", opts{Cuisines: []string{"thai", "italian"}})
	require.NoError(t, err)
	b, err := Key(PrefixSuggestions, "u1", opts{Cuisines: []string{"thai", "italian"}})
	require.NoError(t, err)
	c, err := Key(PrefixSuggestions, "u1", opts{Cuisines: []string{"thai"}, Strict: true})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, UserPrefix(PrefixSuggestions, "u1"))
}
