package storage

import (
	"context"
	"testing"
	"time"

	"dramaboxcore/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundtrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v1", 0))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	require.NoError(t, m.Set(ctx, "k", "v2", 0))
	v, _, _ = m.Get(ctx, "k")
	assert.Equal(t, "v2", v)

	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryTTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "k", "v", 10*time.Millisecond))
	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
	assert.False(t, m.Has("k"), "expired entry should be removed on read")
}

func TestGormStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSqlite("file::memory:?cache=shared", "drbx_", logger.NewNop())
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "k", "v1", 0))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", v)

	// 主键冲突走覆盖写
	require.NoError(t, s.Set(ctx, "k", "v2", time.Hour))
	v, ok, _ = s.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Delete(ctx, "k"))
	_, ok, _ = s.Get(ctx, "k")
	assert.False(t, ok)
}

func TestGormStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSqlite("file:ttltest?mode=memory&cache=shared", "drbx_", nil)
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "k", "v", time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
