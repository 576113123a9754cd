package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreGetSet(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	s, err := NewRedisStore(ctx, "redis://"+srv.Addr(), "swapper_")
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.Get(ctx, "last_height")
	require.NoError(t, err)
	assert.False(t, found, "missing key should not be reported as an error")

	require.NoError(t, s.Set(ctx, "last_height", "16"))

	value, found, err := s.Get(ctx, "last_height")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "16", value)

	raw, err := srv.Get("swapper_last_height")
	require.NoError(t, err)
	assert.Equal(t, "16", raw, "keys should be written with the configured prefix")
}

func TestRedisStoreUnavailable(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	s, err := NewRedisStore(ctx, "redis://"+srv.Addr(), "swapper_")
	require.NoError(t, err)
	defer s.Close()

	srv.Close()

	_, _, err = s.Get(ctx, "last_height")
	assert.Error(t, err)
	assert.Error(t, s.Set(ctx, "last_height", "1"))
	assert.Error(t, s.Ping(ctx))
}

func TestNewRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "http://not-redis", "")
	assert.Error(t, err)
}

func TestOpenByScheme(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, "memory://", "swapper_")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	srv := miniredis.RunT(t)
	s, err = Open(ctx, "redis://"+srv.Addr()+"/0", "swapper_")
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, "mongodb://localhost", "swapper_")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store scheme")
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("p_")

	_, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "k", "v"))
	value, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", value)
	assert.NoError(t, s.Ping(ctx))
}
