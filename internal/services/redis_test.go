package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrSet(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	calls := 0
	fetch := func() ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	}

	got, err := GetOrSet(cache, ctx, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)

	got, err = GetOrSet(cache, ctx, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, 1, calls)

	require.NoError(t, cache.Delete(ctx, "k"))
	_, err = GetOrSet(cache, ctx, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetOrSetDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	cache := newMemoryCache()
	boom := errors.New("boom")

	_, err := GetOrSet(cache, ctx, "k", time.Minute, func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, cache.entries)
}
