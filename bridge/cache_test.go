package bridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	v := &cachedTemplate{PackageID: "pkg1", ModPath: []string{"Main"}, Entity: "Asset"}
	require.NoError(t, c.Set(ctx, "Main:Asset", v, time.Minute))

	got, err := c.Get(ctx, "Main:Asset")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "pkg1", got.PackageID)
}

func TestMemoryCacheMissReturnsNil(t *testing.T) {
	c := NewMemoryCache()
	got, err := c.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCacheExpiredEntryIsEvicted(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	v := &cachedTemplate{PackageID: "pkg1"}
	require.NoError(t, c.Set(ctx, "k", v, -time.Second))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)

	c.mu.RLock()
	_, stillPresent := c.entries["k"]
	c.mu.RUnlock()
	assert.False(t, stillPresent)
}

func TestMemoryCacheClearRemovesEverything(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "a", &cachedTemplate{}, time.Minute))
	require.NoError(t, c.Set(ctx, "b", &cachedTemplate{}, time.Minute))

	require.NoError(t, c.Clear(ctx))

	gotA, _ := c.Get(ctx, "a")
	gotB, _ := c.Get(ctx, "b")
	assert.Nil(t, gotA)
	assert.Nil(t, gotB)
}
