package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedDirectoryDisabledByDefault(t *testing.T) {
	f := newGateFixture(t)

	dir := NewCachedDirectory(f.dir, 0)
	assert.Same(t, f.dir, dir)
}

func TestCachedDirectoryCachesSlugLookups(t *testing.T) {
	f := newGateFixture(t)
	dir := NewCachedDirectory(f.dir, time.Minute)

	first, err := dir.GetBySlug(context.Background(), "acme")
	require.NoError(t, err)

	// Served from cache even after the backing store loses the row.
	delete(f.dir.orgs, "acme")
	second, err := dir.GetBySlug(context.Background(), "ACME")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCachedDirectoryDoesNotCacheNotFound(t *testing.T) {
	f := newGateFixture(t)
	dir := NewCachedDirectory(f.dir, time.Minute)

	_, err := dir.GetBySlug(context.Background(), "ghost")
	require.Error(t, err)

	f.dir.orgs["ghost"] = f.org
	got, err := dir.GetBySlug(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, f.org.ID, got.ID)
}
