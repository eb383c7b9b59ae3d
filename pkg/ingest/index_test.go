package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAssetIndexGroupsByStemAndTakeConsumes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eevee.png"), []byte{}, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eevee.geo.json"), []byte{}, 0o644))

	idx := BuildAssetIndex(map[string]bool{dir: true})

	path, ok := idx.Take("eevee")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "eevee.png"), path)

	_, ok = idx.Take("eevee")
	assert.False(t, ok, "the single eevee-stem asset should already be consumed")

	path, ok = idx.Take("eevee.geo")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "eevee.geo.json"), path)
}

func TestBuildAssetIndexSkipsMissingDirectories(t *testing.T) {
	idx := BuildAssetIndex(map[string]bool{filepath.Join(t.TempDir(), "nope"): true})
	_, ok := idx.Take("anything")
	assert.False(t, ok)
}

func TestTakeOnUnknownStemReturnsFalse(t *testing.T) {
	idx := BuildAssetIndex(map[string]bool{t.TempDir(): true})
	_, ok := idx.Take("missing")
	assert.False(t, ok)
}

func TestResolveChecksRelativeThenAbsolute(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tex.png"), []byte{}, 0o644))

	path, ok := Resolve(map[string]bool{dir: true}, "tex.png")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "tex.png"), path)

	_, ok = Resolve(map[string]bool{dir: true}, "missing.png")
	assert.False(t, ok)
	_, ok = Resolve(map[string]bool{}, "")
	assert.False(t, ok)

	abs := filepath.Join(dir, "tex.png")
	path, ok = Resolve(map[string]bool{}, abs)
	require.True(t, ok)
	assert.Equal(t, abs, path)
}
