package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirAll(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(path, 0o755))
}

func TestProbeDirectAssetsDataLayout(t *testing.T) {
	root := t.TempDir()
	mkdirAll(t, filepath.Join(root, "assets", "cobblemon", "bedrock", "pokemon", "animations"))
	mkdirAll(t, filepath.Join(root, "assets", "cobblemon", "bedrock", "pokemon", "posers"))
	mkdirAll(t, filepath.Join(root, "assets", "cobblemon", "bedrock", "pokemon", "resolvers"))
	mkdirAll(t, filepath.Join(root, "data", "cobblemon", "species"))
	mkdirAll(t, filepath.Join(root, "data", "cobblemon", "spawn_pool_world"))

	loc, isBase, isMod := Probe(root)

	assert.False(t, isBase)
	assert.False(t, isMod)
	assert.Len(t, loc.Animations, 1)
	assert.Len(t, loc.Posers, 1)
	assert.Len(t, loc.Resolvers, 1)
	assert.Len(t, loc.Species, 1)
	assert.Len(t, loc.SpawnPoolWorld, 1)
}

func TestProbeModShapeDataNamespace(t *testing.T) {
	root := t.TempDir()
	mkdirAll(t, filepath.Join(root, "data", "somemod", "species"))
	require.NoError(t, os.WriteFile(filepath.Join(root, "LICENSE"), []byte("MIT"), 0o644))

	loc, isBase, isMod := Probe(root)

	assert.True(t, isMod)
	assert.False(t, isBase)
	assert.Len(t, loc.Species, 1)
}

func TestProbeBasePackPivotsToCommonResources(t *testing.T) {
	root := t.TempDir()
	pivot := filepath.Join(root, "common", "src", "main", "resources")
	mkdirAll(t, filepath.Join(pivot, "data", "cobblemon", "species"))

	_, isBase, _ := Probe(root)
	assert.True(t, isBase)
}

func TestProbeFabricModJSONDeclaringCobblemonIsBase(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "fabric.mod.json"), []byte(`{"id": "cobblemon"}`), 0o644))

	_, isBase, isMod := Probe(root)
	assert.True(t, isBase)
	assert.True(t, isMod)
}
