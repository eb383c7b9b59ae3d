package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packforge/combiner/pkg/model"
)

func TestLoadFeatureRegistryDefaultsToFlag(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "has_umbrella.json", `{"keys": ["umbrella"], "isAspect": true}`)

	pack := model.NewPack("P1", t.TempDir())
	require.NoError(t, LoadFeatureRegistry(pack, dir, nil))

	f, ok := pack.Features["has_umbrella"]
	require.True(t, ok)
	assert.Equal(t, model.FeatureFlag, f.Kind)
	assert.True(t, f.IsAspect)
	assert.Contains(t, f.Keys, "umbrella")
}

func TestLoadFeatureRegistryChoiceWithAspectFormat(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "variant.json", `{"type": "choice", "aspectFormat": "washed_{{choice}}"}`)

	pack := model.NewPack("P1", t.TempDir())
	require.NoError(t, LoadFeatureRegistry(pack, dir, nil))

	f := pack.Features["variant"]
	require.NotNil(t, f)
	assert.Equal(t, model.FeatureChoice, f.Kind)
	assert.Equal(t, "washed_{{choice}}", f.AspectFormat)
}

func TestFindFeatureMatchesByAlias(t *testing.T) {
	pack := model.NewPack("P1", t.TempDir())
	pack.Features["has_umbrella"] = &model.Feature{Name: "has_umbrella", Keys: []string{"umbrella"}}

	f := FindFeature(pack, "umbrella")
	require.NotNil(t, f)
	assert.Equal(t, "has_umbrella", f.Name)

	assert.Nil(t, FindFeature(pack, "unknown"))
}

func TestLoadFeatureAssignments(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "starters.json", `{"name": "starters", "entities": ["bulbasaur", "charmander"]}`)

	pack := model.NewPack("P1", t.TempDir())
	require.NoError(t, LoadFeatureAssignments(pack, dir, nil))

	fa, ok := pack.FeatureAssigns["starters"]
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"bulbasaur", "charmander"}, fa.Included)
}
