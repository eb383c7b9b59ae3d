package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packforge/combiner/pkg/model"
)

func writeJSON(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSpeciesBuildsEntityAndForms(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, dir, "eevee.json", `{
		"name": "Eevee",
		"nationalPokedexNumber": 133,
		"aspects": ["normal"],
		"forms": [{"name": "Shiny", "aspects": ["shiny"]}],
		"evolutions": [{"id": "vaporeon", "result": "vaporeon"}]
	}`)

	pack := model.NewPack("P1", t.TempDir())
	require.NoError(t, LoadSpecies(pack, dir, nil))

	e, ok := pack.Entities["eevee"]
	require.True(t, ok)
	assert.Equal(t, "Eevee", e.DisplayName)
	assert.Equal(t, 133, e.DexID)
	assert.True(t, e.BaseForm().HasAspect("normal"))

	shinyForm, ok := e.Forms["shiny"]
	require.True(t, ok)
	assert.True(t, shinyForm.HasAspect("shiny"))

	require.Len(t, pack.Evolutions, 1)
	assert.Equal(t, "eevee", pack.Evolutions[0].From)
	assert.Equal(t, "vaporeon", pack.Evolutions[0].To)
	assert.False(t, pack.Evolutions[0].IsAddition)
}

func TestLoadSpeciesAdditionsMergesIntoExistingEntity(t *testing.T) {
	speciesDir := t.TempDir()
	writeJSON(t, speciesDir, "eevee.json", `{"name": "Eevee", "nationalPokedexNumber": 133}`)

	additionsDir := t.TempDir()
	writeJSON(t, additionsDir, "eevee_add.json", `{
		"target": "cobblemon:eevee",
		"features": ["has_umbrella"],
		"forms": [{"name": "Hisuian"}],
		"evolutions": [{"id": "jolteon", "result": "jolteon"}]
	}`)

	pack := model.NewPack("P1", t.TempDir())
	require.NoError(t, LoadSpecies(pack, speciesDir, nil))
	require.NoError(t, LoadSpeciesAdditions(pack, additionsDir, nil))

	e := pack.Entities["eevee"]
	require.NotNil(t, e)
	assert.True(t, e.FeatureNames["has_umbrella"])
	assert.NotNil(t, e.BaseForm().SpeciesAdditions)

	hisuian, ok := e.Forms["hisuian"]
	require.True(t, ok)
	assert.NotNil(t, hisuian.SpeciesAdditions)

	var addedEvo *model.EvolutionEdge
	for _, ev := range pack.Evolutions {
		if ev.To == "jolteon" {
			addedEvo = ev
		}
	}
	require.NotNil(t, addedEvo)
	assert.True(t, addedEvo.IsAddition)
}

func TestLoadSpeciesAdditionsSynthesizesUnknownEntity(t *testing.T) {
	additionsDir := t.TempDir()
	writeJSON(t, additionsDir, "ghost.json", `{"target": "ghostmon"}`)

	pack := model.NewPack("P1", t.TempDir())
	require.NoError(t, LoadSpeciesAdditions(pack, additionsDir, nil))

	e, ok := pack.Entities["ghostmon"]
	require.True(t, ok)
	assert.Equal(t, -1, e.DexID)
}
