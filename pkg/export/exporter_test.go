package export

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packforge/combiner/pkg/model"
	"github.com/packforge/combiner/pkg/settings"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestExportPackMovesSelectedFilesAndRepackagesResidue(t *testing.T) {
	root := t.TempDir()
	speciesPath := filepath.Join(root, "data", "cobblemon", "species", "eevee.json")
	writeFile(t, speciesPath, `{"name":"Eevee"}`)
	residuePath := filepath.Join(root, "data", "cobblemon", "lang", "en_us.json")
	writeFile(t, residuePath, `{"unused":"value"}`)

	p := model.NewPack("ModPack", root)
	e := p.EntityOrCreate("eevee")
	e.Selected = true
	e.BaseForm().Species = &model.SourceRef{Path: speciesPath}

	outputRoot := filepath.Join(t.TempDir(), "output")
	require.NoError(t, os.MkdirAll(outputRoot, 0o755))

	cfg := settings.Settings{}
	err := exportPack(p, cfg, Options{OutputRoot: outputRoot})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outputRoot, "data", "cobblemon", "species", "eevee.json"))
	assert.NoError(t, err)

	_, err = os.Stat(residuePath)
	assert.True(t, os.IsNotExist(err), "residue file should have been removed from the pack tree")

	zipPath := filepath.Join(filepath.Dir(outputRoot), "[CE]_ModPack.zip")
	r, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer r.Close()
	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.Contains(t, names, "data/cobblemon/lang/en_us.json")
}

func TestExportPackSkipsBaseAndUnprocessedMods(t *testing.T) {
	root := t.TempDir()
	outputRoot := filepath.Join(t.TempDir(), "output")
	require.NoError(t, os.MkdirAll(outputRoot, 0o755))

	base := model.NewPack("BASE", root)
	base.IsBase = true
	mod := model.NewPack("SomeMod", root)
	mod.IsMod = true

	err := ExportPacks([]*model.Pack{base, mod}, nil, settings.Settings{ProcessMods: false}, Options{OutputRoot: outputRoot})
	require.NoError(t, err)

	entries, err := os.ReadDir(outputRoot)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "pack.mcmeta")
	assert.Contains(t, names, "credits.txt")
}

func TestMoveExportFileRenamesOnCollisionWhenPolicyAllows(t *testing.T) {
	root := t.TempDir()
	srcPath := filepath.Join(root, "data", "cobblemon", "spawn_pool_world", "0133_eevee.json")
	writeFile(t, srcPath, `{"spawns":[]}`)

	outputRoot := t.TempDir()
	existing := filepath.Join(outputRoot, "data", "cobblemon", "spawn_pool_world", "0133_eevee.json")
	writeFile(t, existing, `{"spawns":["already-here"]}`)

	p := model.NewPack("PackA", root)
	cfg := settings.Settings{OpMode: settings.ModeChoose, KeepDuplicateSpawnsOnMove: true}

	err := moveExportFile(p, srcPath, cfg, outputRoot)
	require.NoError(t, err)

	renamed := filepath.Join(outputRoot, "data", "cobblemon", "spawn_pool_world", "0133_eevee-1.json")
	_, err = os.Stat(renamed)
	assert.NoError(t, err)

	_, err = os.Stat(existing)
	assert.NoError(t, err, "original destination file should be left untouched")
}

func TestMoveExportFileDropsOnCollisionWhenPolicyDisallows(t *testing.T) {
	root := t.TempDir()
	srcPath := filepath.Join(root, "assets", "cobblemon", "lang", "en_us.json")
	writeFile(t, srcPath, `{"a":"b"}`)

	outputRoot := t.TempDir()
	existing := filepath.Join(outputRoot, "assets", "cobblemon", "lang", "en_us.json")
	writeFile(t, existing, `{"a":"original"}`)

	p := model.NewPack("PackA", root)
	cfg := settings.Settings{}

	err := moveExportFile(p, srcPath, cfg, outputRoot)
	require.NoError(t, err)

	content, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"original"}`, string(content))
}

func TestExportLangsCombinesAcrossPacks(t *testing.T) {
	p1 := model.NewPack("PackA", t.TempDir())
	p1.Langs = append(p1.Langs, &model.LangEntry{
		File:   "en_us.json",
		Source: map[string]string{"cobblemon.species.eevee.name": "Eevee"},
	})
	p2 := model.NewPack("PackB", t.TempDir())
	p2.Langs = append(p2.Langs, &model.LangEntry{
		File:   "en_us.json",
		Source: map[string]string{"cobblemon.species.pikachu.name": "Pikachu"},
	})

	outputRoot := t.TempDir()
	err := exportLangs([]*model.Pack{p1, p2}, outputRoot)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(outputRoot, "assets", "cobblemon", "lang", "en_us.json"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Eevee")
	assert.Contains(t, string(content), "Pikachu")
}

func TestExportLangsNoOpWhenNoneDeclared(t *testing.T) {
	p := model.NewPack("PackA", t.TempDir())
	outputRoot := t.TempDir()
	err := exportLangs([]*model.Pack{p}, outputRoot)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outputRoot, "assets"))
	assert.True(t, os.IsNotExist(err))
}

func TestExportSoundsJSONFirstPackWinsOnKeyCollision(t *testing.T) {
	pFirst := model.NewPack("PackA", t.TempDir())
	pFirst.EntityOrCreate("eevee")
	pFirst.SoundsJSON = map[string]any{
		"pokemon.eevee.cry": map[string]any{"sounds": []any{"cobblemon:pokemon/eevee/cry"}},
	}

	pSecond := model.NewPack("PackB", t.TempDir())
	pSecond.EntityOrCreate("eevee")
	pSecond.SoundsJSON = map[string]any{
		"pokemon.eevee.cry": map[string]any{"sounds": []any{"other:pokemon/eevee/cry_alt"}},
	}

	outputRoot := t.TempDir()
	err := exportSoundsJSON([]*model.Pack{pFirst, pSecond}, outputRoot)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(outputRoot, "assets", "cobblemon", "sounds.json"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "cobblemon:pokemon/eevee/cry")
	assert.NotContains(t, string(content), "cry_alt")
}

func TestExportSoundsJSONSkipsKeysWithNoMatchingEntity(t *testing.T) {
	p := model.NewPack("PackA", t.TempDir())
	// No "pikachu" entity exists in this pack, so its sounds.json key is
	// orphaned and must not surface in the combined output.
	p.SoundsJSON = map[string]any{
		"pokemon.pikachu.cry": map[string]any{"sounds": []any{"other:pokemon/pikachu/cry"}},
	}

	outputRoot := t.TempDir()
	err := exportSoundsJSON([]*model.Pack{p}, outputRoot)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(outputRoot, "assets", "cobblemon", "sounds.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestSoundKeyEntity(t *testing.T) {
	assert.Equal(t, "eevee", soundKeyEntity("eevee"))
	assert.Equal(t, "eevee", soundKeyEntity("pokemon.eevee.cry"))
	assert.Equal(t, "", soundKeyEntity("weird.shape"))
}

func TestExportCreditsCountsSelectedEntitiesOnly(t *testing.T) {
	p := model.NewPack("PackA", t.TempDir())
	selected := p.EntityOrCreate("eevee")
	selected.Selected = true
	selected.BaseForm().Species = &model.SourceRef{Path: "eevee.json"}
	selected.BaseForm().SpawnPool["spawn.json"] = true
	re := model.NewResolverEntry(0, "resolver.json", selected, p)
	re.Models["eevee.geo.json"] = true
	selected.AddResolver(re)

	unselected := p.EntityOrCreate("pikachu")
	unselected.BaseForm().Species = &model.SourceRef{Path: "pikachu.json"}

	outputRoot := t.TempDir()
	require.NoError(t, os.MkdirAll(outputRoot, 0o755))
	err := exportCredits([]*model.Pack{p}, settings.Settings{}, outputRoot)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(outputRoot, "credits.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "PackA: 1 species, 1 spawns, 1 graphics")
}

func TestExportPackMetaWritesDescriptionAndFormat(t *testing.T) {
	outputRoot := t.TempDir()
	err := exportPackMeta(Options{OutputRoot: outputRoot, PackFormat: 15, Description: "Combined"})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(outputRoot, "pack.mcmeta"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Combined")
	assert.Contains(t, string(content), "15")
}

func TestGenerationLabel(t *testing.T) {
	assert.Equal(t, "gen1", generationLabel(map[string]any{"labels": []any{"legendary", "gen1"}}))
	assert.Equal(t, "custom", generationLabel(map[string]any{"labels": []any{"legendary"}}))
	assert.Equal(t, "custom", generationLabel(map[string]any{}))
}

func TestNextFreeName(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "eevee.json")
	writeFile(t, existing, `{}`)

	next := nextFreeName(existing)
	assert.Equal(t, filepath.Join(dir, "eevee-1.json"), next)
}
