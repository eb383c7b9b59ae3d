package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packforge/combiner/pkg/model"
)

func TestLoadSoundsBindsSoundsJSONByMove(t *testing.T) {
	root := t.TempDir()
	loc := model.NewLocations(root)
	soundsDir := filepath.Join(root, "sounds", "pokemon")
	loc.Sounds[filepath.Join(root, "sounds")] = true
	require.NoError(t, os.MkdirAll(soundsDir, 0o755))

	loc.SoundsJSON = writeJSON(t, root, "sounds.json", `{
		"pokemon.eevee.cry": {"sounds": ["pokemon/eevee/cry"]}
	}`)

	pack := model.NewPack("P1", root)
	require.NoError(t, LoadSounds(pack, loc, nil))

	e := pack.Entities["eevee"]
	require.NotNil(t, e)
	require.NotNil(t, e.SoundEntry)
	assert.NotEmpty(t, e.SoundEntry.Moves["cry"])
	assert.NotNil(t, pack.SoundsJSON)
}

func TestLoadSoundsSweepsLooseFilesByParentDirectory(t *testing.T) {
	root := t.TempDir()
	loc := model.NewLocations(root)
	eeveeDir := filepath.Join(root, "sounds", "eevee")
	loc.Sounds[filepath.Join(root, "sounds")] = true
	require.NoError(t, os.MkdirAll(eeveeDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(eeveeDir, "eevee_cry.ogg"), []byte{}, 0o644))

	pack := model.NewPack("P1", root)
	require.NoError(t, LoadSounds(pack, loc, nil))

	e := pack.Entities["eevee"]
	require.NotNil(t, e)
	require.NotNil(t, e.SoundEntry)
	assert.NotEmpty(t, e.SoundEntry.Moves["cry"])
}
