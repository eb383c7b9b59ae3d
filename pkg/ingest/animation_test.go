package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packforge/combiner/pkg/model"
)

func TestBuildAnimationIndexSplitsKeys(t *testing.T) {
	root := t.TempDir()
	writeJSON(t, root, "eevee.animation.json", `{
		"animations": {
			"cry": "animation.eevee.cry",
			"animation.eevee.ground_walk": "animation.eevee.ground_walk"
		}
	}`)

	idx, err := BuildAnimationIndex(map[string]bool{root: true}, nil)
	require.NoError(t, err)

	_, ok := idx.Present["__null__"]["cry"]
	assert.True(t, ok)
	_, ok = idx.Present["eevee"]["ground_walk"]
	assert.True(t, ok)
	assert.True(t, idx.Types["ground_walk"])
}

func TestLinkAnimationsResolvesBedrockReference(t *testing.T) {
	root := t.TempDir()
	animDir := filepath.Join(root, "animations")
	writeJSON(t, animDir, "eevee.animation.json", `{
		"animations": {"animation.eevee.ground_idle": "animation.eevee.ground_idle"}
	}`)

	posersDir := filepath.Join(root, "posers")
	poserPath := writeJSON(t, posersDir, "eevee.json", `{
		"poses": {
			"standing": {
				"animations": ["q.bedrock('eevee', 'ground_idle')"]
			}
		}
	}`)

	idx, err := BuildAnimationIndex(map[string]bool{animDir: true}, nil)
	require.NoError(t, err)

	pack := model.NewPack("P1", root)
	e := pack.EntityOrCreate("eevee")
	re := model.NewResolverEntry(0, "", e, pack)
	re.Posers[poserPath] = true
	e.AddResolver(re)

	LinkAnimations(pack, idx)

	assert.True(t, re.RequestedAnimations["eevee"]["ground_idle"])
	assert.NotEmpty(t, re.Animations)
}

func TestLinkAnimationsOrphanSweepBindsByAspect(t *testing.T) {
	root := t.TempDir()
	animDir := filepath.Join(root, "animations")
	writeJSON(t, animDir, "tauros.animation.json", `{
		"animations": {"animation.tauros_combat.ground_walk": "animation.tauros_combat.ground_walk"}
	}`)

	idx, err := BuildAnimationIndex(map[string]bool{animDir: true}, nil)
	require.NoError(t, err)

	pack := model.NewPack("P1", root)
	e := pack.EntityOrCreate("tauros")
	re := model.NewResolverEntry(5, "", e, pack)
	re.Aspects["combat"] = true
	e.AddResolver(re)

	LinkAnimations(pack, idx)

	assert.NotEmpty(t, re.Animations)
}
