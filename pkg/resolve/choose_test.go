package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packforge/combiner/pkg/model"
	"github.com/packforge/combiner/pkg/settings"
)

func packWithEntity(t *testing.T, displayName string, isBase bool) (*model.Pack, *model.Entity) {
	t.Helper()
	p := model.NewPack(displayName, t.TempDir())
	p.IsBase = isBase
	e := p.EntityOrCreate("eevee")
	return p, e
}

// attachCompleteGraphics gives e a graphically complete resolver: model,
// animation, texture, and shiny (poser optional per graphicallyComplete).
func attachCompleteGraphics(e *model.Entity, p *model.Pack) *model.ResolverEntry {
	re := model.NewResolverEntry(0, "resolver.json", e, p)
	re.Models["model.geo.json"] = true
	re.Animations["anim.json"] = true
	re.Textures["tex.png"] = true
	re.HasShiny = true
	e.AddResolver(re)
	e.BaseForm().ResolverAssignments[re.Order] = true
	return re
}

func chooseCfg() settings.Settings {
	cfg := settings.Default()
	cfg.OpMode = settings.ModeChoose
	return cfg
}

func TestChooseSingletonAutoSelects(t *testing.T) {
	p, e := packWithEntity(t, "OnlyPack", false)

	err := Choose([]*model.Pack{p}, chooseCfg(), NewScriptedChooser())
	require.NoError(t, err)
	assert.True(t, e.Selected)
}

func TestChooseBaseLacksSpawnOtherHasSpawnAndGraphics(t *testing.T) {
	base, baseE := packWithEntity(t, "BASE", true)
	other, otherE := packWithEntity(t, "ModPack", false)

	otherE.BaseForm().SpawnPool["spawn.json"] = true
	re := attachCompleteGraphics(otherE, other)
	re.Posers["poser.json"] = true

	err := Choose([]*model.Pack{base, other}, chooseCfg(), NewScriptedChooser())
	require.NoError(t, err)

	assert.False(t, baseE.Selected)
	assert.True(t, otherE.Selected)
}

func TestChooseResidualPromptsChooser(t *testing.T) {
	a, aE := packWithEntity(t, "PackA", false)
	b, bE := packWithEntity(t, "PackB", false)

	// Neither pack is base/mod and no rule matches two empty stamps.
	chooser := NewScriptedChooser("PackB")
	err := Choose([]*model.Pack{a, b}, chooseCfg(), chooser)
	require.NoError(t, err)

	assert.False(t, aE.Selected)
	assert.True(t, bE.Selected)
}

func TestChooseOnlyModsIgnoreKeepsNeitherSelected(t *testing.T) {
	a, aE := packWithEntity(t, "ModA", false)
	a.IsMod = true
	b, bE := packWithEntity(t, "ModB", false)
	b.IsMod = true

	cfg := chooseCfg()
	cfg.ProcessMods = false

	chooser := NewScriptedChooser("never-called")
	err := Choose([]*model.Pack{a, b}, cfg, chooser)
	require.NoError(t, err)

	assert.False(t, aE.Selected)
	assert.False(t, bE.Selected)
	assert.Equal(t, 0, chooser.next, "ignore rule must fire before any prompt")
}

func TestChooseRuleG2PicksGraphicallyCompletePackOverBareMod(t *testing.T) {
	mod, modE := packWithEntity(t, "SomeMod", false)
	mod.IsMod = true
	modE.BaseForm().SpawnPool["spawn.json"] = true

	plain, plainE := packWithEntity(t, "Remodel", false)
	attachCompleteGraphics(plainE, plain)

	err := Choose([]*model.Pack{mod, plain}, chooseCfg(), NewScriptedChooser())
	require.NoError(t, err)

	assert.False(t, modE.Selected)
	assert.True(t, plainE.Selected)
}

func TestChooseRuleG3RPicksSpeciesOnlyPackOverCompleteMod(t *testing.T) {
	mod, modE := packWithEntity(t, "SomeMod", false)
	mod.IsMod = true
	modE.BaseForm().SpawnPool["spawn.json"] = true
	modE.BaseForm().Species = &model.SourceRef{Path: "eevee.json"}
	attachCompleteGraphics(modE, mod)

	plain, plainE := packWithEntity(t, "SpeciesPack", false)
	plainE.BaseForm().Species = &model.SourceRef{Path: "eevee.json"}

	err := Choose([]*model.Pack{mod, plain}, chooseCfg(), NewScriptedChooser())
	require.NoError(t, err)

	assert.False(t, modE.Selected, "a species-only pack beats even a complete mod")
	assert.True(t, plainE.Selected)
}

func TestChooseRuleG5RPicksRequestedPackOverCompleteMod(t *testing.T) {
	mod, modE := packWithEntity(t, "SomeMod", false)
	mod.IsMod = true
	modE.BaseForm().SpawnPool["spawn.json"] = true
	modE.BaseForm().Species = &model.SourceRef{Path: "eevee.json"}
	modE.BaseForm().SpeciesAdditions = &model.SourceRef{Path: "eevee_add.json"}
	attachCompleteGraphics(modE, mod)

	plain, plainE := packWithEntity(t, "ReqPack", false)
	plainE.BaseForm().SpawnPool["spawn.json"] = true
	plainE.BaseForm().SpeciesAdditions = &model.SourceRef{Path: "eevee_add.json"}
	plainE.Requested = 2
	plainE.RequestTransferred = 1

	err := Choose([]*model.Pack{mod, plain}, chooseCfg(), NewScriptedChooser())
	require.NoError(t, err)

	assert.False(t, modE.Selected)
	assert.True(t, plainE.Selected)
}

func TestChooseRuleCARDKeepsCompleteBaseOverEmptyPack(t *testing.T) {
	base, baseE := packWithEntity(t, "BASE", true)
	baseE.BaseForm().SpawnPool["spawn.json"] = true
	baseE.BaseForm().Species = &model.SourceRef{Path: "eevee.json"}
	attachCompleteGraphics(baseE, base)

	plain, plainE := packWithEntity(t, "JunkPack", false)

	err := Choose([]*model.Pack{base, plain}, chooseCfg(), NewScriptedChooser())
	require.NoError(t, err)

	assert.True(t, baseE.Selected)
	assert.False(t, plainE.Selected)
}

func TestModVsPackRuleCARD2PrefersRemodelOverEmptyBase(t *testing.T) {
	_, baseE := packWithEntity(t, "BASE", true)
	plain, plainE := packWithEntity(t, "Remodel", false)

	re := model.NewResolverEntry(0, "resolver.json", plainE, plain)
	re.Models["model.geo.json"] = true
	re.Textures["tex.png"] = true
	re.HasShiny = true
	plainE.AddResolver(re)
	plainE.BaseForm().ResolverAssignments[0] = true

	winner, code, ok := modVsPackRule(baseE, plainE, "BASE", "Remodel", true)
	require.True(t, ok)
	assert.Equal(t, "Remodel", winner)
	assert.Equal(t, "CARD2", code)
}
