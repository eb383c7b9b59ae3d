package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEntityHasBaseForm(t *testing.T) {
	p := NewPack("PackA", "/tmp/pack")
	e := NewEntity("eevee", p)

	assert.NotNil(t, e.BaseForm())
	assert.Equal(t, BaseFormName, e.BaseForm().Name)
	assert.Same(t, p, e.Pack)
}

func TestFormOrCreateIsCaseInsensitiveByKeyButPreservesDisplayCase(t *testing.T) {
	p := NewPack("PackA", "/tmp/pack")
	e := NewEntity("eevee", p)

	f1 := e.FormOrCreate("Sunny")
	f2 := e.FormOrCreate("sunny")

	assert.Same(t, f1, f2)
	assert.Equal(t, "Sunny", f1.Name)
}

func TestFormOrCreateEmptyNameReturnsBaseForm(t *testing.T) {
	p := NewPack("PackA", "/tmp/pack")
	e := NewEntity("eevee", p)

	assert.Same(t, e.BaseForm(), e.FormOrCreate(""))
}

func TestNextResolverOrderDecrementsBelowExistingMinimum(t *testing.T) {
	p := NewPack("PackA", "/tmp/pack")
	e := NewEntity("eevee", p)

	assert.Equal(t, -1, e.NextResolverOrder())

	e.Resolvers[-1] = NewResolverEntry(-1, "", e, p)
	assert.Equal(t, -2, e.NextResolverOrder())

	e.Resolvers[5] = NewResolverEntry(5, "", e, p)
	assert.Equal(t, -2, e.NextResolverOrder(), "a positive order must not raise the floor")
}

func TestAddResolverReassignsOrderOnCollision(t *testing.T) {
	p := NewPack("PackA", "/tmp/pack")
	e := NewEntity("eevee", p)

	first := NewResolverEntry(0, "a.json", e, p)
	e.AddResolver(first)

	second := NewResolverEntry(0, "b.json", e, p)
	e.AddResolver(second)

	assert.Same(t, first, e.Resolvers[0])
	assert.NotEqual(t, 0, second.Order)
	assert.Same(t, second, e.Resolvers[second.Order])
}

func TestResolverEntryHasGraphics(t *testing.T) {
	p := NewPack("PackA", "/tmp/pack")
	e := NewEntity("eevee", p)
	re := NewResolverEntry(0, "", e, p)

	assert.False(t, re.HasGraphics())

	re.Textures["tex.png"] = true
	assert.True(t, re.HasGraphics())

	re2 := NewResolverEntry(1, "", e, p)
	re2.HasShiny = true
	assert.True(t, re2.HasGraphics())
}

func TestActiveRequestRequiresOutstandingRequestAndDownstreamSelection(t *testing.T) {
	p := NewPack("PackA", "/tmp/pack")
	e := NewEntity("eevee", p)

	assert.False(t, e.ActiveRequest(true), "no requests outstanding yet")

	e.Requested = 2
	e.RequestTransferred = 1
	assert.True(t, e.ActiveRequest(true))
	assert.False(t, e.ActiveRequest(false))

	e.RequestTransferred = 2
	assert.False(t, e.ActiveRequest(true), "fully transferred requests are no longer active")
}

func TestEntityOrCreateReturnsSameInstanceOnRepeatedCalls(t *testing.T) {
	p := NewPack("PackA", "/tmp/pack")
	e1 := p.EntityOrCreate("eevee")
	e2 := p.EntityOrCreate("eevee")
	assert.Same(t, e1, e2)
	assert.Equal(t, -1, e1.DexID)
}

func TestAllExportPathsUnionsFormsResolversAndSounds(t *testing.T) {
	p := NewPack("PackA", "/tmp/pack")
	e := p.EntityOrCreate("eevee")
	e.BaseForm().Species = &SourceRef{Path: "species.json"}
	e.BaseForm().SpawnPool["spawn.json"] = true

	re := NewResolverEntry(0, "resolver.json", e, p)
	re.Textures["tex.png"] = true
	e.AddResolver(re)

	e.SoundEntry = NewSoundEntry("eevee")
	e.SoundEntry.AddMoveSound("tackle", "tackle.ogg")
	e.SoundEntry.Unassigned["extra.ogg"] = true

	paths := e.AllExportPaths()
	for _, want := range []string{"species.json", "spawn.json", "resolver.json", "tex.png", "tackle.ogg", "extra.ogg"} {
		assert.True(t, paths[want], "expected %s in export paths", want)
	}
}

func TestStemName(t *testing.T) {
	assert.Equal(t, "eevee", StemName("/a/b/eevee.json"))
	assert.Equal(t, "eevee.geo", StemName("/a/b/eevee.geo.json"))
	assert.Equal(t, "noext", StemName("noext"))
}
