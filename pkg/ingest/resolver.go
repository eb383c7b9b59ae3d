package ingest

import (
	"strings"

	"github.com/packforge/combiner/pkg/jsonio"
	"github.com/packforge/combiner/pkg/logger"
	"github.com/packforge/combiner/pkg/model"
)

var resolverLog = logger.New("ingest:visual_resolver_binder")

// ResolverIndexes are the pre-built, pack-wide filename-stem indexes the
// Visual Resolver Binder consults when a resolver names a poser/model/
// texture it doesn't carry an explicit path for.
type ResolverIndexes struct {
	Posers   *AssetIndex
	Models   *AssetIndex
	Textures *AssetIndex
}

// BuildResolverIndexes indexes every poser/model/texture file discovered
// anywhere in the pack, ahead of walking any individual resolver file.
func BuildResolverIndexes(loc *model.Locations) *ResolverIndexes {
	return &ResolverIndexes{
		Posers:   BuildAssetIndex(loc.Posers),
		Models:   BuildAssetIndex(loc.Models),
		Textures: BuildAssetIndex(loc.Textures),
	}
}

// LoadResolvers walks every resolver file under dir, builds a ResolverEntry
// per file, resolves its variations/layers against idx, and binds it to the
// entity's matching forms by aspect.
func LoadResolvers(pack *model.Pack, dir string, loc *model.Locations, idx *ResolverIndexes, warn jsonio.WarnFunc) error {
	return jsonio.ForEachJSON(dir, jsonio.Options{Warn: warn}, func(path string, parsed jsonio.Bag) error {
		species := jsonio.LastColonSegment(parsed.Get("species").String(""))
		if species == "" {
			return nil
		}
		e := pack.EntityOrCreate(species)

		re := model.NewResolverEntry(parsed.Get("order").Int(-1), path, e, pack)

		for _, variation := range parsed.Get("variations").Slice() {
			collectVariation(variation, loc, idx, re)
		}
		collectLayers(parsed.Get("layers"), loc, idx, re)
		for _, a := range parsed.Get("aspects").StringSlice() {
			re.Aspects[a] = true
		}

		if re.Aspects["shiny"] {
			re.HasShiny = true
			delete(re.Aspects, "shiny")
		}

		e.AddResolver(re)
		bindResolverToForms(e, re)

		resolverLog.Printf("bound resolver %d on %s (models=%d posers=%d textures=%d anims=%d)",
			re.Order, e.InternalName, len(re.Models), len(re.Posers), len(re.Textures), len(re.Animations))
		return nil
	})
}

func collectVariation(v jsonio.Bag, loc *model.Locations, idx *ResolverIndexes, re *model.ResolverEntry) {
	resolveAssetRef(v.Get("poser").String(""), loc.Posers, idx.Posers, re.Posers)
	resolveAssetRef(v.Get("model").String(""), loc.Models, idx.Models, re.Models)
	resolveTexture(v.Get("texture"), loc, idx, re)
	for _, a := range v.Get("aspects").StringSlice() {
		re.Aspects[a] = true
	}
	collectLayers(v.Get("layers"), loc, idx, re)
}

// collectLayers walks layers[] (and each layer's own nested layers[], if
// present) without recursion, using an explicit worklist.
func collectLayers(layers jsonio.Bag, loc *model.Locations, idx *ResolverIndexes, re *model.ResolverEntry) {
	queue := layers.Slice()
	for len(queue) > 0 {
		layer := queue[0]
		queue = queue[1:]

		resolveAssetRef(layer.Get("poser").String(""), loc.Posers, idx.Posers, re.Posers)
		resolveAssetRef(layer.Get("model").String(""), loc.Models, idx.Models, re.Models)
		resolveTexture(layer.Get("texture"), loc, idx, re)
		for _, a := range layer.Get("aspects").StringSlice() {
			re.Aspects[a] = true
		}
		queue = append(queue, layer.Get("layers").Slice()...)
	}
}

func resolveAssetRef(ref string, dirs map[string]bool, idx *AssetIndex, into map[string]bool) {
	if ref == "" {
		return
	}
	if path, ok := Resolve(dirs, ref); ok {
		into[path] = true
		return
	}
	if path, ok := idx.Take(model.StemName(ref)); ok {
		into[path] = true
	}
}

// resolveTexture handles a texture field shaped either as a bare string or
// {frames: [strings]}. Each string is split on "/"; the path following a
// "pokemon" path segment is joined onto a known textures root, falling back
// to the textures index by last path segment.
func resolveTexture(tex jsonio.Bag, loc *model.Locations, idx *ResolverIndexes, re *model.ResolverEntry) {
	var raws []string
	if s := tex.String(""); s != "" {
		raws = append(raws, s)
	}
	for _, f := range tex.Get("frames").StringSlice() {
		raws = append(raws, f)
	}

	for _, raw := range raws {
		parts := strings.Split(raw, "/")
		joined := ""
		for i, p := range parts {
			if p == "pokemon" && i+1 < len(parts) {
				joined = strings.Join(parts[i+1:], "/")
				break
			}
		}
		if joined != "" {
			for dir := range loc.Textures {
				re.Textures[dir+"/"+joined] = true
				break
			}
			continue
		}
		stem := model.StemName(parts[len(parts)-1])
		if path, ok := idx.Textures.Take(stem); ok {
			re.Textures[path] = true
		}
	}
}

// bindResolverToForms binds re's order onto every form whose aspects
// contain any of re's remaining (post-shiny) aspects; if none match, binds
// to base_form.
func bindResolverToForms(e *model.Entity, re *model.ResolverEntry) {
	matched := false
	for _, f := range e.Forms {
		for aspect := range re.Aspects {
			if f.HasAspect(aspect) {
				f.ResolverAssignments[re.Order] = true
				matched = true
				break
			}
		}
	}
	if !matched {
		e.BaseForm().ResolverAssignments[re.Order] = true
	}
}
