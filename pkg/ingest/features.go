// Package ingest implements the per-pack binders that turn a probed
// Locations tree into a populated model.Pack: the Feature Registry, Species
// Graph Builder, Spawn Binder, Visual Resolver Binder, Poser/Animation
// Linker, Sound Binder, Evolution Collector/Accounting, and Pseudoform
// Detection.
package ingest

import (
	"github.com/packforge/combiner/pkg/jsonio"
	"github.com/packforge/combiner/pkg/logger"
	"github.com/packforge/combiner/pkg/model"
)

var featureLog = logger.New("ingest:features")

// LoadFeatureRegistry reads every species_features file under dir into
// pack.Features.
func LoadFeatureRegistry(pack *model.Pack, dir string, warn jsonio.WarnFunc) error {
	return jsonio.ForEachJSON(dir, jsonio.Options{Warn: warn}, func(path string, parsed jsonio.Bag) error {
		name := model.StemName(path)
		f := &model.Feature{
			Name:         name,
			Keys:         parsed.Get("keys").StringSlice(),
			IsAspect:     parsed.Get("isAspect").Bool(false),
			AspectFormat: parsed.Get("aspectFormat").String(""),
		}
		switch parsed.Get("type").String("flag") {
		case "choice":
			f.Kind = model.FeatureChoice
		case "integer":
			f.Kind = model.FeatureInteger
		default:
			f.Kind = model.FeatureFlag
		}
		pack.Features[f.Name] = f
		featureLog.Printf("loaded feature %s (kind=%v aspect=%v)", f.Name, f.Kind, f.IsAspect)
		return nil
	})
}

// LoadFeatureAssignments reads every species_feature_assignments file under
// dir into pack.FeatureAssigns.
func LoadFeatureAssignments(pack *model.Pack, dir string, warn jsonio.WarnFunc) error {
	return jsonio.ForEachJSON(dir, jsonio.Options{Warn: warn}, func(path string, parsed jsonio.Bag) error {
		name := parsed.Get("name").String(model.StemName(path))
		included := parsed.Get("entities").StringSlice()
		if included == nil {
			included = parsed.Get("included").StringSlice()
		}
		pack.FeatureAssigns[name] = &model.FeatureAssignment{
			Name:     name,
			Included: included,
		}
		return nil
	})
}

// FindFeature looks up a feature by name or alias key across the registry.
func FindFeature(pack *model.Pack, key string) *model.Feature {
	if f, ok := pack.Features[key]; ok {
		return f
	}
	for _, f := range pack.Features {
		if f.MatchesKey(key) {
			return f
		}
	}
	return nil
}
