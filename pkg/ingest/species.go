package ingest

import (
	"strings"

	"github.com/packforge/combiner/pkg/jsonio"
	"github.com/packforge/combiner/pkg/logger"
	"github.com/packforge/combiner/pkg/model"
)

var speciesLog = logger.New("ingest:species_graph_builder")

// LoadSpecies materializes Entities and Forms from every species file under
// dir.
func LoadSpecies(pack *model.Pack, dir string, warn jsonio.WarnFunc) error {
	return jsonio.ForEachJSON(dir, jsonio.Options{Warn: warn}, func(path string, parsed jsonio.Bag) error {
		name := parsed.Get("name").String("")
		internalName := model.StemName(path)

		e := pack.EntityOrCreate(internalName)
		e.DisplayName = name
		if e.DexID < 0 {
			e.DexID = parsed.Get("nationalPokedexNumber").Int(-1)
		}

		base := e.BaseForm()
		base.Species = &model.SourceRef{Path: path, Payload: parsed.Raw()}
		for _, a := range parsed.Get("aspects").StringSlice() {
			base.AddAspect(a)
		}

		for _, formBag := range parsed.Get("forms").Slice() {
			formName := formBag.Get("name").String("")
			f := e.FormOrCreate(formName)
			f.Species = &model.SourceRef{Path: path, Payload: formBag.Raw()}
			for _, a := range formBag.Get("aspects").StringSlice() {
				f.AddAspect(a)
			}
			collectEvolutions(pack, e, internalName, formBag, path, false)
		}

		collectEvolutions(pack, e, internalName, parsed, path, false)

		speciesLog.Printf("built entity %s (dex=%d forms=%d)", internalName, e.DexID, len(e.Forms))
		return nil
	})
}

// collectEvolutions registers evolutions.[*].result and preEvolution from doc
// against entityName, tagging each edge is_addition.
func collectEvolutions(pack *model.Pack, e *model.Entity, entityName string, doc jsonio.Bag, path string, isAddition bool) {
	for _, evo := range doc.Get("evolutions").Slice() {
		result := evo.Get("result").String("")
		if result == "" {
			continue
		}
		pack.Evolutions = append(pack.Evolutions, &model.EvolutionEdge{
			From:       entityName,
			To:         model.StemName(result), // tolerate "namespace:name" style refs
			SourceFile: path,
			IsAddition: isAddition,
		})
	}
	if pre := doc.Get("preEvolution").String(""); pre != "" {
		pack.Evolutions = append(pack.Evolutions, &model.EvolutionEdge{
			From:       pre,
			To:         entityName,
			SourceFile: path,
			IsAddition: isAddition,
		})
	}
}

// LoadSpeciesAdditions overlays species_additions onto the graph built by
// LoadSpecies.
func LoadSpeciesAdditions(pack *model.Pack, dir string, warn jsonio.WarnFunc) error {
	return jsonio.ForEachJSON(dir, jsonio.Options{Warn: warn}, func(path string, parsed jsonio.Bag) error {
		target := parsed.Get("target").String("")
		entityName := lastColonSegment(target)
		if entityName == "" {
			entityName = model.StemName(path)
		}

		e := pack.EntityOrCreate(entityName)
		base := e.BaseForm()
		if base.SpeciesAdditions == nil {
			base.SpeciesAdditions = &model.SourceRef{Path: path, Payload: parsed.Raw()}
		}

		for name := range parsed.Get("features").Map() {
			e.FeatureNames[name] = true
		}
		for _, fname := range parsed.Get("features").StringSlice() {
			e.FeatureNames[fname] = true
		}

		for _, formBag := range parsed.Get("forms").Slice() {
			formName := formBag.Get("name").String("")
			f := e.FormOrCreate(formName)
			if f.SpeciesAdditions == nil {
				f.SpeciesAdditions = &model.SourceRef{Path: path, Payload: formBag.Raw()}
			}
			collectEvolutions(pack, e, entityName, formBag, path, true)
		}

		collectEvolutions(pack, e, entityName, parsed, path, true)

		speciesLog.Printf("applied species_additions %s -> entity %s", path, entityName)
		return nil
	})
}

func lastColonSegment(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		return s[i+1:]
	}
	return s
}
