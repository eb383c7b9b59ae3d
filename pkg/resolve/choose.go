package resolve

import (
	"sort"

	"github.com/packforge/combiner/pkg/logger"
	"github.com/packforge/combiner/pkg/model"
	"github.com/packforge/combiner/pkg/settings"
)

var chooseLog = logger.New("resolve:choose")

// Choose runs the CHOOSE resolution policy over every entity name
// discovered across packs: singletons auto-select, two-pack conflicts are
// decided by the declared rule chain, and anything left over is handed to
// chooser.
func Choose(packs []*model.Pack, cfg settings.Settings, chooser Chooser) error {
	holders := Holders(packs)
	byName := packsByName(packs)
	selected := map[string]bool{}

	remaining := make(map[string]bool, len(holders))
	for name := range holders {
		remaining[name] = true
	}

	for len(remaining) > 0 {
		name := nextByPriority(remaining, holders, byName, selected)
		delete(remaining, name)

		holder := holders[name]
		winner, code, err := resolveOne(name, holder, byName, cfg, chooser)
		if err != nil {
			return err
		}
		if winner == "" {
			continue
		}
		// "I" keeps an arbitrary holder without selecting it: both packs
		// are base/mod and mods are disabled, so neither is exported.
		if code != "I" {
			holder[winner].Selected = true
			selected[name] = true
		}
		chooseLog.Printf("entity %s -> pack %s [%s]", name, winner, code)
	}
	return nil
}

func resolveOne(name string, holder Holder, byName map[string]*model.Pack, cfg settings.Settings, chooser Chooser) (string, string, error) {
	if len(holder) == 1 {
		for packName := range holder {
			// Base-only entities are kept silently selected; every other
			// singleton is auto-selected the same way, just reported.
			return packName, "A", nil
		}
	}

	if len(holder) == 2 {
		if winner, code, ok := twoWayRule(holder, byName, cfg); ok {
			return winner, code, nil
		}
	}

	winner, err := chooser.Pick(name, holder)
	if err != nil {
		return "", "", err
	}
	return winner, "M", nil
}

// twoWayRule applies the declared two-pack rule chain: the against-BASE
// completeness rules first, then the mods-disabled ignore rule, then the
// mod-versus-pack chain (G, G2, G3-R, G4-R, G5-R, G5b-R, G5c-R, CARD,
// CARD2, CARD3). The first rule that yields a concrete choice wins;
// ok=false defers to the operator.
func twoWayRule(holder Holder, byName map[string]*model.Pack, cfg settings.Settings) (winner, code string, ok bool) {
	names := make([]string, 0, len(holder))
	for packName := range holder {
		names = append(names, packName)
	}
	sort.Strings(names)

	var baseName, plainName string
	ownedCount := 0
	for _, n := range names {
		p := byName[n]
		if p.IsBase {
			baseName = n
		}
		if p.IsBase || p.IsMod {
			ownedCount++
		} else {
			plainName = n
		}
	}

	if baseName != "" {
		otherName := names[0]
		if otherName == baseName {
			otherName = names[1]
		}
		if w, c, hit := againstBaseRule(holder[baseName].BaseForm().Stamp(), holder[otherName].BaseForm().Stamp(), otherName); hit {
			return w, c, true
		}
	}

	if ownedCount == len(names) && !cfg.ProcessMods {
		return names[0], "I", true
	}

	if ownedCount == 1 {
		var modName string
		for _, n := range names {
			if n != plainName {
				modName = n
			}
		}
		return modVsPackRule(holder[modName], holder[plainName], modName, plainName, byName[modName].IsBase)
	}

	return "", "", false
}

// againstBaseRule decides BASE-versus-other conflicts on spawn and graphics
// completeness alone, always in the other pack's favor (code R): (a) BASE
// lacks a spawn the other has, and either lacks a resolver the other has or
// carries an incomplete asset set where the other's is full; (b) BASE has
// graphics but no spawn while the other has a spawn but no graphics.
func againstBaseRule(b, o model.CompStamp, otherName string) (string, string, bool) {
	bAllAssets := b.HasModel && b.HasPoser && b.HasAnimation && b.HasTexture && b.HasShiny
	oAllAssets := o.HasModel && o.HasPoser && o.HasAnimation && o.HasTexture && o.HasShiny
	if !b.HasSpawn && o.HasSpawn && ((!b.HasResolver && o.HasResolver) || (!bAllAssets && oAllAssets)) {
		return otherName, "R", true
	}
	if !b.HasSpawn && hasGraphics(b) && o.HasSpawn && !hasGraphics(o) {
		return otherName, "R", true
	}
	return "", "", false
}

// modVsPackRule is the ordered rule chain applied when exactly one of the
// two packs is base/mod (fm) and the other is a plain pack (fo).
func modVsPackRule(modE, otherE *model.Entity, modName, otherName string, modIsBase bool) (string, string, bool) {
	fm := modE.BaseForm().Stamp()
	fo := otherE.BaseForm().Stamp()

	switch {
	// G: the mod carries spawn+species, the other is a pure remodel.
	case fm.HasSpawn && fm.HasSpecies && !fo.HasSpawn && !fo.HasSpecies && graphicallyComplete(fo):
		return otherName, "G", true
	// G2: the mod has no graphics at all, the other's are complete.
	case !hasGraphics(fm) && graphicallyComplete(fo):
		return otherName, "G2", true
	// G3-R: the other pack is a species file and nothing else.
	case speciesOnly(fo):
		return otherName, "G3-R", true
	// G4-R: both graphically complete; the mod has species data but no
	// spawn, the other the reverse.
	case graphicallyComplete(fm) && graphicallyComplete(fo) && hasSpData(fm) && !hasSpData(fo) && !fm.HasSpawn && fo.HasSpawn:
		return otherName, "G4-R", true
	// G5-R: the mod is complete but the other is graphics-free and has an
	// outstanding evolution request pointed at it.
	case isComplete(fm) && !hasGraphics(fo) && isRequested(otherE):
		return otherName, "G5-R", true
	// G5b-R: as G5-R, but the requested pack brings graphics and a spawn
	// without species data.
	case isComplete(fm) && hasGraphics(fo) && isRequested(otherE) && fo.HasSpawn && !hasSpData(fo):
		return otherName, "G5b-R", true
	// G5c-R: the mod is complete, the other is a pure remodel.
	case isComplete(fm) && !fo.HasSpawn && !hasSpData(fo) && graphicallyComplete(fo):
		return otherName, "G5c-R", true
	// CARD: a complete base against a pack with nothing usable.
	case isComplete(fm) && modIsBase && !fo.HasSpawn && !hasSpData(fo) && !graphicallyComplete(fo):
		return modName, "CARD", true
	// CARD2: an empty base against a poser-less remodel asset set.
	case modIsBase && !fm.HasSpawn && !hasGraphics(fm) && remodelGraphics(fo):
		return otherName, "CARD2", true
	// CARD3: a graphically complete base against a data-free poser-less
	// remodel; the base keeps it.
	case modIsBase && graphicallyComplete(fm) && !fo.HasSpawn && !hasSpData(fo) && remodelGraphics(fo):
		return modName, "CARD3", true
	}
	return "", "", false
}

// hasGraphics reports a resolver plus at least one visual asset.
func hasGraphics(s model.CompStamp) bool {
	return s.HasResolver && (s.HasModel || s.HasPoser || s.HasAnimation || s.HasTexture || s.HasShiny)
}

// graphicallyComplete requires resolver, model, animation, texture, and
// shiny; a missing poser alone does not count against completeness.
func graphicallyComplete(s model.CompStamp) bool {
	return s.HasResolver && s.HasModel && s.HasAnimation && s.HasTexture && s.HasShiny
}

func isComplete(s model.CompStamp) bool {
	return s.HasSpawn && s.HasSpecies && graphicallyComplete(s)
}

func hasSpData(s model.CompStamp) bool {
	return s.HasSpecies || s.HasSpeciesAdditions
}

// speciesOnly reports a stamp carrying species data and nothing else.
func speciesOnly(s model.CompStamp) bool {
	return s.HasSpecies && stampCount(s) == 1
}

// remodelGraphics is the asset shape of a texture remodel: model, texture,
// and shiny present, poser and animation absent.
func remodelGraphics(s model.CompStamp) bool {
	return s.HasModel && !s.HasPoser && !s.HasAnimation && s.HasTexture && s.HasShiny
}

func isRequested(e *model.Entity) bool {
	return e.Requested > 0 && e.Requested-e.RequestTransferred != 0
}

func stampCount(s model.CompStamp) int {
	n := 0
	for _, f := range stampFlags(s) {
		if f {
			n++
		}
	}
	return n
}

func stampFlags(s model.CompStamp) [9]bool {
	return [9]bool{
		s.HasSpawn, s.HasSpecies, s.HasSpeciesAdditions, s.HasResolver,
		s.HasModel, s.HasPoser, s.HasAnimation, s.HasTexture, s.HasShiny,
	}
}
