package resolve

import (
	"github.com/packforge/combiner/pkg/logger"
	"github.com/packforge/combiner/pkg/model"
	"github.com/packforge/combiner/pkg/settings"
)

var mergeLog = logger.New("resolve:merge")

// MergedEntity is one entity's output from the MERGE policy: the composed
// species document plus its graphics pick and per-form completeness.
type MergedEntity struct {
	Name         string
	Spawn        *MergedSpawn
	CommonBase   map[string]any
	FinalSpecies map[string]any
	GraphicsPick string
	FormStatus   map[string]model.MergeStatus
}

// MergedSpawn is the combined spawn_pool_world document for one entity.
type MergedSpawn struct {
	Enabled               bool
	NeededInstalledMods   map[string]bool
	NeededUninstalledMods map[string]bool
	Spawns                []map[string]any
}

// Merge runs the MERGE resolution policy over every entity name discovered
// across packs, in priority order, returning one MergedEntity per name.
func Merge(packs []*model.Pack, cfg settings.Settings, chooser Chooser) (map[string]*MergedEntity, error) {
	holders := Holders(packs)
	byName := packsByName(packs)
	selected := map[string]bool{}

	remaining := make(map[string]bool, len(holders))
	for name := range holders {
		remaining[name] = true
	}

	out := map[string]*MergedEntity{}
	for len(remaining) > 0 {
		name := nextByPriority(remaining, holders, byName, selected)
		delete(remaining, name)

		holder := holders[name]
		merged, err := mergeEntity(packs, name, holder, byName, cfg, chooser)
		if err != nil {
			return nil, err
		}
		out[name] = merged
		selected[name] = true
		for _, e := range holder {
			e.Merged = true
		}
		mergeLog.Printf("merged entity %s (graphics pick %q)", name, merged.GraphicsPick)
	}
	return out, nil
}

func mergeEntity(packs []*model.Pack, name string, holder Holder, byName map[string]*model.Pack, cfg settings.Settings, chooser Chooser) (*MergedEntity, error) {
	me := &MergedEntity{Name: name, FormStatus: map[string]model.MergeStatus{}}

	spawn, err := mergeSpawns(name, holder, me)
	if err != nil {
		return nil, err
	}
	me.Spawn = spawn

	processable := processableHolder(holder, byName, cfg)
	order := orderedProcessableNames(packs, processable)

	base := commonBase(packs, holder, processable, byName, cfg)
	me.CommonBase = base

	additions := map[string]*packAddition{}
	for _, packName := range order {
		add := extractAddition(processable[packName], base, cfg)
		additions[packName] = add
		assignMergeScore(processable[packName], add, cfg, me)
	}

	pick := choiceOptions(processable, byName)
	var pickName string
	switch {
	case len(pick) == 1:
		for n := range pick {
			pickName = n
		}
	case len(pick) > 1:
		pickName, err = chooser.Pick(name, pick)
		if err != nil {
			return nil, err
		}
	case len(processable) == 1:
		// No pack contributes graphics, but a sole processable pack is
		// still the entity's only source and keeps its files.
		for n := range processable {
			pickName = n
		}
	}
	me.GraphicsPick = pickName

	final := copyMap(base)
	votes := newVoteTracker()
	for _, packName := range order {
		if packName == pickName {
			continue
		}
		foldAddition(final, additions[packName], false, true, votes)
	}
	if pickName != "" {
		if add, ok := additions[pickName]; ok {
			foldAddition(final, add, true, true, votes)
		}
	}
	if cfg.PokedexFix {
		isPseudoform := false
		for _, e := range holder {
			if e.IsPseudoform {
				isPseudoform = true
				break
			}
		}
		if isPseudoform && cfg.ExcludePseudoforms {
			final["implemented"] = false
		} else {
			final["implemented"] = true
		}
	}
	me.FinalSpecies = final

	return me, nil
}

// processableHolder excludes base entities, and mod entities unless
// PROCESS_MODS is set.
func processableHolder(holder Holder, byName map[string]*model.Pack, cfg settings.Settings) Holder {
	out := Holder{}
	for packName, e := range holder {
		p := byName[packName]
		if p.IsBase {
			continue
		}
		if p.IsMod && !cfg.ProcessMods {
			continue
		}
		out[packName] = e
	}
	return out
}

// choiceOptions is the subset of processable packs contributing graphics.
func choiceOptions(processable Holder, byName map[string]*model.Pack) Holder {
	out := Holder{}
	for packName, e := range processable {
		for _, re := range e.Resolvers {
			if re.HasGraphics() {
				out[packName] = e
				break
			}
		}
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
