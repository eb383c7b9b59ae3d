package resolve

import (
	"github.com/packforge/combiner/pkg/compare"
	"github.com/packforge/combiner/pkg/jsonio"
	"github.com/packforge/combiner/pkg/model"
)

// mergeSpawns merges every spawn file attached to any form of any pack's
// entity for name into one combined spawn_pool_world document. Duplicate
// content (by loose comparison, ignoring id) folds away; a surviving id
// collision is resolved with NextCandidateName. Every form whose spawn was
// read is marked FULL.
func mergeSpawns(name string, holder Holder, me *MergedEntity) (*MergedSpawn, error) {
	out := &MergedSpawn{
		Enabled:               true,
		NeededInstalledMods:   map[string]bool{},
		NeededUninstalledMods: map[string]bool{},
	}

	seenIDs := map[string]bool{}
	processed := map[string]bool{}

	for _, e := range holder {
		for formName, form := range e.Forms {
			formRead := false
			for path := range form.SpawnPool {
				if processed[path] {
					formRead = true
					continue
				}
				processed[path] = true

				doc, err := jsonio.LoadFile(path)
				if err != nil {
					continue
				}
				formRead = true

				for _, m := range doc.Get("neededInstalledMods").StringSlice() {
					out.NeededInstalledMods[m] = true
				}
				for _, m := range doc.Get("neededUninstalledMods").StringSlice() {
					out.NeededUninstalledMods[m] = true
				}

				for _, entry := range doc.Get("spawns").Slice() {
					tokenName, _ := splitSpawnToken(entry.Get("pokemon").String(""))
					if tokenName != name {
						continue
					}
					appendSpawnEntry(out, entry, seenIDs)
				}
			}
			if formRead {
				st := me.FormStatus[formName]
				st.SpawnPool = model.MergeFull
				me.FormStatus[formName] = st
			}
		}
	}

	return out, nil
}

func splitSpawnToken(token string) (name, rest string) {
	for i, r := range token {
		if r == ' ' || r == '\t' {
			return token[:i], token[i+1:]
		}
	}
	return token, ""
}

func appendSpawnEntry(out *MergedSpawn, entry jsonio.Bag, seenIDs map[string]bool) {
	raw, ok := entry.Raw().(map[string]any)
	if !ok {
		return
	}
	entryMap := make(map[string]any, len(raw))
	for k, v := range raw {
		entryMap[k] = v
	}

	id, _ := entryMap["id"].(string)
	rest := make(map[string]any, len(entryMap))
	for k, v := range entryMap {
		if k != "id" {
			rest[k] = v
		}
	}

	for _, existing := range out.Spawns {
		existingRest := make(map[string]any, len(existing))
		for k, v := range existing {
			if k != "id" {
				existingRest[k] = v
			}
		}
		if compare.Loose(rest, existingRest) {
			return
		}
	}

	if id != "" {
		for seenIDs[id] {
			id = compare.NextCandidateName(id)
		}
		seenIDs[id] = true
		entryMap["id"] = id
	}
	out.Spawns = append(out.Spawns, entryMap)
}
