package resolve

import (
	"github.com/packforge/combiner/pkg/compare"
	"github.com/packforge/combiner/pkg/model"
	"github.com/packforge/combiner/pkg/settings"
)

// mergeAllowedKeys are the species-document keys allowed to differ from
// the common base without a form's merge score dropping below FULL.
var mergeAllowedKeys = map[string]bool{
	"target": true, "dex_id": true, "evolutions": true, "forms": true,
}

// formAddition is one pack's kept form-level content against common_base's
// matching form, plus the keys that actually differ (used for scoring).
type formAddition struct {
	Doc  map[string]any
	Keys map[string]bool
}

// packAddition is one pack's per-entity extracted addition against the
// common base: the top-level fields, evolution entries, and forms the pack
// contributes beyond it.
type packAddition struct {
	Fields     map[string]any
	Evolutions []map[string]any
	Forms      map[string]formAddition
}

// effectiveSpeciesDoc overlays a Form's species_additions onto its species
// payload with overwrite=true, the per-pack view the Merger diffs against
// common_base.
func effectiveSpeciesDoc(f *model.Form) map[string]any {
	out := map[string]any{}
	if f.Species != nil {
		if m, ok := f.Species.Payload.(map[string]any); ok {
			for k, v := range m {
				out[k] = v
			}
		}
	}
	if f.SpeciesAdditions != nil {
		if m, ok := f.SpeciesAdditions.Payload.(map[string]any); ok {
			for k, v := range m {
				out[k] = v
			}
		}
	}
	return out
}

// orderedProcessableNames restricts holder to processable's members,
// ordered by packs' load order so every downstream fold is deterministic:
// ties in majority voting always favor earlier packs.
func orderedProcessableNames(packs []*model.Pack, processable Holder) []string {
	var out []string
	for _, p := range packs {
		if _, ok := processable[p.DisplayName]; ok {
			out = append(out, p.DisplayName)
		}
	}
	return out
}

// commonBase computes the authoritative common_base species document for an
// entity: the BASE pack's base_form species source if one exists, otherwise
// an intersection-over-loose-equality synthesis across every processable
// pack's base_form. With strict key matching a key must exist in every
// pack; otherwise it is admitted when all packs that carry it agree.
func commonBase(packs []*model.Pack, holder Holder, processable Holder, byName map[string]*model.Pack, cfg settings.Settings) map[string]any {
	for packName, e := range holder {
		if byName[packName].IsBase {
			return copyMap(effectiveSpeciesDoc(e.BaseForm()))
		}
	}

	order := orderedProcessableNames(packs, processable)
	if len(order) == 0 {
		return map[string]any{}
	}

	docs := make([]map[string]any, 0, len(order))
	for _, packName := range order {
		docs = append(docs, effectiveSpeciesDoc(processable[packName].BaseForm()))
	}

	keys := map[string]bool{}
	if cfg.SpeciesStrictKeyMatch {
		for k := range docs[0] {
			keys[k] = true
		}
		for _, d := range docs[1:] {
			for k := range keys {
				if _, ok := d[k]; !ok {
					delete(keys, k)
				}
			}
		}
	} else {
		for _, d := range docs {
			for k := range d {
				keys[k] = true
			}
		}
	}

	base := map[string]any{}
	for k := range keys {
		var first any
		has, agree := false, true
		for _, d := range docs {
			v, ok := d[k]
			if !ok {
				if cfg.SpeciesStrictKeyMatch {
					agree = false
					break
				}
				continue
			}
			if !has {
				first, has = v, true
				continue
			}
			if !compare.Loose(first, v) {
				agree = false
				break
			}
		}
		if has && agree {
			base[k] = first
		}
	}
	return base
}

// extractAddition diffs e's effective species document against base,
// producing the addition this pack contributes: top-level fields that
// differ (excluding "evolutions"/"forms", handled specially), kept
// evolution entries not already present in base, and kept forms not
// present in or loosely-unequal to base's matching form.
func extractAddition(e *model.Entity, base map[string]any, cfg settings.Settings) *packAddition {
	add := &packAddition{
		Fields: map[string]any{},
		Forms:  map[string]formAddition{},
	}

	doc := effectiveSpeciesDoc(e.BaseForm())
	for k, v := range doc {
		if k == "evolutions" || k == "forms" {
			continue
		}
		if bv, ok := base[k]; !ok || !compare.Loose(bv, v) {
			add.Fields[k] = v
		}
	}

	add.Evolutions = evolutionsDiff(doc, base)

	baseForms := baseFormsByName(base)
	for key, f := range e.Forms {
		if key == model.BaseFormName {
			continue
		}
		formDoc := effectiveSpeciesDoc(f)
		if len(formDoc) == 0 {
			continue
		}
		if _, ok := formDoc["name"]; !ok {
			formDoc["name"] = f.Name
		}

		baseForm, hadBase := baseForms[key]
		diffKeys := map[string]bool{}
		for k, v := range formDoc {
			bv, ok := baseForm[k]
			if !ok || !compare.Loose(bv, v) {
				diffKeys[k] = true
			}
		}
		if hadBase && len(diffKeys) == 0 {
			continue
		}
		add.Forms[key] = formAddition{Doc: formDoc, Keys: diffKeys}
	}

	return add
}

// evolutionsDiff returns doc's "evolutions" entries not already present
// (loosely, matched by "id" when both sides carry one, else by whole-entry
// comparison) in base's "evolutions".
func evolutionsDiff(doc, base map[string]any) []map[string]any {
	docList := asMapSlice(doc["evolutions"])
	baseList := asMapSlice(base["evolutions"])

	var out []map[string]any
	for _, item := range docList {
		if !containsLooseEvolution(baseList, item) {
			out = append(out, item)
		}
	}
	return out
}

func containsLooseEvolution(list []map[string]any, item map[string]any) bool {
	id, hasID := item["id"]
	for _, other := range list {
		if hasID {
			if oid, ok := other["id"]; ok {
				if compare.Loose(id, oid) {
					return true
				}
				continue
			}
		}
		if compare.Loose(item, other) {
			return true
		}
	}
	return false
}

func asMapSlice(v any) []map[string]any {
	s, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(s))
	for _, item := range s {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func baseFormsByName(base map[string]any) map[string]map[string]any {
	out := map[string]map[string]any{}
	for _, m := range asMapSlice(base["forms"]) {
		name, _ := m["name"].(string)
		if name == "" {
			continue
		}
		out[lowerKey(name)] = m
	}
	return out
}

func lowerKey(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r = r - 'A' + 'a'
		}
		out = append(out, r)
	}
	return string(out)
}

// assignMergeScore records, for every form of e, the FULL/PARTIAL/NO species
// and species_additions scores this pack's addition produces: FULL when only
// allowed keys differ, PARTIAL when the field existed but diverges, NO when
// the field was absent.
func assignMergeScore(e *model.Entity, add *packAddition, cfg settings.Settings, me *MergedEntity) {
	for key, f := range e.Forms {
		st := me.FormStatus[key]

		var diffKeys map[string]bool
		if key == model.BaseFormName {
			diffKeys = map[string]bool{}
			for k := range add.Fields {
				diffKeys[k] = true
			}
			if len(add.Evolutions) > 0 {
				diffKeys["evolutions"] = true
			}
			if len(add.Forms) > 0 {
				diffKeys["forms"] = true
			}
		} else if fa, ok := add.Forms[key]; ok {
			diffKeys = fa.Keys
		} else {
			diffKeys = map[string]bool{}
		}

		allowedOnly := true
		for k := range diffKeys {
			if mergeAllowedKeys[k] {
				continue
			}
			if k == "moves" && cfg.CombinePokemonMoves {
				continue
			}
			allowedOnly = false
			break
		}

		if f.Species != nil {
			if allowedOnly {
				st.Species = model.MergeFull
			} else {
				st.Species = model.MergePartial
			}
		} else {
			st.Species = model.MergeNone
		}

		if f.SpeciesAdditions != nil {
			if allowedOnly {
				st.SpeciesAdditions = model.MergeFull
			} else {
				st.SpeciesAdditions = model.MergePartial
			}
		} else {
			st.SpeciesAdditions = model.MergeNone
		}

		me.FormStatus[key] = st
	}
}

// foldAddition merges add into final: equal values are kept, maps/lists
// deep-combine when include is set (falling back to overwrite-takes-new
// otherwise), and any other conflicting scalar is resolved by majority vote
// (ties favor the first-encountered value, i.e. the earliest pack in load
// order). "moves" is combined like any other list; COMBINE_POKEMON_MOVES is
// not consulted here.
func foldAddition(final map[string]any, add *packAddition, overwrite, include bool, votes map[string]*valueVotes) {
	for k, v := range add.Fields {
		combineValue(final, votes, k, v, overwrite, include)
	}
	foldEvolutions(final, add.Evolutions)
	foldForms(final, add.Forms, overwrite, include)
}

// newVoteTracker allocates the per-entity vote state foldAddition needs to
// break majority ties deterministically across a whole mergeEntity run.
func newVoteTracker() map[string]*valueVotes {
	return map[string]*valueVotes{}
}

type valueVotes struct {
	buckets []voteBucket
}

type voteBucket struct {
	value any
	count int
}

func combineValue(final map[string]any, votes map[string]*valueVotes, key string, newVal any, overwrite, include bool) {
	cur, exists := final[key]
	if !exists {
		final[key] = newVal
		recordVote(votes, key, newVal)
		return
	}
	if compare.Loose(cur, newVal) {
		recordVote(votes, key, newVal)
		return
	}

	switch newVal.(type) {
	case map[string]any, []any:
		if include {
			final[key] = deepCombine(cur, newVal, overwrite)
			return
		}
		if overwrite {
			final[key] = newVal
		}
		return
	}

	recordVote(votes, key, newVal)
	final[key] = majorityValue(votes[key])
}

func recordVote(votes map[string]*valueVotes, key string, v any) {
	vv := votes[key]
	if vv == nil {
		vv = &valueVotes{}
		votes[key] = vv
	}
	for i := range vv.buckets {
		if compare.Loose(vv.buckets[i].value, v) {
			vv.buckets[i].count++
			return
		}
	}
	vv.buckets = append(vv.buckets, voteBucket{value: v, count: 1})
}

func majorityValue(vv *valueVotes) any {
	if vv == nil || len(vv.buckets) == 0 {
		return nil
	}
	best := vv.buckets[0]
	for _, b := range vv.buckets[1:] {
		if b.count > best.count {
			best = b
		}
	}
	return best.value
}

func deepCombine(cur, newVal any, overwrite bool) any {
	if curM, ok := cur.(map[string]any); ok {
		if newM, ok2 := newVal.(map[string]any); ok2 {
			out := copyMap(curM)
			for k, v := range newM {
				if existing, ok3 := out[k]; ok3 && !compare.Loose(existing, v) {
					out[k] = deepCombine(existing, v, overwrite)
				} else {
					out[k] = v
				}
			}
			return out
		}
	}
	if curL, ok := cur.([]any); ok {
		if newL, ok2 := newVal.([]any); ok2 {
			return combineLists(curL, newL)
		}
	}
	if overwrite {
		return newVal
	}
	return cur
}

// combineLists unions a and b by loose-equivalence class, preserving a's
// order and appending b's elements that have no loose match in a.
func combineLists(a, b []any) []any {
	out := make([]any, len(a))
	copy(out, a)
	for _, bv := range b {
		found := false
		for _, av := range out {
			if compare.Loose(av, bv) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, bv)
		}
	}
	return out
}

func foldEvolutions(final map[string]any, additions []map[string]any) {
	if len(additions) == 0 {
		return
	}
	existing := asMapSlice(final["evolutions"])
	ids := map[string]bool{}
	for _, e := range existing {
		if id, ok := e["id"].(string); ok {
			ids[id] = true
		}
	}

	for _, add := range additions {
		if containsLooseEvolution(existing, add) {
			continue
		}
		entry := copyMap(add)
		if id, ok := entry["id"].(string); ok {
			for ids[id] {
				id = compare.NextCandidateName(id)
			}
			ids[id] = true
			entry["id"] = id
		}
		existing = append(existing, entry)
	}

	out := make([]any, len(existing))
	for i, e := range existing {
		out[i] = e
	}
	final["evolutions"] = out
}

func foldForms(final map[string]any, additions map[string]formAddition, overwrite, include bool) {
	if len(additions) == 0 {
		return
	}
	existing := asMapSlice(final["forms"])
	byName := map[string]int{}
	for i, f := range existing {
		if name, ok := f["name"].(string); ok {
			byName[lowerKey(name)] = i
		}
	}

	for key, fa := range additions {
		if idx, ok := byName[key]; ok {
			if compare.Loose(existing[idx], fa.Doc) {
				continue
			}
			if include {
				existing[idx] = deepCombine(existing[idx], fa.Doc, overwrite).(map[string]any)
			} else if overwrite {
				existing[idx] = fa.Doc
			}
			continue
		}
		byName[key] = len(existing)
		existing = append(existing, fa.Doc)
	}

	out := make([]any, len(existing))
	for i, f := range existing {
		out[i] = f
	}
	final["forms"] = out
}
