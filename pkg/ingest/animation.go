package ingest

import (
	"strings"

	"github.com/packforge/combiner/pkg/jsonio"
	"github.com/packforge/combiner/pkg/logger"
	"github.com/packforge/combiner/pkg/model"
)

var animLog = logger.New("ingest:poser_animation_linker")

// definedAnimationTypes seeds the set of top-level poser fields treated as
// animation-type references; it is extended with whatever keys actually
// turn up in the discovered animation files.
var definedAnimationTypes = []string{
	"ground_idle", "ground_walk", "ground_run", "air_idle", "air_fly",
	"water_idle", "water_swim", "render", "cry", "faint", "recoil",
	"blink", "sleep", "water_sleep", "physical", "special", "status",
}

// AnimationIndex is the set of (group, move) -> paths discovered across
// every animation file in the pack, plus the live set of known type names.
type AnimationIndex struct {
	Present map[string]map[string]map[string]bool
	Types   map[string]bool
}

// BuildAnimationIndex parses every animation file under dirs, keying each
// top-level "animations" entry by (group, move) derived from splitting the
// key on ".": a single segment is move under group "__null__"; three or
// more segments use parts[1] as group and parts[2] as move.
func BuildAnimationIndex(dirs map[string]bool, warn jsonio.WarnFunc) (*AnimationIndex, error) {
	idx := &AnimationIndex{
		Present: map[string]map[string]map[string]bool{},
		Types:   map[string]bool{},
	}
	for _, t := range definedAnimationTypes {
		idx.Types[t] = true
	}

	for dir := range dirs {
		err := jsonio.ForEachJSON(dir, jsonio.Options{Warn: warn}, func(path string, parsed jsonio.Bag) error {
			for key := range parsed.Get("animations").Map() {
				group, move := splitAnimationKey(key)
				idx.record(group, move, path)
				idx.Types[move] = true
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return idx, nil
}

func splitAnimationKey(key string) (group, move string) {
	parts := strings.Split(key, ".")
	switch {
	case len(parts) == 1:
		return "__null__", parts[0]
	case len(parts) >= 3:
		return parts[1], parts[2]
	default:
		return "__null__", parts[len(parts)-1]
	}
}

func (idx *AnimationIndex) record(group, move, path string) {
	if idx.Present[group] == nil {
		idx.Present[group] = map[string]map[string]bool{}
	}
	if idx.Present[group][move] == nil {
		idx.Present[group][move] = map[string]bool{}
	}
	idx.Present[group][move][path] = true
}

// LinkAnimations walks every resolver's attached posers across pack,
// collects requested (group, move) references, resolves them against idx,
// and sweeps orphan animation groups back onto the entities that name them.
func LinkAnimations(pack *model.Pack, idx *AnimationIndex) {
	accessed := map[string]bool{}

	for _, e := range pack.Entities {
		for _, re := range e.Resolvers {
			for poserPath := range re.Posers {
				bag, err := jsonio.LoadFile(poserPath)
				if err != nil {
					continue
				}
				for _, ref := range collectPoserReferences(bag) {
					re.RequestAnimation(ref.group, ref.move)
					accessed[ref.group] = true
					if paths, ok := idx.Present[ref.group][ref.move]; ok {
						re.RequestedAnimations[ref.group][ref.move] = true
						for p := range paths {
							re.Animations[p] = true
						}
					}
				}
			}
		}
	}

	orphanSweep(pack, idx, accessed)
}

type animRef struct{ group, move string }

// collectPoserReferences gathers every requested (group, move) tuple from a
// poser document: fields matching definedAnimationTypes, the top-level
// "animations" block, and each entry of "poses[*]" recursing into its
// "quirks"/"animations" sub-structures.
func collectPoserReferences(bag jsonio.Bag) []animRef {
	var refs []animRef
	seen := func(v string) {
		if r, ok := parseBedrockRef(v); ok {
			refs = append(refs, r)
		}
	}

	for key, v := range bag.Map() {
		if definedAnimationTypesContains(key) {
			walkAnimationValue(v, seen)
		}
	}
	walkAnimationValue(bag.Get("animations"), seen)

	for _, pose := range bag.Get("poses").Map() {
		walkAnimationValue(pose.Get("quirks"), seen)
		walkAnimationValue(pose.Get("animations"), seen)
	}

	return refs
}

func definedAnimationTypesContains(key string) bool {
	for _, t := range definedAnimationTypes {
		if t == key {
			return true
		}
	}
	return false
}

// walkAnimationValue recurses over a value shaped as a bare string, a list
// of strings, or a dict of strings/lists, calling onLeaf with every leaf
// string found.
func walkAnimationValue(v jsonio.Bag, onLeaf func(string)) {
	if s := v.String(""); s != "" {
		onLeaf(s)
		return
	}
	if v.IsSlice() {
		for _, item := range v.Slice() {
			walkAnimationValue(item, onLeaf)
		}
		return
	}
	if v.IsMap() {
		for _, item := range v.Map() {
			walkAnimationValue(item, onLeaf)
		}
	}
}

// parseBedrockRef extracts (group, move) from a quirk/animation expression
// of the form `q.bedrock(...)`, `q.bedrock_quirk(...)`, or `bedrock(...)`:
// the first two comma-separated arguments inside the parens, with quotes
// and whitespace stripped.
func parseBedrockRef(expr string) (animRef, bool) {
	trimmed := strings.TrimSpace(expr)
	isBedrock := strings.HasPrefix(trimmed, "q.bedrock_quirk") ||
		strings.HasPrefix(trimmed, "q.bedrock") ||
		strings.HasPrefix(trimmed, "bedrock")
	if !isBedrock {
		return animRef{}, false
	}
	open := strings.Index(trimmed, "(")
	shut := strings.LastIndex(trimmed, ")")
	if open < 0 || shut < 0 || shut <= open {
		return animRef{}, false
	}
	args := strings.Split(trimmed[open+1:shut], ",")
	if len(args) < 2 {
		return animRef{}, false
	}
	group := unquote(args[0])
	move := unquote(args[1])
	if group == "" || move == "" {
		return animRef{}, false
	}
	return animRef{group: group, move: move}, true
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return s
}

// orphanSweep binds every animation group present in idx but never
// requested by a poser back onto its named entity: the group splits on "_"
// into an entity name and optional aspect, and is bound to the matching
// resolver by aspect, or resolver 0 by default, creating it if absent.
func orphanSweep(pack *model.Pack, idx *AnimationIndex, accessed map[string]bool) {
	for group, moves := range idx.Present {
		if accessed[group] || group == "__null__" {
			continue
		}
		entityName, aspect, _ := strings.Cut(group, "_")
		e, ok := pack.Entities[entityName]
		if !ok {
			continue
		}

		re := resolverForAspect(e, aspect)
		for _, paths := range moves {
			for p := range paths {
				re.Animations[p] = true
			}
		}
		animLog.Printf("orphan animation group %s bound to %s resolver %d", group, entityName, re.Order)
	}
}

func resolverForAspect(e *model.Entity, aspect string) *model.ResolverEntry {
	if aspect != "" {
		for _, re := range e.Resolvers {
			if re.Aspects[aspect] {
				return re
			}
		}
	}
	if re, ok := e.Resolvers[0]; ok {
		return re
	}
	re := model.NewResolverEntry(0, "", e, e.Pack)
	e.AddResolver(re)
	return re
}
