// Package layout implements the Layout Prober: given an
// extracted pack root, it infers the well-known sub-locations and classifies
// the pack as base/mod/neither, tolerating both the direct assets/data
// layout and mods that nest their content under a different namespace.
package layout

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/packforge/combiner/pkg/logger"
	"github.com/packforge/combiner/pkg/model"
)

var probeLog = logger.New("layout:prober")

// dataKeys are the data/cobblemon sub-locations probed for.
var dataKeys = []string{
	"species", "species_additions", "spawn_pool_world",
	"species_features", "species_feature_assignments",
}

// Probe infers a Locations tree rooted at root and classifies is_base/is_mod.
func Probe(root string) (loc *model.Locations, isBase bool, isMod bool) {
	loc = model.NewLocations(root)

	hasAssets := exists(filepath.Join(root, "assets"))
	hasData := exists(filepath.Join(root, "data"))
	hasCommon := exists(filepath.Join(root, "common"))

	effectiveRoot := root
	if !hasAssets && !hasData && hasCommon {
		// Pivot convention: base packs ship their content
		// under common/src/main/resources.
		pivot := filepath.Join(root, "common", "src", "main", "resources")
		if exists(pivot) {
			effectiveRoot = pivot
			isBase = true
		}
	}

	hasLicense := exists(filepath.Join(root, "LICENSE"))
	if hasLicense {
		if matches, _ := doublestar.Glob(os.DirFS(root), "**/*cobblemon-common*"); len(matches) > 0 {
			isBase = true
		}
	}
	if id := fabricModID(root); id == "cobblemon" {
		isBase = true
	}

	hasFabricModJSON := exists(filepath.Join(root, "fabric.mod.json"))
	if hasLicense || hasFabricModJSON {
		isMod = true
	}

	probeAssets(effectiveRoot, loc)
	probeData(effectiveRoot, loc)

	probeLog.Printf("probed %s: is_base=%v is_mod=%v", root, isBase, isMod)
	return loc, isBase, isMod
}

func probeAssets(root string, loc *model.Locations) {
	assetsDir := filepath.Join(root, "assets")
	namespaces, err := os.ReadDir(assetsDir)
	if err != nil {
		return
	}
	for _, ns := range namespaces {
		if !ns.IsDir() {
			continue
		}
		nsPath := filepath.Join(assetsDir, ns.Name())

		bedrockRoot := findFirstExisting(nsPath, "bedrock/pokemon", "bedrock")
		if bedrockRoot != "" {
			addAll(loc.Animations, filepath.Join(bedrockRoot, "animations"))
			addAll(loc.Models, filepath.Join(bedrockRoot, "models"))
			addAll(loc.Posers, filepath.Join(bedrockRoot, "posers"))
			if d := findFirstExisting(bedrockRoot, "resolvers", "species"); d != "" {
				addAll(loc.Resolvers, d)
			}
		}

		addAll(loc.Lang, filepath.Join(nsPath, "lang"))
		addAll(loc.Textures, filepath.Join(nsPath, "textures", "pokemon"))
		addAll(loc.Sounds, filepath.Join(nsPath, "sounds", "pokemon"))

		soundsJSON := filepath.Join(nsPath, "sounds.json")
		if exists(soundsJSON) {
			loc.SoundsJSON = soundsJSON
		}
	}
}

func probeData(root string, loc *model.Locations) {
	dataDir := filepath.Join(root, "data")
	cobblemonDir := filepath.Join(dataDir, "cobblemon")
	if probeDataKeys(cobblemonDir, loc) {
		return
	}

	// Mod-shape: any other namespace under data/ carrying the same keys.
	namespaces, err := os.ReadDir(dataDir)
	if err != nil {
		return
	}
	for _, ns := range namespaces {
		if !ns.IsDir() || ns.Name() == "cobblemon" {
			continue
		}
		if probeDataKeys(filepath.Join(dataDir, ns.Name()), loc) {
			return
		}
	}
}

func probeDataKeys(dir string, loc *model.Locations) bool {
	found := false
	for _, key := range dataKeys {
		p := filepath.Join(dir, key)
		if !exists(p) {
			continue
		}
		found = true
		switch key {
		case "species":
			addAll(loc.Species, p)
		case "species_additions":
			addAll(loc.SpeciesAdditions, p)
		case "spawn_pool_world":
			addAll(loc.SpawnPoolWorld, p)
		case "species_features":
			addAll(loc.SpeciesFeatures, p)
		case "species_feature_assignments":
			addAll(loc.SpeciesFeatureAssignments, p)
		}
	}
	return found
}

// fabricModID returns the "id" field declared by fabric.mod.json at root, if
// any (used to detect the base pack's own namespace during classification).
func fabricModID(root string) string {
	raw, err := os.ReadFile(filepath.Join(root, "fabric.mod.json"))
	if err != nil {
		return ""
	}
	// A minimal scan avoids pulling in the full JSON decoder for a single
	// field lookup during classification, which runs before the walker.
	s := string(raw)
	idx := strings.Index(s, `"id"`)
	if idx < 0 {
		return ""
	}
	rest := s[idx+len(`"id"`):]
	q1 := strings.Index(rest, `"`)
	if q1 < 0 {
		return ""
	}
	rest = rest[q1+1:]
	q2 := strings.Index(rest, `"`)
	if q2 < 0 {
		return ""
	}
	return rest[:q2]
}

func findFirstExisting(root string, candidates ...string) string {
	for _, c := range candidates {
		p := filepath.Join(root, filepath.FromSlash(c))
		if exists(p) {
			return p
		}
	}
	return ""
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func addAll(set map[string]bool, dir string) {
	if !exists(dir) {
		return
	}
	set[dir] = true
}
