// Package export implements the Exporter: it moves every selected file into
// the output tree, repackages each pack's non-empty residue, and emits the
// combined lang/sounds/metadata files the consolidated pack needs.
package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/packforge/combiner/pkg/compare"
	"github.com/packforge/combiner/pkg/logger"
	"github.com/packforge/combiner/pkg/model"
	"github.com/packforge/combiner/pkg/resolve"
	"github.com/packforge/combiner/pkg/settings"
)

var exportLog = logger.New("export:exporter")

// residueExempt are files never swept into a pack's repackaged residue.
var residueExempt = map[string]bool{
	"pack.mcmeta": true,
	"pack.png":    true,
}

// Options controls one export run.
type Options struct {
	OutputRoot  string
	PackFormat  int
	Description string
}

// ExportPacks moves every entity's selected export paths for each pack into
// outputRoot, unlinks the rest, and repackages any remaining residue as
// "[CE]_<packname>.zip" beside outputRoot. merged is nil in
// CHOOSE mode; in MERGE mode it carries each entity's composed species and
// spawn documents, written out alongside the moved graphics files.
func ExportPacks(packs []*model.Pack, merged map[string]*resolve.MergedEntity, cfg settings.Settings, opts Options) error {
	if err := os.RemoveAll(opts.OutputRoot); err != nil {
		return fmt.Errorf("clearing output root: %w", err)
	}
	if err := os.MkdirAll(opts.OutputRoot, 0o755); err != nil {
		return fmt.Errorf("creating output root: %w", err)
	}

	for _, p := range packs {
		if p.IsBase {
			continue
		}
		if p.IsMod && !cfg.ProcessMods {
			continue
		}
		if err := exportPack(p, cfg, opts); err != nil {
			return fmt.Errorf("exporting pack %s: %w", p.DisplayName, err)
		}
	}

	if merged != nil {
		if err := exportMergedSpecies(packs, merged, opts.OutputRoot); err != nil {
			return err
		}
	}

	if err := exportLangs(packs, opts.OutputRoot); err != nil {
		return err
	}
	if err := exportSoundsJSON(packs, opts.OutputRoot); err != nil {
		return err
	}
	if err := exportPackMeta(opts); err != nil {
		return err
	}
	return exportCredits(packs, cfg, opts.OutputRoot)
}

// exportMergedSpecies writes each MERGE-mode entity's composed species
// document and combined spawn pool, overwriting whatever file moveExportFile
// already placed for the graphics-pick pack's own (pre-merge) copy.
func exportMergedSpecies(packs []*model.Pack, merged map[string]*resolve.MergedEntity, outputRoot string) error {
	dexByName := map[string]int{}
	for _, p := range packs {
		for name, e := range p.Entities {
			if e.DexID >= 0 {
				dexByName[name] = e.DexID
			}
		}
	}

	for name, me := range merged {
		if len(me.FinalSpecies) > 0 {
			gen := generationLabel(me.FinalSpecies)
			dir := filepath.Join(outputRoot, "data", "cobblemon", "species", gen)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			raw, err := yaml.MarshalWithOptions(me.FinalSpecies, yaml.JSON())
			if err != nil {
				return err
			}
			if err := os.WriteFile(filepath.Join(dir, name+".json"), raw, 0o644); err != nil {
				return err
			}
		}

		if me.Spawn != nil && me.Spawn.Enabled && len(me.Spawn.Spawns) > 0 {
			dir := filepath.Join(outputRoot, "data", "cobblemon", "spawn_pool_world")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			doc := map[string]any{"spawns": me.Spawn.Spawns}
			if len(me.Spawn.NeededInstalledMods) > 0 {
				doc["neededInstalledMods"] = stringSetSlice(me.Spawn.NeededInstalledMods)
			}
			if len(me.Spawn.NeededUninstalledMods) > 0 {
				doc["neededUninstalledMods"] = stringSetSlice(me.Spawn.NeededUninstalledMods)
			}
			raw, err := yaml.MarshalWithOptions(doc, yaml.JSON())
			if err != nil {
				return err
			}
			fileName := fmt.Sprintf("%04d_%s.json", dexByName[name], name)
			if err := os.WriteFile(filepath.Join(dir, fileName), raw, 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}

// generationLabel returns the first "labels" entry beginning with "gen", or
// "custom" when none is present.
func generationLabel(doc map[string]any) string {
	labels, _ := doc["labels"].([]any)
	for _, l := range labels {
		s, _ := l.(string)
		if strings.HasPrefix(s, "gen") {
			return s
		}
	}
	return "custom"
}

func stringSetSlice(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func exportPack(p *model.Pack, cfg settings.Settings, opts Options) error {
	exportPaths := map[string]bool{}
	for _, e := range p.Entities {
		if !(e.Selected || e.MergePick == p.DisplayName) {
			continue
		}
		for path := range e.AllExportPaths() {
			exportPaths[path] = true
		}
	}

	allPaths := allPackPaths(p)
	deletePaths := map[string]bool{}
	for path := range allPaths {
		if !exportPaths[path] {
			deletePaths[path] = true
		}
	}

	for path := range exportPaths {
		if err := moveExportFile(p, path, cfg, opts.OutputRoot); err != nil {
			return err
		}
	}

	residue := residuePaths(allPaths, exportPaths)
	if len(residue) > 0 {
		if err := repackageResidue(p, residue, opts.OutputRoot); err != nil {
			exportLog.Warnf("could not repackage residue for pack %s: %v", p.DisplayName, err)
		}
	}

	for path := range deletePaths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			exportLog.Warnf("could not delete %s from pack %s: %v", path, p.DisplayName, err)
		}
	}
	pruneEmptyDirs(p.ExtractedRoot)
	return nil
}

// allPackPaths walks the pack's extracted root and returns every file path
// under it, used to compute the delete set as allPaths minus exportPaths.
func allPackPaths(p *model.Pack) map[string]bool {
	out := map[string]bool{}
	filepath.WalkDir(p.ExtractedRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		out[path] = true
		return nil
	})
	return out
}

// residuePaths is what's left of allPaths once exportPaths and the
// residue-exempt files are excluded.
func residuePaths(allPaths, exportPaths map[string]bool) []string {
	var out []string
	for path := range allPaths {
		if exportPaths[path] {
			continue
		}
		if residueExempt[filepath.Base(path)] {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// moveExportFile moves path (relative to its pack's extracted root) into
// outputRoot, renaming on collision in species_additions/spawn_pool_world
// directories when the matching keep-duplicates setting allows it.
func moveExportFile(p *model.Pack, path string, cfg settings.Settings, outputRoot string) error {
	rel, err := filepath.Rel(p.ExtractedRoot, path)
	if err != nil {
		return err
	}
	dest := filepath.Join(outputRoot, rel)

	if _, err := os.Stat(dest); err == nil {
		keepDuplicates := collisionPolicyAllows(rel, cfg)
		if keepDuplicates {
			dest = nextFreeName(dest)
		} else {
			exportLog.Warnf("dropping %s: destination %s already taken", path, dest)
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return copyFile(path, dest)
}

func collisionPolicyAllows(rel string, cfg settings.Settings) bool {
	slashed := filepath.ToSlash(rel)
	switch {
	case strings.Contains(slashed, "species_additions/"):
		return cfg.EffectiveKeepDuplicateSAS()
	case strings.Contains(slashed, "spawn_pool_world/"):
		return cfg.EffectiveKeepDuplicateSpawns()
	default:
		return false
	}
}

func nextFreeName(dest string) string {
	dir := filepath.Dir(dest)
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(filepath.Base(dest), ext)
	for {
		stem = compare.NextCandidateName(stem)
		candidate := filepath.Join(dir, stem+ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

func pruneEmptyDirs(root string) {
	var dirs []string
	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err == nil && d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err == nil && len(entries) == 0 && dir != root {
			os.Remove(dir)
		}
	}
}

// repackageResidue compresses every remaining file of a pack's extracted
// tree (minus pack.mcmeta/pack.png) into "[CE]_<packname>.zip" next to
// outputRoot.
func repackageResidue(p *model.Pack, residue []string, outputRoot string) error {
	zipPath := filepath.Join(filepath.Dir(outputRoot), fmt.Sprintf("[CE]_%s.zip", p.DisplayName))
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer out.Close()

	w := zip.NewWriter(out)
	defer w.Close()

	for _, path := range residue {
		rel, err := filepath.Rel(p.ExtractedRoot, path)
		if err != nil {
			continue
		}
		f, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			continue
		}
		_, err = io.Copy(f, in)
		in.Close()
		if err != nil {
			return err
		}
	}
	exportLog.Printf("repackaged %d residue files for pack %s -> %s", len(residue), p.DisplayName, zipPath)
	return nil
}

// exportLangs combines every pack's lang entries by file name, writing one
// JSON object per language file under assets/cobblemon/lang.
func exportLangs(packs []*model.Pack, outputRoot string) error {
	combined := map[string]map[string]string{}
	for _, p := range packs {
		for _, entry := range p.Langs {
			name := filepath.Base(entry.File)
			if combined[name] == nil {
				combined[name] = map[string]string{}
			}
			for k, v := range entry.Source {
				combined[name][k] = v
			}
		}
	}
	if len(combined) == 0 {
		return nil
	}

	dir := filepath.Join(outputRoot, "assets", "cobblemon", "lang")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for name, kv := range combined {
		raw, err := yaml.MarshalWithOptions(kv, yaml.JSON())
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, name), raw, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// exportSoundsJSON combines each entity's sound entries: the
// selected/graphics-pick pack's entries for an entity, plus any non-picked
// pack's entries that don't collide by key. No union-by-move merge.
func exportSoundsJSON(packs []*model.Pack, outputRoot string) error {
	combined := map[string]any{}

	for _, wantPicked := range []bool{true, false} {
		for _, p := range packs {
			if p.SoundsJSON == nil {
				continue
			}
			for key, v := range p.SoundsJSON {
				entityName := soundKeyEntity(key)
				e, ok := p.Entities[entityName]
				if !ok {
					continue
				}
				picked := e.Selected || e.MergePick == p.DisplayName
				if picked != wantPicked {
					continue
				}
				if _, exists := combined[key]; exists {
					continue
				}
				combined[key] = v
			}
		}
	}
	if len(combined) == 0 {
		return nil
	}

	dir := filepath.Join(outputRoot, "assets", "cobblemon")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	raw, err := yaml.MarshalWithOptions(combined, yaml.JSON())
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "sounds.json"), raw, 0o644)
}

// soundKeyEntity extracts the entity name segment from a sounds.json key of
// the form "<entity>" or "pokemon.<entity>.<move>" (mirrors
// ingest.bindSoundsJSON's own key grammar).
func soundKeyEntity(key string) string {
	parts := strings.Split(key, ".")
	switch {
	case len(parts) == 1:
		return parts[0]
	case len(parts) >= 3 && parts[0] == "pokemon":
		return parts[1]
	default:
		return ""
	}
}

func exportPackMeta(opts Options) error {
	desc := opts.Description
	if desc == "" {
		desc = "Combined pack"
	}
	meta := map[string]any{
		"pack": map[string]any{
			"pack_format": opts.PackFormat,
			"description": desc,
		},
	}
	raw, err := yaml.MarshalWithOptions(meta, yaml.JSON())
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(opts.OutputRoot, "pack.mcmeta"), raw, 0o644)
}

// exportCredits enumerates every processed pack's contribution tally into
// credits.txt.
func exportCredits(packs []*model.Pack, cfg settings.Settings, outputRoot string) error {
	var b strings.Builder
	b.WriteString("Pack Combiner credits\n\n")
	for _, p := range packs {
		if p.IsBase {
			continue
		}
		if p.IsMod && !cfg.ProcessMods {
			continue
		}
		species, spawns, graphics := 0, 0, 0
		for _, e := range p.Entities {
			if !(e.Selected || e.MergePick == p.DisplayName) {
				continue
			}
			for _, f := range e.Forms {
				if f.Species != nil || f.SpeciesAdditions != nil {
					species++
				}
				if len(f.SpawnPool) > 0 {
					spawns++
				}
			}
			for _, re := range e.Resolvers {
				if re.HasGraphics() {
					graphics++
				}
			}
		}
		fmt.Fprintf(&b, "%s: %d species, %d spawns, %d graphics\n", p.DisplayName, species, spawns, graphics)
	}
	return os.WriteFile(filepath.Join(outputRoot, "credits.txt"), []byte(b.String()), 0o644)
}
