// Package pipeline wires the Archive Extractor, Layout Prober, every
// pkg/ingest binder, and the CHOOSE/MERGE resolution policies into one
// run: from a working directory full of pack sources to a fully ingested
// and resolved set of Packs ready for pkg/export.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/packforge/combiner/pkg/archive"
	"github.com/packforge/combiner/pkg/ingest"
	"github.com/packforge/combiner/pkg/jsonio"
	"github.com/packforge/combiner/pkg/layout"
	"github.com/packforge/combiner/pkg/logger"
	"github.com/packforge/combiner/pkg/model"
	"github.com/packforge/combiner/pkg/resolve"
	"github.com/packforge/combiner/pkg/settings"
)

var pipeLog = logger.New("pipeline:run")

// Result is everything a resolved run produces, handed to pkg/export.
type Result struct {
	Packs  []*model.Pack
	Merged map[string]*resolve.MergedEntity // nil unless cfg.OpMode == MERGE
}

// Ingest extracts and binds every pack source under workDir (applying order
// if non-empty, else discovery order) into a fully populated []*model.Pack,
// not yet resolved.
func Ingest(workDir string, order []string, warn jsonio.WarnFunc) ([]*model.Pack, error) {
	sources, err := archive.DiscoverPackSources(workDir)
	if err != nil {
		return nil, fmt.Errorf("discovering pack sources: %w", err)
	}

	extractionRoot := filepath.Join(workDir, "_extracted")
	if err := os.MkdirAll(extractionRoot, 0o755); err != nil {
		return nil, fmt.Errorf("creating extraction root: %w", err)
	}

	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = archive.DisplayName(src)
	}
	if len(order) > 0 {
		names = settings.ApplyLoadOrder(names, order, func(msg string) { pipeLog.Warnf("%s", msg) })
	}
	bySourceName := make(map[string]string, len(sources))
	for _, src := range sources {
		bySourceName[archive.DisplayName(src)] = src
	}

	var packs []*model.Pack
	for _, name := range names {
		src, ok := bySourceName[name]
		if !ok {
			continue
		}
		pack, err := ingestOne(src, extractionRoot, warn)
		if err != nil {
			return nil, fmt.Errorf("ingesting %s: %w", name, err)
		}
		packs = append(packs, pack)
		pipeLog.Printf("ingested pack %s (base=%v mod=%v entities=%d)", pack.DisplayName, pack.IsBase, pack.IsMod, len(pack.Entities))
	}
	return packs, nil
}

func ingestOne(source, extractionRoot string, warn jsonio.WarnFunc) (*model.Pack, error) {
	root, err := archive.Extract(source, extractionRoot)
	if err != nil {
		return nil, err
	}

	loc, isBase, isMod := layout.Probe(root)
	displayName := archive.DisplayName(source)
	if isBase {
		displayName = "BASE"
	}
	pack := model.NewPack(displayName, root)
	pack.Locations = loc
	pack.IsBase = isBase
	pack.IsMod = isMod

	if err := forEachDir(loc.SpeciesFeatures, func(dir string) error {
		return ingest.LoadFeatureRegistry(pack, dir, warn)
	}); err != nil {
		return nil, err
	}
	if err := forEachDir(loc.SpeciesFeatureAssignments, func(dir string) error {
		return ingest.LoadFeatureAssignments(pack, dir, warn)
	}); err != nil {
		return nil, err
	}
	if err := forEachDir(loc.Species, func(dir string) error {
		return ingest.LoadSpecies(pack, dir, warn)
	}); err != nil {
		return nil, err
	}
	if err := forEachDir(loc.SpeciesAdditions, func(dir string) error {
		return ingest.LoadSpeciesAdditions(pack, dir, warn)
	}); err != nil {
		return nil, err
	}
	if err := forEachDir(loc.SpawnPoolWorld, func(dir string) error {
		return ingest.LoadSpawns(pack, dir, warn)
	}); err != nil {
		return nil, err
	}

	idx := ingest.BuildResolverIndexes(loc)
	if err := forEachDir(loc.Resolvers, func(dir string) error {
		return ingest.LoadResolvers(pack, dir, loc, idx, warn)
	}); err != nil {
		return nil, err
	}

	animIdx, err := ingest.BuildAnimationIndex(loc.Animations, warn)
	if err != nil {
		return nil, err
	}
	ingest.LinkAnimations(pack, animIdx)

	if err := ingest.LoadSounds(pack, loc, warn); err != nil {
		return nil, err
	}
	if err := forEachDir(loc.Lang, func(dir string) error {
		return ingest.LoadLang(pack, dir, warn)
	}); err != nil {
		return nil, err
	}

	ingest.DetectPseudoforms(pack)
	return pack, nil
}

func forEachDir(dirs map[string]bool, fn func(dir string) error) error {
	for dir := range dirs {
		if err := fn(dir); err != nil {
			return err
		}
	}
	return nil
}

// Resolve runs the configured resolution policy (CHOOSE or MERGE) over
// packs and computes evolution-request accounting afterward, since that
// tally depends on final selection state.
func Resolve(packs []*model.Pack, cfg settings.Settings, chooser resolve.Chooser) (*Result, error) {
	res := &Result{Packs: packs}

	// Seed request counters before resolution: the two-pack rule chain
	// reads outstanding evolution requests while picking.
	for _, p := range packs {
		ingest.ComputeEvolutionRequests(p)
	}

	switch cfg.OpMode {
	case settings.ModeMerge:
		merged, err := resolve.Merge(packs, cfg, chooser)
		if err != nil {
			return nil, fmt.Errorf("running MERGE: %w", err)
		}
		res.Merged = merged
		for _, p := range packs {
			for name, e := range p.Entities {
				m, ok := merged[name]
				if !ok {
					continue
				}
				e.MergePick = m.GraphicsPick
				if m.GraphicsPick == p.DisplayName {
					e.Selected = true
				}
			}
		}
	default:
		if err := resolve.Choose(packs, cfg, chooser); err != nil {
			return nil, fmt.Errorf("running CHOOSE: %w", err)
		}
	}

	for _, p := range packs {
		ingest.ComputeEvolutionRequests(p)
	}
	return res, nil
}
