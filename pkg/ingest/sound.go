package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/packforge/combiner/pkg/jsonio"
	"github.com/packforge/combiner/pkg/logger"
	"github.com/packforge/combiner/pkg/model"
)

var soundLog = logger.New("ingest:sound_binder")

// LoadSounds reads loc.SoundsJSON (if present) to assign sounds by entity
// and move, then sweeps every remaining .ogg file in loc.Sounds by filename
// convention.
func LoadSounds(pack *model.Pack, loc *model.Locations, warn jsonio.WarnFunc) error {
	assigned := map[string]bool{}

	if loc.SoundsJSON != "" {
		bag, err := jsonio.LoadFile(loc.SoundsJSON)
		if err != nil {
			if warn != nil {
				warn(loc.SoundsJSON, err)
			}
		} else {
			if m, ok := bag.Raw().(map[string]any); ok {
				pack.SoundsJSON = m
			}
			bindSoundsJSON(pack, loc, bag, assigned)
		}
	}

	sweepUnassignedSounds(pack, loc, assigned)
	return nil
}

func bindSoundsJSON(pack *model.Pack, loc *model.Locations, bag jsonio.Bag, assigned map[string]bool) {
	for key, entry := range bag.Map() {
		parts := strings.Split(key, ".")
		var entityName, move string
		switch {
		case len(parts) == 1:
			entityName = parts[0]
		case len(parts) >= 3 && parts[0] == "pokemon":
			entityName, move = parts[1], parts[2]
		default:
			continue
		}

		e := pack.EntityOrCreate(entityName)
		if e.SoundEntry == nil {
			e.SoundEntry = model.NewSoundEntry(entityName)
		}

		for _, raw := range entry.Get("sounds").StringSlice() {
			tail := raw
			if i := strings.Index(raw, ":"); i >= 0 {
				tail = raw[i+1:]
			}
			if !strings.HasSuffix(tail, ".ogg") {
				tail += ".ogg"
			}
			path := soundPath(loc, tail)
			assigned[path] = true
			if move != "" {
				e.SoundEntry.AddMoveSound(move, path)
			} else {
				e.SoundEntry.Unassigned[path] = true
			}
		}
	}
}

func soundPath(loc *model.Locations, tail string) string {
	for dir := range loc.Sounds {
		return filepath.Join(dir, filepath.FromSlash(tail))
	}
	return tail
}

// sweepUnassignedSounds walks every file under loc.Sounds not already
// assigned from sounds.json, keying it by its parent directory name (or the
// first underscore-segment of its filename when the parent is literally
// "pokemon"), attaching it as a move sound when the stem matches
// "<name>_<move>", else as unassigned.
func sweepUnassignedSounds(pack *model.Pack, loc *model.Locations, assigned map[string]bool) {
	for dir := range loc.Sounds {
		filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() || assigned[path] {
				return nil
			}
			if strings.ToLower(filepath.Ext(path)) != ".ogg" {
				return nil
			}

			stem := model.StemName(path)
			parent := filepath.Base(filepath.Dir(path))

			var entityName string
			if parent == "pokemon" {
				entityName, _, _ = strings.Cut(stem, "_")
			} else {
				entityName = parent
			}

			e := pack.EntityOrCreate(entityName)
			if e.SoundEntry == nil {
				e.SoundEntry = model.NewSoundEntry(entityName)
			}

			if name, move, ok := strings.Cut(stem, "_"); ok && name == entityName {
				e.SoundEntry.AddMoveSound(move, path)
			} else {
				e.SoundEntry.Unassigned[path] = true
			}
			return nil
		})
	}
	soundLog.Printf("swept unassigned sounds for pack %s", pack.DisplayName)
}
