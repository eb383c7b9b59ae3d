package ingest

import (
	"os"
	"path/filepath"

	"github.com/packforge/combiner/pkg/model"
)

// AssetIndex groups every file found under a set of directories by filename
// stem, so the Visual Resolver Binder can resolve a bare reference like
// "pikachu" to whichever poser/model/texture file actually carries that
// name, without the caller knowing which directory it lives under.
type AssetIndex struct {
	byStem map[string][]string
}

// BuildAssetIndex walks every directory in dirs and indexes its files by
// StemName. Directories that don't exist are skipped silently.
func BuildAssetIndex(dirs map[string]bool) *AssetIndex {
	idx := &AssetIndex{byStem: map[string][]string{}}
	for dir := range dirs {
		filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			stem := model.StemName(path)
			idx.byStem[stem] = append(idx.byStem[stem], path)
			return nil
		})
	}
	return idx
}

// Take returns and removes one path filed under stem, if any remain.
func (a *AssetIndex) Take(stem string) (string, bool) {
	paths := a.byStem[stem]
	if len(paths) == 0 {
		return "", false
	}
	a.byStem[stem] = paths[1:]
	return paths[0], true
}

// Resolve returns the on-disk path an explicit reference points at, either
// joined under one of the given directories or as-is, without consuming it.
// Used to check an explicit reference before falling back to stem lookup.
func Resolve(dirs map[string]bool, explicitPath string) (string, bool) {
	if explicitPath == "" {
		return "", false
	}
	for dir := range dirs {
		joined := filepath.Join(dir, explicitPath)
		if _, err := os.Stat(joined); err == nil {
			return joined, true
		}
	}
	if _, err := os.Stat(explicitPath); err == nil {
		return explicitPath, true
	}
	return "", false
}
