package ingest

import (
	"strings"

	"github.com/packforge/combiner/pkg/logger"
	"github.com/packforge/combiner/pkg/model"
)

var pseudoformLog = logger.New("ingest:pseudoform_detection")

// DetectPseudoforms tallies each Entity's display name within pack
// (preferring the en_us lang override over the species-file name) and, for
// every name shared by more than one Entity, marks every entity except the
// one whose internal_name equals the lower-cased display name as
// is_pseudoform.
func DetectPseudoforms(pack *model.Pack) {
	byName := map[string][]*model.Entity{}
	for _, e := range pack.Entities {
		name := displayNameFor(pack, e)
		if name == "" {
			continue
		}
		byName[name] = append(byName[name], e)
	}

	for name, entities := range byName {
		if len(entities) < 2 {
			continue
		}
		lower := strings.ToLower(name)
		for _, e := range entities {
			if e.InternalName != lower {
				e.IsPseudoform = true
			}
		}
		pseudoformLog.Printf("display name %q shared by %d entities", name, len(entities))
	}
}

func displayNameFor(pack *model.Pack, e *model.Entity) string {
	if override, ok := SpeciesNameOverride(pack, e.InternalName); ok {
		return override
	}
	return e.DisplayName
}
