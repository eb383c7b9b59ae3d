package ingest

import (
	"strings"

	"github.com/packforge/combiner/pkg/jsonio"
	"github.com/packforge/combiner/pkg/model"
)

// speciesKeyPrefix precedes the entity-name segment of a lang key of the
// form "cobblemon.species.<name>.<field>"; speciesNameField is the <field>
// that carries the display name.
const (
	speciesKeyPrefix = "cobblemon.species."
	speciesNameField = "name"
)

// LoadLang parses every flat key->string lang file under dir into a
// LangEntry, recording which entity names its keys reference.
func LoadLang(pack *model.Pack, dir string, warn jsonio.WarnFunc) error {
	return jsonio.ForEachJSON(dir, jsonio.Options{Warn: warn}, func(path string, parsed jsonio.Bag) error {
		entry := &model.LangEntry{
			File:        path,
			Source:      map[string]string{},
			EntityNames: map[string]bool{},
		}
		for key, v := range parsed.Map() {
			s := v.String("")
			entry.Source[key] = s
			if name, ok := speciesEntityName(key); ok {
				entry.EntityNames[name] = true
			}
		}
		pack.Langs = append(pack.Langs, entry)
		return nil
	})
}

func speciesEntityName(key string) (string, bool) {
	if !strings.HasPrefix(key, speciesKeyPrefix) {
		return "", false
	}
	rest := key[len(speciesKeyPrefix):]
	name, _, ok := strings.Cut(rest, ".")
	if !ok {
		return "", false
	}
	return name, true
}

// SpeciesNameOverride returns the en_us lang override for entity's display
// name, if any pack lang file carries a
// "cobblemon.species.<internal_name>.name" key.
func SpeciesNameOverride(pack *model.Pack, internalName string) (string, bool) {
	key := speciesKeyPrefix + internalName + "." + speciesNameField
	var best string
	var found bool
	for _, lang := range pack.Langs {
		if !strings.Contains(lang.File, "en_us") {
			continue
		}
		if v, ok := lang.Source[key]; ok {
			best = v
			found = true
		}
	}
	return best, found
}
