package ingest

import (
	"strings"

	"github.com/packforge/combiner/pkg/jsonio"
	"github.com/packforge/combiner/pkg/logger"
	"github.com/packforge/combiner/pkg/model"
)

var spawnLog = logger.New("ingest:spawn_binder")

// LoadSpawns parses every spawn-pool file under dir and attaches each file
// path to whichever of an entity's forms its pokemon grammar resolves to,
// synthesizing a "--<aspect>" form when nothing matches.
func LoadSpawns(pack *model.Pack, dir string, warn jsonio.WarnFunc) error {
	return jsonio.ForEachJSON(dir, jsonio.Options{Warn: warn}, func(path string, parsed jsonio.Bag) error {
		for _, entry := range parsed.Get("spawns").Slice() {
			token := entry.Get("pokemon").String("")
			if token == "" {
				continue
			}
			name, aspect := parseSpawnPokemon(pack, token)
			if name == "" {
				continue
			}
			e := pack.EntityOrCreate(name)
			bindSpawnToForm(e, aspect, path)
		}
		return nil
	})
}

// parseSpawnPokemon splits a spawn_entry["pokemon"] token into (entity name,
// aspect). Grammar: "<name>[<SP><aspect-expr>]" where the aspect expression
// is a bare token, "<key>=<value>", "form=<value>", or
// "<featName>=<choice>" against a known Feature's aspectFormat template.
func parseSpawnPokemon(pack *model.Pack, token string) (name, aspect string) {
	fields := strings.Fields(token)
	if len(fields) == 0 {
		return "", ""
	}
	name = fields[0]

	if len(fields) > 1 {
		expr := fields[1]
		if key, value, ok := strings.Cut(expr, "="); ok {
			switch {
			case key == "form":
				aspect = value
			case value == "true" || value == "false":
				if value == "true" {
					aspect = key
				}
			default:
				if f := FindFeature(pack, key); f != nil && f.AspectFormat != "" {
					aspect = strings.ReplaceAll(f.AspectFormat, "{{choice}}", value)
				}
			}
		} else {
			aspect = expr
		}
	}

	if aspect == "" {
		if i := strings.Index(name, "_"); i >= 0 {
			return name[:i], name[i+1:]
		}
	}
	return name, aspect
}

// bindSpawnToForm attaches path to every form of e matching aspect (by
// aspect-set membership or form-name equality), synthesizing a form named
// "--<aspect>" if none match, or base_form if aspect is empty.
func bindSpawnToForm(e *model.Entity, aspect, path string) {
	if aspect == "" {
		e.BaseForm().SpawnPool[path] = true
		return
	}

	lower := strings.ToLower(aspect)
	matched := false
	for key, f := range e.Forms {
		if f.HasAspect(aspect) || key == lower {
			f.SpawnPool[path] = true
			matched = true
		}
	}
	if matched {
		return
	}

	f := e.FormOrCreate("--" + aspect)
	f.AddAspect(aspect)
	f.SpawnPool[path] = true
	spawnLog.Printf("synthesized form %s on %s for spawn %s", f.Name, e.InternalName, path)
}
