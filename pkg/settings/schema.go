package settings

import (
	"bytes"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/packforge/combiner/pkg/logger"
)

var schemaLog = logger.New("settings:schema")

// settingsSchemaJSON declares the shape the settings menu is allowed to
// persist: every field boolean except OP_MODE, which is one of the two
// resolution policies.
const settingsSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "OP_MODE": {"type": "string", "enum": ["CHOOSE", "MERGE"]},
    "POKEDEX_FIX": {"type": "boolean"},
    "EXCLUDE_PSEUDOFORMS": {"type": "boolean"},
    "PROCESS_MODS": {"type": "boolean"},
    "COMBINE_POKEMON_MOVES": {"type": "boolean"},
    "KEEP_DUPLICATE_SAS_ON_MOVE": {"type": "boolean"},
    "KEEP_DUPLICATE_SPAWNS_ON_MOVE": {"type": "boolean"},
    "SPECIES_STRICT_KEY_MATCH": {"type": "boolean"},
    "SHOW_WARNINGS": {"type": "boolean"},
    "SHOW_HELPER_TEXT": {"type": "boolean"},
    "AUTO_START": {"type": "boolean"},
    "AUTO_LOAD_ORDER_MODE": {"type": "boolean"},
    "ALTERNATE_ICON": {"type": "boolean"}
  },
  "additionalProperties": false
}`

var compiledSettingsSchema = compileSettingsSchema()

func compileSettingsSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader([]byte(settingsSchemaJSON)))
	if err != nil {
		panic(fmt.Sprintf("settings: invalid embedded schema: %v", err))
	}
	const resourceURL = "settings.schema.json"
	if err := compiler.AddResource(resourceURL, doc); err != nil {
		panic(fmt.Sprintf("settings: adding embedded schema: %v", err))
	}
	schema, err := compiler.Compile(resourceURL)
	if err != nil {
		panic(fmt.Sprintf("settings: compiling embedded schema: %v", err))
	}
	return schema
}

// ValidateAgainstSchema checks raw settings.json bytes against the declared
// settings schema before they're trusted as a Settings value.
func ValidateAgainstSchema(raw []byte) error {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parsing settings for schema validation: %w", err)
	}
	if err := compiledSettingsSchema.Validate(instance); err != nil {
		schemaLog.Warnf("settings failed schema validation: %v", err)
		return err
	}
	return nil
}
