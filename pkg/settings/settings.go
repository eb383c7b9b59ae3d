// Package settings holds the persisted, runtime-mutable run configuration
// and the pack load order, plus their validation.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/packforge/combiner/pkg/logger"
)

var settingsLog = logger.New("settings")

// OpMode selects the active resolution policy.
type OpMode string

const (
	ModeChoose OpMode = "CHOOSE"
	ModeMerge  OpMode = "MERGE"
)

// Settings is the full persisted, runtime-mutable configuration snapshot.
type Settings struct {
	OpMode                    OpMode `json:"OP_MODE"`
	PokedexFix                bool   `json:"POKEDEX_FIX"`
	ExcludePseudoforms        bool   `json:"EXCLUDE_PSEUDOFORMS"`
	ProcessMods               bool   `json:"PROCESS_MODS"`
	CombinePokemonMoves       bool   `json:"COMBINE_POKEMON_MOVES"`
	KeepDuplicateSASOnMove    bool   `json:"KEEP_DUPLICATE_SAS_ON_MOVE"`
	KeepDuplicateSpawnsOnMove bool   `json:"KEEP_DUPLICATE_SPAWNS_ON_MOVE"`
	SpeciesStrictKeyMatch     bool   `json:"SPECIES_STRICT_KEY_MATCH"`
	ShowWarnings              bool   `json:"SHOW_WARNINGS"`
	ShowHelperText            bool   `json:"SHOW_HELPER_TEXT"`
	AutoStart                 bool   `json:"AUTO_START"`
	AutoLoadOrderMode         bool   `json:"AUTO_LOAD_ORDER_MODE"`
	AlternateIcon             bool   `json:"ALTERNATE_ICON"`
}

// Default returns the out-of-the-box settings snapshot.
func Default() Settings {
	return Settings{
		OpMode:         ModeMerge,
		PokedexFix:     true,
		ShowWarnings:   true,
		ShowHelperText: true,
	}
}

// Validate enforces the declared dependency rules between fields: it
// reports an error rather than silently coercing, since a snapshot taken
// mid-edit should never reach the resolution phase in a state its own
// settings menu wouldn't have allowed.
func (s Settings) Validate() error {
	if s.ExcludePseudoforms && !s.PokedexFix {
		return fmt.Errorf("EXCLUDE_PSEUDOFORMS requires POKEDEX_FIX")
	}
	return nil
}

// EffectiveKeepDuplicateSAS reports whether KEEP_DUPLICATE_SAS_ON_MOVE has
// any effect: the flag is only meaningful in CHOOSE mode.
func (s Settings) EffectiveKeepDuplicateSAS() bool {
	return s.OpMode == ModeChoose && s.KeepDuplicateSASOnMove
}

// EffectiveKeepDuplicateSpawns mirrors EffectiveKeepDuplicateSAS for
// KEEP_DUPLICATE_SPAWNS_ON_MOVE.
func (s Settings) EffectiveKeepDuplicateSpawns() bool {
	return s.OpMode == ModeChoose && s.KeepDuplicateSpawnsOnMove
}

// Load reads settings.json from workDir, falling back to Default() if the
// file is absent.
func Load(workDir string) (Settings, error) {
	path := filepath.Join(workDir, "settings.json")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("reading %s: %w", path, err)
	}

	s := Default()
	if err := json.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := ValidateAgainstSchema(raw); err != nil {
		return Settings{}, fmt.Errorf("schema validation of %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Save persists s as settings.json under workDir.
func Save(workDir string, s Settings) error {
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(workDir, "settings.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	settingsLog.Printf("saved settings to %s", path)
	return nil
}

// LoadOrder reads _load_order.json from workDir: a JSON array of pack
// display names giving the desired iteration order. A missing file yields
// an empty order, meaning "use discovery order".
func LoadOrder(workDir string) ([]string, error) {
	path := filepath.Join(workDir, "_load_order.json")
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var order []string
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return order, nil
}

// SaveLoadOrder persists order as _load_order.json under workDir.
func SaveLoadOrder(workDir string, order []string) error {
	raw, err := json.MarshalIndent(order, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(workDir, "_load_order.json"), raw, 0o644)
}

// ApplyLoadOrder reorders discovered display names per order: named packs
// come first in declared order, skipping names order doesn't mention as
// present; names in order but not discovered are warned about; discovered
// names absent from order are appended deterministically (discovery order
// preserved) at the end.
func ApplyLoadOrder(discovered []string, order []string, warn func(string)) []string {
	present := make(map[string]bool, len(discovered))
	for _, name := range discovered {
		present[name] = true
	}

	var out []string
	used := map[string]bool{}
	for _, name := range order {
		if !present[name] {
			if warn != nil {
				warn(fmt.Sprintf("load order names unknown pack %q", name))
			}
			continue
		}
		out = append(out, name)
		used[name] = true
	}
	for _, name := range discovered {
		if !used[name] {
			out = append(out, name)
		}
	}
	return out
}
