package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/packforge/combiner/pkg/settings"
)

func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "View or edit the persisted run settings",
	}

	cmd.AddCommand(newSettingsShowCommand())
	cmd.AddCommand(newSettingsSetCommand())
	return cmd
}

func newSettingsShowCommand() *cobra.Command {
	var workDir string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings.json (or its defaults)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.Load(workDir)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
			fmt.Fprintf(w, "OP_MODE\t%s\n", cfg.OpMode)
			fmt.Fprintf(w, "POKEDEX_FIX\t%v\n", cfg.PokedexFix)
			fmt.Fprintf(w, "EXCLUDE_PSEUDOFORMS\t%v\n", cfg.ExcludePseudoforms)
			fmt.Fprintf(w, "PROCESS_MODS\t%v\n", cfg.ProcessMods)
			fmt.Fprintf(w, "COMBINE_POKEMON_MOVES\t%v\n", cfg.CombinePokemonMoves)
			fmt.Fprintf(w, "KEEP_DUPLICATE_SAS_ON_MOVE\t%v\n", cfg.KeepDuplicateSASOnMove)
			fmt.Fprintf(w, "KEEP_DUPLICATE_SPAWNS_ON_MOVE\t%v\n", cfg.KeepDuplicateSpawnsOnMove)
			fmt.Fprintf(w, "SPECIES_STRICT_KEY_MATCH\t%v\n", cfg.SpeciesStrictKeyMatch)
			fmt.Fprintf(w, "SHOW_WARNINGS\t%v\n", cfg.ShowWarnings)
			fmt.Fprintf(w, "SHOW_HELPER_TEXT\t%v\n", cfg.ShowHelperText)
			fmt.Fprintf(w, "AUTO_START\t%v\n", cfg.AutoStart)
			fmt.Fprintf(w, "AUTO_LOAD_ORDER_MODE\t%v\n", cfg.AutoLoadOrderMode)
			fmt.Fprintf(w, "ALTERNATE_ICON\t%v\n", cfg.AlternateIcon)
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&workDir, "dir", "d", ".", "working directory")
	return cmd
}

func newSettingsSetCommand() *cobra.Command {
	var workDir, opMode string
	var pokedexFix, excludePseudoforms, processMods bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Edit one or more settings and persist the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.Load(workDir)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("op-mode") {
				cfg.OpMode = settings.OpMode(opMode)
			}
			if cmd.Flags().Changed("pokedex-fix") {
				cfg.PokedexFix = pokedexFix
			}
			if cmd.Flags().Changed("exclude-pseudoforms") {
				cfg.ExcludePseudoforms = excludePseudoforms
			}
			if cmd.Flags().Changed("process-mods") {
				cfg.ProcessMods = processMods
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return settings.Save(workDir, cfg)
		},
	}

	cmd.Flags().StringVarP(&workDir, "dir", "d", ".", "working directory")
	cmd.Flags().StringVar(&opMode, "op-mode", "", "CHOOSE or MERGE")
	cmd.Flags().BoolVar(&pokedexFix, "pokedex-fix", false, "force `implemented` on exported species")
	cmd.Flags().BoolVar(&excludePseudoforms, "exclude-pseudoforms", false, "mark pseudoforms unimplemented (requires pokedex-fix)")
	cmd.Flags().BoolVar(&processMods, "process-mods", false, "include mod packs in resolution")
	return cmd
}
