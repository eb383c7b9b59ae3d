package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packforge/combiner/pkg/console"
	"github.com/packforge/combiner/pkg/export"
	"github.com/packforge/combiner/pkg/jsonio"
	"github.com/packforge/combiner/pkg/logger"
	"github.com/packforge/combiner/pkg/pipeline"
	"github.com/packforge/combiner/pkg/resolve"
	"github.com/packforge/combiner/pkg/settings"
)

var runLog = logger.New("cmd:run")

func newRunCommand() *cobra.Command {
	var workDir, outputDir string
	var yes bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest every pack under the working directory and export the combined result",
		Long: `Extracts and ingests every *.zip, *.jar, and subdirectory pack found under
the working directory, resolves conflicting entities under the configured
OP_MODE (CHOOSE or MERGE), and writes the combined pack to output/.

Packs named in _load_order.json (if present) are processed in that order;
any pack left unmentioned is appended in discovery order.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(workDir, outputDir, yes)
		},
	}

	cmd.Flags().StringVarP(&workDir, "dir", "d", ".", "working directory containing pack sources")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: <dir>/output)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "never prompt; error out instead of asking on a residual conflict")

	return cmd
}

func runPipeline(workDir, outputDir string, yes bool) error {
	if outputDir == "" {
		outputDir = workDir + string(os.PathSeparator) + "output"
	}

	cfg, err := settings.Load(workDir)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	order, err := settings.LoadOrder(workDir)
	if err != nil {
		return fmt.Errorf("loading load order: %w", err)
	}

	warn := func(path string, cause error) {
		if cfg.ShowWarnings {
			runLog.Warnf("%s: %v", path, cause)
		}
	}

	console.ShowWelcomeBanner(fmt.Sprintf("Combining packs from %s (%s mode)", workDir, cfg.OpMode))

	packs, err := pipeline.Ingest(workDir, order, jsonio.WarnFunc(warn))
	if err != nil {
		return err
	}

	baseCount := 0
	for _, p := range packs {
		if p.IsBase {
			baseCount++
		}
	}
	if baseCount > 1 {
		return fmt.Errorf("multiple base packs present (%d): aborting before processing", baseCount)
	}

	var chooser resolve.Chooser
	if yes {
		chooser = console.NewBatchChooser()
	} else {
		chooser = console.NewInteractiveChooser()
	}

	result, err := pipeline.Resolve(packs, cfg, chooser)
	if err != nil {
		return err
	}

	if err := export.ExportPacks(result.Packs, result.Merged, cfg, export.Options{
		OutputRoot:  outputDir,
		PackFormat:  15,
		Description: "Combined pack",
	}); err != nil {
		return fmt.Errorf("exporting: %w", err)
	}

	fmt.Fprintf(os.Stdout, "combined %d packs into %s\n", len(packs), outputDir)
	return nil
}
