package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/packforge/combiner/pkg/archive"
	"github.com/packforge/combiner/pkg/settings"
)

func newLoadOrderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load-order",
		Short: "View or rewrite the persisted pack load order (_load_order.json)",
	}

	cmd.AddCommand(newLoadOrderShowCommand())
	cmd.AddCommand(newLoadOrderSetCommand())
	return cmd
}

func newLoadOrderShowCommand() *cobra.Command {
	var workDir string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective load order: persisted order, then discovered packs not yet named",
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := archive.DiscoverPackSources(workDir)
			if err != nil {
				return err
			}
			discovered := make([]string, len(sources))
			for i, src := range sources {
				discovered[i] = archive.DisplayName(src)
			}

			order, err := settings.LoadOrder(workDir)
			if err != nil {
				return err
			}
			effective := settings.ApplyLoadOrder(discovered, order, func(msg string) {
				fmt.Fprintf(os.Stderr, "--! %s\n", msg)
			})
			for i, name := range effective {
				fmt.Printf("%d. %s\n", i+1, name)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&workDir, "dir", "d", ".", "working directory")
	return cmd
}

func newLoadOrderSetCommand() *cobra.Command {
	var workDir string
	cmd := &cobra.Command{
		Use:   "set <pack-name>...",
		Short: "Persist an explicit pack load order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return settings.SaveLoadOrder(workDir, args)
		},
	}
	cmd.Flags().StringVarP(&workDir, "dir", "d", ".", "working directory")
	return cmd
}
