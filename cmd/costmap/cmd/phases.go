package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aecstation/costmap/pkg/phases"
)

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "List the built-in analysis phase presets",
	RunE: func(_ *cobra.Command, _ []string) error {
		for _, cfg := range phases.List() {
			fmt.Printf("%s\n  %s\n", cfg.Name, cfg.Description)
			fmt.Printf("  properties: %v (scope %s), names: %v, quantity tolerance: %g\n\n",
				cfg.CheckProperties, cfg.PropertyScope, cfg.CheckNames, cfg.QuantityTolerance)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(phasesCmd)
}
