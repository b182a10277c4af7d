package main

import (
	"github.com/spf13/cobra"

	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/config"
)

// app carries state shared by every subcommand.
type app struct {
	catalogPath string
	catalog     *config.Catalog
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "impactctl",
		Short:         "Estimate asteroid impact effects and manage regression fixtures",
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			catalog, err := config.LoadCatalog(a.catalogPath)
			if err != nil {
				return err
			}
			a.catalog = catalog
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.catalogPath, "catalog", "", "catalog YAML overriding the embedded densities, policy and presets")

	root.AddCommand(
		newCalcCmd(a),
		newCompositionsCmd(a),
		newPresetsCmd(a),
		newFixturesCmd(a),
		newVerifyCmd(a),
	)
	return root
}
