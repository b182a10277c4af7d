package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCompositionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compositions",
		Short: "List known compositions and their densities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := a.catalog.DensityTable()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COMPOSITION\tDENSITY (kg/m^3)")
			for _, c := range table.Compositions() {
				fmt.Fprintf(tw, "%s\t%.0f\n", c.Name, c.DensityKgM3)
			}
			fmt.Fprintf(tw, "(unknown)\t%.0f\n", table.Fallback())
			return tw.Flush()
		},
	}
}

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the curated asteroid presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDIAMETER (km)\tVELOCITY (km/s)\tCOMPOSITION")
			for _, p := range a.catalog.Presets {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%s\n", p.ID, p.ShortName, p.DiameterKm, p.VelocityKmS, p.Composition)
			}
			return tw.Flush()
		},
	}
}
