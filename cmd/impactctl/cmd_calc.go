package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/domain"
)

type calcFlags struct {
	diameter    float64
	velocity    float64
	angle       float64
	density     float64
	composition string
	asJSON      bool
}

func newCalcCmd(a *app) *cobra.Command {
	f := &calcFlags{}
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute the impact report for one scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalc(cmd, a, f)
		},
	}
	cmd.Flags().Float64Var(&f.diameter, "diameter", domain.DefaultDiameterKm, "impactor diameter in km")
	cmd.Flags().Float64Var(&f.velocity, "velocity", domain.DefaultVelocityKmS, "entry velocity in km/s")
	cmd.Flags().Float64Var(&f.angle, "angle", domain.DefaultAngleDegrees, "entry angle above the horizon in degrees")
	cmd.Flags().Float64Var(&f.density, "density", 0, "bulk density in kg/m^3, overrides --composition")
	cmd.Flags().StringVar(&f.composition, "composition", domain.DefaultComposition, "composition name used to look up density")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the full report as JSON")
	return cmd
}

func runCalc(cmd *cobra.Command, a *app, f *calcFlags) error {
	calc, err := a.catalog.Calculator()
	if err != nil {
		return err
	}

	s := domain.Scenario{
		DiameterKm:   &f.diameter,
		VelocityKmS:  &f.velocity,
		AngleDegrees: &f.angle,
		Composition:  f.composition,
	}
	if cmd.Flags().Changed("density") {
		s.DensityKgM3 = &f.density
		if !cmd.Flags().Changed("composition") {
			s.Composition = ""
		}
	}
	if err := s.Validate(); err != nil {
		return err
	}

	in, composition := s.Resolve(a.catalog.DensityTable())
	res, err := calc.Compute(in)
	if err != nil {
		return err
	}
	report := domain.BuildReport(s, composition, in, res)

	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	printReport(out, report)
	return nil
}

func printReport(w io.Writer, r domain.ImpactReport) {
	fmt.Fprintf(w, "Scenario:     %s\n", r.ScenarioID)
	fmt.Fprintf(w, "Input:        %.4g km at %.4g km/s, %.4g deg, %s (%.0f kg/m^3)\n",
		r.Input.DiameterKm, r.Input.VelocityKmS, r.Input.AngleDegrees, r.Composition, r.Input.DensityKgM3)
	fmt.Fprintf(w, "Energy:       %.2f Mt TNT\n", r.Result.EnergyMegatonsTNT)
	fmt.Fprintf(w, "Crater:       %.2f km\n", r.Result.CraterDiameterKm)
	fmt.Fprintf(w, "Magnitude:    %.2f\n", r.Result.EquivalentMagnitude)
	fmt.Fprintf(w, "Damage:       %s (%s)\n", r.Result.DamageLevel, r.Result.DamageDescription)
}
