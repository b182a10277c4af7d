package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/domain"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/fixtures"
)

const defaultFixturePath = "data/fixtures/impact_fixtures.json"

func newFixturesCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Regenerate the pinned impact regression fixtures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			calc, err := a.catalog.Calculator()
			if err != nil {
				return err
			}

			// Fixed clock for reproducible computed_at timestamps.
			domain.SetClock(clockwork.NewFakeClockAt(fixtures.GeneratedAt))
			defer domain.SetClock(nil)

			file, err := fixtures.Generate(calc, a.catalog.DensityTable(), a.catalog.Presets)
			if err != nil {
				return err
			}
			if err := fixtures.Write(out, file); err != nil {
				return fmt.Errorf("write fixtures: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d fixtures to %s\n", len(file.Fixtures), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", defaultFixturePath, "output path for the fixture file")
	return cmd
}

// errVerifyFailed is returned when any verification phase reports errors.
var errVerifyFailed = errors.New("fixture verification failed")

// phase tracks pass/fail for a verification phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newVerifyCmd(a *app) *cobra.Command {
	var (
		path string
		tol  float64
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Recompute the pinned fixtures and report numerical drift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			calc, err := a.catalog.Calculator()
			if err != nil {
				return err
			}
			file, err := fixtures.Load(path)
			if err != nil {
				return err
			}

			table := a.catalog.DensityTable()
			phases := []*phase{
				verifyIntegrity(file),
				verifyRecompute(file, calc, table, tol),
				verifyPresetCoverage(file, a.catalog.PresetIDs()),
				verifyMonotonicLabels(file, calc.Policy()),
			}
			if !report(cmd.OutOrStdout(), file, phases) {
				return errVerifyFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "fixtures", defaultFixturePath, "fixture file to verify")
	cmd.Flags().Float64Var(&tol, "tolerance", fixtures.DefaultTolerance, "relative tolerance for float comparisons")
	return cmd
}

func report(w io.Writer, file fixtures.File, phases []*phase) bool {
	fmt.Fprintln(w, "=== Impact Fixture Verification ===")
	fmt.Fprintln(w)

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-32s %s\n", p.name, status)
	}
	fmt.Fprintf(w, "\nFixtures: %d (generated %s)\n", len(file.Fixtures), file.GeneratedAt.Format(time.RFC3339))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll verifications passed.")
	} else {
		fmt.Fprintln(w, "\nVerification FAILED.")
	}
	return allPassed
}

// verifyIntegrity checks the file shape: entries present, names unique, and
// the reference scenario included.
func verifyIntegrity(file fixtures.File) *phase {
	p := &phase{name: "Fixture file integrity"}
	if len(file.Fixtures) == 0 {
		p.errorf("no fixtures in file")
		return p
	}
	seen := make(map[string]bool, len(file.Fixtures))
	for i, f := range file.Fixtures {
		if f.Name == "" {
			p.errorf("fixture %d: missing name", i)
		}
		if seen[f.Name] {
			p.errorf("duplicate fixture name %q", f.Name)
		}
		seen[f.Name] = true
	}
	if !seen["reference"] {
		p.errorf("reference scenario missing")
	}
	return p
}

// verifyRecompute runs every scenario through the calculator again and
// diffs the result against the pinned report.
func verifyRecompute(file fixtures.File, calc *domain.Calculator, table domain.DensityTable, tol float64) *phase {
	p := &phase{name: "Recomputed reports"}
	for _, f := range file.Fixtures {
		got, err := fixtures.Recompute(f.Scenario, calc, table)
		if err != nil {
			p.errorf("%s: %v", f.Name, err)
			continue
		}
		for _, d := range fixtures.Compare(f.Report, got, tol) {
			p.errorf("%s: %s", f.Name, d)
		}
	}
	return p
}

// verifyPresetCoverage checks that every curated preset is pinned.
func verifyPresetCoverage(file fixtures.File, presetIDs []string) *phase {
	p := &phase{name: "Preset coverage"}
	pinned := make(map[string]bool, len(file.Fixtures))
	for _, f := range file.Fixtures {
		pinned[f.Report.ScenarioID] = true
	}
	for _, id := range presetIDs {
		if !pinned[id] {
			p.errorf("preset %s has no fixture", id)
		}
	}
	return p
}

// verifyMonotonicLabels checks that damage classes never decrease as the
// pinned energy increases.
func verifyMonotonicLabels(file fixtures.File, policy domain.DamagePolicy) *phase {
	p := &phase{name: "Damage label monotonicity"}
	sorted := make([]fixtures.Fixture, len(file.Fixtures))
	copy(sorted, file.Fixtures)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Report.Result.EnergyMegatonsTNT < sorted[j].Report.Result.EnergyMegatonsTNT
	})
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if policy.Rank(cur.Report.Result.DamageLevel) < policy.Rank(prev.Report.Result.DamageLevel) {
			p.errorf("%s (%s) ranks below %s (%s) at higher energy",
				cur.Name, cur.Report.Result.DamageLevel, prev.Name, prev.Report.Result.DamageLevel)
		}
	}
	return p
}
