package pipeline

import (
	"context"
	"log/slog"

	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/domain"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/observability"
)

const sourceStream = "stream"

// ScenarioTransformer implements Transformer by running each scenario
// message through the impact calculator.
type ScenarioTransformer struct {
	calculator *domain.Calculator
	densities  domain.DensityTable
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewTransformer creates a ScenarioTransformer.
func NewTransformer(calc *domain.Calculator, densities domain.DensityTable, metrics *observability.Metrics, logger *slog.Logger) *ScenarioTransformer {
	return &ScenarioTransformer{
		calculator: calc,
		densities:  densities,
		metrics:    metrics,
		logger:     logger,
	}
}

// Transform parses, validates and computes one scenario, returning the
// serialized impact report.
func (t *ScenarioTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	s, err := domain.ParseScenario(raw)
	if err != nil {
		t.metrics.ObserveCalculation(sourceStream, 0, "", err)
		return domain.OutputEvent{}, err
	}
	if err := s.Validate(); err != nil {
		t.metrics.ObserveCalculation(sourceStream, 0, "", err)
		return domain.OutputEvent{}, err
	}

	in, composition := s.Resolve(t.densities)
	res, err := t.calculator.Compute(in)
	t.metrics.ObserveCalculation(sourceStream, res.EnergyMegatonsTNT, string(res.DamageLevel), err)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	report := domain.BuildReport(s, composition, in, res)
	t.logger.DebugContext(ctx, "scenario computed",
		"scenario_id", report.ScenarioID,
		"damage_level", res.DamageLevel,
	)
	return domain.SerializeReport(report)
}
