package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/domain"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/observability"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawEvent
	errs    []error
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockTransformer struct {
	err error
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if m.err != nil {
		return domain.OutputEvent{}, m.err
	}
	return domain.OutputEvent{Key: raw.Key, Value: raw.Value}, nil
}

type mockLoader struct {
	mu     sync.Mutex
	loaded []domain.OutputEvent
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func (m *mockLoader) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loaded)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runFor(t *testing.T, p *pipeline.Pipeline, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

// --- pipeline loop tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	raw := makeRawScenario(t, "scn-1", 0.37, 7.42)

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), metrics, 10)
	runFor(t, p, 300*time.Millisecond)

	require.Len(t, ldr.loaded, 1)
	assert.Equal(t, raw.Value, ldr.loaded[0].Value)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.MessagesConsumed), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.MessagesProduced), 0)
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.PipelineRunning), 0, "gauge reset on exit")
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ldr := &mockLoader{}
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Empty(t, ldr.loaded)
}

func TestPipeline_Run_TransformErrorCommitsAndSkips(t *testing.T) {
	var commits atomic.Int32
	raw := makeRawScenario(t, "scn-2", 1, 20)
	raw.Commit = func(context.Context) error {
		commits.Add(1)
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()

	p := pipeline.New(ext, &mockTransformer{err: errors.New("bad data")}, ldr, discardLogger(), metrics, 10)
	runFor(t, p, 300*time.Millisecond)

	assert.Empty(t, ldr.loaded)
	assert.Equal(t, int32(1), commits.Load(), "poison pill is committed")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.TransformErrors), 0)
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	commitCalled := false

	raw := makeRawScenario(t, "scn-5", 1, 20)
	raw.Topic = "impact-scenarios"
	raw.Commit = func(_ context.Context) error {
		commitCalled = true
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, discardLogger(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, 300*time.Millisecond)

	assert.True(t, commitCalled)
}

func TestPipeline_Run_LoadFailureDoesNotCommit(t *testing.T) {
	commitCalled := false
	raw := makeRawScenario(t, "scn-6", 1, 20)
	raw.Commit = func(_ context.Context) error {
		commitCalled = true
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{err: errors.New("broker down")}
	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, 300*time.Millisecond)

	assert.False(t, commitCalled)
}

func TestPipeline_Run_RecoversAfterExtractError(t *testing.T) {
	raw := makeRawScenario(t, "scn-7", 1, 20)
	ext := &mockExtractor{
		errs:    []error{errors.New("leader not available")},
		batches: [][]domain.RawEvent{nil, {raw}},
	}
	ldr := &mockLoader{}
	p := pipeline.New(ext, &mockTransformer{}, ldr, discardLogger(), observability.NewMetricsForTesting(), 10)

	runFor(t, p, time.Second)
	assert.Equal(t, 1, ldr.count(), "batch after the backoff is processed")
}

func TestPipeline_Readiness(t *testing.T) {
	p := pipeline.New(&mockExtractor{}, &mockTransformer{}, &mockLoader{}, discardLogger(), observability.NewMetricsForTesting(), 10)
	require.Error(t, p.CheckReadiness(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Run(ctx)
	}()

	assert.Eventually(t, func() bool { return p.CheckReadiness(context.Background()) == nil }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Error(t, p.CheckReadiness(context.Background()))
}

// --- ScenarioTransformer tests ---

func newTransformer(t *testing.T, metrics *observability.Metrics) *pipeline.ScenarioTransformer {
	t.Helper()
	calc, err := domain.NewCalculator(domain.DefaultDamagePolicy())
	require.NoError(t, err)
	return pipeline.NewTransformer(calc, domain.DefaultDensityTable(), metrics, discardLogger())
}

func TestScenarioTransformer_Transform(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2029, time.April, 13, 21, 46, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	metrics := observability.NewMetricsForTesting()
	out, err := newTransformer(t, metrics).Transform(context.Background(), makeRawScenario(t, "scn-3", 0.37, 7.42))
	require.NoError(t, err)

	assert.Equal(t, []byte("scn-3"), out.Key)
	assert.Equal(t, "regional", out.Headers["damage_level"])
	assert.Equal(t, "2029-04-13T21:46:00Z", out.Headers["computed_at"])

	var report domain.ImpactReport
	require.NoError(t, json.Unmarshal(out.Value, &report))
	assert.Equal(t, "stony", report.Composition)
	assert.InEpsilon(t, 293.3563283, report.Result.EnergyMegatonsTNT, 1e-6)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.Calculations.WithLabelValues("stream", "success")), 0)
}

func TestScenarioTransformer_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "malformed json", value: "not json"},
		{name: "zero diameter", value: `{"diameter_km":0}`},
		{name: "angle above vertical", value: `{"angle_degrees":120}`},
		{name: "overflow", value: `{"diameter_km":1e200,"velocity_km_s":1e200}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metrics := observability.NewMetricsForTesting()
			_, err := newTransformer(t, metrics).Transform(context.Background(), domain.RawEvent{Value: []byte(tt.value)})
			require.Error(t, err)
			assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.Calculations.WithLabelValues("stream", "invalid")), 0)
		})
	}
}

// --- helpers ---

func makeRawScenario(t *testing.T, id string, diameterKm, velocityKmS float64) domain.RawEvent {
	t.Helper()
	data, err := json.Marshal(domain.Scenario{
		ID:          id,
		DiameterKm:  &diameterKm,
		VelocityKmS: &velocityKmS,
	})
	require.NoError(t, err)
	return domain.RawEvent{
		Key:   []byte(id),
		Value: data,
	}
}
