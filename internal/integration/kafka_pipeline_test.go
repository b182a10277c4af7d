//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/adapter/kafka"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/config"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/domain"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/fixtures"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/observability"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/pipeline"
)

const (
	testSourceTopic = "test-scenarios"
	testSinkTopic   = "test-reports"
)

// publishedReport holds a deserialized message read from the sink topic.
type publishedReport struct {
	Report  domain.ImpactReport
	Key     string
	Headers map[string]string
}

// readReport reads a single message from the sink consumer and deserializes it.
func readReport(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedReport {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var report domain.ImpactReport
	require.NoError(t, json.Unmarshal(msg.Value, &report), "unmarshal sink message")

	return publishedReport{
		Report:  report,
		Key:     string(msg.Key),
		Headers: headers,
	}
}

func loadFixtures(t *testing.T) fixtures.File {
	t.Helper()
	file, err := fixtures.Load(filepath.Join("..", "..", "data", "fixtures", "impact_fixtures.json"))
	require.NoError(t, err)
	return file
}

func newTransformer(t *testing.T) *pipeline.ScenarioTransformer {
	t.Helper()
	calc, err := domain.NewCalculator(domain.DefaultDamagePolicy())
	require.NoError(t, err)
	return pipeline.NewTransformer(calc, domain.DefaultDensityTable(), observability.NewMetricsForTesting(), discardLogger())
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

func sinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (extractor) and
// kafka.Writer (loader) round-trip a scenario and its report through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-reader")

	fixture := loadFixtures(t).Fixtures[0]
	payload, err := json.Marshal(fixture.Scenario)
	require.NoError(t, err)

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{Key: []byte("test-key"), Value: payload}))

	// The consumer group may need time to rebalance before partitions are
	// assigned, so poll until the message shows up.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("test-key"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")
	require.NoError(t, raw.Commit(ctx))

	out, err := newTransformer(t).Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })
	require.NoError(t, writer.LoadBatch(ctx, []domain.OutputEvent{out}))

	got := readReport(ctx, t, sinkConsumer(t, broker))
	assert.Equal(t, fixture.Report.ScenarioID, got.Key)
	assert.Equal(t, string(fixture.Report.Result.DamageLevel), got.Headers["damage_level"])
	_, err = time.Parse(time.RFC3339, got.Headers["computed_at"])
	assert.NoError(t, err, "computed_at should be valid RFC3339")
	assert.InEpsilon(t, fixture.Report.Result.EnergyMegatonsTNT, got.Report.Result.EnergyMegatonsTNT, 1e-9)
}

// TestPipelineEndToEnd wires the full stream (Reader, Transformer, Writer)
// against real Kafka and checks every fixture scenario is published.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-pipeline")

	file := loadFixtures(t)
	want := make(map[string]fixtures.Fixture, len(file.Fixtures))
	msgs := make([]kafkago.Message, 0, len(file.Fixtures))
	for _, f := range file.Fixtures {
		payload, err := json.Marshal(f.Scenario)
		require.NoError(t, err)
		msgs = append(msgs, kafkago.Message{Key: []byte(f.Name), Value: payload})
		want[f.Report.ScenarioID] = f
	}

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newTransformer(t), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	received := make([]publishedReport, 0, len(want))
	for len(received) < len(want) {
		received = append(received, readReport(ctx, t, consumer))
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	for _, got := range received {
		f, ok := want[got.Key]
		require.True(t, ok, "unexpected report key %q", got.Key)
		assert.Empty(t, fixtures.Compare(f.Report, got.Report, fixtures.DefaultTolerance), f.Name)
		assert.Equal(t, string(f.Report.Result.DamageLevel), got.Headers["damage_level"])
	}
}

// TestPipelineTransformError verifies that an invalid scenario (poison pill)
// is skipped and the stream keeps processing valid ones.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)
	cfg := testConfig(broker, "test-poison")

	fixture := loadFixtures(t).Fixtures[0]
	validPayload, err := json.Marshal(fixture.Scenario)
	require.NoError(t, err)

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("negative"), Value: []byte(`{"diameter_km":-1}`)},
		kafkago.Message{Key: []byte("good"), Value: validPayload},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, newTransformer(t), writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := sinkConsumer(t, broker)
	got := readReport(ctx, t, consumer)
	assert.Equal(t, fixture.Report.ScenarioID, got.Key)

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
