package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr           string
	LogLevel           string
	LogFormat          string
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string

	// CatalogPath overrides the embedded catalog when set.
	CatalogPath string

	// NASA NeoWs gallery configuration.
	NASAAPIKey      string
	NeoWsEnabled    bool
	NeoWsBaseURL    string
	NeoWsTimeout    time.Duration
	NeoWsCacheSize  int
	NeoWsCacheTTL   time.Duration
	NeoWsRateLimit  float64
	NeoWsRateBurst  int
	NeoWsGalleryMax int

	// Kafka scenario stream configuration.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaSourceTopic   string
	KafkaSinkTopic     string
	KafkaGroupID       string
	BatchSize          int
	BatchFlushInterval time.Duration

	// Tracing configuration.
	TracingEnabled     bool
	TracingExporter    string
	TracingServiceName string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	neowsTimeout, err := parsePositiveDuration("NEOWS_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	neowsCacheTTL, err := parsePositiveDuration("NEOWS_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	neowsRateLimit, err := parseRateLimit()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	apiKey := os.Getenv("NASA_API_KEY")
	neowsEnabled := apiKey != ""
	if v := os.Getenv("NEOWS_ENABLED"); v != "" {
		neowsEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		CORSAllowedOrigins: splitList(sharedcfg.EnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		CatalogPath:        os.Getenv("CATALOG_PATH"),

		NASAAPIKey:      apiKey,
		NeoWsEnabled:    neowsEnabled,
		NeoWsBaseURL:    strings.TrimRight(sharedcfg.EnvOrDefault("NEOWS_BASE_URL", "https://api.nasa.gov/neo/rest/v1"), "/"),
		NeoWsTimeout:    neowsTimeout,
		NeoWsCacheSize:  parsePositiveInt("NEOWS_CACHE_SIZE", 100),
		NeoWsCacheTTL:   neowsCacheTTL,
		NeoWsRateLimit:  neowsRateLimit,
		NeoWsRateBurst:  parsePositiveInt("NEOWS_RATE_BURST", 5),
		NeoWsGalleryMax: parsePositiveInt("NEOWS_CONCURRENCY", 4),

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "impact-scenarios"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "impact-reports"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "asteroid-impact"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		TracingEnabled:     os.Getenv("TRACING_ENABLED") == "true",
		TracingExporter:    strings.ToLower(sharedcfg.EnvOrDefault("TRACING_EXPORTER", "stdout")),
		TracingServiceName: sharedcfg.EnvOrDefault("TRACING_SERVICE_NAME", "impact-api"),
	}

	if cfg.NeoWsEnabled && cfg.NASAAPIKey == "" {
		return nil, errors.New("NEOWS_ENABLED is true but NASA_API_KEY is not set")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required")
		}
	}
	switch cfg.TracingExporter {
	case "stdout", "none":
	default:
		return nil, fmt.Errorf("invalid TRACING_EXPORTER %q", cfg.TracingExporter)
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func parseRateLimit() (float64, error) {
	s := sharedcfg.EnvOrDefault("NEOWS_RATE_LIMIT", "2")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, errors.New("invalid NEOWS_RATE_LIMIT")
	}
	return v, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
