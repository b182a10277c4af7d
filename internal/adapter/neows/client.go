package neows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/domain"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/observability"
)

// DefaultBaseURL is the public NASA Near Earth Object Web Service endpoint.
const DefaultBaseURL = "https://api.nasa.gov/neo/rest/v1"

const defaultDescription = "Near-Earth Object"

// ErrNotFound is returned when NeoWs has no object for the requested id.
var ErrNotFound = errors.New("neows: object not found")

// Options configures a Client.
type Options struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64 // requests per second
	RateBurst int
}

// Client implements domain.NEOSource using the NASA NeoWs lookup API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a NeoWs lookup client.
func NewClient(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		apiKey: opts.APIKey,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL: baseURL,
		limiter: rate.NewLimiter(limit, burst),
		metrics: metrics,
		logger:  logger,
	}
}

// LookupNEO fetches one near-Earth object and maps it to a preset. The
// composition is left empty; NeoWs does not report one.
func (c *Client) LookupNEO(ctx context.Context, id string) (domain.AsteroidPreset, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return domain.AsteroidPreset{}, fmt.Errorf("rate limit: %w", err)
	}

	u := fmt.Sprintf("%s/neo/%s?%s", c.baseURL, url.PathEscape(id), url.Values{"api_key": {c.apiKey}}.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.AsteroidPreset{}, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.NeoWsAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.NeoWsRequests.WithLabelValues("error").Inc()
		return domain.AsteroidPreset{}, fmt.Errorf("neo %s request: %w", id, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		c.metrics.NeoWsRequests.WithLabelValues("not_found").Inc()
		return domain.AsteroidPreset{}, fmt.Errorf("neo %s: %w", id, ErrNotFound)
	default:
		c.metrics.NeoWsRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.AsteroidPreset{}, fmt.Errorf("neows API error: status %d: %s", resp.StatusCode, body)
	}

	var neo neoResponse
	if err := json.NewDecoder(resp.Body).Decode(&neo); err != nil {
		c.metrics.NeoWsRequests.WithLabelValues("error").Inc()
		return domain.AsteroidPreset{}, fmt.Errorf("decode response: %w", err)
	}
	c.metrics.NeoWsRequests.WithLabelValues("success").Inc()

	preset := neo.preset(id)
	c.logger.Debug("neows lookup", "id", id, "name", preset.Name)
	return preset, nil
}

func (n neoResponse) preset(id string) domain.AsteroidPreset {
	var velocity float64
	if len(n.CloseApproachData) > 0 {
		if v, err := strconv.ParseFloat(n.CloseApproachData[0].RelativeVelocity.KilometersPerSecond, 64); err == nil {
			velocity = v
		}
	}
	description := n.OrbitalData.OrbitClass.Description
	if description == "" {
		description = defaultDescription
	}
	return domain.AsteroidPreset{
		ID:          id,
		Name:        n.Name,
		ShortName:   domain.ShortName(n.Name),
		DiameterKm:  round2(n.EstimatedDiameter.Kilometers.Max),
		VelocityKmS: round2(velocity),
		Description: description,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NeoWs API response types.

type neoResponse struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	EstimatedDiameter estimatedDiameter `json:"estimated_diameter"`
	CloseApproachData []closeApproach   `json:"close_approach_data"`
	OrbitalData       orbitalData       `json:"orbital_data"`
}

type estimatedDiameter struct {
	Kilometers struct {
		Min float64 `json:"estimated_diameter_min"`
		Max float64 `json:"estimated_diameter_max"`
	} `json:"kilometers"`
}

type closeApproach struct {
	CloseApproachDate string `json:"close_approach_date"`
	RelativeVelocity  struct {
		KilometersPerSecond string `json:"kilometers_per_second"`
	} `json:"relative_velocity"`
}

type orbitalData struct {
	OrbitClass struct {
		Type        string `json:"orbit_class_type"`
		Description string `json:"orbit_class_description"`
	} `json:"orbit_class"`
}
