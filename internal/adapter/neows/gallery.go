package neows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/domain"
	"github.com/bharatparmar35036-ship-it/asteroid-sim/internal/observability"
)

// ErrGalleryUnavailable is returned when no curated object could be fetched
// and no fallback gallery is configured.
var ErrGalleryUnavailable = errors.New("neows: gallery unavailable")

// DefaultComposition is assigned to live records with no curated composition.
const DefaultComposition = "stony"

// Gallery implements domain.Gallery by fetching the curated presets live
// from NeoWs. Lookups run concurrently; failed ids are skipped and the
// curated order is preserved.
type Gallery struct {
	source      domain.NEOSource
	curated     []domain.AsteroidPreset
	fallback    domain.Gallery
	concurrency int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// NewGallery creates a live gallery over curated. fallback may be nil, in
// which case a total lookup failure is reported as ErrGalleryUnavailable.
func NewGallery(source domain.NEOSource, curated []domain.AsteroidPreset, fallback domain.Gallery, concurrency int, logger *slog.Logger, metrics *observability.Metrics) *Gallery {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Gallery{
		source:      source,
		curated:     curated,
		fallback:    fallback,
		concurrency: concurrency,
		logger:      logger,
		metrics:     metrics,
	}
}

// Gallery returns the live records for every curated id that resolved.
func (g *Gallery) Gallery(ctx context.Context) (domain.GalleryPage, error) {
	found := make([]*domain.AsteroidPreset, len(g.curated))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.concurrency)
	for i, want := range g.curated {
		eg.Go(func() error {
			preset, err := g.source.LookupNEO(egCtx, want.ID)
			if err != nil {
				g.logger.Warn("neows lookup failed, skipping", "id", want.ID, "error", err)
				return nil
			}
			preset.Composition = want.Composition
			if preset.Composition == "" {
				preset.Composition = DefaultComposition
			}
			found[i] = &preset
			return nil
		})
	}
	// Lookups never fail the group; Wait only synchronizes.
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return domain.GalleryPage{}, fmt.Errorf("gallery: %w", err)
	}

	asteroids := make([]domain.AsteroidPreset, 0, len(found))
	for _, p := range found {
		if p != nil {
			asteroids = append(asteroids, *p)
		}
	}

	if len(asteroids) == 0 && len(g.curated) > 0 {
		if g.fallback == nil {
			return domain.GalleryPage{}, ErrGalleryUnavailable
		}
		g.logger.Warn("neows gallery empty, serving fallback")
		page, err := g.fallback.Gallery(ctx)
		if err != nil {
			return domain.GalleryPage{}, fmt.Errorf("fallback gallery: %w", err)
		}
		g.metrics.GallerySource.WithLabelValues(page.Source).Inc()
		return page, nil
	}

	g.metrics.GallerySource.WithLabelValues(domain.GallerySourceNeoWs).Inc()
	return domain.GalleryPage{Asteroids: asteroids, Source: domain.GallerySourceNeoWs}, nil
}
