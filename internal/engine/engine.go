package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"hotel-market-backend/config"
	"hotel-market-backend/internal/analysis"
	"hotel-market-backend/internal/model"
	"hotel-market-backend/internal/notification"
	"hotel-market-backend/internal/store"
)

// ErrNoListings is returned when a city has no valid active listings to
// analyze. Callers are expected to fall back to the latest stored snapshot.
var ErrNoListings = errors.New("engine: no listings for city")

// DataSource is the capability the engine needs to read markets and persist
// results. Both the database-backed store and the synthetic generator
// satisfy it; the choice is made once at construction.
type DataSource interface {
	DistinctActiveCities(ctx context.Context) ([]string, error)
	FindActiveListingsByCity(ctx context.Context, city string) ([]model.Listing, error)
	FindLatestSnapshot(ctx context.Context, city string) (*model.MarketSnapshot, error)
	AppendSnapshot(ctx context.Context, snap *model.MarketSnapshot) error
}

// Service orchestrates periodic market analysis across all known cities.
type Service struct {
	cfg        *config.Config
	source     DataSource
	workerPool *notification.WorkerPool
	now        func() time.Time
}

// NewService creates and initializes a new analysis engine. The worker pool
// may be nil when push notifications are not configured.
func NewService(cfg *config.Config, source DataSource, pool *notification.WorkerPool) *Service {
	return &Service{
		cfg:        cfg,
		source:     source,
		workerPool: pool,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run starts the analysis process in a loop. The notification workers start
// either way: manual generate requests dispatch alerts even when the
// periodic loop is disabled.
func (s *Service) Run(ctx context.Context) {
	if s.workerPool != nil {
		s.workerPool.Start(ctx)
	}

	if !s.cfg.Analysis.Enabled {
		log.Println("Analysis engine is disabled. Not starting.")
		return
	}
	log.Println("Starting analysis engine...")

	s.RunAll(ctx)

	timer := time.NewTimer(s.cfg.Analysis.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Analysis engine shutting down.")
			return
		case <-timer.C:
			s.RunAll(ctx)
			timer.Reset(s.cfg.Analysis.Interval)
		}
	}
}

// RunAll analyzes every city with active listings, one goroutine per city.
// A city that fails is logged and skipped; it never aborts the cycle.
func (s *Service) RunAll(ctx context.Context) {
	log.Println("Executing analysis cycle...")

	cities, err := s.source.DistinctActiveCities(ctx)
	if err != nil {
		log.Printf("Error listing cities, analysis cycle aborted: %v", err)
		return
	}

	var wg sync.WaitGroup
	for _, city := range cities {
		wg.Add(1)
		go func(city string) {
			defer wg.Done()
			if _, err := s.AnalyzeCity(ctx, city); err != nil {
				log.Printf("Error analyzing %s: %v", city, err)
			}
		}(city)
	}
	wg.Wait()

	log.Printf("Analysis cycle finished: %d cities.", len(cities))
}

// AnalyzeCity runs one full analysis for a city and appends the resulting
// snapshot. Listings that fail validation are logged and excluded from the
// computation.
func (s *Service) AnalyzeCity(ctx context.Context, city string) (*model.MarketSnapshot, error) {
	listings, err := s.source.FindActiveListingsByCity(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("load listings for %s: %w", city, err)
	}

	valid := listings[:0]
	for _, l := range listings {
		if err := l.Validate(); err != nil {
			log.Printf("Skipping listing %s in %s: %v", l.ID, city, err)
			continue
		}
		valid = append(valid, l)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoListings, city)
	}

	now := s.now()
	snap := analysis.BuildSnapshot(city, valid[0].State, valid, now)
	if err := s.source.AppendSnapshot(ctx, &snap); err != nil {
		return nil, fmt.Errorf("persist snapshot for %s: %w", city, err)
	}

	if s.workerPool != nil && len(snap.Alerts) > 0 {
		log.Printf("Dispatching %d alerts for %s", len(snap.Alerts), city)
		s.workerPool.Dispatch(notification.AlertJob{City: city, Alerts: snap.Alerts})
	}

	return &snap, nil
}

// LatestOrAnalyze returns the most recent snapshot for a city, generating a
// fresh one only when none exists yet.
func (s *Service) LatestOrAnalyze(ctx context.Context, city string) (*model.MarketSnapshot, error) {
	snap, err := s.source.FindLatestSnapshot(ctx, city)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("latest snapshot for %s: %w", city, err)
	}
	return s.AnalyzeCity(ctx, city)
}
