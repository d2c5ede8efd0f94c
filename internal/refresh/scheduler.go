// Package refresh decides when the knowledge index is stale and runs
// non-overlapping rebuilds in the background.
package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/hyperjump/hanashi/internal/metrics"
	"github.com/hyperjump/hanashi/internal/models"
	"go.uber.org/zap"
)

// Collector gathers the full document set for one build.
type Collector interface {
	Collect(ctx context.Context) []models.Document
}

// Ingester publishes a document set as a new index generation.
type Ingester interface {
	Ingest(docs []models.Document)
}

// Scheduler triggers index rebuilds. Builds are single-flight: a trigger
// while one is running is a no-op, and queries are never blocked — they
// keep reading the previous generation until the new one is published.
type Scheduler struct {
	collector Collector
	ingester  Ingester
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time

	mu        sync.Mutex
	inFlight  bool
	built     bool
	lastBuild time.Time
}

// NewScheduler creates a scheduler that considers the index stale after
// interval has elapsed since the last successful build.
func NewScheduler(collector Collector, ingester Ingester, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		collector: collector,
		ingester:  ingester,
		interval:  interval,
		logger:    logger,
		now:       time.Now,
	}
}

// NeedsRefresh reports whether no generation was ever built, or the last
// successful build is older than the configured interval.
func (s *Scheduler) NeedsRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.built || s.now().Sub(s.lastBuild) > s.interval
}

// TriggerIfNeeded starts a background rebuild when the index is stale and
// no build is in flight. Returns true when a build was started.
func (s *Scheduler) TriggerIfNeeded() bool {
	if !s.NeedsRefresh() {
		return false
	}
	return s.start()
}

// ForceRefresh starts a rebuild regardless of staleness, still honoring
// the single-flight guarantee. Used when the curated knowledge changes.
func (s *Scheduler) ForceRefresh() bool {
	return s.start()
}

func (s *Scheduler) start() bool {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return false
	}
	s.inFlight = true
	s.mu.Unlock()
	go s.runBuild()
	return true
}

// runBuild collects and ingests one generation. A failed build clears the
// in-flight flag without recording a build time, so the next trigger
// retries instead of the system staying "in progress" forever. There is no
// cancellation of an in-flight build; per-fetch timeouts bound its parts.
func (s *Scheduler) runBuild() {
	started := s.now()
	defer func() {
		if r := recover(); r != nil {
			metrics.IndexBuildFailures.Inc()
			s.logger.Error("index build panicked", zap.Any("panic", r))
		}
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	docs := s.collector.Collect(context.Background())
	s.ingester.Ingest(docs)

	s.mu.Lock()
	s.built = true
	s.lastBuild = s.now()
	s.mu.Unlock()

	metrics.IndexBuilds.Inc()
	s.logger.Info("index generation published",
		zap.Int("documents", len(docs)),
		zap.Duration("build_time", s.now().Sub(started)),
	)
}

// InFlight reports whether a build is currently running.
func (s *Scheduler) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// LastBuild returns the time of the last successful build and whether one
// has happened.
func (s *Scheduler) LastBuild() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBuild, s.built
}
