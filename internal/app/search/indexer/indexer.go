// Package indexer keeps the search index in step with the instructor store
// and answers searches through it.
package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/instructorsearch/internal/app/search/searchdoc"
	"github.com/dalemusser/instructorsearch/internal/app/system/searchmetrics"
	"github.com/dalemusser/instructorsearch/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultLimit caps a search when the caller gives no limit.
const DefaultLimit = 50

// InstructorSource walks every stored instructor. Implemented by
// instructorstore.Store.
type InstructorSource interface {
	Each(ctx context.Context, fn func(models.Instructor) error) error
}

// Options tunes a Service. Zero values use the defaults.
type Options struct {
	// Backend labels query metrics, e.g. "mongo".
	Backend string
	// MaxLimit caps the limit a caller may ask for.
	MaxLimit int
	// RebuildRate bounds documents written per second during Rebuild.
	// Zero means unthrottled.
	RebuildRate float64
}

type Service struct {
	kind    searchdoc.Kind[models.Instructor]
	index   searchdoc.Index
	source  InstructorSource
	log     *zap.Logger
	backend string
	max     int
	rate    rate.Limit
}

func New(kind searchdoc.Kind[models.Instructor], index searchdoc.Index, source InstructorSource, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		kind:    kind,
		index:   index,
		source:  source,
		log:     logger,
		backend: opts.Backend,
		max:     opts.MaxLimit,
		rate:    rate.Inf,
	}
	if s.max <= 0 {
		s.max = DefaultLimit
	}
	if opts.RebuildRate > 0 {
		s.rate = rate.Limit(opts.RebuildRate)
	}
	return s
}

// Sync projects in and writes its document to the index.
func (s *Service) Sync(ctx context.Context, in *models.Instructor) error {
	doc, err := s.kind.Project(ctx, in)
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}
	if err := s.index.Upsert(ctx, *doc); err != nil {
		return fmt.Errorf("index instructor: %w", err)
	}
	return nil
}

// Remove deletes the document of a deleted instructor.
func (s *Service) Remove(ctx context.Context, in models.Instructor) error {
	if err := s.index.Delete(ctx, in.SearchKey); err != nil {
		return fmt.Errorf("unindex instructor: %w", err)
	}
	return nil
}

// Search queries the index and reconciles the hits against the store.
// limit is clamped to [1, MaxLimit]; zero or less means MaxLimit.
func (s *Service) Search(ctx context.Context, query string, limit int) (searchdoc.Bundle[models.Instructor], error) {
	if limit <= 0 || limit > s.max {
		limit = s.max
	}
	start := time.Now()
	defer func() {
		searchmetrics.QueryDuration.WithLabelValues("instructor", s.backend).Observe(time.Since(start).Seconds())
	}()

	hits, err := s.index.Query(ctx, query, limit)
	if err != nil {
		return searchdoc.NewBundle[models.Instructor](), fmt.Errorf("query index: %w", err)
	}
	return s.kind.Reconcile(ctx, hits)
}

// RebuildStats reports what a Rebuild did.
type RebuildStats struct {
	Indexed int
	Failed  int
	Took    time.Duration
}

// Rebuild re-projects every stored instructor into the index. A document
// that fails to project or write is logged and counted, and the walk goes
// on. Documents whose instructor is gone are not found here; queries remove
// them as they surface.
func (s *Service) Rebuild(ctx context.Context) (RebuildStats, error) {
	var stats RebuildStats
	start := time.Now()
	limiter := rate.NewLimiter(s.rate, 1)

	err := s.source.Each(ctx, func(in models.Instructor) error {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := s.Sync(ctx, &in); err != nil {
			stats.Failed++
			s.log.Warn("reindex instructor failed",
				zap.String("search_key", in.SearchKey),
				zap.Error(err))
			return nil
		}
		stats.Indexed++
		return nil
	})
	stats.Took = time.Since(start)
	if err != nil {
		return stats, fmt.Errorf("rebuild: %w", err)
	}
	s.log.Info("search index rebuilt",
		zap.Int("indexed", stats.Indexed),
		zap.Int("failed", stats.Failed),
		zap.Duration("took", stats.Took))
	return stats, nil
}

// Ping checks the index backend.
func (s *Service) Ping(ctx context.Context) error {
	return s.index.Ping(ctx)
}
