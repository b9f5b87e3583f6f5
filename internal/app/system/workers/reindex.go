// internal/app/system/workers/reindex.go
package workers

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/instructorsearch/internal/app/search/indexer"
	"github.com/dalemusser/instructorsearch/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Rebuilder is implemented by indexer.Service.
type Rebuilder interface {
	Rebuild(ctx context.Context) (indexer.RebuildStats, error)
}

// Reindexer periodically rebuilds the search index from the store so
// documents missed by failed write-time syncs are restored.
type Reindexer struct {
	index    Rebuilder
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewReindexer(index Rebuilder, logger *zap.Logger, interval time.Duration) *Reindexer {
	return &Reindexer{
		index:    index,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background rebuild loop. The first rebuild runs after one
// interval, not at startup.
func (w *Reindexer) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("reindex worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for a running rebuild to finish
// or be cancelled. Safe to call more than once.
func (w *Reindexer) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	w.wg.Wait()
	w.log.Info("reindex worker stopped")
}

func (w *Reindexer) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.rebuild()
		}
	}
}

func (w *Reindexer) rebuild() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Reindex())
	defer cancel()

	// Stop cancels an in-flight rebuild.
	go func() {
		select {
		case <-w.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	stats, err := w.index.Rebuild(ctx)
	if err != nil {
		w.log.Error("scheduled reindex failed", zap.Error(err))
		return
	}
	if stats.Failed > 0 {
		w.log.Warn("scheduled reindex had failures",
			zap.Int("indexed", stats.Indexed),
			zap.Int("failed", stats.Failed))
	}
}
