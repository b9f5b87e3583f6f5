package workers_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/instructorsearch/internal/app/search/indexer"
	"github.com/dalemusser/instructorsearch/internal/app/system/workers"
	"go.uber.org/zap"
)

type countingRebuilder struct {
	calls atomic.Int32
	block bool
}

func (c *countingRebuilder) Rebuild(ctx context.Context) (indexer.RebuildStats, error) {
	c.calls.Add(1)
	if c.block {
		<-ctx.Done()
		return indexer.RebuildStats{}, ctx.Err()
	}
	return indexer.RebuildStats{Indexed: 1}, nil
}

func TestReindexer_RunsOnInterval(t *testing.T) {
	rb := &countingRebuilder{}
	w := workers.NewReindexer(rb, zap.NewNop(), 10*time.Millisecond)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for rb.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()

	if n := rb.calls.Load(); n < 2 {
		t.Errorf("Rebuild called %d times, want at least 2", n)
	}
}

func TestReindexer_StopCancelsRunningRebuild(t *testing.T) {
	rb := &countingRebuilder{block: true}
	w := workers.NewReindexer(rb, zap.NewNop(), 5*time.Millisecond)
	w.Start()

	deadline := time.Now().Add(2 * time.Second)
	for rb.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		w.Stop()
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return while a rebuild was running")
	}
}
