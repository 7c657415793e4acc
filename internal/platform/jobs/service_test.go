package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"kudos/internal/platform/metrics"
)

func TestWorkersRunQueuedJobs(t *testing.T) {
	collector := metrics.New()
	svc := New(nil, collector)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	svc.Enqueue("ok", func(context.Context) error { wg.Done(); return nil })
	svc.Enqueue("fail", func(context.Context) error { wg.Done(); return errors.New("boom") })

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("jobs did not run")
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snap := collector.Snapshot()
		if snap["jobsCompleted"] == uint64(1) && snap["jobsFailed"] == uint64(1) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("unexpected job counters: %+v", collector.Snapshot())
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	collector := metrics.New()
	svc := New(nil, collector)
	svc.queue = make(chan job, 1)

	svc.Enqueue("first", func(context.Context) error { return nil })
	svc.Enqueue("second", func(context.Context) error { return nil })

	if got := collector.Snapshot()["jobsFailed"]; got != uint64(1) {
		t.Fatalf("expected dropped job counted as failed, got %v", got)
	}
}
