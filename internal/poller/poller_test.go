package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/khrees2412/applytrack/pkg/models"
)

func countingFetch(calls *int32) FetchFunc {
	return func(ctx context.Context) (models.ReconciledList, error) {
		n := atomic.AddInt32(calls, 1)
		return models.ReconciledList{Stats: models.Statistics{Total: int(n)}}, nil
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestStartFetchesImmediatelyAndOnInterval(t *testing.T) {
	var calls int32
	p := New(countingFetch(&calls), 20*time.Millisecond, nil)

	p.Start(context.Background())
	defer p.Stop()

	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 3 })
	if !p.Running() {
		t.Error("poller should be running")
	}
}

func TestStopCancelsInterval(t *testing.T) {
	var calls int32
	p := New(countingFetch(&calls), 10*time.Millisecond, nil)

	p.Start(context.Background())
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 1 })
	p.Stop()

	if p.Running() {
		t.Error("poller should be stopped")
	}
	// allow any fetch launched before Stop to resolve
	time.Sleep(20 * time.Millisecond)
	after := atomic.LoadInt32(&calls)
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != after {
		t.Errorf("fetches continued after Stop: %d -> %d", after, got)
	}
}

func TestSetAutoRefreshToggle(t *testing.T) {
	var calls int32
	p := New(countingFetch(&calls), 10*time.Millisecond, nil)

	p.Start(context.Background())
	defer p.Stop()
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 1 })

	p.SetAutoRefresh(false)
	if p.Running() {
		t.Fatal("auto-refresh off should stop the loop")
	}

	p.SetAutoRefresh(true)
	if !p.Running() {
		t.Fatal("auto-refresh on should restart the loop")
	}
	before := atomic.LoadInt32(&calls)
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) > before })
}

func TestAutoRefreshOffBeforeStart(t *testing.T) {
	var calls int32
	p := New(countingFetch(&calls), 10*time.Millisecond, nil)
	p.SetAutoRefresh(false)
	if p.Running() {
		t.Error("poller should not run before Start")
	}
}

func TestContextCancellationStops(t *testing.T) {
	var calls int32
	p := New(countingFetch(&calls), 10*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())

	p.Start(ctx)
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 1 })
	cancel()
	waitFor(t, func() bool { return !p.Running() })
}

func TestRefreshDeliversFailures(t *testing.T) {
	fetchErr := errors.New("backend down")
	p := New(func(ctx context.Context) (models.ReconciledList, error) {
		return models.ReconciledList{Stale: true}, fetchErr
	}, time.Hour, nil)

	var mu sync.Mutex
	var got []Result
	p.OnUpdate(func(r Result) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, r)
	})

	result := p.Refresh(context.Background())
	if !errors.Is(result.Err, fetchErr) || !result.List.Stale {
		t.Errorf("unexpected result %+v", result)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("expected 1 callback, got %d", len(got))
	}
	last, ok := p.Last()
	if !ok || last.Tick != 1 {
		t.Errorf("Last = %+v, %v", last, ok)
	}
}

func TestLastResponseWins(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	p := New(func(ctx context.Context) (models.ReconciledList, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			// slow first poll resolves after the fast second one
			<-release
		}
		return models.ReconciledList{Stats: models.Statistics{Total: int(n)}}, nil
	}, time.Hour, nil)

	go p.Refresh(context.Background())
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 })

	fast := p.Refresh(context.Background())
	if fast.List.Stats.Total != 2 {
		t.Fatalf("fast poll = %+v", fast)
	}
	close(release)
	waitFor(t, func() bool {
		last, _ := p.Last()
		return last.List.Stats.Total == 1
	})
}

func TestDefaultInterval(t *testing.T) {
	p := New(func(ctx context.Context) (models.ReconciledList, error) {
		return models.ReconciledList{}, nil
	}, 0, nil)
	if p.interval != DefaultInterval {
		t.Errorf("interval = %v", p.interval)
	}
}
