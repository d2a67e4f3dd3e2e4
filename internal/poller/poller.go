package poller

import (
	"context"
	"sync"
	"time"

	"github.com/khrees2412/applytrack/pkg/models"
	"go.uber.org/zap"
)

// DefaultInterval is the auto-refresh cadence.
const DefaultInterval = 30 * time.Second

// FetchFunc runs one reconciliation cycle.
type FetchFunc func(ctx context.Context) (models.ReconciledList, error)

// Result is one resolved fetch, successful or not.
type Result struct {
	Tick int
	List models.ReconciledList
	Err  error
}

// Poller re-runs a fetch on a fixed interval while auto-refresh is on.
// In-flight fetches are never cancelled by later ticks; whichever resolves
// last is the most recent result delivered.
type Poller struct {
	fetch    FetchFunc
	interval time.Duration
	logger   *zap.Logger
	onUpdate func(Result)

	mu      sync.Mutex
	cancel  context.CancelFunc
	parent  context.Context
	done    chan struct{}
	tick    int
	last    *Result
	enabled bool
}

func New(fetch FetchFunc, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		fetch:    fetch,
		interval: interval,
		logger:   logger,
		enabled:  true,
	}
}

// OnUpdate registers a callback invoked with every resolved fetch. It is
// called from fetch goroutines and must be safe for concurrent use.
func (p *Poller) OnUpdate(fn func(Result)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUpdate = fn
}

// Start runs a fetch immediately and then once per interval until Stop,
// SetAutoRefresh(false) or ctx cancellation. Calling Start on a running
// poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.parent = ctx
	p.enabled = true
	p.startLocked()
}

// Stop cancels the interval. Fetches already in flight still deliver.
func (p *Poller) Stop() {
	p.mu.Lock()
	done := p.stopLocked()
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// SetAutoRefresh toggles the interval on or off.
func (p *Poller) SetAutoRefresh(on bool) {
	p.mu.Lock()
	p.enabled = on
	if on {
		if p.parent != nil {
			p.startLocked()
		}
		p.mu.Unlock()
		return
	}
	done := p.stopLocked()
	p.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Running reports whether the interval loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Refresh runs one fetch synchronously, independent of the interval.
func (p *Poller) Refresh(ctx context.Context) Result {
	return p.run(ctx)
}

// Last returns the most recently resolved result.
func (p *Poller) Last() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Result{}, false
	}
	return *p.last, true
}

func (p *Poller) startLocked() {
	if p.cancel != nil || !p.enabled {
		return
	}
	ctx, cancel := context.WithCancel(p.parent)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	go p.loop(ctx, done)
}

func (p *Poller) stopLocked() chan struct{} {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	done := p.done
	p.cancel = nil
	p.done = nil
	return done
}

func (p *Poller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// fetches outlive the loop so a stop does not abort a request mid-flight
	fetchCtx := context.WithoutCancel(ctx)
	go p.run(fetchCtx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("poller stopped")
			p.mu.Lock()
			if p.done == done {
				p.cancel = nil
				p.done = nil
			}
			p.mu.Unlock()
			return
		case <-ticker.C:
			go p.run(fetchCtx)
		}
	}
}

func (p *Poller) run(ctx context.Context) Result {
	p.mu.Lock()
	p.tick++
	tick := p.tick
	p.mu.Unlock()

	list, err := p.fetch(ctx)
	result := Result{Tick: tick, List: list, Err: err}
	if err != nil {
		p.logger.Warn("refresh failed", zap.Int("tick", tick), zap.Error(err))
	} else {
		p.logger.Debug("refresh complete", zap.Int("tick", tick), zap.Int("applications", len(list.Applications)))
	}

	p.mu.Lock()
	p.last = &result
	fn := p.onUpdate
	p.mu.Unlock()
	if fn != nil {
		fn(result)
	}
	return result
}
