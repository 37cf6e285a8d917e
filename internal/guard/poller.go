package guard

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is how often a mounted guard re-asks the block oracle.
const DefaultInterval = 5 * time.Second

// Poller runs fetch immediately and then on every tick until stopped. Results
// from a run that has since been stopped or restarted are dropped.
type Poller struct {
	interval time.Duration
	fetch    func(ctx context.Context) (bool, error)

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPoller(interval time.Duration, fetch func(ctx context.Context) (bool, error)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{interval: interval, fetch: fetch}
}

// Start begins a new run. onResult is called for every successful fetch of
// the current run; onError for every failed one. A previous run is stopped.
func (p *Poller) Start(ctx context.Context, onResult func(bool), onError func(error)) {
	p.Stop()

	p.mu.Lock()
	p.gen++
	gen := p.gen
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go p.run(runCtx, gen, done, onResult, onError)
}

// Stop cancels the current run and waits for its goroutine to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.gen++
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (p *Poller) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen == gen
}

func (p *Poller) run(ctx context.Context, gen uint64, done chan struct{}, onResult func(bool), onError func(error)) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		blocked, err := p.fetch(ctx)
		if ctx.Err() != nil || !p.current(gen) {
			return
		}
		if err != nil {
			slog.Warn("block status poll failed", "error", err)
			if onError != nil {
				onError(err)
			}
		} else if onResult != nil {
			onResult(blocked)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
