package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Aggregator collects all monitors on an interval and caches the result.
type Aggregator struct {
	monitors []Monitor
	state    *Status
	interval time.Duration
	mu       sync.RWMutex
	done     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger
}

// Default returns the monitors used by the service.
func Default() []Monitor {
	return []Monitor{NewCPUMonitor(), NewMemoryMonitor(), NewSelfMonitor()}
}

func NewAggregator(monitors []Monitor, interval time.Duration, logger *slog.Logger) *Aggregator {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Aggregator{
		monitors: monitors,
		state:    &Status{},
		interval: interval,
		done:     make(chan struct{}),
		logger:   logger,
	}
}

func (a *Aggregator) Start(ctx context.Context) {
	// Initial collection
	a.collect(ctx)

	go a.runLoop(ctx)

	a.logger.Info("monitor started", "interval", a.interval, "monitors", len(a.monitors))
}

func (a *Aggregator) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
		a.logger.Info("monitor stopped")
	})
}

// Status returns a copy of the last collected status.
func (a *Aggregator) Status() *Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state.Clone()
}

func (a *Aggregator) runLoop(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.collect(ctx)
		case <-ctx.Done():
			return
		case <-a.done:
			return
		}
	}
}

func (a *Aggregator) collect(ctx context.Context) {
	next := &Status{Timestamp: time.Now()}

	for _, m := range a.monitors {
		data, err := m.Collect(ctx)
		if err != nil {
			a.logger.Warn("monitor collection failed",
				"monitor", m.Name(),
				"error", err,
			)
			continue
		}

		switch s := data.(type) {
		case *CPUState:
			next.CPU = *s
		case *MemoryState:
			next.Memory = *s
		case *SelfState:
			next.Process = *s
		}
	}

	a.mu.Lock()
	a.state = next
	a.mu.Unlock()
}
