package monitor

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// SelfMonitor reports resource usage of the running service.
type SelfMonitor struct {
	started time.Time

	mu   sync.Mutex
	proc *process.Process
}

func NewSelfMonitor() *SelfMonitor {
	return &SelfMonitor{started: time.Now()}
}

func (m *SelfMonitor) Name() string {
	return "self"
}

func (m *SelfMonitor) Collect(ctx context.Context) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.proc == nil {
		p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
		if err != nil {
			return nil, err
		}
		m.proc = p
	}

	state := &SelfState{
		PID:           m.proc.Pid,
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
	}

	if mi, err := m.proc.MemoryInfoWithContext(ctx); err == nil {
		state.RSSBytes = mi.RSS
	}
	if pct, err := m.proc.CPUPercentWithContext(ctx); err == nil {
		state.CPUPercent = pct
	}
	if n, err := m.proc.NumThreadsWithContext(ctx); err == nil {
		state.Threads = n
	}

	return state, nil
}
