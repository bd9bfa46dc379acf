package monitor

import (
	"context"

	"github.com/shirou/gopsutil/v4/cpu"
)

type CPUMonitor struct{}

func NewCPUMonitor() *CPUMonitor {
	return &CPUMonitor{}
}

func (m *CPUMonitor) Name() string {
	return "cpu"
}

// Collect reports overall host CPU usage since the previous call.
func (m *CPUMonitor) Collect(ctx context.Context) (any, error) {
	percentages, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return nil, err
	}

	var overall float64
	if len(percentages) > 0 {
		overall = percentages[0]
	}

	cores, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, err
	}

	return &CPUState{
		UsagePercent: overall,
		Cores:        cores,
	}, nil
}
