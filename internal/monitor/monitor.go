// Package monitor samples host and process resources for the status endpoint.
package monitor

import (
	"context"
	"time"
)

// Monitor collects one resource snapshot.
type Monitor interface {
	Name() string
	Collect(ctx context.Context) (any, error)
}

type CPUState struct {
	UsagePercent float64 `json:"usage_percent"`
	Cores        int     `json:"cores"`
}

type MemoryState struct {
	UsedBytes    uint64  `json:"used_bytes"`
	TotalBytes   uint64  `json:"total_bytes"`
	UsagePercent float64 `json:"usage_percent"`
}

// SelfState describes the service process itself.
type SelfState struct {
	PID           int32   `json:"pid"`
	RSSBytes      uint64  `json:"rss_bytes"`
	CPUPercent    float64 `json:"cpu_percent"`
	Threads       int32   `json:"threads"`
	Goroutines    int     `json:"goroutines"`
	UptimeSeconds int64   `json:"uptime_seconds"`
}

// Status is the aggregated snapshot served on /status.
type Status struct {
	CPU       CPUState    `json:"cpu"`
	Memory    MemoryState `json:"memory"`
	Process   SelfState   `json:"process"`
	Timestamp time.Time   `json:"timestamp"`
}

// Clone returns a copy of the status.
func (s *Status) Clone() *Status {
	clone := *s
	return &clone
}
