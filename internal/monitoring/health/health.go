// Package health provides monitor health tracking and status reporting.
package health

import (
	"time"

	"github.com/vietddude/nodewatch/internal/infra/rpc/provider"
)

// SystemStatus represents the overall health state of the monitor.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// CycleHealth summarises the most recent monitoring cycle.
type CycleHealth struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Validators int       `json:"validators"`
	Flagged    int       `json:"flagged"`
	Error      string    `json:"error,omitempty"`
	SendError  string    `json:"send_error,omitempty"`
}

// HealthReport contains the full health report.
type HealthReport struct {
	SystemStatus  SystemStatus           `json:"system_status"`
	CheckedAt     time.Time              `json:"checked_at"`
	Interval      string                 `json:"interval"`
	LastSuccessAt *time.Time             `json:"last_success_at,omitempty"`
	LastCycle     *CycleHealth           `json:"last_cycle,omitempty"`
	Cycles        int                    `json:"cycles"`
	Failures      int                    `json:"consecutive_failures"`
	Provider      *provider.HealthStatus `json:"provider,omitempty"`
}
