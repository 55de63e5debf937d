package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/nodewatch/internal/infra/rpc/provider"
	"github.com/vietddude/nodewatch/internal/monitoring/cycle"
)

// staleIntervals is how many intervals may pass without a successful cycle
// before the monitor reports critical.
const staleIntervals = 3

// ProviderHealth reports the state of the RPC endpoint.
type ProviderHealth interface {
	GetHealth() provider.HealthStatus
}

// Monitor aggregates cycle outcomes into a health report.
type Monitor struct {
	interval    time.Duration
	provider    ProviderHealth
	startedAt   time.Time
	lastSuccess time.Time
	last        *cycle.Outcome
	cycles      int
	failures    int
	now         func() time.Time
	mu          sync.RWMutex
}

var _ cycle.Observer = (*Monitor)(nil)

// NewMonitor creates a new health monitor. p may be nil.
func NewMonitor(interval time.Duration, p ProviderHealth) *Monitor {
	return &Monitor{
		interval:  interval,
		provider:  p,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

// ObserveCycle records the outcome of a finished cycle.
func (m *Monitor) ObserveCycle(o cycle.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cycles++
	m.last = &o
	switch o.Status {
	case cycle.StatusHealthy, cycle.StatusAlert:
		m.failures = 0
		m.lastSuccess = o.Started.Add(o.Duration)
	default:
		m.failures++
	}
}

// CheckHealth builds the current report.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	report := HealthReport{
		SystemStatus: StatusHealthy,
		CheckedAt:    now,
		Interval:     m.interval.String(),
		Cycles:       m.cycles,
		Failures:     m.failures,
	}

	if m.provider != nil {
		ph := m.provider.GetHealth()
		report.Provider = &ph
	}

	if !m.lastSuccess.IsZero() {
		ls := m.lastSuccess
		report.LastSuccessAt = &ls
	}

	if m.last != nil {
		report.LastCycle = toCycleHealth(*m.last)
		if m.failures > 0 {
			report.SystemStatus = StatusDegraded
		}
	}

	// Measure staleness from the last success, or from startup if none yet
	since := m.lastSuccess
	if since.IsZero() {
		since = m.startedAt
	}
	if m.interval > 0 && now.Sub(since) > staleIntervals*m.interval {
		report.SystemStatus = StatusCritical
	}

	return report
}

func toCycleHealth(o cycle.Outcome) *CycleHealth {
	ch := &CycleHealth{
		ID:         o.ID,
		Status:     string(o.Status),
		StartedAt:  o.Started,
		DurationMs: o.Duration.Milliseconds(),
	}
	if o.Result != nil {
		ch.Validators = o.Result.Total
		ch.Flagged = len(o.Result.Flagged)
	}
	if o.Err != nil {
		ch.Error = o.Err.Error()
	}
	if o.SendErr != nil {
		ch.SendError = o.SendErr.Error()
	}
	return ch
}
