// Package cycle runs the validator status check on a fixed interval.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/nodewatch/internal/core/domain"
	"github.com/vietddude/nodewatch/internal/infra/chain"
	"github.com/vietddude/nodewatch/internal/infra/notify"
	"github.com/vietddude/nodewatch/internal/infra/rpc/routing"
	"github.com/vietddude/nodewatch/internal/monitoring/metrics"
)

// Status is the terminal state of one cycle.
type Status string

const (
	StatusHealthy Status = "healthy" // report sent, nothing flagged
	StatusAlert   Status = "alert"   // report sent, at least one node flagged
	StatusFailed  Status = "failed"  // fetch failed, nothing sent
	StatusSkipped Status = "skipped" // sink unavailable, nothing fetched
)

// Outcome is what a cycle hands back to the scheduler.
// Err is set for failed and skipped cycles; SendErr only when delivery failed.
type Outcome struct {
	ID       string
	Status   Status
	Result   *domain.CycleResult
	Err      error
	SendErr  error
	Started  time.Time
	Duration time.Duration
}

// Observer is notified after every cycle.
type Observer interface {
	ObserveCycle(o Outcome)
}

// Config holds the immutable inputs of the runner.
type Config struct {
	Nodes    domain.TrackedNodeSet
	Interval time.Duration
	Retry    routing.RetryConfig
}

// Runner owns the monitoring loop. Exactly one cycle runs at a time.
type Runner struct {
	cfg       Config
	fetcher   chain.ValidatorFetcher
	sink      notify.Sink
	observers []Observer
	now       func() time.Time
	log       *slog.Logger
}

func NewRunner(cfg Config, fetcher chain.ValidatorFetcher, sink notify.Sink, observers ...Observer) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 1
	}
	return &Runner{
		cfg:       cfg,
		fetcher:   fetcher,
		sink:      sink,
		observers: observers,
		now:       time.Now,
		log:       slog.Default().With("component", "monitor"),
	}
}

// SetClock replaces the wall clock used for the validation-period check.
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// Start runs one cycle immediately and then one per interval until ctx is done.
// A cycle always finishes before the next tick is read.
func (r *Runner) Start(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.log.Info("Monitor started",
		"nodes", r.cfg.Nodes.Len(),
		"interval", r.cfg.Interval,
		"retry_attempts", r.cfg.Retry.MaxAttempts,
	)

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.log.Info("Monitor stopped")
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	cycleCtx, cancel := context.WithTimeout(ctx, r.cfg.Interval)
	defer cancel()

	o := r.RunCycle(cycleCtx)
	r.logOutcome(o)
}

// RunCycle performs check-sink, fetch, evaluate and report once.
// It never panics on infrastructure failure and sends nothing when the
// fetch fails.
func (r *Runner) RunCycle(ctx context.Context) Outcome {
	o := Outcome{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
	defer func() {
		o.Duration = time.Since(o.Started)
		metrics.CyclesTotal.WithLabelValues(string(o.Status)).Inc()
		for _, obs := range r.observers {
			obs.ObserveCycle(o)
		}
	}()

	if err := r.sink.Check(ctx); err != nil {
		o.Status = StatusSkipped
		o.Err = err
		return o
	}

	result, err := r.Evaluate(ctx)
	if err != nil {
		o.Status = StatusFailed
		o.Err = err
		return o
	}
	result.ID = o.ID
	o.Result = &result

	o.Status = StatusHealthy
	if !result.Healthy() {
		o.Status = StatusAlert
	}

	if err := r.sink.Send(ctx, FormatReport(result)); err != nil {
		o.SendErr = err
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
	} else {
		metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	}
	return o
}

// Evaluate fetches the tracked nodes and applies the disconnection predicate.
// The clock is read once, after the fetch returns.
func (r *Runner) Evaluate(ctx context.Context) (domain.CycleResult, error) {
	records, err := r.fetch(ctx)
	if err != nil {
		return domain.CycleResult{}, err
	}

	now := r.now()
	for _, v := range records {
		connected := 0.0
		if v.Connected {
			connected = 1
		}
		metrics.ValidatorConnected.WithLabelValues(v.NodeID).Set(connected)
	}

	flagged := domain.EvaluateRecords(records, now)
	metrics.FlaggedNodes.Set(float64(len(flagged)))

	return domain.CycleResult{
		CheckedAt: now,
		Total:     len(records),
		Flagged:   flagged,
	}, nil
}

func (r *Runner) fetch(ctx context.Context) ([]domain.ValidatorRecord, error) {
	var records []domain.ValidatorRecord
	attempt := 0

	err := routing.Do(ctx, r.cfg.Retry, func(ctx context.Context) error {
		attempt++
		start := time.Now()
		got, err := r.fetcher.FetchValidatorStatus(ctx, r.cfg.Nodes.IDs())
		metrics.RPCLatency.WithLabelValues("validator_status").Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.RPCErrorsTotal.WithLabelValues(chain.ErrorType(err)).Inc()
			if attempt < r.cfg.Retry.MaxAttempts {
				r.log.Debug("Fetch attempt failed", "attempt", attempt, "error", err)
			}
			return err
		}
		records = got
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch validator status: %w", err)
	}
	return records, nil
}

func (r *Runner) logOutcome(o Outcome) {
	log := r.log.With("cycle_id", o.ID, "duration", o.Duration.Round(time.Millisecond))

	switch o.Status {
	case StatusSkipped:
		log.Warn("Notification sink unavailable, skipping cycle", "error", o.Err)
	case StatusFailed:
		log.Error("Error during node check", "error", o.Err, "error_type", chain.ErrorType(o.Err))
	default:
		log.Info("Cycle completed",
			"status", o.Status,
			"validators", o.Result.Total,
			"flagged", len(o.Result.Flagged),
		)
		for _, v := range o.Result.Flagged {
			log.Warn("Validator not connected", "node_id", v.NodeID, "uptime", v.Uptime.String())
		}
	}

	if o.SendErr != nil {
		if errors.Is(o.SendErr, notify.ErrSinkUnavailable) {
			log.Warn("Report not delivered, sink unavailable", "error", o.SendErr)
		} else {
			log.Warn("Report not delivered", "error", o.SendErr)
		}
	}
}
