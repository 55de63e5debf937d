// Package notify delivers cycle reports to chat and pub/sub destinations.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrSinkUnavailable means the destination cannot be resolved or reached.
var ErrSinkUnavailable = errors.New("sink unavailable")

// Sink sends plain-text messages to one destination.
type Sink interface {
	// Name identifies the sink in logs and metrics
	Name() string

	// Check verifies the destination exists before a cycle starts.
	// It returns an error wrapping ErrSinkUnavailable when it does not.
	Check(ctx context.Context) error

	// Send delivers text. Failures are reported, never retried.
	Send(ctx context.Context, text string) error
}

func unavailable(sink string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSinkUnavailable, sink, err)
}

// MultiSink fans a message out to every member sink.
type MultiSink struct {
	sinks []Sink
	log   *slog.Logger
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{
		sinks: sinks,
		log:   slog.Default().With("component", "notify"),
	}
}

func (m *MultiSink) Name() string {
	return "multi"
}

// Len returns the number of member sinks.
func (m *MultiSink) Len() int {
	return len(m.sinks)
}

// Check succeeds when at least one member is available.
func (m *MultiSink) Check(ctx context.Context) error {
	if len(m.sinks) == 0 {
		return fmt.Errorf("%w: no sinks configured", ErrSinkUnavailable)
	}

	var errs []error
	for _, s := range m.sinks {
		err := s.Check(ctx)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Send delivers to every member. It fails only if no member accepted the
// message, returning the last error.
func (m *MultiSink) Send(ctx context.Context, text string) error {
	var lastErr error
	delivered := 0
	for _, s := range m.sinks {
		if err := s.Send(ctx, text); err != nil {
			m.log.Warn("Sink send failed", "sink", s.Name(), "error", err)
			lastErr = err
			continue
		}
		delivered++
	}
	if delivered > 0 {
		return nil
	}
	return lastErr
}

// LogSink writes messages to the operator log. It is always available.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log.With("component", "notify", "sink", "log")}
}

func (l *LogSink) Name() string {
	return "log"
}

func (l *LogSink) Check(ctx context.Context) error {
	return nil
}

func (l *LogSink) Send(ctx context.Context, text string) error {
	l.log.Info("Report", "message", text)
	return nil
}
