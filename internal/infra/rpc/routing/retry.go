package routing

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vietddude/nodewatch/internal/infra/rpc/provider"
)

// RetryConfig defines retry behavior within one monitoring cycle.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Jitter       time.Duration
}

// DefaultRetryConfig performs a single attempt.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  1,
	InitialDelay: 2 * time.Second,
	MaxDelay:     30 * time.Second,
}

// ErrorAction determines how to handle an error.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota
	ActionFatal
)

func (a ErrorAction) String() string {
	if a == ActionFatal {
		return "fatal"
	}
	return "retry"
}

// ClassifyError determines the action for a given error.
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionRetry // Should not happen
	}

	if errors.Is(err, context.Canceled) {
		return ActionFatal
	}

	var httpErr *provider.HTTPError
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode >= 500,
			httpErr.StatusCode == http.StatusTooManyRequests,
			httpErr.StatusCode == http.StatusRequestTimeout:
			return ActionRetry
		default:
			return ActionFatal
		}
	}

	// -32700: Parse error, -32600: Invalid Request, -32601: Method not found, -32602: Invalid params.
	// Any other server-side error is retried only when it looks like throttling.
	var rpcErr *provider.RPCError
	if errors.As(err, &rpcErr) {
		if rpcErr.Code >= -32700 && rpcErr.Code <= -32600 {
			return ActionFatal
		}
		if provider.IsThrottleMessage(rpcErr.Message) {
			return ActionRetry
		}
		return ActionFatal
	}

	// Network, timeouts, undecodable bodies
	return ActionRetry
}

// Do runs fn until it succeeds, returns a fatal error, or attempts run out.
// Delays grow exponentially from InitialDelay, capped at MaxDelay, with up to
// Jitter added or removed.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts <= 1 {
		return fn(ctx)
	}

	return retry.Do(ctx, newBackoff(cfg), func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if ClassifyError(err) == ActionFatal {
			return err
		}
		return retry.RetryableError(err)
	})
}

func newBackoff(cfg RetryConfig) retry.Backoff {
	initial := cfg.InitialDelay
	if initial <= 0 {
		initial = DefaultRetryConfig.InitialDelay
	}

	b := retry.NewExponential(initial)
	if cfg.MaxDelay > 0 {
		b = retry.WithCappedDuration(cfg.MaxDelay, b)
	}
	if cfg.Jitter > 0 {
		b = retry.WithJitter(cfg.Jitter, b)
	}
	return retry.WithMaxRetries(uint64(cfg.MaxAttempts-1), b)
}
