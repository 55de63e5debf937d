// Package provider implements the JSON-RPC transport used to reach the
// platform API.
//
// This package contains:
//   - RPCProvider interface: a single JSON-RPC endpoint
//   - HTTPProvider: JSON-RPC 2.0 over HTTP POST
//   - ProviderMonitor: latency and throttle tracking
//   - HTTPError / RPCError: typed failures callers can classify
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RPCProvider makes JSON-RPC calls against one endpoint.
type RPCProvider interface {
	// GetName returns provider identifier (e.g., "avalanche-p")
	GetName() string

	// GetHealth returns current health metrics
	GetHealth() HealthStatus

	// Call makes a single RPC request and returns the raw "result" member
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)

	// Close cleans up resources
	Close() error
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool          `json:"available"`
	Latency       time.Duration `json:"latency"`
	ErrorRate     float64       `json:"error_rate"`
	LastSuccessAt time.Time     `json:"last_success_at"`
	LastFailureAt time.Time     `json:"last_failure_at"`
	MonitorStats  *MonitorStats `json:"monitor_stats,omitempty"`
}

// HTTPError is returned when the endpoint answers with a non-200 status.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// RPCError is a JSON-RPC error object returned inside a 200 response.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// DecodeError means the response body was not a JSON-RPC envelope.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("parse response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
