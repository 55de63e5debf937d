package chain

import (
	"errors"
	"fmt"

	"github.com/vietddude/nodewatch/internal/infra/rpc/provider"
)

// TransportError means the endpoint could not be reached or answered with a
// non-200 status. StatusCode is zero for network-level failures.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError means a response arrived but did not have the expected shape.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol error: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// ErrorType returns a short label for metrics and logs.
func ErrorType(err error) string {
	var te *TransportError
	var pe *ProtocolError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &te):
		if te.StatusCode != 0 {
			return "http_status"
		}
		if provider.IsTimeout(te) {
			return "timeout"
		}
		return "transport"
	case errors.As(err, &pe):
		return "protocol"
	default:
		return "other"
	}
}
