package chain

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&TransportError{StatusCode: 503, Err: errors.New("unavailable")}, "http_status"},
		{&TransportError{Err: errors.New("connection refused")}, "transport"},
		{&TransportError{Err: fmt.Errorf("post: %w", context.DeadlineExceeded)}, "timeout"},
		{fmt.Errorf("fetch: %w", &ProtocolError{Reason: "missing result"}), "protocol"},
		{errors.New("boom"), "other"},
	}

	for _, tt := range tests {
		if got := ErrorType(tt.err); got != tt.want {
			t.Errorf("ErrorType(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
