package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPProvider_Call_JSONRPC20(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode body: %v", err)
			return
		}
		if v, ok := req["jsonrpc"].(string); !ok || v != "2.0" {
			t.Errorf("expected jsonrpc: 2.0, got %v", req["jsonrpc"])
		}
		if req["method"] != "platform.getHeight" {
			t.Errorf("unexpected method %v", req["method"])
		}
		if req["id"] != float64(1) {
			t.Errorf("expected id 1, got %v", req["id"])
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"result":  map[string]any{"height": "42"},
			"id":      req["id"],
		})
	}))
	defer server.Close()

	p := NewHTTPProvider("avax-mock", server.URL, 5*time.Second)
	result, err := p.Call(context.Background(), "platform.getHeight", map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out struct {
		Height string `json:"height"`
	}
	if err := json.Unmarshal(result, &out); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if out.Height != "42" {
		t.Errorf("expected height 42, got %s", out.Height)
	}
	if !p.GetHealth().Available {
		t.Error("expected provider to be available after success")
	}
}

func TestHTTPProvider_Call_Non200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	p := NewHTTPProvider("avax-mock", server.URL, 5*time.Second)
	_, err := p.Call(context.Background(), "platform.getHeight", nil)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", httpErr.StatusCode)
	}
}

func TestHTTPProvider_Call_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "10")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewHTTPProvider("avax-mock", server.URL, 5*time.Second)
	if _, err := p.Call(context.Background(), "platform.getHeight", nil); err == nil {
		t.Fatal("expected error")
	}
	if p.Monitor.CheckProviderStatus() != StatusThrottled {
		t.Errorf("expected throttled, got %s", p.Monitor.CheckProviderStatus())
	}
}

func TestHTTPProvider_Call_RPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32000,"message":"couldn't parse nodeID"},"id":1}`))
	}))
	defer server.Close()

	p := NewHTTPProvider("avax-mock", server.URL, 5*time.Second)
	_, err := p.Call(context.Background(), "platform.getCurrentValidators", nil)

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected RPCError, got %v", err)
	}
	if rpcErr.Code != -32000 {
		t.Errorf("expected code -32000, got %d", rpcErr.Code)
	}
}

func TestHTTPProvider_Call_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer server.Close()

	p := NewHTTPProvider("avax-mock", server.URL, 5*time.Second)
	_, err := p.Call(context.Background(), "platform.getCurrentValidators", nil)

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestHTTPProvider_Call_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	p := NewHTTPProvider("avax-mock", server.URL, 50*time.Millisecond)
	_, err := p.Call(context.Background(), "platform.getHeight", nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !IsTimeout(err) {
		t.Errorf("expected timeout classification, got %v", err)
	}
	if p.GetHealth().ErrorRate != 1 {
		t.Errorf("expected error rate 1, got %v", p.GetHealth().ErrorRate)
	}
}
