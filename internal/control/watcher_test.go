package control

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/nodewatch/internal/core/config"
	"github.com/vietddude/nodewatch/internal/monitoring/cycle"
)

type webhookRecorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *webhookRecorder) handler(w http.ResponseWriter, req *http.Request) {
	if req.Method == http.MethodPost {
		var body struct {
			Content string `json:"content"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		r.mu.Lock()
		r.messages = append(r.messages, body.Content)
		r.mu.Unlock()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *webhookRecorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func newPlatformServer(t *testing.T, connected bool) *httptest.Server {
	t.Helper()
	now := time.Now().Unix()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "platform.getCurrentValidators") {
			t.Errorf("unexpected request %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result": map[string]any{
				"validators": []map[string]any{{
					"nodeID":    "NodeID-A",
					"connected": connected,
					"uptime":    "92.5",
					"startTime": now - 100,
					"endTime":   now + 100,
				}},
			},
		})
	}))
}

func testConfig(rpcURL, webhookURL string) Config {
	return Config{
		Port: 0,
		Platform: config.PlatformConfig{
			Name:    "test",
			RPC:     rpcURL,
			Timeout: time.Second,
		},
		Monitor: config.MonitorConfig{
			NodeIDs:  []string{"NodeID-A"},
			Interval: 50 * time.Millisecond,
		},
		Notify: config.NotifyConfig{
			Webhook: config.WebhookConfig{URL: webhookURL, Timeout: time.Second},
		},
	}
}

func TestWatcher_RunOnce(t *testing.T) {
	rpc := newPlatformServer(t, false)
	defer rpc.Close()
	hook := &webhookRecorder{}
	hookSrv := httptest.NewServer(http.HandlerFunc(hook.handler))
	defer hookSrv.Close()

	w, err := NewWatcher(testConfig(rpc.URL, hookSrv.URL))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	o := w.RunOnce(context.Background())
	if o.Status != cycle.StatusAlert {
		t.Fatalf("expected alert, got %s (%v)", o.Status, o.Err)
	}

	msgs := hook.Messages()
	if len(msgs) != 1 || !strings.Contains(msgs[0], "NodeID-A") || !strings.Contains(msgs[0], "uptime: 92.5") {
		t.Errorf("unexpected webhook messages %v", msgs)
	}
}

func TestWatcher_NoSinkFallsBackToLog(t *testing.T) {
	rpc := newPlatformServer(t, true)
	defer rpc.Close()

	cfg := testConfig(rpc.URL, "")
	w, err := NewWatcher(cfg)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if w.sink.Name() != "log" {
		t.Errorf("expected log sink, got %s", w.sink.Name())
	}
	if o := w.RunOnce(context.Background()); o.Status != cycle.StatusHealthy {
		t.Errorf("expected healthy, got %s", o.Status)
	}
}

func TestWatcher_RequiresNodes(t *testing.T) {
	cfg := testConfig("http://localhost:9650", "")
	cfg.Monitor.NodeIDs = nil
	if _, err := NewWatcher(cfg); err == nil {
		t.Fatal("expected error for empty node list")
	}
}

func TestWatcher_Lifecycle(t *testing.T) {
	rpc := newPlatformServer(t, true)
	defer rpc.Close()
	hook := &webhookRecorder{}
	hookSrv := httptest.NewServer(http.HandlerFunc(hook.handler))
	defer hookSrv.Close()

	w, err := NewWatcher(testConfig(rpc.URL, hookSrv.URL))
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Let a few cycles run
	time.Sleep(180 * time.Millisecond)
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	msgs := hook.Messages()
	if len(msgs) < 2 {
		t.Fatalf("expected repeated reports, got %d", len(msgs))
	}
	for _, m := range msgs {
		if m != cycle.AllClearMessage {
			t.Errorf("unexpected message %q", m)
		}
	}

	report := w.healthMon.CheckHealth(context.Background())
	if report.Cycles < 2 {
		t.Errorf("expected health monitor to observe cycles, got %d", report.Cycles)
	}
}

func TestWatcher_HealthPortInUseKeepsMonitoring(t *testing.T) {
	rpc := newPlatformServer(t, true)
	defer rpc.Close()
	hook := &webhookRecorder{}
	hookSrv := httptest.NewServer(http.HandlerFunc(hook.handler))
	defer hookSrv.Close()

	// Occupy the health port so ListenAndServe fails immediately
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	cfg := testConfig(rpc.URL, hookSrv.URL)
	cfg.Port = ln.Addr().(*net.TCPAddr).Port

	w, err := NewWatcher(cfg)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for len(hook.Messages()) < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected the loop to keep reporting, got %d messages", len(hook.Messages()))
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	if err := w.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
