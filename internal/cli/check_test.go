package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeCheckConfig(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
monitor:
  interval: 5s
  node_ids:
    - NodeID-A
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	prev := cfgPath
	cfgPath = path
	t.Cleanup(func() { cfgPath = prev })
}

func TestCheck_PrintsReport(t *testing.T) {
	now := time.Now().Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result": map[string]any{
				"validators": []map[string]any{{
					"nodeID":    "NodeID-A",
					"connected": false,
					"uptime":    "92.5",
					"startTime": now - 100,
					"endTime":   now + 100,
				}},
			},
		})
	}))
	defer srv.Close()

	writeCheckConfig(t)
	t.Setenv("RPC_API", srv.URL)

	var out bytes.Buffer
	if code := check(checkCmd, &out); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out.String(), "1 node(s) not connected") || !strings.Contains(out.String(), "uptime: 92.5") {
		t.Errorf("unexpected report %q", out.String())
	}
}

func TestCheck_FetchFailureReturnsExitCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	writeCheckConfig(t)
	t.Setenv("RPC_API", srv.URL)

	var out bytes.Buffer
	if code := check(checkCmd, &out); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if out.Len() != 0 {
		t.Errorf("expected no report on failure, got %q", out.String())
	}
}

func TestCheck_InvalidConfigReturnsExitCode(t *testing.T) {
	writeCheckConfig(t)
	t.Setenv("RPC_API", "")

	var out bytes.Buffer
	if code := check(checkCmd, &out); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}
