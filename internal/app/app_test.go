package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fxsml/dispatch"
	"github.com/fxsml/dispatch/internal/toolbox"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T, cfg Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

func addAndList(t *testing.T, a *App) {
	t.Helper()
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tools", "application/json", strings.NewReader(`{"name":"hammer"}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}

	tools, err := dispatch.Query[toolbox.ListTools, []toolbox.Tool](context.Background(), a.Dispatcher(), toolbox.ListTools{})
	if err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "hammer" {
		t.Errorf("Expected [hammer], got %v", tools)
	}
}

func TestNewMemory(t *testing.T) {
	addAndList(t, newTestApp(t, DefaultConfig()))
}

func TestNewSQLite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store = StoreSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "toolbox.db")
	addAndList(t, newTestApp(t, cfg))
}

func TestNewRedis(t *testing.T) {
	srv := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.Store = StoreRedis
	cfg.RedisURL = "redis://" + srv.Addr() + "/0"
	addAndList(t, newTestApp(t, cfg))
}

func TestNewRedisUnreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store = StoreRedis
	cfg.RedisURL = "redis://127.0.0.1:1/0"
	if _, err := New(context.Background(), cfg, discardLogger()); err == nil {
		t.Error("Expected error for unreachable redis")
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store = "etcd"
	if _, err := New(context.Background(), cfg, discardLogger()); err == nil {
		t.Error("Expected error for invalid config")
	}
}

func TestValidationRejectsBlankName(t *testing.T) {
	a := newTestApp(t, DefaultConfig())
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/tools", "application/json", strings.NewReader(`{"name":""}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestEventsForwarded(t *testing.T) {
	var mu sync.Mutex
	var types []string
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		types = append(types, r.Header.Get("Ce-Type"))
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer sink.Close()

	cfg := DefaultConfig()
	cfg.EventsTarget = sink.URL
	addAndList(t, newTestApp(t, cfg))

	mu.Lock()
	defer mu.Unlock()
	if len(types) != 1 || types[0] != "tool.added" {
		t.Errorf("Expected one tool.added event, got %v", types)
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	cfg := DefaultConfig()
	cfg.ListenAddr = addr
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	healthy := false
	for range 50 {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err == nil {
			resp.Body.Close()
			healthy = resp.StatusCode == http.StatusOK
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !healthy {
		t.Error("Expected server to become healthy")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger(io.Discard, "warn"); err != nil {
		t.Errorf("Expected valid level, got %v", err)
	}
	if _, err := NewLogger(io.Discard, "nope"); err == nil {
		t.Error("Expected error for invalid level")
	}
}

func TestNewWithLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = 1000
	cfg.MaxConcurrent = 4
	addAndList(t, newTestApp(t, cfg))
}

func TestMetricsLoggedOnClose(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "debug")
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	cfg := DefaultConfig()
	cfg.MetricsBuffer = 8
	a, err := New(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := dispatch.Query[toolbox.ListTools, []toolbox.Tool](context.Background(), a.Dispatcher(), toolbox.ListTools{}); err != nil {
		t.Fatalf("ListTools failed: %v", err)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if !strings.Contains(buf.String(), `"msg":"Request completed"`) {
		t.Errorf("Expected request metrics to be logged, got %s", buf.String())
	}
}
