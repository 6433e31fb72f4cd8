package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"
)

func TestServer_StartStop(t *testing.T) {
	cfg := testConfig(t)
	s, err := NewServer(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	if s.Addr() != "" {
		t.Errorf("Addr() before Start = %q, want empty", s.Addr())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	addr := s.Addr()
	if addr == "" {
		t.Fatal("Addr() is empty after Start")
	}

	resp, err := http.Get("http://" + addr + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", resp.StatusCode, body)
	}

	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if _, err := http.Get("http://" + addr + "/api/health"); err == nil {
		t.Error("expected requests to fail after Stop")
	}

	// second stop is a no-op
	if err := s.Stop(ctx); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestServer_StartBindError(t *testing.T) {
	first, err := NewServer(context.Background(), testConfig(t), discardLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = first.Stop(context.Background()) })

	_, port := splitPort(t, first.Addr())

	cfg := testConfig(t)
	cfg.Deskgate.HTTP.Port = port
	second, err := NewServer(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(func() { _ = second.Stop(context.Background()) })

	if err := second.Start(context.Background()); err == nil {
		t.Fatal("expected bind error for a port in use")
	}
}

func TestServer_StopWithoutStart(t *testing.T) {
	s, err := NewServer(context.Background(), testConfig(t), discardLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func splitPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, p, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("SplitHostPort(%q): %v", addr, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		t.Fatalf("port %q: %v", p, err)
	}
	return host, port
}
