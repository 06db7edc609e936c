package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"generator/internal/api"
	"generator/internal/config"
)

func TestNewServerRoutes(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.DevMode = true
	cfg.Data.DataDir = t.TempDir()

	s, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status code=%d", w.Code)
	}
	var status api.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Diagnostics || status.VariableSheet != "變數" {
		t.Fatalf("unexpected status: %+v", status)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("CORS header=%q", got)
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/reports", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status=%d", w.Code)
	}

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown route status=%d", w.Code)
	}
}

func TestNewServerWithoutDiagnostics(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.DevMode = true
	cfg.Report.Diagnostics = false

	s, err := NewServer(cfg, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if s.store != nil {
		t.Fatalf("store opened without diagnostics")
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/generations", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("generations status=%d", w.Code)
	}
}

func TestNewServerRejectsBadRules(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Report.Diagnostics = false
	cfg.Rules.Pumps = []config.PumpConfig{{Category: "hot"}}

	if _, err := NewServer(cfg, nil); err == nil {
		t.Fatalf("expected error for unknown pump category")
	}
}
