package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap/zaptest"

	"github.com/elilinden/Support-bot/internal/api"
	"github.com/elilinden/Support-bot/internal/audit"
	"github.com/elilinden/Support-bot/internal/coach"
	"github.com/elilinden/Support-bot/internal/db"
	"github.com/elilinden/Support-bot/internal/llm"
	"github.com/elilinden/Support-bot/internal/session"
	"github.com/elilinden/Support-bot/internal/upload"
)

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	logger := zaptest.NewLogger(t)
	uploads, err := upload.New(upload.Options{})
	if err != nil {
		t.Fatalf("upload.New: %v", err)
	}
	auditStore := audit.NewStore(database)
	svc := api.NewService(coach.New(llm.NewMockProvider(), coach.Options{}, logger),
		session.NewSQLiteStore(database), auditStore, uploads,
		api.Options{Health: llm.CheckHealth(llm.Options{Mock: true})}, logger)

	return New(cfg, api.NewHandler(svc, logger), auditStore, logger)
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0, AllowAll: true})

	req := httptest.NewRequest("OPTIONS", "/api/health", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestCORSRejectsForeignOriginByDefault(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0})

	req := httptest.NewRequest("OPTIONS", "/api/health", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Allow-Origin %q", got)
	}
}

func TestRoutesMounted(t *testing.T) {
	srv := newTestServer(t, Config{})

	for _, path := range []string{"/api/health", "/api/sessions", "/api/counties", "/api/audit"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, w.Code)
		}
	}
}

func TestServeAndShutdown(t *testing.T) {
	srv := newTestServer(t, Config{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Serve returned %v after shutdown", err)
	}
}

func dialCoach(t *testing.T, srv *Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws/coach", header)
}

func TestWebSocketOriginCheck(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0})

	_, resp, err := dialCoach(t, srv, "http://evil.example")
	if err == nil {
		t.Fatal("expected handshake from foreign origin to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign origin, got %v", resp)
	}

	for _, origin := range []string{"http://localhost:5173", "http://127.0.0.1:8080", ""} {
		conn, _, err := dialCoach(t, srv, origin)
		if err != nil {
			t.Fatalf("origin %q: dial: %v", origin, err)
		}
		conn.Close()
	}
}

func TestWebSocketAllowAllOrigins(t *testing.T) {
	srv := newTestServer(t, Config{Port: 0, AllowAll: true})

	conn, _, err := dialCoach(t, srv, "http://evil.example")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()
}
