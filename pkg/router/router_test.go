package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"portfolioos/pkg/logger"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})
}

func TestRouter_New(t *testing.T) {
	r := New()
	if r == nil {
		t.Fatal("New() returned nil")
	}
	if r.routes == nil {
		t.Error("routes map is nil")
	}
	if r.notFound == nil {
		t.Error("notFound handler is nil")
	}
}

func TestRouter_ServeHTTP_ExactMatch(t *testing.T) {
	r := New()
	r.GET("/api/projects", okHandler("projects"))

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	if w.Body.String() != "projects" {
		t.Errorf("expected body 'projects', got '%s'", w.Body.String())
	}
}

func TestRouter_ServeHTTP_NotFound(t *testing.T) {
	r := New()
	r.GET("/api/projects", okHandler("OK"))

	req := httptest.NewRequest(http.MethodGet, "/api/nothing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestRouter_ServeHTTP_MethodNotAllowed(t *testing.T) {
	r := New()
	r.GET("/api/projects", okHandler("OK"))

	req := httptest.NewRequest(http.MethodPatch, "/api/projects", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}
}

func TestRouter_UnknownMethodUnknownPathIsNotFound(t *testing.T) {
	r := New()
	r.GET("/api/projects", okHandler("OK"))

	req := httptest.NewRequest(http.MethodPost, "/index.html", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestRouter_NamedParameter(t *testing.T) {
	r := New()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := Param(r, "id"); got != "123" {
			t.Errorf("expected id '123', got '%s'", got)
		}
		w.Write([]byte("OK"))
	})
	r.GET("/api/projects/:id", handler)

	req := httptest.NewRequest(http.MethodGet, "/api/projects/123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestRouter_ArbitraryParameterNames(t *testing.T) {
	r := New()
	var got Params
	r.POST("/api/desktop/sessions/:id/windows/:app/:action", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ParamsFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/desktop/sessions/abc/windows/terminal/maximize", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	want := map[string]string{"id": "abc", "app": "terminal", "action": "maximize"}
	for k, v := range want {
		if got.Get(k) != v {
			t.Errorf("param %s = %q, want %q", k, got.Get(k), v)
		}
	}

	routes := r.Routes()
	if len(routes) != 1 || len(routes[0].Params) != 3 {
		t.Errorf("expected 3 declared params, got %+v", routes)
	}
}

func TestRouter_LiteralDotsAreEscaped(t *testing.T) {
	r := New()
	r.GET("/favicon.ico", okHandler("icon"))

	req := httptest.NewRequest(http.MethodGet, "/faviconXico", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected literal dot to not match any char, got %d", w.Code)
	}
}

func TestRouter_Wildcard(t *testing.T) {
	r := New()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Wildcard includes the leading slash
		if got := Param(r, "wildcard"); got != "/js/app.js" {
			t.Errorf("expected wildcard '/js/app.js', got '%s'", got)
		}
		w.Write([]byte("OK"))
	})
	r.GET("/assets/*", handler)

	req := httptest.NewRequest(http.MethodGet, "/assets/js/app.js", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestRouter_RouteMiddlewareOrder(t *testing.T) {
	r := New()
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	r.Use(mark("global"))
	r.DELETE("/api/notes/:id", okHandler("OK"), mark("first"), mark("second"))

	req := httptest.NewRequest(http.MethodDelete, "/api/notes/1", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if strings.Join(order, ",") != "global,first,second" {
		t.Errorf("unexpected middleware order %v", order)
	}
}

func TestRouter_GlobalMiddlewareWrapsNotFound(t *testing.T) {
	r := New()
	called := false
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	if !called {
		t.Error("expected global middleware to run for unmatched paths")
	}
}

func TestRouter_SetNotFoundHandler(t *testing.T) {
	r := New()
	r.SetNotFoundHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if w.Code != http.StatusTeapot {
		t.Errorf("expected status %d, got %d", http.StatusTeapot, w.Code)
	}
}

func TestRouter_SetMethodNotAllowedHandler(t *testing.T) {
	r := New()
	r.GET("/api/contact", okHandler("OK"))
	r.SetMethodNotAllowedHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/contact", nil))

	if w.Code != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, w.Code)
	}
}

func TestParams(t *testing.T) {
	p := Params{"id": "1"}
	if p.Get("id") != "1" || p.Get("missing") != "" {
		t.Error("unexpected Get results")
	}

	ctx := WithParams(context.Background(), p)
	got, ok := ParamsFromContext(ctx)
	if !ok || got.Get("id") != "1" {
		t.Error("expected params round trip through context")
	}

	if got := Param(httptest.NewRequest(http.MethodGet, "/", nil), "id"); got != "" {
		t.Errorf("expected empty param without a match, got %q", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.0.2.1:1234", "192.0.2.1"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"pipe", "pipe"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remote
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		if got := ClientIP(req); got != tt.want {
			t.Errorf("ClientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log, _ := logger.New(logger.WithWriter(&buf))

	handler := LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/github/repos", nil))

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected one JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["status"] != float64(http.StatusBadGateway) || entry["path"] != "/api/github/repos" {
		t.Errorf("unexpected log entry %v", entry)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
	}
	if !strings.Contains(w.Body.String(), "Server Error") {
		t.Errorf("expected JSON message, got %q", w.Body.String())
	}
}

func TestCORSMiddleware(t *testing.T) {
	t.Run("allow all", func(t *testing.T) {
		handler := CORSMiddleware()(okHandler("OK"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("expected wildcard origin")
		}
	})

	t.Run("preflight", func(t *testing.T) {
		handler := CORSMiddleware("*")(okHandler("OK"))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/projects", nil))

		if w.Code != http.StatusNoContent {
			t.Errorf("expected status %d, got %d", http.StatusNoContent, w.Code)
		}
	})

	t.Run("allow list", func(t *testing.T) {
		handler := CORSMiddleware("https://portfolio.example")(okHandler("OK"))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://portfolio.example")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Header().Get("Access-Control-Allow-Origin") != "https://portfolio.example" {
			t.Errorf("expected echoed origin, got %q", w.Header().Get("Access-Control-Allow-Origin"))
		}

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "https://evil.example")
		w = httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		if w.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Error("expected no allow-origin for unknown origin")
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || w.Header().Get("X-Request-ID") != seen {
		t.Errorf("expected generated id in context and header, got %q / %q", seen, w.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-id")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "client-id" {
		t.Errorf("expected client id to be reused, got %q", seen)
	}
}

func TestChain(t *testing.T) {
	var order []int
	mw := func(n int) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, n)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(mw(1), mw(2), mw(3))(okHandler("OK")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if len(order) != 3 || order[0] != 1 || order[2] != 3 {
		t.Errorf("unexpected order %v", order)
	}
}

func TestTimeoutMiddleware(t *testing.T) {
	handler := TimeoutMiddleware(50 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok := r.Context().Deadline()
		if !ok {
			t.Error("expected a deadline")
		}
		if time.Until(deadline) > 50*time.Millisecond {
			t.Error("deadline too far in the future")
		}
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}
