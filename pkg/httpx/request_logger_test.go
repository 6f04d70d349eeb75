package httpx_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Gunvolt24/brokerdemo/pkg/httpx"
	"github.com/gin-gonic/gin"
)

// recLogger — запоминает уровни и сообщения.
type recLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recLogger) add(level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+": "+fmt.Sprintf(format, args...))
}

func (l *recLogger) Debugf(_ context.Context, f string, a ...any) { l.add("debug", f, a...) }
func (l *recLogger) Infof(_ context.Context, f string, a ...any)  { l.add("info", f, a...) }
func (l *recLogger) Warnf(_ context.Context, f string, a ...any)  { l.add("warn", f, a...) }
func (l *recLogger) Errorf(_ context.Context, f string, a ...any) { l.add("error", f, a...) }

func serve(r *gin.Engine, method, path string) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, http.NoBody))
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log := &recLogger{}
	r := gin.New()
	r.Use(httpx.RequestLogger(log))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	serve(r, http.MethodGet, "/ok")
	serve(r, http.MethodGet, "/bad")
	serve(r, http.MethodGet, "/boom")

	if len(log.entries) != 3 {
		t.Fatalf("want 3 log entries, got %d: %v", len(log.entries), log.entries)
	}
	wantPrefix := []string{"info: ", "warn: ", "error: "}
	for i, p := range wantPrefix {
		if got := log.entries[i]; len(got) < len(p) || got[:len(p)] != p {
			t.Fatalf("entry %d: want prefix %q, got %q", i, p, got)
		}
	}
}

func TestRequestLogger_SkipsProbes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	log := &recLogger{}
	r := gin.New()
	r.Use(httpx.RequestLogger(log))
	for _, p := range []string{"/health", "/ping", "/metrics"} {
		r.GET(p, func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	serve(r, http.MethodGet, "/health")
	serve(r, http.MethodGet, "/ping")
	serve(r, http.MethodGet, "/metrics")

	if len(log.entries) != 0 {
		t.Fatalf("probes must not be logged, got %v", log.entries)
	}
}
