package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func withCapturedLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func TestRedactingLogger_ScrubsQueryAndHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := withCapturedLogger(t)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Header("X-Request-ID", "rid-redact")
		c.Next()
	})
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"X-Api-Key"}}))
	r.GET("/forms/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	req := httptest.NewRequest(http.MethodGet,
		"/forms/5?email=user@example.com&trace=6f1c2a8e-9b4d-4c3a-8f2e-0a1b2c3d4e5f", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	req.Header.Set("X-Api-Key", "k-12345")
	req.Header.Set("X-Contact", "call +1 212-555-0123 please")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := buf.String()
	if strings.Contains(out, "user@example.com") {
		t.Fatalf("email leaked: %s", out)
	}
	if strings.Contains(out, "6f1c2a8e") {
		t.Fatalf("uuid leaked: %s", out)
	}
	if strings.Contains(out, "secret-token") || strings.Contains(out, "k-12345") {
		t.Fatalf("masked header leaked: %s", out)
	}
	if strings.Contains(out, "212-555-0123") {
		t.Fatalf("phone leaked: %s", out)
	}
	if !strings.Contains(out, "[REDACTED:email]") || !strings.Contains(out, "[REDACTED:id]") {
		t.Fatalf("redaction markers missing: %s", out)
	}
	if !strings.Contains(out, `"path":"/forms/:id"`) {
		t.Fatalf("route template missing: %s", out)
	}
	if !strings.Contains(out, `"request_id":"rid-redact"`) {
		t.Fatalf("request id missing: %s", out)
	}
}

func TestRedactingLogger_LevelsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := withCapturedLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Fatalf("expected warn for 404: %s", buf.String())
	}

	buf.Reset()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error for 500: %s", buf.String())
	}
}
