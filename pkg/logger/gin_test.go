package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestMiddleware_PropagatesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	l := NewWithWriter("local", &buf)

	var seen string
	r := gin.New()
	r.Use(Middleware(l))
	r.GET("/api/health", func(c *gin.Context) {
		seen = c.GetString(ContextRequestID)
		FromGin(c).Debug("handler")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(headerRequestID, "rid-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if seen != "rid-42" {
		t.Fatalf("expected request id in context, got %q", seen)
	}
	if got := w.Header().Get(headerRequestID); got != "rid-42" {
		t.Fatalf("expected echoed request id, got %q", got)
	}

	dec := json.NewDecoder(&buf)
	var lines int
	for dec.More() {
		var entry map[string]any
		if err := dec.Decode(&entry); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		if entry["request_id"] != "rid-42" {
			t.Fatalf("log line without request id: %v", entry)
		}
		lines++
	}
	if lines != 2 {
		t.Fatalf("expected handler + summary lines, got %d", lines)
	}
}

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(NewWithWriter("production", &bytes.Buffer{})))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get(headerRequestID) == "" {
		t.Fatalf("expected generated request id")
	}
}
