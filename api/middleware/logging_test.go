package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/luminastudio/lumina-backend/pkg/logger"
)

func TestLoggingRecordsDownstreamStatus(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "middleware-test", Output: &buf})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/proposals", nil)
	Logging(logg)(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusTeapot {
		t.Fatalf("expected status passthrough, got %d", resp.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "request.complete") {
		t.Fatalf("expected completion log line, got %q", out)
	}
	if !strings.Contains(out, "418") {
		t.Fatalf("expected handler status in log line, got %q", out)
	}
}

func TestLoggingDefaultsStatusWhenHandlerWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "middleware-test", Output: &buf})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	Logging(logg)(handler).ServeHTTP(resp, req)

	if !strings.Contains(buf.String(), "200") {
		t.Fatalf("expected implicit 200 in log line, got %q", buf.String())
	}
}
