package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLoggerCapturesStatusAndClient(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := RequestLogger(logger, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	}))

	req := httptest.NewRequest("GET", "/api/gyms/nope", nil)
	req.RemoteAddr = "10.0.0.1:4321"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	if !strings.Contains(line, "level=WARN") {
		t.Errorf("4xx should log at warn: %q", line)
	}
	if !strings.Contains(line, "status=404") {
		t.Errorf("missing status: %q", line)
	}
	if !strings.Contains(line, "client=10.0.0.1") {
		t.Errorf("client should come from the peer address: %q", line)
	}
	if !strings.Contains(line, "bytes=7") {
		t.Errorf("missing body size: %q", line)
	}
}

func TestRequestLoggerDefaultsToOK(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	handler := RequestLogger(logger, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/health", nil))

	line := buf.String()
	if !strings.Contains(line, "level=INFO") || !strings.Contains(line, "status=200") {
		t.Errorf("implicit 200 should log as info: %q", line)
	}
}
