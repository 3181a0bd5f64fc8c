package slogx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(Config{Service: "usermgmt", Version: "test", Env: "test", Level: "debug"}, &buf)

	logger.Debug("hello", slog.String("k", "v"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "hello", entry["msg"])
	require.Equal(t, "usermgmt", entry["service"])
	require.Equal(t, "v", entry["k"])
}

func TestNewWithWriterRotatingFile(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "usermgmt.log")
	logger := NewWithWriter(Config{Service: "usermgmt", Format: "text", File: file}, &buf)

	logger.Info("to both sinks")

	require.Contains(t, buf.String(), "to both sinks")
	data, err := os.ReadFile(file) // follows the link to the current file
	require.NoError(t, err)
	require.Contains(t, string(data), "to both sinks")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, parseLevel("warning"))
	require.Equal(t, slog.LevelError, parseLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestHTTPMiddlewareAttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var seen *slog.Logger
	h := HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.NotNil(t, seen)
	require.NotSame(t, slog.Default(), seen)
	require.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
	require.Contains(t, buf.String(), `"status":418`)
	require.Contains(t, buf.String(), `"req_id":"req-123"`)
}
