package ratelimit

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-social/lumina/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestMiddleware_AllowsThenRejects(t *testing.T) {
	rl, err := New(0.0001, 2, 16)
	require.NoError(t, err)

	var handlerCalls int
	h := Middleware(rl, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalls++
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/fe/update", nil)
		req.RemoteAddr = "203.0.113.7:52011"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do().Code)
	assert.Equal(t, http.StatusOK, do().Code)
	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 2, handlerCalls, "denied request must not reach the handler")
}

func TestMiddleware_SeparateClientsDoNotShareBuckets(t *testing.T) {
	rl, err := New(0.0001, 1, 16)
	require.NoError(t, err)

	h := Middleware(rl, testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("198.51.100.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, do("198.51.100.1:2000"), "port must not change the key")
	assert.Equal(t, http.StatusOK, do("198.51.100.2:1000"))
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		remoteAddr string
		want       string
	}{
		{"203.0.113.7:52011", "203.0.113.7"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"203.0.113.7", "203.0.113.7"},
		{"", UnknownKey},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.remoteAddr
		assert.Equal(t, tt.want, ClientKey(req), "remote addr %q", tt.remoteAddr)
	}
}
