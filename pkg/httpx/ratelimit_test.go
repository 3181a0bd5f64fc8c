package httpx_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/usermgmt/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func loginRequest(addr, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.RemoteAddr = addr
	return req
}

func TestIPKeyExtractor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"remote addr", nil, "192.0.2.10"},
		{"first forwarded hop", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": " 198.51.100.7 "}, "198.51.100.7"},
		{"forwarded wins over real ip", map[string]string{"X-Forwarded-For": "203.0.113.5", "X-Real-IP": "198.51.100.7"}, "203.0.113.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.0.2.10:5555"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.IPKeyExtractor(req))
		})
	}
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	t.Parallel()
	extract := httpx.JSONFieldKeyExtractor("username")

	t.Run("reads the field and restores the body", func(t *testing.T) {
		t.Parallel()
		body := `{"username":" Alice@Example.com ","password":"secret1"}`
		req := loginRequest("192.0.2.1:1", body)

		require.Equal(t, "alice@example.com", extract(req))

		rest, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(rest))
	})

	t.Run("missing field", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, extract(loginRequest("192.0.2.1:1", `{"password":"secret1"}`)))
	})

	t.Run("non string field", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, extract(loginRequest("192.0.2.1:1", `{"username":42}`)))
	})

	t.Run("malformed body is still handed on", func(t *testing.T) {
		t.Parallel()
		req := loginRequest("192.0.2.1:1", `{"username":`)
		require.Empty(t, extract(req))

		rest, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, `{"username":`, string(rest))
	})

	t.Run("no body", func(t *testing.T) {
		t.Parallel()
		require.Empty(t, extract(httptest.NewRequest(http.MethodPost, "/login", nil)))
	})
}

func TestPathValueKeyExtractor(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	var got string
	mux.HandleFunc("GET /sendemailcode/{email}", func(w http.ResponseWriter, r *http.Request) {
		got = httpx.PathValueKeyExtractor("email")(r)
	})
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sendemailcode/Bob@Example.com", nil))

	require.Equal(t, "bob@example.com", got)
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}

	t.Run("blocks once the bucket is empty", func(t *testing.T) {
		t.Parallel()
		h := httpx.RateLimitByIP(cfg)(okHandler())

		for i := range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, loginRequest("192.0.2.1:1", `{}`))
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, loginRequest("192.0.2.1:1", `{}`))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))

		var env httpx.Envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		require.Equal(t, http.StatusTooManyRequests, env.StatusCode)
		require.Equal(t, "Client Error", env.Type)
	})

	t.Run("addresses have separate buckets", func(t *testing.T) {
		t.Parallel()
		h := httpx.RateLimitByIP(cfg)(okHandler())

		for range 3 {
			h.ServeHTTP(httptest.NewRecorder(), loginRequest("192.0.2.1:1", `{}`))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, loginRequest("192.0.2.2:1", `{}`))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("empty key is not charged", func(t *testing.T) {
		t.Parallel()
		none := func(*http.Request) string { return "" }
		h := httpx.RateLimitMiddleware(cfg, none)(okHandler())

		for range 10 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, loginRequest("192.0.2.1:1", `{}`))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRateLimitByIPAndJSONField(t *testing.T) {
	t.Parallel()
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}

	var seen []string
	h := httpx.RateLimitByIPAndJSONField(cfg, "username")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Username string `json:"username"`
		}
		require.NoError(t, httpx.DecodeJSON(r, &body))
		seen = append(seen, body.Username)
	}))

	send := func(addr, username string) int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, loginRequest(addr, `{"username":"`+username+`","password":"x"}`))
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send("192.0.2.1:1", "alice"))
	require.Equal(t, http.StatusOK, send("192.0.2.1:1", "ALICE"))
	require.Equal(t, http.StatusTooManyRequests, send("192.0.2.1:1", "alice"))

	// Same address, other account; same account, other address
	require.Equal(t, http.StatusOK, send("192.0.2.1:1", "bob"))
	require.Equal(t, http.StatusOK, send("192.0.2.9:1", "alice"))

	require.Equal(t, []string{"alice", "ALICE", "bob", "alice"}, seen)
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	tests := []struct {
		name string
		env  map[string]string
		want httpx.RateLimitConfig
	}{
		{"defaults", nil, def},
		{
			"all overridden",
			map[string]string{"RATELIMIT_TEST_REQUESTS": "50", "RATELIMIT_TEST_WINDOW_SEC": "10", "RATELIMIT_TEST_BURST": "7"},
			httpx.RateLimitConfig{RequestsPerWindow: 50, Window: 10 * time.Second, Burst: 7},
		},
		{
			"invalid and non positive values keep defaults",
			map[string]string{"RATELIMIT_TEST_REQUESTS": "lots", "RATELIMIT_TEST_WINDOW_SEC": "0", "RATELIMIT_TEST_BURST": "-1"},
			def,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"RATELIMIT_TEST_REQUESTS", "RATELIMIT_TEST_WINDOW_SEC", "RATELIMIT_TEST_BURST"} {
				t.Setenv(k, tt.env[k])
			}
			require.Equal(t, tt.want, httpx.ParseRateLimitFromEnv("TEST", def))
		})
	}
}
