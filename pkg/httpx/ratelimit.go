package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/usermgmt/pkg/slogx"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket: RequestsPerWindow tokens refill over
// Window, and at most Burst can be spent at once.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// Tiers used by the router. Each can be overridden with
// RATELIMIT_{STRICT,MODERATE,LENIENT,PUBLIC}_{REQUESTS,WINDOW_SEC,BURST}.
var (
	// StrictLimit guards credentials, codes and anything that sends mail.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards writes.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit guards authenticated reads.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}

	// PublicLimit guards unauthenticated reads such as health probes.
	PublicLimit = RateLimitConfig{RequestsPerWindow: 1000, Window: time.Minute, Burst: 1000}
)

func init() {
	StrictLimit = ParseRateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	LenientLimit = ParseRateLimitFromEnv("LENIENT", LenientLimit)
	PublicLimit = ParseRateLimitFromEnv("PUBLIC", PublicLimit)
}

// ParseRateLimitFromEnv applies RATELIMIT_{prefix}_REQUESTS, _WINDOW_SEC and
// _BURST on top of def. Missing, malformed and non-positive values keep the
// default.
func ParseRateLimitFromEnv(prefix string, def RateLimitConfig) RateLimitConfig {
	positive := func(suffix string) (int, bool) {
		n, err := strconv.Atoi(os.Getenv("RATELIMIT_" + prefix + "_" + suffix))
		return n, err == nil && n > 0
	}

	cfg := def
	if n, ok := positive("REQUESTS"); ok {
		cfg.RequestsPerWindow = n
	}
	if n, ok := positive("WINDOW_SEC"); ok {
		cfg.Window = time.Duration(n) * time.Second
	}
	if n, ok := positive("BURST"); ok {
		cfg.Burst = n
	}
	return cfg
}

// KeyExtractor picks the bucket a request is charged to. An empty key lets
// the request through uncharged.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor returns the client address, preferring the first
// X-Forwarded-For hop, then X-Real-IP, then RemoteAddr.
func IPKeyExtractor(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// UserKeyExtractor returns the authenticated subject, or "" before authn.
func UserKeyExtractor(r *http.Request) string {
	sub, _ := r.Context().Value(CtxKeyUserID).(string)
	return sub
}

// PathValueKeyExtractor returns the lowercased value of a path wildcard,
// so /sendemailcode/A@x.com and /sendemailcode/a@x.com share a bucket.
func PathValueKeyExtractor(name string) KeyExtractor {
	return func(r *http.Request) string {
		return strings.ToLower(r.PathValue(name))
	}
}

// maxPeekBytes matches the DecodeJSON body limit.
const maxPeekBytes = 1 << 20

// JSONFieldKeyExtractor returns the lowercased string value of a top level
// field of a JSON body, e.g. the login identifier. The body is restored for
// the handler. Bodies that are not JSON objects, or lack the field, yield "".
func JSONFieldKeyExtractor(field string) KeyExtractor {
	return func(r *http.Request) string {
		if r.Body == nil || r.Body == http.NoBody {
			return ""
		}

		raw, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes+1))
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil || len(raw) > maxPeekBytes {
			return ""
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return ""
		}
		var value string
		if err := json.Unmarshal(fields[field], &value); err != nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(value))
	}
}

// CompositeKeyExtractor joins the non-empty keys of extractors with sep.
func CompositeKeyExtractor(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if key := extract(r); key != "" {
				parts = append(parts, key)
			}
		}
		return strings.Join(parts, sep)
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore holds one bucket per key. Buckets idle long enough to have
// refilled completely are indistinguishable from new ones and are swept.
type limiterStore struct {
	rate  rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLimiterStore(cfg RateLimitConfig, now func() time.Time) *limiterStore {
	perSecond := float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()
	refill := time.Duration(float64(cfg.Burst) / perSecond * float64(time.Second))

	return &limiterStore{
		rate:      rate.Limit(perSecond),
		burst:     cfg.Burst,
		idle:      max(refill, time.Minute),
		now:       now,
		buckets:   make(map[string]*bucket),
		lastSweep: now(),
	}
}

// take charges one token to key. When the bucket is empty it reports how
// long until the next token without consuming it.
func (s *limiterStore) take(key string) (bool, time.Duration) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) >= s.idle {
		for k, b := range s.buckets {
			if now.Sub(b.lastSeen) >= s.idle {
				delete(s.buckets, k)
			}
		}
		s.lastSweep = now
	}

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.buckets[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, s.idle
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// RateLimitMiddleware charges each request to the bucket chosen by
// keyExtractor and answers 429 with Retry-After once it is empty.
func RateLimitMiddleware(cfg RateLimitConfig, keyExtractor KeyExtractor) Middleware {
	store := newLimiterStore(cfg, time.Now)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyExtractor(r)
			if key == "" {
				slogx.FromContext(r.Context()).Warn("rate limit: no key for request, not charged",
					slog.String("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := store.take(key)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int(wait.Round(time.Second).Seconds()), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerWindow))
			w.Header().Set("X-RateLimit-Window", cfg.Window.String())

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				slog.String("key", key),
				slog.String("path", r.URL.Path),
				slog.Int("retry_after", retryAfter),
			)
			WriteError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		})
	}
}

// RateLimitByIP charges requests to the client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, IPKeyExtractor)
}

// RateLimitByUser charges requests to the authenticated subject and address.
// It must run after the authn middleware.
func RateLimitByUser(cfg RateLimitConfig) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", UserKeyExtractor, IPKeyExtractor))
}

// RateLimitByIPAndPathValue charges requests to the address and a path
// wildcard, e.g. the recipient of a verification mail.
func RateLimitByIPAndPathValue(cfg RateLimitConfig, name string) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", IPKeyExtractor, PathValueKeyExtractor(name)))
}

// RateLimitByIPAndJSONField charges requests to the address and a JSON body
// field, e.g. the account a login attempt targets.
func RateLimitByIPAndJSONField(cfg RateLimitConfig, field string) Middleware {
	return RateLimitMiddleware(cfg, CompositeKeyExtractor(":", IPKeyExtractor, JSONFieldKeyExtractor(field)))
}
