package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"kudos/internal/platform/requestctx"
	"kudos/internal/transport/http/api"
)

// RateLimitKeyFunc picks the bucket a request is counted against.
type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*limiter)

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(l *limiter) {
		if fn != nil {
			l.keyFn = fn
		}
	}
}

// RateLimit applies one fixed window to every request, keyed by the signed-in
// user or else the client address.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	l := newLimiter(limit, window, actorOrIPKey)
	for _, opt := range opts {
		opt(l)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.enforce(w, r) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// SensitiveMutationRateLimit adds tighter windows on credential routes and on
// the writes that create feedback or change the hierarchy. Credential routes
// are counted both per address and per login identity.
func SensitiveMutationRateLimit(baseLimit int, window time.Duration) func(http.Handler) http.Handler {
	authLimit := max(baseLimit/4, 1)
	chain := map[sensitiveScope][]*limiter{
		sensitiveScopeAuth: {
			newLimiter(authLimit, window, clientIPKey),
			newLimiter(authLimit, window, loginIdentityKey),
		},
		sensitiveScopeActor: {
			newLimiter(max(baseLimit/2, 1), window, actorOrIPKey),
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, l := range chain[sensitiveRateScope(r)] {
				if !l.enforce(w, r) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

type sensitiveScope string

const (
	sensitiveScopeNone  sensitiveScope = ""
	sensitiveScopeAuth  sensitiveScope = "auth"
	sensitiveScopeActor sensitiveScope = "actor"
)

type scopeRule struct {
	exact  string
	prefix string
	suffix string
	scope  sensitiveScope
}

var sensitiveRules = []scopeRule{
	{exact: "/auth/login", scope: sensitiveScopeAuth},
	{exact: "/auth/forgot-password", scope: sensitiveScopeAuth},
	{exact: "/auth/reset-password", scope: sensitiveScopeAuth},
	{exact: "/feedback", scope: sensitiveScopeActor},
	{exact: "/admin/feedback/import", scope: sensitiveScopeActor},
	{prefix: "/users/", suffix: "/password", scope: sensitiveScopeActor},
	{prefix: "/users/", suffix: "/manager", scope: sensitiveScopeActor},
}

func (rule scopeRule) matches(path string) bool {
	if rule.exact != "" {
		return path == rule.exact
	}
	return strings.HasPrefix(path, rule.prefix) && strings.HasSuffix(path, rule.suffix)
}

func sensitiveRateScope(r *http.Request) sensitiveScope {
	if r == nil {
		return sensitiveScopeNone
	}
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return sensitiveScopeNone
	}
	path := strings.TrimSuffix(normalizedAPIPath(r.URL.Path), "/")
	for _, rule := range sensitiveRules {
		if rule.matches(path) {
			return rule.scope
		}
	}
	return sensitiveScopeNone
}

func actorOrIPKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.UserID != "" {
		return "user:" + user.UserID
	}
	return clientIPKey(r)
}

// clientIPKey prefers the address resolved by RequestID so every limiter and
// the audit log agree on it.
func clientIPKey(r *http.Request) string {
	if ip := requestctx.GetClientIP(r.Context()); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		return host
	}
	return remote
}

// loginIdentityKey keys credential routes by the mailbox being tried. Login
// also accepts form posts and a username alias.
func loginIdentityKey(r *http.Request) string {
	if id := loginIdentity(r); id != "" {
		return "email:" + strings.ToLower(id)
	}
	return clientIPKey(r)
}

const peekLimit = 64 << 10

func loginIdentity(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, peekLimit))
	if err != nil {
		return ""
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if len(raw) == 0 {
		return ""
	}

	contentType := strings.ToLower(r.Header.Get("Content-Type"))
	fields := map[string]string{}
	switch {
	case strings.Contains(contentType, "application/json"):
		var payload map[string]any
		if json.Unmarshal(raw, &payload) != nil {
			return ""
		}
		for key, value := range payload {
			if s, ok := value.(string); ok {
				fields[key] = s
			}
		}
	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return ""
		}
		for key := range values {
			fields[key] = values.Get(key)
		}
	}
	for _, key := range []string{"email", "username"} {
		if v := strings.TrimSpace(fields[key]); v != "" {
			return v
		}
	}
	return ""
}

type bucket struct {
	count int
	reset time.Time
}

type limiter struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	keyFn     RateLimitKeyFunc
	buckets   map[string]*bucket
	nextSweep time.Time
	now       func() time.Time
}

func newLimiter(limit int, window time.Duration, keyFn RateLimitKeyFunc) *limiter {
	if keyFn == nil {
		keyFn = actorOrIPKey
	}
	return &limiter{
		limit:   limit,
		window:  window,
		keyFn:   keyFn,
		buckets: map[string]*bucket{},
		now:     time.Now,
	}
}

type decision struct {
	allowed   bool
	remaining int
	resetIn   time.Duration
}

// take counts one hit for key. Expired buckets are swept once per window.
func (l *limiter) take(key string) decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.After(l.nextSweep) {
		for k, b := range l.buckets {
			if now.After(b.reset) {
				delete(l.buckets, k)
			}
		}
		l.nextSweep = now.Add(l.window)
	}

	b, ok := l.buckets[key]
	if !ok || now.After(b.reset) {
		b = &bucket{reset: now.Add(l.window)}
		l.buckets[key] = b
	}
	b.count++
	return decision{
		allowed:   b.count <= l.limit,
		remaining: max(l.limit-b.count, 0),
		resetIn:   b.reset.Sub(now),
	}
}

func (l *limiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if l.limit <= 0 {
		return true
	}
	key := l.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}
	d := l.take(key)
	resetSec := ceilSeconds(d.resetIn)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSec))
	if d.allowed {
		return true
	}

	w.Header().Set("Retry-After", strconv.Itoa(max(resetSec, 1)))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", l.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// normalizedAPIPath strips the API version prefix so rules and body limits
// can name routes as handlers register them.
func normalizedAPIPath(path string) string {
	cleaned := strings.TrimPrefix(strings.TrimSpace(path), "/api/v1")
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	return cleaned
}
