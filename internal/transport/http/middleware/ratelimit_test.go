package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kudos/internal/domain/auth"
)

func TestRateLimitUsesUserKeyBeforeIPFallback(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	userCtx := WithUser(context.Background(), auth.UserContext{UserID: "user-1", Role: auth.RoleUser})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", nil).WithContext(userCtx)
	first.RemoteAddr = "198.51.100.11:2222"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", nil).WithContext(userCtx)
	second.RemoteAddr = "198.51.100.12:3333"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by user key, got %d", secondRec.Code)
	}
}

func TestRateLimitFallsBackToIP(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	first := httptest.NewRequest(http.MethodPost, "/api/v1/auth/forgot-password", bytes.NewBufferString(`{"email":"a@example.com"}`))
	first.Header.Set("Content-Type", "application/json")
	first.RemoteAddr = "203.0.113.10:4444"
	firstRec := httptest.NewRecorder()
	limited.ServeHTTP(firstRec, first)
	if firstRec.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", firstRec.Code)
	}

	second := httptest.NewRequest(http.MethodPost, "/api/v1/auth/forgot-password", bytes.NewBufferString(`{"email":"b@example.com"}`))
	second.Header.Set("Content-Type", "application/json")
	second.RemoteAddr = "203.0.113.10:5555"
	secondRec := httptest.NewRecorder()
	limited.ServeHTTP(secondRec, second)
	if secondRec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled by ip key, got %d", secondRec.Code)
	}
}

func TestRateLimitWindowReset(t *testing.T) {
	limited := RateLimit(1, 40*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req1 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
	req1.Header.Set("Content-Type", "application/json")
	req1.RemoteAddr = "192.0.2.20:1111"
	rec1 := httptest.NewRecorder()
	limited.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.RemoteAddr = "192.0.2.20:1111"
	rec2 := httptest.NewRecorder()
	limited.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}

	time.Sleep(50 * time.Millisecond)

	req3 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
	req3.Header.Set("Content-Type", "application/json")
	req3.RemoteAddr = "192.0.2.20:1111"
	rec3 := httptest.NewRecorder()
	limited.ServeHTTP(rec3, req3)
	if rec3.Code != http.StatusNoContent {
		t.Fatalf("expected third request after window reset to pass, got %d", rec3.Code)
	}
}

func TestRateLimitReturnsRetryMetadata(t *testing.T) {
	limited := RateLimit(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req1 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
	req1.Header.Set("Content-Type", "application/json")
	req1.RemoteAddr = "192.0.2.30:1234"
	limited.ServeHTTP(httptest.NewRecorder(), req1)

	req2 := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"a@example.com"}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.RemoteAddr = "192.0.2.30:1234"
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, req2)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected throttled response, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Fatal("expected X-RateLimit-Reset header")
	}
}

func TestSensitiveMutationRateLimitScope(t *testing.T) {
	limited := SensitiveMutationRateLimit(4, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/dashboard/manager", nil)
		req.RemoteAddr = "198.51.100.40:8888"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected read route request %d to bypass sensitive limits, got %d", i+1, rec.Code)
		}
	}

	userCtx := WithUser(context.Background(), auth.UserContext{UserID: "admin-1", Role: auth.RoleAdmin})
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/feedback", nil).WithContext(userCtx)
		req.RemoteAddr = "198.51.100.41:9999"
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		if i < 2 && rec.Code != http.StatusNoContent {
			t.Fatalf("expected sensitive request %d to pass, got %d", i+1, rec.Code)
		}
		if i == 2 && rec.Code != http.StatusTooManyRequests {
			t.Fatalf("expected third sensitive request to be throttled, got %d", rec.Code)
		}
	}
}

func TestSensitiveRateScopeRoutes(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   sensitiveScope
	}{
		{http.MethodPost, "/api/v1/auth/login", sensitiveScopeAuth},
		{http.MethodPost, "/api/v1/auth/reset-password", sensitiveScopeAuth},
		{http.MethodPost, "/api/v1/feedback", sensitiveScopeActor},
		{http.MethodPost, "/api/v1/admin/feedback/import", sensitiveScopeActor},
		{http.MethodPut, "/api/v1/users/u1/manager", sensitiveScopeActor},
		{http.MethodGet, "/api/v1/feedback/my", sensitiveScopeNone},
		{http.MethodPost, "/api/v1/users", sensitiveScopeNone},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if got := sensitiveRateScope(req); got != tc.want {
				t.Fatalf("expected scope %q, got %q", tc.want, got)
			}
		})
	}
}

func TestSensitiveAuthLimitKeysByEmail(t *testing.T) {
	limited := SensitiveMutationRateLimit(8, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(email, addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(`{"email":"`+email+`"}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("Ana@Example.com", "198.51.100.50:1000"); code != http.StatusNoContent {
			t.Fatalf("expected attempt %d to pass, got %d", i+1, code)
		}
	}
	if code := send("ana@example.com", "198.51.100.51:1000"); code != http.StatusTooManyRequests {
		t.Fatalf("expected same mailbox from another address to be throttled, got %d", code)
	}
}

func TestLimiterSweepsExpiredBuckets(t *testing.T) {
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	l := newLimiter(2, time.Minute, nil)
	l.now = func() time.Time { return now }

	if d := l.take("a"); !d.allowed || d.remaining != 1 {
		t.Fatalf("unexpected first decision %+v", d)
	}
	l.take("b")
	if d := l.take("a"); !d.allowed || d.remaining != 0 {
		t.Fatalf("unexpected second decision %+v", d)
	}
	if d := l.take("a"); d.allowed {
		t.Fatalf("expected third hit to be refused, got %+v", d)
	}

	now = now.Add(2 * time.Minute)
	l.take("c")
	if _, ok := l.buckets["b"]; ok {
		t.Fatal("expected expired bucket to be swept")
	}
	if d := l.take("a"); !d.allowed {
		t.Fatalf("expected a fresh window, got %+v", d)
	}
}

func TestLoginIdentityReadsFormAndAlias(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{name: "json email", contentType: "application/json", body: `{"email":" Ana@Example.com "}`, want: "email:ana@example.com"},
		{name: "json username", contentType: "application/json", body: `{"username":"ion@example.com"}`, want: "email:ion@example.com"},
		{name: "form", contentType: "application/x-www-form-urlencoded", body: "username=Dan%40example.com&password=x", want: "email:dan@example.com"},
		{name: "no identity", contentType: "application/json", body: `{"password":"x"}`, want: "192.0.2.9"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(tc.body))
			req.Header.Set("Content-Type", tc.contentType)
			req.RemoteAddr = "192.0.2.9:4000"
			if got := loginIdentityKey(req); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			rest, _ := io.ReadAll(req.Body)
			if string(rest) != tc.body {
				t.Fatalf("expected body to be restored, got %q", rest)
			}
		})
	}
}
