package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestTimingMiddleware_PassesThrough verifies the wrapped handler runs normally.
func TestTimingMiddleware_PassesThrough(t *testing.T) {
	handler := Timing()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/test", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTimingMiddleware_SkipsStatic verifies static assets bypass the timed path.
func TestTimingMiddleware_SkipsStatic(t *testing.T) {
	handler := Timing()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/static/style.css", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

// TestTimingMiddleware_CapturesStatusCode verifies the status code is preserved.
func TestTimingMiddleware_CapturesStatusCode(t *testing.T) {
	handler := Timing()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest("GET", "/missing", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

// TestRateLimiter_Allow verifies the token bucket blocks after the budget.
func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(2, time.Second)

	if !limiter.Allow("1.2.3.4") {
		t.Error("first request should be allowed")
	}
	if !limiter.Allow("1.2.3.4") {
		t.Error("second request should be allowed")
	}
	if limiter.Allow("1.2.3.4") {
		t.Error("third request should be blocked")
	}
	if !limiter.Allow("5.6.7.8") {
		t.Error("different IP should have its own budget")
	}
}
