package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func serve(handler http.Handler, remote string) int {
	req := httptest.NewRequest(http.MethodPost, "/v1/estimate", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_Disabled(t *testing.T) {
	handler := RateLimit(RateLimitConfig{Enabled: false})(okHandler())

	// Should allow unlimited requests when disabled
	for i := 0; i < 100; i++ {
		if code := serve(handler, "192.168.1.1:12345"); code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i, code)
		}
	}
}

func TestRateLimit_RejectsExcessRequests(t *testing.T) {
	handler := RateLimit(RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 2})(okHandler())

	// Use all burst tokens
	for i := 0; i < 2; i++ {
		if code := serve(handler, "192.168.1.1:12345"); code != http.StatusOK {
			t.Errorf("burst request %d: expected status 200, got %d", i, code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/estimate", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestRateLimit_SeparateClients(t *testing.T) {
	handler := RateLimit(RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 1})(okHandler())

	if code := serve(handler, "192.168.1.1:1000"); code != http.StatusOK {
		t.Errorf("first client: expected 200, got %d", code)
	}
	// Same host, different port is the same client.
	if code := serve(handler, "192.168.1.1:2000"); code != http.StatusTooManyRequests {
		t.Errorf("first client again: expected 429, got %d", code)
	}
	if code := serve(handler, "192.168.1.2:1000"); code != http.StatusOK {
		t.Errorf("second client: expected 200, got %d", code)
	}
}

func TestRateLimit_Concurrent(t *testing.T) {
	handler := RateLimit(RateLimitConfig{Enabled: true, RequestsPerSecond: 1, Burst: 10})(okHandler())

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if serve(handler, "10.0.0.1:5000") == http.StatusOK {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// The bucket may refill by one token while the goroutines run.
	if allowed < 10 || allowed > 11 {
		t.Errorf("expected about 10 allowed requests, got %d", allowed)
	}
}

func TestClientAddr(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		expected   string
	}{
		{"X-Forwarded-For takes priority", "10.0.0.1", "10.0.0.2", "10.0.0.3:12345", "10.0.0.1"},
		{"first X-Forwarded-For hop", "10.0.0.1, 172.16.0.1", "", "10.0.0.3:12345", "10.0.0.1"},
		{"X-Real-IP second priority", "", "10.0.0.2", "10.0.0.3:12345", "10.0.0.2"},
		{"RemoteAddr host", "", "", "10.0.0.3:12345", "10.0.0.3"},
		{"RemoteAddr without port", "", "", "pipe", "pipe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}

			if got := clientAddr(req); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestClientLimiter_Sweep(t *testing.T) {
	limiter := newClientLimiter(100, 10)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		limiter.allow(fmt.Sprintf("192.168.1.%d", i))
	}
	if len(limiter.clients) != 5 {
		t.Fatalf("expected 5 clients, got %d", len(limiter.clients))
	}

	now = now.Add(clientMaxAge + time.Minute)
	limiter.allow("192.168.1.200")

	if len(limiter.clients) != 1 {
		t.Errorf("expected idle clients swept, got %d", len(limiter.clients))
	}
}

func TestClientLimiter_EvictOldest(t *testing.T) {
	limiter := newClientLimiter(100, 10)
	now := time.Now()
	for i := 0; i < 3; i++ {
		limiter.clients[fmt.Sprintf("192.168.1.%d", i)] = &clientEntry{
			lastAccess: now.Add(time.Duration(i) * time.Second),
		}
	}

	limiter.evictOldest()

	if len(limiter.clients) != 2 {
		t.Errorf("expected 2 clients, got %d", len(limiter.clients))
	}
	if _, exists := limiter.clients["192.168.1.0"]; exists {
		t.Error("oldest client should have been evicted")
	}
}
