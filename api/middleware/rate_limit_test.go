package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type counterStore struct {
	counts map[string]int64
}

func (c *counterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[key]++
	return c.counts[key], nil
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	store := &counterStore{}
	policy := NewRateLimitPolicy("checkout", time.Minute, 2)
	handler := RateLimit(policy, store, nil)(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
		req = req.WithContext(WithUserID(req.Context(), "user-1"))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		codes = append(codes, resp.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
	if _, ok := store.counts["rl:checkout:user-1"]; !ok {
		t.Fatalf("expected per-user key, got %v", store.counts)
	}
}

func TestRateLimitFallsBackToClientIP(t *testing.T) {
	store := &counterStore{}
	handler := RateLimit(NewRateLimitPolicy("checkout", time.Minute, 5), store, nil)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/orders", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if _, ok := store.counts["rl:checkout:ip:203.0.113.9"]; !ok {
		t.Fatalf("expected ip key, got %v", store.counts)
	}
}

func TestRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	handler := RateLimit(NewRateLimitPolicy("checkout", 0, 0), &counterStore{}, nil)(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected pass through, got %d", resp.Code)
	}
}
