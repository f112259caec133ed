package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSimpleTokenBucketAllow(t *testing.T) {
	l := NewSimpleTokenBucket(3, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "10.0.0.1") {
			t.Fatalf("request %d denied within capacity", i+1)
		}
	}
	if l.Allow(ctx, "10.0.0.1") {
		t.Error("request over capacity allowed")
	}

	// Other keys have their own bucket.
	if !l.Allow(ctx, "10.0.0.2") {
		t.Error("independent key denied")
	}
}

func TestSimpleTokenBucketDefaultCapacity(t *testing.T) {
	l := NewSimpleTokenBucket(0, 5)
	ctx := context.Background()

	allowed := 0
	for i := 0; i < 10; i++ {
		if l.Allow(ctx, "k") {
			allowed++
		}
	}
	if allowed != 5 {
		t.Errorf("allowed %d requests, want 5", allowed)
	}
}

func TestMiddleware(t *testing.T) {
	l := NewSimpleTokenBucket(1, 1)
	handler := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/attendance", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
}
