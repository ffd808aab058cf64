package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Middleware(http.HandlerFunc(okHandler))

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2"))
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := NewRateLimiter(5, 30)
	rl.getLimiter("1.1.1.1")
	rl.getLimiter("2.2.2.2")
	rl.visitors["1.1.1.1"].lastSeen = time.Now().Add(-10 * time.Minute)

	rl.evictIdle(time.Now())

	assert.NotContains(t, rl.visitors, "1.1.1.1")
	assert.Contains(t, rl.visitors, "2.2.2.2")
}

func TestRateLimiter_CleanupStops(t *testing.T) {
	rl := NewRateLimiter(5, 30)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.CleanupVisitors(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup did not stop")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(req))
}

func TestBasicAuthMiddleware(t *testing.T) {
	h := BasicAuthMiddleware("prom", "secret")(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.SetBasicAuth("prom", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.SetBasicAuth("prom", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBasicAuthMiddleware_Unconfigured(t *testing.T) {
	h := BasicAuthMiddleware("", "")(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("", "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMonitorMiddleware_UsesRouteTemplate(t *testing.T) {
	r := mux.NewRouter()
	r.Use(MonitorMiddleware)
	r.HandleFunc("/user/{userId}", okHandler)

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/user/{userId}", http.MethodGet, "OK"))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/user/abc", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/user/{userId}", http.MethodGet, "OK")))
}

func TestInstall_CoversUnmatchedRequests(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	r := mux.NewRouter()
	Install(r, rl.Middleware, MonitorMiddleware)
	r.HandleFunc("/user/{userId}", okHandler).Methods(http.MethodGet)

	notFound := httpRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "Not Found")
	notAllowed := httpRequestsTotal.WithLabelValues("unmatched", http.MethodPost, "Method Not Allowed")
	beforeNotFound := testutil.ToFloat64(notFound)
	beforeNotAllowed := testutil.ToFloat64(notAllowed)

	do := func(method, target, ip string) int {
		req := httptest.NewRequest(method, target, nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/nope", "10.1.0.1"))
	assert.Equal(t, http.StatusMethodNotAllowed, do(http.MethodPost, "/user/abc", "10.1.0.2"))
	assert.Equal(t, beforeNotFound+1, testutil.ToFloat64(notFound))
	assert.Equal(t, beforeNotAllowed+1, testutil.ToFloat64(notAllowed))

	// Unmatched paths draw from the same per-client budget.
	assert.Equal(t, http.StatusTooManyRequests, do(http.MethodGet, "/nope", "10.1.0.1"))
}

func TestOptionalAuthMiddleware(t *testing.T) {
	orig := verifyToken
	t.Cleanup(func() { verifyToken = orig })
	verifyToken = func(_ context.Context, token string) (string, error) {
		if token == "good" {
			return "user_123", nil
		}
		return "", errors.New("bad token")
	}

	var gotID string
	var gotOK bool
	h := OptionalAuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = GetClerkID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, gotOK)
	assert.Equal(t, "user_123", gotID)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, gotOK)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, gotOK)
}

func TestLogMiddleware_PassesThrough(t *testing.T) {
	h := LogMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
