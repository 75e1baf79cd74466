package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"probook/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingHandler(calls *int32, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func idempotentRequest(key, actor string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(`{}`))
	req.Header.Set(DefaultIdempotencyHeader, key)
	req.Header.Set("X-Actor-ID", actor)
	return req
}

func testIdempotency(t *testing.T, store IdempotencyStore) {
	t.Helper()
	var calls int32
	h := Idempotency(store, "", "X-Actor-ID", logger.Discard())(countingHandler(&calls, http.StatusCreated, `{"data":{"id":"r-1"}}`))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, idempotentRequest("k1", "client-1"))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, idempotentRequest("k1", "client-1"))

	assert.EqualValues(t, 1, calls)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))

	other := httptest.NewRecorder()
	h.ServeHTTP(other, idempotentRequest("k1", "client-2"))
	assert.EqualValues(t, 2, calls, "same key from another actor must not replay")
}

func TestIdempotency_InMemory(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()
	testIdempotency(t, store)
}

func TestIdempotency_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisIdempotencyStore(client, time.Minute, logger.Discard())
	testIdempotency(t, store)

	keys := mr.Keys()
	require.Len(t, keys, 2)
	assert.True(t, strings.HasPrefix(keys[0], redisIdempotencyPrefix))

	mr.FastForward(2 * time.Minute)
	_, found := store.Get(context.Background(), strings.TrimPrefix(keys[0], redisIdempotencyPrefix))
	assert.False(t, found, "entry should expire with the ttl")
}

func TestIdempotency_RedisUnavailableFallsThrough(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	store := NewRedisIdempotencyStore(client, time.Minute, logger.Discard())
	mr.Close()

	var calls int32
	h := Idempotency(store, "", "X-Actor-ID", logger.Discard())(countingHandler(&calls, http.StatusCreated, `{}`))
	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("k", "a"))
	}
	assert.EqualValues(t, 2, calls)
}

func TestIdempotency_DoesNotCacheFailures(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()
	var calls int32
	h := Idempotency(store, "", "X-Actor-ID", logger.Discard())(countingHandler(&calls, http.StatusConflict, `{}`))

	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), idempotentRequest("k", "a"))
	}
	assert.EqualValues(t, 2, calls)
}

func TestInMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewInMemoryIdempotencyStore(10 * time.Millisecond)
	defer store.Stop()

	store.Set(context.Background(), "k", &CachedResponse{StatusCode: 200})
	_, found := store.Get(context.Background(), "k")
	assert.True(t, found)

	time.Sleep(20 * time.Millisecond)
	_, found = store.Get(context.Background(), "k")
	assert.False(t, found)
}

func TestRateLimit(t *testing.T) {
	limiter := NewActorRateLimiter(2, time.Minute, nil, logger.Discard())
	defer limiter.Stop()
	var calls int32
	h := RateLimit(limiter)(countingHandler(&calls, http.StatusOK, `{}`))

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Actor-ID", "client-1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Actor-ID", "client-2")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "buckets are per actor")
}

func TestActorOrIPExtractor(t *testing.T) {
	extract := ActorOrIPExtractor("X-Actor-ID")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.7:5123"
	assert.Equal(t, "ip:10.0.0.7", extract(req))

	req.Header.Set("X-Actor-ID", "pro-1")
	assert.Equal(t, "actor:pro-1", extract(req))
}

func TestRecovery(t *testing.T) {
	h := Recovery(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestRequestTimeout(t *testing.T) {
	h := RequestTimeout(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), "TIMEOUT")
}

func TestContentTypeValidation(t *testing.T) {
	var calls int32
	h := ContentTypeValidation(logger.Discard())(countingHandler(&calls, http.StatusOK, `{}`))

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		want        int
	}{
		{"json post", http.MethodPost, `{}`, "application/json; charset=utf-8", http.StatusOK},
		{"form post", http.MethodPost, `a=b`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"bodiless command", http.MethodPost, "", "", http.StatusOK},
		{"get", http.MethodGet, "", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			if tt.body == "" {
				req.ContentLength = 0
			}
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMaxRequestSize(t *testing.T) {
	var calls int32
	h := MaxRequestSize(4)(countingHandler(&calls, http.StatusOK, `{}`))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, calls)
}

func TestRequestLogging_PropagatesRequestID(t *testing.T) {
	var seen string
	h := RequestLogging(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36, "generated ids are uuids")
}
