package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	apperrors "probook/pkg/errors"
	"probook/pkg/logger"

	"golang.org/x/time/rate"
)

// KeyExtractor names the bucket a request draws from. An empty key skips limiting.
type KeyExtractor func(r *http.Request) string

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ActorRateLimiter keeps one token bucket per caller. A bucket refills
// limit tokens per window and holds at most limit tokens.
type ActorRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*limiterEntry
	limit     rate.Limit
	burst     int
	idle      time.Duration
	extractor KeyExtractor
	log       *logger.Logger
	stopCh    chan struct{}
	once      sync.Once
}

func NewActorRateLimiter(limit int, window time.Duration, extractor KeyExtractor, log *logger.Logger) *ActorRateLimiter {
	if extractor == nil {
		extractor = ActorOrIPExtractor("X-Actor-ID")
	}
	rl := &ActorRateLimiter{
		limiters:  make(map[string]*limiterEntry),
		limit:     rate.Limit(float64(limit) / window.Seconds()),
		burst:     limit,
		idle:      max(window, time.Minute),
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *ActorRateLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	rl.mu.Lock()
	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

func (rl *ActorRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.idle)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for key, entry := range rl.limiters {
				if time.Since(entry.lastSeen) > rl.idle {
					delete(rl.limiters, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *ActorRateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stopCh) })
}

func RateLimit(limiter *ActorRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := limiter.extractor(r)
			if !limiter.Allow(key) {
				limiter.log.Warn("Rate limit exceeded",
					"request_id", RequestIDFromContext(r.Context()),
					"key", key,
					"path", r.URL.Path,
				)
				apperrors.WriteError(w, apperrors.RateLimited("Rate limit exceeded"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ActorOrIPExtractor limits by the actor header, falling back to the
// client address for anonymous calls.
func ActorOrIPExtractor(actorHeader string) KeyExtractor {
	return func(r *http.Request) string {
		if id := r.Header.Get(actorHeader); id != "" {
			return "actor:" + id
		}
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		return "ip:" + host
	}
}
