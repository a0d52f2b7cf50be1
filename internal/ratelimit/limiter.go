// Package ratelimit implements a token-bucket rate limiter keyed by client
// identity (usually an IP address), plus the HTTP middleware that consults
// it before a handler runs.
package ratelimit

import (
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// UnknownKey is used when no client address can be determined.
const UnknownKey = "unknown"

type tokenBucket struct {
	tokens float64
	last   time.Time
}

// RateLimiter is a token-bucket limiter with continuous (lazy) refill.
// Buckets are created full on first sight of a key and refilled on each
// call from the elapsed wall time; no background ticker is involved.
//
// All access is serialized through one mutex. The critical section is O(1)
// arithmetic with no I/O, so contention stays bounded by CPU time. The
// bucket map is an LRU so idle keys cannot grow it without bound.
type RateLimiter struct {
	mu              sync.Mutex
	buckets         *lru.Cache[string, *tokenBucket]
	refillPerSecond float64
	capacity        float64
	now             func() time.Time
}

// New creates a RateLimiter.
// refillPerSecond: how many tokens are added per second.
// capacity: maximum number of tokens stored.
// maxKeys: bound on the number of tracked keys; least recently used
// buckets are evicted beyond it.
func New(refillPerSecond, capacity float64, maxKeys int) (*RateLimiter, error) {
	buckets, err := lru.New[string, *tokenBucket](maxKeys)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		buckets:         buckets,
		refillPerSecond: refillPerSecond,
		capacity:        capacity,
		now:             time.Now,
	}, nil
}

// Allow reports whether a single event for the given key may proceed,
// consuming one token when it does.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	bucket, ok := rl.buckets.Get(key)
	if !ok {
		bucket = &tokenBucket{tokens: rl.capacity, last: now}
		rl.buckets.Add(key, bucket)
	}

	elapsed := now.Sub(bucket.last).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	bucket.tokens = math.Min(rl.capacity, bucket.tokens+elapsed*rl.refillPerSecond)
	bucket.last = now

	if bucket.tokens >= 1.0 {
		bucket.tokens -= 1.0
		return true
	}
	return false
}

// AllowIP is a convenience wrapper keying on a client address string.
// An empty address maps to the fixed UnknownKey.
func (rl *RateLimiter) AllowIP(ip string) bool {
	if ip == "" {
		ip = UnknownKey
	}
	return rl.Allow(ip)
}

// GeneralLimiter guards ordinary request traffic. It is a distinct type so
// dependency injection cannot accidentally hand a route group the wrong
// limiter.
type GeneralLimiter struct {
	*RateLimiter
}

// NewGeneralLimiter creates the general-purpose limiter.
func NewGeneralLimiter(refillPerSecond, capacity float64, maxKeys int) (*GeneralLimiter, error) {
	rl, err := New(refillPerSecond, capacity, maxKeys)
	if err != nil {
		return nil, err
	}
	return &GeneralLimiter{rl}, nil
}

// AuthLimiter guards authentication endpoints with a stricter policy.
type AuthLimiter struct {
	*RateLimiter
}

// NewAuthLimiter creates the authentication-scoped limiter.
func NewAuthLimiter(refillPerSecond, capacity float64, maxKeys int) (*AuthLimiter, error) {
	rl, err := New(refillPerSecond, capacity, maxKeys)
	if err != nil {
		return nil, err
	}
	return &AuthLimiter{rl}, nil
}
