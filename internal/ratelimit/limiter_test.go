package ratelimit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance virtual time without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, refill, capacity float64) (*RateLimiter, *fakeClock) {
	t.Helper()
	rl, err := New(refill, capacity, 128)
	require.NoError(t, err)
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	rl.now = clock.now
	return rl, clock
}

func TestAllow_SaturationAndRefill(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, 5)

	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("k"), "call %d should be allowed", i+1)
	}
	assert.False(t, rl.Allow("k"), "6th immediate call must be denied")

	clock.advance(1 * time.Second)
	assert.True(t, rl.Allow("k"), "one token refilled after 1s")
	assert.False(t, rl.Allow("k"))
}

func TestAllow_NewKeyStartsWithFullBucket(t *testing.T) {
	rl, _ := newTestLimiter(t, 0.001, 1)
	assert.True(t, rl.Allow("never-seen-before"))
}

func TestAllow_TokensNeverExceedCapacity(t *testing.T) {
	rl, clock := newTestLimiter(t, 10, 3)

	// drain
	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow("k"))
	}
	require.False(t, rl.Allow("k"))

	// a long idle period must refill to capacity, not beyond
	clock.advance(time.Hour)
	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("k"), "call %d after refill", i+1)
	}
	assert.False(t, rl.Allow("k"), "capacity must cap the refill")
}

func TestAllow_DenialDoesNotGoNegative(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, 1)

	require.True(t, rl.Allow("k"))
	for i := 0; i < 10; i++ {
		require.False(t, rl.Allow("k"))
	}

	// repeated denials must not have pushed tokens below zero:
	// one second of refill is enough for exactly one more event
	clock.advance(1 * time.Second)
	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 1)

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "key b has its own bucket")
}

func TestAllow_BackwardsClockDoesNotPanic(t *testing.T) {
	rl, clock := newTestLimiter(t, 1, 2)

	require.True(t, rl.Allow("k"))
	clock.advance(-time.Minute)
	// elapsed < 0 is clamped; one token is still available
	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))
}

func TestAllowIP_MissingAddressUsesUnknownKey(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 1)

	assert.True(t, rl.AllowIP(""))
	// the unknown key shares one bucket
	assert.False(t, rl.AllowIP(""))
	assert.False(t, rl.Allow(UnknownKey))
}

func TestBucketMapIsBounded(t *testing.T) {
	rl, _ := newTestLimiter(t, 1, 1)
	// limiter above is created with 128 max keys
	for i := 0; i < 1000; i++ {
		rl.Allow(fmt.Sprintf("key-%d", i))
	}
	assert.LessOrEqual(t, rl.buckets.Len(), 128)
}

func TestGeneralAndAuthLimitersAreDistinctTypes(t *testing.T) {
	general, err := NewGeneralLimiter(5, 10, 16)
	require.NoError(t, err)
	auth, err := NewAuthLimiter(0.5, 5, 16)
	require.NoError(t, err)

	// both satisfy the middleware capability but remain separate instances
	var _ Allower = general
	var _ Allower = auth
	assert.NotSame(t, general.RateLimiter, auth.RateLimiter)
}

func TestNew_RejectsNonPositiveCacheSize(t *testing.T) {
	_, err := New(1, 1, 0)
	assert.Error(t, err)
}
