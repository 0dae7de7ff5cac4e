package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow("public:1.2.3.4"), "request %d", i)
	}
	require.False(t, rl.Allow("public:1.2.3.4"))

	// other clients are tracked separately
	require.True(t, rl.Allow("public:5.6.7.8"))
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	start := time.Now()
	rl.now = func() time.Time { return start }

	require.True(t, rl.Allow("k"))
	require.False(t, rl.Allow("k"))

	rl.now = func() time.Time { return start.Add(61 * time.Second) }
	require.True(t, rl.Allow("k"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	start := time.Now()
	rl.now = func() time.Time { return start }

	rl.Allow("stale")

	rl.now = func() time.Time { return start.Add(2 * time.Minute) }
	rl.Allow("fresh")
	rl.Cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	require.NotContains(t, rl.requests, "stale")
	require.Contains(t, rl.requests, "fresh")
}
