package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostRateLimiter_FirstRequestImmediate(t *testing.T) {
	limiter := NewHostRateLimiter(time.Hour)

	start := time.Now()
	err := limiter.WaitForHost(context.Background(), "https://cse.example.ac.kr/rss")

	require.NoError(t, err)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestHostRateLimiter_SpacesSameHost(t *testing.T) {
	limiter := NewHostRateLimiter(50 * time.Millisecond)

	require.NoError(t, limiter.WaitForHost(context.Background(), "https://cse.example.ac.kr/rss"))
	start := time.Now()
	require.NoError(t, limiter.WaitForHost(context.Background(), "https://cse.example.ac.kr/other"))

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond, "second request to the same host must wait")
}

func TestHostRateLimiter_DistinctHostsIndependent(t *testing.T) {
	limiter := NewHostRateLimiter(time.Hour)

	require.NoError(t, limiter.WaitForHost(context.Background(), "https://a.example.ac.kr/rss"))

	start := time.Now()
	require.NoError(t, limiter.WaitForHost(context.Background(), "https://b.example.ac.kr/rss"))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestHostRateLimiter_CancelledContext(t *testing.T) {
	limiter := NewHostRateLimiter(time.Hour)
	require.NoError(t, limiter.WaitForHost(context.Background(), "https://cse.example.ac.kr/rss"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := limiter.WaitForHost(ctx, "https://cse.example.ac.kr/rss")
	assert.Error(t, err)
}

func TestHostRateLimiter_InvalidURL(t *testing.T) {
	limiter := NewHostRateLimiter(time.Second)

	assert.Error(t, limiter.WaitForHost(context.Background(), "not a url"))
	assert.Error(t, limiter.WaitForHost(context.Background(), "/relative/path"))
}
