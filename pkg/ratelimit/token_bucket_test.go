package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucket_AllowsUpToCapacity(t *testing.T) {
	bucket := NewTokenBucket(3, 0.001)

	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow(), "bucket is drained")
}

func TestTokenBucket_AllowN(t *testing.T) {
	bucket := NewTokenBucket(5, 0.001)

	assert.True(t, bucket.AllowN(4))
	assert.False(t, bucket.AllowN(2), "only one token left")
	assert.True(t, bucket.AllowN(1))
}

func TestTokenBucket_Refills(t *testing.T) {
	bucket := NewTokenBucket(1, 100) // 100 tokens/sec

	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())

	time.Sleep(50 * time.Millisecond)

	assert.True(t, bucket.Allow(), "tokens refill over time")
}

func TestTokenBucket_RefillCapsAtMax(t *testing.T) {
	bucket := NewTokenBucket(2, 1000)

	time.Sleep(20 * time.Millisecond)

	assert.True(t, bucket.AllowN(2))
	assert.False(t, bucket.Allow(), "refill never exceeds capacity")
}

func TestTokenBucket_Reset(t *testing.T) {
	bucket := NewTokenBucket(2, 0.001)

	assert.True(t, bucket.AllowN(2))
	assert.False(t, bucket.Allow())

	bucket.Reset()

	assert.True(t, bucket.AllowN(2))
}
