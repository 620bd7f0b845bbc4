package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowEnforcesWindowLimit(t *testing.T) {
	l := New(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := l.Allow("1.2.3.4")
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, reset := l.Allow("1.2.3.4")
	assert.False(t, allowed)
	assert.True(t, reset.After(time.Now()))

	// Other callers have their own window.
	allowed, _ = l.Allow("5.6.7.8")
	assert.True(t, allowed)
}

func TestAllowResetsAfterWindow(t *testing.T) {
	l := New(1, 20*time.Millisecond)
	defer l.Stop()

	allowed, _ := l.Allow("k")
	assert.True(t, allowed)
	allowed, _ = l.Allow("k")
	assert.False(t, allowed)

	time.Sleep(25 * time.Millisecond)

	allowed, _ = l.Allow("k")
	assert.True(t, allowed, "window should have reset")
}

func TestStopIsIdempotent(t *testing.T) {
	l := New(1, time.Minute)
	l.Start()
	l.Stop()
	l.Stop()
}
