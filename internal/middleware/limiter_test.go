package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter_PrunesExpiredClients(t *testing.T) {
	l := newLimiter(5, time.Minute)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		ok, _, _ := l.allow(ip, start)
		assert.True(t, ok)
	}
	assert.Equal(t, 3, l.size())

	// после окна остаётся только новый клиент
	ok, remaining, _ := l.allow("10.0.0.4", start.Add(2*time.Minute))
	assert.True(t, ok)
	assert.Equal(t, 4, remaining)
	assert.Equal(t, 1, l.size())
}

func TestLimiter_WindowResets(t *testing.T) {
	l := newLimiter(1, time.Minute)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ok, _, _ := l.allow("10.0.0.1", start)
	assert.True(t, ok)
	ok, _, resetAt := l.allow("10.0.0.1", start.Add(time.Second))
	assert.False(t, ok)
	assert.Equal(t, start.Add(time.Minute), resetAt)

	ok, _, _ = l.allow("10.0.0.1", start.Add(61*time.Second))
	assert.True(t, ok)
}
