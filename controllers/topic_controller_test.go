package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestActiveCacheTTL(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	// far from the window end, the default TTL applies
	until := now.Add(48 * time.Hour)
	assert.Equal(t, 10*time.Minute, activeCacheTTL(&until, now))

	// near the window end, the TTL shrinks to the remaining window
	until = now.Add(3 * time.Minute)
	assert.Equal(t, 3*time.Minute, activeCacheTTL(&until, now))

	// an elapsed window yields no cacheable lifetime
	until = now.Add(-time.Minute)
	assert.LessOrEqual(t, activeCacheTTL(&until, now), time.Duration(0))

	assert.Equal(t, 10*time.Minute, activeCacheTTL(nil, now))
}
