package inspect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly-10", truncate("exactly-10", 10))
	assert.Equal(t, "a-much-...", truncate("a-much-longer-title", 10))
}

func TestShortIdentity(t *testing.T) {
	assert.Equal(t, "0101010101", shortIdentity("010101010101010101"))
	assert.Equal(t, "abc", shortIdentity("abc"))
}

func TestFormatAge(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "-", formatAge(0))
	assert.Equal(t, "30s ago", formatAge(now.Add(-30*time.Second).UnixMilli()))
	assert.Equal(t, "5m ago", formatAge(now.Add(-5*time.Minute).UnixMilli()))
	assert.Equal(t, "3h ago", formatAge(now.Add(-3*time.Hour).UnixMilli()))
	assert.Equal(t, "2d ago", formatAge(now.Add(-49*time.Hour).UnixMilli()))
}
