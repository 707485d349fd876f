package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyIsScopedByRunAndTick(t *testing.T) {
	assert.Equal(t, "rtgssim:snapshot:run-1:5", key("run-1", 5))
	assert.NotEqual(t, key("run-1", 5), key("run-2", 5))
	assert.NotEqual(t, key("run-1", 5), key("run-1", 6))
}

func TestLatestKeyIsStableForARun(t *testing.T) {
	assert.Equal(t, "rtgssim:snapshot:run-1:latest", latestKey("run-1"))
}
