package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStartsAtZero(t *testing.T) {
	c := New(4)
	assert.Equal(t, int64(0), c.Tick())
	assert.Equal(t, int64(0), c.Day())
	assert.Equal(t, int64(0), c.AbsoluteTick())
}

func TestAdvanceWithinDay(t *testing.T) {
	c := New(4)
	c.Advance()
	assert.Equal(t, int64(1), c.Tick())
	assert.Equal(t, int64(0), c.Day())
	assert.Equal(t, int64(1), c.AbsoluteTick())
}

func TestAdvanceWrapsIntoNextDay(t *testing.T) {
	c := New(4)
	for i := 0; i < 4; i++ {
		c.Advance()
	}
	assert.Equal(t, int64(0), c.Tick())
	assert.Equal(t, int64(1), c.Day())
	assert.Equal(t, int64(4), c.AbsoluteTick())
}

func TestIsEndOfDay(t *testing.T) {
	c := New(3)
	assert.False(t, c.IsEndOfDay())
	c.Advance()
	assert.False(t, c.IsEndOfDay())
	c.Advance()
	assert.True(t, c.IsEndOfDay())
}

func TestAbsoluteTickAcrossMultipleDays(t *testing.T) {
	c := New(5)
	for i := 0; i < 13; i++ {
		c.Advance()
	}
	assert.Equal(t, int64(2), c.Day())
	assert.Equal(t, int64(3), c.Tick())
	assert.Equal(t, int64(13), c.AbsoluteTick())
}
