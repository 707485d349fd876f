package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesUnderlyingSentinelForIs(t *testing.T) {
	wrapped := Wrap(ErrInsufficientLiquidity, "settling transaction t1")
	assert.True(t, Is(wrapped, ErrInsufficientLiquidity))
	assert.Contains(t, wrapped.Error(), "settling transaction t1")
}

func TestWrapOfNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, "no-op"))
}

func TestNewProducesDistinctComparableErrors(t *testing.T) {
	a := New("boom")
	b := New("boom")
	assert.EqualError(t, a, "boom")
	assert.False(t, Is(a, b)) // distinct values, not a shared sentinel
}
