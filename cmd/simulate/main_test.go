package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtgssim/internal/engine/policy"
	"rtgssim/pkg/config"
)

func TestBuildPolicyConstructsLiquidityAware(t *testing.T) {
	ev, err := buildPolicy(config.PolicyConfig{Kind: "liquidity_aware", TargetBuffer: 5000, UrgencyThreshold: 3})
	require.NoError(t, err)
	la, ok := ev.(policy.LiquidityAware)
	require.True(t, ok)
	assert.Equal(t, int64(5000), la.TargetBuffer)
	assert.Equal(t, int64(3), la.UrgencyThreshold)
}

func TestBuildPolicyRejectsUnknownKind(t *testing.T) {
	_, err := buildPolicy(config.PolicyConfig{Kind: "not_a_real_policy"})
	assert.Error(t, err)
}

func TestToArrivalConfigDefaultsPriorityOnlyWhenUnset(t *testing.T) {
	withZero := toArrivalConfig(&config.ArrivalConfig{RatePerTick: 1, Priority: intPtrForTest(0)})
	assert.Equal(t, 0, withZero.Priority)

	withNil := toArrivalConfig(&config.ArrivalConfig{RatePerTick: 1})
	assert.Equal(t, defaultArrivalPriority, withNil.Priority)
}

func intPtrForTest(v int) *int { return &v }
