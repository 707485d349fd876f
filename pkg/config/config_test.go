package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSimulationConfigParsesScenarioFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.json")
	body := `{
		"ticks_per_day": 10,
		"num_days": 2,
		"rng_seed": 42,
		"agents": [
			{"id": "bank-a", "opening_balance": 1000, "credit_limit": 0, "policy": {"kind": "fifo"}}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadSimulationConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(10), cfg.TicksPerDay)
	assert.Equal(t, int64(2), cfg.NumDays)
	assert.Equal(t, uint64(42), cfg.RngSeed)
	require.Len(t, cfg.Agents, 1)
	assert.Equal(t, "bank-a", cfg.Agents[0].ID)
	assert.Equal(t, "fifo", cfg.Agents[0].Policy.Kind)
}

func TestLoadSimulationConfigErrorsOnMissingFile(t *testing.T) {
	_, err := LoadSimulationConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestValidateCrossReferencesRejectsDuplicateAgentID(t *testing.T) {
	cfg := &SimulationConfig{
		Agents: []AgentConfig{
			{ID: "bank-a", Policy: PolicyConfig{Kind: "fifo"}},
			{ID: "bank-a", Policy: PolicyConfig{Kind: "fifo"}},
		},
	}
	assert.Error(t, cfg.ValidateCrossReferences())
}

func TestValidateCrossReferencesRejectsUnknownScenarioAgent(t *testing.T) {
	cfg := &SimulationConfig{
		Agents: []AgentConfig{
			{ID: "bank-a", Policy: PolicyConfig{Kind: "fifo"}},
		},
		ScenarioEvents: []ScenarioEvent{
			{FromAgent: "bank-a", ToAgent: "bank-ghost", Amount: 100},
		},
	}
	assert.Error(t, cfg.ValidateCrossReferences())
}

func TestValidateCrossReferencesRejectsSelfTransferScenario(t *testing.T) {
	cfg := &SimulationConfig{
		Agents: []AgentConfig{
			{ID: "bank-a", Policy: PolicyConfig{Kind: "fifo"}},
		},
		ScenarioEvents: []ScenarioEvent{
			{FromAgent: "bank-a", ToAgent: "bank-a", Amount: 100},
		},
	}
	assert.Error(t, cfg.ValidateCrossReferences())
}

func TestValidateCrossReferencesAcceptsWellFormedConfig(t *testing.T) {
	cfg := &SimulationConfig{
		Agents: []AgentConfig{
			{ID: "bank-a", Policy: PolicyConfig{Kind: "fifo"}},
			{ID: "bank-b", Policy: PolicyConfig{Kind: "deadline", UrgencyThreshold: 3}},
		},
		ScenarioEvents: []ScenarioEvent{
			{FromAgent: "bank-a", ToAgent: "bank-b", Amount: 100},
		},
	}
	assert.NoError(t, cfg.ValidateCrossReferences())
}

func TestValidatePolicyConfigRejectsNegativeUrgencyThreshold(t *testing.T) {
	cfg := &SimulationConfig{
		Agents: []AgentConfig{
			{ID: "bank-a", Policy: PolicyConfig{Kind: "deadline", UrgencyThreshold: -1}},
		},
	}
	assert.Error(t, cfg.ValidateCrossReferences())
}

func TestValidatePolicyConfigRejectsTreeFileWithoutPath(t *testing.T) {
	cfg := &SimulationConfig{
		Agents: []AgentConfig{
			{ID: "bank-a", Policy: PolicyConfig{Kind: "tree_file"}},
		},
	}
	assert.Error(t, cfg.ValidateCrossReferences())
}

func TestValidatePolicyConfigAcceptsLiquidityAwareWithinBounds(t *testing.T) {
	cfg := &SimulationConfig{
		Agents: []AgentConfig{
			{ID: "bank-a", Policy: PolicyConfig{Kind: "liquidity_aware", TargetBuffer: 1000, UrgencyThreshold: 2}},
		},
	}
	assert.NoError(t, cfg.ValidateCrossReferences())
}

func TestValidatePolicyConfigRejectsLiquidityAwareWithNegativeTargetBuffer(t *testing.T) {
	cfg := &SimulationConfig{
		Agents: []AgentConfig{
			{ID: "bank-a", Policy: PolicyConfig{Kind: "liquidity_aware", TargetBuffer: -1}},
		},
	}
	assert.Error(t, cfg.ValidateCrossReferences())
}

func TestLoadSimulationConfigKeepsExplicitZeroArrivalPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.json")
	body := `{
		"ticks_per_day": 10,
		"num_days": 2,
		"rng_seed": 42,
		"agents": [
			{"id": "bank-a", "opening_balance": 1000, "credit_limit": 0, "policy": {"kind": "fifo"},
			 "arrival_config": {"rate_per_tick": 1, "priority": 0}}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadSimulationConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Agents[0].ArrivalConfig.Priority)
	assert.Equal(t, 0, *cfg.Agents[0].ArrivalConfig.Priority)
}

func TestValidateRuntimeRejectsMissingDatabaseAndRedisURL(t *testing.T) {
	c := &RuntimeConfig{}
	err := c.ValidateRuntime()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "REDIS_URL")
}

func TestValidateRuntimeAcceptsFullyConfigured(t *testing.T) {
	c := &RuntimeConfig{DatabaseURL: "postgres://localhost/db", RedisURL: "localhost:6379"}
	assert.NoError(t, c.ValidateRuntime())
}

func TestNormalizeRedisURLStripsSchemePrefixes(t *testing.T) {
	assert.Equal(t, "localhost:6379", normalizeRedisURL("redis://localhost:6379"))
	assert.Equal(t, "localhost:6380", normalizeRedisURL("redis+tls://localhost:6380"))
	assert.Equal(t, "localhost:6379", normalizeRedisURL("localhost:6379"))
}
