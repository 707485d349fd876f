package config

import (
	"fmt"
	"strings"
)

// ValidateRuntime ensures the environment-sourced half of configuration
// is present before a process tries to dial anything.
func (c *RuntimeConfig) ValidateRuntime() error {
	var missing []string
	if strings.TrimSpace(c.DatabaseURL) == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if strings.TrimSpace(c.RedisURL) == "" {
		missing = append(missing, "REDIS_URL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateCrossReferences checks constraints a struct tag can't express:
// agent id uniqueness and that every scenario event and policy
// configuration references something that actually exists.
func (c *SimulationConfig) ValidateCrossReferences() error {
	seen := make(map[string]bool, len(c.Agents))
	for _, a := range c.Agents {
		if seen[a.ID] {
			return fmt.Errorf("duplicate agent id %q", a.ID)
		}
		seen[a.ID] = true
		if err := validatePolicyConfig(a.Policy); err != nil {
			return fmt.Errorf("agent %q: %w", a.ID, err)
		}
	}
	for i, evt := range c.ScenarioEvents {
		if !seen[evt.FromAgent] {
			return fmt.Errorf("scenario_events[%d]: unknown from_agent %q", i, evt.FromAgent)
		}
		if !seen[evt.ToAgent] {
			return fmt.Errorf("scenario_events[%d]: unknown to_agent %q", i, evt.ToAgent)
		}
		if evt.FromAgent == evt.ToAgent {
			return fmt.Errorf("scenario_events[%d]: from_agent and to_agent must differ", i)
		}
	}
	return nil
}

func validatePolicyConfig(p PolicyConfig) error {
	switch p.Kind {
	case "deadline":
		if p.UrgencyThreshold < 0 {
			return fmt.Errorf("deadline policy: urgency_threshold must be >= 0")
		}
	case "liquidity_splitting":
		if p.MaxSplits < 2 {
			return fmt.Errorf("liquidity_splitting policy: max_splits must be >= 2")
		}
	case "mock_splitting":
		if p.NumSplits < 2 {
			return fmt.Errorf("mock_splitting policy: num_splits must be >= 2")
		}
	case "liquidity_aware":
		if p.UrgencyThreshold < 0 {
			return fmt.Errorf("liquidity_aware policy: urgency_threshold must be >= 0")
		}
		if p.TargetBuffer < 0 {
			return fmt.Errorf("liquidity_aware policy: target_buffer must be >= 0")
		}
	case "tree_file":
		if strings.TrimSpace(p.TreePath) == "" {
			return fmt.Errorf("tree_file policy: tree_path is required")
		}
	case "tree_inline":
		if strings.TrimSpace(p.TreeJSON) == "" {
			return fmt.Errorf("tree_inline policy: tree_json is required")
		}
	}
	return nil
}
