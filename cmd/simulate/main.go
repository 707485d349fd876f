// ==============================================================================
// SIMULATION RUNNER - cmd/simulate/main.go
// ==============================================================================
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"rtgssim/internal/domain"
	"rtgssim/internal/engine/arrivals"
	"rtgssim/internal/engine/costs"
	"rtgssim/internal/engine/eventlog"
	"rtgssim/internal/engine/lsm"
	"rtgssim/internal/engine/orchestrator"
	"rtgssim/internal/engine/policy"
	"rtgssim/internal/persistence/snapshot"
	"rtgssim/internal/persistence/sqlsink"
	"rtgssim/pkg/config"
	"rtgssim/pkg/logger"
	"rtgssim/pkg/validator"
)

func main() {
	rtCfg := config.LoadRuntime()
	log := logger.New(rtCfg.ServiceName)

	simCfg, err := config.LoadSimulationConfig(rtCfg.ScenarioConfigPath)
	if err != nil {
		log.Fatal("Failed to load scenario config", map[string]interface{}{"error": err.Error()})
	}

	v := validator.New()
	if err := v.Validate(simCfg); err != nil {
		log.Fatal("Scenario config failed validation", map[string]interface{}{"error": err.Error()})
	}
	if err := simCfg.ValidateCrossReferences(); err != nil {
		log.Fatal("Scenario config failed cross-reference validation", map[string]interface{}{"error": err.Error()})
	}

	orchCfg, err := toOrchestratorConfig(simCfg)
	if err != nil {
		log.Fatal("Failed to build simulation", map[string]interface{}{"error": err.Error()})
	}

	sim, err := orchestrator.New(orchCfg)
	if err != nil {
		log.Fatal("Failed to construct simulation", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting simulation run", map[string]interface{}{
		"ticks_per_day": simCfg.TicksPerDay,
		"num_days":      simCfg.NumDays,
		"agents":        len(simCfg.Agents),
	})

	if err := sim.RunDays(simCfg.NumDays); err != nil {
		log.Fatal("Simulation run failed", map[string]interface{}{"error": err.Error()})
	}

	events := sim.GetAllEvents()
	log.Info("Simulation run complete", map[string]interface{}{
		"event_count": len(events),
		"final_day":   sim.CurrentDay(),
	})

	if err := rtCfg.ValidateRuntime(); err != nil {
		log.Warn("Skipping persistence: runtime configuration incomplete", map[string]interface{}{"error": err.Error()})
		return
	}

	runID := uuid.New()
	ctx := context.Background()
	if err := persistRun(ctx, rtCfg, runID, sim, events); err != nil {
		log.Error("Failed to persist run", map[string]interface{}{"error": err.Error(), "run_id": runID.String()})
		os.Exit(1)
	}
	log.Info("Run persisted", map[string]interface{}{"run_id": runID.String()})
}

// persistRun writes the completed run's event stream to Postgres via the
// hash-chained sink, and caches a final snapshot in Redis for fast
// inspection without replaying the log.
func persistRun(ctx context.Context, rtCfg *config.RuntimeConfig, runID uuid.UUID, sim *orchestrator.Simulation, events []eventlog.Event) error {
	db, err := sqlx.Connect("postgres", rtCfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(rtCfg.DBMaxOpenConns)
	db.SetMaxIdleConns(rtCfg.DBMaxIdleConns)

	sink, err := sqlsink.New(ctx, db, runID)
	if err != nil {
		return fmt.Errorf("open event sink: %w", err)
	}
	if err := sink.AppendAll(ctx, events); err != nil {
		return fmt.Errorf("append events: %w", err)
	}

	store, err := snapshot.New(rtCfg.RedisURL, rtCfg.RedisPassword, rtCfg.RedisDB, 24*time.Hour)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer store.Close()

	agents := sim.GetAllAgentStates()
	snapAgents := make([]snapshot.AgentSnapshot, 0, len(agents))
	for _, a := range agents {
		snapAgents = append(snapAgents, snapshot.AgentSnapshot{
			ID:               a.ID,
			CurrentBalance:   a.CurrentBalance,
			PostedCollateral: a.PostedCollateral,
			Costs:            a.Costs,
		})
	}

	var lastTick int64
	if n := len(events); n > 0 {
		lastTick = events[n-1].Tick
	}
	snap := snapshot.Snapshot{
		RunID:        runID.String(),
		AbsoluteTick: lastTick,
		Day:          sim.CurrentDay(),
		Agents:       snapAgents,
		Queue2:       sim.GetRTGSQueueContents(),
		EventCount:   int64(len(events)),
	}
	if err := store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func toOrchestratorConfig(c *config.SimulationConfig) (orchestrator.Config, error) {
	agents := make([]orchestrator.AgentConfig, 0, len(c.Agents))
	for _, a := range c.Agents {
		evaluator, err := buildPolicy(a.Policy)
		if err != nil {
			return orchestrator.Config{}, fmt.Errorf("agent %q: %w", a.ID, err)
		}
		ac := orchestrator.AgentConfig{
			ID:                domain.AgentID(a.ID),
			OpeningBalance:    a.OpeningBalance,
			CreditLimit:       a.CreditLimit,
			Policy:            evaluator,
			CollateralCostBps: a.CollateralCostBps,
		}
		if a.ArrivalConfig != nil {
			ac.ArrivalConfig = toArrivalConfig(a.ArrivalConfig)
		}
		agents = append(agents, ac)
	}

	scenarioEvents := make([]arrivals.ScheduledEvent, 0, len(c.ScenarioEvents))
	for _, e := range c.ScenarioEvents {
		scenarioEvents = append(scenarioEvents, arrivals.ScheduledEvent{
			FromAgent: domain.AgentID(e.FromAgent),
			ToAgent:   domain.AgentID(e.ToAgent),
			Amount:    e.Amount,
			Priority:  e.Priority,
			Deadline:  e.Deadline,
			Tick:      e.Tick,
			Divisible: e.Divisible,
		})
	}

	return orchestrator.Config{
		TicksPerDay:       c.TicksPerDay,
		NumDays:           c.NumDays,
		RngSeed:           c.RngSeed,
		DeferredCrediting: c.DeferredCrediting,
		Agents:            agents,
		CostRates: costs.Rates{
			OverdraftBpsPerTick:      c.CostRates.OverdraftBpsPerTick,
			DelayCostPerTickPerCent:  c.CostRates.DelayCostPerTickPerCent,
			CollateralCostPerTickBps: c.CostRates.CollateralCostPerTickBps,
			EodPenaltyPerTransaction: c.CostRates.EodPenaltyPerTransaction,
			DeadlinePenalty:          c.CostRates.DeadlinePenalty,
			SplitFrictionCost:        c.CostRates.SplitFrictionCost,
		},
		LSM: lsm.Config{
			BilateralEnabled:       c.LSM.BilateralEnabled,
			CycleDetectionEnabled:  c.LSM.CycleDetectionEnabled,
			MaxCycleLength:         c.LSM.MaxCycleLength,
			PriorityClassesEnabled: c.LSM.PriorityClassesEnabled,
		},
		ScenarioEvents: scenarioEvents,
	}, nil
}

// defaultArrivalPriority is used only when a scenario's arrival_config
// omits priority entirely; an explicit priority of 0 is left as-is.
const defaultArrivalPriority = 5

func toArrivalConfig(a *config.ArrivalConfig) *arrivals.Config {
	weights := make(map[domain.AgentID]float64, len(a.CounterpartyWeights))
	for id, w := range a.CounterpartyWeights {
		weights[domain.AgentID(id)] = w
	}
	priority := defaultArrivalPriority
	if a.Priority != nil {
		priority = *a.Priority
	}
	return &arrivals.Config{
		RatePerTick:         a.RatePerTick,
		AmountDistribution:  arrivals.Distribution(a.AmountDistribution),
		AmountParam1:        a.AmountParam1,
		AmountParam2:        a.AmountParam2,
		CounterpartyWeights: weights,
		DeadlineMin:         a.DeadlineMin,
		DeadlineMax:         a.DeadlineMax,
		Priority:            priority,
		Divisible:           a.Divisible,
	}
}

func buildPolicy(p config.PolicyConfig) (policy.Evaluator, error) {
	switch p.Kind {
	case "", "fifo":
		return policy.Fifo{}, nil
	case "deadline":
		return policy.Deadline{UrgencyThreshold: p.UrgencyThreshold}, nil
	case "liquidity_splitting":
		return policy.LiquiditySplitting{MaxSplits: p.MaxSplits, MinSplitAmount: p.MinSplitAmount}, nil
	case "mock_splitting":
		return policy.MockSplitting{NumSplits: p.NumSplits}, nil
	case "liquidity_aware":
		return policy.LiquidityAware{TargetBuffer: p.TargetBuffer, UrgencyThreshold: p.UrgencyThreshold}, nil
	case "tree_file":
		return policy.NewFromJSON(p.TreePath, p.TreeOverrides)
	case "tree_inline":
		return policy.NewInlineJSON(p.TreeJSON, p.TreeOverrides)
	default:
		return nil, fmt.Errorf("unknown policy kind %q", p.Kind)
	}
}
