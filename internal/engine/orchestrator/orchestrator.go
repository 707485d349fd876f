// Package orchestrator wires every engine package together behind the
// nine-step tick loop and exposes the query/mutation surface an external
// driver uses to run and inspect a simulation.
package orchestrator

import (
	"rtgssim/internal/domain"
	"rtgssim/internal/engine/arrivals"
	"rtgssim/internal/engine/clock"
	"rtgssim/internal/engine/collateral"
	"rtgssim/internal/engine/costs"
	"rtgssim/internal/engine/eventlog"
	"rtgssim/internal/engine/ledger"
	"rtgssim/internal/engine/lsm"
	"rtgssim/internal/engine/policy"
	"rtgssim/internal/engine/rng"
	rtgserrors "rtgssim/pkg/errors"
)

// AgentConfig is one agents[] entry of a simulation's configuration.
type AgentConfig struct {
	ID                AgentIDAlias
	OpeningBalance    int64
	CreditLimit       int64
	Policy            policy.Evaluator
	ArrivalConfig     *arrivals.Config
	CollateralCostBps int64
}

// AgentIDAlias keeps this package's public Config readable without
// forcing every caller to import the domain package just to name an
// agent id.
type AgentIDAlias = domain.AgentID

// Config is the full declarative input to a simulation run.
type Config struct {
	TicksPerDay       int64
	NumDays           int64
	RngSeed           uint64
	DeferredCrediting bool
	Agents            []AgentConfig
	CostRates         costs.Rates
	LSM               lsm.Config
	ScenarioEvents    []arrivals.ScheduledEvent
}

// Simulation owns every piece of engine state for one run and drives the
// tick loop.
type Simulation struct {
	clock      *clock.Clock
	rng        *rng.Rng
	ledger     *ledger.Ledger
	log        *eventlog.Log
	generator  *arrivals.Generator
	evaluators map[domain.AgentID]policy.Evaluator
	costRates  costs.Rates
	lsmConfig  lsm.Config

	pendingSettlement []domain.TxID
}

// New validates cfg and constructs a Simulation ready to run. Validation
// failures are fatal: configuration invalid, so nothing runs.
func New(cfg Config) (*Simulation, error) {
	if cfg.TicksPerDay < 1 {
		return nil, rtgserrors.ErrZeroTicksPerDay
	}
	if cfg.NumDays < 1 {
		return nil, rtgserrors.ErrZeroNumDays
	}
	if cfg.RngSeed == 0 {
		return nil, rtgserrors.ErrZeroSeed
	}

	agents := make([]*domain.Agent, 0, len(cfg.Agents))
	evaluators := make(map[domain.AgentID]policy.Evaluator, len(cfg.Agents))
	arrivalConfigs := make(map[domain.AgentID]arrivals.Config)
	seen := make(map[domain.AgentID]bool, len(cfg.Agents))
	for _, ac := range cfg.Agents {
		if seen[ac.ID] {
			return nil, rtgserrors.ErrDuplicateAgent
		}
		seen[ac.ID] = true
		agents = append(agents, &domain.Agent{
			ID:                ac.ID,
			OpeningBalance:    ac.OpeningBalance,
			CreditLimit:       ac.CreditLimit,
			CollateralCostBps: ac.CollateralCostBps,
		})
		if ac.Policy != nil {
			evaluators[ac.ID] = ac.Policy
		} else {
			evaluators[ac.ID] = policy.Fifo{}
		}
		if ac.ArrivalConfig != nil {
			arrivalConfigs[ac.ID] = *ac.ArrivalConfig
		}
	}

	l, err := ledger.New(agents)
	if err != nil {
		return nil, err
	}
	l.SetDeferredCrediting(cfg.DeferredCrediting)

	for _, evt := range cfg.ScenarioEvents {
		if !l.HasAgent(evt.FromAgent) || !l.HasAgent(evt.ToAgent) {
			return nil, rtgserrors.ErrUnknownAgent
		}
	}

	return &Simulation{
		clock:      clock.New(cfg.TicksPerDay),
		rng:        rng.New(cfg.RngSeed),
		ledger:     l,
		log:        eventlog.New(),
		generator:  arrivals.NewGenerator(arrivalConfigs, cfg.ScenarioEvents),
		evaluators: evaluators,
		costRates:  cfg.CostRates,
		lsmConfig:  cfg.LSM,
	}, nil
}

// RunTick executes exactly one tick of the nine-step orchestrator loop.
func (s *Simulation) RunTick() error {
	absoluteTick := s.clock.AbsoluteTick()
	tick, day := s.clock.Tick(), s.clock.Day()
	view := &ledgerView{l: s.ledger, clock: s.clock}

	s.ledger.MergePendingCredits()

	// 1. Arrivals.
	if err := s.generator.Run(s.ledger, s.log, s.rng, absoluteTick, tick, day); err != nil {
		return err
	}

	// 1.5 Strategic collateral.
	collateral.RunLayer(s.ledger, s.log, view, s.evaluators, collateral.Strategic, absoluteTick, day)

	// 2. Policy evaluation.
	if err := s.evaluatePolicies(absoluteTick, tick, day); err != nil {
		return err
	}

	// 3/4. RTGS settlement and queue retry.
	if err := s.processSettlement(absoluteTick, day); err != nil {
		return err
	}

	// 5. LSM coordinator.
	if err := lsm.Run(s.ledger, s.log, s.lsmConfig, absoluteTick, day); err != nil {
		return err
	}

	// 5.5 End-of-tick collateral.
	collateral.RunLayer(s.ledger, s.log, view, s.evaluators, collateral.EndOfTick, absoluteTick, day)

	// 6. Cost accrual.
	costs.AccrueTick(s.ledger, s.log, s.costRates, absoluteTick, day)

	// 7. Deadline enforcement.
	if err := s.enforceDeadlines(absoluteTick, day); err != nil {
		return err
	}

	// 8. End-of-day.
	if s.clock.IsEndOfDay() {
		s.accrueEndOfDay(absoluteTick, day)
	}

	// 9. Clock advance.
	fromDay, fromTick := s.clock.Day(), s.clock.Tick()
	s.clock.Advance()
	s.log.Append(eventlog.Event{
		Tick: absoluteTick,
		Day:  day,
		Type: eventlog.TypeTickAdvance,
		TickAdvance: &eventlog.TickAdvancePayload{
			FromDay:  fromDay,
			FromTick: fromTick,
			ToDay:    s.clock.Day(),
			ToTick:   s.clock.Tick(),
		},
	})
	return nil
}

// RunDays runs every tick of numDays days.
func (s *Simulation) RunDays(numDays int64) error {
	startDay := s.clock.Day()
	for s.clock.Day() < startDay+numDays {
		if err := s.RunTick(); err != nil {
			return err
		}
	}
	return nil
}
