// Package costs implements the per-tick cost accrual model. Every
// accrual is computed with integer arithmetic in an intermediate wider
// type and truncated — no float ever touches a cost counter.
package costs

import (
	"math/big"

	"rtgssim/internal/domain"
	"rtgssim/internal/engine/eventlog"
	"rtgssim/internal/engine/ledger"
)

// Rates mirrors the cost_rates block of a simulation's configuration.
// Basis-point rates are expressed as integer bps (1 bps = 1/10000).
type Rates struct {
	OverdraftBpsPerTick      int64
	DelayCostPerTickPerCent  int64
	CollateralCostPerTickBps int64
	EodPenaltyPerTransaction int64
	DeadlinePenalty          int64
	SplitFrictionCost        int64
}

// AccrueTick computes and records liquidity, delay, and collateral
// opportunity cost for every agent in stable order, for this tick.
func AccrueTick(l *ledger.Ledger, log *eventlog.Log, rates Rates, tick, day int64) {
	for _, agentID := range l.AgentOrder() {
		agent := l.GetAgent(agentID)

		if agent.CurrentBalance < 0 {
			amount := bpsTruncate(-agent.CurrentBalance, rates.OverdraftBpsPerTick)
			accrue(l, log, agentID, eventlog.CostLiquidity, amount, tick, day)
		}

		delayTotal := new(big.Int)
		for _, txID := range l.Queue1(agentID) {
			tx := l.GetTransaction(txID)
			delayTotal.Add(delayTotal, new(big.Int).Mul(big.NewInt(tx.RemainingAmount), big.NewInt(rates.DelayCostPerTickPerCent)))
		}
		if delay := delayTotal.Int64(); delay > 0 {
			accrue(l, log, agentID, eventlog.CostDelay, delay, tick, day)
		}

		collateralRate := rates.CollateralCostPerTickBps
		if agent.CollateralCostBps != 0 {
			collateralRate = agent.CollateralCostBps
		}
		if agent.PostedCollateral > 0 {
			amount := bpsTruncate(agent.PostedCollateral, collateralRate)
			accrue(l, log, agentID, eventlog.CostCollateral, amount, tick, day)
		}
	}
}

// AccrueDeadlinePenalty records the deadline-miss penalty against sender,
// called when a transaction is dropped for missing its deadline.
func AccrueDeadlinePenalty(l *ledger.Ledger, log *eventlog.Log, rates Rates, senderID domain.AgentID, tick, day int64) {
	accrue(l, log, senderID, eventlog.CostDeadline, rates.DeadlinePenalty, tick, day)
}

// AccrueEndOfDayPenalty records the end-of-day penalty against sender,
// called once per still-unsettled transaction at the end-of-day step.
func AccrueEndOfDayPenalty(l *ledger.Ledger, log *eventlog.Log, rates Rates, senderID domain.AgentID, tick, day int64) {
	accrue(l, log, senderID, eventlog.CostEndOfDay, rates.EodPenaltyPerTransaction, tick, day)
}

// AccrueSplitFriction records the per-child split friction cost, called
// once for each child transaction a split creates.
func AccrueSplitFriction(l *ledger.Ledger, log *eventlog.Log, rates Rates, senderID domain.AgentID, tick, day int64) {
	accrue(l, log, senderID, eventlog.CostSplitFriction, rates.SplitFrictionCost, tick, day)
}

func accrue(l *ledger.Ledger, log *eventlog.Log, agentID domain.AgentID, costType eventlog.CostType, amount, tick, day int64) {
	if amount == 0 {
		return
	}
	agent := l.GetAgent(agentID)
	switch costType {
	case eventlog.CostLiquidity:
		agent.Costs.Liquidity += amount
	case eventlog.CostDelay:
		agent.Costs.Delay += amount
	case eventlog.CostCollateral:
		agent.Costs.CollateralOpportunity += amount
	case eventlog.CostDeadline:
		agent.Costs.DeadlinePenalty += amount
	case eventlog.CostEndOfDay:
		agent.Costs.EndOfDayPenalty += amount
	case eventlog.CostSplitFriction:
		agent.Costs.SplitFriction += amount
	}
	log.Append(eventlog.Event{
		Tick: tick,
		Day:  day,
		Type: eventlog.TypeCostAccrual,
		CostAccrual: &eventlog.CostAccrualPayload{
			AgentID: agentID,
			Type:    costType,
			Amount:  amount,
		},
	})
}

// bpsTruncate computes base * bps / 10000, truncating toward zero. The
// multiplication runs in a big.Int intermediate so that a near-i64::MAX
// base never overflows before the division brings it back into range.
func bpsTruncate(base, bps int64) int64 {
	wide := new(big.Int).Mul(big.NewInt(base), big.NewInt(bps))
	wide.Quo(wide, big.NewInt(10000))
	return wide.Int64()
}
