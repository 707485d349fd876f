// Package collateral implements the two-layer post/withdraw operations.
// Neither operation ever moves a balance: both only change
// posted_collateral and, through it, an agent's effective liquidity.
package collateral

import (
	"rtgssim/internal/domain"
	"rtgssim/internal/engine/eventlog"
	"rtgssim/internal/engine/ledger"
	"rtgssim/internal/engine/policy"
	rtgserrors "rtgssim/pkg/errors"
)

// Layer identifies which collateral layer is calling in, carried through
// to the emitted event.
type Layer = eventlog.CollateralLayer

const (
	Strategic = eventlog.LayerStrategic
	EndOfTick = eventlog.LayerEndOfTick
)

// Post increases agent's posted_collateral by amount, requiring
// 0 < amount <= remaining_capacity.
func Post(l *ledger.Ledger, log *eventlog.Log, agentID domain.AgentID, amount int64, reason string, layer Layer, tick, day int64) error {
	agent := l.GetAgent(agentID)
	if agent == nil {
		return rtgserrors.ErrUnknownAgent
	}
	remainingCapacity := agent.CollateralCapacity() - agent.PostedCollateral
	if amount <= 0 || amount > remainingCapacity {
		return rtgserrors.ErrCollateralCapacityReached
	}
	agent.PostedCollateral += amount
	log.Append(eventlog.Event{
		Tick: tick,
		Day:  day,
		Type: eventlog.TypeCollateralPost,
		Collateral: &eventlog.CollateralPayload{
			AgentID:       agentID,
			Withdraw:      false,
			Amount:        amount,
			PostedAfter:   agent.PostedCollateral,
			TriggerReason: reason,
			Layer:         layer,
		},
	})
	return nil
}

// Withdraw decreases agent's posted_collateral by amount, requiring
// 0 < amount <= posted_collateral and that the resulting effective
// liquidity stays non-negative.
func Withdraw(l *ledger.Ledger, log *eventlog.Log, agentID domain.AgentID, amount int64, reason string, layer Layer, tick, day int64) error {
	agent := l.GetAgent(agentID)
	if agent == nil {
		return rtgserrors.ErrUnknownAgent
	}
	if amount <= 0 || amount > agent.PostedCollateral {
		return rtgserrors.ErrCollateralCapacityReached
	}
	if agent.CurrentBalance+agent.CreditLimit+(agent.PostedCollateral-amount) < 0 {
		return rtgserrors.ErrCollateralCapacityReached
	}
	agent.PostedCollateral -= amount
	log.Append(eventlog.Event{
		Tick: tick,
		Day:  day,
		Type: eventlog.TypeCollateralWithdraw,
		Collateral: &eventlog.CollateralPayload{
			AgentID:       agentID,
			Withdraw:      true,
			Amount:        amount,
			PostedAfter:   agent.PostedCollateral,
			TriggerReason: reason,
			Layer:         layer,
		},
	})
	return nil
}

// RunLayer evaluates every agent's collateral decision (in stable
// iteration order) for one layer and applies it. A decision's own
// capacity or liquidity violation is recoverable: it is skipped rather
// than aborting the tick.
func RunLayer(l *ledger.Ledger, log *eventlog.Log, view policy.LedgerView, evaluators map[domain.AgentID]policy.Evaluator, layer Layer, tick, day int64) {
	for _, agentID := range l.AgentOrder() {
		evaluator, ok := evaluators[agentID]
		if !ok {
			continue
		}
		agent := *l.GetAgent(agentID)
		var decision policy.CollateralDecision
		if layer == Strategic {
			decision = evaluator.EvaluateStrategicCollateral(agent, view, tick)
		} else {
			decision = evaluator.EvaluateEndOfTickCollateral(agent, view, tick)
		}
		switch decision.Action {
		case policy.CollateralPost:
			if err := Post(l, log, agentID, decision.Amount, decision.Reason, layer, tick, day); err != nil {
				logRefusal(log, agentID, false, decision.Amount, decision.Reason, layer, err, tick, day)
			}
		case policy.CollateralWithdraw:
			if err := Withdraw(l, log, agentID, decision.Amount, decision.Reason, layer, tick, day); err != nil {
				logRefusal(log, agentID, true, decision.Amount, decision.Reason, layer, err, tick, day)
			}
		case policy.CollateralHold:
		}
	}
}

// logRefusal records a collateral decision that Post/Withdraw rejected.
func logRefusal(log *eventlog.Log, agentID domain.AgentID, withdraw bool, amount int64, reason string, layer Layer, err error, tick, day int64) {
	log.Append(eventlog.Event{
		Tick: tick,
		Day:  day,
		Type: eventlog.TypeCollateralRefused,
		CollateralRefused: &eventlog.CollateralRefusedPayload{
			AgentID:       agentID,
			Withdraw:      withdraw,
			Amount:        amount,
			TriggerReason: reason,
			Layer:         layer,
			RefusalReason: err.Error(),
		},
	})
}
