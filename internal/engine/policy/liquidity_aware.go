package policy

import "rtgssim/internal/domain"

// LiquidityAware releases a payment once doing so still leaves the agent
// with at least TargetBuffer of effective liquidity, or once the
// transaction is within UrgencyThreshold ticks of its deadline — whichever
// comes first. Strategically, it posts collateral to close a shortfall
// against TargetBuffer before settlement, and withdraws unneeded
// collateral once the buffer is comfortably met.
type LiquidityAware struct {
	TargetBuffer     int64
	UrgencyThreshold int64
}

func (p LiquidityAware) EvaluatePayment(agent domain.Agent, tx domain.Transaction, _ LedgerView, tick int64) PaymentDecision {
	if tx.DeadlineTick-tick <= p.UrgencyThreshold {
		return PaymentDecision{Action: ActionReleaseFull, Reason: "deadline urgent"}
	}
	if agent.EffectiveLiquidity()-tx.RemainingAmount >= p.TargetBuffer {
		return PaymentDecision{Action: ActionReleaseFull, Reason: "buffer preserved"}
	}
	return PaymentDecision{Action: ActionHold, Reason: "would breach target buffer"}
}

func (p LiquidityAware) EvaluateStrategicCollateral(agent domain.Agent, _ LedgerView, _ int64) CollateralDecision {
	shortfall := p.TargetBuffer - agent.EffectiveLiquidity()
	if shortfall <= 0 {
		return CollateralDecision{Action: CollateralHold}
	}
	capacity := agent.CollateralCapacity() - agent.PostedCollateral
	if capacity <= 0 {
		return CollateralDecision{Action: CollateralHold}
	}
	amount := shortfall
	if amount > capacity {
		amount = capacity
	}
	return CollateralDecision{Action: CollateralPost, Amount: amount, Reason: "closing target-buffer shortfall"}
}

func (p LiquidityAware) EvaluateEndOfTickCollateral(agent domain.Agent, _ LedgerView, _ int64) CollateralDecision {
	surplus := agent.EffectiveLiquidity() - p.TargetBuffer
	if surplus <= 0 || agent.PostedCollateral == 0 {
		return CollateralDecision{Action: CollateralHold}
	}
	amount := surplus
	if amount > agent.PostedCollateral {
		amount = agent.PostedCollateral
	}
	if amount <= 0 {
		return CollateralDecision{Action: CollateralHold}
	}
	return CollateralDecision{Action: CollateralWithdraw, Amount: amount, Reason: "releasing surplus above target buffer"}
}
