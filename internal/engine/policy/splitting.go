package policy

import "rtgssim/internal/domain"

// LiquiditySplitting releases a transaction whole when the agent can
// afford it outright, and otherwise splits it into the smallest number of
// equal children (bounded by MaxSplits) such that each child fits the
// agent's current effective liquidity and is no smaller than
// MinSplitAmount. If no such split exists it holds.
type LiquiditySplitting struct {
	MaxSplits      int
	MinSplitAmount int64
}

func (p LiquiditySplitting) EvaluatePayment(agent domain.Agent, tx domain.Transaction, _ LedgerView, _ int64) PaymentDecision {
	available := agent.EffectiveLiquidity()
	if available >= tx.RemainingAmount {
		return PaymentDecision{Action: ActionReleaseFull, Reason: "affordable outright"}
	}
	if !tx.Divisible {
		return PaymentDecision{Action: ActionHold, Reason: "insufficient liquidity, not divisible"}
	}
	max := p.MaxSplits
	if max < 2 {
		max = 2
	}
	for n := 2; n <= max; n++ {
		childAmount := tx.RemainingAmount / int64(n)
		if childAmount*int64(n) != tx.RemainingAmount {
			continue // require an exact split so children sum to the parent exactly
		}
		if childAmount <= available && childAmount >= p.MinSplitAmount {
			return PaymentDecision{Action: ActionReleasePartial, NSplits: n, Reason: "splitting to fit available liquidity"}
		}
	}
	return PaymentDecision{Action: ActionHold, Reason: "no feasible split at current liquidity"}
}

func (p LiquiditySplitting) EvaluateStrategicCollateral(domain.Agent, LedgerView, int64) CollateralDecision {
	return CollateralDecision{Action: CollateralHold}
}

func (p LiquiditySplitting) EvaluateEndOfTickCollateral(domain.Agent, LedgerView, int64) CollateralDecision {
	return CollateralDecision{Action: CollateralHold}
}

// MockSplitting splits every divisible transaction whose amount divides
// evenly by NumSplits into NumSplits equal children, regardless of
// liquidity; any other transaction is released whole. It exists for
// scenario tests that need a deterministic, liquidity-independent split
// shape.
type MockSplitting struct {
	NumSplits int
}

func (p MockSplitting) EvaluatePayment(_ domain.Agent, tx domain.Transaction, _ LedgerView, _ int64) PaymentDecision {
	if !tx.Divisible || p.NumSplits < 2 {
		return PaymentDecision{Action: ActionReleaseFull}
	}
	if tx.RemainingAmount%int64(p.NumSplits) != 0 {
		return PaymentDecision{Action: ActionReleaseFull, Reason: "amount does not divide evenly"}
	}
	return PaymentDecision{Action: ActionReleasePartial, NSplits: p.NumSplits, Reason: "mock fixed split"}
}

func (p MockSplitting) EvaluateStrategicCollateral(domain.Agent, LedgerView, int64) CollateralDecision {
	return CollateralDecision{Action: CollateralHold}
}

func (p MockSplitting) EvaluateEndOfTickCollateral(domain.Agent, LedgerView, int64) CollateralDecision {
	return CollateralDecision{Action: CollateralHold}
}
