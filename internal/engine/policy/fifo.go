package policy

import "rtgssim/internal/domain"

// Fifo is the default policy: always release, never post or withdraw
// collateral.
type Fifo struct{}

func (Fifo) EvaluatePayment(domain.Agent, domain.Transaction, LedgerView, int64) PaymentDecision {
	return PaymentDecision{Action: ActionReleaseFull}
}

func (Fifo) EvaluateStrategicCollateral(domain.Agent, LedgerView, int64) CollateralDecision {
	return CollateralDecision{Action: CollateralHold}
}

func (Fifo) EvaluateEndOfTickCollateral(domain.Agent, LedgerView, int64) CollateralDecision {
	return CollateralDecision{Action: CollateralHold}
}
