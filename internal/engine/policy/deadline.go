package policy

import "rtgssim/internal/domain"

// Deadline releases everything once a transaction is within
// UrgencyThreshold ticks of its deadline, and otherwise holds — giving
// the agent a chance to let liquidity build up before committing. It
// never touches collateral.
type Deadline struct {
	UrgencyThreshold int64
}

func (d Deadline) EvaluatePayment(_ domain.Agent, tx domain.Transaction, _ LedgerView, tick int64) PaymentDecision {
	if tx.DeadlineTick-tick <= d.UrgencyThreshold {
		return PaymentDecision{Action: ActionReleaseFull}
	}
	return PaymentDecision{Action: ActionHold, Reason: "deadline not yet urgent"}
}

func (d Deadline) EvaluateStrategicCollateral(domain.Agent, LedgerView, int64) CollateralDecision {
	return CollateralDecision{Action: CollateralHold}
}

func (d Deadline) EvaluateEndOfTickCollateral(domain.Agent, LedgerView, int64) CollateralDecision {
	return CollateralDecision{Action: CollateralHold}
}
