package orchestrator

import (
	"rtgssim/internal/domain"
	"rtgssim/internal/engine/clock"
	"rtgssim/internal/engine/ledger"
)

// ledgerView adapts *ledger.Ledger and *clock.Clock to policy.LedgerView,
// the read-only surface a policy evaluator may consult.
type ledgerView struct {
	l     *ledger.Ledger
	clock *clock.Clock
}

func (v *ledgerView) AgentBalance(id domain.AgentID) int64 {
	if a := v.l.GetAgent(id); a != nil {
		return a.CurrentBalance
	}
	return 0
}

func (v *ledgerView) AgentCreditLimit(id domain.AgentID) int64 {
	if a := v.l.GetAgent(id); a != nil {
		return a.CreditLimit
	}
	return 0
}

func (v *ledgerView) PostedCollateral(id domain.AgentID) int64 {
	if a := v.l.GetAgent(id); a != nil {
		return a.PostedCollateral
	}
	return 0
}

func (v *ledgerView) CollateralCapacity(id domain.AgentID) int64 {
	if a := v.l.GetAgent(id); a != nil {
		return a.CollateralCapacity()
	}
	return 0
}

func (v *ledgerView) Queue1Contents(id domain.AgentID) []domain.TxID {
	return v.l.Queue1(id)
}

func (v *ledgerView) RTGSQueueContents() []domain.TxID {
	return v.l.Queue2()
}

func (v *ledgerView) Transaction(id domain.TxID) (domain.Transaction, bool) {
	tx := v.l.GetTransaction(id)
	if tx == nil {
		return domain.Transaction{}, false
	}
	return *tx, true
}

func (v *ledgerView) CurrentTick() int64 { return v.clock.Tick() }
func (v *ledgerView) CurrentDay() int64  { return v.clock.Day() }
