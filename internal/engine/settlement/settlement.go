// Package settlement implements atomic RTGS settlement and the central
// Queue 2 retry scan. Every function here either fully applies a state
// change or leaves the ledger untouched — there is no partial debit.
package settlement

import (
	"rtgssim/internal/domain"
	"rtgssim/internal/engine/eventlog"
	"rtgssim/internal/engine/ledger"
	rtgserrors "rtgssim/pkg/errors"
)

// Outcome is the tagged result of a single try_settle call.
type Outcome string

const (
	OutcomeSettled Outcome = "settled"
	OutcomeQueued  Outcome = "queued"
)

// TrySettle attempts to settle tx atomically: debit sender, credit
// receiver, mark Settled, and propagate to a parent if tx is a split
// child. If the sender's effective liquidity can't cover
// remaining_amount, tx is left untouched here and the caller is told to
// queue it instead.
func TrySettle(l *ledger.Ledger, log *eventlog.Log, txID domain.TxID, tick, day int64) (Outcome, error) {
	tx := l.GetTransaction(txID)
	if tx == nil {
		return "", rtgserrors.ErrUnknownTransaction
	}
	if tx.Status == domain.StatusSettled {
		return "", rtgserrors.ErrAlreadySettled
	}
	sender := l.GetAgent(tx.SenderID)
	receiver := l.GetAgent(tx.ReceiverID)
	amount := tx.RemainingAmount

	available := sender.EffectiveLiquidity()
	if available < amount {
		return OutcomeQueued, nil
	}

	sender.CurrentBalance -= amount
	l.Credit(tx.ReceiverID, amount)
	tx.SettledAmount += amount
	tx.RemainingAmount = 0
	tx.Status = domain.StatusSettled
	tx.SettlementTick = tick

	if tx.HasParent() {
		if err := settleIntoParent(l, tx.ParentID, amount); err != nil {
			return "", err
		}
	}

	log.Append(eventlog.Event{
		Tick: tick,
		Day:  day,
		Type: eventlog.TypeSettlement,
		Settlement: &eventlog.SettlementPayload{
			TxID:                 tx.ID,
			SenderID:             tx.SenderID,
			ReceiverID:           tx.ReceiverID,
			Amount:               amount,
			SenderBalanceAfter:   sender.CurrentBalance,
			ReceiverBalanceAfter: receiver.CurrentBalance,
			ParentID:             tx.ParentID,
		},
	})
	return OutcomeSettled, nil
}

// ForceSettle applies a transaction's full remaining amount as a balance
// transfer and marks it Settled, without any liquidity check. LSM passes
// call this once a whole group (bilateral pair or cycle) has already
// been established as fundable; this only performs the mechanical
// per-transaction state change.
func ForceSettle(l *ledger.Ledger, txID domain.TxID, tick int64) error {
	tx := l.GetTransaction(txID)
	if tx == nil {
		return rtgserrors.ErrUnknownTransaction
	}
	if tx.Status == domain.StatusSettled {
		return rtgserrors.ErrAlreadySettled
	}
	sender := l.GetAgent(tx.SenderID)
	amount := tx.RemainingAmount

	sender.CurrentBalance -= amount
	l.Credit(tx.ReceiverID, amount)
	tx.SettledAmount += amount
	tx.RemainingAmount = 0
	tx.Status = domain.StatusSettled
	tx.SettlementTick = tick

	if tx.HasParent() {
		return settleIntoParent(l, tx.ParentID, amount)
	}
	return nil
}

// settleIntoParent decrements a parent's remaining_amount by a settled
// child's amount, transitioning the parent to Settled once nothing
// remains.
func settleIntoParent(l *ledger.Ledger, parentID domain.TxID, amount int64) error {
	parent := l.GetTransaction(parentID)
	if parent == nil {
		return rtgserrors.ErrUnknownTransaction
	}
	parent.RemainingAmount -= amount
	parent.SettledAmount += amount
	if parent.RemainingAmount < 0 {
		return rtgserrors.ErrNegativeRemaining
	}
	if parent.RemainingAmount == 0 {
		parent.Status = domain.StatusSettled
	} else {
		parent.Status = domain.StatusPartiallySettled
	}
	return nil
}

// EnqueueQueued moves tx into Queue 2 and emits QueuedRtgs. Call this
// after TrySettle returns OutcomeQueued for a transaction not already in
// Queue 2.
func EnqueueQueued(l *ledger.Ledger, log *eventlog.Log, txID domain.TxID, tick, day int64) {
	tx := l.GetTransaction(txID)
	l.EnqueueRTGS(txID)
	log.Append(eventlog.Event{
		Tick: tick,
		Day:  day,
		Type: eventlog.TypeQueuedRtgs,
		QueuedRtgs: &eventlog.QueuedRtgsPayload{
			TxID:       tx.ID,
			SenderID:   tx.SenderID,
			ReceiverID: tx.ReceiverID,
			Amount:     tx.RemainingAmount,
		},
	})
}

// ProcessQueue scans Queue 2 in insertion order and retries TrySettle for
// each entry, removing settled ones. Insertion order survives failed
// attempts within the pass.
func ProcessQueue(l *ledger.Ledger, log *eventlog.Log, tick, day int64) error {
	for _, txID := range l.Queue2() {
		outcome, err := TrySettle(l, log, txID, tick, day)
		if err != nil {
			return err
		}
		if outcome == OutcomeSettled {
			l.RemoveFromRTGS(txID)
		}
	}
	return nil
}
