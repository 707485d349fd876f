package orchestrator

import (
	"rtgssim/internal/domain"
	"rtgssim/internal/engine/costs"
	"rtgssim/internal/engine/eventlog"
	"rtgssim/internal/engine/policy"
	"rtgssim/internal/engine/settlement"
)

// evaluatePolicies is step 2 of the tick loop: for every agent in stable
// order, for every transaction currently in its Queue 1 in FIFO order,
// call evaluate_payment and act on the decision. Release moves the
// transaction to the pending-settlement list consumed by
// processSettlement; Split replaces it with n children requeued ahead of
// the remaining FIFO items; Hold leaves it in place; Drop removes it.
func (s *Simulation) evaluatePolicies(absoluteTick, tick, day int64) error {
	view := &ledgerView{l: s.ledger, clock: s.clock}
	s.pendingSettlement = s.pendingSettlement[:0]

	for _, agentID := range s.ledger.AgentOrder() {
		evaluator, ok := s.evaluators[agentID]
		if !ok {
			continue
		}
		if bankEval, ok := evaluator.(policy.BankEvaluator); ok {
			agent := *s.ledger.GetAgent(agentID)
			bankEval.EvaluateBank(agent, view, absoluteTick)
		}

		for _, txID := range s.ledger.Queue1(agentID) {
			tx := s.ledger.GetTransaction(txID)
			if tx == nil || tx.Status != domain.StatusPending {
				s.ledger.DequeueOutgoing(agentID, txID)
				continue
			}
			agent := *s.ledger.GetAgent(agentID)
			decision := evaluator.EvaluatePayment(agent, *tx, view, absoluteTick)

			switch decision.Action {
			case policy.ActionReleaseFull:
				s.ledger.DequeueOutgoing(agentID, txID)
				s.pendingSettlement = append(s.pendingSettlement, txID)
				s.log.Append(eventlog.Event{
					Tick: absoluteTick,
					Day:  day,
					Type: eventlog.TypePolicySubmit,
					Policy: &eventlog.PolicyPayload{
						TxID:    txID,
						AgentID: agentID,
						Reason:  decision.Reason,
					},
				})

			case policy.ActionReleasePartial:
				s.ledger.DequeueOutgoing(agentID, txID)
				if err := s.splitTransaction(agentID, tx, decision.NSplits, absoluteTick, tick, day); err != nil {
					return err
				}

			case policy.ActionHold:
				s.log.Append(eventlog.Event{
					Tick: absoluteTick,
					Day:  day,
					Type: eventlog.TypePolicyHold,
					Policy: &eventlog.PolicyPayload{
						TxID:    txID,
						AgentID: agentID,
						Reason:  decision.Reason,
					},
				})

			case policy.ActionDrop:
				s.ledger.DequeueOutgoing(agentID, txID)
				tx.Status = domain.StatusDropped
				tx.DropReason = domain.DropPolicyDrop
				s.log.Append(eventlog.Event{
					Tick: absoluteTick,
					Day:  day,
					Type: eventlog.TypePolicyDrop,
					Policy: &eventlog.PolicyPayload{
						TxID:    txID,
						AgentID: agentID,
						Reason:  decision.Reason,
					},
				})
				if tx.HasParent() {
					s.reconcileParentAfterChildDrop(tx.ParentID, absoluteTick, day)
				}
			}
		}
	}
	return nil
}

// splitTransaction replaces a divisible transaction with n equal (modulo
// remainder) children, requeued ahead of the sender's remaining Queue 1
// items, and accrues split friction once per child. A non-divisible
// transaction or n < 2 is treated as an invalid policy request and the
// original transaction is held rather than split.
func (s *Simulation) splitTransaction(agentID domain.AgentID, parent *domain.Transaction, n int, absoluteTick, tick, day int64) error {
	if !parent.Divisible || n < 2 {
		s.ledger.EnqueueOutgoingFront(agentID, []domain.TxID{parent.ID})
		return nil
	}

	remaining := parent.RemainingAmount
	base := remaining / int64(n)
	rem := remaining % int64(n)
	if base < 1 {
		s.ledger.EnqueueOutgoingFront(agentID, []domain.TxID{parent.ID})
		return nil
	}

	childIDs := make([]domain.TxID, 0, n)
	childAmounts := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		amount := base
		if int64(i) < rem {
			amount++
		}
		childID := s.generator.NextTxID(absoluteTick)
		child := &domain.Transaction{
			ID:              childID,
			SenderID:        parent.SenderID,
			ReceiverID:      parent.ReceiverID,
			OriginalAmount:  amount,
			RemainingAmount: amount,
			ArrivalTick:     parent.ArrivalTick,
			DeadlineTick:    parent.DeadlineTick,
			Priority:        parent.Priority,
			Divisible:       false,
			Status:          domain.StatusPending,
			ParentID:        parent.ID,
		}
		if err := s.ledger.AddTransaction(child); err != nil {
			return err
		}
		childIDs = append(childIDs, childID)
		childAmounts = append(childAmounts, amount)
		costs.AccrueSplitFriction(s.ledger, s.log, s.costRates, parent.SenderID, absoluteTick, day)
	}

	parent.ChildIDs = append(parent.ChildIDs, childIDs...)
	parent.Status = domain.StatusPartiallySettled
	s.ledger.EnqueueOutgoingFront(agentID, childIDs)

	s.log.Append(eventlog.Event{
		Tick: absoluteTick,
		Day:  day,
		Type: eventlog.TypePolicySplit,
		Policy: &eventlog.PolicyPayload{
			TxID:         parent.ID,
			AgentID:      agentID,
			ChildIDs:     childIDs,
			ChildAmounts: childAmounts,
		},
	})
	return nil
}

// processSettlement is steps 3/4 of the tick loop: attempt settlement for
// every transaction released this tick, queueing whichever can't
// immediately clear, then retry the whole of Queue 2 once.
func (s *Simulation) processSettlement(absoluteTick, day int64) error {
	for _, txID := range s.pendingSettlement {
		outcome, err := settlement.TrySettle(s.ledger, s.log, txID, absoluteTick, day)
		if err != nil {
			return err
		}
		if outcome == settlement.OutcomeQueued {
			settlement.EnqueueQueued(s.ledger, s.log, txID, absoluteTick, day)
		}
	}
	return settlement.ProcessQueue(s.ledger, s.log, absoluteTick, day)
}

// enforceDeadlines is step 7 of the tick loop: drop every non-terminal
// transaction whose deadline has passed, accruing the deadline penalty
// against its sender, and reconciling any parent whose children have all
// reached a terminal state as a result. A split parent is never dropped
// here directly; its fate is left to reconcileParentAfterChildDrop.
func (s *Simulation) enforceDeadlines(absoluteTick, day int64) error {
	touchedParents := make(map[domain.TxID]bool)
	var touchedOrder []domain.TxID

	for _, agentID := range s.ledger.AgentOrder() {
		for _, txID := range s.ledger.SenderTransactions(agentID) {
			tx := s.ledger.GetTransaction(txID)
			if tx.Status == domain.StatusSettled || tx.Status == domain.StatusDropped {
				continue
			}
			if len(tx.ChildIDs) > 0 {
				continue
			}
			if tx.DeadlineTick >= absoluteTick+1 {
				continue
			}
			s.ledger.DequeueOutgoing(agentID, txID)
			s.ledger.RemoveFromRTGS(txID)
			tx.Status = domain.StatusDropped
			tx.DropReason = domain.DropDeadlineMissed

			costs.AccrueDeadlinePenalty(s.ledger, s.log, s.costRates, tx.SenderID, absoluteTick, day)
			s.log.Append(eventlog.Event{
				Tick: absoluteTick,
				Day:  day,
				Type: eventlog.TypeDeadlineMissed,
				DeadlineMissed: &eventlog.DeadlineMissedPayload{
					TxID:       tx.ID,
					SenderID:   tx.SenderID,
					ReceiverID: tx.ReceiverID,
					Amount:     tx.RemainingAmount,
					Penalty:    s.costRates.DeadlinePenalty,
				},
			})

			if tx.HasParent() && !touchedParents[tx.ParentID] {
				touchedParents[tx.ParentID] = true
				touchedOrder = append(touchedOrder, tx.ParentID)
			}
		}
	}

	for _, parentID := range touchedOrder {
		s.reconcileParentAfterChildDrop(parentID, absoluteTick, day)
	}
	return nil
}

// reconcileParentAfterChildDrop re-derives a split parent's status once
// one of its children is dropped for a missed deadline. If every child
// has reached a terminal state (Settled or Dropped), the parent settles
// if its remaining amount is fully accounted for by settled children, and
// otherwise is dropped itself: a split parent can never re-release the
// unsettled share of a child that has already missed its own deadline.
func (s *Simulation) reconcileParentAfterChildDrop(parentID domain.TxID, tick, day int64) {
	parent := s.ledger.GetTransaction(parentID)
	if parent == nil || parent.Status == domain.StatusSettled || parent.Status == domain.StatusDropped {
		return
	}

	allTerminal := true
	var settledTotal int64
	for _, childID := range parent.ChildIDs {
		child := s.ledger.GetTransaction(childID)
		if child == nil {
			continue
		}
		if child.Status != domain.StatusSettled && child.Status != domain.StatusDropped {
			allTerminal = false
			break
		}
		if child.Status == domain.StatusSettled {
			settledTotal += child.SettledAmount
		}
	}
	if !allTerminal {
		return
	}

	parent.SettledAmount = settledTotal
	parent.RemainingAmount = parent.OriginalAmount - settledTotal
	if parent.RemainingAmount == 0 {
		parent.Status = domain.StatusSettled
		return
	}
	parent.Status = domain.StatusDropped
	parent.DropReason = domain.DropPolicyDrop
	s.log.Append(eventlog.Event{
		Tick: tick,
		Day:  day,
		Type: eventlog.TypePolicyDrop,
		Policy: &eventlog.PolicyPayload{
			TxID:    parent.ID,
			AgentID: parent.SenderID,
			Reason:  "split child missed deadline; parent cannot fully complete",
		},
	})
}

// accrueEndOfDay is step 8 of the tick loop: every transaction still
// unsettled at the close of a day incurs the flat end-of-day penalty.
// Transactions are not dropped by this step alone; deadline enforcement
// (step 7) is what removes them from the system.
func (s *Simulation) accrueEndOfDay(absoluteTick, day int64) {
	var unsettled int
	var total int64
	for _, agentID := range s.ledger.AgentOrder() {
		for _, txID := range s.ledger.SenderTransactions(agentID) {
			tx := s.ledger.GetTransaction(txID)
			if tx.Status == domain.StatusSettled || tx.Status == domain.StatusDropped {
				continue
			}
			unsettled++
			total += s.costRates.EodPenaltyPerTransaction
			costs.AccrueEndOfDayPenalty(s.ledger, s.log, s.costRates, tx.SenderID, absoluteTick, day)
		}
	}
	s.log.Append(eventlog.Event{
		Tick: absoluteTick,
		Day:  day,
		Type: eventlog.TypeEndOfDay,
		EndOfDay: &eventlog.EndOfDayPayload{
			Day:            day,
			UnsettledCount: unsettled,
			PenaltyPerTx:   s.costRates.EodPenaltyPerTransaction,
			TotalPenalty:   total,
		},
	})
}
