package orchestrator

import (
	"rtgssim/internal/domain"
	"rtgssim/internal/engine/eventlog"
	rtgserrors "rtgssim/pkg/errors"
)

// GetAgentBalance returns an agent's current balance.
func (s *Simulation) GetAgentBalance(id domain.AgentID) (int64, error) {
	a := s.ledger.GetAgent(id)
	if a == nil {
		return 0, rtgserrors.ErrUnknownAgent
	}
	return a.CurrentBalance, nil
}

// GetAgentCreditLimit returns an agent's configured credit limit.
func (s *Simulation) GetAgentCreditLimit(id domain.AgentID) (int64, error) {
	a := s.ledger.GetAgent(id)
	if a == nil {
		return 0, rtgserrors.ErrUnknownAgent
	}
	return a.CreditLimit, nil
}

// GetPostedCollateral returns an agent's currently posted collateral.
func (s *Simulation) GetPostedCollateral(id domain.AgentID) (int64, error) {
	a := s.ledger.GetAgent(id)
	if a == nil {
		return 0, rtgserrors.ErrUnknownAgent
	}
	return a.PostedCollateral, nil
}

// GetQueue1Contents returns an agent's outgoing queue in FIFO order.
func (s *Simulation) GetQueue1Contents(id domain.AgentID) ([]domain.TxID, error) {
	if !s.ledger.HasAgent(id) {
		return nil, rtgserrors.ErrUnknownAgent
	}
	return s.ledger.Queue1(id), nil
}

// GetRTGSQueueContents returns the central Queue 2 in insertion order.
func (s *Simulation) GetRTGSQueueContents() []domain.TxID {
	return s.ledger.Queue2()
}

// AgentState is a point-in-time view of one agent's balance-sheet
// counters, used when snapshotting a run.
type AgentState struct {
	ID               domain.AgentID
	CurrentBalance   int64
	PostedCollateral int64
	Costs            domain.AgentCosts
}

// GetAllAgentStates returns every agent's current state, in the
// ledger's stable iteration order.
func (s *Simulation) GetAllAgentStates() []AgentState {
	order := s.ledger.AgentOrder()
	states := make([]AgentState, 0, len(order))
	for _, id := range order {
		a := s.ledger.GetAgent(id)
		if a == nil {
			continue
		}
		states = append(states, AgentState{
			ID:               a.ID,
			CurrentBalance:   a.CurrentBalance,
			PostedCollateral: a.PostedCollateral,
			Costs:            a.Costs,
		})
	}
	return states
}

// GetTransactionDetails returns a copy of a transaction's current state.
func (s *Simulation) GetTransactionDetails(id domain.TxID) (domain.Transaction, error) {
	tx := s.ledger.GetTransaction(id)
	if tx == nil {
		return domain.Transaction{}, rtgserrors.ErrUnknownTransaction
	}
	return *tx, nil
}

// GetTickEvents returns every event appended during the given absolute
// tick, in order.
func (s *Simulation) GetTickEvents(absoluteTick int64) []eventlog.Event {
	return s.log.Tick(absoluteTick)
}

// GetAllEvents returns the full ordered event stream of the run so far.
func (s *Simulation) GetAllEvents() []eventlog.Event {
	return s.log.All()
}

// CurrentTick returns the current tick-within-day.
func (s *Simulation) CurrentTick() int64 { return s.clock.Tick() }

// CurrentDay returns the current day.
func (s *Simulation) CurrentDay() int64 { return s.clock.Day() }

// SubmitTransaction injects an externally-originated transaction into the
// sender's Queue 1, outside of the scheduled/stochastic arrival paths
// (e.g. interactive or test-driven scenario construction). It is minted
// from the same id space as generated arrivals and logged as an Arrival
// event like any other.
func (s *Simulation) SubmitTransaction(senderID, receiverID domain.AgentID, amount, deadlineTick int64, priority int, divisible bool) (domain.TxID, error) {
	if !s.ledger.HasAgent(senderID) || !s.ledger.HasAgent(receiverID) {
		return "", rtgserrors.ErrUnknownAgent
	}
	if senderID == receiverID {
		return "", rtgserrors.ErrSameSenderReceiver
	}

	absoluteTick := s.clock.AbsoluteTick()
	txID := s.generator.NextTxID(absoluteTick)
	tx := &domain.Transaction{
		ID:              txID,
		SenderID:        senderID,
		ReceiverID:      receiverID,
		OriginalAmount:  amount,
		RemainingAmount: amount,
		ArrivalTick:     absoluteTick,
		DeadlineTick:    deadlineTick,
		Priority:        priority,
		Divisible:       divisible,
		Status:          domain.StatusPending,
	}
	if err := s.ledger.AddTransaction(tx); err != nil {
		return "", err
	}
	s.ledger.EnqueueOutgoing(senderID, txID)

	s.log.Append(eventlog.Event{
		Tick: absoluteTick,
		Day:  s.clock.Day(),
		Type: eventlog.TypeArrival,
		Arrival: &eventlog.ArrivalPayload{
			TxID:         txID,
			SenderID:     senderID,
			ReceiverID:   receiverID,
			Amount:       amount,
			ArrivalTick:  absoluteTick,
			DeadlineTick: deadlineTick,
			Priority:     priority,
			Divisible:    divisible,
		},
	})
	return txID, nil
}
