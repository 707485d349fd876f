// Package ledger owns the central, process-wide mutable state of a single
// simulation: agents, transactions, and Queue 2 (the central RTGS queue).
// Queue membership changes only through the methods here; other engine
// packages also adjust agent balances, collateral and costs directly
// through the *Agent pointers it hands out. Iteration goes through its
// stable agent order and FIFO queues so that ordering never depends on
// Go map iteration order.
package ledger

import (
	"fmt"

	"rtgssim/internal/domain"
	rtgserrors "rtgssim/pkg/errors"
)

// Ledger is the engine's exclusively-owned central state for one
// simulation run. It is not safe for concurrent use — the tick loop is
// single-threaded by design.
type Ledger struct {
	agentOrder        []domain.AgentID
	agents            map[domain.AgentID]*domain.Agent
	transactions      map[domain.TxID]*domain.Transaction
	queue2            []domain.TxID
	deferredCrediting bool
	pendingCredits    map[domain.AgentID]int64
	senderTxIDs       map[domain.AgentID][]domain.TxID
}

// New constructs a Ledger from agents in the stable order they must be
// iterated in for the remainder of the run: the order they were listed
// in configuration.
func New(agentsInOrder []*domain.Agent) (*Ledger, error) {
	l := &Ledger{
		agentOrder:     make([]domain.AgentID, 0, len(agentsInOrder)),
		agents:         make(map[domain.AgentID]*domain.Agent, len(agentsInOrder)),
		transactions:   make(map[domain.TxID]*domain.Transaction),
		queue2:         make([]domain.TxID, 0),
		pendingCredits: make(map[domain.AgentID]int64),
		senderTxIDs:    make(map[domain.AgentID][]domain.TxID),
	}
	for _, a := range agentsInOrder {
		if _, exists := l.agents[a.ID]; exists {
			return nil, fmt.Errorf("%w: %s", rtgserrors.ErrDuplicateAgent, a.ID)
		}
		if a.OpeningBalance+a.CreditLimit+a.PostedCollateral < 0 {
			return nil, fmt.Errorf("%w: agent %s", rtgserrors.ErrNegativeBalance, a.ID)
		}
		a.CurrentBalance = a.OpeningBalance
		l.agents[a.ID] = a
		l.agentOrder = append(l.agentOrder, a.ID)
	}
	return l, nil
}

// AgentOrder returns the stable iteration order fixed at construction.
// Callers must never range over the agent map directly.
func (l *Ledger) AgentOrder() []domain.AgentID {
	return l.agentOrder
}

// GetAgent returns the agent for id, or nil if unknown.
func (l *Ledger) GetAgent(id domain.AgentID) *domain.Agent {
	return l.agents[id]
}

// HasAgent reports whether id names a configured agent.
func (l *Ledger) HasAgent(id domain.AgentID) bool {
	_, ok := l.agents[id]
	return ok
}

// GetTransaction returns the transaction for id, or nil if unknown.
func (l *Ledger) GetTransaction(id domain.TxID) *domain.Transaction {
	return l.transactions[id]
}

// AddTransaction registers a new transaction. Fails on id collision
// — this is a fatal engine invariant, never a recoverable one,
// since transaction ids are minted deterministically and a collision means
// the id generator itself is broken.
func (l *Ledger) AddTransaction(tx *domain.Transaction) error {
	if _, exists := l.transactions[tx.ID]; exists {
		return fmt.Errorf("%w: %s", rtgserrors.ErrDuplicateTransaction, tx.ID)
	}
	if !l.HasAgent(tx.SenderID) {
		return fmt.Errorf("%w: sender %s", rtgserrors.ErrUnknownAgent, tx.SenderID)
	}
	if !l.HasAgent(tx.ReceiverID) {
		return fmt.Errorf("%w: receiver %s", rtgserrors.ErrUnknownAgent, tx.ReceiverID)
	}
	if tx.SenderID == tx.ReceiverID {
		return fmt.Errorf("%w: %s", rtgserrors.ErrSameSenderReceiver, tx.SenderID)
	}
	l.transactions[tx.ID] = tx
	l.senderTxIDs[tx.SenderID] = append(l.senderTxIDs[tx.SenderID], tx.ID)
	return nil
}

// SenderTransactions returns every transaction id ever submitted by
// agentID, in the deterministic order they were added — the ordering
// basis for a full scan over an agent's transactions (e.g. deadline
// enforcement) regardless of which queue, if any, currently holds them.
func (l *Ledger) SenderTransactions(agentID domain.AgentID) []domain.TxID {
	ids := l.senderTxIDs[agentID]
	out := make([]domain.TxID, len(ids))
	copy(out, ids)
	return out
}

// EnqueueOutgoing appends txID to agent's Queue 1 (FIFO order preserved).
func (l *Ledger) EnqueueOutgoing(agentID domain.AgentID, txID domain.TxID) {
	a := l.agents[agentID]
	a.OutgoingQueue = append(a.OutgoingQueue, txID)
}

// EnqueueOutgoingFront prepends txID to agent's Queue 1, used when a split
// inserts children ahead of the remaining FIFO items.
func (l *Ledger) EnqueueOutgoingFront(agentID domain.AgentID, txIDs []domain.TxID) {
	a := l.agents[agentID]
	a.OutgoingQueue = append(append([]domain.TxID{}, txIDs...), a.OutgoingQueue...)
}

// DequeueOutgoing removes the first occurrence of txID from agent's
// Queue 1, preserving the relative order of the remaining items.
func (l *Ledger) DequeueOutgoing(agentID domain.AgentID, txID domain.TxID) {
	a := l.agents[agentID]
	for i, id := range a.OutgoingQueue {
		if id == txID {
			a.OutgoingQueue = append(a.OutgoingQueue[:i], a.OutgoingQueue[i+1:]...)
			return
		}
	}
}

// EnqueueRTGS appends txID to Queue 2, preserving insertion order for
// deterministic LSM scanning.
func (l *Ledger) EnqueueRTGS(txID domain.TxID) {
	l.queue2 = append(l.queue2, txID)
}

// RemoveFromRTGS removes the first occurrence of txID from Queue 2,
// preserving the relative order of the remaining items. Insertion order
// survives failed settlement attempts.
func (l *Ledger) RemoveFromRTGS(txID domain.TxID) {
	for i, id := range l.queue2 {
		if id == txID {
			l.queue2 = append(l.queue2[:i], l.queue2[i+1:]...)
			return
		}
	}
}

// Queue2 returns the current contents of the central RTGS queue in
// insertion order. The returned slice is a copy; callers may not mutate
// ledger state through it.
func (l *Ledger) Queue2() []domain.TxID {
	out := make([]domain.TxID, len(l.queue2))
	copy(out, l.queue2)
	return out
}

// Queue1 returns agentID's outgoing queue contents in FIFO order, copied.
func (l *Ledger) Queue1(agentID domain.AgentID) []domain.TxID {
	a := l.agents[agentID]
	if a == nil {
		return nil
	}
	out := make([]domain.TxID, len(a.OutgoingQueue))
	copy(out, a.OutgoingQueue)
	return out
}

// SumBalances returns the sum of every agent's current balance, used by
// the conservation-invariant checks in tests.
func (l *Ledger) SumBalances() int64 {
	var sum int64
	for _, id := range l.agentOrder {
		sum += l.agents[id].CurrentBalance
	}
	return sum
}

// SetDeferredCrediting toggles deferred-crediting mode: when on, Credit
// posts to a per-agent pending list instead of current_balance, merged in
// by MergePendingCredits at the start of the next tick.
func (l *Ledger) SetDeferredCrediting(on bool) {
	l.deferredCrediting = on
}

// Credit applies an inbound settlement amount to agentID, routing through
// the pending-credit list when deferred crediting is active.
func (l *Ledger) Credit(agentID domain.AgentID, amount int64) {
	if l.deferredCrediting {
		l.pendingCredits[agentID] += amount
		return
	}
	l.agents[agentID].CurrentBalance += amount
}

// MergePendingCredits folds every agent's pending credits into
// current_balance, in stable agent order, and clears the pending list.
// Called once at the start of each tick.
func (l *Ledger) MergePendingCredits() {
	for _, id := range l.agentOrder {
		if amount := l.pendingCredits[id]; amount != 0 {
			l.agents[id].CurrentBalance += amount
			delete(l.pendingCredits, id)
		}
	}
}

// PendingCredit returns agentID's not-yet-merged pending credit total —
// the "in-flight" side of the conservation invariant under deferred
// crediting.
func (l *Ledger) PendingCredit(agentID domain.AgentID) int64 {
	return l.pendingCredits[agentID]
}

// SumInFlight returns the sum of remaining_amount over every
// non-terminal transaction, plus any not-yet-merged pending credits —
// together the "in-flight" side of the conservation invariant.
func (l *Ledger) SumInFlight() int64 {
	var sum int64
	for _, tx := range l.transactions {
		if tx.Status == domain.StatusPending || tx.Status == domain.StatusPartiallySettled {
			sum += tx.RemainingAmount
		}
	}
	for _, amount := range l.pendingCredits {
		sum += amount
	}
	return sum
}
