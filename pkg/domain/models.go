// Package domain holds the data types shared by every engine package:
// agents, transactions, and the small enums that describe their lifecycle.
// All monetary fields are signed 64-bit integer minor units (cents); no
// float touches a balance, amount, or cost accumulator anywhere in this
// package or its callers.
package domain

// AgentID and TxID are opaque, comparable identifiers. Agent ids are
// operator-assigned strings (from configuration); transaction ids are
// minted deterministically by the engine (see rtgssim/internal/engine/arrivals).
type AgentID string
type TxID string

// Agent is a participating bank. CurrentBalance may go negative down to
// -CreditLimit. PostedCollateral adds further effective liquidity on top
// of that. OutgoingQueue is Queue 1: transaction ids awaiting release,
// owned by the agent's policy.
type Agent struct {
	ID                   AgentID
	OpeningBalance       int64
	CurrentBalance       int64
	CreditLimit          int64
	PostedCollateral     int64
	OutgoingQueue        []TxID
	IncomingExpectedCount int
	CollateralCostBps    int64 // per-tick bps rate on posted collateral; overrides cost_rates default when non-zero

	Costs AgentCosts
}

// CollateralCapacity is 10x the credit limit.
func (a *Agent) CollateralCapacity() int64 {
	return 10 * a.CreditLimit
}

// EffectiveLiquidity is current_balance + credit_limit + posted_collateral.
func (a *Agent) EffectiveLiquidity() int64 {
	return a.CurrentBalance + a.CreditLimit + a.PostedCollateral
}

// AgentCosts accumulates the per-agent cost counters an agent has
// incurred over the run.
type AgentCosts struct {
	Liquidity           int64
	Delay               int64
	CollateralOpportunity int64
	DeadlinePenalty     int64
	EndOfDayPenalty     int64
	SplitFriction       int64
}

// Total sums every accrued cost counter.
func (c AgentCosts) Total() int64 {
	return c.Liquidity + c.Delay + c.CollateralOpportunity + c.DeadlinePenalty + c.EndOfDayPenalty + c.SplitFriction
}

// TransactionStatus is the lifecycle state of a Transaction.
type TransactionStatus string

const (
	StatusPending          TransactionStatus = "pending"
	StatusPartiallySettled TransactionStatus = "partially_settled"
	StatusSettled          TransactionStatus = "settled"
	StatusDropped          TransactionStatus = "dropped"
)

// DropReason tags why a transaction left the system without settling.
type DropReason string

const (
	DropNone           DropReason = ""
	DropDeadlineMissed DropReason = "deadline_missed"
	DropEndOfDay       DropReason = "end_of_day"
	DropPolicyDrop     DropReason = "policy_drop"
	DropCapBreach      DropReason = "cap_breach"
)

// Transaction is immutable except for its settlement state.
// OriginalAmount == RemainingAmount + SettledAmount always.
type Transaction struct {
	ID             TxID
	SenderID       AgentID
	ReceiverID     AgentID
	OriginalAmount int64
	RemainingAmount int64
	SettledAmount  int64
	ArrivalTick    int64
	DeadlineTick   int64
	Priority       int
	Divisible      bool
	Status         TransactionStatus
	DropReason     DropReason
	ParentID       TxID // empty if not a child of a split
	ChildIDs       []TxID // non-empty only on a transaction that was split
	SettlementTick int64
}

// HasParent reports whether this transaction was produced by a split.
func (t *Transaction) HasParent() bool {
	return t.ParentID != ""
}
