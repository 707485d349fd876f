// Package domain re-exports core domain types so internal code can import
// `rtgssim/internal/domain` while using definitions from `rtgssim/pkg/domain`.
package domain

import pkg "rtgssim/pkg/domain"

// AgentID identifies an Agent.
type AgentID = pkg.AgentID

// TxID identifies a Transaction.
type TxID = pkg.TxID

// Agent represents a participating bank.
type Agent = pkg.Agent

// AgentCosts accumulates per-agent cost counters.
type AgentCosts = pkg.AgentCosts

// Transaction represents an interbank payment.
type Transaction = pkg.Transaction

// TransactionStatus represents a transaction's lifecycle state.
type TransactionStatus = pkg.TransactionStatus

// DropReason tags why a transaction left the system unsettled.
type DropReason = pkg.DropReason

// Re-exported transaction statuses.
const (
	StatusPending          = pkg.StatusPending
	StatusPartiallySettled = pkg.StatusPartiallySettled
	StatusSettled          = pkg.StatusSettled
	StatusDropped          = pkg.StatusDropped
)

// Re-exported drop reasons.
const (
	DropNone           = pkg.DropNone
	DropDeadlineMissed = pkg.DropDeadlineMissed
	DropEndOfDay       = pkg.DropEndOfDay
	DropPolicyDrop     = pkg.DropPolicyDrop
	DropCapBreach      = pkg.DropCapBreach
)
