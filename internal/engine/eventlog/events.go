// Package eventlog implements the append-only, ordered event stream of a
// simulation run. Every event variant carries every field needed to
// reconstruct its rendering without consulting any other data source, so
// rendering a persisted event log reproduces a live run's rendering
// byte-for-byte.
package eventlog

import "rtgssim/internal/domain"

// Type tags an Event's variant.
type Type string

const (
	TypeArrival             Type = "Arrival"
	TypePolicySubmit        Type = "PolicySubmit"
	TypePolicyHold          Type = "PolicyHold"
	TypePolicyDrop          Type = "PolicyDrop"
	TypePolicySplit         Type = "PolicySplit"
	TypeSettlement          Type = "Settlement"
	TypeQueuedRtgs          Type = "QueuedRtgs"
	TypeLsmBilateralOffset  Type = "LsmBilateralOffset"
	TypeLsmCycleSettlement  Type = "LsmCycleSettlement"
	TypeCollateralPost      Type = "CollateralPost"
	TypeCollateralWithdraw  Type = "CollateralWithdraw"
	TypeCollateralRefused   Type = "CollateralRefused"
	TypeCostAccrual         Type = "CostAccrual"
	TypeDeadlineMissed      Type = "DeadlineMissed"
	TypeEndOfDay            Type = "EndOfDay"
	TypeTickAdvance         Type = "TickAdvance"
)

// CollateralLayer identifies which of the two collateral layers acted
//.
type CollateralLayer string

const (
	LayerStrategic CollateralLayer = "strategic"
	LayerEndOfTick CollateralLayer = "end_of_tick"
)

// CostType tags a CostAccrual event.
type CostType string

const (
	CostLiquidity   CostType = "liquidity"
	CostDelay       CostType = "delay"
	CostCollateral  CostType = "collateral"
	CostDeadline    CostType = "deadline_penalty"
	CostEndOfDay    CostType = "end_of_day_penalty"
	CostSplitFriction CostType = "split_friction"
)

// Event is one entry in the ordered event stream. Exactly one of the
// payload fields is non-nil, selected by Type. Seq is a stable monotonic
// sequence number assigned at append time.
type Event struct {
	Seq  int64
	Tick int64
	Day  int64
	Type Type

	Arrival            *ArrivalPayload            `json:"arrival,omitempty"`
	Policy             *PolicyPayload             `json:"policy,omitempty"`
	Settlement         *SettlementPayload         `json:"settlement,omitempty"`
	QueuedRtgs         *QueuedRtgsPayload         `json:"queued_rtgs,omitempty"`
	LsmBilateralOffset *LsmBilateralOffsetPayload `json:"lsm_bilateral_offset,omitempty"`
	LsmCycleSettlement *LsmCycleSettlementPayload `json:"lsm_cycle_settlement,omitempty"`
	Collateral         *CollateralPayload         `json:"collateral,omitempty"`
	CollateralRefused  *CollateralRefusedPayload  `json:"collateral_refused,omitempty"`
	CostAccrual        *CostAccrualPayload        `json:"cost_accrual,omitempty"`
	DeadlineMissed     *DeadlineMissedPayload     `json:"deadline_missed,omitempty"`
	EndOfDay           *EndOfDayPayload           `json:"end_of_day,omitempty"`
	TickAdvance        *TickAdvancePayload        `json:"tick_advance,omitempty"`
}

// ArrivalPayload records a new transaction entering the system, whether
// from stochastic arrivals, a scheduled scenario event, or manual
// submission.
type ArrivalPayload struct {
	TxID         domain.TxID
	SenderID     domain.AgentID
	ReceiverID   domain.AgentID
	Amount       int64
	ArrivalTick  int64
	DeadlineTick int64
	Priority     int
	Divisible    bool
}

// PolicyPayload records a policy decision on a transaction (Submit/Hold/
// Drop/Split). For Split, ChildIDs and ChildAmounts describe the children
// created.
type PolicyPayload struct {
	TxID         domain.TxID
	AgentID      domain.AgentID
	Reason       string
	ChildIDs     []domain.TxID `json:"child_ids,omitempty"`
	ChildAmounts []int64       `json:"child_amounts,omitempty"`
}

// SettlementPayload records one atomic RTGS settlement.
type SettlementPayload struct {
	TxID                 domain.TxID
	SenderID             domain.AgentID
	ReceiverID           domain.AgentID
	Amount               int64
	SenderBalanceAfter   int64
	ReceiverBalanceAfter int64
	ParentID             domain.TxID `json:"parent_id,omitempty"`
}

// QueuedRtgsPayload records a transaction being enqueued in Queue 2 for
// insufficient liquidity.
type QueuedRtgsPayload struct {
	TxID       domain.TxID
	SenderID   domain.AgentID
	ReceiverID domain.AgentID
	Amount     int64
}

// LsmBilateralOffsetPayload records one bilateral netting release
//: both agents, directional gross amounts, and every
// tx-id released.
type LsmBilateralOffsetPayload struct {
	AgentA      domain.AgentID
	AgentB      domain.AgentID
	GrossAtoB   int64
	GrossBtoA   int64
	NetAmount   int64
	FundedBy    domain.AgentID
	TxIDsAtoB   []domain.TxID
	TxIDsBtoA   []domain.TxID
}

// LsmCycleSettlementPayload records one multilateral cycle release
//: the agent list in cycle order, per-edge amounts, total
// value, every participant's net position, and the maximum net outflow.
type LsmCycleSettlementPayload struct {
	Agents           []domain.AgentID
	TxIDs            []domain.TxID
	EdgeAmounts      []int64
	TotalValue       int64
	NetPositions     map[domain.AgentID]int64
	MaxNetOutflow    int64
	MaxNetOutflowID  domain.AgentID
}

// CollateralPayload records one post/withdraw operation.
type CollateralPayload struct {
	AgentID           domain.AgentID
	Withdraw          bool
	Amount            int64
	PostedAfter       int64
	TriggerReason     string
	Layer             CollateralLayer
}

// CollateralRefusedPayload records a collateral decision that could not
// be applied — capacity reached on post, or a liquidity-floor violation
// on withdraw. No balance-sheet change accompanies it.
type CollateralRefusedPayload struct {
	AgentID       domain.AgentID
	Withdraw      bool
	Amount        int64
	TriggerReason string
	Layer         CollateralLayer
	RefusalReason string
}

// CostAccrualPayload records one cost accrual.
type CostAccrualPayload struct {
	AgentID domain.AgentID
	Type    CostType
	Amount  int64
}

// DeadlineMissedPayload records a transaction dropped for missing its
// deadline.
type DeadlineMissedPayload struct {
	TxID       domain.TxID
	SenderID   domain.AgentID
	ReceiverID domain.AgentID
	Amount     int64
	Penalty    int64
}

// EndOfDayPayload records the end-of-day boundary.
type EndOfDayPayload struct {
	Day              int64
	UnsettledCount   int
	PenaltyPerTx     int64
	TotalPenalty     int64
}

// TickAdvancePayload records the clock advancing.
type TickAdvancePayload struct {
	FromDay  int64
	FromTick int64
	ToDay    int64
	ToTick   int64
}
