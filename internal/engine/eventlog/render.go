package eventlog

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"rtgssim/internal/domain"
)

// Render writes a deterministic, human-readable rendering of events to w.
// It is the single rendering function used both by a live run's verbose
// output and by a standalone reader of a persisted event log — the
// replay identity invariant holds because both call
// sites funnel through this one function and every field it needs lives
// on the Event itself.
func Render(w io.Writer, events []Event) error {
	for _, e := range events {
		line, err := renderOne(e)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%06d day=%d tick=%d %s\n", e.Seq, e.Day, e.Tick, line); err != nil {
			return err
		}
	}
	return nil
}

func renderOne(e Event) (string, error) {
	switch e.Type {
	case TypeArrival:
		p := e.Arrival
		return fmt.Sprintf("Arrival tx=%s %s->%s amount=%d deadline=%d priority=%d divisible=%t",
			p.TxID, p.SenderID, p.ReceiverID, p.Amount, p.DeadlineTick, p.Priority, p.Divisible), nil
	case TypePolicySubmit, TypePolicyHold, TypePolicyDrop, TypePolicySplit:
		p := e.Policy
		line := fmt.Sprintf("%s tx=%s agent=%s reason=%q", e.Type, p.TxID, p.AgentID, p.Reason)
		if len(p.ChildIDs) > 0 {
			line += fmt.Sprintf(" children=%v amounts=%v", p.ChildIDs, p.ChildAmounts)
		}
		return line, nil
	case TypeSettlement:
		p := e.Settlement
		line := fmt.Sprintf("Settlement tx=%s %s->%s amount=%d sender_balance=%d receiver_balance=%d",
			p.TxID, p.SenderID, p.ReceiverID, p.Amount, p.SenderBalanceAfter, p.ReceiverBalanceAfter)
		if p.ParentID != "" {
			line += fmt.Sprintf(" parent=%s", p.ParentID)
		}
		return line, nil
	case TypeQueuedRtgs:
		p := e.QueuedRtgs
		return fmt.Sprintf("QueuedRtgs tx=%s %s->%s amount=%d", p.TxID, p.SenderID, p.ReceiverID, p.Amount), nil
	case TypeLsmBilateralOffset:
		p := e.LsmBilateralOffset
		return fmt.Sprintf("LsmBilateralOffset %s<->%s gross_a_to_b=%d gross_b_to_a=%d net=%d funded_by=%s tx_a_to_b=%v tx_b_to_a=%v",
			p.AgentA, p.AgentB, p.GrossAtoB, p.GrossBtoA, p.NetAmount, p.FundedBy, p.TxIDsAtoB, p.TxIDsBtoA), nil
	case TypeLsmCycleSettlement:
		p := e.LsmCycleSettlement
		return fmt.Sprintf("LsmCycleSettlement agents=%v tx=%v edge_amounts=%v total=%d net_positions=%s max_outflow=%d(%s)",
			p.Agents, p.TxIDs, p.EdgeAmounts, p.TotalValue, renderNetPositions(p.NetPositions), p.MaxNetOutflow, p.MaxNetOutflowID), nil
	case TypeCollateralPost, TypeCollateralWithdraw:
		p := e.Collateral
		return fmt.Sprintf("%s agent=%s amount=%d posted_after=%d reason=%q layer=%s",
			e.Type, p.AgentID, p.Amount, p.PostedAfter, p.TriggerReason, p.Layer), nil
	case TypeCollateralRefused:
		p := e.CollateralRefused
		return fmt.Sprintf("CollateralRefused agent=%s withdraw=%t amount=%d reason=%q layer=%s refusal=%q",
			p.AgentID, p.Withdraw, p.Amount, p.TriggerReason, p.Layer, p.RefusalReason), nil
	case TypeCostAccrual:
		p := e.CostAccrual
		return fmt.Sprintf("CostAccrual agent=%s type=%s amount=%d", p.AgentID, p.Type, p.Amount), nil
	case TypeDeadlineMissed:
		p := e.DeadlineMissed
		return fmt.Sprintf("DeadlineMissed tx=%s %s->%s amount=%d penalty=%d", p.TxID, p.SenderID, p.ReceiverID, p.Amount, p.Penalty), nil
	case TypeEndOfDay:
		p := e.EndOfDay
		return fmt.Sprintf("EndOfDay day=%d unsettled=%d penalty_per_tx=%d total_penalty=%d", p.Day, p.UnsettledCount, p.PenaltyPerTx, p.TotalPenalty), nil
	case TypeTickAdvance:
		p := e.TickAdvance
		return fmt.Sprintf("TickAdvance from=%d/%d to=%d/%d", p.FromDay, p.FromTick, p.ToDay, p.ToTick), nil
	default:
		return "", fmt.Errorf("eventlog: unknown event type %q", e.Type)
	}
}

// renderNetPositions renders a net-position map in deterministic (sorted
// key) order — map iteration order is not itself part of any invariant,
// but the rendering must still be reproducible byte-for-byte.
func renderNetPositions(m map[domain.AgentID]int64) string {
	keys := make([]string, 0, len(m))
	byKey := make(map[string]domain.AgentID, len(m))
	for k := range m {
		keys = append(keys, string(k))
		byKey[string(k)] = k
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[byKey[k]]))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
