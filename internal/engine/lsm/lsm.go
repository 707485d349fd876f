// Package lsm implements the liquidity-saving mechanism: bilateral
// offset and multilateral cycle detection over Queue 2. Every release is
// atomic — either every leg of a group settles or none do — and the
// scan order is always the ledger's stable agent order, never Go map
// iteration.
package lsm

import (
	"rtgssim/internal/domain"
	"rtgssim/internal/engine/eventlog"
	"rtgssim/internal/engine/ledger"
	"rtgssim/internal/engine/settlement"
)

// Config mirrors the lsm_config block of a simulation's configuration.
type Config struct {
	BilateralEnabled       bool
	CycleDetectionEnabled  bool
	MaxCycleLength         int // 3 or 4
	PriorityClassesEnabled bool
}

// Run executes the full LSM coordinator for one tick: bilateral, then
// 3-cycle, then 4-cycle passes, each segmented by priority class when
// enabled.
func Run(l *ledger.Ledger, log *eventlog.Log, cfg Config, tick, day int64) error {
	for _, class := range priorityClasses(l, cfg.PriorityClassesEnabled) {
		if cfg.BilateralEnabled {
			if err := runBilateralPass(l, log, class, tick, day); err != nil {
				return err
			}
		}
		if cfg.CycleDetectionEnabled {
			if err := runCyclePass(l, log, class, 3, tick, day); err != nil {
				return err
			}
			if cfg.MaxCycleLength >= 4 {
				if err := runCyclePass(l, log, class, 4, tick, day); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// priorityClasses returns the priority filters LSM must run, in order:
// every priority value present in Queue 2, highest first, or a single
// catch-all (nil filter) when priority segmentation is off. Mixed-class
// matching is never attempted — a candidate pair or cycle is only
// considered within one class's filtered view of Queue 2.
func priorityClasses(l *ledger.Ledger, enabled bool) []*int {
	if !enabled {
		return []*int{nil}
	}
	seen := make(map[int]bool)
	for _, txID := range l.Queue2() {
		tx := l.GetTransaction(txID)
		seen[tx.Priority] = true
	}
	vals := make([]int, 0, len(seen))
	for p := range seen {
		vals = append(vals, p)
	}
	for i := 0; i < len(vals); i++ {
		for j := i + 1; j < len(vals); j++ {
			if vals[j] > vals[i] {
				vals[i], vals[j] = vals[j], vals[i]
			}
		}
	}
	out := make([]*int, len(vals))
	for i := range vals {
		v := vals[i]
		out[i] = &v
	}
	return out
}

func matchesClass(tx *domain.Transaction, class *int) bool {
	return class == nil || tx.Priority == *class
}

// --- bilateral offset ---

func runBilateralPass(l *ledger.Ledger, log *eventlog.Log, class *int, tick, day int64) error {
	for {
		released, err := tryOneBilateralOffset(l, log, class, tick, day)
		if err != nil {
			return err
		}
		if !released {
			return nil
		}
	}
}

func bilateralGroups(l *ledger.Ledger, a, b domain.AgentID, class *int) (aToB, bToA []domain.TxID, sumAtoB, sumBtoA int64) {
	for _, txID := range l.Queue2() {
		tx := l.GetTransaction(txID)
		if !matchesClass(tx, class) {
			continue
		}
		switch {
		case tx.SenderID == a && tx.ReceiverID == b:
			aToB = append(aToB, txID)
			sumAtoB += tx.RemainingAmount
		case tx.SenderID == b && tx.ReceiverID == a:
			bToA = append(bToA, txID)
			sumBtoA += tx.RemainingAmount
		}
	}
	return
}

func tryOneBilateralOffset(l *ledger.Ledger, log *eventlog.Log, class *int, tick, day int64) (bool, error) {
	order := l.AgentOrder()
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			a, b := order[i], order[j]
			aToB, bToA, sumAtoB, sumBtoA := bilateralGroups(l, a, b, class)
			if len(aToB) == 0 || len(bToA) == 0 {
				continue
			}
			net := sumAtoB - sumBtoA
			funder, netAbs := a, net
			if net < 0 {
				funder, netAbs = b, -net
			}
			if l.GetAgent(funder).EffectiveLiquidity() < netAbs {
				continue
			}
			if err := applyBilateralRelease(l, log, a, b, aToB, bToA, sumAtoB, sumBtoA, netAbs, funder, tick, day); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func applyBilateralRelease(l *ledger.Ledger, log *eventlog.Log, a, b domain.AgentID, aToB, bToA []domain.TxID, sumAtoB, sumBtoA, netAbs int64, funder domain.AgentID, tick, day int64) error {
	for _, txID := range aToB {
		if err := settlement.ForceSettle(l, txID, tick); err != nil {
			return err
		}
		l.RemoveFromRTGS(txID)
	}
	for _, txID := range bToA {
		if err := settlement.ForceSettle(l, txID, tick); err != nil {
			return err
		}
		l.RemoveFromRTGS(txID)
	}
	log.Append(eventlog.Event{
		Tick: tick,
		Day:  day,
		Type: eventlog.TypeLsmBilateralOffset,
		LsmBilateralOffset: &eventlog.LsmBilateralOffsetPayload{
			AgentA:    a,
			AgentB:    b,
			GrossAtoB: sumAtoB,
			GrossBtoA: sumBtoA,
			NetAmount: netAbs,
			FundedBy:  funder,
			TxIDsAtoB: aToB,
			TxIDsBtoA: bToA,
		},
	})
	return nil
}

// --- multilateral cycle detection ---

func runCyclePass(l *ledger.Ledger, log *eventlog.Log, class *int, length int, tick, day int64) error {
	for {
		released, err := tryOneCycle(l, log, class, length, tick, day)
		if err != nil {
			return err
		}
		if !released {
			return nil
		}
	}
}

func tryOneCycle(l *ledger.Ledger, log *eventlog.Log, class *int, length int, tick, day int64) (bool, error) {
	var foundAgents []domain.AgentID
	var foundTxs []domain.TxID
	found := false

	enumerateCycles(l, class, length, func(agents []domain.AgentID, txs []domain.TxID) bool {
		if cycleFeasible(l, agents, txs) {
			foundAgents = agents
			foundTxs = txs
			found = true
			return true
		}
		return false
	})
	if !found {
		return false, nil
	}
	if err := applyCycleRelease(l, log, foundAgents, foundTxs, tick, day); err != nil {
		return false, err
	}
	return true, nil
}

// enumerateCycles walks simple directed cycles of exactly length edges
// in deterministic agent-order precedence, calling visit for each
// structural candidate until visit returns true.
func enumerateCycles(l *ledger.Ledger, class *int, length int, visit func(agents []domain.AgentID, txs []domain.TxID) bool) {
	order := l.AgentOrder()
	for _, start := range order {
		if dfsCycle(l, class, order, start, start, length, []domain.AgentID{start}, nil, visit) {
			return
		}
	}
}

// dfsCycle extends path/edges by one hop per call. remaining counts the
// hops still needed including the closing one: at remaining==1 the only
// legal next node is start itself, closing the cycle in place rather
// than appending start as a new path entry and recursing again.
func dfsCycle(l *ledger.Ledger, class *int, order []domain.AgentID, start, current domain.AgentID, remaining int, path []domain.AgentID, edges []domain.TxID, visit func([]domain.AgentID, []domain.TxID) bool) bool {
	for _, next := range order {
		if remaining == 1 {
			if next != start {
				continue
			}
		} else if next == start || containsAgent(path, next) {
			continue
		}

		txID, ok := firstEdge(l, class, current, next)
		if !ok {
			continue
		}

		if remaining == 1 {
			closedPath := append([]domain.AgentID{}, path...)
			closedEdges := append(append([]domain.TxID{}, edges...), txID)
			if visit(closedPath, closedEdges) {
				return true
			}
			continue
		}

		newPath := append(append([]domain.AgentID{}, path...), next)
		newEdges := append(append([]domain.TxID{}, edges...), txID)
		if dfsCycle(l, class, order, start, next, remaining-1, newPath, newEdges, visit) {
			return true
		}
	}
	return false
}

func containsAgent(path []domain.AgentID, id domain.AgentID) bool {
	for _, p := range path {
		if p == id {
			return true
		}
	}
	return false
}

// firstEdge returns the first (FIFO) transaction in Queue 2 directly from
// from to to matching class, if any.
func firstEdge(l *ledger.Ledger, class *int, from, to domain.AgentID) (domain.TxID, bool) {
	for _, txID := range l.Queue2() {
		tx := l.GetTransaction(txID)
		if !matchesClass(tx, class) {
			continue
		}
		if tx.SenderID == from && tx.ReceiverID == to {
			return txID, true
		}
	}
	return "", false
}

func cycleFeasible(l *ledger.Ledger, agents []domain.AgentID, txs []domain.TxID) bool {
	net := netPositions(l, txs)
	for _, agentID := range agents {
		if n := net[agentID]; n < 0 {
			if l.GetAgent(agentID).EffectiveLiquidity() < -n {
				return false
			}
		}
	}
	return true
}

func netPositions(l *ledger.Ledger, txs []domain.TxID) map[domain.AgentID]int64 {
	net := make(map[domain.AgentID]int64, len(txs))
	for _, txID := range txs {
		tx := l.GetTransaction(txID)
		net[tx.ReceiverID] += tx.RemainingAmount
		net[tx.SenderID] -= tx.RemainingAmount
	}
	return net
}

func applyCycleRelease(l *ledger.Ledger, log *eventlog.Log, agents []domain.AgentID, txs []domain.TxID, tick, day int64) error {
	net := netPositions(l, txs)
	edgeAmounts := make([]int64, len(txs))
	var total int64
	var maxOutflow int64
	var maxOutflowID domain.AgentID
	for i, txID := range txs {
		tx := l.GetTransaction(txID)
		edgeAmounts[i] = tx.RemainingAmount
		total += tx.RemainingAmount
		if err := settlement.ForceSettle(l, txID, tick); err != nil {
			return err
		}
		l.RemoveFromRTGS(txID)
	}
	for _, agentID := range agents {
		if n := net[agentID]; -n > maxOutflow {
			maxOutflow = -n
			maxOutflowID = agentID
		}
	}
	log.Append(eventlog.Event{
		Tick: tick,
		Day:  day,
		Type: eventlog.TypeLsmCycleSettlement,
		LsmCycleSettlement: &eventlog.LsmCycleSettlementPayload{
			Agents:          agents,
			TxIDs:           txs,
			EdgeAmounts:     edgeAmounts,
			TotalValue:      total,
			NetPositions:    net,
			MaxNetOutflow:   maxOutflow,
			MaxNetOutflowID: maxOutflowID,
		},
	})
	return nil
}
