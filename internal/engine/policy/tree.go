package policy

import (
	"encoding/json"
	"os"

	"rtgssim/internal/domain"
	"rtgssim/pkg/errors"
)

// Node is one node of a decision tree: either a leaf (Leaf set) or a
// binary split on a named field (Field/Op/Value, with IfTrue/IfFalse
// children). Param, when set, names an entry in the tree's param table and
// overrides Value at load time — letting FromJson ship one tree file and
// many callers tune its thresholds without editing it.
type Node struct {
	Field   string  `json:"field,omitempty"`
	Op      string  `json:"op,omitempty"`
	Value   float64 `json:"value,omitempty"`
	Param   string  `json:"param,omitempty"`
	IfTrue  *Node   `json:"if_true,omitempty"`
	IfFalse *Node   `json:"if_false,omitempty"`
	Leaf    *Leaf   `json:"leaf,omitempty"`
}

// Leaf is a terminal decision. Kind selects which decision type it
// produces; the unused fields for the other kind are ignored.
type Leaf struct {
	Kind             string `json:"kind"` // "payment" | "collateral"
	PaymentAction    string `json:"payment_action,omitempty"`
	NSplits          int    `json:"n_splits,omitempty"`
	CollateralAction string `json:"collateral_action,omitempty"`
	Amount           int64  `json:"amount,omitempty"`
	Reason           string `json:"reason,omitempty"`
}

// Tree holds up to three independent decision trees, one per evaluator
// hook. A tree missing a given root falls back to Hold for that hook.
type Tree struct {
	PaymentRoot             *Node `json:"payment_root,omitempty"`
	StrategicCollateralRoot *Node `json:"strategic_collateral_root,omitempty"`
	EndOfTickCollateralRoot *Node `json:"end_of_tick_collateral_root,omitempty"`
}

// TreePolicy evaluates payments and collateral moves by walking an
// already-parsed Tree. It is the one interpreter this package needs: no
// reflection, just a recursive field/op/value comparison against a small,
// fixed set of named fields.
type TreePolicy struct {
	tree Tree
}

// NewInline wraps an in-memory tree built by the caller.
func NewInline(tree Tree) *TreePolicy {
	return &TreePolicy{tree: tree}
}

// NewInlineJSON parses a tree from a literal JSON string, applying any
// param overrides by name before use.
func NewInlineJSON(jsonString string, overrides map[string]float64) (*TreePolicy, error) {
	var tree Tree
	if err := json.Unmarshal([]byte(jsonString), &tree); err != nil {
		return nil, errors.Wrap(err, "parsing inline decision tree")
	}
	applyOverrides(tree.PaymentRoot, overrides)
	applyOverrides(tree.StrategicCollateralRoot, overrides)
	applyOverrides(tree.EndOfTickCollateralRoot, overrides)
	return &TreePolicy{tree: tree}, nil
}

// NewFromJSON loads a tree from a file on disk, applying param overrides.
func NewFromJSON(path string, overrides map[string]float64) (*TreePolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading decision tree file")
	}
	return NewInlineJSON(string(raw), overrides)
}

func applyOverrides(n *Node, overrides map[string]float64) {
	if n == nil {
		return
	}
	if n.Param != "" {
		if v, ok := overrides[n.Param]; ok {
			n.Value = v
		}
	}
	applyOverrides(n.IfTrue, overrides)
	applyOverrides(n.IfFalse, overrides)
}

type evalContext struct {
	effectiveLiquidity float64
	balance            float64
	creditLimit        float64
	postedCollateral   float64
	collateralCapacity float64
	amount             float64
	remainingAmount    float64
	ticksToDeadline    float64
	tick               float64
	day                float64
}

func fieldValue(ctx evalContext, field string) (float64, bool) {
	switch field {
	case "effective_liquidity":
		return ctx.effectiveLiquidity, true
	case "balance":
		return ctx.balance, true
	case "credit_limit":
		return ctx.creditLimit, true
	case "posted_collateral":
		return ctx.postedCollateral, true
	case "collateral_capacity":
		return ctx.collateralCapacity, true
	case "amount":
		return ctx.amount, true
	case "remaining_amount":
		return ctx.remainingAmount, true
	case "ticks_to_deadline":
		return ctx.ticksToDeadline, true
	case "tick":
		return ctx.tick, true
	case "day":
		return ctx.day, true
	default:
		return 0, false
	}
}

func compare(op string, lhs, rhs float64) bool {
	switch op {
	case "lt":
		return lhs < rhs
	case "lte":
		return lhs <= rhs
	case "gt":
		return lhs > rhs
	case "gte":
		return lhs >= rhs
	case "eq":
		return lhs == rhs
	default:
		return false
	}
}

func walk(n *Node, ctx evalContext) *Leaf {
	for n != nil {
		if n.Leaf != nil {
			return n.Leaf
		}
		lhs, ok := fieldValue(ctx, n.Field)
		if !ok {
			return nil
		}
		if compare(n.Op, lhs, n.Value) {
			n = n.IfTrue
		} else {
			n = n.IfFalse
		}
	}
	return nil
}

func (p *TreePolicy) EvaluatePayment(agent domain.Agent, tx domain.Transaction, _ LedgerView, tick int64) PaymentDecision {
	ctx := evalContext{
		effectiveLiquidity: float64(agent.EffectiveLiquidity()),
		balance:            float64(agent.CurrentBalance),
		creditLimit:        float64(agent.CreditLimit),
		postedCollateral:   float64(agent.PostedCollateral),
		collateralCapacity: float64(agent.CollateralCapacity()),
		amount:             float64(tx.OriginalAmount),
		remainingAmount:    float64(tx.RemainingAmount),
		ticksToDeadline:    float64(tx.DeadlineTick - tick),
		tick:               float64(tick),
	}
	leaf := walk(p.tree.PaymentRoot, ctx)
	if leaf == nil || leaf.Kind != "payment" {
		return PaymentDecision{Action: ActionHold, Reason: "no matching leaf"}
	}
	return PaymentDecision{
		Action:  PaymentAction(leaf.PaymentAction),
		NSplits: leaf.NSplits,
		Reason:  leaf.Reason,
	}
}

func (p *TreePolicy) evaluateCollateral(root *Node, agent domain.Agent, tick int64) CollateralDecision {
	ctx := evalContext{
		effectiveLiquidity: float64(agent.EffectiveLiquidity()),
		balance:            float64(agent.CurrentBalance),
		creditLimit:        float64(agent.CreditLimit),
		postedCollateral:   float64(agent.PostedCollateral),
		collateralCapacity: float64(agent.CollateralCapacity()),
		tick:               float64(tick),
	}
	leaf := walk(root, ctx)
	if leaf == nil || leaf.Kind != "collateral" {
		return CollateralDecision{Action: CollateralHold}
	}
	return CollateralDecision{
		Action: CollateralAction(leaf.CollateralAction),
		Amount: leaf.Amount,
		Reason: leaf.Reason,
	}
}

func (p *TreePolicy) EvaluateStrategicCollateral(agent domain.Agent, _ LedgerView, tick int64) CollateralDecision {
	return p.evaluateCollateral(p.tree.StrategicCollateralRoot, agent, tick)
}

func (p *TreePolicy) EvaluateEndOfTickCollateral(agent domain.Agent, _ LedgerView, tick int64) CollateralDecision {
	return p.evaluateCollateral(p.tree.EndOfTickCollateralRoot, agent, tick)
}
