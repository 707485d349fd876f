package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtgssim/internal/domain"
)

const samplePaymentTree = `{
	"payment_root": {
		"field": "remaining_amount",
		"op": "lte",
		"param": "threshold",
		"value": 0,
		"if_true": {"leaf": {"kind": "payment", "payment_action": "release_full", "reason": "affordable"}},
		"if_false": {"leaf": {"kind": "payment", "payment_action": "hold", "reason": "too large"}}
	}
}`

func TestTreePolicyParsesInlineJSONAndAppliesOverrides(t *testing.T) {
	tree, err := NewInlineJSON(samplePaymentTree, map[string]float64{"threshold": 500})
	require.NoError(t, err)

	agent := domain.Agent{}
	small := domain.Transaction{RemainingAmount: 400}
	large := domain.Transaction{RemainingAmount: 600}

	assert.Equal(t, ActionReleaseFull, tree.EvaluatePayment(agent, small, nil, 0).Action)
	assert.Equal(t, ActionHold, tree.EvaluatePayment(agent, large, nil, 0).Action)
}

func TestTreePolicyRejectsMalformedJSON(t *testing.T) {
	_, err := NewInlineJSON("{not valid json", nil)
	assert.Error(t, err)
}

func TestTreePolicyMissingRootHoldsForPayment(t *testing.T) {
	tree := NewInline(Tree{})
	decision := tree.EvaluatePayment(domain.Agent{}, domain.Transaction{RemainingAmount: 10}, nil, 0)
	assert.Equal(t, ActionHold, decision.Action)
}

func TestTreePolicyMissingRootHoldsForCollateral(t *testing.T) {
	tree := NewInline(Tree{})
	decision := tree.EvaluateStrategicCollateral(domain.Agent{}, nil, 0)
	assert.Equal(t, CollateralHold, decision.Action)
}

func TestTreePolicyWalksCollateralTreeOnBalanceField(t *testing.T) {
	tree := NewInline(Tree{
		StrategicCollateralRoot: &Node{
			Field: "balance", Op: "lt", Value: 0,
			IfTrue:  &Node{Leaf: &Leaf{Kind: "collateral", CollateralAction: "post", Amount: 100, Reason: "cover overdraft"}},
			IfFalse: &Node{Leaf: &Leaf{Kind: "collateral", CollateralAction: "hold"}},
		},
	})

	negative := domain.Agent{CurrentBalance: -50}
	decision := tree.EvaluateStrategicCollateral(negative, nil, 0)
	assert.Equal(t, CollateralPost, decision.Action)
	assert.Equal(t, int64(100), decision.Amount)

	positive := domain.Agent{CurrentBalance: 50}
	decision = tree.EvaluateStrategicCollateral(positive, nil, 0)
	assert.Equal(t, CollateralHold, decision.Action)
}

func TestTreePolicyUnknownFieldHoldsRatherThanPanics(t *testing.T) {
	tree := NewInline(Tree{
		PaymentRoot: &Node{
			Field:   "not_a_real_field",
			Op:      "lt",
			Value:   0,
			IfTrue:  &Node{Leaf: &Leaf{Kind: "payment", PaymentAction: "release_full"}},
			IfFalse: &Node{Leaf: &Leaf{Kind: "payment", PaymentAction: "hold"}},
		},
	})

	decision := tree.EvaluatePayment(domain.Agent{}, domain.Transaction{}, nil, 0)
	assert.Equal(t, ActionHold, decision.Action)
}
