package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rtgssim/internal/domain"
)

func TestLiquidityAwareReleasesWhenBufferPreserved(t *testing.T) {
	p := LiquidityAware{TargetBuffer: 100, UrgencyThreshold: 2}
	agent := domain.Agent{CurrentBalance: 500}
	tx := domain.Transaction{RemainingAmount: 300, DeadlineTick: 50}

	decision := p.EvaluatePayment(agent, tx, nil, 0)
	assert.Equal(t, ActionReleaseFull, decision.Action)
}

func TestLiquidityAwareHoldsWhenBufferWouldBreach(t *testing.T) {
	p := LiquidityAware{TargetBuffer: 100, UrgencyThreshold: 2}
	agent := domain.Agent{CurrentBalance: 350}
	tx := domain.Transaction{RemainingAmount: 300, DeadlineTick: 50}

	decision := p.EvaluatePayment(agent, tx, nil, 0)
	assert.Equal(t, ActionHold, decision.Action)
}

func TestLiquidityAwareReleasesWhenDeadlineUrgentDespiteBufferBreach(t *testing.T) {
	p := LiquidityAware{TargetBuffer: 1000, UrgencyThreshold: 5}
	agent := domain.Agent{CurrentBalance: 50}
	tx := domain.Transaction{RemainingAmount: 40, DeadlineTick: 3}

	decision := p.EvaluatePayment(agent, tx, nil, 0)
	assert.Equal(t, ActionReleaseFull, decision.Action)
	assert.Equal(t, "deadline urgent", decision.Reason)
}

func TestLiquidityAwareStrategicCollateralPostsShortfallBoundedByCapacity(t *testing.T) {
	p := LiquidityAware{TargetBuffer: 1000}
	agent := domain.Agent{CurrentBalance: 100, CreditLimit: 50} // capacity 500, effective liquidity 150

	decision := p.EvaluateStrategicCollateral(agent, nil, 0)
	assert.Equal(t, CollateralPost, decision.Action)
	assert.Equal(t, int64(500), decision.Amount) // shortfall 850 capped at capacity 500
}

func TestLiquidityAwareStrategicCollateralHoldsWhenBufferAlreadyMet(t *testing.T) {
	p := LiquidityAware{TargetBuffer: 100}
	agent := domain.Agent{CurrentBalance: 500}

	decision := p.EvaluateStrategicCollateral(agent, nil, 0)
	assert.Equal(t, CollateralHold, decision.Action)
}

func TestLiquidityAwareEndOfTickWithdrawsSurplusAboveBuffer(t *testing.T) {
	p := LiquidityAware{TargetBuffer: 100}
	agent := domain.Agent{CurrentBalance: 300, PostedCollateral: 150} // effective liquidity 450, surplus 350

	decision := p.EvaluateEndOfTickCollateral(agent, nil, 0)
	assert.Equal(t, CollateralWithdraw, decision.Action)
	assert.Equal(t, int64(150), decision.Amount) // surplus exceeds what's posted, capped at posted
}

func TestLiquidityAwareEndOfTickHoldsWhenNothingPosted(t *testing.T) {
	p := LiquidityAware{TargetBuffer: 100}
	agent := domain.Agent{CurrentBalance: 500}

	decision := p.EvaluateEndOfTickCollateral(agent, nil, 0)
	assert.Equal(t, CollateralHold, decision.Action)
}
