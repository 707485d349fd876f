package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtgssim/internal/domain"
	"rtgssim/internal/engine/eventlog"
	"rtgssim/internal/engine/ledger"
)

func setup(t *testing.T, senderBalance, senderCredit int64) (*ledger.Ledger, *eventlog.Log) {
	t.Helper()
	l, err := ledger.New([]*domain.Agent{
		{ID: "bank-a", OpeningBalance: senderBalance, CreditLimit: senderCredit},
		{ID: "bank-b", OpeningBalance: 0},
	})
	require.NoError(t, err)
	return l, eventlog.New()
}

func TestTrySettleSettlesWhenLiquiditySufficient(t *testing.T) {
	l, log := setup(t, 1000, 0)
	require.NoError(t, l.AddTransaction(&domain.Transaction{ID: "t1", SenderID: "bank-a", ReceiverID: "bank-b", RemainingAmount: 400, Status: domain.StatusPending}))

	outcome, err := TrySettle(l, log, "t1", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSettled, outcome)
	assert.Equal(t, int64(600), l.GetAgent("bank-a").CurrentBalance)
	assert.Equal(t, int64(400), l.GetAgent("bank-b").CurrentBalance)
	assert.Equal(t, domain.StatusSettled, l.GetTransaction("t1").Status)
	require.Equal(t, 1, log.Len())
	assert.Equal(t, eventlog.TypeSettlement, log.All()[0].Type)
}

func TestTrySettleQueuesWhenLiquidityInsufficient(t *testing.T) {
	l, log := setup(t, 100, 0)
	require.NoError(t, l.AddTransaction(&domain.Transaction{ID: "t1", SenderID: "bank-a", ReceiverID: "bank-b", RemainingAmount: 400, Status: domain.StatusPending}))

	outcome, err := TrySettle(l, log, "t1", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeQueued, outcome)
	assert.Equal(t, int64(100), l.GetAgent("bank-a").CurrentBalance)
	assert.Equal(t, domain.StatusPending, l.GetTransaction("t1").Status)
	assert.Equal(t, 0, log.Len())
}

func TestTrySettleUsesCreditLineAsEffectiveLiquidity(t *testing.T) {
	l, log := setup(t, 100, 300)
	require.NoError(t, l.AddTransaction(&domain.Transaction{ID: "t1", SenderID: "bank-a", ReceiverID: "bank-b", RemainingAmount: 400, Status: domain.StatusPending}))

	outcome, err := TrySettle(l, log, "t1", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSettled, outcome)
	assert.Equal(t, int64(-300), l.GetAgent("bank-a").CurrentBalance)
}

func TestTrySettleRejectsAlreadySettled(t *testing.T) {
	l, log := setup(t, 1000, 0)
	require.NoError(t, l.AddTransaction(&domain.Transaction{ID: "t1", SenderID: "bank-a", ReceiverID: "bank-b", RemainingAmount: 100, Status: domain.StatusSettled}))

	_, err := TrySettle(l, log, "t1", 1, 0)
	assert.Error(t, err)
}

func TestTrySettlePropagatesIntoParentOnChildSettlement(t *testing.T) {
	l, log := setup(t, 1000, 0)
	require.NoError(t, l.AddTransaction(&domain.Transaction{
		ID: "parent", SenderID: "bank-a", ReceiverID: "bank-b",
		RemainingAmount: 400, Status: domain.StatusPartiallySettled,
	}))
	require.NoError(t, l.AddTransaction(&domain.Transaction{
		ID: "child", SenderID: "bank-a", ReceiverID: "bank-b",
		RemainingAmount: 400, Status: domain.StatusPending, ParentID: "parent",
	}))

	outcome, err := TrySettle(l, log, "child", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSettled, outcome)

	parent := l.GetTransaction("parent")
	assert.Equal(t, int64(0), parent.RemainingAmount)
	assert.Equal(t, domain.StatusSettled, parent.Status)
}

func TestProcessQueueRetriesInInsertionOrderAndRemovesSettled(t *testing.T) {
	l, log := setup(t, 500, 0)
	require.NoError(t, l.AddTransaction(&domain.Transaction{ID: "t1", SenderID: "bank-a", ReceiverID: "bank-b", RemainingAmount: 400, Status: domain.StatusPending}))
	require.NoError(t, l.AddTransaction(&domain.Transaction{ID: "t2", SenderID: "bank-a", ReceiverID: "bank-b", RemainingAmount: 400, Status: domain.StatusPending}))
	l.EnqueueRTGS("t1")
	l.EnqueueRTGS("t2")

	require.NoError(t, ProcessQueue(l, log, 1, 0))

	assert.Equal(t, domain.StatusSettled, l.GetTransaction("t1").Status)
	assert.Equal(t, domain.StatusPending, l.GetTransaction("t2").Status)
	assert.Equal(t, []domain.TxID{"t2"}, l.Queue2())
}

func TestForceSettleSkipsLiquidityCheck(t *testing.T) {
	l, _ := setup(t, 0, 0)
	require.NoError(t, l.AddTransaction(&domain.Transaction{ID: "t1", SenderID: "bank-a", ReceiverID: "bank-b", RemainingAmount: 5000, Status: domain.StatusPending}))

	require.NoError(t, ForceSettle(l, "t1", 1))
	assert.Equal(t, int64(-5000), l.GetAgent("bank-a").CurrentBalance)
	assert.Equal(t, domain.StatusSettled, l.GetTransaction("t1").Status)
}
