package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtgssim/internal/domain"
)

func agents() []*domain.Agent {
	return []*domain.Agent{
		{ID: "bank-a", OpeningBalance: 1000, CreditLimit: 100},
		{ID: "bank-b", OpeningBalance: 500, CreditLimit: 50},
	}
}

func TestNewSetsOpeningBalanceAndOrder(t *testing.T) {
	l, err := New(agents())
	require.NoError(t, err)
	assert.Equal(t, []domain.AgentID{"bank-a", "bank-b"}, l.AgentOrder())
	assert.Equal(t, int64(1000), l.GetAgent("bank-a").CurrentBalance)
}

func TestNewRejectsDuplicateAgent(t *testing.T) {
	dup := append(agents(), &domain.Agent{ID: "bank-a", OpeningBalance: 0})
	_, err := New(dup)
	assert.Error(t, err)
}

func TestNewRejectsNegativeEffectiveBalance(t *testing.T) {
	_, err := New([]*domain.Agent{{ID: "bank-a", OpeningBalance: -1000, CreditLimit: 100}})
	assert.Error(t, err)
}

func TestAddTransactionRejectsUnknownAgents(t *testing.T) {
	l, _ := New(agents())
	err := l.AddTransaction(&domain.Transaction{ID: "t1", SenderID: "bank-a", ReceiverID: "ghost"})
	assert.Error(t, err)
}

func TestAddTransactionRejectsSameSenderReceiver(t *testing.T) {
	l, _ := New(agents())
	err := l.AddTransaction(&domain.Transaction{ID: "t1", SenderID: "bank-a", ReceiverID: "bank-a"})
	assert.Error(t, err)
}

func TestAddTransactionRejectsDuplicateID(t *testing.T) {
	l, _ := New(agents())
	tx := &domain.Transaction{ID: "t1", SenderID: "bank-a", ReceiverID: "bank-b"}
	require.NoError(t, l.AddTransaction(tx))
	err := l.AddTransaction(tx)
	assert.Error(t, err)
}

func TestQueue1FIFOOrderPreservedAcrossDequeue(t *testing.T) {
	l, _ := New(agents())
	l.EnqueueOutgoing("bank-a", "t1")
	l.EnqueueOutgoing("bank-a", "t2")
	l.EnqueueOutgoing("bank-a", "t3")
	l.DequeueOutgoing("bank-a", "t2")
	assert.Equal(t, []domain.TxID{"t1", "t3"}, l.Queue1("bank-a"))
}

func TestEnqueueOutgoingFrontPrependsInOrder(t *testing.T) {
	l, _ := New(agents())
	l.EnqueueOutgoing("bank-a", "t3")
	l.EnqueueOutgoingFront("bank-a", []domain.TxID{"t1", "t2"})
	assert.Equal(t, []domain.TxID{"t1", "t2", "t3"}, l.Queue1("bank-a"))
}

func TestQueue2InsertionOrderSurvivesRemoval(t *testing.T) {
	l, _ := New(agents())
	l.EnqueueRTGS("t1")
	l.EnqueueRTGS("t2")
	l.EnqueueRTGS("t3")
	l.RemoveFromRTGS("t2")
	assert.Equal(t, []domain.TxID{"t1", "t3"}, l.Queue2())
}

func TestCreditDirectModePostsImmediately(t *testing.T) {
	l, _ := New(agents())
	l.Credit("bank-a", 50)
	assert.Equal(t, int64(1050), l.GetAgent("bank-a").CurrentBalance)
}

func TestDeferredCreditingHoldsUntilMerge(t *testing.T) {
	l, _ := New(agents())
	l.SetDeferredCrediting(true)
	l.Credit("bank-a", 50)
	assert.Equal(t, int64(1000), l.GetAgent("bank-a").CurrentBalance)
	assert.Equal(t, int64(50), l.PendingCredit("bank-a"))

	l.MergePendingCredits()
	assert.Equal(t, int64(1050), l.GetAgent("bank-a").CurrentBalance)
	assert.Equal(t, int64(0), l.PendingCredit("bank-a"))
}

func TestSumInFlightIncludesPendingCreditsAndOpenTransactions(t *testing.T) {
	l, _ := New(agents())
	require.NoError(t, l.AddTransaction(&domain.Transaction{
		ID: "t1", SenderID: "bank-a", ReceiverID: "bank-b",
		RemainingAmount: 200, Status: domain.StatusPending,
	}))
	l.SetDeferredCrediting(true)
	l.Credit("bank-b", 30)

	assert.Equal(t, int64(230), l.SumInFlight())
}

func TestSumBalancesIsStableOrderIndependent(t *testing.T) {
	l, _ := New(agents())
	assert.Equal(t, int64(1500), l.SumBalances())
}
