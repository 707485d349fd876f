package arrivals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtgssim/internal/domain"
	"rtgssim/internal/engine/eventlog"
	"rtgssim/internal/engine/ledger"
	"rtgssim/internal/engine/rng"
)

func newTwoBankLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.New([]*domain.Agent{
		{ID: "bank-a", OpeningBalance: 1000},
		{ID: "bank-b", OpeningBalance: 1000},
	})
	require.NoError(t, err)
	return l
}

func TestNextTxIDIsMonotonicAndDeterministic(t *testing.T) {
	g := NewGenerator(nil, nil)
	id1 := g.NextTxID(5)
	id2 := g.NextTxID(5)
	assert.NotEqual(t, id1, id2)

	g2 := NewGenerator(nil, nil)
	assert.Equal(t, id1, g2.NextTxID(5))
}

func TestRunEmitsScheduledEventAtItsTick(t *testing.T) {
	l := newTwoBankLedger(t)
	log := eventlog.New()
	r := rng.New(1)
	scheduled := []ScheduledEvent{
		{FromAgent: "bank-a", ToAgent: "bank-b", Amount: 250, Deadline: 10, Tick: 3},
	}
	g := NewGenerator(nil, scheduled)

	require.NoError(t, g.Run(l, log, r, 3, 3, 0))

	q1 := l.Queue1("bank-a")
	require.Len(t, q1, 1)
	tx := l.GetTransaction(q1[0])
	require.NotNil(t, tx)
	assert.Equal(t, int64(250), tx.OriginalAmount)
	assert.Equal(t, domain.AgentID("bank-b"), tx.ReceiverID)

	require.Equal(t, 1, log.Len())
	assert.Equal(t, eventlog.TypeArrival, log.All()[0].Type)
}

func TestScheduledEventDoesNotFireOnOtherTicks(t *testing.T) {
	l := newTwoBankLedger(t)
	log := eventlog.New()
	r := rng.New(1)
	scheduled := []ScheduledEvent{
		{FromAgent: "bank-a", ToAgent: "bank-b", Amount: 250, Deadline: 10, Tick: 3},
	}
	g := NewGenerator(nil, scheduled)

	require.NoError(t, g.Run(l, log, r, 4, 4, 0))

	assert.Empty(t, l.Queue1("bank-a"))
	assert.Equal(t, 0, log.Len())
}

func TestRunSkipsAgentsWithZeroRate(t *testing.T) {
	l := newTwoBankLedger(t)
	log := eventlog.New()
	r := rng.New(1)
	configs := map[domain.AgentID]Config{
		"bank-a": {RatePerTick: 0, AmountDistribution: DistUniform, AmountParam1: 10, AmountParam2: 20, CounterpartyWeights: map[domain.AgentID]float64{"bank-b": 1}},
	}
	g := NewGenerator(configs, nil)

	require.NoError(t, g.Run(l, log, r, 0, 0, 0))
	assert.Empty(t, l.Queue1("bank-a"))
}

func TestSameSeedProducesIdenticalArrivalStream(t *testing.T) {
	configs := map[domain.AgentID]Config{
		"bank-a": {
			RatePerTick: 3, AmountDistribution: DistUniform, AmountParam1: 10, AmountParam2: 100,
			CounterpartyWeights: map[domain.AgentID]float64{"bank-b": 1},
			DeadlineMin:         4, DeadlineMax: 8, Priority: 5,
		},
	}

	run := func() []eventlog.Event {
		l := newTwoBankLedger(t)
		log := eventlog.New()
		r := rng.New(42)
		g := NewGenerator(configs, nil)
		for tick := int64(0); tick < 5; tick++ {
			require.NoError(t, g.Run(l, log, r, tick, tick, 0))
		}
		return log.All()
	}

	a := run()
	b := run()
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Arrival, b[i].Arrival)
	}
}
