package sqlsink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtgssim/internal/engine/eventlog"
)

func TestRenderMatchesEventlogRenderForASingleEvent(t *testing.T) {
	evt := eventlog.Event{
		Seq: 0, Tick: 3, Day: 0, Type: eventlog.TypeArrival,
		Arrival: &eventlog.ArrivalPayload{TxID: "t1", SenderID: "a", ReceiverID: "b", Amount: 100, DeadlineTick: 10, Priority: 1},
	}
	rendered, err := render(evt)
	require.NoError(t, err)
	assert.Contains(t, rendered, "Arrival tx=t1 a->b")
}

func TestGenesisHashIsSixtyFourZeroCharacters(t *testing.T) {
	assert.Len(t, genesisHash, 64)
	for _, r := range genesisHash {
		assert.Equal(t, '0', r)
	}
}
