// Package arrivals generates stochastic and scheduled transaction
// arrivals at the start of a tick. Transaction ids are minted
// deterministically, never from a UUID or other non-reproducible source.
package arrivals

import (
	"fmt"

	"rtgssim/internal/domain"
	"rtgssim/internal/engine/eventlog"
	"rtgssim/internal/engine/ledger"
	"rtgssim/internal/engine/rng"
)

// Distribution tags which amount distribution an ArrivalConfig samples
// from.
type Distribution string

const (
	DistUniform     Distribution = "uniform"
	DistNormal      Distribution = "normal"
	DistLogNormal   Distribution = "log_normal"
	DistExponential Distribution = "exponential"
)

// Config is one agent's arrival_config.
type Config struct {
	RatePerTick         float64
	AmountDistribution  Distribution
	AmountParam1        float64 // Uniform: min: Normal/LogNormal: mu; Exponential: rate
	AmountParam2        float64 // Uniform: max; Normal/LogNormal: sigma; unused for Exponential
	CounterpartyWeights map[domain.AgentID]float64
	DeadlineMin         int64
	DeadlineMax         int64
	Priority            int
	Divisible           bool
}

// ScheduledEvent is one entry of scenario_events: a one-time arrival
// supplied externally rather than sampled.
type ScheduledEvent struct {
	FromAgent domain.AgentID
	ToAgent   domain.AgentID
	Amount    int64
	Priority  int
	Deadline  int64
	Tick      int64 // absolute tick this event fires on
	Divisible bool
}

// Generator mints deterministic transaction ids and turns arrival
// configs into Arrival events each tick.
type Generator struct {
	configs   map[domain.AgentID]Config
	scheduled []ScheduledEvent
	sequence  int64
}

// NewGenerator builds a Generator from per-agent configs and the full
// list of scheduled scenario events (fired once, on arrival at their
// tick).
func NewGenerator(configs map[domain.AgentID]Config, scheduled []ScheduledEvent) *Generator {
	return &Generator{configs: configs, scheduled: scheduled}
}

// NextTxID mints a monotonically increasing, deterministic id from the
// absolute tick and a run-wide sequence counter. Exposed so that callers
// minting transactions outside of Run (splits, submit_transaction) draw
// from the same id space.
func (g *Generator) NextTxID(absoluteTick int64) domain.TxID {
	id := domain.TxID(fmt.Sprintf("tx-%d-%d", absoluteTick, g.sequence))
	g.sequence++
	return id
}

// Run samples stochastic arrivals for every agent in stable order, then
// interleaves scheduled events for this absolute tick, enqueuing each new
// transaction in the sender's Queue 1 and emitting an Arrival event.
func (g *Generator) Run(l *ledger.Ledger, log *eventlog.Log, r *rng.Rng, absoluteTick, tick, day int64) error {
	for _, agentID := range l.AgentOrder() {
		cfg, ok := g.configs[agentID]
		if !ok || cfg.RatePerTick <= 0 {
			continue
		}
		count := r.Poisson(cfg.RatePerTick)
		for i := uint32(0); i < count; i++ {
			if err := g.emitStochastic(l, log, r, cfg, agentID, absoluteTick, tick, day); err != nil {
				return err
			}
		}
	}
	for _, evt := range g.scheduled {
		if evt.Tick != absoluteTick {
			continue
		}
		if err := g.emitScheduled(l, log, evt, absoluteTick, tick, day); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) emitStochastic(l *ledger.Ledger, log *eventlog.Log, r *rng.Rng, cfg Config, senderID domain.AgentID, absoluteTick, tick, day int64) error {
	amount := sampleAmount(r, cfg)
	if amount < 1 {
		amount = 1
	}
	receiverID, ok := chooseReceiver(r, l, senderID, cfg.CounterpartyWeights)
	if !ok {
		return nil
	}
	deadlineOffset := r.UniformInt(cfg.DeadlineMin, cfg.DeadlineMax)
	txID := g.NextTxID(absoluteTick)

	tx := &domain.Transaction{
		ID:              txID,
		SenderID:        senderID,
		ReceiverID:      receiverID,
		OriginalAmount:  amount,
		RemainingAmount: amount,
		ArrivalTick:     absoluteTick,
		DeadlineTick:    absoluteTick + deadlineOffset,
		Priority:        cfg.Priority,
		Divisible:       cfg.Divisible,
		Status:          domain.StatusPending,
	}
	if err := l.AddTransaction(tx); err != nil {
		return err
	}
	l.EnqueueOutgoing(senderID, txID)

	log.Append(eventlog.Event{
		Tick: absoluteTick,
		Day:  day,
		Type: eventlog.TypeArrival,
		Arrival: &eventlog.ArrivalPayload{
			TxID:         txID,
			SenderID:     senderID,
			ReceiverID:   receiverID,
			Amount:       amount,
			ArrivalTick:  absoluteTick,
			DeadlineTick: tx.DeadlineTick,
			Priority:     cfg.Priority,
			Divisible:    cfg.Divisible,
		},
	})
	return nil
}

func (g *Generator) emitScheduled(l *ledger.Ledger, log *eventlog.Log, evt ScheduledEvent, absoluteTick, tick, day int64) error {
	txID := g.NextTxID(absoluteTick)
	tx := &domain.Transaction{
		ID:              txID,
		SenderID:        evt.FromAgent,
		ReceiverID:      evt.ToAgent,
		OriginalAmount:  evt.Amount,
		RemainingAmount: evt.Amount,
		ArrivalTick:     absoluteTick,
		DeadlineTick:    evt.Deadline,
		Priority:        evt.Priority,
		Divisible:       evt.Divisible,
		Status:          domain.StatusPending,
	}
	if err := l.AddTransaction(tx); err != nil {
		return err
	}
	l.EnqueueOutgoing(evt.FromAgent, txID)

	log.Append(eventlog.Event{
		Tick: absoluteTick,
		Day:  day,
		Type: eventlog.TypeArrival,
		Arrival: &eventlog.ArrivalPayload{
			TxID:         txID,
			SenderID:     evt.FromAgent,
			ReceiverID:   evt.ToAgent,
			Amount:       evt.Amount,
			ArrivalTick:  absoluteTick,
			DeadlineTick: evt.Deadline,
			Priority:     evt.Priority,
			Divisible:    evt.Divisible,
		},
	})
	return nil
}

func sampleAmount(r *rng.Rng, cfg Config) int64 {
	switch cfg.AmountDistribution {
	case DistUniform:
		return r.UniformInt(int64(cfg.AmountParam1), int64(cfg.AmountParam2))
	case DistLogNormal:
		return int64(r.LogNormal(cfg.AmountParam1, cfg.AmountParam2))
	case DistExponential:
		return int64(r.Exponential(cfg.AmountParam1))
	default:
		return int64(r.Normal(cfg.AmountParam1, cfg.AmountParam2))
	}
}

// chooseReceiver performs a normalized weighted choice over configured
// counterparties, excluding the sender itself.
func chooseReceiver(r *rng.Rng, l *ledger.Ledger, senderID domain.AgentID, weights map[domain.AgentID]float64) (domain.AgentID, bool) {
	order := l.AgentOrder()
	candidates := make([]domain.AgentID, 0, len(order))
	weightList := make([]float64, 0, len(order))
	for _, id := range order {
		if id == senderID {
			continue
		}
		w, ok := weights[id]
		if !ok || w <= 0 {
			continue
		}
		candidates = append(candidates, id)
		weightList = append(weightList, w)
	}
	if len(candidates) == 0 {
		return "", false
	}
	idx := r.WeightedChoice(weightList)
	return candidates[idx], true
}
