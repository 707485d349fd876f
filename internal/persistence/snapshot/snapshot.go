// Package snapshot caches point-in-time simulation state in Redis so a
// run can be inspected without replaying the full event log. A snapshot
// holds agent balances, collateral, costs and Queue 2; it does not hold
// RNG state, Queue 1 or transaction records, so a run cannot be resumed
// from one.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rtgssim/internal/domain"
)

// Store caches simulation snapshots, keyed by run id and absolute tick.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis at addr and returns a Store. Snapshots expire
// after ttl if never explicitly deleted.
func New(addr, password string, db int, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &Store{client: client, ttl: ttl}, nil
}

// AgentSnapshot is one agent's balance-sheet state at the moment a
// snapshot was taken.
type AgentSnapshot struct {
	ID               domain.AgentID
	CurrentBalance   int64
	PostedCollateral int64
	Costs            domain.AgentCosts
}

// Snapshot is the point-in-time state used to inspect a run without
// replaying every event.
type Snapshot struct {
	RunID        string
	AbsoluteTick int64
	Day          int64
	Agents       []AgentSnapshot
	Queue2       []domain.TxID
	EventCount   int64
}

func key(runID string, absoluteTick int64) string {
	return fmt.Sprintf("rtgssim:snapshot:%s:%d", runID, absoluteTick)
}

func latestKey(runID string) string {
	return fmt.Sprintf("rtgssim:snapshot:%s:latest", runID)
}

// Save persists snap, and updates the run's "latest" pointer to it.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	k := key(snap.RunID, snap.AbsoluteTick)
	if err := s.client.Set(ctx, k, data, s.ttl).Err(); err != nil {
		return err
	}
	return s.client.Set(ctx, latestKey(snap.RunID), k, s.ttl).Err()
}

// Load fetches the snapshot for runID at absoluteTick.
func (s *Store) Load(ctx context.Context, runID string, absoluteTick int64) (*Snapshot, error) {
	return s.get(ctx, key(runID, absoluteTick))
}

// LoadLatest fetches the most recently saved snapshot for runID.
func (s *Store) LoadLatest(ctx context.Context, runID string) (*Snapshot, error) {
	k, err := s.client.Get(ctx, latestKey(runID)).Result()
	if err != nil {
		return nil, err
	}
	return s.get(ctx, k)
}

func (s *Store) get(ctx context.Context, k string) (*Snapshot, error) {
	data, err := s.client.Get(ctx, k).Result()
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// DeleteRun removes every snapshot and pointer for runID. absoluteTicks
// lists every tick a snapshot was saved at; callers track this
// themselves since Redis SCAN ordering isn't guaranteed deterministic.
func (s *Store) DeleteRun(ctx context.Context, runID string, absoluteTicks []int64) error {
	keys := make([]string, 0, len(absoluteTicks)+1)
	for _, t := range absoluteTicks {
		keys = append(keys, key(runID, t))
	}
	keys = append(keys, latestKey(runID))
	return s.client.Del(ctx, keys...).Err()
}

// Close releases the underlying Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
