package engine

import (
	"encoding/json"
	"fmt"

	"github.com/aptcasino/casino-engine/internal/amount"
	"github.com/aptcasino/casino-engine/internal/kvstore"
)

const (
	keyNextBetID  = "casino/next_bet_id"
	keyTotalFunds = "casino/total_funds"
	keyBalances   = "casino/balances"
	keyPending    = "casino/pending"
	historyPrefix = "casino/history/"
)

// State is the complete persisted engine state. Operations load it from
// the store, mutate the in-memory copy, and persist it back; a failed
// operation discards the copy so the store never sees partial mutations.
type State struct {
	NextBetID  uint64
	TotalFunds uint64
	Balances   map[string]amount.Amount
	Pending    map[uint64]PendingBet
	History    []GameOutcome

	// persistedHistory counts the history entries already in the store,
	// so saves only append the new tail.
	persistedHistory int
}

// NewState returns a fresh state seeded with the configured counters.
func NewState(firstBetID, initialFunds uint64) *State {
	return &State{
		NextBetID:  firstBetID,
		TotalFunds: initialFunds,
		Balances:   make(map[string]amount.Amount),
		Pending:    make(map[uint64]PendingBet),
	}
}

// LoadState reads the full engine state. found is false when the store
// has never been initialized.
func LoadState(store kvstore.KVStore) (st *State, found bool, err error) {
	st = NewState(0, 0)

	// The bet id counter doubles as the initialization marker.
	data, err := store.Get(keyNextBetID)
	if err == kvstore.ErrKeyNotFound {
		return st, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read next bet id: %w", err)
	}
	if err := json.Unmarshal(data, &st.NextBetID); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal next bet id: %w", err)
	}

	if data, err = store.Get(keyTotalFunds); err == nil {
		if err := json.Unmarshal(data, &st.TotalFunds); err != nil {
			return nil, false, fmt.Errorf("failed to unmarshal total funds: %w", err)
		}
	} else if err != kvstore.ErrKeyNotFound {
		return nil, false, fmt.Errorf("failed to read total funds: %w", err)
	}

	if data, err = store.Get(keyBalances); err == nil {
		if err := json.Unmarshal(data, &st.Balances); err != nil {
			return nil, false, fmt.Errorf("failed to unmarshal balances: %w", err)
		}
	} else if err != kvstore.ErrKeyNotFound {
		return nil, false, fmt.Errorf("failed to read balances: %w", err)
	}

	if data, err = store.Get(keyPending); err == nil {
		if err := json.Unmarshal(data, &st.Pending); err != nil {
			return nil, false, fmt.Errorf("failed to unmarshal pending bets: %w", err)
		}
	} else if err != kvstore.ErrKeyNotFound {
		return nil, false, fmt.Errorf("failed to read pending bets: %w", err)
	}

	// History entries live under sequential keys; a prefix scan returns
	// them in insertion order.
	pairs, err := store.List(historyPrefix)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list history: %w", err)
	}
	for _, pair := range pairs {
		var outcome GameOutcome
		if err := json.Unmarshal(pair.Value, &outcome); err != nil {
			return nil, false, fmt.Errorf("failed to unmarshal history entry %s: %w", pair.Key, err)
		}
		st.History = append(st.History, outcome)
	}
	st.persistedHistory = len(st.History)

	return st, true, nil
}

// SaveState persists the state in one atomic batch: counters, the
// balance and pending maps, and any newly appended history entries.
// Existing history keys are never rewritten.
func SaveState(store kvstore.KVStore, st *State) error {
	pairs := make([]*kvstore.KVPair, 0, 4+len(st.History)-st.persistedHistory)

	nextID, err := json.Marshal(st.NextBetID)
	if err != nil {
		return fmt.Errorf("failed to marshal next bet id: %w", err)
	}
	pairs = append(pairs, &kvstore.KVPair{Key: keyNextBetID, Value: nextID})

	totalFunds, err := json.Marshal(st.TotalFunds)
	if err != nil {
		return fmt.Errorf("failed to marshal total funds: %w", err)
	}
	pairs = append(pairs, &kvstore.KVPair{Key: keyTotalFunds, Value: totalFunds})

	balances, err := json.Marshal(st.Balances)
	if err != nil {
		return fmt.Errorf("failed to marshal balances: %w", err)
	}
	pairs = append(pairs, &kvstore.KVPair{Key: keyBalances, Value: balances})

	pending, err := json.Marshal(st.Pending)
	if err != nil {
		return fmt.Errorf("failed to marshal pending bets: %w", err)
	}
	pairs = append(pairs, &kvstore.KVPair{Key: keyPending, Value: pending})

	for i := st.persistedHistory; i < len(st.History); i++ {
		entry, err := json.Marshal(st.History[i])
		if err != nil {
			return fmt.Errorf("failed to marshal history entry %d: %w", i, err)
		}
		pairs = append(pairs, &kvstore.KVPair{
			Key:   fmt.Sprintf("%s%012d", historyPrefix, i),
			Value: entry,
		})
	}

	if err := store.SetBatch(pairs); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	st.persistedHistory = len(st.History)
	return nil
}
