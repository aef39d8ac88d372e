package engine

import (
	"github.com/aptcasino/casino-engine/internal/amount"
)

// Ledger mutations. Player balances move only through these two
// functions so the conservation invariant holds by construction: value
// enters via Deposit and leaves via Withdraw (which also move the
// aggregate fund counter), while bets and payouts shuffle value between
// a player and the escrow without touching the aggregate.

// credit saturating-adds to a player balance and returns the new balance.
func (st *State) credit(player string, amt amount.Amount) amount.Amount {
	newBalance := st.Balances[player].Add(amt)
	st.Balances[player] = newBalance
	return newBalance
}

// debit subtracts from a player balance. A debit beyond the current
// balance is rejected with ErrInsufficientFunds and changes nothing.
func (st *State) debit(player string, amt amount.Amount) (amount.Amount, error) {
	newBalance, ok := st.Balances[player].Sub(amt)
	if !ok {
		return amount.Zero, ErrInsufficientFunds
	}
	st.Balances[player] = newBalance
	return newBalance, nil
}

// Balance returns a player's balance, zero when the player is unknown.
func (st *State) Balance(player string) amount.Amount {
	return st.Balances[player]
}

// The aggregate counter is uint64 while balances are 128-bit; the width
// mismatch is inherited from the data model and saturation keeps it from
// wrapping.
func satAdd64(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return ^uint64(0)
}

func satSub64(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
