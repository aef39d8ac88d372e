package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aptcasino/casino-engine/internal/amount"
	"github.com/aptcasino/casino-engine/internal/commit"
	"github.com/aptcasino/casino-engine/internal/games"
	"github.com/aptcasino/casino-engine/internal/kvstore"
)

const (
	alice = "alice"
	bob   = "bob"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return New(kvstore.NewMemoryStore(), Config{FirstBetID: 1}, nil)
}

func attos(v uint64) amount.Amount {
	return amount.FromUint64(v)
}

// fixedSecret returns a reveal secret of 32 repeated bytes and its
// commitment, mirroring how a client would commit before betting.
func fixedSecret(b byte) ([32]byte, commit.Digest) {
	var secret [32]byte
	for i := range secret {
		secret[i] = b
	}
	return secret, commit.Commit(secret[:])
}

func TestDepositAndWithdraw(t *testing.T) {
	e := newTestEngine(t)

	resp, err := e.Execute(alice, 1, Deposit{Amount: attos(1000)})
	require.NoError(t, err)
	assert.Equal(t, DepositSuccess{NewBalance: attos(1000)}, resp)

	resp, err = e.Execute(alice, 2, Withdraw{Amount: attos(400)})
	require.NoError(t, err)
	assert.Equal(t, WithdrawSuccess{NewBalance: attos(600)}, resp)

	balance, err := e.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, attos(600), balance)

	funds, err := e.TotalFunds()
	require.NoError(t, err)
	assert.Equal(t, uint64(600), funds)
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Execute(alice, 1, Deposit{Amount: attos(100)})
	require.NoError(t, err)

	_, err = e.Execute(alice, 2, Withdraw{Amount: attos(101)})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// The failed withdrawal must leave everything untouched.
	balance, err := e.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, attos(100), balance)

	funds, err := e.TotalFunds()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), funds)
}

func TestUnknownPlayerBalanceIsZero(t *testing.T) {
	e := newTestEngine(t)

	balance, err := e.Balance("nobody")
	require.NoError(t, err)
	assert.Equal(t, amount.Zero, balance)
}

func TestPlaceBetEscrowsStake(t *testing.T) {
	e := newTestEngine(t)
	_, digest := fixedSecret(42)

	_, err := e.Execute(alice, 1, Deposit{Amount: attos(1000)})
	require.NoError(t, err)

	resp, err := e.Execute(alice, 2, PlaceBet{
		Game:       games.Roulette,
		Amount:     attos(300),
		Commitment: digest,
		Params:     "number:13",
	})
	require.NoError(t, err)
	placed := resp.(GamePlaced)
	assert.Equal(t, uint64(1), placed.BetID)

	// Stake moved out of the spendable balance immediately.
	balance, err := e.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, attos(700), balance)

	pending, err := e.PendingBets()
	require.NoError(t, err)
	require.Contains(t, pending, uint64(1))
	bet := pending[1]
	assert.Equal(t, alice, bet.Owner)
	assert.Equal(t, games.Roulette, bet.Game)
	assert.Equal(t, attos(300), bet.Amount)
	assert.Equal(t, digest, bet.Commitment)
	assert.Equal(t, "number:13", bet.Params)
	assert.Equal(t, uint64(2), bet.PlacedAt)

	nextID, err := e.NextBetID()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), nextID)
}

func TestPlaceBetInsufficientFunds(t *testing.T) {
	e := newTestEngine(t)
	_, digest := fixedSecret(1)

	_, err := e.Execute(alice, 1, Deposit{Amount: attos(100)})
	require.NoError(t, err)

	_, err = e.Execute(alice, 2, PlaceBet{
		Game:       games.Wheel,
		Amount:     attos(101),
		Commitment: digest,
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	// Balance, pending map and id counter all unchanged.
	balance, err := e.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, attos(100), balance)

	pending, err := e.PendingBets()
	require.NoError(t, err)
	assert.Empty(t, pending)

	nextID, err := e.NextBetID()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), nextID)
}

func TestRevealSettlesRouletteWin(t *testing.T) {
	e := newTestEngine(t)
	// Reveal [42;32] spins pocket 13 (pinned in the games tests); a
	// number bet on 13 pays 36x.
	secret, digest := fixedSecret(42)

	_, err := e.Execute(alice, 10, Deposit{Amount: attos(1000)})
	require.NoError(t, err)

	resp, err := e.Execute(alice, 20, PlaceBet{
		Game:       games.Roulette,
		Amount:     attos(100),
		Commitment: digest,
		Params:     "number:13",
	})
	require.NoError(t, err)
	betID := resp.(GamePlaced).BetID

	resp, err = e.Execute(alice, 30, Reveal{BetID: betID, Value: secret})
	require.NoError(t, err)
	completed := resp.(GameCompleted)
	assert.Equal(t, betID, completed.BetID)
	assert.Equal(t, attos(3600), completed.Payout)
	assert.Equal(t, "Roulette: 13, Bet: number:13", completed.Outcome)

	// 1000 - 100 stake + 3600 payout.
	balance, err := e.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, attos(4500), balance)

	// Pending bet consumed, history appended with the placement time.
	pending, err := e.PendingBets()
	require.NoError(t, err)
	assert.Empty(t, pending)

	outcome, err := e.HistoryEntry(betID)
	require.NoError(t, err)
	assert.Equal(t, "Roulette", outcome.GameType)
	assert.Equal(t, completed.Outcome, outcome.OutcomeDetails)
	assert.Equal(t, uint64(20), outcome.Timestamp)
	assert.Equal(t, attos(100).String(), outcome.BetAmount)
	assert.Equal(t, attos(3600).String(), outcome.PayoutAmount)
}

func TestRevealLosingBetPaysNothing(t *testing.T) {
	e := newTestEngine(t)
	secret, digest := fixedSecret(42)

	_, err := e.Execute(alice, 1, Deposit{Amount: attos(1000)})
	require.NoError(t, err)

	resp, err := e.Execute(alice, 2, PlaceBet{
		Game:       games.Roulette,
		Amount:     attos(100),
		Commitment: digest,
		Params:     "number:14", // pocket is 13
	})
	require.NoError(t, err)
	betID := resp.(GamePlaced).BetID

	resp, err = e.Execute(alice, 3, Reveal{BetID: betID, Value: secret})
	require.NoError(t, err)
	assert.Equal(t, amount.Zero, resp.(GameCompleted).Payout)

	balance, err := e.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, attos(900), balance)
}

func TestRevealUnknownBet(t *testing.T) {
	e := newTestEngine(t)
	secret, _ := fixedSecret(1)

	_, err := e.Execute(alice, 1, Reveal{BetID: 7, Value: secret})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRevealWrongOwner(t *testing.T) {
	e := newTestEngine(t)
	secret, digest := fixedSecret(5)

	_, err := e.Execute(alice, 1, Deposit{Amount: attos(500)})
	require.NoError(t, err)
	resp, err := e.Execute(alice, 2, PlaceBet{
		Game:       games.Wheel,
		Amount:     attos(100),
		Commitment: digest,
	})
	require.NoError(t, err)
	betID := resp.(GamePlaced).BetID

	_, err = e.Execute(bob, 3, Reveal{BetID: betID, Value: secret})
	require.ErrorIs(t, err, ErrUnauthorized)

	// The bet stays pending for its real owner.
	pending, err := e.PendingBets()
	require.NoError(t, err)
	assert.Contains(t, pending, betID)
}

func TestRevealInvalidValue(t *testing.T) {
	e := newTestEngine(t)
	_, digest := fixedSecret(5)
	wrongSecret, _ := fixedSecret(6)

	_, err := e.Execute(alice, 1, Deposit{Amount: attos(500)})
	require.NoError(t, err)
	resp, err := e.Execute(alice, 2, PlaceBet{
		Game:       games.Plinko,
		Amount:     attos(100),
		Commitment: digest,
		Params:     "10",
	})
	require.NoError(t, err)
	betID := resp.(GamePlaced).BetID

	_, err = e.Execute(alice, 3, Reveal{BetID: betID, Value: wrongSecret})
	require.ErrorIs(t, err, ErrInvalidReveal)

	// The failed reveal must not consume the bet or move any balance.
	pending, err := e.PendingBets()
	require.NoError(t, err)
	assert.Contains(t, pending, betID)

	balance, err := e.Balance(alice)
	require.NoError(t, err)
	assert.Equal(t, attos(400), balance)

	history, err := e.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSettledBetCannotBeRevealedTwice(t *testing.T) {
	e := newTestEngine(t)
	secret, digest := fixedSecret(200)

	_, err := e.Execute(alice, 1, Deposit{Amount: attos(500)})
	require.NoError(t, err)
	resp, err := e.Execute(alice, 2, PlaceBet{
		Game:       games.Wheel,
		Amount:     attos(100),
		Commitment: digest,
	})
	require.NoError(t, err)
	betID := resp.(GamePlaced).BetID

	_, err = e.Execute(alice, 3, Reveal{BetID: betID, Value: secret})
	require.NoError(t, err)

	_, err = e.Execute(alice, 4, Reveal{BetID: betID, Value: secret})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBetIDsMonotonic(t *testing.T) {
	e := newTestEngine(t)
	secret, digest := fixedSecret(9)

	_, err := e.Execute(alice, 1, Deposit{Amount: attos(1000)})
	require.NoError(t, err)

	var ids []uint64
	for i := 0; i < 3; i++ {
		resp, err := e.Execute(alice, uint64(i+2), PlaceBet{
			Game:       games.Wheel,
			Amount:     attos(10),
			Commitment: digest,
		})
		require.NoError(t, err)
		ids = append(ids, resp.(GamePlaced).BetID)
	}
	assert.Equal(t, []uint64{1, 2, 3}, ids)

	// Settling a bet does not recycle its id.
	_, err = e.Execute(alice, 10, Reveal{BetID: 2, Value: secret})
	require.NoError(t, err)

	resp, err := e.Execute(alice, 11, PlaceBet{
		Game:       games.Wheel,
		Amount:     attos(10),
		Commitment: digest,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), resp.(GamePlaced).BetID)
}

func TestValueConservation(t *testing.T) {
	e := newTestEngine(t)

	deposited := amount.Zero
	withdrawn := amount.Zero
	staked := amount.Zero
	paidOut := amount.Zero

	mustDeposit := func(player string, v uint64) {
		_, err := e.Execute(player, 1, Deposit{Amount: attos(v)})
		require.NoError(t, err)
		deposited = deposited.Add(attos(v))
	}
	mustWithdraw := func(player string, v uint64) {
		_, err := e.Execute(player, 1, Withdraw{Amount: attos(v)})
		require.NoError(t, err)
		withdrawn = withdrawn.Add(attos(v))
	}

	checkConservation := func() {
		t.Helper()
		total := amount.Zero
		for _, player := range []string{alice, bob} {
			b, err := e.Balance(player)
			require.NoError(t, err)
			total = total.Add(b)
		}

		// sum(balances) + escrow == deposits - withdrawals - stakes + payouts + escrow
		want := deposited
		var ok bool
		want, ok = want.Sub(withdrawn)
		require.True(t, ok)
		want, ok = want.Sub(staked)
		require.True(t, ok)
		want = want.Add(paidOut)
		assert.Equal(t, want, total, "balance sum must equal deposits - withdrawals - stakes + payouts")
	}

	mustDeposit(alice, 1000)
	mustDeposit(bob, 500)
	checkConservation()

	secret, digest := fixedSecret(42)
	resp, err := e.Execute(alice, 2, PlaceBet{
		Game:       games.Roulette,
		Amount:     attos(200),
		Commitment: digest,
		Params:     "number:13",
	})
	require.NoError(t, err)
	staked = staked.Add(attos(200))
	checkConservation()

	mustWithdraw(bob, 100)
	checkConservation()

	revealResp, err := e.Execute(alice, 3, Reveal{BetID: resp.(GamePlaced).BetID, Value: secret})
	require.NoError(t, err)
	paidOut = paidOut.Add(revealResp.(GameCompleted).Payout)
	checkConservation()
}

func TestEmptyCallerRejected(t *testing.T) {
	e := newTestEngine(t)
	_, err := e.Execute("", 1, Deposit{Amount: attos(1)})
	require.Error(t, err)
}

func TestInitialFundsSeededOnce(t *testing.T) {
	store := kvstore.NewMemoryStore()
	e := New(store, Config{FirstBetID: 100, InitialFunds: 5000}, nil)

	nextID, err := e.NextBetID()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), nextID)

	funds, err := e.TotalFunds()
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), funds)

	// After the first committed operation the seed is persisted; a new
	// engine with a different config must not re-seed.
	_, err = e.Execute(alice, 1, Deposit{Amount: attos(10)})
	require.NoError(t, err)

	e2 := New(store, Config{FirstBetID: 999, InitialFunds: 1}, nil)
	funds, err = e2.TotalFunds()
	require.NoError(t, err)
	assert.Equal(t, uint64(5010), funds)
}

type recordingSink struct {
	deposits    []string
	withdrawals []string
	placed      []uint64
	settled     []GameOutcome
}

func (r *recordingSink) Deposited(player string, _, _ amount.Amount) {
	r.deposits = append(r.deposits, player)
}

func (r *recordingSink) Withdrawn(player string, _, _ amount.Amount) {
	r.withdrawals = append(r.withdrawals, player)
}

func (r *recordingSink) BetPlaced(betID uint64, _ PendingBet) {
	r.placed = append(r.placed, betID)
}

func (r *recordingSink) BetSettled(outcome GameOutcome) {
	r.settled = append(r.settled, outcome)
}

func TestEventSinkNotifiedAfterCommit(t *testing.T) {
	sink := &recordingSink{}
	e := New(kvstore.NewMemoryStore(), Config{FirstBetID: 1}, sink)
	secret, digest := fixedSecret(77)

	_, err := e.Execute(alice, 1, Deposit{Amount: attos(100)})
	require.NoError(t, err)
	require.Equal(t, []string{alice}, sink.deposits)

	_, err = e.Execute(alice, 2, PlaceBet{
		Game:       games.Plinko,
		Amount:     attos(50),
		Commitment: digest,
		Params:     "10",
	})
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, sink.placed)

	_, err = e.Execute(alice, 3, Reveal{BetID: 1, Value: secret})
	require.NoError(t, err)
	require.Len(t, sink.settled, 1)
	assert.Equal(t, uint64(1), sink.settled[0].BetID)

	_, err = e.Execute(alice, 4, Withdraw{Amount: attos(10)})
	require.NoError(t, err)
	assert.Equal(t, []string{alice}, sink.withdrawals)

	// A failed operation must not notify.
	_, err = e.Execute(alice, 5, Reveal{BetID: 1, Value: secret})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, sink.settled, 1)

	_, err = e.Execute(alice, 6, Withdraw{Amount: attos(1_000_000)})
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Len(t, sink.withdrawals, 1)
}
