// Package engine implements the bet lifecycle state machine: escrowed
// placement against a hash commitment, exactly-once settlement on
// reveal, and a conserving ledger of player balances.
package engine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aptcasino/casino-engine/internal/amount"
	"github.com/aptcasino/casino-engine/internal/commit"
	"github.com/aptcasino/casino-engine/internal/games"
	"github.com/aptcasino/casino-engine/internal/kvstore"
)

type Config struct {
	// FirstBetID seeds the monotonic bet id counter on first run.
	FirstBetID uint64
	// InitialFunds seeds the aggregate fund counter on first run, in attos.
	InitialFunds uint64
}

// Engine executes operations one at a time against the persisted state.
// Each operation loads the state, validates before mutating, and commits
// the whole mutation in one batch; a failure at any step leaves the
// store exactly as it was.
type Engine struct {
	mu    sync.Mutex
	store kvstore.KVStore
	cfg   Config
	sink  EventSink
	log   *slog.Logger
}

// New creates an engine over the given store. sink may be nil when no
// event emission is wanted.
func New(store kvstore.KVStore, cfg Config, sink EventSink) *Engine {
	if cfg.FirstBetID == 0 {
		cfg.FirstBetID = 1
	}
	return &Engine{
		store: store,
		cfg:   cfg,
		sink:  sink,
		log:   slog.Default(),
	}
}

// Execute runs a single operation for an authenticated caller. now is
// the host-supplied logical timestamp in microseconds.
func (e *Engine) Execute(caller string, now uint64, op Operation) (Response, error) {
	if caller == "" {
		return nil, fmt.Errorf("caller identity is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.loadState()
	if err != nil {
		return nil, err
	}

	var resp Response
	switch op := op.(type) {
	case Deposit:
		resp = e.applyDeposit(st, caller, op)
	case Withdraw:
		resp, err = e.applyWithdraw(st, caller, op)
	case PlaceBet:
		resp, err = e.applyPlaceBet(st, caller, now, op)
	case Reveal:
		resp, err = e.applyReveal(st, caller, op)
	default:
		return nil, fmt.Errorf("unsupported operation type %T", op)
	}
	if err != nil {
		return nil, err
	}

	if err := SaveState(e.store, st); err != nil {
		return nil, err
	}

	e.emit(caller, op, st, resp)
	return resp, nil
}

func (e *Engine) applyDeposit(st *State, caller string, op Deposit) Response {
	newBalance := st.credit(caller, op.Amount)
	st.TotalFunds = satAdd64(st.TotalFunds, op.Amount.Uint64Saturating())

	e.log.Info("deposit", "player", caller, "amount", op.Amount, "balance", newBalance)
	return DepositSuccess{NewBalance: newBalance}
}

func (e *Engine) applyWithdraw(st *State, caller string, op Withdraw) (Response, error) {
	newBalance, err := st.debit(caller, op.Amount)
	if err != nil {
		return nil, fmt.Errorf("withdraw %s: %w", op.Amount, err)
	}
	st.TotalFunds = satSub64(st.TotalFunds, op.Amount.Uint64Saturating())

	e.log.Info("withdraw", "player", caller, "amount", op.Amount, "balance", newBalance)
	return WithdrawSuccess{NewBalance: newBalance}, nil
}

func (e *Engine) applyPlaceBet(st *State, caller string, now uint64, op PlaceBet) (Response, error) {
	if _, err := games.ForType(op.Game); err != nil {
		return nil, err
	}

	// Escrow: the stake leaves the player's spendable balance now and
	// only comes back as payout at settlement.
	if _, err := st.debit(caller, op.Amount); err != nil {
		return nil, fmt.Errorf("place bet of %s: %w", op.Amount, err)
	}

	betID := st.NextBetID
	st.Pending[betID] = PendingBet{
		Owner:      caller,
		Game:       op.Game,
		Amount:     op.Amount,
		Commitment: op.Commitment,
		Params:     op.Params,
		PlacedAt:   now,
	}
	st.NextBetID = betID + 1

	e.log.Info("bet placed",
		"bet_id", betID, "player", caller, "game", op.Game, "amount", op.Amount)
	return GamePlaced{BetID: betID}, nil
}

func (e *Engine) applyReveal(st *State, caller string, op Reveal) (Response, error) {
	bet, ok := st.Pending[op.BetID]
	if !ok {
		return nil, fmt.Errorf("bet %d: %w", op.BetID, ErrNotFound)
	}
	if bet.Owner != caller {
		return nil, fmt.Errorf("bet %d: %w", op.BetID, ErrUnauthorized)
	}
	if !commit.Verify(op.Value[:], bet.Commitment) {
		return nil, fmt.Errorf("bet %d: %w", op.BetID, ErrInvalidReveal)
	}

	calc, err := games.ForType(bet.Game)
	if err != nil {
		return nil, err
	}
	result := calc.Calculate(op.Value, bet.Params)

	// multiplier is basis-hundredths; keep the intermediate wide so a
	// maximal bet at the top multiplier cannot overflow.
	payout := bet.Amount.MulDiv(uint64(result.Multiplier), 100)

	st.credit(caller, payout)
	st.History = append(st.History, GameOutcome{
		BetID:          op.BetID,
		GameType:       bet.Game.String(),
		BetAmount:      bet.Amount.String(),
		PayoutAmount:   payout.String(),
		OutcomeDetails: result.Details,
		Timestamp:      bet.PlacedAt,
	})
	delete(st.Pending, op.BetID)

	e.log.Info("bet settled",
		"bet_id", op.BetID, "player", caller, "game", bet.Game,
		"multiplier", result.Multiplier, "payout", payout)
	return GameCompleted{BetID: op.BetID, Outcome: result.Details, Payout: payout}, nil
}

// emit notifies the sink after the state has committed. Emission happens
// outside the atomic unit on purpose: a delivery failure must not undo a
// settled bet.
func (e *Engine) emit(caller string, op Operation, st *State, resp Response) {
	if e.sink == nil {
		return
	}
	switch op := op.(type) {
	case Deposit:
		e.sink.Deposited(caller, op.Amount, resp.(DepositSuccess).NewBalance)
	case Withdraw:
		e.sink.Withdrawn(caller, op.Amount, resp.(WithdrawSuccess).NewBalance)
	case PlaceBet:
		placed := resp.(GamePlaced)
		e.sink.BetPlaced(placed.BetID, st.Pending[placed.BetID])
	case Reveal:
		e.sink.BetSettled(st.History[len(st.History)-1])
	}
}

func (e *Engine) loadState() (*State, error) {
	st, found, err := LoadState(e.store)
	if err != nil {
		return nil, err
	}
	if !found {
		st = NewState(e.cfg.FirstBetID, e.cfg.InitialFunds)
	}
	return st, nil
}

// --- Read accessors. No mutation; they observe state between operations. ---

func (e *Engine) NextBetID() (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.loadState()
	if err != nil {
		return 0, err
	}
	return st.NextBetID, nil
}

func (e *Engine) TotalFunds() (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.loadState()
	if err != nil {
		return 0, err
	}
	return st.TotalFunds, nil
}

// Balance returns a player's balance; unknown players hold zero.
func (e *Engine) Balance(player string) (amount.Amount, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.loadState()
	if err != nil {
		return amount.Zero, err
	}
	return st.Balance(player), nil
}

// PendingBets returns the in-flight bets keyed by bet id.
func (e *Engine) PendingBets() (map[uint64]PendingBet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.loadState()
	if err != nil {
		return nil, err
	}
	return st.Pending, nil
}

// History returns all settled outcomes in insertion order.
func (e *Engine) History() ([]GameOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.loadState()
	if err != nil {
		return nil, err
	}
	return st.History, nil
}

// HistoryEntry returns the settled outcome for a bet id.
func (e *Engine) HistoryEntry(betID uint64) (GameOutcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.loadState()
	if err != nil {
		return GameOutcome{}, err
	}
	for _, outcome := range st.History {
		if outcome.BetID == betID {
			return outcome, nil
		}
	}
	return GameOutcome{}, fmt.Errorf("bet %d: %w", betID, ErrNotFound)
}
