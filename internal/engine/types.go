package engine

import (
	"errors"

	"github.com/aptcasino/casino-engine/internal/amount"
	"github.com/aptcasino/casino-engine/internal/commit"
	"github.com/aptcasino/casino-engine/internal/games"
)

// Failure taxonomy. Every error aborts its operation before any state
// is committed; the host decides whether to surface it to an end user.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("bet not found")
	ErrUnauthorized      = errors.New("caller does not own this bet")
	ErrInvalidReveal     = errors.New("reveal value does not match commitment")
)

// PendingBet is a committed bet awaiting its reveal. It is written once
// at placement and removed at settlement, never mutated in place.
type PendingBet struct {
	Owner      string        `json:"owner"`
	Game       games.Type    `json:"game"`
	Amount     amount.Amount `json:"amount"`
	Commitment commit.Digest `json:"commitment"`
	Params     string        `json:"params"`
	// PlacedAt is the host-supplied logical timestamp of placement,
	// in microseconds.
	PlacedAt uint64 `json:"placed_at"`
}

// GameOutcome is an immutable settled-game record. Amounts are stored
// in display form; history ordering is insertion order.
type GameOutcome struct {
	BetID          uint64 `json:"bet_id"`
	GameType       string `json:"game_type"`
	BetAmount      string `json:"bet_amount"`
	PayoutAmount   string `json:"payout_amount"`
	OutcomeDetails string `json:"outcome_details"`
	Timestamp      uint64 `json:"timestamp"`
}

// Operation is the closed set of state-mutating requests the host can
// dispatch. Each executes as a single atomic unit.
type Operation interface {
	isOperation()
}

type Deposit struct {
	Amount amount.Amount
}

type Withdraw struct {
	Amount amount.Amount
}

type PlaceBet struct {
	Game       games.Type
	Amount     amount.Amount
	Commitment commit.Digest
	Params     string
}

type Reveal struct {
	BetID uint64
	Value [32]byte
}

func (Deposit) isOperation()  {}
func (Withdraw) isOperation() {}
func (PlaceBet) isOperation() {}
func (Reveal) isOperation()   {}

// Response is the closed set of successful operation results.
type Response interface {
	isResponse()
}

type DepositSuccess struct {
	NewBalance amount.Amount
}

type WithdrawSuccess struct {
	NewBalance amount.Amount
}

type GamePlaced struct {
	BetID uint64
}

type GameCompleted struct {
	BetID   uint64
	Outcome string
	Payout  amount.Amount
}

func (DepositSuccess) isResponse()  {}
func (WithdrawSuccess) isResponse() {}
func (GamePlaced) isResponse()      {}
func (GameCompleted) isResponse()   {}

// EventSink receives notifications after an operation has committed.
// Implementations must not assume they can fail the operation; emission
// errors are the sink's own concern.
type EventSink interface {
	Deposited(player string, amt, newBalance amount.Amount)
	Withdrawn(player string, amt, newBalance amount.Amount)
	BetPlaced(betID uint64, bet PendingBet)
	BetSettled(outcome GameOutcome)
}
