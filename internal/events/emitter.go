// Package events publishes settlement events to NATS so downstream
// consumers (payout dashboards, audit trails) can follow the engine
// without polling its state.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/aptcasino/casino-engine/internal/amount"
	"github.com/aptcasino/casino-engine/internal/engine"
	"github.com/aptcasino/casino-engine/internal/retry"
)

const (
	TypeDeposited  = "deposited"
	TypeWithdrawn  = "withdrawn"
	TypeBetPlaced  = "bet_placed"
	TypeBetSettled = "bet_settled"
)

type CasinoEvent struct {
	Type      string `json:"type"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// Emitter implements engine.EventSink over a NATS connection. Publish
// failures are retried a few times and then logged; by the time an
// event is emitted the operation has already committed, so delivery is
// best-effort by design.
type Emitter struct {
	conn          *nats.Conn
	subjectPrefix string
	log           *slog.Logger
}

func NewEmitter(natsURL, subjectPrefix string) (*Emitter, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &Emitter{
		conn:          conn,
		subjectPrefix: subjectPrefix,
		log:           slog.Default(),
	}, nil
}

func (e *Emitter) Deposited(player string, amt, newBalance amount.Amount) {
	e.publish(CasinoEvent{
		Type: TypeDeposited,
		Data: map[string]any{
			"player":  player,
			"amount":  amt.String(),
			"balance": newBalance.String(),
		},
		Timestamp: time.Now().UTC().Unix(),
	})
}

func (e *Emitter) Withdrawn(player string, amt, newBalance amount.Amount) {
	e.publish(CasinoEvent{
		Type: TypeWithdrawn,
		Data: map[string]any{
			"player":  player,
			"amount":  amt.String(),
			"balance": newBalance.String(),
		},
		Timestamp: time.Now().UTC().Unix(),
	})
}

func (e *Emitter) BetPlaced(betID uint64, bet engine.PendingBet) {
	e.publish(CasinoEvent{
		Type: TypeBetPlaced,
		Data: map[string]any{
			"bet_id": betID,
			"owner":  bet.Owner,
			"game":   bet.Game.String(),
			"amount": bet.Amount.String(),
		},
		Timestamp: time.Now().UTC().Unix(),
	})
}

func (e *Emitter) BetSettled(outcome engine.GameOutcome) {
	e.publish(CasinoEvent{
		Type:      TypeBetSettled,
		Data:      outcome,
		Timestamp: time.Now().UTC().Unix(),
	})
}

func (e *Emitter) publish(event CasinoEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		e.log.Error("failed to marshal event", "type", event.Type, "err", err)
		return
	}

	subject := e.subjectPrefix + "." + event.Type
	err = retry.Constant(func() error {
		return e.conn.Publish(subject, data)
	}, retry.DefaultInterval, retry.DefaultAttempts)
	if err != nil {
		e.log.Error("failed to publish event", "subject", subject, "err", err)
	}
}

func (e *Emitter) Close() {
	if e.conn != nil {
		e.conn.Close()
	}
}
