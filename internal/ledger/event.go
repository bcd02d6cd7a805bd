// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"fmt"

	"github.com/example/disputeengine/internal/numeric"
)

// Kind discriminates the five event variants the engine understands. Go has
// no native sum type, so Event carries an explicit Kind plus the union of
// variant-specific fields; every switch over Kind is written exhaustively.
type Kind uint8

const (
	KindDeposit Kind = iota
	KindWithdrawal
	KindDispute
	KindResolve
	KindChargeback
)

func (k Kind) String() string {
	switch k {
	case KindDeposit:
		return "deposit"
	case KindWithdrawal:
		return "withdrawal"
	case KindDispute:
		return "dispute"
	case KindResolve:
		return "resolve"
	case KindChargeback:
		return "chargeback"
	default:
		return "unknown"
	}
}

// ErrMalformedEvent is returned by NewEvent when a raw record carries an
// amount that doesn't belong on its kind (missing on a deposit/withdrawal,
// present on a referential event) or a negative deposit/withdrawal amount.
var ErrMalformedEvent = errors.New("malformed event")

// Event is the tagged variant the dispatcher and per-client state machine
// exchange. Client and Tx are always populated; Amount only for deposits and
// withdrawals.
type Event struct {
	Kind   Kind
	Client uint16
	Tx     uint32
	Amount numeric.Amount
}

// NewEvent validates and constructs an Event from already-parsed fields:
// deposit/withdrawal require a non-negative amount, while the three
// referential kinds (dispute/resolve/chargeback) identify a prior
// transaction by tx id alone and must not carry one.
func NewEvent(kind Kind, client uint16, tx uint32, amount *numeric.Amount) (Event, error) {
	switch kind {
	case KindDeposit, KindWithdrawal:
		if amount == nil {
			return Event{}, fmt.Errorf("%w: %s tx=%d requires an amount", ErrMalformedEvent, kind, tx)
		}
		if amount.IsNegative() {
			return Event{}, fmt.Errorf("%w: %s tx=%d has negative amount", ErrMalformedEvent, kind, tx)
		}
		return Event{Kind: kind, Client: client, Tx: tx, Amount: amount.Truncate()}, nil
	case KindDispute, KindResolve, KindChargeback:
		if amount != nil {
			return Event{}, fmt.Errorf("%w: %s tx=%d must not carry an amount", ErrMalformedEvent, kind, tx)
		}
		return Event{Kind: kind, Client: client, Tx: tx}, nil
	default:
		return Event{}, fmt.Errorf("%w: unknown kind %d", ErrMalformedEvent, kind)
	}
}
