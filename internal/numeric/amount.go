// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package numeric provides the fixed-point decimal type used for every
// balance and transaction amount in the engine, along with the truncation
// rule applied at ingestion and at snapshot emission.
package numeric

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits the engine preserves. Amounts
// are truncated toward zero to this many places on ingestion and again on
// output, so a balance never silently accrues precision it can't display.
const Places = 4

// Amount is a fixed-point decimal value scaled to Places fractional digits.
// All balance arithmetic in internal/ledger goes through this type so that
// truncation is exact instead of subject to binary-float drift.
type Amount struct {
	d decimal.Decimal
}

// Zero is the additive identity.
var Zero = Amount{d: decimal.Zero}

// FromString parses a decimal literal (e.g. from a CSV cell) into an Amount,
// truncating to Places on the way in.
func FromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return New(d), nil
}

// New wraps a decimal.Decimal, truncating it to Places.
func New(d decimal.Decimal) Amount {
	return Amount{d: truncate(d, Places)}
}

// FromFloat constructs an Amount from a float64, truncating to Places. Used
// only at test boundaries and for values already known to be exact; prefer
// FromString for untrusted input.
func FromFloat(f float64) Amount {
	return New(decimal.NewFromFloat(f))
}

// truncate cuts x to places fractional digits toward zero, using
// shopspring/decimal's own Truncate; for the non-negative amounts the engine
// ingests this is the same as flooring x*10^places. Kept as a free
// function (rather than calling d.Truncate directly at every call site) so
// there's a single home for the rounding rule; shopspring/decimal's
// arbitrary-precision representation never overflows in practice, so this
// never needs a fallback for out-of-range input.
func truncate(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Truncate(places)
}

// Truncate re-truncates the amount to Places. Idempotent; exists so callers
// that have been accumulating via Add/Sub can re-normalize before emission,
// so the value going out the door always matches the precision it was
// ingested at.
func (a Amount) Truncate() Amount {
	return Amount{d: truncate(a.d, Places)}
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{d: a.d.Add(b.d)}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{d: a.d.Sub(b.d)}
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{d: a.d.Neg()}
}

// IsNegative reports whether a < 0.
func (a Amount) IsNegative() bool {
	return a.d.IsNegative()
}

// LessThan reports whether a < b.
func (a Amount) LessThan(b Amount) bool {
	return a.d.LessThan(b.d)
}

// Equal reports whether a == b.
func (a Amount) Equal(b Amount) bool {
	return a.d.Equal(b.d)
}

// String renders the amount with exactly Places fractional digits, padding
// with trailing zeros (e.g. "1.5000").
func (a Amount) String() string {
	return a.d.StringFixed(Places)
}

// Decimal exposes the underlying decimal.Decimal for formatters (the CSV
// sink collaborator) that want native decimal math rather than a string.
func (a Amount) Decimal() decimal.Decimal {
	return a.d
}
