// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import "github.com/example/disputeengine/internal/numeric"

// record is the stored form of a processed deposit or withdrawal. The
// referential events (dispute/resolve/chargeback) never get a standalone
// record; they only mutate the record of the tx they reference.
type record struct {
	client   uint16
	tx       uint32
	amount   numeric.Amount
	kind     Kind // KindDeposit or KindWithdrawal
	disputed bool
	resolved bool
	failed   bool // withdrawal only: refused for insufficient funds, or reversed by cascade
}
