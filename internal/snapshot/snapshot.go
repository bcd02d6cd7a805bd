// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package snapshot defines the contract between the engine and the output
// sink: the shape of a final per-client balance snapshot and the interface
// the sink implements to consume a batch of them.
package snapshot

import "github.com/example/disputeengine/internal/numeric"

// Snapshot is the terminal state of one client's account once its event
// sequence ends or the account locks.
type Snapshot struct {
	Client    uint16
	Available numeric.Amount
	Held      numeric.Amount
	Total     numeric.Amount
	Locked    bool
}

// Truncated returns a copy of the snapshot with every balance field
// re-truncated to numeric.Places. The emitter always truncates on the way
// out even though amounts are already truncated on the way in (by
// ledger.NewEvent), so the printed value is correct regardless of how a
// Snapshot was constructed.
func (s Snapshot) Truncated() Snapshot {
	s.Available = s.Available.Truncate()
	s.Held = s.Held.Truncate()
	s.Total = s.Total.Truncate()
	return s
}

// Emitter is implemented by the external sink (CSV writer, in the reference
// CLI) that renders a completed run's snapshots. Row order is unspecified:
// clients finish in whatever order their workers drain.
type Emitter interface {
	Emit(snapshots []Snapshot) error
}
