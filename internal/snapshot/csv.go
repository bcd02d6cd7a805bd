// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVEmitter is the reference implementation of Emitter, writing a
// "client,available,held,total,locked" table. Row order is unspecified,
// so it simply writes snapshots in the order given.
type CSVEmitter struct {
	w io.Writer
}

// NewCSVEmitter wraps w.
func NewCSVEmitter(w io.Writer) *CSVEmitter {
	return &CSVEmitter{w: w}
}

// Emit writes the header followed by one row per snapshot, truncating every
// balance to numeric.Places on the way out so the printed figures always
// match the engine's internal precision.
func (e *CSVEmitter) Emit(snapshots []Snapshot) error {
	cw := csv.NewWriter(e.w)
	defer cw.Flush()

	if err := cw.Write([]string{"client", "available", "held", "total", "locked"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range snapshots {
		s = s.Truncated()
		row := []string{
			strconv.FormatUint(uint64(s.Client), 10),
			s.Available.String(),
			s.Held.String(),
			s.Total.String(),
			strconv.FormatBool(s.Locked),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row for client %d: %w", s.Client, err)
		}
	}
	return cw.Error()
}
