// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ingest converts raw CSV-shaped records into validated
// ledger.Events. Reader below is the reference CSV tokenizer the CLI wires
// up, grounded on original_source/src/reader.rs's row-at-a-time parsing.
package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/disputeengine/internal/ledger"
	"github.com/example/disputeengine/internal/numeric"
)

// ErrMalformedRecord is returned (and logged, not propagated) for any input
// row whose fields don't parse or whose amount doesn't belong on that kind.
var ErrMalformedRecord = errors.New("malformed record")

// Record is the row shape read from the CSV source, before validation:
// type, client, tx, amount (amount as its original text, since presence vs.
// absence matters and a parsed zero-value float can't distinguish the two).
type Record struct {
	Type   string
	Client string
	Tx     string
	Amount string // empty means "absent"
}

// ToEvent validates and converts a Record into a ledger.Event. Errors are
// always ErrMalformedRecord-wrapped so callers can log-and-continue
// uniformly instead of branching on error type.
func ToEvent(r Record) (ledger.Event, error) {
	kind, err := parseKind(r.Type)
	if err != nil {
		return ledger.Event{}, err
	}

	client, err := strconv.ParseUint(strings.TrimSpace(r.Client), 10, 16)
	if err != nil {
		return ledger.Event{}, fmt.Errorf("%w: bad client id %q: %v", ErrMalformedRecord, r.Client, err)
	}

	tx, err := strconv.ParseUint(strings.TrimSpace(r.Tx), 10, 32)
	if err != nil {
		return ledger.Event{}, fmt.Errorf("%w: bad tx id %q: %v", ErrMalformedRecord, r.Tx, err)
	}

	var amount *numeric.Amount
	trimmedAmount := strings.TrimSpace(r.Amount)
	switch kind {
	case ledger.KindDeposit, ledger.KindWithdrawal:
		if trimmedAmount == "" {
			return ledger.Event{}, fmt.Errorf("%w: %s tx=%d missing required amount", ErrMalformedRecord, kind, tx)
		}
		a, err := numeric.FromString(trimmedAmount)
		if err != nil {
			return ledger.Event{}, fmt.Errorf("%w: %s tx=%d: %v", ErrMalformedRecord, kind, tx, err)
		}
		amount = &a
	default:
		if trimmedAmount != "" {
			return ledger.Event{}, fmt.Errorf("%w: %s tx=%d must not carry an amount, got %q", ErrMalformedRecord, kind, tx, trimmedAmount)
		}
	}

	ev, err := ledger.NewEvent(kind, uint16(client), uint32(tx), amount)
	if err != nil {
		return ledger.Event{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return ev, nil
}

func parseKind(s string) (ledger.Kind, error) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "deposit":
		return ledger.KindDeposit, nil
	case "withdrawal":
		return ledger.KindWithdrawal, nil
	case "dispute":
		return ledger.KindDispute, nil
	case "resolve":
		return ledger.KindResolve, nil
	case "chargeback":
		return ledger.KindChargeback, nil
	default:
		return 0, fmt.Errorf("%w: unknown event type %q", ErrMalformedRecord, s)
	}
}

// Reader reads type,client,tx,amount rows from a CSV source, tolerating an
// optional header and surrounding whitespace. It is the reference file
// reader the CLI hands events to; swapping it out never touches
// internal/ledger or internal/dispatch.
type Reader struct {
	csv *csv.Reader
}

// NewReader wraps r. The header row is optional: ReadRecord skips it when
// present and needs no hint from the caller either way.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return &Reader{csv: cr}
}

// ReadRecord returns the next row, or io.EOF when the source is exhausted.
// Any row whose first field is "type" (the "type,client,tx,amount" header)
// is skipped transparently, wherever it appears. A row without exactly four
// fields is returned as an ErrMalformedRecord-wrapped error; the next call
// continues with the following row.
func (rd *Reader) ReadRecord() (Record, error) {
	for {
		fields, err := rd.csv.Read()
		if err != nil {
			return Record{}, err
		}
		if len(fields) != 4 {
			return Record{}, fmt.Errorf("%w: expected 4 fields, got %d", ErrMalformedRecord, len(fields))
		}
		if strings.EqualFold(strings.TrimSpace(fields[0]), "type") {
			continue // header row
		}
		return Record{
			Type:   fields[0],
			Client: fields[1],
			Tx:     fields[2],
			Amount: fields[3],
		}, nil
	}
}
