// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ingest

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/example/disputeengine/internal/ledger"
)

func TestToEventDeposit(t *testing.T) {
	ev, err := ToEvent(Record{Type: "deposit", Client: "1", Tx: "1", Amount: "1.5"})
	require.NoError(t, err)
	require.Equal(t, ledger.KindDeposit, ev.Kind)
	require.Equal(t, uint16(1), ev.Client)
	require.Equal(t, uint32(1), ev.Tx)
	require.Equal(t, "1.5000", ev.Amount.String())
}

func TestToEventRejectsMissingAmountOnDeposit(t *testing.T) {
	_, err := ToEvent(Record{Type: "deposit", Client: "1", Tx: "1", Amount: ""})
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestToEventRejectsAmountOnDispute(t *testing.T) {
	_, err := ToEvent(Record{Type: "dispute", Client: "1", Tx: "1", Amount: "5"})
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestToEventRejectsNegativeAmount(t *testing.T) {
	_, err := ToEvent(Record{Type: "deposit", Client: "1", Tx: "1", Amount: "-5"})
	require.ErrorIs(t, err, ErrMalformedRecord)
}

func TestToEventDisputeHasNoAmount(t *testing.T) {
	ev, err := ToEvent(Record{Type: "dispute", Client: "1", Tx: "1", Amount: ""})
	require.NoError(t, err)
	require.Equal(t, ledger.KindDispute, ev.Kind)
}

func TestReaderSkipsHeaderAndTrimsWhitespace(t *testing.T) {
	src := "type, client, tx, amount\ndeposit,  1,  1,  1.0\nwithdrawal,1,2,0.5\n"
	r := NewReader(strings.NewReader(src))

	rec, err := r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, "deposit", rec.Type)
	require.Equal(t, "1", strings.TrimSpace(rec.Client))

	rec, err = r.ReadRecord()
	require.NoError(t, err)
	require.Equal(t, "withdrawal", rec.Type)

	_, err = r.ReadRecord()
	require.ErrorIs(t, err, io.EOF)
}
