// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package dispatch

import (
	"context"
	"sort"
	"testing"
	"time"

	log "github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/example/disputeengine/internal/ledger"
	"github.com/example/disputeengine/internal/numeric"
)

func mustEvent(t *testing.T, kind ledger.Kind, client uint16, tx uint32, amount float64, hasAmount bool) ledger.Event {
	t.Helper()
	var amt *numeric.Amount
	if hasAmount {
		a := numeric.FromFloat(amount)
		amt = &a
	}
	ev, err := ledger.NewEvent(kind, client, tx, amt)
	require.NoError(t, err)
	return ev
}

func TestRunSingleClient(t *testing.T) {
	d := New(log.Root(), nil)

	events := make(chan ledger.Event, 4)
	events <- mustEvent(t, ledger.KindDeposit, 1, 1, 1000, true)
	events <- mustEvent(t, ledger.KindWithdrawal, 1, 2, 500, true)
	close(events)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snapshots, err := d.Run(ctx, events)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.Equal(t, uint16(1), snapshots[0].Client)
	require.Equal(t, "500.0000", snapshots[0].Available.String())
}

func TestRunMultipleClientsConcurrently(t *testing.T) {
	d := New(log.Root(), nil)

	events := make(chan ledger.Event, 4)
	events <- mustEvent(t, ledger.KindDeposit, 1, 1, 1000, true)
	events <- mustEvent(t, ledger.KindWithdrawal, 1, 2, 500, true)
	events <- mustEvent(t, ledger.KindDeposit, 2, 3, 500, true)
	close(events)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snapshots, err := d.Run(ctx, events)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	sort.Slice(snapshots, func(i, j int) bool { return snapshots[i].Client < snapshots[j].Client })
	require.Equal(t, "500.0000", snapshots[0].Available.String())
	require.Equal(t, "500.0000", snapshots[1].Available.String())
}

func TestRunHonorsContextCancellation(t *testing.T) {
	d := New(log.Root(), nil)

	events := make(chan ledger.Event)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Run(ctx, events)
	require.Error(t, err)
}
