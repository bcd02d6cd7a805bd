// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package dispatch implements the fan-out dispatcher that shards an input
// event stream by client id and drives one worker goroutine per client,
// preserving per-client event order while allowing cross-client
// concurrency.
//
// Grounded on original_source/src/processor.rs (Processor::process_transactions
// / join_clients), translated from tokio mpsc channels + JoinHandles to Go
// channels and goroutines: each worker reports its finished snapshot on a
// buffered done channel, and the dispatcher joins by reading one value off
// every worker's done channel, mirroring the shutdown pattern used in
// core/txpool/txpool.go (quit channel + drain-then-join) without needing a
// sync.WaitGroup, since the done channels already block until every worker
// has reported in.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/luxfi/log"

	"github.com/example/disputeengine/internal/ledger"
	"github.com/example/disputeengine/internal/metrics"
	"github.com/example/disputeengine/internal/snapshot"
)

// queueCapacity is the bounded per-client channel size: large enough to
// absorb bursts, small enough that a stalled worker applies real
// backpressure to the dispatcher.
const queueCapacity = 10

// ErrDispatch wraps fatal dispatcher-level errors. Every worker keeps
// draining its queue until the queue is closed, so an enqueue never fails
// for a dead worker; the only error wrapped here is cancellation of the
// supplied context.
var ErrDispatch = errors.New("dispatch")

// Dispatcher shards an event stream by client id across per-client worker
// goroutines.
type Dispatcher struct {
	log     log.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex // guards workers; dispatcher goroutine is the only mutator, held for clarity and to allow future concurrent submit callers
	workers map[uint16]*worker
}

type worker struct {
	queue chan ledger.Event
	done  chan snapshot.Snapshot
}

// New constructs a Dispatcher. logger and m may be zero-value-safe
// collaborators; m may be nil to skip metrics collection.
func New(logger log.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		log:     logger,
		metrics: m,
		workers: make(map[uint16]*worker),
	}
}

// Run drains events from the given channel until it closes (or ctx is
// canceled), routing each to its client's worker, then awaits every worker
// and returns the collected snapshots in unspecified order.
//
// On context cancellation, Run stops admitting new events and returns
// ctx.Err() wrapped in ErrDispatch without waiting further; already-spawned
// workers still drain their closed channels so no goroutine leaks, but their
// snapshots are discarded since the run never reached a clean end-of-stream.
func (d *Dispatcher) Run(ctx context.Context, events <-chan ledger.Event) ([]snapshot.Snapshot, error) {
	for {
		select {
		case <-ctx.Done():
			d.closeAll()
			return nil, fmt.Errorf("%w: %w", ErrDispatch, ctx.Err())
		case ev, ok := <-events:
			if !ok {
				d.closeAll()
				return d.collect(), nil
			}
			if err := d.submit(ctx, ev); err != nil {
				d.closeAll()
				return nil, err
			}
		}
	}
}

// submit routes a single event to its client's worker, spawning the worker
// on first sight of that client id. A client gets exactly one worker for
// the lifetime of the run; later events for the same client reuse it.
func (d *Dispatcher) submit(ctx context.Context, ev ledger.Event) error {
	w := d.workerFor(ev.Client)
	select {
	case w.queue <- ev:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrDispatch, ctx.Err())
	}
}

func (d *Dispatcher) workerFor(client uint16) *worker {
	d.mu.Lock()
	defer d.mu.Unlock()

	if w, ok := d.workers[client]; ok {
		return w
	}

	w := &worker{
		queue: make(chan ledger.Event, queueCapacity),
		done:  make(chan snapshot.Snapshot, 1),
	}
	d.workers[client] = w
	if d.metrics != nil {
		d.metrics.ActiveWorkers.Inc()
	}

	account := ledger.NewAccount(client, d.log, d.metrics)
	go func() {
		defer func() {
			if d.metrics != nil {
				d.metrics.ActiveWorkers.Dec()
			}
		}()
		for ev := range w.queue {
			account.Apply(ev)
			if account.Locked() {
				// Arrival guard: stop observing further events for this
				// client once locked. Draining continues below so the
				// channel still closes cleanly, but no more events are
				// applied.
				for range w.queue {
				}
				break
			}
		}
		w.done <- account.Finalize()
	}()

	return w
}

// closeAll signals end-of-sequence to every worker by closing its queue;
// each worker drains whatever is still buffered before reporting its
// finished snapshot.
func (d *Dispatcher) closeAll() {
	d.mu.Lock()
	workers := make([]*worker, 0, len(d.workers))
	for _, w := range d.workers {
		workers = append(workers, w)
	}
	d.mu.Unlock()

	for _, w := range workers {
		close(w.queue)
	}
}

// collect awaits every worker's finalize and returns the snapshots,
// unordered: clients finish in whatever order their workers drain.
func (d *Dispatcher) collect() []snapshot.Snapshot {
	d.mu.Lock()
	workers := make([]*worker, 0, len(d.workers))
	for _, w := range d.workers {
		workers = append(workers, w)
	}
	d.mu.Unlock()

	snapshots := make([]snapshot.Snapshot, 0, len(workers))
	for _, w := range workers {
		snapshots = append(snapshots, <-w.done)
	}
	return snapshots
}
