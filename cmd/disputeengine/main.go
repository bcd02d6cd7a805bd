// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// disputeengine reads an append-only stream of account events from a CSV
// file and writes each client's final balance snapshot to stdout. CLI
// wiring is grounded on cmd/evm-node/main.go's urfave/cli/v2 App pattern.
package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	log "github.com/luxfi/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/example/disputeengine/internal/dispatch"
	"github.com/example/disputeengine/internal/ingest"
	"github.com/example/disputeengine/internal/ledger"
	"github.com/example/disputeengine/internal/metrics"
	"github.com/example/disputeengine/internal/snapshot"
)

const clientIdentifier = "disputeengine"

var (
	logLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "log level: trace, debug, info, warn, error, crit",
		Value: "info",
	}
	metricsAddrFlag = &cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "if set, serve Prometheus metrics at this address (e.g. :9090) for the duration of the run",
	}
	dryRunFlag = &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "validate the input file and report accept/reject counts without running the dispatcher",
	}

	app = &cli.App{
		Name:      clientIdentifier,
		Usage:     "payment-dispute transaction engine",
		ArgsUsage: "<input.csv>",
		Version:   "1.0.0",
		Flags:     []cli.Flag{logLevelFlag, metricsAddrFlag, dryRunFlag},
		Action:    run,
	}
)

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("expected exactly one argument: the input CSV path", 1)
	}
	path := c.Args().Get(0)

	if _, err := log.ToLevel(c.String(logLevelFlag.Name)); err != nil {
		return cli.Exit(fmt.Sprintf("bad --log-level: %v", err), 1)
	}
	logger := log.New(c.String(logLevelFlag.Name))

	f, err := os.Open(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("open %s: %v", path, err), 1)
	}
	defer f.Close()

	if c.Bool(dryRunFlag.Name) {
		return dryRun(f, logger)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	if addr := c.String(metricsAddrFlag.Name); addr != "" {
		srv := serveMetrics(addr, reg, logger)
		defer srv.Close()
	}

	events := make(chan ledger.Event, 1)
	errc := make(chan error, 1)
	go func() {
		defer close(events)
		reader := ingest.NewReader(f)
		for {
			rec, err := reader.ReadRecord()
			if errors.Is(err, ingest.ErrMalformedRecord) {
				logger.Warn("dropping malformed record", "error", err)
				continue
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					errc <- fmt.Errorf("read input: %w", err)
				}
				return
			}
			ev, err := ingest.ToEvent(rec)
			if err != nil {
				logger.Warn("dropping malformed record", "error", err)
				continue
			}
			events <- ev
		}
	}()

	d := dispatch.New(logger, m)
	snapshots, err := d.Run(c.Context, events)
	select {
	case readErr := <-errc:
		return cli.Exit(readErr.Error(), 1)
	default:
	}
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	emitter := snapshot.NewCSVEmitter(os.Stdout)
	if err := emitter.Emit(snapshots); err != nil {
		return cli.Exit(fmt.Sprintf("emit snapshots: %v", err), 1)
	}
	return nil
}

// dryRun validates every record without running the dispatcher, useful for
// checking a CSV file before committing to a real run.
func dryRun(f *os.File, logger log.Logger) error {
	reader := ingest.NewReader(f)
	accepted, rejected := 0, 0
	for {
		rec, err := reader.ReadRecord()
		if errors.Is(err, ingest.ErrMalformedRecord) {
			rejected++
			logger.Warn("would reject record", "error", err)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return cli.Exit(fmt.Sprintf("read input: %v", err), 1)
		}
		if _, err := ingest.ToEvent(rec); err != nil {
			rejected++
			logger.Warn("would reject record", "error", err)
			continue
		}
		accepted++
	}
	fmt.Printf("dry-run: %d accepted, %d rejected\n", accepted, rejected)
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}
