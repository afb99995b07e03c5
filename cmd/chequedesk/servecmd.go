// Copyright 2026 The chequedesk Authors
// This file is part of chequedesk.
//
// chequedesk is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// chequedesk is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with chequedesk. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chequedesk/chequedesk/ui"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/metrics/exp"
	"github.com/ethereum/go-ethereum/metrics/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var serveCommand = &cli.Command{
	Action: serve,
	Name:   "serve",
	Usage:  "Serve the cheque desk web interface (default)",
	Flags:  deskFlags,
	Description: `
Serves the issue and status pages together with the JSON API under /api.
The command runs until interrupted.`,
}

const shutdownTimeout = 5 * time.Second

func serve(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	sigctx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := openDesk(sigctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	// First load creates the session for the sender account
	if _, err := d.ctrl.Open(); err != nil {
		return err
	}
	servers := []*http.Server{{
		Addr:              cfg.HTTP.ListenAddr,
		Handler:           ui.NewServer(d.ctrl, d.contract.Address(), cfg.HTTP.CORSOrigins).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if ctx.Bool(metricsEnabledFlag.Name) {
		servers = append(servers, metricsServer(ctx.String(metricsAddrFlag.Name)))
	}

	group, gctx := errgroup.WithContext(sigctx)
	for _, srv := range servers {
		srv := srv
		group.Go(func() error {
			log.Info("Starting HTTP server", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	group.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down cheque desk")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn("HTTP server shutdown failed", "addr", srv.Addr, "err", err)
			}
		}
		return nil
	})
	return group.Wait()
}

// metricsServer enables metrics collection and creates the server exporting
// them.
func metricsServer(addr string) *http.Server {
	log.Info("Enabling metrics collection", "addr", addr)
	metrics.Enable()
	go metrics.CollectProcessMetrics(3 * time.Second)

	mux := http.NewServeMux()
	mux.Handle("/debug/metrics", exp.ExpHandler(metrics.DefaultRegistry))
	mux.Handle("/debug/metrics/prometheus", prometheus.Handler(metrics.DefaultRegistry))
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
}
