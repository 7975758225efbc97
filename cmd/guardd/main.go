// Command guardd is the reference host for the protection modules. It drives
// the tick loops, installs the detectors and exposes diagnostics over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"pixelguard/internal/clock"
	"pixelguard/internal/platform/config"
	"pixelguard/internal/platform/httpserver"
	"pixelguard/internal/platform/logger"
	"pixelguard/internal/platform/metrics"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "guardd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	a, err := build(ctx, cfg, log, reg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			log.Error("shutdown", "error", cerr)
		}
	}()

	router := newRouter(a.server(cfg.Server.AdminToken, reg))
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return clock.NewLoop(cfg.Tick.Rate, a.guard.OnTick,
			clock.WithMaxDelta(cfg.Tick.MaxDelta),
			clock.WithLoopLogger(log),
		).Run(gctx)
	})
	g.Go(func() error {
		return clock.NewLoop(cfg.Tick.FixedRate, a.guard.OnTick,
			clock.WithMaxDelta(cfg.Tick.MaxDelta),
			clock.WithFixedStep(),
			clock.WithLoopLogger(log),
		).Run(gctx)
	})
	if a.telemetry != nil {
		g.Go(func() error { return a.telemetry.Run(gctx) })
	}
	g.Go(func() error {
		log.Info("starting guardd", "addr", cfg.Server.Addr, "modules", len(a.guard.Registry().Modules()))
		return httpserver.Serve(gctx, srv)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("guardd stopped")
	return nil
}
