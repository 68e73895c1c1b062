package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/app"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/infra"

	_ "net/http/pprof" // profiling endpoint
)

func main() {
	// Pprof, localhost only.
	go func() {
		slog.Info("Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Shutdown()

	cfg := bootstrap.Config
	infra.PrintBanner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// REST poller keeps the signal cache warm through decision lulls and
	// WS outages.
	go bootstrap.SignalCache.Poll(ctx, time.Duration(cfg.Feeds.PollIntervalSec)*time.Second)

	// Streaming gas feed, when configured.
	if cfg.Feeds.GasWSURL != "" {
		handler := infra.NewGasFeedHandler(cfg.Feeds.GasWSURL, bootstrap.SignalCache)
		worker := infra.NewBaseWSWorker(handler)
		worker.Start(ctx)
		defer worker.Stop()
		slog.InfoContext(ctx, "Gas feed worker started", slog.String("url", cfg.Feeds.GasWSURL))
	}

	go bootstrap.RunSnapshotLoop(ctx)

	slog.InfoContext(ctx, "Fee engine operational",
		slog.String("venue", cfg.Venue.ID),
		slog.String("mode", cfg.App.Mode))

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")
}
