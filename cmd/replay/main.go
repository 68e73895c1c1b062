// Command replay rebuilds engine state from a recorded audit log and
// prints what it finds. Useful for verifying a production log offline and
// for inspecting window/volume state at a point in time.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/backtest"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/engine"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// staticSignal satisfies the engine without a live oracle; replay never
// takes the decision path, and windows rebuild from the prices recorded
// on the settlements.
type staticSignal struct{}

func (staticSignal) Sample() (quant.SignalMicros, error) { return 0, nil }

type staticPrices struct{}

func (staticPrices) ReferencePrice(string) (quant.PriceMicros, error) {
	return 0, fmt.Errorf("no price feed in replay")
}

func main() {
	dbPath := flag.String("db", "", "path to the audit log (audit.db)")
	fromSeq := flag.Uint64("from", 0, "first sequence number to replay")
	venue := flag.String("venue", "replay", "venue id for the rebuilt engine")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -db <audit.db> [-from N]")
		os.Exit(2)
	}

	r, err := backtest.NewReplayer(*dbPath)
	if err != nil {
		slog.Error("Failed to open audit log", slog.Any("error", err))
		os.Exit(1)
	}
	defer r.Close()

	ctx := context.Background()

	counts, err := r.Summary(ctx)
	if err != nil {
		slog.Error("Failed to summarize audit log", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Println("Audit log contents:")
	for name, n := range counts {
		fmt.Printf("  %-16s %d\n", name, n)
	}

	orch := engine.NewOrchestrator(engine.Options{
		VenueID: *venue,
		Signals: engine.NewSignalCache(staticSignal{}),
		Prices:  staticPrices{},
	})

	n, err := r.RunReplay(ctx, orch, *fromSeq)
	if err != nil {
		slog.Error("Replay failed", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Printf("\nReplayed %d settlements. Rebuilt markets:\n", n)
	for _, id := range orch.MarketIDs() {
		snap, _ := orch.ExportMarket(id)
		fmt.Printf("  %-16s window=%d snaps, volume(current)=%s, periods=%d\n",
			id, len(snap.Window),
			snap.Volume.CurrentPeriod.String(),
			snap.Volume.PeriodsRecorded)
	}
}
