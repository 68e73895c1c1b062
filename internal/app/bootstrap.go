package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/domain"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/engine"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/event"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/infra"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/storage"
)

// Bootstrap wires the engine together: config, storage, feeds,
// orchestrator, and state recovery.
type Bootstrap struct {
	Config       *infra.Config
	EventStore   *storage.EventStore
	Snapshots    *storage.SnapshotManager
	Orchestrator *engine.Orchestrator
	SignalCache  *engine.SignalCache
	PriceFeed    *infra.PriceFeed

	unlock func()
}

func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization: config, logging,
// storage, feeds, orchestrator, and recovery from the last snapshot plus
// the settlement log tail.
func (b *Bootstrap) Initialize() error {
	slog.Info("Bootstrapping fee engine...")

	event.Warmup()

	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err
	}
	b.Config = cfg

	infra.SetupLogger(cfg.Logging.Level, os.Stderr)

	workDir := infra.GetWorkspaceDir()
	dataDir := cfg.Storage.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(workDir, "data", cfg.App.Mode)
	}
	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	// One engine instance per audit log: a second writer would corrupt
	// the sequence.
	unlock, err := infra.CreateLockFile(dataDir)
	if err != nil {
		return err
	}
	b.unlock = unlock

	dbPath := filepath.Join(dataDir, "audit.db")
	evStore, err := storage.NewEventStore(dbPath)
	if err != nil {
		return err
	}
	b.EventStore = evStore
	slog.Info("EventStore initialized (WAL-mode)", "path", dbPath)

	b.Snapshots = storage.NewSnapshotManager(filepath.Join(dataDir, "snapshots"))

	// Feeds. The REST poller is the pull-side source behind the cache;
	// a streaming gas feed (if configured) pushes into the same cache
	// from main.
	b.SignalCache = engine.NewSignalCache(infra.NewGasPoller(cfg.Feeds.GasRestURL))
	b.PriceFeed = infra.NewPriceFeed(cfg.Feeds.PriceRestURL)

	profiles := domain.NewProfileRegistry()
	if err := profiles.Set(cfg.Venue.ID, cfg.Venue.Congestion); err != nil {
		return fmt.Errorf("configured congestion profile: %w", err)
	}

	sink := engine.EventSink(engine.NewStoreSink(evStore))
	if cfg.App.Mode == "shadow" {
		sink = engine.MultiSink{sink, engine.LogSink{}}
	}

	orch := engine.NewOrchestrator(engine.Options{
		VenueID:        cfg.Venue.ID,
		DefaultBaseFee: cfg.Venue.DefaultBaseFee,
		Profiles:       profiles,
		Signals:        b.SignalCache,
		Prices:         b.PriceFeed,
		Sink:           sink,
	})
	b.Orchestrator = orch

	return b.recover()
}

// recover rebuilds market state: latest snapshot first, then the
// settlement tail from the audit log.
func (b *Bootstrap) recover() error {
	ctx := context.Background()

	var fromSeq uint64
	snap, err := b.Snapshots.LoadLatest()
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snap != nil {
		for id, ms := range snap.Markets {
			b.Orchestrator.RestoreMarket(id, ms)
		}
		fromSeq = snap.Seq + 1
		slog.Info("Restored from snapshot",
			slog.Uint64("seq", snap.Seq), slog.Int("markets", len(snap.Markets)))
	}

	settlements, err := b.EventStore.LoadSettlements(ctx, fromSeq)
	if err != nil {
		return fmt.Errorf("failed to load settlement tail: %w", err)
	}
	for _, ev := range settlements {
		b.Orchestrator.ReplaySettlement(ev)
	}
	if len(settlements) > 0 {
		slog.Info("Replayed settlement tail", slog.Int("events", len(settlements)))
	}
	return nil
}

// SaveSnapshot persists the current state of every market.
func (b *Bootstrap) SaveSnapshot() error {
	markets := make(map[string]domain.MarketSnapshot)
	for _, id := range b.Orchestrator.MarketIDs() {
		if ms, ok := b.Orchestrator.ExportMarket(id); ok {
			markets[id] = ms
		}
	}

	ctx := context.Background()
	lastSeq, err := b.EventStore.GetLastSeq(ctx)
	if err != nil {
		return err
	}

	snap := &storage.Snapshot{
		Seq:     lastSeq,
		TsUnix:  time.Now().Unix(),
		Markets: markets,
	}
	if err := b.Snapshots.Save(snap); err != nil {
		return err
	}
	return b.Snapshots.Cleanup(b.Config.Storage.SnapshotKeep)
}

// RunSnapshotLoop saves snapshots periodically until the context ends.
func (b *Bootstrap) RunSnapshotLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Duration(b.Config.Storage.SnapshotEverySec) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := b.SaveSnapshot(); err != nil {
				slog.Error("Periodic snapshot failed", slog.Any("error", err))
			}
		}
	}
}

// Shutdown flushes a final snapshot and releases resources.
func (b *Bootstrap) Shutdown() {
	if b.Orchestrator != nil {
		if err := b.SaveSnapshot(); err != nil {
			slog.Error("Final snapshot failed", slog.Any("error", err))
		}
	}
	if b.EventStore != nil {
		b.EventStore.Close()
	}
	if b.unlock != nil {
		b.unlock()
	}
}
