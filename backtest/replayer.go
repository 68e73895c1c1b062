// Package backtest rebuilds engine state from a recorded audit log. The
// same settlement code path runs offline, so a replayed engine lands on
// exactly the windows and volumes the live one had.
package backtest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/engine"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/event"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/storage"
)

// Replayer reads persisted settlements and feeds them into an
// orchestrator.
type Replayer struct {
	store *storage.EventStore
}

// NewReplayer opens the audit log at dbPath.
func NewReplayer(dbPath string) (*Replayer, error) {
	store, err := storage.NewEventStore(dbPath)
	if err != nil {
		return nil, err
	}
	return &Replayer{store: store}, nil
}

// Close releases the underlying store.
func (r *Replayer) Close() error {
	return r.store.Close()
}

// RunReplay applies every settlement from fromSeq onward, in sequence
// order, synchronously for deterministic state.
func (r *Replayer) RunReplay(ctx context.Context, orch *engine.Orchestrator, fromSeq uint64) (int, error) {
	settlements, err := r.store.LoadSettlements(ctx, fromSeq)
	if err != nil {
		return 0, fmt.Errorf("failed to load settlements: %w", err)
	}

	for _, ev := range settlements {
		orch.ReplaySettlement(ev)
	}

	slog.Info("Replay complete",
		slog.Int("settlements", len(settlements)),
		slog.Uint64("from_seq", fromSeq))
	return len(settlements), nil
}

// Summary reports per-type event counts from the audit log, for sanity
// checks before and after a replay.
func (r *Replayer) Summary(ctx context.Context) (map[string]int64, error) {
	types := map[string]event.Type{
		"fee_decision":    event.EvFeeDecision,
		"emergency_cap":   event.EvEmergencyCapApplied,
		"circuit_breaker": event.EvCircuitBreakerApplied,
		"fee_skim":        event.EvFeeSkim,
		"trade_settled":   event.EvTradeSettled,
	}

	out := make(map[string]int64, len(types))
	for name, typ := range types {
		n, err := r.store.CountByType(ctx, typ)
		if err != nil {
			return nil, err
		}
		out[name] = n
	}
	return out, nil
}
