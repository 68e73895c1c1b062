package engine

import (
	"context"
	"log/slog"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/event"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/storage"
)

// StoreSink persists audit events to the sqlite WAL. Persistence failure
// halts the engine: an unauditable fee decision must not reach settlement.
type StoreSink struct {
	store *storage.EventStore
}

func NewStoreSink(store *storage.EventStore) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Emit(ev event.Event) {
	if err := s.store.SaveEvent(context.Background(), ev); err != nil {
		panic("FEE_AUDIT_PERSISTENCE_FAILURE: " + err.Error())
	}
}

// LogSink mirrors events to slog, for shadow deployments without a store.
type LogSink struct{}

func (LogSink) Emit(ev event.Event) {
	slog.Info("audit event",
		slog.Uint64("seq", ev.GetSeq()),
		slog.Int("type", int(ev.GetType())),
		slog.Int64("ts", int64(ev.GetTs())))
}

// MultiSink fans one event out to several sinks in order.
type MultiSink []EventSink

func (m MultiSink) Emit(ev event.Event) {
	for _, s := range m {
		s.Emit(ev)
	}
}
