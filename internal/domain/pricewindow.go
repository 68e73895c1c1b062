package domain

import (
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// WindowCapacity is the maximum number of price snapshots held per market.
const WindowCapacity = 4

const (
	// MinSnapshotAge is the precise sampling interval: a new snapshot is
	// captured only when the newest one is at least this old.
	MinSnapshotAge quant.TimeStamp = 900
	// LiteSnapshotAge is the coarse interval used when 24-period volume is
	// below the market's precise-data threshold, bounding state-update cost
	// on quiet markets.
	LiteSnapshotAge quant.TimeStamp = 3600
)

// PriceSnapshot is one observed (price, time) point.
type PriceSnapshot struct {
	Price quant.PriceMicros `json:"price"`
	Ts    quant.TimeStamp   `json:"ts"`
}

// PriceWindow is a fixed-capacity ring buffer of price snapshots with
// explicit head/count indices. When full, a capture evicts exactly the
// oldest entry and preserves the order of the remaining ones.
type PriceWindow struct {
	snaps [WindowCapacity]PriceSnapshot
	head  int // next write slot
	count int
}

func (w *PriceWindow) Len() int { return w.count }

// Newest returns the most recent snapshot.
func (w *PriceWindow) Newest() (PriceSnapshot, bool) {
	if w.count == 0 {
		return PriceSnapshot{}, false
	}
	idx := (w.head - 1 + WindowCapacity) % WindowCapacity
	return w.snaps[idx], true
}

// Oldest returns the oldest snapshot still in the window.
func (w *PriceWindow) Oldest() (PriceSnapshot, bool) {
	if w.count == 0 {
		return PriceSnapshot{}, false
	}
	idx := (w.head - w.count + WindowCapacity) % WindowCapacity
	return w.snaps[idx], true
}

// Capture appends a snapshot if the window is empty or the newest snapshot
// is at least minAge old. Returns whether a snapshot was taken. The caller
// selects minAge (MinSnapshotAge or LiteSnapshotAge) based on the market's
// 24-period volume.
func (w *PriceWindow) Capture(price quant.PriceMicros, now quant.TimeStamp, minAge quant.TimeStamp) bool {
	if newest, ok := w.Newest(); ok && now-newest.Ts < minAge {
		return false
	}

	w.snaps[w.head] = PriceSnapshot{Price: price, Ts: now}
	w.head = (w.head + 1) % WindowCapacity
	if w.count < WindowCapacity {
		w.count++
	}
	return true
}

// Snapshots returns the window contents oldest-first. The slice is a copy.
func (w *PriceWindow) Snapshots() []PriceSnapshot {
	out := make([]PriceSnapshot, 0, w.count)
	for i := 0; i < w.count; i++ {
		idx := (w.head - w.count + i + WindowCapacity) % WindowCapacity
		out = append(out, w.snaps[idx])
	}
	return out
}

// RestoreWindow rebuilds a window from persisted snapshots (oldest-first).
// Entries beyond capacity keep only the newest WindowCapacity.
func RestoreWindow(snaps []PriceSnapshot) *PriceWindow {
	w := &PriceWindow{}
	for _, s := range snaps {
		w.snaps[w.head] = s
		w.head = (w.head + 1) % WindowCapacity
		if w.count < WindowCapacity {
			w.count++
		}
	}
	return w
}
