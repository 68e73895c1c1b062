package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/domain"
)

func testSnapshot(seq uint64, ts int64) *Snapshot {
	cfg := domain.DefaultMarketFeeConfig()
	cfg.BaseFeePPM = 250
	return &Snapshot{
		Seq:    seq,
		TsUnix: ts,
		Markets: map[string]domain.MarketSnapshot{
			"WETH-USDC": {
				Config: cfg,
				Window: []domain.PriceSnapshot{
					{Price: 100_000_000, Ts: 1000},
					{Price: 101_000_000, Ts: 2000},
				},
				Volume: domain.VolumeState{
					CurrentPeriod:   500,
					Accumulated:     12_000,
					PeriodsRecorded: 8,
					LastPeriodStart: 2000,
				},
			},
		},
	}
}

func TestSnapshotManager_SaveLoadRoundTrip(t *testing.T) {
	sm := NewSnapshotManager(t.TempDir())

	want := testSnapshot(42, 5000)
	if err := sm.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := sm.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if got == nil {
		t.Fatal("LoadLatest returned nil after save")
	}
	if got.Seq != 42 || got.TsUnix != 5000 {
		t.Errorf("header = %d/%d, want 42/5000", got.Seq, got.TsUnix)
	}
	m, ok := got.Markets["WETH-USDC"]
	if !ok {
		t.Fatal("market missing from loaded snapshot")
	}
	if m.Config.BaseFeePPM != 250 {
		t.Errorf("config base fee = %d, want 250", m.Config.BaseFeePPM)
	}
	if len(m.Window) != 2 || m.Window[1].Price != 101_000_000 {
		t.Errorf("window = %+v", m.Window)
	}
	if m.Volume != want.Markets["WETH-USDC"].Volume {
		t.Errorf("volume = %+v", m.Volume)
	}
}

func TestSnapshotManager_LoadLatestPicksHighestSeq(t *testing.T) {
	sm := NewSnapshotManager(t.TempDir())

	for _, seq := range []uint64{10, 50, 30} {
		if err := sm.Save(testSnapshot(seq, int64(seq)*100)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := sm.LoadLatest()
	if err != nil {
		t.Fatal(err)
	}
	if got.Seq != 50 {
		t.Errorf("loaded seq = %d, want 50", got.Seq)
	}
}

func TestSnapshotManager_LoadLatestEmpty(t *testing.T) {
	t.Run("Missing Dir", func(t *testing.T) {
		sm := NewSnapshotManager(filepath.Join(t.TempDir(), "never-created"))
		got, err := sm.LoadLatest()
		if err != nil || got != nil {
			t.Errorf("missing dir: got %v, %v; want nil, nil", got, err)
		}
	})

	t.Run("No Matching Files", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		sm := NewSnapshotManager(dir)
		got, err := sm.LoadLatest()
		if err != nil || got != nil {
			t.Errorf("stray file: got %v, %v; want nil, nil", got, err)
		}
	})
}

func TestSnapshotManager_Cleanup(t *testing.T) {
	dir := t.TempDir()
	sm := NewSnapshotManager(dir)

	for seq := uint64(1); seq <= 5; seq++ {
		if err := sm.Save(testSnapshot(seq, int64(seq)*100)); err != nil {
			t.Fatal(err)
		}
	}

	if err := sm.Cleanup(2); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("files after cleanup = %d, want 2", len(entries))
	}

	// The survivors are the two highest.
	got, err := sm.LoadLatest()
	if err != nil {
		t.Fatal(err)
	}
	if got.Seq != 5 {
		t.Errorf("latest after cleanup = %d, want 5", got.Seq)
	}
}
