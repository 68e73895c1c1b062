package domain

import (
	"testing"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

func TestDeviationBps(t *testing.T) {
	tests := []struct {
		name    string
		current quant.PriceMicros
		ref     quant.PriceMicros
		want    int64
	}{
		{"Up 5 Percent", 105 * quant.PriceScale, 100 * quant.PriceScale, 500},
		{"Down 5 Percent", 95 * quant.PriceScale, 100 * quant.PriceScale, 500},
		{"Flat", 100, 100, 0},
		{"Zero Reference", 100, 0, 0},
		{"Doubled", 200 * quant.PriceScale, 100 * quant.PriceScale, 10_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeviationBps(tt.current, tt.ref); got != tt.want {
				t.Errorf("DeviationBps = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestVolatilityMultiplier(t *testing.T) {
	cfg := DefaultMarketFeeConfig()

	t.Run("Empty Window Falls Back To Normal", func(t *testing.T) {
		var w PriceWindow
		got := VolatilityMultiplierBps(&cfg, &w, 100*quant.PriceScale)
		if got != cfg.NormalVolMultiplierBps {
			t.Errorf("got %d, want normal %d", got, cfg.NormalVolMultiplierBps)
		}
	})

	t.Run("Partial Window Uses Short Horizon Only", func(t *testing.T) {
		var w PriceWindow
		w.Capture(100*quant.PriceScale, 0, MinSnapshotAge)
		w.Capture(100*quant.PriceScale, MinSnapshotAge, MinSnapshotAge)

		// 7% off the newest snapshot: above high (500), below extreme (1000).
		got := VolatilityMultiplierBps(&cfg, &w, 107*quant.PriceScale)
		if got != cfg.HighVolMultiplierBps {
			t.Errorf("got %d, want high %d", got, cfg.HighVolMultiplierBps)
		}
	})

	t.Run("Full Window Averages Both Horizons", func(t *testing.T) {
		var w PriceWindow
		// Oldest 100, newest 110.
		for i, p := range []quant.PriceMicros{100, 104, 107, 110} {
			w.Capture(p*quant.PriceScale, quant.TimeStamp(int64(i)*int64(MinSnapshotAge)), MinSnapshotAge)
		}
		// Current 110: short dev 0 vs newest, long dev 1000 vs oldest -> avg 500.
		// 500 is exactly the high threshold: belongs to the lower band.
		got := VolatilityMultiplierBps(&cfg, &w, 110*quant.PriceScale)
		if got != cfg.NormalVolMultiplierBps {
			t.Errorf("got %d, want normal %d", got, cfg.NormalVolMultiplierBps)
		}
	})

	t.Run("Calm Market Gets Discount", func(t *testing.T) {
		var w PriceWindow
		w.Capture(100*quant.PriceScale, 0, MinSnapshotAge)
		got := VolatilityMultiplierBps(&cfg, &w, 100*quant.PriceScale)
		if got != cfg.LowVolMultiplierBps {
			t.Errorf("got %d, want low %d", got, cfg.LowVolMultiplierBps)
		}
	})
}

func TestVolumeMultiplier(t *testing.T) {
	cfg := DefaultMarketFeeConfig()

	fill := func(periods int, perPeriod quant.QtySats) *VolumeAggregator {
		var a VolumeAggregator
		now := quant.TimeStamp(1000)
		for i := 0; i <= periods; i++ {
			a.Record(perPeriod, now)
			now += PeriodLength
		}
		return &a
	}

	t.Run("Immature Market Stays Normal", func(t *testing.T) {
		a := fill(MinVolumePeriods-2, 1000)
		if got := VolumeMultiplierBps(&cfg, a); got != cfg.NormalVolMultiplierBps {
			t.Errorf("got %d, want normal", got)
		}
	})

	t.Run("Zero Average Stays Normal", func(t *testing.T) {
		a := fill(MinVolumePeriods+1, 0)
		if got := VolumeMultiplierBps(&cfg, a); got != cfg.NormalVolMultiplierBps {
			t.Errorf("got %d, want normal", got)
		}
	})

	t.Run("Quiet Period Gets Discount", func(t *testing.T) {
		var a VolumeAggregator
		now := quant.TimeStamp(1000)
		for i := 0; i < MinVolumePeriods+1; i++ {
			a.Record(10_000, now)
			now += PeriodLength
		}
		a.Record(100, now) // current period is 1% of the rolling average
		got := VolumeMultiplierBps(&cfg, &a)
		if got != cfg.VolumeMultipliersBps[0] {
			t.Errorf("got %d, want deepest discount %d", got, cfg.VolumeMultipliersBps[0])
		}
	})

	t.Run("Surge Gets Surcharge", func(t *testing.T) {
		var a VolumeAggregator
		now := quant.TimeStamp(1000)
		for i := 0; i < MinVolumePeriods+1; i++ {
			a.Record(10_000, now)
			now += PeriodLength
		}
		a.Record(100_000, now) // 10x the average: above the last threshold
		got := VolumeMultiplierBps(&cfg, &a)
		if got != cfg.VolumeMultipliersBps[4] {
			t.Errorf("got %d, want top surcharge %d", got, cfg.VolumeMultipliersBps[4])
		}
	})
}

func TestDynamicFee(t *testing.T) {
	t.Run("Both Normal Is Identity", func(t *testing.T) {
		if got := DynamicFee(250, quant.BpsScale, quant.BpsScale); got != 250 {
			t.Errorf("got %d, want 250", got)
		}
	})

	t.Run("Multipliers Compose", func(t *testing.T) {
		// 1000 * 1.5 * 1.2 = 1800
		if got := DynamicFee(1000, 15_000, 12_000); got != 1800 {
			t.Errorf("got %d, want 1800", got)
		}
	})

	t.Run("Clamped To Max Base Fee", func(t *testing.T) {
		got := DynamicFee(MaxBaseFeePPM, 30_000, 15_000)
		if got != MaxBaseFeePPM {
			t.Errorf("got %d, want ceiling %d", got, MaxBaseFeePPM)
		}
	})
}

func TestEscalatedFeeAndClamp(t *testing.T) {
	// Base 250, high multiplier 5.6x -> 1400, under both caps.
	fee := EscalatedFee(250, 56_000)
	if fee != 1400 {
		t.Fatalf("escalated = %d, want 1400", fee)
	}

	capped, hit := ClampFee(fee, DefaultEmergencyCapPPM)
	if hit || capped != 1400 {
		t.Errorf("emergency cap should not bite: %d, %v", capped, hit)
	}

	capped, hit = ClampFee(fee, AbsoluteCapPPM)
	if hit || capped != 1400 {
		t.Errorf("absolute cap should not bite: %d, %v", capped, hit)
	}

	t.Run("Saturates At Cap", func(t *testing.T) {
		got, hit := ClampFee(90_000, AbsoluteCapPPM)
		if !hit || got != AbsoluteCapPPM {
			t.Errorf("got %d hit=%v, want %d hit", got, hit, AbsoluteCapPPM)
		}
	})
}
