package event

import (
	"testing"
)

func TestFeeDecisionPool(t *testing.T) {
	ev := AcquireFeeDecisionEvent()
	ev.MarketID = "WETH-USDC"
	ev.FinalFeePPM = 1400

	if ev.MarketID != "WETH-USDC" {
		t.Error("MarketID not set")
	}

	ReleaseFeeDecisionEvent(ev)

	ev2 := AcquireFeeDecisionEvent()
	if ev2.MarketID != "" || ev2.FinalFeePPM != 0 {
		t.Error("Event should be reset after release")
	}
	ReleaseFeeDecisionEvent(ev2)
}

func TestWarmup(t *testing.T) {
	// Must not panic or leak; events acquired after warmup are clean.
	Warmup()
	ev := AcquireFeeDecisionEvent()
	if ev.Penalty || ev.Seq != 0 {
		t.Error("warmed-up event not clean")
	}
	ReleaseFeeDecisionEvent(ev)
}

func BenchmarkWithoutPool(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ev := &FeeDecisionEvent{MarketID: "WETH-USDC", FinalFeePPM: 1400}
		_ = ev
	}
}

func BenchmarkWithPool(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ev := AcquireFeeDecisionEvent()
		ev.MarketID = "WETH-USDC"
		ev.FinalFeePPM = 1400
		ReleaseFeeDecisionEvent(ev)
	}
}
