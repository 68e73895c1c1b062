package domain

import (
	"testing"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

func TestCongestionProfile_Classify(t *testing.T) {
	p := CongestionProfile{
		NormalThreshold:   50,
		HighThreshold:     150,
		VeryHighThreshold: 400,

		HighMultiplierBps:     15_000,
		VeryHighMultiplierBps: 30_000,
		ExtremeMultiplierBps:  50_000,
	}

	tests := []struct {
		name   string
		signal quant.SignalMicros
		want   Tier
	}{
		{"Zero", 0, TierNormal},
		{"Below Normal", 49, TierNormal},
		{"At Normal Threshold", 50, TierNormal}, // boundary belongs to lower tier
		{"Just Above Normal", 51, TierHigh},
		{"At High Threshold", 150, TierHigh},
		{"Just Above High", 151, TierVeryHigh},
		{"At VeryHigh Threshold", 400, TierVeryHigh},
		{"Above VeryHigh", 401, TierExtreme},
		{"Huge", 1 << 40, TierExtreme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Classify(tt.signal); got != tt.want {
				t.Errorf("Classify(%d) = %s, want %s", tt.signal, got, tt.want)
			}
		})
	}
}

func TestCongestionProfile_TiersExhaustive(t *testing.T) {
	// Every signal around the thresholds lands in exactly one tier.
	p := DefaultCongestionProfile()
	boundaries := []quant.SignalMicros{
		0, p.NormalThreshold - 1, p.NormalThreshold, p.NormalThreshold + 1,
		p.HighThreshold, p.HighThreshold + 1,
		p.VeryHighThreshold, p.VeryHighThreshold + 1,
	}
	for _, s := range boundaries {
		tier := p.Classify(s)
		if tier > TierExtreme {
			t.Fatalf("Classify(%d) returned out-of-range tier %d", s, tier)
		}
	}
}

func TestCongestionProfile_Validate(t *testing.T) {
	valid := DefaultCongestionProfile()
	if err := valid.Validate(); err != nil {
		t.Fatalf("default profile should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*CongestionProfile)
	}{
		{"Thresholds Not Ascending", func(p *CongestionProfile) { p.HighThreshold = p.NormalThreshold }},
		{"High Multiplier Below 1x", func(p *CongestionProfile) { p.HighMultiplierBps = 9_999 }},
		{"Multipliers Not Ascending", func(p *CongestionProfile) { p.VeryHighMultiplierBps = p.HighMultiplierBps }},
		{"Extreme Above 10x", func(p *CongestionProfile) { p.ExtremeMultiplierBps = 100_001 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultCongestionProfile()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestCongestionProfile_TierMultiplier(t *testing.T) {
	p := DefaultCongestionProfile()
	if got := p.TierMultiplierBps(TierNormal); got != quant.BpsScale {
		t.Errorf("normal tier multiplier = %d, want 1x", got)
	}
	if got := p.TierMultiplierBps(TierExtreme); got != p.ExtremeMultiplierBps {
		t.Errorf("extreme tier multiplier = %d", got)
	}
}

func TestProfileRegistry(t *testing.T) {
	t.Run("Default On First Use", func(t *testing.T) {
		reg := NewProfileRegistry()
		p := reg.Get("arbitrum-one")
		if p != DefaultCongestionProfile() {
			t.Error("first lookup should install the built-in default")
		}
	})

	t.Run("Set Then Get", func(t *testing.T) {
		reg := NewProfileRegistry()
		p := DefaultCongestionProfile()
		p.NormalThreshold = 10
		p.HighThreshold = 20
		p.VeryHighThreshold = 30
		if err := reg.Set("base-mainnet", p); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if got := reg.Get("base-mainnet"); got.NormalThreshold != 10 {
			t.Errorf("got threshold %d, want 10", got.NormalThreshold)
		}
	})

	t.Run("Set Rejects Invalid", func(t *testing.T) {
		reg := NewProfileRegistry()
		p := DefaultCongestionProfile()
		p.ExtremeMultiplierBps = 200_000
		if err := reg.Set("v", p); err == nil {
			t.Error("expected rejection of >10x multiplier")
		}
	})
}
