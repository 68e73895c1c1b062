package domain

import (
	"fmt"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// MarketFeeConfig is the per-market configuration aggregate. One instance
// exists per market for the market's lifetime: created with defaults when
// the market is first observed, mutated only through the administrative
// path. Feature state is named booleans, not bitflags.
type MarketFeeConfig struct {
	Enabled bool `json:"enabled"`

	PauseDynamicFees   bool `json:"pause_dynamic_fees"`
	PauseAntiAbuse     bool `json:"pause_anti_abuse"`
	PauseFeeSkim       bool `json:"pause_fee_skim"`
	PauseEmergencyFees bool `json:"pause_emergency_fees"`

	// Overrides; 0 means "use venue default".
	BaseFeePPM      quant.FeePPM `json:"base_fee_ppm"`
	EmergencyCapPPM quant.FeePPM `json:"emergency_cap_ppm"`

	// Volatility bands: price deviation in bps of the reference price,
	// mapped through three ascending thresholds to four multipliers.
	LowVolThresholdBps     int64 `json:"low_vol_threshold_bps"`
	HighVolThresholdBps    int64 `json:"high_vol_threshold_bps"`
	ExtremeVolThresholdBps int64 `json:"extreme_vol_threshold_bps"`

	LowVolMultiplierBps     int64 `json:"low_vol_multiplier_bps"`
	NormalVolMultiplierBps  int64 `json:"normal_vol_multiplier_bps"`
	HighVolMultiplierBps    int64 `json:"high_vol_multiplier_bps"`
	ExtremeVolMultiplierBps int64 `json:"extreme_vol_multiplier_bps"`

	// Volume bands: current-period-to-average ratio (bps) mapped through
	// five ascending thresholds to five multipliers; above the last
	// threshold the last multiplier applies.
	VolumeRatioThresholdsBps [5]int64 `json:"volume_ratio_thresholds_bps"`
	VolumeMultipliersBps     [5]int64 `json:"volume_multipliers_bps"`

	// 24-period volume above which precise snapshot sampling is used;
	// below it the window falls back to the coarse lite interval.
	PreciseVolumeThreshold quant.QtySats `json:"precise_volume_threshold"`
}

// DefaultMarketFeeConfig is installed when a market is first observed.
func DefaultMarketFeeConfig() MarketFeeConfig {
	return MarketFeeConfig{
		Enabled: true,

		LowVolThresholdBps:     100,  // 1% deviation
		HighVolThresholdBps:    500,  // 5%
		ExtremeVolThresholdBps: 1000, // 10%

		LowVolMultiplierBps:     9_000,  // 0.9x discount in calm markets
		NormalVolMultiplierBps:  10_000, // 1x
		HighVolMultiplierBps:    15_000, // 1.5x
		ExtremeVolMultiplierBps: 30_000, // 3x

		VolumeRatioThresholdsBps: [5]int64{2_500, 5_000, 10_000, 20_000, 40_000},
		VolumeMultipliersBps:     [5]int64{8_000, 9_000, 10_000, 12_000, 15_000},

		PreciseVolumeThreshold: 100_000 * quant.QtyScale,
	}
}

// Validate enforces the ordering/range invariants at the administrative
// boundary.
func (c *MarketFeeConfig) Validate() error {
	if c.BaseFeePPM < 0 || c.BaseFeePPM > MaxBaseFeePPM {
		return fmt.Errorf("base fee %d outside [0, %d]", c.BaseFeePPM, MaxBaseFeePPM)
	}
	if c.EmergencyCapPPM < 0 || c.EmergencyCapPPM > AbsoluteCapPPM {
		return fmt.Errorf("emergency cap %d outside [0, %d]", c.EmergencyCapPPM, AbsoluteCapPPM)
	}

	if !(c.LowVolThresholdBps < c.HighVolThresholdBps && c.HighVolThresholdBps < c.ExtremeVolThresholdBps) {
		return fmt.Errorf("volatility thresholds must be strictly ascending: %d, %d, %d",
			c.LowVolThresholdBps, c.HighVolThresholdBps, c.ExtremeVolThresholdBps)
	}
	if c.LowVolThresholdBps < 0 {
		return fmt.Errorf("volatility thresholds must be non-negative")
	}
	if c.LowVolMultiplierBps > quant.BpsScale || c.NormalVolMultiplierBps < quant.BpsScale {
		return fmt.Errorf("volatility multipliers must straddle 1x: low %d, normal %d",
			c.LowVolMultiplierBps, c.NormalVolMultiplierBps)
	}
	if c.LowVolMultiplierBps <= 0 {
		return fmt.Errorf("low volatility multiplier must be positive")
	}
	if !(c.LowVolMultiplierBps <= c.NormalVolMultiplierBps &&
		c.NormalVolMultiplierBps <= c.HighVolMultiplierBps &&
		c.HighVolMultiplierBps <= c.ExtremeVolMultiplierBps) {
		return fmt.Errorf("volatility multipliers must be ascending")
	}

	for i := 1; i < len(c.VolumeRatioThresholdsBps); i++ {
		if c.VolumeRatioThresholdsBps[i-1] >= c.VolumeRatioThresholdsBps[i] {
			return fmt.Errorf("volume ratio thresholds must be strictly ascending at index %d", i)
		}
	}
	if c.VolumeRatioThresholdsBps[0] <= 0 {
		return fmt.Errorf("volume ratio thresholds must be positive")
	}
	for i := 1; i < len(c.VolumeMultipliersBps); i++ {
		if c.VolumeMultipliersBps[i-1] > c.VolumeMultipliersBps[i] {
			return fmt.Errorf("volume multipliers must be ascending at index %d", i)
		}
	}
	if c.VolumeMultipliersBps[0] <= 0 {
		return fmt.Errorf("volume multipliers must be positive")
	}

	if c.PreciseVolumeThreshold < 0 {
		return fmt.Errorf("precise volume threshold must be non-negative")
	}
	return nil
}

// EffectiveBaseFee resolves the per-market override against the venue
// default (0 means "use venue default").
func (c *MarketFeeConfig) EffectiveBaseFee(venueDefault quant.FeePPM) quant.FeePPM {
	if c.BaseFeePPM > 0 {
		return c.BaseFeePPM
	}
	return venueDefault
}

// EffectiveEmergencyCap resolves the per-market override against the
// default 1% emergency cap (0 means "use venue default").
func (c *MarketFeeConfig) EffectiveEmergencyCap() quant.FeePPM {
	if c.EmergencyCapPPM > 0 {
		return c.EmergencyCapPPM
	}
	return DefaultEmergencyCapPPM
}
