package domain

import (
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/safe"
)

const (
	// MaxBaseFeePPM is the hard ceiling on the dynamic fee path (5%),
	// applied before caps and penalties.
	MaxBaseFeePPM quant.FeePPM = 50_000
	// AbsoluteCapPPM is the global circuit breaker (7.5%): the
	// unconditional last clamp on every decision.
	AbsoluteCapPPM quant.FeePPM = 75_000
	// DefaultEmergencyCapPPM caps congestion-escalated fees (1%) unless a
	// per-market override is set.
	DefaultEmergencyCapPPM quant.FeePPM = 10_000
	// CooldownSurchargePPM is the flat anti-abuse surcharge (2.5%).
	CooldownSurchargePPM quant.FeePPM = 25_000
	// MinVolumePeriods is the history a market needs before the volume
	// multiplier can move off normal.
	MinVolumePeriods = 6
)

// DeviationBps computes |current - reference| * 10000 / reference.
// A zero reference yields zero; the caller treats that as degenerate.
func DeviationBps(current, reference quant.PriceMicros) int64 {
	if reference <= 0 {
		return 0
	}
	diff := safe.Sub(int64(current), int64(reference))
	if diff < 0 {
		diff = -diff
	}
	return safe.MulDiv(diff, quant.BpsScale, int64(reference))
}

// VolatilityMultiplierBps measures short- and long-horizon price deviation
// against the window and maps it through the market's volatility bands.
// With a full window both horizons are averaged; with partial history only
// the short horizon counts; with no history the normal multiplier applies
// without computing a deviation.
func VolatilityMultiplierBps(cfg *MarketFeeConfig, w *PriceWindow, current quant.PriceMicros) int64 {
	newest, ok := w.Newest()
	if !ok || newest.Price <= 0 {
		return cfg.NormalVolMultiplierBps
	}

	dev := DeviationBps(current, newest.Price)
	if w.Len() >= WindowCapacity {
		oldest, _ := w.Oldest()
		if oldest.Price > 0 {
			longDev := DeviationBps(current, oldest.Price)
			dev = safe.Div(safe.Add(dev, longDev), 2)
		}
	}

	switch {
	case dev <= cfg.LowVolThresholdBps:
		return cfg.LowVolMultiplierBps
	case dev <= cfg.HighVolThresholdBps:
		return cfg.NormalVolMultiplierBps
	case dev <= cfg.ExtremeVolThresholdBps:
		return cfg.HighVolMultiplierBps
	default:
		return cfg.ExtremeVolMultiplierBps
	}
}

// VolumeMultiplierBps compares current-period volume against the rolling
// average and maps the ratio through the market's volume bands. Markets
// with fewer than MinVolumePeriods of history, or a zero average, stay at
// the normal multiplier.
func VolumeMultiplierBps(cfg *MarketFeeConfig, agg *VolumeAggregator) int64 {
	if agg.PeriodsRecorded() < MinVolumePeriods {
		return cfg.NormalVolMultiplierBps
	}

	avg := safe.Div(int64(agg.Accumulated()), int64(agg.PeriodsRecorded()))
	if avg == 0 {
		return cfg.NormalVolMultiplierBps
	}

	ratio := safe.MulDiv(int64(agg.CurrentPeriod()), quant.BpsScale, avg)
	for i, threshold := range cfg.VolumeRatioThresholdsBps {
		if ratio <= threshold {
			return cfg.VolumeMultipliersBps[i]
		}
	}
	return cfg.VolumeMultipliersBps[len(cfg.VolumeMultipliersBps)-1]
}

// DynamicFee applies both multipliers to the base fee and clamps to the
// max base fee ceiling. Pure over its inputs; performs no writes.
func DynamicFee(base quant.FeePPM, volMultBps, volumeMultBps int64) quant.FeePPM {
	fee := safe.MulDiv(int64(base), volMultBps, quant.BpsScale)
	fee = safe.MulDiv(fee, volumeMultBps, quant.BpsScale)
	if fee > int64(MaxBaseFeePPM) {
		return MaxBaseFeePPM
	}
	return quant.FeePPM(fee)
}

// EscalatedFee applies a congestion tier multiplier to the base fee.
// Caps are the caller's responsibility.
func EscalatedFee(base quant.FeePPM, tierMultBps int64) quant.FeePPM {
	return quant.FeePPM(safe.MulDiv(int64(base), tierMultBps, quant.BpsScale))
}

// ClampFee saturates fee at cap. The second return reports whether the
// clamp actually bit, so each clamping event stays independently observable.
func ClampFee(fee, cap quant.FeePPM) (quant.FeePPM, bool) {
	if fee > cap {
		return cap, true
	}
	return fee, false
}
