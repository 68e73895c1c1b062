package quant

import (
	"fmt"
	"math"
	"sync/atomic"
)

// FeePPM is a fee rate in parts-per-million of traded notional.
// 1,000,000 = 100%. E.g. 250 = 0.025%, 75,000 = 7.5%.
type FeePPM int64

// PriceMicros represents price multiplied by 1,000,000 (10^6).
// E.g., 1.23 USD = 1,230,000 PriceMicros.
type PriceMicros int64

// QtySats represents quantity multiplied by 100,000,000 (10^8).
// E.g., 1.0 BTC = 100,000,000 QtySats.
type QtySats int64

// SignalMicros is the venue congestion signal (e.g. prevailing gas price)
// multiplied by 1,000,000. The unit itself is venue-specific.
type SignalMicros int64

// TimeStamp represents Unix seconds. All decision-path functions take it
// explicitly; the engine never reads the wall clock.
type TimeStamp int64

const (
	FeeScale   = 1_000_000
	PriceScale = 1_000_000
	QtyScale   = 100_000_000
	// BpsScale is the multiplier scale: 10,000 = 1.0x.
	BpsScale = 10_000
)

func (f FeePPM) String() string {
	return fmt.Sprintf("%.4f%%", float64(f)*100/FeeScale)
}

func (p PriceMicros) String() string {
	return fmt.Sprintf("%.6f", float64(p)/PriceScale)
}

func (q QtySats) String() string {
	return fmt.Sprintf("%.8f", float64(q)/QtyScale)
}

func (s SignalMicros) String() string {
	return fmt.Sprintf("%.6f", float64(s)/PriceScale)
}

// ToPriceMicros converts a float64 (from an external API) to PriceMicros.
// Only used at the boundary; internal logic never touches float64.
func ToPriceMicros(f float64) PriceMicros {
	return PriceMicros(math.Round(f * PriceScale))
}

// ToSignalMicros converts a float64 congestion reading to SignalMicros.
func ToSignalMicros(f float64) SignalMicros {
	return SignalMicros(math.Round(f * PriceScale))
}

// NextSeq generates the next sequence number atomically.
func NextSeq(ptr *uint64) uint64 {
	return atomic.AddUint64(ptr, 1)
}

// ParsePriceMicros parses a numeric string to PriceMicros without float64.
func ParsePriceMicros(s string) (PriceMicros, error) {
	v, err := parseFixedPoint(s, 6)
	return PriceMicros(v), err
}

// ParseSignalMicros parses a numeric string to SignalMicros without float64.
func ParseSignalMicros(s string) (SignalMicros, error) {
	v, err := parseFixedPoint(s, 6)
	return SignalMicros(v), err
}

// ParseQtySats parses a numeric string to QtySats without float64.
func ParseQtySats(s string) (QtySats, error) {
	v, err := parseFixedPoint(s, 8)
	return QtySats(v), err
}
