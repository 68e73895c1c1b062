package domain

import (
	"fmt"
	"sync"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// Tier classifies the current congestion signal.
type Tier uint8

const (
	TierNormal Tier = iota
	TierHigh
	TierVeryHigh
	TierExtreme
)

func (t Tier) String() string {
	switch t {
	case TierNormal:
		return "NORMAL"
	case TierHigh:
		return "HIGH"
	case TierVeryHigh:
		return "VERY_HIGH"
	case TierExtreme:
		return "EXTREME"
	default:
		return "UNKNOWN"
	}
}

// CongestionProfile maps a venue's congestion signal to a tier and the
// escalation multiplier charged in that tier. Thresholds are closed-below /
// open-above: a signal exactly at a threshold belongs to the lower tier.
type CongestionProfile struct {
	NormalThreshold   quant.SignalMicros `yaml:"normal_threshold" json:"normal_threshold"`
	HighThreshold     quant.SignalMicros `yaml:"high_threshold" json:"high_threshold"`
	VeryHighThreshold quant.SignalMicros `yaml:"very_high_threshold" json:"very_high_threshold"`

	// Bps scale: 10,000 = 1.0x. High is charged at >= 1x; the ladder is
	// strictly increasing and Extreme never exceeds 10x.
	HighMultiplierBps     int64 `yaml:"high_multiplier_bps" json:"high_multiplier_bps"`
	VeryHighMultiplierBps int64 `yaml:"very_high_multiplier_bps" json:"very_high_multiplier_bps"`
	ExtremeMultiplierBps  int64 `yaml:"extreme_multiplier_bps" json:"extreme_multiplier_bps"`
}

const maxTierMultiplierBps = 10 * quant.BpsScale

// DefaultCongestionProfile returns the built-in profile used the first time
// a venue is observed, before any administrative override.
func DefaultCongestionProfile() CongestionProfile {
	return CongestionProfile{
		NormalThreshold:   quant.ToSignalMicros(50),
		HighThreshold:     quant.ToSignalMicros(150),
		VeryHighThreshold: quant.ToSignalMicros(400),

		HighMultiplierBps:     15_000, // 1.5x
		VeryHighMultiplierBps: 30_000, // 3x
		ExtremeMultiplierBps:  50_000, // 5x
	}
}

// Validate enforces the ordering/range invariants at the administrative
// boundary so the decision path never sees a malformed profile.
func (p CongestionProfile) Validate() error {
	if !(p.NormalThreshold < p.HighThreshold && p.HighThreshold < p.VeryHighThreshold) {
		return fmt.Errorf("congestion thresholds must be strictly ascending: %d, %d, %d",
			p.NormalThreshold, p.HighThreshold, p.VeryHighThreshold)
	}
	if p.HighMultiplierBps < quant.BpsScale {
		return fmt.Errorf("high multiplier %d is below 1x (%d)", p.HighMultiplierBps, quant.BpsScale)
	}
	if !(p.HighMultiplierBps < p.VeryHighMultiplierBps && p.VeryHighMultiplierBps < p.ExtremeMultiplierBps) {
		return fmt.Errorf("tier multipliers must be strictly ascending: %d, %d, %d",
			p.HighMultiplierBps, p.VeryHighMultiplierBps, p.ExtremeMultiplierBps)
	}
	if p.ExtremeMultiplierBps > maxTierMultiplierBps {
		return fmt.Errorf("extreme multiplier %d exceeds 10x cap (%d)", p.ExtremeMultiplierBps, maxTierMultiplierBps)
	}
	return nil
}

// Classify maps a signal to its tier. Pure; always computed even when
// escalation is suppressed, so callers can report the true congestion state.
func (p CongestionProfile) Classify(signal quant.SignalMicros) Tier {
	switch {
	case signal <= p.NormalThreshold:
		return TierNormal
	case signal <= p.HighThreshold:
		return TierHigh
	case signal <= p.VeryHighThreshold:
		return TierVeryHigh
	default:
		return TierExtreme
	}
}

// TierMultiplierBps returns the escalation multiplier for a tier.
// TierNormal carries no escalation (1x).
func (p CongestionProfile) TierMultiplierBps(t Tier) int64 {
	switch t {
	case TierHigh:
		return p.HighMultiplierBps
	case TierVeryHigh:
		return p.VeryHighMultiplierBps
	case TierExtreme:
		return p.ExtremeMultiplierBps
	default:
		return quant.BpsScale
	}
}

// ProfileRegistry holds congestion profiles keyed by venue id. It is built
// at process start from static configuration and mutated only through the
// administrative path; decisions read a value copy so an in-flight request
// never observes a half-written profile.
type ProfileRegistry struct {
	mu       sync.RWMutex
	profiles map[string]CongestionProfile
}

func NewProfileRegistry() *ProfileRegistry {
	return &ProfileRegistry{profiles: make(map[string]CongestionProfile)}
}

// Get returns the profile for a venue, installing the built-in default on
// first use. Profiles are never deleted.
func (r *ProfileRegistry) Get(venueID string) CongestionProfile {
	r.mu.RLock()
	p, ok := r.profiles[venueID]
	r.mu.RUnlock()
	if ok {
		return p
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok = r.profiles[venueID]; ok {
		return p
	}
	p = DefaultCongestionProfile()
	r.profiles[venueID] = p
	return p
}

// Set validates and installs a profile for a venue.
func (r *ProfileRegistry) Set(venueID string, p CongestionProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.profiles[venueID] = p
	r.mu.Unlock()
	return nil
}
