// Package admin is the governance surface of the fee engine: typed
// setters over per-market fee configuration and the venue congestion
// profile. Every mutation is validated before it takes effect and logged
// after.
package admin

import (
	"log/slog"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/domain"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/engine"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// Service mediates administrative changes to a running orchestrator.
type Service struct {
	orch *engine.Orchestrator
}

func NewService(orch *engine.Orchestrator) *Service {
	return &Service{orch: orch}
}

// SetBaseFee overrides a market's base fee. Zero restores the venue
// default.
func (s *Service) SetBaseFee(marketID string, fee quant.FeePPM) error {
	err := s.orch.UpdateMarketConfig(marketID, func(cfg *domain.MarketFeeConfig) error {
		cfg.BaseFeePPM = fee
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Base fee updated",
		slog.String("market", marketID), slog.Int64("fee_ppm", int64(fee)))
	return nil
}

// SetEmergencyCap overrides a market's escalation cap. Zero restores the
// venue default cap.
func (s *Service) SetEmergencyCap(marketID string, cap quant.FeePPM) error {
	err := s.orch.UpdateMarketConfig(marketID, func(cfg *domain.MarketFeeConfig) error {
		cfg.EmergencyCapPPM = cap
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Emergency cap updated",
		slog.String("market", marketID), slog.Int64("cap_ppm", int64(cap)))
	return nil
}

// PauseFlags selects which engine behaviors to suspend for a market.
// Nil fields keep their current value.
type PauseFlags struct {
	DynamicFees   *bool
	AntiAbuse     *bool
	FeeSkim       *bool
	EmergencyFees *bool
}

// SetPauseFlags updates a market's pause switches.
func (s *Service) SetPauseFlags(marketID string, flags PauseFlags) error {
	err := s.orch.UpdateMarketConfig(marketID, func(cfg *domain.MarketFeeConfig) error {
		if flags.DynamicFees != nil {
			cfg.PauseDynamicFees = *flags.DynamicFees
		}
		if flags.AntiAbuse != nil {
			cfg.PauseAntiAbuse = *flags.AntiAbuse
		}
		if flags.FeeSkim != nil {
			cfg.PauseFeeSkim = *flags.FeeSkim
		}
		if flags.EmergencyFees != nil {
			cfg.PauseEmergencyFees = *flags.EmergencyFees
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Pause flags updated", slog.String("market", marketID))
	return nil
}

// SetEnabled turns a market's fee engine on or off. Disabled markets fall
// back to the flat base fee.
func (s *Service) SetEnabled(marketID string, enabled bool) error {
	err := s.orch.UpdateMarketConfig(marketID, func(cfg *domain.MarketFeeConfig) error {
		cfg.Enabled = enabled
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Market toggled",
		slog.String("market", marketID), slog.Bool("enabled", enabled))
	return nil
}

// SetVolatilityBands replaces a market's volatility thresholds and
// multipliers in one validated step.
func (s *Service) SetVolatilityBands(marketID string, lowBps, highBps, extremeBps int64, multipliersBps [4]int64) error {
	err := s.orch.UpdateMarketConfig(marketID, func(cfg *domain.MarketFeeConfig) error {
		cfg.LowVolThresholdBps = lowBps
		cfg.HighVolThresholdBps = highBps
		cfg.ExtremeVolThresholdBps = extremeBps
		cfg.LowVolMultiplierBps = multipliersBps[0]
		cfg.NormalVolMultiplierBps = multipliersBps[1]
		cfg.HighVolMultiplierBps = multipliersBps[2]
		cfg.ExtremeVolMultiplierBps = multipliersBps[3]
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Volatility bands updated", slog.String("market", marketID))
	return nil
}

// SetVolumeBands replaces a market's volume ratio thresholds and
// multipliers in one validated step.
func (s *Service) SetVolumeBands(marketID string, thresholdsBps, multipliersBps [5]int64) error {
	err := s.orch.UpdateMarketConfig(marketID, func(cfg *domain.MarketFeeConfig) error {
		cfg.VolumeRatioThresholdsBps = thresholdsBps
		cfg.VolumeMultipliersBps = multipliersBps
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Volume bands updated", slog.String("market", marketID))
	return nil
}

// SetCongestionProfile replaces the venue's tier thresholds and
// escalation multipliers.
func (s *Service) SetCongestionProfile(p domain.CongestionProfile) error {
	if err := s.orch.Profiles().Set(s.orch.VenueID(), p); err != nil {
		return err
	}
	slog.Info("Congestion profile updated", slog.String("venue", s.orch.VenueID()))
	return nil
}

// MarketConfig returns a copy of a market's live configuration.
func (s *Service) MarketConfig(marketID string) domain.MarketFeeConfig {
	return s.orch.MarketConfig(marketID)
}
