package event

import (
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// Type defines the type of event.
type Type uint16

const (
	EvFeeDecision Type = iota + 1
	EvEmergencyCapApplied
	EvCircuitBreakerApplied
	EvFeeSkim
	EvTradeSettled
)

// Event is the interface for all audit/accounting events.
type Event interface {
	GetSeq() uint64
	GetTs() quant.TimeStamp
	GetType() Type
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	Seq uint64          `json:"seq"`
	Ts  quant.TimeStamp `json:"ts"`
}

func (e BaseEvent) GetSeq() uint64         { return e.Seq }
func (e BaseEvent) GetTs() quant.TimeStamp { return e.Ts }

// FeeDecisionEvent records one finalized fee decision: the structured
// explanation of why a given fee was charged.
type FeeDecisionEvent struct {
	BaseEvent
	VenueID     string             `json:"venue_id"`
	MarketID    string             `json:"market_id"`
	RequesterID string             `json:"requester_id"`
	BaseFeePPM  quant.FeePPM       `json:"base_fee_ppm"`
	FinalFeePPM quant.FeePPM       `json:"final_fee_ppm"`
	Signal      quant.SignalMicros `json:"signal"`
	Tier        string             `json:"tier"`
	Strategy    string             `json:"strategy"`
	Penalty     bool               `json:"penalty"`
}

func (e FeeDecisionEvent) GetType() Type { return EvFeeDecision }

// EmergencyCapAppliedEvent records a per-market emergency cap clamping an
// escalated fee.
type EmergencyCapAppliedEvent struct {
	BaseEvent
	MarketID    string       `json:"market_id"`
	UncappedPPM quant.FeePPM `json:"uncapped_ppm"`
	CapPPM      quant.FeePPM `json:"cap_ppm"`
}

func (e EmergencyCapAppliedEvent) GetType() Type { return EvEmergencyCapApplied }

// CircuitBreakerAppliedEvent records the absolute cap clamping a final fee.
type CircuitBreakerAppliedEvent struct {
	BaseEvent
	MarketID    string       `json:"market_id"`
	UncappedPPM quant.FeePPM `json:"uncapped_ppm"`
}

func (e CircuitBreakerAppliedEvent) GetType() Type { return EvCircuitBreakerApplied }

// FeeSkimEvent is the accounting record of a fee accrual, suppressed while
// the market's fee-skim pause flag is set.
type FeeSkimEvent struct {
	BaseEvent
	MarketID string       `json:"market_id"`
	FeePPM   quant.FeePPM `json:"fee_ppm"`
}

func (e FeeSkimEvent) GetType() Type { return EvFeeSkim }

// TradeSettledEvent records realized output volume post-settlement. It is
// the event the replayer feeds back to rebuild window state, so it carries
// the reference price observed at settlement: a replay must capture the
// historical price, not whatever an oracle serves at replay time. RefPrice
// is zero when no price was available at settlement.
type TradeSettledEvent struct {
	BaseEvent
	MarketID    string            `json:"market_id"`
	RealizedOut quant.QtySats     `json:"realized_out"`
	RefPrice    quant.PriceMicros `json:"ref_price"`
}

func (e TradeSettledEvent) GetType() Type { return EvTradeSettled }
