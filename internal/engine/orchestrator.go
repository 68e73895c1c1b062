package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/domain"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/event"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/safe"
)

// PriceSource supplies the current reference price for a market, read-only.
type PriceSource interface {
	ReferencePrice(marketID string) (quant.PriceMicros, error)
}

// EventSink receives audit/accounting events. Emit must not block the
// decision path for long; sinks that persist should buffer. Decision
// events are pooled: a sink must copy anything it retains past Emit.
type EventSink interface {
	Emit(ev event.Event)
}

// marketState bundles everything the engine owns for one market.
type marketState struct {
	cfg    domain.MarketFeeConfig
	window *domain.PriceWindow
	volume *domain.VolumeAggregator
}

// Orchestrator sequences the fee decision per incoming trade request and
// applies the post-settlement window updates. The host guarantees that two
// trades on the same market are never applied concurrently; the engine is
// correct under strict sequential application per market and uses its
// mutex only for map/config access, so independent markets proceed in
// parallel.
type Orchestrator struct {
	venueID        string
	defaultBaseFee quant.FeePPM

	profiles *domain.ProfileRegistry
	signals  *SignalCache
	prices   PriceSource
	sink     EventSink

	mu        sync.RWMutex
	markets   map[string]*marketState
	cooldowns *domain.CooldownTracker
	lastSeq   uint64 // accessed atomically via quant.NextSeq
}

// Options configures an Orchestrator.
type Options struct {
	VenueID        string
	DefaultBaseFee quant.FeePPM
	Profiles       *domain.ProfileRegistry
	Signals        *SignalCache
	Prices         PriceSource
	Sink           EventSink // optional
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.Profiles == nil {
		opts.Profiles = domain.NewProfileRegistry()
	}
	return &Orchestrator{
		venueID:        opts.VenueID,
		defaultBaseFee: opts.DefaultBaseFee,
		profiles:       opts.Profiles,
		signals:        opts.Signals,
		prices:         opts.Prices,
		sink:           opts.Sink,
		markets:        make(map[string]*marketState),
		cooldowns:      domain.NewCooldownTracker(),
	}
}

// market returns the state for a market, installing defaults on first
// observation.
func (o *Orchestrator) market(marketID string) *marketState {
	o.mu.RLock()
	st, ok := o.markets[marketID]
	o.mu.RUnlock()
	if ok {
		return st
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if st, ok = o.markets[marketID]; ok {
		return st
	}
	st = &marketState{
		cfg:    domain.DefaultMarketFeeConfig(),
		window: &domain.PriceWindow{},
		volume: &domain.VolumeAggregator{},
	}
	o.markets[marketID] = st
	return st
}

func (o *Orchestrator) emit(ev event.Event) {
	if o.sink != nil {
		o.sink.Emit(ev)
	}
}

func (o *Orchestrator) seq() uint64 {
	return quant.NextSeq(&o.lastSeq)
}

// OnTradeRequest decides the fee for a pending trade. It must be called
// exactly once per trade, before settlement. The decision pass completes
// and returns before any post-trade state update for the same trade.
func (o *Orchestrator) OnTradeRequest(marketID, requesterID string, now quant.TimeStamp) (Decision, error) {
	st := o.market(marketID)

	signal, err := o.signals.Get(now)
	if err != nil {
		return Decision{}, fmt.Errorf("congestion signal unavailable: %w", err)
	}
	profile := o.profiles.Get(o.venueID)

	o.mu.RLock()
	cfg := st.cfg // value copy: one consistent config snapshot per request
	o.mu.RUnlock()

	var s stage
	tier := profile.Classify(signal)
	s.advance(stageTierClassified)

	baseFee := cfg.EffectiveBaseFee(o.defaultBaseFee)
	fee := baseFee
	strategy := StrategyBaseline

	switch {
	case tier == domain.TierNormal:
		if cfg.Enabled && !cfg.PauseDynamicFees {
			price, perr := o.prices.ReferencePrice(marketID)
			if perr != nil {
				return Decision{}, fmt.Errorf("reference price unavailable for %s: %w", marketID, perr)
			}
			volMult := domain.VolatilityMultiplierBps(&cfg, st.window, price)
			volumeMult := domain.VolumeMultiplierBps(&cfg, st.volume)
			fee = domain.DynamicFee(baseFee, volMult, volumeMult)
			strategy = StrategyDynamic
		}
	default:
		// Elevated congestion. Escalation is suppressed while emergency
		// fees are paused, but the tier is still reported.
		if cfg.Enabled && !cfg.PauseEmergencyFees {
			escalated := domain.EscalatedFee(baseFee, profile.TierMultiplierBps(tier))
			var hit bool
			fee, hit = domain.ClampFee(escalated, cfg.EffectiveEmergencyCap())
			if hit {
				o.emit(&event.EmergencyCapAppliedEvent{
					BaseEvent:   event.BaseEvent{Seq: o.seq(), Ts: now},
					MarketID:    marketID,
					UncappedPPM: escalated,
					CapPPM:      cfg.EffectiveEmergencyCap(),
				})
			}
			strategy = StrategyEscalated
		}
	}
	s.advance(stageFeeComputed)

	penalty := false
	if !cfg.PauseAntiAbuse && o.cooldowns.InCooldown(marketID, requesterID, now) {
		fee = quant.FeePPM(safe.Add(int64(fee), int64(domain.CooldownSurchargePPM)))
		penalty = true
	}
	// Every accepted trade refreshes the window, penalized or not.
	o.cooldowns.Touch(marketID, requesterID, now)
	s.advance(stagePenaltyEvaluated)

	uncapped := fee
	fee, breakerHit := domain.ClampFee(fee, domain.AbsoluteCapPPM)
	if breakerHit {
		o.emit(&event.CircuitBreakerAppliedEvent{
			BaseEvent:   event.BaseEvent{Seq: o.seq(), Ts: now},
			MarketID:    marketID,
			UncappedPPM: uncapped,
		})
	}
	s.advance(stageCapped)

	// Mathematically unreachable given the clamp above; guard anyway
	// before the value feeds settlement.
	if fee > domain.AbsoluteCapPPM || fee < 0 {
		panic(fmt.Sprintf("FEE_CAP_INVARIANT_BROKEN: %d", fee))
	}
	s.advance(stageFinalized)

	ev := event.AcquireFeeDecisionEvent()
	ev.BaseEvent = event.BaseEvent{Seq: o.seq(), Ts: now}
	ev.VenueID = o.venueID
	ev.MarketID = marketID
	ev.RequesterID = requesterID
	ev.BaseFeePPM = baseFee
	ev.FinalFeePPM = fee
	ev.Signal = signal
	ev.Tier = tier.String()
	ev.Strategy = strategy
	ev.Penalty = penalty
	o.emit(ev)
	event.ReleaseFeeDecisionEvent(ev)

	if !cfg.PauseFeeSkim {
		o.emit(&event.FeeSkimEvent{
			BaseEvent: event.BaseEvent{Seq: o.seq(), Ts: now},
			MarketID:  marketID,
			FeePPM:    fee,
		})
	}

	slog.Debug("fee decision",
		slog.String("market", marketID),
		slog.String("requester", requesterID),
		slog.String("tier", tier.String()),
		slog.String("strategy", strategy),
		slog.Bool("penalty", penalty),
		slog.Int64("fee_ppm", int64(fee)))

	return Decision{FeePPM: fee, Tier: tier, Strategy: strategy, Penalty: penalty, Signal: signal}, nil
}

// OnTradeSettled applies the post-settlement pass: volume aggregation and
// conditional snapshot capture. Called at most once per trade, with the
// realized output amount, after the decision has been returned. The
// reference price observed here is recorded on the settlement event so a
// replay captures the historical price instead of re-fetching.
func (o *Orchestrator) OnTradeSettled(marketID string, realizedOut quant.QtySats, now quant.TimeStamp) {
	price, err := o.prices.ReferencePrice(marketID)
	if err != nil {
		slog.Warn("snapshot skipped: reference price unavailable",
			slog.String("market", marketID), slog.Any("error", err))
		price = 0
	}

	o.applySettlement(marketID, realizedOut, price, now)

	o.emit(&event.TradeSettledEvent{
		BaseEvent:   event.BaseEvent{Seq: o.seq(), Ts: now},
		MarketID:    marketID,
		RealizedOut: realizedOut,
		RefPrice:    price,
	})
}

// ReplaySettlement applies a persisted settlement without re-emitting it.
// Used exclusively by the replayer; the same code path as live, fed with
// the price recorded at settlement.
func (o *Orchestrator) ReplaySettlement(ev *event.TradeSettledEvent) {
	o.applySettlement(ev.MarketID, ev.RealizedOut, ev.RefPrice, ev.Ts)
	if ev.Seq > atomic.LoadUint64(&o.lastSeq) {
		atomic.StoreUint64(&o.lastSeq, ev.Seq)
	}
}

func (o *Orchestrator) applySettlement(marketID string, realizedOut quant.QtySats, price quant.PriceMicros, now quant.TimeStamp) {
	st := o.market(marketID)

	o.mu.RLock()
	cfg := st.cfg
	o.mu.RUnlock()

	st.volume.Record(realizedOut, now)

	if price <= 0 {
		return
	}

	// Precise sampling only once the market carries enough 24-period
	// volume; quiet markets fall back to the coarse lite interval.
	minAge := domain.LiteSnapshotAge
	if st.volume.Total() >= cfg.PreciseVolumeThreshold {
		minAge = domain.MinSnapshotAge
	}
	st.window.Capture(price, now, minAge)
}

// MarketConfig returns a copy of the market's configuration, creating the
// default on first observation.
func (o *Orchestrator) MarketConfig(marketID string) domain.MarketFeeConfig {
	st := o.market(marketID)
	o.mu.RLock()
	defer o.mu.RUnlock()
	return st.cfg
}

// UpdateMarketConfig mutates a market's configuration through fn and
// commits only if the result validates. Administrative path; never runs
// concurrently with a decision on the same snapshot (decisions copy the
// config under the read lock).
func (o *Orchestrator) UpdateMarketConfig(marketID string, fn func(cfg *domain.MarketFeeConfig) error) error {
	st := o.market(marketID)

	o.mu.Lock()
	defer o.mu.Unlock()
	next := st.cfg
	if err := fn(&next); err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("rejected market config for %s: %w", marketID, err)
	}
	st.cfg = next
	return nil
}

// Profiles exposes the venue profile registry for the administrative path.
func (o *Orchestrator) Profiles() *domain.ProfileRegistry { return o.profiles }

// VenueID returns the venue this engine instance decides for.
func (o *Orchestrator) VenueID() string { return o.venueID }

// MarketIDs returns the ids of all observed markets.
func (o *Orchestrator) MarketIDs() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	ids := make([]string, 0, len(o.markets))
	for id := range o.markets {
		ids = append(ids, id)
	}
	return ids
}

// ExportMarket returns the persistable state of one market.
func (o *Orchestrator) ExportMarket(marketID string) (domain.MarketSnapshot, bool) {
	o.mu.RLock()
	st, ok := o.markets[marketID]
	o.mu.RUnlock()
	if !ok {
		return domain.MarketSnapshot{}, false
	}
	return domain.MarketSnapshot{
		Config: st.cfg,
		Window: st.window.Snapshots(),
		Volume: st.volume.State(),
	}, true
}

// RestoreMarket installs persisted market state, replacing any existing
// state for the id. Startup path only.
func (o *Orchestrator) RestoreMarket(marketID string, snap domain.MarketSnapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.markets[marketID] = &marketState{
		cfg:    snap.Config,
		window: domain.RestoreWindow(snap.Window),
		volume: domain.RestoreVolume(snap.Volume),
	}
}
