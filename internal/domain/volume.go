package domain

import (
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/safe"
)

const (
	// VolumePeriods is the length of the rolling volume window in periods.
	VolumePeriods = 24
	// PeriodLength is the fixed volume bucket length.
	PeriodLength quant.TimeStamp = 3600
)

// VolumeState is the persistable form of a VolumeAggregator.
type VolumeState struct {
	CurrentPeriod   quant.QtySats   `json:"current_period"`
	Accumulated     quant.QtySats   `json:"accumulated"`
	LastPeriodStart quant.TimeStamp `json:"last_period_start"`
	PeriodsRecorded int             `json:"periods_recorded"`
}

// VolumeAggregator keeps an approximate fixed-length rolling volume sum
// without storing 24 discrete buckets: once 24 periods are recorded, each
// further rollover decays the accumulated sum by 23/24 instead of growing
// it. The orchestrator's post-settlement pass is the only writer, applied
// in realized-trade order per market.
type VolumeAggregator struct {
	currentPeriod   quant.QtySats
	accumulated     quant.QtySats
	lastPeriodStart quant.TimeStamp
	periodsRecorded int
}

// Record adds a realized volume delta, rolling the period over first when
// more than one period length has elapsed since the last period start.
func (a *VolumeAggregator) Record(delta quant.QtySats, now quant.TimeStamp) {
	if delta < 0 {
		panic("FEE_VOLUME_NEGATIVE_DELTA")
	}

	if a.lastPeriodStart == 0 {
		a.lastPeriodStart = now
	} else if now-a.lastPeriodStart >= PeriodLength {
		a.rollover()
		a.lastPeriodStart = now
	}

	a.currentPeriod = quant.QtySats(safe.Add(int64(a.currentPeriod), int64(delta)))
}

func (a *VolumeAggregator) rollover() {
	a.accumulated = quant.QtySats(safe.Add(int64(a.accumulated), int64(a.currentPeriod)))
	a.currentPeriod = 0

	if a.periodsRecorded < VolumePeriods {
		a.periodsRecorded++
		return
	}
	// At capacity: decay instead of growing unbounded.
	a.accumulated = quant.QtySats(safe.MulDiv(int64(a.accumulated), VolumePeriods-1, VolumePeriods))
}

// Total returns the 24-period volume including the in-progress period.
// Feeds the precise-data gate for snapshot sampling.
func (a *VolumeAggregator) Total() quant.QtySats {
	return quant.QtySats(safe.Add(int64(a.accumulated), int64(a.currentPeriod)))
}

func (a *VolumeAggregator) CurrentPeriod() quant.QtySats { return a.currentPeriod }
func (a *VolumeAggregator) Accumulated() quant.QtySats   { return a.accumulated }
func (a *VolumeAggregator) PeriodsRecorded() int         { return a.periodsRecorded }

// State exports the aggregator for persistence.
func (a *VolumeAggregator) State() VolumeState {
	return VolumeState{
		CurrentPeriod:   a.currentPeriod,
		Accumulated:     a.accumulated,
		LastPeriodStart: a.lastPeriodStart,
		PeriodsRecorded: a.periodsRecorded,
	}
}

// RestoreVolume rebuilds an aggregator from a persisted state.
func RestoreVolume(st VolumeState) *VolumeAggregator {
	periods := st.PeriodsRecorded
	if periods > VolumePeriods {
		periods = VolumePeriods
	}
	return &VolumeAggregator{
		currentPeriod:   st.CurrentPeriod,
		accumulated:     st.Accumulated,
		lastPeriodStart: st.LastPeriodStart,
		periodsRecorded: periods,
	}
}
