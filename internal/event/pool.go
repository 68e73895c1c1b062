package event

import "sync"

// FeeDecisionEvent is the hot allocation of the decision path: one per
// trade. Pool it so the steady state allocates nothing.
var feeDecisionPool = sync.Pool{
	New: func() any { return new(FeeDecisionEvent) },
}

// AcquireFeeDecisionEvent returns a cleared event from the pool.
func AcquireFeeDecisionEvent() *FeeDecisionEvent {
	return feeDecisionPool.Get().(*FeeDecisionEvent)
}

// ReleaseFeeDecisionEvent resets and returns an event to the pool. The
// caller must not retain the pointer after release.
func ReleaseFeeDecisionEvent(ev *FeeDecisionEvent) {
	*ev = FeeDecisionEvent{}
	feeDecisionPool.Put(ev)
}

// Warmup pre-populates the pool to avoid first-trade allocation spikes.
func Warmup() {
	const n = 64
	evs := make([]*FeeDecisionEvent, 0, n)
	for i := 0; i < n; i++ {
		evs = append(evs, AcquireFeeDecisionEvent())
	}
	for _, ev := range evs {
		ReleaseFeeDecisionEvent(ev)
	}
}
