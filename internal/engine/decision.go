package engine

import (
	"fmt"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/domain"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// Strategy labels explain which fee path produced a decision.
const (
	StrategyDynamic   = "dynamic"   // low congestion, windowed multipliers
	StrategyEscalated = "escalated" // congestion tier multiplier
	StrategyBaseline  = "baseline"  // base fee passed through unmodified
)

// Decision is the finalized outcome of one trade request.
type Decision struct {
	FeePPM   quant.FeePPM
	Tier     domain.Tier
	Strategy string
	Penalty  bool
	Signal   quant.SignalMicros
}

// stage tracks the decision state machine:
// tierClassified -> feeComputed -> penaltyEvaluated -> capped -> finalized.
// Transitions are asserted; an out-of-order advance is a defect, not a
// recoverable condition.
type stage uint8

const (
	stageStart stage = iota
	stageTierClassified
	stageFeeComputed
	stagePenaltyEvaluated
	stageCapped
	stageFinalized
)

func (s *stage) advance(to stage) {
	if to != *s+1 {
		panic(fmt.Sprintf("FEE_DECISION_STAGE_SKEW: %d -> %d", *s, to))
	}
	*s = to
}
