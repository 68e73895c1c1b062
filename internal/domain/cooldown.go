package domain

import (
	"sync"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// CooldownWindow is the anti-abuse window: a requester repeating a trade on
// the same market strictly inside it pays the flat surcharge.
const CooldownWindow quant.TimeStamp = 300

// CooldownKey identifies a (market, requester) pair.
type CooldownKey struct {
	MarketID    string
	RequesterID string
}

// CooldownTracker maps (market, requester) to the last accepted trade time.
// Entries are overwritten on every accepted trade and never deleted;
// monotonic overwrite is sufficient. Note this means a penalized trade also
// refreshes the requester's own penalty window - deliberate policy, see
// DESIGN.md. Safe for concurrent use across markets.
type CooldownTracker struct {
	mu   sync.RWMutex
	last map[CooldownKey]quant.TimeStamp
}

func NewCooldownTracker() *CooldownTracker {
	return &CooldownTracker{last: make(map[CooldownKey]quant.TimeStamp)}
}

// InCooldown reports whether the requester's previous accepted trade on the
// market was strictly less than CooldownWindow ago.
func (t *CooldownTracker) InCooldown(marketID, requesterID string, now quant.TimeStamp) bool {
	t.mu.RLock()
	lastTs, ok := t.last[CooldownKey{MarketID: marketID, RequesterID: requesterID}]
	t.mu.RUnlock()
	if !ok {
		return false
	}
	return now-lastTs < CooldownWindow
}

// Touch records now as the requester's last accepted trade time on the
// market, regardless of whether a penalty applied.
func (t *CooldownTracker) Touch(marketID, requesterID string, now quant.TimeStamp) {
	t.mu.Lock()
	t.last[CooldownKey{MarketID: marketID, RequesterID: requesterID}] = now
	t.mu.Unlock()
}

// Len returns the number of tracked pairs (observability only).
func (t *CooldownTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.last)
}
