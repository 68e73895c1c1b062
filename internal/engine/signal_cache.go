package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// SignalCacheTTL bounds how often the congestion signal is re-sampled:
// at most once per interval, regardless of decision rate.
const SignalCacheTTL quant.TimeStamp = 60

// SignalSource supplies the live congestion measurement (e.g. an HTTP gas
// oracle). Sample is only hit when the cache is stale.
type SignalSource interface {
	Sample() (quant.SignalMicros, error)
}

// SignalCache holds the last observed congestion signal and its sample
// time. Streaming feeds push into it with Store; decisions read through
// Get, which re-samples the source only when the cached value has aged
// past the TTL. Time is an explicit parameter so tests run on a synthetic
// clock.
type SignalCache struct {
	mu        sync.Mutex
	source    SignalSource
	value     quant.SignalMicros
	sampledAt quant.TimeStamp
	primed    bool
}

func NewSignalCache(source SignalSource) *SignalCache {
	return &SignalCache{source: source}
}

// Get returns the cached signal, refreshing from the source at most once
// per SignalCacheTTL. A refresh failure falls back to the previous value
// if one exists.
func (c *SignalCache) Get(now quant.TimeStamp) (quant.SignalMicros, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.primed && now-c.sampledAt < SignalCacheTTL {
		return c.value, nil
	}

	v, err := c.source.Sample()
	if err != nil {
		if c.primed {
			return c.value, nil
		}
		return 0, err
	}

	c.value = v
	c.sampledAt = now
	c.primed = true
	return v, nil
}

// Store installs a signal pushed by a streaming feed, making it the cached
// value as of now.
func (c *SignalCache) Store(v quant.SignalMicros, now quant.TimeStamp) {
	c.mu.Lock()
	c.value = v
	c.sampledAt = now
	c.primed = true
	c.mu.Unlock()
}

// Refresh samples the source unconditionally, bypassing the TTL. The
// cached value survives a failed refresh.
func (c *SignalCache) Refresh(now quant.TimeStamp) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.source.Sample()
	if err != nil {
		return err
	}

	c.value = v
	c.sampledAt = now
	c.primed = true
	return nil
}

// Poll refreshes the cache at the given interval until the context ends,
// keeping it warm through decision lulls and streaming-feed outages.
func (c *SignalCache) Poll(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Refresh(quant.TimeStamp(time.Now().Unix())); err != nil {
				slog.Warn("Signal poll failed", slog.Any("error", err))
			}
		}
	}
}
