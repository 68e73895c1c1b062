package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// countingSignal counts how often the cache actually hits the source.
type countingSignal struct {
	value quant.SignalMicros
	err   error
	calls int
}

func (s *countingSignal) Sample() (quant.SignalMicros, error) {
	s.calls++
	return s.value, s.err
}

func TestSignalCache_TTL(t *testing.T) {
	src := &countingSignal{value: 42}
	c := NewSignalCache(src)

	v, err := c.Get(1000)
	if err != nil || v != 42 {
		t.Fatalf("first Get = %d, %v", v, err)
	}
	if src.calls != 1 {
		t.Fatalf("calls = %d, want 1", src.calls)
	}

	// Inside the TTL: served from cache even though the source moved.
	src.value = 99
	v, _ = c.Get(1000 + SignalCacheTTL - 1)
	if v != 42 {
		t.Errorf("Get inside TTL = %d, want cached 42", v)
	}
	if src.calls != 1 {
		t.Errorf("calls = %d, cache should not have refreshed", src.calls)
	}

	// At exactly the TTL boundary the cache is stale.
	v, _ = c.Get(1000 + SignalCacheTTL)
	if v != 99 {
		t.Errorf("Get at TTL = %d, want refreshed 99", v)
	}
	if src.calls != 2 {
		t.Errorf("calls = %d, want 2", src.calls)
	}
}

func TestSignalCache_StaleFallback(t *testing.T) {
	src := &countingSignal{value: 42}
	c := NewSignalCache(src)

	if _, err := c.Get(1000); err != nil {
		t.Fatal(err)
	}

	// Source starts failing: the cache keeps serving the last good value.
	src.err = errors.New("oracle down")
	v, err := c.Get(1000 + SignalCacheTTL)
	if err != nil {
		t.Fatalf("Get with stale fallback: %v", err)
	}
	if v != 42 {
		t.Errorf("fallback value = %d, want 42", v)
	}
}

func TestSignalCache_UnprimedErrorSurfaces(t *testing.T) {
	src := &countingSignal{err: errors.New("oracle down")}
	c := NewSignalCache(src)

	if _, err := c.Get(1000); err == nil {
		t.Fatal("unprimed cache with a failing source must error")
	}
}

func TestSignalCache_RefreshBypassesTTL(t *testing.T) {
	src := &countingSignal{value: 42}
	c := NewSignalCache(src)

	if _, err := c.Get(1000); err != nil {
		t.Fatal(err)
	}

	// Well inside the TTL: Refresh must hit the source anyway.
	src.value = 99
	if err := c.Refresh(1010); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if src.calls != 2 {
		t.Errorf("calls = %d, want 2", src.calls)
	}
	v, _ := c.Get(1020)
	if v != 99 {
		t.Errorf("Get after refresh = %d, want 99", v)
	}

	t.Run("Failure Keeps Cached Value", func(t *testing.T) {
		src.err = errors.New("oracle down")
		if err := c.Refresh(1030); err == nil {
			t.Fatal("Refresh with failing source must error")
		}
		v, err := c.Get(1040)
		if err != nil || v != 99 {
			t.Errorf("Get after failed refresh = %d, %v; want cached 99", v, err)
		}
	})
}

func TestSignalCache_PollKeepsCacheWarm(t *testing.T) {
	src := &countingSignal{value: 7}
	c := NewSignalCache(src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Poll(ctx, 5*time.Millisecond)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	if src.calls < 2 {
		t.Errorf("source sampled %d times, want repeated polls", src.calls)
	}
	// The cache is primed: a failing source no longer matters for Get.
	src.err = errors.New("oracle down")
	if v, err := c.Get(quant.TimeStamp(time.Now().Unix())); err != nil || v != 7 {
		t.Errorf("Get after polling = %d, %v; want primed 7", v, err)
	}
}

func TestSignalCache_StorePrimes(t *testing.T) {
	src := &countingSignal{err: errors.New("oracle down")}
	c := NewSignalCache(src)

	// A streaming feed pushes; Get never needs the polling source.
	c.Store(7, 1000)
	v, err := c.Get(1000 + 10)
	if err != nil || v != 7 {
		t.Fatalf("Get after Store = %d, %v", v, err)
	}
	if src.calls != 0 {
		t.Errorf("source sampled %d times, want 0", src.calls)
	}
}
