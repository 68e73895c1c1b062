package infra

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// priceCacheTTL bounds how long a fetched reference price is reused. The
// settlement path may ask for the same market many times per block.
const priceCacheTTL = 5 * time.Second

type priceResponse struct {
	Market string `json:"market"`
	Price  string `json:"price"`
}

type cachedPrice struct {
	price     quant.PriceMicros
	fetchedAt time.Time
}

// PriceFeed fetches per-market reference prices from a REST price oracle,
// with a short-lived cache in front of it.
type PriceFeed struct {
	baseURL    string
	httpClient *http.Client
	breaker    *CircuitBreaker
	limiter    *RateLimiter

	mu    sync.RWMutex
	cache map[string]cachedPrice
}

func NewPriceFeed(baseURL string) *PriceFeed {
	return &PriceFeed{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		breaker:    NewCircuitBreaker(DefaultCircuitBreakerConfig("price-oracle")),
		limiter:    NewRateLimiter(10, 5), // 5 req/s, burst 10
		cache:      make(map[string]cachedPrice),
	}
}

// ReferencePrice returns the oracle price for a market, serving from the
// cache when fresh.
func (p *PriceFeed) ReferencePrice(marketID string) (quant.PriceMicros, error) {
	p.mu.RLock()
	c, ok := p.cache[marketID]
	p.mu.RUnlock()
	if ok && time.Since(c.fetchedAt) < priceCacheTTL {
		return c.price, nil
	}

	price, err := p.fetch(marketID)
	if err != nil {
		// A recently expired entry beats failing the decision outright.
		if ok {
			return c.price, nil
		}
		return 0, err
	}

	p.mu.Lock()
	p.cache[marketID] = cachedPrice{price: price, fetchedAt: time.Now()}
	p.mu.Unlock()
	return price, nil
}

func (p *PriceFeed) fetch(marketID string) (quant.PriceMicros, error) {
	if !p.breaker.Allow() {
		return 0, fmt.Errorf("price oracle circuit open")
	}
	if !p.limiter.TryAcquire() {
		return 0, fmt.Errorf("price oracle rate limited")
	}

	reqURL := fmt.Sprintf("%s?market=%s", p.baseURL, url.QueryEscape(marketID))
	resp, err := p.httpClient.Get(reqURL)
	if err != nil {
		p.breaker.RecordFailure()
		return 0, fmt.Errorf("price oracle request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.breaker.RecordFailure()
		return 0, fmt.Errorf("price oracle status %d for %s", resp.StatusCode, marketID)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		p.breaker.RecordFailure()
		return 0, fmt.Errorf("price oracle read: %w", err)
	}

	price, err := parsePriceResponse(body)
	if err != nil {
		p.breaker.RecordFailure()
		return 0, err
	}

	p.breaker.RecordSuccess()
	return price, nil
}

func parsePriceResponse(body []byte) (quant.PriceMicros, error) {
	var r priceResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return 0, fmt.Errorf("price oracle decode: %w", err)
	}
	if r.Price == "" {
		return 0, fmt.Errorf("price oracle response missing price")
	}

	d, err := decimal.NewFromString(r.Price)
	if err != nil {
		return 0, fmt.Errorf("price oracle price %q: %w", r.Price, err)
	}
	if d.Sign() <= 0 {
		return 0, fmt.Errorf("price oracle price %q not positive", r.Price)
	}

	return quant.PriceMicros(d.Mul(decimal.NewFromInt(quant.PriceScale)).IntPart()), nil
}
