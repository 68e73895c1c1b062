package infra

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// gasOracleResponse is the REST gas oracle payload. The gas price comes as
// a decimal string in gwei.
type gasOracleResponse struct {
	Status string `json:"status"`
	Result struct {
		ProposeGasPrice string `json:"propose_gas_price"`
	} `json:"result"`
}

// GasPoller samples congestion from a REST gas oracle on demand. It is
// the pull-side SignalSource behind the decision cache; the breaker and
// limiter keep a flapping oracle from stalling decisions.
type GasPoller struct {
	url        string
	httpClient *http.Client
	breaker    *CircuitBreaker
	limiter    *RateLimiter
}

func NewGasPoller(url string) *GasPoller {
	return &GasPoller{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		breaker:    NewCircuitBreaker(DefaultCircuitBreakerConfig("gas-oracle")),
		limiter:    NewRateLimiter(5, 2), // 2 req/s, burst 5
	}
}

// Sample fetches the current gas price and converts it to fixed point.
func (p *GasPoller) Sample() (quant.SignalMicros, error) {
	if !p.breaker.Allow() {
		return 0, fmt.Errorf("gas oracle circuit open")
	}
	if !p.limiter.TryAcquire() {
		return 0, fmt.Errorf("gas oracle rate limited")
	}

	resp, err := p.httpClient.Get(p.url)
	if err != nil {
		p.breaker.RecordFailure()
		return 0, fmt.Errorf("gas oracle request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.breaker.RecordFailure()
		return 0, fmt.Errorf("gas oracle status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		p.breaker.RecordFailure()
		return 0, fmt.Errorf("gas oracle read: %w", err)
	}

	signal, err := parseGasResponse(body)
	if err != nil {
		p.breaker.RecordFailure()
		return 0, err
	}

	p.breaker.RecordSuccess()
	return signal, nil
}

// parseGasResponse decodes the oracle payload. The gwei string goes
// through decimal so precision never touches a float.
func parseGasResponse(body []byte) (quant.SignalMicros, error) {
	var r gasOracleResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return 0, fmt.Errorf("gas oracle decode: %w", err)
	}
	if r.Result.ProposeGasPrice == "" {
		return 0, fmt.Errorf("gas oracle response missing gas price")
	}

	d, err := decimal.NewFromString(r.Result.ProposeGasPrice)
	if err != nil {
		return 0, fmt.Errorf("gas oracle price %q: %w", r.Result.ProposeGasPrice, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("gas oracle price %q is negative", r.Result.ProposeGasPrice)
	}

	micros := d.Mul(decimal.NewFromInt(quant.PriceScale)).IntPart()
	return quant.SignalMicros(micros), nil
}
