package domain

// MarketSnapshot is the persistable form of one market's engine state:
// configuration, the price window oldest-first, and the volume aggregate.
type MarketSnapshot struct {
	Config MarketFeeConfig `json:"config"`
	Window []PriceSnapshot `json:"window"`
	Volume VolumeState     `json:"volume"`
}
