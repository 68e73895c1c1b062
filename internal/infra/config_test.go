package infra

import (
	"os"
	"path/filepath"
	"testing"
)

const testConfigYAML = `
app:
  name: bvcc-fee-hook
  version: "1.0.0"
  mode: shadow

venue:
  id: arbitrum-one
  default_base_fee_ppm: 3000

feeds:
  gas_ws_url: wss://oracle.example.com/gas
  gas_rest_url: https://oracle.example.com/api/gas
  price_rest_url: https://oracle.example.com/api/price
  poll_interval_sec: 60

storage:
  data_dir: /tmp/fee-hook

logging:
  level: debug
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t, testConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Venue.ID != "arbitrum-one" {
		t.Errorf("venue id = %q", cfg.Venue.ID)
	}
	if cfg.Venue.DefaultBaseFee != 3000 {
		t.Errorf("default base fee = %d", cfg.Venue.DefaultBaseFee)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}

	// Omitted sections fall back to defaults.
	if cfg.Venue.Congestion.HighMultiplierBps == 0 {
		t.Error("congestion profile should default when omitted")
	}
	if cfg.Storage.SnapshotEverySec != 300 || cfg.Storage.SnapshotKeep != 5 {
		t.Errorf("snapshot defaults = %d/%d", cfg.Storage.SnapshotEverySec, cfg.Storage.SnapshotKeep)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("FEEHOOK_VENUE_ID", "base-mainnet")
	t.Setenv("FEEHOOK_GAS_REST_URL", "https://other.example.com/gas")

	cfg, err := LoadConfig(writeTestConfig(t, testConfigYAML))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Venue.ID != "base-mainnet" {
		t.Errorf("env override lost: venue id = %q", cfg.Venue.ID)
	}
	if cfg.Feeds.GasRestURL != "https://other.example.com/gas" {
		t.Errorf("env override lost: gas url = %q", cfg.Feeds.GasRestURL)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"Missing Venue", `
app: {mode: shadow}
feeds: {gas_rest_url: "https://x", price_rest_url: "https://y", poll_interval_sec: 60}
`},
		{"Bad WS Scheme", `
venue: {id: v}
feeds: {gas_ws_url: "http://not-ws", gas_rest_url: "https://x", price_rest_url: "https://y", poll_interval_sec: 60}
`},
		{"No Gas Feed", `
venue: {id: v}
feeds: {price_rest_url: "https://y", poll_interval_sec: 60}
`},
		{"Bad Mode", `
app: {mode: yolo}
venue: {id: v}
feeds: {gas_rest_url: "https://x", price_rest_url: "https://y", poll_interval_sec: 60}
`},
		{"Zero Poll Interval", `
venue: {id: v}
feeds: {gas_rest_url: "https://x", price_rest_url: "https://y"}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeTestConfig(t, tt.yaml)); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
