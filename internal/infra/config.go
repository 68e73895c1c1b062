package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/internal/domain"
	"github.com/blockventurechaincapital-crypto/bvcc-dynamic-fee-hook/pkg/quant"
)

// Config holds every runtime setting for the fee engine. Loaded from
// YAML, then overridden by environment variables where they exist.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		Mode    string `yaml:"mode"` // live | shadow
	} `yaml:"app"`

	Venue struct {
		ID             string                   `yaml:"id"`
		DefaultBaseFee quant.FeePPM             `yaml:"default_base_fee_ppm"`
		Congestion     domain.CongestionProfile `yaml:"congestion"`
	} `yaml:"venue"`

	Feeds struct {
		GasWSURL        string `yaml:"gas_ws_url"`
		GasRestURL      string `yaml:"gas_rest_url"`
		PriceRestURL    string `yaml:"price_rest_url"`
		PollIntervalSec int    `yaml:"poll_interval_sec"`
	} `yaml:"feeds"`

	Storage struct {
		DataDir          string `yaml:"data_dir"` // empty -> workspace default
		SnapshotEverySec int    `yaml:"snapshot_every_sec"`
		SnapshotKeep     int    `yaml:"snapshot_keep"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Venue.ID == "" {
		return fmt.Errorf("venue id is required")
	}
	if c.Venue.DefaultBaseFee < 0 || c.Venue.DefaultBaseFee > domain.MaxBaseFeePPM {
		return fmt.Errorf("default base fee %d outside [0, %d]", c.Venue.DefaultBaseFee, domain.MaxBaseFeePPM)
	}
	if err := c.Venue.Congestion.Validate(); err != nil {
		return fmt.Errorf("congestion profile: %w", err)
	}

	if c.Feeds.GasWSURL != "" && !strings.HasPrefix(c.Feeds.GasWSURL, "ws://") && !strings.HasPrefix(c.Feeds.GasWSURL, "wss://") {
		return fmt.Errorf("invalid gas WS URL: %s", c.Feeds.GasWSURL)
	}
	if c.Feeds.GasRestURL == "" && c.Feeds.GasWSURL == "" {
		return fmt.Errorf("at least one gas feed (ws or rest) is required")
	}
	if c.Feeds.PriceRestURL == "" {
		return fmt.Errorf("price feed URL is required")
	}
	if c.Feeds.PollIntervalSec <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	switch c.App.Mode {
	case "live", "shadow":
	default:
		return fmt.Errorf("unknown mode %q (want live or shadow)", c.App.Mode)
	}
	return nil
}

// applyDefaults fills settings the file may omit.
func applyDefaults(cfg *Config) {
	if cfg.App.Mode == "" {
		cfg.App.Mode = "shadow"
	}
	zero := domain.CongestionProfile{}
	if cfg.Venue.Congestion == zero {
		cfg.Venue.Congestion = domain.DefaultCongestionProfile()
	}
	if cfg.Storage.SnapshotEverySec <= 0 {
		cfg.Storage.SnapshotEverySec = 300
	}
	if cfg.Storage.SnapshotKeep <= 0 {
		cfg.Storage.SnapshotKeep = 5
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// overrideWithEnv lets deploy environments repoint the feeds and data dir
// without editing the config file. Environment wins over the file.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("FEEHOOK_VENUE_ID"); v != "" {
		cfg.Venue.ID = v
	}
	if v := os.Getenv("FEEHOOK_GAS_WS_URL"); v != "" {
		cfg.Feeds.GasWSURL = v
	}
	if v := os.Getenv("FEEHOOK_GAS_REST_URL"); v != "" {
		cfg.Feeds.GasRestURL = v
	}
	if v := os.Getenv("FEEHOOK_PRICE_REST_URL"); v != "" {
		cfg.Feeds.PriceRestURL = v
	}
	if v := os.Getenv("FEEHOOK_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("FEEHOOK_MODE"); v != "" {
		cfg.App.Mode = v
	}
}
