// Package config loads and validates the simulation configuration from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Ritinpaul/symbios-core/internal/resource"
)

// Config is the full configuration of a simulation session.
type Config struct {
	// Ticks is the number of market cycles to run.
	Ticks uint64 `yaml:"ticks"`
	// Seed drives the deterministic production RNG.
	Seed int64 `yaml:"seed"`
	// DisruptionProbability is the per-tick chance one factory suffers a
	// supply shock.
	DisruptionProbability float64 `yaml:"disruption_probability"`
	// LedgerPath is the SQLite file for persisted outcomes. Empty disables
	// persistence.
	LedgerPath string `yaml:"ledger_path"`

	// BasePrices maps resource names (heat, water, ...) to production-cost
	// floors. Missing kinds fall back to DefaultBasePrice.
	BasePrices map[string]float64 `yaml:"base_prices"`
	// HistoryCapacity bounds the pricing engine's per-resource ring buffer.
	HistoryCapacity int `yaml:"history_capacity"`

	Maker      MakerConfig      `yaml:"maker"`
	Market     MarketConfig     `yaml:"market"`
	Reputation ReputationConfig `yaml:"reputation"`
}

type MakerConfig struct {
	Spread          float64 `yaml:"spread"`
	SkewSensitivity float64 `yaml:"skew_sensitivity"`
	QuoteSize       float64 `yaml:"quote_size"`
	InventoryTarget float64 `yaml:"inventory_target"`
}

type MarketConfig struct {
	CarbonTaxRate        float64 `yaml:"carbon_tax_rate"`
	TrendWindow          int     `yaml:"trend_window"`
	SettlementValueScale float64 `yaml:"settlement_value_scale"`
	DecayInterval        uint64  `yaml:"decay_interval"`
}

type ReputationConfig struct {
	DecayRate float64 `yaml:"decay_rate"`
}

// DefaultBasePrice applies to resources absent from base_prices.
const DefaultBasePrice = 10.0

// Default returns a runnable configuration without any file.
func Default() Config {
	return Config{
		Ticks:                 30,
		Seed:                  1,
		DisruptionProbability: 0.1,
		HistoryCapacity:       256,
		BasePrices: map[string]float64{
			"heat":      12,
			"water":     4,
			"byproduct": 8,
			"energy":    20,
			"storage":   6,
			"co2":       15,
		},
		Maker: MakerConfig{
			Spread:          0.05,
			SkewSensitivity: 0.02,
			QuoteSize:       100,
			InventoryTarget: 1000,
		},
		Market: MarketConfig{
			CarbonTaxRate:        0,
			TrendWindow:          5,
			SettlementValueScale: 10_000,
			DecayInterval:        10,
		},
		Reputation: ReputationConfig{DecayRate: 0.95},
	}
}

// Load reads, parses and validates a YAML config file. Unset fields keep
// their Default() values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate rejects configurations the market cannot run with.
func (c Config) Validate() error {
	if c.Ticks == 0 {
		return fmt.Errorf("ticks must be positive")
	}
	if c.DisruptionProbability < 0 || c.DisruptionProbability > 1 {
		return fmt.Errorf("disruption_probability must be in [0, 1], got %g", c.DisruptionProbability)
	}
	if c.HistoryCapacity < 0 {
		return fmt.Errorf("history_capacity must not be negative")
	}
	for name, price := range c.BasePrices {
		if _, err := resource.ParseKind(name); err != nil {
			return err
		}
		if price <= 0 {
			return fmt.Errorf("base price for %s must be positive, got %g", name, price)
		}
	}
	if c.Maker.Spread < 0 {
		return fmt.Errorf("maker spread must not be negative")
	}
	if c.Maker.QuoteSize <= 0 {
		return fmt.Errorf("maker quote_size must be positive")
	}
	if c.Maker.InventoryTarget <= 0 {
		return fmt.Errorf("maker inventory_target must be positive")
	}
	if c.Reputation.DecayRate <= 0 || c.Reputation.DecayRate > 1 {
		return fmt.Errorf("reputation decay_rate must be in (0, 1], got %g", c.Reputation.DecayRate)
	}
	return nil
}

// BasePriceTable resolves the configured base prices into a dense table.
func (c Config) BasePriceTable() resource.Table[float64] {
	var table resource.Table[float64]
	table.Fill(DefaultBasePrice)
	for name, price := range c.BasePrices {
		kind, err := resource.ParseKind(name)
		if err != nil {
			continue // rejected by Validate already
		}
		table.Set(kind, price)
	}
	return table
}
