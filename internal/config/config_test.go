package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{Name: "arb-engine"},
		Engine: EngineConfig{
			Owner:             "0x00000000000000000000000000000000000000A1",
			Account:           "0x00000000000000000000000000000000000000E1",
			BaseAsset:         "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
			MinRevealDelay:    1,
			MaxCommitmentAge:  256,
			MaxDeadlineWindow: 30 * time.Minute,
			MinHops:           2,
			MaxHops:           5,
			MinimumProfit:     "0.001",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing_owner", func(c *Config) { c.Engine.Owner = "" }, true},
		{"bad_owner", func(c *Config) { c.Engine.Owner = "not-an-address" }, true},
		{"bad_router", func(c *Config) { c.Engine.Routers = []string{"0xzz"} }, true},
		{"zero_delay", func(c *Config) { c.Engine.MinRevealDelay = 0 }, true},
		{"age_below_delay", func(c *Config) {
			c.Engine.MinRevealDelay = 10
			c.Engine.MaxCommitmentAge = 10
		}, true},
		{"hops_inverted", func(c *Config) {
			c.Engine.MinHops = 4
			c.Engine.MaxHops = 2
		}, true},
		{"bad_min_profit", func(c *Config) { c.Engine.MinimumProfit = "lots" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMinimumProfitRaw(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.MinimumProfit = "0.005"

	raw, err := cfg.Engine.MinimumProfitRaw(18)
	if err != nil {
		t.Fatalf("MinimumProfitRaw: %v", err)
	}
	if raw.String() != "5000000000000000" {
		t.Errorf("MinimumProfitRaw = %s, want 5000000000000000", raw)
	}

	cfg.Engine.MinimumProfit = "0.0000001"
	if _, err := cfg.Engine.MinimumProfitRaw(6); err == nil {
		t.Error("expected error for sub-decimal precision")
	}
}
