// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Ethereum  EthereumConfig  `mapstructure:"ethereum"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Stream    StreamConfig    `mapstructure:"stream"`
	Webhook   WebhookConfig   `mapstructure:"webhook"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// EthereumConfig holds Ethereum node configuration for the chain-backed
// height source. Empty HTTPURL selects the in-memory ledger (dev/test).
type EthereumConfig struct {
	HTTPURL      string        `mapstructure:"http_url"`
	ChainID      uint64        `mapstructure:"chain_id"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// EngineConfig holds the commit-reveal engine parameters.
type EngineConfig struct {
	// Owner is the administration address (router management, pause,
	// minimum profit, emergency withdrawal).
	Owner string `mapstructure:"owner"`
	// Account is the engine's own address on the token ledger; the
	// funds being arbitraged live here.
	Account string `mapstructure:"account"`
	// BaseAsset is the round-trip asset profit is measured in.
	BaseAsset string `mapstructure:"base_asset"`

	MinRevealDelay   uint64        `mapstructure:"min_reveal_delay"`   // blocks
	MaxCommitmentAge uint64        `mapstructure:"max_commitment_age"` // blocks
	MaxDeadlineWindow time.Duration `mapstructure:"max_deadline_window"`
	MinHops          int           `mapstructure:"min_hops"`
	MaxHops          int           `mapstructure:"max_hops"`

	// MinimumProfit is the engine-wide profit floor in display units of
	// the base asset (e.g. "0.01" WETH). The caller's own floor in the
	// reveal payload is independent of this.
	MinimumProfit string `mapstructure:"minimum_profit"`

	// Routers is the initial allow-list.
	Routers []string `mapstructure:"routers"`

	// BatchCommitsPerMinute rate-limits batch submissions.
	BatchCommitsPerMinute int `mapstructure:"batch_commits_per_minute"`

	TUIMode bool `mapstructure:"-"` // Set at runtime, not from config file
}

// StreamConfig holds the websocket event stream settings.
type StreamConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// WebhookConfig holds the reveal-outcome webhook settings.
type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// OwnerAddress returns the owner as common.Address.
func (c *EngineConfig) OwnerAddress() common.Address {
	return common.HexToAddress(c.Owner)
}

// AccountAddress returns the engine account as common.Address.
func (c *EngineConfig) AccountAddress() common.Address {
	return common.HexToAddress(c.Account)
}

// BaseAssetAddress returns the base asset as common.Address.
func (c *EngineConfig) BaseAssetAddress() common.Address {
	return common.HexToAddress(c.BaseAsset)
}

// RouterAddresses returns the configured allow-list as addresses.
func (c *EngineConfig) RouterAddresses() []common.Address {
	out := make([]common.Address, len(c.Routers))
	for i, r := range c.Routers {
		out[i] = common.HexToAddress(r)
	}
	return out
}

// MinimumProfitRaw converts the display-unit floor into raw base asset
// units given the asset's decimals.
func (c *EngineConfig) MinimumProfitRaw(decimals uint8) (*big.Int, error) {
	d, err := decimal.NewFromString(c.MinimumProfit)
	if err != nil {
		return nil, fmt.Errorf("invalid engine.minimum_profit: %w", err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("engine.minimum_profit must not be negative")
	}
	scaled := d.Shift(int32(decimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("engine.minimum_profit has too many decimal places")
	}
	return scaled.BigInt(), nil
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ARB")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Ethereum
	v.BindEnv("ethereum.http_url", "ARB_ETH_HTTP_URL", "ETH_HTTP_URL")
	v.BindEnv("ethereum.chain_id", "ARB_ETH_CHAIN_ID", "ETH_CHAIN_ID")

	// Engine
	v.BindEnv("engine.owner", "ARB_ENGINE_OWNER")
	v.BindEnv("engine.account", "ARB_ENGINE_ACCOUNT")
	v.BindEnv("engine.base_asset", "ARB_ENGINE_BASE_ASSET")
	v.BindEnv("engine.min_reveal_delay", "ARB_MIN_REVEAL_DELAY")
	v.BindEnv("engine.max_commitment_age", "ARB_MAX_COMMITMENT_AGE")
	v.BindEnv("engine.minimum_profit", "ARB_MINIMUM_PROFIT")
	v.BindEnv("engine.routers", "ARB_ROUTERS")

	// Webhook
	v.BindEnv("webhook.url", "ARB_WEBHOOK_URL")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "arb-engine")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Ethereum defaults
	v.SetDefault("ethereum.chain_id", 1)
	v.SetDefault("ethereum.poll_interval", "12s") // ~1 block time

	// Engine defaults mirror the reference deployment.
	v.SetDefault("engine.base_asset", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2") // WETH
	v.SetDefault("engine.min_reveal_delay", 1)
	v.SetDefault("engine.max_commitment_age", 256)
	v.SetDefault("engine.max_deadline_window", "30m")
	v.SetDefault("engine.min_hops", 2)
	v.SetDefault("engine.max_hops", 5)
	v.SetDefault("engine.minimum_profit", "0.001")
	v.SetDefault("engine.batch_commits_per_minute", 60)

	// Stream defaults
	v.SetDefault("stream.enabled", false)
	v.SetDefault("stream.port", 8082)

	// Webhook defaults
	v.SetDefault("webhook.timeout", "5s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "arb-engine")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.Owner == "" || !common.IsHexAddress(c.Engine.Owner) {
		return fmt.Errorf("invalid engine.owner: %q", c.Engine.Owner)
	}
	if c.Engine.Account == "" || !common.IsHexAddress(c.Engine.Account) {
		return fmt.Errorf("invalid engine.account: %q", c.Engine.Account)
	}
	if !common.IsHexAddress(c.Engine.BaseAsset) {
		return fmt.Errorf("invalid engine.base_asset: %q", c.Engine.BaseAsset)
	}
	for _, r := range c.Engine.Routers {
		if !common.IsHexAddress(r) {
			return fmt.Errorf("invalid router address: %q", r)
		}
	}
	if c.Engine.MinRevealDelay == 0 {
		return fmt.Errorf("engine.min_reveal_delay must be at least 1 block")
	}
	if c.Engine.MaxCommitmentAge <= c.Engine.MinRevealDelay {
		return fmt.Errorf("engine.max_commitment_age must exceed min_reveal_delay")
	}
	if c.Engine.MinHops < 1 {
		return fmt.Errorf("engine.min_hops must be at least 1")
	}
	if c.Engine.MaxHops < c.Engine.MinHops {
		return fmt.Errorf("engine.max_hops must be >= engine.min_hops")
	}
	if _, err := decimal.NewFromString(c.Engine.MinimumProfit); err != nil {
		return fmt.Errorf("invalid engine.minimum_profit: %q", c.Engine.MinimumProfit)
	}
	return nil
}
