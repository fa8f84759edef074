package metrics

// ProviderKind selects a metrics exporter.
type ProviderKind string

const (
	PrometheusProvider ProviderKind = "PROMETHEUS_PROVIDER"
	OtelCollector      ProviderKind = "OTEL_COLLECTOR"
)

// ProviderCfg configures one exporter.
type ProviderCfg struct {
	Provider ProviderKind
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// Config holds metric provider configuration.
type Config struct {
	ServiceName string
	Provider    []ProviderCfg
}

// OptionFn mutates the metric provider config.
type OptionFn func(Config) Config

// WithServiceName sets the service name resource attribute.
func WithServiceName(name string) OptionFn {
	return func(cfg Config) Config {
		cfg.ServiceName = name
		return cfg
	}
}

// WithProviderConfig appends an exporter configuration.
func WithProviderConfig(p ProviderCfg) OptionFn {
	return func(cfg Config) Config {
		cfg.Provider = append(cfg.Provider, p)
		return cfg
	}
}

// PromServerConfig configures the Prometheus scrape endpoint.
type PromServerConfig struct {
	port string
}

// PromOptionFn mutates the Prometheus server config.
type PromOptionFn func(PromServerConfig) PromServerConfig

// WithPort sets the scrape endpoint port.
func WithPort(port string) PromOptionFn {
	return func(cfg PromServerConfig) PromServerConfig {
		cfg.port = port
		return cfg
	}
}
