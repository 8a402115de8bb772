package config

import (
	"fmt"
	"time"

	id "awardregistry/pkg/domain"
	strutil "awardregistry/pkg/platform/strings"

	"github.com/caarlos0/env/v11"
)

const (
	EntropyClock = "clock"
	EntropyChain = "chain"
)

// Config is the full runtime configuration of a registry instance.
type Config struct {
	Registry Registry
	Oracle   Oracle
	Chain    Chain
	Audit    Audit
	Log      Log
}

// Registry captures the registry aggregate settings.
type Registry struct {
	Owner           id.Address    `env:"REGISTRY_OWNER,required"`
	RegistrationFee id.Amount     `env:"REGISTRY_REGISTRATION_FEE" envDefault:"1000000000000000000"`
	TxTimeout       time.Duration `env:"REGISTRY_TX_TIMEOUT" envDefault:"5s"`
	EntropySource   string        `env:"REGISTRY_ENTROPY_SOURCE" envDefault:"clock"`
}

// Oracle configures the external price feed. An empty URL disables it.
type Oracle struct {
	URL              string        `env:"PRICE_FEED_URL"`
	Timeout          time.Duration `env:"PRICE_FEED_TIMEOUT" envDefault:"5s"`
	MaxAge           time.Duration `env:"PRICE_FEED_MAX_AGE" envDefault:"0s"`
	BreakerThreshold int           `env:"PRICE_FEED_BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"PRICE_FEED_BREAKER_COOLDOWN" envDefault:"30s"`
}

// Chain configures the node used as the award entropy source.
type Chain struct {
	RPCURL      string        `env:"CHAIN_RPC_URL"`
	RPCUser     string        `env:"CHAIN_RPC_USER"`
	RPCPassword string        `env:"CHAIN_RPC_PASSWORD"`
	Timeout     time.Duration `env:"CHAIN_RPC_TIMEOUT" envDefault:"10s"`
}

// Audit configures event fan-out. No brokers means events stay in memory.
type Audit struct {
	KafkaBrokers []string `env:"AUDIT_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"AUDIT_KAFKA_TOPIC" envDefault:"registry.audit"`
	BufferSize   int      `env:"AUDIT_BUFFER_SIZE" envDefault:"256"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// FromEnv builds a Config from the process environment.
func FromEnv() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

// FromEnvironment builds a Config from an explicit variable set, ignoring the
// process environment.
func FromEnvironment(vars map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	return cfg, cfg.Validate()
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// normalize drops blank and repeated broker entries that a trailing or doubled
// separator leaves behind.
func (c *Config) normalize() {
	c.Audit.KafkaBrokers = strutil.DedupeAndTrimLower(c.Audit.KafkaBrokers)
}

func (c Config) Validate() error {
	if c.Registry.Owner.IsZero() {
		return fmt.Errorf("REGISTRY_OWNER must be a non-zero address")
	}
	if c.Registry.RegistrationFee.IsZero() {
		return fmt.Errorf("REGISTRY_REGISTRATION_FEE must be positive")
	}
	switch c.Registry.EntropySource {
	case EntropyClock:
	case EntropyChain:
		if c.Chain.RPCURL == "" {
			return fmt.Errorf("CHAIN_RPC_URL is required when REGISTRY_ENTROPY_SOURCE=%s", EntropyChain)
		}
	default:
		return fmt.Errorf("unknown REGISTRY_ENTROPY_SOURCE %q", c.Registry.EntropySource)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.Log.Format)
	}
	if c.Audit.BufferSize < 0 {
		return fmt.Errorf("AUDIT_BUFFER_SIZE must not be negative")
	}
	return nil
}
