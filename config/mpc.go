package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables overriding flag values, e.g.
// DWALLET_MPC_MAX_CHUNK_SIZE for --max-chunk-size.
const EnvPrefix = "DWALLET_MPC"

const (
	// All constant strings are used for CLI flag names and corresponding keys for config values.
	logLevel                  = "loglevel"
	dataDir                   = "datadir"
	metricsAddress            = "metrics-address"
	maxConcurrentComputations = "max-concurrent-computations"
	queueCapacity             = "queue-capacity"
	pullRetryInterval         = "pull-retry-interval"
	maxChunkSize              = "max-chunk-size"
	recentEventsCacheSize     = "recent-events-cache-size"
)

func AllFlagNames() []string {
	return []string{
		logLevel, dataDir, metricsAddress, maxConcurrentComputations, queueCapacity, pullRetryInterval,
		maxChunkSize, recentEventsCacheSize,
	}
}

// MPCConfig is the configuration of the MPC service of a validator.
type MPCConfig struct {
	LogLevel string
	// DataDir is the directory of the badger database.
	DataDir        string
	MetricsAddress string
	// MaxConcurrentComputations bounds the protocol rounds computed in parallel.
	MaxConcurrentComputations int
	QueueCapacity             int
	PullRetryInterval         time.Duration
	// MaxChunkSize is the largest network key output carried by a single
	// checkpoint message.
	MaxChunkSize          int
	RecentEventsCacheSize int
}

func DefaultMPCConfig() *MPCConfig {
	return &MPCConfig{
		LogLevel:                  "info",
		DataDir:                   "/data/mpc",
		MetricsAddress:            ":8080",
		MaxConcurrentComputations: 4,
		QueueCapacity:             10_000,
		PullRetryInterval:         2 * time.Second,
		MaxChunkSize:              5 * 1024,
		RecentEventsCacheSize:     10_000,
	}
}

// InitializeMPCFlags initializes all CLI flags of the MPC configuration on the provided pflag set.
// Args:
//
//	*pflag.FlagSet: the pflag set of the command.
//	*MPCConfig: the default config used to set default values on the flags
func InitializeMPCFlags(flags *pflag.FlagSet, config *MPCConfig) {
	flags.String(logLevel, config.LogLevel, "level for logging output")
	flags.String(dataDir, config.DataDir, "directory to store the protocol state")
	flags.String(metricsAddress, config.MetricsAddress, "address the prometheus metrics are served on")
	flags.Int(maxConcurrentComputations, config.MaxConcurrentComputations, "maximum number of protocol rounds computed in parallel")
	flags.Int(queueCapacity, config.QueueCapacity, "capacity of each inbound queue of the MPC manager")
	flags.Duration(pullRetryInterval, config.PullRetryInterval, "delay between two attempts to pull the uncompleted events of an epoch")
	flags.Int(maxChunkSize, config.MaxChunkSize, "maximum size in bytes of the network key output carried by one checkpoint message")
	flags.Int(recentEventsCacheSize, config.RecentEventsCacheSize, "number of recently seen chain events remembered to drop repeated deliveries")
}

// Load reads the configuration from the flags, overridden by the environment.
func Load(flags *pflag.FlagSet) (*MPCConfig, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	err := v.BindPFlags(flags)
	if err != nil {
		return nil, fmt.Errorf("could not bind flags: %w", err)
	}

	config := &MPCConfig{
		LogLevel:                  v.GetString(logLevel),
		DataDir:                   v.GetString(dataDir),
		MetricsAddress:            v.GetString(metricsAddress),
		MaxConcurrentComputations: v.GetInt(maxConcurrentComputations),
		QueueCapacity:             v.GetInt(queueCapacity),
		PullRetryInterval:         v.GetDuration(pullRetryInterval),
		MaxChunkSize:              v.GetInt(maxChunkSize),
		RecentEventsCacheSize:     v.GetInt(recentEventsCacheSize),
	}
	err = config.Validate()
	if err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that the configuration values are usable.
func (c *MPCConfig) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	if c.MaxConcurrentComputations < 1 {
		return fmt.Errorf("%s must be positive, got %d", maxConcurrentComputations, c.MaxConcurrentComputations)
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("%s must be positive, got %d", queueCapacity, c.QueueCapacity)
	}
	if c.PullRetryInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", pullRetryInterval, c.PullRetryInterval)
	}
	if c.MaxChunkSize < 1 {
		return fmt.Errorf("%s must be positive, got %d", maxChunkSize, c.MaxChunkSize)
	}
	if c.RecentEventsCacheSize < 1 {
		return fmt.Errorf("%s must be positive, got %d", recentEventsCacheSize, c.RecentEventsCacheSize)
	}
	return nil
}

// Level returns the zerolog level of the configuration.
func (c *MPCConfig) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
