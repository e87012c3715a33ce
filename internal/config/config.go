package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces all environment overrides, e.g.
// FEATGEN_INPUT_EVENTS_CSV -> input.events_csv.
const EnvPrefix = "FEATGEN_"

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "FEATGEN_CONFIG"

// DefaultConfigPaths lists config file locations searched in order.
var DefaultConfigPaths = []string{
	"featgen.yaml",
	"featgen.yml",
	"/etc/featgen/config.yaml",
}

// Config holds all runtime settings for feature generation.
type Config struct {
	Input    InputConfig    `koanf:"input"`
	Priors   PriorsConfig   `koanf:"priors"`
	Sharding ShardingConfig `koanf:"sharding"`
	Storage  StorageConfig  `koanf:"storage"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// InputConfig locates the interaction event stream.
type InputConfig struct {
	EventsCSV string `koanf:"events_csv"`
}

// PriorsConfig locates precomputed lookup tables consumed by the
// probability and similarity features. Empty paths disable the
// corresponding features' data and leave them on their defaults.
type PriorsConfig struct {
	ClickProbsPath  string `koanf:"click_probs_path"`
	MetadataSimPath string `koanf:"metadata_sim_path"`
	PoiSimPath      string `koanf:"poi_sim_path"`
	ItemPricesPath  string `koanf:"item_prices_path"`
}

// ShardingConfig splits the accumulator set across parallel runs.
// Count=1 Index=0 is a full single-process run.
type ShardingConfig struct {
	Count int `koanf:"count"`
	Index int `koanf:"index"`
}

// StorageConfig holds backend connection strings. Empty DSNs keep the
// run purely in memory.
type StorageConfig struct {
	PostgresDSN   string `koanf:"postgres_dsn"`
	ClickhouseDSN string `koanf:"clickhouse_dsn"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

func defaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			EventsCSV: "events.csv",
		},
		Sharding: ShardingConfig{
			Count: 1,
			Index: 0,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9100",
		},
	}
}

// Load builds the configuration from three layers, later layers
// overriding earlier ones: built-in defaults, an optional YAML file,
// and FEATGEN_* environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the generator cannot run with.
func (c *Config) Validate() error {
	if c.Input.EventsCSV == "" {
		return fmt.Errorf("input.events_csv must be set")
	}
	if c.Sharding.Count < 1 {
		return fmt.Errorf("sharding.count must be at least 1, got %d", c.Sharding.Count)
	}
	if c.Sharding.Index < 0 || c.Sharding.Index >= c.Sharding.Count {
		return fmt.Errorf("sharding.index %d out of range for %d shards", c.Sharding.Index, c.Sharding.Count)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr must be set when metrics are enabled")
	}
	return nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransform maps FEATGEN_SECTION_KEY_NAME to section.key_name.
// Only the first underscore separates the section from the key.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	parts := strings.SplitN(key, "_", 2)
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + "." + parts[1]
}
