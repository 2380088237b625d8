package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/evatlas/chargefeed/internal/domain"
)

// Duration wraps time.Duration with YAML string parsing ("6h", "30s").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// SourceConfig describes one record source. The order of sources in the
// config file is the processing order, which first-write-wins dedup turns
// into the priority order.
type SourceConfig struct {
	// Name is the provenance tag; defaults to the type for single-instance
	// sources.
	Name string `yaml:"name"`

	// Type is one of "ocm", "nap_dir", "mcs_seed".
	Type string `yaml:"type"`

	// OCM settings.
	Countries []string `yaml:"countries"`
	PageSize  int      `yaml:"page_size"`
	BaseURL   string   `yaml:"base_url"`

	// File-backed settings: drop directory for nap_dir, seed file for mcs_seed.
	Path string `yaml:"path"`

	// DefaultCategory classifies records whose connector field is missing or
	// unrecognized; for dedicated single-standard feeds. Empty means reject.
	DefaultCategory string `yaml:"default_category"`

	// AllowZeroCoord accepts the (0,0) placeholder from this source.
	AllowZeroCoord bool `yaml:"allow_zero_coord"`
}

// KafkaConfig configures the optional accepted-station publisher. Leaving
// Brokers empty disables it.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// GeocoderConfig configures seed-site coordinate backfill.
type GeocoderConfig struct {
	Enabled   bool     `yaml:"enabled"`
	BaseURL   string   `yaml:"base_url"`
	UserAgent string   `yaml:"user_agent"`
	Timeout   Duration `yaml:"timeout"`
	CacheSize int      `yaml:"cache_size"`
}

// Config holds all service settings, populated from the YAML config file
// with environment overrides for credentials.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	HTTPAddr  string `yaml:"http_addr"`

	OutputPath       string   `yaml:"output_path"`
	PowerThresholdKW float64  `yaml:"power_threshold_kw"`
	RebuildInterval  Duration `yaml:"rebuild_interval"`
	ShutdownTimeout  Duration `yaml:"shutdown_timeout"`

	Aliases        domain.AliasConfig   `yaml:"aliases"`
	ConnectorRules []domain.KeywordRule `yaml:"connector_rules"`

	Sources  []SourceConfig `yaml:"sources"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Geocoder GeocoderConfig `yaml:"geocoder"`

	// OCMAPIKey is read from the OCM_API_KEY environment variable (a .env
	// file is honored), never from the config file.
	OCMAPIKey string `yaml:"-"`
}

// Load reads the config file at path, applies defaults for everything
// omitted, and overlays environment credentials. An empty path yields the
// defaults (no sources).
func Load(path string) (*Config, error) {
	// Credentials may live in a local .env during development; ignore a
	// missing file.
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.OCMAPIKey = os.Getenv("OCM_API_KEY")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "json",
		HTTPAddr:         ":8080",
		OutputPath:       "output/chargers.geojson",
		PowerThresholdKW: 50,
		RebuildInterval:  Duration(6 * time.Hour),
		ShutdownTimeout:  Duration(10 * time.Second),
		Geocoder: GeocoderConfig{
			BaseURL:   "https://nominatim.openstreetmap.org",
			UserAgent: "chargefeed/1.0 (+https://github.com/evatlas/chargefeed)",
			Timeout:   Duration(10 * time.Second),
			CacheSize: 1000,
		},
	}
}

func (c *Config) validate() error {
	if c.PowerThresholdKW <= 0 {
		return errors.New("power_threshold_kw must be positive")
	}
	if c.OutputPath == "" {
		return errors.New("output_path is required")
	}
	if c.RebuildInterval.Std() <= 0 {
		return errors.New("rebuild_interval must be positive")
	}

	names := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		switch src.Type {
		case "ocm":
			if len(src.Countries) == 0 {
				return fmt.Errorf("sources[%d]: ocm source needs at least one country code", i)
			}
		case "nap_dir", "mcs_seed":
			if src.Path == "" {
				return fmt.Errorf("sources[%d]: %s source needs a path", i, src.Type)
			}
		default:
			return fmt.Errorf("sources[%d]: unknown source type %q", i, src.Type)
		}

		switch src.DefaultCategory {
		case "", string(domain.CategoryCCS), string(domain.CategoryMCS):
		default:
			return fmt.Errorf("sources[%d]: default_category must be CCS or MCS", i)
		}

		name := src.Tag()
		if names[name] {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, name)
		}
		names[name] = true
	}

	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required when brokers are set")
	}
	return nil
}

// Tag returns the provenance tag for the source: the explicit name when
// given, the type otherwise.
func (s SourceConfig) Tag() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Type
}

// Spec converts the source entry into the normalizer's per-source spec.
func (s SourceConfig) Spec() domain.SourceSpec {
	return domain.SourceSpec{
		Tag:             s.Tag(),
		DefaultCategory: domain.Category(s.DefaultCategory),
		AllowZeroCoord:  s.AllowZeroCoord,
	}
}
