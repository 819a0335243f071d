// Package config loads energyprophet settings: compiled defaults, then the
// YAML file under the config directory, then environment overrides. CLI flags
// are applied last by the commands themselves.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rshade/energyprophet/internal/balancer"
	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/engine"
	"github.com/rshade/energyprophet/internal/narrative"
	"github.com/rshade/energyprophet/internal/narrative/cache"
)

// Output format names.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

const (
	configFileName = "config.yaml"
	minTargetYear  = 1900
	maxTargetYear  = 2200
	defaultDecimal = 2
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete energyprophet configuration.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Balancer   BalancerConfig   `yaml:"balancer"`
	Narrative  NarrativeConfig  `yaml:"narrative"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Logging    LoggingConfig    `yaml:"logging"`
	Output     OutputConfig     `yaml:"output"`
}

// SimulationConfig holds projection defaults.
type SimulationConfig struct {
	GrowthRate float64 `yaml:"growth_rate"`
	TargetYear int     `yaml:"target_year"`
}

// BalancerConfig tunes the incremental balancer.
type BalancerConfig struct {
	Steps            int     `yaml:"steps"`
	Epsilon          float64 `yaml:"epsilon"`
	FallbackFraction float64 `yaml:"fallback_fraction"`
	DebounceMS       int     `yaml:"debounce_ms"`
}

// NarrativeConfig configures the text generation service. The API key is only
// ever read from the environment.
type NarrativeConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Model           string  `yaml:"model"`
	BaseURL         string  `yaml:"base_url,omitempty"`
	Temperature     float64 `yaml:"temperature"`
	TopP            float64 `yaml:"top_p"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	TimeoutSeconds  int     `yaml:"timeout_seconds"`
	CacheEnabled    bool    `yaml:"cache_enabled"`
	CacheTTLMinutes int     `yaml:"cache_ttl_minutes"`

	APIKey string `yaml:"-"`
}

// CatalogConfig selects the reference data source.
type CatalogConfig struct {
	// Source is "builtin", a YAML/JSON file path, or an SQLite database path.
	Source string `yaml:"source"`
}

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Precision     int    `yaml:"precision"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			GrowthRate: engine.DefaultGrowthRate,
			TargetYear: engine.DefaultTargetYear,
		},
		Balancer: BalancerConfig{
			Steps:            balancer.DefaultSteps,
			Epsilon:          balancer.DefaultOptions().Epsilon,
			FallbackFraction: balancer.DefaultFallbackFraction,
			DebounceMS:       int(balancer.DefaultDebounce / time.Millisecond),
		},
		Narrative: NarrativeConfig{
			Enabled:         true,
			Model:           narrative.DefaultModel,
			Temperature:     narrative.DefaultTemperature,
			TopP:            narrative.DefaultTopP,
			MaxOutputTokens: narrative.DefaultMaxOutputTokens,
			TimeoutSeconds:  int(narrative.DefaultTimeout / time.Second),
			CacheEnabled:    true,
			CacheTTLMinutes: int(cache.DefaultTTL / time.Minute),
		},
		Catalog: CatalogConfig{Source: catalog.SourceBuiltin},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Output:  OutputConfig{DefaultFormat: FormatTable, Precision: defaultDecimal},
	}
}

// New returns the effective configuration: defaults, the config file when one
// exists, then environment overrides. A broken config file is logged and
// skipped.
func New() *Config {
	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			cfg, loadErr := Load(path)
			if loadErr == nil {
				return cfg
			}
			logger := GetLogger()
			logger.Warn().
				Str("component", "config").
				Str("path", path).
				Err(loadErr).
				Msg("ignoring unreadable config file")
		}
	}

	cfg := Default()
	ApplyEnvOverrides(cfg)
	return cfg
}

// Load reads the config file at path over the defaults and applies environment
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if err := ShallowMergeYAML(cfg, path); err != nil {
		return nil, err
	}
	ApplyEnvOverrides(cfg)
	return cfg, nil
}

// Save writes c to path as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error

	if c.Simulation.GrowthRate <= -1 {
		errs = append(errs, fmt.Errorf("simulation.growth_rate must be greater than -1, got %v",
			c.Simulation.GrowthRate))
	}
	if c.Simulation.TargetYear < minTargetYear || c.Simulation.TargetYear > maxTargetYear {
		errs = append(errs, fmt.Errorf("simulation.target_year must be between %d and %d, got %d",
			minTargetYear, maxTargetYear, c.Simulation.TargetYear))
	}
	if c.Balancer.Steps <= 0 {
		errs = append(errs, fmt.Errorf("balancer.steps must be positive, got %d", c.Balancer.Steps))
	}
	if c.Balancer.Epsilon <= 0 {
		errs = append(errs, fmt.Errorf("balancer.epsilon must be positive, got %v", c.Balancer.Epsilon))
	}
	if c.Balancer.FallbackFraction <= 0 || c.Balancer.FallbackFraction > 1 {
		errs = append(errs, fmt.Errorf("balancer.fallback_fraction must be in (0, 1], got %v",
			c.Balancer.FallbackFraction))
	}
	if c.Balancer.DebounceMS < 0 {
		errs = append(errs, fmt.Errorf("balancer.debounce_ms cannot be negative, got %d", c.Balancer.DebounceMS))
	}
	if c.Narrative.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("narrative.timeout_seconds cannot be negative, got %d",
			c.Narrative.TimeoutSeconds))
	}
	if c.Narrative.CacheTTLMinutes < 0 {
		errs = append(errs, fmt.Errorf("narrative.cache_ttl_minutes cannot be negative, got %d",
			c.Narrative.CacheTTLMinutes))
	}
	if strings.TrimSpace(c.Catalog.Source) == "" {
		errs = append(errs, errors.New("catalog.source cannot be empty"))
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		errs = append(errs, fmt.Errorf("logging.level %q is not a valid level", c.Logging.Level))
	}
	if !slices.Contains([]string{FormatTable, FormatJSON}, c.Output.DefaultFormat) {
		errs = append(errs, fmt.Errorf("output.default_format must be %q or %q, got %q",
			FormatTable, FormatJSON, c.Output.DefaultFormat))
	}
	if c.Output.Precision < 0 {
		errs = append(errs, fmt.Errorf("output.precision cannot be negative, got %d", c.Output.Precision))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// BalancerOptions converts the balancer section.
func (c *Config) BalancerOptions() balancer.Options {
	return balancer.Options{
		Epsilon:          c.Balancer.Epsilon,
		Steps:            c.Balancer.Steps,
		FallbackFraction: c.Balancer.FallbackFraction,
	}
}

// DebounceInterval is the balancer debounce as a duration.
func (c *Config) DebounceInterval() time.Duration {
	return time.Duration(c.Balancer.DebounceMS) * time.Millisecond
}

// NarrativeTimeout is the per-request generation timeout.
func (c *Config) NarrativeTimeout() time.Duration {
	return time.Duration(c.Narrative.TimeoutSeconds) * time.Second
}

// NarrativeCacheTTL is how long generated narratives stay cached.
func (c *Config) NarrativeCacheTTL() time.Duration {
	return time.Duration(c.Narrative.CacheTTLMinutes) * time.Minute
}

// GenAIConfig converts the narrative section.
func (c *Config) GenAIConfig() narrative.GenAIConfig {
	return narrative.GenAIConfig{
		APIKey:          c.Narrative.APIKey,
		Model:           c.Narrative.Model,
		BaseURL:         c.Narrative.BaseURL,
		Temperature:     c.Narrative.Temperature,
		TopP:            c.Narrative.TopP,
		MaxOutputTokens: c.Narrative.MaxOutputTokens,
	}
}
