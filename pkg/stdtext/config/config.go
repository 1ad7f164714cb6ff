// Package config holds the service configuration: YAML file over defaults,
// with environment variables reserved for secrets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/stdtext/pkg/stdtext/internalerr"
)

// Config is the root configuration.
type Config struct {
	Service    Service    `yaml:"service"`
	Output     Output     `yaml:"output"`
	Model      Model      `yaml:"model"`
	Dictionary Dictionary `yaml:"dictionary"`
	Corpus     Corpus     `yaml:"corpus"`
	Polish     Polish     `yaml:"polish"`
	Refine     Refine     `yaml:"refine"`
	Rules      Rules      `yaml:"rules"`
}

// Service configures the HTTP listener.
type Service struct {
	Addr                   string `yaml:"addr"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// Output configures final rendering.
type Output struct {
	Uppercase bool `yaml:"uppercase"`
}

// Model configures corpus fitting, lookup and persistence.
type Model struct {
	StorePath          string  `yaml:"store_path"`
	SourcePath         string  `yaml:"source_path"`
	TextColumn         string  `yaml:"text_column"`
	Encoding           string  `yaml:"encoding"`
	Separator          string  `yaml:"separator"`
	LowercaseTraining  bool    `yaml:"lowercase_training"`
	ApplyNearest       bool    `yaml:"apply_nearest"`
	NearestMaxDistance float64 `yaml:"nearest_max_distance"`
	TopK               int     `yaml:"top_k"`
}

// SeparatorRune returns the CSV separator, ';' when unset.
func (m Model) SeparatorRune() rune {
	for _, r := range m.Separator {
		return r
	}
	return ';'
}

// Dictionary configures the spelling dictionary, the city gazetteer and the
// optional redis-backed custom words.
type Dictionary struct {
	Path       string `yaml:"path"`
	CitiesPath string `yaml:"cities_path"`
	RedisAddr  string `yaml:"redis_addr"`
}

// Corpus bounds the phrase corrector.
type Corpus struct {
	MaxEditDistance int     `yaml:"max_edit_distance"`
	MinPrefixFreq   int     `yaml:"min_prefix_freq"`
	Dominance       float64 `yaml:"dominance"`
	MaxAppend       int     `yaml:"max_append"`
}

// Polish configures the LLM cleanup pass.
type Polish struct {
	Enabled        bool    `yaml:"enabled"`
	Model          string  `yaml:"model"`
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
	Burst          int     `yaml:"burst"`
}

// Refine configures definite-form folding.
type Refine struct {
	Enabled bool    `yaml:"enabled"`
	Ratio   float64 `yaml:"ratio"`
}

// Rules configures the action expander.
type Rules struct {
	MaxDistance  int          `yaml:"max_distance"`
	FuzzyActions []ActionRule `yaml:"fuzzy_actions"`
}

// ActionRule maps a base word to its canonical action phrase. A zero
// MaxDistance falls back to Rules.MaxDistance.
type ActionRule struct {
	Action      string `yaml:"action"`
	BaseWord    string `yaml:"base_word"`
	MaxDistance int    `yaml:"max_distance"`
}

// Default returns the configuration the service runs with when no file
// overrides it.
func Default() Config {
	return Config{
		Service: Service{
			Addr:                   ":8080",
			ShutdownTimeoutSeconds: 10,
		},
		Output: Output{Uppercase: true},
		Model: Model{
			StorePath:          "data/model.db",
			SourcePath:         "data/lines.csv",
			Encoding:           "utf-8",
			Separator:          ";",
			LowercaseTraining:  true,
			NearestMaxDistance: 0.35,
			TopK:               3,
		},
		Dictionary: Dictionary{
			Path:       "data/da_ordliste.txt",
			CitiesPath: "data/byer.txt",
		},
		Corpus: Corpus{
			MaxEditDistance: 2,
			MinPrefixFreq:   3,
			Dominance:       0.6,
			MaxAppend:       6,
		},
		Polish: Polish{
			Model:          "gpt-5.1-chat-latest",
			BaseURL:        "https://api.openai.com/v1",
			TimeoutSeconds: 15,
			RatePerSecond:  1,
			Burst:          2,
		},
		Refine: Refine{Ratio: 3},
		Rules: Rules{
			MaxDistance:  2,
			FuzzyActions: DefaultActionRules(),
		},
	}
}

// DefaultActionRules returns the canonical Danish service actions.
func DefaultActionRules() []ActionRule {
	return []ActionRule{
		{Action: "installation af", BaseWord: "installation"},
		{Action: "kontrol af", BaseWord: "kontrol"},
		{Action: "levering af", BaseWord: "levering"},
		{Action: "montering af", BaseWord: "montering"},
		{Action: "nedtagning af", BaseWord: "nedtagning"},
		{Action: "udskiftning af", BaseWord: "udskiftning"},
		{Action: "opsætning af", BaseWord: "opsætning"},
		{Action: "renovering af", BaseWord: "renovering"},
		{Action: "reparation af", BaseWord: "reparation"},
	}
}

// Load reads a YAML file over the defaults, so a partial file overrides only
// the keys it names.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func Save(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the configuration for values the service cannot run with.
func (c Config) Validate() error {
	if c.Service.Addr == "" {
		return fmt.Errorf("service.addr is empty: %w", internalerr.ErrInvalidConfig)
	}
	if c.Service.ShutdownTimeoutSeconds < 0 {
		return fmt.Errorf("service.shutdown_timeout_seconds is negative: %w", internalerr.ErrInvalidConfig)
	}

	switch c.Model.Encoding {
	case "", "utf-8", "utf8", "windows-1252", "cp1252":
	default:
		return fmt.Errorf("model.encoding %q is not supported: %w", c.Model.Encoding, internalerr.ErrInvalidConfig)
	}
	if len([]rune(c.Model.Separator)) > 1 {
		return fmt.Errorf("model.separator must be a single character: %w", internalerr.ErrInvalidConfig)
	}
	if c.Model.NearestMaxDistance < 0 || c.Model.NearestMaxDistance > 1 {
		return fmt.Errorf("model.nearest_max_distance must be within [0, 1]: %w", internalerr.ErrInvalidConfig)
	}
	if c.Model.TopK < 0 {
		return fmt.Errorf("model.top_k is negative: %w", internalerr.ErrInvalidConfig)
	}

	if c.Corpus.MaxEditDistance < 0 {
		return fmt.Errorf("corpus.max_edit_distance is negative: %w", internalerr.ErrInvalidConfig)
	}
	if c.Corpus.MinPrefixFreq < 1 {
		return fmt.Errorf("corpus.min_prefix_freq must be at least 1: %w", internalerr.ErrInvalidConfig)
	}
	if c.Corpus.Dominance <= 0 || c.Corpus.Dominance > 1 {
		return fmt.Errorf("corpus.dominance must be within (0, 1]: %w", internalerr.ErrInvalidConfig)
	}
	if c.Corpus.MaxAppend < 0 {
		return fmt.Errorf("corpus.max_append is negative: %w", internalerr.ErrInvalidConfig)
	}

	if c.Polish.Enabled {
		if c.Polish.Model == "" {
			return fmt.Errorf("polish.model is empty: %w", internalerr.ErrInvalidConfig)
		}
		if c.Polish.RatePerSecond <= 0 {
			return fmt.Errorf("polish.rate_per_second must be positive: %w", internalerr.ErrInvalidConfig)
		}
	}

	if c.Refine.Enabled && c.Refine.Ratio < 1 {
		return fmt.Errorf("refine.ratio must be at least 1: %w", internalerr.ErrInvalidConfig)
	}

	if c.Rules.MaxDistance < 0 {
		return fmt.Errorf("rules.max_distance is negative: %w", internalerr.ErrInvalidConfig)
	}
	for i, r := range c.Rules.FuzzyActions {
		if r.Action == "" {
			return fmt.Errorf("rules.fuzzy_actions[%d].action is empty: %w", i, internalerr.ErrInvalidConfig)
		}
		if len([]rune(r.BaseWord)) < 3 {
			return fmt.Errorf("rules.fuzzy_actions[%d].base_word %q is shorter than 3 characters: %w", i, r.BaseWord, internalerr.ErrInvalidConfig)
		}
		if r.MaxDistance < 0 {
			return fmt.Errorf("rules.fuzzy_actions[%d].max_distance is negative: %w", i, internalerr.ErrInvalidConfig)
		}
	}

	return nil
}
