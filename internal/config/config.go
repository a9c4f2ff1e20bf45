package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// Feed is one configured RSS/Atom source.
type Feed struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Lang string `yaml:"lang,omitempty"`
}

func (f Feed) LangOrDefault() string {
	if f.Lang == "" {
		return "en"
	}
	return f.Lang
}

// Provider is one OpenAI-compatible LLM endpoint.
type Provider struct {
	Model     string `yaml:"model"`
	APIBase   string `yaml:"api_base"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type LLMConfig struct {
	Primary     Provider `yaml:"primary"`
	Fallback    Provider `yaml:"fallback"`
	MaxTokens   int      `yaml:"max_tokens,omitempty"`
	Temperature float64  `yaml:"temperature,omitempty"`
}

type OutputConfig struct {
	Directory        string `yaml:"directory,omitempty"`
	FilenameTemplate string `yaml:"filename_template,omitempty"`
}

type Config struct {
	WindowDays          int          `yaml:"window_days,omitempty"`
	SimilarityThreshold float64      `yaml:"similarity_threshold,omitempty"`
	Feeds               []Feed       `yaml:"feeds"`
	TrustedSources      []string     `yaml:"trusted_sources,omitempty"`
	InterestKeywords    []string     `yaml:"interest_keywords,omitempty"`
	Output              OutputConfig `yaml:"output,omitempty"`
	LLM                 *LLMConfig   `yaml:"llm,omitempty"`

	path string
}

// GetWindowDays returns the fetch/inclusion window, defaulting to 3 days.
func (c *Config) GetWindowDays() int {
	if c.WindowDays <= 0 {
		return 3
	}
	return c.WindowDays
}

// GetSimilarityThreshold returns the title-similarity cutoff used by both
// the dedup and gap-matching paths, defaulting to 0.75.
func (c *Config) GetSimilarityThreshold() float64 {
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return 0.75
	}
	return c.SimilarityThreshold
}

// TrustedSet returns the trusted source names as a lookup set.
func (c *Config) TrustedSet() map[string]bool {
	set := make(map[string]bool, len(c.TrustedSources))
	for _, s := range c.TrustedSources {
		set[s] = true
	}
	return set
}

func (c *Config) OutputDir() string {
	if c.Output.Directory == "" {
		return "output"
	}
	return c.Output.Directory
}

func (c *Config) FilenameTemplate() string {
	if c.Output.FilenameTemplate == "" {
		return "digest_{date}.md"
	}
	return c.Output.FilenameTemplate
}

// Path returns the file this config was loaded from (or would be written
// to on first run).
func (c *Config) Path() string {
	return c.path
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "secdigest", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "secdigest", "secdigest.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			defaults.path = path
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.path = path

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the config back to the file it was loaded from.
func (c *Config) Save() error {
	if c.path == "" {
		return fmt.Errorf("config has no backing file")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	for i, f := range cfg.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feed %d: name is required", i)
		}
		if f.URL == "" {
			return fmt.Errorf("feed %q: url is required", f.Name)
		}
		u, err := url.Parse(f.URL)
		if err != nil {
			return fmt.Errorf("feed %q: invalid url: %w", f.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed %q: url scheme must be http or https, got %q", f.Name, u.Scheme)
		}
	}
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be within [0,1], got %v", cfg.SimilarityThreshold)
	}
	return nil
}
