// Package config loads and validates the pipeline configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Content ContentConfig `yaml:"content"`
	Output  OutputConfig  `yaml:"output"`
	Images  ImagesConfig  `yaml:"images"`
	Search  SearchConfig  `yaml:"search"`
	Reading ReadingConfig `yaml:"reading_time"`
	Logging LoggingConfig `yaml:"logging"`
	Events  EventsConfig  `yaml:"events"`
	Serve   ServeConfig   `yaml:"serve"`
}

// ContentConfig describes where source content comes from.
type ContentConfig struct {
	// Root is the content directory containing the articles/, authors/,
	// publications/ and topics/ subtrees.
	Root string `yaml:"root"`

	// Source optionally names a git repository URL. When set, the repository
	// is checked out into Workspace before the pass and Root is resolved
	// relative to the checkout.
	Source    string `yaml:"source,omitempty"`
	Branch    string `yaml:"branch,omitempty"`
	Workspace string `yaml:"workspace,omitempty"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // Clean output directory before build
}

// ImagesConfig configures the responsive image pipeline.
type ImagesConfig struct {
	AssetRoot   string   `yaml:"asset_root"`
	OutputDir   string   `yaml:"output_dir"`
	URLBase     string   `yaml:"url_base"`
	Widths      []int    `yaml:"widths,omitempty"`
	Formats     []string `yaml:"formats,omitempty"`
	Sizes       string   `yaml:"sizes,omitempty"`
	Loading     string   `yaml:"loading,omitempty"`
	Concurrency int      `yaml:"concurrency,omitempty"`
}

// SearchConfig configures the search index builder.
type SearchConfig struct {
	MaxIndexBytes int          `yaml:"max_index_bytes,omitempty"`
	Fuzziness     float64      `yaml:"fuzziness,omitempty"`
	Prefix        *bool        `yaml:"prefix,omitempty"`
	Boosts        SearchBoosts `yaml:"boosts,omitempty"`
}

// SearchBoosts holds per-field relevance multipliers.
type SearchBoosts struct {
	Title    float64 `yaml:"title,omitempty"`
	Subtitle float64 `yaml:"subtitle,omitempty"`
	Content  float64 `yaml:"content,omitempty"`
	Tags     float64 `yaml:"tags,omitempty"`
	Author   float64 `yaml:"author,omitempty"`
}

// ReadingConfig holds the reading-time constants. All values are optional;
// zero means "use the built-in default".
type ReadingConfig struct {
	WordsPerMinute         int     `yaml:"words_per_minute,omitempty"`
	FirstImageSeconds      float64 `yaml:"first_image_seconds,omitempty"`
	AdditionalImageSeconds float64 `yaml:"additional_image_seconds,omitempty"`
	CodeBlockSeconds       float64 `yaml:"code_block_seconds,omitempty"`
	QuoteSeconds           float64 `yaml:"quote_seconds,omitempty"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug|info|warn|error
	Format string `yaml:"format,omitempty"` // text|json
}

// EventsConfig configures optional build-event publishing.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// ServeConfig configures the preview server and watch mode.
type ServeConfig struct {
	Addr         string        `yaml:"addr,omitempty"`
	QuietWindow  time.Duration `yaml:"quiet_window,omitempty"`
	MaxDelay     time.Duration `yaml:"max_delay,omitempty"`
	RebuildEvery time.Duration `yaml:"rebuild_every,omitempty"`
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	prefix := true
	return &Config{
		Content: ContentConfig{Root: "content", Workspace: ".pressbuild/workspace"},
		Output:  OutputConfig{Directory: "dist"},
		Images: ImagesConfig{
			AssetRoot:   "assets",
			OutputDir:   "assets/images",
			URLBase:     "/assets/images",
			Widths:      []int{480, 800, 1200},
			Formats:     []string{"avif", "webp", "jpeg"},
			Sizes:       "(min-width: 800px) 800px, 100vw",
			Loading:     "lazy",
			Concurrency: 4,
		},
		Search: SearchConfig{
			MaxIndexBytes: 500_000,
			Fuzziness:     0.2,
			Prefix:        &prefix,
			Boosts:        SearchBoosts{Title: 3, Subtitle: 1.5, Content: 1, Tags: 1, Author: 1},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Events:  EventsConfig{Subject: "pressbuild.builds"},
		Serve: ServeConfig{
			Addr:        ":8080",
			QuietWindow: 400 * time.Millisecond,
			MaxDelay:    5 * time.Second,
		},
	}
}

// Load reads a YAML configuration file, overlays it on the defaults and
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PRESSBUILD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PRESSBUILD_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("PRESSBUILD_NATS_URL"); v != "" {
		cfg.Events.NATSURL = v
	}
}

// Validate checks config invariants that would otherwise surface as
// confusing mid-build failures.
func (c *Config) Validate() error {
	if c.Content.Root == "" {
		return fmt.Errorf("content.root must not be empty")
	}
	if c.Output.Directory == "" {
		return fmt.Errorf("output.directory must not be empty")
	}
	if c.Images.Concurrency < 1 {
		return fmt.Errorf("images.concurrency must be at least 1")
	}
	if len(c.Images.Widths) == 0 {
		return fmt.Errorf("images.widths must not be empty")
	}
	for _, w := range c.Images.Widths {
		if w <= 0 {
			return fmt.Errorf("images.widths entries must be positive, got %d", w)
		}
	}
	for _, f := range c.Images.Formats {
		switch f {
		case "avif", "webp", "jpeg":
		default:
			return fmt.Errorf("images.formats contains unsupported format %q", f)
		}
	}
	if c.Search.MaxIndexBytes <= 0 {
		return fmt.Errorf("search.max_index_bytes must be positive")
	}
	if c.Search.Fuzziness < 0 || c.Search.Fuzziness > 1 {
		return fmt.Errorf("search.fuzziness must be in [0, 1]")
	}
	return nil
}

// Init writes a starter configuration file with all defaults spelled out.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// PrefixEnabled reports whether prefix matching is on (default true).
func (s SearchConfig) PrefixEnabled() bool {
	return s.Prefix == nil || *s.Prefix
}
