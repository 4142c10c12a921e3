package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/quantmind-br/codedoc-go/internal/domain"
)

// Config represents the application configuration
type Config struct {
	Acquire AcquireConfig `mapstructure:"acquire" yaml:"acquire"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Walk    WalkConfig    `mapstructure:"walk" yaml:"walk"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// AcquireConfig controls how remote repositories are fetched
type AcquireConfig struct {
	DefaultRef string        `mapstructure:"default_ref" yaml:"default_ref"`
	Method     string        `mapstructure:"method" yaml:"method"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" yaml:"max_retries"`
	KeepTemp   bool          `mapstructure:"keep_temp" yaml:"keep_temp"`
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// CacheConfig contains archive cache settings
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Directory string        `mapstructure:"directory" yaml:"directory"`
}

// WalkConfig controls which files are exported
type WalkConfig struct {
	Extensions  []string `mapstructure:"extensions" yaml:"extensions"`
	ExcludeDirs []string `mapstructure:"exclude_dirs" yaml:"exclude_dirs"`
	Sort        bool     `mapstructure:"sort" yaml:"sort"`
}

// OutputConfig contains document settings
type OutputConfig struct {
	Title           string `mapstructure:"title" yaml:"title"`
	Font            string `mapstructure:"font" yaml:"font"`
	FontSize        int    `mapstructure:"font_size" yaml:"font_size"`
	CheckpointEvery int    `mapstructure:"checkpoint_every" yaml:"checkpoint_every"`
	SavePartial     bool   `mapstructure:"save_partial" yaml:"save_partial"`
	Progress        bool   `mapstructure:"progress" yaml:"progress"`
	JSONSummary     bool   `mapstructure:"json_summary" yaml:"json_summary"`
	DryRun          bool   `mapstructure:"dry_run" yaml:"dry_run"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate validates the configuration, replacing out-of-range values with defaults
func (c *Config) Validate() error {
	c.Acquire.DefaultRef = strings.TrimSpace(c.Acquire.DefaultRef)
	if c.Acquire.DefaultRef == "" {
		c.Acquire.DefaultRef = DefaultRef
	}

	switch c.Acquire.Method {
	case "":
		c.Acquire.Method = DefaultMethod
	case domain.MethodArchive, domain.MethodClone:
	default:
		return domain.NewValidationError("acquire.method",
			fmt.Sprintf("must be %q or %q, got %q", domain.MethodArchive, domain.MethodClone, c.Acquire.Method))
	}

	if c.Acquire.Timeout < time.Second {
		c.Acquire.Timeout = DefaultTimeout
	}
	if c.Acquire.MaxRetries < 0 {
		c.Acquire.MaxRetries = 0
	}
	if c.Cache.TTL < time.Minute {
		c.Cache.TTL = DefaultCacheTTL
	}

	if len(c.Walk.Extensions) == 0 {
		c.Walk.Extensions = append([]string(nil), DefaultExtensions...)
	}
	for i, ext := range c.Walk.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			return domain.NewValidationError("walk.extensions", "empty extension")
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Walk.Extensions[i] = ext
	}

	if c.Output.Title == "" {
		c.Output.Title = DefaultTitle
	}
	if c.Output.Font == "" {
		c.Output.Font = DefaultFont
	}
	if c.Output.FontSize < 1 || c.Output.FontSize > 72 {
		c.Output.FontSize = DefaultFontSize
	}
	if c.Output.CheckpointEvery < 0 {
		c.Output.CheckpointEvery = 0
	}

	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format != "pretty" && c.Logging.Format != "json" {
		c.Logging.Format = DefaultLogFormat
	}
	return nil
}
