package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/quantmind-br/codedoc-go/internal/domain"
)

// Default values
const (
	// Acquire defaults
	DefaultRef        = "main"
	DefaultMethod     = domain.MethodArchive
	DefaultTimeout    = 10 * time.Minute
	DefaultMaxRetries = 0

	// Cache defaults
	DefaultCacheEnabled = false
	DefaultCacheTTL     = 24 * time.Hour

	// Walk defaults
	DefaultSort = true

	// Output defaults
	DefaultTitle           = "Source Code Export"
	DefaultFont            = "Courier New"
	DefaultFontSize        = 10
	DefaultCheckpointEvery = 0
	DefaultSavePartial     = true
	DefaultProgress        = true
	DefaultJSONSummary     = false

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "pretty"
)

// DefaultExtensions is the allow-list of exported file extensions
var DefaultExtensions = []string{
	".py", ".cpp", ".c", ".java", ".js", ".ts", ".html", ".css", ".php",
}

// ConfigDir returns the config directory path
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".codedoc"
	}
	return filepath.Join(home, ".codedoc")
}

// CacheDir returns the archive cache directory path
func CacheDir() string {
	return filepath.Join(ConfigDir(), "cache")
}

// ConfigFilePath returns the config file path
func ConfigFilePath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Acquire: AcquireConfig{
			DefaultRef: DefaultRef,
			Method:     DefaultMethod,
			Timeout:    DefaultTimeout,
			MaxRetries: DefaultMaxRetries,
		},
		Cache: CacheConfig{
			Enabled:   DefaultCacheEnabled,
			TTL:       DefaultCacheTTL,
			Directory: CacheDir(),
		},
		Walk: WalkConfig{
			Extensions: append([]string(nil), DefaultExtensions...),
			Sort:       DefaultSort,
		},
		Output: OutputConfig{
			Title:           DefaultTitle,
			Font:            DefaultFont,
			FontSize:        DefaultFontSize,
			CheckpointEvery: DefaultCheckpointEvery,
			SavePartial:     DefaultSavePartial,
			Progress:        DefaultProgress,
			JSONSummary:     DefaultJSONSummary,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
