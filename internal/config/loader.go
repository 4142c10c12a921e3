package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides (CODEDOC_OUTPUT_TITLE, ...)
const EnvPrefix = "CODEDOC"

// Load loads configuration from file, environment, and defaults.
// It reads the global viper instance so CLI flag bindings apply.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom loads configuration through the given viper instance
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(ConfigDir())
		v.AddConfigPath(".")
	}

	// A missing config file is fine, a broken one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("acquire.default_ref", DefaultRef)
	v.SetDefault("acquire.method", DefaultMethod)
	v.SetDefault("acquire.timeout", DefaultTimeout)
	v.SetDefault("acquire.max_retries", DefaultMaxRetries)
	v.SetDefault("acquire.keep_temp", false)
	v.SetDefault("acquire.user_agent", "")

	v.SetDefault("cache.enabled", DefaultCacheEnabled)
	v.SetDefault("cache.ttl", DefaultCacheTTL)
	v.SetDefault("cache.directory", CacheDir())

	v.SetDefault("walk.extensions", DefaultExtensions)
	v.SetDefault("walk.exclude_dirs", []string{})
	v.SetDefault("walk.sort", DefaultSort)

	v.SetDefault("output.title", DefaultTitle)
	v.SetDefault("output.font", DefaultFont)
	v.SetDefault("output.font_size", DefaultFontSize)
	v.SetDefault("output.checkpoint_every", DefaultCheckpointEvery)
	v.SetDefault("output.save_partial", DefaultSavePartial)
	v.SetDefault("output.progress", DefaultProgress)
	v.SetDefault("output.json_summary", DefaultJSONSummary)
	v.SetDefault("output.dry_run", false)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)
}
