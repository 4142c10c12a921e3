package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quantmind-br/codedoc-go/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConfig_Validate tests configuration validation
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		check   func(*testing.T, *Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			modify: func(c *Config) {},
		},
		{
			name: "empty ref defaults to main",
			modify: func(c *Config) {
				c.Acquire.DefaultRef = "  "
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultRef, c.Acquire.DefaultRef)
			},
		},
		{
			name: "empty method defaults to archive",
			modify: func(c *Config) {
				c.Acquire.Method = ""
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, domain.MethodArchive, c.Acquire.Method)
			},
		},
		{
			name: "clone method accepted",
			modify: func(c *Config) {
				c.Acquire.Method = domain.MethodClone
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, domain.MethodClone, c.Acquire.Method)
			},
		},
		{
			name: "unknown method rejected",
			modify: func(c *Config) {
				c.Acquire.Method = "rsync"
			},
			wantErr: true,
		},
		{
			name: "timeout below minimum defaults",
			modify: func(c *Config) {
				c.Acquire.Timeout = 10 * time.Millisecond
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultTimeout, c.Acquire.Timeout)
			},
		},
		{
			name: "negative retries clamp to zero",
			modify: func(c *Config) {
				c.Acquire.MaxRetries = -3
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 0, c.Acquire.MaxRetries)
			},
		},
		{
			name: "extensions normalized",
			modify: func(c *Config) {
				c.Walk.Extensions = []string{"GO", " .Rs "}
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, []string{".go", ".rs"}, c.Walk.Extensions)
			},
		},
		{
			name: "empty extension rejected",
			modify: func(c *Config) {
				c.Walk.Extensions = []string{".py", ""}
			},
			wantErr: true,
		},
		{
			name: "no extensions falls back to defaults",
			modify: func(c *Config) {
				c.Walk.Extensions = nil
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultExtensions, c.Walk.Extensions)
			},
		},
		{
			name: "font size out of range",
			modify: func(c *Config) {
				c.Output.FontSize = 500
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultFontSize, c.Output.FontSize)
			},
		},
		{
			name: "unknown log format",
			modify: func(c *Config) {
				c.Logging.Format = "xml"
			},
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, DefaultLogFormat, c.Logging.Format)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "main", cfg.Acquire.DefaultRef)
	assert.Equal(t, domain.MethodArchive, cfg.Acquire.Method)
	assert.Equal(t, 0, cfg.Acquire.MaxRetries)
	assert.False(t, cfg.Acquire.KeepTemp)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, []string{".py", ".cpp", ".c", ".java", ".js", ".ts", ".html", ".css", ".php"}, cfg.Walk.Extensions)
	assert.Empty(t, cfg.Walk.ExcludeDirs)
	assert.True(t, cfg.Walk.Sort)
	assert.Equal(t, "Source Code Export", cfg.Output.Title)
	assert.Equal(t, "Courier New", cfg.Output.Font)
	assert.Equal(t, 10, cfg.Output.FontSize)
	assert.True(t, cfg.Output.SavePartial)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.Level)

	// Default must not share the package-level slice
	cfg.Walk.Extensions[0] = ".rb"
	assert.Equal(t, ".py", DefaultExtensions[0])
}

func TestPaths(t *testing.T) {
	assert.Contains(t, ConfigDir(), ".codedoc")
	assert.Equal(t, filepath.Join(ConfigDir(), "cache"), CacheDir())
	assert.Equal(t, filepath.Join(ConfigDir(), "config.yaml"), ConfigFilePath())
}

func TestLoadFrom(t *testing.T) {
	t.Run("defaults without config file", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		cfg, err := LoadFrom(viper.New())
		require.NoError(t, err)
		assert.Equal(t, DefaultTitle, cfg.Output.Title)
		assert.Equal(t, DefaultTimeout, cfg.Acquire.Timeout)
		assert.Equal(t, DefaultExtensions, cfg.Walk.Extensions)
	})

	t.Run("explicit config file", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		path := filepath.Join(t.TempDir(), "codedoc.yaml")
		content := `
acquire:
  default_ref: master
  max_retries: 2
  timeout: 30s
walk:
  extensions: [".go"]
  exclude_dirs: ["vendor"]
output:
  title: "Export"
  font_size: 12
logging:
  level: debug
  format: json
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		v := viper.New()
		v.SetConfigFile(path)
		cfg, err := LoadFrom(v)
		require.NoError(t, err)

		assert.Equal(t, "master", cfg.Acquire.DefaultRef)
		assert.Equal(t, 2, cfg.Acquire.MaxRetries)
		assert.Equal(t, 30*time.Second, cfg.Acquire.Timeout)
		assert.Equal(t, []string{".go"}, cfg.Walk.Extensions)
		assert.Equal(t, []string{"vendor"}, cfg.Walk.ExcludeDirs)
		assert.Equal(t, "Export", cfg.Output.Title)
		assert.Equal(t, 12, cfg.Output.FontSize)
		assert.Equal(t, "json", cfg.Logging.Format)
		assert.Equal(t, DefaultFont, cfg.Output.Font)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		v := viper.New()
		v.SetConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := LoadFrom(v)
		assert.Error(t, err)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("CODEDOC_OUTPUT_TITLE", "From Env")
		t.Setenv("CODEDOC_ACQUIRE_DEFAULT_REF", "develop")

		cfg, err := LoadFrom(viper.New())
		require.NoError(t, err)
		assert.Equal(t, "From Env", cfg.Output.Title)
		assert.Equal(t, "develop", cfg.Acquire.DefaultRef)
	})

	t.Run("invalid method fails validation", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("CODEDOC_ACQUIRE_METHOD", "ftp")

		_, err := LoadFrom(viper.New())
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}
