package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/datalens-cli/internal/utils"
)

// Global configuration structure.
type Global struct {
	// HTTP server
	ListenAddr        string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxUploadMB       int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
	SessionTTLMinutes int    `mapstructure:"session_ttl_minutes" yaml:"session_ttl_minutes"`

	// Analysis
	HeadRows           int    `mapstructure:"head_rows" yaml:"head_rows"`
	DefaultSelection   int    `mapstructure:"default_selection" yaml:"default_selection"`
	MaxRows            int    `mapstructure:"max_rows" yaml:"max_rows"`
	Delimiter          string `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	KDEPoints          int    `mapstructure:"kde_points" yaml:"kde_points"`

	// Charts
	ChartWidth  int `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight int `mapstructure:"chart_height" yaml:"chart_height"`

	// Logging and output
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"listen_addr", "max_upload_mb", "session_ttl_minutes",
	"head_rows", "default_selection", "max_rows", "delimiter", "decimal_separator", "thousands_separator", "kde_points",
	"chart_width", "chart_height",
	"log_level", "log_format", "output_dir",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("session_ttl_minutes", 30)
	v.SetDefault("head_rows", 5)
	v.SetDefault("default_selection", 3)
	v.SetDefault("max_rows", 1_000_000)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("kde_points", 200)
	v.SetDefault("chart_width", 800)
	v.SetDefault("chart_height", 600)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("output_dir", "")
}

// DefaultPath returns ~/.datalens/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".datalens", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.datalens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from .env, file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix("DATALENS")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".datalens"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the pipeline cannot work with.
func (c *Global) Validate() error {
	switch {
	case c.MaxUploadMB <= 0:
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	case c.SessionTTLMinutes <= 0:
		return fmt.Errorf("session_ttl_minutes must be positive, got %d", c.SessionTTLMinutes)
	case c.HeadRows < 0:
		return fmt.Errorf("head_rows must not be negative, got %d", c.HeadRows)
	case c.ChartWidth < 100 || c.ChartHeight < 100:
		return fmt.Errorf("chart size must be at least 100x100, got %dx%d", c.ChartWidth, c.ChartHeight)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	case c.MaxRows < 0:
		return fmt.Errorf("max_rows must not be negative, got %d", c.MaxRows)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if _, err := ParseDelimiter(c.Delimiter); err != nil {
		return fmt.Errorf("delimiter: %w", err)
	}
	if _, err := ParseDecimal(c.DecimalSeparator); err != nil {
		return fmt.Errorf("decimal_separator: %w", err)
	}
	if _, err := ParseThousands(c.ThousandsSeparator); err != nil {
		return fmt.Errorf("thousands_separator: %w", err)
	}
	return nil
}

// Default returns the built-in settings without reading any file or environment.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

func (c *Global) intField(key string) *int {
	switch key {
	case "max_upload_mb":
		return &c.MaxUploadMB
	case "session_ttl_minutes":
		return &c.SessionTTLMinutes
	case "head_rows":
		return &c.HeadRows
	case "default_selection":
		return &c.DefaultSelection
	case "max_rows":
		return &c.MaxRows
	case "kde_points":
		return &c.KDEPoints
	case "chart_width":
		return &c.ChartWidth
	case "chart_height":
		return &c.ChartHeight
	}
	return nil
}

func (c *Global) stringField(key string) *string {
	switch key {
	case "listen_addr":
		return &c.ListenAddr
	case "delimiter":
		return &c.Delimiter
	case "decimal_separator":
		return &c.DecimalSeparator
	case "thousands_separator":
		return &c.ThousandsSeparator
	case "log_level":
		return &c.LogLevel
	case "log_format":
		return &c.LogFormat
	case "output_dir":
		return &c.OutputDir
	}
	return nil
}

// Get returns the value of key formatted for display.
func (c *Global) Get(key string) (string, bool) {
	if p := c.intField(key); p != nil {
		return strconv.Itoa(*p), true
	}
	if p := c.stringField(key); p != nil {
		return *p, true
	}
	return "", false
}

// Set parses val into key. The result is validated; on error c is left unchanged.
func (c *Global) Set(key, val string) error {
	next := *c
	switch {
	case next.intField(key) != nil:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		*next.intField(key) = i
	case next.stringField(key) != nil:
		*next.stringField(key) = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}
