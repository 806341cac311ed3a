// Package config loads segprep settings via Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"segprep/internal/dataset"
	"segprep/internal/processor"
)

// EnvPrefix scopes environment overrides, e.g. SEGPREP_RESIZE_WIDTH=256.
const EnvPrefix = "SEGPREP"

// Config captures every setting the commands read.
type Config struct {
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Resize   ResizeConfig   `mapstructure:"resize"`
	Manifest ManifestConfig `mapstructure:"manifest"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DatasetConfig locates the dataset root.
type DatasetConfig struct {
	Root string `mapstructure:"root"`
	Name string `mapstructure:"name"`
}

// ResizeConfig holds the defaults for the resize command.
type ResizeConfig struct {
	Width       int    `mapstructure:"width"`
	Height      int    `mapstructure:"height"`
	Format      string `mapstructure:"format"`
	Filter      string `mapstructure:"filter"`
	Workers     int    `mapstructure:"workers"`
	JPEGQuality int    `mapstructure:"jpeg_quality"`
	AutoOrient  bool   `mapstructure:"auto_orient"`
}

// ManifestConfig controls lst.txt generation.
type ManifestConfig struct {
	Strict bool `mapstructure:"strict"`
}

// LoggingConfig toggles zap development features and the minimum level.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Load builds a Config from defaults, the optional file at path and the
// environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the built-in settings without reading files or env.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dataset.root", "")
	v.SetDefault("dataset.name", dataset.DefaultName)
	v.SetDefault("resize.width", 512)
	v.SetDefault("resize.height", 512)
	v.SetDefault("resize.format", "png")
	v.SetDefault("resize.filter", string(processor.FilterLanczos))
	v.SetDefault("resize.workers", processor.DefaultWorkers)
	v.SetDefault("resize.jpeg_quality", 95)
	v.SetDefault("resize.auto_orient", false)
	v.SetDefault("manifest.strict", false)
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Resize.Width <= 0 {
		return fmt.Errorf("resize.width must be > 0")
	}
	if c.Resize.Height <= 0 {
		return fmt.Errorf("resize.height must be > 0")
	}
	if !processor.SupportedFormat(c.Resize.Format) {
		return fmt.Errorf("resize.format %q is not supported", c.Resize.Format)
	}
	if _, err := processor.ParseFilter(c.Resize.Filter); err != nil {
		return fmt.Errorf("resize.filter: %w", err)
	}
	if c.Resize.Workers <= 0 {
		return fmt.Errorf("resize.workers must be > 0")
	}
	if c.Resize.JPEGQuality < 1 || c.Resize.JPEGQuality > 100 {
		return fmt.Errorf("resize.jpeg_quality must be between 1 and 100")
	}
	if strings.ContainsAny(c.Dataset.Name, `/\`) || c.Dataset.Name == "" {
		return fmt.Errorf("dataset.name must be a single folder name")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
