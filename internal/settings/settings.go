// Package settings loads application settings and sets up logging.
package settings

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cognicore/promoscan/pkg/promoscan/internalerr"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Quality QualityConfig `yaml:"quality" mapstructure:"quality"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects where extraction runs are recorded.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // sqlite or memory
	Path   string `yaml:"path" mapstructure:"path"`
}

// DataConfig points at taxonomy, blacklist and noise files. Empty paths use
// the built-in data.
type DataConfig struct {
	TaxonomyPath  string `yaml:"taxonomy" mapstructure:"taxonomy"`
	BlacklistPath string `yaml:"blacklist" mapstructure:"blacklist"`
	NoisePath     string `yaml:"noise" mapstructure:"noise"`
}

// QualityConfig holds the acceptance thresholds.
type QualityConfig struct {
	MaxPrice      float64 `yaml:"max_price" mapstructure:"max_price"`
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
}

// BatchConfig configures multi-brochure scans.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An empty file falls
// back to promoscan.yaml in the working directory or ./config, if present.
func Load(file string) (*Config, error) {
	v := viper.New()

	// Config file
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("promoscan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment
	v.SetEnvPrefix("PROMOSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "promoscan.db")
	v.SetDefault("data.taxonomy", "")
	v.SetDefault("data.blacklist", "")
	v.SetDefault("data.noise", "")
	v.SetDefault("quality.max_price", 200.0)
	v.SetDefault("quality.min_confidence", 0.4)
	v.SetDefault("batch.max_concurrent", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, eris.Wrap(err, "settings: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "settings: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return eris.Wrap(internalerr.ErrInvalidConfig, "settings: store.path is required for sqlite")
		}
	case "memory":
	default:
		return eris.Wrapf(internalerr.ErrInvalidConfig, "settings: unknown store.driver %q", c.Store.Driver)
	}
	if c.Quality.MaxPrice <= 0 {
		return eris.Wrapf(internalerr.ErrInvalidConfig, "settings: quality.max_price must be positive, got %v", c.Quality.MaxPrice)
	}
	// zero selects the built-in default downstream, so it is not a usable threshold
	if c.Quality.MinConfidence <= 0 || c.Quality.MinConfidence > 1 {
		return eris.Wrapf(internalerr.ErrInvalidConfig, "settings: quality.min_confidence must be in (0,1], got %v", c.Quality.MinConfidence)
	}
	if c.Batch.MaxConcurrent < 1 {
		return eris.Wrapf(internalerr.ErrInvalidConfig, "settings: batch.max_concurrent must be at least 1, got %d", c.Batch.MaxConcurrent)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	// stdout carries extraction output
	zapCfg.OutputPaths = []string{"stderr"}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "settings: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "settings: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
