package styletest

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up by LoadConfig when no path is given.
const DefaultConfigFile = "stylerule.yaml"

// Config tunes how a Matcher reads and reports styles.
type Config struct {
	// MarkerPrefix starts the bookkeeping lines the engine interleaves
	// with its CSS. Lines starting with it and a group number are dropped.
	MarkerPrefix string `yaml:"marker_prefix,omitempty"`

	// Mode is auto, server or dom.
	Mode string `yaml:"mode,omitempty"`

	// Color enables coloured failure messages.
	Color bool `yaml:"color"`

	// LogLevel is none, normal or debug.
	LogLevel string `yaml:"log_level,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MarkerPrefix: DefaultMarkerPrefix,
		Mode:         "auto",
		Color:        false,
		LogLevel:     "none",
	}
}

// LoadConfig reads a yaml config file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	applyDefaults(&config)

	if _, err := config.ParsedMode(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &config, nil
}

// applyDefaults fills in missing values
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.MarkerPrefix == "" {
		config.MarkerPrefix = defaults.MarkerPrefix
	}
	if config.Mode == "" {
		config.Mode = defaults.Mode
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
}

// ParsedMode returns the configured Mode.
func (c *Config) ParsedMode() (Mode, error) {
	return ParseMode(c.Mode)
}

// Logger builds a console logger writing to stderr at the configured level.
// "none" and unknown levels yield a no-op logger.
func (c *Config) Logger() *zap.Logger {
	var level zapcore.Level
	switch c.LogLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "normal":
		level = zapcore.InfoLevel
	default:
		return zap.NewNop()
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}
