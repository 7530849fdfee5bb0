package config

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath     = "inventory.yaml"
	DefaultDataFile = "./inv.dat"
	DefaultPrompt   = "% "
)

// Config holds the inventory tool configuration.
type Config struct {
	DataFile  string `yaml:"data_file"`
	Prompt    string `yaml:"prompt"`
	SaveOnEOF bool   `yaml:"save_on_eof"`

	Logging LoggingConfig `yaml:"logging"`
	Mirror  MirrorConfig  `yaml:"mirror"`
	Journal JournalConfig `yaml:"journal"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// MirrorConfig configures secondary stores updated after each save. Empty
// values disable a mirror.
type MirrorConfig struct {
	RedisAddr string `yaml:"redis_addr"`
	MySQLDSN  string `yaml:"mysql_dsn"`
}

type JournalConfig struct {
	Path string `yaml:"path"`
}

func DefaultConfig() *Config {
	return &Config{
		DataFile: DefaultDataFile,
		Prompt:   DefaultPrompt,
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("INVENTORY_DATA_FILE"); v != "" {
		c.DataFile = v
	}
	if v := os.Getenv("INVENTORY_SAVE_ON_EOF"); v != "" {
		save, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("INVENTORY_SAVE_ON_EOF: %w", err)
		}
		c.SaveOnEOF = save
	}
	if v := os.Getenv("INVENTORY_JOURNAL"); v != "" {
		c.Journal.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Mirror.RedisAddr = v
	}
	if v := os.Getenv("MYSQL_DSN"); v != "" {
		c.Mirror.MySQLDSN = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.DataFile == "" {
		return fmt.Errorf("data_file must not be empty")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

func (c *Config) LogLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// NewLogger builds a production logger writing to stderr, so stdout only
// carries command responses.
func (c *Config) NewLogger(verbose bool) (*zap.Logger, error) {
	level, err := c.LogLevel()
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
