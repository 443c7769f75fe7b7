package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/ajinkya-tambe/FixedIncome/internal/common"
)

const (
	defaultConfigPath = "configs/config.yaml"
	envPrefix         = "fixedincome"
)

type Config struct {
	Accounting AccountingConfig `mapstructure:"accounting"`
	Driver     DriverConfig     `mapstructure:"driver"`
	Journal    JournalConfig    `mapstructure:"journal"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type AccountingConfig struct {
	Method string `mapstructure:"method"`
}

type DriverConfig struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type JournalConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Path            string        `mapstructure:"path"`
	InMemory        bool          `mapstructure:"in_memory"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads the config file, applies env overrides and validates.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = defaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing config file is fine, the defaults stand.
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := common.ParseMethod(c.Accounting.Method); err != nil {
		return fmt.Errorf("accounting.method %q: %w", c.Accounting.Method, err)
	}
	if c.Driver.SweepInterval <= 0 {
		return fmt.Errorf("driver.sweep_interval must be positive, got %v", c.Driver.SweepInterval)
	}
	if c.Journal.Enabled && !c.Journal.InMemory && c.Journal.Path == "" {
		return errors.New("journal.path required when the journal is enabled")
	}
	return nil
}

// Method returns the parsed default accounting method.
func (c *Config) Method() common.AccountingMethod {
	m, _ := common.ParseMethod(c.Accounting.Method)
	return m
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("accounting.method", "WAP")

	v.SetDefault("driver.sweep_interval", "1s")

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", "data/fixedincome.db")
	v.SetDefault("journal.in_memory", false)
	v.SetDefault("journal.max_open_conns", 4)
	v.SetDefault("journal.max_idle_conns", 4)
	v.SetDefault("journal.conn_max_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.pretty", true)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.StringToTimeDurationHookFunc()
	}
}
