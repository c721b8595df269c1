package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/yurifrl/xtbpp/pkg/converter"
	"github.com/yurifrl/xtbpp/pkg/normalize"
)

const (
	EnvPrefix  = "XTBPP"
	ConfigName = "xtbpp"
	DotEnvFile = ".env"
)

// DepositDateLayout is the accepted form of deposit_date.
const DepositDateLayout = "2006-01-02T15:04"

type Config struct {
	OutputDir   string       `mapstructure:"output_dir"`
	BrokerTag   string       `mapstructure:"broker_tag"`
	Modes       []string     `mapstructure:"modes"`
	FullColumns bool         `mapstructure:"full_columns"`
	DepositDate string       `mapstructure:"deposit_date"`
	LogLevel    string       `mapstructure:"log_level"`
	Server      ServerConfig `mapstructure:"server"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// FileTTL is how long a converted CSV stays downloadable.
	FileTTL time.Duration `mapstructure:"file_ttl"`
}

// flagKeys binds config keys to the flag names the binaries register.
var flagKeys = map[string]string{
	"output_dir":   "output",
	"broker_tag":   "broker-tag",
	"modes":        "mode",
	"full_columns": "full",
	"deposit_date": "deposit-date",
	"log_level":    "log-level",
	"server.addr":  "addr",
}

func (c *Config) GetOutputPath() string {
	return c.OutputDir
}

// New creates a new default configuration
func New(outputPath string) *Config {
	return &Config{
		OutputDir: outputPath,
		BrokerTag: normalize.DefaultBrokerTag,
		Modes:     []string{string(converter.ModeDefault)},
		LogLevel:  "info",
		Server:    ServerConfig{Addr: "0.0.0.0:3000", FileTTL: 15 * time.Minute},
	}
}

// Build layers defaults, the config file, the environment (a .env file in
// the working directory included) and the flags that were set.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	defaults := New("")
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("broker_tag", defaults.BrokerTag)
	v.SetDefault("modes", defaults.Modes)
	v.SetDefault("full_columns", defaults.FullColumns)
	v.SetDefault("deposit_date", defaults.DepositDate)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.file_ttl", defaults.Server.FileTTL)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Level returns the configured log level, info when unset or invalid.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ExportModes validates the configured modes.
func (c *Config) ExportModes() ([]converter.Mode, error) {
	return converter.ParseModes(c.Modes)
}

// ConverterOptions returns the converter settings held by the config.
func (c *Config) ConverterOptions() (converter.Options, error) {
	opts := converter.Options{BrokerTag: c.BrokerTag}
	if c.DepositDate == "" {
		return opts, nil
	}
	at, err := time.ParseInLocation(DepositDateLayout, c.DepositDate, time.Local)
	if err != nil {
		return opts, fmt.Errorf("invalid deposit_date %q: %w", c.DepositDate, err)
	}
	opts.DepositDate = at
	return opts, nil
}
