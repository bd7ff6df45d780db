package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

const (
	DefaultRolloverCron     = "0 4 * * *"
	DefaultGeneratorTimeout = 20 * time.Second
	DefaultGeneratorRetries = 1
)

type Generator struct {
	URL     string        `mapstructure:"url"`
	Model   string        `mapstructure:"model"`
	APIKey  string        `mapstructure:"-"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

type Config struct {
	DBPath       string    `mapstructure:"db_path"`
	LogDir       string    `mapstructure:"log_dir"`
	RolloverCron string    `mapstructure:"rollover_cron"`
	Seed         uint64    `mapstructure:"seed"`
	Generator    Generator `mapstructure:"generator"`
}

// Env is the environment overlay. Set variables win over the config file.
type Env struct {
	DBPath           string        `env:"SAGE_DB_PATH"`
	GeneratorURL     string        `env:"SAGE_GENERATOR_URL"`
	GeneratorAPIKey  string        `env:"SAGE_GENERATOR_API_KEY"`
	GeneratorTimeout time.Duration `env:"SAGE_GENERATOR_TIMEOUT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// DefaultPath is ~/.config/sage/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sage", "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "")
	v.SetDefault("log_dir", "")
	v.SetDefault("rollover_cron", DefaultRolloverCron)
	v.SetDefault("seed", 0)
	v.SetDefault("generator.url", "")
	v.SetDefault("generator.model", "")
	v.SetDefault("generator.timeout", DefaultGeneratorTimeout)
	v.SetDefault("generator.retries", DefaultGeneratorRetries)
}

// Load reads the config file at path, if any, and overlays the environment.
// An empty path tries DefaultPath; a missing default file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	var e Env
	if err := ParseEnv(&e); err != nil {
		return Config{}, err
	}
	cfg.apply(e)

	if cfg.Generator.Timeout <= 0 {
		cfg.Generator.Timeout = DefaultGeneratorTimeout
	}
	if cfg.Generator.Retries < 0 {
		cfg.Generator.Retries = 0
	}
	return cfg, nil
}

func (c *Config) apply(e Env) {
	if e.DBPath != "" {
		c.DBPath = e.DBPath
	}
	if e.GeneratorURL != "" {
		c.Generator.URL = e.GeneratorURL
	}
	if e.GeneratorTimeout > 0 {
		c.Generator.Timeout = e.GeneratorTimeout
	}
	c.Generator.APIKey = e.GeneratorAPIKey
}
