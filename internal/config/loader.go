package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "AUTOGRADER"

// ConfigPathEnv names the environment variable holding an explicit config file path.
const ConfigPathEnv = "AUTOGRADER_CONFIG_PATH"

// envKeyReplacer maps nested keys to environment variable names.
var envKeyReplacer = strings.NewReplacer(".", "_")

// Loader loads [Config] using Viper.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a [Loader] with defaults and environment overrides registered.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	return &Loader{v: v}
}

// Load reads the first config file found in the search order and applies
// environment overrides. A missing config file is not an error.
func (l *Loader) Load() (*Config, error) {
	if path := findConfigFile(); path != "" {
		return l.LoadFromFile(path)
	}
	return l.unmarshal()
}

// LoadFromFile reads the given YAML config file and applies environment overrides.
func (l *Loader) LoadFromFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// findConfigFile returns the first existing config file, or "" if none exists.
func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnv); path != "" {
		return path
	}

	var candidates []string
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "autograder", "config.yaml"))
	}
	candidates = append(candidates, "autograder.yaml")

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("service.base_url", cfg.Service.BaseURL)
	v.SetDefault("service.site_url", cfg.Service.SiteURL)
	v.SetDefault("service.timeout", cfg.Service.Timeout)
	v.SetDefault("team.group", cfg.Team.Group)
	v.SetDefault("team.repository", cfg.Team.Repository)
	v.SetDefault("team.names", cfg.Team.Names)
	v.SetDefault("credentials.env_file", cfg.Credentials.EnvFile)
	v.SetDefault("credentials.token_var", cfg.Credentials.TokenVar)
	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("output.result_file", cfg.Output.ResultFile)
	v.SetDefault("output.run_log_file", cfg.Output.RunLogFile)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
}
