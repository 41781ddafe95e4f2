// Package config provides configuration loading and management for autograder.
//
// Configuration is loaded using Viper, supporting YAML config files and environment
// variable overrides. The defaults reproduce the fixed values the grading
// service expects for this team, so the tool works without any config file.
//
// Key types:
//   - [Config] is the root configuration container with all settings
//   - [Loader] handles Viper-based configuration loading
//   - [Credentials] holds the secret token read from the .env file
//
// Configuration priority (highest to lowest):
//  1. Environment variables (AUTOGRADER_ prefix, e.g. AUTOGRADER_SERVICE_BASE_URL)
//  2. Config file specified by AUTOGRADER_CONFIG_PATH
//  3. User config directory: autograder/config.yaml
//  4. ./autograder.yaml
//  5. [DefaultConfig] defaults
package config

import (
	"time"

	"autograder/internal/grader"
)

// Config represents the root configuration structure.
type Config struct {
	// Service locates the remote grading service.
	Service ServiceConfig `mapstructure:"service"`

	// Team holds the fixed registration metadata.
	Team TeamConfig `mapstructure:"team"`

	// Credentials locates the .env file holding the access token.
	Credentials CredentialsConfig `mapstructure:"credentials"`

	// Output controls where run artifacts are written.
	Output OutputConfig `mapstructure:"output"`

	// Log controls diagnostic logging.
	Log LogConfig `mapstructure:"log"`
}

// ServiceConfig locates the grading service and the team's deployment.
type ServiceConfig struct {
	// BaseURL is the grading service root.
	// Default: "http://dl-berlin.ecn.purdue.edu:8000"
	BaseURL string `mapstructure:"base_url"`

	// SiteURL is the team's deployed front-end. The API endpoint sent at
	// registration is derived from it.
	// Default: "http://18.188.200.155/"
	SiteURL string `mapstructure:"site_url"`

	// Timeout bounds each HTTP call. Zero means no timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// TeamConfig is the identifying metadata sent at registration.
type TeamConfig struct {
	Group      int      `mapstructure:"group"`
	Repository string   `mapstructure:"repository"`
	Names      []string `mapstructure:"names"`
}

// CredentialsConfig locates the credentials file.
type CredentialsConfig struct {
	// EnvFile is the path of the .env file. Empty means ".env" in the
	// directory holding the autograder executable.
	EnvFile string `mapstructure:"env_file"`

	// TokenVar names the variable holding the access token.
	// Default: "GITHUB_TOKEN"
	TokenVar string `mapstructure:"token_var"`
}

// OutputConfig controls artifact file locations.
type OutputConfig struct {
	// Dir is the directory artifacts are written to. Empty means the
	// current working directory.
	Dir string `mapstructure:"dir"`

	// ResultFile receives the formatted run result.
	// Default: "autograder_log.txt"
	ResultFile string `mapstructure:"result_file"`

	// RunLogFile receives the downloaded run log.
	// Default: "autograder_run_log.txt"
	RunLogFile string `mapstructure:"run_log_file"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Default: "warn"
	Level string `mapstructure:"level"`

	// Format is "console" or "json". Default: "console"
	Format string `mapstructure:"format"`
}

// DefaultConfig returns a new [Config] with the values the grading service
// expects for this team.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			BaseURL: "http://dl-berlin.ecn.purdue.edu:8000",
			SiteURL: "http://18.188.200.155/",
		},
		Team: TeamConfig{
			Group:      8,
			Repository: "https://github.com/FA2024-ECE-461-Project/Phase2-Code/",
			Names:      []string{"Jimmy Ho", "Gaurav Vermani", "Ryan Lin", "Nick Ko"},
		},
		Credentials: CredentialsConfig{
			TokenVar: "GITHUB_TOKEN",
		},
		Output: OutputConfig{
			ResultFile: "autograder_log.txt",
			RunLogFile: "autograder_run_log.txt",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// Endpoint returns the team's API URL as registered with the service.
//
// The site URL already ends in a slash, so the registered value carries a
// double slash ("http://18.188.200.155//api"). The service has always been
// sent this exact string.
func (c *Config) Endpoint() string {
	return c.Service.SiteURL + "/api"
}

// FrontendEndpoint returns the team's front-end URL as registered.
func (c *Config) FrontendEndpoint() string {
	return c.Service.SiteURL
}

// RegistrationRequest builds the registration payload from the team
// metadata and the loaded credentials.
func (c *Config) RegistrationRequest(creds *Credentials) grader.RegistrationRequest {
	names := make([]string, len(c.Team.Names))
	copy(names, c.Team.Names)

	return grader.RegistrationRequest{
		Group:            c.Team.Group,
		Repository:       c.Team.Repository,
		Names:            names,
		Token:            creds.Token,
		Endpoint:         c.Endpoint(),
		FrontendEndpoint: c.FrontendEndpoint(),
	}
}
