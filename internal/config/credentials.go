package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// EnvFileName is the credentials file looked up next to the executable.
const EnvFileName = ".env"

// ErrCredentialsMissing indicates the credentials file does not exist.
// This is the one failure checked before any network activity.
var ErrCredentialsMissing = errors.New("credentials file not found")

// Credentials holds the secrets loaded from the credentials file.
type Credentials struct {
	// Path is the file the credentials were read from.
	Path string

	// Token is the access token sent as gh_token.
	Token string
}

// HasToken reports whether a token was found.
func (c *Credentials) HasToken() bool {
	return c.Token != ""
}

// ResolveEnvFile returns the credentials file path. An explicit path is used
// as-is; otherwise the file is expected next to the running executable.
func ResolveEnvFile(path string) (string, error) {
	if path != "" {
		return path, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), EnvFileName), nil
}

// CheckCredentials verifies the credentials file exists. There is no
// fallback location.
func CheckCredentials(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w (looked for %s)", ErrCredentialsMissing, path)
		}
		return fmt.Errorf("failed to check credentials file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w (%s is a directory)", ErrCredentialsMissing, path)
	}
	return nil
}

// LoadCredentials parses the dotenv file at path and returns the value of
// tokenVar. A variable already set in the process environment takes
// precedence over the file, matching dotenv loaders that never overwrite
// existing variables.
//
// A file without the token is not an error; check [Credentials.HasToken].
func LoadCredentials(path, tokenVar string) (*Credentials, error) {
	if err := CheckCredentials(path); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", path, err)
	}
	v.AutomaticEnv()

	return &Credentials{
		Path:  path,
		Token: v.GetString(tokenVar),
	}, nil
}
