package cli

import (
	"os"
	"path/filepath"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	TokenFile string
	Output    string
}

// DefaultConfig builds a Config from the environment with fallbacks
func DefaultConfig() *Config {
	cfg := &Config{
		ServerURL: os.Getenv("BOARDSCORE_SERVER"),
		Token:     os.Getenv("BOARDSCORE_TOKEN"),
		TokenFile: os.Getenv("BOARDSCORE_TOKEN_FILE"),
		Output:    "text",
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:8080"
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = defaultTokenFile()
	}
	return cfg
}

// LoadToken reads the token file unless a token is already set.
// A missing file is not an error.
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	c.Token = string(data)
	return nil
}

// SaveToken persists the token for later invocations
func (c *Config) SaveToken(token string) error {
	c.Token = token

	if err := os.MkdirAll(filepath.Dir(c.TokenFile), 0700); err != nil {
		return err
	}
	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".boardscore/token"
	}
	return filepath.Join(home, ".boardscore", "token")
}
