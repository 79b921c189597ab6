package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Client is the dashboard configuration. Values come from the YAML file,
// then ORDERWARDEN_* environment variables, then command line flags.
type Client struct {
	APIURL      string        `yaml:"api_url"`
	UserID      string        `yaml:"user_id"`
	Token       string        `yaml:"token"`
	TokenSecret string        `yaml:"token_secret"`
	SignInURL   string        `yaml:"sign_in_url"`
	ReturnURL   string        `yaml:"return_url"`
	Timeout     time.Duration `yaml:"timeout"`
	LogFile     string        `yaml:"log_file"`
}

func DefaultClient() Client {
	return Client{
		APIURL:  "http://localhost:8080",
		Timeout: 15 * time.Second,
	}
}

// DefaultClientPath is ~/.config/orderwarden/config.yaml, or "" when the
// user config dir is unknown.
func DefaultClientPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "orderwarden", "config.yaml")
}

// LoadClient reads path over the defaults and applies env overrides. A
// missing file is not an error.
func LoadClient(path string) (Client, error) {
	cfg := DefaultClient()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Client) applyEnv() {
	c.APIURL = getEnv("ORDERWARDEN_API_URL", c.APIURL)
	c.UserID = getEnv("ORDERWARDEN_USER_ID", c.UserID)
	c.Token = getEnv("ORDERWARDEN_TOKEN", c.Token)
	c.TokenSecret = getEnv("ORDERWARDEN_TOKEN_SECRET", c.TokenSecret)
	c.SignInURL = getEnv("ORDERWARDEN_SIGN_IN_URL", c.SignInURL)
	c.ReturnURL = getEnv("ORDERWARDEN_RETURN_URL", c.ReturnURL)
	c.Timeout = getEnvDuration("ORDERWARDEN_TIMEOUT", c.Timeout)
	c.LogFile = getEnv("ORDERWARDEN_LOG_FILE", c.LogFile)
}
