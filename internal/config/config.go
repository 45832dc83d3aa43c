package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "scripthub"
	configFileName = "config.yaml"
)

// Config holds the host settings. Values come from the optional YAML file
// first and are then overridden by SCRIPTHUB_* environment variables.
type Config struct {
	// ServiceHost is the host sent to the credential helper.
	ServiceHost string `yaml:"serviceHost" env:"SCRIPTHUB_SERVICE_HOST" envDefault:"github.com"`
	// HelperCommand is the executable invoked as "<cmd> credential fill".
	HelperCommand string `yaml:"helperCommand" env:"SCRIPTHUB_HELPER_COMMAND" envDefault:"git"`

	PrimaryTokenEnv  string `yaml:"primaryTokenEnv" env:"SCRIPTHUB_PRIMARY_TOKEN_ENV" envDefault:"GITHUB_TOKEN"`
	FallbackTokenEnv string `yaml:"fallbackTokenEnv" env:"SCRIPTHUB_FALLBACK_TOKEN_ENV" envDefault:"GH_TOKEN"`

	VerifyURL     string        `yaml:"verifyUrl" env:"SCRIPTHUB_VERIFY_URL" envDefault:"https://api.github.com/user"`
	UserAgent     string        `yaml:"userAgent" env:"SCRIPTHUB_USER_AGENT" envDefault:"ScriptHub-App"`
	VerifyTimeout time.Duration `yaml:"verifyTimeout" env:"SCRIPTHUB_VERIFY_TIMEOUT" envDefault:"15s"`

	BridgeAddr      string   `yaml:"bridgeAddr" env:"SCRIPTHUB_BRIDGE_ADDR" envDefault:"127.0.0.1:47864"`
	BridgeTokenFile string   `yaml:"bridgeTokenFile" env:"SCRIPTHUB_BRIDGE_TOKEN_FILE"`
	AllowedOrigins  []string `yaml:"allowedOrigins" env:"SCRIPTHUB_ALLOWED_ORIGINS" envSeparator:"," envDefault:"tauri://localhost,http://localhost:1420,http://127.0.0.1:1420"`
	FrontendURL     string   `yaml:"frontendUrl" env:"SCRIPTHUB_FRONTEND_URL" envDefault:"http://localhost:1420"`

	AppID string `yaml:"appId" env:"SCRIPTHUB_APP_ID" envDefault:"com.scripthub.app"`
	Debug bool   `yaml:"debug" env:"SCRIPTHUB_DEBUG"`
}

// Path returns the resolved configuration file path.
func Path() (string, error) {
	if custom := strings.TrimSpace(os.Getenv("SCRIPTHUB_CONFIG_PATH")); custom != "" {
		return custom, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine user config dir: %w", err)
	}

	return filepath.Join(base, configDirName, configFileName), nil
}

// Load reads the optional configuration file and applies environment
// overrides on top of it. A missing file is not an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	// Defaults first, evaluated against an empty environment.
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: map[string]string{}}); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
		}
	}

	// No default tag on this pass: only variables that are actually set
	// override the file.
	if err := env.ParseWithOptions(cfg, env.Options{DefaultValueTagName: "-"}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the host cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServiceHost) == "" {
		return errors.New("service host must not be empty")
	}
	if strings.ContainsAny(c.ServiceHost, "\r\n") {
		return errors.New("service host must be a single line")
	}
	if strings.TrimSpace(c.HelperCommand) == "" {
		return errors.New("helper command must not be empty")
	}
	if c.PrimaryTokenEnv == "" || c.FallbackTokenEnv == "" {
		return errors.New("token environment variable names must not be empty")
	}
	if c.PrimaryTokenEnv == c.FallbackTokenEnv {
		return fmt.Errorf("primary and fallback token variables are both %s", c.PrimaryTokenEnv)
	}
	if c.VerifyTimeout <= 0 {
		return fmt.Errorf("verify timeout must be positive, got %s", c.VerifyTimeout)
	}

	u, err := url.Parse(c.VerifyURL)
	if err != nil {
		return fmt.Errorf("parse verify url: %w", err)
	}
	switch u.Scheme {
	case "https":
	case "http":
		if !isLoopback(u.Hostname()) {
			return fmt.Errorf("verify url must use https: %s", c.VerifyURL)
		}
	default:
		return fmt.Errorf("unsupported verify url scheme %q", u.Scheme)
	}

	if _, _, err := net.SplitHostPort(c.BridgeAddr); err != nil {
		return fmt.Errorf("invalid bridge address %q: %w", c.BridgeAddr, err)
	}
	return nil
}

func isLoopback(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
