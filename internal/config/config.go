// Package config loads the sandbox configuration from .sandbox/sandbox.yaml
// and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/adobe/reactor-extension-alloy-sub003/registry"
)

// DefaultPath is the config file location relative to the extension root.
const DefaultPath = ".sandbox/sandbox.yaml"

// Config holds the sandbox server and registry settings.
type Config struct {
	Host          string   `yaml:"host"`
	Port          int      `yaml:"port"`
	ExtensionDirs []string `yaml:"extensionDirs"`
	ContainerPath string   `yaml:"containerPath"`

	// EnginePath points at a turbine engine build. Empty serves the embedded stub.
	EnginePath string `yaml:"enginePath,omitempty"`

	LogLevel    string `yaml:"logLevel"`
	Development bool   `yaml:"development"`

	Registry RegistryConfig `yaml:"registry"`
}

// RegistryConfig holds the credentials used by the edit views.
type RegistryConfig struct {
	BaseURL     string `yaml:"baseURL"`
	ReactorURL  string `yaml:"reactorURL"`
	EdgeURL     string `yaml:"edgeURL"`
	OrgID       string `yaml:"orgID,omitempty"`
	APIKey      string `yaml:"apiKey,omitempty"`
	AccessToken string `yaml:"accessToken,omitempty"`
	Sandbox     string `yaml:"sandbox,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Host:          "localhost",
		Port:          3000,
		ExtensionDirs: []string{"."},
		ContainerPath: ".sandbox/container.json",
		LogLevel:      "info",
		Registry: RegistryConfig{
			BaseURL:    registry.DefaultBaseURL,
			ReactorURL: registry.DefaultReactorURL,
			EdgeURL:    registry.DefaultEdgeURL,
		},
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes c to path, creating the directory when needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: failed to marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from ALLOY_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("ALLOY_SANDBOX_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("ALLOY_SANDBOX_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: ALLOY_SANDBOX_PORT: %w", err)
		}
		c.Port = port
	}
	if v := os.Getenv("ALLOY_SANDBOX_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("ALLOY_ACCESS_TOKEN"); v != "" {
		c.Registry.AccessToken = v
	}
	if v := os.Getenv("ALLOY_ORG_ID"); v != "" {
		c.Registry.OrgID = v
	}
	if v := os.Getenv("ALLOY_API_KEY"); v != "" {
		c.Registry.APIKey = v
	}
	return nil
}

// Validate checks the values the server needs to start.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	if len(c.ExtensionDirs) == 0 {
		return fmt.Errorf("config: at least one extension directory is required")
	}
	if c.ContainerPath == "" {
		return fmt.Errorf("config: containerPath is required")
	}
	if c.LogLevel != "" {
		if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("config: logLevel: %w", err)
		}
	}
	return nil
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// RegistryClientConfig returns the registry client configuration.
func (c *Config) RegistryClientConfig() registry.Config {
	return registry.Config{
		BaseURL:     c.Registry.BaseURL,
		ReactorURL:  c.Registry.ReactorURL,
		EdgeURL:     c.Registry.EdgeURL,
		OrgID:       c.Registry.OrgID,
		APIKey:      c.Registry.APIKey,
		AccessToken: c.Registry.AccessToken,
	}
}
