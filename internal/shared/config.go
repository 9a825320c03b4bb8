package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
//
// Constructed once at startup and passed by reference into the components
// that need it; nothing reads configuration from ambient globals.
type Config struct {
	Instagram InstagramConfig `toml:"instagram"`
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
}

// InstagramConfig contains the Graph API client registration and endpoints.
type InstagramConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	Scope        string `toml:"scope"`

	// Endpoint overrides, primarily for tests. Empty values fall back to
	// the production Graph hosts.
	AuthURL    string `toml:"auth_url"`
	TokenURL   string `toml:"token_url"`
	GraphURL   string `toml:"graph_url"`
	RefreshURL string `toml:"refresh_url"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// A .env file next to the working directory is loaded first (if present) and
// IGSYNC_CLIENT_ID / IGSYNC_CLIENT_SECRET environment variables override the
// file values, so secrets can stay out of config.toml.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	applyEnvOverrides(&config)
	return &config, nil
}

// DefaultConfig returns a Config with defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	applyEnvOverrides(&config)
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func applyEnvOverrides(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("IGSYNC_CLIENT_ID"); v != "" {
		config.Instagram.ClientID = v
	}
	if v := os.Getenv("IGSYNC_CLIENT_SECRET"); v != "" {
		config.Instagram.ClientSecret = v
	}
	if v := os.Getenv("IGSYNC_REDIRECT_URI"); v != "" {
		config.Instagram.RedirectURI = v
	}
}

// Validate checks that the fields required for the OAuth flow are present.
func (c *Config) Validate() error {
	if c.Instagram.ClientID == "" || c.Instagram.ClientSecret == "" {
		return fmt.Errorf("%w: instagram client_id and client_secret are required", ErrMissingCredentials)
	}
	if c.Instagram.RedirectURI == "" {
		return fmt.Errorf("%w: instagram redirect_uri is required", ErrInvalidConfig)
	}
	return nil
}
