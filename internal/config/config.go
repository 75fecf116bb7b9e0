package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Hosting HostingConfig `toml:"hosting"`
	Models  ModelsConfig  `toml:"models"`
	Runner  RunnerConfig  `toml:"runner"`
	Journal JournalConfig `toml:"journal"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// ExpectedSecret is the shared secret inbound requests must carry.
	// Usually supplied via the EXPECTED_SECRET environment variable.
	ExpectedSecret string `toml:"expected_secret"`
}

// HostingConfig holds repository-hosting credentials
type HostingConfig struct {
	Username string `toml:"username"`
	Token    string `toml:"token"`
}

// ModelsConfig holds generative-model provider settings
type ModelsConfig struct {
	PrimaryModel    string `toml:"primary_model"`
	SecondaryModel  string `toml:"secondary_model"`
	MaxTokens       int    `toml:"max_tokens"`
	AnthropicAPIKey string `toml:"anthropic_api_key"`
	OpenAIAPIKey    string `toml:"openai_api_key"`
}

// RunnerConfig holds background-run settings
type RunnerConfig struct {
	MaxConcurrent  int `toml:"max_concurrent"`
	TimeoutMinutes int `toml:"timeout_minutes"`
}

// JournalConfig holds run-journal settings
type JournalConfig struct {
	DatabasePath  string `toml:"database_path"`
	RetentionDays int    `toml:"retention_days"`
	SweepCron     string `toml:"sweep_cron"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Models: ModelsConfig{
			PrimaryModel:   "claude-sonnet-4-20250514",
			SecondaryModel: "gpt-4o-mini",
			MaxTokens:      16000,
		},
		Runner: RunnerConfig{
			MaxConcurrent:  3,
			TimeoutMinutes: 10,
		},
		Journal: JournalConfig{
			DatabasePath:  filepath.Join(home, ".briefpress", "briefpress.db"),
			RetentionDays: 30,
			SweepCron:     "0 3 * * *",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults, and
// overlays secrets from the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.Journal.DatabasePath = ExpandPath(cfg.Journal.DatabasePath)
	cfg.applyEnv()

	return cfg, nil
}

// applyEnv overlays secrets from environment variables. Values from the
// environment win over the config file so deployments never need secrets on
// disk.
func (c *Config) applyEnv() {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.Hosting.Token = v
	}
	if v := os.Getenv("GITHUB_USERNAME"); v != "" {
		c.Hosting.Username = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Models.AnthropicAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Models.OpenAIAPIKey = v
	}
	if v := os.Getenv("EXPECTED_SECRET"); v != "" {
		c.Server.ExpectedSecret = v
	}
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "briefpress", "config.toml")
}
