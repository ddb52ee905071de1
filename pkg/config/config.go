package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for schema-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// LLM endpoint configuration
	LLM LLMConfig `yaml:"llm"`

	// Chat behavior configuration
	Chat ChatConfig `yaml:"chat"`
}

// LLMConfig holds the OpenAI-compatible endpoint settings.
type LLMConfig struct {
	BaseURL string `yaml:"base_url" env:"LLM_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model   string `yaml:"model" env:"LLM_MODEL" env-default:"gpt-4o"`
	// APIKey is optional for local endpoints. Secret - not in YAML.
	APIKey      string  `yaml:"-" env:"LLM_API_KEY"`
	Temperature float64 `yaml:"temperature" env:"LLM_TEMPERATURE" env-default:"0.2"`
}

// IsConfigured returns true if an LLM endpoint is usable.
func (c *LLMConfig) IsConfigured() bool {
	return c.BaseURL != "" && c.Model != ""
}

// ChatConfig holds chat session settings.
type ChatConfig struct {
	// HistoryLimit is the number of recent messages sent to the model per turn.
	HistoryLimit int `yaml:"history_limit" env:"CHAT_HISTORY_LIMIT" env-default:"20"`
	// MaxToolIterations bounds the tool-calling loop per user message.
	MaxToolIterations int `yaml:"max_tool_iterations" env:"CHAT_MAX_TOOL_ITERATIONS" env-default:"10"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// If config.yaml does not exist, configuration comes from environment variables
// alone so the binary can run without a config file.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// validate checks settings that would otherwise fail at first use.
func (c *Config) validate() error {
	if c.Chat.HistoryLimit <= 0 {
		return fmt.Errorf("chat history_limit must be positive, got %d", c.Chat.HistoryLimit)
	}
	if c.Chat.MaxToolIterations <= 0 {
		return fmt.Errorf("chat max_tool_iterations must be positive, got %d", c.Chat.MaxToolIterations)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature must be in [0, 2], got %g", c.LLM.Temperature)
	}
	return nil
}
