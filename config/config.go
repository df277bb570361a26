package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raayon-bot/raayon/pkg/model"
)

type Config struct {
	Telegram struct {
		Token     string   `json:"token"`
		Proxy     string   `json:"proxy"`
		AllowFrom []string `json:"allow_from"`
	} `json:"telegram"`
	Provider model.ProviderConfig `json:"provider"`

	// Engine tuning.
	PageSize       int     `json:"page_size"`
	HistoryLimit   int     `json:"history_limit"`
	TimeoutSeconds int     `json:"timeout_seconds"`
	MaxTokens      int     `json:"max_tokens"`
	Temperature    float64 `json:"temperature"`
}

func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".raayon")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

func DataDir() string {
	return ConfigDir()
}

func Init() error {
	dir := ConfigDir()
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	cfgPath := ConfigPath()
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		return nil
	}

	cfg := &Config{
		Provider: model.ProviderConfig{
			Type:  "openai",
			Model: "gpt-4",
		},
	}
	applyDefaults(cfg)

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(cfgPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Created config at %s\n", cfgPath)
	fmt.Println("Please edit the config file and add your telegram token and API key.")
	return nil
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadFromFile(cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load config file: %w", err)
	}

	overrideWithEnv(cfg)
	applyDefaults(cfg)

	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is required (set TELEGRAM_BOT_TOKEN env or telegram.token in %s)", ConfigPath())
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Provider.Type == "" {
		cfg.Provider.Type = "openai"
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = "gpt-4"
	}

	switch cfg.Provider.Type {
	case "openai", "openai-compatible":
		if cfg.Provider.BaseURL == "" {
			cfg.Provider.BaseURL = "https://api.openai.com/v1"
		}
	case "anthropic":
		if cfg.Provider.BaseURL == "" {
			cfg.Provider.BaseURL = "https://api.anthropic.com/v1"
		}
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 100
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 60
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2500
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.7
	}
}

func loadFromFile(cfg *Config) error {
	cfgPath := ConfigPath()

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	return nil
}

func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
	if v := os.Getenv("TELEGRAM_PROXY"); v != "" {
		cfg.Telegram.Proxy = v
	}
	if v := os.Getenv("RAAYON_PROVIDER_TYPE"); v != "" {
		cfg.Provider.Type = v
	}
	if v := os.Getenv("RAAYON_PROVIDER_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("RAAYON_PROVIDER_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("RAAYON_PROVIDER_MODEL"); v != "" {
		cfg.Provider.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = v
		cfg.Provider.Type = "openai"
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = v
		cfg.Provider.Type = "anthropic"
	}
}
