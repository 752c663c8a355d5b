package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig                 `json:"app" yaml:"app"`
	Gateways   map[string]GatewayConfig  `json:"gateways" yaml:"gateways"`
	Providers  map[string]ProviderConfig `json:"providers" yaml:"providers"`
	Search     SearchConfig              `json:"search" yaml:"search"`
	Services   ServicesConfig            `json:"services" yaml:"services"`
	Network    NetworkConfig             `json:"network" yaml:"network"`
	Agent      AgentConfig               `json:"agent" yaml:"agent"`
	Memory     MemoryConfig              `json:"memory" yaml:"memory"`
	Governance GovernanceConfig          `json:"governance" yaml:"governance"`
}

type AppConfig struct {
	Name     string `json:"name" yaml:"name"`
	Language string `json:"language" yaml:"language"`
	Prompts  string `json:"prompts" yaml:"prompts"`
}

type GatewayConfig struct {
	Token   string `json:"token" yaml:"token"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// ProviderConfig describes a completion backend. The "toolkit" provider only
// needs BaseURL; OpenAI-compatible providers need APIKey and Model.
type ProviderConfig struct {
	APIKey  string `json:"api_key" yaml:"api_key"`
	Model   string `json:"model" yaml:"model"`
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

type SearchConfig struct {
	Provider      string `json:"provider" yaml:"provider"` // serper, duckduckgo
	APIKey        string `json:"api_key" yaml:"api_key"`
	Endpoint      string `json:"endpoint" yaml:"endpoint"`
	Country       string `json:"country" yaml:"country"`
	Language      string `json:"language" yaml:"language"`
	NumResults    int    `json:"num_results" yaml:"num_results"`
	MinIntervalMS int    `json:"min_interval_ms" yaml:"min_interval_ms"`
}

type ServicesConfig struct {
	ImageURL   string `json:"image_url" yaml:"image_url"`
	ImageSize  string `json:"image_size" yaml:"image_size"`
	SandboxURL string `json:"sandbox_url" yaml:"sandbox_url"`
	Renderer   bool   `json:"renderer" yaml:"renderer"`
}

type NetworkConfig struct {
	TimeoutMS   int `json:"timeout_ms" yaml:"timeout_ms"`
	MaxRetries  int `json:"max_retries" yaml:"max_retries"`
	RetryBaseMS int `json:"retry_base_ms" yaml:"retry_base_ms"`
}

type AgentConfig struct {
	StepDelayMS int  `json:"step_delay_ms" yaml:"step_delay_ms"`
	StrictPlans bool `json:"strict_plans" yaml:"strict_plans"`
}

// GovernanceConfig restricts which tools a step may call and which arguments
// are refused outright.
type GovernanceConfig struct {
	DeniedTools    []string `json:"denied_tools" yaml:"denied_tools"`
	DeniedPatterns []string `json:"denied_patterns" yaml:"denied_patterns"`
}

type MemoryConfig struct {
	Type string `json:"type" yaml:"type"`
	Path string `json:"path" yaml:"path"`
}

// Load reads a JSON or YAML config file (chosen by extension) and applies
// environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func LoadConfig(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// ApplyEnv overrides secrets from the environment so they can stay out of the file.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SERPER_API_KEY"); v != "" {
		c.Search.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		if c.Gateways == nil {
			c.Gateways = map[string]GatewayConfig{}
		}
		tg := c.Gateways["telegram"]
		tg.Token = v
		c.Gateways["telegram"] = tg
	}
	for name, env := range map[string]string{"openai": "OPENAI_API_KEY", "openrouter": "OPENROUTER_API_KEY"} {
		v := os.Getenv(env)
		p, ok := c.Providers[name]
		if v == "" || !ok {
			continue
		}
		p.APIKey = v
		c.Providers[name] = p
	}
	if v := os.Getenv("WAKEEL_SANDBOX_URL"); v != "" {
		c.Services.SandboxURL = v
	}
}

func (c *Config) Validate() error {
	if c.Network.TimeoutMS < 0 || c.Network.MaxRetries < 0 || c.Network.RetryBaseMS < 0 {
		return fmt.Errorf("network settings must not be negative")
	}
	if c.Search.MinIntervalMS < 0 || c.Agent.StepDelayMS < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	switch c.Search.Provider {
	case "", "serper", "duckduckgo":
	default:
		return fmt.Errorf("unsupported search provider: %s", c.Search.Provider)
	}
	for _, pattern := range c.Governance.DeniedPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid governance pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// GetDefaultProvider returns the first enabled provider, preferring the
// toolkit endpoint when several are enabled.
func (c *Config) GetDefaultProvider() (string, ProviderConfig) {
	if p, ok := c.Providers["toolkit"]; ok && p.Enabled {
		return "toolkit", p
	}
	for name, p := range c.Providers {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (GatewayConfig, bool) {
	tg, ok := c.Gateways["telegram"]
	if ok && tg.Enabled && tg.Token != "" {
		return tg, true
	}
	return GatewayConfig{}, false
}

func (c *Config) Language() string {
	if c.App.Language == "" {
		return "ar"
	}
	return c.App.Language
}

func (c *Config) RequestTimeout() time.Duration {
	return millis(c.Network.TimeoutMS, 30*time.Second)
}

func (c *Config) MaxRetries() int {
	if c.Network.MaxRetries == 0 {
		return 3
	}
	return c.Network.MaxRetries
}

func (c *Config) RetryBaseDelay() time.Duration {
	return millis(c.Network.RetryBaseMS, time.Second)
}

func (c *Config) MinSearchInterval() time.Duration {
	return millis(c.Search.MinIntervalMS, time.Second)
}

func (c *Config) StepDelay() time.Duration {
	return millis(c.Agent.StepDelayMS, 800*time.Millisecond)
}

func millis(v int, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return time.Duration(v) * time.Millisecond
}
