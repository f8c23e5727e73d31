package config

import (
	"strings"
	"time"
)

// LLMConfig configures the OpenAI-compatible chat model used by the local survey agent
type LLMConfig struct {
	APIKey     string        `koanf:"api_key" json:"-"` // Never serialize
	BaseURL    string        `koanf:"base_url" json:"baseUrl" validate:"required,url"`
	Model      string        `koanf:"model" json:"model" validate:"required"`
	Timeout    time.Duration `koanf:"timeout" json:"timeout" validate:"gt=0"`
	MaxRetries int           `koanf:"max_retries" json:"maxRetries" validate:"gte=0,lte=10"`
}

// AgentConfig points at an external survey agent API.
// When APIURL is empty the in-process agent is used.
type AgentConfig struct {
	APIURL  string        `koanf:"api_url" json:"apiUrl" validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout" json:"timeout" validate:"gt=0"`
}

// DefaultLLMConfig returns the default model settings
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		BaseURL:    "https://api.openai.com/v1",
		Model:      "gpt-4o-mini",
		Timeout:    20 * time.Second,
		MaxRetries: 3,
	}
}

// IsEnabled returns true if the model API is configured
func (c LLMConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ChatEndpoint returns the chat completions endpoint
func (c LLMConfig) ChatEndpoint() string {
	return strings.TrimRight(c.BaseURL, "/") + "/chat/completions"
}

// IsRemote returns true if an external agent API is configured
func (c AgentConfig) IsRemote() bool {
	return c.APIURL != ""
}
