package config

import (
	"os"
	"sync"
)

type AnthropicConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

var (
	anthropicConfig *AnthropicConfig
	anthropicOnce   sync.Once
)

func LoadAnthropicConfig() *AnthropicConfig {
	anthropicOnce.Do(func() {
		anthropicConfig = &AnthropicConfig{
			APIKey:    os.Getenv("ANTHROPIC_API_KEY"),
			BaseURL:   getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			Model:     getEnv("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
			MaxTokens: getEnvInt("ANTHROPIC_MAX_TOKENS", 1500),
		}
	})
	return anthropicConfig
}
