package config

import (
	"os"
	"sync"
)

type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

var (
	openRouterConfig *OpenRouterConfig
	openRouterOnce   sync.Once
)

func LoadOpenRouterConfig() *OpenRouterConfig {
	openRouterOnce.Do(func() {
		openRouterConfig = &OpenRouterConfig{
			APIKey:  os.Getenv("OPENROUTER_API_KEY"),
			BaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai"),
			Model:   getEnv("OPENROUTER_MODEL", "openai/gpt-4o-mini"),
		}
	})
	return openRouterConfig
}
