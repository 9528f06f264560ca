package config

import (
	"strings"
	"sync"
	"time"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
	ProviderGemini     = "gemini"
)

type ScoringConfig struct {
	Provider string
	// Timeout applies to the oracle transport only.
	Timeout time.Duration
}

var (
	scoringConfig *ScoringConfig
	scoringOnce   sync.Once
)

func LoadScoringConfig() *ScoringConfig {
	scoringOnce.Do(func() {
		scoringConfig = &ScoringConfig{
			Provider: strings.ToLower(getEnv("ORACLE_PROVIDER", ProviderOpenRouter)),
			Timeout:  getEnvDuration("ORACLE_TIMEOUT", 90*time.Second),
		}
	})
	return scoringConfig
}
