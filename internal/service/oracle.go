package service

import (
	"context"
	"fmt"

	"github.com/fadilmartias/notice-radar/internal/config"
	"github.com/fadilmartias/notice-radar/internal/scoring"
	"github.com/fadilmartias/notice-radar/internal/util"
)

// NewOracle builds the evaluation backend selected by ORACLE_PROVIDER.
func NewOracle(ctx context.Context, cfg *config.ScoringConfig) (scoring.Oracle, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		return NewOpenRouterService(config.LoadOpenRouterConfig(), cfg.Timeout), nil
	case config.ProviderAnthropic:
		return NewAnthropicService(config.LoadAnthropicConfig(), cfg.Timeout), nil
	case config.ProviderGemini:
		return NewGeminiService(ctx, config.LoadGeminiConfig())
	default:
		return nil, fmt.Errorf("unknown ORACLE_PROVIDER %q", cfg.Provider)
	}
}

func snippet(body string) string {
	return util.Truncate(body, 300)
}
