package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/notice-radar/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const anthropicVersion = "2023-06-01"

type AnthropicService struct {
	APIKey    string
	Model     string
	MaxTokens int
	client    *resty.Client
}

func NewAnthropicService(cfg *config.AnthropicConfig, timeout time.Duration) *AnthropicService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("anthropic-version", anthropicVersion)
	return &AnthropicService{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
		client:    client,
	}
}

func (s *AnthropicService) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("x-api-key", s.APIKey).
		SetBody(map[string]any{
			"model":      s.Model,
			"max_tokens": s.MaxTokens,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		}).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic returned status %d: %s", resp.StatusCode(), snippet(resp.String()))
	}

	body := resp.String()
	if gjson.Get(body, "content.0.type").String() != "text" {
		return "", nil
	}
	return gjson.Get(body, "content.0.text").String(), nil
}
