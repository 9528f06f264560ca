package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/notice-radar/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

type OpenRouterService struct {
	APIKey string
	Model  string
	client *resty.Client
}

func NewOpenRouterService(cfg *config.OpenRouterConfig, timeout time.Duration) *OpenRouterService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &OpenRouterService{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
		client: client,
	}
}

func (s *OpenRouterService) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.APIKey).
		SetBody(map[string]any{
			"model": s.Model,
			"messages": []map[string]string{
				{"role": "system", "content": "You evaluate public procurement and grant notices."},
				{"role": "user", "content": prompt},
			},
		}).
		Post("/api/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("openrouter returned status %d: %s", resp.StatusCode(), snippet(resp.String()))
	}

	text := gjson.Get(resp.String(), "choices.0.message.content")
	if !text.Exists() {
		return "", fmt.Errorf("no response from LLM")
	}
	return text.String(), nil
}
