package scoring

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/fadilmartias/notice-radar/internal/model"
	"github.com/fadilmartias/notice-radar/internal/util"
)

// Oracle is a text-generation backend: one prompt in, free-form text out.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Request struct {
	NoticeID int64
	Title    string
	Agency   *string
	Summary  *string
}

type SummaryRequest struct {
	NoticeID int64
	Title    string
	Agency   *string
	Content  string
}

// Client sends notices to the oracle. It holds no mutable state, so one
// Client may serve any number of concurrent evaluations.
type Client struct {
	oracle Oracle
}

func NewClient(oracle Oracle) *Client {
	return &Client{oracle: oracle}
}

// Evaluate asks the oracle for a relevance score of one notice. It makes
// exactly one call; persisting the result is up to the caller.
func (c *Client) Evaluate(ctx context.Context, req Request) (model.EvaluationResult, error) {
	if strings.TrimSpace(req.Title) == "" {
		return model.EvaluationResult{}, fmt.Errorf("notice %d: %w: title is required", req.NoticeID, ErrInvalidRequest)
	}

	summary := "none"
	if req.Summary != nil {
		if s := util.Truncate(util.StripHTML(*req.Summary), SummaryBudget); s != "" {
			summary = s
		}
	}
	prompt := evaluationPrompt(req.Title, util.Deref(req.Agency, "unknown"), summary)

	text, err := c.oracle.Complete(ctx, prompt)
	if err != nil {
		log.Printf("evaluate notice %d failed: %v", req.NoticeID, err)
		return model.EvaluationResult{}, fmt.Errorf("evaluate notice %d: %w: %w", req.NoticeID, ErrOracleUnavailable, err)
	}

	result := ParseScoreResponse(text)
	log.Printf("notice %d evaluated: score=%d", req.NoticeID, result.Score)
	return result, nil
}

// Summarize asks the oracle for a structured digest of a notice page.
func (c *Client) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	if strings.TrimSpace(req.Title) == "" {
		return "", fmt.Errorf("notice %d: %w: title is required", req.NoticeID, ErrInvalidRequest)
	}
	agency := util.Deref(req.Agency, "unknown")
	content := strings.TrimSpace(req.Content)
	if len([]rune(content)) < 100 {
		content = fmt.Sprintf("Title: %s\nAgency: %s", req.Title, agency)
	}

	text, err := c.oracle.Complete(ctx, summaryPrompt(req.Title, agency, content))
	if err != nil {
		return "", fmt.Errorf("summarize notice %d: %w: %w", req.NoticeID, ErrOracleUnavailable, err)
	}
	return strings.TrimSpace(text), nil
}
