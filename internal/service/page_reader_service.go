package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// PageReaderService fetches a notice page and returns its visible text.
type PageReaderService struct {
	client *resty.Client
}

func NewPageReaderService(timeout time.Duration) *PageReaderService {
	return &PageReaderService{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent),
	}
}

func (s *PageReaderService) ReadText(ctx context.Context, url string) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", url, err)
	}
	doc.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(doc.Find("body").Text()), " "), nil
}
