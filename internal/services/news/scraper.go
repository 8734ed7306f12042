package news

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/common"
)

// Scraper extracts headline text from one news page with a CSS selector
type Scraper struct {
	source    common.NewsSource
	client    *resty.Client
	limit     int
	minLength int
	logger    arbor.ILogger
}

// NewScraper creates a scraper for a configured source
func NewScraper(source common.NewsSource, config common.NewsConfig, logger arbor.ILogger) *Scraper {
	timeout := config.RequestTimeout.Std()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeaders(map[string]string{
			"User-Agent":      config.UserAgent,
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		})

	return &Scraper{
		source:    source,
		client:    client,
		limit:     config.PerSourceLimit,
		minLength: config.MinLength,
		logger:    logger,
	}
}

// Name returns the source name
func (s *Scraper) Name() string {
	return s.source.Name
}

// GetHeadlines fetches the page and returns up to limit distinct headlines
func (s *Scraper) GetHeadlines(ctx context.Context) ([]string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(s.source.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.source.URL, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("failed to fetch %s: status %d", s.source.URL, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.source.URL, err)
	}

	return s.extract(doc), nil
}

func (s *Scraper) extract(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var headlines []string

	doc.Find(s.source.Selector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := normalizeSpace(sel.Text())
		key := strings.ToLower(text)
		if len([]rune(text)) < s.minLength || seen[key] {
			return true
		}
		seen[key] = true
		headlines = append(headlines, text)
		return s.limit <= 0 || len(headlines) < s.limit
	})

	s.logger.Debug().
		Str("source", s.source.Name).
		Str("selector", s.source.Selector).
		Int("headlines", len(headlines)).
		Msg("Headlines extracted")

	return headlines
}

// normalizeSpace trims and collapses internal whitespace
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
