// Package news gathers market headlines from scraped pages and EODHD.
package news

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/interfaces"
)

// Service merges headlines from several providers
type Service struct {
	providers []interfaces.NewsProvider
	minLength int
	logger    arbor.ILogger
}

// NewService creates a news service over the given providers, queried in order
func NewService(providers []interfaces.NewsProvider, minLength int, logger arbor.ILogger) *Service {
	return &Service{
		providers: providers,
		minLength: minLength,
		logger:    logger,
	}
}

// GetHeadlines queries every provider and returns the de-duplicated union in
// provider order. Failing providers are logged and skipped; the result may be empty.
func (s *Service) GetHeadlines(ctx context.Context) []string {
	var all []string
	for _, p := range s.providers {
		if ctx.Err() != nil {
			break
		}

		headlines, err := p.GetHeadlines(ctx)
		if err != nil {
			s.logger.Warn().Str("source", p.Name()).Err(err).Msg("News source failed")
			continue
		}

		s.logger.Debug().Str("source", p.Name()).Int("headlines", len(headlines)).Msg("News source fetched")
		all = append(all, headlines...)
	}

	result := Dedupe(all, s.minLength)
	s.logger.Info().Int("headlines", len(result)).Msg("Market news collected")
	return result
}

// Dedupe trims headlines, drops those shorter than minLength runes and removes
// case-insensitive duplicates, keeping first occurrences in order
func Dedupe(headlines []string, minLength int) []string {
	seen := make(map[string]bool, len(headlines))
	result := make([]string, 0, len(headlines))
	for _, h := range headlines {
		h = normalizeSpace(h)
		if h == "" || len([]rune(h)) < minLength {
			continue
		}
		key := strings.ToLower(h)
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, h)
	}
	return result
}
