package news

import (
	"context"

	"github.com/ternarybob/marketbrief/internal/eodhd"
)

// EODHDSource returns recent EODHD news titles for the headline indices
type EODHDSource struct {
	client  *eodhd.Client
	symbols []string
	limit   int
}

// NewEODHDSource creates an EODHD news source
func NewEODHDSource(client *eodhd.Client, symbols []string, limit int) *EODHDSource {
	return &EODHDSource{client: client, symbols: symbols, limit: limit}
}

// Name returns "eodhd"
func (e *EODHDSource) Name() string {
	return "eodhd"
}

// GetHeadlines returns article titles, newest first as served
func (e *EODHDSource) GetHeadlines(ctx context.Context) ([]string, error) {
	items, err := e.client.GetNews(ctx, e.symbols, eodhd.WithLimit(e.limit))
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(items))
	for _, item := range items {
		if t := normalizeSpace(item.Title); t != "" {
			titles = append(titles, t)
		}
	}
	return titles, nil
}
