package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/models"
)

// MarketDataProvider supplies daily bars and fundamentals for a symbol
type MarketDataProvider interface {
	// Name identifies the provider in logs ("yahoo", "eodhd")
	Name() string
	// GetHistory returns daily bars from the given date, oldest first
	GetHistory(ctx context.Context, symbol common.Symbol, from time.Time) ([]models.PriceBar, error)
	// GetFundamentals returns raw fundamentals; unknown values are left nil
	GetFundamentals(ctx context.Context, symbol common.Symbol) (*models.Fundamentals, error)
}

// NewsProvider supplies plain-text market headlines
type NewsProvider interface {
	Name() string
	GetHeadlines(ctx context.Context) ([]string, error)
}
