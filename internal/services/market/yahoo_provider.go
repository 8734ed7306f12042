// Package market adapts the Yahoo and EODHD clients to MarketDataProvider.
package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/models"
	"github.com/ternarybob/marketbrief/internal/yahoo"
)

// YahooProvider serves history from the chart endpoint and fundamentals from
// quoteSummary, falling back to chart metadata when quoteSummary is refused.
type YahooProvider struct {
	client *yahoo.Client
	logger arbor.ILogger
}

// NewYahooProvider creates a Yahoo-backed provider
func NewYahooProvider(client *yahoo.Client, logger arbor.ILogger) *YahooProvider {
	return &YahooProvider{client: client, logger: logger}
}

// Name returns "yahoo"
func (p *YahooProvider) Name() string {
	return "yahoo"
}

// GetHistory returns daily bars from the given date, oldest first
func (p *YahooProvider) GetHistory(ctx context.Context, symbol common.Symbol, from time.Time) ([]models.PriceBar, error) {
	chart, err := p.client.GetChart(ctx, symbol.YahooSymbol(), from, time.Time{})
	if err != nil {
		return nil, wrapYahoo(symbol, err)
	}

	bars := make([]models.PriceBar, 0, len(chart.Bars))
	for _, b := range chart.Bars {
		bars = append(bars, models.PriceBar{
			Date:   b.Time,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	return bars, nil
}

// GetFundamentals returns raw fundamentals; unknown values are left nil
func (p *YahooProvider) GetFundamentals(ctx context.Context, symbol common.Symbol) (*models.Fundamentals, error) {
	summary, err := p.client.GetQuoteSummary(ctx, symbol.YahooSymbol())
	if err == nil {
		return fundamentalsFromSummary(summary), nil
	}

	var apiErr *yahoo.APIError
	if errors.As(err, &apiErr) && apiErr.NotFound() {
		return nil, wrapYahoo(symbol, err)
	}

	p.logger.Debug().
		Str("symbol", symbol.String()).
		Err(err).
		Msg("quoteSummary unavailable, using chart metadata")

	chart, chartErr := p.client.GetChart(ctx, symbol.YahooSymbol(), time.Now().AddDate(0, 0, -7), time.Time{})
	if chartErr != nil {
		return nil, wrapYahoo(symbol, chartErr)
	}
	return fundamentalsFromMeta(chart.Meta), nil
}

func fundamentalsFromSummary(s *yahoo.QuoteSummary) *models.Fundamentals {
	f := &models.Fundamentals{}
	if s.Price != nil {
		f.Name = firstNonEmpty(s.Price.LongName, s.Price.ShortName)
		f.CurrentPrice = s.Price.RegularMarketPrice.Raw
	}
	if s.AssetProfile != nil {
		f.Sector = s.AssetProfile.Sector
	}
	if d := s.SummaryDetail; d != nil {
		f.PERatio = d.TrailingPE.Raw
		f.Beta = d.Beta.Raw
		f.DividendYield = fractionToPercent(d.DividendYield.Raw)
		f.Week52High = d.FiftyTwoWeekHigh.Raw
		f.Week52Low = d.FiftyTwoWeekLow.Raw
		if d.MarketCap.Raw != nil {
			mc := int64(*d.MarketCap.Raw)
			f.MarketCap = &mc
		}
	}
	if k := s.DefaultKeyStatistics; k != nil {
		f.PBRatio = k.PriceToBook.Raw
		if f.Beta == nil {
			f.Beta = k.Beta.Raw
		}
	}
	return f
}

func fundamentalsFromMeta(m yahoo.ChartMeta) *models.Fundamentals {
	f := &models.Fundamentals{
		Name: firstNonEmpty(m.LongName, m.ShortName),
	}
	if m.RegularMarketPrice > 0 {
		f.CurrentPrice = floatPtr(m.RegularMarketPrice)
	}
	if m.FiftyTwoWeekHigh > 0 {
		f.Week52High = floatPtr(m.FiftyTwoWeekHigh)
	}
	if m.FiftyTwoWeekLow > 0 {
		f.Week52Low = floatPtr(m.FiftyTwoWeekLow)
	}
	return f
}

func wrapYahoo(symbol common.Symbol, err error) error {
	var apiErr *yahoo.APIError
	if errors.As(err, &apiErr) && apiErr.NotFound() {
		return common.Permanent(fmt.Errorf("yahoo %s: %w", symbol, err))
	}
	return fmt.Errorf("yahoo %s: %w", symbol, err)
}
