package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/eodhd"
	"github.com/ternarybob/marketbrief/internal/models"
)

// EODHDProvider serves history and fundamentals from EODHD
type EODHDProvider struct {
	client *eodhd.Client
	logger arbor.ILogger
}

// NewEODHDProvider creates an EODHD-backed provider
func NewEODHDProvider(client *eodhd.Client, logger arbor.ILogger) *EODHDProvider {
	return &EODHDProvider{client: client, logger: logger}
}

// Name returns "eodhd"
func (p *EODHDProvider) Name() string {
	return "eodhd"
}

// GetHistory returns daily bars from the given date, oldest first
func (p *EODHDProvider) GetHistory(ctx context.Context, symbol common.Symbol, from time.Time) ([]models.PriceBar, error) {
	data, err := p.client.GetEOD(ctx, symbol.EODHDSymbol(), eodhd.WithDateRange(from, time.Time{}), eodhd.WithOrder("a"))
	if err != nil {
		return nil, wrapEODHD(symbol, err)
	}

	bars := make([]models.PriceBar, 0, len(data))
	for _, d := range data {
		closePrice := d.AdjustedClose
		if closePrice == 0 {
			closePrice = d.Close
		}
		bars = append(bars, models.PriceBar{
			Date:   d.Date.Time,
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  closePrice,
			Volume: d.Volume,
		})
	}
	return bars, nil
}

// GetFundamentals returns raw fundamentals; unknown values are left nil
func (p *EODHDProvider) GetFundamentals(ctx context.Context, symbol common.Symbol) (*models.Fundamentals, error) {
	resp, err := p.client.GetFundamentals(ctx, symbol.EODHDSymbol())
	if err != nil {
		return nil, wrapEODHD(symbol, err)
	}

	f := &models.Fundamentals{}
	if g := resp.General; g != nil {
		f.Name = g.Name
		f.Sector = firstNonEmpty(g.Sector, g.GicSector)
	}
	if h := resp.Highlights; h != nil {
		f.PERatio = h.PERatio
		f.DividendYield = fractionToPercent(h.DividendYield)
		if h.MarketCapitalization != nil {
			mc := int64(*h.MarketCapitalization)
			f.MarketCap = &mc
		}
	}
	if v := resp.Valuation; v != nil {
		f.PBRatio = v.PriceBookMRQ
		if f.PERatio == nil {
			f.PERatio = v.TrailingPE
		}
	}
	if t := resp.Technicals; t != nil {
		f.Beta = t.Beta
		f.Week52High = t.FiftyTwoWeekHigh
		f.Week52Low = t.FiftyTwoWeekLow
	}
	return f, nil
}

func wrapEODHD(symbol common.Symbol, err error) error {
	var apiErr *eodhd.APIError
	if errors.As(err, &apiErr) && apiErr.NotFound() {
		return common.Permanent(fmt.Errorf("eodhd %s: %w", symbol, err))
	}
	return fmt.Errorf("eodhd %s: %w", symbol, err)
}
