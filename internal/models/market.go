package models

import (
	"time"
)

// Trend labels for an index snapshot
const (
	TrendBullish = "BULLISH"
	TrendBearish = "BEARISH"
)

// IndexSource records where an index snapshot came from
type IndexSource string

const (
	// IndexSourceLive indicates values fetched from the market data provider
	IndexSourceLive IndexSource = "live"
	// IndexSourceFallback indicates configured placeholder values
	IndexSourceFallback IndexSource = "fallback"
)

// IndexSnapshot is a point-in-time view of one market index
type IndexSnapshot struct {
	Name          string  `json:"name"`
	Current       float64 `json:"current"`
	PreviousClose float64 `json:"previous_close"`
	Change        float64 `json:"change"`         // Current - PreviousClose
	ChangePercent float64 `json:"change_percent"` // Change / PreviousClose * 100
}

// NewIndexSnapshot derives change fields from current and previous close
func NewIndexSnapshot(name string, current, previousClose float64) IndexSnapshot {
	change := current - previousClose
	var pct float64
	if previousClose != 0 {
		pct = change / previousClose * 100
	}
	return IndexSnapshot{
		Name:          name,
		Current:       current,
		PreviousClose: previousClose,
		Change:        change,
		ChangePercent: pct,
	}
}

// Trend returns BULLISH when the index is up on the previous close, BEARISH otherwise
func (s IndexSnapshot) Trend() string {
	if s.Change > 0 {
		return TrendBullish
	}
	return TrendBearish
}

// MarketIndices pairs the two headline indices.
// A nil *MarketIndices means index data was unavailable.
type MarketIndices struct {
	Nifty  IndexSnapshot `json:"nifty"`
	Sensex IndexSnapshot `json:"sensex"`
	Source IndexSource   `json:"source"`
}

// AvgChangePercent is the mean of the two index percent changes
func (m *MarketIndices) AvgChangePercent() float64 {
	return (m.Nifty.ChangePercent + m.Sensex.ChangePercent) / 2
}

// IsFallback reports whether the snapshot holds placeholder values
func (m *MarketIndices) IsFallback() bool {
	return m.Source == IndexSourceFallback
}

// StockRecord is the per-symbol snapshot consumed by analysis and reports.
// DividendYield, MonthReturn and Volatility are percents (1.5 == 1.5%).
type StockRecord struct {
	Symbol        string  `json:"symbol" validate:"required"`
	Name          string  `json:"name" validate:"required"`
	Sector        string  `json:"sector" validate:"required"`
	CurrentPrice  float64 `json:"current_price" validate:"gt=0"`
	PERatio       float64 `json:"pe_ratio"`
	PBRatio       float64 `json:"pb_ratio"`
	MarketCap     int64   `json:"market_cap" validate:"gte=0"`
	Beta          float64 `json:"beta"`
	DividendYield float64 `json:"dividend_yield" validate:"gte=0"`
	Week52High    float64 `json:"week52_high" validate:"gte=0"`
	Week52Low     float64 `json:"week52_low" validate:"gte=0"`
	MonthReturn   float64 `json:"month_return"`
	Volatility    float64 `json:"volatility" validate:"gte=0"`
}

// ScoredStock is a StockRecord with its derived risk score
type ScoredStock struct {
	StockRecord
	RiskScore int `json:"risk_score"`
}

// SectorReturn is the mean month return of one sector
type SectorReturn struct {
	Sector    string  `json:"sector"`
	AvgReturn float64 `json:"avg_return"`
	Count     int     `json:"count"`
}

// SectorPerformance is ordered by AvgReturn descending
type SectorPerformance []SectorReturn

// PriceBar is one daily OHLCV bar
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Fundamentals holds provider values before coercion; nil means not reported
type Fundamentals struct {
	Name          string   `json:"name"`
	Sector        string   `json:"sector"`
	CurrentPrice  *float64 `json:"current_price,omitempty"`
	PERatio       *float64 `json:"pe_ratio,omitempty"`
	PBRatio       *float64 `json:"pb_ratio,omitempty"`
	MarketCap     *int64   `json:"market_cap,omitempty"`
	Beta          *float64 `json:"beta,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"` // Percent
	Week52High    *float64 `json:"week52_high,omitempty"`
	Week52Low     *float64 `json:"week52_low,omitempty"`
}
