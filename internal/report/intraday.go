package report

import (
	"fmt"
	"sort"

	"github.com/ternarybob/marketbrief/internal/models"
)

// Sentiment sentences, strongest first
const (
	moodStrongBullish = "Strong risk-on sentiment, buyers in control."
	moodMildBullish   = "Mild positive bias, dips likely to be bought."
	moodCautious      = "Cautious, range-bound to mildly negative tone."
	moodRiskOff       = "Risk-off sentiment, aggressive selling pressure."

	indicesFallback = "Note: index values are placeholders; live index data could not be fetched."
	noHeadlines     = "No market headlines available."
)

// IndicesUnavailable replaces the index, mood and strategy sections when no index data exists
const IndicesUnavailable = "Index data unavailable: market mood and strategy not assessed."

var (
	strategyBullish = []string{
		"• Bias: Mild to strong bullish. Prefer buying quality names on intraday dips.",
		"• Focus: Sectors at top of performance table; avoid illiquid small-caps.",
		"• Position sizing: 2-3% of capital per trade.",
		"• Stop loss: trail below the day's low once a position is in profit.",
	}
	strategyNeutral = []string{
		"• Bias: Neutral, range-bound. Trade the range; avoid chasing breakouts.",
		"• Focus: Stock-specific moves in leading sectors; keep a balanced long/short book.",
		"• Position sizing: 1.5-2% of capital per trade.",
		"• Stop loss: place beyond the range extremes and book partial profits near them.",
	}
	strategyBearish = []string{
		"• Bias: Defensive. Capital protection is priority.",
		"• Focus: Large-cap, low beta names; avoid leveraged or speculative counters.",
		"• Position sizing: 1-2% of capital per trade, partial profit booking.",
		"• Stop loss: tighter than usual; exit on any break of the morning low.",
	}
)

// Mood classifies the average index change into one of four sentiment sentences.
// All band edges are exclusive, so an average of exactly 1.0 reads as mild.
func (c *Composer) Mood(avg float64) string {
	strong := c.config.StrongSentiment
	switch {
	case avg > strong:
		return moodStrongBullish
	case avg > 0:
		return moodMildBullish
	case avg > -strong:
		return moodCautious
	default:
		return moodRiskOff
	}
}

// Strategy picks the strategy text; band edges are inclusive on both sides
func (c *Composer) Strategy(avg float64) []string {
	band := c.config.StrategyBand
	switch {
	case avg >= band:
		return strategyBullish
	case avg <= -band:
		return strategyBearish
	default:
		return strategyNeutral
	}
}

// Intraday builds the market overview report. indices may be nil; every other
// input may be empty. The result always carries the banner and news header.
func (c *Composer) Intraday(indices *models.MarketIndices, stocks []models.StockRecord, headlines []string, sectors models.SectorPerformance) models.Report {
	w := &lineWriter{}

	w.section("INTRADAY MARKET OVERVIEW")
	w.add(c.dateLine())
	w.blank()

	if indices != nil {
		w.add(indexLine(indices.Nifty), indexLine(indices.Sensex))
		if indices.IsFallback() {
			w.add(indicesFallback)
		}
		w.blank()
		w.add("Overall Market Mood: " + c.Mood(indices.AvgChangePercent()))
		w.blank()
	} else {
		w.add(IndicesUnavailable)
		w.blank()
	}

	if len(stocks) > 0 {
		c.writeMovers(w, stocks)
	}

	if len(sectors) > 0 {
		w.section("SECTOR PERFORMANCE (Last 30 Days)")
		for _, s := range sectors[:min(c.config.Sectors, len(sectors))] {
			marker := "▼"
			if s.AvgReturn > 0 {
				marker = "▲"
			}
			w.add(fmt.Sprintf("  %-25s %s %+6.2f%%", s.Sector, marker, s.AvgReturn))
		}
		w.blank()
	}

	w.section("KEY MARKET NEWS (Headlines)")
	if len(headlines) == 0 || c.config.Headlines == 0 {
		w.add(noHeadlines)
	} else {
		for i, h := range headlines[:min(c.config.Headlines, len(headlines))] {
			w.add(fmt.Sprintf("%2d. %s", i+1, truncateRunes(h, c.config.HeadlineMaxLen)))
		}
	}

	if indices != nil {
		w.blank()
		w.section("TRADING GOALS & INTRADAY STRATEGY")
		w.add(c.Strategy(indices.AvgChangePercent())...)
	}

	return models.Report{Kind: models.ReportKindIntraday, Lines: w.lines}
}

// RankByMonthReturn returns a copy sorted by MonthReturn descending; equal returns keep input order
func RankByMonthReturn(stocks []models.StockRecord) []models.StockRecord {
	sorted := append([]models.StockRecord(nil), stocks...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MonthReturn > sorted[j].MonthReturn
	})
	return sorted
}

// writeMovers emits the top and bottom N of the same descending sort
func (c *Composer) writeMovers(w *lineWriter, stocks []models.StockRecord) {
	sorted := RankByMonthReturn(stocks)
	n := min(c.config.Gainers, len(sorted))

	w.section("TOP GAINERS / LOSERS (Last 30 Days)")
	w.blank()
	w.add(fmt.Sprintf("Top %d Gainers:", n))
	for _, s := range sorted[:n] {
		w.add(c.moverLine(s))
	}
	w.blank()
	w.add(fmt.Sprintf("Top %d Losers:", n))
	for _, s := range sorted[len(sorted)-n:] {
		w.add(c.moverLine(s))
	}
	w.blank()
}

func (c *Composer) moverLine(s models.StockRecord) string {
	return fmt.Sprintf("  %8s  %s  (%+6.2f%%)  Sector: %s", s.Symbol, c.moneyPadded(s.CurrentPrice), s.MonthReturn, s.Sector)
}

func indexLine(s models.IndexSnapshot) string {
	return fmt.Sprintf("%-8s: %.2f (%+.2f, %s) [%s]", s.Name, s.Current, s.Change, signedPct(s.ChangePercent), s.Trend())
}
