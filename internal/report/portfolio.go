package report

import (
	"fmt"
	"strings"

	"github.com/ternarybob/marketbrief/internal/analysis"
	"github.com/ternarybob/marketbrief/internal/models"
)

const (
	// NoStockData is the terminal line when no records were supplied
	NoStockData = "No stock data available for portfolio analysis."
	// NoMediumRiskStocks is the terminal line when scoring keeps nothing
	NoMediumRiskStocks = "No medium-risk stocks found matching the criteria."
)

var (
	allocationLines = []string{
		"• 40% Large caps (stable compounders).",
		"• 35% Quality midcaps with earnings visibility.",
		"• 25% Sector leaders or structural themes.",
	}
	riskRuleLines = []string{
		"• Max 10% of capital in any single stock.",
		"• Always use a stop loss.",
		"• Review positions weekly; rebalance quarterly.",
	}
	disclaimerText = "This report is for educational purposes only and is NOT investment advice. " +
		"Markets are risky; do your own research or consult a SEBI-registered advisor."
)

// Portfolio builds the medium-risk shortlist report from unscored records
func (c *Composer) Portfolio(stocks []models.StockRecord) models.Report {
	w := &lineWriter{}

	w.section("MEDIUM-RISK PORTFOLIO STOCKS")
	w.add(c.dateLine())
	w.blank()
	w.add("Selection rules:")
	for _, rule := range c.scorer.SelectionRules() {
		w.add("  • " + rule)
	}
	w.blank()

	if len(stocks) == 0 {
		w.add(NoStockData)
		return models.Report{Kind: models.ReportKindPortfolio, Lines: w.lines}
	}

	picks := c.Picks(stocks)
	if len(picks) == 0 {
		w.add(NoMediumRiskStocks)
		return models.Report{Kind: models.ReportKindPortfolio, Lines: w.lines}
	}

	pct := analysis.LevelPercents{
		StopLoss: c.config.StopLossPct,
		Target1:  c.config.Target1Pct,
		Target2:  c.config.Target2Pct,
	}
	for i, s := range picks {
		c.writePick(w, i+1, s, analysis.TradeLevels(s.CurrentPrice, pct))
	}

	w.section("SUGGESTED ALLOCATION (MEDIUM RISK)")
	w.add(allocationLines...)
	w.blank()
	w.add("Risk rules:")
	w.add(riskRuleLines...)
	w.blank()

	w.section("DISCLAIMER")
	w.add(disclaimerText)

	return models.Report{Kind: models.ReportKindPortfolio, Lines: w.lines}
}

// Picks returns the shortlist the portfolio report lists
func (c *Composer) Picks(stocks []models.StockRecord) []models.ScoredStock {
	return c.scorer.SelectMediumRisk(stocks, c.config.PortfolioSize)
}

func (c *Composer) writePick(w *lineWriter, rank int, s models.ScoredStock, levels analysis.Levels) {
	w.add(strings.Repeat("-", ruleWidth))
	w.add(fmt.Sprintf("#%d  %s  (%s)", rank, s.Symbol, clipRunes(s.Name, c.config.NameMaxLen)))
	w.add("Sector        : " + s.Sector)
	w.add(fmt.Sprintf("Risk Score    : %d/10", s.RiskScore))
	w.add("Price         : " + c.money(s.CurrentPrice))
	w.add("1M Return     : " + signedPct(s.MonthReturn))
	w.add(fmt.Sprintf("PE / Beta     : %.2f / %.2f", s.PERatio, s.Beta))
	w.add(fmt.Sprintf("Dividend Yield: %.2f%%", s.DividendYield))
	w.add(fmt.Sprintf("Volatility    : %.2f%% (30D)", s.Volatility))
	w.add(fmt.Sprintf("52W High / Low: %s / %s", c.money(s.Week52High), c.money(s.Week52Low)))
	w.add("ENTRY   : " + c.money(levels.Entry))
	w.add(fmt.Sprintf("STOPLOSS: %s  (~%g%% downside)", c.money(levels.StopLoss), c.config.StopLossPct))
	w.add(fmt.Sprintf("TARGET1 : %s  (~%g%% upside)", c.money(levels.Target1), c.config.Target1Pct))
	w.add(fmt.Sprintf("TARGET2 : %s  (~%g%% upside)", c.money(levels.Target2), c.config.Target2Pct))
	w.blank()
}
