// Package analysis holds the pure scoring and statistics used by the reports.
package analysis

import (
	"fmt"
	"sort"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/models"
)

// RiskScorer assigns each stock a bounded risk score from four factors
type RiskScorer struct {
	config common.RiskConfig
}

// NewRiskScorer creates a scorer with the given thresholds
func NewRiskScorer(config common.RiskConfig) *RiskScorer {
	return &RiskScorer{config: config}
}

// Config returns the thresholds in use
func (r *RiskScorer) Config() common.RiskConfig {
	return r.config
}

// Score returns Baseline adjusted by at most one step per factor
func (r *RiskScorer) Score(s models.StockRecord) int {
	c := r.config
	risk := c.Baseline

	if s.Beta < c.BetaLow {
		risk--
	} else if s.Beta > c.BetaHigh {
		risk++
	}

	if s.PERatio > c.PEMin && s.PERatio < c.PEMax {
		risk--
	} else if s.PERatio > c.PEExpensive {
		risk++
	}

	if s.DividendYield > c.DividendMin {
		risk--
	}

	if s.Volatility < c.VolLow {
		risk--
	} else if s.Volatility > c.VolHigh {
		risk++
	}

	return risk
}

// IsMediumRisk reports whether score lies in the inclusive medium band
func (r *RiskScorer) IsMediumRisk(score int) bool {
	return score >= r.config.MediumMin && score <= r.config.MediumMax
}

// SelectMediumRisk scores every record, keeps the medium band and orders the result by
// ascending score then descending month return. The input slice is not modified.
func (r *RiskScorer) SelectMediumRisk(records []models.StockRecord, limit int) []models.ScoredStock {
	selected := make([]models.ScoredStock, 0, len(records))
	for _, rec := range records {
		score := r.Score(rec)
		if !r.IsMediumRisk(score) {
			continue
		}
		selected = append(selected, models.ScoredStock{StockRecord: rec, RiskScore: score})
	}

	sort.SliceStable(selected, func(i, j int) bool {
		if selected[i].RiskScore != selected[j].RiskScore {
			return selected[i].RiskScore < selected[j].RiskScore
		}
		return selected[i].MonthReturn > selected[j].MonthReturn
	})

	if limit >= 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	return selected
}

// SelectionRules describes the four scoring heuristics as report bullets
func (r *RiskScorer) SelectionRules() []string {
	c := r.config
	return []string{
		fmt.Sprintf("Beta roughly between %s and %s", trimFloat(c.BetaLow), trimFloat(c.BetaHigh)),
		fmt.Sprintf("PE preferred below %s, above %s avoided", trimFloat(c.PEMax), trimFloat(c.PEExpensive)),
		fmt.Sprintf("Preference for dividend payers (yield above %s%%)", trimFloat(c.DividendMin)),
		fmt.Sprintf("Moderate volatility; daily moves between %s%% and %s%%", trimFloat(c.VolLow), trimFloat(c.VolHigh)),
	}
}

func trimFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
