package analysis

import (
	"math"
	"sort"

	"github.com/ternarybob/marketbrief/internal/models"
)

// Levels are the suggested trade prices for one position
type Levels struct {
	Entry    float64
	StopLoss float64
	Target1  float64
	Target2  float64
}

// LevelPercents are the distances from entry, in percent
type LevelPercents struct {
	StopLoss float64
	Target1  float64
	Target2  float64
}

// Round2 rounds half away from zero to two decimals
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// TradeLevels derives entry, stop loss and targets from the current price
func TradeLevels(currentPrice float64, pct LevelPercents) Levels {
	return Levels{
		Entry:    Round2(currentPrice),
		StopLoss: Round2(currentPrice * (1 - pct.StopLoss/100)),
		Target1:  Round2(currentPrice * (1 + pct.Target1/100)),
		Target2:  Round2(currentPrice * (1 + pct.Target2/100)),
	}
}

// MonthReturn is the percent change from the first to the last close.
// Returns 0 when fewer than two bars or the first close is not positive.
func MonthReturn(bars []models.PriceBar) float64 {
	if len(bars) < 2 {
		return 0
	}
	first := bars[0].Close
	last := bars[len(bars)-1].Close
	if first <= 0 {
		return 0
	}
	return (last/first - 1) * 100
}

// DailyChanges returns the percent change between consecutive closes
func DailyChanges(bars []models.PriceBar) []float64 {
	if len(bars) < 2 {
		return nil
	}
	changes := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev <= 0 {
			continue
		}
		changes = append(changes, (bars[i].Close/prev-1)*100)
	}
	return changes
}

// Volatility is the sample standard deviation of daily percent changes
func Volatility(bars []models.PriceBar) float64 {
	changes := DailyChanges(bars)
	n := len(changes)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, c := range changes {
		sum += c
	}
	mean := sum / float64(n)

	var sq float64
	for _, c := range changes {
		d := c - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(n-1))
}

// SectorAverages averages MonthReturn per sector, best sector first
func SectorAverages(records []models.StockRecord) models.SectorPerformance {
	type acc struct {
		sum   float64
		count int
	}
	bySector := make(map[string]*acc)
	for _, r := range records {
		a, ok := bySector[r.Sector]
		if !ok {
			a = &acc{}
			bySector[r.Sector] = a
		}
		a.sum += r.MonthReturn
		a.count++
	}

	perf := make(models.SectorPerformance, 0, len(bySector))
	for sector, a := range bySector {
		perf = append(perf, models.SectorReturn{
			Sector:    sector,
			AvgReturn: a.sum / float64(a.count),
			Count:     a.count,
		})
	}

	sort.Slice(perf, func(i, j int) bool {
		if perf[i].AvgReturn != perf[j].AvgReturn {
			return perf[i].AvgReturn > perf[j].AvgReturn
		}
		return perf[i].Sector < perf[j].Sector
	})
	return perf
}
