// Package collector fetches index snapshots and the per-stock universe snapshot,
// turning raw provider data into validated StockRecords.
package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/patrickmn/go-cache"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/analysis"
	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
)

// ErrIndicesUnavailable is returned when index data cannot be fetched and
// indices.on_failure is "abort"
var ErrIndicesUnavailable = errors.New("market indices unavailable")

// errInsufficientHistory marks a series with fewer than two bars
var errInsufficientHistory = errors.New("insufficient price history")

const (
	niftyName  = "NIFTY 50"
	sensexName = "SENSEX"
)

// Service collects market data through a MarketDataProvider
type Service struct {
	provider  interfaces.MarketDataProvider
	snapshots interfaces.SnapshotStorage
	indices   common.IndicesConfig
	config    common.CollectorConfig
	universe  []UniverseEntry
	holidays  []time.Time
	location  *time.Location
	cache     *cache.Cache
	validate  *validator.Validate
	logger    arbor.ILogger
	now       func() time.Time
}

// NewService creates a collector. snapshots may be nil to disable snapshot reuse.
func NewService(
	provider interfaces.MarketDataProvider,
	snapshots interfaces.SnapshotStorage,
	config *common.Config,
	universe []UniverseEntry,
	logger arbor.ILogger,
) *Service {
	ttl := config.Collector.FundamentalsCacheTTL.Std()
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	location := config.Location()
	holidays, err := common.ParseHolidays(config.Collector.Holidays, location)
	if err != nil {
		logger.Warn().Err(err).Msg("Ignoring invalid holiday list")
		holidays = nil
	}

	return &Service{
		provider:  provider,
		snapshots: snapshots,
		indices:   config.Indices,
		config:    config.Collector,
		universe:  universe,
		holidays:  holidays,
		location:  location,
		cache:     cache.New(ttl, 2*ttl),
		validate:  validator.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// UniverseSize returns the number of symbols the snapshot covers
func (s *Service) UniverseSize() int {
	return len(s.universe)
}

// GetMarketIndices fetches NIFTY and SENSEX with bounded retries. When every
// attempt fails the configured on_failure policy decides the outcome: nil
// indices (degrade), placeholder values (fallback) or ErrIndicesUnavailable (abort).
func (s *Service) GetMarketIndices(ctx context.Context) (*models.MarketIndices, error) {
	niftySymbol := common.ParseSymbol(s.indices.Nifty)
	sensexSymbol := common.ParseSymbol(s.indices.Sensex)
	from := s.now().AddDate(0, 0, -s.indices.HistoryDays)

	var indices *models.MarketIndices
	policy := common.NewRetryPolicy(s.indices.MaxAttempts, s.indices.RetryDelay.Std())
	err := policy.ExecuteWithRetry(ctx, s.logger, "fetch_indices", func(attempt int) error {
		s.logger.Info().
			Int("attempt", attempt+1).
			Int("max_attempts", s.indices.MaxAttempts).
			Msg("Fetching market indices")

		nifty, err := s.fetchIndex(ctx, niftyName, niftySymbol, from)
		if err != nil {
			return err
		}
		sensex, err := s.fetchIndex(ctx, sensexName, sensexSymbol, from)
		if err != nil {
			return err
		}

		indices = &models.MarketIndices{Nifty: nifty, Sensex: sensex, Source: models.IndexSourceLive}
		return nil
	})

	if err == nil {
		s.logger.Info().
			Str("nifty", fmt.Sprintf("%.2f (%+.2f%%)", indices.Nifty.Current, indices.Nifty.ChangePercent)).
			Str("sensex", fmt.Sprintf("%.2f (%+.2f%%)", indices.Sensex.Current, indices.Sensex.ChangePercent)).
			Msg("Market indices fetched")
		return indices, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	switch s.indices.OnFailure {
	case "fallback":
		s.logger.Warn().Err(err).Msg("Failed to fetch indices, using fallback values")
		return s.fallbackIndices(), nil
	case "abort":
		return nil, fmt.Errorf("%w: %v", ErrIndicesUnavailable, err)
	default:
		s.logger.Warn().Err(err).Msg("Failed to fetch indices, continuing without index data")
		return nil, nil
	}
}

func (s *Service) fetchIndex(ctx context.Context, name string, symbol common.Symbol, from time.Time) (models.IndexSnapshot, error) {
	bars, err := s.provider.GetHistory(ctx, symbol, from)
	if err != nil {
		return models.IndexSnapshot{}, err
	}

	s.logger.Debug().Str("index", name).Int("rows", len(bars)).Msg("Index history received")

	if len(bars) < 2 {
		return models.IndexSnapshot{}, fmt.Errorf("%s: %w (%d bars)", name, errInsufficientHistory, len(bars))
	}

	current := analysis.Round2(bars[len(bars)-1].Close)
	previous := analysis.Round2(bars[len(bars)-2].Close)
	return models.NewIndexSnapshot(name, current, previous), nil
}

func (s *Service) fallbackIndices() *models.MarketIndices {
	fb := s.indices.Fallback
	return &models.MarketIndices{
		Nifty:  models.NewIndexSnapshot(niftyName, fb.NiftyCurrent, fb.NiftyPrevious),
		Sensex: models.NewIndexSnapshot(sensexName, fb.SensexCurrent, fb.SensexPrevious),
		Source: models.IndexSourceFallback,
	}
}

// GetAllStocksSnapshot fetches every universe symbol. Symbols that fail after
// retries are skipped with a warning; the result may be shorter than the universe.
// Snapshots are keyed by the last trading day, so weekend and holiday reruns
// reuse the previous session's data. Only a complete universe fetched after
// that session closed is stored; partial or intraday fetches are retried on
// the next run.
func (s *Service) GetAllStocksSnapshot(ctx context.Context) ([]models.StockRecord, error) {
	session := common.LastTradingDay(s.now().In(s.location), s.holidays)
	day := session.Format(common.DateLayout)

	if s.config.ReuseSnapshot && s.snapshots != nil {
		records, err := s.snapshots.GetSnapshot(ctx, day)
		if err == nil && len(records) > 0 {
			s.logger.Info().Str("day", day).Int("stocks", len(records)).Msg("Reusing stored stock snapshot")
			return records, nil
		}
		if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
			s.logger.Warn().Err(err).Str("day", day).Msg("Failed to read stored snapshot")
		}
	}

	start := s.now()
	from := start.AddDate(0, 0, -s.config.HistoryDays)
	records := make([]models.StockRecord, 0, len(s.universe))
	failed := 0

	for i, entry := range s.universe {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := s.fetchStock(ctx, entry, from)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			failed++
			s.logger.Warn().Str("symbol", entry.Symbol).Err(err).Msg("Skipping stock")
			continue
		}
		records = append(records, record)

		if (i+1)%10 == 0 {
			s.logger.Info().
				Int("processed", i+1).
				Int("total", len(s.universe)).
				Msg("Stock snapshot progress")
		}
	}

	s.logger.Info().
		Int("stocks", len(records)).
		Int("failed", failed).
		Dur("elapsed", s.now().Sub(start)).
		Msg("Stock snapshot complete")

	if s.snapshots != nil && len(records) > 0 {
		switch {
		case failed > 0:
			s.logger.Info().Int("failed", failed).Str("day", day).Msg("Snapshot incomplete, not stored")
		case !common.SessionClosed(start, session):
			s.logger.Info().Str("day", day).Msg("Session still open, snapshot not stored")
		default:
			if err := s.snapshots.SaveSnapshot(ctx, day, records); err != nil {
				s.logger.Warn().Err(err).Str("day", day).Msg("Failed to store stock snapshot")
			}
		}
	}

	return records, nil
}

// SectorPerformance averages month returns per sector, best first
func (s *Service) SectorPerformance(records []models.StockRecord) models.SectorPerformance {
	return analysis.SectorAverages(records)
}

func (s *Service) fetchStock(ctx context.Context, entry UniverseEntry, from time.Time) (models.StockRecord, error) {
	symbol := common.ParseSymbol(entry.Symbol)
	policy := common.NewRetryPolicy(s.config.MaxAttempts, s.config.RetryDelay.Std())

	var bars []models.PriceBar
	err := policy.ExecuteWithRetry(ctx, s.logger, "history:"+symbol.String(), func(int) error {
		var err error
		bars, err = s.provider.GetHistory(ctx, symbol, from)
		if err == nil && len(bars) < 2 {
			return common.Permanent(fmt.Errorf("%w (%d bars)", errInsufficientHistory, len(bars)))
		}
		return err
	})
	if err != nil {
		return models.StockRecord{}, err
	}

	fundamentals, err := s.fundamentals(ctx, symbol, policy)
	if err != nil {
		// History alone is enough; valuation fields fall back to placeholders
		s.logger.Debug().Str("symbol", symbol.String()).Err(err).Msg("Fundamentals unavailable")
		fundamentals = &models.Fundamentals{}
	}

	record := BuildRecord(entry, symbol, bars, fundamentals)
	if err := s.validate.Struct(record); err != nil {
		return models.StockRecord{}, fmt.Errorf("invalid record: %w", err)
	}
	return record, nil
}

func (s *Service) fundamentals(ctx context.Context, symbol common.Symbol, policy *common.RetryPolicy) (*models.Fundamentals, error) {
	key := s.provider.Name() + ":" + symbol.String()
	if cached, found := s.cache.Get(key); found {
		return cached.(*models.Fundamentals), nil
	}

	var f *models.Fundamentals
	err := policy.ExecuteWithRetry(ctx, s.logger, "fundamentals:"+symbol.String(), func(int) error {
		var err error
		f, err = s.provider.GetFundamentals(ctx, symbol)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(key, f)
	return f, nil
}

// BuildRecord merges history and fundamentals into a StockRecord, substituting
// neutral placeholders for missing values: P/E 0, P/B 0, beta 1, dividend 0,
// market cap 0 and a 52-week range from the history window.
func BuildRecord(entry UniverseEntry, symbol common.Symbol, bars []models.PriceBar, f *models.Fundamentals) models.StockRecord {
	last := bars[len(bars)-1].Close

	record := models.StockRecord{
		Symbol:        symbol.Code,
		Name:          firstNonEmpty(entry.Name, f.Name, symbol.Code),
		Sector:        firstNonEmpty(entry.Sector, f.Sector, "Unknown"),
		CurrentPrice:  analysis.Round2(valueOr(f.CurrentPrice, last)),
		PERatio:       analysis.Round2(valueOr(f.PERatio, 0)),
		PBRatio:       analysis.Round2(valueOr(f.PBRatio, 0)),
		Beta:          analysis.Round2(valueOr(f.Beta, 1)),
		DividendYield: analysis.Round2(valueOr(f.DividendYield, 0)),
		MonthReturn:   analysis.Round2(analysis.MonthReturn(bars)),
		Volatility:    analysis.Round2(analysis.Volatility(bars)),
	}
	if record.CurrentPrice <= 0 {
		record.CurrentPrice = analysis.Round2(last)
	}
	if f.MarketCap != nil && *f.MarketCap > 0 {
		record.MarketCap = *f.MarketCap
	}

	high, low := priceRange(bars)
	record.Week52High = analysis.Round2(valueOr(f.Week52High, high))
	record.Week52Low = analysis.Round2(valueOr(f.Week52Low, low))

	return record
}

func priceRange(bars []models.PriceBar) (float64, float64) {
	high, low := 0.0, math.MaxFloat64
	for _, b := range bars {
		high = math.Max(high, math.Max(b.High, b.Close))
		l := b.Low
		if l <= 0 {
			l = b.Close
		}
		low = math.Min(low, l)
	}
	if low == math.MaxFloat64 {
		low = 0
	}
	return high, low
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fallback
	}
	return *v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
