package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/analysis"
	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
	"github.com/ternarybob/marketbrief/internal/report"
)

type fakeCollector struct {
	indices    *models.MarketIndices
	indicesErr error
	stocks     []models.StockRecord
	stocksErr  error
}

func (f *fakeCollector) UniverseSize() int { return 54 }

func (f *fakeCollector) GetMarketIndices(ctx context.Context) (*models.MarketIndices, error) {
	return f.indices, f.indicesErr
}

func (f *fakeCollector) GetAllStocksSnapshot(ctx context.Context) ([]models.StockRecord, error) {
	return f.stocks, f.stocksErr
}

func (f *fakeCollector) SectorPerformance(records []models.StockRecord) models.SectorPerformance {
	return analysis.SectorAverages(records)
}

type fakeNews []string

func (f fakeNews) GetHeadlines(ctx context.Context) []string { return f }

type fakeRenderer struct {
	calls     int
	intraday  models.Report
	portfolio models.Report
	err       error
}

func (f *fakeRenderer) Render(intraday, portfolio models.Report, generatedAt time.Time) (*models.RenderedDocument, error) {
	f.calls++
	f.intraday, f.portfolio = intraday, portfolio
	if f.err != nil {
		return nil, f.err
	}
	return &models.RenderedDocument{
		Path:     "/tmp/reports/stock_report_20250314.pdf",
		Filename: "stock_report_20250314.pdf",
		Pages:    4,
	}, nil
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Notify(ctx context.Context, text string) error {
	f.messages = append(f.messages, text)
	return nil
}

type fakeSender struct {
	name     string
	err      error
	captions []string
}

func (f *fakeSender) Name() string { return f.name }

func (f *fakeSender) SendDocument(ctx context.Context, doc *models.RenderedDocument, caption string) error {
	f.captions = append(f.captions, caption)
	return f.err
}

type memoryRuns struct {
	runs []*models.RunRecord
}

func (m *memoryRuns) SaveRun(ctx context.Context, run *models.RunRecord) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryRuns) ListRuns(ctx context.Context, limit int) ([]*models.RunRecord, error) {
	return m.runs, nil
}

func makeStocks(n int) []models.StockRecord {
	sectors := []string{"IT", "Banking", "Energy", "FMCG"}
	stocks := make([]models.StockRecord, 0, n)
	for i := 0; i < n; i++ {
		stocks = append(stocks, models.StockRecord{
			Symbol:        fmt.Sprintf("SYM%02d", i),
			Name:          fmt.Sprintf("Company %02d Limited", i),
			Sector:        sectors[i%len(sectors)],
			CurrentPrice:  100 + float64(i),
			PERatio:       18,
			Beta:          1.0,
			DividendYield: 0.5,
			Volatility:    1.5,
			MonthReturn:   float64(i%7) - 3,
			Week52High:    150,
			Week52Low:     80,
		})
	}
	return stocks
}

type pipelineFixture struct {
	collector *fakeCollector
	renderer  *fakeRenderer
	notifier  *fakeNotifier
	telegram  *fakeSender
	email     *fakeSender
	runs      *memoryRuns
	pipeline  *Pipeline
}

func newFixture(collector *fakeCollector) *pipelineFixture {
	cfg := common.NewDefaultConfig()
	f := &pipelineFixture{
		collector: collector,
		renderer:  &fakeRenderer{},
		notifier:  &fakeNotifier{},
		telegram:  &fakeSender{name: "telegram"},
		email:     &fakeSender{name: "email"},
		runs:      &memoryRuns{},
	}
	composer := report.NewComposer(cfg.Report, analysis.NewRiskScorer(cfg.Risk))
	f.pipeline = NewPipeline(
		collector,
		fakeNews{"Sensex rallies 500 points as banks lead the broad gains"},
		composer,
		f.renderer,
		f.notifier,
		[]interfaces.DocumentSender{f.telegram, f.email},
		f.runs,
		cfg.Collector.MinStocks,
		time.UTC,
		arbor.NewLogger(),
	)
	f.pipeline.now = func() time.Time { return time.Date(2025, 3, 14, 10, 15, 0, 0, time.UTC) }
	return f
}

func liveIndices() *models.MarketIndices {
	return &models.MarketIndices{
		Nifty:  models.NewIndexSnapshot("NIFTY 50", 24600, 24500),
		Sensex: models.NewIndexSnapshot("SENSEX", 81200, 81000),
		Source: models.IndexSourceLive,
	}
}

func TestRun_Completes(t *testing.T) {
	f := newFixture(&fakeCollector{indices: liveIndices(), stocks: makeStocks(25)})

	record, err := f.pipeline.Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusCompleted, record.Status)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, 25, record.StocksAnalyzed)
	assert.Equal(t, 1, record.Headlines)
	assert.Greater(t, record.PortfolioPicks, 0)
	assert.Equal(t, models.IndexSourceLive, record.IndexSource)
	assert.True(t, record.Delivered)
	assert.Equal(t, "/tmp/reports/stock_report_20250314.pdf", record.DocumentPath)

	assert.Equal(t, []string{
		"🔄 Starting stock report generation...",
		"⏳ Fetching data for 54 stocks, please wait...",
		"✅ Report complete! Analyzed 25 stocks.",
	}, f.notifier.messages)

	require.Len(t, f.telegram.captions, 1)
	assert.True(t, strings.HasPrefix(f.telegram.captions[0], "📊 Daily Stock Report - 14 Mar 2025"))
	assert.Contains(t, f.telegram.captions[0], "Analyzed 25 stocks")
	assert.Contains(t, f.telegram.captions[0], "NIFTY 50 +0.41%")
	assert.Len(t, f.email.captions, 1)

	assert.Equal(t, models.ReportKindIntraday, f.renderer.intraday.Kind)
	assert.Equal(t, models.ReportKindPortfolio, f.renderer.portfolio.Kind)

	require.Len(t, f.runs.runs, 1)
	assert.Same(t, record, f.runs.runs[0])
}

func TestRun_InsufficientStocksAborts(t *testing.T) {
	f := newFixture(&fakeCollector{indices: liveIndices(), stocks: makeStocks(5)})

	record, err := f.pipeline.Run(context.Background(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStocks)

	assert.Equal(t, models.RunStatusAborted, record.Status)
	assert.Equal(t, 0, f.renderer.calls)
	assert.Empty(t, f.telegram.captions)
	assert.Equal(t, "❌ Only 5 stocks fetched. Aborting.", f.notifier.messages[len(f.notifier.messages)-1])
	require.Len(t, f.runs.runs, 1)
}

func TestRun_IndicesAbort(t *testing.T) {
	f := newFixture(&fakeCollector{
		indicesErr: fmt.Errorf("%w: provider down", ErrIndicesUnavailable),
		stocks:     makeStocks(25),
	})

	record, err := f.pipeline.Run(context.Background(), false)
	assert.ErrorIs(t, err, ErrIndicesUnavailable)
	assert.Equal(t, models.RunStatusAborted, record.Status)
	assert.Equal(t, []string{
		"🔄 Starting stock report generation...",
		"❌ Failed to fetch market indices. Will retry next run.",
	}, f.notifier.messages)
	assert.Equal(t, 0, f.renderer.calls)
}

func TestRun_DegradesWithoutIndices(t *testing.T) {
	f := newFixture(&fakeCollector{stocks: makeStocks(25)})

	record, err := f.pipeline.Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, models.RunStatusCompleted, record.Status)
	assert.Empty(t, record.IndexSource)
	assert.Contains(t, f.renderer.intraday.Text(), report.IndicesUnavailable)
	assert.NotContains(t, f.telegram.captions[0], "NIFTY 50")
}

func TestRun_DryRunSkipsDelivery(t *testing.T) {
	f := newFixture(&fakeCollector{indices: liveIndices(), stocks: makeStocks(25)})

	record, err := f.pipeline.Run(context.Background(), true)
	require.NoError(t, err)

	assert.True(t, record.DryRun)
	assert.False(t, record.Delivered)
	assert.Equal(t, 1, f.renderer.calls)
	assert.Empty(t, f.notifier.messages)
	assert.Empty(t, f.telegram.captions)
	assert.Empty(t, f.email.captions)
}

func TestRun_PartialDeliveryCompletes(t *testing.T) {
	f := newFixture(&fakeCollector{indices: liveIndices(), stocks: makeStocks(25)})
	f.email.err = errors.New("smtp unavailable")

	record, err := f.pipeline.Run(context.Background(), false)
	require.NoError(t, err)
	assert.True(t, record.Delivered)
	assert.Equal(t, models.RunStatusCompleted, record.Status)
}

func TestRun_AllDeliveryFails(t *testing.T) {
	f := newFixture(&fakeCollector{indices: liveIndices(), stocks: makeStocks(25)})
	f.telegram.err = errors.New("chat not found")
	f.email.err = errors.New("smtp unavailable")

	record, err := f.pipeline.Run(context.Background(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, models.RunStatusFailed, record.Status)
	assert.False(t, record.Delivered)
	assert.Contains(t, record.Error, "chat not found")
	assert.True(t, strings.HasPrefix(f.notifier.messages[len(f.notifier.messages)-1], "❌ Report generation failed"))
}

func TestRun_RenderErrorFails(t *testing.T) {
	f := newFixture(&fakeCollector{indices: liveIndices(), stocks: makeStocks(25)})
	f.renderer.err = errors.New("disk full")

	record, err := f.pipeline.Run(context.Background(), false)
	require.Error(t, err)
	assert.Equal(t, models.RunStatusFailed, record.Status)
	assert.Empty(t, f.telegram.captions)
}
