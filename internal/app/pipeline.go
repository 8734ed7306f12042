package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
	"github.com/ternarybob/marketbrief/internal/report"
)

// Status messages sent to the notifier during a run
const (
	msgStarting         = "🔄 Starting stock report generation..."
	msgIndicesFailed    = "❌ Failed to fetch market indices. Will retry next run."
	msgFetchingStocks   = "⏳ Fetching data for %d stocks, please wait..."
	msgInsufficientData = "❌ Only %d stocks fetched. Aborting."
	msgRunFailed        = "❌ Report generation failed: %v"
	msgComplete         = "✅ Report complete! Analyzed %d stocks."
)

// MarketCollector supplies the market inputs of a run
type MarketCollector interface {
	UniverseSize() int
	GetMarketIndices(ctx context.Context) (*models.MarketIndices, error)
	GetAllStocksSnapshot(ctx context.Context) ([]models.StockRecord, error)
	SectorPerformance(records []models.StockRecord) models.SectorPerformance
}

// HeadlineSource supplies merged market headlines
type HeadlineSource interface {
	GetHeadlines(ctx context.Context) []string
}

// Pipeline runs one fetch, compose, render and deliver pass
type Pipeline struct {
	collector MarketCollector
	news      HeadlineSource
	composer  *report.Composer
	renderer  interfaces.DocumentRenderer
	notifier  interfaces.StatusNotifier   // nil disables status messages
	senders   []interfaces.DocumentSender // empty renders without delivery
	runs      interfaces.RunStorage       // nil disables run history
	minStocks int
	location  *time.Location
	logger    arbor.ILogger
	now       func() time.Time
}

// NewPipeline assembles a pipeline from its collaborators
func NewPipeline(
	collector MarketCollector,
	news HeadlineSource,
	composer *report.Composer,
	renderer interfaces.DocumentRenderer,
	notifier interfaces.StatusNotifier,
	senders []interfaces.DocumentSender,
	runs interfaces.RunStorage,
	minStocks int,
	location *time.Location,
	logger arbor.ILogger,
) *Pipeline {
	if location == nil {
		location = time.UTC
	}
	return &Pipeline{
		collector: collector,
		news:      news,
		composer:  composer,
		renderer:  renderer,
		notifier:  notifier,
		senders:   senders,
		runs:      runs,
		minStocks: minStocks,
		location:  location,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one pass. A dry run renders the PDF but sends nothing.
// The returned record is persisted whatever the outcome.
func (p *Pipeline) Run(ctx context.Context, dryRun bool) (*models.RunRecord, error) {
	record := &models.RunRecord{
		ID:        uuid.New().String(),
		StartedAt: p.now(),
		DryRun:    dryRun,
	}

	err := p.execute(ctx, record)

	record.Duration = p.now().Sub(record.StartedAt)
	switch {
	case err == nil:
		record.Status = models.RunStatusCompleted
	case errors.Is(err, ErrIndicesUnavailable), errors.Is(err, ErrInsufficientStocks):
		record.Status = models.RunStatusAborted
		record.Error = err.Error()
	default:
		record.Status = models.RunStatusFailed
		record.Error = err.Error()
		p.notify(ctx, record, fmt.Sprintf(msgRunFailed, err))
	}

	p.saveRun(record)

	p.logger.Info().
		Str("run_id", record.ID).
		Str("status", record.Status).
		Int("stocks", record.StocksAnalyzed).
		Int("picks", record.PortfolioPicks).
		Dur("duration", record.Duration).
		Msg("Report run finished")

	return record, err
}

func (p *Pipeline) execute(ctx context.Context, record *models.RunRecord) error {
	p.notify(ctx, record, msgStarting)

	p.logger.Info().Msg("Step 1: Fetching market indices")
	indices, err := p.collector.GetMarketIndices(ctx)
	if err != nil {
		if errors.Is(err, ErrIndicesUnavailable) {
			p.notify(ctx, record, msgIndicesFailed)
		}
		return err
	}
	if indices != nil {
		record.IndexSource = indices.Source
	}

	p.logger.Info().Int("universe", p.collector.UniverseSize()).Msg("Step 2: Fetching stock data")
	p.notify(ctx, record, fmt.Sprintf(msgFetchingStocks, p.collector.UniverseSize()))

	stocks, err := p.collector.GetAllStocksSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch stock snapshot: %w", err)
	}
	record.StocksAnalyzed = len(stocks)
	if len(stocks) < p.minStocks {
		p.notify(ctx, record, fmt.Sprintf(msgInsufficientData, len(stocks)))
		return fmt.Errorf("%w: %d of %d required", ErrInsufficientStocks, len(stocks), p.minStocks)
	}

	p.logger.Info().Msg("Step 3: Analysing sectors")
	sectors := p.collector.SectorPerformance(stocks)

	p.logger.Info().Msg("Step 4: Collecting headlines")
	headlines := p.news.GetHeadlines(ctx)
	record.Headlines = len(headlines)

	p.logger.Info().Msg("Step 5: Composing reports")
	intraday := p.composer.Intraday(indices, stocks, headlines, sectors)
	portfolio := p.composer.Portfolio(stocks)
	record.PortfolioPicks = len(p.composer.Picks(stocks))

	p.logger.Info().Msg("Step 6: Rendering PDF")
	doc, err := p.renderer.Render(intraday, portfolio, record.StartedAt.In(p.location))
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	record.DocumentPath = doc.Path

	if record.DryRun {
		p.logger.Info().Str("path", doc.Path).Msg("Dry run, skipping delivery")
		return nil
	}

	p.logger.Info().Int("channels", len(p.senders)).Msg("Step 7: Delivering report")
	if err := p.deliver(ctx, record, doc, p.caption(indices, record)); err != nil {
		return err
	}

	p.notify(ctx, record, fmt.Sprintf(msgComplete, len(stocks)))
	return nil
}

// deliver sends the document on every channel and fails only when all of them fail
func (p *Pipeline) deliver(ctx context.Context, record *models.RunRecord, doc *models.RenderedDocument, caption string) error {
	if len(p.senders) == 0 {
		p.logger.Warn().Msg("No delivery channel configured")
		return nil
	}

	var errs []error
	for _, sender := range p.senders {
		if err := sender.SendDocument(ctx, doc, caption); err != nil {
			p.logger.Error().Err(err).Str("channel", sender.Name()).Msg("Failed to deliver report")
			errs = append(errs, fmt.Errorf("%s: %w", sender.Name(), err))
			continue
		}
		record.Delivered = true
	}

	if !record.Delivered {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, errors.Join(errs...))
	}
	return nil
}

// caption is a short markdown summary sent with the document
func (p *Pipeline) caption(indices *models.MarketIndices, record *models.RunRecord) string {
	caption := fmt.Sprintf("📊 Daily Stock Report - %s\n\nAnalyzed %d stocks, %d medium-risk picks, %d headlines.",
		record.StartedAt.In(p.location).Format("02 Jan 2006"),
		record.StocksAnalyzed, record.PortfolioPicks, record.Headlines)

	if indices != nil {
		caption += fmt.Sprintf("\nNIFTY 50 %+.2f%% | SENSEX %+.2f%%",
			indices.Nifty.ChangePercent, indices.Sensex.ChangePercent)
	}
	return caption
}

// notify sends a status message; failures are logged and never abort the run
func (p *Pipeline) notify(ctx context.Context, record *models.RunRecord, text string) {
	if p.notifier == nil || record.DryRun {
		return
	}
	if err := p.notifier.Notify(ctx, text); err != nil {
		p.logger.Warn().Err(err).Str("text", text).Msg("Failed to send status message")
	}
}

func (p *Pipeline) saveRun(record *models.RunRecord) {
	if p.runs == nil {
		return
	}
	// The run's context may already be cancelled
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.runs.SaveRun(ctx, record); err != nil {
		p.logger.Warn().Err(err).Str("run_id", record.ID).Msg("Failed to save run record")
	}
}
