package collector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
)

// fakeProvider serves canned data keyed by Symbol.String()
type fakeProvider struct {
	mu            sync.Mutex
	history       map[string][]models.PriceBar
	fundamentals  map[string]*models.Fundamentals
	historyErr    map[string]error
	historyCalls  map[string]int
	fundamentalsN int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		history:      make(map[string][]models.PriceBar),
		fundamentals: make(map[string]*models.Fundamentals),
		historyErr:   make(map[string]error),
		historyCalls: make(map[string]int),
	}
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GetHistory(ctx context.Context, symbol common.Symbol, from time.Time) ([]models.PriceBar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls[symbol.String()]++
	if err := f.historyErr[symbol.String()]; err != nil {
		return nil, err
	}
	return f.history[symbol.String()], nil
}

func (f *fakeProvider) GetFundamentals(ctx context.Context, symbol common.Symbol) (*models.Fundamentals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fundamentalsN++
	if fd, ok := f.fundamentals[symbol.String()]; ok {
		return fd, nil
	}
	return nil, errors.New("no fundamentals")
}

// memorySnapshots is an in-memory SnapshotStorage
type memorySnapshots struct {
	days map[string][]models.StockRecord
}

func (m *memorySnapshots) SaveSnapshot(ctx context.Context, day string, records []models.StockRecord) error {
	m.days[day] = records
	return nil
}

func (m *memorySnapshots) GetSnapshot(ctx context.Context, day string) ([]models.StockRecord, error) {
	records, ok := m.days[day]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return records, nil
}

func closes(values ...float64) []models.PriceBar {
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.PriceBar, len(values))
	for i, v := range values {
		bars[i] = models.PriceBar{Date: start.AddDate(0, 0, i), Open: v, High: v + 1, Low: v - 1, Close: v}
	}
	return bars
}

func testConfig() *common.Config {
	config := common.NewDefaultConfig()
	config.Indices.RetryDelay = common.Duration(time.Millisecond)
	config.Collector.RetryDelay = common.Duration(time.Millisecond)
	return config
}

func ptr(v float64) *float64 { return &v }

func TestGetMarketIndices_Live(t *testing.T) {
	provider := newFakeProvider()
	provider.history["INDX:NSEI"] = closes(24000, 24450, 24500)
	provider.history["INDX:BSESN"] = closes(80000, 80900, 81000)

	svc := NewService(provider, nil, testConfig(), nil, arbor.NewLogger())
	indices, err := svc.GetMarketIndices(context.Background())

	require.NoError(t, err)
	require.NotNil(t, indices)
	assert.Equal(t, models.IndexSourceLive, indices.Source)
	assert.Equal(t, 24500.0, indices.Nifty.Current)
	assert.Equal(t, 24450.0, indices.Nifty.PreviousClose)
	assert.InDelta(t, 50.0, indices.Nifty.Change, 1e-9)
	assert.Equal(t, "SENSEX", indices.Sensex.Name)
}

func TestGetMarketIndices_OnFailure(t *testing.T) {
	tests := []struct {
		onFailure string
		check     func(t *testing.T, indices *models.MarketIndices, err error)
	}{
		{"degrade", func(t *testing.T, indices *models.MarketIndices, err error) {
			assert.NoError(t, err)
			assert.Nil(t, indices)
		}},
		{"fallback", func(t *testing.T, indices *models.MarketIndices, err error) {
			require.NoError(t, err)
			require.NotNil(t, indices)
			assert.True(t, indices.IsFallback())
			assert.Equal(t, 24500.0, indices.Nifty.Current)
			assert.InDelta(t, 100.0, indices.Sensex.Change, 1e-9)
		}},
		{"abort", func(t *testing.T, indices *models.MarketIndices, err error) {
			assert.ErrorIs(t, err, ErrIndicesUnavailable)
			assert.Nil(t, indices)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.onFailure, func(t *testing.T) {
			provider := newFakeProvider()
			provider.history["INDX:NSEI"] = closes(24500) // one bar is not enough
			provider.history["INDX:BSESN"] = closes(80000, 81000)

			config := testConfig()
			config.Indices.OnFailure = tt.onFailure
			svc := NewService(provider, nil, config, nil, arbor.NewLogger())

			indices, err := svc.GetMarketIndices(context.Background())
			tt.check(t, indices, err)
			assert.Equal(t, 3, provider.historyCalls["INDX:NSEI"])
		})
	}
}

func TestGetAllStocksSnapshot_CoercesAndSkips(t *testing.T) {
	provider := newFakeProvider()
	provider.history["NSE:TCS"] = closes(3500, 3600, 3850)
	provider.fundamentals["NSE:TCS"] = &models.Fundamentals{
		Name: "Tata Consultancy Services", PERatio: ptr(30), Beta: ptr(0.7), DividendYield: ptr(1.5),
		Week52High: ptr(4500), Week52Low: ptr(3300),
	}
	provider.history["NSE:INFY"] = closes(1600, 1500) // no fundamentals
	provider.historyErr["NSE:GONE"] = common.Permanent(errors.New("not found"))
	provider.history["NSE:THIN"] = closes(100)

	universe := []UniverseEntry{
		{Symbol: "TCS", Sector: "IT"},
		{Symbol: "INFY", Sector: "IT"},
		{Symbol: "GONE", Sector: "IT"},
		{Symbol: "THIN", Sector: "IT"},
	}

	svc := NewService(provider, nil, testConfig(), universe, arbor.NewLogger())
	records, err := svc.GetAllStocksSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	tcs := records[0]
	assert.Equal(t, "TCS", tcs.Symbol)
	assert.Equal(t, "Tata Consultancy Services", tcs.Name)
	assert.Equal(t, 3850.0, tcs.CurrentPrice)
	assert.Equal(t, 30.0, tcs.PERatio)
	assert.Equal(t, 10.0, tcs.MonthReturn)
	assert.Equal(t, 4500.0, tcs.Week52High)

	infy := records[1]
	assert.Equal(t, "INFY", infy.Name)
	assert.Equal(t, 0.0, infy.PERatio)
	assert.Equal(t, 0.0, infy.PBRatio)
	assert.Equal(t, 1.0, infy.Beta)
	assert.Equal(t, 0.0, infy.DividendYield)
	assert.Equal(t, 1601.0, infy.Week52High)
	assert.Equal(t, 1499.0, infy.Week52Low)
	assert.InDelta(t, -6.25, infy.MonthReturn, 1e-9)

	assert.Equal(t, 1, provider.historyCalls["NSE:GONE"], "permanent errors are not retried")
	assert.Equal(t, 1, provider.historyCalls["NSE:THIN"])
}

func TestGetAllStocksSnapshot_ReusesStoredDay(t *testing.T) {
	provider := newFakeProvider()
	provider.history["NSE:TCS"] = closes(3500, 3600)
	snapshots := &memorySnapshots{days: make(map[string][]models.StockRecord)}

	universe := []UniverseEntry{{Symbol: "TCS", Sector: "IT"}}
	svc := NewService(provider, snapshots, testConfig(), universe, arbor.NewLogger())
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 16, 0, 0, 0, time.UTC) } // after the close in IST and UTC

	first, err := svc.GetAllStocksSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Contains(t, snapshots.days, "2025-03-14")

	second, err := svc.GetAllStocksSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.historyCalls["NSE:TCS"])
}

func TestGetAllStocksSnapshot_PartialFetchIsNotStored(t *testing.T) {
	provider := newFakeProvider()
	provider.history["NSE:TCS"] = closes(3500, 3600)
	provider.history["NSE:INFY"] = closes(1500, 1550)
	provider.historyErr["NSE:INFY"] = errors.New("upstream timeout")
	snapshots := &memorySnapshots{days: make(map[string][]models.StockRecord)}

	universe := []UniverseEntry{{Symbol: "TCS", Sector: "IT"}, {Symbol: "INFY", Sector: "IT"}}
	svc := NewService(provider, snapshots, testConfig(), universe, arbor.NewLogger())
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 16, 0, 0, 0, time.UTC) } // after the close in IST and UTC

	first, err := svc.GetAllStocksSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Empty(t, snapshots.days)

	delete(provider.historyErr, "NSE:INFY")

	second, err := svc.GetAllStocksSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Contains(t, snapshots.days, "2025-03-14")
}

func TestGetAllStocksSnapshot_IntradayFetchIsNotStored(t *testing.T) {
	provider := newFakeProvider()
	provider.history["NSE:TCS"] = closes(3500, 3600)
	snapshots := &memorySnapshots{days: make(map[string][]models.StockRecord)}

	svc := NewService(provider, snapshots, testConfig(), []UniverseEntry{{Symbol: "TCS", Sector: "IT"}}, arbor.NewLogger())
	svc.now = func() time.Time { return time.Date(2025, 3, 14, 4, 0, 0, 0, time.UTC) } // 09:30 IST

	_, err := svc.GetAllStocksSnapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snapshots.days)

	_, err = svc.GetAllStocksSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, provider.historyCalls["NSE:TCS"], "morning data is fetched again, not reused")
}

func TestGetAllStocksSnapshot_WeekendUsesLastSession(t *testing.T) {
	provider := newFakeProvider()
	provider.history["NSE:TCS"] = closes(3500, 3600)
	snapshots := &memorySnapshots{days: make(map[string][]models.StockRecord)}

	config := testConfig()
	config.Collector.Holidays = []string{"2025-03-14"}
	svc := NewService(provider, snapshots, config, []UniverseEntry{{Symbol: "TCS", Sector: "IT"}}, arbor.NewLogger())
	svc.now = func() time.Time { return time.Date(2025, 3, 16, 6, 0, 0, 0, time.UTC) } // Sunday

	_, err := svc.GetAllStocksSnapshot(context.Background())
	require.NoError(t, err)
	assert.Contains(t, snapshots.days, "2025-03-13")
}

func TestFundamentalsAreCached(t *testing.T) {
	provider := newFakeProvider()
	provider.history["NSE:TCS"] = closes(3500, 3600)
	provider.fundamentals["NSE:TCS"] = &models.Fundamentals{Name: "TCS"}

	config := testConfig()
	config.Collector.ReuseSnapshot = false
	svc := NewService(provider, nil, config, []UniverseEntry{{Symbol: "TCS", Sector: "IT"}}, arbor.NewLogger())

	_, err := svc.GetAllStocksSnapshot(context.Background())
	require.NoError(t, err)
	_, err = svc.GetAllStocksSnapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, provider.fundamentalsN)
	assert.Equal(t, 2, provider.historyCalls["NSE:TCS"])
}

func TestLoadUniverse(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "universe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`stocks:
  - symbol: RELIANCE
    sector: Energy
  - symbol: reliance
    sector: Energy
  - symbol: TCS.NS
  - symbol: HDFCBANK
    sector: Banking
    name: HDFC Bank
`), 0644))

	entries, err := LoadUniverse(path)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Unknown", entries[1].Sector)
	assert.Equal(t, "HDFC Bank", entries[2].Name)

	defaults, err := LoadUniverse("")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(defaults), 50)

	_, err = LoadUniverse(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
