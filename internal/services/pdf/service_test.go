package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(common.PDFConfig{
		OutputDir: t.TempDir(),
		Title:     "DAILY INDIAN STOCK MARKET REPORT",
	}, arbor.NewLogger())
}

func sampleReport(kind models.ReportKind, n int) models.Report {
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		lines = append(lines, fmt.Sprintf("  %8s  Sample line %d ₹%.2f ▲ (%+6.2f%%)", "RELIANCE", i, 1234.5+float64(i), 1.25))
	}
	return models.Report{Kind: kind, Lines: lines}
}

var testDate = time.Date(2025, 3, 14, 9, 15, 0, 0, time.UTC)

func TestFilename(t *testing.T) {
	assert.Equal(t, "stock_report_20250314.pdf", Filename(testDate))
}

func TestRenderBytes_FourPages(t *testing.T) {
	svc := newTestService(t)

	data, err := svc.RenderBytes(sampleReport(models.ReportKindIntraday, 40), sampleReport(models.ReportKindPortfolio, 60), testDate)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"), "output should start with the PDF header")

	pages, err := CountPages(data)
	require.NoError(t, err)
	assert.Equal(t, PageCount, pages)
}

func TestRender_WritesFile(t *testing.T) {
	svc := newTestService(t)

	doc, err := svc.Render(sampleReport(models.ReportKindIntraday, 20), sampleReport(models.ReportKindPortfolio, 20), testDate)
	require.NoError(t, err)

	assert.Equal(t, "stock_report_20250314.pdf", doc.Filename)
	assert.Equal(t, filepath.Join(svc.config.OutputDir, doc.Filename), doc.Path)
	assert.Equal(t, PageCount, doc.Pages)

	info, err := os.Stat(doc.Path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), doc.Size)
}

func TestRender_OverlongReportStaysFourPages(t *testing.T) {
	svc := newTestService(t)

	doc, err := svc.Render(sampleReport(models.ReportKindIntraday, 600), sampleReport(models.ReportKindPortfolio, 900), testDate)
	require.NoError(t, err)
	assert.Equal(t, PageCount, doc.Pages)
}

func TestRender_EmptyReports(t *testing.T) {
	svc := newTestService(t)

	doc, err := svc.Render(models.Report{Kind: models.ReportKindIntraday}, models.Report{Kind: models.ReportKindPortfolio}, testDate)
	require.NoError(t, err)
	assert.Equal(t, PageCount, doc.Pages)
}

func TestWrapLines(t *testing.T) {
	identity := func(s string) string { return s }
	fits := func(s string) bool { return len(s) <= 20 }

	t.Run("short lines untouched", func(t *testing.T) {
		out := wrapLines([]string{"short", "   indented"}, identity, fits)
		assert.Equal(t, []string{"short", "   indented"}, out)
	})

	t.Run("breaks at spaces and keeps indentation", func(t *testing.T) {
		out := wrapLines([]string{"  alpha beta gamma delta epsilon"}, identity, fits)
		require.Len(t, out, 2)
		assert.Equal(t, "  alpha beta gamma", out[0])
		assert.Equal(t, "  delta epsilon", out[1])
		for _, line := range out {
			assert.LessOrEqual(t, len(line), 20)
		}
	})

	t.Run("hard cut without spaces", func(t *testing.T) {
		out := wrapLines([]string{strings.Repeat("x", 45)}, identity, fits)
		require.Len(t, out, 3)
		assert.Equal(t, strings.Repeat("x", 20), out[0])
		assert.Equal(t, strings.Repeat("x", 5), out[2])
	})

	t.Run("encodes glyphs", func(t *testing.T) {
		out := wrapLines([]string{"₹100 ▲"}, glyphReplacer.Replace, fits)
		assert.Equal(t, []string{"Rs.100 +"}, out)
	})
}
