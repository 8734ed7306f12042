package pdf

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
)

// PageCount is the fixed length of the report document
const PageCount = 4

const (
	marginSide    = 10.0
	marginTop     = 10.0
	footerHeight  = 15.0
	maxFontSize   = 9.0
	minFontSize   = 5.0
	fontStep      = 0.5
	lineSpacing   = 0.5 // Line height in mm per point of font size
	bodyFont      = "Courier"
	headingFont   = "Helvetica"
	truncatedMark = "[... section truncated to fit page ...]"
)

var partTitles = [PageCount]string{
	"PART 1 • INTRADAY MARKET CONTEXT & SENTIMENT",
	"PART 2 • STRATEGY, GOALS & SECTOR VIEW",
	"PART 3 • MEDIUM-RISK STOCK SHORTLIST",
	"PART 4 • DETAILED LEVELS & PORTFOLIO PLAN",
}

// glyphs outside cp1252 that the reports use
var glyphReplacer = strings.NewReplacer(
	"₹", "Rs.",
	"▲", "+",
	"▼", "-",
	"✅", "",
	"❌", "",
)

// Service implements interfaces.DocumentRenderer with fpdf
type Service struct {
	config common.PDFConfig
	logger arbor.ILogger
}

// Compile-time assertion
var _ interfaces.DocumentRenderer = (*Service)(nil)

// NewService creates a new PDF service
func NewService(config common.PDFConfig, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// Filename returns the report file name for a date
func Filename(generatedAt time.Time) string {
	return fmt.Sprintf("stock_report_%s.pdf", generatedAt.Format("20060102"))
}

// Render lays out both reports on four pages, writes the file to the output
// directory and verifies the page count
func (s *Service) Render(intraday, portfolio models.Report, generatedAt time.Time) (*models.RenderedDocument, error) {
	data, err := s.RenderBytes(intraday, portfolio, generatedAt)
	if err != nil {
		return nil, err
	}

	pages, err := CountPages(data)
	if err != nil {
		return nil, fmt.Errorf("failed to verify PDF: %w", err)
	}
	if pages != PageCount {
		return nil, fmt.Errorf("rendered PDF has %d pages, expected %d", pages, PageCount)
	}

	if err := os.MkdirAll(s.config.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := Filename(generatedAt)
	path := filepath.Join(s.config.OutputDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	s.logger.Info().
		Str("path", path).
		Int("pages", pages).
		Int("size", len(data)).
		Msg("PDF report written")

	return &models.RenderedDocument{
		Path:     path,
		Filename: filename,
		Pages:    pages,
		Size:     int64(len(data)),
	}, nil
}

// RenderBytes produces the four-page document in memory
func (s *Service) RenderBytes(intraday, portfolio models.Report, generatedAt time.Time) ([]byte, error) {
	intraFirst, intraSecond := intraday.Halves()
	portFirst, portSecond := portfolio.Halves()
	sections := [PageCount][]string{intraFirst, intraSecond, portFirst, portSecond}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginSide, marginTop, marginSide)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(s.config.Title, true)
	pdf.SetCreator("marketbrief "+common.GetVersion(), true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	encode := func(text string) string {
		return tr(glyphReplacer.Replace(text))
	}

	title := encode(s.config.Title)
	dateLine := encode(generatedAt.Format("Monday, 02 January 2006"))

	pdf.SetHeaderFunc(func() {
		pdf.SetFont(headingFont, "B", 15)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.SetFont(headingFont, "", 10)
		pdf.CellFormat(0, 6, dateLine, "", 1, "C", false, 0, "")
		pdf.Ln(3)
		pageWidth, _ := pdf.GetPageSize()
		pdf.Line(marginSide, pdf.GetY(), pageWidth-marginSide, pdf.GetY())
		pdf.Ln(4)
	})

	pdf.SetFooterFunc(func() {
		pdf.SetY(-footerHeight)
		pdf.SetFont(headingFont, "I", 8)
		footer := encode(fmt.Sprintf("Page %d/%d • Generated automatically", pdf.PageNo(), PageCount))
		pdf.CellFormat(0, 10, footer, "", 0, "C", false, 0, "")
	})

	for i, lines := range sections {
		pdf.AddPage()

		pdf.SetFont(headingFont, "B", 13)
		pdf.SetFillColor(230, 230, 230)
		pdf.CellFormat(0, 9, encode(partTitles[i]), "", 1, "L", true, 0, "")
		pdf.Ln(2)

		s.writeSection(pdf, lines, encode)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	return buf.Bytes(), nil
}

// writeSection shrinks the body font until the wrapped lines fit between the
// current position and the footer. Lines that still overflow at the minimum
// size are cut and replaced by a marker.
func (s *Service) writeSection(pdf *fpdf.Fpdf, lines []string, encode func(string) string) {
	pageWidth, pageHeight := pdf.GetPageSize()
	width := pageWidth - 2*marginSide
	available := pageHeight - footerHeight - pdf.GetY()

	var wrapped []string
	var size, lineHeight float64
	for size = maxFontSize; size >= minFontSize; size -= fontStep {
		pdf.SetFont(bodyFont, "", size)
		lineHeight = size * lineSpacing
		wrapped = wrapLines(lines, encode, func(text string) bool {
			return pdf.GetStringWidth(text) <= width
		})
		if float64(len(wrapped))*lineHeight <= available {
			break
		}
	}
	if size < minFontSize {
		size = minFontSize
		pdf.SetFont(bodyFont, "", size)
		lineHeight = size * lineSpacing
	}

	maxLines := int(available / lineHeight)
	if maxLines > 0 && len(wrapped) > maxLines {
		s.logger.Warn().
			Int("lines", len(wrapped)).
			Int("max_lines", maxLines).
			Msg("Section overflows its page, truncating")
		wrapped = append(wrapped[:maxLines-1], encode(truncatedMark))
	}

	for _, line := range wrapped {
		pdf.CellFormat(0, lineHeight, line, "", 1, "L", false, 0, "")
	}
}

// wrapLines encodes each line and breaks it at spaces until every piece fits.
// Continuation lines keep the original indentation.
func wrapLines(lines []string, encode func(string) string, fits func(string) bool) []string {
	var out []string
	for _, raw := range lines {
		line := encode(raw)
		if fits(line) {
			out = append(out, line)
			continue
		}

		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		rest := line
		for !fits(rest) {
			cut := breakPoint(rest, len(indent), fits)
			out = append(out, strings.TrimRight(rest[:cut], " "))
			rest = indent + strings.TrimLeft(rest[cut:], " ")
		}
		out = append(out, rest)
	}
	return out
}

// breakPoint returns the byte index to split at: the last space after the
// indentation that leaves a fitting prefix, or a hard cut when there is none
func breakPoint(line string, indent int, fits func(string) bool) int {
	hard := len(line)
	for hard > indent+1 && !fits(line[:hard]) {
		hard--
	}
	if i := strings.LastIndex(line[:hard], " "); i > indent {
		return i
	}
	return hard
}
