// Package report composes the intraday and portfolio text reports.
// Composition is pure apart from the injected clock.
package report

import (
	"strings"
	"time"

	"github.com/ternarybob/marketbrief/internal/analysis"
	"github.com/ternarybob/marketbrief/internal/common"
)

const ruleWidth = 70

// Composer builds report lines from already-fetched market data
type Composer struct {
	config   common.ReportConfig
	scorer   *analysis.RiskScorer
	now      func() time.Time
	location *time.Location
}

// Option configures a Composer
type Option func(*Composer)

// WithClock sets the time source used for the date banner
func WithClock(now func() time.Time) Option {
	return func(c *Composer) {
		c.now = now
	}
}

// WithLocation sets the time zone used for the date banner
func WithLocation(loc *time.Location) Option {
	return func(c *Composer) {
		if loc != nil {
			c.location = loc
		}
	}
}

// NewComposer creates a composer; the clock defaults to time.Now in UTC
func NewComposer(config common.ReportConfig, scorer *analysis.RiskScorer, opts ...Option) *Composer {
	c := &Composer{
		config:   config,
		scorer:   scorer,
		now:      time.Now,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// lineWriter accumulates report lines
type lineWriter struct {
	lines []string
}

func (w *lineWriter) add(lines ...string) {
	w.lines = append(w.lines, lines...)
}

func (w *lineWriter) blank() {
	w.lines = append(w.lines, "")
}

// section writes a heading framed by rules
func (w *lineWriter) section(title string) {
	rule := strings.Repeat("=", ruleWidth)
	w.add(rule, title, rule)
}

func (c *Composer) dateLine() string {
	return "Date: " + c.now().In(c.location).Format("02 January 2006, Monday")
}
