package models

import "strings"

// ReportKind identifies which composer produced a report
type ReportKind string

const (
	ReportKindIntraday  ReportKind = "intraday"
	ReportKindPortfolio ReportKind = "portfolio"
)

// Report is an ordered list of text lines
type Report struct {
	Kind  ReportKind `json:"kind"`
	Lines []string   `json:"lines"`
}

// Text joins the lines with newlines
func (r Report) Text() string {
	return strings.Join(r.Lines, "\n")
}

// Halves splits the lines at len/2; the first half is never longer than the second
func (r Report) Halves() ([]string, []string) {
	mid := len(r.Lines) / 2
	return r.Lines[:mid], r.Lines[mid:]
}

// RenderedDocument describes a document written to disk
type RenderedDocument struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`
	Pages    int    `json:"pages"`
	Size     int64  `json:"size"`
}
