package eodhd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Date accepts both the plain day and the timestamp forms EODHD emits.
type Date struct {
	time.Time
}

var dateLayouts = []string{dayLayout, time.RFC3339, "2006-01-02T15:04:05-07:00", "2006-01-02 15:04:05"}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("eodhd: unrecognised date %q", s)
}

// Bar is one trading day.
type Bar struct {
	Date          Date    `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

type Article struct {
	Date    Date     `json:"date"`
	Title   string   `json:"title"`
	Link    string   `json:"link"`
	Symbols []string `json:"symbols"`
	Tags    []string `json:"tags"`
}

const fundamentalsFilter = "General,Highlights,Valuation,Technicals"

// Fundamentals holds the filtered sections of the fundamentals document.
// EODHD sends null for unknown figures, hence the pointers.
type Fundamentals struct {
	General    *General    `json:"General"`
	Highlights *Highlights `json:"Highlights"`
	Valuation  *Valuation  `json:"Valuation"`
	Technicals *Technicals `json:"Technicals"`
}

type General struct {
	Code         string `json:"Code"`
	Name         string `json:"Name"`
	Exchange     string `json:"Exchange"`
	CurrencyCode string `json:"CurrencyCode"`
	Sector       string `json:"Sector"`
	GicSector    string `json:"GicSector"`
	Industry     string `json:"Industry"`
}

type Highlights struct {
	MarketCapitalization *float64 `json:"MarketCapitalization"`
	PERatio              *float64 `json:"PERatio"`
	// DividendYield is a fraction: 0.012 means 1.2%.
	DividendYield *float64 `json:"DividendYield"`
	EarningsShare *float64 `json:"EarningsShare"`
}

type Valuation struct {
	TrailingPE   *float64 `json:"TrailingPE"`
	PriceBookMRQ *float64 `json:"PriceBookMRQ"`
}

type Technicals struct {
	Beta             *float64 `json:"Beta"`
	FiftyTwoWeekHigh *float64 `json:"52WeekHigh"`
	FiftyTwoWeekLow  *float64 `json:"52WeekLow"`
}
