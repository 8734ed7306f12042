package collector

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// UniverseEntry is one symbol to analyse
type UniverseEntry struct {
	Symbol string `yaml:"symbol"`
	Sector string `yaml:"sector"`
	Name   string `yaml:"name,omitempty"`
}

type universeFile struct {
	Stocks []UniverseEntry `yaml:"stocks"`
}

// LoadUniverse reads a YAML universe file of the form:
//
//	stocks:
//	  - symbol: RELIANCE
//	    sector: Energy
//
// An empty path returns DefaultUniverse.
func LoadUniverse(path string) ([]UniverseEntry, error) {
	if path == "" {
		return DefaultUniverse(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read universe file %s: %w", path, err)
	}

	var file universeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse universe file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(file.Stocks))
	entries := make([]UniverseEntry, 0, len(file.Stocks))
	for i, e := range file.Stocks {
		e.Symbol = strings.TrimSpace(e.Symbol)
		if e.Symbol == "" {
			return nil, fmt.Errorf("universe file %s: entry %d has no symbol", path, i+1)
		}
		key := strings.ToUpper(e.Symbol)
		if seen[key] {
			continue
		}
		seen[key] = true
		if e.Sector == "" {
			e.Sector = "Unknown"
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("universe file %s lists no stocks", path)
	}
	return entries, nil
}

// DefaultUniverse is a large-cap NSE list with sector labels
func DefaultUniverse() []UniverseEntry {
	return []UniverseEntry{
		{Symbol: "RELIANCE", Sector: "Energy"},
		{Symbol: "ONGC", Sector: "Energy"},
		{Symbol: "BPCL", Sector: "Energy"},
		{Symbol: "IOC", Sector: "Energy"},
		{Symbol: "NTPC", Sector: "Power"},
		{Symbol: "POWERGRID", Sector: "Power"},
		{Symbol: "TATAPOWER", Sector: "Power"},
		{Symbol: "TCS", Sector: "IT"},
		{Symbol: "INFY", Sector: "IT"},
		{Symbol: "HCLTECH", Sector: "IT"},
		{Symbol: "WIPRO", Sector: "IT"},
		{Symbol: "TECHM", Sector: "IT"},
		{Symbol: "LTIM", Sector: "IT"},
		{Symbol: "HDFCBANK", Sector: "Banking"},
		{Symbol: "ICICIBANK", Sector: "Banking"},
		{Symbol: "SBIN", Sector: "Banking"},
		{Symbol: "KOTAKBANK", Sector: "Banking"},
		{Symbol: "AXISBANK", Sector: "Banking"},
		{Symbol: "INDUSINDBK", Sector: "Banking"},
		{Symbol: "BAJFINANCE", Sector: "Financial Services"},
		{Symbol: "BAJAJFINSV", Sector: "Financial Services"},
		{Symbol: "SHRIRAMFIN", Sector: "Financial Services"},
		{Symbol: "HDFCLIFE", Sector: "Insurance"},
		{Symbol: "SBILIFE", Sector: "Insurance"},
		{Symbol: "HINDUNILVR", Sector: "FMCG"},
		{Symbol: "ITC", Sector: "FMCG"},
		{Symbol: "NESTLEIND", Sector: "FMCG"},
		{Symbol: "BRITANNIA", Sector: "FMCG"},
		{Symbol: "TATACONSUM", Sector: "FMCG"},
		{Symbol: "MARUTI", Sector: "Automobile"},
		{Symbol: "M&M", Sector: "Automobile"},
		{Symbol: "TATAMOTORS", Sector: "Automobile"},
		{Symbol: "BAJAJ-AUTO", Sector: "Automobile"},
		{Symbol: "EICHERMOT", Sector: "Automobile"},
		{Symbol: "HEROMOTOCO", Sector: "Automobile"},
		{Symbol: "SUNPHARMA", Sector: "Pharma"},
		{Symbol: "DRREDDY", Sector: "Pharma"},
		{Symbol: "CIPLA", Sector: "Pharma"},
		{Symbol: "DIVISLAB", Sector: "Pharma"},
		{Symbol: "APOLLOHOSP", Sector: "Healthcare"},
		{Symbol: "TATASTEEL", Sector: "Metals"},
		{Symbol: "JSWSTEEL", Sector: "Metals"},
		{Symbol: "HINDALCO", Sector: "Metals"},
		{Symbol: "COALINDIA", Sector: "Mining"},
		{Symbol: "ULTRACEMCO", Sector: "Cement"},
		{Symbol: "GRASIM", Sector: "Cement"},
		{Symbol: "LT", Sector: "Infrastructure"},
		{Symbol: "ADANIPORTS", Sector: "Infrastructure"},
		{Symbol: "ADANIENT", Sector: "Conglomerate"},
		{Symbol: "BHARTIARTL", Sector: "Telecom"},
		{Symbol: "ASIANPAINT", Sector: "Consumer Durables"},
		{Symbol: "TITAN", Sector: "Consumer Durables"},
		{Symbol: "TRENT", Sector: "Retail"},
		{Symbol: "BEL", Sector: "Defence"},
	}
}
