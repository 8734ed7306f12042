package common

import (
	"strings"
)

// Symbol represents a parsed exchange-qualified instrument.
// Format: EXCHANGE:CODE (e.g., "NSE:RELIANCE", "INDX:NSEI")
type Symbol struct {
	// Exchange is the exchange code ("NSE", "BSE" or "INDX" for indices)
	Exchange string
	// Code is the security code (e.g., "RELIANCE", "NSEI")
	Code string
	// Raw is the original string
	Raw string
}

// exchangeSuffixes maps exchange codes to provider symbol suffixes.
var exchangeSuffixes = map[string]struct{ yahoo, eodhd string }{
	"NSE":  {yahoo: ".NS", eodhd: ".NSE"},
	"BSE":  {yahoo: ".BO", eodhd: ".BSE"},
	"INDX": {yahoo: "", eodhd: ".INDX"},
}

// yahooSuffixToExchange maps Yahoo suffixes back to exchanges.
var yahooSuffixToExchange = map[string]string{
	"NS": "NSE",
	"BO": "BSE",
}

// DefaultExchange is used when a symbol has no exchange prefix.
const DefaultExchange = "NSE"

// ParseSymbol parses an exchange-qualified symbol string.
// Supports formats:
//   - "NSE:RELIANCE" -> Exchange="NSE", Code="RELIANCE"
//   - "NSE.RELIANCE" -> Exchange="NSE", Code="RELIANCE" (known exchanges only)
//   - "RELIANCE.NS"  -> Exchange="NSE", Code="RELIANCE" (Yahoo style)
//   - "^NSEI"        -> Exchange="INDX", Code="NSEI"
//   - "tcs"          -> Exchange="NSE", Code="TCS"
func ParseSymbol(symbol string) Symbol {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Symbol{}
	}

	if strings.HasPrefix(symbol, "^") {
		return Symbol{Exchange: "INDX", Code: strings.ToUpper(symbol[1:]), Raw: symbol}
	}

	if idx := strings.Index(symbol, ":"); idx > 0 {
		return Symbol{
			Exchange: strings.ToUpper(symbol[:idx]),
			Code:     strings.ToUpper(symbol[idx+1:]),
			Raw:      symbol,
		}
	}

	if idx := strings.Index(symbol, "."); idx > 0 {
		prefix := strings.ToUpper(symbol[:idx])
		if _, ok := exchangeSuffixes[prefix]; ok {
			return Symbol{Exchange: prefix, Code: strings.ToUpper(symbol[idx+1:]), Raw: symbol}
		}
	}

	if idx := strings.LastIndex(symbol, "."); idx > 0 && idx < len(symbol)-1 {
		if exchange, ok := yahooSuffixToExchange[strings.ToUpper(symbol[idx+1:])]; ok {
			return Symbol{Exchange: exchange, Code: strings.ToUpper(symbol[:idx]), Raw: symbol}
		}
	}

	return Symbol{
		Exchange: DefaultExchange,
		Code:     strings.ToUpper(symbol),
		Raw:      symbol,
	}
}

// String returns the full exchange-qualified symbol string.
func (s Symbol) String() string {
	if s.Exchange == "" || s.Code == "" {
		return s.Code
	}
	return s.Exchange + ":" + s.Code
}

// IsIndex reports whether the symbol is a market index.
func (s Symbol) IsIndex() bool {
	return s.Exchange == "INDX"
}

// YahooSymbol returns the Yahoo Finance symbol format.
// Example: "NSE:RELIANCE" -> "RELIANCE.NS", "INDX:NSEI" -> "^NSEI"
func (s Symbol) YahooSymbol() string {
	if s.Code == "" {
		return ""
	}
	if s.IsIndex() {
		return "^" + s.Code
	}
	suffix, ok := exchangeSuffixes[s.Exchange]
	if !ok {
		return s.Code + exchangeSuffixes[DefaultExchange].yahoo
	}
	return s.Code + suffix.yahoo
}

// EODHDSymbol returns the EODHD API symbol format.
// Example: "NSE:RELIANCE" -> "RELIANCE.NSE", "INDX:NSEI" -> "NSEI.INDX"
func (s Symbol) EODHDSymbol() string {
	if s.Code == "" {
		return ""
	}
	suffix, ok := exchangeSuffixes[s.Exchange]
	if !ok {
		return s.Code + exchangeSuffixes[DefaultExchange].eodhd
	}
	return s.Code + suffix.eodhd
}

// ParseSymbols parses a list of symbol strings, dropping empty entries.
func ParseSymbols(symbols []string) []Symbol {
	result := make([]Symbol, 0, len(symbols))
	for _, s := range symbols {
		if parsed := ParseSymbol(s); parsed.Code != "" {
			result = append(result, parsed)
		}
	}
	return result
}
