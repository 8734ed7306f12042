package yahoo

import "time"

// chartEnvelope is the top-level container of /v8/finance/chart
type chartEnvelope struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *errorBody    `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       ChartMeta `json:"meta"`
	Timestamp  []int64   `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*int64   `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

type errorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ChartMeta is the instrument summary returned with every chart
type ChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	ExchangeName       string  `json:"exchangeName"`
	LongName           string  `json:"longName"`
	ShortName          string  `json:"shortName"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
	PreviousClose      float64 `json:"previousClose"`
	FiftyTwoWeekHigh   float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow    float64 `json:"fiftyTwoWeekLow"`
}

// Bar is one daily candle with all prices present
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Chart is a parsed chart response
type Chart struct {
	Meta ChartMeta
	Bars []Bar
}

// quoteSummaryEnvelope is the top-level container of /v10/finance/quoteSummary
type quoteSummaryEnvelope struct {
	QuoteSummary struct {
		Result []QuoteSummary `json:"result"`
		Error  *errorBody     `json:"error"`
	} `json:"quoteSummary"`
}

// Value is Yahoo's {raw, fmt} number wrapper; Raw is nil when absent
type Value struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

// QuoteSummary holds the modules requested by GetQuoteSummary
type QuoteSummary struct {
	SummaryDetail *struct {
		TrailingPE       Value `json:"trailingPE"`
		Beta             Value `json:"beta"`
		DividendYield    Value `json:"dividendYield"` // Fraction
		FiftyTwoWeekHigh Value `json:"fiftyTwoWeekHigh"`
		FiftyTwoWeekLow  Value `json:"fiftyTwoWeekLow"`
		MarketCap        Value `json:"marketCap"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics *struct {
		PriceToBook Value `json:"priceToBook"`
		Beta        Value `json:"beta"`
	} `json:"defaultKeyStatistics"`
	AssetProfile *struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"assetProfile"`
	Price *struct {
		LongName           string `json:"longName"`
		ShortName          string `json:"shortName"`
		RegularMarketPrice Value  `json:"regularMarketPrice"`
	} `json:"price"`
}
