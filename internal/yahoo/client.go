// Package yahoo is a resty-based client for the public Yahoo Finance chart and
// quoteSummary endpoints.
package yahoo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Yahoo Finance query host
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// DefaultTimeout is the default HTTP timeout
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second)
	DefaultRateLimit = 2

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	summaryModules = "summaryDetail,defaultKeyStatistics,assetProfile,price"
)

// APIError is a non-success Yahoo response
type APIError struct {
	StatusCode  int
	Code        string
	Description string
	Endpoint    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("Yahoo API error: %s: %s (status: %d, endpoint: %s)", e.Code, e.Description, e.StatusCode, e.Endpoint)
	}
	return fmt.Sprintf("Yahoo API error (status: %d, endpoint: %s)", e.StatusCode, e.Endpoint)
}

// NotFound reports whether the symbol is unknown to Yahoo
func (e *APIError) NotFound() bool {
	return e.StatusCode == 404 || strings.EqualFold(e.Code, "Not Found")
}

// Client talks to Yahoo Finance
type Client struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.client.SetBaseURL(strings.TrimRight(baseURL, "/"))
		}
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.client.SetTimeout(timeout)
		}
	}
}

// WithRateLimit sets the requests per second
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithLogger sets a logger
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		client: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTimeout(DefaultTimeout).
			SetHeaders(map[string]string{
				"Accept":     "application/json",
				"User-Agent": defaultUserAgent,
			}),
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) request(ctx context.Context, endpoint string) (*resty.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	if c.logger != nil {
		c.logger.Debug().Str("endpoint", endpoint).Msg("Yahoo API request")
	}
	return c.client.R().SetContext(ctx), nil
}

// GetChart fetches daily bars between from and to (to may be zero for now).
// Bars with a missing open or close are dropped.
func (c *Client) GetChart(ctx context.Context, symbol string, from, to time.Time) (*Chart, error) {
	endpoint := "/v8/finance/chart/" + symbol
	req, err := c.request(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if to.IsZero() {
		to = time.Now()
	}

	var result, failure chartEnvelope
	resp, err := req.
		SetPathParam("symbol", symbol).
		SetQueryParams(map[string]string{
			"period1":  strconv.FormatInt(from.Unix(), 10),
			"period2":  strconv.FormatInt(to.Unix(), 10),
			"interval": "1d",
		}).
		SetResult(&result).
		SetError(&failure).
		Get("/v8/finance/chart/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.IsError() {
		return nil, newAPIError(resp.StatusCode(), failure.Chart.Error, endpoint)
	}
	if result.Chart.Error != nil || len(result.Chart.Result) == 0 {
		return nil, newAPIError(resp.StatusCode(), result.Chart.Error, endpoint)
	}

	return parseChart(result.Chart.Result[0]), nil
}

func parseChart(r chartResult) *Chart {
	chart := &Chart{Meta: r.Meta}
	if len(r.Indicators.Quote) == 0 {
		return chart
	}

	q := r.Indicators.Quote[0]
	for i, ts := range r.Timestamp {
		o, cl := at(q.Open, i), at(q.Close, i)
		if o == nil || cl == nil || *o == 0 {
			continue
		}
		bar := Bar{
			Time:  time.Unix(ts, 0).UTC(),
			Open:  *o,
			Close: *cl,
			High:  valueOr(at(q.High, i), *cl),
			Low:   valueOr(at(q.Low, i), *cl),
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			bar.Volume = *q.Volume[i]
		}
		chart.Bars = append(chart.Bars, bar)
	}
	return chart
}

// GetQuoteSummary fetches valuation, profile and price modules for a symbol
func (c *Client) GetQuoteSummary(ctx context.Context, symbol string) (*QuoteSummary, error) {
	endpoint := "/v10/finance/quoteSummary/" + symbol
	req, err := c.request(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var result, failure quoteSummaryEnvelope
	resp, err := req.
		SetPathParam("symbol", symbol).
		SetQueryParam("modules", summaryModules).
		SetResult(&result).
		SetError(&failure).
		Get("/v10/finance/quoteSummary/{symbol}")
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.IsError() {
		return nil, newAPIError(resp.StatusCode(), failure.QuoteSummary.Error, endpoint)
	}
	if result.QuoteSummary.Error != nil || len(result.QuoteSummary.Result) == 0 {
		return nil, newAPIError(resp.StatusCode(), result.QuoteSummary.Error, endpoint)
	}

	return &result.QuoteSummary.Result[0], nil
}

func newAPIError(status int, body *errorBody, endpoint string) *APIError {
	e := &APIError{StatusCode: status, Endpoint: endpoint}
	if body != nil {
		e.Code = body.Code
		e.Description = body.Description
	}
	return e
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
