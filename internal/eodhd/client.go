// Package eodhd talks to the EOD Historical Data REST API. Only the endpoints
// the report pipeline reads are covered: daily bars, fundamentals and news.
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 20 * time.Second
	DefaultRateLimit = 5

	dayLayout      = "2006-01-02"
	maxErrorLength = 512
)

// Client issues rate-limited GET requests against EODHD. Safe for concurrent use.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// Option customises a Client at construction time.
type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.http.SetBaseURL(strings.TrimRight(baseURL, "/"))
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.SetTimeout(timeout)
		}
	}
}

func WithLogger(logger arbor.ILogger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRateLimit caps outgoing requests per second, with an equal burst.
func WithRateLimit(perSecond int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
		}
	}
}

// NewClient builds a client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(DefaultBaseURL).
			SetTimeout(DefaultTimeout).
			SetQueryParams(map[string]string{
				"api_token": apiKey,
				"fmt":       "json",
			}),
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fetch waits for a limiter slot, performs the GET and decodes the JSON body
// into out. EODHD answers errors with plain text, so decoding is done here
// rather than through resty's content-type sniffing.
func (c *Client) fetch(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("eodhd limiter: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().Str("path", path).Msg("EODHD request")
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(path)
	if err != nil {
		return fmt.Errorf("eodhd %s: %w", path, err)
	}

	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: parseRetryAfter(resp.Header().Get("Retry-After"))}
	case resp.IsError():
		msg := strings.TrimSpace(resp.String())
		if len(msg) > maxErrorLength {
			msg = msg[:maxErrorLength]
		}
		return &APIError{StatusCode: resp.StatusCode(), Message: msg, Endpoint: path}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("eodhd %s: decode: %w", path, err)
	}
	return nil
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return time.Minute
	}
	return time.Duration(secs) * time.Second
}

// GetEOD returns daily bars for a TICKER.EXCHANGE code such as "TCS.NSE" or
// "NSEI.INDX". Bars come back oldest first unless WithOrder("d") is given.
func (c *Client) GetEOD(ctx context.Context, symbol string, opts ...QueryOption) ([]Bar, error) {
	q := applyQuery(query{order: "a"}, opts)

	values := url.Values{"period": {"d"}}
	q.setRange(values)
	if q.order != "" {
		values.Set("order", q.order)
	}

	var bars []Bar
	if err := c.fetch(ctx, "/eod/"+symbol, values, &bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// GetFundamentals returns the General, Highlights, Valuation and Technicals
// sections for a symbol.
func (c *Client) GetFundamentals(ctx context.Context, symbol string) (*Fundamentals, error) {
	values := url.Values{"filter": {fundamentalsFilter}}

	var f Fundamentals
	if err := c.fetch(ctx, "/fundamentals/"+symbol, values, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// GetNews returns articles tagged with any of symbols, or with a topic when
// WithTag is given.
func (c *Client) GetNews(ctx context.Context, symbols []string, opts ...QueryOption) ([]Article, error) {
	q := applyQuery(query{limit: 50}, opts)

	values := url.Values{}
	if q.tag != "" {
		values.Set("t", q.tag)
	} else {
		values.Set("s", strings.Join(symbols, ","))
	}
	if q.limit > 0 {
		values.Set("limit", strconv.Itoa(q.limit))
	}
	q.setRange(values)

	var articles []Article
	if err := c.fetch(ctx, "/news", values, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}
