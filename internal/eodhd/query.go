package eodhd

import (
	"net/url"
	"time"
)

// QueryOption narrows a bars or news request.
type QueryOption func(*query)

type query struct {
	from, to time.Time
	order    string
	limit    int
	tag      string
}

func applyQuery(q query, opts []QueryOption) query {
	for _, opt := range opts {
		opt(&q)
	}
	return q
}

func (q query) setRange(values url.Values) {
	if !q.from.IsZero() {
		values.Set("from", q.from.Format(dayLayout))
	}
	if !q.to.IsZero() {
		values.Set("to", q.to.Format(dayLayout))
	}
}

// WithDateRange bounds the request; a zero time leaves that end open.
func WithDateRange(from, to time.Time) QueryOption {
	return func(q *query) { q.from, q.to = from, to }
}

// WithOrder takes "a" for oldest first or "d" for newest first.
func WithOrder(order string) QueryOption {
	return func(q *query) { q.order = order }
}

func WithLimit(limit int) QueryOption {
	return func(q *query) { q.limit = limit }
}

// WithTag switches a news request from symbols to a topic tag.
func WithTag(tag string) QueryOption {
	return func(q *query) { q.tag = tag }
}
