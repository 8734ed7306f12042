package app

import (
	"errors"

	"github.com/ternarybob/marketbrief/internal/services/collector"
)

var (
	// ErrIndicesUnavailable aborts a run when indices.on_failure is "abort"
	ErrIndicesUnavailable = collector.ErrIndicesUnavailable

	// ErrInsufficientStocks aborts a run when fewer than collector.min_stocks records were fetched
	ErrInsufficientStocks = errors.New("insufficient stock data")

	// ErrDeliveryFailed is returned when every configured channel failed to send the report
	ErrDeliveryFailed = errors.New("report delivery failed")
)
