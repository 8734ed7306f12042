package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/marketbrief/internal/models"
)

func TestPrintHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, nil, time.UTC)
	assert.Equal(t, "No runs recorded.\n", buf.String())
}

func TestPrintHistory_Rows(t *testing.T) {
	runs := []*models.RunRecord{
		{
			StartedAt:      time.Date(2025, 3, 14, 10, 15, 0, 0, time.UTC),
			Duration:       3*time.Minute + 400*time.Millisecond,
			Status:         models.RunStatusCompleted,
			IndexSource:    models.IndexSourceLive,
			StocksAnalyzed: 52,
			PortfolioPicks: 9,
			Delivered:      true,
		},
		{
			StartedAt:      time.Date(2025, 3, 13, 10, 15, 0, 0, time.UTC),
			Status:         models.RunStatusAborted,
			StocksAnalyzed: 4,
			Error:          "insufficient stock data: 4 of 20 required",
		},
	}

	ist := time.FixedZone("IST", 5*3600+1800)
	var buf bytes.Buffer
	printHistory(&buf, runs, ist)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "STARTED"))
	assert.Contains(t, lines[1], "2025-03-14 15:45")
	assert.Contains(t, lines[1], "completed")
	assert.Contains(t, lines[1], "yes")
	assert.Contains(t, lines[1], "3m0s")
	assert.Contains(t, lines[2], "aborted")
	assert.Contains(t, lines[2], "insufficient stock data")
}
