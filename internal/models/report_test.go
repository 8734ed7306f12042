package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportHalves(t *testing.T) {
	tests := []struct {
		name        string
		lines       []string
		first, last int
	}{
		{"empty", nil, 0, 0},
		{"single", []string{"a"}, 0, 1},
		{"even", []string{"a", "b", "c", "d"}, 2, 2},
		{"odd", []string{"a", "b", "c", "d", "e"}, 2, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, second := Report{Lines: tt.lines}.Halves()
			assert.Len(t, first, tt.first)
			assert.Len(t, second, tt.last)
		})
	}
}

func TestReportText(t *testing.T) {
	r := Report{Lines: []string{"one", "two"}}
	assert.Equal(t, "one\ntwo", r.Text())
}

func TestIndexSnapshot(t *testing.T) {
	up := NewIndexSnapshot("NIFTY 50", 24500, 24450)
	assert.InDelta(t, 50.0, up.Change, 1e-9)
	assert.InDelta(t, 0.2045, up.ChangePercent, 1e-4)
	assert.Equal(t, TrendBullish, up.Trend())

	flat := NewIndexSnapshot("SENSEX", 81000, 81000)
	assert.Equal(t, TrendBearish, flat.Trend())

	zero := NewIndexSnapshot("X", 10, 0)
	assert.Equal(t, 0.0, zero.ChangePercent)

	m := &MarketIndices{Nifty: IndexSnapshot{ChangePercent: 1.2}, Sensex: IndexSnapshot{ChangePercent: 0.8}, Source: IndexSourceFallback}
	assert.InDelta(t, 1.0, m.AvgChangePercent(), 1e-9)
	assert.True(t, m.IsFallback())
}
