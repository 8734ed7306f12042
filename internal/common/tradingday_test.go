package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTradingDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	holidays := []time.Time{time.Date(2025, 3, 14, 0, 0, 0, 0, ist)} // Holi

	tests := []struct {
		name string
		when time.Time
		want bool
	}{
		{"thursday", time.Date(2025, 3, 13, 15, 45, 0, 0, ist), true},
		{"holiday friday", time.Date(2025, 3, 14, 15, 45, 0, 0, ist), false},
		{"saturday", time.Date(2025, 3, 15, 10, 0, 0, 0, ist), false},
		{"sunday", time.Date(2025, 3, 16, 10, 0, 0, 0, ist), false},
		{"monday", time.Date(2025, 3, 17, 9, 15, 0, 0, ist), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTradingDay(tt.when, holidays))
		})
	}
}

func TestLastTradingDay(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	holidays := []time.Time{time.Date(2025, 3, 14, 0, 0, 0, 0, ist)}

	// Sunday after a Friday holiday maps back to Thursday
	got := LastTradingDay(time.Date(2025, 3, 16, 11, 0, 0, 0, ist), holidays)
	assert.Equal(t, "2025-03-13", got.Format(DateLayout))
	assert.Equal(t, ist, got.Location())

	// A trading day maps onto itself
	got = LastTradingDay(time.Date(2025, 3, 17, 16, 0, 0, 0, ist), holidays)
	assert.Equal(t, "2025-03-17", got.Format(DateLayout))

	// Saturday without holidays maps to Friday
	got = LastTradingDay(time.Date(2025, 3, 15, 8, 0, 0, 0, ist), nil)
	assert.Equal(t, "2025-03-14", got.Format(DateLayout))
}

func TestParseHolidays(t *testing.T) {
	holidays, err := ParseHolidays([]string{"2025-03-14", "2025-10-21"}, time.UTC)
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, time.October, holidays[1].Month())

	_, err = ParseHolidays([]string{"14/03/2025"}, time.UTC)
	assert.Error(t, err)
}

func TestSessionClosed(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	day := time.Date(2025, 3, 14, 0, 0, 0, 0, ist)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"morning", time.Date(2025, 3, 14, 9, 30, 0, 0, ist), false},
		{"at close", time.Date(2025, 3, 14, 15, 30, 0, 0, ist), true},
		{"scheduled run", time.Date(2025, 3, 14, 15, 45, 0, 0, ist), true},
		{"next day", time.Date(2025, 3, 15, 8, 0, 0, 0, ist), true},
		{"utc clock after close", time.Date(2025, 3, 14, 10, 5, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SessionClosed(tt.at, day))
		})
	}
}
