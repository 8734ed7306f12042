package common

import "time"

// DateLayout is the calendar-day format used for snapshot keys and holiday lists
const DateLayout = "2006-01-02"

// TradingWeekdays are the NSE/BSE session days
var TradingWeekdays = []time.Weekday{
	time.Monday,
	time.Tuesday,
	time.Wednesday,
	time.Thursday,
	time.Friday,
}

// IsTradingDay reports whether t falls on a session weekday that is not a holiday.
// Dates are compared in t's own location.
func IsTradingDay(t time.Time, holidays []time.Time) bool {
	isWeekday := false
	for _, wd := range TradingWeekdays {
		if wd == t.Weekday() {
			isWeekday = true
			break
		}
	}
	if !isWeekday {
		return false
	}

	day := t.Format(DateLayout)
	for _, h := range holidays {
		if h.Format(DateLayout) == day {
			return false
		}
	}
	return true
}

// LastTradingDay returns midnight of the most recent trading day on or before t,
// in t's location. A weekend or holiday run maps onto the previous session.
func LastTradingDay(t time.Time, holidays []time.Time) time.Time {
	current := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())

	// Long exchange closures never exceed a couple of weeks
	for i := 0; i < 15; i++ {
		if IsTradingDay(current, holidays) {
			return current
		}
		current = current.AddDate(0, 0, -1)
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseHolidays parses YYYY-MM-DD dates in loc
func ParseHolidays(dates []string, loc *time.Location) ([]time.Time, error) {
	holidays := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := time.ParseInLocation(DateLayout, d, loc)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, t)
	}
	return holidays, nil
}

// Session close on NSE/BSE, exchange-local clock
const (
	SessionCloseHour   = 15
	SessionCloseMinute = 30
)

// SessionClosed reports whether the session on day had ended by t. day is
// read in its own location, as returned by LastTradingDay.
func SessionClosed(t, day time.Time) bool {
	closeAt := time.Date(day.Year(), day.Month(), day.Day(), SessionCloseHour, SessionCloseMinute, 0, 0, day.Location())
	return !t.Before(closeAt)
}
