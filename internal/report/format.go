package report

import (
	"fmt"
	"unicode/utf8"
)

// truncateRunes shortens s to max runes and appends an ellipsis when cut
func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// clipRunes shortens s to max runes without a marker
func clipRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func (c *Composer) money(v float64) string {
	return fmt.Sprintf("%s%.2f", c.config.Currency, v)
}

func (c *Composer) moneyPadded(v float64) string {
	return fmt.Sprintf("%s%8.2f", c.config.Currency, v)
}

func signedPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

