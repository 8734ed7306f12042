package market

func floatPtr(v float64) *float64 {
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// fractionToPercent converts a 0.012-style yield to 1.2
func fractionToPercent(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return floatPtr(*v * 100)
}
