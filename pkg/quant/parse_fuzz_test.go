package quant

import "testing"

func FuzzParseFixedPoint(f *testing.F) {
	f.Add("1.23")
	f.Add("-0.000001")
	f.Add(".5")
	f.Add("9223372036854775807")
	f.Add("1.2.3")
	f.Add("null")

	f.Fuzz(func(t *testing.T, s string) {
		// Must never panic; errors are fine.
		_, _ = parseFixedPoint(s, 6)
		_, _ = parseFixedPoint(s, 8)
	})
}
