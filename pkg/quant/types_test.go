package quant

import "testing"

func TestParseFixedPoint(t *testing.T) {
	tests := []struct {
		name string
		in   string
		dec  int
		want int64
	}{
		{"Integer", "42", 6, 42_000_000},
		{"Fraction", "1.23", 6, 1_230_000},
		{"Leading Dot", ".5", 6, 500_000},
		{"Negative", "-0.000001", 6, -1},
		{"Truncates Extra Precision", "1.2345678", 6, 1_234_567},
		{"Empty", "", 6, 0},
		{"Null Literal", "null", 6, 0},
		{"Sats Scale", "0.00000001", 8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFixedPoint(tt.in, tt.dec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("parseFixedPoint(%q, %d) = %d, want %d", tt.in, tt.dec, got, tt.want)
			}
		})
	}

	t.Run("Rejects Multiple Dots", func(t *testing.T) {
		if _, err := parseFixedPoint("1.2.3", 6); err == nil {
			t.Error("expected error for malformed decimal")
		}
	})
}

func TestStrings(t *testing.T) {
	if got := FeePPM(75000).String(); got != "7.5000%" {
		t.Errorf("FeePPM string = %q", got)
	}
	if got := PriceMicros(1_230_000).String(); got != "1.230000" {
		t.Errorf("PriceMicros string = %q", got)
	}
	if got := QtySats(150_000_000).String(); got != "1.50000000" {
		t.Errorf("QtySats string = %q", got)
	}
}

func TestBoundaryConversions(t *testing.T) {
	if got := ToPriceMicros(1.5); got != 1_500_000 {
		t.Errorf("ToPriceMicros = %d", got)
	}
	if got := ToSignalMicros(12.34); got != 12_340_000 {
		t.Errorf("ToSignalMicros = %d", got)
	}
	got, err := ParseSignalMicros("25.5")
	if err != nil || got != 25_500_000 {
		t.Errorf("ParseSignalMicros = %d, err %v", got, err)
	}
}
