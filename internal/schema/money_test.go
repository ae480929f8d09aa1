package schema

import "testing"

func TestNormalizeMoney(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"$60.749.820.000", "60749820000", true},
		{"60.749.820,50", "60749820.50", true},
		{"  60 749 820 000 ", "60749820000", true},
		{"60,50", "60.50", true},
		{"1,234,567", "1234567", true},
		{"123.45", "123.45", true},
		{"1.234", "1234", true},
		// Single separator with a three-digit tail reads as grouping.
		{"20.005", "20005", true},
		{"€ 12,00", "12.00", true},
		{"-5.00", "-5.00", true},
		{"-1.234.567", "-1234567", true},
		{"60749820000", "60749820000", true},
		{"0", "0", true},
		{"", "", false},
		{"abc", "", false},
		{"$", "", false},
	}
	for _, c := range cases {
		got, ok := NormalizeMoney(c.in)
		if ok != c.ok {
			t.Fatalf("NormalizeMoney(%q): ok=%v, want %v", c.in, ok, c.ok)
		}
		if got != c.want {
			t.Errorf("NormalizeMoney(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// Normalizing an already-normalized value returns it unchanged, except for
// outputs with a three-digit fraction, which re-read as grouping.
func TestNormalizeMoneyIdempotent(t *testing.T) {
	inputs := []string{"$60.749.820.000", "60.749.820,50", "1,234.5", "987", "-42.10"}
	for _, in := range inputs {
		first, ok := NormalizeMoney(in)
		if !ok {
			t.Fatalf("NormalizeMoney(%q) failed", in)
		}
		second, ok := NormalizeMoney(first)
		if !ok || second != first {
			t.Errorf("not idempotent: %q -> %q -> %q", in, first, second)
		}
	}
}
