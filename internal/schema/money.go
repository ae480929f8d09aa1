package schema

import "strings"

// NormalizeMoney rewrites a money-like string into a plain numeric string
// ("60749820000", "60749820.50") without losing magnitude. Currency symbols
// and whitespace are dropped. Separator policy:
//
//   - both comma and period present: the rightmost of the two is the decimal
//     separator; every earlier occurrence of either is a thousands separator.
//   - only one separator type present: runs grouped in threes are thousands
//     separators ("60.749.820.000" -> "60749820000"), anything else is a
//     decimal point ("60,50" -> "60.50").
//
// A leading minus sign survives normalization. Returns ok=false when no
// digits remain.
//
// Known ambiguity: with a single separator type, "20.005" cannot be told
// apart from a grouped twenty thousand and five; the grouping reading wins,
// so normalization is not idempotent for outputs carrying a three-digit
// fraction ("60.749.820,50" is stable, "60.749.820,500" is not). Callers
// holding a plain decimal should parse it directly and reserve this function
// for values the plain parse rejects.
func NormalizeMoney(s string) (string, bool) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")

	// Keep only digits and the two candidate separators.
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	t := b.String()
	if digitsOnly(t) == "" {
		return "", false
	}

	var out string
	hasComma := strings.Contains(t, ",")
	hasDot := strings.Contains(t, ".")
	switch {
	case hasComma && hasDot:
		last := strings.LastIndexAny(t, ",.")
		intPart := digitsOnly(t[:last])
		decPart := digitsOnly(t[last+1:])
		if intPart == "" {
			intPart = "0"
		}
		if decPart == "" {
			decPart = "0"
		}
		out = intPart + "." + decPart

	case hasComma || hasDot:
		sep := ","
		if hasDot {
			sep = "."
		}
		parts := strings.Split(t, sep)
		if thousandsGrouped(parts) {
			out = strings.Join(parts, "")
		} else {
			// Decimal separator: the last occurrence splits integer and
			// fraction; any earlier occurrences are grouping noise.
			out = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
		}

	default:
		out = t
	}

	if neg {
		out = "-" + out
	}
	return out, true
}

// thousandsGrouped reports whether every group after the first is exactly
// three digits, the classic 1.234.567 pattern.
func thousandsGrouped(parts []string) bool {
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
