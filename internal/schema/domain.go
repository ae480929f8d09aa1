package schema

import "strings"

// Coded-domain normalization for the employee dimension. Applied before
// validation; a value that normalizes to "U" fails the corresponding rule
// (GENDER_INVALID / MARITALSTATUS_INVALID), the "U" itself is never a reason.

// NormalizeGender maps free-form gender spellings onto {M, F, U}.
func NormalizeGender(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M", "MALE", "H":
		return "M"
	case "F", "FEMALE", "MUJER":
		return "F"
	}
	return "U"
}

// NormalizeMarital maps free-form marital-status spellings onto {S, M, U}.
func NormalizeMarital(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "S", "SINGLE", "SOLTERO", "SOLTERA":
		return "S"
	case "M", "MARRIED", "CASADO", "CASADA":
		return "M"
	}
	return "U"
}
