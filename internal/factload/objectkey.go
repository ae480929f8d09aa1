package factload

import (
	"fmt"
	"regexp"
	"strings"

	"lakeetl/internal/period"
	"lakeetl/internal/silver"
)

// Object-key recognition outcomes. A load can be triggered by any object
// notification; keys that are not a monthly orders drop are ignored with a
// status saying why, never errored.
const (
	KeyAccepted         = "ACCEPTED"
	KeyIgnoredPrefix    = "IGNORED_PREFIX"
	KeyIgnoredNotOrders = "IGNORED_NOT_ORDERS"
	KeyIgnoredNotCSV    = "IGNORED_NOT_CSV"
	KeyIgnoredBadName   = "IGNORED_BAD_NAME"
)

// monthRx pulls the period out of the canonical file name.
var monthRx = regexp.MustCompile(`orders_(\d{4}-(?:0[1-9]|1[0-2]))\.csv$`)

// KeyDecision is the result of recognizing one object key.
type KeyDecision struct {
	Status string
	Period period.Period
}

// RecognizeKey decides whether key is a monthly orders drop and extracts its
// period. The filters are ordered from cheapest to most specific so the
// status names the first gate the key failed.
func RecognizeKey(key string) KeyDecision {
	if !strings.HasPrefix(key, "bronze/source=") {
		return KeyDecision{Status: KeyIgnoredPrefix}
	}
	if !strings.Contains(key, "table=orders/") {
		return KeyDecision{Status: KeyIgnoredNotOrders}
	}
	if !strings.HasSuffix(key, ".csv") {
		return KeyDecision{Status: KeyIgnoredNotCSV}
	}
	m := monthRx.FindStringSubmatch(key)
	if m == nil {
		return KeyDecision{Status: KeyIgnoredBadName}
	}
	p, err := period.Parse(m[1])
	if err != nil {
		return KeyDecision{Status: KeyIgnoredBadName}
	}
	return KeyDecision{Status: KeyAccepted, Period: p}
}

// KeyForPeriod builds the canonical orders drop key for a period.
func KeyForPeriod(source string, p period.Period) string {
	return silver.BronzeSales(source, p) + fmt.Sprintf("orders_%s.csv", p.Key())
}
