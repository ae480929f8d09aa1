// Package silver writes the validated and quarantined partitions of the lake.
// Valid dimension refreshes replace the whole dim prefix (SCD type 1); valid
// sales land under a year/month partition; every quarantined batch lands under
// logs/invalid with its rejection reason column attached.
package silver

import (
	"fmt"

	"lakeetl/internal/period"
)

// Key builders for the lake's fixed prefix scheme. Keys are relative to the
// bucket root.

// BronzeTable is the landing prefix of one table's snapshot for a run month.
func BronzeTable(source, table string, p period.Period) string {
	return fmt.Sprintf("bronze/source=%s/table=%s/run_month=%s/", source, table, p.Key())
}

// BronzeSales is the landing prefix of one month of order lines.
func BronzeSales(source string, p period.Period) string {
	return fmt.Sprintf("bronze/source=%s/table=orders/year=%04d/month=%02d/", source, p.Year, p.Month)
}

// SilverDim is the current-state prefix of a dimension. It has no period
// component: each refresh replaces it wholesale.
func SilverDim(dim string) string {
	return fmt.Sprintf("silver/dim=%s/", dim)
}

// SilverSales is the validated sales partition for one period.
func SilverSales(p period.Period) string {
	return fmt.Sprintf("silver/domain=sales/year=%04d/month=%02d/", p.Year, p.Month)
}

// InvalidSales is the quarantine partition for one period of order lines.
func InvalidSales(p period.Period) string {
	return fmt.Sprintf("logs/invalid/orders/year=%04d/month=%02d/", p.Year, p.Month)
}

// InvalidDim is the quarantine partition for one dimension refresh.
func InvalidDim(dim string, p period.Period) string {
	return fmt.Sprintf("logs/invalid/dim=%s/run_month=%s/", dim, p.Key())
}
