package factload

import (
	"lakeetl/internal/period"
	"lakeetl/pkg/records"
)

// FactColumns is the fact_sales column order. Dimension references carry the
// *Key suffix; RunMonth is the load partition key appended to every row.
var FactColumns = []string{
	"SalesOrderKey",
	"SalesOrderDetailKey",
	"OrderDate",
	"DueDate",
	"ShipDate",
	"EmployeeKey",
	"CustomerKey",
	"ProductKey",
	"StoreKey",
	"OrderQty",
	"UnitPrice",
	"UnitPriceDiscount",
	"SubTotal",
	"TaxAmt",
	"Freight",
	"TotalDue",
	"LineTotal",
	"RunMonth",
}

// factSources maps each fact column to its staging field. RunMonth has no
// source field; it is synthesized per load.
var factSources = map[string]string{
	"SalesOrderKey":       "SalesOrderID",
	"SalesOrderDetailKey": "SalesOrderDetailID",
	"OrderDate":           "OrderDate",
	"DueDate":             "DueDate",
	"ShipDate":            "ShipDate",
	"EmployeeKey":         "EmployeeID",
	"CustomerKey":         "CustomerID",
	"ProductKey":          "ProductID",
	"StoreKey":            "StoreID",
	"OrderQty":            "OrderQty",
	"UnitPrice":           "UnitPrice",
	"UnitPriceDiscount":   "UnitPriceDiscount",
	"SubTotal":            "SubTotal",
	"TaxAmt":              "TaxAmt",
	"Freight":             "Freight",
	"TotalDue":            "TotalDue",
	"LineTotal":           "LineTotal",
}

// ProjectRow shapes one staged order line into fact column order. Values that
// failed coercion are nil and insert as NULL, matching a lenient cast on the
// destination side.
func ProjectRow(rec records.Record, p period.Period) []any {
	row := make([]any, len(FactColumns))
	for i, col := range FactColumns {
		if col == "RunMonth" {
			row[i] = p.Key()
			continue
		}
		row[i] = rec[factSources[col]]
	}
	return row
}
