package schema

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"lakeetl/pkg/records"
)

func TestCoerceOrdersRow(t *testing.T) {
	c := Coercer{Contract: Orders()}
	in := []records.Record{{
		"SalesOrderID":       "43659",
		"SalesOrderDetailID": "1",
		"OrderDate":          "1/5/2012",
		"DueDate":            nil,
		"ShipDate":           "2012-05-13",
		"EmployeeID":         "279",
		"CustomerID":         "676",
		"SubTotal":           "20565.6206",
		"TaxAmt":             "1971.5149",
		"Freight":            "616.0984",
		"TotalDue":           "23153.2339",
		"ProductID":          "776",
		"OrderQty":           "1",
		"UnitPrice":          "2.024,99",
		"UnitPriceDiscount":  "0",
		"LineTotal":          "2024.99",
		"StoreID":            "not-a-number",
	}}
	got := c.Apply(in)[0]

	if id, _ := got.Int64("SalesOrderID"); id != 43659 {
		t.Fatalf("SalesOrderID = %v", got["SalesOrderID"])
	}
	od, ok := got.Time("OrderDate")
	if !ok || !od.Equal(time.Date(2012, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("OrderDate = %v", got["OrderDate"])
	}
	if sd, ok := got.Time("ShipDate"); !ok || sd.Year() != 2012 || sd.Month() != time.May {
		t.Fatalf("ShipDate fallback layout failed: %v", got["ShipDate"])
	}
	if up, _ := got.Float64("UnitPrice"); up != 2024.99 {
		t.Fatalf("UnitPrice = %v", got["UnitPrice"])
	}
	// Unparseable values become nil, never an error.
	if !got.IsNil("StoreID") {
		t.Fatalf("StoreID should be nil, got %v", got["StoreID"])
	}
	if !got.IsNil("DueDate") {
		t.Fatalf("DueDate should stay nil")
	}
}

// Float columns must take a plain decimal at face value; the separator
// heuristics only apply to values the plain parse rejects. A three-digit
// fraction like "20.005" is a fraction, not thousands grouping.
func TestCoerceFloatPlainDecimal(t *testing.T) {
	c := Coercer{Contract: Orders()}
	got := c.Apply([]records.Record{{
		"LineTotal":         "20.005",
		"UnitPriceDiscount": "0.005",
		"SubTotal":          "2.024,99",
	}})[0]

	if lt, _ := got.Float64("LineTotal"); lt != 20.005 {
		t.Errorf("LineTotal = %v, want 20.005", got["LineTotal"])
	}
	if d, _ := got.Float64("UnitPriceDiscount"); d != 0.005 {
		t.Errorf("UnitPriceDiscount = %v, want 0.005", got["UnitPriceDiscount"])
	}
	// Grouped European spellings still normalize via the fallback.
	if st, _ := got.Float64("SubTotal"); st != 2024.99 {
		t.Errorf("SubTotal = %v, want 2024.99", got["SubTotal"])
	}
}

func TestCoerceBadDateBecomesNil(t *testing.T) {
	c := Coercer{Contract: Orders()}
	got := c.Apply([]records.Record{{"OrderDate": "31/31/2012"}})[0]
	if !got.IsNil("OrderDate") {
		t.Fatalf("unparseable date should be nil, got %v", got["OrderDate"])
	}
}

func TestCoerceMoneyField(t *testing.T) {
	c := Coercer{Contract: StoreBudgets()}
	got := c.Apply([]records.Record{{"StoreID": "7", "Budget": "$60.749.820.000"}})[0]
	d, ok := got.Decimal("Budget")
	if !ok {
		t.Fatalf("Budget = %v", got["Budget"])
	}
	want := decimal.RequireFromString("60749820000")
	if !d.Equal(want) {
		t.Fatalf("Budget = %s, want %s", d, want)
	}
}

func TestCoerceFlag(t *testing.T) {
	c := Coercer{Contract: Products()}
	in := []records.Record{
		{"ProductID": "1", "MakeFlag": "TRUE"},
		{"ProductID": "2", "MakeFlag": "0"},
		{"ProductID": "3", "MakeFlag": "whatever"},
	}
	got := c.Apply(in)
	if b, _ := got[0].Bool("MakeFlag"); !b {
		t.Errorf("TRUE -> %v", got[0]["MakeFlag"])
	}
	if b, _ := got[1].Bool("MakeFlag"); b {
		t.Errorf("0 -> %v", got[1]["MakeFlag"])
	}
	if b, _ := got[2].Bool("MakeFlag"); b {
		t.Errorf("junk should map to false, got %v", got[2]["MakeFlag"])
	}
}

func TestContractCheck(t *testing.T) {
	for _, c := range []Contract{
		Orders(), Customers(), Employees(), Stores(), StoreBudgets(),
		Categories(), Subcategories(), Products(),
	} {
		if err := c.Check(); err != nil {
			t.Errorf("contract %s: %v", c.Name, err)
		}
	}
	bad := Contract{Name: "x", Fields: []Field{{Name: "a"}}, PrimaryKey: []string{"b"}}
	if err := bad.Check(); err == nil {
		t.Errorf("undeclared PK column should fail Check")
	}
}
