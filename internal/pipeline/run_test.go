package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"lakeetl/internal/audit"
	"lakeetl/internal/engine"
	"lakeetl/internal/objstore"
	"lakeetl/internal/period"
	"lakeetl/internal/silver"
)

func newTestRunner(store objstore.Store, mem *audit.MemoryStore) *Runner {
	return NewRunner(store, audit.Logger{Store: mem}, engine.NewLocal(), 100*time.Millisecond)
}

func putObject(t *testing.T, store objstore.Store, key, body string) {
	t.Helper()
	if err := store.Put(context.Background(), key, []byte(body)); err != nil {
		t.Fatal(err)
	}
}

func getCSV(t *testing.T, store objstore.Store, key string) [][]string {
	t.Helper()
	body, err := store.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

const bronzeOrders = "SalesOrderID,SalesOrderDetailID,OrderDate,DueDate,ShipDate,EmployeeID,CustomerID,SubTotal,TaxAmt,Freight,TotalDue,ProductID,OrderQty,UnitPrice,UnitPriceDiscount,LineTotal,StoreID\n" +
	"1,1,1/5/2012,1/17/2012,1/12/2012,274,29825,20.00,2.00,3.00,25.00,776,2,10.00,0,20.00,6\n" +
	"1,1,2/5/2012,2/17/2012,2/12/2012,274,29825,20.00,2.00,3.00,25.00,776,2,10.00,0,20.00,6\n" +
	"2,1,1/6/2012,1/18/2012,1/13/2012,275,29826,20.00,2.00,3.00,25.00,777,-1,10.00,0,20.00,6\n"

func TestPromoteOrdersPartitionsValidAndInvalid(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewMemory()
	mem := audit.NewMemoryStore()
	r := newTestRunner(store, mem)

	p := period.Period{Year: 2012, Month: 1}
	putObject(t, store, silver.BronzeSales("github", p)+"orders_2012-01.csv", bronzeOrders)

	if err := r.PromoteEntity(ctx, Orders(), p); err != nil {
		t.Fatal(err)
	}

	valid := getCSV(t, store, silver.SilverSales(p)+"orders.csv")
	if len(valid) != 2 { // header + the surviving duplicate
		t.Fatalf("silver rows = %d, want 2", len(valid))
	}
	// The later order date wins the duplicate group.
	if valid[1][2] != "2012-02-05" {
		t.Errorf("surviving OrderDate = %q, want 2012-02-05", valid[1][2])
	}

	invalid := getCSV(t, store, silver.InvalidSales(p)+"orders.csv")
	if len(invalid) != 3 { // header + duplicate loser + bad qty
		t.Fatalf("quarantine rows = %d, want 3", len(invalid))
	}
	reasons := map[string]bool{}
	for _, row := range invalid[1:] {
		reasons[row[len(row)-1]] = true
	}
	if !reasons["DUPLICATE_PK"] || !reasons["QTY_LE_0"] {
		t.Errorf("quarantine reasons = %v, want DUPLICATE_PK and QTY_LE_0", reasons)
	}

	if len(mem.Runs) != 1 {
		t.Fatalf("audit rows = %d, want 1", len(mem.Runs))
	}
	if got := mem.Runs[0]; got.Status != audit.StatusSucceeded || got.RecordsOut != 1 {
		t.Errorf("audit row = %+v, want SUCCEEDED records_out=1", got)
	}
}

func TestPromoteStoresJoinsBudgets(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewMemory()
	r := newTestRunner(store, audit.NewMemoryStore())

	p := period.Period{Year: 2012, Month: 1}
	putObject(t, store, silver.BronzeTable("mysql", "stores", p)+"stores.csv",
		"StoreID,StoreName,EmployeeID\n1,North,10\n2,South,11\n")
	putObject(t, store, silver.BronzeTable("excel", "storesBudget", p)+"budget.csv",
		"StoreID,Budget\n1,\"$1,000.50\"\n")

	var stores Entity
	for _, e := range Dimensions() {
		if e.Table == "stores" {
			stores = e
		}
	}
	if err := r.PromoteEntity(ctx, stores, p); err != nil {
		t.Fatal(err)
	}

	rows := getCSV(t, store, silver.SilverDim("store")+"stores.csv")
	if len(rows) != 3 {
		t.Fatalf("silver rows = %d, want 3", len(rows))
	}
	budgets := map[string]string{}
	for _, row := range rows[1:] {
		budgets[row[0]] = row[3]
	}
	if budgets["1"] != "1000.5" {
		t.Errorf("store 1 budget = %q, want 1000.5", budgets["1"])
	}
	// Store without a budget row defaults to zero.
	if budgets["2"] != "0" {
		t.Errorf("store 2 budget = %q, want 0", budgets["2"])
	}
}

// failingStore wraps a Store and fails List for one prefix.
type failingStore struct {
	objstore.Store
	prefix string
}

func (f failingStore) List(ctx context.Context, prefix string) ([]string, error) {
	if strings.HasPrefix(prefix, f.prefix) {
		return nil, errors.New("backend unavailable")
	}
	return f.Store.List(ctx, prefix)
}

func TestPromoteIsolatesEntityFailures(t *testing.T) {
	ctx := context.Background()
	inner := objstore.NewMemory()
	mem := audit.NewMemoryStore()

	p := period.Period{Year: 2012, Month: 1}
	putObject(t, inner, silver.BronzeSales("github", p)+"orders_2012-01.csv", bronzeOrders)
	putObject(t, inner, silver.BronzeTable("github", "customers", p)+"customers.csv",
		"CustomerID,FirstName,LastName,FullName\n1,Ann,Lee,Ann Lee\n")

	// The employee table's bronze prefix is broken; everything else works.
	store := failingStore{Store: inner, prefix: silver.BronzeTable("github", "employee", p)}
	r := newTestRunner(store, mem)

	err := r.Promote(ctx, p, true)
	if err == nil {
		t.Fatal("want a joined error for the failing entity")
	}
	if !strings.Contains(err.Error(), "employee") {
		t.Errorf("err = %v, want the employee failure named", err)
	}

	statuses := map[string]string{}
	for _, e := range mem.Runs {
		statuses[e.Table] = e.Status
	}
	if statuses["orders"] != audit.StatusSucceeded || statuses["customers"] != audit.StatusSucceeded {
		t.Errorf("statuses = %v, want siblings SUCCEEDED", statuses)
	}
	if statuses["employee"] != audit.StatusError {
		t.Errorf("employee status = %s, want ERROR", statuses["employee"])
	}
	if len(mem.Errors) == 0 {
		t.Error("want an error-sink row for the failed entity")
	}
}

func TestPromoteEmployeesNormalizesCodes(t *testing.T) {
	ctx := context.Background()
	store := objstore.NewMemory()
	r := newTestRunner(store, audit.NewMemoryStore())

	p := period.Period{Year: 2012, Month: 1}
	putObject(t, store, silver.BronzeTable("github", "employee", p)+"employee.csv",
		"EmployeeID,ManagerID,FirstName,LastName,FullName,JobTitle,OrganizationLevel,MaritalStatus,Gender,Territory,Country,Group\n"+
			"1,,Ana,Diaz,Ana Diaz,Rep,3,casada,mujer,NE,US,NA\n")

	var employees Entity
	for _, e := range Dimensions() {
		if e.Table == "employee" {
			employees = e
		}
	}
	if err := r.PromoteEntity(ctx, employees, p); err != nil {
		t.Fatal(err)
	}

	rows := getCSV(t, store, silver.SilverDim("employee")+"employees.csv")
	if len(rows) != 2 {
		t.Fatalf("silver rows = %d, want 2", len(rows))
	}
	header, row := rows[0], rows[1]
	idx := map[string]int{}
	for i, h := range header {
		idx[h] = i
	}
	if row[idx["Gender"]] != "F" || row[idx["MaritalStatus"]] != "M" {
		t.Errorf("normalized codes = %q/%q, want F/M", row[idx["Gender"]], row[idx["MaritalStatus"]])
	}
}
