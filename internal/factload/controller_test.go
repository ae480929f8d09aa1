package factload

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lakeetl/internal/audit"
	"lakeetl/internal/engine"
	"lakeetl/internal/objstore"
	"lakeetl/internal/period"
	"lakeetl/pkg/records"
)

type fakeFactStore struct {
	mu         sync.Mutex
	byPeriod   map[string]int64
	failInsert error
}

func newFakeFactStore() *fakeFactStore {
	return &fakeFactStore{byPeriod: make(map[string]int64)}
}

func (f *fakeFactStore) PeriodCount(_ context.Context, p period.Period) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byPeriod[p.Key()], nil
}

func (f *fakeFactStore) DeletePeriod(_ context.Context, p period.Period) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.byPeriod[p.Key()]
	delete(f.byPeriod, p.Key())
	return n, nil
}

func (f *fakeFactStore) InsertPeriod(_ context.Context, p period.Period, rows []records.Record) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failInsert != nil {
		return 0, f.failInsert
	}
	f.byPeriod[p.Key()] += int64(len(rows))
	return int64(len(rows)), nil
}

const ordersCSV = "SalesOrderID,SalesOrderDetailID,OrderDate,DueDate,ShipDate,EmployeeID,CustomerID,SubTotal,TaxAmt,Freight,TotalDue,ProductID,OrderQty,UnitPrice,UnitPriceDiscount,LineTotal,StoreID\n" +
	"1,1,1/5/2012,1/17/2012,1/12/2012,274,29825,20.00,2.00,3.00,25.00,776,2,10.00,0,20.00,6\n" +
	"1,2,1/5/2012,1/17/2012,1/12/2012,274,29825,20.00,2.00,3.00,25.00,777,1,20.00,0,20.00,6\n"

func newController(t *testing.T, store *fakeFactStore, mem *audit.MemoryStore) (*Controller, objstore.Store) {
	t.Helper()
	obj := objstore.NewMemory()
	return &Controller{
		Source:     BronzeSource{Store: obj, Source: "github"},
		Store:      store,
		Engine:     engine.NewLocal(),
		Audit:      audit.Logger{Store: mem},
		RunID:      "run-test",
		SourceName: "github",
		Poll:       100 * time.Millisecond,
	}, obj
}

func mustPut(t *testing.T, obj objstore.Store, key, body string) {
	t.Helper()
	if err := obj.Put(context.Background(), key, []byte(body)); err != nil {
		t.Fatal(err)
	}
}

func TestLoadPeriodSucceeds(t *testing.T) {
	ctx := context.Background()
	facts := newFakeFactStore()
	mem := audit.NewMemoryStore()
	c, obj := newController(t, facts, mem)

	p := period.Period{Year: 2012, Month: 1}
	mustPut(t, obj, KeyForPeriod("github", p), ordersCSV)

	out, err := c.LoadPeriod(ctx, p, false)
	if err != nil {
		t.Fatal(err)
	}
	if out.State != StateLoaded || out.Status != audit.StatusSucceeded {
		t.Errorf("state=%s status=%s, want Loaded/SUCCEEDED", out.State, out.Status)
	}
	if out.Rows != 2 {
		t.Errorf("rows = %d, want 2 (confirmed recount)", out.Rows)
	}
	if len(mem.Runs) != 1 || mem.Runs[0].Status != audit.StatusSucceeded {
		t.Errorf("audit runs = %+v, want one SUCCEEDED row", mem.Runs)
	}
}

func TestLoadPeriodSkipsExisting(t *testing.T) {
	ctx := context.Background()
	facts := newFakeFactStore()
	p := period.Period{Year: 2012, Month: 2}
	facts.byPeriod[p.Key()] = 37

	c, obj := newController(t, facts, audit.NewMemoryStore())
	mustPut(t, obj, KeyForPeriod("github", p), ordersCSV)

	out, err := c.LoadPeriod(ctx, p, false)
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != audit.StatusSkippedExists {
		t.Errorf("status = %s, want %s", out.Status, audit.StatusSkippedExists)
	}
	if out.Rows != 37 {
		t.Errorf("rows = %d, want the existing count", out.Rows)
	}
	// The source must not have been loaded on top of the existing period.
	if n, _ := facts.PeriodCount(ctx, p); n != 37 {
		t.Errorf("period count = %d, want unchanged 37", n)
	}
}

func TestLoadPeriodRerunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	facts := newFakeFactStore()
	c, obj := newController(t, facts, audit.NewMemoryStore())
	p := period.Period{Year: 2012, Month: 3}
	mustPut(t, obj, KeyForPeriod("github", p), ordersCSV)

	if _, err := c.LoadPeriod(ctx, p, false); err != nil {
		t.Fatal(err)
	}
	out, err := c.LoadPeriod(ctx, p, false)
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != audit.StatusSkippedExists {
		t.Errorf("second run status = %s, want %s", out.Status, audit.StatusSkippedExists)
	}
	if n, _ := facts.PeriodCount(ctx, p); n != 2 {
		t.Errorf("period count after rerun = %d, want 2", n)
	}
}

func TestLoadPeriodOverwriteReplaces(t *testing.T) {
	ctx := context.Background()
	facts := newFakeFactStore()
	p := period.Period{Year: 2012, Month: 4}
	facts.byPeriod[p.Key()] = 99

	c, obj := newController(t, facts, audit.NewMemoryStore())
	mustPut(t, obj, KeyForPeriod("github", p), ordersCSV)

	out, err := c.LoadPeriod(ctx, p, true)
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != audit.StatusSucceeded {
		t.Errorf("status = %s, want %s", out.Status, audit.StatusSucceeded)
	}
	if out.Rows != 2 {
		t.Errorf("rows = %d, want the fresh load only", out.Rows)
	}
}

func TestLoadPeriodEmptySource(t *testing.T) {
	ctx := context.Background()
	c, _ := newController(t, newFakeFactStore(), audit.NewMemoryStore())

	out, err := c.LoadPeriod(ctx, period.Period{Year: 2012, Month: 5}, false)
	if err != nil {
		t.Fatal(err)
	}
	if out.State != StateNotLoaded || out.Status != audit.StatusSkippedEmpty {
		t.Errorf("state=%s status=%s, want NotLoaded/%s", out.State, out.Status, audit.StatusSkippedEmpty)
	}
}

func TestLoadPeriodInsertFailure(t *testing.T) {
	ctx := context.Background()
	facts := newFakeFactStore()
	facts.failInsert = errors.New("connection reset")
	mem := audit.NewMemoryStore()
	c, obj := newController(t, facts, mem)

	p := period.Period{Year: 2012, Month: 6}
	mustPut(t, obj, KeyForPeriod("github", p), ordersCSV)

	out, err := c.LoadPeriod(ctx, p, false)
	if err == nil {
		t.Fatal("want an error for a failed insert")
	}
	if out.State != StateFailed || out.Status != audit.StatusError {
		t.Errorf("state=%s status=%s, want Failed/ERROR", out.State, out.Status)
	}
	if len(mem.Errors) != 1 {
		t.Errorf("audit errors = %d, want 1", len(mem.Errors))
	}
}

func TestRecognizeKey(t *testing.T) {
	tests := []struct {
		key    string
		status string
		month  string
	}{
		{"bronze/source=github/table=orders/year=2012/month=03/orders_2012-03.csv", KeyAccepted, "2012-03"},
		{"bronze/source=github/table=orders/orders_2012-11.csv", KeyAccepted, "2012-11"},
		{"silver/domain=sales/year=2012/month=03/orders.csv", KeyIgnoredPrefix, ""},
		{"bronze/source=github/table=customers/run_month=2012-03/customers.csv", KeyIgnoredNotOrders, ""},
		{"bronze/source=github/table=orders/orders_2012-03.parquet", KeyIgnoredNotCSV, ""},
		{"bronze/source=github/table=orders/full_dump.csv", KeyIgnoredBadName, ""},
		{"bronze/source=github/table=orders/orders_2012-13.csv", KeyIgnoredBadName, ""},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			d := RecognizeKey(tc.key)
			if d.Status != tc.status {
				t.Fatalf("status = %s, want %s", d.Status, tc.status)
			}
			if tc.status == KeyAccepted && d.Period.Key() != tc.month {
				t.Errorf("period = %s, want %s", d.Period.Key(), tc.month)
			}
		})
	}
}

func TestProjectRow(t *testing.T) {
	rec := records.Record{
		"SalesOrderID":       int64(1),
		"SalesOrderDetailID": int64(2),
		"EmployeeID":         int64(3),
		"CustomerID":         int64(4),
		"ProductID":          int64(5),
		"StoreID":            int64(6),
		"OrderQty":           int64(7),
	}
	row := ProjectRow(rec, period.Period{Year: 2012, Month: 3})
	if len(row) != len(FactColumns) {
		t.Fatalf("row width = %d, want %d", len(row), len(FactColumns))
	}
	if row[0] != int64(1) || row[1] != int64(2) {
		t.Errorf("key columns = %v %v, want the renamed order ids", row[0], row[1])
	}
	if row[len(row)-1] != "2012-03" {
		t.Errorf("RunMonth = %v, want 2012-03", row[len(row)-1])
	}
	// OrderDate was never set; it must project as NULL, not as a zero value.
	if row[2] != nil {
		t.Errorf("OrderDate = %v, want nil", row[2])
	}
}
