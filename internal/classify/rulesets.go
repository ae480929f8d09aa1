package classify

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"lakeetl/internal/schema"
	"lakeetl/pkg/records"
)

// amountTolerance is the absolute slack allowed when reconciling money
// arithmetic on rows that went through float-typed staging columns.
const amountTolerance = 0.01

// notNull builds the rule failing when any of the given columns is null.
// This is both the PK_NULL check (over the primary key) and the referential
// integrity check (over a foreign-key column): integrity here means "parent
// key present", not "parent row exists".
func notNull(name string, reason Reason, cols ...string) Rule {
	return Rule{Name: name, Reason: reason, Check: func(r Row) Verdict {
		for _, c := range cols {
			if r.Rec.IsNil(c) {
				return Fail
			}
		}
		return Pass
	}}
}

// rankOne fails every dedup loser.
func rankOne() Rule {
	return Rule{Name: "dedup", Reason: ReasonDuplicatePK, Check: func(r Row) Verdict {
		if r.Rank > 1 {
			return Fail
		}
		return Pass
	}}
}

// OrdersClassifier builds the classification pass for the orders fact
// staging: composite PK, latest-order-date dedup survivor, and the full
// amount-consistency rule chain in its canonical priority order.
func OrdersClassifier() Classifier {
	return Classifier{
		Contract: schema.Orders(),
		Tie:      ByDateDesc{Field: "OrderDate"},
		Rules: []Rule{
			notNull("pk", ReasonPKNull, "SalesOrderID", "SalesOrderDetailID"),
			notNull("orderdate", ReasonBadOrderDate, "OrderDate"),
			rankOne(),
			{Name: "qty_positive", Reason: ReasonQtyLE0, Check: func(r Row) Verdict {
				q, ok := r.Rec.Int64("OrderQty")
				if !ok {
					return Undecided
				}
				return failIf(q <= 0)
			}},
			{Name: "price_nonneg", Reason: ReasonPriceLT0, Check: func(r Row) Verdict {
				p, ok := r.Rec.Float64("UnitPrice")
				if !ok {
					return Undecided
				}
				return failIf(p < 0)
			}},
			{Name: "discount_range", Reason: ReasonDiscountOutOfRange, Check: func(r Row) Verdict {
				d, ok := r.Rec.Float64("UnitPriceDiscount")
				if !ok {
					return Undecided
				}
				return failIf(d < 0 || d > 1)
			}},
			{Name: "amounts_nonneg", Reason: ReasonNegativeAmounts, Check: amountsNonNegative},
			{Name: "line_total", Reason: ReasonLineMismatch, Check: lineTotalConsistent},
			{Name: "order_total", Reason: ReasonTotalMismatch, Check: orderTotalConsistent},
		},
	}
}

// amountsNonNegative fails as soon as any amount column is definitely
// negative; a null amount alone leaves the rule undecided.
func amountsNonNegative(r Row) Verdict {
	sawNull := false
	for _, col := range []string{"SubTotal", "TaxAmt", "Freight", "TotalDue", "LineTotal"} {
		v, ok := r.Rec.Float64(col)
		if !ok {
			sawNull = true
			continue
		}
		if v < 0 {
			return Fail
		}
	}
	if sawNull {
		return Undecided
	}
	return Pass
}

// lineTotalConsistent checks |LineTotal - OrderQty*UnitPrice*(1-Discount)|
// against the tolerance.
func lineTotalConsistent(r Row) Verdict {
	qty, ok1 := r.Rec.Int64("OrderQty")
	price, ok2 := r.Rec.Float64("UnitPrice")
	disc, ok3 := r.Rec.Float64("UnitPriceDiscount")
	line, ok4 := r.Rec.Float64("LineTotal")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return Undecided
	}
	expected := float64(qty) * price * (1 - disc)
	return failIf(math.Abs(line-expected) > amountTolerance)
}

// orderTotalConsistent checks |TotalDue - (SubTotal+TaxAmt+Freight)|.
func orderTotalConsistent(r Row) Verdict {
	sub, ok1 := r.Rec.Float64("SubTotal")
	tax, ok2 := r.Rec.Float64("TaxAmt")
	freight, ok3 := r.Rec.Float64("Freight")
	total, ok4 := r.Rec.Float64("TotalDue")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return Undecided
	}
	return failIf(math.Abs(total-(sub+tax+freight)) > amountTolerance)
}

// CustomersClassifier: single PK, name-ordered dedup.
func CustomersClassifier() Classifier {
	return Classifier{
		Contract: schema.Customers(),
		Tie:      NewByNameAsc("FullName"),
		Rules: []Rule{
			notNull("pk", ReasonPKNull, "CustomerID"),
			rankOne(),
		},
	}
}

// EmployeesClassifier: PK + dedup plus the two coded domains. The Prep step
// upper-cases the raw codes the way the staging layer always has; Finalize
// stores the normalized single-letter codes on surviving rows.
func EmployeesClassifier() Classifier {
	return Classifier{
		Contract: schema.Employees(),
		Tie:      NewByNameAsc("FullName"),
		Prep: func(rec records.Record) {
			upperField(rec, "Gender")
			upperField(rec, "MaritalStatus")
		},
		Rules: []Rule{
			notNull("pk", ReasonPKNull, "EmployeeID"),
			rankOne(),
			{Name: "gender_domain", Reason: ReasonGenderInvalid, Check: func(r Row) Verdict {
				s, _ := r.Rec.String("Gender")
				return failIf(schema.NormalizeGender(s) == "U")
			}},
			{Name: "marital_domain", Reason: ReasonMaritalInvalid, Check: func(r Row) Verdict {
				s, _ := r.Rec.String("MaritalStatus")
				return failIf(schema.NormalizeMarital(s) == "U")
			}},
		},
		Finalize: func(rec records.Record) {
			g, _ := rec.String("Gender")
			m, _ := rec.String("MaritalStatus")
			rec["Gender"] = schema.NormalizeGender(g)
			rec["MaritalStatus"] = schema.NormalizeMarital(m)
		},
	}
}

// StoresClassifier: PK + dedup plus the optional budget check. The budget is
// left-joined in before classification; a missing budget passes the check and
// Finalize defaults it to zero on the way to silver.
func StoresClassifier() Classifier {
	return Classifier{
		Contract: schema.Stores(),
		Tie:      NewByNameAsc("StoreName"),
		Rules: []Rule{
			notNull("pk", ReasonPKNull, "StoreID"),
			rankOne(),
			{Name: "budget_nonneg", Reason: ReasonBudgetInvalid, Check: func(r Row) Verdict {
				d, ok := r.Rec.Decimal("Budget")
				if !ok {
					return Pass // absent budget is valid
				}
				return failIf(d.IsNegative())
			}},
		},
		Finalize: func(rec records.Record) {
			if rec.IsNil("Budget") {
				rec["Budget"] = decimal.Zero
			}
		},
	}
}

// CategoriesClassifier: single PK, name-ordered dedup.
func CategoriesClassifier() Classifier {
	return Classifier{
		Contract: schema.Categories(),
		Tie:      NewByNameAsc("CategoryName"),
		Rules: []Rule{
			notNull("pk", ReasonPKNull, "CategoryID"),
			rankOne(),
		},
	}
}

// SubcategoriesClassifier adds the category foreign-key presence check.
func SubcategoriesClassifier() Classifier {
	return Classifier{
		Contract: schema.Subcategories(),
		Tie:      NewByNameAsc("SubCategoryName"),
		Rules: []Rule{
			notNull("pk", ReasonPKNull, "SubCategoryID"),
			rankOne(),
			notNull("category_fk", ReasonCatFKNull, "CategoryID"),
		},
	}
}

// ProductsClassifier adds the subcategory foreign-key presence check.
func ProductsClassifier() Classifier {
	return Classifier{
		Contract: schema.Products(),
		Tie:      NewByNameAsc("ProductName"),
		Rules: []Rule{
			notNull("pk", ReasonPKNull, "ProductID"),
			rankOne(),
			notNull("subcategory_fk", ReasonSubcatFKNull, "SubCategoryID"),
		},
	}
}

func failIf(cond bool) Verdict {
	if cond {
		return Fail
	}
	return Pass
}

func upperField(rec records.Record, field string) {
	if s, ok := rec.String(field); ok {
		rec[field] = strings.ToUpper(strings.TrimSpace(s))
	}
}
