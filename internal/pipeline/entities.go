package pipeline

import (
	"context"

	"lakeetl/internal/classify"
	"lakeetl/internal/period"
	"lakeetl/internal/silver"
	"lakeetl/pkg/records"
)

// Entity binds one bronze table to its classification pass and its silver and
// quarantine destinations.
type Entity struct {
	// Table is the bronze table name, also used in audit rows.
	Table string
	// Source is the upstream system in the bronze path (github, mysql, excel).
	Source string
	// Dim is the silver dimension name; empty for the sales fact staging.
	Dim string
	// InvalidDim names the quarantine partition; dims with composite silver
	// layouts (products) quarantine under their own flat name.
	InvalidDim string
	// File is the output object name inside the destination prefix.
	File string

	// NewClassifier builds the entity's classification pass. Built fresh per
	// run; classifiers carry per-run collator state.
	NewClassifier func() classify.Classifier

	// Enrich optionally rewrites the coerced batch before classification
	// (the stores budget join).
	Enrich func(ctx context.Context, r *Runner, p period.Period, recs []records.Record) ([]records.Record, error)
}

// BronzePrefix is where the entity's snapshot for the period lands.
func (e Entity) BronzePrefix(p period.Period) string {
	if e.Dim == "" {
		return silver.BronzeSales(e.Source, p)
	}
	return silver.BronzeTable(e.Source, e.Table, p)
}

// ValidPrefix is the entity's silver destination.
func (e Entity) ValidPrefix(p period.Period) string {
	if e.Dim == "" {
		return silver.SilverSales(p)
	}
	return silver.SilverDim(e.Dim)
}

// InvalidPrefix is the entity's quarantine destination.
func (e Entity) InvalidPrefix(p period.Period) string {
	if e.Dim == "" {
		return silver.InvalidSales(p)
	}
	return silver.InvalidDim(e.InvalidDim, p)
}

// Orders is the sales fact staging entity.
func Orders() Entity {
	return Entity{
		Table:         "orders",
		Source:        "github",
		File:          "orders.csv",
		NewClassifier: classify.OrdersClassifier,
	}
}

// Dimensions lists the dimension refresh entities in dependency-free order;
// each one succeeds or fails independently.
func Dimensions() []Entity {
	return []Entity{
		{
			Table: "customers", Source: "github",
			Dim: "customer", InvalidDim: "customer", File: "customers.csv",
			NewClassifier: classify.CustomersClassifier,
		},
		{
			Table: "employee", Source: "github",
			Dim: "employee", InvalidDim: "employee", File: "employees.csv",
			NewClassifier: classify.EmployeesClassifier,
		},
		{
			Table: "productCategories", Source: "github",
			Dim: "product/Category", InvalidDim: "productCategory", File: "categories.csv",
			NewClassifier: classify.CategoriesClassifier,
		},
		{
			Table: "productSubcategories", Source: "github",
			Dim: "product/SubCategory", InvalidDim: "productSubcategory", File: "subcategories.csv",
			NewClassifier: classify.SubcategoriesClassifier,
		},
		{
			Table: "products", Source: "github",
			Dim: "product/Product", InvalidDim: "product", File: "products.csv",
			NewClassifier: classify.ProductsClassifier,
		},
		{
			Table: "stores", Source: "mysql",
			Dim: "store", InvalidDim: "store", File: "stores.csv",
			NewClassifier: classify.StoresClassifier,
			Enrich:        joinStoreBudgets,
		},
	}
}
