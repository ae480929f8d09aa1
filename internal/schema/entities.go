package schema

// Canonical contracts for the entities this pipeline promotes. Column order
// matches the bronze CSV layout and is preserved in silver output.

// orderDateFallbacks are tried when the primary M/D/YYYY layout fails;
// upstream extracts have been seen with ISO and dash-separated dates.
var orderDateFallbacks = []string{"2006-01-02", "2006/01/02", "1-2-2006"}

// Orders is the fact staging contract (composite primary key).
func Orders() Contract {
	return Contract{
		Name: "orders",
		Fields: []Field{
			{Name: "SalesOrderID", Type: "int"},
			{Name: "SalesOrderDetailID", Type: "int"},
			{Name: "OrderDate", Type: "date", Layout: "1/2/2006", Fallbacks: orderDateFallbacks},
			{Name: "DueDate", Type: "date", Layout: "1/2/2006", Fallbacks: orderDateFallbacks},
			{Name: "ShipDate", Type: "date", Layout: "1/2/2006", Fallbacks: orderDateFallbacks},
			{Name: "EmployeeID", Type: "int"},
			{Name: "CustomerID", Type: "int"},
			{Name: "SubTotal", Type: "float"},
			{Name: "TaxAmt", Type: "float"},
			{Name: "Freight", Type: "float"},
			{Name: "TotalDue", Type: "float"},
			{Name: "ProductID", Type: "int"},
			{Name: "OrderQty", Type: "int"},
			{Name: "UnitPrice", Type: "float"},
			{Name: "UnitPriceDiscount", Type: "float"},
			{Name: "LineTotal", Type: "float"},
			{Name: "StoreID", Type: "int"},
		},
		PrimaryKey: []string{"SalesOrderID", "SalesOrderDetailID"},
	}
}

func Customers() Contract {
	return Contract{
		Name: "customers",
		Fields: []Field{
			{Name: "CustomerID", Type: "int"},
			{Name: "FirstName", Type: "text"},
			{Name: "LastName", Type: "text"},
			{Name: "FullName", Type: "text"},
		},
		PrimaryKey: []string{"CustomerID"},
	}
}

func Employees() Contract {
	return Contract{
		Name: "employees",
		Fields: []Field{
			{Name: "EmployeeID", Type: "int"},
			{Name: "ManagerID", Type: "int"},
			{Name: "FirstName", Type: "text"},
			{Name: "LastName", Type: "text"},
			{Name: "FullName", Type: "text"},
			{Name: "JobTitle", Type: "text"},
			{Name: "OrganizationLevel", Type: "int"},
			{Name: "MaritalStatus", Type: "text"},
			{Name: "Gender", Type: "text"},
			{Name: "Territory", Type: "text"},
			{Name: "Country", Type: "text"},
			{Name: "Group", Type: "text"},
		},
		PrimaryKey: []string{"EmployeeID"},
	}
}

// Stores carries the Budget column even though it arrives from a separate
// budget extract: the two are left-joined by StoreID before classification,
// and a store without a budget row gets a zero budget.
func Stores() Contract {
	return Contract{
		Name: "stores",
		Fields: []Field{
			{Name: "StoreID", Type: "int"},
			{Name: "StoreName", Type: "text"},
			{Name: "EmployeeID", Type: "int"},
			{Name: "Budget", Type: "money"},
		},
		PrimaryKey: []string{"StoreID"},
	}
}

// StoreBudgets is the budget side of the stores join.
func StoreBudgets() Contract {
	return Contract{
		Name: "storesBudget",
		Fields: []Field{
			{Name: "StoreID", Type: "int"},
			{Name: "Budget", Type: "money"},
		},
		PrimaryKey: []string{"StoreID"},
	}
}

func Categories() Contract {
	return Contract{
		Name: "productCategories",
		Fields: []Field{
			{Name: "CategoryID", Type: "int"},
			{Name: "CategoryName", Type: "text"},
		},
		PrimaryKey: []string{"CategoryID"},
	}
}

func Subcategories() Contract {
	return Contract{
		Name: "productSubcategories",
		Fields: []Field{
			{Name: "SubCategoryID", Type: "int"},
			{Name: "CategoryID", Type: "int"},
			{Name: "SubCategoryName", Type: "text"},
		},
		PrimaryKey: []string{"SubCategoryID"},
	}
}

func Products() Contract {
	return Contract{
		Name: "products",
		Fields: []Field{
			{Name: "ProductID", Type: "int"},
			{Name: "ProductNumber", Type: "text"},
			{Name: "ProductName", Type: "text"},
			{Name: "ModelName", Type: "text"},
			{Name: "MakeFlag", Type: "bool"},
			{Name: "StandardCost", Type: "float"},
			{Name: "ListPrice", Type: "float"},
			{Name: "SubCategoryID", Type: "int"},
		},
		PrimaryKey: []string{"ProductID"},
	}
}
