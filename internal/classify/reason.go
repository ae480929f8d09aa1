package classify

// Reason is the machine-readable rejection code carried by quarantined rows.
// The literal strings are part of the output contract; downstream consumers
// and fixtures match on them exactly.
type Reason string

const (
	// ReasonNone marks a valid record.
	ReasonNone Reason = ""

	ReasonPKNull             Reason = "PK_NULL"
	ReasonBadOrderDate       Reason = "BAD_ORDERDATE"
	ReasonDuplicatePK        Reason = "DUPLICATE_PK"
	ReasonQtyLE0             Reason = "QTY_LE_0"
	ReasonPriceLT0           Reason = "PRICE_LT_0"
	ReasonDiscountOutOfRange Reason = "DISCOUNT_OUT_OF_RANGE"
	ReasonNegativeAmounts    Reason = "NEGATIVE_AMOUNTS"
	ReasonLineMismatch       Reason = "LINE_MISMATCH"
	ReasonTotalMismatch      Reason = "TOTAL_MISMATCH"
	ReasonCatFKNull          Reason = "CAT_FK_NULL"
	ReasonSubcatFKNull       Reason = "SUBCAT_FK_NULL"
	ReasonGenderInvalid      Reason = "GENDER_INVALID"
	ReasonMaritalInvalid     Reason = "MARITALSTATUS_INVALID"
	ReasonBudgetInvalid      Reason = "BUDGET_INVALID"

	// ReasonUnknown is the defensive fallback: a record that no rule
	// definitively failed but that still cannot be proven valid (a null
	// operand made a rule undecidable).
	ReasonUnknown Reason = "UNKNOWN"
)
