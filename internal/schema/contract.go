// Package schema defines per-entity column contracts and the fallible
// coercion that turns raw all-string bronze rows into typed records.
//
// Coercion never rejects a row: a field that cannot be cast becomes nil, and
// the validation rules downstream are the ones that report the defect.
package schema

import "fmt"

// Field declares one column of an entity contract.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"` // "int" | "float" | "money" | "date" | "bool" | "text"

	// Layout is the primary date layout for "date" fields.
	Layout string `json:"layout,omitempty"`

	// Fallbacks are additional date layouts tried in order when Layout does
	// not parse. The first layout that parses wins.
	Fallbacks []string `json:"fallbacks,omitempty"`
}

// Contract describes the typed shape of one entity's rows.
type Contract struct {
	Name string `json:"name"`

	// Fields is the ordered column list; the order is also the column order
	// of the silver and quarantine outputs.
	Fields []Field `json:"fields"`

	// PrimaryKey lists the columns that must be jointly non-null and unique
	// within a snapshot or period.
	PrimaryKey []string `json:"primary_key"`

	// HeaderMap maps raw CSV header names to canonical field names.
	HeaderMap map[string]string `json:"header_map,omitempty"`
}

// Columns returns the ordered canonical column names.
func (c Contract) Columns() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Name
	}
	return out
}

// Field returns the declared field with the given name.
func (c Contract) Field(name string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Check verifies the contract is internally consistent: at least one field,
// every primary-key column declared, no duplicate names.
func (c Contract) Check() error {
	if c.Name == "" {
		return fmt.Errorf("schema: contract has no name")
	}
	if len(c.Fields) == 0 {
		return fmt.Errorf("schema: contract %q has no fields", c.Name)
	}
	seen := make(map[string]struct{}, len(c.Fields))
	for _, f := range c.Fields {
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("schema: contract %q: duplicate field %q", c.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	for _, k := range c.PrimaryKey {
		if _, ok := seen[k]; !ok {
			return fmt.Errorf("schema: contract %q: primary key column %q not declared", c.Name, k)
		}
	}
	return nil
}
