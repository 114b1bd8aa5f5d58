package model

import (
	"fmt"
	"sort"
	"strings"
)

// EnumDomain is the closed set of values allowed in an enumerated column.
// It is derived once from observed data and never recomputed afterwards.
type EnumDomain struct {
	values map[string]struct{}
}

// NewEnumDomain create new EnumDomain from a list of values.
// Duplicates collapse; empty strings are ignored.
func NewEnumDomain(values []string) EnumDomain {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		set[v] = struct{}{}
	}
	return EnumDomain{values: set}
}

// DeriveEnumDomain computes the domain of the named column from the table's
// current rows: the set of distinct non-null values, order irrelevant.
// This is a pure function of the table data; deriving twice from the same
// table yields value-equal domains.
func DeriveEnumDomain(t *Table, column string) (EnumDomain, error) {
	values, ok := t.ColumnValues(column)
	if !ok {
		return EnumDomain{}, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}
	return NewEnumDomain(values), nil
}

// Contains reports whether v belongs to the domain.
func (d EnumDomain) Contains(v string) bool {
	_, ok := d.values[v]
	return ok
}

// Values returns the domain members in sorted order.
func (d EnumDomain) Values() []string {
	out := make([]string, 0, len(d.values))
	for v := range d.values {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of values in the domain.
func (d EnumDomain) Len() int {
	return len(d.values)
}

// IsEmpty reports whether the domain has no members. A table created from an
// empty domain rejects every insert into that column.
func (d EnumDomain) IsEmpty() bool {
	return len(d.values) == 0
}

// Equal compare EnumDomain by value, ignoring order.
func (d EnumDomain) Equal(d2 EnumDomain) bool {
	if len(d.values) != len(d2.values) {
		return false
	}
	for v := range d.values {
		if _, ok := d2.values[v]; !ok {
			return false
		}
	}
	return true
}
