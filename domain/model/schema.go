package model

import "fmt"

// SurrogateKeyColumn is the auto-assigned identifier added at persistence
// time. It never appears in source data.
const SurrogateKeyColumn = "id"

// ColumnSchema describes one persisted column of a record type.
type ColumnSchema struct {
	// Name is the column name, taken verbatim from the source header.
	Name string
	// Type is the inferred storage type.
	Type ColumnType
	// NotNull marks the column as required.
	NotNull bool
	// Enum holds the derived value domain for enumerated columns, nil otherwise.
	Enum *EnumDomain
}

// IsEnum reports whether the column carries an enumerated domain.
func (c ColumnSchema) IsEnum() bool {
	return c.Enum != nil
}

// TableSchema is the record-type definition for the persistent table:
// a surrogate identifier plus one column per source field in source order.
type TableSchema struct {
	name    string
	columns []ColumnSchema
}

// DeriveSchema builds the record-type definition from a loaded table.
// Columns listed in enumColumns become enumerated types whose domain is the
// set of distinct non-null values observed in the table right now; columns
// listed in requiredColumns are declared NOT NULL. An enum column absent
// from the source header is an error.
func DeriveSchema(tableName string, t *Table, enumColumns, requiredColumns []string) (*TableSchema, error) {
	enums := make(map[string]EnumDomain, len(enumColumns))
	for _, col := range enumColumns {
		domain, err := DeriveEnumDomain(t, col)
		if err != nil {
			return nil, err
		}
		enums[col] = domain
	}

	required := make(map[string]struct{}, len(requiredColumns))
	for _, col := range requiredColumns {
		if t.Header().Index(col) < 0 {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, col)
		}
		required[col] = struct{}{}
	}

	columns := make([]ColumnSchema, 0, len(t.ColumnInfo()))
	for _, info := range t.ColumnInfo() {
		col := ColumnSchema{
			Name: info.Name,
			Type: info.Type,
		}
		if domain, ok := enums[info.Name]; ok {
			d := domain
			col.Enum = &d
			col.Type = ColumnTypeText
		}
		if _, ok := required[info.Name]; ok {
			col.NotNull = true
		}
		columns = append(columns, col)
	}

	return &TableSchema{name: tableName, columns: columns}, nil
}

// Name return table name.
func (s *TableSchema) Name() string {
	return s.name
}

// Columns returns the persisted columns in source order, surrogate key excluded.
func (s *TableSchema) Columns() []ColumnSchema {
	return s.columns
}

// Column returns the named column definition.
func (s *TableSchema) Column(name string) (ColumnSchema, bool) {
	for _, col := range s.columns {
		if col.Name == name {
			return col, true
		}
	}
	return ColumnSchema{}, false
}

// ColumnNames returns the persisted column names in order, surrogate key excluded.
func (s *TableSchema) ColumnNames() []string {
	names := make([]string, len(s.columns))
	for i, col := range s.columns {
		names[i] = col.Name
	}
	return names
}

// Equal compare TableSchema by value.
func (s *TableSchema) Equal(s2 *TableSchema) bool {
	if s.name != s2.name || len(s.columns) != len(s2.columns) {
		return false
	}
	for i, col := range s.columns {
		col2 := s2.columns[i]
		if col.Name != col2.Name || col.Type != col2.Type || col.NotNull != col2.NotNull {
			return false
		}
		if col.IsEnum() != col2.IsEnum() {
			return false
		}
		if col.IsEnum() && !col.Enum.Equal(*col2.Enum) {
			return false
		}
	}
	return true
}
