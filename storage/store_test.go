package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/salarysql/salarysql/domain/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func salaryFixture(t *testing.T) (*model.TableSchema, *model.Table) {
	t.Helper()

	header := model.NewHeader([]string{"FIRST NAME", "DOJ", "DESIGNATION", "SALARY"})
	records := []model.Record{
		model.NewRecord([]string{"TOMASA", "5/18/2014", "Analyst", "44570"}),
		model.NewRecord([]string{"JAMES", "6/9/2010", "Senior Analyst", "62521"}),
		model.NewRecord([]string{"PAUL", "", "Manager", "120000"}),
	}
	table := model.NewTable("salaries", header, records)

	schema, err := model.DeriveSchema("salaries", table,
		[]string{"DESIGNATION"},
		[]string{"FIRST NAME", "SALARY"})
	require.NoError(t, err)
	return schema, table
}

func TestOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "salaries.db")
	store, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.Path())
	assert.NotNil(t, store.DB())
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected TablePolicy
		wantErr  bool
	}{
		{name: "append", input: "append", expected: PolicyAppend},
		{name: "replace", input: "replace", expected: PolicyReplace},
		{name: "fail", input: "fail", expected: PolicyFailIfExists},
		{name: "empty defaults to append", input: "", expected: PolicyAppend},
		{name: "case insensitive", input: "Replace", expected: PolicyReplace},
		{name: "unknown", input: "truncate", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePolicy(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBuildCreateTableQuery(t *testing.T) {
	t.Parallel()

	schema, _ := salaryFixture(t)
	ddl := buildCreateTableQuery(schema)

	assert.Contains(t, ddl, `"id" INTEGER PRIMARY KEY AUTOINCREMENT`)
	assert.Contains(t, ddl, `"FIRST NAME" TEXT NOT NULL`)
	assert.Contains(t, ddl, `"SALARY" INTEGER NOT NULL`)
	assert.Contains(t, ddl, `CHECK ("DESIGNATION" IN ('Analyst', 'Manager', 'Senior Analyst'))`)
}

func TestBuildCreateTableQueryEmptyDomain(t *testing.T) {
	t.Parallel()

	table := model.NewTable("salaries",
		model.NewHeader([]string{"DESIGNATION"}),
		[]model.Record{model.NewRecord([]string{""})})
	schema, err := model.DeriveSchema("salaries", table, []string{"DESIGNATION"}, nil)
	require.NoError(t, err)

	ddl := buildCreateTableQuery(schema)
	assert.Contains(t, ddl, "CHECK (1 = 0)")
}

func TestEnsureTableAndAppend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)
	schema, table := salaryFixture(t)

	require.NoError(t, store.EnsureTable(ctx, schema, PolicyAppend))

	inserted, err := store.Append(ctx, schema, table, PolicyAppend)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inserted)

	count, err := store.CountRows(ctx, schema.Name())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// A second append keeps the existing rows.
	_, err = store.Append(ctx, schema, table, PolicyAppend)
	require.NoError(t, err)

	count, err = store.CountRows(ctx, schema.Name())
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)
}

func TestEnsureTableIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)
	schema, _ := salaryFixture(t)

	require.NoError(t, store.EnsureTable(ctx, schema, PolicyAppend))
	require.NoError(t, store.EnsureTable(ctx, schema, PolicyAppend))
}

func TestEnsureTableFailIfExists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)
	schema, _ := salaryFixture(t)

	require.NoError(t, store.EnsureTable(ctx, schema, PolicyFailIfExists))

	err := store.EnsureTable(ctx, schema, PolicyFailIfExists)
	assert.ErrorIs(t, err, ErrTableExists)
}

func TestAppendReplacePolicy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)
	schema, table := salaryFixture(t)

	require.NoError(t, store.EnsureTable(ctx, schema, PolicyAppend))
	_, err := store.Append(ctx, schema, table, PolicyAppend)
	require.NoError(t, err)

	replacement := model.NewTable("salaries",
		table.Header(),
		[]model.Record{
			model.NewRecord([]string{"DONNA", "8/22/2006", "Manager", "131000"}),
		})

	inserted, err := store.Append(ctx, schema, replacement, PolicyReplace)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)

	count, err := store.CountRows(ctx, schema.Name())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestAppendEnumConstraintViolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)
	schema, table := salaryFixture(t)

	require.NoError(t, store.EnsureTable(ctx, schema, PolicyAppend))
	_, err := store.Append(ctx, schema, table, PolicyAppend)
	require.NoError(t, err)

	// A designation outside the derived domain violates the CHECK constraint.
	outOfDomain := model.NewTable("salaries",
		table.Header(),
		[]model.Record{
			model.NewRecord([]string{"NEW", "1/1/2015", "Architect", "90000"}),
		})

	_, err = store.Append(ctx, schema, outOfDomain, PolicyAppend)
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))

	// The failed batch rolled back in full.
	count, err := store.CountRows(ctx, schema.Name())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestAppendNotNullConstraintViolation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)
	schema, table := salaryFixture(t)

	require.NoError(t, store.EnsureTable(ctx, schema, PolicyAppend))

	// An empty required value binds NULL and trips the NOT NULL constraint.
	missingName := model.NewTable("salaries",
		table.Header(),
		[]model.Record{
			model.NewRecord([]string{"", "1/1/2015", "Analyst", "50000"}),
		})

	_, err := store.Append(ctx, schema, missingName, PolicyAppend)
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))
}

func TestAppendEmptyDomainRejectsEveryInsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	empty := model.NewTable("salaries",
		model.NewHeader([]string{"DESIGNATION"}),
		[]model.Record{model.NewRecord([]string{""})})
	schema, err := model.DeriveSchema("salaries", empty, []string{"DESIGNATION"}, nil)
	require.NoError(t, err)

	require.NoError(t, store.EnsureTable(ctx, schema, PolicyAppend))

	attempt := model.NewTable("salaries",
		model.NewHeader([]string{"DESIGNATION"}),
		[]model.Record{model.NewRecord([]string{"Analyst"})})

	_, err = store.Append(ctx, schema, attempt, PolicyAppend)
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))
}

func TestReadRecordRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)
	schema, table := salaryFixture(t)

	require.NoError(t, store.EnsureTable(ctx, schema, PolicyAppend))
	_, err := store.Append(ctx, schema, table, PolicyAppend)
	require.NoError(t, err)

	record, err := store.ReadRecord(ctx, schema, 1)
	require.NoError(t, err)
	require.Len(t, record, 4)

	assert.Equal(t, "TOMASA", record[0])
	// Dates are normalized to ISO8601 at persistence time.
	assert.Equal(t, "2014-05-18", record[1])
	assert.Equal(t, "Analyst", record[2])
	assert.Equal(t, "44570", record[3])

	// The third row has an empty date, stored as NULL and read back empty.
	record, err = store.ReadRecord(ctx, schema, 3)
	require.NoError(t, err)
	assert.Equal(t, "", record[1])
}

func TestAppendEmptyTable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openTestStore(t)

	table := model.NewTable("salaries", model.NewHeader([]string{"DESIGNATION"}), nil)
	schema, err := model.DeriveSchema("salaries", table, nil, nil)
	require.NoError(t, err)

	require.NoError(t, store.EnsureTable(ctx, schema, PolicyAppend))

	inserted, err := store.Append(ctx, schema, table, PolicyAppend)
	require.NoError(t, err)
	assert.Equal(t, int64(0), inserted)
}

func TestBindValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		col      model.ColumnSchema
		raw      string
		expected any
	}{
		{
			name:     "empty becomes null",
			col:      model.ColumnSchema{Name: "X", Type: model.ColumnTypeText},
			raw:      "",
			expected: nil,
		},
		{
			name:     "whitespace becomes null",
			col:      model.ColumnSchema{Name: "X", Type: model.ColumnTypeInteger},
			raw:      "   ",
			expected: nil,
		},
		{
			name:     "integer",
			col:      model.ColumnSchema{Name: "SALARY", Type: model.ColumnTypeInteger},
			raw:      "44570",
			expected: int64(44570),
		},
		{
			name:     "real",
			col:      model.ColumnSchema{Name: "RATINGS", Type: model.ColumnTypeReal},
			raw:      "2.5",
			expected: 2.5,
		},
		{
			name:     "datetime normalized",
			col:      model.ColumnSchema{Name: "DOJ", Type: model.ColumnTypeDatetime},
			raw:      "5/18/2014",
			expected: "2014-05-18",
		},
		{
			name:     "unparseable datetime becomes null",
			col:      model.ColumnSchema{Name: "DOJ", Type: model.ColumnTypeDatetime},
			raw:      "someday",
			expected: nil,
		},
		{
			name:     "text kept verbatim",
			col:      model.ColumnSchema{Name: "DESIGNATION", Type: model.ColumnTypeText},
			raw:      "Senior Analyst",
			expected: "Senior Analyst",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, bindValue(tt.col, tt.raw))
		})
	}
}

func TestIsConstraintViolation(t *testing.T) {
	t.Parallel()

	assert.False(t, IsConstraintViolation(nil))
	assert.False(t, IsConstraintViolation(errors.New("disk I/O error")))
	assert.True(t, IsConstraintViolation(errors.New("constraint failed: CHECK constraint failed: salaries")))
	assert.True(t, IsConstraintViolation(errors.New("NOT NULL constraint failed: salaries.SALARY")))
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"FIRST NAME"`, quoteIdent("FIRST NAME"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
	assert.Equal(t, `'O''Brien'`, quoteString("O'Brien"))
}
