package model

import (
	"testing"
)

func TestNewTable(t *testing.T) {
	t.Parallel()

	header := NewHeader([]string{"NAME", "SALARY"})
	records := []Record{
		NewRecord([]string{"TOMASA", "44570"}),
		NewRecord([]string{"OLIVE", "40955"}),
	}
	table := NewTable("salaries", header, records)

	if table.Name() != "salaries" {
		t.Errorf("Name() = %q, want %q", table.Name(), "salaries")
	}
	if !table.Header().Equal(header) {
		t.Errorf("Header() = %v, want %v", table.Header(), header)
	}
	if table.RowCount() != 2 {
		t.Errorf("RowCount() = %d, want 2", table.RowCount())
	}

	info := table.ColumnInfo()
	if len(info) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(info))
	}
	if info[0].Type != ColumnTypeText {
		t.Errorf("NAME type = %v, want TEXT", info[0].Type)
	}
	if info[1].Type != ColumnTypeInteger {
		t.Errorf("SALARY type = %v, want INTEGER", info[1].Type)
	}
}

func TestTableColumnValues(t *testing.T) {
	t.Parallel()

	table := NewTable("salaries",
		NewHeader([]string{"NAME", "UNIT"}),
		[]Record{
			NewRecord([]string{"TOMASA", "Finance"}),
			NewRecord([]string{"CHERRY", "IT"}),
		})

	values, ok := table.ColumnValues("UNIT")
	if !ok {
		t.Fatal("expected UNIT column to exist")
	}
	if len(values) != 2 || values[0] != "Finance" || values[1] != "IT" {
		t.Errorf("ColumnValues(UNIT) = %v, want [Finance IT]", values)
	}

	if _, ok := table.ColumnValues("MISSING"); ok {
		t.Error("expected MISSING column to be absent")
	}
}

func TestTableFromFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filePath string
		expected string
	}{
		{
			name:     "csv file",
			filePath: "/data/salaries.csv",
			expected: "salaries",
		},
		{
			name:     "tsv file",
			filePath: "salaries.tsv",
			expected: "salaries",
		},
		{
			name:     "gzip compressed csv",
			filePath: "/data/salaries.csv.gz",
			expected: "salaries",
		},
		{
			name:     "zstd compressed parquet",
			filePath: "salaries.parquet.zst",
			expected: "salaries",
		},
		{
			name:     "no extension",
			filePath: "salaries",
			expected: "salaries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := TableFromFilePath(tt.filePath); got != tt.expected {
				t.Errorf("TableFromFilePath(%q) = %q, want %q", tt.filePath, got, tt.expected)
			}
		})
	}
}

func TestHeaderIndex(t *testing.T) {
	t.Parallel()

	header := NewHeader([]string{"FIRST NAME", "SALARY"})
	if idx := header.Index("SALARY"); idx != 1 {
		t.Errorf("Index(SALARY) = %d, want 1", idx)
	}
	if idx := header.Index("MISSING"); idx != -1 {
		t.Errorf("Index(MISSING) = %d, want -1", idx)
	}
}
