package model

import (
	"errors"
	"testing"
)

func TestNewEnumDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   []string
		expected []string
	}{
		{
			name:     "distinct values",
			values:   []string{"Analyst", "Manager", "Associate"},
			expected: []string{"Analyst", "Associate", "Manager"},
		},
		{
			name:     "duplicates collapse",
			values:   []string{"F", "M", "F", "F", "M"},
			expected: []string{"F", "M"},
		},
		{
			name:     "empty strings ignored",
			values:   []string{"IT", "", "Finance", "  ", "IT"},
			expected: []string{"Finance", "IT"},
		},
		{
			name:     "all empty",
			values:   []string{"", "", ""},
			expected: []string{},
		},
		{
			name:     "no values",
			values:   nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			domain := NewEnumDomain(tt.values)
			got := domain.Values()
			if len(got) != len(tt.expected) {
				t.Fatalf("Values() = %v, want %v", got, tt.expected)
			}
			for i, v := range tt.expected {
				if got[i] != v {
					t.Errorf("Values()[%d] = %q, want %q", i, got[i], v)
				}
			}
			if domain.Len() != len(tt.expected) {
				t.Errorf("Len() = %d, want %d", domain.Len(), len(tt.expected))
			}
			if domain.IsEmpty() != (len(tt.expected) == 0) {
				t.Errorf("IsEmpty() = %v, want %v", domain.IsEmpty(), len(tt.expected) == 0)
			}
		})
	}
}

func TestEnumDomainContains(t *testing.T) {
	t.Parallel()

	domain := NewEnumDomain([]string{"Analyst", "Manager"})

	if !domain.Contains("Analyst") {
		t.Error("expected domain to contain Analyst")
	}
	if domain.Contains("Architect") {
		t.Error("expected domain not to contain Architect")
	}
	if domain.Contains("") {
		t.Error("expected domain not to contain empty string")
	}
}

func TestDeriveEnumDomain(t *testing.T) {
	t.Parallel()

	header := NewHeader([]string{"NAME", "DESIGNATION"})
	records := []Record{
		NewRecord([]string{"TOMASA", "Analyst"}),
		NewRecord([]string{"JAMES", "Senior Analyst"}),
		NewRecord([]string{"PAUL", "Analyst"}),
		NewRecord([]string{"ANNIE", ""}),
	}
	table := NewTable("salaries", header, records)

	domain, err := DeriveEnumDomain(table, "DESIGNATION")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := NewEnumDomain([]string{"Analyst", "Senior Analyst"})
	if !domain.Equal(want) {
		t.Errorf("domain = %v, want %v", domain.Values(), want.Values())
	}
}

func TestDeriveEnumDomainIsDeterministic(t *testing.T) {
	t.Parallel()

	header := NewHeader([]string{"UNIT"})
	records := []Record{
		NewRecord([]string{"Finance"}),
		NewRecord([]string{"IT"}),
		NewRecord([]string{"Web"}),
		NewRecord([]string{"IT"}),
	}
	table := NewTable("salaries", header, records)

	first, err := DeriveEnumDomain(table, "UNIT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := DeriveEnumDomain(table, "UNIT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.Equal(second) {
		t.Errorf("deriving twice from the same table yielded different domains: %v vs %v",
			first.Values(), second.Values())
	}
}

func TestDeriveEnumDomainMissingColumn(t *testing.T) {
	t.Parallel()

	table := NewTable("salaries", NewHeader([]string{"NAME"}), []Record{
		NewRecord([]string{"TOMASA"}),
	})

	_, err := DeriveEnumDomain(table, "DESIGNATION")
	if !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("expected ErrColumnNotFound, got %v", err)
	}
}

func TestDeriveEnumDomainEmptyTable(t *testing.T) {
	t.Parallel()

	table := NewTable("salaries", NewHeader([]string{"DESIGNATION"}), nil)

	domain, err := DeriveEnumDomain(table, "DESIGNATION")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !domain.IsEmpty() {
		t.Errorf("expected empty domain, got %v", domain.Values())
	}
}
