package model

import "errors"

var (
	// ErrDuplicateColumnName is returned when a file contains duplicate column names
	ErrDuplicateColumnName = errors.New("duplicate column name")

	// ErrColumnNotFound is returned when a configured column is absent from the source header
	ErrColumnNotFound = errors.New("column not found in source data")

	// ErrEmptyFile is returned when a source file contains no data at all, not even a header
	ErrEmptyFile = errors.New("empty file")
)
