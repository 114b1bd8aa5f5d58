package salarysql

import "errors"

// Error taxonomy. Every failure surfaced by the pipeline wraps exactly one
// of these sentinels, so callers can classify with errors.Is. All failures
// are fatal; nothing in the pipeline retries.
var (
	// ErrLoad indicates the source file is missing, unreadable, or malformed
	ErrLoad = errors.New("salarysql: load failed")

	// ErrSchema indicates the record-type definition could not be derived
	ErrSchema = errors.New("salarysql: schema derivation failed")

	// ErrConstraint indicates an insert violated the derived schema
	ErrConstraint = errors.New("salarysql: constraint violation")

	// ErrStore indicates the persistent store could not be opened or written
	ErrStore = errors.New("salarysql: store failure")

	// ErrQuery indicates an aggregate query failed on one of the paths
	ErrQuery = errors.New("salarysql: query failure")
)
